/*
Copyright © 2026 the HEM authors.
This file is part of HEM.

HEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HEM.  If not, see <http://www.gnu.org/licenses/>.
*/

package hem

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hem-sim/hem/internal/controls"
	"github.com/hem-sim/hem/internal/elements"
	"github.com/hem-sim/hem/internal/emitter"
	"github.com/hem-sim/hem/internal/energysupply"
	"github.com/hem-sim/hem/internal/storageheater"
	"github.com/hem-sim/hem/internal/ventilation"
)

// HeatDeliverySystem is what a zone's configured space-heat or
// space-cool system implements: it turns a non-negative demand (kWh;
// stepZone passes the heating demand to the heat system and the
// magnitude of the cooling demand to the cool system) into energy
// actually delivered at
// the zone node, drawing fuel/electricity from its connected energy
// supply as it does so, per spec §2 step 5 ("Heat emitter E (wet) or
// storage heater F translates demand into heat-source fuel").
type HeatDeliverySystem interface {
	Deliver(demandKWh, roomTempC, dtHours float64) (deliveredKWh, fuelKWh float64, err error)
}

// EmitterSystem adapts a wet-distribution emitter circuit (component E)
// and its connected heat source into a HeatDeliverySystem.
type EmitterSystem struct {
	Circuit    *emitter.Circuit
	HeatSource emitter.HeatSourceWet
	FuelConn   *energysupply.Connection

	// Last* record the most recent Deliver call's operating state, read
	// by the per-heat-source-wet/emitter detail CSVs when
	// Project.DetailedOutput is set.
	LastFlowTempC    float64
	LastReturnTempC  float64
	LastEmitterTempC float64
	LastSourceMaxKWh float64
}

// Deliver implements spec §4.E's per-timestep demand procedure in
// abbreviated form: the required emitter temperature and heat-source
// cap are resolved via the circuit's flow/return control and the heat
// source's EnergyOutputMaxKWh, then the emitter's warm-up/cool-down ODE
// (internal/emitter.Circuit.Step) is integrated over the timestep to
// find the energy actually released to the room. The circuit state
// advances every timestep: with zero demand the ODE runs at zero power
// input, so the emitter keeps shedding its stored heat to the room and
// TE decays toward room temperature instead of staying frozen at its
// last heated value.
func (e *EmitterSystem) Deliver(demandKWh, roomTempC, dtHours float64) (float64, float64, error) {
	if e.Circuit == nil || e.HeatSource == nil {
		return 0, 0, nil
	}
	flowC, returnC := e.Circuit.FlowReturnTemp(roomTempC)
	maxKWh := e.HeatSource.EnergyOutputMaxKWh(flowC, returnC, dtHours)
	e.LastFlowTempC = flowC
	e.LastReturnTempC = returnC
	e.LastSourceMaxKWh = maxKWh
	toDeliverKWh := demandKWh
	if toDeliverKWh > maxKWh {
		toDeliverKWh = maxKWh
	}
	if toDeliverKWh < 0 {
		toDeliverKWh = 0
	}
	powerInputW := toDeliverKWh * 1000 / dtHours
	deliveredKWh, err := e.Circuit.Step(powerInputW, roomTempC, dtHours)
	if err != nil {
		return 0, 0, fmt.Errorf("hem: emitter %q: %w", e.Circuit.Name, err)
	}
	e.LastEmitterTempC = e.Circuit.TE
	// Fuel is charged for the energy the heat source put into the
	// circuit; cool-down output comes from the emitter's stored heat
	// and draws nothing.
	fuelKWh := toDeliverKWh
	if hp, ok := e.HeatSource.(*emitter.SimpleHeatPump); ok {
		fuelKWh = hp.ElectricityInputKWh(toDeliverKWh, flowC)
	}
	if e.FuelConn != nil && fuelKWh > 0 {
		e.FuelConn.DemandKWh(fuelKWh)
	}
	return deliveredKWh, fuelKWh, nil
}

// ChargeController is the subset of internal/controls.ChargeControl's
// behaviour a StorageHeaterSystem needs: whether the unit is within its
// off-peak charge window and what SOC fraction it should target.
type ChargeController interface {
	IsOn(timestep int) bool
	TargetCharge(timestep int) float64
}

// StorageHeaterSystem adapts an electric storage heater core (component
// F) into a HeatDeliverySystem, charging from the electricity supply
// during its controller's charge window and discharging to meet space-
// heat demand, per spec §4.F.
type StorageHeaterSystem struct {
	Heater   *storageheater.Heater
	Control  ChargeController
	FuelConn *energysupply.Connection
	FanConn  *energysupply.Connection
	FanPowerKW float64

	// Last* record the most recent Deliver call's charge state, read by
	// the storage-heater detail CSV when Project.DetailedOutput is set.
	LastChargedKWh     float64
	LastInstantKWh     float64
	LastTargetFraction float64
}

// Deliver asks the storage heater core to meet demandKWh for the
// timestep: Heater.Deliver resolves the MIN/MAX output-mode fallback
// and any instant-backup top-up internally, charging when the
// controller's window is open and the heater is below its target SOC.
// Fan electricity (when the unit has a fan-assisted airflow type) is
// charged to FanConn whenever the unit discharges, per spec §3's "fan
// power" field; instant-backup energy is charged alongside the charged
// energy since both draw straight from the mains rather than the store.
func (s *StorageHeaterSystem) Deliver(demandKWh, roomTempC, dtHours float64, timestep int) (float64, float64, error) {
	if s.Heater == nil {
		return 0, 0, nil
	}
	chargeWindowOpen := s.Control != nil && s.Control.IsOn(timestep)
	targetFraction := 1.0
	if chargeWindowOpen {
		targetFraction = s.Control.TargetCharge(timestep)
	}
	deliveredKWh, chargedKWh, instantKWh, err := s.Heater.Deliver(demandKWh, chargeWindowOpen, targetFraction, dtHours)
	if err != nil {
		return 0, 0, fmt.Errorf("hem: storage heater %q: %w", s.Heater.Name, err)
	}
	s.LastChargedKWh = chargedKWh
	s.LastInstantKWh = instantKWh
	s.LastTargetFraction = targetFraction
	fuelKWh := chargedKWh + instantKWh
	if s.FuelConn != nil && fuelKWh > 0 {
		s.FuelConn.DemandKWh(fuelKWh)
	}
	if chargedKWh > 1e-9 {
		s.Heater.RecordHourlyRetention(deliveredKWh / chargedKWh)
	}
	if s.FanConn != nil && deliveredKWh > 0 {
		s.FanConn.DemandKWh(s.FanPowerKW * dtHours)
		fuelKWh += s.FanPowerKW * dtHours
	}
	return deliveredKWh + instantKWh, fuelKWh, nil
}

// ZoneRun bundles one zone with the ventilation network serving it, its
// configured space-heat/space-cool delivery systems, and the solar/
// internal-gain inputs the per-timestep loop needs to drive it, per
// spec §2's data-flow and §3's Zone/airflow-path data model.
type ZoneRun struct {
	Zone    *Zone
	Network *ventilation.Network

	HeatSystem HeatDeliverySystem
	CoolSystem HeatDeliverySystem

	// StorageHeater is set instead of HeatSystem when the zone's
	// SpaceHeatSystem is an electric storage heater, since its Deliver
	// needs the timestep index for charge-control scheduling.
	StorageHeater *StorageHeaterSystem

	InternalGainsW func(timestep int) float64

	Terrain         ventilation.TerrainClass
	Shield          ventilation.ShieldClass
	CrossVentPossible bool
	AltitudeM       float64
	BuildingHeightM float64

	AchMin, AchMax float64

	Orientations map[int]float64 // element index -> facade orientation, degrees from north

	// sumHVePerK/countHVeSamples accumulate the per-timestep
	// ventilation heat-transfer coefficient for the results_static.csv
	// report's HTC/HLP figures (§6), which are steady-state quantities
	// the reference implementation reports against an annual-average
	// ventilation rate.
	sumHVePerK      float64
	countHVeSamples int
}

// ZoneStaticResult is the fixed, steady-state-style summary spec §6's
// "…__results_static.csv" reports per zone: HTC, HLP, HCP, and the
// heat-loss form factor, alongside the assumed internal/external
// temperatures used to derive them.
type ZoneStaticResult struct {
	ZoneName              string
	FabricHTCWPerK         float64
	VentilationHTCWPerK    float64
	ThermalBridgeHTCWPerK  float64
	HTCWPerK               float64
	HLPWPerM2K             float64
	HCPWPerM2K             float64 // heat capacity parameter: zone air+fabric capacitance / floor area
	HeatLossFormFactor     float64 // total exposed envelope area (all elements except adjacent-conditioned) / floor area
	AssumedInternalTempC   float64
	AssumedExternalTempC   float64
}

// StaticResults computes spec §6's results_static.csv figures for every
// zone, using the run's averaged ventilation heat-transfer coefficient
// (Run must have completed at least one timestep) and the assumed
// design internal/external temperatures supplied.
func (p *Project) StaticResults(assumedInternalC, assumedExternalC float64) []ZoneStaticResult {
	out := make([]ZoneStaticResult, 0, len(p.Zones))
	for _, zr := range p.Zones {
		z := zr.Zone
		fabricHTC := z.FabricHTCWPerK()
		ventHTC := 0.0
		if zr.countHVeSamples > 0 {
			ventHTC = zr.sumHVePerK / float64(zr.countHVeSamples)
		}
		htc := fabricHTC + ventHTC + z.ThermalBridgeWPerK
		var hlp, hcp, formFactor float64
		if z.FloorAreaM2 > 0 {
			hlp = htc / z.FloorAreaM2
			hcp = zoneHeatCapacityJPerM2K(z) / z.FloorAreaM2
			var exposedAreaM2 float64
			for _, e := range z.Elements {
				if e.Other != elements.AdjacentConditioned {
					exposedAreaM2 += e.Area
				}
			}
			formFactor = exposedAreaM2 / z.FloorAreaM2
		}
		out = append(out, ZoneStaticResult{
			ZoneName:             z.Name,
			FabricHTCWPerK:       fabricHTC,
			VentilationHTCWPerK:  ventHTC,
			ThermalBridgeHTCWPerK: z.ThermalBridgeWPerK,
			HTCWPerK:             htc,
			HLPWPerM2K:           hlp,
			HCPWPerM2K:           hcp,
			HeatLossFormFactor:   formFactor,
			AssumedInternalTempC: assumedInternalC,
			AssumedExternalTempC: assumedExternalC,
		})
	}
	return out
}

// zoneHeatCapacityJPerM2K sums the zone's fabric areal heat capacities
// (k_pli, J/m2K, times element area) plus the air node's fixed
// C_int = 10000 J/m2K per spec §4.D, giving the whole-zone heat
// capacity in J/K.
func zoneHeatCapacityJPerM2K(z *Zone) float64 {
	var capJPerK float64
	for _, e := range z.Elements {
		for _, k := range e.KPli {
			capJPerK += k * e.Area
		}
	}
	capJPerK += 10000 * z.FloorAreaM2
	return capJPerK
}

// Project is the fully assembled simulation: a clock, weather, one or
// more zones and their HVAC systems, and the shared energy-supply
// ledgers, per spec §1/§2. Run steps each timestep in a fixed order:
// HW events -> PV generation and smart-appliance forecasts -> for each
// zone, Ventilation -> Zone free-float -> Demand & HVAC dispatch -> Zone
// state update -> then Energy supply close-out for every supply. There
// is no separate controls stage: controls are queried as each system is
// dispatched.
type Project struct {
	Clock   *Clock
	Weather *ExternalConditions
	Zones   []*ZoneRun
	Supplies map[string]*energysupply.Supply

	HotWater *HotWaterSystem

	PVGenerators []*PVGenerator

	// SmartAppliances are the flexible-appliance controls whose 24-hour
	// forecast rings step advances once per timestep, refreshing the
	// far edge of each window with the projected on-site generation for
	// that future hour.
	SmartAppliances []*controls.SmartApplianceControl

	UseFastSolver bool
	Logger        *logrus.Logger

	DisplayProgress bool

	// HeatBalance, when set, makes stepZone additionally compute and
	// attach a ZoneBalance to each ZoneTimestepResult, per spec §6's
	// optional "--heat-balance" detail CSVs. Left off by default since
	// the decomposition is pure overhead when nobody asked for it.
	HeatBalance bool

	// DetailedOutput, when set (from
	// "--detailed-output-heating-cooling"), makes stepZone attach an
	// HVACDetail snapshot to each ZoneTimestepResult for the
	// ventilation/emitter/storage-heater detail CSVs.
	DetailedOutput bool
}

// PVGenerator adapts an on-site photovoltaic array (component H's
// generation side) into the energy-supply ledger it feeds, per spec
// §4.H/§9's on-site generation model.
type PVGenerator struct {
	PV   *energysupply.PVSystem
	Conn *energysupply.Connection
}

// stepPV credits every configured PV array's production to its supply
// connection for the timestep, using a simplified global-horizontal
// approximation of plane-of-array irradiance (direct-beam plus
// diffuse-horizontal, ignoring array tilt/orientation mismatch) and a
// basic NOCT-style module temperature rise above ambient.
func (p *Project) stepPV(t int, extTempC float64) {
	if p.Weather == nil {
		return
	}
	poa := p.Weather.DirectBeam(t) + p.Weather.DiffuseHorizontal(t)
	moduleTempC := extTempC + poa/800*25
	for _, gen := range p.PVGenerators {
		if gen.PV == nil {
			continue
		}
		kw := gen.PV.ProductionKW(poa, moduleTempC)
		if gen.Conn != nil && kw > 0 {
			gen.Conn.SupplyKWh(kw * p.Clock.StepHours)
		}
	}
}

// stepSmartAppliances advances every smart-appliance control's forecast
// ring by one slot and refreshes the far edge of its window with the
// projected on-site PV generation for that future hour (the same
// global-horizontal approximation stepPV uses, applied at the look-ahead
// index). Demand-side netting of the forecast is left to the appliance
// bookings themselves via AddApplianceDemand.
func (p *Project) stepSmartAppliances(t int) {
	if len(p.SmartAppliances) == 0 {
		return
	}
	lookAhead := t + controls.ForecastWindowHours - 1
	var projectedKW float64
	if p.Weather != nil {
		poa := p.Weather.DirectBeam(lookAhead) + p.Weather.DiffuseHorizontal(lookAhead)
		moduleTempC := p.Weather.AirTemp(lookAhead) + poa/800*25
		for _, gen := range p.PVGenerators {
			if gen.PV != nil {
				projectedKW += gen.PV.ProductionKW(poa, moduleTempC)
			}
		}
	}
	for _, sac := range p.SmartAppliances {
		sac.Advance()
		sac.SetForecast(controls.ForecastWindowHours-1, projectedKW*p.Clock.StepHours)
	}
}

// TimestepResult carries the per-timestep, per-zone outputs the output
// writers need, per spec §6's results CSV column set.
type TimestepResult struct {
	Timestep           int
	ZoneResults        []ZoneTimestepResult
	SupplyResults      map[string]SupplyTimestepResult
	HotWater           HotWaterTimestepResult
}

// ZoneTimestepResult is one zone's contribution to a timestep's result
// row.
type ZoneTimestepResult struct {
	ZoneName           string
	InternalGainsW     float64
	SolarGainsW        float64
	OperativeTempC     float64
	AirTempC           float64
	SpaceHeatDemandKWh float64
	SpaceCoolDemandKWh float64
	SpaceHeatDeliveredKWh float64
	SpaceCoolDeliveredKWh float64
	SpaceHeatFuelKWh      float64
	SpaceCoolFuelKWh      float64

	// Balance is non-nil only when Project.HeatBalance is set, per spec
	// §6's optional heat-balance detail CSVs.
	Balance *ZoneBalance

	// Detail is non-nil only when Project.DetailedOutput is set.
	Detail *HVACDetail
}

// HVACDetail is the per-timestep operating-state snapshot behind the
// optional ventilation/emitter/storage-heater detail CSVs of spec §6.
// HasEmitter/HasStorageHeater report which of the system-specific field
// groups are populated for this zone.
type HVACDetail struct {
	PZRefPa  float64
	ACH      float64
	HVeWPerK float64

	HasEmitter         bool
	EmitterFlowTempC   float64
	EmitterReturnTempC float64
	EmitterTempC       float64
	HeatSourceMaxKWh   float64

	HasStorageHeater      bool
	StorageSOC            float64
	StorageChargedKWh     float64
	StorageInstantKWh     float64
	StorageTargetFraction float64
}

// SupplyTimestepResult mirrors energysupply.Supply's last-settled
// breakdown for the output writer.
type SupplyTimestepResult struct {
	FuelName      string
	TotalDemandKWh float64
	TotalGenerationKWh float64
	SelfConsumedKWh float64
	ToStorageKWh   float64
	ToDiverterKWh  float64
	ImportKWh      float64
	ExportKWh      float64
	BatterySOC     float64 // -1 when the supply has no battery
	DemandByEndUser map[string]float64
}

// Run advances the simulation over every timestep in p.Clock, returning
// one TimestepResult per step. Fatal errors (solver non-convergence,
// physical-constraint violations) abort the run immediately, matching
// spec §7's propagation policy: "there is no partial-result recovery
// inside a timestep."
func (p *Project) Run() ([]TimestepResult, error) {
	n := p.Clock.NumSteps()
	results := make([]TimestepResult, 0, n)
	for t := 0; t < n; t++ {
		r, err := p.step(t)
		if err != nil {
			return results, fmt.Errorf("hem: timestep %d: %w", t, err)
		}
		results = append(results, r)
		if p.DisplayProgress && p.Logger != nil && t%100 == 0 {
			p.Logger.WithFields(logrus.Fields{"timestep": t, "of": n}).Info("hem: progress")
		}
	}
	return results, nil
}

// step executes the fixed per-timestep sequence of spec §5 for every
// zone, then settles every energy supply's ledger.
func (p *Project) step(t int) (TimestepResult, error) {
	dt := p.Clock.StepHours
	extTempC := p.Weather.AirTemp(t)

	res := TimestepResult{Timestep: t, SupplyResults: make(map[string]SupplyTimestepResult)}

	if p.HotWater != nil {
		internalAmbientC := extTempC
		if len(p.Zones) > 0 {
			internalAmbientC = p.Zones[0].Zone.AirTempC()
		}
		res.HotWater = p.HotWater.Step(p.Clock.HourOfStep(t), dt, internalAmbientC, extTempC)
	}

	p.stepPV(t, extTempC)
	p.stepSmartAppliances(t)

	for _, zr := range p.Zones {
		zres, err := p.stepZone(zr, t, dt, extTempC)
		if err != nil {
			return res, err
		}
		res.ZoneResults = append(res.ZoneResults, zres)
	}

	for name, s := range p.Supplies {
		if err := s.Settle(dt); err != nil {
			return res, fmt.Errorf("hem: energy supply %q: %w", name, err)
		}
		batterySOC := -1.0
		if s.Battery != nil {
			batterySOC = s.Battery.SOC
		}
		res.SupplyResults[name] = SupplyTimestepResult{
			FuelName:           name,
			TotalDemandKWh:     s.LastSelfConsumedKWh + s.LastImportKWh,
			TotalGenerationKWh: s.LastSelfConsumedKWh + s.LastToStorageKWh + s.LastToDiverterKWh + s.LastExportKWh,
			SelfConsumedKWh:    s.LastSelfConsumedKWh,
			ToStorageKWh:       s.LastToStorageKWh,
			ToDiverterKWh:      s.LastToDiverterKWh,
			ImportKWh:          s.LastImportKWh,
			ExportKWh:          s.LastExportKWh,
			BatterySOC:         batterySOC,
			DemandByEndUser:    s.LastDemandByEndUser,
		}
	}
	return res, nil
}

// stepZone implements the per-zone portion of spec §5's sequence:
// ventilation solve, free-float demand, HVAC dispatch, and the final
// committed zone-state update (spec §2 step 7).
func (p *Project) stepZone(zr *ZoneRun, t int, dt, extTempC float64) (ZoneTimestepResult, error) {
	z := zr.Zone

	vent, err := p.solveVentilation(zr, t, extTempC)
	if err != nil {
		return ZoneTimestepResult{}, err
	}
	hVePerK := vent.HVeWPerK
	zr.sumHVePerK += hVePerK
	zr.countHVeSamples++

	internalGainsW := 0.0
	if zr.InternalGainsW != nil {
		internalGainsW = zr.InternalGainsW(t)
	}
	solarGainsW, totalSolarW := p.solveSolarGains(zr, t)

	const convFrac = 0.4 // internal/HVAC gain convective split, per spec §4.D
	groundOtherSide := p.groundOtherSideFunc(z, p.Clock.Month(t), extTempC)

	vent, err = p.ventilativeCoolingPotential(zr, t, extTempC, dt, vent, internalGainsW, convFrac, solarGainsW, groundOtherSide)
	if err != nil {
		return ZoneTimestepResult{}, err
	}
	hVePerK = vent.HVeWPerK

	demand, err := z.SpaceHeatCoolDemand(extTempC, dt, hVePerK, internalGainsW, convFrac, solarGainsW, groundOtherSide, p.UseFastSolver)
	if err != nil {
		return ZoneTimestepResult{}, err
	}
	demand.AchCooling = vent.ACH

	var deliveredHeatKWh, deliveredCoolKWh, heatFuelKWh, coolFuelKWh float64
	roomTempC := z.SetpointTempC()
	// The heat system is dispatched every timestep, demand or not: the
	// storage heater charges during its control window and sheds its
	// case loss, and the emitter circuit cools toward room temperature.
	switch {
	case zr.StorageHeater != nil:
		deliveredHeatKWh, heatFuelKWh, err = zr.StorageHeater.Deliver(demand.SpaceHeatDemandKWh, roomTempC, dt, t)
	case zr.HeatSystem != nil:
		deliveredHeatKWh, heatFuelKWh, err = zr.HeatSystem.Deliver(demand.SpaceHeatDemandKWh, roomTempC, dt)
	}
	if err != nil {
		return ZoneTimestepResult{}, err
	}
	if demand.SpaceCoolDemandKWh < 0 && zr.CoolSystem != nil {
		delivered, fuel, cerr := zr.CoolSystem.Deliver(-demand.SpaceCoolDemandKWh, roomTempC, dt)
		if cerr != nil {
			return ZoneTimestepResult{}, cerr
		}
		deliveredCoolKWh = -delivered
		coolFuelKWh = fuel
	}

	deliveredW := deliveredHeatKWh*1000/dt + deliveredCoolKWh*1000/dt

	var prevTemps []float64
	if p.HeatBalance {
		prevTemps = append([]float64(nil), z.Temperatures...)
	}
	if err := z.CommitDemand(extTempC, dt, hVePerK, internalGainsW, convFrac, solarGainsW, deliveredW, convFrac, groundOtherSide, p.UseFastSolver); err != nil {
		return ZoneTimestepResult{}, err
	}

	var balance *ZoneBalance
	if p.HeatBalance {
		gains := Gains{
			InternalGainsW:   internalGainsW,
			InternalConvFrac: convFrac,
			SolarGainsW:      solarGainsW,
			HVACGainW:        deliveredW,
			HVACConvFrac:     convFrac,
		}
		b := z.ComputeZoneBalance(prevTemps, extTempC, dt, hVePerK, gains, groundOtherSide)
		balance = &b
	}

	var detail *HVACDetail
	if p.DetailedOutput {
		d := &HVACDetail{PZRefPa: vent.PZRefPa, ACH: vent.ACH, HVeWPerK: hVePerK}
		if es, ok := zr.HeatSystem.(*EmitterSystem); ok && es.Circuit != nil {
			d.HasEmitter = true
			d.EmitterFlowTempC = es.LastFlowTempC
			d.EmitterReturnTempC = es.LastReturnTempC
			d.EmitterTempC = es.LastEmitterTempC
			d.HeatSourceMaxKWh = es.LastSourceMaxKWh
		}
		if sh := zr.StorageHeater; sh != nil && sh.Heater != nil {
			d.HasStorageHeater = true
			d.StorageSOC = sh.Heater.SOC
			d.StorageChargedKWh = sh.LastChargedKWh
			d.StorageInstantKWh = sh.LastInstantKWh
			d.StorageTargetFraction = sh.LastTargetFraction
		}
		detail = d
	}

	return ZoneTimestepResult{
		ZoneName:              z.Name,
		InternalGainsW:        internalGainsW,
		SolarGainsW:           totalSolarW,
		OperativeTempC:        z.OperativeTempC(),
		AirTempC:              z.AirTempC(),
		SpaceHeatDemandKWh:    demand.SpaceHeatDemandKWh,
		SpaceCoolDemandKWh:    demand.SpaceCoolDemandKWh,
		Balance:               balance,
		Detail:                detail,
		SpaceHeatDeliveredKWh: deliveredHeatKWh,
		SpaceCoolDeliveredKWh: deliveredCoolKWh,
		SpaceHeatFuelKWh:      heatFuelKWh,
		SpaceCoolFuelKWh:      coolFuelKWh,
	}, nil
}

// groundOtherSideFunc returns the "other side" temperature function
// BuildSystem needs for ground and adjacent-unconditioned elements.
// Ground elements use the monthly virtual ground temperature of spec
// §4.D, computed from the element's stored floor construction and the
// weather's monthly/annual aggregates; elements with no ground-floor
// detail (AdjacentUnconditioned-simple, whose Ru is already folded into
// the exterior coefficient) fall back to the external air temperature.
func (p *Project) groundOtherSideFunc(z *Zone, month int, extTempC float64) func(int) float64 {
	return func(elementIdx int) float64 {
		e := z.Elements[elementIdx]
		if e.Other != elements.Ground || e.GroundFloor == nil || p.Weather == nil {
			return extTempC
		}
		g := e.GroundFloor
		hPi, hPe, err := g.PeriodicCoefficients(p.Clock.StepHours, e.Area)
		if err != nil {
			return extTempC
		}
		tv, err := elements.VirtualGroundTemperature(month, g.UValue, e.Area, g.Perimeter, g.Psi, hPi, hPe, p.Weather.AirTempAnnualAverage, p.Weather.AirTempMonthlyAverage)
		if err != nil {
			return extTempC
		}
		return tv
	}
}

// ventSolution is the outcome of one airflow pressure-network solve:
// the ventilation heat-transfer coefficient h_ve fed into the zone's
// air-node heat balance, the resulting air-change rate, and the solved
// internal reference pressure.
type ventSolution struct {
	HVeWPerK float64
	ACH      float64
	PZRefPa  float64
}

// ventContext assembles the ambient state and site-wind-speed lookup
// shared by every airflow network solve at this timestep.
func (p *Project) ventContext(zr *ZoneRun, t int, extTempC float64) (ventilation.AmbientState, func(*ventilation.Path) float64) {
	windSpeed := p.Weather.WindSpeed(t)
	ambient := ventilation.AmbientState{
		ExtTempK:  extTempC + 273.15,
		ZoneTempK: zr.Zone.AirTempC() + 273.15,
		WindSpeed: windSpeed,
		WindDir:   p.Weather.WindDirection(t),
		AltitudeM: zr.AltitudeM,
		RhoRef:    elements.AirDensity(zr.AltitudeM),
	}
	uSiteOf := func(path *ventilation.Path) float64 {
		return ventilation.SiteWindSpeed(windSpeed, zr.Terrain, zr.BuildingHeightM*0.5+path.MidHeightM)
	}
	return ambient, uSiteOf
}

// solveNetwork root-solves the internal reference pressure and derives
// h_ve and ACH at the network's current opening state.
func (p *Project) solveNetwork(zr *ZoneRun, ambient ventilation.AmbientState, uSiteOf func(*ventilation.Path) float64) (ventSolution, error) {
	f := func(pz float64) float64 {
		return zr.Network.NetMassFlow(ambient, pz, uSiteOf)
	}
	pZRef, serr := ventilation.SolvePZRef(0, f)
	if serr != nil {
		return ventSolution{}, &SolverFailure{Solver: "ventilation pressure balance", Context: serr.Error()}
	}
	var inflow float64
	ambient.PZRef = pZRef
	for _, path := range zr.Network.Paths {
		dp := path.DeltaP(ambient, uSiteOf(path))
		qm := path.MassFlow(dp)
		if qm > 0 {
			inflow += qm
		}
		inflow -= path.EffectiveExternalFlow()
	}
	sol := ventSolution{PZRefPa: pZRef}
	sol.HVeWPerK = ambient.RhoRef * elements.AirSpecificHeatCapacity * inflow
	if zr.Zone.VolumeM3 > 0 {
		sol.ACH = inflow * 3600 / (ambient.RhoRef * zr.Zone.VolumeM3)
	}
	return sol, nil
}

// solveVentilation resolves the airflow pressure network for the zone
// at the given timestep, per spec §4.C/§4.D.
func (p *Project) solveVentilation(zr *ZoneRun, t int, extTempC float64) (ventSolution, error) {
	if zr.Network == nil || len(zr.Network.Paths) == 0 {
		return ventSolution{}, nil
	}
	ambient, uSiteOf := p.ventContext(zr, t, extTempC)
	sol, err := p.solveNetwork(zr, ambient, uSiteOf)
	if err != nil {
		return ventSolution{}, err
	}

	// Outer vent-opening optimisation, per spec §4.C: when the resolved
	// ACH falls outside the [ach_min, ach_max] band, adjust the opening
	// ratio of every vent path to hit the violated bound.
	if zr.AchMax > 0 && (sol.ACH < zr.AchMin || sol.ACH > zr.AchMax) {
		setVentOpening := func(rv float64) {
			for _, path := range zr.Network.Paths {
				if path.Kind == ventilation.KindVent {
					path.OpeningRatio = rv
				}
			}
		}
		var achErr error
		achOf := func(rv float64) float64 {
			setVentOpening(rv)
			s, err2 := p.solveNetwork(zr, ambient, uSiteOf)
			if err2 != nil {
				achErr = err2
				return sol.ACH
			}
			return s.ACH
		}
		rv, _, oerr := ventilation.OptimiseVentOpening(ventilation.ACHTarget{Min: zr.AchMin, Max: zr.AchMax}, achOf)
		if achErr != nil {
			return ventSolution{}, achErr
		}
		if oerr != nil {
			return ventSolution{}, &SolverFailure{Solver: "vent-opening optimiser", Context: oerr.Error()}
		}
		setVentOpening(rv)
		if sol, err = p.solveNetwork(zr, ambient, uSiteOf); err != nil {
			return ventSolution{}, err
		}
	}
	return sol, nil
}

// ventilativeCoolingPotential implements spec §4.D step 2: when the
// free-floating zone temperature exceeds the ventilative-cooling
// setpoint and opening the windows would raise the air-change rate, the
// airflow network is re-solved at maximum window opening and a target
// air-change rate is interpolated to bring the zone back to the
// setpoint. When even fully-open windows leave the zone above the
// active-cooling setpoint, the baseline ventilation is kept and active
// cooling takes over.
func (p *Project) ventilativeCoolingPotential(zr *ZoneRun, t int, extTempC, dtHours float64, base ventSolution, internalGainsW, convFrac float64, solarGainsW []float64, groundOtherSide func(elementIdx int) float64) (ventSolution, error) {
	z := zr.Zone
	if zr.Network == nil || len(zr.Network.Paths) == 0 || z.TempSetpntCoolVentC <= z.TempSetpntHeatC {
		return base, nil
	}
	opFree, airFree, err := z.FreeFloatTemps(extTempC, dtHours, base.HVeWPerK, internalGainsW, convFrac, solarGainsW, groundOtherSide, p.UseFastSolver)
	if err != nil {
		return base, err
	}
	tempFree := opFree
	if z.SetpointBasis == SetpointBasisAir {
		tempFree = airFree
	}
	if tempFree <= z.TempSetpntCoolVentC {
		return base, nil
	}

	saved := make([]float64, len(zr.Network.Paths))
	for i, path := range zr.Network.Paths {
		saved[i] = path.OpeningRatio
		if path.Kind == ventilation.KindWindow {
			path.OpeningRatio = 1
		}
	}
	ambient, uSiteOf := p.ventContext(zr, t, extTempC)
	open, err := p.solveNetwork(zr, ambient, uSiteOf)
	for i, path := range zr.Network.Paths {
		path.OpeningRatio = saved[i]
	}
	if err != nil {
		return base, err
	}
	if open.ACH <= base.ACH {
		return base, nil
	}

	opOpen, airOpen, err := z.FreeFloatTemps(extTempC, dtHours, open.HVeWPerK, internalGainsW, convFrac, solarGainsW, groundOtherSide, p.UseFastSolver)
	if err != nil {
		return base, err
	}
	tempOpen := opOpen
	if z.SetpointBasis == SetpointBasisAir {
		tempOpen = airOpen
	}
	if tempOpen >= tempFree {
		return base, nil
	}
	if tempOpen > z.TempSetpntCoolVentC {
		// Even fully open, the zone stays above the ventilative-cooling
		// setpoint: adopt full opening unless the free-float temperature
		// still exceeds the active-cooling setpoint, in which case
		// active cooling takes over at the baseline ventilation rate.
		if tempOpen > z.TempSetpntCoolC {
			return base, nil
		}
		return open, nil
	}
	frac := (tempFree - z.TempSetpntCoolVentC) / (tempFree - tempOpen)
	return ventSolution{
		HVeWPerK: base.HVeWPerK + frac*(open.HVeWPerK-base.HVeWPerK),
		ACH:      base.ACH + frac*(open.ACH-base.ACH),
		PZRefPa:  base.PZRefPa,
	}, nil
}

// shadingAdapter adapts a hem.ShadingObject (which stores its fields
// directly) to internal/elements.ShadingObjectLike, whose methods the
// elements package's shading-factor computation expects.
type shadingAdapter struct{ o ShadingObject }

func (s shadingAdapter) Kind() string     { return s.o.Type }
func (s shadingAdapter) Height() float64  { return s.o.Height }
func (s shadingAdapter) Distance() float64 { return s.o.Distance }
func (s shadingAdapter) Depth() float64   { return s.o.Depth }

// solveSolarGains computes each element's absorbed/transmitted solar
// gain, W, for the timestep, returning the per-element slice
// BuildSystem's Gains.SolarGainsW expects plus the zone-wide total (for
// the results writer), per spec §4.D/§3.
func (p *Project) solveSolarGains(zr *ZoneRun, t int) ([]float64, float64) {
	out := make([]float64, len(zr.Zone.Elements))
	if p.Weather == nil || len(p.Weather.AirTemperatures) == 0 {
		return out, 0
	}
	dayOfYear := p.Clock.DayOfYear(t)
	hourOfDay := p.Clock.HourOfDay(t)
	altitude, azimuth := SolarAngles(dayOfYear, hourOfDay, p.Weather.Latitude, p.Weather.Longitude)

	iDir := p.Weather.DirectBeam(t)
	iDif := p.Weather.DiffuseHorizontal(t)

	var total float64
	for i, e := range zr.Zone.Elements {
		if e.Solar == elements.NotExposed || altitude <= 0 {
			continue
		}
		orientation := 0.0
		if zr.Orientations != nil {
			orientation = zr.Orientations[i]
		}
		var shadeObjs []elements.ShadingObjectLike
		if seg := nearestSegment(p.Weather.ShadingSegments, orientation); seg != nil {
			for _, o := range seg.Objects {
				shadeObjs = append(shadeObjs, shadingAdapter{o})
			}
		}
		fSh := elements.ShadingFactor(shadeObjs, altitude, azimuth, orientation)

		var gainW float64
		switch e.Solar {
		case elements.Absorbed:
			gainW = elements.SolarGainOpaque(e.SolarAbsorption, iDir, iDif, fSh, fSh) * e.Area
		case elements.Transmitted:
			gValue := e.GValue
			if e.Treatment != nil {
				e.Treatment.Update(iDir+iDif, p.Clock.StepHours)
				gValue = elements.EffectiveGValue(e.GValue, e.Treatment)
			}
			gainW = elements.SolarGainTransparent(gValue, e.FrameFraction, iDir, iDif, fSh, fSh) * e.Area
		}
		out[i] = gainW
		total += gainW
	}
	return out, total
}

// nearestSegment returns the shading segment whose angular range
// contains orientation; when no segment contains it, the first segment;
// nil if segments is empty.
func nearestSegment(segments []ShadingSegment, orientation float64) *ShadingSegment {
	if len(segments) == 0 {
		return nil
	}
	for i := range segments {
		s := &segments[i]
		if orientation >= s.StartAngle && orientation < s.EndAngle {
			return s
		}
	}
	return &segments[0]
}
