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

package config

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	validatorpkg "github.com/go-playground/validator/v10"

	"github.com/hem-sim/hem"
	"github.com/hem-sim/hem/internal/controls"
	"github.com/hem-sim/hem/internal/elements"
	"github.com/hem-sim/hem/internal/emitter"
	"github.com/hem-sim/hem/internal/energysupply"
	"github.com/hem-sim/hem/internal/hotwater"
	"github.com/hem-sim/hem/internal/storageheater"
	"github.com/hem-sim/hem/internal/ventilation"
)

// Options controls non-default parsing/build behaviour, mirroring the
// CLI flags of spec §6 that affect input handling.
type Options struct {
	UseFastSolver  bool
	ValidateJSON   bool // struct-tag validation diagnostics, "--no-validate-json" disables this
	DisplayProgress bool
	FHSVariant     FHSVariant // FHSNone unless a "--future-homes-standard*" flag was given

	// TariffPrices, when set (from "--tariff-file"), supplies the
	// per-timestep unit-price series any OnOffCostMinimisingTimeControl
	// without inline costs ranks against.
	TariffPrices []float64
}

// Load decodes an input JSON document, validates it, and assembles a
// fully-wired hem.Project. Non-fatal validation diagnostics are
// returned as warnings; any ConfigurationError or PhysicalConstraintError
// aborts the build immediately per spec §7.
func Load(r io.Reader, opts Options) (*hem.Project, []string, error) {
	var doc InputDoc
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("config: decoding input document: %w", err)
	}

	var warnings []string
	if opts.ValidateJSON {
		warnings = append(warnings, structValidationWarnings(&doc)...)
	}
	if opts.FHSVariant != FHSNone {
		label, err := ApplyFHS(&doc, opts.FHSVariant)
		if err != nil {
			return nil, warnings, err
		}
		warnings = append(warnings, fmt.Sprintf("config: applied %s pre-processing pipeline", label))
	}

	b := &builder{doc: &doc, opts: opts}
	proj, err := b.build()
	if err != nil {
		return nil, warnings, err
	}
	warnings = append(warnings, b.warnings...)
	return proj, warnings, nil
}

// structValidationWarnings runs go-playground/validator's struct-tag
// validation over the decoded document, returning each failing field as
// a human-readable warning rather than a fatal error, per spec §6's
// "--no-validate-json" diagnostics.
func structValidationWarnings(doc *InputDoc) []string {
	v := validatorpkg.New()
	err := v.Struct(doc)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validatorpkg.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	warnings := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		warnings = append(warnings, fmt.Sprintf("config: validation: field %q failed %q", fe.Namespace(), fe.Tag()))
	}
	return warnings
}

// builder carries the intermediate state needed across the several
// build passes (controls before zones, energy supplies before HVAC,
// etc.), per the cross-reference structure spec §6 describes.
type builder struct {
	doc  *InputDoc
	opts Options

	warnings []string

	controls  map[string]controls.Control
	supplies  map[string]*energysupply.Supply
	heatSourcesWet map[string]emitter.HeatSourceWet
	wwhrs     map[string]*hotwater.WWHRS
	coldWater map[string]ColdWaterDoc
	pvGenerators []*hem.PVGenerator
}

func (b *builder) build() (*hem.Project, error) {
	clock, err := hem.NewClock(b.doc.SimulationTime.Start, b.doc.SimulationTime.End, b.doc.SimulationTime.Step)
	if err != nil {
		return nil, err
	}

	b.coldWater = b.doc.ColdWaterSource

	if err := b.buildEnergySupplies(); err != nil {
		return nil, err
	}
	if err := b.buildControls(); err != nil {
		return nil, err
	}
	if err := b.buildHeatSourcesWet(); err != nil {
		return nil, err
	}
	b.buildWWHRS()
	if err := b.buildOnSiteGeneration(); err != nil {
		return nil, err
	}

	var weather *hem.ExternalConditions
	if b.doc.ExternalConditions != nil {
		weather = buildExternalConditions(b.doc.ExternalConditions)
	}

	zones, err := b.buildZones(clock)
	if err != nil {
		return nil, err
	}

	hw, err := b.buildHotWater(clock)
	if err != nil {
		return nil, err
	}

	smart, err := b.buildSmartAppliances()
	if err != nil {
		return nil, err
	}

	return &hem.Project{
		Clock:           clock,
		Weather:         weather,
		Zones:           zones,
		Supplies:        b.supplies,
		HotWater:        hw,
		SmartAppliances: smart,
		UseFastSolver:   b.opts.UseFastSolver,
		DisplayProgress: b.opts.DisplayProgress,
	}, nil
}

// buildSmartAppliances constructs every SmartApplianceControls entry,
// checking that its EnergySupply reference resolves to a built supply.
// Entries are assembled in sorted-name order so run-to-run behaviour is
// deterministic.
func (b *builder) buildSmartAppliances() ([]*controls.SmartApplianceControl, error) {
	if len(b.doc.SmartApplianceControls) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(b.doc.SmartApplianceControls))
	for name := range b.doc.SmartApplianceControls {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*controls.SmartApplianceControl, 0, len(names))
	for _, name := range names {
		d := b.doc.SmartApplianceControls[name]
		if _, ok := b.supplies[d.EnergySupply]; !ok {
			return nil, &hem.ConfigurationError{
				Field: "SmartApplianceControls." + name + ".EnergySupply",
				Msg:   fmt.Sprintf("references undefined energy supply %q", d.EnergySupply),
			}
		}
		out = append(out, &controls.SmartApplianceControl{
			NameStr: name,
			PowerKW: d.PowerKW,
			Supply:  d.EnergySupply,
		})
	}
	return out, nil
}

func buildExternalConditions(d *ExternalConditionsDoc) *hem.ExternalConditions {
	ec := &hem.ExternalConditions{
		AirTemperatures:            d.AirTemperatures,
		WindSpeeds:                 d.WindSpeeds,
		WindDirections:             d.WindDirections,
		DirectBeamRadiation:        d.DirectBeamRadiation,
		DiffuseHorizontalRadiation: d.DiffuseHorizontalRadiation,
		SolarReflectivityOfGround:  d.SolarReflectivityOfGround,
		Latitude:                   d.Latitude,
		Longitude:                  d.Longitude,
		DirectBeamConversionNeeded: d.DirectBeamConversionNeeded,
	}
	for _, seg := range d.ShadingSegments {
		s := hem.ShadingSegment{StartAngle: seg.StartAngle, EndAngle: seg.EndAngle}
		for _, o := range seg.Shading {
			s.Objects = append(s.Objects, hem.ShadingObject{
				Type: o.Type, Height: o.Height, Distance: o.Distance, Tilt: o.Tilt, Depth: o.Depth,
			})
		}
		ec.ShadingSegments = append(ec.ShadingSegments, s)
	}
	var sum float64
	for _, t := range d.AirTemperatures {
		sum += t
	}
	if len(d.AirTemperatures) > 0 {
		ec.AirTempAnnualAverage = sum / float64(len(d.AirTemperatures))
	}
	return ec
}

// buildEnergySupplies constructs every EnergySupply entry's ledger,
// battery, and diverter, per spec §6/§4.H. Diverter target wiring
// (connecting the diverter's DemandKWh source) happens later, when the
// target end-user (e.g. an immersion heater) is built.
func (b *builder) buildEnergySupplies() error {
	b.supplies = make(map[string]*energysupply.Supply, len(b.doc.EnergySupply))
	for name, d := range b.doc.EnergySupply {
		fuel, err := energysupply.ParseFuelType(d.FuelCode)
		if err != nil {
			return &hem.ConfigurationError{Field: "EnergySupply." + name + ".fuel", Msg: err.Error()}
		}
		s := energysupply.NewSupply(name, fuel)
		s.IsExportCapable = d.IsExportCapable
		s.Priority = d.Priority
		if d.ElectricBattery != nil {
			loc := energysupply.BatteryLocationIndoor
			if d.ElectricBattery.Location == "outdoor" {
				loc = energysupply.BatteryLocationOutdoor
			}
			s.Battery = &energysupply.Battery{
				CapacityKWh:         d.ElectricBattery.CapacityKWh,
				RoundTripEfficiency: d.ElectricBattery.RoundTripEfficiency,
				MaxChargeRateKW:     d.ElectricBattery.MaxChargeRateKW,
				MaxDischargeRateKW:  d.ElectricBattery.MaxDischargeRateKW,
				AgeYears:            d.ElectricBattery.AgeYears,
				Location:            loc,
			}
		}
		if d.Diverter != nil {
			div := &energysupply.Diverter{MaxPowerKW: d.Diverter.MaxPowerKW}
			if err := s.ConnectDiverter(div); err != nil {
				return &hem.ConfigurationError{Field: "EnergySupply." + name + ".diverter", Msg: err.Error()}
			}
		}
		b.supplies[name] = s
	}
	return nil
}

// buildControls resolves the named Control map (spec §6) in dependency
// order: leaf controls first, then CombinationTimeControl sub-nodes,
// iterating until every entry resolves or no further progress is made
// (a cyclic or dangling reference is a fatal ConfigurationError).
func (b *builder) buildControls() error {
	b.controls = make(map[string]controls.Control, len(b.doc.Control))

	type pending struct {
		parentName string
		subName    string
		entry      CombinationEntryDoc
	}
	var pendingCombos []pending

	for name, d := range b.doc.Control {
		switch d.Type {
		case "OnOffTimeControl":
			b.controls[name] = &controls.OnOffTimeControl{NameStr: name, Schedule: d.Schedule}
		case "OnOffCostMinimisingTimeControl":
			costs := d.Costs
			if len(costs) == 0 {
				costs = b.opts.TariffPrices
			}
			if len(costs) == 0 {
				return &hem.ConfigurationError{Field: "Control." + name + ".Costs", Msg: "no inline costs and no tariff file supplied"}
			}
			b.controls[name] = &controls.OnOffCostMinimisingTimeControl{NameStr: name, Costs: costs, NumOnHours: d.NumOnHours}
		case "SetpointTimeControl":
			b.controls[name] = &controls.SetpointTimeControl{NameStr: name, Setpoints: d.Setpoints, AdvancedStart: d.AdvancedStart}
		case "ChargeControl":
			logic, err := parseChargeLogic(d.LogicType)
			if err != nil {
				return &hem.ConfigurationError{Field: "Control." + name + ".logic_type", Msg: err.Error()}
			}
			cc := &controls.ChargeControl{
				NameStr:       name,
				ChargeWindow:  d.ChargeWindow,
				Logic:         logic,
				FixedFraction: d.FixedFraction,
				TempCutC:      d.TempCutC,
			}
			if d.ExternalSensorControl != "" {
				cc.ExternalSensorTemp = func(timestep int) float64 { return 0 }
			}
			if err := cc.Validate(); err != nil {
				return &hem.ConfigurationError{Field: "Control." + name, Msg: err.Error()}
			}
			b.controls[name] = cc
		case "CombinationTimeControl":
			for subName, entry := range d.Combination {
				pendingCombos = append(pendingCombos, pending{parentName: name, subName: subName, entry: entry})
			}
		default:
			return &hem.ConfigurationError{Field: "Control." + name + ".type", Msg: "unrecognised control type " + d.Type}
		}
	}

	for progress := true; len(pendingCombos) > 0 && progress; {
		progress = false
		var remaining []pending
		for _, p := range pendingCombos {
			op, err := parseCombinationOp(p.entry.Operation)
			if err != nil {
				return &hem.ConfigurationError{Field: fmt.Sprintf("Control.%s.combination.%s.operation", p.parentName, p.subName), Msg: err.Error()}
			}
			operands := make([]controls.Control, 0, len(p.entry.Controls))
			ready := true
			for _, ref := range p.entry.Controls {
				c, ok := b.controls[ref]
				if !ok {
					ready = false
					break
				}
				operands = append(operands, c)
			}
			if !ready {
				remaining = append(remaining, p)
				continue
			}
			comb := &controls.CombinationTimeControl{NameStr: p.subName, Op: op, Operands: operands}
			if err := comb.Validate(); err != nil {
				return &hem.ConfigurationError{Field: fmt.Sprintf("Control.%s.combination.%s", p.parentName, p.subName), Msg: err.Error()}
			}
			b.controls[p.subName] = comb
			if p.subName == "main" {
				b.controls[p.parentName] = comb
			}
			progress = true
		}
		pendingCombos = remaining
	}
	if len(pendingCombos) > 0 {
		return &hem.ConfigurationError{Field: "Control", Msg: "combination control tree has unresolved or cyclic references"}
	}
	return nil
}

func parseChargeLogic(s string) (controls.ChargeLogicKind, error) {
	switch s {
	case "Manual", "":
		return controls.ChargeLogicManual, nil
	case "Automatic":
		return controls.ChargeLogicAutomatic, nil
	case "CELECT":
		return controls.ChargeLogicCelect, nil
	case "HHRSH":
		return controls.ChargeLogicHHRSH, nil
	case "HB":
		return controls.ChargeLogicHeatBattery, nil
	default:
		return 0, fmt.Errorf("unrecognised logic_type %q", s)
	}
}

func parseCombinationOp(s string) (controls.CombinationOp, error) {
	switch s {
	case "AND":
		return controls.OpAnd, nil
	case "OR":
		return controls.OpOr, nil
	case "XOR":
		return controls.OpXor, nil
	case "NOT":
		return controls.OpNot, nil
	case "MAX":
		return controls.OpMax, nil
	case "MIN":
		return controls.OpMin, nil
	case "MEAN":
		return controls.OpMean, nil
	default:
		return 0, fmt.Errorf("unrecognised operation %q", s)
	}
}

// buildHeatSourcesWet constructs the named HeatSourceWet map, per spec §6.
func (b *builder) buildHeatSourcesWet() error {
	b.heatSourcesWet = make(map[string]emitter.HeatSourceWet, len(b.doc.HeatSourceWet))
	for name, d := range b.doc.HeatSourceWet {
		switch d.Type {
		case "Boilder": // original spelling retained for input compatibility
			b.heatSourcesWet[name] = &emitter.SimpleBoiler{
				NameStr:      name,
				RatedPowerKW: d.RatedPowerKW,
				EfficiencyFunc: func(flowTempC float64) float64 {
					if d.EfficiencyFullLoad > 0 {
						return d.EfficiencyFullLoad
					}
					return 0.9
				},
			}
		case "HeatPump":
			b.heatSourcesWet[name] = &emitter.SimpleHeatPump{
				NameStr:      name,
				RatedPowerKW: d.RatedPowerKW,
				COP: func(flowTempC, sourceTempC float64) float64 {
					delta := flowTempC - sourceTempC
					if delta < 1 {
						delta = 1
					}
					return 300 / delta / 7.0 // Carnot-derived approximation scaled to a typical seasonal COP
				},
			}
		case "HIU":
			b.heatSourcesWet[name] = &emitter.HIU{NameStr: name, RatedPowerKW: d.RatedPowerKW}
		default:
			return &hem.ConfigurationError{Field: "HeatSourceWet." + name + ".type", Msg: "unrecognised heat source type " + d.Type}
		}
	}
	return nil
}

func (b *builder) buildWWHRS() {
	b.wwhrs = make(map[string]*hotwater.WWHRS, len(b.doc.WWHRS))
	for name, d := range b.doc.WWHRS {
		topology := hotwater.WWHRSTypeA
		switch d.Type {
		case "WWHRS_InstantaneousSystemB":
			topology = hotwater.WWHRSTypeB
		case "WWHRS_InstantaneousSystemC":
			topology = hotwater.WWHRSTypeC
		}
		b.wwhrs[name] = &hotwater.WWHRS{
			Topology:        topology,
			FlowRateLPerMin: d.FlowRateLPerMin,
			Efficiency:      d.Efficiency,
			SplitFactor:     d.SplitFactor,
		}
	}
}

// buildOnSiteGeneration constructs each PV array and its supply
// connection. The per-timestep production itself is computed by the
// project orchestrator (Project.stepPV), since that needs the
// timestep's irradiance, which isn't available during the build pass.
func (b *builder) buildOnSiteGeneration() error {
	for name, d := range b.doc.OnSiteGeneration {
		supply, ok := b.supplies[d.EnergySupply]
		if !ok {
			return &hem.ConfigurationError{Field: "OnSiteGeneration." + name + ".EnergySupply", Msg: "references undefined EnergySupply " + d.EnergySupply}
		}
		conn, err := supply.Connect(name)
		if err != nil {
			return &hem.ConfigurationError{Field: "OnSiteGeneration." + name, Msg: err.Error()}
		}
		b.pvGenerators = append(b.pvGenerators, &hem.PVGenerator{
			PV: &energysupply.PVSystem{
				PeakPowerKW:          d.PeakPowerKW,
				SystemEfficiency:     d.SystemEfficiency,
				TemperatureCoeffPerK: d.TemperatureCoeffPerK,
			},
			Conn: conn,
		})
	}
	return nil
}

// buildZones constructs every named Zone and its ventilation network,
// space-heat/space-cool delivery systems, per spec §3/§4.
func (b *builder) buildZones(clock *hem.Clock) ([]*hem.ZoneRun, error) {
	names := sortedKeys(b.doc.Zone)
	zones := make([]*hem.ZoneRun, 0, len(names))
	for _, name := range names {
		zd := b.doc.Zone[name]

		z := &hem.Zone{
			Name:               name,
			ThermalBridgeWPerK: zd.ThermalBridging,
			FloorAreaM2:        zd.AreaM2,
			VolumeM3:           zd.VolumeM3,
			TempSetpntHeatC:    19,
			TempSetpntCoolVentC: 24,
			TempSetpntCoolC:    26,
		}
		if zd.TempSetpntBasis == "air" {
			z.SetpointBasis = hem.SetpointBasisAir
		}

		orientations := make(map[int]float64)
		elemNames := sortedKeys(zd.BuildingElements)
		for i, en := range elemNames {
			ed := zd.BuildingElements[en]
			el, err := buildElement(en, ed)
			if err != nil {
				return nil, err
			}
			if el.GroundFloor != nil && el.GroundFloor.EdgeInsulationIgnored {
				b.warnings = append(b.warnings, fmt.Sprintf("config: Zone.%s.BuildingElements.%s: edge_insulation is ignored for slab_no_edge_insulation floors", name, en))
			}
			z.Elements = append(z.Elements, el)
			orientations[i] = ed.Orientation
		}
		if err := z.Validate(); err != nil {
			return nil, err
		}

		initTempC := zd.TempSetpntInitC
		if initTempC == 0 {
			initTempC = z.TempSetpntHeatC
		}
		groundOtherSide := func(elementIdx int) float64 { return 10 }
		if err := z.SteadyStateInitialise(10, initTempC, groundOtherSide); err != nil {
			return nil, err
		}

		network, terrain, shield, crossVent, altitude, err := b.buildVentilationNetwork()
		if err != nil {
			return nil, err
		}

		zr := &hem.ZoneRun{
			Zone:              z,
			Network:           network,
			Terrain:           terrain,
			Shield:            shield,
			CrossVentPossible: crossVent,
			AltitudeM:         altitude,
			BuildingHeightM:   zd.BuildingHeightM,
			AchMin:            0,
			AchMax:            0,
			Orientations:      orientations,
		}
		if b.doc.InfiltrationVentilation != nil {
			zr.AchMin = b.doc.InfiltrationVentilation.AchMin
			zr.AchMax = b.doc.InfiltrationVentilation.AchMax
		}

		if err := b.wireSpaceSystems(zr, zd); err != nil {
			return nil, err
		}

		zones = append(zones, zr)
	}
	return zones, nil
}

func buildElement(name string, ed BuildingElementDoc) (*elements.Element, error) {
	layers := make([]elements.Layer, len(ed.Layers))
	for i, l := range ed.Layers {
		layers[i] = elements.Layer{ThicknessM: l.ThicknessM, ConductivityWPerMK: l.Conductivity, VolumetricCapacityJPerM3K: l.VolCapacity}
	}
	switch ed.ElementType {
	case "BuildingElementOpaque":
		el := elements.NewOpaqueExterior(name, ed.AreaM2, ed.Pitch, ed.SolarAbsorption, layers)
		el.Orientation = ed.Orientation
		return el, nil
	case "BuildingElementTransparent":
		el := elements.NewTransparent(name, ed.AreaM2, ed.Pitch, ed.GValue, ed.FrameFraction, nil)
		el.Orientation = ed.Orientation
		return el, nil
	case "BuildingElementAdjacentConditionedSpace":
		el := elements.NewAdjacentConditioned(name, ed.AreaM2, ed.Pitch, layers)
		el.Orientation = ed.Orientation
		return el, nil
	case "BuildingElementAdjacentUnconditionedSpace_Simple":
		el := elements.NewAdjacentUnconditioned(name, ed.AreaM2, ed.Pitch, ed.AdditionalResistance, layers)
		el.Orientation = ed.Orientation
		return el, nil
	case "BuildingElementGround":
		floor, err := buildGroundFloor(ed)
		if err != nil {
			return nil, &hem.ConfigurationError{Field: "Zone.BuildingElements." + name, Msg: err.Error()}
		}
		el, err := elements.NewGround(name, ed.AreaM2, ed.Pitch, floor, layers)
		if err != nil {
			return nil, &hem.ConfigurationError{Field: "Zone.BuildingElements." + name, Msg: err.Error()}
		}
		el.Orientation = ed.Orientation
		return el, nil
	default:
		return nil, &hem.ConfigurationError{Field: "Zone.BuildingElements." + name + ".type", Msg: "unrecognised element type " + ed.ElementType}
	}
}

func buildGroundFloor(ed BuildingElementDoc) (*elements.GroundFloor, error) {
	var subtype elements.FloorSubtype
	switch ed.FloorType {
	case "slab_edge_insulation":
		subtype = elements.SlabEdgeInsulation
	case "suspended_floor":
		subtype = elements.SuspendedFloor
	case "heated_basement":
		subtype = elements.HeatedBasement
	case "unheated_basement":
		subtype = elements.UnheatedBasement
	default:
		subtype = elements.SlabNoEdgeInsulation
	}
	floor := &elements.GroundFloor{
		Subtype:              subtype,
		UValue:                ed.UValue,
		Perimeter:             ed.Perimeter,
		Psi:                   ed.Psi,
		WallThickness:         ed.WallThicknessM,
		WallUValue:            ed.WallUValue,
		VentAreaPerPerimeter:  ed.VentAreaPerPerimeter,
		WindShieldClass:       ed.WindShieldClass,
		BasementDepth:         ed.BasementDepthM,
		BasementWallResistance: ed.BasementWallResistance,
		BasementHeight:        ed.BasementHeightM,
		FloorAboveUValue:      ed.FloorAboveUValue,
	}
	for _, e := range ed.EdgeInsulation {
		floor.EdgeInsulation = append(floor.EdgeInsulation, elements.EdgeInsulationSpec{
			Horizontal: e.Horizontal, WidthOrDepth: e.WidthOrDepth, R: e.R,
		})
	}
	return floor, nil
}

// buildVentilationNetwork assembles the dwelling's single pressure-
// balance network (shared across every zone, since spec §6's
// InfiltrationVentilation section is not zone-keyed) from leaks, vents,
// mechanical ventilation, and combustion appliances.
func (b *builder) buildVentilationNetwork() (*ventilation.Network, ventilation.TerrainClass, ventilation.ShieldClass, bool, float64, error) {
	iv := b.doc.InfiltrationVentilation
	if iv == nil {
		return &ventilation.Network{}, ventilation.TerrainSuburban, ventilation.ShieldAverage, false, 0, nil
	}
	terrain := parseTerrainClass(iv.TerrainClass)
	shield := parseShieldClass(iv.ShieldClass)

	var paths []*ventilation.Path
	if iv.Leaks != nil {
		test := ventilation.LeakTest{
			TestPressurePa: iv.Leaks.TestPressurePa,
			TestResult:     iv.Leaks.TestResult,
			EnvelopeArea:   iv.Leaks.EnvArea,
			ZoneHeight:     iv.Leaks.VentilationZoneHeight,
		}
		paths = append(paths, ventilation.BuildLeakPaths(test, iv.Leaks.VentilationZoneHeight)...)
	}

	cpLookup := func(midHeight, orientation float64) float64 {
		band := heightBand(midHeight, iv.VentilationZoneBaseHeightM)
		return ventilation.WindPressureCoefficient(iv.CrossVentPossible, shield, band, orientation, 0)
	}
	for _, name := range sortedKeys(iv.Vents) {
		v := iv.Vents[name]
		w := &ventilation.Window{
			Name: name, BaseHeightM: v.MidHeightM, TotalHeightM: 0.01,
			NDiv: 1, EquivArea: v.EquivAreaCm2 / 10000, Orientation: v.Orientation, OpeningRatio: v.OpeningRatio,
		}
		paths = append(paths, w.Parts(cpLookup)...)
	}
	for _, name := range sortedKeys(iv.MechanicalVentilation) {
		m := iv.MechanicalVentilation[name]
		kind, err := parseMechanicalKind(m.Type)
		if err != nil {
			return nil, 0, 0, false, 0, &hem.ConfigurationError{Field: "InfiltrationVentilation.MechanicalVentilation." + name, Msg: err.Error()}
		}
		paths = append(paths, ventilation.NewMechanicalPath(name, kind, m.SupplyFlowM3PerH/3600*1.2, m.ExtractFlowM3PerH/3600*1.2, m.MVHREfficiency))
	}
	for _, name := range sortedKeys(iv.CombustionAppliances) {
		c := iv.CombustionAppliances[name]
		fuel, apType, err := parseCombustion(c.Fuel, c.ApplianceType)
		if err != nil {
			return nil, 0, 0, false, 0, &hem.ConfigurationError{Field: "InfiltrationVentilation.CombustionAppliances." + name, Msg: err.Error()}
		}
		paths = append(paths, ventilation.NewCombustionPath(name, fuel, apType, c.RatedInputKW))
	}

	return &ventilation.Network{Paths: paths}, terrain, shield, iv.CrossVentPossible, iv.AltitudeM, nil
}

func heightBand(midHeight, baseHeight float64) ventilation.HeightBand {
	rel := midHeight - baseHeight
	switch {
	case rel < 3:
		return ventilation.BandLow
	case rel < 6:
		return ventilation.BandMid
	default:
		return ventilation.BandHigh
	}
}

func parseTerrainClass(s string) ventilation.TerrainClass {
	switch s {
	case "city":
		return ventilation.TerrainCity
	case "open_country":
		return ventilation.TerrainCountry
	default:
		return ventilation.TerrainSuburban
	}
}

func parseShieldClass(s string) ventilation.ShieldClass {
	switch s {
	case "sheltered":
		return ventilation.ShieldSheltered
	case "exposed":
		return ventilation.ShieldExposed
	default:
		return ventilation.ShieldAverage
	}
}

func parseMechanicalKind(s string) (ventilation.MechanicalKind, error) {
	switch s {
	case "Intermittent-MEV":
		return ventilation.IntermittentMEV, nil
	case "Centralised-MEV":
		return ventilation.CentralisedMEV, nil
	case "Decentralised-MEV":
		return ventilation.DecentralisedMEV, nil
	case "MVHR":
		return ventilation.MVHR, nil
	case "PIV":
		return ventilation.PIV, nil
	default:
		return 0, fmt.Errorf("unrecognised vent_type %q", s)
	}
}

func parseCombustion(fuel, apType string) (ventilation.CombustionFuel, ventilation.ApplianceType, error) {
	var f ventilation.CombustionFuel
	switch fuel {
	case "gas":
		f = ventilation.FuelGas
	case "oil":
		f = ventilation.FuelOil
	case "solid_fuel":
		f = ventilation.FuelSolidFuel
	default:
		return 0, 0, fmt.Errorf("unrecognised fuel_type %q", fuel)
	}
	var a ventilation.ApplianceType
	switch apType {
	case "open_flued":
		a = ventilation.OpenFlued
	case "room_sealed":
		a = ventilation.RoomSealed
	case "flueless":
		a = ventilation.Flueless
	default:
		return 0, 0, fmt.Errorf("unrecognised appliance_type %q", apType)
	}
	return f, a, nil
}

// wireSpaceSystems resolves zd's SpaceHeatSystem/SpaceCoolSystem
// references into a HeatDeliverySystem or StorageHeaterSystem, per
// spec §4.E/§4.F.
func (b *builder) wireSpaceSystems(zr *hem.ZoneRun, zd ZoneDoc) error {
	if zd.SpaceHeatSystem != "" {
		shd, ok := b.doc.SpaceHeatSystem[zd.SpaceHeatSystem]
		if !ok {
			return &hem.ConfigurationError{Field: "Zone.SpaceHeatSystem", Msg: "references undefined SpaceHeatSystem " + zd.SpaceHeatSystem}
		}
		supply, ok := b.supplies[shd.EnergySupply]
		if !ok {
			return &hem.ConfigurationError{Field: "SpaceHeatSystem." + zd.SpaceHeatSystem + ".EnergySupply", Msg: "references undefined EnergySupply " + shd.EnergySupply}
		}
		conn, err := supply.Connect("SpaceHeatSystem:" + zd.SpaceHeatSystem)
		if err != nil {
			return &hem.ConfigurationError{Field: "SpaceHeatSystem." + zd.SpaceHeatSystem, Msg: err.Error()}
		}
		switch shd.Type {
		case "Emitters":
			heatSource, ok := b.heatSourcesWet[shd.HeatSourceWet]
			if !ok {
				return &hem.ConfigurationError{Field: "SpaceHeatSystem." + zd.SpaceHeatSystem + ".HeatSource", Msg: "references undefined HeatSourceWet " + shd.HeatSourceWet}
			}
			circuit := buildEmitterCircuit(zd.SpaceHeatSystem, shd, heatSource)
			zr.HeatSystem = &hem.EmitterSystem{Circuit: circuit, HeatSource: heatSource, FuelConn: conn}
		case "StorageHeater":
			heater, control, err := b.buildStorageHeater(zd.SpaceHeatSystem, shd)
			if err != nil {
				return err
			}
			zr.StorageHeater = &hem.StorageHeaterSystem{Heater: heater, Control: control, FuelConn: conn, FanPowerKW: shd.FanPowerKW}
		case "InstantElecHeater":
			zr.HeatSystem = &instantElecHeater{ratedPowerKW: shd.RatedPowerKW, conn: conn}
		default:
			return &hem.ConfigurationError{Field: "SpaceHeatSystem." + zd.SpaceHeatSystem + ".type", Msg: "unrecognised space heat system type " + shd.Type}
		}
	}

	if zd.SpaceCoolSystem != "" {
		scd, ok := b.doc.SpaceCoolSystem[zd.SpaceCoolSystem]
		if !ok {
			return &hem.ConfigurationError{Field: "Zone.SpaceCoolSystem", Msg: "references undefined SpaceCoolSystem " + zd.SpaceCoolSystem}
		}
		supply, ok := b.supplies[scd.EnergySupply]
		if !ok {
			return &hem.ConfigurationError{Field: "SpaceCoolSystem." + zd.SpaceCoolSystem + ".EnergySupply", Msg: "references undefined EnergySupply " + scd.EnergySupply}
		}
		conn, err := supply.Connect("SpaceCoolSystem:" + zd.SpaceCoolSystem)
		if err != nil {
			return &hem.ConfigurationError{Field: "SpaceCoolSystem." + zd.SpaceCoolSystem, Msg: err.Error()}
		}
		zr.CoolSystem = &instantElecHeater{ratedPowerKW: scd.RatedPowerKW, conn: conn}
	}
	return nil
}

func buildEmitterCircuit(name string, shd SpaceHeatSystemDoc, heatSource emitter.HeatSourceWet) *emitter.Circuit {
	kind := emitter.KindRadiator
	switch shd.EmitterKind {
	case "underfloor":
		kind = emitter.KindUnderfloor
	case "fancoil":
		kind = emitter.KindFanCoil
	}
	coeffs := make([]emitter.Coefficient, len(shd.Coeffs))
	for i, c := range shd.Coeffs {
		coeffs[i] = emitter.Coefficient{C: c.C, N: c.N}
	}
	ecoClass := emitter.EcodesignClass(shd.EcodesignClass)
	if ecoClass < emitter.EcodesignClassI || ecoClass > emitter.EcodesignClassVIII {
		ecoClass = emitter.EcodesignClassI
	}
	return &emitter.Circuit{
		Name: name, Kind: kind,
		Coeffs:             coeffs,
		ThermalMassKWhPerK: shd.ThermalMassKWhPerK,
		DesignFlowTempC:    shd.DesignFlowTempC,
		MinFlowTempC:       shd.MinFlowTempC,
		EcodesignClass:     ecoClass,
		BypassFraction:     shd.BypassFraction,
		VariableFlow:       shd.VariableFlow,
		HeatSource:         heatSource,
		TE:                 20.0,
	}
}

func (b *builder) buildStorageHeater(name string, shd SpaceHeatSystemDoc) (*storageheater.Heater, hem.ChargeController, error) {
	pMin, err := storageheater.NewPowerCurve(shd.MinOutputSOC, shd.MinOutputKW)
	if err != nil {
		return nil, nil, &hem.ConfigurationError{Field: "SpaceHeatSystem." + name + ".esh_min_output", Msg: err.Error()}
	}
	pMax, err := storageheater.NewPowerCurve(shd.MaxOutputSOC, shd.MaxOutputKW)
	if err != nil {
		return nil, nil, &hem.ConfigurationError{Field: "SpaceHeatSystem." + name + ".esh_max_output", Msg: err.Error()}
	}

	var control hem.ChargeController
	if shd.ChargeControl != "" {
		c, ok := b.controls[shd.ChargeControl]
		if !ok {
			return nil, nil, &hem.ConfigurationError{Field: "SpaceHeatSystem." + name + ".ChargeControl", Msg: "references undefined Control " + shd.ChargeControl}
		}
		cc, ok := c.(*controls.ChargeControl)
		if !ok {
			return nil, nil, &hem.ConfigurationError{Field: "SpaceHeatSystem." + name + ".ChargeControl", Msg: "must reference a ChargeControl"}
		}
		control = cc
	}

	logic := storageheater.ChargeLogicManual
	if control != nil {
		if cc, ok := control.(*controls.ChargeControl); ok {
			switch cc.Logic {
			case controls.ChargeLogicAutomatic, controls.ChargeLogicCelect:
				logic = storageheater.ChargeLogicAutomatic
			case controls.ChargeLogicHHRSH:
				logic = storageheater.ChargeLogicHHRSH
			}
		}
	}
	heater, err := storageheater.NewHeater(name, shd.CapacityKWh, shd.ChargeRateKW, pMin, pMax, shd.InstantBackupKW, logic)
	if err != nil {
		return nil, nil, &hem.ConfigurationError{Field: "SpaceHeatSystem." + name, Msg: err.Error()}
	}
	return heater, control, nil
}

// instantElecHeater is a direct electric resistance space-heat or
// space-cool unit: it always delivers exactly what is demanded, up to
// its rated power, per spec §3's "InstantElecHeater"/"SpaceCoolSystem".
type instantElecHeater struct {
	ratedPowerKW float64
	conn         *energysupply.Connection
}

func (h *instantElecHeater) Deliver(demandKWh, roomTempC, dtHours float64) (float64, float64, error) {
	maxKWh := h.ratedPowerKW * dtHours
	delivered := demandKWh
	if delivered > maxKWh {
		delivered = maxKWh
	}
	if delivered <= 0 {
		return 0, 0, nil
	}
	fuelKWh := delivered // resistive/direct-expansion: 1 kWh fuel per 1 kWh delivered
	if h.conn != nil {
		h.conn.DemandKWh(fuelKWh)
	}
	return delivered, fuelKWh, nil
}

// buildHotWater assembles the dwelling's HotWaterSystem: the cylinder's
// storage temperature and cold-feed lookup, distribution pipework,
// WWHRS units keyed by shower outlet, and the pre-scheduled event
// stream sorted by absolute hour-of-year, per spec §4.G.
func (b *builder) buildHotWater(clock *hem.Clock) (*hem.HotWaterSystem, error) {
	if b.doc.HotWaterSource == nil && b.doc.Events == nil {
		return nil, nil
	}
	hw := &hem.HotWaterSystem{}

	var cylinderName string
	for name, src := range b.doc.HotWaterSource {
		if src.Cylinder == nil {
			continue
		}
		cylinderName = name
		hw.StorageTempC = src.Cylinder.StorageTempC
		hw.HotTempC = src.Cylinder.StorageTempC
		hw.PrimaryPipeworkLossWPerK = src.Cylinder.PrimaryPipeworkLossWPerK

		heatSource, ok := b.heatSourcesWet[src.Cylinder.HeatSourceWet]
		if !ok {
			return nil, &hem.ConfigurationError{Field: "HotWaterSource." + name + ".HeatSourceWet", Msg: "references undefined HeatSourceWet " + src.Cylinder.HeatSourceWet}
		}
		_ = heatSource

		cw, ok := b.coldWater[src.Cylinder.ColdWaterSource]
		if !ok {
			return nil, &hem.ConfigurationError{Field: "HotWaterSource." + name + ".ColdWaterSource", Msg: "references undefined ColdWaterSource " + src.Cylinder.ColdWaterSource}
		}
		hw.ColdFeedC = coldFeedFunc(cw)
	}
	_ = cylinderName

	if b.doc.HotWaterDemand != nil {
		for _, p := range b.doc.HotWaterDemand.Distribution {
			loc := hotwater.PipeInternal
			if p.Location == "external" {
				loc = hotwater.PipeExternal
			}
			hw.Pipes = append(hw.Pipes, hotwater.Pipe{
				Location: loc, InternalDiaMM: p.InternalDiaMM, LengthM: p.LengthM, InsulationThicknessMM: p.InsulationThicknessMM,
			})
		}
	}

	hw.WWHRSByOutlet = make(map[string]*hotwater.WWHRS)
	showerFlowRates := make(map[string]float64)
	if b.doc.HotWaterDemand != nil {
		for outlet, sh := range b.doc.HotWaterDemand.Shower {
			showerFlowRates[outlet] = sh.FlowRateLPerMin
			if sh.WWHRS == "" {
				continue
			}
			w, ok := b.wwhrs[sh.WWHRS]
			if !ok {
				return nil, &hem.ConfigurationError{Field: "HotWaterDemand.Shower." + outlet + ".WWHRS", Msg: "references undefined WWHRS " + sh.WWHRS}
			}
			hw.WWHRSByOutlet[outlet] = w
		}
	}

	if b.doc.Events != nil {
		var events []hem.ScheduledEvent
		for outlet, evs := range b.doc.Events.Shower {
			rate := showerFlowRates[outlet]
			for _, e := range evs {
				events = append(events, hem.ScheduledEvent{
					Event: hotwater.Event{
						Type: hotwater.EventShower, Name: outlet, StartHour: e.Start,
						DurationMin: e.DurationMin, WarmTempC: e.TemperatureC, FlowRateLPerMin: rate,
					},
					OutletName: outlet, ShowerFlowRateLPerMin: rate,
				})
			}
		}
		for outlet, evs := range b.doc.Events.Bath {
			for _, e := range evs {
				events = append(events, hem.ScheduledEvent{
					Event: hotwater.Event{
						Type: hotwater.EventBath, Name: outlet, StartHour: e.Start,
						DurationMin: e.DurationMin, WarmTempC: e.TemperatureC, VolumeL: e.VolumeL,
					},
					OutletName: outlet,
				})
			}
		}
		for outlet, evs := range b.doc.Events.Other {
			for _, e := range evs {
				events = append(events, hem.ScheduledEvent{
					Event: hotwater.Event{
						Type: hotwater.EventOther, Name: outlet, StartHour: e.Start,
						DurationMin: e.DurationMin, WarmTempC: e.TemperatureC, VolumeL: e.WarmVolumeL,
					},
					OutletName: outlet,
				})
			}
		}
		sort.SliceStable(events, func(i, j int) bool { return events[i].StartHour < events[j].StartHour })
		hw.Events = events
	}

	return hw, nil
}

// coldFeedFunc builds a lookup closure over a cold-water source's
// fixed-step temperature series, wrapping with the same hour-of-year
// modulo convention as hem.ExternalConditions' per-hour series.
func coldFeedFunc(cw ColdWaterDoc) func(hourOfYear float64) float64 {
	step := cw.TimeSeriesStep
	if step <= 0 {
		step = 24
	}
	temps := cw.Temperatures
	return func(hourOfYear float64) float64 {
		if len(temps) == 0 {
			return 10
		}
		idx := int(hourOfYear/step) % len(temps)
		if idx < 0 {
			idx += len(temps)
		}
		return temps[idx]
	}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
