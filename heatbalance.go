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

	"github.com/hem-sim/hem/internal/elements"
)

// DemandResult is the outcome of a single space heat/cool demand
// calculation, per spec §4.D's five-step procedure.
type DemandResult struct {
	SpaceHeatDemandKWh float64 // >= 0
	SpaceCoolDemandKWh float64 // <= 0
	AirTempFreeC       float64
	OperativeTempFreeC float64

	// AchCooling is the air-change rate adopted after the ventilative-
	// cooling-potential pass, filled in by the caller that resolved the
	// airflow network (Project.stepZone).
	AchCooling float64
}

// trialLoadWPerM2 is the fixed trial-heating/cooling flux used to probe
// the system's sensitivity before interpolating the exact demand, per
// spec §4.D step 3-4.
const trialLoadWPerM2 = 10.0

// SpaceHeatCoolDemand implements spec §4.D's per-timestep space
// heat/cool demand procedure:
//
//  1. solve with zero HVAC gain at the baseline ACH to get the
//     free-floating temperatures;
//  2. ventilative cooling potential is resolved beforehand by the
//     caller (Project.ventilativeCoolingPotential), which re-solves the
//     airflow network at maximum window opening, interpolates the
//     air-change rate that brings the zone back to the ventilative-
//     cooling setpoint, and passes the resulting ventilation
//     conductance in as hVePerK;
//  3. decide the regime (heating, cooling, or neither) from the
//     free-float setpoint-basis temperature;
//  4. solve again with a small trial load at the correct convective
//     fraction;
//  5. linearly interpolate the exact demand that would bring the
//     setpoint-basis temperature exactly to its setpoint.
//
// update_state=false callers (exploratory calls during vent-opening
// search, etc.) must not persist z.Temperatures from this call; only
// the caller that owns the committed timestep should do so. This
// function itself never mutates z.Temperatures: it operates on a
// throwaway copy and the caller decides whether to adopt the result.
func (z *Zone) SpaceHeatCoolDemand(extTempC, dtHours, hVePerK float64, internalGainsW, convFrac float64, solarGainsW []float64, groundOtherSide func(elementIdx int) float64, useFastSolver bool) (DemandResult, error) {
	solve := func(hvacW float64) ([]float64, error) {
		gains := Gains{
			InternalGainsW:   internalGainsW,
			InternalConvFrac: convFrac,
			SolarGainsW:      solarGainsW,
			HVACGainW:        hvacW,
			HVACConvFrac:     convFrac,
		}
		sys, err := z.BuildSystem(extTempC, dtHours, hVePerK, gains, groundOtherSide)
		if err != nil {
			return nil, err
		}
		saved := z.Temperatures
		defer func() { z.Temperatures = saved }()
		if useFastSolver {
			return sys.SolveFast()
		}
		return sys.SolveNaive()
	}

	tFree, err := solve(0)
	if err != nil {
		return DemandResult{}, err
	}
	airIdx := z.AirNodeIndex()
	opFree := operativeFromVector(z, tFree)
	airFree := tFree[airIdx]

	result := DemandResult{
		AirTempFreeC:       airFree,
		OperativeTempFreeC: opFree,
	}

	setpointFree := opFree
	if z.SetpointBasis == SetpointBasisAir {
		setpointFree = airFree
	}

	var trialLoadW float64
	switch {
	case setpointFree > z.TempSetpntCoolC:
		trialLoadW = -trialLoadWPerM2 * z.FloorAreaM2
	case setpointFree < z.TempSetpntHeatC:
		trialLoadW = trialLoadWPerM2 * z.FloorAreaM2
	default:
		return result, nil
	}

	tUpper, err := solve(trialLoadW)
	if err != nil {
		return DemandResult{}, err
	}
	setpointUpper := operativeFromVector(z, tUpper)
	if z.SetpointBasis == SetpointBasisAir {
		setpointUpper = tUpper[airIdx]
	}

	denom := setpointUpper - setpointFree
	if denom == 0 {
		return DemandResult{}, &PhysicalConstraintError{
			Context: fmt.Sprintf("zone %q space heat/cool demand", z.Name),
			Msg:     "trial-load response was zero; cannot interpolate demand (check thermal mass / gains)",
		}
	}

	var targetSetpoint float64
	if trialLoadW > 0 {
		targetSetpoint = z.TempSetpntHeatC
	} else {
		targetSetpoint = z.TempSetpntCoolC
	}
	demandW := trialLoadW * (targetSetpoint - setpointFree) / denom
	demandKWh := demandW * dtHours / 1000

	if trialLoadW > 0 {
		result.SpaceHeatDemandKWh = demandKWh
	} else {
		result.SpaceCoolDemandKWh = demandKWh
	}
	return result, nil
}

// FreeFloatTemps solves the zone heat balance with zero HVAC gain at
// the given ventilation conductance, returning the resulting operative
// and air temperatures. Like SpaceHeatCoolDemand's exploratory solves,
// it never mutates persistent state; Project.ventilativeCoolingPotential
// uses it to probe the zone's response at candidate window openings.
func (z *Zone) FreeFloatTemps(extTempC, dtHours, hVePerK, internalGainsW, convFrac float64, solarGainsW []float64, groundOtherSide func(elementIdx int) float64, useFastSolver bool) (opC, airC float64, err error) {
	gains := Gains{
		InternalGainsW:   internalGainsW,
		InternalConvFrac: convFrac,
		SolarGainsW:      solarGainsW,
		HVACConvFrac:     convFrac,
	}
	sys, err := z.BuildSystem(extTempC, dtHours, hVePerK, gains, groundOtherSide)
	if err != nil {
		return 0, 0, err
	}
	var tvec []float64
	if useFastSolver {
		tvec, err = sys.SolveFast()
	} else {
		tvec, err = sys.SolveNaive()
	}
	if err != nil {
		return 0, 0, err
	}
	return operativeFromVector(z, tvec), tvec[z.AirNodeIndex()], nil
}

// operativeFromVector computes the operative temperature for an
// arbitrary node-temperature vector, without touching z.Temperatures,
// used by SpaceHeatCoolDemand's exploratory solves (spec §5's
// "update_state=false" requirement: exploratory calls never mutate
// persistent state).
func operativeFromVector(z *Zone, t []float64) float64 {
	totalArea := z.TotalInteriorAreaM2()
	airIdx := z.AirNodeIndex()
	if totalArea <= 0 {
		return t[airIdx]
	}
	var weighted float64
	for i, e := range z.Elements {
		surfIdx := z.SurfaceNodeIndex(i)
		weighted += t[surfIdx] * e.Area / totalArea
	}
	return 0.5 * (t[airIdx] + weighted)
}

// CommitDemand re-solves the system with the actually-delivered HVAC
// gain (after the emitter/heat-source or storage heater has translated
// demand into delivered energy) and persists the resulting temperature
// vector into z.Temperatures, per spec §2 step 7: "Zone solver D
// updates node temperatures with the actually delivered gains." This is
// the only call in the per-timestep sequence permitted to mutate
// z.Temperatures.
func (z *Zone) CommitDemand(extTempC, dtHours, hVePerK float64, internalGainsW, convFrac float64, solarGainsW []float64, deliveredHVACW, hvacConvFrac float64, groundOtherSide func(elementIdx int) float64, useFastSolver bool) error {
	gains := Gains{
		InternalGainsW:   internalGainsW,
		InternalConvFrac: convFrac,
		SolarGainsW:      solarGainsW,
		HVACGainW:        deliveredHVACW,
		HVACConvFrac:     hvacConvFrac,
	}
	sys, err := z.BuildSystem(extTempC, dtHours, hVePerK, gains, groundOtherSide)
	if err != nil {
		return err
	}
	var next []float64
	if useFastSolver {
		next, err = sys.SolveFast()
	} else {
		next, err = sys.SolveNaive()
	}
	if err != nil {
		return err
	}
	z.Temperatures = next
	return nil
}

// ElementTypeName returns the element-type category spec §4.D's optional
// heat-balance reports decompose by: "opaque, transparent, ground, ZTC,
// ZTU".
func ElementTypeName(e *elements.Element) string {
	switch e.Other {
	case elements.Ground:
		return "ground"
	case elements.AdjacentConditioned:
		return "ZTC"
	case elements.AdjacentUnconditioned:
		return "ZTU"
	}
	if e.Solar == elements.Transmitted {
		return "transparent"
	}
	return "opaque"
}

// ElementBalanceRow is one building element's per-timestep heat-balance
// decomposition: its share of absorbed/transmitted solar, the net energy
// stored across its own fabric nodes this step, the conductive loss from
// its exterior node to the other-side temperature (the "external
// boundary"), and the convective exchange between its interior surface
// node and the zone air node (the "internal boundary"), per spec §4.D's
// "reports ... decompose gains/losses per element type ... distinguishing
// air-node and internal-fabric-boundary balances."
type ElementBalanceRow struct {
	ElementName string
	ElementType string

	SolarGainW float64 // absorbed (opaque/ground) or transmitted (transparent) this step

	// FabricStorageW is positive when the element's fabric is net
	// absorbing heat this step (temperatures rising).
	FabricStorageW float64

	// ConductionLossW is positive when the exterior node is losing heat
	// to the other-side temperature (loss to outside/ground/unconditioned
	// space).
	ConductionLossW float64

	// SkyLossW is the long-wave radiative loss from the exterior node to
	// the sky, non-zero only for elements exposed to outside air.
	SkyLossW float64

	// SurfaceConvectionW is positive when the element's interior surface
	// is transferring heat into the zone air node.
	SurfaceConvectionW float64
}

// AirNodeBalance is the zone air node's per-timestep heat-balance
// ledger.
type AirNodeBalance struct {
	ZoneName string

	InternalGainW float64 // convective share of internal (metabolic/appliance) gains
	SolarGainW    float64 // convective share of transmitted solar gains
	HVACGainW     float64 // convective share of delivered HVAC gain

	VentilationLossW   float64
	ThermalBridgeLossW float64

	// SurfaceConvectionW is the net heat transferred into the air node
	// from every element's interior surface this step (sum of the
	// per-element ElementBalanceRow.SurfaceConvectionW values).
	SurfaceConvectionW float64

	// StorageW is positive when the air node is net absorbing heat this
	// step (C_int/dt * (T_air_new - T_air_prev)).
	StorageW float64
}

// ZoneBalance is the full per-timestep heat-balance decomposition for one
// zone, reported by the optional --heat-balance CSVs (spec §6).
type ZoneBalance struct {
	Air      AirNodeBalance
	Elements []ElementBalanceRow
}

// ComputeZoneBalance decomposes one committed timestep's heat balance
// into per-element-type gains/losses, for diagnostic --heat-balance
// reporting. prevTemps must be z.Temperatures as it stood immediately
// before the CommitDemand call that produced the zone's current
// Temperatures; extTempC, dtHours, hVePerK, gains, and groundOtherSide
// must be exactly the arguments that CommitDemand call used. This
// function only reads z.Temperatures; it never mutates zone state.
func (z *Zone) ComputeZoneBalance(prevTemps []float64, extTempC, dtHours, hVePerK float64, gains Gains, groundOtherSide func(elementIdx int) float64) ZoneBalance {
	airIdx := z.AirNodeIndex()

	internalConv := gains.InternalGainsW * gains.InternalConvFrac
	hvacConv := gains.HVACGainW * gains.HVACConvFrac

	var solarConvTotal float64
	for i, e := range z.Elements {
		if e.Solar != elements.Transmitted || gains.SolarGainsW == nil || i >= len(gains.SolarGainsW) {
			continue
		}
		solarConvTotal += gains.SolarGainsW[i] * FSolC
	}

	dtSec := dtHours * secondsPerHour

	air := AirNodeBalance{
		ZoneName:           z.Name,
		InternalGainW:       internalConv,
		SolarGainW:          solarConvTotal,
		HVACGainW:           hvacConv,
		VentilationLossW:    hVePerK * (z.Temperatures[airIdx] - extTempC),
		ThermalBridgeLossW:  z.ThermalBridgeWPerK * (z.Temperatures[airIdx] - extTempC),
		StorageW:            CIntPerFloorAreaTimes(z.FloorAreaM2) / dtSec * (z.Temperatures[airIdx] - prevTemps[airIdx]),
	}

	rows := make([]ElementBalanceRow, len(z.Elements))
	for i, e := range z.Elements {
		offset := z.ElementOffset(i)
		surfIdx := z.SurfaceNodeIndex(i)

		solarW := 0.0
		if gains.SolarGainsW != nil && i < len(gains.SolarGainsW) {
			solarW = gains.SolarGainsW[i]
		}

		// Element rows in the solve are per unit area; the ledger reports
		// whole-element watts.
		var storageW float64
		for k := 0; k < e.NumNodes(); k++ {
			idx := offset + k
			storageW += e.KPli[k] / dtSec * (z.Temperatures[idx] - prevTemps[idx]) * e.Area
		}

		otherTempC := extTempC
		if e.Other == elements.Ground || e.Other == elements.AdjacentUnconditioned {
			if groundOtherSide != nil {
				otherTempC = groundOtherSide(i)
			}
		}
		extCoeff, otherTemp := exteriorBoundary(e, otherTempC)
		conductionLossW := extCoeff * (z.Temperatures[offset] - otherTemp) * e.Area

		skyLossW := 0.0
		if e.Other == elements.Outside {
			skyLossW = ThermRadToSky(e.HRe, e.Pitch) * e.Area
		}

		// h_ci selection must mirror the solve, which picked it from the
		// pre-commit temperatures.
		airWarmer := prevTemps[airIdx] > prevTemps[surfIdx]
		hci := HCiForPitch(e.Pitch, airWarmer)
		surfaceConvW := hci * e.Area * (z.Temperatures[surfIdx] - z.Temperatures[airIdx])
		air.SurfaceConvectionW += surfaceConvW

		rows[i] = ElementBalanceRow{
			ElementName:        e.Name,
			ElementType:        ElementTypeName(e),
			SolarGainW:         solarW,
			FabricStorageW:     storageW,
			ConductionLossW:    conductionLossW,
			SkyLossW:           skyLossW,
			SurfaceConvectionW: surfaceConvW,
		}
	}

	return ZoneBalance{Air: air, Elements: rows}
}
