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
	"math"

	"github.com/hem-sim/hem/internal/elements"
)

// SetpointBasis selects whether a zone's heating/cooling setpoints are
// interpreted against operative or air temperature, per spec §3.
type SetpointBasis int

const (
	SetpointBasisOperative SetpointBasis = iota
	SetpointBasisAir
)

// Zone groups building elements, a thermal-bridge heat-transfer
// coefficient, floor area, volume, and a reference to the ventilation
// network, owning the per-node temperature vector that is the heart of
// the BS EN ISO 52016-1 lumped-node solve (component D).
type Zone struct {
	Name     string
	Elements []*elements.Element

	ThermalBridgeWPerK float64
	FloorAreaM2        float64
	VolumeM3           float64
	SetpointBasis      SetpointBasis

	TempSetpntHeatC     float64
	TempSetpntCoolVentC float64
	TempSetpntCoolC     float64

	// Temperatures is the per-node state vector, length NumNodes()+1
	// with the air node at the last index, persisted between
	// timesteps.
	Temperatures []float64

	offsets []int
}

// elementOffsets lazily computes and caches each element's starting
// node index in the zone's flat Temperatures vector.
func (z *Zone) elementOffsets() []int {
	if z.offsets != nil && len(z.offsets) == len(z.Elements) {
		return z.offsets
	}
	offsets := make([]int, len(z.Elements))
	n := 0
	for i, e := range z.Elements {
		offsets[i] = n
		n += e.NumNodes()
	}
	z.offsets = offsets
	return offsets
}

// NumFabricNodes returns the total node count across all elements,
// excluding the zone air node.
func (z *Zone) NumFabricNodes() int {
	n := 0
	for _, e := range z.Elements {
		n += e.NumNodes()
	}
	return n
}

// TotalNodes returns NumFabricNodes() + 1 (the air node).
func (z *Zone) TotalNodes() int { return z.NumFabricNodes() + 1 }

// AirNodeIndex returns the index of the zone air node in Temperatures,
// per spec §3: "the air node index is the last".
func (z *Zone) AirNodeIndex() int { return z.NumFabricNodes() }

// SurfaceNodeIndex returns the index of element i's interior surface
// node (the last node of its chain) in Temperatures.
func (z *Zone) SurfaceNodeIndex(elementIdx int) int {
	offsets := z.elementOffsets()
	e := z.Elements[elementIdx]
	return offsets[elementIdx] + e.NumNodes() - 1
}

// ElementOffset returns the flat node index of element i's first
// (exterior-facing) node.
func (z *Zone) ElementOffset(elementIdx int) int {
	return z.elementOffsets()[elementIdx]
}

// TotalInteriorAreaM2 returns the sum of areas of all elements, used
// as the denominator for the area-weighted interior radiant exchange
// network.
func (z *Zone) TotalInteriorAreaM2() float64 {
	var a float64
	for _, e := range z.Elements {
		a += e.Area
	}
	return a
}

// InitialiseUniform sets every node (including the air node) to a
// single uniform temperature, per spec §4.D's steady-state
// initialisation starting point (T_ext_init + T_setpnt_init)/2.
func (z *Zone) InitialiseUniform(tempC float64) {
	n := z.TotalNodes()
	z.Temperatures = make([]float64, n)
	for i := range z.Temperatures {
		z.Temperatures[i] = tempC
	}
}

// AirTempC returns the current zone air temperature.
func (z *Zone) AirTempC() float64 {
	return z.Temperatures[z.AirNodeIndex()]
}

// OperativeTempC returns the mean of the air temperature and the
// area-weighted mean interior-surface temperature, per the GLOSSARY's
// "Operative temperature" definition.
func (z *Zone) OperativeTempC() float64 {
	totalArea := z.TotalInteriorAreaM2()
	if totalArea <= 0 {
		return z.AirTempC()
	}
	var weightedSurfaceTemp float64
	for i, e := range z.Elements {
		surfT := z.Temperatures[z.SurfaceNodeIndex(i)]
		weightedSurfaceTemp += surfT * e.Area / totalArea
	}
	return 0.5 * (z.AirTempC() + weightedSurfaceTemp)
}

// SetpointTempC returns the temperature metric (operative or air) that
// the zone's configured SetpointBasis compares against the setpoints.
func (z *Zone) SetpointTempC() float64 {
	if z.SetpointBasis == SetpointBasisAir {
		return z.AirTempC()
	}
	return z.OperativeTempC()
}

// Validate checks zone-level invariants: setpoint ordering
// (temp_setpnt_heat <= temp_setpnt_cool_vent <= temp_setpnt_cool) per
// spec §4.D, and that at least one building element is present.
func (z *Zone) Validate() error {
	if len(z.Elements) == 0 {
		return &ConfigurationError{Field: "Zone.Elements", Msg: fmt.Sprintf("zone %q has no building elements", z.Name)}
	}
	if !(z.TempSetpntHeatC <= z.TempSetpntCoolVentC && z.TempSetpntCoolVentC <= z.TempSetpntCoolC) {
		return &PhysicalConstraintError{
			Context: "Zone.TempSetpnt*",
			Msg: fmt.Sprintf("zone %q: setpoints must satisfy heat(%g) <= cool_vent(%g) <= cool(%g)",
				z.Name, z.TempSetpntHeatC, z.TempSetpntCoolVentC, z.TempSetpntCoolC),
		}
	}
	for _, e := range z.Elements {
		if err := e.Validate(); err != nil {
			return &ConfigurationError{Field: "Zone.Elements", Msg: err.Error()}
		}
	}
	return nil
}

// ElementUValue returns element i's steady-state U-value (W/m2K): the
// reciprocal of its total fabric resistance (sum of 1/h_pli segments)
// plus internal and external surface resistances, per the HLP/HTC
// definitions in the GLOSSARY. Ground elements report their
// BS EN ISO 13370 whole-floor U-value directly; adjacent-conditioned
// elements (zero external coefficients) report 0, matching their zero
// steady-state fabric loss.
func (z *Zone) ElementUValue(elementIdx int) float64 {
	e := z.Elements[elementIdx]
	if e.Other == elements.Ground && e.GroundFloor != nil {
		return e.GroundFloor.UValue
	}
	if e.Other == elements.AdjacentConditioned {
		return 0
	}
	var rFabric float64
	for _, h := range e.HPli {
		if h > 0 {
			rFabric += 1 / h
		}
	}
	rInternal := 1 / elements.HCiForPitch(e.Pitch, true)
	rExternal := 0.0
	if e.HCe > 0 {
		rExternal = 1 / e.HCe
	}
	rExternal += e.RuExtra
	rTotal := rFabric + rInternal + rExternal
	if rTotal <= 0 {
		return 0
	}
	return 1 / rTotal
}

// FabricHTCWPerK returns the zone's steady-state fabric heat-transfer
// coefficient, Σ(U·A) over its building elements, excluding thermal
// bridging and ventilation (added separately by ProjectHTC), per the
// GLOSSARY's HTC definition.
func (z *Zone) FabricHTCWPerK() float64 {
	var htc float64
	for i, e := range z.Elements {
		htc += z.ElementUValue(i) * e.Area
	}
	return htc
}

// initialisationFracConvective is the convective fraction this zone
// uses for the warm-up/steady-state initialisation pass, per spec
// §4.D: "A frac_convective = 0.4 is assumed for this warm-up."
const initialisationFracConvective = 0.4

// SteadyStateInitialise iterates the demand-then-update cycle at
// Δt=8760h starting from a uniform temperature until consecutive
// temperature vectors agree to within the relative tolerance spec §5
// fixes at 1e-8, per spec §4.D's initialisation procedure.
func (z *Zone) SteadyStateInitialise(extTempC, initTempC float64, groundOtherSide func(elementIdx int) float64) error {
	z.InitialiseUniform(initTempC)
	const maxIterations = 200
	const relTol = 1e-8
	prev := append([]float64(nil), z.Temperatures...)
	for iter := 0; iter < maxIterations; iter++ {
		gains := Gains{
			InternalGainsW:    0,
			InternalConvFrac:  initialisationFracConvective,
			SolarGainsW:       make([]float64, len(z.Elements)),
			HVACGainW:         0,
			HVACConvFrac:      initialisationFracConvective,
		}
		sys, err := z.BuildSystem(extTempC, 8760, 0, gains, groundOtherSide)
		if err != nil {
			return err
		}
		next, err := sys.SolveNaive()
		if err != nil {
			return &SolverFailure{Solver: "zone matrix solve", Context: fmt.Sprintf("steady-state initialisation: %v", err)}
		}
		var maxRelDelta float64
		for i := range next {
			denom := math.Max(1, math.Abs(prev[i]))
			d := math.Abs(next[i]-prev[i]) / denom
			if d > maxRelDelta {
				maxRelDelta = d
			}
		}
		z.Temperatures = next
		prev = append([]float64(nil), next...)
		if maxRelDelta <= relTol {
			return nil
		}
	}
	return &SolverFailure{Solver: "zone steady-state initialisation", Context: "did not converge within the iteration budget"}
}
