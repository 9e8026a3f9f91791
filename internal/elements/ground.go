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

package elements

import (
	"fmt"
	"math"
)

// FloorSubtype discriminates the ground-floor construction variants of
// spec §3 "Ground".
type FloorSubtype int

const (
	SlabNoEdgeInsulation FloorSubtype = iota
	SlabEdgeInsulation
	SuspendedFloor
	HeatedBasement
	UnheatedBasement
)

// EdgeInsulationSpec is one entry in a slab_edge_insulation edge
// insulation list: either a horizontal strip of the given width, or a
// vertical skirt of the given depth, each with its own added resistance.
type EdgeInsulationSpec struct {
	Horizontal   bool
	WidthOrDepth float64 // m
	R            float64 // m2K/W
}

// GroundFloor carries the ground-floor-specific geometry and construction
// detail needed to compute the BS EN ISO 13370 equivalent thickness,
// periodic coefficients, and virtual ground temperature.
type GroundFloor struct {
	Subtype           FloorSubtype
	UValue            float64 // W/m2K, whole-floor steady-state U-value
	Perimeter         float64 // m
	Psi               float64 // W/mK, linear thermal-bridge coefficient at the floor perimeter
	WallThickness     float64 // m, thickness of the wall at the slab edge

	// slab_edge_insulation only.
	EdgeInsulation []EdgeInsulationSpec

	// suspended_floor only.
	WallUValue           float64
	VentAreaPerPerimeter float64
	WindShieldClass      string

	// heated_basement / unheated_basement.
	BasementDepth          float64
	BasementWallResistance float64 // heated_basement
	BasementHeight         float64 // unheated_basement
	FloorAboveUValue       float64 // unheated_basement

	// EdgeInsulationIgnored records that an edge_insulation field was
	// supplied on a slab_no_edge_insulation floor: it is accepted and
	// ignored (matches the original implementation) but flagged as a
	// non-fatal validation warning rather than silently dropped. See
	// DESIGN.md Open Question decisions.
	EdgeInsulationIgnored bool

	// computed fields, populated by NewGround.
	computedHPi, computedHPe, equivalentThickness float64
}

// HPi returns the periodic internal coefficient computed at construction.
func (g *GroundFloor) HPi() float64 { return g.computedHPi }

// HPe returns the periodic external coefficient computed at construction.
func (g *GroundFloor) HPe() float64 { return g.computedHPe }

// EquivalentThicknessValue returns the BS EN ISO 13370 equivalent
// thickness computed at construction.
func (g *GroundFloor) EquivalentThicknessValue() float64 { return g.equivalentThickness }

const groundThermalConductivity = 2.0 // W/mK, BS EN ISO 13370 default soil conductivity

// EquivalentThickness returns the BS EN ISO 13370 §8.1 equivalent
// thickness dt = w + lambda*(Rsi + Rf + Rse), where rFloorConstruction is
// the resistance of the floor construction (excluding surface
// resistances).
func EquivalentThickness(wallThickness, rFloorConstruction, rsi, rse float64) float64 {
	return wallThickness + groundThermalConductivity*(rsi+rFloorConstruction+rse)
}

// PeriodicCoefficients returns the internal (h_pi) and external (h_pe)
// periodic heat transfer coefficients, W/m2K, used in the monthly
// virtual-ground-temperature correction. Exact formulas depend on the
// floor subtype, following the general shape of BS EN ISO 13370 §H.3:
// deeper/more-insulated constructions attenuate and phase-shift the
// periodic external signal more strongly, producing a smaller h_pe
// relative to h_pi.
func (g *GroundFloor) PeriodicCoefficients(dt, area float64) (hPi, hPe float64, err error) {
	if area <= 0 {
		return 0, 0, fmt.Errorf("elements: ground floor area must be > 0")
	}
	const periodSeconds = 365 * 24 * 3600.0
	omega := 2 * math.Pi / periodSeconds
	// Characteristic penetration depth of the annual periodic signal.
	charDepth := math.Sqrt(2 * groundThermalConductivity / (omega * 3e6))
	if charDepth <= 0 {
		charDepth = 1
	}

	switch g.Subtype {
	case SlabNoEdgeInsulation, SlabEdgeInsulation:
		hPi = g.UValue * math.Exp(-dt/charDepth)
		hPe = 0.5 * hPi
	case SuspendedFloor:
		if g.WallUValue <= 0 || g.VentAreaPerPerimeter < 0 {
			return 0, 0, fmt.Errorf("elements: suspended_floor requires wall U-value and vent-area-per-perimeter")
		}
		shield := windShieldFactor(g.WindShieldClass)
		ventTerm := 1450 * g.VentAreaPerPerimeter * shield
		hPi = (g.UValue + ventTerm) * math.Exp(-dt/charDepth)
		hPe = 0.5 * hPi
	case HeatedBasement:
		if g.BasementWallResistance <= 0 {
			return 0, 0, fmt.Errorf("elements: heated_basement requires a positive basement wall resistance")
		}
		depthFactor := math.Exp(-g.BasementDepth / charDepth)
		hPi = g.UValue * depthFactor / (1 + g.BasementWallResistance*g.UValue)
		hPe = 0.4 * hPi
	case UnheatedBasement:
		if g.BasementHeight <= 0 || g.FloorAboveUValue <= 0 {
			return 0, 0, fmt.Errorf("elements: unheated_basement requires basement height and floor-above U-value")
		}
		depthFactor := math.Exp(-g.BasementDepth / charDepth)
		hPi = g.FloorAboveUValue * depthFactor
		hPe = 0.3 * hPi
	default:
		return 0, 0, fmt.Errorf("elements: unknown floor subtype %v", g.Subtype)
	}
	return hPi, hPe, nil
}

func windShieldFactor(class string) float64 {
	switch class {
	case "sheltered":
		return 0.02
	case "average":
		return 0.05
	case "exposed":
		return 0.1
	default:
		return 0.05
	}
}

// RVi returns the effective internal surface resistance used for the
// ground element's "other side" coupling (1/h_pi in the zone matrix
// assembly). It returns an error satisfying PhysicalConstraintError
// semantics (via a plain error, wrapped by the caller) when h_pi is
// non-positive, since that implies an inconsistent U-value/floor
// construction combination.
func RVi(hPi float64) (float64, error) {
	if hPi <= 0 {
		return 0, fmt.Errorf("elements: r_vi <= 0 (h_pi=%g): inconsistent ground U-value and floor construction", hPi)
	}
	return 1 / hPi, nil
}

// TIntMonthly is the fixed assumed-internal-temperature monthly profile
// (degC, Jan..Dec) used only for the ground virtual-temperature
// correction of spec §4.D, independent of the dwelling's actual
// simulated zone temperature.
var TIntMonthly = [12]float64{19.5, 19.7, 19.9, 20.1, 20.3, 20.4, 20.4, 20.3, 20.1, 19.9, 19.7, 19.5}

// TIntAnnual is the annual mean of TIntMonthly.
func TIntAnnual() float64 {
	var sum float64
	for _, v := range TIntMonthly {
		sum += v
	}
	return sum / 12
}

// VirtualGroundTemperature computes the monthly virtual ground
// temperature used as the "other side" temperature of a ground element
// in the zone heat balance, per spec §4.D.
//
//	Q_month = U*A*(T_int_ann-T_ext_ann) + P*psi*(T_int_m-T_ext_m)
//	          - h_pi*(T_int_ann-T_int_m) + h_pe*(T_ext_ann-T_ext_m)
//	T_ground_virtual = T_int_month - (Q_month - P*psi*(T_int_ann-T_ext_ann)) / (A*U)
func VirtualGroundTemperature(month int, u, area, perimeter, psi, hPi, hPe, extAnnual float64, extMonthly [12]float64) (float64, error) {
	if area <= 0 || u <= 0 {
		return 0, fmt.Errorf("elements: virtual ground temperature requires area>0 and U>0")
	}
	tIntAnn := TIntAnnual()
	tIntM := TIntMonthly[month]
	tExtM := extMonthly[month]

	q := u*area*(tIntAnn-extAnnual) + perimeter*psi*(tIntM-tExtM) -
		hPi*(tIntAnn-tIntM) + hPe*(extAnnual-tExtM)

	tVirtual := tIntM - (q-perimeter*psi*(tIntAnn-extAnnual))/(area*u)
	return tVirtual, nil
}
