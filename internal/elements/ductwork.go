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

import "math"

// Ductwork is a closed-form steady-state ductwork heat-loss calculator
// (spec §1 "Supporting but non-core... ductwork steady-state loss"),
// grounded on original_source's core/ductwork.py. It computes the heat
// loss (or gain, if negative) of a duct run between the zone it serves
// and the space it passes through.
type Ductwork struct {
	LengthM          float64
	InternalDiameterM float64
	InsulationThickM  float64
	InsulationConductivityWPerMK float64
	InsideSpace       bool // true if the duct run is inside the conditioned zone
}

// HeatLossWPerK returns the duct's steady-state heat loss coefficient,
// W/K, from radial conduction through the cylindrical insulation layer
// only; inside and outside surface resistances are not included. It is
// 0 for a duct inside the conditioned space or without insulation.
func (d *Ductwork) HeatLossWPerK() float64 {
	if d.InsideSpace {
		return 0
	}
	rOuter := d.InternalDiameterM/2 + d.InsulationThickM
	rInner := d.InternalDiameterM / 2
	if rInner <= 0 || rOuter <= rInner || d.InsulationConductivityWPerMK <= 0 {
		return 0
	}
	// Radial conduction through a cylindrical insulation layer.
	condPerLength := 2 * math.Pi * d.InsulationConductivityWPerMK / math.Log(rOuter/rInner)
	return condPerLength * d.LengthM
}

// HeatLossW returns the instantaneous heat loss, W, given the
// temperature difference between the air inside the duct and the space
// it passes through.
func (d *Ductwork) HeatLossW(tDuct, tSurroundings float64) float64 {
	return d.HeatLossWPerK() * (tDuct - tSurroundings)
}
