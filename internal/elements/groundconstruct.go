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

import "fmt"

// NewGround builds a ground-floor element: 3+2 nodes (two fixed-ground
// nodes plus three floor-construction nodes), per spec §3 "Ground". The
// two outermost nodes model the ground layer with the fixed capacity and
// resistance of §4.D (k_gr, r_gr); the inner three come from the
// supplied floor-construction layers.
func NewGround(name string, area, pitch float64, floor *GroundFloor, constructionLayers []Layer) (*Element, error) {
	if floor == nil {
		return nil, fmt.Errorf("elements: ground element %q requires floor construction detail", name)
	}
	if floor.Subtype == SlabNoEdgeInsulation && len(floor.EdgeInsulation) > 0 {
		floor.EdgeInsulationIgnored = true
	}

	// Three inner nodes from the floor construction, matching the
	// resistance-weighted capacity placement used for opaque elements,
	// but restricted to 3 nodes (indices 2..4 of the 5-node chain).
	kInner, hInner := layersToThreeNodes(constructionLayers)

	// Ground layer: node 0 at its outer face, node 1 at its mid-depth
	// carrying k_gr, each half of r_gr between nodes 0-1 and 1-2.
	kPli := []float64{0, KGr, kInner[0], kInner[1], kInner[2]}
	hPli := []float64{2 / RGr, 2 / RGr, hInner[0], hInner[1]}

	var rFloorConstruction float64
	for _, l := range constructionLayers {
		rFloorConstruction += l.resistance()
	}
	dt := EquivalentThickness(floor.WallThickness, rFloorConstruction, 1/HCiHorizontal, 1/hPi1(floor))

	hPiVal, hPeVal, err := floor.PeriodicCoefficients(dt, area)
	if err != nil {
		return nil, err
	}
	rvi, err := RVi(hPiVal)
	if err != nil {
		return nil, err
	}

	el := &Element{
		Name: name, Area: area, Pitch: pitch,
		Solar: NotExposed, Other: Ground,
		KPli: kPli, HPli: hPli,
		HCe: 1 / rvi, HRe: 0,
		GroundFloor: floor,
	}
	floor.computedHPi, floor.computedHPe, floor.equivalentThickness = hPiVal, hPeVal, dt
	return el, nil
}

// hPi1 is a bootstrap default external resistance used only to seed the
// equivalent-thickness calculation before the periodic coefficients
// (which themselves depend weakly on dt) are known; BS EN ISO 13370
// treats this as a fixed-point but the dependence is negligible enough
// that one pass suffices for engineering accuracy.
func hPi1(floor *GroundFloor) float64 {
	if floor.UValue > 0 {
		return floor.UValue
	}
	return 0.25
}

func layersToThreeNodes(layers []Layer) (kPli [3]float64, hPli [2]float64) {
	const n = 3
	var totalR float64
	for _, l := range layers {
		totalR += l.resistance()
	}
	if totalR == 0 {
		totalR = 1e-6
	}
	boundary := func(i int) float64 { return totalR * float64(i) / float64(n-1) }
	cum := 0.0
	for _, l := range layers {
		r := l.resistance()
		mid := cum + r/2
		nearest := 0
		best := boundary(0)
		for i := 1; i < n; i++ {
			if d := abs(boundary(i) - mid); d < abs(best-mid) {
				nearest = i
				best = boundary(i)
			}
		}
		kPli[nearest] += l.capacity()
		cum += r
	}
	segR := totalR / float64(n-1)
	for i := range hPli {
		hPli[i] = 1 / segR
	}
	return kPli, hPli
}
