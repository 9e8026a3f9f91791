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

// SolarInteraction distinguishes how an element interacts with incident
// solar radiation.
type SolarInteraction int

const (
	NotExposed  SolarInteraction = iota // element has no solar interaction (adjacent elements)
	Absorbed                            // opaque/ground: absorbs solar at the exterior surface node
	Transmitted                         // transparent: transmits solar to the zone air/internal surfaces
)

// OtherSide distinguishes what is on the far side of an element's through
// conductance chain.
type OtherSide int

const (
	Outside OtherSide = iota
	Ground
	AdjacentConditioned
	AdjacentUnconditioned
)

// Layer is one physical material layer of an opaque or ground
// construction, ordered from the outside-facing surface inward.
type Layer struct {
	ThicknessM          float64
	ConductivityWPerMK   float64
	VolumetricCapacityJPerM3K float64
}

func (l Layer) resistance() float64 {
	if l.ConductivityWPerMK <= 0 {
		return 0
	}
	return l.ThicknessM / l.ConductivityWPerMK
}

func (l Layer) capacity() float64 {
	return l.ThicknessM * l.VolumetricCapacityJPerM3K
}

// Element is a single building element belonging to exactly one zone. It
// carries the static per-node RC network coefficients consumed by the
// zone thermal solver; the mutable per-node temperature state lives in
// the owning Zone, not here.
type Element struct {
	Name   string
	Area   float64 // m2, > 0
	Pitch  float64 // degrees, 0..180
	Orientation float64 // degrees from north, for solar/shading lookups

	Solar     SolarInteraction
	Other     OtherSide

	// KPli/HPli are the per-node areal capacities (J/m2K) and
	// inter-node conductances (W/m2K). len(HPli) == len(KPli)-1.
	KPli []float64
	HPli []float64

	// Surface coefficients. HCe/HRe are zero for AdjacentConditioned and
	// folded into an increased effective resistance for
	// AdjacentUnconditioned via RuExtra.
	HCe, HRe float64
	RuExtra  float64 // additional resistance, AdjacentUnconditioned only

	// SolarAbsorption (alpha, 0-1) applies to Absorbed elements.
	SolarAbsorption float64

	// Transparent-only fields.
	GValue        float64
	FrameFraction float64
	Treatment     *WindowTreatment

	// Ground-only detail.
	GroundFloor *GroundFloor
}

// NumNodes returns the number of RC nodes in the element's through chain
// (not counting the zone air node, which is owned by Zone).
func (e *Element) NumNodes() int { return len(e.KPli) }

// Validate checks the element invariants required by the zone solver:
// area > 0, pitch in [0,180], at least 2 nodes, and consistent h/k vector
// lengths.
func (e *Element) Validate() error {
	if e.Area <= 0 {
		return fmt.Errorf("elements: element %q: area must be > 0, got %g", e.Name, e.Area)
	}
	if e.Pitch < 0 || e.Pitch > 180 {
		return fmt.Errorf("elements: element %q: pitch must be in [0,180], got %g", e.Name, e.Pitch)
	}
	if len(e.KPli) < 2 {
		return fmt.Errorf("elements: element %q: needs >= 2 nodes, got %d", e.Name, len(e.KPli))
	}
	if len(e.HPli) != len(e.KPli)-1 {
		return fmt.Errorf("elements: element %q: len(HPli)=%d must equal len(KPli)-1=%d", e.Name, len(e.HPli), len(e.KPli)-1)
	}
	return nil
}

// SkyViewFactorValue returns this element's sky view factor, used for the
// long-wave sky-loss correction of exterior-facing elements.
func (e *Element) SkyViewFactorValue() float64 {
	return SkyViewFactor(e.Pitch)
}

// layersToFiveNodes lumps an ordered list of material layers (outside to
// inside) into the fixed five-node RC chain used by BS EN ISO 52016-1 for
// opaque, adjacent, and ground constructions. Node 0 is the exterior
// surface node and node 4 the interior surface node; h_pli[i] connects
// node i to node i+1.
//
// The standard's Annex coefficient tables are not reproduced here;
// instead the total resistance of all layers is split into four
// equal-resistance segments between the five nodes, and each layer's areal heat capacity
// is assigned to the node nearest the layer's mid-depth. This keeps the
// total resistance and total capacity exact while giving a physically
// reasonable node distribution for dynamic response.
func layersToFiveNodes(layers []Layer) (kPli, hPli []float64) {
	const n = 5
	kPli = make([]float64, n)
	// cumulative resistance at the start of each layer, and total R
	var totalR float64
	for _, l := range layers {
		totalR += l.resistance()
	}
	if totalR == 0 {
		totalR = 1e-6
	}

	// Node boundary positions as a fraction of total resistance: four
	// equal segments.
	boundary := func(i int) float64 { return totalR * float64(i) / float64(n-1) }

	cum := 0.0
	for _, l := range layers {
		r := l.resistance()
		start, end := cum, cum+r
		mid := (start + end) / 2
		// Assign capacity to the nearest node by cumulative-resistance
		// position.
		nearest := 0
		best := boundary(0)
		for i := 1; i < n; i++ {
			if d := abs(boundary(i) - mid); d < abs(best-mid) {
				nearest = i
				best = boundary(i)
			}
		}
		kPli[nearest] += l.capacity()
		cum = end
	}

	hPli = make([]float64, n-1)
	segR := totalR / float64(n-1)
	for i := range hPli {
		hPli[i] = 1 / segR
	}
	return kPli, hPli
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// NewOpaqueExterior builds a 5-node opaque building element exposed to
// outside air, per spec §3 "Opaque exterior".
func NewOpaqueExterior(name string, area, pitch, solarAbsorption float64, layers []Layer) *Element {
	k, h := layersToFiveNodes(layers)
	return &Element{
		Name: name, Area: area, Pitch: pitch,
		Solar: Absorbed, Other: Outside,
		KPli: k, HPli: h,
		HCe: HCeDefault, HRe: HReDefault,
		SolarAbsorption: solarAbsorption,
	}
}

// NewAdjacentConditioned builds a 5-node element adjacent to another
// conditioned space: external heat-transfer coefficients are zero.
func NewAdjacentConditioned(name string, area, pitch float64, layers []Layer) *Element {
	k, h := layersToFiveNodes(layers)
	return &Element{
		Name: name, Area: area, Pitch: pitch,
		Solar: NotExposed, Other: AdjacentConditioned,
		KPli: k, HPli: h,
		HCe: 0, HRe: 0,
	}
}

// NewAdjacentUnconditioned builds a 5-node element adjacent to an
// unconditioned space, with the external resistance increased by ru.
func NewAdjacentUnconditioned(name string, area, pitch, ru float64, layers []Layer) *Element {
	k, h := layersToFiveNodes(layers)
	return &Element{
		Name: name, Area: area, Pitch: pitch,
		Solar: NotExposed, Other: AdjacentUnconditioned,
		KPli: k, HPli: h,
		HCe: HCeDefault, HRe: HReDefault, RuExtra: ru,
	}
}
