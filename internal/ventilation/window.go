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

package ventilation

import "math"

// Window is an airflow path representing an openable window, modelled as
// a stack of window-parts at NDiv internal heights, each computed
// individually and summed, per spec §4.C.
type Window struct {
	Name         string
	BaseHeightM  float64
	TotalHeightM float64
	NDiv         int // number of internal heights
	EquivArea    float64 // m2, effective opening area at full opening
	Orientation  float64
	OpeningRatio float64 // 0-1

	parts []*Path
}

// Parts returns (building if necessary) the NDiv sub-paths representing
// this window's internal height divisions.
func (w *Window) Parts(cpLookup func(midHeight, orientation float64) float64) []*Path {
	if w.NDiv < 1 {
		w.NDiv = 1
	}
	if len(w.parts) == w.NDiv {
		for _, p := range w.parts {
			p.OpeningRatio = w.OpeningRatio
		}
		return w.parts
	}
	w.parts = make([]*Path, w.NDiv)
	areaPerPart := w.EquivArea / float64(w.NDiv)
	heightPerPart := w.TotalHeightM / float64(w.NDiv)
	const n = 0.5
	// Flow coefficient for an orifice of the given area: C = Cd*A*sqrt(2/rho),
	// folded into a single empirical coefficient consistent with the n=0.5
	// power law used throughout this package.
	const cd = 0.6
	const rho = 1.2
	c := cd * areaPerPart * math.Sqrt(2/rho)
	for i := 0; i < w.NDiv; i++ {
		mid := w.BaseHeightM + heightPerPart*(float64(i)+0.5)
		w.parts[i] = &Path{
			Kind:         KindWindow,
			Name:         w.Name,
			MidHeightM:   mid,
			Orientation:  w.Orientation,
			Cp:           cpLookup(mid, w.Orientation),
			C:            c,
			OpeningRatio: w.OpeningRatio,
		}
	}
	return w.parts
}
