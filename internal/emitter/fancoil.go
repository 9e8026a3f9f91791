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

package emitter

import "sort"

// FanCoilTable is a manufacturer output-vs-deltaT lookup curve for a
// fan-coil emitter, linearly interpolated, scaled linearly to zero
// below the first entry and clamped above the last, per
// spec §5's fan-coil table lookup.
type FanCoilTable struct {
	DeltaTK []float64
	PowerW  []float64
}

// NewFanCoilTable builds a table from the given (deltaT, power) pairs,
// sorting by deltaT if not already ordered.
func NewFanCoilTable(deltaTK, powerW []float64) *FanCoilTable {
	n := len(deltaTK)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return deltaTK[idx[a]] < deltaTK[idx[b]] })
	t := &FanCoilTable{DeltaTK: make([]float64, n), PowerW: make([]float64, n)}
	for i, j := range idx {
		t.DeltaTK[i] = deltaTK[j]
		t.PowerW[i] = powerW[j]
	}
	return t
}

// Lookup linearly interpolates the table at the given deltaT. Above the
// last entry it returns the last power; below the first entry the power
// scales linearly from the first entry down to 0 at deltaT=0, and is 0
// for deltaT <= 0.
func (t *FanCoilTable) Lookup(deltaT float64) float64 {
	n := len(t.DeltaTK)
	if n == 0 {
		return 0
	}
	if deltaT <= t.DeltaTK[0] {
		if deltaT <= 0 {
			return 0
		}
		return t.PowerW[0] * deltaT / t.DeltaTK[0]
	}
	if deltaT >= t.DeltaTK[n-1] {
		return t.PowerW[n-1]
	}
	for i := 1; i < n; i++ {
		if deltaT <= t.DeltaTK[i] {
			frac := (deltaT - t.DeltaTK[i-1]) / (t.DeltaTK[i] - t.DeltaTK[i-1])
			return t.PowerW[i-1] + frac*(t.PowerW[i]-t.PowerW[i-1])
		}
	}
	return t.PowerW[n-1]
}
