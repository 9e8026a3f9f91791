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

// LeakTest carries the blower-door pressure-test inputs used to derive
// the envelope's five synthetic leak paths.
type LeakTest struct {
	TestPressurePa float64 // Pa, typically 50
	TestResult     float64 // m3/h/m2 (or m3/h, depending on convention) at TestPressurePa
	EnvelopeArea   float64 // m2, total envelope area used with TestResult
	ZoneHeight     float64 // m, ventilation-zone height
}

// leakWeights gives the fraction of total q50 leakage assigned to each
// synthetic leak path: two windward-facade, two leeward-facade, one
// roof, per spec §3.
var leakWeights = []struct {
	name        string
	orientation float64 // degrees; the roof path uses 0
	heightFrac  float64 // fraction of zone height
	weight      float64
}{
	{"leak_windward_low", 0, 0.25, 0.2},
	{"leak_windward_high", 0, 0.75, 0.2},
	{"leak_leeward_low", 180, 0.25, 0.2},
	{"leak_leeward_high", 180, 0.75, 0.2},
	{"leak_roof", 0, 1.0, 0.2},
}

// BuildLeakPaths derives the five synthetic leak paths from a blower-door
// test result, distributing the aggregate leakage coefficient across
// them with the windward/leeward/roof weighting above.
func BuildLeakPaths(test LeakTest, buildingHeight float64) []*Path {
	const n = 0.667
	q50PerArea := test.TestResult // assume already per-m2 of envelope
	totalFlowAt50 := q50PerArea * test.EnvelopeArea // m3/h at 50 Pa
	totalFlowAt50SI := totalFlowAt50 / 3600          // m3/s

	totalC := totalFlowAt50SI / math.Pow(test.TestPressurePa, n)

	paths := make([]*Path, 0, len(leakWeights))
	for i, w := range leakWeights {
		kind := KindLeak
		paths = append(paths, &Path{
			Kind:        kind,
			Name:        w.name,
			MidHeightM:  w.heightFrac * test.ZoneHeight,
			Orientation: w.orientation,
			C:           totalC * w.weight,
		})
		_ = i
		if buildingHeight <= 0 {
			continue
		}
	}
	return paths
}
