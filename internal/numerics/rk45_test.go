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

package numerics

import (
	"math"
	"testing"
)

func TestSolveIVPExponentialDecay(t *testing.T) {
	// dy/dt = -y, y(0)=1 => y(1) = e^-1
	res, err := SolveIVP(func(t float64, y []float64) []float64 {
		return []float64{-y[0]}
	}, 0, 1, []float64{1}, 1e-6, 1e-9, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := res.Y[len(res.Y)-1][0]
	want := math.Exp(-1)
	if math.Abs(got-want) > 1e-4 {
		t.Errorf("y(1) = %g, want %g", got, want)
	}
}

func TestSolveIVPTerminalEvent(t *testing.T) {
	// dy/dt = -1, y(0) = 5; event at y=0 should stop at t=5.
	res, err := SolveIVP(func(t float64, y []float64) []float64 {
		return []float64{-1}
	}, 0, 100, []float64{5}, 1e-6, 1e-9, &Event{
		Value:    func(t float64, y []float64) float64 { return y[0] },
		Terminal: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Stopped {
		t.Fatal("expected integration to stop at terminal event")
	}
	if math.Abs(res.StopTime-5) > 1e-2 {
		t.Errorf("stop time = %g, want ~5", res.StopTime)
	}
}
