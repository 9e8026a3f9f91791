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

func TestBrentRootLinear(t *testing.T) {
	root, err := BrentRoot(-10, 10, func(x float64) float64 { return x - 4 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(root-4) > 1e-6 {
		t.Errorf("root = %g, want 4", root)
	}
}

func TestBrentRootRejectsSameSignBracket(t *testing.T) {
	if _, err := BrentRoot(1, 2, func(x float64) float64 { return x*x + 1 }); err == nil {
		t.Fatal("expected error for same-sign bracket")
	}
}

func TestSolveWithExpandingBracket(t *testing.T) {
	root, err := SolveWithExpandingBracket(100, func(x float64) float64 { return x - 150 })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(root-150) > 1e-6 {
		t.Errorf("root = %g, want 150", root)
	}
}

func TestSolveWithExpandingBracketExhausted(t *testing.T) {
	_, err := SolveWithExpandingBracket(0, func(x float64) float64 { return x*x + 5 })
	if err == nil {
		t.Fatal("expected bracket-exhausted error")
	}
}
