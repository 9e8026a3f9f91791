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

// Package numerics holds the small, hand-rolled root-finding and ODE
// integration routines shared by the ventilation, emitter, and storage
// heater solvers. No example repository in the retrieval pack wires a
// bracketed root finder (brentq) or an embedded-Runge-Kutta IVP
// integrator (solve_ivp/RK45) as a third-party dependency, so these are
// implemented directly on the standard library; see DESIGN.md.
package numerics

import (
	"fmt"
	"math"
)

// BracketDeltas is the expanding symmetric bracket sequence used across
// the engine's root-solves to find a sign change around an initial
// guess, per spec §4.C and §5.
var BracketDeltas = []float64{1, 5, 10, 15, 20, 40, 50, 100, 200}

const (
	// DefaultTolerance matches the steady-state/root-solve tolerance
	// used throughout the engine unless a solver-specific tolerance is
	// documented otherwise.
	DefaultTolerance = 1e-8
	defaultMaxIter   = 100
)

// BrentRoot finds a root of f within [a,b], given f(a) and f(b) of
// opposite sign (or either being exactly zero), using Brent's method.
func BrentRoot(a, b float64, f func(float64) float64) (float64, error) {
	fa, fb := f(a), f(b)
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if (fa < 0) == (fb < 0) {
		return 0, fmt.Errorf("numerics: BrentRoot requires f(a) and f(b) of opposite sign")
	}
	return brent(a, b, fa, fb, f)
}

// SolveWithExpandingBracket root-solves f(p) = 0, expanding a symmetric
// bracket [guess-delta, guess+delta] over BracketDeltas around guess
// until a sign change is found, then refining with Brent's method.
func SolveWithExpandingBracket(guess float64, f func(float64) float64) (float64, error) {
	fGuess := f(guess)
	if fGuess == 0 {
		return guess, nil
	}
	for _, d := range BracketDeltas {
		lo, hi := guess-d, guess+d
		flo, fhi := f(lo), f(hi)
		if (flo < 0) != (fhi < 0) {
			return brent(lo, hi, flo, fhi, f)
		}
	}
	return 0, fmt.Errorf("numerics: bracket exhausted without sign change around guess=%g", guess)
}

func brent(a, b, fa, fb float64, f func(float64) float64) (float64, error) {
	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}
	c, fc := a, fa
	mflag := true
	var d float64

	for i := 0; i < defaultMaxIter; i++ {
		if fb == 0 || math.Abs(b-a) < DefaultTolerance {
			return b, nil
		}
		var s float64
		if fa != fc && fb != fc {
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			s = b - fb*(b-a)/(fb-fa)
		}

		cond1 := (s < (3*a+b)/4 || s > b) && a < b || (s > (3*a+b)/4 || s < b) && a >= b
		cond2 := mflag && math.Abs(s-b) >= math.Abs(b-c)/2
		cond3 := !mflag && math.Abs(s-b) >= math.Abs(c-d)/2
		cond4 := mflag && math.Abs(b-c) < DefaultTolerance
		cond5 := !mflag && math.Abs(c-d) < DefaultTolerance

		if cond1 || cond2 || cond3 || cond4 || cond5 {
			s = (a + b) / 2
			mflag = true
		} else {
			mflag = false
		}

		fs := f(s)
		d = c
		c, fc = b, fb

		if (fa < 0) != (fs < 0) {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}
		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}
	return 0, fmt.Errorf("numerics: brent root solve did not converge within %d iterations", defaultMaxIter)
}
