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
	"fmt"
	"math"
)

// Derivative is an ODE right-hand side dy/dt = f(t, y) for a vector
// state y.
type Derivative func(t float64, y []float64) []float64

// Event is a terminal event function: integration stops when Value
// crosses zero. Terminal must be true for the integrator to stop.
type Event struct {
	Value    func(t float64, y []float64) float64
	Terminal bool
}

// IVPResult is the outcome of an adaptive IVP integration.
type IVPResult struct {
	T        []float64
	Y        [][]float64
	Stopped  bool // true if a terminal event fired before tEnd
	StopTime float64
}

// dormandPrince45 coefficients (Butcher tableau), used for the embedded
// 4(5)-order Runge-Kutta step that spec §5 refers to as "RK45 with
// default scipy.integrate tolerances".
var (
	dpC = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA = [7][6]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	dpB5 = [7]float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0}
	dpB4 = [7]float64{5179.0 / 57600, 0, 7571.0 / 16695, 393.0 / 640, -92097.0 / 339200, 187.0 / 2100, 1.0 / 40}
)

// SolveIVP integrates dy/dt = f(t,y) from t0 to t1 starting at y0, using
// an adaptive embedded Dormand-Prince 4(5) Runge-Kutta scheme with the
// given relative/absolute tolerances (matching spec §5's "RK45 with
// default scipy.integrate tolerances" and the storage-heater-specific
// rtol/atol overrides). An optional terminal event stops integration
// early when its value function crosses zero.
func SolveIVP(f Derivative, t0, t1 float64, y0 []float64, rtol, atol float64, event *Event) (IVPResult, error) {
	if rtol <= 0 {
		rtol = 1e-3
	}
	if atol <= 0 {
		atol = 1e-6
	}
	n := len(y0)
	t := t0
	y := append([]float64(nil), y0...)
	h := (t1 - t0) / 10
	if h == 0 {
		return IVPResult{T: []float64{t0}, Y: [][]float64{y0}}, nil
	}
	const hMin = 1e-10
	const maxSteps = 100000

	res := IVPResult{T: []float64{t}, Y: [][]float64{append([]float64(nil), y...)}}

	var prevEventVal float64
	haveEvent := event != nil
	if haveEvent {
		prevEventVal = event.Value(t, y)
	}

	steps := 0
	for (t1 > t0 && t < t1) || (t1 < t0 && t > t1) {
		steps++
		if steps > maxSteps {
			return res, fmt.Errorf("numerics: SolveIVP exceeded %d steps without reaching t1", maxSteps)
		}
		if (t1 > t0 && t+h > t1) || (t1 < t0 && t+h < t1) {
			h = t1 - t
		}

		var k [7][]float64
		k[0] = f(t, y)
		for i := 1; i < 7; i++ {
			yi := make([]float64, n)
			for j := 0; j < n; j++ {
				sum := 0.0
				for l := 0; l < i; l++ {
					sum += dpA[i][l] * k[l][j]
				}
				yi[j] = y[j] + h*sum
			}
			k[i] = f(t+dpC[i]*h, yi)
		}

		y5 := make([]float64, n)
		y4 := make([]float64, n)
		var errNorm float64
		for j := 0; j < n; j++ {
			var s5, s4 float64
			for i := 0; i < 7; i++ {
				s5 += dpB5[i] * k[i][j]
				s4 += dpB4[i] * k[i][j]
			}
			y5[j] = y[j] + h*s5
			y4[j] = y[j] + h*s4
			sc := atol + rtol*math.Max(math.Abs(y[j]), math.Abs(y5[j]))
			e := (y5[j] - y4[j]) / sc
			errNorm += e * e
		}
		errNorm = math.Sqrt(errNorm / float64(n))

		if errNorm <= 1 || math.Abs(h) <= hMin {
			t = t + h
			y = y5
			res.T = append(res.T, t)
			res.Y = append(res.Y, append([]float64(nil), y...))

			if haveEvent {
				ev := event.Value(t, y)
				if (ev < 0) != (prevEventVal < 0) {
					// Bisect within the step to localize the crossing.
					tCross, _ := BrentRoot(res.T[len(res.T)-2], t, func(tt float64) float64 {
						frac := (tt - res.T[len(res.T)-2]) / h
						yy := make([]float64, n)
						for j := range yy {
							yy[j] = res.Y[len(res.Y)-2][j] + frac*(y[j]-res.Y[len(res.Y)-2][j])
						}
						return event.Value(tt, yy)
					})
					res.Stopped = true
					res.StopTime = tCross
					return res, nil
				}
				prevEventVal = ev
			}

			if errNorm > 0 {
				factor := 0.9 * math.Pow(1/errNorm, 0.2)
				factor = math.Max(0.2, math.Min(5, factor))
				h *= factor
			}
		} else {
			factor := 0.9 * math.Pow(1/errNorm, 0.25)
			factor = math.Max(0.1, math.Min(1, factor))
			h *= factor
		}
	}
	return res, nil
}
