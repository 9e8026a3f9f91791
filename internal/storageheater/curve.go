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

// Package storageheater implements the electric storage heater core
// model: a state-of-charge ODE driven by charge/discharge power curves
// that are themselves functions of SOC, plus the three charge-control
// logics (manual, automatic/CELECT, HHRSH) that decide how much of the
// available off-peak charge period each unit actually draws (component
// F).
package storageheater

import (
	"fmt"
	"math"
)

// PowerCurve is a monotonic power-vs-SOC lookup (SOC in [0,1]), used for
// both the ESH_min_output curve (standby/case-loss output, OutputMode
// MIN) and the ESH_max_output curve (full output, OutputMode MAX) of a
// storage heater core, per spec §4.F.
type PowerCurve struct {
	SOC   []float64
	Power []float64
}

// NewPowerCurve builds a power curve and validates it the way the
// reference model's ESH_min_output/ESH_max_output test data is
// validated: SOC strictly increasing from 0.0 to 1.0, and output
// monotonically non-decreasing in SOC starting at P=0 when empty (a
// storage heater's core cools as it depletes, so output can only grow
// as SOC rises), sampled at 100 interpolated points across the domain.
func NewPowerCurve(soc, power []float64) (*PowerCurve, error) {
	if len(soc) != len(power) || len(soc) < 2 {
		return nil, fmt.Errorf("storageheater: power curve needs at least 2 matched (soc, power) points")
	}
	for i := 1; i < len(soc); i++ {
		if soc[i] <= soc[i-1] {
			return nil, fmt.Errorf("storageheater: power curve SOC values must be strictly increasing")
		}
	}
	const eps = 1e-9
	if math.Abs(soc[0]) > eps {
		return nil, fmt.Errorf("storageheater: power curve's first SOC value must be 0.0 (fully discharged)")
	}
	if math.Abs(soc[len(soc)-1]-1) > eps {
		return nil, fmt.Errorf("storageheater: power curve's last SOC value must be 1.0 (fully charged)")
	}
	if math.Abs(power[0]) > eps {
		return nil, fmt.Errorf("storageheater: power curve must start at P=0 when SOC=0")
	}
	c := &PowerCurve{SOC: append([]float64(nil), soc...), Power: append([]float64(nil), power...)}
	const samples = 100
	prev := c.Lookup(0)
	for i := 1; i <= samples; i++ {
		s := float64(i) / samples
		v := c.Lookup(s)
		if v < prev-eps {
			return nil, fmt.Errorf("storageheater: power curve is not monotonically non-decreasing in SOC (sample %d)", i)
		}
		prev = v
	}
	return c, nil
}

// ValidatePMaxAtLeastPMin checks, by sampling 100 interpolated points
// across the SOC domain, that the max-output curve never dips below the
// min-output curve — a storage heater's fan-assisted/damper-open output
// must always be able to at least match its standby case-loss output.
func ValidatePMaxAtLeastPMin(pMin, pMax *PowerCurve) error {
	const samples = 100
	for i := 0; i <= samples; i++ {
		s := float64(i) / samples
		if pMax.Lookup(s) < pMin.Lookup(s)-1e-9 {
			return fmt.Errorf("storageheater: max-output curve must be >= min-output curve at all SOC (sample %d)", i)
		}
	}
	return nil
}

// Lookup linearly interpolates the curve at the given SOC, clamping
// outside the domain.
func (c *PowerCurve) Lookup(soc float64) float64 {
	n := len(c.SOC)
	if soc <= c.SOC[0] {
		return c.Power[0]
	}
	if soc >= c.SOC[n-1] {
		return c.Power[n-1]
	}
	for i := 1; i < n; i++ {
		if soc <= c.SOC[i] {
			frac := (soc - c.SOC[i-1]) / (c.SOC[i] - c.SOC[i-1])
			return c.Power[i-1] + frac*(c.Power[i]-c.Power[i-1])
		}
	}
	return c.Power[n-1]
}
