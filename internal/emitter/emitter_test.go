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

import (
	"math"
	"testing"
)

func radiatorCircuit() *Circuit {
	return &Circuit{
		Name:               "rad1",
		Kind:                KindRadiator,
		Coeffs:             []Coefficient{{C: 1.5, N: 1.3}},
		ThermalMassKWhPerK: 0.05,
		DesignFlowTempC:    55,
		MinFlowTempC:       30,
		EcodesignClass:     EcodesignClassIV,
		TE:                 20.0,
	}
}

func TestPowerOutputWZeroBelowRoomTemp(t *testing.T) {
	c := radiatorCircuit()
	if p := c.PowerOutputW(20, 20); p != 0 {
		t.Errorf("expected zero output at deltaT=0, got %g", p)
	}
}

func TestSteadyStateEmitterTempConverges(t *testing.T) {
	c := radiatorCircuit()
	target := c.PowerOutputW(45, 20)
	te, err := c.SteadyStateEmitterTemp(target, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(te-45) > 1e-2 {
		t.Errorf("solved TE = %g, want ~45", te)
	}
}

func TestStepWarmsTowardSteadyState(t *testing.T) {
	c := radiatorCircuit()
	// Constant input well above the steady-state output at low deltaT
	// should drive TE upward over the step.
	_, err := c.Step(2000, 20, 0.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.TE <= 20 {
		t.Errorf("expected TE to rise above 20, got %g", c.TE)
	}
}

func TestWeatherCompensatedFlowTempMonotonic(t *testing.T) {
	hot := weatherCompensatedFlowTemp(EcodesignClassIV, 55, 30, 10)
	cold := weatherCompensatedFlowTemp(EcodesignClassIV, 55, 30, -3)
	if cold < hot {
		t.Errorf("flow temp at -3degC (%g) should be >= flow temp at 10degC (%g)", cold, hot)
	}
}

func TestFanCoilTableLookupInterpolatesAndClamps(t *testing.T) {
	tbl := NewFanCoilTable([]float64{10, 20, 30}, []float64{500, 1200, 1600})
	if got := tbl.Lookup(15); got <= 500 || got >= 1200 {
		t.Errorf("Lookup(15) = %g, want between 500 and 1200", got)
	}
	if got := tbl.Lookup(100); got != 1600 {
		t.Errorf("Lookup(100) = %g, want clamped 1600", got)
	}
	if got := tbl.Lookup(0); got != 0 {
		t.Errorf("Lookup(0) = %g, want 0", got)
	}
}
