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

package storageheater

import (
	"math"
	"testing"
)

func TestNewPowerCurveRejectsNonMonotonic(t *testing.T) {
	if _, err := NewPowerCurve([]float64{0, 0.5, 1}, []float64{0, 3, 0.5}); err == nil {
		t.Fatal("expected error for non-monotonic power curve")
	}
}

func TestNewPowerCurveRejectsNonZeroStart(t *testing.T) {
	if _, err := NewPowerCurve([]float64{0, 0.5, 1}, []float64{1, 2, 3}); err == nil {
		t.Fatal("expected error for a curve that doesn't start at P=0")
	}
}

func TestNewPowerCurveAcceptsMonotonic(t *testing.T) {
	c, err := NewPowerCurve([]float64{0, 0.5, 1}, []float64{0, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Lookup(0.25); got <= 0 || got >= 2 {
		t.Errorf("Lookup(0.25) = %g, want between 0 and 2", got)
	}
}

func TestValidatePMaxAtLeastPMinRejectsCrossedCurves(t *testing.T) {
	pMin, _ := NewPowerCurve([]float64{0, 1}, []float64{0, 3})
	pMax, _ := NewPowerCurve([]float64{0, 1}, []float64{0, 2})
	if err := ValidatePMaxAtLeastPMin(pMin, pMax); err == nil {
		t.Fatal("expected error when max-output curve falls below min-output curve")
	}
}

func testHeater(t *testing.T, logic ChargeLogic) *Heater {
	t.Helper()
	// Standby (case-loss) output rises gently with SOC.
	pMin, err := NewPowerCurve([]float64{0, 1}, []float64{0, 0.3})
	if err != nil {
		t.Fatalf("min-output curve: %v", err)
	}
	// Full output rises much faster with SOC.
	pMax, err := NewPowerCurve([]float64{0, 1}, []float64{0, 2})
	if err != nil {
		t.Fatalf("max-output curve: %v", err)
	}
	h, err := NewHeater("h1", 40, 3, pMin, pMax, 1, logic)
	if err != nil {
		t.Fatalf("NewHeater: %v", err)
	}
	return h
}

func TestNewHeaterRejectsCrossedCurves(t *testing.T) {
	pMin, _ := NewPowerCurve([]float64{0, 1}, []float64{0, 3})
	pMax, _ := NewPowerCurve([]float64{0, 1}, []float64{0, 2})
	if _, err := NewHeater("bad", 10, 1, pMin, pMax, 0, ChargeLogicManual); err == nil {
		t.Fatal("expected error when max-output curve is below min-output curve")
	}
}

func TestHeaterDeliverChargesTowardTarget(t *testing.T) {
	h := testHeater(t, ChargeLogicManual)
	h.SOC = 0.1
	_, charged, instant, err := h.Deliver(0, true, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charged <= 0 {
		t.Errorf("expected positive charged energy, got %g", charged)
	}
	if instant != 0 {
		t.Errorf("expected zero instant backup with no demand, got %g", instant)
	}
	if h.SOC <= 0.1 {
		t.Errorf("expected SOC to increase, got %g", h.SOC)
	}
}

func TestHeaterDeliverFloorsAtMinOutputEvenBelowDemand(t *testing.T) {
	h := testHeater(t, ChargeLogicManual)
	h.SOC = 1
	// Demand well below what MIN-mode alone would release; the unit
	// can't throttle below its standby output.
	delivered, _, instant, err := h.Deliver(0.0001, false, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered <= 0.0001 {
		t.Errorf("expected MIN-mode floor output above the tiny demand, got %g", delivered)
	}
	if instant != 0 {
		t.Errorf("expected no instant backup when MIN mode exceeds demand, got %g", instant)
	}
}

func TestHeaterHoldsTargetSOCUnderConcurrentDemand(t *testing.T) {
	h := testHeater(t, ChargeLogicManual)
	h.SOC = 1
	// At the charge target with the window still open, the unit
	// trickle-charges to match its discharge: SOC holds at the target
	// instead of sagging while demand is met from the store.
	delivered, charged, _, err := h.Deliver(1.5, true, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered < 1.5-1e-6 {
		t.Errorf("expected demand met from MAX mode, delivered %g", delivered)
	}
	if charged <= 0 {
		t.Errorf("expected trickle charging while holding the target, got %g", charged)
	}
	if h.SOC < 0.99 {
		t.Errorf("SOC sagged to %g during the charge window; want it held at the target", h.SOC)
	}
}

func TestHeaterDeliverFallsBackToInstantBackup(t *testing.T) {
	h := testHeater(t, ChargeLogicManual)
	h.SOC = 0 // empty: neither curve can deliver anything
	delivered, _, instant, err := h.Deliver(5, false, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if instant <= 0 {
		t.Errorf("expected instant backup to cover unmet demand, got %g", instant)
	}
	if delivered+instant > 5+1e-9 {
		t.Errorf("total delivered+instant = %g, must not exceed demand", delivered+instant)
	}
}

func TestChargeTargetFractionColdVsMild(t *testing.T) {
	h := testHeater(t, ChargeLogicAutomatic)
	cold := h.ChargeTargetFraction(-5)
	mild := h.ChargeTargetFraction(20)
	if cold <= mild {
		t.Errorf("cold-day target (%g) should exceed mild-day target (%g)", cold, mild)
	}
	if math.Abs(cold-1) > 1e-9 {
		t.Errorf("expected full charge target below coldT, got %g", cold)
	}
}

func TestHHRSHConstructionRejectsPoorRetention(t *testing.T) {
	pMin, _ := NewPowerCurve([]float64{0, 1}, []float64{0, 50})
	pMax, _ := NewPowerCurve([]float64{0, 1}, []float64{0, 50})
	if _, err := NewHeater("leaky", 1, 1, pMin, pMax, 0, ChargeLogicHHRSH); err == nil {
		t.Fatal("expected error for a unit that cannot sustain 16h of output")
	}
}

func TestRecordHourlyRetentionAffectsTarget(t *testing.T) {
	h := testHeater(t, ChargeLogicHHRSH)
	for i := 0; i < 24; i++ {
		h.RecordHourlyRetention(0.5)
	}
	frac := h.ChargeTargetFraction(-5)
	if frac >= 1 {
		t.Errorf("expected HHRSH poor-retention penalty to reduce target below 1, got %g", frac)
	}
}
