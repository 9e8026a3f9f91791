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
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/hem-sim/hem/internal/numerics"
)

// ChargeLogic selects how a storage heater decides how hard to charge
// during an off-peak charge period, per spec §5.
type ChargeLogic int

const (
	// ChargeLogicManual charges to a fixed, user-set target fraction of
	// capacity every charge period regardless of conditions.
	ChargeLogicManual ChargeLogic = iota
	// ChargeLogicAutomatic (CELECT-style) modulates the charge target
	// using the previous day's external temperature, charging less on
	// mild days.
	ChargeLogicAutomatic
	// ChargeLogicHHRSH (high heat retention storage heater) additionally
	// tracks a rolling heat-retention ratio over a 24-hour ring buffer
	// and a 16-hour minimum retention window checked at construction.
	ChargeLogicHHRSH
)

// OutputMode selects which of a storage heater's two output curves
// governs a timestep: MIN is the standby/case-loss output it can never
// throttle below, MAX is the full fan-assisted/damper-open output, per
// spec §4.F's "two operating modes (min/max output)".
type OutputMode int

const (
	OutputModeMin OutputMode = iota
	OutputModeMax
)

// Heater is a single electric storage heater core: a thermal store
// charged at a fixed rate up to a controller-set target SOC, and
// discharged according to whichever of its two SOC-dependent output
// curves (PMinCurve, PMaxCurve) the demand for the timestep calls for,
// plus an instant-backup top-up for demand neither curve can meet.
type Heater struct {
	Name            string
	CapacityKWh     float64
	ChargeRateKW    float64     // fixed charging power while the control window is open
	PMinCurve       *PowerCurve // standby/case-loss output (kW) vs SOC, OutputMode MIN
	PMaxCurve       *PowerCurve // full fan-assisted/damper-open output (kW) vs SOC, OutputMode MAX
	InstantBackupKW float64     // direct-acting top-up power when PMax can't meet demand
	Logic           ChargeLogic

	ManualTargetFraction float64 // ChargeLogicManual: fixed target SOC

	SOC float64 // state, 0-1

	// heatRetentionRatio is the SOC remaining after 16 hours of
	// MIN-mode-only discharge from a full charge, computed once at
	// construction per BS EN 60531 and consulted by ChargeLogicHHRSH.
	heatRetentionRatio float64

	// hhrshRing holds the last 24 hourly heat-retention-ratio samples
	// (delivered output / charged input) for ChargeLogicHHRSH.
	hhrshRing      [24]float64
	hhrshRingIdx   int
	hhrshRingFull  bool
}

// NewHeater constructs a storage heater core. It validates that the
// max-output curve never dips below the min-output curve across the SOC
// domain, and - when Logic is ChargeLogicHHRSH - that the unit retains
// some usable output after 16 hours of MIN-mode-only discharge from a
// full charge, per spec §5's construction-time checks.
func NewHeater(name string, capacityKWh, chargeRateKW float64, pMin, pMax *PowerCurve, instantBackupKW float64, logic ChargeLogic) (*Heater, error) {
	if capacityKWh <= 0 {
		return nil, fmt.Errorf("storageheater %q: capacity must be positive", name)
	}
	if pMin == nil || pMax == nil {
		return nil, fmt.Errorf("storageheater %q: both min- and max-output curves are required", name)
	}
	if err := ValidatePMaxAtLeastPMin(pMin, pMax); err != nil {
		return nil, fmt.Errorf("storageheater %q: %w", name, err)
	}
	h := &Heater{
		Name:            name,
		CapacityKWh:     capacityKWh,
		ChargeRateKW:    chargeRateKW,
		PMinCurve:       pMin,
		PMaxCurve:       pMax,
		InstantBackupKW: instantBackupKW,
		Logic:           logic,
	}
	h.heatRetentionRatio = simulate16hRetention(pMin, capacityKWh)
	if logic == ChargeLogicHHRSH && h.heatRetentionRatio <= 0 {
		return nil, fmt.Errorf("storageheater %q: HHRSH unit must retain usable heat output for at least 16 hours", name)
	}
	return h, nil
}

// simulate16hRetention integrates dSOC/dt = -PMin(SOC)/capacity from a
// full charge over 16 hours (the BS EN 60531 heat-retention test
// duration) with a terminal event at SOC=0, returning the SOC remaining
// at the end.
func simulate16hRetention(pMin *PowerCurve, capacityKWh float64) float64 {
	deriv := func(t float64, y []float64) []float64 {
		soc := clamp01(y[0])
		return []float64{-pMin.Lookup(soc) / capacityKWh}
	}
	res, err := numerics.SolveIVP(deriv, 0, 16, []float64{1.0}, 1e-1, 1e-3, &numerics.Event{
		Value:    func(t float64, y []float64) float64 { return y[0] },
		Terminal: true,
	})
	if err != nil {
		return 0
	}
	final := res.Y[len(res.Y)-1][0]
	return clamp01(final)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ChargeTargetFraction returns the target end-of-charge SOC fraction
// for the next charge period, given the control logic and (for
// Automatic/HHRSH) the previous day's mean external temperature.
func (h *Heater) ChargeTargetFraction(prevDayMeanExternalTempC float64) float64 {
	switch h.Logic {
	case ChargeLogicManual:
		if h.ManualTargetFraction <= 0 {
			return 1
		}
		return h.ManualTargetFraction
	case ChargeLogicAutomatic, ChargeLogicHHRSH:
		// Linear charge-compensation: full charge below 0 degC, tapering
		// to a 20% minimum charge above 15 degC.
		const coldT, mildT = 0.0, 15.0
		const minFrac = 0.2
		if prevDayMeanExternalTempC >= mildT {
			return minFrac
		}
		frac := 1.0
		if prevDayMeanExternalTempC > coldT {
			frac = 1 - (1-minFrac)*(prevDayMeanExternalTempC-coldT)/(mildT-coldT)
		}
		if h.Logic == ChargeLogicHHRSH {
			// HHRSH units additionally back off the target when the
			// rolling retention ratio shows poor overnight retention,
			// to avoid overcharging a leaky unit.
			frac *= h.meanRetentionRatio()
			if frac < minFrac {
				frac = minFrac
			}
		}
		return frac
	}
	return 1
}

func (h *Heater) meanRetentionRatio() float64 {
	n := 24
	if !h.hhrshRingFull {
		n = h.hhrshRingIdx
	}
	if n == 0 {
		return 1
	}
	return floats.Sum(h.hhrshRing[:n]) / float64(n)
}

// RecordHourlyRetention pushes a new hourly retention-ratio sample
// (delivered output kWh / charged input kWh for that hour, clamped to
// [0,1]) into the 24-hour HHRSH ring buffer.
func (h *Heater) RecordHourlyRetention(ratio float64) {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	h.hhrshRing[h.hhrshRingIdx] = ratio
	h.hhrshRingIdx = (h.hhrshRingIdx + 1) % 24
	if h.hhrshRingIdx == 0 {
		h.hhrshRingFull = true
	}
}

// MaxChargePowerKW returns the fixed charging power the unit draws
// while its control window is open.
func (h *Heater) MaxChargePowerKW() float64 {
	return h.ChargeRateKW
}

// Deliver implements the reference model's demand_energy: it first asks
// how much OutputMode MIN alone would release over dtHours (a storage
// heater can't throttle below its standby case-loss output, so that
// floor is delivered even if it overshoots demand); only when MIN can't
// meet demand does it re-solve in OutputMode MAX, and only when MAX
// still can't meet demand does it top up the shortfall from
// InstantBackupKW. SOC is advanced by energy balance (charged minus
// actually-delivered, not the simulated curve's raw output) so that
// demand capped below a mode's ceiling is reflected in the next
// timestep's starting charge, per spec §4.F/§5.
func (h *Heater) Deliver(demandKWh float64, chargeWindowOpen bool, targetChargeFraction, dtHours float64) (deliveredKWh, chargedKWh, instantKWh float64, err error) {
	if h.CapacityKWh <= 0 {
		return 0, 0, 0, fmt.Errorf("storageheater %q: capacity must be positive", h.Name)
	}
	minDelivered, minCharged, err := h.simulateOutput(OutputModeMin, chargeWindowOpen, targetChargeFraction, dtHours)
	if err != nil {
		return 0, 0, 0, err
	}
	if minDelivered >= demandKWh {
		deliveredKWh, chargedKWh = minDelivered, minCharged
	} else {
		maxDelivered, maxCharged, err := h.simulateOutput(OutputModeMax, chargeWindowOpen, targetChargeFraction, dtHours)
		if err != nil {
			return 0, 0, 0, err
		}
		if maxDelivered < demandKWh {
			deliveredKWh, chargedKWh = maxDelivered, maxCharged
			unmet := demandKWh - maxDelivered
			instantKWh = unmet
			if cap := h.InstantBackupKW * dtHours; instantKWh > cap {
				instantKWh = cap
			}
		} else {
			deliveredKWh, chargedKWh = demandKWh, maxCharged
		}
	}
	h.SOC = clamp01(h.SOC + (chargedKWh-deliveredKWh)/h.CapacityKWh)
	return deliveredKWh, chargedKWh, instantKWh, nil
}

// simulateOutput integrates the SOC/charged-energy/delivered-energy ODE
// over dtHours for the given output mode, with a terminal event at
// SOC=0 (the unit cannot discharge below empty). Charging, when the
// control window is open, draws ChargeRateKW until SOC reaches
// targetChargeFraction.
func (h *Heater) simulateOutput(mode OutputMode, chargeWindowOpen bool, targetChargeFraction, dtHours float64) (deliveredKWh, chargedKWh float64, err error) {
	curve := h.PMinCurve
	if mode == OutputModeMax {
		curve = h.PMaxCurve
	}
	socCap := 1.0
	chargeRate := 0.0
	if chargeWindowOpen {
		chargeRate = h.ChargeRateKW
		socCap = clamp01(targetChargeFraction)
	}
	deriv := func(t float64, y []float64) []float64 {
		soc := clamp01(y[0])
		dischargeRate := curve.Lookup(soc)
		chargeNow := 0.0
		if chargeRate > 0 && socCap > 0 {
			if soc < socCap {
				chargeNow = chargeRate
			} else {
				// At the target: trickle-charge to match the discharge
				// so the unit holds its state of charge through the
				// rest of the window, capped at the element's rating.
				chargeNow = dischargeRate
				if chargeNow > chargeRate {
					chargeNow = chargeRate
				}
			}
		}
		return []float64{(chargeNow - dischargeRate) / h.CapacityKWh, chargeNow, dischargeRate}
	}
	res, ierr := numerics.SolveIVP(deriv, 0, dtHours, []float64{h.SOC, 0, 0}, 1e-4, 1e-6, &numerics.Event{
		Value:    func(t float64, y []float64) float64 { return y[0] },
		Terminal: true,
	})
	if ierr != nil {
		return 0, 0, fmt.Errorf("storageheater %q: %w", h.Name, ierr)
	}
	final := res.Y[len(res.Y)-1]
	return final[2], final[1], nil
}
