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

// Package controls implements the time- and charge-control hierarchy
// (component I): on/off schedules, cost-minimising on/off selection,
// setpoint schedules, the polymorphic storage-heater charge-control
// logic, and the boolean/arithmetic combination-control tree.
package controls

import (
	"fmt"
	"math"
)

// Control is the common interface every control variant implements: a
// query of whether the controlled end-use is "on" at the given
// timestep index.
type Control interface {
	Name() string
	IsOn(timestep int) bool
}

// SetpointControl is implemented by controls that additionally provide
// a temperature setpoint at a timestep (SetpointTimeControl, and any
// CombinationTimeControl whose leaves are all setpoint controls).
type SetpointControl interface {
	Control
	Setpoint(timestep int) (value float64, isOn bool)
}

// OnOffTimeControl is a simple fixed on/off schedule indexed by
// timestep.
type OnOffTimeControl struct {
	NameStr  string
	Schedule []bool
}

func (c *OnOffTimeControl) Name() string { return c.NameStr }

func (c *OnOffTimeControl) IsOn(timestep int) bool {
	if timestep < 0 || timestep >= len(c.Schedule) {
		return false
	}
	return c.Schedule[timestep]
}

// SetpointTimeControl is a fixed temperature-setpoint schedule; a
// timestep with no setpoint (represented by math.NaN or an explicit
// off-mask) is "off".
type SetpointTimeControl struct {
	NameStr    string
	Setpoints  []float64
	OffMask    []bool // true = off, overrides Setpoints for that index
	AdvancedStart float64 // hours of setback applied before a scheduled on-period, 0 if unused
}

func (c *SetpointTimeControl) Name() string { return c.NameStr }

func (c *SetpointTimeControl) IsOn(timestep int) bool {
	_, on := c.Setpoint(timestep)
	return on
}

func (c *SetpointTimeControl) Setpoint(timestep int) (float64, bool) {
	if timestep < 0 || timestep >= len(c.Setpoints) {
		return 0, false
	}
	if c.OffMask != nil && timestep < len(c.OffMask) && c.OffMask[timestep] {
		return 0, false
	}
	if math.IsNaN(c.Setpoints[timestep]) {
		return 0, false
	}
	return c.Setpoints[timestep], true
}

// CostMinimisingEntry is one hour's tariff cost used by
// OnOffCostMinimisingTimeControl's ranking.
type CostMinimisingEntry struct {
	Cost float64
}

// OnOffCostMinimisingTimeControl turns on the NumOnHours cheapest hours
// of the whole Costs schedule (per spec §5/§9's "nsmallest" ranking);
// the schedule is not split into separate windows.
// Per the Open Question decision recorded in DESIGN.md, ties are broken
// by stable original index order: the earliest-indexed hour among equal
// costs is preferred, matching a stable "nsmallest" sort rather than an
// unspecified arbitrary tie-break.
type OnOffCostMinimisingTimeControl struct {
	NameStr    string
	Costs      []float64
	NumOnHours int
	// cached on each ComputeSchedule call.
	on []bool
}

func (c *OnOffCostMinimisingTimeControl) Name() string { return c.NameStr }

// ComputeSchedule ranks all hours by ascending cost (stable sort, so
// equal-cost hours keep their original relative order) and marks the
// cheapest NumOnHours as on.
func (c *OnOffCostMinimisingTimeControl) ComputeSchedule() {
	n := len(c.Costs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Stable insertion sort by cost: preserves original index order
	// among equal costs without pulling in sort.SliceStable for a
	// tiny, hot-path schedule array.
	for i := 1; i < n; i++ {
		for j := i; j > 0 && c.Costs[idx[j]] < c.Costs[idx[j-1]]; j-- {
			idx[j], idx[j-1] = idx[j-1], idx[j]
		}
	}
	on := make([]bool, n)
	numOn := c.NumOnHours
	if numOn > n {
		numOn = n
	}
	for i := 0; i < numOn; i++ {
		on[idx[i]] = true
	}
	c.on = on
}

func (c *OnOffCostMinimisingTimeControl) IsOn(timestep int) bool {
	if c.on == nil {
		c.ComputeSchedule()
	}
	if timestep < 0 || timestep >= len(c.on) {
		return false
	}
	return c.on[timestep]
}

// ChargeLogicKind selects which of the five ChargeControl behaviours
// (spec §9's polymorphic charge control sum type) a given ChargeControl
// instance uses.
type ChargeLogicKind int

const (
	ChargeLogicManual ChargeLogicKind = iota
	ChargeLogicAutomatic
	ChargeLogicCelect
	ChargeLogicHHRSH
	ChargeLogicHeatBattery
)

// ChargeControl is the storage-heater/heat-battery charge-control
// front-end: it is itself a Control (on during the off-peak charge
// window) and additionally exposes TargetCharge, whose behaviour
// branches on Logic per spec §9.
type ChargeControl struct {
	NameStr       string
	ChargeWindow  []bool // true = within the off-peak charge period
	Logic         ChargeLogicKind
	FixedFraction float64            // ChargeLogicManual
	ExternalSensorTemp func(timestep int) float64 // ChargeLogicAutomatic/Celect/HHRSH
	TempCutC      float64
}

func (c *ChargeControl) Name() string { return c.NameStr }

func (c *ChargeControl) IsOn(timestep int) bool {
	if timestep < 0 || timestep >= len(c.ChargeWindow) {
		return false
	}
	return c.ChargeWindow[timestep]
}

// TargetCharge returns the target end-of-charge-period SOC fraction for
// the given timestep, branching on Logic.
func (c *ChargeControl) TargetCharge(timestep int) float64 {
	switch c.Logic {
	case ChargeLogicManual:
		if c.FixedFraction <= 0 {
			return 1
		}
		return c.FixedFraction
	case ChargeLogicAutomatic, ChargeLogicCelect, ChargeLogicHHRSH:
		if c.ExternalSensorTemp == nil {
			return 1
		}
		t := c.ExternalSensorTemp(timestep)
		if t >= c.TempCutC {
			return 0.2
		}
		return 1
	case ChargeLogicHeatBattery:
		return 1
	}
	return 1
}

// Validate checks that the charge-control configuration is internally
// consistent, per the ConfigurationError kind in spec §7.
func (c *ChargeControl) Validate() error {
	if c.Logic != ChargeLogicManual && c.ExternalSensorTemp == nil {
		return fmt.Errorf("controls: charge control %q: logic %v requires an external sensor", c.NameStr, c.Logic)
	}
	return nil
}
