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

// Package hotwater implements the event-driven hot-water demand model:
// draw-off events, warm-to-hot volume conversion, waste-water
// heat-recovery (WWHRS) topologies A/B/C, and distribution/primary
// pipework cool-down losses (component G).
package hotwater

import "sort"

// EventType distinguishes the three draw-off categories spec §4.G
// names.
type EventType int

const (
	EventShower EventType = iota
	EventBath
	EventOther
)

// Event is a single hot-water draw-off, as produced by the external
// event-stream generator for a given timestep.
type Event struct {
	Type           EventType
	Name           string
	StartHour      float64
	DurationMin    float64
	WarmTempC      float64
	VolumeL        float64 // set for Bath/Other (fixed warm-volume events)
	FlowRateLPerMin float64 // set for Shower (volume = flow rate * duration)
}

// WarmVolumeL returns the event's warm-water volume in litres.
func (e *Event) WarmVolumeL() float64 {
	if e.Type == EventShower {
		return e.FlowRateLPerMin * e.DurationMin
	}
	return e.VolumeL
}

// SortEvents orders a slice of events by start hour, for deterministic
// per-timestep processing.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].StartHour < events[j].StartHour })
}

// FracHotWater computes the fraction of a warm-water draw-off volume
// that must be drawn from the hot-water source at temperature tHot to
// produce the warm-water volume at tWarm, mixed with cold water at
// tCold, per spec §4.G: frac = (T_warm - T_cold) / (T_hot - T_cold).
func FracHotWater(tWarm, tHot, tCold float64) float64 {
	denom := tHot - tCold
	if denom <= 0 {
		return 0
	}
	frac := (tWarm - tCold) / denom
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

// HotVolumeL returns the volume of water drawn from the hot-water
// source to satisfy the given warm-water volume and temperatures.
func HotVolumeL(warmVolumeL, tWarm, tHot, tCold float64) float64 {
	return warmVolumeL * FracHotWater(tWarm, tHot, tCold)
}
