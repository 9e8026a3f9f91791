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

package hotwater

// WWHRSTopology selects one of the three instantaneous waste-water
// heat-recovery system topologies spec §4.G distinguishes: recovered
// heat returning to the shower head (A), to the hot-water source's
// cold-feed (B), or split across both (C).
type WWHRSTopology int

const (
	WWHRSTypeA WWHRSTopology = iota
	WWHRSTypeB
	WWHRSTypeC
)

// WWHRS is an instantaneous waste-water heat-recovery unit: it
// intercepts the warm waste flow from a shower draw-off and
// pre-warms incoming cold water, with efficiency varying by flow rate.
type WWHRS struct {
	Topology    WWHRSTopology
	FlowRateLPerMin []float64 // efficiency curve independent variable
	Efficiency  []float64     // matched-length efficiency values, 0-1
	// SplitFactor applies to WWHRSTypeC: the fraction of recovered heat
	// routed to the shower feed rather than the hot-water source feed.
	SplitFactor float64
}

// EfficiencyAt linearly interpolates the efficiency curve at the given
// flow rate, clamping outside the domain.
func (w *WWHRS) EfficiencyAt(flowRateLPerMin float64) float64 {
	n := len(w.FlowRateLPerMin)
	if n == 0 {
		return 0
	}
	if flowRateLPerMin <= w.FlowRateLPerMin[0] {
		return w.Efficiency[0]
	}
	if flowRateLPerMin >= w.FlowRateLPerMin[n-1] {
		return w.Efficiency[n-1]
	}
	for i := 1; i < n; i++ {
		if flowRateLPerMin <= w.FlowRateLPerMin[i] {
			frac := (flowRateLPerMin - w.FlowRateLPerMin[i-1]) / (w.FlowRateLPerMin[i] - w.FlowRateLPerMin[i-1])
			return w.Efficiency[i-1] + frac*(w.Efficiency[i]-w.Efficiency[i-1])
		}
	}
	return w.Efficiency[n-1]
}

// Recover computes the preheated shower-feed and hot-water-source-feed
// cold temperatures after WWHRS recovery from a shower draw-off at the
// given flow rate, waste (drain) temperature, and incoming mains cold
// temperature.
//
// Type A routes all recovered preheat to the shower's own cold feed
// (reducing the hot water the shower needs to draw); Type B routes it
// to the hot-water source's cold feed instead (every other hot-water
// use benefits); Type C splits the recovered preheat by SplitFactor.
func (w *WWHRS) Recover(flowRateLPerMin, wasteTempC, coldTempC float64) (showerFeedC, sourceFeedC float64) {
	eff := w.EfficiencyAt(flowRateLPerMin)
	preheat := eff * (wasteTempC - coldTempC)
	switch w.Topology {
	case WWHRSTypeA:
		return coldTempC + preheat, coldTempC
	case WWHRSTypeB:
		return coldTempC, coldTempC + preheat
	case WWHRSTypeC:
		split := w.SplitFactor
		if split < 0 {
			split = 0
		}
		if split > 1 {
			split = 1
		}
		return coldTempC + preheat*split, coldTempC + preheat*(1-split)
	}
	return coldTempC, coldTempC
}
