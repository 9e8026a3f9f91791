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

import (
	"math"
	"testing"
)

func TestFracHotWaterBounds(t *testing.T) {
	if f := FracHotWater(41, 55, 10); f <= 0 || f >= 1 {
		t.Errorf("frac = %g, want strictly between 0 and 1", f)
	}
	if f := FracHotWater(5, 55, 10); f != 0 {
		t.Errorf("expected clamp to 0 below cold temp, got %g", f)
	}
	if f := FracHotWater(60, 55, 10); f != 1 {
		t.Errorf("expected clamp to 1 above hot temp, got %g", f)
	}
}

func TestEventWarmVolume(t *testing.T) {
	shower := Event{Type: EventShower, FlowRateLPerMin: 8, DurationMin: 5}
	if v := shower.WarmVolumeL(); v != 40 {
		t.Errorf("shower warm volume = %g, want 40", v)
	}
	bath := Event{Type: EventBath, VolumeL: 80}
	if v := bath.WarmVolumeL(); v != 80 {
		t.Errorf("bath warm volume = %g, want 80", v)
	}
}

func TestSortEventsStable(t *testing.T) {
	events := []Event{
		{Name: "b", StartHour: 2},
		{Name: "a", StartHour: 1},
		{Name: "c", StartHour: 1},
	}
	SortEvents(events)
	if events[0].StartHour != 1 || events[1].StartHour != 1 || events[2].StartHour != 2 {
		t.Fatalf("events not sorted by start hour: %+v", events)
	}
	if events[0].Name != "a" || events[1].Name != "c" {
		t.Errorf("equal-start events should retain original relative order, got %s,%s", events[0].Name, events[1].Name)
	}
}

func TestWWHRSTypeARoutesToShowerFeed(t *testing.T) {
	w := &WWHRS{Topology: WWHRSTypeA, FlowRateLPerMin: []float64{6, 12}, Efficiency: []float64{0.3, 0.5}}
	showerFeed, sourceFeed := w.Recover(9, 35, 10)
	if showerFeed <= 10 {
		t.Errorf("expected shower feed to be preheated above cold temp, got %g", showerFeed)
	}
	if sourceFeed != 10 {
		t.Errorf("type A should not preheat the source feed, got %g", sourceFeed)
	}
}

func TestWWHRSTypeCSplits(t *testing.T) {
	w := &WWHRS{Topology: WWHRSTypeC, FlowRateLPerMin: []float64{6, 12}, Efficiency: []float64{0.4, 0.4}, SplitFactor: 0.5}
	showerFeed, sourceFeed := w.Recover(9, 35, 10)
	if math.Abs(showerFeed-sourceFeed) > 1e-9 {
		t.Errorf("expected equal split of preheat, got %g vs %g", showerFeed, sourceFeed)
	}
}

func TestPipeCoolDownLossNonNegative(t *testing.T) {
	p := Pipe{Location: PipeInternal, InternalDiaMM: 15, LengthM: 5}
	loss := p.CoolDownLossKWh(45, 20)
	if loss <= 0 {
		t.Errorf("expected positive cool-down loss, got %g", loss)
	}
	if loss2 := p.CoolDownLossKWh(15, 20); loss2 != 0 {
		t.Errorf("expected zero loss when draw temp below ambient, got %g", loss2)
	}
}

func TestInsulationReducesLoss(t *testing.T) {
	bare := Pipe{Location: PipeExternal, InternalDiaMM: 15, LengthM: 5}
	lagged := Pipe{Location: PipeExternal, InternalDiaMM: 15, LengthM: 5, InsulationThicknessMM: 25}
	if lagged.CoolDownLossKWh(45, 5) >= bare.CoolDownLossKWh(45, 5) {
		t.Error("expected insulated pipe to lose less heat than bare pipe")
	}
}

func TestDistributionLossesSplitByLocation(t *testing.T) {
	pipes := []Pipe{
		{Location: PipeInternal, InternalDiaMM: 15, LengthM: 3},
		{Location: PipeExternal, InternalDiaMM: 15, LengthM: 3},
	}
	internal, external := DistributionLosses(pipes, 45, 20, 5)
	if internal <= 0 || external <= 0 {
		t.Errorf("expected both internal (%g) and external (%g) losses to be positive", internal, external)
	}
	if external <= internal {
		t.Error("expected external losses to exceed internal losses given the larger ambient delta")
	}
}
