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

package hem

import (
	"github.com/hem-sim/hem/internal/energysupply"
	"github.com/hem-sim/hem/internal/hotwater"
)

// ScheduledEvent is one hot-water draw-off event, already located at an
// absolute hour-of-year, as HEM consumes pre-generated event streams
// rather than synthesising them at runtime (the occupant-behaviour
// generator is an external collaborator, per spec §1).
type ScheduledEvent struct {
	hotwater.Event
	OutletName string // Shower/Bath/Other entry name the event belongs to
	ShowerFlowRateLPerMin float64 // 0 unless OutletName is a Shower
}

// HotWaterSystem drives the event-driven hot-water demand model
// (component G) for one dwelling: draw-off consumption, WWHRS
// pre-heat recovery, distribution pipework cool-down losses, and
// primary pipework standing losses, per spec §4.G.
type HotWaterSystem struct {
	Events []ScheduledEvent // sorted by StartHour (absolute hour-of-year)

	ColdFeedC    func(hourOfYear float64) float64
	StorageTempC float64
	HotTempC     float64 // temperature water leaves the cylinder at (>= StorageTempC at the outlet)

	Pipes                    []hotwater.Pipe
	PrimaryPipeworkLossWPerK float64

	WWHRSByOutlet map[string]*hotwater.WWHRS // outlet name -> recovery unit, Shower outlets only

	FuelConn *energysupply.Connection

	nextEventIdx int
}

// HotWaterTimestepResult is one timestep's hot-water demand, energy,
// and loss breakdown, per spec §6's results CSV column set.
type HotWaterTimestepResult struct {
	DemandVolumeL        float64
	DemandEnergyInclKWh  float64
	DemandEnergyExclKWh  float64
	DurationMin          float64
	EventCount           int
	DistributionLossIntKWh float64
	DistributionLossExtKWh float64
	PrimaryLossKWh       float64
}

// Step consumes every event whose start hour falls in
// [hourStart, hourStart+dtHours), computing the hot-water volume and
// energy drawn, the WWHRS-adjusted distribution pipework losses, and
// the primary pipework standing loss, and charges the net energy to
// FuelConn. hourStart is the absolute hour-of-year at the timestep's
// start (Clock.HourOfStep(t)).
func (h *HotWaterSystem) Step(hourStart, dtHours, internalAmbientC, externalAmbientC float64) HotWaterTimestepResult {
	var res HotWaterTimestepResult
	coldC := 0.0
	if h.ColdFeedC != nil {
		coldC = h.ColdFeedC(hourStart)
	}
	hotC := h.HotTempC
	if hotC <= 0 {
		hotC = h.StorageTempC
	}

	for h.nextEventIdx < len(h.Events) && h.Events[h.nextEventIdx].StartHour < hourStart+dtHours {
		ev := h.Events[h.nextEventIdx]
		h.nextEventIdx++
		if ev.StartHour < hourStart {
			continue
		}

		warmVolumeL := ev.WarmVolumeL()
		drawTempC := ev.WarmTempC
		coldForOutlet := coldC
		if wwhrs, ok := h.WWHRSByOutlet[ev.OutletName]; ok && ev.ShowerFlowRateLPerMin > 0 {
			showerFeedC, sourceFeedC := wwhrs.Recover(ev.ShowerFlowRateLPerMin, drawTempC, coldC)
			coldForOutlet = showerFeedC
			_ = sourceFeedC // type B/C preheat applied to the shared cold feed is a building-level effect, not modelled per-event
		}

		hotVolumeL := hotwater.HotVolumeL(warmVolumeL, drawTempC, hotC, coldForOutlet)
		energyExclKWh := waterHeatKWh(hotVolumeL, hotC, coldForOutlet)

		res.DemandVolumeL += warmVolumeL
		res.DemandEnergyExclKWh += energyExclKWh
		res.DurationMin += ev.DurationMin
		res.EventCount++

		intLoss, extLoss := hotwater.DistributionLosses(h.Pipes, drawTempC, internalAmbientC, externalAmbientC)
		res.DistributionLossIntKWh += intLoss
		res.DistributionLossExtKWh += extLoss
	}

	res.PrimaryLossKWh = hotwater.PrimaryPipeworkStandingLossKWh(h.PrimaryPipeworkLossWPerK, h.StorageTempC, internalAmbientC, dtHours)
	res.DemandEnergyInclKWh = res.DemandEnergyExclKWh + res.DistributionLossIntKWh + res.DistributionLossExtKWh + res.PrimaryLossKWh

	if h.FuelConn != nil && res.DemandEnergyInclKWh > 0 {
		h.FuelConn.DemandKWh(res.DemandEnergyInclKWh)
	}
	return res
}

const waterSpecificHeatKWhPerLK = 4184.0 / 3.6e6 // J/kgK -> kWh/LK, water density 1 kg/L

// waterHeatKWh returns the energy needed to heat volumeL of water from
// coldC to hotC.
func waterHeatKWh(volumeL, hotC, coldC float64) float64 {
	deltaT := hotC - coldC
	if deltaT <= 0 || volumeL <= 0 {
		return 0
	}
	return volumeL * waterSpecificHeatKWhPerLK * deltaT
}
