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

package controls

// ForecastWindowHours is the length of the smart-appliance forecast window,
// one slot per hour.
const ForecastWindowHours = 24

// SmartApplianceControl time-shifts flexible appliance demand against a
// rolling 24-hour forecast of spare supply capacity (surplus generation
// plus battery headroom, kWh per hour slot). Appliance demand booked
// into a slot is decremented from that slot's remaining capacity
// destructively, so later bookings see only what is left.
//
// The ring advances exactly one slot per real timestep; the entry that
// rolls out of the window is cleared rather than carried forward.
type SmartApplianceControl struct {
	NameStr string
	PowerKW float64
	Supply  string // name of the EnergySupply whose headroom the forecast tracks

	forecast [ForecastWindowHours]float64
	head     int
}

func (c *SmartApplianceControl) Name() string { return c.NameStr }

// IsOn reports whether the appliance may run now: the current slot must
// hold at least one hour of the appliance's rated power.
func (c *SmartApplianceControl) IsOn(timestep int) bool {
	return c.forecast[c.head] >= c.PowerKW
}

// SetForecast overwrites the spare-capacity forecast offsetHours ahead
// of the current slot. Offsets outside [0, 24) are ignored.
func (c *SmartApplianceControl) SetForecast(offsetHours int, spareKWh float64) {
	if offsetHours < 0 || offsetHours >= ForecastWindowHours {
		return
	}
	c.forecast[(c.head+offsetHours)%ForecastWindowHours] = spareKWh
}

// ForecastAt returns the remaining spare capacity offsetHours ahead, or
// 0 for offsets outside the window.
func (c *SmartApplianceControl) ForecastAt(offsetHours int) float64 {
	if offsetHours < 0 || offsetHours >= ForecastWindowHours {
		return 0
	}
	return c.forecast[(c.head+offsetHours)%ForecastWindowHours]
}

// AddApplianceDemand books kWh of appliance demand into the slot
// offsetHours ahead, decrementing that slot's remaining capacity. The
// booking is capped at what the slot still holds; the amount actually
// reserved is returned.
func (c *SmartApplianceControl) AddApplianceDemand(offsetHours int, kWh float64) float64 {
	if offsetHours < 0 || offsetHours >= ForecastWindowHours || kWh <= 0 {
		return 0
	}
	i := (c.head + offsetHours) % ForecastWindowHours
	reserved := kWh
	if reserved > c.forecast[i] {
		reserved = c.forecast[i]
	}
	c.forecast[i] -= reserved
	return reserved
}

// Advance rotates the window by one slot at a real timestep boundary.
// The slot that rolls out becomes the new far edge of the window and is
// cleared, so stale forecasts never survive a rollover.
func (c *SmartApplianceControl) Advance() {
	c.forecast[c.head] = 0
	c.head = (c.head + 1) % ForecastWindowHours
}
