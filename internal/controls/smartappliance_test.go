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

import "testing"

func TestSmartApplianceDestructiveBooking(t *testing.T) {
	c := &SmartApplianceControl{NameStr: "washer", PowerKW: 2}
	c.SetForecast(3, 5)

	if got := c.AddApplianceDemand(3, 2); got != 2 {
		t.Errorf("first booking reserved %g, want 2", got)
	}
	if got := c.ForecastAt(3); got != 3 {
		t.Errorf("slot capacity after booking = %g, want 3", got)
	}
	// Over-booking is capped at what the slot still holds.
	if got := c.AddApplianceDemand(3, 10); got != 3 {
		t.Errorf("capped booking reserved %g, want 3", got)
	}
	if got := c.ForecastAt(3); got != 0 {
		t.Errorf("slot capacity after exhaustion = %g, want 0", got)
	}
}

func TestSmartApplianceIsOnTracksCurrentSlot(t *testing.T) {
	c := &SmartApplianceControl{NameStr: "dishwasher", PowerKW: 1.5}
	if c.IsOn(0) {
		t.Error("empty forecast should be off")
	}
	c.SetForecast(0, 2)
	if !c.IsOn(0) {
		t.Error("current slot holds 2 kWh against a 1.5 kW appliance; want on")
	}
	c.SetForecast(0, 1)
	if c.IsOn(0) {
		t.Error("1 kWh cannot cover an hour at 1.5 kW; want off")
	}
}

func TestSmartApplianceRolloverClearsStaleEntries(t *testing.T) {
	c := &SmartApplianceControl{NameStr: "washer", PowerKW: 1}
	c.SetForecast(0, 4)
	c.SetForecast(1, 7)

	c.Advance()
	if got := c.ForecastAt(0); got != 7 {
		t.Errorf("offset-1 entry should now be current, got %g", got)
	}
	// The rolled-out entry must not reappear when the window wraps all
	// the way around.
	for i := 1; i < ForecastWindowHours; i++ {
		c.Advance()
	}
	if got := c.ForecastAt(0); got != 0 {
		t.Errorf("stale entry survived rollover: %g", got)
	}
}
