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

package energysupply

import (
	"fmt"
	"math"
)

// BatteryLocation selects whether temperatureDerate reduces power for an
// outdoor battery. Charge and Discharge do not apply temperatureDerate,
// so the location does not change their power limits.
type BatteryLocation int

const (
	BatteryLocationIndoor BatteryLocation = iota
	BatteryLocationOutdoor
)

// Battery is an electric battery energy-storage model: capacity, SOC,
// one-way charge/discharge efficiency derived from a round-trip
// efficiency, maximum charge and discharge rates (there is no minimum
// charge rate), and an age-dependent state-of-health derating, per
// spec §3's "Energy supply" data model.
type Battery struct {
	CapacityKWh         float64
	RoundTripEfficiency float64 // 0-1
	MaxChargeRateKW     float64
	MaxDischargeRateKW  float64
	AgeYears            float64
	Location            BatteryLocation

	SOC float64 // state, 0-1
}

// oneWayEfficiency returns sqrt(round-trip efficiency), per spec §3:
// "one-way charge/discharge efficiency = sqrt(round-trip)".
func (b *Battery) oneWayEfficiency() float64 {
	if b.RoundTripEfficiency <= 0 {
		return 1
	}
	return math.Sqrt(b.RoundTripEfficiency)
}

// stateOfHealth derates usable capacity and power limits as the
// battery ages, per spec §3's "battery age -> SOH" relationship: a
// simple linear degradation to 80% capacity retention at 10 years,
// floored at 60%.
func (b *Battery) stateOfHealth() float64 {
	soh := 1 - 0.02*b.AgeYears
	if soh < 0.6 {
		soh = 0.6
	}
	return soh
}

// temperatureDerate reduces available power for an outdoor-mounted
// battery, approximating reduced chemistry performance in cold
// ambient conditions; indoor batteries are not derated.
func (b *Battery) temperatureDerate(ambientTempC float64) float64 {
	if b.Location != BatteryLocationOutdoor {
		return 1
	}
	if ambientTempC >= 10 {
		return 1
	}
	if ambientTempC <= -10 {
		return 0.5
	}
	return 0.5 + 0.5*(ambientTempC+10)/20
}

// Charge attempts to store up to availableKWh of surplus electricity
// over dtHours, limited by the SOH-derated max charge rate and the
// remaining headroom to full SOC, and returns the electricity actually
// drawn from the supply (i.e. before one-way efficiency losses, so the
// caller's surplus ledger balances exactly per spec §8 invariant 6).
func (b *Battery) Charge(availableKWh, dtHours float64) (float64, error) {
	if b.CapacityKWh <= 0 {
		return 0, fmt.Errorf("energysupply: battery capacity must be positive")
	}
	usableCapacity := b.CapacityKWh * b.stateOfHealth()
	headroomKWh := (1 - b.SOC) * usableCapacity
	if headroomKWh <= 0 {
		return 0, nil
	}
	maxRateKWh := b.MaxChargeRateKW * b.stateOfHealth() * dtHours
	drawKWh := math.Min(availableKWh, maxRateKWh)
	storedKWh := drawKWh * b.oneWayEfficiency()
	if storedKWh > headroomKWh {
		storedKWh = headroomKWh
		drawKWh = storedKWh / b.oneWayEfficiency()
	}
	b.SOC += storedKWh / usableCapacity
	if b.SOC > 1 {
		b.SOC = 1
	}
	return drawKWh, nil
}

// Discharge attempts to deliver up to requestedKWh of electricity over
// dtHours from stored charge, limited by the SOH-derated max discharge
// rate and the available stored energy, and returns the electricity
// actually delivered to the demand side.
func (b *Battery) Discharge(requestedKWh, dtHours float64) (float64, error) {
	if b.CapacityKWh <= 0 {
		return 0, fmt.Errorf("energysupply: battery capacity must be positive")
	}
	usableCapacity := b.CapacityKWh * b.stateOfHealth()
	storedKWh := b.SOC * usableCapacity
	if storedKWh <= 0 {
		return 0, nil
	}
	maxRateKWh := b.MaxDischargeRateKW * b.stateOfHealth() * dtHours
	deliverKWh := math.Min(requestedKWh, maxRateKWh)
	drawnFromStoreKWh := deliverKWh / b.oneWayEfficiency()
	if drawnFromStoreKWh > storedKWh {
		drawnFromStoreKWh = storedKWh
		deliverKWh = drawnFromStoreKWh * b.oneWayEfficiency()
	}
	b.SOC -= drawnFromStoreKWh / usableCapacity
	if b.SOC < 0 {
		b.SOC = 0
	}
	return deliverKWh, nil
}
