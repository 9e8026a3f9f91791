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

import "math"

// PVSystem is a simplified on-site photovoltaic generator: a rated
// peak capacity, tilt/orientation, and an inverter/system efficiency,
// producing electricity from plane-of-array irradiance.
type PVSystem struct {
	PeakPowerKW     float64
	SystemEfficiency float64 // inverter + soiling + mismatch, 0-1
	TemperatureCoeffPerK float64 // fractional power loss per degC above 25
}

// ProductionKW returns the instantaneous electrical output for the
// given plane-of-array irradiance (W/m^2, at standard test condition
// 1000 W/m^2 = rated peak power) and module temperature.
func (pv *PVSystem) ProductionKW(poaIrradianceWPerM2, moduleTempC float64) float64 {
	if poaIrradianceWPerM2 <= 0 {
		return 0
	}
	eff := pv.SystemEfficiency
	if eff <= 0 {
		eff = 1
	}
	tempDerate := 1.0
	if pv.TemperatureCoeffPerK != 0 {
		tempDerate = 1 + pv.TemperatureCoeffPerK*(moduleTempC-25)
		tempDerate = math.Max(0, tempDerate)
	}
	return pv.PeakPowerKW * (poaIrradianceWPerM2 / 1000) * eff * tempDerate
}
