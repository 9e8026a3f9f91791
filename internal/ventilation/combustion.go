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

package ventilation

// CombustionFuel identifies the appliance-system-factor lookup table to
// use for a combustion appliance's extract flow.
type CombustionFuel int

const (
	FuelGas CombustionFuel = iota
	FuelOil
	FuelSolidFuel
)

// ApplianceType distinguishes open-flued, room-sealed, and flueless
// appliances for the system-factor lookup.
type ApplianceType int

const (
	OpenFlued ApplianceType = iota
	RoomSealed
	Flueless
)

var fuelFlowFactor = map[CombustionFuel]float64{
	FuelGas:       0.0000333, // kg/s per kW input, approximate stoichiometric flue flow
	FuelOil:       0.0000450,
	FuelSolidFuel: 0.0000620,
}

var systemFactor = map[ApplianceType]float64{
	OpenFlued:  1.0,
	RoomSealed: 0.0, // room-sealed appliances draw combustion air from outside, no zone extract
	Flueless:   0.5,
}

// CombustionApplianceExtract returns the extract mass flow, kg/s,
// contributed by a combustion appliance, per spec §4.C:
// fuel-flow factor * rated input power * appliance-system factor.
func CombustionApplianceExtract(fuel CombustionFuel, apType ApplianceType, ratedInputKW float64) float64 {
	return fuelFlowFactor[fuel] * ratedInputKW * systemFactor[apType]
}

// NewCombustionPath builds the Path representing a combustion appliance's
// extract-only contribution to the pressure balance.
func NewCombustionPath(name string, fuel CombustionFuel, apType ApplianceType, ratedInputKW float64) *Path {
	return &Path{
		Kind:             KindCombustion,
		Name:             name,
		FixedExtractFlow: CombustionApplianceExtract(fuel, apType, ratedInputKW),
	}
}
