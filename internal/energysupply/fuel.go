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

// Package energysupply implements the per-fuel demand/supply ledger
// shared across all HVAC and hot-water components, plus PV production,
// electric battery storage, the surplus-energy diverter, and
// import/export accounting (component H).
package energysupply

import "fmt"

// FuelType enumerates the fuel codes spec §6 allows for an
// EnergySupply entry.
type FuelType int

const (
	FuelMainsGas FuelType = iota
	FuelElectricity
	FuelUnmetDemand
	FuelCustom
	FuelLPGBulk
	FuelLPGBottled
	FuelLPGCondition11F
	FuelEnergyFromEnvironment
)

// ParseFuelType parses the JSON enum strings spec §6 names.
func ParseFuelType(s string) (FuelType, error) {
	switch s {
	case "mains_gas":
		return FuelMainsGas, nil
	case "electricity":
		return FuelElectricity, nil
	case "unmet_demand":
		return FuelUnmetDemand, nil
	case "custom":
		return FuelCustom, nil
	case "LPG_bulk":
		return FuelLPGBulk, nil
	case "LPG_bottled":
		return FuelLPGBottled, nil
	case "LPG_condition_11F":
		return FuelLPGCondition11F, nil
	case "energy_from_environment":
		return FuelEnergyFromEnvironment, nil
	default:
		return 0, fmt.Errorf("energysupply: unrecognised fuel code %q", s)
	}
}
