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

import "fmt"

// Connection is a registered consumer's write handle onto a Supply's
// ledger. Every consumer (heat source, immersion, fan, pump, ...)
// obtains exactly one Connection by name; a second registration under
// the same name is a fatal ConfigurationError per spec §7.
type Connection struct {
	supply *Supply
	name   string
}

// DemandKWh records consumption of energyKWh by this connection's
// end-user at the current timestep.
func (c *Connection) DemandKWh(energyKWh float64) {
	c.supply.demandByEndUser[c.name] += energyKWh
	c.supply.totalDemandKWh += energyKWh
}

// SupplyKWh records on-site generation attributed to this connection
// (e.g. a PV array registered as a "generation" end-user).
func (c *Connection) SupplyKWh(energyKWh float64) {
	c.supply.generationByEndUser[c.name] += energyKWh
	c.supply.totalGenerationKWh += energyKWh
}

// Supply is the per-fuel demand/supply ledger: it accumulates
// end-user-attributed demand and generation across a timestep, and
// resolves the balance (self-consumption, storage, diversion,
// import/export) when Settle is called at the end of the timestep.
type Supply struct {
	Name     string
	Fuel     FuelType
	IsExportCapable bool
	Priority []string // ordered sink names for surplus generation

	Battery  *Battery
	Diverter *Diverter

	connections         map[string]*Connection
	demandByEndUser     map[string]float64
	generationByEndUser map[string]float64
	totalDemandKWh      float64
	totalGenerationKWh  float64

	// last-settled breakdown, used by the output writer.
	LastSelfConsumedKWh float64
	LastToStorageKWh    float64
	LastToDiverterKWh   float64
	LastImportKWh       float64
	LastExportKWh       float64

	// LastDemandByEndUser is a snapshot of demandByEndUser taken before
	// Settle clears the per-timestep accumulators, for the
	// per-end-user columns of spec §6's "…__results.csv"/
	// "…__results_summary.csv".
	LastDemandByEndUser map[string]float64
}

// NewSupply constructs an empty per-timestep ledger for one fuel.
func NewSupply(name string, fuel FuelType) *Supply {
	return &Supply{
		Name:                name,
		Fuel:                fuel,
		connections:         make(map[string]*Connection),
		demandByEndUser:     make(map[string]float64),
		generationByEndUser: make(map[string]float64),
	}
}

// Connect registers a new end-user under the given unique name,
// returning its write handle. Registering the same name twice is a
// fatal ConfigurationError per spec §7.
func (s *Supply) Connect(name string) (*Connection, error) {
	if _, exists := s.connections[name]; exists {
		return nil, fmt.Errorf("energysupply: %q already registered on supply %q", name, s.Name)
	}
	c := &Connection{supply: s, name: name}
	s.connections[name] = c
	return c, nil
}

// ConnectDiverter registers the single diverter permitted per supply;
// a second call is a fatal ConfigurationError per spec §7's "single-slot
// resource" rule.
func (s *Supply) ConnectDiverter(d *Diverter) error {
	if s.Diverter != nil {
		return fmt.Errorf("energysupply: supply %q already has a diverter connected", s.Name)
	}
	s.Diverter = d
	return nil
}

// resetTimestep clears the per-timestep accumulators, called by Settle
// after computing the balance so the next timestep starts fresh.
func (s *Supply) resetTimestep() {
	for k := range s.demandByEndUser {
		delete(s.demandByEndUser, k)
	}
	for k := range s.generationByEndUser {
		delete(s.generationByEndUser, k)
	}
	s.totalDemandKWh = 0
	s.totalGenerationKWh = 0
}

// Settle resolves the timestep's demand/generation balance for
// electricity-type supplies with on-site generation: self-consumption
// first, then the priority-ordered sink list (battery charge, then
// diverter, by default "ElectricBattery","diverter" order unless
// overridden), then export of any remainder, per spec §8 invariant 6
// ("generation_to_consumption + generation_to_storage +
// generation_to_diverter + export = total_generation").
func (s *Supply) Settle(dtHours float64) error {
	s.LastDemandByEndUser = make(map[string]float64, len(s.demandByEndUser))
	for k, v := range s.demandByEndUser {
		s.LastDemandByEndUser[k] = v
	}
	surplus := s.totalGenerationKWh - s.totalDemandKWh
	s.LastSelfConsumedKWh = 0
	s.LastToStorageKWh = 0
	s.LastToDiverterKWh = 0
	s.LastImportKWh = 0
	s.LastExportKWh = 0

	if surplus <= 0 {
		s.LastSelfConsumedKWh = s.totalGenerationKWh
		s.LastImportKWh = -surplus
		s.resetTimestep()
		return nil
	}
	s.LastSelfConsumedKWh = s.totalDemandKWh
	remaining := surplus

	priority := s.Priority
	if len(priority) == 0 {
		priority = []string{"ElectricBattery", "diverter"}
	}
	for _, sink := range priority {
		if remaining <= 0 {
			break
		}
		switch sink {
		case "ElectricBattery":
			if s.Battery == nil {
				continue
			}
			charged, err := s.Battery.Charge(remaining, dtHours)
			if err != nil {
				return err
			}
			s.LastToStorageKWh += charged
			remaining -= charged
		case "diverter":
			if s.Diverter == nil {
				continue
			}
			diverted := s.Diverter.Divert(remaining)
			s.LastToDiverterKWh += diverted
			remaining -= diverted
		}
	}
	if !s.IsExportCapable {
		// Undiverted, unstored surplus with no export capability is
		// curtailed (not reflected as export or additional self-use).
		s.LastExportKWh = 0
	} else {
		s.LastExportKWh = remaining
	}
	s.resetTimestep()
	return nil
}
