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

// Diverter routes surplus on-site generation to a single designated
// heat-producing end-user (typically an immersion heater) once other
// priority sinks (battery charging) have been exhausted, per spec §3.
// It is a single-slot resource per Supply: attempting to connect a
// second diverter to the same supply is rejected by
// Supply.ConnectDiverter.
type Diverter struct {
	MaxPowerKW float64
	// DemandKWh is set by the diverter's target end-user (e.g. the
	// immersion heater) before Divert is called, reporting how much
	// energy it could usefully absorb this timestep.
	DemandKWh float64
}

// Divert returns the amount of the available surplus that can be
// routed to the diverter's target, limited by the declared DemandKWh
// headroom. MaxPowerKW is not applied as a cap.
func (d *Diverter) Divert(availableKWh float64) float64 {
	limit := d.DemandKWh
	if limit <= 0 {
		return 0
	}
	if availableKWh < limit {
		return availableKWh
	}
	return limit
}
