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

// MechanicalKind enumerates the mechanical ventilator variants of spec §3.
type MechanicalKind int

const (
	IntermittentMEV MechanicalKind = iota
	CentralisedMEV
	DecentralisedMEV
	MVHR
	PIV
)

// NewMechanicalPath builds the Path representing a mechanical ventilator.
// MVHR additionally carries an effective-external-flow reduction used by
// the zone heat balance (component D).
func NewMechanicalPath(name string, kind MechanicalKind, supplyFlow, extractFlow, mvhrEfficiency float64) *Path {
	p := &Path{Kind: KindMechanical, Name: name, SupplyFlow: supplyFlow, ExtractFlow: extractFlow}
	if kind == MVHR {
		p.MVHREff = mvhrEfficiency
	}
	switch kind {
	case IntermittentMEV, CentralisedMEV, DecentralisedMEV:
		p.SupplyFlow = 0
	case PIV:
		p.ExtractFlow = 0
	}
	return p
}
