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

import (
	"github.com/hem-sim/hem/internal/numerics"
)

// Network is the full set of airflow paths feeding a single ventilation
// zone's pressure balance.
type Network struct {
	Paths []*Path
}

// NetMassFlow returns the sum of mass flow rates through all paths at
// the given internal reference pressure, per spec §4.C. Positive values
// indicate net inflow.
func (n *Network) NetMassFlow(a AmbientState, pZRef float64, uSiteOf func(p *Path) float64) float64 {
	a.PZRef = pZRef
	var sum float64
	for _, p := range n.Paths {
		uSite := 0.0
		if uSiteOf != nil {
			uSite = uSiteOf(p)
		}
		dp := p.DeltaP(a, uSite)
		sum += p.MassFlow(dp)
	}
	return sum
}

// SolvePZRef root-solves f(p) = 0 for the internal reference pressure,
// starting from guess and expanding a symmetric bracket around it until
// a sign change is found, then refining with Brent's method. Returns an
// error (wrapped by the caller as a SolverFailure) if no sign change is
// found within the bracket sequence, or Brent's method fails to
// converge.
func SolvePZRef(guess float64, f func(p float64) float64) (float64, error) {
	return numerics.SolveWithExpandingBracket(guess, f)
}
