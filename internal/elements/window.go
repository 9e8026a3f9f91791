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

package elements

// WindowTreatment models a curtain or blind with a time-stateful
// open/closed state, hysteresis on irradiance thresholds, and an
// opening-delay timer for automatically controlled treatments.
type WindowTreatment struct {
	TransRed       float64 // transmittance reduction when closed, 0-1
	DeltaResistance float64 // added resistance when closed, m2K/W
	Automatic      bool
	OpenThreshold  float64 // W/m2, irradiance below which treatment opens
	CloseThreshold float64 // W/m2, irradiance above which treatment closes (>= OpenThreshold)
	OpeningDelayH  float64 // hours the treatment takes to open once irradiance drops, automatic only

	// State.
	Closed           bool
	delayRemainingH float64
}

// Update advances the treatment's hysteresis state given the current
// irradiance (W/m2) on the element and the timestep length (h). It
// returns the (possibly unchanged) closed state.
func (w *WindowTreatment) Update(irradiance, dtHours float64) bool {
	if w == nil {
		return false
	}
	if irradiance >= w.CloseThreshold {
		w.Closed = true
		w.delayRemainingH = w.OpeningDelayH
		return w.Closed
	}
	if irradiance < w.OpenThreshold {
		if !w.Automatic {
			w.Closed = false
			return w.Closed
		}
		if w.delayRemainingH > 0 {
			w.delayRemainingH -= dtHours
			if w.delayRemainingH < 0 {
				w.delayRemainingH = 0
			}
			return w.Closed
		}
		w.Closed = false
	}
	return w.Closed
}

// EffectiveGValue returns the element's g-value adjusted for the window
// treatment's current state.
func EffectiveGValue(gValue float64, t *WindowTreatment) float64 {
	if t == nil || !t.Closed {
		return gValue
	}
	return gValue * (1 - t.TransRed)
}

// NewTransparent builds a 2-node transparent building element, per spec
// §3 "Transparent": transmits solar (g-value, frame fraction), with an
// optional window treatment.
func NewTransparent(name string, area, pitch, gValue, frameFraction float64, treatment *WindowTreatment) *Element {
	// Two nodes: exterior glazing surface and interior glazing surface.
	// Glazing thermal mass is small and lumped at the single interior
	// node; the exterior node carries no capacity (massless outer pane
	// approximation consistent with the simplified glazing model used
	// throughout ISO 52016-1 worked examples).
	return &Element{
		Name: name, Area: area, Pitch: pitch,
		Solar: Transmitted, Other: Outside,
		KPli: []float64{0, 2.5e4},
		HPli: []float64{6.0}, // W/m2K, typical double-glazing pane conductance
		HCe:  HCeDefault, HRe: HReDefault,
		GValue: gValue, FrameFraction: frameFraction,
		Treatment: treatment,
	}
}
