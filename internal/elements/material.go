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

// Package elements implements the material and unit library (component A)
// and the building-element library (component B) of the dwelling energy
// simulation: per-element node layouts, U<->R conversions, ground-floor
// periodic coefficients, and solar/shading interactions.
package elements

import "math"

// Surface heat transfer coefficients, BS EN ISO 52016-1 Table 25 / 6.5.6.3.
const (
	HCeDefault = 20.0  // external convective, W/m2K
	HReDefault = 4.14  // external radiative, W/m2K
	HRi        = 5.13  // internal radiative exchange, W/m2K

	HCiUpwards    = 5.0 // internal convective, heat flow upwards (ceiling with warm room)
	HCiHorizontal = 2.5 // internal convective, vertical surfaces
	HCiDownwards  = 0.7 // internal convective, heat flow downwards (floor with warm room)
)

// Standardised convective fractions of internal/solar/HVAC gains, BS EN
// ISO 52016-1 §6.5.6.3.6.
const (
	FIntC = 0.4 // internal gains, convective fraction
	FHCC  = 0.4 // HVAC (heating/cooling) gains, convective fraction
	FSolC = 0.1 // solar gains, convective fraction
)

// Air-node areal thermal capacity, BS EN ISO 52016-1 §6.5.5.2.
const CIntPerFloorArea = 10000.0 // J/m2K

// Ground-layer fixed capacity/resistance for the two virtual ground nodes
// of a ground-floor element, BS EN ISO 13370.
const (
	GroundLayerThickness  = 0.5   // m
	GroundLayerVolCap     = 3.0e6 // J/m3K
	GroundLayerConduct    = 1.5   // W/mK
	KGr                   = 0.5 * GroundLayerVolCap
	RGr                   = GroundLayerThickness / GroundLayerConduct
)

// DeltaTSky is the fixed sky-temperature depression, K.
const DeltaTSky = 11.0

// AirDensity returns the density of air (kg/m3) adjusted for altitude
// above sea level, using the standard barometric approximation.
func AirDensity(altitudeM float64) float64 {
	const rho0 = 1.204 // kg/m3 at sea level, 20 degC
	return rho0 * math.Exp(-altitudeM/8000.0)
}

// AirSpecificHeatCapacity is the specific heat capacity of air, J/kgK.
const AirSpecificHeatCapacity = 1005.0

// WaterSpecificHeatCapacity is the specific heat capacity of water, J/kgK.
const WaterSpecificHeatCapacity = 4184.0

// WaterDensity is the density of water, kg/m3.
const WaterDensity = 1000.0

// UToR converts a U-value (W/m2K) to the corresponding whole-element
// thermal resistance (m2K/W).
func UToR(u float64) float64 {
	if u <= 0 {
		return math.Inf(1)
	}
	return 1 / u
}

// RToU converts a whole-element thermal resistance to a U-value.
func RToU(r float64) float64 {
	if r <= 0 {
		return math.Inf(1)
	}
	return 1 / r
}

// HCiForPitch selects the internal convective heat transfer coefficient
// for a surface of the given pitch (degrees, 0=horizontal facing up,
// 180=horizontal facing down, ~90=vertical), given the sign of
// (T_air - T_surface) from the previous iteration: airWarmerThanSurface
// is true when heat flows from the zone air into the surface. Warm air
// below a cool ceiling is upward heat flow (HCiUpwards); warm air above
// a cool floor is downward heat flow (HCiDownwards).
func HCiForPitch(pitch float64, airWarmerThanSurface bool) float64 {
	const vertBand = 30.0 // degrees either side of 90 considered "vertical"
	switch {
	case math.Abs(pitch-90) <= vertBand:
		return HCiHorizontal
	case pitch < 90-vertBand:
		// Surface faces upward (e.g. floor). Heat flows up into the room
		// air when the surface is warmer; the upward coefficient applies
		// when air is cooler than surface (convection driven upward off
		// the warm floor) and equally the reverse when air is warmer
		// flows down onto it.
		if airWarmerThanSurface {
			return HCiDownwards
		}
		return HCiUpwards
	default:
		// Surface faces downward (e.g. ceiling).
		if airWarmerThanSurface {
			return HCiUpwards
		}
		return HCiDownwards
	}
}

// SkyViewFactor returns the fraction of the sky hemisphere visible from a
// surface of the given pitch (degrees from horizontal, 0=flat roof facing
// up), BS EN ISO 52016-1 §6.5.13.3.
func SkyViewFactor(pitch float64) float64 {
	return 0.5 * (1 + math.Cos(pitch*math.Pi/180))
}

// ThermRadToSky returns the long-wave radiative loss to the sky, W/m2,
// for a surface with the given external radiative coefficient and pitch.
func ThermRadToSky(hRe, pitch float64) float64 {
	return SkyViewFactor(pitch) * hRe * DeltaTSky
}
