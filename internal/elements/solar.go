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

import "math"

// ShadingFactor returns the fraction (0-1) of direct-beam radiation that
// reaches a surface of the given orientation and pitch given a list of
// horizon obstructions at the current solar altitude/azimuth. 1 means
// unobstructed.
func ShadingFactor(objects []ShadingObjectLike, solarAltitude, solarAzimuth, orientation float64) float64 {
	factor := 1.0
	for _, o := range objects {
		switch o.Kind() {
		case "obstacle":
			obstHeightAngle := math.Atan2(o.Height(), o.Distance()) * 180 / math.Pi
			if obstHeightAngle > solarAltitude {
				factor = 0
			}
		case "overhang":
			// An overhang blocks the sun once the solar altitude exceeds
			// the angle subtended by the overhang's depth and distance
			// below the window head.
			blockAngle := math.Atan2(o.Depth(), o.Height()) * 180 / math.Pi
			if solarAltitude > (90 - blockAngle) {
				factor *= 0.3 // partial attenuation; overhangs rarely fully exclude diffuse-augmented beam
			}
		case "sidefinleft", "sidefinright":
			relAz := solarAzimuth - orientation
			sign := 1.0
			if o.Kind() == "sidefinleft" {
				sign = -1.0
			}
			if sign*relAz > 0 {
				finAngle := math.Atan2(o.Depth(), o.Distance()) * 180 / math.Pi
				if math.Abs(relAz) < finAngle {
					factor *= 0.5
				}
			}
		}
	}
	return factor
}

// ShadingObjectLike is the minimal interface ShadingFactor needs from a
// horizon obstruction; it decouples this package from the hem root
// package's ShadingObject representation.
type ShadingObjectLike interface {
	Kind() string
	Height() float64
	Distance() float64
	Depth() float64
}

// SolarGainOpaque returns the absorbed solar flux, W/m2, on an opaque
// exterior surface given direct and diffuse irradiance on the horizontal
// and the surface's absorptivity, pitch, and shading factors for the
// direct and diffuse components.
func SolarGainOpaque(absorptivity, iDir, iDif, fShDir, fShDif float64) float64 {
	return absorptivity * (iDir*fShDir + iDif*fShDif)
}

// SolarGainTransparent returns the transmitted solar flux, W/m2 of
// aperture, through a glazed element given the effective g-value (already
// adjusted for any closed window treatment), frame fraction, irradiance
// components, and shading factors.
func SolarGainTransparent(gValue, frameFraction, iDir, iDif, fShDir, fShDif float64) float64 {
	return gValue * (1 - frameFraction) * (iDir*fShDir + iDif*fShDif)
}
