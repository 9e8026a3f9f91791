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

package hem

import "math"

// DeltaTSky is the fixed sky-temperature depression used in the long-wave
// sky-loss correction of BS EN ISO 52016-1 §6.5.13.3.
const DeltaTSky = 11.0

// ShadingSegment is one sector of the horizon partition (8-36 segments)
// used by solar-obstacle queries.
type ShadingSegment struct {
	StartAngle, EndAngle float64 // degrees, clockwise from north
	Objects              []ShadingObject
}

// ShadingObject is a horizon obstruction (building, overhang, side-fin)
// that can shade direct and/or diffuse solar radiation.
type ShadingObject struct {
	Type      string // "obstacle", "overhang", "sidefinleft", "sidefinright"
	Height    float64
	Distance  float64
	Tilt      float64 // for the transparent-element orientation, degrees
	Depth     float64 // for overhangs/side fins, in the plane of the element
}

// ExternalConditions holds per-timestep weather and monthly/annual
// aggregates for a single simulation run. It is produced by a weather
// reader (see internal/weather) and is read-only once the simulation
// starts.
type ExternalConditions struct {
	AirTemperatures             []float64 // °C, one per hour of year
	WindSpeeds                  []float64 // m/s
	WindDirections               []float64 // degrees from north
	DirectBeamRadiation          []float64 // W/m², per hour
	DiffuseHorizontalRadiation   []float64 // W/m²
	SolarReflectivityOfGround    []float64 // 0-1, per hour (or constant repeated)
	Latitude, Longitude          float64
	DirectBeamConversionNeeded   bool
	ShadingSegments              []ShadingSegment

	// Monthly aggregates, index 0=Jan..11=Dec.
	AirTempAnnualAverage float64
	AirTempMonthlyAverage [12]float64
}

// AirTemp returns the external air temperature at timestep index idx,
// where idx is an hour-of-year index (wrapping for sub-annual runs that
// start mid-year).
func (ec *ExternalConditions) AirTemp(idx int) float64 {
	return wrapIndex(ec.AirTemperatures, idx)
}

// WindSpeed returns the reference wind speed at timestep index idx.
func (ec *ExternalConditions) WindSpeed(idx int) float64 {
	return wrapIndex(ec.WindSpeeds, idx)
}

// WindDirection returns the wind direction (degrees from north) at
// timestep index idx.
func (ec *ExternalConditions) WindDirection(idx int) float64 {
	return wrapIndex(ec.WindDirections, idx)
}

// DirectBeam returns the direct-beam irradiance at timestep index idx.
func (ec *ExternalConditions) DirectBeam(idx int) float64 {
	return wrapIndex(ec.DirectBeamRadiation, idx)
}

// DiffuseHorizontal returns the diffuse-horizontal irradiance at
// timestep index idx.
func (ec *ExternalConditions) DiffuseHorizontal(idx int) float64 {
	return wrapIndex(ec.DiffuseHorizontalRadiation, idx)
}

// wrapIndex indexes a per-hour series with wraparound, returning 0 for
// an empty series.
func wrapIndex(series []float64, idx int) float64 {
	n := len(series)
	if n == 0 {
		return 0
	}
	return series[((idx%n)+n)%n]
}

// SolarAngles computes the solar altitude and azimuth (degrees) for the
// given day-of-year and hour-of-day, per the standard astronomical solar
// position equations used for building solar-gain calculations.
func SolarAngles(dayOfYear int, hourOfDay, latitude, longitude float64) (altitude, azimuth float64) {
	decl := 23.45 * math.Sin(2*math.Pi*(284+float64(dayOfYear))/365)
	declRad := decl * math.Pi / 180
	latRad := latitude * math.Pi / 180
	hourAngle := (hourOfDay - 12) * 15 * math.Pi / 180

	sinAlt := math.Sin(latRad)*math.Sin(declRad) + math.Cos(latRad)*math.Cos(declRad)*math.Cos(hourAngle)
	altRad := math.Asin(clamp(sinAlt, -1, 1))
	altitude = altRad * 180 / math.Pi

	cosAz := (math.Sin(declRad) - math.Sin(latRad)*sinAlt) / (math.Cos(latRad) * math.Cos(altRad))
	azRad := math.Acos(clamp(cosAz, -1, 1))
	azimuth = azRad * 180 / math.Pi
	if hourOfDay > 12 {
		azimuth = 360 - azimuth
	}
	return altitude, azimuth
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
