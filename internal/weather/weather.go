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

// Package weather implements the external-collaborator weather
// ingest: EPW and CIBSE weather-file readers that populate a
// hem.ExternalConditions, per spec.md §1 ("Weather ingest (EPW/CIBSE
// readers)" is specified only at its interface).
package weather

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hem-sim/hem"
)

// Reader is the interface a weather-file format implements: decode a
// full year of hourly records into a hem.ExternalConditions. This is
// the only contract the engine needs from the weather subsystem, per
// spec.md §1's external-collaborator boundary.
type Reader interface {
	Read(r io.Reader) (*hem.ExternalConditions, error)
}

// EPWReader parses EnergyPlus Weather (EPW) files: an 8-line header
// followed by one CSV record per hour, fields ordered per the EPW data
// dictionary (year,month,day,hour,minute,... dry-bulb temp is field 6,
// wind direction field 20, wind speed field 21, direct normal
// irradiance field 14, diffuse horizontal irradiance field 15).
type EPWReader struct{}

const (
	epwFieldDryBulb       = 6
	epwFieldDirectNormal  = 14
	epwFieldDiffuseHoriz  = 15
	epwFieldWindDirection = 20
	epwFieldWindSpeed     = 21
	epwMinFields          = 22
)

// Read implements Reader for the EPW format.
func (EPWReader) Read(r io.Reader) (*hem.ExternalConditions, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 0; i < 8; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("weather: EPW file ended within the 8-line header")
		}
	}
	ec := &hem.ExternalConditions{Latitude: 51.5, Longitude: -0.1, DirectBeamConversionNeeded: false}
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < epwMinFields {
			continue
		}
		dryBulb, err := strconv.ParseFloat(fields[epwFieldDryBulb], 64)
		if err != nil {
			return nil, fmt.Errorf("weather: EPW dry-bulb field: %w", err)
		}
		windDir, _ := strconv.ParseFloat(fields[epwFieldWindDirection], 64)
		windSpd, _ := strconv.ParseFloat(fields[epwFieldWindSpeed], 64)
		dni, _ := strconv.ParseFloat(fields[epwFieldDirectNormal], 64)
		dhi, _ := strconv.ParseFloat(fields[epwFieldDiffuseHoriz], 64)

		ec.AirTemperatures = append(ec.AirTemperatures, dryBulb)
		ec.WindDirections = append(ec.WindDirections, windDir)
		ec.WindSpeeds = append(ec.WindSpeeds, windSpd)
		ec.DirectBeamRadiation = append(ec.DirectBeamRadiation, dni)
		ec.DiffuseHorizontalRadiation = append(ec.DiffuseHorizontalRadiation, dhi)
		ec.SolarReflectivityOfGround = append(ec.SolarReflectivityOfGround, 0.2)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("weather: reading EPW file: %w", err)
	}
	ec.DirectBeamConversionNeeded = true
	computeAggregates(ec)
	return ec, nil
}

// CIBSEReader parses CIBSE Test Reference Year / Design Summer Year
// CSV exports: a one-line header followed by comma-separated hourly
// records (dry-bulb temperature, direct and diffuse irradiance, wind
// speed, wind direction, in that fixed column order).
type CIBSEReader struct{}

func (CIBSEReader) Read(r io.Reader) (*hem.ExternalConditions, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		return nil, fmt.Errorf("weather: CIBSE file has no header line")
	}
	ec := &hem.ExternalConditions{Latitude: 51.5, Longitude: -0.1}
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 5 {
			return nil, fmt.Errorf("weather: CIBSE record has fewer than 5 fields: %q", line)
		}
		dryBulb, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("weather: CIBSE dry-bulb field: %w", err)
		}
		dni, _ := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		dhi, _ := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		windSpd, _ := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		windDir, _ := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)

		ec.AirTemperatures = append(ec.AirTemperatures, dryBulb)
		ec.DirectBeamRadiation = append(ec.DirectBeamRadiation, dni)
		ec.DiffuseHorizontalRadiation = append(ec.DiffuseHorizontalRadiation, dhi)
		ec.WindSpeeds = append(ec.WindSpeeds, windSpd)
		ec.WindDirections = append(ec.WindDirections, windDir)
		ec.SolarReflectivityOfGround = append(ec.SolarReflectivityOfGround, 0.2)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("weather: reading CIBSE file: %w", err)
	}
	computeAggregates(ec)
	return ec, nil
}

// computeAggregates fills in the monthly/annual aggregates spec §3
// requires alongside the hourly series, following the fixed
// 31/28/31/30/31/30/31/31/30/31/30/31 month lengths (non-leap year, as
// spec §3's Clock uses throughout).
var daysPerMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func computeAggregates(ec *hem.ExternalConditions) {
	n := len(ec.AirTemperatures)
	if n == 0 {
		return
	}
	var total float64
	hour := 0
	for m := 0; m < 12 && hour < n; m++ {
		hoursInMonth := daysPerMonth[m] * 24
		var sum float64
		count := 0
		for h := 0; h < hoursInMonth && hour < n; h, hour = h+1, hour+1 {
			sum += ec.AirTemperatures[hour]
			count++
		}
		if count > 0 {
			ec.AirTempMonthlyAverage[m] = sum / float64(count)
		}
		total += sum
	}
	ec.AirTempAnnualAverage = total / float64(n)
}
