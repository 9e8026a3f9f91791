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

// Package ventilation implements the infiltration/ventilation airflow
// solver (component C): a pressure-balance network over windows, vents,
// envelope leaks, mechanical ventilation, combustion appliances, and
// passive ducts, solved each timestep by root-finding on the internal
// reference pressure, with an outer optimisation that adjusts a
// vent-opening ratio to bracket air-change-rate targets.
package ventilation

import "math"

// AmbientState is the subset of external/zone conditions a path's
// pressure difference depends on.
type AmbientState struct {
	ExtTempK   float64
	ZoneTempK  float64
	WindSpeed  float64 // reference (10m) wind speed, m/s
	WindDir    float64 // degrees from north
	PZRef      float64 // Pa, the unknown being solved for
	AltitudeM  float64
	RhoRef     float64 // kg/m3 at reference conditions
}

const gravity = 9.81

// tempRefK is the reference temperature (20 degC) at which RhoRef is
// evaluated; the stack terms scale it by the external and zone
// temperatures.
const tempRefK = 293.15

// PathKind identifies the variant of airflow path, following the
// tagged-variant design of spec §9.
type PathKind int

const (
	KindWindow PathKind = iota
	KindVent
	KindLeak
	KindCombustion
	KindPassiveDuct
	KindMechanical
)

// FlowExponent returns the flow-law exponent n for the given path kind:
// 0.5 for windows/vents/ATDs, 0.667 for leaks.
func FlowExponent(k PathKind) float64 {
	if k == KindLeak {
		return 0.667
	}
	return 0.5
}

// Path is a single airflow path in the pressure network.
type Path struct {
	Kind         PathKind
	Name         string
	MidHeightM   float64 // height above ventilation-zone base, m
	Orientation  float64 // degrees from north, facade the path is on (0 for roof)
	Cp           float64 // wind pressure coefficient at this path (looked up externally)
	C            float64 // flow coefficient, units depend on kind
	OpeningRatio float64 // 0-1, current opening ratio (windows/vents only)

	// Mechanical-ventilator-only.
	SupplyFlow  float64 // kg/s, fixed supply mass flow (0 if none)
	ExtractFlow float64 // kg/s, fixed extract mass flow (0 if none)
	MVHREff     float64 // 0-1, heat recovery efficiency (0 if not MVHR)

	// Combustion-appliance-only extract, computed externally from
	// fuel-flow factor * rated input * system factor and stored here.
	FixedExtractFlow float64
}

// DeltaP returns the pressure difference across the path at its
// mid-height, per spec §4.C:
//
//	Δp = ρ_ref*(T_ref/T_ext)*(0.5*Cp*u_site^2 - h*g) - (p_z_ref - ρ_ref*h*g*T_ref/T_zone)
func (p *Path) DeltaP(a AmbientState, uSite float64) float64 {
	term1 := a.RhoRef * (tempRefK / a.ExtTempK) * (0.5*p.Cp*uSite*uSite - p.MidHeightM*gravity)
	term2 := a.PZRef - a.RhoRef*p.MidHeightM*gravity*tempRefK/a.ZoneTempK
	return term1 - term2
}

// MassFlow returns the signed mass flow rate through the path (positive
// = into the zone) given its current pressure difference, per the
// power-law flow equation qm = C*sign(Δp)*|Δp|^n.
func (p *Path) MassFlow(deltaP float64) float64 {
	switch p.Kind {
	case KindCombustion:
		return -math.Abs(p.FixedExtractFlow)
	case KindMechanical:
		return p.SupplyFlow - p.ExtractFlow + powerLawFlow(p.C, deltaP, FlowExponent(KindMechanical))
	case KindWindow, KindVent, KindPassiveDuct:
		effC := p.C * p.OpeningRatio
		return powerLawFlow(effC, deltaP, FlowExponent(p.Kind))
	default: // leak
		return powerLawFlow(p.C, deltaP, FlowExponent(p.Kind))
	}
}

func powerLawFlow(c, deltaP, n float64) float64 {
	if deltaP == 0 {
		return 0
	}
	sign := 1.0
	if deltaP < 0 {
		sign = -1.0
	}
	return sign * c * math.Pow(math.Abs(deltaP), n)
}

// EffectiveExternalFlow returns the flow rate that should be deducted
// from the zone's ventilation heat-loss coefficient to represent heat
// recovery, for MVHR paths: supply_flow * efficiency.
func (p *Path) EffectiveExternalFlow() float64 {
	if p.Kind != KindMechanical || p.MVHREff <= 0 {
		return 0
	}
	return p.SupplyFlow * p.MVHREff
}

// TerrainClass is a lookup key for the terrain-roughness coefficient
// C_R = K_R * ln(z/z0).
type TerrainClass int

const (
	TerrainCity TerrainClass = iota
	TerrainSuburban
	TerrainCountry
	TerrainSea
)

type terrainParams struct{ kR, z0, zMin float64 }

var terrainTable = map[TerrainClass]terrainParams{
	TerrainCity:     {0.17, 1.0, 18},
	TerrainSuburban: {0.22, 0.3, 10},
	TerrainCountry:  {0.23, 0.05, 5},
	TerrainSea:      {0.24, 0.01, 2},
}

// TerrainRoughness returns C_R for the given terrain class and height z.
func TerrainRoughness(class TerrainClass, z float64) float64 {
	p, ok := terrainTable[class]
	if !ok {
		p = terrainTable[TerrainSuburban]
	}
	if z < p.zMin {
		z = p.zMin
	}
	return p.kR * math.Log(z/p.z0)
}

// SiteWindSpeed scales the 10m reference wind speed to the path's
// mid-height using the terrain roughness coefficient.
func SiteWindSpeed(refWindSpeed float64, class TerrainClass, z float64) float64 {
	return refWindSpeed * TerrainRoughness(class, z)
}

// ShieldClass affects the wind-pressure-coefficient lookup for leak
// paths and suspended floor ventilation.
type ShieldClass int

const (
	ShieldSheltered ShieldClass = iota
	ShieldAverage
	ShieldExposed
)

// HeightBand buckets a path's mid-height for the Cp lookup table.
type HeightBand int

const (
	BandLow HeightBand = iota // < 0.33 * building height
	BandMid
	BandHigh
)

// WindPressureCoefficient looks up Cp for a facade path, keyed by
// cross-ventilation possibility, shield class, height band, and facade
// orientation relative to the wind direction (windward/leeward/side).
func WindPressureCoefficient(crossVentPossible bool, shield ShieldClass, band HeightBand, facadeOrientation, windDir float64) float64 {
	rel := math.Mod(math.Abs(facadeOrientation-windDir)+360, 360)
	if rel > 180 {
		rel = 360 - rel
	}
	var base float64
	switch {
	case rel <= 45:
		base = 0.2 // windward
	case rel >= 135:
		base = -0.3 // leeward
	default:
		base = -0.1 // side
	}
	shieldAdj := map[ShieldClass]float64{ShieldSheltered: 0.7, ShieldAverage: 1.0, ShieldExposed: 1.3}[shield]
	bandAdj := map[HeightBand]float64{BandLow: 0.85, BandMid: 1.0, BandHigh: 1.15}[band]
	cp := base * shieldAdj * bandAdj
	if crossVentPossible {
		cp *= 1.1
	}
	return cp
}
