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

package hotwater

import "math"

const (
	waterDensityKgPerL  = 1.0
	waterSpecificHeatJPerKgK = 4184.0
)

// PipeLocation distinguishes internal (within the heated envelope) from
// external distribution pipework, reported separately per spec §4.G.
type PipeLocation int

const (
	PipeInternal PipeLocation = iota
	PipeExternal
)

// Pipe is one length of hot-water distribution pipework.
type Pipe struct {
	Location       PipeLocation
	InternalDiaMM  float64
	LengthM        float64
	InsulationThicknessMM float64 // 0 = uninsulated
}

// HeldWaterVolumeL returns the volume of water held in the pipe between
// draw-offs, from its internal diameter and length.
func (p *Pipe) HeldWaterVolumeL() float64 {
	radiusM := p.InternalDiaMM / 2 / 1000
	volumeM3 := math.Pi * radiusM * radiusM * p.LengthM
	return volumeM3 * 1000
}

// CoolDownLossKWh returns the energy lost as the water held in the pipe
// cools from the draw temperature to the ambient temperature after a
// draw-off, per spec §4.G's "pipework's held-water volumetric energy
// content" rule. Insulation reduces the effective loss fraction
// actually dissipated before the next draw re-uses the residual heat,
// approximated here as a insulation-derating multiplier.
func (p *Pipe) CoolDownLossKWh(drawTempC, ambientTempC float64) float64 {
	volumeL := p.HeldWaterVolumeL()
	deltaT := drawTempC - ambientTempC
	if deltaT <= 0 {
		return 0
	}
	massKg := volumeL * waterDensityKgPerL
	energyJ := massKg * waterSpecificHeatJPerKgK * deltaT
	derate := insulationDerate(p.InsulationThicknessMM)
	return energyJ / 3.6e6 * derate
}

// insulationDerate returns the fraction of the bare-pipe cool-down loss
// that still occurs once lagging of the given thickness is applied,
// approaching a floor of 0.2 for thick insulation.
func insulationDerate(thicknessMM float64) float64 {
	if thicknessMM <= 0 {
		return 1
	}
	d := 1 - thicknessMM/50
	if d < 0.2 {
		d = 0.2
	}
	return d
}

// DistributionLosses sums cool-down losses across a set of pipes,
// reporting internal and external losses separately, per spec §6's
// output column split.
func DistributionLosses(pipes []Pipe, drawTempC, internalAmbientC, externalAmbientC float64) (internalKWh, externalKWh float64) {
	for i := range pipes {
		p := &pipes[i]
		switch p.Location {
		case PipeInternal:
			internalKWh += p.CoolDownLossKWh(drawTempC, internalAmbientC)
		case PipeExternal:
			externalKWh += p.CoolDownLossKWh(drawTempC, externalAmbientC)
		}
	}
	return internalKWh, externalKWh
}

// PrimaryPipeworkStandingLossKWh returns the standing loss contributed
// by primary pipework (between the storage tank and the distribution
// network) over dtHours while the storage tank is calling for heat,
// per spec §4.G.
func PrimaryPipeworkStandingLossKWh(lossWPerK, storageTempC, ambientTempC, dtHours float64) float64 {
	deltaT := storageTempC - ambientTempC
	if deltaT <= 0 || lossWPerK <= 0 {
		return 0
	}
	return lossWPerK * deltaT * dtHours / 1000
}
