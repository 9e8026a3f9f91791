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

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/hem-sim/hem/internal/elements"
)

// Gains bundles the per-timestep heat inputs that BuildSystem
// distributes across the zone's nodes per spec §4.D: internal
// (metabolic/appliance) gains and HVAC gains are each split by a
// convective fraction between the air node and the area-weighted
// interior-surface radiant pool; SolarGainsW carries each element's own
// absorbed-or-transmitted solar gain (already computed by the caller
// from internal/elements.SolarGainOpaque / SolarGainTransparent).
type Gains struct {
	InternalGainsW   float64
	InternalConvFrac float64

	SolarGainsW []float64 // parallel to Zone.Elements

	HVACGainW    float64
	HVACConvFrac float64
}

// secondsPerHour converts the clock's hour-based timestep into the SI
// seconds the J/m2K nodal capacities divide by.
const secondsPerHour = 3600.0

// chainReduction holds a single element's Thomas-forward-sweep
// coefficients, used by both SolveFast (to build the reduced system and
// back-substitute) and as a cross-check against SolveNaive's direct
// assembly of the same element.
type chainReduction struct {
	p, q []float64 // length n-1; x[i] = p[i] + q[i]*x[i+1], x[n-1] is the surface node
	// surfaceDiagAdj/surfaceRHSAdj are the interior-surface node's chain
	// contribution after eliminating the interior chain: the surface
	// row's diagonal gains -hPli[n-2]*q[n-2] become
	// surfaceDiagAdj, and its rhs gains +hPli[n-2]*p[n-2].
	surfaceDiagAdj float64
	surfaceRHSAdj  float64
}

// System is an assembled heat-balance linear system A*x = b over a
// zone's full node vector (fabric nodes per element, then the air node
// last).
type System struct {
	zone *Zone
	dt   float64
	n    int

	a *mat.Dense
	b *mat.VecDense

	chains []chainReduction
}

// exteriorBoundary returns the effective coupling conductance (W/m2K)
// and other-side temperature for element i's exterior node, per spec
// §4.D's per-variant boundary conditions.
func exteriorBoundary(e *elements.Element, otherSideTempC float64) (coeff, otherTemp float64) {
	switch e.Other {
	case elements.Outside, elements.Ground:
		return e.HCe + e.HRe, otherSideTempC
	case elements.AdjacentConditioned:
		return 0, 0
	case elements.AdjacentUnconditioned:
		base := e.HCe + e.HRe
		if base <= 0 {
			return 0, otherSideTempC
		}
		rTotal := 1/base + e.RuExtra
		return 1 / rTotal, otherSideTempC
	}
	return 0, 0
}

// BuildSystem assembles the zone's heat-balance matrix for the given
// timestep length, ventilation conductance (W/K), and gains, per spec
// §4.D. groundOtherSide supplies each ground/adjacent-unconditioned
// element's other-side temperature (virtual ground temperature for
// Ground elements); for Outside elements the extTempC parameter is
// used directly.
func (z *Zone) BuildSystem(extTempC, dtHours, ventilationHVeWPerK float64, gains Gains, groundOtherSide func(elementIdx int) float64) (*System, error) {
	if z.Temperatures == nil {
		return nil, fmt.Errorf("hem: zone %q: BuildSystem called before initialisation", z.Name)
	}
	n := z.TotalNodes()
	sys := &System{
		zone:   z,
		dt:     dtHours,
		n:      n,
		a:      mat.NewDense(n, n, nil),
		b:      mat.NewVecDense(n, nil),
		chains: make([]chainReduction, len(z.Elements)),
	}

	totalArea := z.TotalInteriorAreaM2()
	airIdx := z.AirNodeIndex()

	// Convective/radiative gain pools, shared across all surface rows
	// and the air node.
	internalConv := gains.InternalGainsW * gains.InternalConvFrac
	internalRad := gains.InternalGainsW * (1 - gains.InternalConvFrac)
	hvacConv := gains.HVACGainW * gains.HVACConvFrac
	hvacRad := gains.HVACGainW * (1 - gains.HVACConvFrac)

	var solarConvTotal, solarRadTotal float64
	for i, e := range z.Elements {
		if e.Solar != elements.Transmitted || gains.SolarGainsW == nil || i >= len(gains.SolarGainsW) {
			continue
		}
		solarConvTotal += gains.SolarGainsW[i] * FSolC
		solarRadTotal += gains.SolarGainsW[i] * (1 - FSolC)
	}

	dtSec := dtHours * secondsPerHour

	airRHS := internalConv + hvacConv + solarConvTotal
	airDiag := CIntPerFloorAreaTimes(z.FloorAreaM2) / dtSec
	airRHS += airDiag * z.Temperatures[airIdx]
	airDiag += ventilationHVeWPerK + z.ThermalBridgeWPerK
	airRHS += (ventilationHVeWPerK + z.ThermalBridgeWPerK) * extTempC

	for i, e := range z.Elements {
		offset := z.ElementOffset(i)
		nNodes := e.NumNodes()
		surfIdx := offset + nNodes - 1

		otherTempC := extTempC
		if e.Other == elements.Ground || e.Other == elements.AdjacentUnconditioned {
			if groundOtherSide != nil {
				otherTempC = groundOtherSide(i)
			}
		}
		extCoeff, otherTemp := exteriorBoundary(e, otherTempC)

		solarW := 0.0
		if gains.SolarGainsW != nil && i < len(gains.SolarGainsW) {
			solarW = gains.SolarGainsW[i]
		}
		// The element rows are per unit area, so the element's total
		// solar gain enters its exterior node as a flux.
		solarAbsorbedAtExterior := 0.0
		if e.Solar == elements.Absorbed && e.Area > 0 {
			solarAbsorbedAtExterior = solarW / e.Area
		}

		skyLoss := 0.0
		if e.Other == elements.Outside {
			skyLoss = ThermRadToSky(e.HRe, e.Pitch)
		}

		diag := make([]float64, nNodes)
		rhs := make([]float64, nNodes)

		diag[0] = e.KPli[0]/dtSec + extCoeff
		rhs[0] = e.KPli[0]/dtSec*z.Temperatures[offset] + extCoeff*otherTemp + solarAbsorbedAtExterior - skyLoss
		if nNodes > 1 {
			diag[0] += e.HPli[0]
		}

		for k := 1; k < nNodes-1; k++ {
			diag[k] = e.KPli[k]/dtSec + e.HPli[k-1] + e.HPli[k]
			rhs[k] = e.KPli[k]/dtSec * z.Temperatures[offset+k]
		}

		if nNodes > 1 {
			last := nNodes - 1
			diag[last] = e.KPli[last]/dtSec + e.HPli[last-1]
			rhs[last] = e.KPli[last]/dtSec * z.Temperatures[offset+last]
		}

		// Interior-surface node's extra terms: convective coupling to
		// air, radiant exchange with every other surface (area-weighted
		// star network), and its share of the convective/radiative gain
		// pools.
		airWarmer := z.Temperatures[airIdx] > z.Temperatures[surfIdx]
		hci := HCiForPitch(e.Pitch, airWarmer)
		diag[nNodes-1] += hci
		if totalArea > 0 {
			// Radiant gain pools are distributed by area fraction; the
			// per-unit-area surface row takes the resulting flux.
			rhs[nNodes-1] += (internalRad + hvacRad + solarRadTotal) / totalArea
		}

		for k := 0; k < nNodes-1; k++ {
			sys.a.Set(offset+k, offset+k, diag[k])
			sys.b.SetVec(offset+k, rhs[k])
			if k > 0 {
				sys.a.Set(offset+k, offset+k-1, -e.HPli[k-1])
			}
			if k < nNodes-2 {
				sys.a.Set(offset+k, offset+k+1, -e.HPli[k])
			} else if nNodes > 1 {
				sys.a.Set(offset+k, surfIdx, -e.HPli[k])
			}
		}

		sys.a.Set(surfIdx, surfIdx, diag[nNodes-1])
		sys.b.SetVec(surfIdx, rhs[nNodes-1])
		if nNodes > 1 {
			sys.a.Set(surfIdx, offset+nNodes-2, -e.HPli[nNodes-2])
		}
		// The surface row is per unit area; the air row is in absolute
		// watts, so its couplings carry the element area.
		sys.a.Set(surfIdx, airIdx, sys.a.At(surfIdx, airIdx)-hci)
		sys.a.Set(airIdx, surfIdx, sys.a.At(airIdx, surfIdx)-hci*e.Area)
		airDiag += hci * e.Area

		for j, other := range z.Elements {
			if j == i || totalArea <= 0 {
				continue
			}
			otherSurfIdx := z.SurfaceNodeIndex(j)
			coeff := HRi * other.Area / totalArea
			sys.a.Set(surfIdx, surfIdx, sys.a.At(surfIdx, surfIdx)+coeff)
			sys.a.Set(surfIdx, otherSurfIdx, sys.a.At(surfIdx, otherSurfIdx)-coeff)
		}
	}

	sys.a.Set(airIdx, airIdx, airDiag)
	sys.b.SetVec(airIdx, airRHS)

	return sys, nil
}


// CIntPerFloorArea is the zone air node's thermal capacity per unit
// floor area, J/m2K, per spec §4.D: C_int = 10000 J/m2K.
const CIntPerFloorArea = elements.CIntPerFloorArea

// FSolC is the standardised convective fraction for solar gains, per
// spec §4.D.
const FSolC = elements.FSolC

// HRi is the internal radiative exchange coefficient, W/m2K, per spec
// §4.D.
const HRi = elements.HRi

// ThermRadToSky returns the long-wave radiative loss to the sky, W/m2,
// per spec §4.D's skyLoss correction.
func ThermRadToSky(hRe, pitch float64) float64 { return elements.ThermRadToSky(hRe, pitch) }

// HCiForPitch selects the internal convective heat-transfer coefficient
// from {H_CI_UPWARDS, H_CI_HORIZONTAL, H_CI_DOWNWARDS} per spec §4.D.
func HCiForPitch(pitch float64, airWarmerThanSurface bool) float64 {
	return elements.HCiForPitch(pitch, airWarmerThanSurface)
}

// CIntPerFloorAreaTimes returns the zone air node's total thermal
// capacity, J/K, per spec §4.D: C_int = 10000 J/m2K * A_floor.
func CIntPerFloorAreaTimes(floorAreaM2 float64) float64 {
	return CIntPerFloorArea * floorAreaM2
}

// SolveNaive solves the assembled system by direct dense linear solve,
// per spec §4.D's "naive solver" path.
func (s *System) SolveNaive() ([]float64, error) {
	var x mat.VecDense
	if err := x.SolveVec(s.a, s.b); err != nil {
		return nil, fmt.Errorf("hem: zone matrix solve failed: %w", err)
	}
	out := make([]float64, s.n)
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out, nil
}

// SolveFast solves the same system via the optimised path: each
// element's interior chain is algebraically eliminated by a
// Thomas-style forward sweep down to its interior-surface node,
// producing a reduced (N_elements+1)-size dense system which is
// solved, followed by a back-substitution sweep that recovers the
// interior-chain temperatures. Per spec §4.D this must be bit-equivalent
// to SolveNaive modulo floating-point operation ordering.
func (s *System) SolveFast() ([]float64, error) {
	z := s.zone
	numElements := len(z.Elements)
	reducedSize := numElements + 1
	reducedA := mat.NewDense(reducedSize, reducedSize, nil)
	reducedB := mat.NewVecDense(reducedSize, nil)
	airIdx := z.AirNodeIndex()
	reducedAirIdx := numElements

	reducedIndexOf := func(globalIdx int) int {
		if globalIdx == airIdx {
			return reducedAirIdx
		}
		for i := range z.Elements {
			if z.SurfaceNodeIndex(i) == globalIdx {
				return i
			}
		}
		return -1
	}

	for i, e := range z.Elements {
		offset := z.ElementOffset(i)
		nNodes := e.NumNodes()
		surfIdx := offset + nNodes - 1
		chainLen := nNodes - 1 // nodes 0..nNodes-2

		p := make([]float64, chainLen)
		q := make([]float64, chainLen)
		var diagAdjPrev float64
		for k := 0; k < chainLen; k++ {
			diagK := s.a.At(offset+k, offset+k)
			var pPrevTerm float64
			if k > 0 {
				hPrev := -s.a.At(offset+k, offset+k-1)
				diagAdjPrev = diagK - hPrev*q[k-1]
				pPrevTerm = hPrev * p[k-1]
			} else {
				diagAdjPrev = diagK
			}
			var hNext float64
			if k < chainLen-1 {
				hNext = -s.a.At(offset+k, offset+k+1)
			} else {
				hNext = -s.a.At(offset+k, surfIdx)
			}
			rhsK := s.b.AtVec(offset + k)
			p[k] = (rhsK + pPrevTerm) / diagAdjPrev
			q[k] = hNext / diagAdjPrev
		}

		s.chains[i] = chainReduction{p: p, q: q}

		surfDiag := s.a.At(surfIdx, surfIdx)
		surfRHS := s.b.AtVec(surfIdx)
		if chainLen > 0 {
			hLast := -s.a.At(surfIdx, offset+chainLen-1)
			surfDiag -= hLast * q[chainLen-1]
			surfRHS += hLast * p[chainLen-1]
		}
		s.chains[i].surfaceDiagAdj = surfDiag
		s.chains[i].surfaceRHSAdj = surfRHS

		ri := reducedIndexOf(surfIdx)
		reducedA.Set(ri, ri, surfDiag)
		reducedB.SetVec(ri, surfRHS)

		// Carry over the surface row's couplings to the air node and to
		// every other element's surface node unchanged.
		rAir := reducedIndexOf(airIdx)
		reducedA.Set(ri, rAir, s.a.At(surfIdx, airIdx))
		reducedA.Set(rAir, ri, s.a.At(airIdx, surfIdx))
		for j := range z.Elements {
			if j == i {
				continue
			}
			otherSurf := z.SurfaceNodeIndex(j)
			rj := reducedIndexOf(otherSurf)
			reducedA.Set(ri, rj, s.a.At(surfIdx, otherSurf))
		}
	}
	reducedA.Set(reducedAirIdx, reducedAirIdx, s.a.At(airIdx, airIdx))
	reducedB.SetVec(reducedAirIdx, s.b.AtVec(airIdx))

	var reducedX mat.VecDense
	if err := reducedX.SolveVec(reducedA, reducedB); err != nil {
		return nil, fmt.Errorf("hem: zone fast-solver reduced system failed: %w", err)
	}

	out := make([]float64, s.n)
	out[airIdx] = reducedX.AtVec(reducedAirIdx)
	for i, e := range z.Elements {
		offset := z.ElementOffset(i)
		nNodes := e.NumNodes()
		surfIdx := offset + nNodes - 1
		ri := reducedIndexOf(surfIdx)
		out[surfIdx] = reducedX.AtVec(ri)

		chain := s.chains[i]
		x := out[surfIdx]
		for k := nNodes - 2; k >= 0; k-- {
			x = chain.p[k] + chain.q[k]*x
			out[offset+k] = x
		}
	}
	return out, nil
}
