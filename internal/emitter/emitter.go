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

package emitter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/hem-sim/hem/internal/numerics"
)

// EcodesignClass selects the weather-compensation flow-temperature
// control curve, per BS EN 15316-2 Ecodesign Lot 1 classes.
type EcodesignClass int

const (
	EcodesignClassI EcodesignClass = iota + 1
	EcodesignClassII
	EcodesignClassIII
	EcodesignClassIV
	EcodesignClassV
	EcodesignClassVI
	EcodesignClassVII
	EcodesignClassVIII
)

// Coefficient is one term of an emitter's output equation
// P = C * deltaT^n, used by radiators and UFH loops.
type Coefficient struct {
	C float64
	N float64
}

// Kind distinguishes the emitter hardware driving the ODE/control
// equations below.
type Kind int

const (
	KindRadiator Kind = iota
	KindUnderfloor
	KindFanCoil
)

// Circuit is a single wet-heating-system emitter circuit: the thermal
// mass of emitter + contained water, one or more parallel emitter
// elements, and the flow/return temperature control policy that
// governs it, per spec component E.
type Circuit struct {
	Name string
	Kind Kind

	// Coeffs are the P = C*deltaT^n terms (radiator/UFH); ignored for
	// fan coils, which use FanCoilCurve instead.
	Coeffs []Coefficient

	// ThermalMassKWhPerK is the emitter+water thermal capacity used by
	// the warm-up/cool-down ODE.
	ThermalMassKWhPerK float64

	DesignFlowTempC float64
	MinFlowTempC    float64
	EcodesignClass  EcodesignClass
	BypassFraction  float64 // 0-1, fraction of flow bypassing the emitter
	VariableFlow    bool
	FanCoilCurve    *FanCoilTable

	HeatSource HeatSourceWet

	// TE is the emitter temperature state carried between timesteps
	// (°C). Per spec §3, it is initialised to 20 degC at construction,
	// not to the zone's room temperature.
	TE float64
}

// FlowReturnTemp computes the flow and return water temperatures for
// the given outdoor air temperature, using the ecodesign weather
// compensation curve when VariableFlow is set, otherwise the fixed
// design flow temperature.
func (c *Circuit) FlowReturnTemp(outdoorTempC float64) (flowC, returnC float64) {
	flowC = c.DesignFlowTempC
	if c.VariableFlow {
		flowC = weatherCompensatedFlowTemp(c.EcodesignClass, c.DesignFlowTempC, c.MinFlowTempC, outdoorTempC)
	}
	// Fixed 10K flow/return split, reduced by bypass mixing.
	deltaT := 10.0 * (1 - c.BypassFraction)
	returnC = flowC - deltaT
	return flowC, returnC
}

// weatherCompensatedFlowTemp implements a linear weather-compensation
// curve: flow temperature rises linearly as outdoor temperature falls,
// clamped between MinFlowTempC and DesignFlowTempC. Steeper classes
// (higher EcodesignClass) compensate more aggressively relative to a
// reference outdoor design temperature of -3 degC.
func weatherCompensatedFlowTemp(class EcodesignClass, designFlow, minFlow, outdoorTempC float64) float64 {
	const designOutdoorTempC = -3.0
	const balanceOutdoorTempC = 15.0
	if minFlow <= 0 {
		minFlow = designFlow * 0.6
	}
	slope := (designFlow - minFlow) / (balanceOutdoorTempC - designOutdoorTempC)
	// Classes I-VIII step the slope aggressiveness linearly: 5% per
	// class above or below class IV, matching the coarse Ecodesign Lot1
	// compensation bands referenced in spec §5.
	factor := 1.0 + 0.05*float64(int(class)-4)
	t := designFlow - slope*factor*(outdoorTempC-designOutdoorTempC)
	if t > designFlow {
		t = designFlow
	}
	if t < minFlow {
		t = minFlow
	}
	return t
}

// PowerOutputW returns the instantaneous emitter output at the given
// emitter and room temperature, per the P = sum(C_i * deltaT^n_i) sum
// over coefficient terms (radiator/UFH); for fan coils the FanCoilTable
// lookup is used instead.
func (c *Circuit) PowerOutputW(emitterTempC, roomTempC float64) float64 {
	deltaT := emitterTempC - roomTempC
	if c.Kind == KindFanCoil {
		if c.FanCoilCurve == nil {
			return 0
		}
		return c.FanCoilCurve.Lookup(deltaT)
	}
	if deltaT <= 0 {
		return 0
	}
	var p float64
	for _, term := range c.Coeffs {
		p += term.C * math.Pow(deltaT, term.N)
	}
	return p
}

// SteadyStateEmitterTemp solves for the emitter temperature at which
// output power equals targetPowerW, using Newton's method with a
// finite-difference Jacobian (gonum.org/v1/gonum/diff/fd), matching
// spec §5's "solve_for_temperature" fixed-point procedure.
func (c *Circuit) SteadyStateEmitterTemp(targetPowerW, roomTempC float64) (float64, error) {
	residual := func(teC float64) float64 {
		return c.PowerOutputW(teC, roomTempC) - targetPowerW
	}
	te := roomTempC + 20
	const maxIter = 100
	for i := 0; i < maxIter; i++ {
		r := residual(te)
		if math.Abs(r) < 1e-3 {
			return te, nil
		}
		deriv := fd.Derivative(residual, te, nil)
		if deriv == 0 {
			break
		}
		step := r / deriv
		teNext := te - step
		if math.IsNaN(teNext) || math.IsInf(teNext, 0) {
			break
		}
		te = teNext
	}
	return 0, fmt.Errorf("emitter %q: steady-state temperature solve did not converge", c.Name)
}

// Step advances the emitter temperature state by dtHours, integrating
// the emitter energy balance:
//
//	thermalMass * dT_E/dt = powerInput - powerOutputToRoom(T_E, T_room)
//
// via the shared adaptive RK45 integrator, and returns the energy
// delivered to the room over the step plus the updated emitter
// temperature. A powerInputW of zero models the cool-down phase; a
// positive value sized to the heat source's maximum output models the
// warm-up phase.
func (c *Circuit) Step(powerInputW, roomTempC, dtHours float64) (energyToRoomKWh float64, err error) {
	if c.ThermalMassKWhPerK <= 0 {
		return 0, fmt.Errorf("emitter %q: thermal mass must be positive", c.Name)
	}
	deriv := func(t float64, y []float64) []float64 {
		outW := c.PowerOutputW(y[0], roomTempC)
		// kWh/K * dT/dt(h) = kW; convert W to kW.
		dTdt := (powerInputW/1000 - outW/1000) / c.ThermalMassKWhPerK
		return []float64{dTdt}
	}
	res, ierr := numerics.SolveIVP(deriv, 0, dtHours, []float64{c.TE}, 1e-6, 1e-6, nil)
	if ierr != nil {
		return 0, fmt.Errorf("emitter %q: %w", c.Name, ierr)
	}
	teEnd := res.Y[len(res.Y)-1][0]
	// Integrate output energy by trapezoidal rule over the returned
	// adaptive-step trajectory, matching the variable internal step
	// sizes the RK45 integrator chose.
	var energyKWh float64
	for i := 1; i < len(res.T); i++ {
		dt := res.T[i] - res.T[i-1]
		p0 := c.PowerOutputW(res.Y[i-1][0], roomTempC) / 1000
		p1 := c.PowerOutputW(res.Y[i][0], roomTempC) / 1000
		energyKWh += 0.5 * (p0 + p1) * dt
	}
	c.TE = teEnd
	return energyKWh, nil
}
