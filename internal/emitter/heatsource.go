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

// Package emitter implements the ODE-integrated radiator/UFH/fan-coil
// model coupled to a heat source (heat pump, boiler, or HIU), including
// warm-up/cool-down dynamics, flow-temperature control, bypass mixing,
// and variable-vs-fixed mass-flow logic (component E).
package emitter

// HeatSourceWet is the interface an emitter circuit uses to query the
// connected heat source (heat pump, boiler, or heat-network HIU). It is
// the only contract component E needs from the heat-source subsystem,
// per spec §1's "external collaborator" boundary.
type HeatSourceWet interface {
	// EnergyOutputMaxKWh returns the maximum energy the source can
	// deliver over dtHours at the given flow/return temperatures.
	EnergyOutputMaxKWh(flowTempC, returnTempC, dtHours float64) float64
	Name() string
}

// SimpleBoiler is a minimal HeatSourceWet implementation: a fixed rated
// output with a flow-temperature-dependent efficiency curve.
type SimpleBoiler struct {
	NameStr        string
	RatedPowerKW   float64
	EfficiencyFunc func(flowTempC float64) float64 // 0-1
}

func (b *SimpleBoiler) Name() string { return b.NameStr }

func (b *SimpleBoiler) EnergyOutputMaxKWh(flowTempC, returnTempC, dtHours float64) float64 {
	eff := 1.0
	if b.EfficiencyFunc != nil {
		eff = b.EfficiencyFunc(flowTempC)
	}
	return b.RatedPowerKW * eff * dtHours
}

// SimpleHeatPump is a minimal HeatSourceWet implementation: a rated
// thermal output with a COP function of flow and source temperature
// (COP itself is not needed by the emitter, only the resulting maximum
// heat output, but is retained here for the energy-supply ledger to
// query the matching electrical input).
type SimpleHeatPump struct {
	NameStr      string
	RatedPowerKW float64
	COP          func(flowTempC, sourceTempC float64) float64
	SourceTempC  func() float64
}

func (h *SimpleHeatPump) Name() string { return h.NameStr }

func (h *SimpleHeatPump) EnergyOutputMaxKWh(flowTempC, returnTempC, dtHours float64) float64 {
	return h.RatedPowerKW * dtHours
}

// ElectricityInputKWh returns the electrical energy consumed to deliver
// the given thermal output, using the COP at the given flow temperature.
func (h *SimpleHeatPump) ElectricityInputKWh(thermalOutputKWh, flowTempC float64) float64 {
	srcT := 0.0
	if h.SourceTempC != nil {
		srcT = h.SourceTempC()
	}
	cop := 1.0
	if h.COP != nil {
		cop = h.COP(flowTempC, srcT)
	}
	if cop <= 0 {
		cop = 1
	}
	return thermalOutputKWh / cop
}

// HIU is a heat-interface-unit substation on a heat network: its maximum
// output is RatedPowerKW over the timestep, independent of flow and
// return temperature; no heat-exchanger loss is deducted.
type HIU struct {
	NameStr      string
	RatedPowerKW float64
}

func (u *HIU) Name() string { return u.NameStr }

func (u *HIU) EnergyOutputMaxKWh(flowTempC, returnTempC, dtHours float64) float64 {
	return u.RatedPowerKW * dtHours
}
