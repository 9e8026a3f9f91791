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
	"math"
)

// HoursPerYear is the number of hourly timesteps in a non-leap simulation
// year, used throughout the engine for monthly/annual aggregation.
const HoursPerYear = 8760

// cumDaysBeforeMonth gives the cumulative day-of-year at which each month starts,
// index 0..11, for a 365-day year.
var cumDaysBeforeMonth = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// Clock is an ordered sequence of simulation timesteps of uniform length.
// Positions are indexed from 0. All schedules in the engine align to a
// Clock instance.
type Clock struct {
	StartHour float64 // simulation start time, hours from Jan 1 00:00
	EndHour   float64 // simulation end time (exclusive), hours from Jan 1 00:00
	StepHours float64 // Δt, hours
}

// NewClock constructs a Clock, validating that the step evenly divides the
// simulation window and is strictly positive.
func NewClock(start, end, step float64) (*Clock, error) {
	if step <= 0 {
		return nil, &ConfigurationError{Field: "SimulationTime.step", Msg: "must be > 0"}
	}
	if end <= start {
		return nil, &ConfigurationError{Field: "SimulationTime.end", Msg: "must be after start"}
	}
	if n := (end - start) / step; math.Abs(n-math.Round(n)) > 1e-9 {
		return nil, &ConfigurationError{Field: "SimulationTime.step", Msg: "must evenly divide the simulation window"}
	}
	return &Clock{StartHour: start, EndHour: end, StepHours: step}, nil
}

// NumSteps returns the number of timesteps in the simulation window.
func (c *Clock) NumSteps() int {
	return int((c.EndHour - c.StartHour) / c.StepHours)
}

// HourOfStep returns the absolute hour-of-year at the start of timestep i.
func (c *Clock) HourOfStep(i int) float64 {
	return c.StartHour + float64(i)*c.StepHours
}

// DayOfYear returns the zero-based day-of-year (0..364) containing the
// start of timestep i.
func (c *Clock) DayOfYear(i int) int {
	h := c.HourOfStep(i)
	d := int(h) / 24 % 365
	if d < 0 {
		d += 365
	}
	return d
}

// HourOfDay returns the hour-of-day (0..23, possibly fractional for
// sub-hourly steps) at the start of timestep i.
func (c *Clock) HourOfDay(i int) float64 {
	h := c.HourOfStep(i)
	hod := h - 24*float64(int(h)/24)
	if hod < 0 {
		hod += 24
	}
	return hod
}

// Month returns the zero-based calendar month (0=Jan..11=Dec) containing
// the start of timestep i.
func (c *Clock) Month(i int) int {
	day := c.DayOfYear(i)
	m := 11
	for k := 11; k >= 0; k-- {
		if day >= cumDaysBeforeMonth[k] {
			m = k
			break
		}
	}
	return m
}

// ConfigurationError reports a malformed or missing input field, a
// cross-reference to an undefined object, or another fatal input-shape
// problem. It is fatal: callers must abort the run.
type ConfigurationError struct {
	Field string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("hem: configuration error in %s: %s", e.Field, e.Msg)
}

// PhysicalConstraintError reports an input that is syntactically valid but
// physically inconsistent (e.g. a cooling setpoint below the heating
// setpoint, or a non-positive thermal mass). Fatal.
type PhysicalConstraintError struct {
	Context string
	Msg     string
}

func (e *PhysicalConstraintError) Error() string {
	return fmt.Sprintf("hem: physical constraint violated in %s: %s", e.Context, e.Msg)
}

// SolverFailure reports that an iterative inner routine (matrix solve,
// root-finder, ODE integrator, bounded minimiser) failed to converge.
// Fatal, and carries enough context to diagnose which solver and inputs
// were involved.
type SolverFailure struct {
	Solver  string
	Context string
}

func (e *SolverFailure) Error() string {
	return fmt.Sprintf("hem: %s failed to converge: %s", e.Solver, e.Context)
}
