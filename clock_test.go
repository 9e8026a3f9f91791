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

import "testing"

func TestNewClockValidation(t *testing.T) {
	if _, err := NewClock(0, 8760, 0); err == nil {
		t.Error("zero step should be rejected")
	}
	if _, err := NewClock(10, 10, 1); err == nil {
		t.Error("empty window should be rejected")
	}
	c, err := NewClock(0, 8760, 0.5)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	if got := c.NumSteps(); got != 17520 {
		t.Errorf("NumSteps = %d, want 17520", got)
	}
}

func TestClockCalendarConversions(t *testing.T) {
	c, err := NewClock(0, 8760, 1)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	cases := []struct {
		step      int
		dayOfYear int
		month     int
		hourOfDay float64
	}{
		{0, 0, 0, 0},         // Jan 1, midnight
		{23, 0, 0, 23},       // Jan 1, 23:00
		{24, 1, 0, 0},        // Jan 2
		{31 * 24, 31, 1, 0},  // Feb 1
		{8759, 364, 11, 23},  // Dec 31, 23:00
	}
	for _, tc := range cases {
		if got := c.DayOfYear(tc.step); got != tc.dayOfYear {
			t.Errorf("DayOfYear(%d) = %d, want %d", tc.step, got, tc.dayOfYear)
		}
		if got := c.Month(tc.step); got != tc.month {
			t.Errorf("Month(%d) = %d, want %d", tc.step, got, tc.month)
		}
		if got := c.HourOfDay(tc.step); got != tc.hourOfDay {
			t.Errorf("HourOfDay(%d) = %v, want %v", tc.step, got, tc.hourOfDay)
		}
	}
}

func TestClockSubHourlySteps(t *testing.T) {
	c, err := NewClock(0, 48, 0.5)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	if got := c.HourOfStep(3); got != 1.5 {
		t.Errorf("HourOfStep(3) = %v, want 1.5", got)
	}
	if got := c.HourOfDay(49); got != 0.5 {
		t.Errorf("HourOfDay(49) = %v, want 0.5 (second day, 00:30)", got)
	}
	if got := c.DayOfYear(49); got != 1 {
		t.Errorf("DayOfYear(49) = %d, want 1", got)
	}
}
