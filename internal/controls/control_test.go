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

package controls

import "testing"

func TestOnOffTimeControl(t *testing.T) {
	c := &OnOffTimeControl{NameStr: "heating", Schedule: []bool{true, false, true}}
	if !c.IsOn(0) || c.IsOn(1) || !c.IsOn(2) {
		t.Error("schedule not respected")
	}
	if c.IsOn(5) {
		t.Error("out-of-range timestep should be off")
	}
}

func TestOnOffCostMinimisingTieBreakStableOrder(t *testing.T) {
	c := &OnOffCostMinimisingTimeControl{
		NameStr:    "immersion",
		Costs:      []float64{1, 1, 1, 2},
		NumOnHours: 2,
	}
	c.ComputeSchedule()
	// Equal-cost hours 0 and 1 should both win over hour 2 (also cost 1)
	// by stable original-index order, since only 2 slots are available.
	if !c.IsOn(0) || !c.IsOn(1) {
		t.Error("expected the two earliest equal-cost hours to be selected")
	}
	if c.IsOn(2) {
		t.Error("expected the later equal-cost hour to lose the tie-break")
	}
	if c.IsOn(3) {
		t.Error("expected the most expensive hour to be off")
	}
}

func TestSetpointTimeControlOffMask(t *testing.T) {
	c := &SetpointTimeControl{
		NameStr:   "zone1",
		Setpoints: []float64{21, 21, 18},
		OffMask:   []bool{false, true, false},
	}
	if v, on := c.Setpoint(0); !on || v != 21 {
		t.Errorf("Setpoint(0) = %v,%v want 21,true", v, on)
	}
	if _, on := c.Setpoint(1); on {
		t.Error("expected timestep 1 to be masked off")
	}
}

func TestCombinationAndOr(t *testing.T) {
	a := &OnOffTimeControl{NameStr: "a", Schedule: []bool{true, false}}
	b := &OnOffTimeControl{NameStr: "b", Schedule: []bool{true, true}}
	and := &CombinationTimeControl{NameStr: "main", Op: OpAnd, Operands: []Control{a, b}}
	or := &CombinationTimeControl{NameStr: "sub", Op: OpOr, Operands: []Control{a, b}}
	if !and.IsOn(0) || and.IsOn(1) {
		t.Error("AND combination incorrect")
	}
	if !or.IsOn(0) || !or.IsOn(1) {
		t.Error("OR combination incorrect")
	}
}

func TestCombinationNotRequiresSingleOperand(t *testing.T) {
	a := &OnOffTimeControl{NameStr: "a", Schedule: []bool{true}}
	b := &OnOffTimeControl{NameStr: "b", Schedule: []bool{true}}
	c := &CombinationTimeControl{NameStr: "bad", Op: OpNot, Operands: []Control{a, b}}
	if err := c.Validate(); err == nil {
		t.Error("expected validation error for NOT with 2 operands")
	}
}

func TestCombinationMaxRequiresSetpointOperands(t *testing.T) {
	a := &OnOffTimeControl{NameStr: "a", Schedule: []bool{true}}
	c := &CombinationTimeControl{NameStr: "bad", Op: OpMax, Operands: []Control{a}}
	if err := c.Validate(); err == nil {
		t.Error("expected validation error for MAX over a non-setpoint control")
	}
}

func TestCombinationMaxOfSetpoints(t *testing.T) {
	a := &SetpointTimeControl{NameStr: "a", Setpoints: []float64{18}}
	b := &SetpointTimeControl{NameStr: "b", Setpoints: []float64{21}}
	c := &CombinationTimeControl{NameStr: "main", Op: OpMax, Operands: []Control{a, b}}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, on := c.Setpoint(0)
	if !on || v != 21 {
		t.Errorf("Setpoint(0) = %v,%v want 21,true", v, on)
	}
}

func TestTreeRequiresMainRoot(t *testing.T) {
	a := &OnOffTimeControl{NameStr: "a", Schedule: []bool{true}}
	if err := Tree(map[string]Control{"notmain": a}); err == nil {
		t.Error("expected error when no control is named main")
	}
	if err := Tree(map[string]Control{"main": a}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestChargeControlRejectsMoreThanOneInCombination(t *testing.T) {
	cc1 := &ChargeControl{NameStr: "cc1", Logic: ChargeLogicManual}
	cc2 := &ChargeControl{NameStr: "cc2", Logic: ChargeLogicManual}
	comb := &CombinationTimeControl{NameStr: "main", Op: OpOr, Operands: []Control{cc1, cc2}}
	if err := comb.Validate(); err == nil {
		t.Error("expected error for two ChargeControl operands in one combination")
	}
}
