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

package energysupply

import (
	"math"
	"testing"
)

func TestConnectRejectsDuplicateName(t *testing.T) {
	s := NewSupply("mains_elec", FuelElectricity)
	if _, err := s.Connect("boiler"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Connect("boiler"); err == nil {
		t.Fatal("expected error registering duplicate connection name")
	}
}

func TestConnectDiverterRejectsSecond(t *testing.T) {
	s := NewSupply("mains_elec", FuelElectricity)
	if err := s.ConnectDiverter(&Diverter{MaxPowerKW: 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.ConnectDiverter(&Diverter{MaxPowerKW: 3}); err == nil {
		t.Fatal("expected error connecting a second diverter")
	}
}

func TestSettleRoundTripClosesBalance(t *testing.T) {
	s := NewSupply("mains_elec", FuelElectricity)
	s.Battery = &Battery{CapacityKWh: 10, RoundTripEfficiency: 0.9, MaxChargeRateKW: 3, MaxDischargeRateKW: 3}
	s.Diverter = &Diverter{MaxPowerKW: 3, DemandKWh: 0.5}
	s.IsExportCapable = true

	conn, _ := s.Connect("lighting")
	conn.DemandKWh(1.0)
	gen, _ := s.Connect("pv")
	gen.SupplyKWh(5.0)

	if err := s.Settle(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	total := s.LastSelfConsumedKWh + s.LastToStorageKWh + s.LastToDiverterKWh + s.LastExportKWh
	if math.Abs(total-5.0) > 1e-9 {
		t.Errorf("generation round-trip = %g, want 5.0 (self=%g storage=%g diverter=%g export=%g)",
			total, s.LastSelfConsumedKWh, s.LastToStorageKWh, s.LastToDiverterKWh, s.LastExportKWh)
	}
}

func TestSettleImportsWhenGenerationInsufficient(t *testing.T) {
	s := NewSupply("mains_elec", FuelElectricity)
	conn, _ := s.Connect("boiler")
	conn.DemandKWh(4.0)
	gen, _ := s.Connect("pv")
	gen.SupplyKWh(1.0)
	if err := s.Settle(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.LastImportKWh != 3.0 {
		t.Errorf("import = %g, want 3.0", s.LastImportKWh)
	}
}

func TestBatterySOCStaysWithinBounds(t *testing.T) {
	b := &Battery{CapacityKWh: 5, RoundTripEfficiency: 0.9, MaxChargeRateKW: 10, MaxDischargeRateKW: 10}
	if _, err := b.Charge(100, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.SOC > 1 {
		t.Errorf("SOC = %g, want <= 1", b.SOC)
	}
	if _, err := b.Discharge(100, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.SOC < 0 {
		t.Errorf("SOC = %g, want >= 0", b.SOC)
	}
}

func TestBatteryOneWayEfficiencyIsSqrtRoundTrip(t *testing.T) {
	b := &Battery{CapacityKWh: 10, RoundTripEfficiency: 0.81}
	if got := b.oneWayEfficiency(); math.Abs(got-0.9) > 1e-9 {
		t.Errorf("oneWayEfficiency = %g, want 0.9", got)
	}
}

func TestDiverterLimitedByDemand(t *testing.T) {
	d := &Diverter{MaxPowerKW: 3, DemandKWh: 1.5}
	if got := d.Divert(5); got != 1.5 {
		t.Errorf("Divert(5) = %g, want 1.5", got)
	}
	if got := d.Divert(1.0); got != 1.0 {
		t.Errorf("Divert(1.0) = %g, want 1.0", got)
	}
}

func TestParseFuelTypeRejectsUnknown(t *testing.T) {
	if _, err := ParseFuelType("coal"); err == nil {
		t.Fatal("expected error for unrecognised fuel code")
	}
}
