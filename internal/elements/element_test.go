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

package elements

import "testing"

func floatsNear(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestNewOpaqueExteriorInvariants(t *testing.T) {
	layers := []Layer{
		{ThicknessM: 0.1, ConductivityWPerMK: 0.8, VolumetricCapacityJPerM3K: 1.8e6},
		{ThicknessM: 0.05, ConductivityWPerMK: 0.035, VolumetricCapacityJPerM3K: 3.0e4},
		{ThicknessM: 0.1, ConductivityWPerMK: 0.5, VolumetricCapacityJPerM3K: 1.0e6},
	}
	el := NewOpaqueExterior("wall", 10, 90, 0.6, layers)
	if err := el.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if el.NumNodes() != 5 {
		t.Fatalf("expected 5 nodes, got %d", el.NumNodes())
	}
	var totalR float64
	for _, h := range el.HPli {
		totalR += 1 / h
	}
	var wantR float64
	for _, l := range layers {
		wantR += l.resistance()
	}
	if !floatsNear(totalR, wantR, 1e-9) {
		t.Errorf("total resistance mismatch: got %g want %g", totalR, wantR)
	}
	var totalK float64
	for _, k := range el.KPli {
		totalK += k
	}
	var wantK float64
	for _, l := range layers {
		wantK += l.capacity()
	}
	if !floatsNear(totalK, wantK, 1e-9) {
		t.Errorf("total capacity mismatch: got %g want %g", totalK, wantK)
	}
}

func TestValidateRejectsBadArea(t *testing.T) {
	el := NewOpaqueExterior("wall", 0, 90, 0.6, []Layer{{ThicknessM: 0.1, ConductivityWPerMK: 1, VolumetricCapacityJPerM3K: 1e6}})
	if err := el.Validate(); err == nil {
		t.Fatal("expected error for zero area")
	}
}

func TestValidateRejectsBadPitch(t *testing.T) {
	el := NewOpaqueExterior("wall", 1, 200, 0.6, []Layer{{ThicknessM: 0.1, ConductivityWPerMK: 1, VolumetricCapacityJPerM3K: 1e6}})
	if err := el.Validate(); err == nil {
		t.Fatal("expected error for out-of-range pitch")
	}
}

func TestSkyViewFactorBounds(t *testing.T) {
	if got := SkyViewFactor(0); !floatsNear(got, 1, 1e-9) {
		t.Errorf("flat roof sky view = %g, want 1", got)
	}
	if got := SkyViewFactor(180); !floatsNear(got, 0, 1e-9) {
		t.Errorf("floor sky view = %g, want 0", got)
	}
	if got := SkyViewFactor(90); !floatsNear(got, 0.5, 1e-9) {
		t.Errorf("wall sky view = %g, want 0.5", got)
	}
}

func TestRViPositiveRequired(t *testing.T) {
	if _, err := RVi(0); err == nil {
		t.Fatal("expected error for non-positive h_pi")
	}
	if _, err := RVi(-1); err == nil {
		t.Fatal("expected error for negative h_pi")
	}
	if r, err := RVi(2); err != nil || !floatsNear(r, 0.5, 1e-9) {
		t.Fatalf("RVi(2) = %v, %v; want 0.5, nil", r, err)
	}
}

func TestNewGroundSlabNoEdgeInsulation(t *testing.T) {
	floor := &GroundFloor{
		Subtype:       SlabNoEdgeInsulation,
		UValue:        0.2,
		Perimeter:     40,
		WallThickness: 0.3,
	}
	layers := []Layer{
		{ThicknessM: 0.15, ConductivityWPerMK: 1.5, VolumetricCapacityJPerM3K: 2.0e6},
	}
	el, err := NewGround("floor", 100, 180, floor, layers)
	if err != nil {
		t.Fatalf("NewGround: %v", err)
	}
	if el.NumNodes() != 5 {
		t.Fatalf("expected 5 nodes, got %d", el.NumNodes())
	}
	if floor.HPi() <= 0 {
		t.Errorf("expected positive h_pi, got %g", floor.HPi())
	}
}

func TestNewGroundRejectsMissingFloor(t *testing.T) {
	if _, err := NewGround("floor", 100, 180, nil, nil); err == nil {
		t.Fatal("expected error for nil floor detail")
	}
}
