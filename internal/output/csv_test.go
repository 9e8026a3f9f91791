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

package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/hem-sim/hem"
)

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		0:     "0",
		1.5:   "1.500000",
		12:    "12.000000",
		-3.25: "-3.250000",
	}
	for in, want := range cases {
		if got := formatFloat(in); got != want {
			t.Errorf("formatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestResultsDir(t *testing.T) {
	if got := ResultsDir("house"); got != "house__results" {
		t.Errorf("ResultsDir = %q, want %q", got, "house__results")
	}
}

func TestWriteResultsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	proj := &hem.Project{
		Clock: &hem.Clock{StepHours: 1},
		Zones: []*hem.ZoneRun{{Zone: &hem.Zone{Name: "living_room"}}},
	}
	results := []hem.TimestepResult{
		{
			Timestep: 0,
			ZoneResults: []hem.ZoneTimestepResult{
				{ZoneName: "living_room", OperativeTempC: 21, AirTempC: 20.5, SpaceHeatDemandKWh: 1.234},
			},
			SupplyResults: map[string]hem.SupplyTimestepResult{},
		},
	}
	path := filepath.Join(dir, "house__results.csv")
	if err := WriteResults(path, proj, results); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening written csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading written csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2 (header + 1 timestep)", len(rows))
	}
	if rows[0][0] != "Timestep" {
		t.Errorf("header[0] = %q, want %q", rows[0][0], "Timestep")
	}
	if rows[1][0] != "0" {
		t.Errorf("row[0] = %q, want %q", rows[1][0], "0")
	}
}

func TestWriteStaticWritesOneRowPerZone(t *testing.T) {
	dir := t.TempDir()
	proj := &hem.Project{
		Zones: []*hem.ZoneRun{
			{Zone: &hem.Zone{Name: "living_room", FloorAreaM2: 20}},
			{Zone: &hem.Zone{Name: "bedroom", FloorAreaM2: 12}},
		},
	}
	path := filepath.Join(dir, "house__results_static.csv")
	if err := WriteStatic(path, proj, 21, 0); err != nil {
		t.Fatalf("WriteStatic: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening written csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading written csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (header + 2 zones)", len(rows))
	}
}

func TestWriteSummaryComputesCoP(t *testing.T) {
	dir := t.TempDir()
	proj := &hem.Project{Clock: &hem.Clock{StepHours: 1}}
	results := []hem.TimestepResult{
		{ZoneResults: []hem.ZoneTimestepResult{{SpaceHeatDeliveredKWh: 2, SpaceHeatFuelKWh: 1}}},
		{ZoneResults: []hem.ZoneTimestepResult{{SpaceHeatDeliveredKWh: 2, SpaceHeatFuelKWh: 1}}},
	}
	path := filepath.Join(dir, "house__results_summary.csv")
	if err := WriteSummary(path, proj, results); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening written csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading written csv: %v", err)
	}
	var found bool
	for _, row := range rows {
		if row[0] == "Space heating CoP" {
			found = true
			if row[1] != "2.000000" {
				t.Errorf("Space heating CoP = %q, want %q", row[1], "2.000000")
			}
		}
	}
	if !found {
		t.Error("summary CSV did not contain a Space heating CoP row")
	}
}

func TestWriteHeatBalanceSkipsNilBalances(t *testing.T) {
	dir := t.TempDir()
	results := []hem.TimestepResult{
		{Timestep: 0, ZoneResults: []hem.ZoneTimestepResult{{ZoneName: "living_room"}}},
	}
	if err := WriteHeatBalance(dir, "house", nil, results); err != nil {
		t.Fatalf("WriteHeatBalance: %v", err)
	}
	for _, kind := range []string{"air_node", "internal_boundary", "external_boundary"} {
		path := filepath.Join(dir, "house_heat_balance_"+kind+".csv")
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("opening %s: %v", path, err)
		}
		rows, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		if len(rows) != 1 {
			t.Errorf("%s: got %d rows, want 1 (header only, no balance data)", kind, len(rows))
		}
	}
}

func TestWriteHeatBalanceWritesElementRows(t *testing.T) {
	dir := t.TempDir()
	results := []hem.TimestepResult{
		{
			Timestep: 3,
			ZoneResults: []hem.ZoneTimestepResult{
				{
					ZoneName: "living_room",
					Balance: &hem.ZoneBalance{
						Air: hem.AirNodeBalance{ZoneName: "living_room", InternalGainW: 100, StorageW: 5},
						Elements: []hem.ElementBalanceRow{
							{ElementName: "south_wall", ElementType: "opaque", ConductionLossW: 42},
						},
					},
				},
			},
		},
	}
	if err := WriteHeatBalance(dir, "house", nil, results); err != nil {
		t.Fatalf("WriteHeatBalance: %v", err)
	}

	airPath := filepath.Join(dir, "house_heat_balance_air_node.csv")
	f, err := os.Open(airPath)
	if err != nil {
		t.Fatalf("opening %s: %v", airPath, err)
	}
	rows, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		t.Fatalf("reading %s: %v", airPath, err)
	}
	if len(rows) != 2 || rows[1][1] != "living_room" {
		t.Fatalf("air_node rows = %v, want a single living_room row", rows)
	}

	extPath := filepath.Join(dir, "house_heat_balance_external_boundary.csv")
	f2, err := os.Open(extPath)
	if err != nil {
		t.Fatalf("opening %s: %v", extPath, err)
	}
	rows2, err := csv.NewReader(f2).ReadAll()
	f2.Close()
	if err != nil {
		t.Fatalf("reading %s: %v", extPath, err)
	}
	if len(rows2) != 2 || rows2[1][2] != "south_wall" {
		t.Fatalf("external_boundary rows = %v, want a single south_wall row", rows2)
	}
}
