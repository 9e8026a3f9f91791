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

func readDetailCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return rows
}

func TestWriteDetailedSplitsRowsBySystemKind(t *testing.T) {
	dir := t.TempDir()
	proj := &hem.Project{Clock: &hem.Clock{StepHours: 1}}
	results := []hem.TimestepResult{
		{
			Timestep: 0,
			ZoneResults: []hem.ZoneTimestepResult{
				{
					ZoneName:              "living_room",
					SpaceHeatDeliveredKWh: 1.5,
					SpaceHeatFuelKWh:      0.5,
					Detail: &hem.HVACDetail{
						PZRefPa: -2.5, ACH: 0.6, HVeWPerK: 12,
						HasEmitter:       true,
						EmitterFlowTempC: 55, EmitterReturnTempC: 47, EmitterTempC: 51,
						HeatSourceMaxKWh: 4,
					},
				},
				{
					ZoneName:              "bedroom",
					SpaceHeatDeliveredKWh: 0.8,
					Detail: &hem.HVACDetail{
						PZRefPa: -2.5, ACH: 0.5, HVeWPerK: 9,
						HasStorageHeater: true,
						StorageSOC:       0.7, StorageTargetFraction: 1,
						StorageChargedKWh: 1.2, StorageInstantKWh: 0.1,
					},
				},
			},
		},
		// A timestep with no detail attached must contribute no rows.
		{Timestep: 1, ZoneResults: []hem.ZoneTimestepResult{{ZoneName: "living_room"}}},
	}

	if err := WriteDetailed(dir, "house", proj, results); err != nil {
		t.Fatalf("WriteDetailed: %v", err)
	}

	vent := readDetailCSV(t, filepath.Join(dir, "house__ventilation_detail.csv"))
	if len(vent) != 3 {
		t.Fatalf("ventilation detail rows = %d, want header + 2", len(vent))
	}
	if vent[1][2] != "-2.500000" {
		t.Errorf("pressure column = %q, want -2.500000", vent[1][2])
	}

	em := readDetailCSV(t, filepath.Join(dir, "house__emitter_detail.csv"))
	if len(em) != 2 {
		t.Fatalf("emitter detail rows = %d, want header + 1 (living_room only)", len(em))
	}
	if em[1][1] != "living_room" || em[1][2] != "55.000000" {
		t.Errorf("emitter row = %v", em[1])
	}

	sh := readDetailCSV(t, filepath.Join(dir, "house__storage_heater_detail.csv"))
	if len(sh) != 2 {
		t.Fatalf("storage heater detail rows = %d, want header + 1 (bedroom only)", len(sh))
	}
	if sh[1][1] != "bedroom" || sh[1][2] != "0.700000" {
		t.Errorf("storage heater row = %v", sh[1])
	}
}
