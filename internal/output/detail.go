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
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hem-sim/hem"
)

// WriteDetailed writes the optional ventilation, emitter/heat-source-wet,
// and storage-heater detail CSVs spec §6 gates behind
// "--detailed-output-heating-cooling". Rows come from each
// ZoneTimestepResult's HVACDetail snapshot, so Project.DetailedOutput
// must have been set for the run that produced results.
func WriteDetailed(outDir, inputBaseName string, proj *hem.Project, results []hem.TimestepResult) error {
	if err := writeVentilationDetail(filepath.Join(outDir, inputBaseName+"__ventilation_detail.csv"), results); err != nil {
		return err
	}
	if err := writeEmitterDetail(filepath.Join(outDir, inputBaseName+"__emitter_detail.csv"), results); err != nil {
		return err
	}
	return writeStorageHeaterDetail(filepath.Join(outDir, inputBaseName+"__storage_heater_detail.csv"), results)
}

func writeVentilationDetail(path string, results []hem.TimestepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Timestep", "Zone",
		"Internal reference pressure (Pa)", "Air changes per hour",
		"Ventilation heat transfer coefficient (W/K)",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output: writing header: %w", err)
	}

	for _, r := range results {
		for _, zres := range r.ZoneResults {
			if zres.Detail == nil {
				continue
			}
			d := zres.Detail
			row := []string{
				strconv.Itoa(r.Timestep), zres.ZoneName,
				formatFloat(d.PZRefPa), formatFloat(d.ACH), formatFloat(d.HVeWPerK),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("output: writing row for timestep %d: %w", r.Timestep, err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

// writeEmitterDetail covers both the emitter circuit and its connected
// heat source wet: flow/return temperatures and the source's maximum
// output are heat-source operating state, the emitter mean temperature
// and delivered energy are circuit state.
func writeEmitterDetail(path string, results []hem.TimestepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Timestep", "Zone",
		"Flow temp (degC)", "Return temp (degC)", "Emitter temp (degC)",
		"Heat source max output (kWh)", "Energy delivered (kWh)", "Fuel (kWh)",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output: writing header: %w", err)
	}

	for _, r := range results {
		for _, zres := range r.ZoneResults {
			if zres.Detail == nil || !zres.Detail.HasEmitter {
				continue
			}
			d := zres.Detail
			row := []string{
				strconv.Itoa(r.Timestep), zres.ZoneName,
				formatFloat(d.EmitterFlowTempC), formatFloat(d.EmitterReturnTempC), formatFloat(d.EmitterTempC),
				formatFloat(d.HeatSourceMaxKWh), formatFloat(zres.SpaceHeatDeliveredKWh), formatFloat(zres.SpaceHeatFuelKWh),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("output: writing row for timestep %d: %w", r.Timestep, err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeStorageHeaterDetail(path string, results []hem.TimestepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Timestep", "Zone",
		"State of charge", "Target charge fraction",
		"Energy charged (kWh)", "Instant backup (kWh)", "Energy delivered (kWh)",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output: writing header: %w", err)
	}

	for _, r := range results {
		for _, zres := range r.ZoneResults {
			if zres.Detail == nil || !zres.Detail.HasStorageHeater {
				continue
			}
			d := zres.Detail
			row := []string{
				strconv.Itoa(r.Timestep), zres.ZoneName,
				formatFloat(d.StorageSOC), formatFloat(d.StorageTargetFraction),
				formatFloat(d.StorageChargedKWh), formatFloat(d.StorageInstantKWh), formatFloat(zres.SpaceHeatDeliveredKWh),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("output: writing row for timestep %d: %w", r.Timestep, err)
			}
		}
	}
	w.Flush()
	return w.Error()
}
