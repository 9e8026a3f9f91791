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

// WriteHeatBalance writes the three optional per-kind heat-balance
// detail CSVs spec §6 names: "…_heat_balance_<kind>.csv for each of
// {air_node, internal_boundary, external_boundary}". It is a no-op row
// source for any timestep whose ZoneTimestepResult.Balance is nil
// (Project.HeatBalance was not set for that run), so callers should only
// invoke it after confirming the --heat-balance flag was requested.
func WriteHeatBalance(outDir, inputBaseName string, proj *hem.Project, results []hem.TimestepResult) error {
	if err := writeAirNodeBalance(filepath.Join(outDir, inputBaseName+"_heat_balance_air_node.csv"), results); err != nil {
		return err
	}
	if err := writeBoundaryBalance(filepath.Join(outDir, inputBaseName+"_heat_balance_internal_boundary.csv"), results, true); err != nil {
		return err
	}
	if err := writeBoundaryBalance(filepath.Join(outDir, inputBaseName+"_heat_balance_external_boundary.csv"), results, false); err != nil {
		return err
	}
	return nil
}

func writeAirNodeBalance(path string, results []hem.TimestepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Timestep", "Zone",
		"Internal gain (W)", "Solar gain (W)", "HVAC gain (W)",
		"Ventilation loss (W)", "Thermal bridge loss (W)",
		"Surface convection (W)", "Storage (W)",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output: writing header: %w", err)
	}

	for _, r := range results {
		for _, zres := range r.ZoneResults {
			if zres.Balance == nil {
				continue
			}
			a := zres.Balance.Air
			row := []string{
				strconv.Itoa(r.Timestep), a.ZoneName,
				formatFloat(a.InternalGainW), formatFloat(a.SolarGainW), formatFloat(a.HVACGainW),
				formatFloat(a.VentilationLossW), formatFloat(a.ThermalBridgeLossW),
				formatFloat(a.SurfaceConvectionW), formatFloat(a.StorageW),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("output: writing row for timestep %d: %w", r.Timestep, err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

// writeBoundaryBalance writes one row per element per timestep.
// internalSide selects the interior-surface ledger (surface convection
// into the air node, fabric storage) versus the exterior-node ledger
// (solar absorption/transmission, conduction loss to the other-side
// temperature, fabric storage).
func writeBoundaryBalance(path string, results []hem.TimestepResult, internalSide bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	var header []string
	if internalSide {
		header = []string{"Timestep", "Zone", "Element", "Element type",
			"Surface convection (W)", "Fabric storage (W)"}
	} else {
		header = []string{"Timestep", "Zone", "Element", "Element type",
			"Solar gain (W)", "Conduction loss (W)", "Sky loss (W)", "Fabric storage (W)"}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output: writing header: %w", err)
	}

	for _, r := range results {
		for _, zres := range r.ZoneResults {
			if zres.Balance == nil {
				continue
			}
			for _, er := range zres.Balance.Elements {
				var row []string
				if internalSide {
					row = []string{
						strconv.Itoa(r.Timestep), zres.Balance.Air.ZoneName, er.ElementName, er.ElementType,
						formatFloat(er.SurfaceConvectionW), formatFloat(er.FabricStorageW),
					}
				} else {
					row = []string{
						strconv.Itoa(r.Timestep), zres.Balance.Air.ZoneName, er.ElementName, er.ElementType,
						formatFloat(er.SolarGainW), formatFloat(er.ConductionLossW), formatFloat(er.SkyLossW), formatFloat(er.FabricStorageW),
					}
				}
				if err := w.Write(row); err != nil {
					return fmt.Errorf("output: writing row for timestep %d: %w", r.Timestep, err)
				}
			}
		}
	}
	w.Flush()
	return w.Error()
}
