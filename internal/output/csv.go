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

// Package output writes the per-run results CSV files spec §6 defines:
// the per-timestep results table, the static HTC/HLP summary, and the
// annual totals summary, following the teacher's direct
// encoding/csv-over-os.File style (inmap.go, emissions/aep/report.go).
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/hem-sim/hem"
	"github.com/hem-sim/hem/internal/energysupply"
)

// formatFloat renders a float with six decimal places, except that an
// exact zero is written as "0" with no trailing ".0", per spec §6:
// "floats written with 6 decimal places (0 rendered without trailing
// `.0`)".
func formatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// ResultsDir returns the per-run output directory name spec §6 fixes:
// "<inputname>__results/".
func ResultsDir(inputBaseName string) string {
	return inputBaseName + "__results"
}

// WriteAll writes all three mandatory CSV outputs (results, static,
// summary) for a completed run into outDir, which must already be
// ResultsDir(inputBaseName) or equivalent. assumedInternalC/
// assumedExternalC are the design temperatures the static report
// documents alongside the computed HTC/HLP figures.
func WriteAll(outDir, inputBaseName string, proj *hem.Project, results []hem.TimestepResult, assumedInternalC, assumedExternalC float64) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("output: creating %s: %w", outDir, err)
	}
	if err := WriteResults(filepath.Join(outDir, inputBaseName+"__results.csv"), proj, results); err != nil {
		return err
	}
	if err := WriteStatic(filepath.Join(outDir, inputBaseName+"__results_static.csv"), proj, assumedInternalC, assumedExternalC); err != nil {
		return err
	}
	if err := WriteSummary(filepath.Join(outDir, inputBaseName+"__results_summary.csv"), proj, results); err != nil {
		return err
	}
	return nil
}

// sortedSupplyNames returns a fuel supply's registered names in stable
// (alphabetical) order, since Project.Supplies is a map and spec §6's
// CSV column order must be deterministic across runs.
func sortedSupplyNames(proj *hem.Project) []string {
	names := make([]string, 0, len(proj.Supplies))
	for n := range proj.Supplies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// sortedEndUsers returns the union of per-end-user demand keys seen
// across a run's results for one fuel, alphabetically, so the
// "…__results.csv" end-user breakdown columns are stable.
func sortedEndUsers(results []hem.TimestepResult, fuel string) []string {
	seen := map[string]bool{}
	for _, r := range results {
		sr, ok := r.SupplyResults[fuel]
		if !ok {
			continue
		}
		for k := range sr.DemandByEndUser {
			seen[k] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WriteResults writes spec §6's "…__results.csv": one row per
// timestep with DHW, per-zone, and per-fuel-supply columns, in the
// order the data model lists them.
func WriteResults(path string, proj *hem.Project, results []hem.TimestepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	supplyNames := sortedSupplyNames(proj)
	endUsersByFuel := make(map[string][]string, len(supplyNames))
	for _, s := range supplyNames {
		endUsersByFuel[s] = sortedEndUsers(results, s)
	}

	header := []string{"Timestep",
		"DHW: demand volume (l)", "DHW: demand energy incl. pipework (kWh)", "DHW: demand energy excl. pipework (kWh)",
		"DHW: duration (min)", "DHW: events",
		"DHW: distribution loss internal (kWh)", "DHW: distribution loss external (kWh)", "DHW: primary pipework loss (kWh)",
	}
	for _, zr := range proj.Zones {
		zn := zr.Zone.Name
		header = append(header,
			zn+": internal gains (W)", zn+": solar gains (W)",
			zn+": operative temp (C)", zn+": internal air temp (C)",
			zn+": space heat demand (kWh)", zn+": space cool demand (kWh)",
			zn+": space heat delivered (kWh)", zn+": space cool delivered (kWh)")
	}
	for _, s := range supplyNames {
		header = append(header, s+": total demand (kWh)", s+": total generation (kWh)",
			s+": self-consumed (kWh)", s+": to storage (kWh)", s+": diverted (kWh)",
			s+": import (kWh)", s+": export (kWh)", s+": battery SOC")
		for _, eu := range endUsersByFuel[s] {
			header = append(header, s+": "+eu+" (kWh)")
		}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output: writing header: %w", err)
	}

	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Timestep),
			formatFloat(r.HotWater.DemandVolumeL),
			formatFloat(r.HotWater.DemandEnergyInclKWh),
			formatFloat(r.HotWater.DemandEnergyExclKWh),
			formatFloat(r.HotWater.DurationMin),
			strconv.Itoa(r.HotWater.EventCount),
			formatFloat(r.HotWater.DistributionLossIntKWh),
			formatFloat(r.HotWater.DistributionLossExtKWh),
			formatFloat(r.HotWater.PrimaryLossKWh),
		}
		byZone := make(map[string]hem.ZoneTimestepResult, len(r.ZoneResults))
		for _, zres := range r.ZoneResults {
			byZone[zres.ZoneName] = zres
		}
		for _, zr := range proj.Zones {
			zres := byZone[zr.Zone.Name]
			row = append(row,
				formatFloat(zres.InternalGainsW), formatFloat(zres.SolarGainsW),
				formatFloat(zres.OperativeTempC), formatFloat(zres.AirTempC),
				formatFloat(zres.SpaceHeatDemandKWh), formatFloat(zres.SpaceCoolDemandKWh),
				formatFloat(zres.SpaceHeatDeliveredKWh), formatFloat(zres.SpaceCoolDeliveredKWh))
		}
		for _, s := range supplyNames {
			sr := r.SupplyResults[s]
			row = append(row,
				formatFloat(sr.TotalDemandKWh), formatFloat(sr.TotalGenerationKWh),
				formatFloat(sr.SelfConsumedKWh), formatFloat(sr.ToStorageKWh), formatFloat(sr.ToDiverterKWh),
				formatFloat(sr.ImportKWh), formatFloat(sr.ExportKWh), formatFloat(sr.BatterySOC))
			for _, eu := range endUsersByFuel[s] {
				row = append(row, formatFloat(sr.DemandByEndUser[eu]))
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("output: writing row for timestep %d: %w", r.Timestep, err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteStatic writes spec §6's "…__results_static.csv": one row per
// zone with HTC, HLP, HCP, heat-loss form factor, and the assumed
// internal/external design temperatures.
func WriteStatic(path string, proj *hem.Project, assumedInternalC, assumedExternalC float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"Zone", "HTC (W/K)", "HLP (W/m2K)", "HCP (W/m2K)", "Heat loss form factor",
		"Assumed internal temp (C)", "Assumed external temp (C)"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("output: writing header: %w", err)
	}
	for _, zs := range proj.StaticResults(assumedInternalC, assumedExternalC) {
		row := []string{zs.ZoneName,
			formatFloat(zs.HTCWPerK), formatFloat(zs.HLPWPerM2K), formatFloat(zs.HCPWPerM2K),
			formatFloat(zs.HeatLossFormFactor),
			formatFloat(zs.AssumedInternalTempC), formatFloat(zs.AssumedExternalTempC),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("output: writing row for zone %q: %w", zs.ZoneName, err)
		}
	}
	w.Flush()
	return w.Error()
}

// summaryTotals accumulates the annual aggregates WriteSummary reports.
type summaryTotals struct {
	spaceHeatKWh, spaceCoolKWh, dhwEnergyKWh float64
	spaceHeatFuelKWh, dhwFuelKWh             float64
	peakHalfHourKWh                          float64
	peakTimestep                             int
	byFuelDemand                             map[string]float64
	byFuelEndUser                            map[string]map[string]float64
}

// WriteSummary writes spec §6's "…__results_summary.csv": annual
// energy totals, peak half-hour electricity consumption (with its
// timestep), delivered energy by fuel x end-use, and space-heating/
// cooling/DHW CoPs (output ÷ fuel input, omitted as 0 when no fuel was
// drawn).
func WriteSummary(path string, proj *hem.Project, results []hem.TimestepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	dtHours := 1.0
	if proj.Clock != nil {
		dtHours = proj.Clock.StepHours
	}
	halfHourFactor := 0.5 / dtHours

	t := summaryTotals{
		byFuelDemand:   map[string]float64{},
		byFuelEndUser:  map[string]map[string]float64{},
	}
	var spaceCoolFuelKWh float64
	for _, r := range results {
		for _, zres := range r.ZoneResults {
			t.spaceHeatKWh += zres.SpaceHeatDeliveredKWh
			t.spaceCoolKWh += -zres.SpaceCoolDeliveredKWh
			t.spaceHeatFuelKWh += zres.SpaceHeatFuelKWh
			spaceCoolFuelKWh += zres.SpaceCoolFuelKWh
		}
		t.dhwEnergyKWh += r.HotWater.DemandEnergyInclKWh
		t.dhwFuelKWh += r.HotWater.DemandEnergyInclKWh
		for fuel, sr := range r.SupplyResults {
			t.byFuelDemand[fuel] += sr.TotalDemandKWh
			if t.byFuelEndUser[fuel] == nil {
				t.byFuelEndUser[fuel] = map[string]float64{}
			}
			for eu, kwh := range sr.DemandByEndUser {
				t.byFuelEndUser[fuel][eu] += kwh
			}
			if s := proj.Supplies[fuel]; s != nil && s.Fuel == energysupply.FuelElectricity {
				halfHour := sr.TotalDemandKWh * halfHourFactor
				if halfHour > t.peakHalfHourKWh {
					t.peakHalfHourKWh = halfHour
					t.peakTimestep = r.Timestep
				}
			}
		}
	}

	if err := w.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	rows := [][2]string{
		{"Annual space heat demand (kWh)", formatFloat(t.spaceHeatKWh)},
		{"Annual space cool demand (kWh)", formatFloat(t.spaceCoolKWh)},
		{"Annual DHW demand energy (kWh)", formatFloat(t.dhwEnergyKWh)},
		{"Peak half-hour electricity consumption (kWh)", formatFloat(t.peakHalfHourKWh)},
		{"Peak half-hour timestep", strconv.Itoa(t.peakTimestep)},
	}
	fuels := make([]string, 0, len(t.byFuelDemand))
	for f := range t.byFuelDemand {
		fuels = append(fuels, f)
	}
	sort.Strings(fuels)
	for _, fuel := range fuels {
		rows = append(rows, [2]string{fuel + ": total delivered (kWh)", formatFloat(t.byFuelDemand[fuel])})
		endUsers := make([]string, 0, len(t.byFuelEndUser[fuel]))
		for eu := range t.byFuelEndUser[fuel] {
			endUsers = append(endUsers, eu)
		}
		sort.Strings(endUsers)
		for _, eu := range endUsers {
			rows = append(rows, [2]string{fuel + ": " + eu + " (kWh)", formatFloat(t.byFuelEndUser[fuel][eu])})
		}
	}
	rows = append(rows, [2]string{"Space heating CoP", formatFloat(cop(t.spaceHeatKWh, t.spaceHeatFuelKWh))})
	rows = append(rows, [2]string{"Space cooling CoP", formatFloat(cop(t.spaceCoolKWh, spaceCoolFuelKWh))})
	rows = append(rows, [2]string{"DHW CoP", formatFloat(cop(t.dhwEnergyKWh, t.dhwFuelKWh))})

	for _, row := range rows {
		if err := w.Write(row[:]); err != nil {
			return fmt.Errorf("output: writing summary row %q: %w", row[0], err)
		}
	}
	w.Flush()
	return w.Error()
}

// cop returns deliveredKWh/fuelKWh, or 0 when no fuel was drawn (avoids
// a divide-by-zero when a system ran entirely off free gains).
func cop(deliveredKWh, fuelKWh float64) float64 {
	if fuelKWh <= 0 {
		return 0
	}
	return deliveredKWh / fuelKWh
}
