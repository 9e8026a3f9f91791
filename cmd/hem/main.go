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

// Command hem is a command-line interface for the HEM dwelling energy
// simulation engine, mirroring cmd/inmap/main.go's thin dispatch into
// internal/cliutil.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hem-sim/hem"
	"github.com/hem-sim/hem/internal/cliutil"
	"github.com/hem-sim/hem/internal/config"
	"github.com/hem-sim/hem/internal/output"
	"github.com/hem-sim/hem/internal/weather"
)

func main() {
	root := cliutil.NewRootCmd(runAll)
	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

// runAll dispatches every input file to runOne, bounding concurrency
// at flags.Processes since spec §5 allows "multiple independent
// project files can be run in parallel processes; no shared state
// crosses that boundary" — HEM runs them as goroutines within one
// process rather than separate OS processes, since each input's
// Project is self-contained.
func runAll(inputPaths []string, flags cliutil.Flags) error {
	variant, err := resolveFHSVariant(flags.FutureHomesStandard)
	if err != nil {
		return err
	}

	workers := flags.Processes
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	errs := make([]error, len(inputPaths))
	for i, path := range inputPaths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = runOne(path, flags, variant)
		}(i, path)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("hem: %s: %w", inputPaths[i], err)
		}
	}
	return nil
}

func resolveFHSVariant(suffix string) (config.FHSVariant, error) {
	if suffix == "" {
		return config.FHSNone, nil
	}
	return config.ParseFHSVariant(suffix)
}

// runOne loads, runs, and writes results for a single input document,
// per the per-timestep sequence hem.Project.Run implements
// and the output layout spec §6 defines.
func runOne(path string, flags cliutil.Flags, variant config.FHSVariant) error {
	logger := logrus.New()
	if !flags.DisplayProgress {
		logger.SetLevel(logrus.WarnLevel)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	opts := config.Options{
		UseFastSolver:   !flags.NoFastSolver,
		ValidateJSON:    !flags.NoValidateJSON,
		DisplayProgress: flags.DisplayProgress,
		FHSVariant:      variant,
	}
	if flags.TariffFile != "" {
		tf, err := os.Open(flags.TariffFile)
		if err != nil {
			return fmt.Errorf("opening tariff file: %w", err)
		}
		prices, terr := config.ReadTariffFile(tf)
		tf.Close()
		if terr != nil {
			return terr
		}
		opts.TariffPrices = prices
	}
	proj, warnings, err := config.Load(f, opts)
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		return fmt.Errorf("loading input document: %w", err)
	}
	proj.Logger = logger
	proj.HeatBalance = flags.HeatBalance
	proj.DetailedOutput = flags.DetailedOutputHeating

	if err := applyWeatherOverride(proj, flags); err != nil {
		return err
	}

	if flags.PreprocessOnly {
		return nil
	}

	results, err := proj.Run()
	if err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outDir := output.ResultsDir(base)
	assumedInternalC, assumedExternalC := staticDesignTemps(proj)
	if err := output.WriteAll(outDir, base, proj, results, assumedInternalC, assumedExternalC); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	if flags.HeatBalance {
		if err := output.WriteHeatBalance(outDir, base, proj, results); err != nil {
			return fmt.Errorf("writing heat-balance detail: %w", err)
		}
	}
	if flags.DetailedOutputHeating {
		if err := output.WriteDetailed(outDir, base, proj, results); err != nil {
			return fmt.Errorf("writing heating/cooling detail: %w", err)
		}
	}
	return nil
}

// applyWeatherOverride substitutes proj.Weather with an EPW or CIBSE
// file's contents when the corresponding flag is set, per spec §6's
// "[--epw-file | --CIBSE-weather-file path]".
func applyWeatherOverride(proj *hem.Project, flags cliutil.Flags) error {
	var reader weather.Reader
	var path string
	switch {
	case flags.EPWFile != "":
		reader, path = weather.EPWReader{}, flags.EPWFile
	case flags.CIBSEWeatherFile != "":
		reader, path = weather.CIBSEReader{}, flags.CIBSEWeatherFile
	default:
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening weather file %q: %w", path, err)
	}
	defer f.Close()
	ec, err := reader.Read(f)
	if err != nil {
		return fmt.Errorf("reading weather file %q: %w", path, err)
	}
	proj.Weather = ec
	return nil
}

// staticDesignTemps derives the assumed internal/external design
// temperatures results_static.csv reports: each zone's heating
// setpoint (averaged) and the weather's annual mean external
// temperature, per spec §6.
func staticDesignTemps(proj *hem.Project) (internalC, externalC float64) {
	if proj.Weather != nil {
		externalC = proj.Weather.AirTempAnnualAverage
	}
	if len(proj.Zones) == 0 {
		return internalC, externalC
	}
	var sum float64
	for _, zr := range proj.Zones {
		sum += zr.Zone.TempSetpntHeatC
	}
	return sum / float64(len(proj.Zones)), externalC
}
