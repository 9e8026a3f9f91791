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

// Package cliutil wires HEM's cobra/viper command-line surface, the
// way inmaputil.Cfg wires InMAP's: flags are registered once in a
// table and bound through viper so every flag also works as an
// "HEM_<NAME>" environment variable or a --config file key, per
// spec.md §6's CLI.
package cliutil

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flags carries every option spec §6's CLI grammar defines, already
// typed and defaulted, for the Runner to consume.
//
//	hem <input.json>... [--epw-file | --CIBSE-weather-file path]
//	    [--tariff-file path] [-p N] [--preprocess-only]
//	    [--future-homes-standard{,-FEE,-notA,-notB,-FEE-notA,-FEE-notB}]
//	    [--heat-balance] [--detailed-output-heating-cooling]
//	    [--no-fast-solver] [--display-progress] [--no-validate-json]
type Flags struct {
	EPWFile               string
	CIBSEWeatherFile      string
	TariffFile            string
	Processes             int
	PreprocessOnly        bool
	FutureHomesStandard   string // "" (not requested) or one of the suffixes above
	HeatBalance           bool
	DetailedOutputHeating bool
	NoFastSolver          bool
	DisplayProgress       bool
	NoValidateJSON        bool
	ConfigFile            string
}

// Runner is the callback cmd/hem supplies: it receives the positional
// input file paths and the resolved Flags, and does the actual
// load/run/write-results work so this package stays free of any
// dependency on internal/config, internal/output, or the root hem
// package.
type Runner func(inputPaths []string, flags Flags) error

// options is the flag registration table, mirroring inmaputil/cmd.go's
// "options" slice: name, shorthand, default, usage.
var options = []struct {
	name, shorthand, usage string
	defaultVal             interface{}
}{
	{"epw-file", "", "EPW weather file to use in place of the input document's ExternalConditions", ""},
	{"CIBSE-weather-file", "", "CIBSE TRY/DSY weather file to use in place of the input document's ExternalConditions", ""},
	{"tariff-file", "", "tariff data file for cost-minimising controls", ""},
	{"processes", "p", "number of input files to run in parallel worker processes", 1},
	{"preprocess-only", "", "run the Future Homes Standard pre-processing pipeline and exit without simulating", false},
	{"future-homes-standard", "", "Future Homes Standard variant to apply: -FEE, -notA, -notB, -FEE-notA, -FEE-notB (unset: no pre-processing)", ""},
	{"heat-balance", "", "write the optional per-kind heat-balance detail CSVs", false},
	{"detailed-output-heating-cooling", "", "write per-heat-source-wet, ventilation, emitter, and storage-heater detail CSVs", false},
	{"no-fast-solver", "", "use the naive dense zone-matrix solver instead of the fast algebraic-elimination solver", false},
	{"display-progress", "", "log progress every 100 timesteps", false},
	{"no-validate-json", "", "skip non-fatal input-document struct validation diagnostics", false},
	{"config", "", "path to a TOML/JSON/YAML settings file supplying any of the above as keys", ""},
}

// NewRootCmd builds the "hem" root command: flags are registered from
// the options table and bound to viper under the "HEM_" environment
// prefix, and Run is invoked with the resolved Flags once cobra parses
// argv, matching cmd/inmap/main.go's top-level dispatch pattern.
func NewRootCmd(run Runner) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("HEM")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "hem <input.json>...",
		Short: "A dwelling energy simulation engine.",
		Long: `hem runs an hourly (or sub-hourly) dynamic thermal-and-energy
simulation of one or more dwellings described by JSON input documents,
producing per-timestep and annual results for space heating, space
cooling, hot water, and final energy by fuel.

Configuration can be changed with command-line flags, a --config file,
or "HEM_<FLAG>" environment variables.`,
		Args:              cobra.MinimumNArgs(1),
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfigFile(v); err != nil {
				return err
			}
			return run(args, flagsFromViper(v))
		},
	}

	registerFlags(root.Flags(), v)
	return root
}

// registerFlags declares each table entry as a pflag on fs and binds
// it into v, per inmaputil/cmd.go's flag-registration loop.
func registerFlags(fs *pflag.FlagSet, v *viper.Viper) {
	for _, o := range options {
		switch d := o.defaultVal.(type) {
		case string:
			if o.shorthand != "" {
				fs.StringP(o.name, o.shorthand, d, o.usage)
			} else {
				fs.String(o.name, d, o.usage)
			}
		case int:
			if o.shorthand != "" {
				fs.IntP(o.name, o.shorthand, d, o.usage)
			} else {
				fs.Int(o.name, d, o.usage)
			}
		case bool:
			fs.Bool(o.name, d, o.usage)
		}
		if err := v.BindPFlag(o.name, fs.Lookup(o.name)); err != nil {
			panic(fmt.Sprintf("cliutil: binding flag %q: %v", o.name, err))
		}
	}
}

// readConfigFile loads the --config file (if set) into v, the way
// inmaputil's setConfig does for the InMAP Cfg.
func readConfigFile(v *viper.Viper) error {
	path := v.GetString("config")
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("cliutil: reading --config file %q: %w", path, err)
	}
	return nil
}

// flagsFromViper reads every bound option back out of v into a typed
// Flags value.
func flagsFromViper(v *viper.Viper) Flags {
	return Flags{
		EPWFile:               v.GetString("epw-file"),
		CIBSEWeatherFile:      v.GetString("CIBSE-weather-file"),
		TariffFile:            v.GetString("tariff-file"),
		Processes:             v.GetInt("processes"),
		PreprocessOnly:        v.GetBool("preprocess-only"),
		FutureHomesStandard:   v.GetString("future-homes-standard"),
		HeatBalance:           v.GetBool("heat-balance"),
		DetailedOutputHeating: v.GetBool("detailed-output-heating-cooling"),
		NoFastSolver:          v.GetBool("no-fast-solver"),
		DisplayProgress:       v.GetBool("display-progress"),
		NoValidateJSON:        v.GetBool("no-validate-json"),
		ConfigFile:            v.GetString("config"),
	}
}
