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

package cliutil

import (
	"testing"
)

func TestNewRootCmdDefaultFlags(t *testing.T) {
	var got Flags
	var gotArgs []string
	root := NewRootCmd(func(inputPaths []string, flags Flags) error {
		gotArgs = inputPaths
		got = flags
		return nil
	})
	root.SetArgs([]string{"input.json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(gotArgs) != 1 || gotArgs[0] != "input.json" {
		t.Fatalf("inputPaths = %v, want [input.json]", gotArgs)
	}
	if got.Processes != 1 {
		t.Errorf("default Processes = %d, want 1", got.Processes)
	}
	if got.HeatBalance || got.DetailedOutputHeating || got.NoFastSolver || got.DisplayProgress || got.NoValidateJSON || got.PreprocessOnly {
		t.Errorf("expected all boolean flags to default false, got %+v", got)
	}
	if got.FutureHomesStandard != "" {
		t.Errorf("default FutureHomesStandard = %q, want empty", got.FutureHomesStandard)
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	var got Flags
	root := NewRootCmd(func(inputPaths []string, flags Flags) error {
		got = flags
		return nil
	})
	root.SetArgs([]string{
		"input.json",
		"--heat-balance",
		"--detailed-output-heating-cooling",
		"--no-fast-solver",
		"--no-validate-json",
		"-p", "4",
		"--future-homes-standard", "FEE-notA",
		"--tariff-file", "tariffs.csv",
	})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !got.HeatBalance || !got.DetailedOutputHeating || !got.NoFastSolver || !got.NoValidateJSON {
		t.Errorf("expected all requested boolean flags set, got %+v", got)
	}
	if got.Processes != 4 {
		t.Errorf("Processes = %d, want 4", got.Processes)
	}
	if got.FutureHomesStandard != "FEE-notA" {
		t.Errorf("FutureHomesStandard = %q, want %q", got.FutureHomesStandard, "FEE-notA")
	}
	if got.TariffFile != "tariffs.csv" {
		t.Errorf("TariffFile = %q, want %q", got.TariffFile, "tariffs.csv")
	}
}

func TestNewRootCmdRequiresAtLeastOneInput(t *testing.T) {
	root := NewRootCmd(func(inputPaths []string, flags Flags) error {
		return nil
	})
	root.SetArgs([]string{})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error when no input files are given")
	}
}

func TestRunnerErrorPropagates(t *testing.T) {
	root := NewRootCmd(func(inputPaths []string, flags Flags) error {
		return errBoom
	})
	root.SetArgs([]string{"input.json"})
	if err := root.Execute(); err != errBoom {
		t.Fatalf("Execute error = %v, want %v", err, errBoom)
	}
}

var errBoom = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
