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

package config

import (
	"strings"
	"testing"
)

func TestReadTariffFileSkipsHeader(t *testing.T) {
	in := "hour,price\n0,0.15\n1,0.07\n2,0.07\n"
	prices, err := ReadTariffFile(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadTariffFile: %v", err)
	}
	want := []float64{0.15, 0.07, 0.07}
	if len(prices) != len(want) {
		t.Fatalf("got %d prices, want %d", len(prices), len(want))
	}
	for i, p := range want {
		if prices[i] != p {
			t.Errorf("prices[%d] = %g, want %g", i, prices[i], p)
		}
	}
}

func TestReadTariffFileSingleColumn(t *testing.T) {
	prices, err := ReadTariffFile(strings.NewReader("0.30\n0.10\n"))
	if err != nil {
		t.Fatalf("ReadTariffFile: %v", err)
	}
	if len(prices) != 2 || prices[0] != 0.30 {
		t.Errorf("prices = %v", prices)
	}
}

func TestReadTariffFileRejectsEmptyAndMalformed(t *testing.T) {
	if _, err := ReadTariffFile(strings.NewReader("hour,price\n")); err == nil {
		t.Error("header-only file should be rejected")
	}
	if _, err := ReadTariffFile(strings.NewReader("0,0.15\n1,not-a-price\n")); err == nil {
		t.Error("malformed price past the first row should be rejected")
	}
}
