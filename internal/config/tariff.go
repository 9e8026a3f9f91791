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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadTariffFile parses a tariff data file (spec §6's "--tariff-file
// path") into a per-timestep price series. The file is a CSV whose last
// column is the unit price; a non-numeric first row is treated as a
// header and skipped.
func ReadTariffFile(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	var prices []float64
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("config: tariff file row %d: %w", row+1, err)
		}
		if len(rec) == 0 {
			continue
		}
		field := strings.TrimSpace(rec[len(rec)-1])
		p, perr := strconv.ParseFloat(field, 64)
		if perr != nil {
			if row == 0 {
				continue // header
			}
			return nil, fmt.Errorf("config: tariff file row %d: parsing price %q: %w", row+1, field, perr)
		}
		prices = append(prices, p)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("config: tariff file contains no price rows")
	}
	return prices, nil
}
