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

import "fmt"

// FHSVariant selects which Future Homes Standard pre/post-processing
// wrapper the CLI's "--future-homes-standard*" flags request, per
// spec §6. The regulatory notional-building derivation itself is an
// external collaborator (spec.md §1, §9 "Module-level pre-processing
// wrappers"); HEM implements only the pipeline interface these flags
// select, not the full ruleset.
type FHSVariant int

const (
	FHSNone FHSVariant = iota
	FHSStandard
	FHSFEE
	FHSNotA
	FHSNotB
	FHSFEENotA
	FHSFEENotB
)

// ParseFHSVariant maps a CLI flag suffix ("", "-FEE", "-notA", "-notB",
// "-FEE-notA", "-FEE-notB") to its FHSVariant.
func ParseFHSVariant(suffix string) (FHSVariant, error) {
	switch suffix {
	case "":
		return FHSStandard, nil
	case "-FEE":
		return FHSFEE, nil
	case "-notA":
		return FHSNotA, nil
	case "-notB":
		return FHSNotB, nil
	case "-FEE-notA":
		return FHSFEENotA, nil
	case "-FEE-notB":
		return FHSFEENotB, nil
	default:
		return 0, fmt.Errorf("config: unrecognised --future-homes-standard variant %q", suffix)
	}
}

// Transform is one deterministic project-document rewrite in the FHS
// pipeline, per the DESIGN NOTES' "pipeline of deterministic
// transforms applied (or not) based on CLI flags; they are outside the
// core."
type Transform func(*InputDoc) error

// FHSPipeline builds the ordered list of Transforms the requested
// variant applies. HEM's pipeline is intentionally thin: it is the
// documented extension point an FHS wrapper (not part of THE CORE)
// would populate with the notional-building derivation, appliance/BSA
// metabolic-gains injection, and overheating post-processing the
// original `future_homes_standard_notional.py` performs; none of that
// regulatory ruleset is reproduced here, per spec.md's framing of FHS
// pre/post-processing as an external collaborator specified only at
// its interface.
func FHSPipeline(variant FHSVariant) []Transform {
	if variant == FHSNone {
		return nil
	}
	return []Transform{
		func(doc *InputDoc) error {
			return tagFHSVariant(doc, variant)
		},
	}
}

// fhsVariantName names a variant for diagnostic/tagging purposes.
func fhsVariantName(v FHSVariant) string {
	switch v {
	case FHSStandard:
		return "FHS"
	case FHSFEE:
		return "FHS-FEE"
	case FHSNotA:
		return "FHS-notA"
	case FHSNotB:
		return "FHS-notB"
	case FHSFEENotA:
		return "FHS-FEE-notA"
	case FHSFEENotB:
		return "FHS-FEE-notB"
	default:
		return "none"
	}
}

// tagFHSVariant is the pipeline's sole transform: it only ensures
// doc.SmartApplianceControls is non-nil and does not modify doc
// otherwise. The variant label is not stored in doc; ApplyFHS returns
// it, and Load reports it as a build warning. The mode's rules are not
// implemented.
func tagFHSVariant(doc *InputDoc, variant FHSVariant) error {
	if doc.SmartApplianceControls == nil {
		doc.SmartApplianceControls = map[string]SmartApplianceControlDoc{}
	}
	_ = fhsVariantName(variant) // retained for callers that want the label via ApplyFHS's return
	return nil
}

// ApplyFHS runs the requested variant's pipeline over doc in place,
// returning the variant's diagnostic label. Load calls this before
// building the Project when Options.FHSVariant is set.
func ApplyFHS(doc *InputDoc, variant FHSVariant) (string, error) {
	for _, t := range FHSPipeline(variant) {
		if err := t(doc); err != nil {
			return "", fmt.Errorf("config: FHS pipeline: %w", err)
		}
	}
	return fhsVariantName(variant), nil
}
