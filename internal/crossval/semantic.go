// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package crossval

import (
	"strings"

	"drawcheck/internal/entity"
)

// Correlation lists the tag prefixes a symbol type accepts, plus looser
// substrings seen in abbreviated or damaged tags
type Correlation struct {
	Prefixes []string
	Fuzzy    []string
}

// Correlations maps each symbol type to the tags that may label it. Callers
// must treat it as read-only.
var Correlations = map[entity.SymbolType]Correlation{
	entity.SymbolPump: {
		Prefixes: []string{"P-", "PUMP"},
		Fuzzy:    []string{"PMP"},
	},
	entity.SymbolValve: {
		Prefixes: []string{"XV", "HV", "MOV", "SDV", "BDV", "PSV", "PRV", "TSV", "LSV", "FCV", "PCV", "TCV", "LCV", "VALVE"},
		Fuzzy:    []string{"VLV"},
	},
	entity.SymbolVessel: {
		Prefixes: []string{"T-", "V-", "R-", "TK", "VESSEL", "DRUM"},
		Fuzzy:    []string{"VSL", "TNK"},
	},
	entity.SymbolInstrument: {
		Prefixes: []string{"LIC", "PIC", "FIC", "TIC", "PSV", "PSH", "PSL", "TSH", "TSL", "LSH", "LSL", "FT", "PT", "TT", "LT", "FI", "PI", "TI", "LI"},
		Fuzzy:    []string{"INST", "XMTR"},
	},
	entity.SymbolEquipment: {
		Prefixes: []string{"E-", "C-", "K-", "H-", "F-", "M-", "HX", "EQUIP"},
		Fuzzy:    []string{"EXCH", "COMP"},
	},
	entity.SymbolFitting: {
		Prefixes: []string{"FLG", "RED", "TEE", "ELB"},
	},
}

// SemanticMatch reports whether a normalized tag can label a symbol of the
// given type. Unknown symbol types never match.
func SemanticMatch(symbolType entity.SymbolType, normalizedTag string) bool {
	correlation, ok := Correlations[symbolType]
	if !ok || normalizedTag == "" {
		return false
	}
	for _, prefix := range correlation.Prefixes {
		if strings.HasPrefix(normalizedTag, prefix) {
			return true
		}
	}
	for _, fragment := range correlation.Fuzzy {
		if strings.Contains(normalizedTag, fragment) {
			return true
		}
	}
	return false
}
