// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tags canonicalizes OCR'd equipment tags and classifies them into
// categories and criticalities.
package tags

// NormalizedTag is the derived form of one raw tag string
type NormalizedTag struct {
	Original    string      `json:"original" yaml:"original"`
	Normalized  string      `json:"normalized" yaml:"normalized"`
	Category    Category    `json:"category" yaml:"category"`
	Criticality Criticality `json:"criticality" yaml:"criticality"`
	Corrections []string    `json:"corrections,omitempty" yaml:"corrections,omitempty"`
	Valid       bool        `json:"valid" yaml:"valid"`
}

// NormalizeTag normalizes and classifies a single raw tag
func NormalizeTag(raw string) NormalizedTag {
	normalized, corrections := NormalizeWithCorrections(raw)
	category, criticality := Classify(normalized)
	return NormalizedTag{
		Original:    raw,
		Normalized:  normalized,
		Category:    category,
		Criticality: criticality,
		Corrections: corrections,
		Valid:       category != CategoryUnknown,
	}
}

// NormalizeAndClassify normalizes and classifies a batch of raw tags,
// preserving input order
func NormalizeAndClassify(raw []string) []NormalizedTag {
	out := make([]NormalizedTag, len(raw))
	for i, r := range raw {
		out[i] = NormalizeTag(r)
	}
	return out
}

// IsCritical reports whether a raw tag normalizes to a CRITICAL class
func IsCritical(raw string) bool {
	_, criticality := Classify(Normalize(raw))
	return criticality == CriticalityCritical
}
