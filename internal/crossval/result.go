// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package crossval

import (
	"drawcheck/internal/entity"
)

// Status is the verdict on one symbol/tag pair
type Status string

const (
	StatusValid         Status = "VALID"
	StatusSuspicious    Status = "SUSPICIOUS"
	StatusFalsePositive Status = "FALSE_POSITIVE"
)

// Reason explains why a pair is not VALID
type Reason string

const (
	ReasonSemanticMismatch Reason = "semantic_mismatch"
	ReasonLowConfidence    Reason = "low_confidence"
	ReasonOutOfProximity   Reason = "out_of_proximity"
)

// Pair is a detected symbol cross-checked against the tag next to it
type Pair struct {
	Symbol             entity.DetectedSymbol `json:"symbol" yaml:"symbol"`
	Tag                entity.ExtractedTag   `json:"tag" yaml:"tag"`
	NormalizedTag      string                `json:"normalized_tag" yaml:"normalized_tag"`
	Distance           float64               `json:"distance" yaml:"distance"`
	SpatialScore       float64               `json:"spatial_score" yaml:"spatial_score"`
	SpatialMatch       bool                  `json:"spatial_match" yaml:"spatial_match"`
	SemanticMatch      bool                  `json:"semantic_match" yaml:"semantic_match"`
	CombinedConfidence float64               `json:"combined_confidence" yaml:"combined_confidence"`
	Status             Status                `json:"status" yaml:"status"`
	Reasons            []Reason              `json:"reasons,omitempty" yaml:"reasons,omitempty"`
}

// OrphanKind tells which side of a pair is missing
type OrphanKind string

const (
	OrphanedSymbol OrphanKind = "orphaned_symbol"
	OrphanedTag    OrphanKind = "orphaned_tag"
)

// Orphan is a qualifying symbol or tag that found no partner. Orphans count
// as false positives.
type Orphan struct {
	Kind       OrphanKind `json:"kind" yaml:"kind"`
	ID         string     `json:"id" yaml:"id"`
	Label      string     `json:"label" yaml:"label"` // symbol type or normalized tag
	Confidence float64    `json:"confidence" yaml:"confidence"`
	NearestID  string     `json:"nearest_id,omitempty" yaml:"nearest_id,omitempty"`
	// NearestDistance is only meaningful when NearestID is set
	NearestDistance float64 `json:"nearest_distance,omitempty" yaml:"nearest_distance,omitempty"`
}

// FilterReason explains why an entity did not qualify for pairing
type FilterReason string

const (
	FilterLowSymbolConfidence FilterReason = "symbol_confidence_below_threshold"
	FilterLowTagConfidence    FilterReason = "tag_confidence_below_threshold"
	FilterUnclassifiedTag     FilterReason = "tag_not_classified"
	FilterLowCharConfidence   FilterReason = "char_confidence_below_threshold"
)

// Filtered is an entity held back before pairing. Filtered entities are never
// shown to an engineer, so they do not count as false positives.
type Filtered struct {
	Kind   string       `json:"kind" yaml:"kind"` // symbol or tag
	ID     string       `json:"id" yaml:"id"`
	Reason FilterReason `json:"reason" yaml:"reason"`
}

// Result is the outcome of one cross-validation run
type Result struct {
	TotalSymbols int `json:"total_symbols" yaml:"total_symbols"`
	TotalTags    int `json:"total_tags" yaml:"total_tags"`

	Pairs    []Pair     `json:"pairs" yaml:"pairs"`
	Orphans  []Orphan   `json:"orphans" yaml:"orphans"`
	Filtered []Filtered `json:"filtered" yaml:"filtered"`

	ValidCount         int `json:"valid_count" yaml:"valid_count"`
	SuspiciousCount    int `json:"suspicious_count" yaml:"suspicious_count"`
	FalsePositiveCount int `json:"false_positive_count" yaml:"false_positive_count"`

	FalsePositiveRate float64 `json:"false_positive_rate" yaml:"false_positive_rate"`
	Passed            bool    `json:"passed" yaml:"passed"`

	Distribution Distribution `json:"distribution" yaml:"distribution"`
}

// FalsePositives returns the pairs classified FALSE_POSITIVE
func (r Result) FalsePositives() []Pair {
	var out []Pair
	for _, p := range r.Pairs {
		if p.Status == StatusFalsePositive {
			out = append(out, p)
		}
	}
	return out
}
