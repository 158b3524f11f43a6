// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package missing

import (
	"drawcheck/internal/entity"
	"drawcheck/internal/tags"
)

// Candidate is an extraction-side entity offered to the detector. Tag holds
// the already-normalized tag text.
type Candidate struct {
	ID         string          `json:"id" yaml:"id"`
	Tag        string          `json:"tag" yaml:"tag"`
	Geometry   entity.Geometry `json:"geometry" yaml:"geometry"`
	Confidence float64         `json:"confidence" yaml:"confidence"`
	Scale      float64         `json:"scale,omitempty" yaml:"scale,omitempty"`
	Source     string          `json:"source,omitempty" yaml:"source,omitempty"`
}

// Method records which pass committed a match
type Method string

const (
	MethodExactTag          Method = "exact_tag"
	MethodProximityFallback Method = "proximity_fallback"
)

// MatchPair links one reference entity to one candidate. No entity appears in
// more than one pair of a Result.
type MatchPair struct {
	Reference entity.ReferenceEntity `json:"reference" yaml:"reference"`
	Extracted Candidate              `json:"extracted" yaml:"extracted"`
	Distance  float64                `json:"distance" yaml:"distance"`
	Method    Method                 `json:"method" yaml:"method"`
}

// Reason explains why a reference entity found no match
type Reason string

const (
	ReasonNoNearbyCandidate  Reason = "no_nearby_candidate"
	ReasonSimilarTagMismatch Reason = "similar_tag_mismatch"
)

// Nearest describes the closest candidate to a missing entity
type Nearest struct {
	ID       string  `json:"id" yaml:"id"`
	Tag      string  `json:"tag" yaml:"tag"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// MissingEntity is a relevant reference entity with no extracted counterpart
type MissingEntity struct {
	Reference   entity.ReferenceEntity `json:"reference" yaml:"reference"`
	Tag         string                 `json:"tag" yaml:"tag"`
	Category    tags.Category          `json:"category" yaml:"category"`
	Criticality tags.Criticality       `json:"criticality" yaml:"criticality"`
	Critical    bool                   `json:"critical" yaml:"critical"`
	Nearest     *Nearest               `json:"nearest,omitempty" yaml:"nearest,omitempty"`
	Reason      Reason                 `json:"reason" yaml:"reason"`
}

// ScaleReport summarizes the candidates acquired at one scale
type ScaleReport struct {
	Scale          float64 `json:"scale" yaml:"scale"`
	Count          int     `json:"count" yaml:"count"`
	MeanConfidence float64 `json:"mean_confidence" yaml:"mean_confidence"`
}

// Result is the outcome of one detection run
type Result struct {
	RelevantCount   int `json:"relevant_count" yaml:"relevant_count"`
	IgnoredCount    int `json:"ignored_count" yaml:"ignored_count"`
	CriticalCount   int `json:"critical_count" yaml:"critical_count"`
	CriticalMissing int `json:"critical_missing" yaml:"critical_missing"`

	Matches   []MatchPair     `json:"matches" yaml:"matches"`
	Missing   []MissingEntity `json:"missing" yaml:"missing"`
	Unmatched []Candidate     `json:"unmatched" yaml:"unmatched"`

	MissingRate         float64 `json:"missing_rate" yaml:"missing_rate"`
	CriticalMissingRate float64 `json:"critical_missing_rate" yaml:"critical_missing_rate"`
	CriticalFailure     bool    `json:"critical_failure" yaml:"critical_failure"`
	Passed              bool    `json:"passed" yaml:"passed"`

	Scales []ScaleReport `json:"scales" yaml:"scales"`
}

// MissingCritical returns the missing entities that are safety-critical
func (r Result) MissingCritical() []MissingEntity {
	var out []MissingEntity
	for _, m := range r.Missing {
		if m.Critical {
			out = append(out, m)
		}
	}
	return out
}

// MissingLayers returns each layer holding a missing entity with its count,
// ordered by count then name
func (r Result) MissingLayers() []LayerCount {
	counts := make(map[string]int)
	for _, m := range r.Missing {
		counts[m.Reference.Layer]++
	}
	out := make([]LayerCount, 0, len(counts))
	for layer, n := range counts {
		out = append(out, LayerCount{Layer: layer, Count: n})
	}
	sortLayerCounts(out)
	return out
}

// LayerCount is the number of missing entities on one layer
type LayerCount struct {
	Layer string `json:"layer" yaml:"layer"`
	Count int    `json:"count" yaml:"count"`
}
