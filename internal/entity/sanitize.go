// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"fmt"
	"math"
	"strings"
)

// DataIssue records one entity that was skipped at the ingestion boundary
type DataIssue struct {
	EntityID string `json:"entity_id" yaml:"entity_id"`
	Kind     string `json:"kind" yaml:"kind"` // reference, symbol or tag
	Reason   string `json:"reason" yaml:"reason"`
}

func (d DataIssue) String() string {
	return fmt.Sprintf("%s %q: %s", d.Kind, d.EntityID, d.Reason)
}

// Sanitize drops malformed entities from the input and reports each one.
// The returned input shares no slices with the original.
func Sanitize(in ValidationInput) (ValidationInput, []DataIssue) {
	var issues []DataIssue
	out := ValidationInput{
		JobID:   in.JobID,
		Drawing: in.Drawing,
	}

	seen := make(map[string]bool)
	for _, ref := range in.References {
		if reason := checkEntity("reference", ref.ID, ref.Geometry, nil, seen); reason != "" {
			issues = append(issues, DataIssue{EntityID: ref.ID, Kind: "reference", Reason: reason})
			continue
		}
		out.References = append(out.References, ref)
	}

	seen = make(map[string]bool)
	for _, sym := range in.Symbols {
		conf := sym.Confidence
		if reason := checkEntity("symbol", sym.ID, sym.Geometry, &conf, seen); reason != "" {
			issues = append(issues, DataIssue{EntityID: sym.ID, Kind: "symbol", Reason: reason})
			continue
		}
		out.Symbols = append(out.Symbols, sym)
	}

	seen = make(map[string]bool)
	for _, tag := range in.Tags {
		conf := tag.Confidence
		reason := checkEntity("tag", tag.ID, tag.Geometry, &conf, seen)
		if reason == "" {
			for _, c := range tag.CharConfidences {
				if !validConfidence(c) {
					reason = "character confidence outside [0,1]"
					break
				}
			}
		}
		if reason != "" {
			issues = append(issues, DataIssue{EntityID: tag.ID, Kind: "tag", Reason: reason})
			continue
		}
		out.Tags = append(out.Tags, tag)
	}

	return out, issues
}

func checkEntity(kind, id string, geom Geometry, confidence *float64, seen map[string]bool) string {
	if strings.TrimSpace(id) == "" {
		return "missing id"
	}
	if seen[id] {
		return "duplicate " + kind + " id"
	}
	seen[id] = true
	if err := geom.Check(); err != nil {
		return "malformed geometry: " + err.Error()
	}
	if confidence != nil && !validConfidence(*confidence) {
		return "confidence outside [0,1]"
	}
	return ""
}

func validConfidence(c float64) bool {
	return !math.IsNaN(c) && c >= 0 && c <= 1
}
