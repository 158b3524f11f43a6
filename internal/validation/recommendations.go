// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"strings"

	"drawcheck/internal/config"
	"drawcheck/internal/crossval"
	"drawcheck/internal/faults"
	"drawcheck/internal/missing"
)

// maxLayerHints caps how many layers are named in recommendations
const maxLayerHints = 3

// Recommend derives the follow-up actions from the thresholds a verdict
// breached. The output depends only on the verdict and thresholds.
func Recommend(v Verdict, th config.Thresholds) []string {
	var out []string

	if v.ErrorType != "" {
		if v.ErrorType == faults.ErrorTypeConfiguration.String() {
			out = append(out, "Correct the threshold configuration and rerun the validation")
		} else {
			out = append(out, "Rerun the validation; report the failure if it repeats for this drawing")
		}
		return out
	}

	if m := v.MissingEquipment; m != nil {
		out = append(out, missingRecommendations(*m, th)...)
	}
	if c := v.CrossValidation; c != nil {
		out = append(out, crossValidationRecommendations(*c, th)...)
	}
	if v.TagValidationRate < th.MinTagValidationRate {
		out = append(out, fmt.Sprintf("Improve OCR quality: only %.1f%% of extracted tags match a known tag format", 100*v.TagValidationRate))
	}
	if n := len(v.DataIssues); n > 0 {
		out = append(out, fmt.Sprintf("Fix %d malformed entities reported at ingestion before relying on the rates", n))
	}

	if len(out) == 0 {
		out = append(out, "No action required")
	}
	return out
}

func missingRecommendations(m missing.Result, th config.Thresholds) []string {
	var out []string
	if critical := m.MissingCritical(); len(critical) > 0 {
		names := make([]string, len(critical))
		for i, c := range critical {
			names[i] = displayTag(c)
		}
		out = append(out, fmt.Sprintf("Review safety-critical equipment manually before release: %s", joinLimited(names, 5)))
	}

	if m.MissingRate > th.MaxMissingRate {
		for i, layer := range m.MissingLayers() {
			if i == maxLayerHints {
				break
			}
			name := layer.Layer
			if name == "" {
				name = "(no layer)"
			}
			out = append(out, fmt.Sprintf("Investigate layer %s for missing tags (%d missing)", name, layer.Count))
		}
	}

	similar := 0
	for _, me := range m.Missing {
		if me.Reason == missing.ReasonSimilarTagMismatch {
			similar++
		}
	}
	if similar > 0 {
		out = append(out, fmt.Sprintf("Review OCR character corrections: %d missing tags have a near-identical extracted tag nearby", similar))
	}
	return out
}

func crossValidationRecommendations(c crossval.Result, th config.Thresholds) []string {
	var out []string
	if c.FalsePositiveRate > th.MaxFalsePositiveRate {
		if suggested := c.Distribution.SuggestedSymbolThreshold; suggested > th.SymbolConfidence {
			out = append(out, fmt.Sprintf("Raise symbol confidence threshold from %.2f to %.2f", th.SymbolConfidence, suggested))
		}
		if suggested := c.Distribution.SuggestedTagThreshold; suggested > th.TagConfidence {
			out = append(out, fmt.Sprintf("Raise tag confidence threshold from %.2f to %.2f", th.TagConfidence, suggested))
		}
		if n := len(c.Orphans); n > 0 {
			out = append(out, fmt.Sprintf("Review %d orphaned detections with no counterpart within %.0f units", n, th.PairingRadius))
		}
	}

	mismatched := 0
	for _, p := range c.Pairs {
		if !p.SemanticMatch {
			mismatched++
		}
	}
	if mismatched > 0 {
		out = append(out, fmt.Sprintf("Check symbol classification: %d symbol/tag pairs disagree on equipment type", mismatched))
	}
	return out
}

// displayTag names a missing entity by tag, falling back to name then id
func displayTag(m missing.MissingEntity) string {
	switch {
	case m.Tag != "":
		return m.Tag
	case m.Reference.Name != "":
		return m.Reference.Name
	default:
		return m.Reference.ID
	}
}

func joinLimited(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:limit], ", "), len(items)-limit)
}
