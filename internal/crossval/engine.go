// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package crossval cross-checks detected symbols against nearby OCR tags to
// find spurious detections.
package crossval

import (
	"cmp"
	"math"
	"slices"

	"drawcheck/internal/config"
	"drawcheck/internal/entity"
	"drawcheck/internal/observability"
	"drawcheck/internal/tags"
)

// Engine pairs symbols with tags and scores each pair
type Engine struct {
	thresholds config.Thresholds
	observer   *observability.StandardObserver
}

// NewEngine creates an engine bound to one thresholds value
func NewEngine(th config.Thresholds) *Engine {
	return &Engine{thresholds: th}
}

// SetObserver sets the observability component
func (e *Engine) SetObserver(observer *observability.StandardObserver) {
	e.observer = observer
}

// Validate runs an engine with the given thresholds
func Validate(symbols []entity.DetectedSymbol, extracted []entity.ExtractedTag, th config.Thresholds) Result {
	return NewEngine(th).Validate(symbols, extracted)
}

type qualifiedTag struct {
	tag        entity.ExtractedTag
	normalized string
}

// Validate cross-checks symbols against tags. Qualifying symbols are visited
// by descending confidence, then id, and each claims the nearest unused
// qualifying tag within the pairing radius. The result does not depend on
// input order. Symbols admitted by lowering the symbol threshold are visited
// after every symbol already admitted, so the pairs formed at the higher
// threshold are kept and the new symbols can only claim tags those pairs left
// over. While no orphaned tag remains for them to claim, the false-positive
// rate can therefore only grow as the threshold drops.
func (e *Engine) Validate(symbols []entity.DetectedSymbol, extracted []entity.ExtractedTag) Result {
	var finishTiming func(bool, map[string]interface{})
	if e.observer != nil {
		finishTiming = e.observer.StartTiming("cross_validator", "validate", "")
	}
	finishStep := observability.Step(e.observer, "cross_validator", "validate", "")

	th := e.thresholds
	result := Result{TotalSymbols: len(symbols), TotalTags: len(extracted)}

	qualifiedSymbols := make([]entity.DetectedSymbol, 0, len(symbols))
	for _, s := range symbols {
		if s.Confidence < th.SymbolConfidence {
			result.Filtered = append(result.Filtered, Filtered{Kind: "symbol", ID: s.ID, Reason: FilterLowSymbolConfidence})
			continue
		}
		qualifiedSymbols = append(qualifiedSymbols, s)
	}
	slices.SortStableFunc(qualifiedSymbols, func(a, b entity.DetectedSymbol) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	qualifiedTags := make([]qualifiedTag, 0, len(extracted))
	for _, t := range extracted {
		normalized := tags.Normalize(t.Text)
		if reason, ok := e.qualifyTag(t, normalized); !ok {
			result.Filtered = append(result.Filtered, Filtered{Kind: "tag", ID: t.ID, Reason: reason})
			continue
		}
		qualifiedTags = append(qualifiedTags, qualifiedTag{tag: t, normalized: normalized})
	}
	slices.SortStableFunc(qualifiedTags, func(a, b qualifiedTag) int {
		return cmp.Compare(a.tag.ID, b.tag.ID)
	})
	observability.Metric(e.observer, "cross_validator", "qualified_symbols", len(qualifiedSymbols))
	observability.Metric(e.observer, "cross_validator", "qualified_tags", len(qualifiedTags))

	tagUsed := make([]bool, len(qualifiedTags))
	symbolPaired := make([]bool, len(qualifiedSymbols))
	for i, s := range qualifiedSymbols {
		best, bestDist := -1, math.Inf(1)
		for j, qt := range qualifiedTags {
			if tagUsed[j] {
				continue
			}
			dist := entity.Distance(s.Geometry, qt.tag.Geometry)
			if dist <= th.PairingRadius && dist < bestDist {
				best, bestDist = j, dist
			}
		}
		if best < 0 {
			continue
		}
		tagUsed[best], symbolPaired[i] = true, true

		pair := e.score(s, qualifiedTags[best], bestDist)
		switch pair.Status {
		case StatusValid:
			result.ValidCount++
		case StatusSuspicious:
			result.SuspiciousCount++
		default:
			result.FalsePositiveCount++
		}
		result.Pairs = append(result.Pairs, pair)
	}

	allTags, allSymbols := sortedTags(extracted), sortedSymbols(symbols)
	for i, s := range qualifiedSymbols {
		if symbolPaired[i] {
			continue
		}
		orphan := Orphan{Kind: OrphanedSymbol, ID: s.ID, Label: string(s.Type), Confidence: s.Confidence}
		for _, t := range allTags {
			if d := entity.Distance(s.Geometry, t.Geometry); orphan.NearestID == "" || d < orphan.NearestDistance {
				orphan.NearestID, orphan.NearestDistance = t.ID, d
			}
		}
		result.Orphans = append(result.Orphans, orphan)
	}
	for j, qt := range qualifiedTags {
		if tagUsed[j] {
			continue
		}
		orphan := Orphan{Kind: OrphanedTag, ID: qt.tag.ID, Label: qt.normalized, Confidence: qt.tag.Confidence}
		for _, s := range allSymbols {
			if d := entity.Distance(qt.tag.Geometry, s.Geometry); orphan.NearestID == "" || d < orphan.NearestDistance {
				orphan.NearestID, orphan.NearestDistance = s.ID, d
			}
		}
		result.Orphans = append(result.Orphans, orphan)
	}

	slices.SortStableFunc(result.Filtered, func(a, b Filtered) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if total := result.TotalSymbols + result.TotalTags; total > 0 {
		result.FalsePositiveRate = float64(result.FalsePositiveCount+len(result.Orphans)) / float64(total)
	}
	result.Passed = result.FalsePositiveRate <= th.MaxFalsePositiveRate
	result.Distribution = analyzeDistribution(
		symbolConfidences(symbols), tagConfidences(extracted),
		th.SymbolRetainTarget, th.TagRetainTarget,
		th.SymbolConfidence, th.TagConfidence,
	)

	if finishTiming != nil {
		finishTiming(result.Passed, map[string]interface{}{
			"pairs":               len(result.Pairs),
			"orphans":             len(result.Orphans),
			"filtered":            len(result.Filtered),
			"false_positive_rate": result.FalsePositiveRate,
		})
	}
	finishStep(result.Passed, "")
	return result
}

func (e *Engine) qualifyTag(t entity.ExtractedTag, normalized string) (FilterReason, bool) {
	th := e.thresholds
	if t.Confidence < th.TagConfidence {
		return FilterLowTagConfidence, false
	}
	if category, _ := tags.Classify(normalized); category == tags.CategoryUnknown {
		return FilterUnclassifiedTag, false
	}
	if mean, ok := t.MeanCharConfidence(); ok && mean < th.CharConfidence {
		return FilterLowCharConfidence, false
	}
	return "", true
}

// score computes the spatial, semantic and combined confidence of a pair and
// classifies it
func (e *Engine) score(s entity.DetectedSymbol, qt qualifiedTag, distance float64) Pair {
	th := e.thresholds
	pair := Pair{
		Symbol:        s,
		Tag:           qt.tag,
		NormalizedTag: qt.normalized,
		Distance:      distance,
		SpatialScore:  math.Max(0, 1-distance/th.PairingRadius),
		SpatialMatch:  distance <= th.PairingRadius,
		SemanticMatch: SemanticMatch(s.Type, qt.normalized),
	}
	pair.CombinedConfidence = (s.Confidence + qt.tag.Confidence + pair.SpatialScore) / 3

	switch {
	case s.Confidence >= th.SymbolConfidence && pair.SpatialMatch && pair.SemanticMatch && pair.CombinedConfidence >= th.ValidCombined:
		pair.Status = StatusValid
		return pair
	case pair.CombinedConfidence >= th.SuspiciousCombined:
		pair.Status = StatusSuspicious
	default:
		pair.Status = StatusFalsePositive
	}

	if !pair.SemanticMatch {
		pair.Reasons = append(pair.Reasons, ReasonSemanticMismatch)
	}
	if s.Confidence < th.SymbolConfidence || pair.CombinedConfidence < th.ValidCombined {
		pair.Reasons = append(pair.Reasons, ReasonLowConfidence)
	}
	if !pair.SpatialMatch {
		pair.Reasons = append(pair.Reasons, ReasonOutOfProximity)
	}
	return pair
}

func sortedTags(in []entity.ExtractedTag) []entity.ExtractedTag {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b entity.ExtractedTag) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func sortedSymbols(in []entity.DetectedSymbol) []entity.DetectedSymbol {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b entity.DetectedSymbol) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func symbolConfidences(symbols []entity.DetectedSymbol) []float64 {
	out := make([]float64, len(symbols))
	for i, s := range symbols {
		out[i] = s.Confidence
	}
	return out
}

func tagConfidences(extracted []entity.ExtractedTag) []float64 {
	out := make([]float64, len(extracted))
	for i, t := range extracted {
		out[i] = t.Confidence
	}
	return out
}
