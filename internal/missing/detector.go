// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package missing compares the drawing's reference entities against the
// extracted entities and reports relevant equipment the extraction dropped.
package missing

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"drawcheck/internal/config"
	"drawcheck/internal/entity"
	"drawcheck/internal/observability"
	"drawcheck/internal/tags"
)

// relevanceKeywords mark a reference entity as equipment by name or layer
var relevanceKeywords = []string{
	"PUMP", "VALVE", "VESSEL", "TANK", "INSTR", "EQUIP",
	"PSV", "PRV", "COMPRESSOR", "EXCHANGER", "DRUM", "TOWER",
}

// Detector runs the two-pass missing-equipment match
type Detector struct {
	thresholds config.Thresholds
	observer   *observability.StandardObserver
}

// NewDetector creates a detector bound to one thresholds value
func NewDetector(th config.Thresholds) *Detector {
	return &Detector{thresholds: th}
}

// SetObserver sets the observability component
func (d *Detector) SetObserver(observer *observability.StandardObserver) {
	d.observer = observer
}

// Detect runs a detector with the given thresholds
func Detect(refs []entity.ReferenceEntity, candidates []Candidate, th config.Thresholds) Result {
	return NewDetector(th).Detect(refs, candidates)
}

// CandidatesFromTags turns extracted tags into candidates with normalized text
func CandidatesFromTags(extracted []entity.ExtractedTag) []Candidate {
	out := make([]Candidate, len(extracted))
	for i, t := range extracted {
		out[i] = Candidate{
			ID:         t.ID,
			Tag:        tags.Normalize(t.Text),
			Geometry:   t.Geometry,
			Confidence: t.Confidence,
			Scale:      t.Scale,
			Source:     t.Source,
		}
	}
	return out
}

// reference is a relevant reference entity prepared for matching
type reference struct {
	entity      entity.ReferenceEntity
	tag         string
	category    tags.Category
	criticality tags.Criticality
}

func (r reference) critical() bool {
	return r.criticality == tags.CriticalityCritical
}

// acceptsFallback reports whether the nearest unused candidate may stand in
// for the reference. A reference relevant only by keyword has no tag to
// compare, so the candidate must itself read as an equipment tag.
func (r reference) acceptsFallback(c Candidate, maxEditDistance int) bool {
	if r.tag == "" {
		category, _ := tags.Classify(c.Tag)
		return category != tags.CategoryUnknown
	}
	return tags.EditDistance(r.tag, c.Tag) <= maxEditDistance
}

// Detect compares reference entities with candidates. The result does not
// depend on the order of either input: references are visited by id and
// ties between candidates go to the nearest, then the lowest id.
func (d *Detector) Detect(refs []entity.ReferenceEntity, candidates []Candidate) Result {
	var finishTiming func(bool, map[string]interface{})
	if d.observer != nil {
		finishTiming = d.observer.StartTiming("missing_detector", "detect", "")
	}
	finishStep := observability.Step(d.observer, "missing_detector", "detect", "")

	th := d.thresholds
	result := Result{}

	relevant := make([]reference, 0, len(refs))
	for _, ref := range refs {
		prepared, ok := prepareReference(ref)
		if !ok {
			result.IgnoredCount++
			continue
		}
		relevant = append(relevant, prepared)
		if prepared.critical() {
			result.CriticalCount++
		}
	}
	result.RelevantCount = len(relevant)
	slices.SortStableFunc(relevant, func(a, b reference) int {
		return cmp.Compare(a.entity.ID, b.entity.ID)
	})

	pool := slices.Clone(candidates)
	slices.SortStableFunc(pool, func(a, b Candidate) int {
		return cmp.Compare(a.ID, b.ID)
	})
	used := make([]bool, len(pool))
	matched := make([]bool, len(relevant))

	// Pass 1: exact normalized tag within the proximity threshold
	for i, ref := range relevant {
		if ref.tag == "" {
			continue
		}
		best, dist := nearest(ref.entity.Geometry, pool, used, th.ProximityThreshold, func(c Candidate) bool {
			return c.Tag == ref.tag
		})
		if best < 0 {
			continue
		}
		used[best], matched[i] = true, true
		result.Matches = append(result.Matches, MatchPair{
			Reference: ref.entity,
			Extracted: pool[best],
			Distance:  dist,
			Method:    MethodExactTag,
		})
	}
	observability.Metric(d.observer, "missing_detector", "exact_matches", len(result.Matches))

	// Pass 2: nearest unused candidate, gated by edit distance
	for i, ref := range relevant {
		if matched[i] {
			continue
		}
		best, dist := nearest(ref.entity.Geometry, pool, used, th.ProximityThreshold, nil)
		if best < 0 || !ref.acceptsFallback(pool[best], th.FallbackEditDistance) {
			continue
		}
		used[best], matched[i] = true, true
		result.Matches = append(result.Matches, MatchPair{
			Reference: ref.entity,
			Extracted: pool[best],
			Distance:  dist,
			Method:    MethodProximityFallback,
		})
	}

	for i, ref := range relevant {
		if matched[i] {
			continue
		}
		missingEntity := d.diagnose(ref, pool)
		if missingEntity.Critical {
			result.CriticalMissing++
		}
		result.Missing = append(result.Missing, missingEntity)
	}
	for i, c := range pool {
		if !used[i] {
			result.Unmatched = append(result.Unmatched, c)
		}
	}

	result.MissingRate = ratio(len(result.Missing), result.RelevantCount)
	result.CriticalMissingRate = ratio(result.CriticalMissing, result.CriticalCount)
	result.CriticalFailure = result.CriticalMissing > 0
	result.Passed = result.MissingRate <= th.MaxMissingRate &&
		result.CriticalMissingRate <= th.MaxCriticalMissingRate &&
		!result.CriticalFailure
	result.Scales = scaleReport(pool)

	if finishTiming != nil {
		finishTiming(result.Passed, map[string]interface{}{
			"relevant":         result.RelevantCount,
			"missing":          len(result.Missing),
			"critical_missing": result.CriticalMissing,
			"matches":          len(result.Matches),
		})
	}
	finishStep(!result.CriticalFailure, "")
	return result
}

// prepareReference normalizes the reference tag and applies the relevance
// filter. The explicit tag wins; otherwise the name is used when it reads as
// a valid equipment tag.
func prepareReference(ref entity.ReferenceEntity) (reference, bool) {
	prepared := reference{entity: ref}
	if ref.Tag != "" {
		prepared.tag = tags.Normalize(ref.Tag)
	} else if fromName := tags.Normalize(ref.Name); fromName != "" {
		if category, _ := tags.Classify(fromName); category != tags.CategoryUnknown {
			prepared.tag = fromName
		}
	}
	prepared.category, prepared.criticality = tags.Classify(prepared.tag)

	if prepared.category != tags.CategoryUnknown {
		return prepared, true
	}
	name, layer := strings.ToUpper(ref.Name), strings.ToUpper(ref.Layer)
	for _, keyword := range relevanceKeywords {
		if strings.Contains(name, keyword) || strings.Contains(layer, keyword) {
			return prepared, true
		}
	}
	return prepared, false
}

// nearest returns the index of the closest unused candidate within maxDist
// that satisfies accept, or -1. pool is sorted by id so the first of equally
// distant candidates has the lowest id.
func nearest(g entity.Geometry, pool []Candidate, used []bool, maxDist float64, accept func(Candidate) bool) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, c := range pool {
		if used[i] || (accept != nil && !accept(c)) {
			continue
		}
		dist := entity.Distance(g, c.Geometry)
		if dist <= maxDist && dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best, bestDist
}

// diagnose builds the missing-entity record: the closest candidate at any
// distance, and whether a similarly tagged candidate sat within range
func (d *Detector) diagnose(ref reference, pool []Candidate) MissingEntity {
	out := MissingEntity{
		Reference:   ref.entity,
		Tag:         ref.tag,
		Category:    ref.category,
		Criticality: ref.criticality,
		Critical:    ref.critical(),
		Reason:      ReasonNoNearbyCandidate,
	}

	for _, c := range pool {
		dist := entity.Distance(ref.entity.Geometry, c.Geometry)
		if out.Nearest == nil || dist < out.Nearest.Distance {
			out.Nearest = &Nearest{ID: c.ID, Tag: c.Tag, Distance: dist}
		}
		if ref.tag != "" && dist <= d.thresholds.ProximityThreshold && tags.EditDistance(ref.tag, c.Tag) <= d.thresholds.SimilarTagEditDistance {
			out.Reason = ReasonSimilarTagMismatch
		}
	}
	return out
}

// scaleReport partitions candidates by acquisition scale, ascending
func scaleReport(candidates []Candidate) []ScaleReport {
	byScale := make(map[float64]*ScaleReport)
	for _, c := range candidates {
		scale := entity.NormalizeScale(c.Scale)
		report, ok := byScale[scale]
		if !ok {
			report = &ScaleReport{Scale: scale}
			byScale[scale] = report
		}
		report.Count++
		report.MeanConfidence += c.Confidence
	}

	out := make([]ScaleReport, 0, len(byScale))
	for _, report := range byScale {
		report.MeanConfidence /= float64(report.Count)
		out = append(out, *report)
	}
	slices.SortFunc(out, func(a, b ScaleReport) int {
		return cmp.Compare(a.Scale, b.Scale)
	})
	return out
}

func sortLayerCounts(counts []LayerCount) {
	slices.SortFunc(counts, func(a, b LayerCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Layer, b.Layer)
	})
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
