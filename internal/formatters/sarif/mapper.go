// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sarif

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"drawcheck/internal/crossval"
	"drawcheck/internal/entity"
	"drawcheck/internal/formatters"
	"drawcheck/internal/missing"
	"drawcheck/internal/validation"
)

// FindingMapper converts the findings of a verdict to SARIF results
type FindingMapper struct {
	rules *RuleManager
}

// NewFindingMapper creates a mapper that records rules in ruleManager
func NewFindingMapper(ruleManager *RuleManager) *FindingMapper {
	return &FindingMapper{rules: ruleManager}
}

// roundFloat rounds a float64 to 1 decimal place for cleaner SARIF output
func roundFloat(val float64) float64 {
	return math.Round(val*10) / 10
}

// clampRank keeps a rank within the SARIF range [0, 100]
func clampRank(rank float64) float64 {
	return roundFloat(math.Max(0, math.Min(100, rank)))
}

// artifactURI names the drawing a verdict belongs to
func artifactURI(v validation.Verdict) string {
	if v.Drawing.FileName != "" {
		return filepath.ToSlash(v.Drawing.FileName)
	}
	return v.JobID
}

func (m *FindingMapper) location(uri, entityID, kind string) []SARIFLocation {
	loc := SARIFLocation{
		PhysicalLocation: SARIFPhysicalLocation{ArtifactLocation: SARIFArtifactLocation{URI: uri}},
	}
	if entityID != "" {
		loc.LogicalLocations = []SARIFLogicalLocation{{
			Name:               entityID,
			FullyQualifiedName: uri + "/" + entityID,
			Kind:               kind,
		}}
	}
	return []SARIFLocation{loc}
}

// MapVerdict lists every finding of a verdict. Valid pairs and matched
// references are not findings.
func (m *FindingMapper) MapVerdict(v validation.Verdict, options formatters.FormatterOptions) []SARIFResult {
	uri := artifactURI(v)
	results := []SARIFResult{}

	if v.ErrorType != "" {
		return append(results, SARIFResult{
			RuleID:     m.rules.Use(RuleValidationError),
			Level:      LevelError,
			Message:    SARIFMessage{Text: v.Message},
			Locations:  m.location(uri, "", ""),
			Properties: map[string]interface{}{"errorType": v.ErrorType},
		})
	}

	if v.MissingEquipment != nil {
		for _, me := range v.MissingEquipment.Missing {
			results = append(results, m.mapMissing(uri, me, options))
		}
	}
	if v.CrossValidation != nil {
		for _, p := range v.CrossValidation.Pairs {
			if p.Status == crossval.StatusValid {
				continue
			}
			results = append(results, m.mapPair(uri, p, options))
		}
		for _, o := range v.CrossValidation.Orphans {
			results = append(results, m.mapOrphan(uri, o))
		}
	}
	for _, issue := range v.DataIssues {
		results = append(results, m.mapDataIssue(uri, issue))
	}
	return results
}

func (m *FindingMapper) mapMissing(uri string, me missing.MissingEntity, options formatters.FormatterOptions) SARIFResult {
	rule, level := RuleMissing, LevelWarning
	if me.Critical {
		rule, level = RuleMissingCritical, LevelError
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "%s: %s on layer %s has no extracted tag", GetRuleDescription(rule).Short, me.Tag, me.Reference.Layer)
	if me.Nearest != nil {
		fmt.Fprintf(&msg, "; nearest is %s at %.1f", me.Nearest.Tag, me.Nearest.Distance)
	}
	if options.Verbose {
		fmt.Fprintf(&msg, " (reference %s at %.1f, %.1f, reason %s)", me.Reference.ID,
			me.Reference.Geometry.X, me.Reference.Geometry.Y, me.Reason)
	}

	props := map[string]interface{}{
		"layer":       me.Reference.Layer,
		"category":    string(me.Category),
		"criticality": string(me.Criticality),
		"reason":      string(me.Reason),
		"x":           roundFloat(me.Reference.Geometry.X),
		"y":           roundFloat(me.Reference.Geometry.Y),
	}
	if me.Nearest != nil {
		props["nearestTag"] = me.Nearest.Tag
		props["nearestDistance"] = roundFloat(me.Nearest.Distance)
	}

	return SARIFResult{
		RuleID:     m.rules.Use(rule),
		Level:      level,
		Message:    SARIFMessage{Text: msg.String()},
		Locations:  m.location(uri, me.Reference.ID, "reference"),
		Properties: props,
		Rank:       clampRank(40 + 20*float64(me.Criticality.Rank())),
	}
}

func (m *FindingMapper) mapPair(uri string, p crossval.Pair, options formatters.FormatterOptions) SARIFResult {
	rule, level := RuleSuspicious, LevelWarning
	if p.Status == crossval.StatusFalsePositive {
		rule, level = RuleFalsePositive, LevelError
	}

	reasons := make([]string, len(p.Reasons))
	for i, r := range p.Reasons {
		reasons[i] = string(r)
	}

	msg := fmt.Sprintf("%s: %s symbol %s paired with tag %s (combined confidence %.2f)",
		GetRuleDescription(rule).Short, p.Symbol.Type, p.Symbol.ID, p.NormalizedTag, p.CombinedConfidence)
	if options.Verbose && len(reasons) > 0 {
		msg += "; " + strings.Join(reasons, ", ")
	}

	return SARIFResult{
		RuleID:    m.rules.Use(rule),
		Level:     level,
		Message:   SARIFMessage{Text: msg},
		Locations: m.location(uri, p.Symbol.ID, "symbol"),
		Properties: map[string]interface{}{
			"tagId":              p.Tag.ID,
			"symbolType":         string(p.Symbol.Type),
			"distance":           roundFloat(p.Distance),
			"combinedConfidence": roundFloat(p.CombinedConfidence * 100),
			"reasons":            reasons,
		},
		Rank: clampRank(100 * (1 - p.CombinedConfidence)),
	}
}

func (m *FindingMapper) mapOrphan(uri string, o crossval.Orphan) SARIFResult {
	rule, kind := RuleOrphanedTag, "tag"
	if o.Kind == crossval.OrphanedSymbol {
		rule, kind = RuleOrphanedSymbol, "symbol"
	}
	props := map[string]interface{}{
		"label":      o.Label,
		"confidence": roundFloat(o.Confidence * 100),
	}
	if o.NearestID != "" {
		props["nearestId"] = o.NearestID
		props["nearestDistance"] = roundFloat(o.NearestDistance)
	}
	return SARIFResult{
		RuleID:     m.rules.Use(rule),
		Level:      LevelNote,
		Message:    SARIFMessage{Text: fmt.Sprintf("%s: %s %s", GetRuleDescription(rule).Short, kind, o.Label)},
		Locations:  m.location(uri, o.ID, kind),
		Properties: props,
	}
}

func (m *FindingMapper) mapDataIssue(uri string, issue entity.DataIssue) SARIFResult {
	return SARIFResult{
		RuleID:    m.rules.Use(RuleDataIssue),
		Level:     LevelNote,
		Message:   SARIFMessage{Text: issue.Reason},
		Locations: m.location(uri, issue.EntityID, issue.Kind),
	}
}
