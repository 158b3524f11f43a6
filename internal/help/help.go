// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"drawcheck/internal/config"
	"drawcheck/internal/tags"

	"github.com/fatih/color"
)

// ThresholdInfo documents one tunable threshold
type ThresholdInfo struct {
	Key         string // YAML key in the config file
	Description string
	Value       func(config.Thresholds) string
}

func percent(v float64) string { return strconv.FormatFloat(100*v, 'f', -1, 64) + "%" }
func number(v float64) string  { return strconv.FormatFloat(v, 'f', -1, 64) }

// Thresholds lists every threshold in config file order
var Thresholds = []ThresholdInfo{
	{"proximity_threshold", "Max distance between a reference and its extracted tag (drawing units)", func(t config.Thresholds) string { return number(t.ProximityThreshold) }},
	{"fallback_edit_distance", "Max edit distance for a proximity-only match", func(t config.Thresholds) string { return strconv.Itoa(t.FallbackEditDistance) }},
	{"similar_tag_edit_distance", "Edit distance under which a nearby tag is reported as similar", func(t config.Thresholds) string { return strconv.Itoa(t.SimilarTagEditDistance) }},
	{"max_missing_rate", "Missing-equipment check fails above this rate", func(t config.Thresholds) string { return percent(t.MaxMissingRate) }},
	{"max_critical_missing_rate", "Critical failure above this rate of missing safety-critical tags", func(t config.Thresholds) string { return percent(t.MaxCriticalMissingRate) }},
	{"symbol_confidence", "Min confidence for a detected symbol to be cross-validated", func(t config.Thresholds) string { return number(t.SymbolConfidence) }},
	{"tag_confidence", "Min confidence for an extracted tag to be cross-validated", func(t config.Thresholds) string { return number(t.TagConfidence) }},
	{"char_confidence", "Min mean per-character OCR confidence", func(t config.Thresholds) string { return number(t.CharConfidence) }},
	{"pairing_radius", "Max symbol to tag distance for a pair (drawing units)", func(t config.Thresholds) string { return number(t.PairingRadius) }},
	{"valid_combined", "Min combined confidence of a VALID pair", func(t config.Thresholds) string { return number(t.ValidCombined) }},
	{"suspicious_combined", "Min combined confidence of a SUSPICIOUS pair", func(t config.Thresholds) string { return number(t.SuspiciousCombined) }},
	{"max_false_positive_rate", "Cross-validation fails above this rate", func(t config.Thresholds) string { return percent(t.MaxFalsePositiveRate) }},
	{"symbol_retain_target", "Share of symbols a suggested symbol threshold keeps", func(t config.Thresholds) string { return percent(t.SymbolRetainTarget) }},
	{"tag_retain_target", "Share of tags a suggested tag threshold keeps", func(t config.Thresholds) string { return percent(t.TagRetainTarget) }},
	{"fail_accuracy", "FAILED below this overall accuracy", func(t config.Thresholds) string { return percent(t.FailAccuracy) }},
	{"warn_accuracy", "WARNING below this overall accuracy", func(t config.Thresholds) string { return percent(t.WarnAccuracy) }},
	{"min_tag_validation_rate", "WARNING below this share of recognized tags", func(t config.Thresholds) string { return percent(t.MinTagValidationRate) }},
}

// System renders reference information about rules and thresholds
type System struct {
	out     io.Writer
	noColor bool
	colors  map[string]*color.Color
}

// NewSystem creates a new help system writing to out
func NewSystem(out io.Writer, noColor bool) *System {
	return &System{
		out:     out,
		noColor: noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"critical": color.New(color.FgRed, color.Bold),
			"high":     color.New(color.FgYellow),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"example":  color.New(color.FgMagenta),
		},
	}
}

// paint formats with the named color unless colors are disabled
func (h *System) paint(name, format string, args ...interface{}) string {
	if h.noColor {
		return fmt.Sprintf(format, args...)
	}
	return h.colors[name].Sprintf(format, args...)
}

func (h *System) criticality(c tags.Criticality) string {
	switch c {
	case tags.CriticalityCritical:
		return h.paint("critical", "%s", c)
	case tags.CriticalityHigh:
		return h.paint("high", "%s", c)
	default:
		return string(c)
	}
}

// ShowRules lists the tag classification rules in evaluation order
func (h *System) ShowRules() {
	fmt.Fprintln(h.out, h.paint("title", "Tag Classification Rules"))
	fmt.Fprintln(h.out, "========================")
	fmt.Fprintln(h.out, "Normalized tags are matched against these rules in order; the first match wins.")
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  RULE\tCATEGORY\tCRITICALITY\tPATTERN\tEXAMPLE")
	fmt.Fprintln(w, "  ----\t--------\t-----------\t-------\t-------")
	for _, r := range tags.Rules {
		// plain text keeps tabwriter alignment
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", r.Name, r.Category, r.Criticality, r.Pattern, r.Example)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintf(h.out, "Missing any %s tag is a critical failure regardless of the other figures.\n",
		h.criticality(tags.CriticalityCritical))
}

// ShowRule displays one rule in detail
func (h *System) ShowRule(name string) bool {
	for _, r := range tags.Rules {
		if !strings.EqualFold(r.Name, name) {
			continue
		}
		fmt.Fprintln(h.out, h.paint("title", "%s Rule", r.Name))
		fmt.Fprintln(h.out, strings.Repeat("=", len(r.Name)+5))
		fmt.Fprintf(h.out, "%s %s\n", h.paint("header", "Category:"), r.Category)
		fmt.Fprintf(h.out, "%s %s\n", h.paint("header", "Criticality:"), h.criticality(r.Criticality))
		fmt.Fprintf(h.out, "%s %s\n", h.paint("header", "Pattern:"), r.Pattern)
		fmt.Fprintf(h.out, "%s %s\n", h.paint("header", "Example:"), h.paint("example", "%s", r.Example))
		return true
	}
	fmt.Fprintln(h.out, h.paint("negative", "Error: Rule '%s' not found.", name))
	fmt.Fprintln(h.out, "Use 'drawcheck rules' to see the list of rules.")
	return false
}

// ShowThresholds lists the thresholds in effect for a profile
func (h *System) ShowThresholds(th config.Thresholds, profile string) {
	title := "Thresholds"
	if profile != "" {
		title = fmt.Sprintf("Thresholds (profile %s)", profile)
	}
	fmt.Fprintln(h.out, h.paint("title", "%s", title))
	fmt.Fprintln(h.out, strings.Repeat("=", len(title)))

	defaults := config.DefaultThresholds()
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  KEY\tVALUE\tDEFAULT\tDESCRIPTION")
	for _, info := range Thresholds {
		value, def := info.Value(th), info.Value(defaults)
		marker := ""
		if value != def {
			marker = " *"
		}
		fmt.Fprintf(w, "  %s\t%s%s\t%s\t%s\n", info.Key, value, marker, def, info.Description)
	}
	w.Flush()
	fmt.Fprintln(h.out, "\n  * differs from the default")
}

// ShowNormalized prints the outcome of normalizing raw tags
func (h *System) ShowNormalized(normalized []tags.NormalizedTag) {
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORIGINAL\tNORMALIZED\tCATEGORY\tCRITICALITY\tCORRECTIONS")
	for _, n := range normalized {
		corrections := "-"
		if len(n.Corrections) > 0 {
			corrections = strings.Join(n.Corrections, ",")
		}
		criticality := string(n.Criticality)
		if !n.Valid {
			criticality = "-"
		}
		fmt.Fprintf(w, "%q\t%s\t%s\t%s\t%s\n", n.Original, n.Normalized, n.Category, criticality, corrections)
	}
	w.Flush()
}
