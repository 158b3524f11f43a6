// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"

	"drawcheck/internal/crossval"
	"drawcheck/internal/formatters"
	"drawcheck/internal/formatters/shared"
	"drawcheck/internal/validation"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// maxColumnWidth caps table columns for readability
const maxColumnWidth = 30

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"redBold": color.New(color.FgRed, color.Bold),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable verdicts with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	var builder strings.Builder

	for i, v := range report.Verdicts {
		if i > 0 {
			builder.WriteString("\n")
		}
		f.appendVerdict(&builder, v, options)
	}

	if len(report.Errors) > 0 {
		if len(report.Verdicts) > 0 {
			builder.WriteString("\n")
		}
		f.appendHeading(&builder, fmt.Sprintf("JOB ERRORS (%d)", len(report.Errors)), options)
		for _, jobErr := range report.Errors {
			fmt.Fprintf(&builder, "  %s %s: %s\n", f.paint("red", options, "[%s]", jobErr.ErrorType), jobErr.Job, jobErr.Message)
		}
	}

	if len(report.Verdicts)+len(report.Errors) > 1 {
		s := shared.Summarize(report)
		builder.WriteString("\n")
		fmt.Fprintf(&builder, "%d jobs: %s, %s, %s (%d critical), %d errors\n", s.Jobs,
			f.paint("green", options, "%d passed", s.Passed),
			f.paint("yellow", options, "%d warning", s.Warning),
			f.paint("red", options, "%d failed", s.Failed),
			s.CriticalFailures, s.Errors)
	}

	return builder.String(), nil
}

func (f *Formatter) appendVerdict(builder *strings.Builder, v validation.Verdict, options formatters.FormatterOptions) {
	name := v.Drawing.FileName
	if name == "" {
		name = v.JobID
	}
	fmt.Fprintf(builder, "%s %s", f.paint("white", options, "DRAWING"), name)
	if v.JobID != "" && v.JobID != name {
		fmt.Fprintf(builder, " (job %s)", v.JobID)
	}
	builder.WriteString("\n")
	fmt.Fprintf(builder, "%s %s\n", f.statusLabel(v, options), v.Message)

	if v.ErrorType == "" {
		f.appendRates(builder, v, options)
		f.appendMissing(builder, v, options)
		f.appendCrossValidation(builder, v, options)
		f.appendUnrecognizedTags(builder, v, options)
	}

	if len(v.DataIssues) > 0 {
		f.appendHeading(builder, fmt.Sprintf("DATA ISSUES (%d)", len(v.DataIssues)), options)
		for _, issue := range v.DataIssues {
			fmt.Fprintf(builder, "  - %s\n", issue)
		}
	}

	if len(v.Warnings) > 0 {
		f.appendHeading(builder, "WARNINGS", options)
		for _, w := range v.Warnings {
			fmt.Fprintf(builder, "  %s %s\n", f.paint("yellow", options, "!"), w)
		}
	}

	f.appendHeading(builder, "RECOMMENDATIONS", options)
	for i, r := range v.Recommendations {
		fmt.Fprintf(builder, "  %d. %s\n", i+1, r)
	}

	perf := v.Performance
	fmt.Fprintf(builder, "\nProcessed %d entities in %.1f ms", perf.EntityCount, perf.DurationMs)
	if perf.EntitiesPerSecond > 0 {
		fmt.Fprintf(builder, " (%.0f entities/s)", perf.EntitiesPerSecond)
	}
	builder.WriteString("\n")
}

func (f *Formatter) statusLabel(v validation.Verdict, options formatters.FormatterOptions) string {
	label := fmt.Sprintf("[%s]", v.Status)
	switch {
	case v.CriticalFailure:
		return f.paint("redBold", options, "%s", label)
	case v.Status == validation.StatusFailed:
		return f.paint("red", options, "%s", label)
	case v.Status == validation.StatusWarning:
		return f.paint("yellow", options, "%s", label)
	default:
		return f.paint("green", options, "%s", label)
	}
}

func (f *Formatter) appendRates(builder *strings.Builder, v validation.Verdict, options formatters.FormatterOptions) {
	th := v.Thresholds
	f.appendHeading(builder, "RATES", options)
	rows := []struct {
		label  string
		value  float64
		limit  string
		breach bool
	}{
		{"Overall accuracy", v.OverallAccuracy, fmt.Sprintf("fail below %.1f%%", 100*th.FailAccuracy), v.OverallAccuracy < th.FailAccuracy},
		{"Missing rate", v.MissingRate, fmt.Sprintf("limit %.1f%%", 100*th.MaxMissingRate), v.MissingRate > th.MaxMissingRate},
		{"Critical missing rate", v.CriticalMissingRate, fmt.Sprintf("limit %.1f%%", 100*th.MaxCriticalMissingRate), v.CriticalMissingRate > th.MaxCriticalMissingRate},
		{"False positive rate", v.FalsePositiveRate, fmt.Sprintf("limit %.1f%%", 100*th.MaxFalsePositiveRate), v.FalsePositiveRate > th.MaxFalsePositiveRate},
		{"Tag validation rate", v.TagValidationRate, fmt.Sprintf("min %.1f%%", 100*th.MinTagValidationRate), v.TagValidationRate < th.MinTagValidationRate},
	}
	for _, r := range rows {
		value := fmt.Sprintf("%6.1f%%", shared.Percent(r.value))
		if r.breach {
			value = f.paint("red", options, "%s", value)
		}
		fmt.Fprintf(builder, "  %s %s  (%s)\n", runewidth.FillRight(r.label, 22), value, r.limit)
	}
}

func (f *Formatter) appendMissing(builder *strings.Builder, v validation.Verdict, options formatters.FormatterOptions) {
	m := v.MissingEquipment
	if m == nil {
		return
	}
	if len(m.Missing) > 0 {
		f.appendHeading(builder, fmt.Sprintf("MISSING EQUIPMENT (%d of %d)", len(m.Missing), m.RelevantCount), options)
		rows := [][]string{{"TAG", "CRITICALITY", "LAYER", "REASON", "NEAREST"}}
		for _, me := range m.Missing {
			tag := me.Tag
			if tag == "" {
				tag = me.Reference.Name
			}
			nearest := "-"
			if me.Nearest != nil {
				nearest = fmt.Sprintf("%s @ %.1f", me.Nearest.Tag, me.Nearest.Distance)
			}
			rows = append(rows, []string{tag, string(me.Criticality), me.Reference.Layer, string(me.Reason), nearest})
		}
		f.appendTable(builder, rows, options, func(row []string) string {
			if row[1] == "CRITICAL" {
				return "redBold"
			}
			return ""
		})
	}

	if options.Verbose && len(m.Matches) > 0 {
		f.appendHeading(builder, fmt.Sprintf("MATCHED EQUIPMENT (%d)", len(m.Matches)), options)
		rows := [][]string{{"REFERENCE", "EXTRACTED", "METHOD", "DISTANCE"}}
		for _, match := range m.Matches {
			ref := match.Reference.Tag
			if ref == "" {
				ref = match.Reference.Name
			}
			rows = append(rows, []string{ref, match.Extracted.Tag, string(match.Method), fmt.Sprintf("%.1f", match.Distance)})
		}
		f.appendTable(builder, rows, options, nil)
	}

	if options.Verbose && len(m.Scales) > 0 {
		f.appendHeading(builder, "EXTRACTION SCALES", options)
		for _, s := range m.Scales {
			fmt.Fprintf(builder, "  x%-5g %4d candidates, mean confidence %.2f\n", s.Scale, s.Count, s.MeanConfidence)
		}
	}
}

func (f *Formatter) appendCrossValidation(builder *strings.Builder, v validation.Verdict, options formatters.FormatterOptions) {
	c := v.CrossValidation
	if c == nil {
		return
	}

	rows := [][]string{{"SYMBOL", "TYPE", "TAG", "COMBINED", "STATUS", "REASONS"}}
	for _, p := range c.Pairs {
		if p.Status == crossval.StatusValid && !options.Verbose {
			continue
		}
		reasons := make([]string, len(p.Reasons))
		for i, r := range p.Reasons {
			reasons[i] = string(r)
		}
		rows = append(rows, []string{p.Symbol.ID, string(p.Symbol.Type), p.NormalizedTag,
			fmt.Sprintf("%.2f", p.CombinedConfidence), string(p.Status), strings.Join(reasons, ",")})
	}
	for _, o := range c.Orphans {
		rows = append(rows, []string{o.ID, "", o.Label, fmt.Sprintf("%.2f", o.Confidence), string(o.Kind), ""})
	}
	if len(rows) > 1 {
		f.appendHeading(builder, fmt.Sprintf("CROSS-VALIDATION (%d valid, %d suspicious, %d false positive, %d orphaned)",
			c.ValidCount, c.SuspiciousCount, c.FalsePositiveCount, len(c.Orphans)), options)
		f.appendTable(builder, rows, options, func(row []string) string {
			switch row[4] {
			case string(crossval.StatusFalsePositive), string(crossval.OrphanedSymbol), string(crossval.OrphanedTag):
				return "red"
			case string(crossval.StatusSuspicious):
				return "yellow"
			}
			return ""
		})
	}

	if options.Verbose && len(c.Filtered) > 0 {
		f.appendHeading(builder, fmt.Sprintf("FILTERED (%d)", len(c.Filtered)), options)
		for _, fl := range c.Filtered {
			fmt.Fprintf(builder, "  %s %s: %s\n", fl.Kind, fl.ID, fl.Reason)
		}
	}
}

func (f *Formatter) appendUnrecognizedTags(builder *strings.Builder, v validation.Verdict, options formatters.FormatterOptions) {
	if !options.Verbose || len(v.Tags.Unrecognized) == 0 {
		return
	}
	f.appendHeading(builder, fmt.Sprintf("UNRECOGNIZED TAGS (%d of %d)", len(v.Tags.Unrecognized), v.Tags.Total), options)
	for _, n := range v.Tags.Unrecognized {
		fmt.Fprintf(builder, "  %q -> %s\n", n.Original, n.Normalized)
	}
}

func (f *Formatter) appendHeading(builder *strings.Builder, heading string, options formatters.FormatterOptions) {
	builder.WriteString("\n")
	builder.WriteString(f.paint("white", options, "%s", heading))
	builder.WriteString("\n")
}

// appendTable writes rows as aligned columns. The first row is the header;
// rowColor picks the color of a data row by its content.
func (f *Formatter) appendTable(builder *strings.Builder, rows [][]string, options formatters.FormatterOptions, rowColor func([]string) string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = min(max(widths[i], runewidth.StringWidth(cell)), maxColumnWidth)
		}
	}

	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cell = runewidth.Truncate(cell, maxColumnWidth, "...")
			if i < len(row)-1 {
				cell = runewidth.FillRight(cell, widths[i])
			}
			cells[i] = cell
		}
		line := "  " + strings.TrimRight(strings.Join(cells, "  "), " ")
		switch {
		case r == 0:
			line = f.paint("cyan", options, "%s", line)
		case rowColor != nil:
			if name := rowColor(row); name != "" {
				line = f.paint(name, options, "%s", line)
			}
		}
		builder.WriteString(line)
		builder.WriteString("\n")
	}
}

// paint formats with the named color unless colors are disabled
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...interface{}) string {
	c, ok := f.colors[name]
	if options.NoColor || !ok {
		return fmt.Sprintf(format, args...)
	}
	return c.Sprintf(format, args...)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
