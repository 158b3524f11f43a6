// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"drawcheck/internal/crossval"
	"drawcheck/internal/formatters"
	"drawcheck/internal/validation"
)

// Formatter implements CSV output formatting, one row per finding
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated findings for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

var headers = []string{"Job", "Status", "Finding", "Entity ID", "Tag", "Criticality", "Layer", "Distance", "Detail"}

// row is one finding before escaping
type row struct {
	finding     string
	id          string
	tag         string
	criticality string
	layer       string
	distance    string
	detail      string
}

func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, v := range report.Verdicts {
		job := jobName(v)
		for _, r := range f.findings(v, options) {
			record := []string{job, string(v.Status), r.finding, r.id, r.tag, r.criticality, r.layer, r.distance, r.detail}
			if err := w.Write(sanitizeRecord(record)); err != nil {
				return "", fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}
	for _, jobErr := range report.Errors {
		record := []string{jobErr.Job, "ERROR", jobErr.ErrorType, "", "", "", "", "", jobErr.Message}
		if err := w.Write(sanitizeRecord(record)); err != nil {
			return "", fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.String(), nil
}

// findings lists a verdict's rows. A verdict with no findings still gets a
// summary row so every job appears in the output.
func (f *Formatter) findings(v validation.Verdict, options formatters.FormatterOptions) []row {
	var rows []row

	if v.ErrorType != "" {
		return []row{{finding: "error", detail: v.Message}}
	}

	if m := v.MissingEquipment; m != nil {
		for _, me := range m.Missing {
			finding := "missing"
			if me.Critical {
				finding = "missing_critical"
			}
			r := row{
				finding:     finding,
				id:          me.Reference.ID,
				tag:         me.Tag,
				criticality: string(me.Criticality),
				layer:       me.Reference.Layer,
				detail:      string(me.Reason),
			}
			if me.Nearest != nil {
				r.distance = fmt.Sprintf("%.1f", me.Nearest.Distance)
				r.detail = fmt.Sprintf("%s; nearest %s", me.Reason, me.Nearest.Tag)
			}
			rows = append(rows, r)
		}
		if options.Verbose {
			for _, match := range m.Matches {
				rows = append(rows, row{
					finding:  "matched",
					id:       match.Reference.ID,
					tag:      match.Extracted.Tag,
					layer:    match.Reference.Layer,
					distance: fmt.Sprintf("%.1f", match.Distance),
					detail:   string(match.Method),
				})
			}
		}
	}

	if c := v.CrossValidation; c != nil {
		for _, p := range c.Pairs {
			if p.Status == crossval.StatusValid && !options.Verbose {
				continue
			}
			reasons := make([]string, len(p.Reasons))
			for i, reason := range p.Reasons {
				reasons[i] = string(reason)
			}
			rows = append(rows, row{
				finding:  strings.ToLower(string(p.Status)),
				id:       p.Symbol.ID,
				tag:      p.NormalizedTag,
				distance: fmt.Sprintf("%.1f", p.Distance),
				detail:   fmt.Sprintf("combined %.2f %s", p.CombinedConfidence, strings.Join(reasons, " ")),
			})
		}
		for _, o := range c.Orphans {
			rows = append(rows, row{
				finding: string(o.Kind),
				id:      o.ID,
				tag:     o.Label,
				detail:  fmt.Sprintf("confidence %.2f", o.Confidence),
			})
		}
	}

	for _, issue := range v.DataIssues {
		rows = append(rows, row{finding: "data_issue", id: issue.EntityID, detail: issue.Reason})
	}

	if len(rows) == 0 {
		rows = append(rows, row{finding: "summary", detail: v.Message})
	}
	return rows
}

func jobName(v validation.Verdict) string {
	if v.Drawing.FileName != "" {
		return v.Drawing.FileName
	}
	return v.JobID
}

func sanitizeRecord(record []string) []string {
	for i, field := range record {
		record[i] = sanitizeFormulaInjection(field)
	}
	return record
}

// sanitizeFormulaInjection prevents CSV injection attacks by sanitizing formula characters
func sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	// Check if field starts with formula characters that could be dangerous in spreadsheets
	firstChar := field[0]
	if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' {
		// Prefix with single quote to prevent formula execution
		return "'" + field
	}

	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
