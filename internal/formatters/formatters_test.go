// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	encodingcsv "encoding/csv"
	encodingjson "encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"testing"

	"drawcheck/internal/config"
	"drawcheck/internal/entity"
	"drawcheck/internal/faults"
	"drawcheck/internal/formatters"
	_ "drawcheck/internal/formatters/csv"
	_ "drawcheck/internal/formatters/json"
	"drawcheck/internal/formatters/junit"
	"drawcheck/internal/formatters/sarif"
	_ "drawcheck/internal/formatters/text"
	_ "drawcheck/internal/formatters/yaml"
	"drawcheck/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func at(x, y float64) entity.Geometry {
	return entity.Geometry{X: x, Y: y}
}

func cleanVerdict() validation.Verdict {
	return validation.ValidateCAD(entity.ValidationInput{
		JobID:   "job-clean",
		Drawing: entity.DrawingMetadata{FileName: "unit-100.dwg"},
		References: []entity.ReferenceEntity{
			{ID: "r1", Name: "PUMP", Kind: entity.KindBlock, Layer: "EQUIPMENT", Geometry: at(800, 2000), Tag: "P-101"},
		},
		Symbols: []entity.DetectedSymbol{{ID: "s1", Type: entity.SymbolPump, Confidence: 0.95, Geometry: at(800, 2000)}},
		Tags:    []entity.ExtractedTag{{ID: "t1", Text: "P-101", Confidence: 0.9, Geometry: at(805, 2005)}},
	}, config.DefaultThresholds())
}

func criticalVerdict() validation.Verdict {
	return validation.ValidateCAD(entity.ValidationInput{
		JobID:   "job-psv",
		Drawing: entity.DrawingMetadata{FileName: "unit-200.dwg"},
		References: []entity.ReferenceEntity{
			{ID: "r1", Name: "PSV", Kind: entity.KindBlock, Layer: "SAFETY", Geometry: at(1250, 3400), Tag: "PSV-101A"},
		},
	}, config.DefaultThresholds())
}

func report() formatters.Report {
	return formatters.Report{
		Verdicts: []validation.Verdict{cleanVerdict(), criticalVerdict()},
		Errors: []formatters.JobError{
			formatters.NewJobError("stuck.json", fmt.Errorf("job stuck.json: %w", faults.ErrDeadlineExceeded)),
		},
	}
}

func export(t *testing.T, format string, options formatters.FormatterOptions) string {
	t.Helper()
	out, err := formatters.Export(format, report(), options)
	require.NoError(t, err)
	return out
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "junit", "sarif", "text", "yaml"}, formatters.List())

	_, err := formatters.Export("html", report(), formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available formats: csv, json, junit, sarif, text, yaml")
}

func TestNewJobError(t *testing.T) {
	jobErr := formatters.NewJobError("a.json", errors.New("boom"))
	assert.Equal(t, "a.json", jobErr.Job)
	assert.Equal(t, "unknown", jobErr.ErrorType)

	jobErr = report().Errors[0]
	assert.Equal(t, "infrastructure", jobErr.ErrorType)
}

func TestJSONFormatter(t *testing.T) {
	var doc struct {
		Summary struct {
			Jobs             int `json:"jobs"`
			Passed           int `json:"passed"`
			Failed           int `json:"failed"`
			CriticalFailures int `json:"critical_failures"`
			Errors           int `json:"errors"`
		} `json:"summary"`
		Verdicts []map[string]any `json:"verdicts"`
		Errors   []map[string]any `json:"errors"`
	}
	require.NoError(t, encodingjson.Unmarshal([]byte(export(t, "json", formatters.FormatterOptions{})), &doc))

	assert.Equal(t, 3, doc.Summary.Jobs)
	assert.Equal(t, 1, doc.Summary.Passed)
	assert.Equal(t, 1, doc.Summary.Failed)
	assert.Equal(t, 1, doc.Summary.CriticalFailures)
	assert.Equal(t, 1, doc.Summary.Errors)

	require.Len(t, doc.Verdicts, 2)
	assert.Equal(t, "PASSED", doc.Verdicts[0]["status"])
	rates := doc.Verdicts[1]["rates"].(map[string]any)
	assert.Equal(t, 1.0, rates["critical_missing_rate"])
	missing := doc.Verdicts[0]["missing_equipment"].(map[string]any)
	assert.Nil(t, missing["matches"], "matches are only listed in verbose mode")

	require.NoError(t, encodingjson.Unmarshal([]byte(export(t, "json", formatters.FormatterOptions{Verbose: true})), &doc))
	missing = doc.Verdicts[0]["missing_equipment"].(map[string]any)
	assert.Len(t, missing["matches"], 1)
}

func TestYAMLFormatter(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(export(t, "yaml", formatters.FormatterOptions{})), &doc))

	summary := doc["summary"].(map[string]any)
	assert.Equal(t, 3, summary["jobs"])
	verdicts := doc["verdicts"].([]any)
	require.Len(t, verdicts, 2)
	second := verdicts[1].(map[string]any)
	assert.Equal(t, "FAILED", second["status"])
	assert.Equal(t, true, second["critical_failure"])
}

func TestJUnitFormatter(t *testing.T) {
	out := export(t, "junit", formatters.FormatterOptions{Verbose: true})
	require.True(t, strings.HasPrefix(out, xml.Header))

	var suites junit.TestSuites
	require.NoError(t, xml.Unmarshal([]byte(strings.TrimPrefix(out, xml.Header)), &suites))

	require.Len(t, suites.TestSuites, 3)
	assert.Equal(t, 11, suites.Tests)
	assert.Equal(t, 1, suites.Errors)

	clean := suites.TestSuites[0]
	assert.Equal(t, "unit-100.dwg", clean.Name)
	assert.Zero(t, clean.Failures)

	critical := suites.TestSuites[1]
	assert.Equal(t, "unit-200.dwg", critical.Name)
	require.NotNil(t, critical.TestCases[0].Failure)
	assert.Equal(t, "critical_equipment", critical.TestCases[0].Name)
	assert.Equal(t, "CRITICAL_EQUIPMENT_MISSING", critical.TestCases[0].Failure.Type)
	assert.Contains(t, critical.TestCases[0].Failure.Content, "PSV-101A")

	stuck := suites.TestSuites[2]
	require.NotNil(t, stuck.TestCases[0].Error)
	assert.Equal(t, "infrastructure", stuck.TestCases[0].Error.Type)
}

func TestCSVFormatter(t *testing.T) {
	records, err := encodingcsv.NewReader(strings.NewReader(export(t, "csv", formatters.FormatterOptions{}))).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, "Job", records[0][0])
	assert.Equal(t, []string{"unit-100.dwg", "PASSED", "summary"}, records[1][:3])
	assert.Equal(t, []string{"unit-200.dwg", "FAILED", "missing_critical", "r1", "PSV-101A", "CRITICAL", "SAFETY"}, records[2][:7])
	assert.Equal(t, []string{"stuck.json", "ERROR", "infrastructure"}, records[3][:3])
}

func TestCSVFormatter_NeutralizesFormulas(t *testing.T) {
	r := formatters.Report{Errors: []formatters.JobError{{Job: "=cmd()", ErrorType: "unknown", Message: "+1"}}}
	out, err := formatters.Export("csv", r, formatters.FormatterOptions{})
	require.NoError(t, err)

	records, err := encodingcsv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "'=cmd()", records[1][0])
	assert.Equal(t, "'+1", records[1][8])
}

func TestTextFormatter(t *testing.T) {
	out := export(t, "text", formatters.FormatterOptions{NoColor: true})

	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "DRAWING unit-100.dwg (job job-clean)")
	assert.Contains(t, out, "[PASSED] Validation passed")
	assert.Contains(t, out, "[FAILED] Critical equipment missing from extraction: PSV-101A")
	assert.Contains(t, out, "MISSING EQUIPMENT (1 of 1)")
	assert.Contains(t, out, "no_nearby_candidate")
	assert.Contains(t, out, "JOB ERRORS (1)")
	assert.Contains(t, out, "3 jobs: 1 passed, 0 warning, 1 failed (1 critical), 1 errors")
	assert.NotContains(t, out, "MATCHED EQUIPMENT")

	verbose := export(t, "text", formatters.FormatterOptions{NoColor: true, Verbose: true})
	assert.Contains(t, verbose, "MATCHED EQUIPMENT (1)")
	assert.Contains(t, verbose, "exact_tag")
}

func TestTextFormatter_SingleVerdictHasNoBatchSummary(t *testing.T) {
	out, err := formatters.Export("text", formatters.Report{Verdicts: []validation.Verdict{cleanVerdict()}}, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "jobs:")
	assert.Contains(t, out, "No action required")
}

func TestSARIFFormatter(t *testing.T) {
	out := export(t, "sarif", formatters.FormatterOptions{})

	var doc sarif.SARIFReport
	require.NoError(t, encodingjson.Unmarshal([]byte(out), &doc))
	assert.Equal(t, sarif.SARIFVersion, doc.Version)
	require.Len(t, doc.Runs, 3)

	clean := doc.Runs[0]
	assert.Empty(t, clean.Results)
	assert.Equal(t, "PASSED", clean.Properties["status"])
	assert.Equal(t, "drawcheck", clean.Tool.Driver.Name)

	critical := doc.Runs[1]
	require.Len(t, critical.Results, 1)
	result := critical.Results[0]
	assert.Equal(t, sarif.RuleMissingCritical, result.RuleID)
	assert.Equal(t, sarif.LevelError, result.Level)
	assert.Contains(t, result.Message.Text, "PSV-101A")
	assert.Equal(t, "unit-200.dwg", result.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, "r1", result.Locations[0].LogicalLocations[0].Name)
	assert.Equal(t, 100.0, result.Rank)
	assert.Equal(t, true, critical.Properties["criticalFailure"])

	stuck := doc.Runs[2]
	assert.False(t, stuck.Invocations[0].ExecutionSuccessful)
	assert.Equal(t, sarif.RuleValidationError, stuck.Results[0].RuleID)

	ruleIDs := make([]string, 0, len(clean.Tool.Driver.Rules))
	for _, rule := range clean.Tool.Driver.Rules {
		ruleIDs = append(ruleIDs, rule.ID)
	}
	assert.Equal(t, []string{sarif.RuleMissingCritical, sarif.RuleValidationError}, ruleIDs)
}
