// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sarif

import (
	"encoding/json"
	"fmt"

	"drawcheck/internal/formatters"
	"drawcheck/internal/formatters/shared"
	"drawcheck/internal/version"
)

// Formatter implements the formatters.Formatter interface for SARIF output
type Formatter struct{}

// NewFormatter creates a new SARIF formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Name returns the name of the formatter
func (f *Formatter) Name() string {
	return "sarif"
}

// Description returns a brief description of the formatter
func (f *Formatter) Description() string {
	return "SARIF 2.1.0 format with one run per drawing, for code-scanning dashboards"
}

// FileExtension returns the recommended file extension for SARIF files
func (f *Formatter) FileExtension() string {
	return ".sarif"
}

// Format converts a report to SARIF 2.1.0
func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	rules := NewRuleManager()
	mapper := NewFindingMapper(rules)

	runs := make([]SARIFRun, 0, len(report.Verdicts)+len(report.Errors))
	for _, v := range report.Verdicts {
		runs = append(runs, SARIFRun{
			Results:     mapper.MapVerdict(v, options),
			Invocations: []SARIFInvocation{{ExecutionSuccessful: v.ErrorType == ""}},
			Properties: map[string]interface{}{
				"jobId":           v.JobID,
				"status":          string(v.Status),
				"criticalFailure": v.CriticalFailure,
				"overallAccuracy": shared.Percent(v.OverallAccuracy),
			},
		})
	}
	for _, jobErr := range report.Errors {
		runs = append(runs, SARIFRun{
			Results: []SARIFResult{{
				RuleID:     rules.Use(RuleValidationError),
				Level:      LevelError,
				Message:    SARIFMessage{Text: jobErr.Message},
				Locations:  mapper.location(jobErr.Job, "", ""),
				Properties: map[string]interface{}{"errorType": jobErr.ErrorType},
			}},
			Invocations: []SARIFInvocation{{ExecutionSuccessful: false}},
		})
	}

	// every run shares the driver so each carries the full rule set
	driver := SARIFDriver{
		Name:            ToolName,
		Version:         version.Version,
		SemanticVersion: version.Version,
		Rules:           rules.GetAllRules(),
	}
	for i := range runs {
		runs[i].Tool = SARIFTool{Driver: driver}
	}

	jsonBytes, err := json.MarshalIndent(SARIFReport{
		Schema:  SARIFSchemaURL,
		Version: SARIFVersion,
		Runs:    runs,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SARIF report: %w", err)
	}
	return string(jsonBytes) + "\n", nil
}

// init registers the SARIF formatter with the global formatter registry
func init() {
	formatters.Register(NewFormatter())
}
