// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"drawcheck/internal/crossval"
	"drawcheck/internal/formatters"
	"drawcheck/internal/validation"
)

// Summary counts the verdicts of a report
type Summary struct {
	Jobs             int `json:"jobs" yaml:"jobs"`
	Passed           int `json:"passed" yaml:"passed"`
	Warning          int `json:"warning" yaml:"warning"`
	Failed           int `json:"failed" yaml:"failed"`
	CriticalFailures int `json:"critical_failures" yaml:"critical_failures"`
	Errors           int `json:"errors" yaml:"errors"`
}

// Response is the top-level structure of JSON and YAML output
type Response struct {
	Summary  Summary               `json:"summary" yaml:"summary"`
	Verdicts []validation.Verdict  `json:"verdicts" yaml:"verdicts"`
	Errors   []formatters.JobError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Summarize counts the verdicts and errors of a report
func Summarize(report formatters.Report) Summary {
	s := Summary{Jobs: len(report.Verdicts) + len(report.Errors), Errors: len(report.Errors)}
	for _, v := range report.Verdicts {
		switch v.Status {
		case validation.StatusPassed:
			s.Passed++
		case validation.StatusWarning:
			s.Warning++
		case validation.StatusFailed:
			s.Failed++
		}
		if v.CriticalFailure {
			s.CriticalFailures++
		}
	}
	return s
}

// ConvertReport builds the JSON/YAML response. Without the verbose option the
// per-entity match lists are dropped and only the diagnostics are kept.
func ConvertReport(report formatters.Report, options formatters.FormatterOptions) Response {
	verdicts := make([]validation.Verdict, len(report.Verdicts))
	for i, v := range report.Verdicts {
		if !options.Verbose {
			v = Condense(v)
		}
		verdicts[i] = v
	}
	return Response{
		Summary:  Summarize(report),
		Verdicts: verdicts,
		Errors:   report.Errors,
	}
}

// Condense returns a copy of the verdict without the successful matches and
// the valid pairs
func Condense(v validation.Verdict) validation.Verdict {
	if v.MissingEquipment != nil {
		m := *v.MissingEquipment
		m.Matches = nil
		v.MissingEquipment = &m
	}
	if v.CrossValidation != nil {
		c := *v.CrossValidation
		var flagged []crossval.Pair
		for _, p := range c.Pairs {
			if p.Status != crossval.StatusValid {
				flagged = append(flagged, p)
			}
		}
		c.Pairs = flagged
		v.CrossValidation = &c
	}
	return v
}

// Percent renders a rate in [0,1] as a percentage
func Percent(rate float64) float64 {
	return 100 * rate
}
