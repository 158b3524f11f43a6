// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package junit

import (
	"encoding/xml"
	"fmt"
	"strings"

	"drawcheck/internal/formatters"
	"drawcheck/internal/validation"
)

// JUnit XML structures based on the standard JUnit XML schema
type TestSuites struct {
	XMLName    xml.Name    `xml:"testsuites"`
	Name       string      `xml:"name,attr"`
	Tests      int         `xml:"tests,attr"`
	Failures   int         `xml:"failures,attr"`
	Errors     int         `xml:"errors,attr"`
	Time       string      `xml:"time,attr"`
	TestSuites []TestSuite `xml:"testsuite"`
}

type TestSuite struct {
	XMLName   xml.Name   `xml:"testsuite"`
	Name      string     `xml:"name,attr"`
	Tests     int        `xml:"tests,attr"`
	Failures  int        `xml:"failures,attr"`
	Errors    int        `xml:"errors,attr"`
	Time      string     `xml:"time,attr"`
	TestCases []TestCase `xml:"testcase"`
}

type TestCase struct {
	XMLName   xml.Name `xml:"testcase"`
	Name      string   `xml:"name,attr"`
	ClassName string   `xml:"classname,attr"`
	Time      string   `xml:"time,attr"`
	Failure   *Failure `xml:"failure,omitempty"`
	Error     *Failure `xml:"error,omitempty"`
}

type Failure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// Formatter implements JUnit XML output formatting
type Formatter struct{}

// NewFormatter creates a new JUnit XML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "junit"
}

func (f *Formatter) Description() string {
	return "JUnit XML format for CI/CD integration, one test suite per drawing"
}

func (f *Formatter) FileExtension() string {
	return ".xml"
}

func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	testSuites := TestSuites{
		Name:       "drawcheck",
		TestSuites: []TestSuite{},
	}

	var totalMs float64
	for _, v := range report.Verdicts {
		suite := f.createSuiteForVerdict(v, options)
		testSuites.TestSuites = append(testSuites.TestSuites, suite)
		testSuites.Tests += suite.Tests
		testSuites.Failures += suite.Failures
		testSuites.Errors += suite.Errors
		totalMs += v.Performance.DurationMs
	}

	for _, jobErr := range report.Errors {
		testSuites.TestSuites = append(testSuites.TestSuites, TestSuite{
			Name:   jobErr.Job,
			Tests:  1,
			Errors: 1,
			Time:   "0.000",
			TestCases: []TestCase{{
				Name:      "validation",
				ClassName: jobErr.Job,
				Time:      "0.000",
				Error:     &Failure{Message: jobErr.Message, Type: jobErr.ErrorType},
			}},
		})
		testSuites.Tests++
		testSuites.Errors++
	}
	testSuites.Time = seconds(totalMs)

	xmlData, err := xml.MarshalIndent(testSuites, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JUnit XML: %w", err)
	}

	// Add XML declaration
	return xml.Header + string(xmlData) + "\n", nil
}

// createSuiteForVerdict turns each check of a run into a test case
func (f *Formatter) createSuiteForVerdict(v validation.Verdict, options formatters.FormatterOptions) TestSuite {
	name := suiteName(v)
	suite := TestSuite{
		Name: name,
		Time: seconds(v.Performance.DurationMs),
	}

	add := func(tc TestCase) {
		tc.ClassName = name
		tc.Time = "0.000"
		suite.TestCases = append(suite.TestCases, tc)
		suite.Tests++
		if tc.Failure != nil {
			suite.Failures++
		}
		if tc.Error != nil {
			suite.Errors++
		}
	}

	if v.ErrorType != "" {
		add(TestCase{Name: "validation", Error: &Failure{Message: v.Message, Type: v.ErrorType}})
		return suite
	}

	th := v.Thresholds

	critical := TestCase{Name: "critical_equipment"}
	if v.CriticalFailure {
		critical.Failure = &Failure{Message: v.Message, Type: "CRITICAL_EQUIPMENT_MISSING"}
		if options.Verbose {
			critical.Failure.Content = missingDetails(v, true)
		}
	}
	add(critical)

	missingCase := TestCase{Name: "missing_equipment"}
	if m := v.MissingEquipment; m != nil && !m.Passed {
		missingCase.Failure = &Failure{
			Message: fmt.Sprintf("%d of %d relevant entities missing (%.1f%%, limit %.1f%%)",
				len(m.Missing), m.RelevantCount, 100*m.MissingRate, 100*th.MaxMissingRate),
			Type:    "MISSING_EQUIPMENT",
			Content: missingDetails(v, false),
		}
	}
	add(missingCase)

	crossCase := TestCase{Name: "cross_validation"}
	if c := v.CrossValidation; c != nil && !c.Passed {
		crossCase.Failure = &Failure{
			Message: fmt.Sprintf("false positive rate %.1f%% exceeds %.1f%%", 100*c.FalsePositiveRate, 100*th.MaxFalsePositiveRate),
			Type:    "FALSE_POSITIVES",
		}
	}
	add(crossCase)

	tagCase := TestCase{Name: "tag_validation"}
	if v.TagValidationRate < th.MinTagValidationRate {
		tagCase.Failure = &Failure{
			Message: fmt.Sprintf("tag validation rate %.1f%% is below %.1f%%", 100*v.TagValidationRate, 100*th.MinTagValidationRate),
			Type:    "TAG_VALIDATION",
		}
	}
	add(tagCase)

	accuracyCase := TestCase{Name: "overall_accuracy"}
	if v.Status != validation.StatusPassed && !v.CriticalFailure {
		accuracyCase.Failure = &Failure{
			Message: v.Message,
			Type:    string(v.Status),
			Content: strings.Join(v.Recommendations, "\n"),
		}
	}
	add(accuracyCase)

	return suite
}

// missingDetails lists the missing entities, optionally only critical ones
func missingDetails(v validation.Verdict, criticalOnly bool) string {
	if v.MissingEquipment == nil {
		return ""
	}
	var lines []string
	for _, m := range v.MissingEquipment.Missing {
		if criticalOnly && !m.Critical {
			continue
		}
		label := m.Tag
		if label == "" {
			label = m.Reference.Name
		}
		lines = append(lines, fmt.Sprintf("%s (%s, layer %s): %s", label, m.Criticality, m.Reference.Layer, m.Reason))
	}
	return strings.Join(lines, "\n")
}

func suiteName(v validation.Verdict) string {
	if v.Drawing.FileName != "" {
		return v.Drawing.FileName
	}
	return v.JobID
}

func seconds(ms float64) string {
	return fmt.Sprintf("%.3f", ms/1000)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
