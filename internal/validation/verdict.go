// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"drawcheck/internal/config"
	"drawcheck/internal/crossval"
	"drawcheck/internal/entity"
	"drawcheck/internal/missing"
	"drawcheck/internal/tags"
)

// Status is the overall outcome of a validation run
type Status string

const (
	StatusPassed  Status = "PASSED"
	StatusWarning Status = "WARNING"
	StatusFailed  Status = "FAILED"
)

// Rates are the aggregated quality figures of a run, all within [0,1]
type Rates struct {
	MissingRate         float64 `json:"missing_rate" yaml:"missing_rate"`
	CriticalMissingRate float64 `json:"critical_missing_rate" yaml:"critical_missing_rate"`
	FalsePositiveRate   float64 `json:"false_positive_rate" yaml:"false_positive_rate"`
	TagValidationRate   float64 `json:"tag_validation_rate" yaml:"tag_validation_rate"`
	OverallAccuracy     float64 `json:"overall_accuracy" yaml:"overall_accuracy"`
}

// pessimisticRates is reported whenever a run cannot produce real metrics
var pessimisticRates = Rates{
	MissingRate:         1,
	CriticalMissingRate: 1,
	FalsePositiveRate:   1,
	TagValidationRate:   0,
	OverallAccuracy:     0,
}

// TagSummary describes the batch normalization of the extracted tags
type TagSummary struct {
	Total        int                  `json:"total" yaml:"total"`
	Valid        int                  `json:"valid" yaml:"valid"`
	Corrected    int                  `json:"corrected" yaml:"corrected"`
	Unrecognized []tags.NormalizedTag `json:"unrecognized,omitempty" yaml:"unrecognized,omitempty"`
}

// Performance holds the best-effort resource counters of a run
type Performance struct {
	DurationMs        float64 `json:"duration_ms" yaml:"duration_ms"`
	EntityCount       int     `json:"entity_count" yaml:"entity_count"`
	EntitiesPerSecond float64 `json:"entities_per_second" yaml:"entities_per_second"`
	HeapDeltaBytes    int64   `json:"heap_delta_bytes" yaml:"heap_delta_bytes"`
	AllocatedBytes    int64   `json:"allocated_bytes" yaml:"allocated_bytes"`
}

// Verdict is the single result of a validation run. It is built once and
// never modified after it is returned.
type Verdict struct {
	JobID   string                 `json:"job_id,omitempty" yaml:"job_id,omitempty"`
	Drawing entity.DrawingMetadata `json:"drawing" yaml:"drawing"`

	Status          Status `json:"status" yaml:"status"`
	CriticalFailure bool   `json:"critical_failure" yaml:"critical_failure"`
	Message         string `json:"message" yaml:"message"`
	ErrorType       string `json:"error_type,omitempty" yaml:"error_type,omitempty"`

	Rates `json:"rates" yaml:"rates"`

	Tags             TagSummary         `json:"tags" yaml:"tags"`
	MissingEquipment *missing.Result    `json:"missing_equipment,omitempty" yaml:"missing_equipment,omitempty"`
	CrossValidation  *crossval.Result   `json:"cross_validation,omitempty" yaml:"cross_validation,omitempty"`
	DataIssues       []entity.DataIssue `json:"data_issues,omitempty" yaml:"data_issues,omitempty"`

	Warnings        []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Recommendations []string `json:"recommendations" yaml:"recommendations"`

	Performance Performance       `json:"performance" yaml:"performance"`
	Thresholds  config.Thresholds `json:"thresholds" yaml:"thresholds"`

	// Err is the configuration or pipeline error behind a FAILED verdict
	// that has no real metrics
	Err error `json:"-" yaml:"-"`
}

// Passed reports whether the run passed without warnings
func (v Verdict) Passed() bool {
	return v.Status == StatusPassed
}
