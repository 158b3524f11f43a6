// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package validation runs the full validation pipeline over one drawing and
// turns the component results into a single verdict.
package validation

import (
	"fmt"

	"drawcheck/internal/config"
	"drawcheck/internal/crossval"
	"drawcheck/internal/entity"
	"drawcheck/internal/faults"
	"drawcheck/internal/missing"
	"drawcheck/internal/observability"
	"drawcheck/internal/tags"
)

// Accuracy weights of the component rates
const (
	missingWeight       = 0.5
	falsePositiveWeight = 0.3
	tagValidationWeight = 0.2
)

// Validator composes tag normalization, missing-equipment detection and
// cross-validation
type Validator struct {
	thresholds config.Thresholds
	observer   *observability.StandardObserver

	// component stages, replaceable in tests
	detect        func(refs []entity.ReferenceEntity, candidates []missing.Candidate) missing.Result
	crossValidate func(symbols []entity.DetectedSymbol, extracted []entity.ExtractedTag) crossval.Result
}

// New creates a validator bound to one thresholds value. Invalid thresholds
// are reported by Validate.
func New(th config.Thresholds) *Validator {
	v := &Validator{thresholds: th}
	v.detect = func(refs []entity.ReferenceEntity, candidates []missing.Candidate) missing.Result {
		d := missing.NewDetector(v.thresholds)
		d.SetObserver(v.observer)
		return d.Detect(refs, candidates)
	}
	v.crossValidate = func(symbols []entity.DetectedSymbol, extracted []entity.ExtractedTag) crossval.Result {
		e := crossval.NewEngine(v.thresholds)
		e.SetObserver(v.observer)
		return e.Validate(symbols, extracted)
	}
	return v
}

// SetObserver sets the observability component
func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

// ValidateCAD validates one drawing with the given thresholds
func ValidateCAD(in entity.ValidationInput, th config.Thresholds) Verdict {
	return New(th).Validate(in)
}

// Validate runs the pipeline. It never panics and never returns an error:
// configuration and pipeline failures become a FAILED verdict with
// pessimistic metrics.
func (v *Validator) Validate(in entity.ValidationInput) (verdict Verdict) {
	probe := startProbe()
	var finishTiming func(bool, map[string]interface{})
	if v.observer != nil {
		finishTiming = v.observer.StartTiming("validation", "validate_cad", in.JobID)
	}
	finishStep := observability.Step(v.observer, "validation", "validate_cad", in.JobID)

	defer func() {
		if r := recover(); r != nil {
			verdict = v.failedVerdict(in, faults.FromPanic("validation", r))
			v.observer.Error("validation", "component panicked", "job", in.JobID, "panic", fmt.Sprint(r))
		}
		verdict.Performance = probe.finish(in.EntityCount())
		if finishTiming != nil {
			finishTiming(verdict.Status != StatusFailed, map[string]interface{}{
				"status":           string(verdict.Status),
				"overall_accuracy": verdict.OverallAccuracy,
				"critical_failure": verdict.CriticalFailure,
			})
		}
		finishStep(verdict.Status != StatusFailed, string(verdict.Status))
	}()

	if err := v.thresholds.Validate(); err != nil {
		return v.failedVerdict(in, err)
	}

	return v.run(in)
}

func (v *Validator) run(in entity.ValidationInput) Verdict {
	th := v.thresholds
	clean, issues := entity.Sanitize(in)
	for _, issue := range issues {
		v.observer.Warn("validation", "skipped malformed entity", "job", in.JobID, "issue", issue.String())
	}

	verdict := Verdict{
		JobID:      in.JobID,
		Drawing:    in.Drawing,
		DataIssues: issues,
		Thresholds: th,
	}

	// 1. batch-normalize the extracted tags
	texts := make([]string, len(clean.Tags))
	for i, t := range clean.Tags {
		texts[i] = t.Text
	}
	normalized := tags.NormalizeAndClassify(texts)
	verdict.Tags = summarizeTags(normalized)
	verdict.TagValidationRate = 1
	if verdict.Tags.Total > 0 {
		verdict.TagValidationRate = float64(verdict.Tags.Valid) / float64(verdict.Tags.Total)
	}
	observability.Metric(v.observer, "validation", "tag_validation_rate", verdict.TagValidationRate)

	// 2. references against tags as extraction candidates
	candidates := make([]missing.Candidate, len(clean.Tags))
	for i, t := range clean.Tags {
		candidates[i] = missing.Candidate{
			ID:         t.ID,
			Tag:        normalized[i].Normalized,
			Geometry:   t.Geometry,
			Confidence: t.Confidence,
			Scale:      t.Scale,
			Source:     t.Source,
		}
	}
	missingResult := v.detect(clean.References, candidates)
	verdict.MissingEquipment = &missingResult
	verdict.MissingRate = missingResult.MissingRate
	verdict.CriticalMissingRate = missingResult.CriticalMissingRate
	verdict.CriticalFailure = missingResult.CriticalFailure

	// 3. symbols against tags
	crossResult := v.crossValidate(clean.Symbols, clean.Tags)
	verdict.CrossValidation = &crossResult
	verdict.FalsePositiveRate = crossResult.FalsePositiveRate

	// 4. aggregate
	verdict.OverallAccuracy = missingWeight*(1-verdict.MissingRate) +
		falsePositiveWeight*(1-verdict.FalsePositiveRate) +
		tagValidationWeight*verdict.TagValidationRate

	verdict.Warnings = collectWarnings(verdict, th)
	verdict.Status = decideStatus(verdict, th)
	verdict.Message = statusMessage(verdict)
	verdict.Recommendations = Recommend(verdict, th)
	return verdict
}

// decideStatus applies the fail-closed policy: a missing critical entity
// fails the run whatever the other figures are
func decideStatus(v Verdict, th config.Thresholds) Status {
	switch {
	case v.CriticalFailure, v.OverallAccuracy < th.FailAccuracy:
		return StatusFailed
	case len(v.Warnings) > 0, v.OverallAccuracy < th.WarnAccuracy:
		return StatusWarning
	default:
		return StatusPassed
	}
}

func collectWarnings(v Verdict, th config.Thresholds) []string {
	var warnings []string
	if m := v.MissingEquipment; m != nil && !m.Passed {
		warnings = append(warnings, fmt.Sprintf("missing-equipment check failed: %d of %d relevant entities missing (%.1f%%, limit %.1f%%)",
			len(m.Missing), m.RelevantCount, 100*m.MissingRate, 100*th.MaxMissingRate))
	}
	if c := v.CrossValidation; c != nil && !c.Passed {
		warnings = append(warnings, fmt.Sprintf("cross-validation failed: false positive rate %.1f%% exceeds %.1f%%",
			100*c.FalsePositiveRate, 100*th.MaxFalsePositiveRate))
	}
	if n := len(v.DataIssues); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d malformed entities were skipped", n))
	}
	if v.TagValidationRate < th.MinTagValidationRate {
		warnings = append(warnings, fmt.Sprintf("tag validation rate %.1f%% is below %.1f%%",
			100*v.TagValidationRate, 100*th.MinTagValidationRate))
	}
	return warnings
}

func statusMessage(v Verdict) string {
	switch {
	case v.CriticalFailure:
		var missingTags []string
		for _, m := range v.MissingEquipment.MissingCritical() {
			missingTags = append(missingTags, displayTag(m))
		}
		return fmt.Sprintf("Critical equipment missing from extraction: %s", joinLimited(missingTags, 5))
	case v.Status == StatusFailed:
		return fmt.Sprintf("Validation failed: overall accuracy %.1f%% is below %.1f%%", 100*v.OverallAccuracy, 100*v.Thresholds.FailAccuracy)
	case v.Status == StatusWarning:
		return fmt.Sprintf("Validation passed with warnings: overall accuracy %.1f%%", 100*v.OverallAccuracy)
	default:
		return fmt.Sprintf("Validation passed: overall accuracy %.1f%%", 100*v.OverallAccuracy)
	}
}

// failedVerdict builds the terminal verdict for a run that produced no real
// metrics. A pipeline failure cannot rule out missing critical equipment, so
// it is reported as a critical failure.
func (v *Validator) failedVerdict(in entity.ValidationInput, err error) Verdict {
	classified := faults.Classify(err)
	aborted := classified.Type == faults.ErrorTypePipeline
	message := "Validation rejected: " + classified.Error()
	if aborted {
		message = "Validation aborted: " + classified.Error()
	}
	verdict := Verdict{
		JobID:           in.JobID,
		Drawing:         in.Drawing,
		Status:          StatusFailed,
		CriticalFailure: aborted,
		Message:         message,
		ErrorType:       classified.Type.String(),
		Rates:           pessimisticRates,
		Thresholds:      v.thresholds,
		Err:             classified,
	}
	verdict.Recommendations = Recommend(verdict, v.thresholds)
	return verdict
}

func summarizeTags(normalized []tags.NormalizedTag) TagSummary {
	summary := TagSummary{Total: len(normalized)}
	for _, n := range normalized {
		if n.Valid {
			summary.Valid++
		} else {
			summary.Unrecognized = append(summary.Unrecognized, n)
		}
		if len(n.Corrections) > 0 {
			summary.Corrected++
		}
	}
	return summary
}
