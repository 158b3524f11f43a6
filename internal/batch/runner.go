// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package batch validates independent drawings concurrently. Each job runs
// with its own thresholds under its own wall-clock deadline.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"drawcheck/internal/config"
	"drawcheck/internal/entity"
	"drawcheck/internal/faults"
	"drawcheck/internal/observability"
	"drawcheck/internal/validation"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single job when the runner has no timeout set
const DefaultTimeout = 30 * time.Second

// Job is one drawing to validate
type Job struct {
	// Name identifies the job in results, usually the job file path
	Name       string
	Input      entity.ValidationInput
	Thresholds config.Thresholds
}

// JobResult is the outcome of one job. Err is set when no verdict could be
// produced, for example when the deadline expired; Verdict is then zero.
type JobResult struct {
	Name     string
	JobID    string
	Verdict  validation.Verdict
	Err      error
	Duration time.Duration
}

// Runner executes jobs with bounded concurrency
type Runner struct {
	concurrency int
	timeout     time.Duration
	observer    *observability.StandardObserver

	// replaceable in tests
	validate func(entity.ValidationInput, config.Thresholds, *observability.StandardObserver) validation.Verdict
}

// NewRunner creates a runner. A non-positive concurrency uses the number of
// CPUs; a non-positive timeout uses DefaultTimeout.
func NewRunner(concurrency int, timeout time.Duration) *Runner {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		concurrency: concurrency,
		timeout:     timeout,
		validate: func(in entity.ValidationInput, th config.Thresholds, observer *observability.StandardObserver) validation.Verdict {
			v := validation.New(th)
			v.SetObserver(observer)
			return v.Validate(in)
		},
	}
}

// SetObserver sets the observability component
func (r *Runner) SetObserver(observer *observability.StandardObserver) {
	r.observer = observer
}

// Run validates every job and returns the results in job order. A failed or
// timed-out job never stops the others. Jobs not yet started when ctx is
// cancelled report the cancellation.
func (r *Runner) Run(ctx context.Context, jobs []Job) []JobResult {
	var finishTiming func(bool, map[string]interface{})
	if r.observer != nil {
		finishTiming = r.observer.StartTiming("batch", "run", fmt.Sprintf("%d jobs", len(jobs)))
	}

	results := make([]JobResult, len(jobs))

	var g errgroup.Group
	g.SetLimit(min(r.concurrency, max(len(jobs), 1)))

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = r.runJob(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	if finishTiming != nil {
		summary := Summarize(results)
		finishTiming(summary.Errors == 0, map[string]interface{}{
			"passed":  summary.Passed,
			"warning": summary.Warning,
			"failed":  summary.Failed,
			"errors":  summary.Errors,
		})
	}
	return results
}

func (r *Runner) runJob(ctx context.Context, job Job) (result JobResult) {
	result = JobResult{Name: job.Name, JobID: job.Input.JobID}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		result.Err = faults.Classify(fmt.Errorf("job %s not started: %w", job.Name, err))
		return result
	}

	jobCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// the validator is synchronous, so it runs apart from the deadline watch
	done := make(chan validation.Verdict, 1)
	go func() {
		done <- r.validate(job.Input, job.Thresholds, r.observer)
	}()

	select {
	case verdict := <-done:
		result.Verdict = verdict
	case <-jobCtx.Done():
		cause := jobCtx.Err()
		if errors.Is(cause, context.DeadlineExceeded) {
			cause = fmt.Errorf("%w after %s", faults.ErrDeadlineExceeded, r.timeout)
		}
		result.Err = faults.Classify(fmt.Errorf("job %s: %w", job.Name, cause))
		r.observer.Warn("batch", "job abandoned", "job", job.Name, "error", result.Err.Error())
	}
	return result
}

// Summary counts batch outcomes
type Summary struct {
	Total            int `json:"total" yaml:"total"`
	Passed           int `json:"passed" yaml:"passed"`
	Warning          int `json:"warning" yaml:"warning"`
	Failed           int `json:"failed" yaml:"failed"`
	CriticalFailures int `json:"critical_failures" yaml:"critical_failures"`
	Errors           int `json:"errors" yaml:"errors"`
}

// Summarize counts the outcomes of a batch
func Summarize(results []JobResult) Summary {
	s := Summary{Total: len(results)}
	for _, res := range results {
		if res.Err != nil {
			s.Errors++
			continue
		}
		switch res.Verdict.Status {
		case validation.StatusPassed:
			s.Passed++
		case validation.StatusWarning:
			s.Warning++
		case validation.StatusFailed:
			s.Failed++
		}
		if res.Verdict.CriticalFailure {
			s.CriticalFailures++
		}
	}
	return s
}
