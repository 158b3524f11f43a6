// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"drawcheck/internal/batch"
	"drawcheck/internal/formatters"
	"drawcheck/internal/ingest"

	"github.com/spf13/cobra"
)

// batchOptions holds the flags of the batch command
type batchOptions struct {
	format  string
	output  string
	jobs    int
	timeout time.Duration
}

func newBatchCmd() *cobra.Command {
	var opts batchOptions
	cmd := &cobra.Command{
		Use:   "batch <job files...>",
		Short: "Validate several drawings concurrently",
		Long: `Validate independent job files in parallel. Each job runs under its own
deadline; a job that runs past it, or whose file cannot be read, is reported as
an error without stopping the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: "+strings.Join(formatters.List(), ", "))
	cmd.Flags().StringVar(&opts.output, "output", "", "write the report to this file instead of stdout")
	cmd.Flags().IntVar(&opts.jobs, "jobs", 0, "number of drawings validated at once (default from config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "deadline of a single job, e.g. 30s (default from config)")
	return cmd
}

func runBatch(cmd *cobra.Command, paths []string, opts batchOptions) error {
	s, err := loadSettings(cmd, opts.format)
	if err != nil {
		return err
	}
	if _, ok := formatters.Get(s.format); !ok {
		return fmt.Errorf("unsupported format '%s'. Available formats: %s", s.format, strings.Join(formatters.List(), ", "))
	}
	observer := s.newObserver(cmd.ErrOrStderr())

	concurrency := s.cfg.Defaults.Jobs
	if cmd.Flags().Changed("jobs") {
		concurrency = opts.jobs
	}
	timeout := opts.timeout
	if !cmd.Flags().Changed("timeout") && s.cfg.Defaults.Timeout != "" {
		timeout, err = time.ParseDuration(s.cfg.Defaults.Timeout)
		if err != nil {
			return fmt.Errorf("defaults.timeout: %w", err)
		}
	}

	var report formatters.Report
	jobs := make([]batch.Job, 0, len(paths))
	for _, path := range paths {
		in, err := ingest.LoadJob(path)
		if err != nil {
			report.Errors = append(report.Errors, formatters.NewJobError(path, err))
			continue
		}
		jobs = append(jobs, batch.Job{Name: path, Input: in, Thresholds: s.thresholds})
	}

	runner := batch.NewRunner(concurrency, timeout)
	runner.SetObserver(observer)
	results := runner.Run(cmd.Context(), jobs)

	for _, res := range results {
		if res.Err != nil {
			report.Errors = append(report.Errors, formatters.NewJobError(res.Name, res.Err))
			continue
		}
		report.Verdicts = append(report.Verdicts, res.Verdict)
	}

	out, err := formatters.Export(s.format, report, formatters.FormatterOptions{Verbose: s.verbose, NoColor: s.noColor})
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.output, out); err != nil {
		return err
	}

	if code := batchExitCode(report); code != exitPassed {
		return &exitCodeError{code: code}
	}
	return nil
}

// batchExitCode reports the worst outcome. A failed drawing outranks a job
// error, which outranks a warning.
func batchExitCode(report formatters.Report) int {
	worst := 0
	for _, v := range report.Verdicts {
		worst = max(worst, severity(exitCodeFor(v)))
	}
	if len(report.Errors) > 0 {
		worst = max(worst, severity(exitError))
	}
	return severityOrder[worst]
}

var severityOrder = []int{exitPassed, exitWarning, exitError, exitFailed, exitCriticalFailure}

func severity(code int) int {
	for i, c := range severityOrder {
		if c == code {
			return i
		}
	}
	return 0
}
