// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// DebugObserver provides detailed step-by-step debugging
type DebugObserver struct {
	*StandardObserver
	writer io.Writer
	mu     sync.Mutex
	indent int
}

// NewDebugObserver creates a debug observer with step-by-step logging.
// The embedded StandardObserver writes structured records to the same writer.
func NewDebugObserver(writer io.Writer, opts Options) *DebugObserver {
	d := &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, writer, opts),
		writer:           writer,
	}
	d.StandardObserver.DebugObserver = d
	return d
}

// StartStep begins a processing step with indentation
func (d *DebugObserver) StartStep(component, step, subject string) func(success bool, details string) {
	start := time.Now()

	d.mu.Lock()
	fmt.Fprintf(d.writer, "%s-> %s: %s (%s)\n", strings.Repeat("  ", d.indent), component, step, subject)
	d.indent++
	d.mu.Unlock()

	return func(success bool, details string) {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.indent--
		outcome := "completed"
		if !success {
			outcome = "failed"
		}
		fmt.Fprintf(d.writer, "%s<- %s: %s %s (%dms) %s\n",
			strings.Repeat("  ", d.indent), component, step, outcome, time.Since(start).Milliseconds(), details)
	}
}

// LogDetail logs a detail within the current step
func (d *DebugObserver) LogDetail(component, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "%s   . %s: %s\n", strings.Repeat("  ", d.indent), component, detail)
}

// LogMetric logs a metric value
func (d *DebugObserver) LogMetric(component, metric string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "%s   # %s: %s = %v\n", strings.Repeat("  ", d.indent), component, metric, value)
}

// Step is a nil-safe helper that starts a debug step when the observer is in
// debug mode and returns a no-op completion otherwise
func Step(o *StandardObserver, component, step, subject string) func(success bool, details string) {
	if o == nil || o.DebugObserver == nil {
		return func(bool, string) {}
	}
	return o.DebugObserver.StartStep(component, step, subject)
}

// Metric is the nil-safe counterpart of LogMetric
func Metric(o *StandardObserver, component, metric string, value interface{}) {
	if o == nil || o.DebugObserver == nil {
		return
	}
	o.DebugObserver.LogMetric(component, metric, value)
}
