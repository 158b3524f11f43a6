// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// StandardObserver implements observability for all components
type StandardObserver struct {
	level         ObservabilityLevel
	logger        *slog.Logger
	DebugObserver *DebugObserver // Reference to debug observer when in debug mode
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// Options controls how observer records are rendered
type Options struct {
	// Terminal selects the colored tint handler instead of JSON lines
	Terminal bool
	NoColor  bool
}

// NewStandardObserver creates observability component
func NewStandardObserver(level ObservabilityLevel, writer io.Writer, opts Options) *StandardObserver {
	return &StandardObserver{
		level:  level,
		logger: slog.New(newHandler(level, writer, opts)),
	}
}

// Discard returns an observer that records nothing
func Discard() *StandardObserver {
	return NewStandardObserver(ObservabilityOff, io.Discard, Options{})
}

func newHandler(level ObservabilityLevel, writer io.Writer, opts Options) slog.Handler {
	slogLevel := slog.LevelInfo
	if level == ObservabilityDebug {
		slogLevel = slog.LevelDebug
	}
	if opts.Terminal {
		return tint.NewHandler(writer, &tint.Options{
			Level:      slogLevel,
			NoColor:    opts.NoColor,
			TimeFormat: time.Kitchen,
		})
	}
	return slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slogLevel})
}

// Logger exposes the underlying structured logger
func (o *StandardObserver) Logger() *slog.Logger {
	return o.logger
}

// Enabled reports whether the observer records anything
func (o *StandardObserver) Enabled() bool {
	return o != nil && o.level != ObservabilityOff
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, subject string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			Subject:    subject,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation logs operation data
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if !o.Enabled() {
		return
	}

	attrs := []slog.Attr{
		slog.String("component", data.Component),
		slog.String("operation", data.Operation),
		slog.Bool("success", data.Success),
		slog.Int64("duration_ms", data.DurationMs),
	}
	if data.Subject != "" {
		attrs = append(attrs, slog.String("subject", data.Subject))
	}
	if data.Error != "" {
		attrs = append(attrs, slog.String("error", data.Error))
	}
	if len(data.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", data.Metadata))
	}

	level := slog.LevelDebug
	if !data.Success {
		level = slog.LevelWarn
	}
	o.logger.LogAttrs(context.Background(), level, data.Component+" "+data.Operation, attrs...)
}

// Warn records a non-fatal condition
func (o *StandardObserver) Warn(component, message string, args ...any) {
	if !o.Enabled() {
		return
	}
	o.logger.Warn(message, append([]any{"component", component}, args...)...)
}

// Error records a failure that was handled
func (o *StandardObserver) Error(component, message string, args ...any) {
	if !o.Enabled() {
		return
	}
	o.logger.Error(message, append([]any{"component", component}, args...)...)
}

// StandardObservabilityData for all components
type StandardObservabilityData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	Subject    string                 `json:"subject,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
