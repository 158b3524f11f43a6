// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package faults

import (
	"context"
	"errors"
	"fmt"
)

// ErrorType represents the failure classes a validation run distinguishes
type ErrorType int

const (
	ErrorTypeUnknown        ErrorType = iota
	ErrorTypeData                     // Malformed entities, skipped with a diagnostic
	ErrorTypeConfiguration            // Invalid thresholds, rejected before matching
	ErrorTypePipeline                 // Unexpected failure inside a component
	ErrorTypeInfrastructure           // Deadlines and I/O around the core
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeData:
		return "data"
	case ErrorTypeConfiguration:
		return "configuration"
	case ErrorTypePipeline:
		return "pipeline"
	case ErrorTypeInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// Sentinel errors shared across packages
var (
	ErrInvalidThreshold  = errors.New("invalid threshold")
	ErrMalformedEntity   = errors.New("malformed entity")
	ErrDeadlineExceeded  = errors.New("validation deadline exceeded")
	ErrUnsupportedInput  = errors.New("unsupported input")
	ErrComponentPanicked = errors.New("component panicked")
)

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original error
	Type     ErrorType
	Message  string
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original == nil {
		return e.Type.String() + " error"
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// Fatal reports whether the error must stop a validation run before a verdict
// can be computed from real metrics
func (e *ClassifiedError) Fatal() bool {
	return e.Type != ErrorTypeData
}

// Classify categorizes an error for appropriate handling
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, ErrInvalidThreshold):
		return &ClassifiedError{Original: err, Type: ErrorTypeConfiguration, Message: fmt.Sprintf("Configuration error: %v", err)}
	case errors.Is(err, ErrMalformedEntity):
		return &ClassifiedError{Original: err, Type: ErrorTypeData, Message: fmt.Sprintf("Data error: %v", err)}
	case errors.Is(err, ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &ClassifiedError{Original: err, Type: ErrorTypeInfrastructure, Message: fmt.Sprintf("Infrastructure error: %v", err)}
	case errors.Is(err, ErrUnsupportedInput):
		return &ClassifiedError{Original: err, Type: ErrorTypeInfrastructure, Message: fmt.Sprintf("Input error: %v", err)}
	case errors.Is(err, ErrComponentPanicked):
		return &ClassifiedError{Original: err, Type: ErrorTypePipeline, Message: fmt.Sprintf("Pipeline error: %v", err)}
	}

	return &ClassifiedError{
		Original: err,
		Type:     ErrorTypeUnknown,
		Message:  fmt.Sprintf("Unknown error: %v", err),
	}
}

// NewConfigurationError creates a configuration error wrapping ErrInvalidThreshold
func NewConfigurationError(message string) *ClassifiedError {
	return &ClassifiedError{
		Original: fmt.Errorf("%w: %s", ErrInvalidThreshold, message),
		Type:     ErrorTypeConfiguration,
		Message:  message,
	}
}

// NewPipelineError creates a pipeline error for a failed component
func NewPipelineError(component string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original: cause,
		Type:     ErrorTypePipeline,
		Message:  fmt.Sprintf("%s failed: %v", component, cause),
	}
}

// FromPanic converts a recovered panic value into a pipeline error
func FromPanic(component string, recovered any) *ClassifiedError {
	if err, ok := recovered.(error); ok {
		return NewPipelineError(component, fmt.Errorf("%w: %w", ErrComponentPanicked, err))
	}
	return NewPipelineError(component, fmt.Errorf("%w: %v", ErrComponentPanicked, recovered))
}
