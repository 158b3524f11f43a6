// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package faults

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassify_Sentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"threshold", fmt.Errorf("proximity: %w", ErrInvalidThreshold), ErrorTypeConfiguration},
		{"entity", fmt.Errorf("tag t1: %w", ErrMalformedEntity), ErrorTypeData},
		{"deadline", ErrDeadlineExceeded, ErrorTypeInfrastructure},
		{"context deadline", context.DeadlineExceeded, ErrorTypeInfrastructure},
		{"unsupported", fmt.Errorf("job.txt: %w", ErrUnsupportedInput), ErrorTypeInfrastructure},
		{"panic", ErrComponentPanicked, ErrorTypePipeline},
		{"other", errors.New("boom"), ErrorTypeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classified := Classify(tc.err)
			require.NotNil(t, classified)
			assert.Equal(t, tc.want, classified.Type)
			assert.ErrorIs(t, classified, tc.err)
		})
	}
}

func TestClassify_AlreadyClassified(t *testing.T) {
	original := NewConfigurationError("proximity threshold must be positive")
	wrapped := fmt.Errorf("loading profile: %w", original)

	assert.Same(t, original, Classify(wrapped))
}

func TestNewConfigurationError(t *testing.T) {
	err := NewConfigurationError("negative proximity")
	assert.Equal(t, "negative proximity", err.Error())
	assert.ErrorIs(t, err, ErrInvalidThreshold)
	assert.True(t, err.Fatal())
}

func TestFromPanic(t *testing.T) {
	err := FromPanic("crossval", "index out of range")
	assert.Equal(t, ErrorTypePipeline, err.Type)
	assert.ErrorIs(t, err, ErrComponentPanicked)
	assert.Contains(t, err.Error(), "crossval failed")

	cause := errors.New("nil map")
	err = FromPanic("missing", cause)
	assert.ErrorIs(t, err, cause)
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "data", ErrorTypeData.String())
	assert.Equal(t, "unknown", ErrorType(42).String())
}
