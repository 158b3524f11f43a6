// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"testing"

	"drawcheck/internal/config"
	"drawcheck/internal/crossval"
	"drawcheck/internal/entity"
	"drawcheck/internal/faults"
	"drawcheck/internal/missing"
	"drawcheck/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(x, y float64) entity.Geometry {
	return entity.Geometry{X: x, Y: y}
}

func pumpDrawing() entity.ValidationInput {
	return entity.ValidationInput{
		JobID:   "job-b",
		Drawing: entity.DrawingMetadata{FileName: "unit-100.dwg", Units: "mm"},
		References: []entity.ReferenceEntity{
			{ID: "r1", Name: "PUMP", Kind: entity.KindBlock, Layer: "EQUIPMENT", Geometry: at(800, 2000), Tag: "P-101"},
		},
		Symbols: []entity.DetectedSymbol{
			{ID: "s1", Type: entity.SymbolPump, Confidence: 0.95, Geometry: at(800, 2000)},
		},
		Tags: []entity.ExtractedTag{
			{ID: "t1", Text: "P-1O1", Confidence: 0.9, Geometry: at(805, 2005)},
		},
	}
}

func TestValidateCAD_CleanDrawingPasses(t *testing.T) {
	verdict := ValidateCAD(pumpDrawing(), config.DefaultThresholds())

	assert.Equal(t, StatusPassed, verdict.Status)
	assert.False(t, verdict.CriticalFailure)
	assert.Zero(t, verdict.MissingRate)
	assert.Zero(t, verdict.FalsePositiveRate)
	assert.Equal(t, 1.0, verdict.TagValidationRate)
	assert.InDelta(t, 1.0, verdict.OverallAccuracy, 1e-9)
	assert.Empty(t, verdict.Warnings)
	assert.Equal(t, []string{"No action required"}, verdict.Recommendations)
	assert.Equal(t, 1, verdict.Tags.Corrected)

	require.NotNil(t, verdict.MissingEquipment)
	require.Len(t, verdict.MissingEquipment.Matches, 1)
	assert.Equal(t, missing.MethodExactTag, verdict.MissingEquipment.Matches[0].Method)
	require.NotNil(t, verdict.CrossValidation)
	require.Len(t, verdict.CrossValidation.Pairs, 1)
	assert.Equal(t, crossval.StatusValid, verdict.CrossValidation.Pairs[0].Status)

	assert.Equal(t, 3, verdict.Performance.EntityCount)
	assert.GreaterOrEqual(t, verdict.Performance.DurationMs, 0.0)
}

func TestValidateCAD_MissingSafetyValveFails(t *testing.T) {
	in := entity.ValidationInput{
		References: []entity.ReferenceEntity{
			{ID: "r1", Name: "PSV", Kind: entity.KindBlock, Layer: "SAFETY", Geometry: at(1250, 3400), Tag: "PSV-101A"},
		},
	}

	verdict := ValidateCAD(in, config.DefaultThresholds())

	assert.Equal(t, StatusFailed, verdict.Status)
	assert.True(t, verdict.CriticalFailure)
	assert.Equal(t, 1.0, verdict.MissingRate)
	assert.Equal(t, 1.0, verdict.CriticalMissingRate)
	assert.Equal(t, 1.0, verdict.TagValidationRate, "no tags counts as fully valid")
	assert.Contains(t, verdict.Message, "PSV-101A")
	assert.Contains(t, verdict.Recommendations[0], "PSV-101A")
}

func TestValidateCAD_CriticalFailureOverridesGoodMetrics(t *testing.T) {
	in := pumpDrawing()
	// 200 well-extracted entities and one missing safety instrument
	for i := 0; i < 200; i++ {
		x := float64(i * 1000)
		valveTag := fmt.Sprintf("XV-%d", 100+i)
		in.References = append(in.References, entity.ReferenceEntity{
			ID: fmt.Sprintf("ref-%03d", i), Name: "VALVE", Layer: "VALVES", Geometry: at(x, 0), Tag: valveTag,
		})
		in.Tags = append(in.Tags, entity.ExtractedTag{ID: fmt.Sprintf("tag-%03d", i), Text: valveTag, Confidence: 0.95, Geometry: at(x+2, 0)})
		in.Symbols = append(in.Symbols, entity.DetectedSymbol{ID: fmt.Sprintf("sym-%03d", i), Type: entity.SymbolValve, Confidence: 0.95, Geometry: at(x, 0)})
	}
	in.References = append(in.References, entity.ReferenceEntity{ID: "zz", Name: "SWITCH", Layer: "SAFETY", Geometry: at(-5000, -5000), Tag: "LSL-2001"})

	verdict := ValidateCAD(in, config.DefaultThresholds())

	assert.Greater(t, verdict.OverallAccuracy, 0.99)
	assert.True(t, verdict.CriticalFailure)
	assert.Equal(t, StatusFailed, verdict.Status)
}

func TestValidateCAD_InvalidThresholdsRejected(t *testing.T) {
	th := config.DefaultThresholds()
	th.ProximityThreshold = -5

	verdict := ValidateCAD(pumpDrawing(), th)

	assert.Equal(t, StatusFailed, verdict.Status)
	assert.False(t, verdict.CriticalFailure)
	assert.Equal(t, "configuration", verdict.ErrorType)
	assert.ErrorIs(t, verdict.Err, faults.ErrInvalidThreshold)
	assert.Nil(t, verdict.MissingEquipment, "no matching runs with invalid thresholds")
	assert.Equal(t, pessimisticRates, verdict.Rates)
	assert.Equal(t, 3, verdict.Performance.EntityCount, "counters are populated on the failure path")
}

func TestValidate_PanicBecomesFailedVerdict(t *testing.T) {
	v := New(config.DefaultThresholds())
	v.detect = func([]entity.ReferenceEntity, []missing.Candidate) missing.Result {
		panic(errors.New("index out of range"))
	}

	var verdict Verdict
	require.NotPanics(t, func() { verdict = v.Validate(pumpDrawing()) })

	assert.Equal(t, StatusFailed, verdict.Status)
	assert.True(t, verdict.CriticalFailure)
	assert.Equal(t, 1.0, verdict.MissingRate)
	assert.Equal(t, 1.0, verdict.CriticalMissingRate)
	assert.Equal(t, 1.0, verdict.FalsePositiveRate)
	assert.Zero(t, verdict.OverallAccuracy)
	assert.Equal(t, "pipeline", verdict.ErrorType)
	assert.ErrorIs(t, verdict.Err, faults.ErrComponentPanicked)
	assert.Contains(t, verdict.Message, "index out of range")
	assert.Equal(t, 3, verdict.Performance.EntityCount)
}

func TestValidate_PanicIsLogged(t *testing.T) {
	var buf bytes.Buffer
	v := New(config.DefaultThresholds())
	v.SetObserver(observability.NewStandardObserver(observability.ObservabilityMetrics, &buf, observability.Options{}))
	v.crossValidate = func([]entity.DetectedSymbol, []entity.ExtractedTag) crossval.Result {
		panic("nil map")
	}

	verdict := v.Validate(pumpDrawing())

	assert.Equal(t, StatusFailed, verdict.Status)
	assert.Contains(t, buf.String(), "component panicked")
}

func TestValidateCAD_DataIssuesWarn(t *testing.T) {
	in := pumpDrawing()
	in.Symbols = append(in.Symbols, entity.DetectedSymbol{ID: "bad", Type: entity.SymbolPump, Confidence: 0.9, Geometry: entity.Geometry{X: math.NaN()}})

	verdict := ValidateCAD(in, config.DefaultThresholds())

	assert.Equal(t, StatusWarning, verdict.Status)
	require.Len(t, verdict.DataIssues, 1)
	assert.Equal(t, "bad", verdict.DataIssues[0].EntityID)
	assert.Contains(t, verdict.Warnings, "1 malformed entities were skipped")
	assert.InDelta(t, 1.0, verdict.OverallAccuracy, 1e-9, "skipped entities do not enter the rates")
}

func TestValidateCAD_MissingLayerRecommendation(t *testing.T) {
	in := pumpDrawing()
	in.References = append(in.References,
		entity.ReferenceEntity{ID: "r2", Name: "PUMP", Layer: "UTILITIES", Geometry: at(0, 0), Tag: "P-200"},
		entity.ReferenceEntity{ID: "r3", Name: "PUMP", Layer: "UTILITIES", Geometry: at(0, 500), Tag: "P-201"},
	)

	first := ValidateCAD(in, config.DefaultThresholds())
	second := ValidateCAD(in, config.DefaultThresholds())

	assert.Equal(t, StatusFailed, first.Status, "two of three pumps missing drags accuracy below 90%")
	assert.False(t, first.CriticalFailure)
	assert.Contains(t, first.Recommendations, "Investigate layer UTILITIES for missing tags (2 missing)")
	assert.Equal(t, first.Recommendations, second.Recommendations)
}

func TestDecideStatus(t *testing.T) {
	th := config.DefaultThresholds()
	tests := []struct {
		name    string
		verdict Verdict
		want    Status
	}{
		{"clean", Verdict{Rates: Rates{OverallAccuracy: 0.99}}, StatusPassed},
		{"accuracy band", Verdict{Rates: Rates{OverallAccuracy: 0.945}}, StatusWarning},
		{"warning raised", Verdict{Rates: Rates{OverallAccuracy: 0.99}, Warnings: []string{"x"}}, StatusWarning},
		{"low accuracy", Verdict{Rates: Rates{OverallAccuracy: 0.89}}, StatusFailed},
		{"critical failure", Verdict{Rates: Rates{OverallAccuracy: 1}, CriticalFailure: true}, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decideStatus(tt.verdict, th))
		})
	}
}

func TestBoundaryWrappers(t *testing.T) {
	in := pumpDrawing()
	th := config.DefaultThresholds()

	missingResult, err := DetectMissingEquipment(in.References, in.Tags, th)
	require.NoError(t, err)
	assert.Zero(t, missingResult.MissingRate)

	crossResult, err := ValidateFalsePositives(in.Symbols, in.Tags, th)
	require.NoError(t, err)
	assert.Equal(t, 1, crossResult.ValidCount)

	th.PairingRadius = 0
	_, err = ValidateFalsePositives(in.Symbols, in.Tags, th)
	assert.ErrorIs(t, err, faults.ErrInvalidThreshold)
	_, err = DetectMissingEquipment(in.References, in.Tags, th)
	assert.ErrorIs(t, err, faults.ErrInvalidThreshold)
}
