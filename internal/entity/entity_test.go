// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryCenterAndDistance(t *testing.T) {
	a := Geometry{X: 0, Y: 0, Width: 10, Height: 10}
	b := Geometry{X: 30, Y: 40, Width: 10, Height: 10}

	assert.Equal(t, Point{X: 5, Y: 5}, a.Center())
	assert.InDelta(t, 50.0, Distance(a, b), 1e-9)
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-12)
}

func TestGeometryCheck(t *testing.T) {
	rot := math.NaN()
	cases := []struct {
		name    string
		geom    Geometry
		wantErr bool
	}{
		{"valid box", Geometry{X: 1, Y: 2, Width: 3, Height: 4}, false},
		{"zero size point", Geometry{X: 1, Y: 2}, false},
		{"nan x", Geometry{X: math.NaN()}, true},
		{"infinite height", Geometry{Height: math.Inf(1)}, true},
		{"negative width", Geometry{Width: -1}, true},
		{"nan rotation", Geometry{Rotation: &rot}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.geom.Check()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeSkipsMalformedEntities(t *testing.T) {
	in := ValidationInput{
		JobID: "job-1",
		References: []ReferenceEntity{
			{ID: "r1", Tag: "P-101"},
			{ID: "", Tag: "P-102"},
			{ID: "r1", Tag: "P-103"},
			{ID: "r4", Geometry: Geometry{Width: -5}},
		},
		Symbols: []DetectedSymbol{
			{ID: "s1", Type: SymbolPump, Confidence: 0.9},
			{ID: "s2", Type: SymbolPump, Confidence: 1.4},
		},
		Tags: []ExtractedTag{
			{ID: "t1", Text: "P-101", Confidence: 0.9},
			{ID: "t2", Text: "P-102", Confidence: 0.9, CharConfidences: []float64{0.9, -0.1}},
		},
	}

	out, issues := Sanitize(in)

	require.Len(t, out.References, 1)
	assert.Equal(t, "r1", out.References[0].ID)
	assert.Equal(t, "P-101", out.References[0].Tag)
	require.Len(t, out.Symbols, 1)
	require.Len(t, out.Tags, 1)
	assert.Equal(t, "job-1", out.JobID)

	require.Len(t, issues, 5)
	assert.Equal(t, "missing id", issues[0].Reason)
	assert.Equal(t, "duplicate reference id", issues[1].Reason)
	assert.Contains(t, issues[2].Reason, "malformed geometry")
	assert.Equal(t, "symbol", issues[3].Kind)
	assert.Equal(t, "character confidence outside [0,1]", issues[4].Reason)
}

func TestMeanCharConfidence(t *testing.T) {
	_, ok := ExtractedTag{}.MeanCharConfidence()
	assert.False(t, ok)

	mean, ok := ExtractedTag{CharConfidences: []float64{0.5, 0.7}}.MeanCharConfidence()
	assert.True(t, ok)
	assert.InDelta(t, 0.6, mean, 1e-9)
}

func TestNormalizeScale(t *testing.T) {
	assert.Equal(t, 1.0, NormalizeScale(0))
	assert.Equal(t, 1.0, NormalizeScale(-2))
	assert.Equal(t, 4.0, NormalizeScale(4))
}
