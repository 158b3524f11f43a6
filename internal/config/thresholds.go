// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"math"

	"drawcheck/internal/faults"
)

// Thresholds carries every tunable limit of a validation run. It is passed by
// value into each component so concurrent runs never share threshold state.
type Thresholds struct {
	// Missing-equipment detection
	ProximityThreshold     float64 `yaml:"proximity_threshold" json:"proximity_threshold"`
	FallbackEditDistance   int     `yaml:"fallback_edit_distance" json:"fallback_edit_distance"`
	SimilarTagEditDistance int     `yaml:"similar_tag_edit_distance" json:"similar_tag_edit_distance"`
	MaxMissingRate         float64 `yaml:"max_missing_rate" json:"max_missing_rate"`
	MaxCriticalMissingRate float64 `yaml:"max_critical_missing_rate" json:"max_critical_missing_rate"`

	// Cross-validation
	SymbolConfidence     float64 `yaml:"symbol_confidence" json:"symbol_confidence"`
	TagConfidence        float64 `yaml:"tag_confidence" json:"tag_confidence"`
	CharConfidence       float64 `yaml:"char_confidence" json:"char_confidence"`
	PairingRadius        float64 `yaml:"pairing_radius" json:"pairing_radius"`
	ValidCombined        float64 `yaml:"valid_combined" json:"valid_combined"`
	SuspiciousCombined   float64 `yaml:"suspicious_combined" json:"suspicious_combined"`
	MaxFalsePositiveRate float64 `yaml:"max_false_positive_rate" json:"max_false_positive_rate"`
	SymbolRetainTarget   float64 `yaml:"symbol_retain_target" json:"symbol_retain_target"`
	TagRetainTarget      float64 `yaml:"tag_retain_target" json:"tag_retain_target"`

	// Verdict
	FailAccuracy         float64 `yaml:"fail_accuracy" json:"fail_accuracy"`
	WarnAccuracy         float64 `yaml:"warn_accuracy" json:"warn_accuracy"`
	MinTagValidationRate float64 `yaml:"min_tag_validation_rate" json:"min_tag_validation_rate"`
}

// DefaultThresholds returns the production thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		ProximityThreshold:     50,
		FallbackEditDistance:   2,
		SimilarTagEditDistance: 3,
		MaxMissingRate:         0.01,
		MaxCriticalMissingRate: 0.001,

		SymbolConfidence:     0.85,
		TagConfidence:        0.70,
		CharConfidence:       0.60,
		PairingRadius:        25,
		ValidCombined:        0.80,
		SuspiciousCombined:   0.65,
		MaxFalsePositiveRate: 0.05,
		SymbolRetainTarget:   0.85,
		TagRetainTarget:      0.80,

		FailAccuracy:         0.90,
		WarnAccuracy:         0.95,
		MinTagValidationRate: 0.80,
	}
}

// Validate rejects threshold sets that cannot drive a meaningful run
func (t Thresholds) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"proximity_threshold", t.ProximityThreshold},
		{"pairing_radius", t.PairingRadius},
	}
	for _, p := range positive {
		if !finite(p.value) || p.value <= 0 {
			return faults.NewConfigurationError(fmt.Sprintf("%s must be a positive number, got %v", p.name, p.value))
		}
	}

	unit := []struct {
		name  string
		value float64
	}{
		{"max_missing_rate", t.MaxMissingRate},
		{"max_critical_missing_rate", t.MaxCriticalMissingRate},
		{"symbol_confidence", t.SymbolConfidence},
		{"tag_confidence", t.TagConfidence},
		{"char_confidence", t.CharConfidence},
		{"valid_combined", t.ValidCombined},
		{"suspicious_combined", t.SuspiciousCombined},
		{"max_false_positive_rate", t.MaxFalsePositiveRate},
		{"symbol_retain_target", t.SymbolRetainTarget},
		{"tag_retain_target", t.TagRetainTarget},
		{"fail_accuracy", t.FailAccuracy},
		{"warn_accuracy", t.WarnAccuracy},
		{"min_tag_validation_rate", t.MinTagValidationRate},
	}
	for _, u := range unit {
		if !finite(u.value) || u.value < 0 || u.value > 1 {
			return faults.NewConfigurationError(fmt.Sprintf("%s must be within [0,1], got %v", u.name, u.value))
		}
	}

	if t.FallbackEditDistance < 0 || t.SimilarTagEditDistance < 0 {
		return faults.NewConfigurationError("edit distance limits must not be negative")
	}
	if t.SuspiciousCombined > t.ValidCombined {
		return faults.NewConfigurationError(fmt.Sprintf("suspicious_combined (%v) must not exceed valid_combined (%v)", t.SuspiciousCombined, t.ValidCombined))
	}
	if t.FailAccuracy > t.WarnAccuracy {
		return faults.NewConfigurationError(fmt.Sprintf("fail_accuracy (%v) must not exceed warn_accuracy (%v)", t.FailAccuracy, t.WarnAccuracy))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
