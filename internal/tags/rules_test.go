// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		tag         string
		category    Category
		criticality Criticality
	}{
		{"PSV-101A", CategorySafetyValve, CriticalityCritical},
		{"PRV-12", CategorySafetyValve, CriticalityCritical},
		{"LSV-4000", CategorySafetyValve, CriticalityCritical},
		{"LSL-2001", CategorySafetyInstrument, CriticalityCritical},
		{"TSH-55B", CategorySafetyInstrument, CriticalityCritical},
		{"P-101", CategoryPump, CriticalityHigh},
		{"T-100", CategoryVessel, CriticalityHigh},
		{"R-20", CategoryVessel, CriticalityHigh},
		{"V-201", CategoryVessel, CriticalityHigh},
		{"FIC-301", CategoryInstrument, CriticalityHigh},
		{"FCV-100", CategoryInstrument, CriticalityHigh},
		{"LT-12", CategoryInstrument, CriticalityHigh},
		{"XV-1001", CategoryValve, CriticalityMedium},
		{"CV-100", CategoryValve, CriticalityMedium},
		{"MOV-77", CategoryValve, CriticalityMedium},
		{"TK-300", CategoryEquipment, CriticalityMedium},
		{"HX-10", CategoryEquipment, CriticalityMedium},
		{"E-410", CategoryEquipment, CriticalityMedium},
		{`6"-HC-1001-A1`, CategoryLineSpec, CriticalityLow},
		{"10-P-12345", CategoryLineSpec, CriticalityLow},
		{"P-1", CategoryUnknown, CriticalityLow},
		{"P-10000", CategoryUnknown, CriticalityLow},
		{"PSV-10AB", CategoryUnknown, CriticalityLow},
		{"psv-101", CategoryUnknown, CriticalityLow},
		{"HELLO", CategoryUnknown, CriticalityLow},
		{"", CategoryUnknown, CriticalityLow},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			category, criticality := Classify(tt.tag)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.criticality, criticality)
		})
	}
}

// Every rule's example must be claimed by that rule and not by an earlier one
func TestRules_ExamplesReachTheirRule(t *testing.T) {
	for _, rule := range Rules {
		t.Run(rule.Name, func(t *testing.T) {
			got, ok := MatchRule(rule.Example)
			require.True(t, ok)
			assert.Equal(t, rule.Name, got.Name)
		})
	}
}

func TestRules_CriticalFirst(t *testing.T) {
	previous := CriticalityCritical.Rank()
	for _, rule := range Rules {
		assert.LessOrEqual(t, rule.Criticality.Rank(), previous, "rule %s breaks the priority order", rule.Name)
		previous = rule.Criticality.Rank()
	}
}
