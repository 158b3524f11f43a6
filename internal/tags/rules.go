// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tags

import (
	"regexp"
)

// Category is the equipment class a tag belongs to
type Category string

const (
	CategoryPump             Category = "pump"
	CategoryValve            Category = "valve"
	CategoryVessel           Category = "vessel"
	CategoryEquipment        Category = "equipment"
	CategoryInstrument       Category = "instrument"
	CategorySafetyValve      Category = "safety_valve"
	CategorySafetyInstrument Category = "safety_instrument"
	CategoryLineSpec         Category = "line_spec"
	CategoryUnknown          Category = "unknown"
)

// Criticality ranks how costly it is to miss a tag
type Criticality string

const (
	CriticalityCritical Criticality = "CRITICAL"
	CriticalityHigh     Criticality = "HIGH"
	CriticalityMedium   Criticality = "MEDIUM"
	CriticalityLow      Criticality = "LOW"
)

// Rank orders criticalities from LOW (0) to CRITICAL (3)
func (c Criticality) Rank() int {
	switch c {
	case CriticalityCritical:
		return 3
	case CriticalityHigh:
		return 2
	case CriticalityMedium:
		return 1
	default:
		return 0
	}
}

// Rule maps a normalized tag pattern to its category and criticality
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Category    Category
	Criticality Criticality
	Example     string
}

// tagNumber is the loop number shared by equipment tags: 2 to 4 digits and an
// optional single-letter suffix
const tagNumber = `-\d{2,4}[A-Z]?$`

// Rules is evaluated top-down and the first matching rule wins. Callers must
// treat it as read-only.
var Rules = []Rule{
	{
		Name:        "safety_valve",
		Pattern:     regexp.MustCompile(`^(PSV|PRV|TSV|LSV)` + tagNumber),
		Category:    CategorySafetyValve,
		Criticality: CriticalityCritical,
		Example:     "PSV-101A",
	},
	{
		Name:        "safety_instrument",
		Pattern:     regexp.MustCompile(`^(PSH|PSL|TSH|TSL|LSH|LSL)` + tagNumber),
		Category:    CategorySafetyInstrument,
		Criticality: CriticalityCritical,
		Example:     "PSH-2040",
	},
	{
		Name:        "pump",
		Pattern:     regexp.MustCompile(`^P` + tagNumber),
		Category:    CategoryPump,
		Criticality: CriticalityHigh,
		Example:     "P-101",
	},
	{
		Name:        "vessel",
		Pattern:     regexp.MustCompile(`^[TVR]` + tagNumber),
		Category:    CategoryVessel,
		Criticality: CriticalityHigh,
		Example:     "V-201",
	},
	{
		Name:        "instrument",
		Pattern:     regexp.MustCompile(`^(FIC|PIC|TIC|LIC|FT|PT|TT|LT|FI|PI|TI|LI|FCV|PCV|TCV|LCV)` + tagNumber),
		Category:    CategoryInstrument,
		Criticality: CriticalityHigh,
		Example:     "FIC-301",
	},
	{
		Name:        "valve",
		Pattern:     regexp.MustCompile(`^(XV|HV|MOV|SDV|BDV|CV|BV|GV)` + tagNumber),
		Category:    CategoryValve,
		Criticality: CriticalityMedium,
		Example:     "XV-1001",
	},
	{
		Name:        "equipment",
		Pattern:     regexp.MustCompile(`^(E|C|K|H|F|M|TK|HX)` + tagNumber),
		Category:    CategoryEquipment,
		Criticality: CriticalityMedium,
		Example:     "E-410",
	},
	{
		Name:        "line_spec",
		Pattern:     regexp.MustCompile(`^\d{1,2}"?-[A-Z]{1,4}-\d{3,5}(-[A-Z0-9]+)*$`),
		Category:    CategoryLineSpec,
		Criticality: CriticalityLow,
		Example:     `6"-HC-1001-A1`,
	},
}

// Classify returns the category and criticality of a normalized tag. Tags
// that match no rule, including the empty string, are unknown and LOW.
func Classify(tag string) (Category, Criticality) {
	if rule, ok := MatchRule(tag); ok {
		return rule.Category, rule.Criticality
	}
	return CategoryUnknown, CriticalityLow
}

// MatchRule returns the first rule matching the normalized tag
func MatchRule(tag string) (Rule, bool) {
	if tag == "" {
		return Rule{}, false
	}
	for _, rule := range Rules {
		if rule.Pattern.MatchString(tag) {
			return rule, true
		}
	}
	return Rule{}, false
}
