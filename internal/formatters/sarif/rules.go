// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sarif

import "sort"

// RuleManager collects the rules referenced by the results of one report
type RuleManager struct {
	rules map[string]SARIFRule
}

// NewRuleManager creates a new RuleManager instance
func NewRuleManager() *RuleManager {
	return &RuleManager{rules: make(map[string]SARIFRule)}
}

// Use records that a result refers to ruleID
func (rm *RuleManager) Use(ruleID string) string {
	if _, exists := rm.rules[ruleID]; !exists {
		desc := GetRuleDescription(ruleID)
		rm.rules[ruleID] = SARIFRule{
			ID:               ruleID,
			ShortDescription: SARIFMessage{Text: desc.Short},
			FullDescription:  SARIFMessage{Text: desc.Full},
			Help:             SARIFMessage{Text: desc.Help},
		}
	}
	return ruleID
}

// GetAllRules returns the recorded rules sorted by ID
func (rm *RuleManager) GetAllRules() []SARIFRule {
	rules := make([]SARIFRule, 0, len(rm.rules))
	for _, rule := range rm.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}
