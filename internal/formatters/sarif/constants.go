// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package sarif

// SARIF specification constants
const (
	// SARIFSchemaURL is the URL to the SARIF 2.1.0 JSON schema
	SARIFSchemaURL = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/refs/heads/main/sarif-2.1/schema/sarif-schema-2.1.0.json"

	// SARIFVersion is the SARIF specification version
	SARIFVersion = "2.1.0"
)

// ToolName is the driver name reported in every run
const ToolName = "drawcheck"

// SARIF level constants
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelNote    = "note"
)

// Rule IDs, one per kind of finding
const (
	RuleMissingCritical = "missing_critical_equipment"
	RuleMissing         = "missing_equipment"
	RuleFalsePositive   = "false_positive_pair"
	RuleSuspicious      = "suspicious_pair"
	RuleOrphanedSymbol  = "orphaned_symbol"
	RuleOrphanedTag     = "orphaned_tag"
	RuleDataIssue       = "data_issue"
	RuleValidationError = "validation_error"
)

// RuleDescription contains the description information for a finding rule
type RuleDescription struct {
	Short string
	Full  string
	Help  string
}

// RuleDescriptions maps rule IDs to their descriptions
var RuleDescriptions = map[string]RuleDescription{
	RuleMissingCritical: {
		Short: "Safety-critical equipment missing from extraction",
		Full:  "A reference entity whose tag classifies as safety-critical, such as a pressure safety valve or a safety instrumented function, has no matching extracted tag.",
		Help:  "Any missing safety-critical tag fails the drawing. Check the nearest extracted tag for an OCR misread and review the drawing region by hand.",
	},
	RuleMissing: {
		Short: "Equipment missing from extraction",
		Full:  "A reference entity on an equipment or instrument layer has no extracted tag with the same normalized text within the proximity threshold.",
		Help:  "If a similar tag was found nearby the OCR result probably needs a correction rule; otherwise the symbol was not detected at all.",
	},
	RuleFalsePositive: {
		Short: "Symbol and tag disagree",
		Full:  "A detected symbol was paired with its nearest tag but their combined confidence falls below the suspicious threshold.",
		Help:  "The symbol detector or the OCR engine likely produced a spurious result. Compare the symbol type with the tag category.",
	},
	RuleSuspicious: {
		Short: "Symbol and tag pairing is uncertain",
		Full:  "A detected symbol was paired with a tag but their combined confidence sits between the suspicious and valid thresholds.",
		Help:  "Review the pair. Raising the symbol or tag confidence threshold removes most of these.",
	},
	RuleOrphanedSymbol: {
		Short: "Detected symbol has no tag",
		Full:  "A detected symbol that passed the confidence filter has no extracted tag within the pairing radius.",
		Help:  "Either the tag was not read or the symbol is spurious.",
	},
	RuleOrphanedTag: {
		Short: "Extracted tag has no symbol",
		Full:  "An extracted tag that passed the confidence filter was not paired with any detected symbol.",
		Help:  "Either the symbol was not detected or the tag belongs to a title block or note.",
	},
	RuleDataIssue: {
		Short: "Malformed input entity",
		Full:  "An entity in the job file was dropped before validation because its geometry or confidence was unusable.",
		Help:  "Fix the extraction output that produced this entity.",
	},
	RuleValidationError: {
		Short: "Validation did not run",
		Full:  "The drawing could not be validated because of a configuration or pipeline error.",
		Help:  "See the result message for the cause.",
	},
}

// GetRuleDescription returns the rule description for a given rule ID
func GetRuleDescription(ruleID string) RuleDescription {
	if desc, exists := RuleDescriptions[ruleID]; exists {
		return desc
	}
	return RuleDescription{Short: ruleID, Full: ruleID, Help: "Review this finding."}
}
