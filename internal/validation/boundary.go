// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"drawcheck/internal/config"
	"drawcheck/internal/crossval"
	"drawcheck/internal/entity"
	"drawcheck/internal/faults"
	"drawcheck/internal/missing"
)

// DetectMissingEquipment runs the missing-equipment detector alone, using the
// extracted tags as candidates. Invalid thresholds and component panics are
// returned as classified errors.
func DetectMissingEquipment(refs []entity.ReferenceEntity, extracted []entity.ExtractedTag, th config.Thresholds) (result missing.Result, err error) {
	if err = th.Validate(); err != nil {
		return missing.Result{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = missing.Result{}, faults.FromPanic("missing_detector", r)
		}
	}()
	return missing.Detect(refs, missing.CandidatesFromTags(extracted), th), nil
}

// ValidateFalsePositives runs the cross-validation engine alone
func ValidateFalsePositives(symbols []entity.DetectedSymbol, extracted []entity.ExtractedTag, th config.Thresholds) (result crossval.Result, err error) {
	if err = th.Validate(); err != nil {
		return crossval.Result{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = crossval.Result{}, faults.FromPanic("cross_validator", r)
		}
	}()
	return crossval.Validate(symbols, extracted, th), nil
}
