// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"encoding/json"
	"fmt"

	"drawcheck/internal/entity"

	"github.com/invopop/jsonschema"
)

// JobSchema returns the JSON schema of a job file
func JobSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := r.Reflect(&entity.ValidationInput{})
	schema.Title = "drawcheck validation job"
	schema.Description = "Reference entities of one drawing with the symbols and tags extracted from it"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode job schema: %w", err)
	}
	return data, nil
}
