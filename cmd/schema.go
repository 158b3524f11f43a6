// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"drawcheck/internal/ingest"

	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a validation job file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := ingest.JobSchema()
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, string(schema)+"\n")
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "write the schema to this file instead of stdout")
	return cmd
}
