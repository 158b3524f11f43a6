// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"drawcheck/internal/help"
	"drawcheck/internal/tags"

	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "normalize <tag...>",
		Short: "Normalize and classify raw OCR tags",
		Long: `Apply the OCR correction rules to raw tag strings and show the normalized tag,
its equipment category and criticality, and which corrections fired.`,
		Example: `  drawcheck normalize "psv 1O1a" "FV-2O1"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized := tags.NormalizeAndClassify(args)
			switch strings.ToLower(format) {
			case "text":
				noColor := flags.noColor || !isTerminalWriter(cmd.OutOrStdout())
				help.NewSystem(cmd.OutOrStdout(), noColor).ShowNormalized(normalized)
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(normalized)
			default:
				return fmt.Errorf("unsupported format %q (must be text or json)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json)")
	return cmd
}
