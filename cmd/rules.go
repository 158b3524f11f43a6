// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"drawcheck/internal/help"

	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules [rule]",
		Short: "Show tag classification rules and active thresholds",
		Long: `Without arguments, list the tag classification rules followed by the thresholds
of the selected profile. With a rule name, show that rule in detail.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			h := help.NewSystem(out, s.noColor || !isTerminalWriter(out))

			if len(args) == 1 {
				if !h.ShowRule(args[0]) {
					return &exitCodeError{code: exitError}
				}
				return nil
			}

			h.ShowRules()
			fmt.Fprintln(out)
			h.ShowThresholds(s.thresholds, s.profile)
			if profiles := s.cfg.ListProfiles(); len(profiles) > 0 {
				fmt.Fprintf(out, "\nProfiles: %v (select with --profile)\n", profiles)
			}
			return nil
		},
	}
}
