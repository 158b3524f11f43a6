// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"drawcheck/internal/config"
	"drawcheck/internal/observability"
	"drawcheck/internal/validation"
	"drawcheck/internal/version"

	// Register formatters
	_ "drawcheck/internal/formatters/csv"
	_ "drawcheck/internal/formatters/json"
	_ "drawcheck/internal/formatters/junit"
	_ "drawcheck/internal/formatters/sarif"
	_ "drawcheck/internal/formatters/text"
	_ "drawcheck/internal/formatters/yaml"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Exit codes
const (
	exitPassed          = 0
	exitError           = 1
	exitWarning         = 2
	exitFailed          = 3
	exitCriticalFailure = 4
)

// exitCodeError carries a process exit code out of a command. A nil err
// means the command already reported its outcome.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitCodeError) Unwrap() error {
	return e.err
}

// globalFlags holds the persistent flag values
type globalFlags struct {
	configFile string
	profile    string
	noColor    bool
	debug      bool
	verbose    bool
}

var flags globalFlags

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "drawcheck",
		Short: "Validate CAD and P&ID extraction results",
		Long: `drawcheck compares the symbols and tags extracted from an engineering drawing
against the drawing's own reference entities and reports a PASSED, WARNING or
FAILED verdict. A missing safety-critical tag always fails the drawing.

Exit codes: 0 passed, 2 warning, 3 failed, 4 critical equipment missing, 1 error.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to configuration file (YAML)")
	root.PersistentFlags().StringVar(&flags.profile, "profile", "", "threshold profile from the config file")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "trace pipeline steps on stderr")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "include per-entity details in reports")

	root.AddCommand(
		newValidateCmd(),
		newBatchCmd(),
		newNormalizeCmd(),
		newRulesCmd(),
		newSchemaCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags = globalFlags{}
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitPassed
	}

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", exitErr.err)
		}
		return exitErr.code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitError
}

// exitCodeFor maps a verdict to the process exit code
func exitCodeFor(v validation.Verdict) int {
	switch {
	case v.CriticalFailure:
		return exitCriticalFailure
	case v.Status == validation.StatusFailed:
		return exitFailed
	case v.Status == validation.StatusWarning:
		return exitWarning
	default:
		return exitPassed
	}
}

// settings is the resolved configuration of one command invocation
type settings struct {
	cfg        *config.Config
	profile    string
	thresholds config.Thresholds
	format     string
	verbose    bool
	noColor    bool
	debug      bool
}

// loadSettings merges the config file, the selected profile and the flags.
// Flags given on the command line win over the config file.
func loadSettings(cmd *cobra.Command, formatFlag string) (*settings, error) {
	cfg, err := config.LoadConfigOrDefault(flags.configFile)
	if err != nil {
		if flags.configFile != "" {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Error loading config file: %v\nUsing default configuration\n", err)
	}

	s := &settings{
		cfg:     cfg,
		profile: cfg.Defaults.Profile,
		format:  cfg.Defaults.Format,
		verbose: cfg.Defaults.Verbose,
		noColor: cfg.Defaults.NoColor,
		debug:   cfg.Defaults.Debug,
	}
	if flags.profile != "" {
		s.profile = flags.profile
	}
	if profile := cfg.GetProfile(s.profile); profile != nil && profile.Format != "" {
		s.format = profile.Format
	}
	if cmd.Flags().Changed("format") {
		s.format = formatFlag
	}
	if cmd.Flags().Changed("verbose") {
		s.verbose = flags.verbose
	}
	if cmd.Flags().Changed("debug") {
		s.debug = flags.debug
	}
	if cmd.Flags().Changed("no-color") {
		s.noColor = flags.noColor
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		s.noColor = true
	}

	s.thresholds, err = cfg.ThresholdsFor(s.profile)
	if err != nil {
		return nil, &exitCodeError{code: exitError, err: err}
	}
	return s, nil
}

// newObserver builds the stderr observer: step traces with --debug, warnings
// and failed operations with --verbose, nothing otherwise
func (s *settings) newObserver(stderr io.Writer) *observability.StandardObserver {
	opts := observability.Options{Terminal: isTerminalWriter(stderr), NoColor: s.noColor}
	switch {
	case s.debug:
		d := observability.NewDebugObserver(stderr, opts)
		d.LogDetail("main", fmt.Sprintf("profile=%q format=%s", s.profile, s.format))
		return d.StandardObserver
	case s.verbose:
		return observability.NewStandardObserver(observability.ObservabilityMetrics, stderr, opts)
	default:
		return observability.Discard()
	}
}

// writeOutput writes the report to path, or to w when path is empty
func writeOutput(w io.Writer, path, content string) error {
	if path == "" {
		_, err := io.WriteString(w, content)
		return err
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(cleanPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
