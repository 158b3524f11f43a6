// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"drawcheck/internal/entity"
	"drawcheck/internal/formatters"
	"drawcheck/internal/ingest"
	"drawcheck/internal/validation"

	"github.com/spf13/cobra"
)

// validateOptions holds the flags of the validate command
type validateOptions struct {
	format       string
	output       string
	referencePDF string
	drawing      string
}

func newValidateCmd() *cobra.Command {
	var opts validateOptions
	cmd := &cobra.Command{
		Use:   "validate <job.json|job.yaml>",
		Short: "Validate the extraction results of one drawing",
		Long: `Validate one job file holding the reference entities of a drawing together with
the symbols and tags extracted from it. Reference entities can be added from the
text layer of a vector PDF export with --reference-pdf, and drawing metadata can
be read from the PDF or scanned image with --drawing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: "+strings.Join(formatters.List(), ", "))
	cmd.Flags().StringVar(&opts.output, "output", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&opts.referencePDF, "reference-pdf", "", "vector PDF export whose text-layer tags are added as reference entities")
	cmd.Flags().StringVar(&opts.drawing, "drawing", "", "PDF, JPEG or TIFF drawing to read metadata from")
	return cmd
}

func runValidate(cmd *cobra.Command, jobPath string, opts validateOptions) error {
	s, err := loadSettings(cmd, opts.format)
	if err != nil {
		return err
	}
	if _, ok := formatters.Get(s.format); !ok {
		return fmt.Errorf("unsupported format '%s'. Available formats: %s", s.format, strings.Join(formatters.List(), ", "))
	}
	observer := s.newObserver(cmd.ErrOrStderr())

	in, err := ingest.LoadJob(jobPath)
	if err != nil {
		return err
	}
	if err := enrichInput(&in, opts); err != nil {
		return err
	}

	v := validation.New(s.thresholds)
	v.SetObserver(observer)
	verdict := v.Validate(in)

	out, err := formatters.Export(s.format, formatters.Report{Verdicts: []validation.Verdict{verdict}},
		formatters.FormatterOptions{Verbose: s.verbose, NoColor: s.noColor})
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), opts.output, out); err != nil {
		return err
	}

	if code := exitCodeFor(verdict); code != exitPassed {
		return &exitCodeError{code: code}
	}
	return nil
}

// enrichInput adds the reference entities and metadata read from the
// drawing files named on the command line
func enrichInput(in *entity.ValidationInput, opts validateOptions) error {
	if opts.referencePDF != "" {
		refs, err := ingest.LoadReferencePDF(opts.referencePDF)
		if err != nil {
			return fmt.Errorf("reference PDF: %w", err)
		}
		in.References = append(in.References, refs...)
	}

	if opts.drawing != "" {
		md, err := ingest.ProbeDrawing(opts.drawing)
		if err != nil {
			return fmt.Errorf("drawing metadata: %w", err)
		}
		mergeDrawing(&in.Drawing, md)
	}
	return nil
}

// mergeDrawing fills the fields the job file left empty from probed metadata
func mergeDrawing(dst *entity.DrawingMetadata, probed entity.DrawingMetadata) {
	if dst.FileName == "" {
		dst.FileName = probed.FileName
	}
	if dst.Scale == "" {
		dst.Scale = probed.Scale
	}
	if dst.Units == "" {
		dst.Units = probed.Units
	}
	if dst.PageCount == 0 {
		dst.PageCount = probed.PageCount
	}
	if dst.PageWidth == 0 && dst.PageHeight == 0 {
		dst.PageWidth, dst.PageHeight = probed.PageWidth, probed.PageHeight
	}
	if dst.Producer == "" {
		dst.Producer = probed.Producer
	}
}
