// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package ingest loads validation jobs and the collaborator artifacts that
// feed them: job files, vector PDF exports and scanned drawing images.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"drawcheck/internal/entity"
	"drawcheck/internal/faults"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a job file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// maxJobFileSize bounds the job files read into memory
const maxJobFileSize = 256 * 1024 * 1024

// FormatFromPath infers the job format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: job file %s must be .json, .yaml or .yml", faults.ErrUnsupportedInput, filepath.Base(path))
	}
}

// LoadJob reads a job file. Jobs without an id get a random one so results
// of a batch can always be told apart.
func LoadJob(path string) (entity.ValidationInput, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return entity.ValidationInput{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return entity.ValidationInput{}, fmt.Errorf("failed to read job file: %w", err)
	}
	if info.Size() > maxJobFileSize {
		return entity.ValidationInput{}, fmt.Errorf("%w: job file %s is larger than %d MB",
			faults.ErrUnsupportedInput, filepath.Base(path), maxJobFileSize/(1024*1024))
	}

	f, err := os.Open(path) // #nosec G304 - job path comes from the command line
	if err != nil {
		return entity.ValidationInput{}, fmt.Errorf("failed to read job file: %w", err)
	}
	defer f.Close()

	in, err := DecodeJob(f, format)
	if err != nil {
		return entity.ValidationInput{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if in.Drawing.FileName == "" {
		in.Drawing.FileName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return in, nil
}

// DecodeJob decodes a job from r. Unknown fields are rejected so that a
// misspelled key does not silently drop a collaborator's output.
func DecodeJob(r io.Reader, format Format) (entity.ValidationInput, error) {
	var in entity.ValidationInput

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&in); err != nil {
			return entity.ValidationInput{}, fmt.Errorf("%w: invalid JSON job: %w", faults.ErrUnsupportedInput, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
			return entity.ValidationInput{}, fmt.Errorf("%w: invalid YAML job: %w", faults.ErrUnsupportedInput, err)
		}
	default:
		return entity.ValidationInput{}, fmt.Errorf("%w: job format %q", faults.ErrUnsupportedInput, format)
	}

	if in.JobID == "" {
		in.JobID = uuid.NewString()
	}
	return in, nil
}

// EncodeJob writes a job in the given format
func EncodeJob(w io.Writer, in entity.ValidationInput, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(in)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(in); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("%w: job format %q", faults.ErrUnsupportedInput, format)
	}
}
