// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardObserver_OffRecordsNothing(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityOff, &buf, Options{})

	finish := obs.StartTiming("missing", "detect", "job-1")
	finish(false, map[string]interface{}{"references": 3})
	obs.Warn("missing", "ignored")

	assert.Empty(t, buf.String())
	assert.False(t, obs.Enabled())
}

func TestStandardObserver_FailedOperationIsJSONWarning(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, &buf, Options{})

	finish := obs.StartTiming("crossval", "validate", "job-7")
	finish(false, map[string]interface{}{"symbols": 2})

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "crossval", record["component"])
	assert.Equal(t, "validate", record["operation"])
	assert.Equal(t, "job-7", record["subject"])
	assert.Equal(t, false, record["success"])
}

func TestStandardObserver_SuccessOnlyAtDebug(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, &buf, Options{})
	obs.StartTiming("tags", "normalize", "")(true, nil)
	assert.Empty(t, buf.String(), "successful operations are debug records")

	buf.Reset()
	obs = NewStandardObserver(ObservabilityDebug, &buf, Options{})
	obs.StartTiming("tags", "normalize", "")(true, nil)
	assert.Contains(t, buf.String(), `"operation":"normalize"`)
}

func TestStandardObserver_TerminalHandler(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, &buf, Options{Terminal: true, NoColor: true})
	obs.Warn("batch", "job timed out", "job", "a.json")

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "job timed out")
	assert.Contains(t, out, "job=a.json")
	assert.NotContains(t, out, "\x1b[", "no ANSI escapes when color is disabled")
}

func TestDebugObserver_NestedSteps(t *testing.T) {
	var buf bytes.Buffer
	d := NewDebugObserver(&buf, Options{Terminal: true, NoColor: true})

	outer := Step(d.StandardObserver, "validation", "run", "job-1")
	inner := Step(d.StandardObserver, "missing", "pass1", "job-1")
	Metric(d.StandardObserver, "missing", "matched", 4)
	d.LogDetail("missing", "critical subset 1")
	inner(true, "")
	outer(false, "critical failure")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "-> validation: run"))
	assert.True(t, strings.HasPrefix(lines[1], "  -> missing: pass1"))
	assert.Contains(t, lines[2], "matched = 4")
	assert.Contains(t, lines[3], "critical subset 1")
	assert.True(t, strings.HasPrefix(lines[4], "  <- missing: pass1 completed"))
	assert.True(t, strings.HasPrefix(lines[5], "<- validation: run failed"))
}

func TestStepHelpersWithoutDebug(t *testing.T) {
	assert.NotPanics(t, func() {
		Step(nil, "x", "y", "z")(true, "")
		Metric(Discard(), "x", "y", 1)
	})
}
