// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"runtime"
	"time"

	"fortio.org/safecast"
)

// perfProbe captures the clock and heap at the start of a run
type perfProbe struct {
	start      time.Time
	heapAlloc  uint64
	totalAlloc uint64
}

func startProbe() perfProbe {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return perfProbe{start: time.Now(), heapAlloc: m.HeapAlloc, totalAlloc: m.TotalAlloc}
}

// finish reads the counters again. Conversions that would overflow are
// reported as zero.
func (p perfProbe) finish(entities int) Performance {
	elapsed := time.Since(p.start)
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	perf := Performance{
		DurationMs:  float64(elapsed.Microseconds()) / 1000,
		EntityCount: entities,
	}
	if seconds := elapsed.Seconds(); seconds > 0 {
		perf.EntitiesPerSecond = float64(entities) / seconds
	}

	before, errBefore := safecast.Conv[int64](p.heapAlloc)
	after, errAfter := safecast.Conv[int64](m.HeapAlloc)
	if errBefore == nil && errAfter == nil {
		perf.HeapDeltaBytes = after - before
	}
	if m.TotalAlloc >= p.totalAlloc {
		if allocated, err := safecast.Conv[int64](m.TotalAlloc - p.totalAlloc); err == nil {
			perf.AllocatedBytes = allocated
		}
	}
	return perf
}
