// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package crossval

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// bucketEdges are the lower bounds of the confidence buckets. The last
// bucket is closed at 1.0.
var bucketEdges = []float64{0, 0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 1.0}

// Bucket counts the symbols and tags whose confidence falls in [Min, Max)
type Bucket struct {
	Label   string  `json:"label" yaml:"label"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Symbols int     `json:"symbols" yaml:"symbols"`
	Tags    int     `json:"tags" yaml:"tags"`
}

// Distribution is the advisory confidence analysis of a run. It never
// changes the run's own classification.
type Distribution struct {
	Buckets                  []Bucket `json:"buckets" yaml:"buckets"`
	SuggestedSymbolThreshold float64  `json:"suggested_symbol_threshold" yaml:"suggested_symbol_threshold"`
	SuggestedTagThreshold    float64  `json:"suggested_tag_threshold" yaml:"suggested_tag_threshold"`
}

func newBuckets() []Bucket {
	buckets := make([]Bucket, len(bucketEdges)-1)
	for i := range buckets {
		lo, hi := bucketEdges[i], bucketEdges[i+1]
		closing := ")"
		if i == len(buckets)-1 {
			closing = "]"
		}
		buckets[i] = Bucket{Label: fmt.Sprintf("[%.2f,%.2f%s", lo, hi, closing), Min: lo, Max: hi}
	}
	return buckets
}

func bucketIndex(confidence float64) int {
	for i := len(bucketEdges) - 2; i > 0; i-- {
		if confidence >= bucketEdges[i] {
			return i
		}
	}
	return 0
}

// analyzeDistribution buckets the confidences and derives the thresholds that
// would retain the target share of each population. With no data the current
// threshold is kept.
func analyzeDistribution(symbolConf, tagConf []float64, symbolTarget, tagTarget, currentSymbol, currentTag float64) Distribution {
	dist := Distribution{Buckets: newBuckets()}
	for _, c := range symbolConf {
		dist.Buckets[bucketIndex(c)].Symbols++
	}
	for _, c := range tagConf {
		dist.Buckets[bucketIndex(c)].Tags++
	}
	dist.SuggestedSymbolThreshold = RetainThreshold(symbolConf, symbolTarget, currentSymbol)
	dist.SuggestedTagThreshold = RetainThreshold(tagConf, tagTarget, currentTag)
	return dist
}

// RetainThreshold returns the k-th highest confidence, k = ceil(target*n), so
// that a threshold at this value keeps at least the target share. fallback is
// returned for an empty population.
func RetainThreshold(confidences []float64, target, fallback float64) float64 {
	n := len(confidences)
	if n == 0 {
		return fallback
	}
	sorted := slices.Clone(confidences)
	slices.SortFunc(sorted, func(a, b float64) int { return cmp.Compare(b, a) })

	// the epsilon keeps 0.85*20 from rounding up to 18
	k := int(math.Ceil(target*float64(n) - 1e-9))
	k = max(1, min(k, n))
	return sorted[k-1]
}
