// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package missing

import (
	"math/rand/v2"
	"slices"
	"testing"

	"drawcheck/internal/config"
	"drawcheck/internal/entity"
	"drawcheck/internal/tags"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(x, y float64) entity.Geometry {
	return entity.Geometry{X: x, Y: y}
}

func ref(id, tag string, x, y float64) entity.ReferenceEntity {
	return entity.ReferenceEntity{ID: id, Name: "BLOCK", Kind: entity.KindBlock, Layer: "PROCESS", Geometry: at(x, y), Tag: tag}
}

func cand(id, raw string, x, y float64) Candidate {
	return Candidate{ID: id, Tag: tags.Normalize(raw), Geometry: at(x, y), Confidence: 0.9, Scale: 1}
}

func TestDetect_CriticalEquipmentMissing(t *testing.T) {
	refs := []entity.ReferenceEntity{ref("r1", "PSV-101A", 1250, 3400)}

	result := Detect(refs, nil, config.DefaultThresholds())

	assert.Equal(t, 1.0, result.MissingRate)
	assert.Equal(t, 1.0, result.CriticalMissingRate)
	assert.True(t, result.CriticalFailure)
	assert.False(t, result.Passed)
	require.Len(t, result.Missing, 1)
	assert.True(t, result.Missing[0].Critical)
	assert.Nil(t, result.Missing[0].Nearest)
	assert.Equal(t, ReasonNoNearbyCandidate, result.Missing[0].Reason)
	assert.Len(t, result.MissingCritical(), 1)
}

func TestDetect_OCRConfusionStillMatchesExactly(t *testing.T) {
	refs := []entity.ReferenceEntity{ref("r1", "P-101", 800, 2000)}
	extracted := CandidatesFromTags([]entity.ExtractedTag{
		{ID: "t1", Text: "P-1O1", Confidence: 0.9, Geometry: at(805, 2005)},
	})

	result := Detect(refs, extracted, config.DefaultThresholds())

	require.Len(t, result.Matches, 1)
	assert.Equal(t, MethodExactTag, result.Matches[0].Method)
	assert.Equal(t, "P-101", result.Matches[0].Extracted.Tag)
	assert.InDelta(t, 7.071, result.Matches[0].Distance, 0.001)
	assert.Zero(t, result.MissingRate)
	assert.True(t, result.Passed)
}

func TestDetect_AllExactMatchesPass(t *testing.T) {
	refs := []entity.ReferenceEntity{
		ref("r1", "P-101", 0, 0),
		ref("r2", "PSV-201", 100, 0),
		ref("r3", "XV-300", 200, 0),
	}
	extracted := []Candidate{
		cand("c1", "P-101", 10, 10),
		cand("c2", "PSV-201", 130, 0),
		cand("c3", "XV-300", 200, 49),
	}

	result := Detect(refs, extracted, config.DefaultThresholds())

	assert.Len(t, result.Matches, 3)
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Unmatched)
	assert.Zero(t, result.MissingRate)
	assert.Zero(t, result.CriticalMissingRate)
	assert.Equal(t, 1, result.CriticalCount)
	assert.True(t, result.Passed)
}

func TestDetect_ProximityFallback(t *testing.T) {
	refs := []entity.ReferenceEntity{ref("r1", "P-101", 0, 0)}
	extracted := []Candidate{cand("c1", "P-107", 20, 0)}

	result := Detect(refs, extracted, config.DefaultThresholds())

	require.Len(t, result.Matches, 1)
	assert.Equal(t, MethodProximityFallback, result.Matches[0].Method)
	assert.Zero(t, result.MissingRate)
}

func TestDetect_FallbackRejectsDistantTag(t *testing.T) {
	refs := []entity.ReferenceEntity{ref("r1", "P-101", 0, 0)}
	extracted := []Candidate{
		cand("c1", "P-999", 30, 0),
		cand("c2", "XV-5555", 5, 0),
	}

	result := Detect(refs, extracted, config.DefaultThresholds())

	assert.Empty(t, result.Matches, "nearest candidate is too different and pass 2 does not look further")
	require.Len(t, result.Missing, 1)
	missingEntity := result.Missing[0]
	require.NotNil(t, missingEntity.Nearest)
	assert.Equal(t, "c2", missingEntity.Nearest.ID)
	assert.Equal(t, ReasonSimilarTagMismatch, missingEntity.Reason, "P-999 is within three edits")
	assert.Len(t, result.Unmatched, 2)
	assert.Equal(t, 1.0, result.MissingRate)
	assert.False(t, result.CriticalFailure)
	assert.False(t, result.Passed)
}

func TestDetect_OutOfRangeIsNoNearbyCandidate(t *testing.T) {
	refs := []entity.ReferenceEntity{ref("r1", "P-101", 0, 0)}
	extracted := []Candidate{cand("c1", "P-101", 60, 0)}

	result := Detect(refs, extracted, config.DefaultThresholds())

	require.Len(t, result.Missing, 1)
	assert.Equal(t, ReasonNoNearbyCandidate, result.Missing[0].Reason)
	assert.InDelta(t, 60, result.Missing[0].Nearest.Distance, 1e-9)
}

func TestDetect_TieBreak(t *testing.T) {
	th := config.DefaultThresholds()

	equal := Detect(
		[]entity.ReferenceEntity{ref("r1", "P-101", 0, 0)},
		[]Candidate{cand("b", "P-101", 10, 0), cand("a", "P-101", -10, 0)},
		th,
	)
	require.Len(t, equal.Matches, 1)
	assert.Equal(t, "a", equal.Matches[0].Extracted.ID, "equal distance goes to the lowest id")

	closer := Detect(
		[]entity.ReferenceEntity{ref("r1", "P-101", 0, 0)},
		[]Candidate{cand("a", "P-101", 40, 0), cand("z", "P-101", 5, 0)},
		th,
	)
	require.Len(t, closer.Matches, 1)
	assert.Equal(t, "z", closer.Matches[0].Extracted.ID, "exact pass takes the nearest, not the first")
}

func TestDetect_RelevanceFilter(t *testing.T) {
	refs := []entity.ReferenceEntity{
		{ID: "note", Name: "NOTE 3", Layer: "TEXT", Geometry: at(0, 0)},
		{ID: "pump-block", Name: "CENTRIFUGAL", Layer: "PUMPS", Geometry: at(0, 0)},
		{ID: "named", Name: "p-1o2", Layer: "0", Geometry: at(500, 500)},
	}
	extracted := []Candidate{cand("c1", "P-102", 500, 510)}

	result := Detect(refs, extracted, config.DefaultThresholds())

	assert.Equal(t, 1, result.IgnoredCount)
	assert.Equal(t, 2, result.RelevantCount)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "named", result.Matches[0].Reference.ID, "a tag-shaped name stands in for the tag")
	require.Len(t, result.Missing, 1)
	assert.Equal(t, "pump-block", result.Missing[0].Reference.ID)
	assert.Equal(t, 0.5, result.MissingRate)
	assert.Equal(t, []LayerCount{{Layer: "PUMPS", Count: 1}}, result.MissingLayers())
}

func TestDetect_UntaggedReferenceIgnoresFragments(t *testing.T) {
	pump := entity.ReferenceEntity{ID: "r1", Name: "CENTRIFUGAL", Layer: "PUMPS", Geometry: at(0, 0)}

	fragments := Detect([]entity.ReferenceEntity{pump},
		[]Candidate{cand("c1", "1", 3, 0), cand("c2", "A", 0, 4)}, config.DefaultThresholds())

	assert.Empty(t, fragments.Matches)
	require.Len(t, fragments.Missing, 1)
	assert.Equal(t, ReasonNoNearbyCandidate, fragments.Missing[0].Reason)
	require.NotNil(t, fragments.Missing[0].Nearest)
	assert.Equal(t, "c1", fragments.Missing[0].Nearest.ID)

	tagged := Detect([]entity.ReferenceEntity{pump},
		[]Candidate{cand("c1", "1", 3, 0), cand("c2", "P-102", 10, 0)}, config.DefaultThresholds())

	assert.Empty(t, tagged.Matches, "only the nearest candidate is considered")

	nearby := Detect([]entity.ReferenceEntity{pump},
		[]Candidate{cand("c2", "P-102", 10, 0)}, config.DefaultThresholds())

	require.Len(t, nearby.Matches, 1)
	assert.Equal(t, MethodProximityFallback, nearby.Matches[0].Method)
	assert.Empty(t, nearby.Missing)
}

func TestDetect_NoRelevantReferences(t *testing.T) {
	result := Detect(nil, []Candidate{cand("c1", "P-101", 0, 0)}, config.DefaultThresholds())

	assert.Zero(t, result.MissingRate)
	assert.Zero(t, result.CriticalMissingRate)
	assert.True(t, result.Passed)
	assert.Len(t, result.Unmatched, 1)
}

func TestDetect_ScaleReport(t *testing.T) {
	extracted := []Candidate{
		{ID: "a", Tag: "P-101", Confidence: 0.8, Scale: 0},
		{ID: "b", Tag: "P-102", Confidence: 0.6, Scale: 1},
		{ID: "c", Tag: "P-103", Confidence: 0.9, Scale: 4},
	}

	result := Detect(nil, extracted, config.DefaultThresholds())

	require.Len(t, result.Scales, 2)
	assert.Equal(t, 1.0, result.Scales[0].Scale)
	assert.Equal(t, 2, result.Scales[0].Count)
	assert.InDelta(t, 0.7, result.Scales[0].MeanConfidence, 1e-9)
	assert.Equal(t, 4.0, result.Scales[1].Scale)
}

func crowdedFixture() ([]entity.ReferenceEntity, []Candidate) {
	refs := []entity.ReferenceEntity{
		ref("r1", "P-101", 0, 0),
		ref("r2", "P-101", 8, 0),
		ref("r3", "P-102", 16, 0),
		ref("r4", "PSV-300", 24, 0),
		ref("r5", "XV-10", 32, 0),
		ref("r6", "", 40, 0),
	}
	refs[5].Layer = "VALVES"
	extracted := []Candidate{
		cand("c1", "P-101", 4, 0),
		cand("c2", "P-101", 12, 0),
		cand("c3", "P-1O1", 20, 0),
		cand("c4", "PSV-3OO", 28, 0),
		cand("c5", "XV-11", 36, 0),
		cand("c6", "", 44, 0),
		cand("c7", "P-102", 90, 0),
	}
	return refs, extracted
}

func TestDetect_MatchingIsInjective(t *testing.T) {
	refs, extracted := crowdedFixture()

	result := Detect(refs, extracted, config.DefaultThresholds())

	seenRefs := make(map[string]bool)
	seenCands := make(map[string]bool)
	for _, m := range result.Matches {
		assert.False(t, seenRefs[m.Reference.ID], "reference %s matched twice", m.Reference.ID)
		assert.False(t, seenCands[m.Extracted.ID], "candidate %s matched twice", m.Extracted.ID)
		seenRefs[m.Reference.ID] = true
		seenCands[m.Extracted.ID] = true
	}
	assert.Equal(t, len(refs), len(result.Matches)+len(result.Missing))
	assert.Equal(t, len(extracted), len(result.Matches)+len(result.Unmatched))
}

func TestDetect_IndependentOfInputOrder(t *testing.T) {
	refs, extracted := crowdedFixture()
	want := Detect(refs, extracted, config.DefaultThresholds())

	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 20; i++ {
		shuffledRefs := slices.Clone(refs)
		shuffledCands := slices.Clone(extracted)
		rng.Shuffle(len(shuffledRefs), func(a, b int) { shuffledRefs[a], shuffledRefs[b] = shuffledRefs[b], shuffledRefs[a] })
		rng.Shuffle(len(shuffledCands), func(a, b int) { shuffledCands[a], shuffledCands[b] = shuffledCands[b], shuffledCands[a] })

		assert.Equal(t, want, Detect(shuffledRefs, shuffledCands, config.DefaultThresholds()))
	}
}

func TestDetect_ThresholdsArePerCall(t *testing.T) {
	refs := []entity.ReferenceEntity{ref("r1", "P-101", 0, 0)}
	extracted := []Candidate{cand("c1", "P-101", 40, 0)}

	loose := config.DefaultThresholds()
	tight := config.DefaultThresholds()
	tight.ProximityThreshold = 30

	assert.Empty(t, Detect(refs, extracted, loose).Missing)
	assert.Len(t, Detect(refs, extracted, tight).Missing, 1)
}
