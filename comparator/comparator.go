// Package comparator implements the per-strategy field comparators:
// exact equality for identifiers, sequence-similarity near matching
// for free-text labels, and bag-of-words cosine similarity for
// descriptive fields.
package comparator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/datar-psa/tageval/api"
	"github.com/datar-psa/tageval/textsim"
)

// Comparator produces a FieldVerdict for one ground-truth/prediction
// string pair. Implementations are pure and safe for concurrent use.
type Comparator interface {
	Compare(groundTruth, prediction string) api.FieldVerdict
}

// Exact returns a comparator requiring case-insensitive equality.
// There is no partial credit.
func Exact() Comparator {
	return exactComparator{}
}

type exactComparator struct{}

func (exactComparator) Compare(groundTruth, prediction string) api.FieldVerdict {
	return api.FieldVerdict{
		Strategy:    api.StrategyExact,
		GroundTruth: groundTruth,
		Prediction:  prediction,
		ExactMatch:  boolToFlag(strings.EqualFold(groundTruth, prediction)),
	}
}

// NearMatchOptions configures the NearMatch comparator.
type NearMatchOptions struct {
	// Threshold is the sequence-similarity ratio above which the pair
	// counts as a near match. Zero selects the default.
	Threshold float64
}

// NearMatch returns a comparator that reports exact equality alongside
// a sequence-similarity ratio and a thresholded near-match flag.
func NearMatch(opts NearMatchOptions) Comparator {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = api.DefaultThresholds().NearMatch
	}
	return nearMatchComparator{threshold: threshold}
}

type nearMatchComparator struct {
	threshold float64
}

func (c nearMatchComparator) Compare(groundTruth, prediction string) api.FieldVerdict {
	similarity := textsim.SequenceSimilarity(groundTruth, prediction)
	return api.FieldVerdict{
		Strategy:    api.StrategyNearMatch,
		GroundTruth: groundTruth,
		Prediction:  prediction,
		ExactMatch:  boolToFlag(strings.EqualFold(groundTruth, prediction)),
		NearMatch:   boolToFlag(similarity > c.threshold),
		Similarity:  similarity,
	}
}

// SemanticOptions configures the Semantic comparator.
type SemanticOptions struct {
	// Threshold is the cosine-similarity value at or above which the
	// pair counts as matching. Zero selects the default.
	Threshold float64
}

// Semantic returns a comparator judging topical overlap via
// bag-of-words cosine similarity. A degenerate computation (empty
// vocabulary on either side) yields similarity 0.0 with the verdict's
// Degenerate flag set; it is never surfaced as an error.
func Semantic(opts SemanticOptions) Comparator {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = api.DefaultThresholds().Semantic
	}
	return semanticComparator{threshold: threshold}
}

type semanticComparator struct {
	threshold float64
}

func (c semanticComparator) Compare(groundTruth, prediction string) api.FieldVerdict {
	verdict := api.FieldVerdict{
		Strategy:    api.StrategySemantic,
		GroundTruth: groundTruth,
		Prediction:  prediction,
	}

	similarity, err := textsim.BagOfWordsCosine(groundTruth, prediction)
	if errors.Is(err, textsim.ErrDegenerateVectors) {
		verdict.Degenerate = true
		return verdict
	}

	verdict.Similarity = similarity
	verdict.MeetsThreshold = boolToFlag(similarity >= c.threshold)
	return verdict
}

// ForStrategy returns the comparator for a declared strategy,
// configured with the given thresholds.
func ForStrategy(strategy api.Strategy, thresholds api.Thresholds) (Comparator, error) {
	switch strategy {
	case api.StrategyExact:
		return Exact(), nil
	case api.StrategyNearMatch:
		return NearMatch(NearMatchOptions{Threshold: thresholds.NearMatch}), nil
	case api.StrategySemantic:
		return Semantic(SemanticOptions{Threshold: thresholds.Semantic}), nil
	default:
		return nil, fmt.Errorf("%w: %q", api.ErrUnknownStrategy, strategy)
	}
}

func boolToFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
