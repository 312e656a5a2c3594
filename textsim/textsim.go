// Package textsim provides the pure string-similarity primitives used
// by the field comparators: a longest-common-subsequence ratio for
// character-level fuzziness and a bag-of-words cosine similarity for
// topical overlap.
package textsim

import (
	"errors"
	"math"
	"regexp"
	"strings"
)

// ErrDegenerateVectors is returned by BagOfWordsCosine when either
// input produces no tokens, so no similarity can be computed. Callers
// are expected to substitute a similarity of 0.0; the typed error lets
// them distinguish "could not compute" from "legitimately dissimilar".
var ErrDegenerateVectors = errors.New("no tokens to vectorize")

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// SequenceSimilarity returns a case-insensitive similarity ratio in
// [0, 1] between a and b: twice the length of their longest common
// subsequence divided by their combined length. It is symmetric and
// reflexive; two empty strings compare as 1.0 and an empty string
// compares as 0.0 against any non-empty string.
func SequenceSimilarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	return 2.0 * float64(lcsLength(ra, rb)) / float64(total)
}

// lcsLength computes the longest-common-subsequence length with a
// two-row dynamic program.
func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// BagOfWordsCosine returns the cosine similarity in [0, 1] of the
// term-frequency vectors of a and b. Text is lowercased and tokenized
// on word boundaries; the vocabulary is built from the two inputs
// only. When either input yields no tokens the result is
// (0, ErrDegenerateVectors).
func BagOfWordsCosine(a, b string) (float64, error) {
	tokensA := tokenize(a)
	tokensB := tokenize(b)

	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0, ErrDegenerateVectors
	}

	freqA := termFrequencies(tokensA)
	freqB := termFrequencies(tokensB)

	var dot, normA, normB float64
	for term, fa := range freqA {
		normA += fa * fa
		if fb, ok := freqB[term]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range freqB {
		normB += fb * fb
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0, ErrDegenerateVectors
	}

	return dot / denom, nil
}

func tokenize(s string) []string {
	return wordPattern.FindAllString(strings.ToLower(s), -1)
}

func termFrequencies(tokens []string) map[string]float64 {
	freq := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}
