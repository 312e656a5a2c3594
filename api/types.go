package api

import "encoding/json"

// Strategy selects how a field is compared across a record pair.
type Strategy string

const (
	// StrategyExact requires case-insensitive equality. Used for
	// identifier-like values (addresses, links) where partial credit
	// makes no sense.
	StrategyExact Strategy = "exact"
	// StrategyNearMatch tolerates punctuation and casing drift in
	// free-text labels via a character-level similarity ratio.
	StrategyNearMatch Strategy = "near_match"
	// StrategySemantic judges longer descriptive text on topical
	// overlap, since literal phrasing rarely matches.
	StrategySemantic Strategy = "semantic"
)

// Valid reports whether s is one of the recognized strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyExact, StrategyNearMatch, StrategySemantic:
		return true
	}
	return false
}

// ValueKind describes what sort of value a field holds.
type ValueKind string

const (
	KindText    ValueKind = "text"
	KindAddress ValueKind = "address"
	KindLink    ValueKind = "link"
)

// FieldSpec declares one recognized field and how it is evaluated.
// The set of specs is fixed at process start and never mutated.
type FieldSpec struct {
	Name       string    `yaml:"name" json:"name"`
	Kind       ValueKind `yaml:"kind" json:"kind"`
	Identifier bool      `yaml:"identifier" json:"identifier"`
	Strategy   Strategy  `yaml:"strategy" json:"strategy"`
}

// Schema is the ordered field registry. Evaluation iterates fields in
// declaration order, not record order.
type Schema []FieldSpec

// Names returns the field names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Thresholds holds the tunable comparison cutoffs. They are
// configuration, not derived values.
type Thresholds struct {
	// NearMatch is the sequence-similarity ratio above which a
	// near-match field pair counts as matching.
	NearMatch float64 `yaml:"near_match"`
	// Semantic is the cosine-similarity value at or above which a
	// semantic field pair counts as matching.
	Semantic float64 `yaml:"semantic"`
}

// DefaultThresholds returns the standard cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{NearMatch: 0.9, Semantic: 0.5}
}

// Record maps field names to string values and represents either a
// ground-truth or a predicted annotation for one contract.
type Record map[string]string

// Get returns the value for field, or the empty string when absent.
func (r Record) Get(field string) string {
	if r == nil {
		return ""
	}
	return r[field]
}

// FieldVerdict is the result of comparing one field across one record
// pair. Which measurements are meaningful depends on the strategy;
// JSON output carries only the strategy-appropriate keys.
type FieldVerdict struct {
	Strategy    Strategy
	GroundTruth string
	Prediction  string

	// ExactMatch is 1 when the pair matches case-insensitively.
	// Meaningful for exact and near-match strategies.
	ExactMatch int
	// NearMatch is 1 when Similarity exceeds the near-match
	// threshold. Near-match strategy only.
	NearMatch int
	// Similarity is the strategy's similarity measurement: sequence
	// ratio for near-match, bag-of-words cosine for semantic.
	Similarity float64
	// MeetsThreshold is 1 when Similarity reaches the semantic
	// threshold. Semantic strategy only.
	MeetsThreshold int
	// Degenerate marks a semantic comparison whose vocabulary was
	// empty, so Similarity 0.0 means "could not be computed" rather
	// than "legitimately dissimilar".
	Degenerate bool
}

// Matched reports whether the verdict counts as a near-or-looser match
// under its own strategy.
func (v FieldVerdict) Matched() int {
	switch v.Strategy {
	case StrategyExact:
		return v.ExactMatch
	case StrategyNearMatch:
		return v.NearMatch
	case StrategySemantic:
		return v.MeetsThreshold
	}
	return 0
}

// MarshalJSON keeps the report format strategy-specific: each
// strategy exposes exactly its own measurements.
func (v FieldVerdict) MarshalJSON() ([]byte, error) {
	switch v.Strategy {
	case StrategyNearMatch:
		return json.Marshal(struct {
			ExactMatch  int     `json:"exact_match"`
			NearMatch   int     `json:"near_match"`
			Similarity  float64 `json:"similarity"`
			GroundTruth string  `json:"ground_truth"`
			Prediction  string  `json:"prediction"`
		}{v.ExactMatch, v.NearMatch, v.Similarity, v.GroundTruth, v.Prediction})
	case StrategySemantic:
		return json.Marshal(struct {
			Similarity     float64 `json:"similarity"`
			MeetsThreshold int     `json:"meets_threshold"`
			Degenerate     bool    `json:"degenerate,omitempty"`
			GroundTruth    string  `json:"ground_truth"`
			Prediction     string  `json:"prediction"`
		}{v.Similarity, v.MeetsThreshold, v.Degenerate, v.GroundTruth, v.Prediction})
	default:
		return json.Marshal(struct {
			ExactMatch  int    `json:"exact_match"`
			GroundTruth string `json:"ground_truth"`
			Prediction  string `json:"prediction"`
		}{v.ExactMatch, v.GroundTruth, v.Prediction})
	}
}

// RecordVerdict maps field names to their verdicts for one record pair.
type RecordVerdict map[string]FieldVerdict

// AggregateMetric is the per-field dataset summary. Exact and
// near-match fields report precision/recall/F1; semantic fields report
// only a similarity rate.
//
// Recall here is the near-or-looser match rate, not a classical recall
// over a label set. The value is preserved under that name for report
// compatibility; NearMatchRate carries the same number under a clearer
// name.
type AggregateMetric struct {
	Strategy Strategy

	Precision      float64
	Recall         float64
	NearMatchRate  float64
	F1Score        float64
	ExactMatchRate float64

	SemanticSimilarityRate float64
}

// MarshalJSON emits either the precision/recall block or the semantic
// similarity rate, never both.
func (m AggregateMetric) MarshalJSON() ([]byte, error) {
	if m.Strategy == StrategySemantic {
		return json.Marshal(struct {
			SemanticSimilarityRate float64 `json:"semantic_similarity_rate"`
		}{m.SemanticSimilarityRate})
	}
	return json.Marshal(struct {
		Precision      float64 `json:"precision"`
		Recall         float64 `json:"recall"`
		NearMatchRate  float64 `json:"near_match_rate"`
		F1Score        float64 `json:"f1_score"`
		ExactMatchRate float64 `json:"exact_match_rate"`
	}{m.Precision, m.Recall, m.NearMatchRate, m.F1Score, m.ExactMatchRate})
}

// Report is the terminal artifact of one evaluation run.
type Report struct {
	// RunID uniquely identifies the run that produced this report.
	RunID string `json:"run_id"`
	// IndividualResults holds one RecordVerdict per processed record
	// pair, in input order.
	IndividualResults []RecordVerdict `json:"individual_results"`
	// AggregateResults maps field names to their dataset summary.
	AggregateResults map[string]AggregateMetric `json:"aggregate_results"`
}
