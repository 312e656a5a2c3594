// Package evaluator drives the dataset evaluation pipeline: it walks
// positionally aligned ground-truth and prediction records, dispatches
// every declared field to its strategy's comparator, and aggregates
// per-field precision, recall and F1 (or a semantic similarity rate)
// into an evaluation report.
package evaluator

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/datar-psa/tageval/api"
	"github.com/datar-psa/tageval/comparator"
	"github.com/datar-psa/tageval/schema"
)

// Evaluator evaluates prediction records against ground truth. One
// Evaluator may run many evaluations; each run owns its own counters.
type Evaluator struct {
	schema      api.Schema
	thresholds  api.Thresholds
	comparators map[api.Strategy]comparator.Comparator
	logger      *slog.Logger
	failFast    bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithSchema replaces the default field registry.
func WithSchema(s api.Schema) Option {
	return func(e *Evaluator) { e.schema = s }
}

// WithThresholds replaces the default comparison thresholds.
func WithThresholds(t api.Thresholds) Option {
	return func(e *Evaluator) { e.thresholds = t }
}

// WithLogger sets the structured logger used for progress and
// truncation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithFailFast makes a length mismatch between the two sequences a
// hard error instead of the default truncate-with-warning behavior.
func WithFailFast() Option {
	return func(e *Evaluator) { e.failFast = true }
}

// New builds an Evaluator. The schema is validated and a comparator is
// bound per declared strategy up front, so Evaluate cannot hit an
// unknown strategy mid-run.
func New(opts ...Option) (*Evaluator, error) {
	e := &Evaluator{
		schema:     schema.Default(),
		thresholds: api.DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}

	if err := schema.Validate(e.schema); err != nil {
		return nil, err
	}

	e.comparators = make(map[api.Strategy]comparator.Comparator, 3)
	for _, f := range e.schema {
		if _, ok := e.comparators[f.Strategy]; ok {
			continue
		}
		c, err := comparator.ForStrategy(f.Strategy, e.thresholds)
		if err != nil {
			return nil, err
		}
		e.comparators[f.Strategy] = c
	}

	return e, nil
}

// fieldTally accumulates per-field counters across one run. The
// invariants exact <= near <= total hold for near-match fields; exact
// stays zero for semantic fields.
type fieldTally struct {
	exact int
	near  int
	total int
}

// Evaluate compares predictions against ground truth pairwise and
// returns the full report. The Nth prediction is judged against the
// Nth ground-truth record. When the sequences differ in length the
// unmatched tail is dropped with a warning, unless the Evaluator was
// built with WithFailFast, in which case ErrLengthMismatch is
// returned before any record is processed.
func (e *Evaluator) Evaluate(groundTruth, predictions []api.Record) (*api.Report, error) {
	n := len(groundTruth)
	if len(predictions) != n {
		if e.failFast {
			return nil, fmt.Errorf("%w: %d ground truth vs %d predictions",
				api.ErrLengthMismatch, len(groundTruth), len(predictions))
		}
		if len(predictions) < n {
			n = len(predictions)
		}
		e.logger.Warn("record count mismatch, truncating to paired prefix",
			"ground_truth", len(groundTruth),
			"predictions", len(predictions),
			"evaluated", n)
	}

	e.logger.Info("starting evaluation", "records", n, "fields", len(e.schema))

	tallies := make(map[string]*fieldTally, len(e.schema))
	for _, f := range e.schema {
		tallies[f.Name] = &fieldTally{}
	}

	results := make([]api.RecordVerdict, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && i%100 == 0 {
			e.logger.Info("evaluation progress", "processed", i, "total", n)
		}

		verdicts := make(api.RecordVerdict, len(e.schema))
		for _, f := range e.schema {
			verdict := e.comparators[f.Strategy].Compare(
				groundTruth[i].Get(f.Name),
				predictions[i].Get(f.Name),
			)

			tally := tallies[f.Name]
			tally.exact += exactCount(verdict)
			tally.near += verdict.Matched()
			tally.total++

			verdicts[f.Name] = verdict
		}
		results = append(results, verdicts)
	}

	aggregates := make(map[string]api.AggregateMetric, len(e.schema))
	for _, f := range e.schema {
		aggregates[f.Name] = aggregate(f.Strategy, tallies[f.Name])
	}

	return &api.Report{
		RunID:             uuid.NewString(),
		IndividualResults: results,
		AggregateResults:  aggregates,
	}, nil
}

// Schema returns the field registry the evaluator was built with, in
// declaration order.
func (e *Evaluator) Schema() api.Schema {
	return e.schema
}

// exactCount feeds the exact counter: exact fields contribute their
// exact flag, near-match fields track exact and near separately,
// semantic fields have no exact-match concept.
func exactCount(v api.FieldVerdict) int {
	if v.Strategy == api.StrategySemantic {
		return 0
	}
	return v.ExactMatch
}

func aggregate(strategy api.Strategy, t *fieldTally) api.AggregateMetric {
	m := api.AggregateMetric{Strategy: strategy}
	if t.total == 0 {
		return m
	}

	nearRate := float64(t.near) / float64(t.total)

	if strategy == api.StrategySemantic {
		m.SemanticSimilarityRate = nearRate
		return m
	}

	m.Precision = float64(t.exact) / float64(t.total)
	m.Recall = nearRate
	m.NearMatchRate = nearRate
	m.ExactMatchRate = m.Precision
	m.F1Score = f1(m.Precision, m.Recall)
	return m
}

// f1 is the harmonic mean of precision and recall, defined as 0 when
// both are 0.
func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}
