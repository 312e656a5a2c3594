// Package tageval evaluates machine-generated contract tag records
// against ground truth with per-field comparison strategies, and
// generates such records from an LLM-backed knowledge source. This
// package aliases the shared types and wires convenient constructors;
// the work happens in the evaluator, comparator, predict and report
// subpackages.
package tageval

import (
	language "cloud.google.com/go/language/apiv1"
	"google.golang.org/genai"

	"github.com/datar-psa/tageval/api"
	"github.com/datar-psa/tageval/evaluator"
	"github.com/datar-psa/tageval/gemini"
	"github.com/datar-psa/tageval/predict"
	"github.com/datar-psa/tageval/report"
	"github.com/datar-psa/tageval/schema"
)

type Record = api.Record
type FieldSpec = api.FieldSpec
type Schema = api.Schema
type Strategy = api.Strategy
type Thresholds = api.Thresholds
type FieldVerdict = api.FieldVerdict
type RecordVerdict = api.RecordVerdict
type AggregateMetric = api.AggregateMetric
type Report = api.Report

type LLMGenerator = api.LLMGenerator
type ModerationProvider = api.ModerationProvider
type ModerationCategory = api.ModerationCategory
type ModerationResult = api.ModerationResult

const (
	StrategyExact     = api.StrategyExact
	StrategyNearMatch = api.StrategyNearMatch
	StrategySemantic  = api.StrategySemantic
)

// DefaultSchema returns the built-in five-field registry.
func DefaultSchema() Schema { return schema.Default() }

// DefaultThresholds returns the standard comparison cutoffs.
func DefaultThresholds() Thresholds { return api.DefaultThresholds() }

// NewEvaluator builds a dataset evaluator. See the evaluator package
// for the available options.
func NewEvaluator(opts ...evaluator.Option) (*evaluator.Evaluator, error) {
	return evaluator.New(opts...)
}

// NewEmitter builds a report emitter over the given registry.
func NewEmitter(s Schema) *report.Emitter {
	return report.NewEmitter(s)
}

// NewGeminiPredictor builds a prediction generator backed by a Gemini
// model. When langClient is non-nil, generated public notes are
// screened through the Cloud Natural Language moderation API.
func NewGeminiPredictor(client *genai.Client, modelName string, langClient *language.Client, opts ...predict.Option) (*predict.Predictor, error) {
	if langClient != nil {
		opts = append(opts, predict.WithModeration(gemini.NewGoogleLanguageProvider(langClient), 0.8))
	}
	return predict.New(gemini.NewGenerator(client, modelName), opts...)
}
