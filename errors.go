package tageval

import "github.com/datar-psa/tageval/api"

var (
	// ErrLengthMismatch is returned in fail-fast mode when the input
	// sequences differ in length.
	ErrLengthMismatch = api.ErrLengthMismatch
	// ErrEmptySchema is returned when an evaluator is built without
	// any field specs.
	ErrEmptySchema = api.ErrEmptySchema
	// ErrUnknownStrategy is returned when a field spec declares a
	// strategy with no comparator.
	ErrUnknownStrategy = api.ErrUnknownStrategy
	// ErrLLMGenerationFailed is returned when LLM generation fails.
	ErrLLMGenerationFailed = api.ErrLLMGenerationFailed
	// ErrInvalidPrediction is returned when a generated prediction
	// does not satisfy the prediction schema.
	ErrInvalidPrediction = api.ErrInvalidPrediction
)
