package api

import "errors"

var (
	// ErrLengthMismatch is returned in fail-fast mode when the
	// ground-truth and prediction sequences differ in length.
	ErrLengthMismatch = errors.New("ground truth and predictions differ in length")
	// ErrEmptySchema is returned when an evaluator is built without
	// any field specs.
	ErrEmptySchema = errors.New("field schema is empty")
	// ErrUnknownStrategy is returned when a field spec declares a
	// strategy with no comparator.
	ErrUnknownStrategy = errors.New("unknown evaluation strategy")
	// ErrLLMGenerationFailed is returned when LLM generation fails.
	ErrLLMGenerationFailed = errors.New("LLM generation failed")
	// ErrInvalidPrediction is returned when a generated prediction
	// does not satisfy the prediction schema.
	ErrInvalidPrediction = errors.New("prediction failed schema validation")
)
