// Package predict generates prediction records for contract addresses
// by querying an LLM-backed knowledge source. Every input record
// yields exactly one output record in input order; any failure along
// the way degrades to a record with the address set and all predicted
// fields empty, so downstream positional alignment is preserved.
package predict

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/errgroup"

	"github.com/datar-psa/tageval/api"
	"github.com/datar-psa/tageval/schema"
)

const defaultDelay = time.Second

const promptTemplate = `Given this smart contract address on %s: %s
Please return information about this smart contract in this exact JSON format:
{
    "Project Name": "project name",
    "Public Name Tag": "name/label of this smart contract",
    "UI/Website Link": "domain of the project website",
    "Public Note": "brief description of the purpose of this contract in the context of the project"
}
Be concise in the description. If you're not certain about any field, make a best guess. All fields with no found information must be left as an empty string.%s
Return just the JSON and nothing else.`

// validationSchema enforces the original acceptance rule: every
// predicted field present and non-empty, otherwise the whole
// prediction is discarded in favor of an empty record.
const validationSchema = `{
	"type": "object",
	"required": ["Project Name", "Public Name Tag", "UI/Website Link", "Public Note"],
	"properties": {
		"Project Name": {"type": "string", "minLength": 1},
		"Public Name Tag": {"type": "string", "minLength": 1},
		"UI/Website Link": {"type": "string", "minLength": 1},
		"Public Note": {"type": "string", "minLength": 1}
	}
}`

// Predictor generates tag predictions for contract addresses.
type Predictor struct {
	llm                 api.LLMGenerator
	moderation          api.ModerationProvider
	moderationThreshold float64
	delay               time.Duration
	concurrency         int
	logger              *slog.Logger

	validator *gojsonschema.Schema
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithModeration screens each generated Public Note through the
// provider; categories at or above threshold blank the note.
func WithModeration(provider api.ModerationProvider, threshold float64) Option {
	return func(p *Predictor) {
		p.moderation = provider
		p.moderationThreshold = threshold
	}
}

// WithDelay sets the pause after each knowledge-source call. The
// default is one second; a negative value disables the pause.
func WithDelay(d time.Duration) Option {
	return func(p *Predictor) { p.delay = d }
}

// WithConcurrency enables a bounded worker pool of n workers. Output
// order still matches input order.
func WithConcurrency(n int) Option {
	return func(p *Predictor) { p.concurrency = n }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Predictor) { p.logger = l }
}

// New builds a Predictor over the given generator.
func New(llm api.LLMGenerator, opts ...Option) (*Predictor, error) {
	if llm == nil {
		return nil, fmt.Errorf("LLM generator is required")
	}

	p := &Predictor{
		llm:         llm,
		delay:       defaultDelay,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.moderation != nil && p.moderationThreshold <= 0 {
		p.moderationThreshold = 0.8
	}

	validator, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(validationSchema))
	if err != nil {
		return nil, fmt.Errorf("compile prediction schema: %w", err)
	}
	p.validator = validator

	return p, nil
}

// Stats summarizes one prediction run.
type Stats struct {
	Processed       int
	Succeeded       int
	FailedAddresses []string
}

// PredictDataset produces one prediction record per ground-truth
// record, in input order. Individual failures never abort the run;
// only context cancellation does.
func (p *Predictor) PredictDataset(ctx context.Context, groundTruth []api.Record) ([]api.Record, Stats, error) {
	predictions := make([]api.Record, len(groundTruth))
	succeeded := make([]bool, len(groundTruth))

	work := func(ctx context.Context, i int) error {
		address := groundTruth[i].Get(schema.FieldContractAddress)
		predictions[i], succeeded[i] = p.predictOne(ctx, address)
		if p.delay > 0 {
			select {
			case <-time.After(p.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return ctx.Err()
	}

	if p.concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.concurrency)
		for i := range groundTruth {
			g.Go(func() error { return work(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, Stats{}, err
		}
	} else {
		for i := range groundTruth {
			if err := work(ctx, i); err != nil {
				return nil, Stats{}, err
			}
		}
	}

	stats := Stats{Processed: len(groundTruth)}
	for i, ok := range succeeded {
		if ok {
			stats.Succeeded++
			continue
		}
		stats.FailedAddresses = append(stats.FailedAddresses,
			groundTruth[i].Get(schema.FieldContractAddress))
	}

	p.logger.Info("prediction run complete",
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"failed", len(stats.FailedAddresses))

	return predictions, stats, nil
}

// predictOne returns the prediction record for one address and
// whether the knowledge source produced a valid result. On any
// failure the record keeps the address and empty predicted fields.
func (p *Predictor) predictOne(ctx context.Context, address string) (api.Record, bool) {
	prediction := emptyPrediction(address)

	if address == "" {
		p.logger.Warn("record has no contract address, emitting empty prediction")
		return prediction, false
	}

	chain := ChainName(address)
	p.logger.Info("querying knowledge source", "address", address, "chain", chain)

	data, err := p.llm.StructuredGenerate(ctx, buildPrompt(address, chain), generationSchema())
	if err != nil {
		p.logger.Warn("knowledge source query failed",
			"address", address, "error", fmt.Sprintf("%v: %v", api.ErrLLMGenerationFailed, err))
		return prediction, false
	}

	if err := p.validate(data); err != nil {
		p.logger.Warn("discarding invalid prediction", "address", address, "error", err)
		return prediction, false
	}

	for _, field := range schema.PredictedFields() {
		if v, ok := data[field].(string); ok {
			prediction[field] = strings.TrimSpace(v)
		}
	}

	if p.moderation != nil {
		p.moderateNote(ctx, address, prediction)
	}

	return prediction, true
}

func (p *Predictor) validate(data map[string]interface{}) error {
	result, err := p.validator.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", api.ErrInvalidPrediction, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("%w: %s", api.ErrInvalidPrediction, strings.Join(details, "; "))
	}
	return nil
}

// moderateNote blanks the generated note when the moderation provider
// flags it. Moderation errors leave the note untouched; the screen is
// best-effort.
func (p *Predictor) moderateNote(ctx context.Context, address string, prediction api.Record) {
	note := prediction[schema.FieldPublicNote]
	if note == "" {
		return
	}

	result, err := p.moderation.Moderate(ctx, note)
	if err != nil {
		p.logger.Warn("note moderation failed", "address", address, "error", err)
		return
	}

	for _, c := range result.Categories {
		if c.Confidence >= p.moderationThreshold {
			p.logger.Warn("blanking flagged note",
				"address", address, "category", c.Name, "confidence", c.Confidence)
			prediction[schema.FieldPublicNote] = ""
			return
		}
	}
}

func buildPrompt(address, chain string) string {
	var exclusions string
	if domains := ExcludedExplorerDomains(address); len(domains) > 0 {
		exclusions = fmt.Sprintf("\nDo not use the block explorer %s as a source.", strings.Join(domains, ", "))
	}
	return fmt.Sprintf(promptTemplate, chain, address, exclusions)
}

func emptyPrediction(address string) api.Record {
	prediction := api.Record{schema.FieldContractAddress: address}
	for _, field := range schema.PredictedFields() {
		prediction[field] = ""
	}
	return prediction
}

// generationSchema is the JSON schema handed to the generator so
// structured-output backends can constrain decoding. Unlike the
// validation schema it permits empty strings: "unknown" is a legal
// model answer, invalid only at acceptance time.
func generationSchema() map[string]interface{} {
	properties := make(map[string]interface{}, 4)
	required := make([]interface{}, 0, 4)
	for _, field := range schema.PredictedFields() {
		properties[field] = map[string]interface{}{"type": "string"}
		required = append(required, field)
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
