package predict

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/datar-psa/tageval/api"
	"github.com/datar-psa/tageval/schema"
)

// mockGenerator returns canned structured responses keyed by the
// address mentioned in the prompt.
type mockGenerator struct {
	responses map[string]map[string]interface{}
	err       error

	mu      sync.Mutex
	prompts []string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("not used")
}

func (m *mockGenerator) StructuredGenerate(ctx context.Context, prompt string, schema map[string]interface{}) (map[string]interface{}, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for address, response := range m.responses {
		if strings.Contains(prompt, address) {
			return response, nil
		}
	}
	return nil, fmt.Errorf("no canned response")
}

type mockModeration struct {
	categories []api.ModerationCategory
	err        error
}

func (m *mockModeration) Moderate(ctx context.Context, content string) (*api.ModerationResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &api.ModerationResult{Categories: m.categories}, nil
}

func validResponse() map[string]interface{} {
	return map[string]interface{}{
		"Project Name":    "Acme",
		"Public Name Tag": "Acme: Vault",
		"UI/Website Link": "acme.xyz",
		"Public Note":     "Token vault for the Acme protocol",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(new(bytes.Buffer), nil))
}

func newPredictor(t *testing.T, llm api.LLMGenerator, opts ...Option) *Predictor {
	t.Helper()
	opts = append(opts, WithDelay(-1), WithLogger(testLogger()))
	p, err := New(llm, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestPredictDataset(t *testing.T) {
	gen := &mockGenerator{responses: map[string]map[string]interface{}{
		"eip155:1:0xabc": validResponse(),
	}}

	groundTruth := []api.Record{{schema.FieldContractAddress: "eip155:1:0xabc"}}

	predictions, stats, err := newPredictor(t, gen).PredictDataset(context.Background(), groundTruth)
	if err != nil {
		t.Fatalf("PredictDataset() error = %v", err)
	}

	if stats.Processed != 1 || stats.Succeeded != 1 || len(stats.FailedAddresses) != 0 {
		t.Errorf("stats = %+v, want one success", stats)
	}

	pred := predictions[0]
	if pred.Get(schema.FieldContractAddress) != "eip155:1:0xabc" {
		t.Errorf("address = %q, want carried over from input", pred.Get(schema.FieldContractAddress))
	}
	if pred.Get(schema.FieldProjectName) != "Acme" {
		t.Errorf("project name = %q, want Acme", pred.Get(schema.FieldProjectName))
	}
	if pred.Get(schema.FieldPublicNote) == "" {
		t.Error("public note is empty, want populated")
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("generator called %d times, want 1", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "Ethereum") {
		t.Errorf("prompt does not name the chain: %q", gen.prompts[0])
	}
	if !strings.Contains(gen.prompts[0], "etherscan.io") {
		t.Errorf("prompt does not exclude the explorer domain: %q", gen.prompts[0])
	}
}

func TestPredictDatasetFailuresYieldEmptyRecords(t *testing.T) {
	tests := []struct {
		name string
		gen  *mockGenerator
	}{
		{
			name: "generation error",
			gen:  &mockGenerator{err: fmt.Errorf("upstream unavailable")},
		},
		{
			name: "missing required field",
			gen: &mockGenerator{responses: map[string]map[string]interface{}{
				"eip155:1:0xabc": {
					"Project Name":    "Acme",
					"Public Name Tag": "Acme: Vault",
					// UI/Website Link and Public Note absent
				},
			}},
		},
		{
			name: "empty field rejected by validation",
			gen: &mockGenerator{responses: map[string]map[string]interface{}{
				"eip155:1:0xabc": {
					"Project Name":    "",
					"Public Name Tag": "Acme: Vault",
					"UI/Website Link": "acme.xyz",
					"Public Note":     "Vault",
				},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groundTruth := []api.Record{{schema.FieldContractAddress: "eip155:1:0xabc"}}

			predictions, stats, err := newPredictor(t, tt.gen).PredictDataset(context.Background(), groundTruth)
			if err != nil {
				t.Fatalf("PredictDataset() error = %v", err)
			}

			// Alignment is preserved: one output record with the
			// address set and every predicted field empty.
			if len(predictions) != 1 {
				t.Fatalf("predictions = %d, want 1", len(predictions))
			}
			pred := predictions[0]
			if pred.Get(schema.FieldContractAddress) != "eip155:1:0xabc" {
				t.Errorf("address = %q, want preserved", pred.Get(schema.FieldContractAddress))
			}
			for _, field := range schema.PredictedFields() {
				if pred.Get(field) != "" {
					t.Errorf("field %q = %q, want empty on failure", field, pred.Get(field))
				}
			}
			if stats.Succeeded != 0 || len(stats.FailedAddresses) != 1 {
				t.Errorf("stats = %+v, want one failure", stats)
			}
		})
	}
}

func TestPredictDatasetPreservesOrderConcurrently(t *testing.T) {
	addresses := []string{
		"eip155:1:0xaaa", "eip155:1:0xbbb", "eip155:1:0xccc",
		"eip155:1:0xddd", "eip155:1:0xeee",
	}

	responses := make(map[string]map[string]interface{}, len(addresses))
	groundTruth := make([]api.Record, len(addresses))
	for i, addr := range addresses {
		r := validResponse()
		r["Project Name"] = addr
		responses[addr] = r
		groundTruth[i] = api.Record{schema.FieldContractAddress: addr}
	}

	gen := &mockGenerator{responses: responses}
	predictions, stats, err := newPredictor(t, gen, WithConcurrency(3)).PredictDataset(context.Background(), groundTruth)
	if err != nil {
		t.Fatalf("PredictDataset() error = %v", err)
	}
	if stats.Succeeded != len(addresses) {
		t.Fatalf("stats = %+v, want all succeeded", stats)
	}

	for i, addr := range addresses {
		if got := predictions[i].Get(schema.FieldProjectName); got != addr {
			t.Errorf("predictions[%d] project name = %q, want %q (order preserved)", i, got, addr)
		}
	}
}

func TestPredictDatasetModerationBlanksNote(t *testing.T) {
	gen := &mockGenerator{responses: map[string]map[string]interface{}{
		"eip155:1:0xabc": validResponse(),
	}}
	moderation := &mockModeration{categories: []api.ModerationCategory{
		{Name: "Toxic", Confidence: 0.95},
	}}

	groundTruth := []api.Record{{schema.FieldContractAddress: "eip155:1:0xabc"}}
	predictions, _, err := newPredictor(t, gen, WithModeration(moderation, 0.8)).PredictDataset(context.Background(), groundTruth)
	if err != nil {
		t.Fatalf("PredictDataset() error = %v", err)
	}

	if got := predictions[0].Get(schema.FieldPublicNote); got != "" {
		t.Errorf("flagged note = %q, want blanked", got)
	}
	if got := predictions[0].Get(schema.FieldProjectName); got != "Acme" {
		t.Errorf("project name = %q, want untouched by moderation", got)
	}
}

func TestPredictDatasetModerationBelowThresholdKeepsNote(t *testing.T) {
	gen := &mockGenerator{responses: map[string]map[string]interface{}{
		"eip155:1:0xabc": validResponse(),
	}}
	moderation := &mockModeration{categories: []api.ModerationCategory{
		{Name: "Finance", Confidence: 0.4},
	}}

	groundTruth := []api.Record{{schema.FieldContractAddress: "eip155:1:0xabc"}}
	predictions, _, err := newPredictor(t, gen, WithModeration(moderation, 0.8)).PredictDataset(context.Background(), groundTruth)
	if err != nil {
		t.Fatalf("PredictDataset() error = %v", err)
	}

	if got := predictions[0].Get(schema.FieldPublicNote); got == "" {
		t.Error("note below moderation threshold was blanked")
	}
}

func TestPredictDatasetContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &mockGenerator{responses: map[string]map[string]interface{}{
		"eip155:1:0xabc": validResponse(),
	}}
	groundTruth := []api.Record{{schema.FieldContractAddress: "eip155:1:0xabc"}}

	if _, _, err := newPredictor(t, gen).PredictDataset(ctx, groundTruth); err == nil {
		t.Error("PredictDataset() with canceled context expected error")
	}
}

func TestNewRequiresGenerator(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) expected error")
	}
}
