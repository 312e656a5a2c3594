package predict

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/datar-psa/tageval/api"
	"github.com/datar-psa/tageval/internal/testutils"
	"github.com/datar-psa/tageval/schema"
)

// TestPredictDataset_Integration runs the prediction pipeline against
// real Gemini API calls, cached through hypert.
func TestPredictDataset_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := os.Stat(filepath.Join("testdata", "predict")); err != nil && !testutils.ShouldUpdate() {
		t.Skip("no recorded responses; set UPDATE_TESTS=true to record")
	}

	ctx := context.Background()

	llm := testutils.NewGeminiGenerator(t, testutils.DefaultGeminiTestConfig("predict"), "publishers/google/models/gemini-2.5-flash")

	p, err := New(llm, WithDelay(100*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	groundTruth := []api.Record{
		{schema.FieldContractAddress: "eip155:1:0xdAC17F958D2ee523a2206206994597C13D831ec7"},
	}

	predictions, stats, err := p.PredictDataset(ctx, groundTruth)
	if err != nil {
		t.Fatalf("PredictDataset() error = %v", err)
	}

	if len(predictions) != 1 {
		t.Fatalf("predictions = %d, want 1", len(predictions))
	}
	if got := predictions[0].Get(schema.FieldContractAddress); got != groundTruth[0].Get(schema.FieldContractAddress) {
		t.Errorf("address = %q, want carried over", got)
	}
	if stats.Processed != 1 {
		t.Errorf("stats = %+v, want one processed record", stats)
	}
}
