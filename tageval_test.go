package tageval_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/datar-psa/tageval"
	"github.com/fatih/color"
)

func TestEvaluateAndSummarize(t *testing.T) {
	e, err := tageval.NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}

	groundTruth := []tageval.Record{
		{
			"Contract Address": "eip155:1:0xabc",
			"Project Name":     "Acme",
			"Public Name Tag":  "Acme: Vault",
			"UI/Website Link":  "acme.xyz",
			"Public Note":      "Token vault for the Acme protocol",
		},
	}
	predictions := []tageval.Record{
		{
			"Contract Address": "eip155:1:0xABC",
			"Project Name":     "Acme",
			"Public Name Tag":  "Acme Vault",
			"UI/Website Link":  "acme.xyz",
			"Public Note":      "Vault holding tokens for Acme",
		},
	}

	report, err := e.Evaluate(groundTruth, predictions)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if m := report.AggregateResults["Contract Address"]; m.ExactMatchRate != 1.0 {
		t.Errorf("contract address exact match rate = %v, want 1.0", m.ExactMatchRate)
	}
	if m := report.AggregateResults["Public Name Tag"]; m.NearMatchRate != 1.0 {
		t.Errorf("public name tag near match rate = %v, want 1.0", m.NearMatchRate)
	}

	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	tageval.NewEmitter(tageval.DefaultSchema()).Summary(&buf, report)
	if !strings.Contains(buf.String(), "Evaluation Summary:") {
		t.Errorf("summary output missing header: %q", buf.String())
	}
}
