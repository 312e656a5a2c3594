package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestEvaluateCommand(t *testing.T) {
	dir := t.TempDir()

	groundTruthPath := filepath.Join(dir, "ground-truth.jsonl")
	predictionsPath := filepath.Join(dir, "predictions.jsonl")
	outPath := filepath.Join(dir, "results.json")

	groundTruth := `{"Contract Address":"eip155:1:0xabc","Project Name":"Acme","Public Note":"Token vault"}` + "\n"
	predictions := `{"Contract Address":"eip155:1:0xABC","Project Name":"Acme Inc","Public Note":"Vault for tokens"}` + "\n"

	if err := os.WriteFile(groundTruthPath, []byte(groundTruth), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(predictionsPath, []byte(predictions), 0644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{
		"evaluate",
		"--ground-truth", groundTruthPath,
		"--predictions", predictionsPath,
		"--out", outPath,
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("evaluate command error = %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if _, ok := doc["individual_results"]; !ok {
		t.Error("report missing individual_results")
	}
	if _, ok := doc["aggregate_results"]; !ok {
		t.Error("report missing aggregate_results")
	}
}

func TestEvaluateCommandMissingInput(t *testing.T) {
	dir := t.TempDir()

	rootCmd.SetArgs([]string{
		"evaluate",
		"--ground-truth", filepath.Join(dir, "absent.jsonl"),
		"--predictions", filepath.Join(dir, "also-absent.jsonl"),
		"--out", filepath.Join(dir, "results.json"),
	})
	if err := rootCmd.Execute(); err == nil {
		t.Error("evaluate with missing inputs expected error")
	}
}
