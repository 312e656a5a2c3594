// Package report serializes evaluation reports to a durable JSON sink
// and prints the condensed per-field console summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/datar-psa/tageval/api"
)

// Emitter writes evaluation reports. The summary iterates fields in
// schema declaration order; the report itself is never mutated.
type Emitter struct {
	schema api.Schema
}

// NewEmitter builds an Emitter for the given field registry.
func NewEmitter(s api.Schema) *Emitter {
	return &Emitter{schema: s}
}

// WriteTo serializes the full report as indented JSON.
func (e *Emitter) WriteTo(w io.Writer, r *api.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFile serializes the full report to path. A failure here is
// fatal to the run: no partial report is silently kept.
func (e *Emitter) WriteFile(path string, r *api.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	if err := e.WriteTo(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write report %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// Summary prints the condensed per-field summary: F1/precision/recall
// for exact and near-match fields, the semantic similarity rate for
// semantic fields. Fields appear in schema declaration order.
func (e *Emitter) Summary(w io.Writer, r *api.Report) {
	fieldName := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w, "\nEvaluation Summary:")
	for _, f := range e.schema {
		m, ok := r.AggregateResults[f.Name]
		if !ok {
			continue
		}

		fmt.Fprintf(w, "\n%s:\n", fieldName.Sprint(f.Name))
		if m.Strategy == api.StrategySemantic {
			fmt.Fprintf(w, "  Semantic Similarity Rate: %.2f\n", m.SemanticSimilarityRate)
			continue
		}
		fmt.Fprintf(w, "  F1 Score: %.2f\n", m.F1Score)
		fmt.Fprintf(w, "  Precision: %.2f\n", m.Precision)
		fmt.Fprintf(w, "  Recall: %.2f\n", m.Recall)
	}
}
