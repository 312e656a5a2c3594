package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/datar-psa/tageval/api"
	"github.com/datar-psa/tageval/evaluator"
	"github.com/datar-psa/tageval/jsonl"
	"github.com/datar-psa/tageval/report"
	"github.com/datar-psa/tageval/schema"
)

var (
	evalGroundTruthPath string
	evalPredictionsPath string
	evalOutPath         string
	evalSchemaPath      string
	evalFailFast        bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a prediction dataset against ground truth",
	Long: "Evaluate compares two positionally aligned JSONL datasets field by\n" +
		"field, writes the full JSON report, and prints a per-field summary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fieldSchema := schema.Default()
		thresholds := api.DefaultThresholds()
		if evalSchemaPath != "" {
			cfg, err := schema.Load(evalSchemaPath)
			if err != nil {
				return fmt.Errorf("load schema: %w", err)
			}
			fieldSchema = cfg.Fields
			thresholds = cfg.Thresholds
		}

		groundTruth, err := jsonl.Load(evalGroundTruthPath)
		if err != nil {
			return fmt.Errorf("load ground truth: %w", err)
		}
		predictions, err := jsonl.Load(evalPredictionsPath)
		if err != nil {
			return fmt.Errorf("load predictions: %w", err)
		}

		opts := []evaluator.Option{
			evaluator.WithSchema(fieldSchema),
			evaluator.WithThresholds(thresholds),
		}
		if evalFailFast {
			opts = append(opts, evaluator.WithFailFast())
		}
		e, err := evaluator.New(opts...)
		if err != nil {
			return fmt.Errorf("build evaluator: %w", err)
		}

		result, err := e.Evaluate(groundTruth, predictions)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}

		emitter := report.NewEmitter(fieldSchema)
		if err := emitter.WriteFile(evalOutPath, result); err != nil {
			return err
		}

		emitter.Summary(os.Stdout, result)
		fmt.Printf("\nDetailed results saved to %q\n", evalOutPath)
		return nil
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evalGroundTruthPath, "ground-truth", "", "ground truth JSONL file (required)")
	evaluateCmd.Flags().StringVar(&evalPredictionsPath, "predictions", "", "predictions JSONL file (required)")
	evaluateCmd.Flags().StringVarP(&evalOutPath, "out", "o", "evaluation_results.json", "report output path")
	evaluateCmd.Flags().StringVar(&evalSchemaPath, "schema", "", "YAML field registry overriding the built-in schema")
	evaluateCmd.Flags().BoolVar(&evalFailFast, "fail-fast", false, "treat a record count mismatch as an error instead of truncating")
	_ = evaluateCmd.MarkFlagRequired("ground-truth")
	_ = evaluateCmd.MarkFlagRequired("predictions")
}
