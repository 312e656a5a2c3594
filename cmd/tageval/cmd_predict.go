package main

import (
	"fmt"
	"os"
	"time"

	language "cloud.google.com/go/language/apiv1"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/datar-psa/tageval"
	"github.com/datar-psa/tageval/jsonl"
	"github.com/datar-psa/tageval/predict"
)

var (
	predictInputPath   string
	predictOutPath     string
	predictModel       string
	predictDelay       time.Duration
	predictConcurrency int
	predictModerate    bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Generate tag predictions for a ground-truth dataset",
	Long: "Predict queries a Gemini model for each contract address in the\n" +
		"input dataset and writes one prediction per line, in input order.\n" +
		"Failed lookups produce empty records so alignment is preserved.\n" +
		"Requires GEMINI_API_KEY.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		groundTruth, err := jsonl.Load(predictInputPath)
		if err != nil {
			return fmt.Errorf("load input: %w", err)
		}

		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is not set")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  apiKey,
		})
		if err != nil {
			return fmt.Errorf("create gemini client: %w", err)
		}

		var langClient *language.Client
		if predictModerate {
			langClient, err = language.NewClient(ctx)
			if err != nil {
				return fmt.Errorf("create language client: %w", err)
			}
			defer langClient.Close()
		}

		p, err := tageval.NewGeminiPredictor(client, predictModel, langClient,
			predict.WithDelay(predictDelay),
			predict.WithConcurrency(predictConcurrency),
		)
		if err != nil {
			return fmt.Errorf("build predictor: %w", err)
		}

		predictions, stats, err := p.PredictDataset(ctx, groundTruth)
		if err != nil {
			return fmt.Errorf("predict: %w", err)
		}

		if err := jsonl.Write(predictOutPath, predictions); err != nil {
			return fmt.Errorf("write predictions: %w", err)
		}

		fmt.Printf("Processed %d entries, %d successful, %d failed\n",
			stats.Processed, stats.Succeeded, len(stats.FailedAddresses))
		for _, addr := range stats.FailedAddresses {
			fmt.Printf("  failed: %s\n", addr)
		}
		fmt.Printf("Predictions saved to %q\n", predictOutPath)
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictInputPath, "input", "", "ground truth JSONL file (required)")
	predictCmd.Flags().StringVarP(&predictOutPath, "out", "o", "predictions.jsonl", "predictions output path")
	predictCmd.Flags().StringVar(&predictModel, "model", "gemini-2.5-flash", "Gemini model name")
	predictCmd.Flags().DurationVar(&predictDelay, "delay", time.Second, "pause between knowledge source calls")
	predictCmd.Flags().IntVar(&predictConcurrency, "concurrency", 1, "bounded worker count (order is preserved)")
	predictCmd.Flags().BoolVar(&predictModerate, "moderate", false, "screen generated notes via Cloud Natural Language")
	_ = predictCmd.MarkFlagRequired("input")
}
