// Package gemini provides Gemini-backed implementations of the
// knowledge-source and moderation interfaces consumed by the predict
// package.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/datar-psa/tageval/api"
)

// Generator wraps a genai.Client to implement the LLMGenerator interface
type Generator struct {
	client    *genai.Client
	modelName string
}

// NewGenerator creates a new Gemini generator
// client: genai.Client from google.golang.org/genai
// modelName: the model to use (e.g., "gemini-2.5-flash")
func NewGenerator(client *genai.Client, modelName string) *Generator {
	return &Generator{
		client:    client,
		modelName: modelName,
	}
}

// Generate implements LLMGenerator.Generate
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.generate(ctx, prompt, &genai.GenerateContentConfig{})
}

// StructuredGenerate implements LLMGenerator.StructuredGenerate. The
// schema is appended to the prompt and the model is constrained to
// JSON output; the decoded object is returned as a map.
func (g *Generator) StructuredGenerate(ctx context.Context, prompt string, schema map[string]interface{}) (map[string]interface{}, error) {
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	fullPrompt := fmt.Sprintf("%s\n\nRespond with a single JSON object matching this JSON schema:\n%s", prompt, schemaJSON)

	text, err := g.generate(ctx, fullPrompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &data); err != nil {
		return nil, fmt.Errorf("parse structured response: %w", err)
	}
	return data, nil
}

func (g *Generator) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	content := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
		},
	}

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.modelName,
		[]*genai.Content{content},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	if len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no parts in response")
	}

	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// stripCodeFences removes a surrounding markdown code block, which
// some models emit even when asked for bare JSON.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines[1:], "\n"))
}

// Verify that Generator implements LLMGenerator
var _ api.LLMGenerator = (*Generator)(nil)
