package gemini

import (
	"context"
	"fmt"

	language "cloud.google.com/go/language/apiv1"
	languagepb "cloud.google.com/go/language/apiv1/languagepb"

	"github.com/datar-psa/tageval/api"
)

// GoogleLanguageProvider implements ModerationProvider using the
// Google Cloud Natural Language API. The predict package uses it to
// screen machine-generated public notes before they are kept.
type GoogleLanguageProvider struct {
	client *language.Client
}

// NewGoogleLanguageProvider creates a new provider using a preconfigured *language.Client (auth handled by caller)
func NewGoogleLanguageProvider(client *language.Client) api.ModerationProvider {
	return &GoogleLanguageProvider{client: client}
}

// Moderate analyzes content for safety using Google Cloud Natural Language API
func (p *GoogleLanguageProvider) Moderate(ctx context.Context, content string) (*api.ModerationResult, error) {
	if p.client == nil {
		return nil, fmt.Errorf("language client is required")
	}

	req := &languagepb.ModerateTextRequest{
		Document: &languagepb.Document{
			Type: languagepb.Document_PLAIN_TEXT,
			Source: &languagepb.Document_Content{
				Content: content,
			},
		},
	}

	resp, err := p.client.ModerateText(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("moderate text failed: %w", err)
	}

	categories := make([]api.ModerationCategory, 0, len(resp.ModerationCategories))
	for _, c := range resp.ModerationCategories {
		categories = append(categories, api.ModerationCategory{
			Name:       mapCategoryName(c.Name),
			Confidence: float64(c.Confidence),
		})
	}

	return &api.ModerationResult{Categories: categories}, nil
}

// googleCategoryNames maps Google Cloud Natural Language API category
// names to the developer-friendly names in api.ModerationCategories.
var googleCategoryNames = map[string]string{
	"Toxic":                 "Toxic",
	"Derogatory":            "Derogatory",
	"Violent":               "Violent",
	"Sexual":                "Sexual",
	"Insult":                "Insult",
	"Profanity":             "Profanity",
	"Death, Harm & Tragedy": "DeathHarmTragedy",
	"Firearms & Weapons":    "FirearmsWeapons",
	"Public Safety":         "PublicSafety",
	"Health":                "Health",
	"Religion & Belief":     "ReligionBelief",
	"Illicit Drugs":         "IllicitDrugs",
	"War & Conflict":        "WarConflict",
	"Finance":               "Finance",
	"Politics":              "Politics",
	"Legal":                 "Legal",
}

func mapCategoryName(googleCategory string) string {
	if name, ok := googleCategoryNames[googleCategory]; ok {
		return name
	}
	// Return original name if not recognized
	return googleCategory
}
