// Package testutils provides helpers for integration tests that talk
// to Google APIs: hypert-cached HTTP clients and preconfigured Gemini
// clients. Cached responses live under each package's testdata
// directory; set UPDATE_TESTS=true to re-record them.
package testutils

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/areknoster/hypert"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/genai"

	"github.com/datar-psa/tageval/gemini"
)

// ShouldUpdate returns true if tests should update cached HTTP responses
// Set UPDATE_TESTS=true environment variable to update cached responses
func ShouldUpdate() bool {
	return os.Getenv("UPDATE_TESTS") == "true"
}

// HypertClientConfig configures hypert client creation
type HypertClientConfig struct {
	TestDataDir string
	SubDir      string // Optional subdirectory for organizing test data
	// QuotaProjectID, when set, is sent as the quota project header in
	// record mode. Required by some Google Cloud APIs.
	QuotaProjectID string
}

// quotaProjectTransport wraps an http.RoundTripper to add the quota
// project header.
type quotaProjectTransport struct {
	base      http.RoundTripper
	projectID string
}

func (t *quotaProjectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-Goog-User-Project", t.projectID)
	return t.base.RoundTrip(req)
}

// NewHypertClient creates an hypert client that replays cached HTTP
// responses, or records real ones when UPDATE_TESTS is set. Record
// mode authenticates via application default credentials.
func NewHypertClient(t *testing.T, config HypertClientConfig) *http.Client {
	testDataDir := config.TestDataDir
	if config.SubDir != "" {
		testDataDir = filepath.Join(testDataDir, config.SubDir)
	}

	namingScheme, err := hypert.NewContentHashNamingScheme(testDataDir)
	if err != nil {
		t.Fatalf("failed to create naming scheme: %v", err)
	}

	hypertClient := hypert.TestClient(t, ShouldUpdate(),
		hypert.WithNamingScheme(namingScheme),
		hypert.WithRequestValidator(hypert.ComposedRequestValidator(
			hypert.PathValidator(),
			hypert.QueryParamsValidator(),
			hypert.MethodValidator(),
		)),
	)

	if !ShouldUpdate() {
		return hypertClient
	}

	ctx := context.Background()
	creds, err := google.FindDefaultCredentials(ctx)
	if err != nil {
		t.Fatalf("failed to get default credentials: %v", err)
	}
	authClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, hypertClient), creds.TokenSource)

	if config.QuotaProjectID == "" {
		return authClient
	}
	return &http.Client{
		Transport: &quotaProjectTransport{
			base:      authClient.Transport,
			projectID: config.QuotaProjectID,
		},
		Timeout: authClient.Timeout,
	}
}

// GeminiTestConfig configures Gemini client creation for tests
type GeminiTestConfig struct {
	Project  string
	Location string
	SubDir   string // Subdirectory for hypert test data
}

// DefaultGeminiTestConfig returns a default configuration for Gemini testing
func DefaultGeminiTestConfig(subDir string) GeminiTestConfig {
	return GeminiTestConfig{
		Project:  os.Getenv("GOOGLE_PROJECT_ID"),
		Location: os.Getenv("GOOGLE_REGION"),
		SubDir:   subDir,
	}
}

// NewGeminiClient creates a new Gemini client for testing with hypert caching
func NewGeminiClient(t *testing.T, config GeminiTestConfig) *genai.Client {
	ctx := context.Background()

	hypertClient := NewHypertClient(t, HypertClientConfig{
		TestDataDir: "testdata",
		SubDir:      config.SubDir,
	})

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:    genai.BackendVertexAI,
		Project:    config.Project,
		Location:   config.Location,
		HTTPClient: hypertClient,
	})
	if err != nil {
		t.Fatalf("failed to create genai client: %v", err)
	}

	return genaiClient
}

// NewGeminiGenerator creates a new Gemini generator for testing
func NewGeminiGenerator(t *testing.T, config GeminiTestConfig, modelName string) *gemini.Generator {
	genaiClient := NewGeminiClient(t, config)
	return gemini.NewGenerator(genaiClient, modelName)
}
