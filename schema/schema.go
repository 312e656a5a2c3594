// Package schema defines the fixed field registry for contract tag
// records and supports loading an alternative registry, plus the
// comparison thresholds, from a YAML configuration file.
package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/datar-psa/tageval/api"
)

// Recognized field names of the built-in registry.
const (
	FieldContractAddress = "Contract Address"
	FieldPublicNameTag   = "Public Name Tag"
	FieldProjectName     = "Project Name"
	FieldWebsiteLink     = "UI/Website Link"
	FieldPublicNote      = "Public Note"
)

// Default returns the built-in five-field registry in declaration
// order. Callers get a fresh copy; the registry is never mutated.
func Default() api.Schema {
	return api.Schema{
		{Name: FieldContractAddress, Kind: api.KindAddress, Identifier: true, Strategy: api.StrategyExact},
		{Name: FieldPublicNameTag, Kind: api.KindText, Identifier: true, Strategy: api.StrategyNearMatch},
		{Name: FieldProjectName, Kind: api.KindText, Identifier: true, Strategy: api.StrategyNearMatch},
		{Name: FieldWebsiteLink, Kind: api.KindLink, Identifier: true, Strategy: api.StrategyExact},
		{Name: FieldPublicNote, Kind: api.KindText, Identifier: false, Strategy: api.StrategySemantic},
	}
}

// PredictedFields returns the names of the fields a prediction source
// is expected to populate: every field except the contract address,
// which identifies the record rather than describing it.
func PredictedFields() []string {
	return []string{FieldProjectName, FieldPublicNameTag, FieldWebsiteLink, FieldPublicNote}
}

// Config is the YAML document shape accepted by Load.
type Config struct {
	Fields     api.Schema     `yaml:"fields"`
	Thresholds api.Thresholds `yaml:"thresholds"`
}

// Load reads a registry plus thresholds from a YAML file. Omitted
// thresholds fall back to the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open schema config: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a registry plus thresholds from YAML.
func Parse(r io.Reader) (Config, error) {
	defaults := api.DefaultThresholds()
	cfg := Config{Thresholds: defaults}

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse schema config: %w", err)
	}

	if cfg.Thresholds.NearMatch <= 0 {
		cfg.Thresholds.NearMatch = defaults.NearMatch
	}
	if cfg.Thresholds.Semantic <= 0 {
		cfg.Thresholds.Semantic = defaults.Semantic
	}

	if err := Validate(cfg.Fields); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that a registry is non-empty, free of duplicate
// field names, and declares only known strategies.
func Validate(s api.Schema) error {
	if len(s) == 0 {
		return api.ErrEmptySchema
	}

	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		if f.Name == "" {
			return fmt.Errorf("field spec with empty name")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		if !f.Strategy.Valid() {
			return fmt.Errorf("field %q: %w: %q", f.Name, api.ErrUnknownStrategy, f.Strategy)
		}
	}
	return nil
}
