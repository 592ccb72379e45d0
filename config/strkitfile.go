package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// FileName is the project configuration file name.
const FileName = ".strkit.yaml"

// DefaultBatchSize is the number of texts per translation request.
const DefaultBatchSize = 50

// DefaultLanguages are translated when neither the flags nor the
// configuration name any.
var DefaultLanguages = []string{"it", "fr", "de", "es"}

// File is the top-level .strkit.yaml structure.
type File struct {
	// Catalog is the .xcstrings path relative to the project root.
	Catalog string `yaml:"catalog,omitempty"`
	// SourceLang is the source language code (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`
	// Languages are the target languages, in processing order.
	Languages []string `yaml:"languages,omitempty"`
	// BatchSize is how many texts are sent per request (default 50).
	BatchSize int `yaml:"batch_size,omitempty"`
	// LanguageOverrides maps catalog codes to translation service codes.
	LanguageOverrides map[string]string `yaml:"language_overrides,omitempty"`

	// Provider is the translation service ID (default "google-translate").
	Provider string `yaml:"provider,omitempty"`
	// Model is the model used by LLM providers.
	Model string `yaml:"model,omitempty"`
	// BaseURL overrides the provider endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// Timeout is the per-request timeout, e.g. "90s".
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadFile loads and validates .strkit.yaml from the given directory.
// Returns nil if no .strkit.yaml exists.
func LoadFile(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", f.BatchSize)
	}
	if f.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", f.Timeout)
	}
	for i, lang := range f.Languages {
		lang = strings.TrimSpace(lang)
		if lang == "" {
			return fmt.Errorf("languages[%d] is empty", i)
		}
		f.Languages[i] = lang
	}
	for from, to := range f.LanguageOverrides {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return fmt.Errorf("language_overrides has an empty code (%q: %q)", from, to)
		}
	}
	return nil
}
