// Package config resolves the settings of a strkit run from .strkit.yaml,
// built-in defaults and catalog auto-detection.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoCatalog is returned when no .xcstrings file can be located.
var ErrNoCatalog = errors.New("no .xcstrings catalog found")

// catalogCandidates are tried in order when no catalog is configured.
var catalogCandidates = []string{
	filepath.Join("Cash", "Localizable.xcstrings"),
	"Localizable.xcstrings",
}

// Project holds the resolved settings of a project.
type Project struct {
	// Root is the absolute project root.
	Root string
	// Catalog is the configured catalog path, relative to Root (may be empty).
	Catalog string
	// SourceLang is the catalog's source language.
	SourceLang string
	// Languages are the target languages.
	Languages []string
	// BatchSize is the number of texts per translation request.
	BatchSize int
	// LanguageOverrides maps catalog codes to translation service codes.
	// Nil means the translator's defaults.
	LanguageOverrides map[string]string

	Provider string
	Model    string
	BaseURL  string
	Timeout  time.Duration

	// ConfigFile is the path of the loaded .strkit.yaml, or "".
	ConfigFile string
}

// Detect loads .strkit.yaml from rootDir, if present, on top of the
// defaults.
func Detect(rootDir string) (*Project, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	p := &Project{
		Root:       absRoot,
		SourceLang: "en",
		Languages:  append([]string(nil), DefaultLanguages...),
		BatchSize:  DefaultBatchSize,
	}

	f, err := LoadFile(absRoot)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return p, nil
	}

	p.ConfigFile = filepath.Join(absRoot, FileName)
	p.Catalog = f.Catalog
	if f.SourceLang != "" {
		p.SourceLang = f.SourceLang
	}
	if len(f.Languages) > 0 {
		p.Languages = dedupe(f.Languages)
	}
	if f.BatchSize > 0 {
		p.BatchSize = f.BatchSize
	}
	p.LanguageOverrides = f.LanguageOverrides
	p.Provider = f.Provider
	p.Model = f.Model
	p.BaseURL = f.BaseURL
	p.Timeout = f.Timeout
	return p, nil
}

// FindCatalog returns the absolute catalog path. An explicit path wins over
// the configured one; otherwise the well-known locations are tried, then a
// single *.xcstrings file in the root or one directory below it.
func (p *Project) FindCatalog(explicit string) (string, error) {
	for _, candidate := range []string{explicit, p.Catalog} {
		if candidate == "" {
			continue
		}
		path := p.abs(candidate)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("catalog %s: %w", path, err)
		}
		return path, nil
	}

	for _, candidate := range catalogCandidates {
		path := filepath.Join(p.Root, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}

	var found []string
	for _, pattern := range []string{"*.xcstrings", filepath.Join("*", "*.xcstrings")} {
		matches, _ := filepath.Glob(filepath.Join(p.Root, pattern))
		found = append(found, matches...)
	}
	sort.Strings(found)
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w in %s", ErrNoCatalog, p.Root)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("multiple catalogs found (%s), choose one with --file", strings.Join(found, ", "))
	}
}

func (p *Project) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// SplitLanguages parses a comma-separated language list such as "de, fr".
func SplitLanguages(s string) []string {
	var langs []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			langs = append(langs, part)
		}
	}
	return dedupe(langs)
}

func dedupe(langs []string) []string {
	seen := make(map[string]bool, len(langs))
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
