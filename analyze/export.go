package analyze

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/minios-linux/strkit/classify"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ExportStats is the summary block of an exported language.
type ExportStats struct {
	Total      int     `json:"total"`
	Translated int     `json:"translated"`
	Missing    int     `json:"missing"`
	Percentage float64 `json:"percentage"`
}

// MissingKey describes one untranslated key in the export.
type MissingKey struct {
	Key                 string `json:"key"`
	SourceValue         string `json:"source_value"`
	IsPattern           bool   `json:"is_pattern"`
	HasFormatSpecifiers bool   `json:"has_format_specifiers"`
}

// ExportLanguage is the exported document for one language.
type ExportLanguage struct {
	Stats       ExportStats  `json:"stats"`
	MissingKeys []MissingKey `json:"missing_keys"`
}

// Export builds the missing-keys report, one object per language in the
// requested order.
func Export(store Store, languages []string) *orderedmap.OrderedMap[string, *ExportLanguage] {
	doc := orderedmap.New[string, *ExportLanguage]()
	for _, lang := range languages {
		st := Language(store, lang)
		el := &ExportLanguage{
			Stats: ExportStats{
				Total:      st.TotalKeys,
				Translated: st.Translated,
				Missing:    st.Missing,
				Percentage: math.Round(st.Percentage()*10) / 10,
			},
			MissingKeys: make([]MissingKey, 0, len(st.MissingKeys)),
		}
		for _, key := range st.MissingKeys {
			src := store.SourceValue(key)
			el.MissingKeys = append(el.MissingKeys, MissingKey{
				Key:                 key,
				SourceValue:         src,
				IsPattern:           classify.IsPatternOnly(src),
				HasFormatSpecifiers: classify.HasFormatSpecifiers(src),
			})
		}
		doc.Set(lang, el)
	}
	return doc
}

// WriteExport writes the missing-keys report as indented JSON.
func WriteExport(path string, store Store, languages []string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(store, languages)); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
