package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/strkit/analyze"
	"github.com/minios-linux/strkit/catalog"
)

func testCatalog(t *testing.T, n int) *catalog.File {
	t.Helper()
	f := catalog.New("en")
	f.Add("%@", &catalog.Entry{})
	f.Add("Settings", &catalog.Entry{})
	for i := 0; i < n; i++ {
		f.Add(fmt.Sprintf("Text number %d", i), &catalog.Entry{})
	}
	f.ApplyTranslation("Settings", "de", "Einstellungen")
	return f
}

func TestAnalysis(t *testing.T) {
	f := testCatalog(t, 1)
	stats := analyze.Analyze(f, []string{"de"})

	var buf bytes.Buffer
	Analysis(&buf, f, []string{"de"}, stats, AnalysisOptions{
		Stale:     map[string][]string{"de": {"Settings"}},
		Fallbacks: map[string][]string{"de": {"a", "b"}},
	})
	out := buf.String()

	assert.Contains(t, out, "LOCALIZATION ANALYSIS REPORT")
	assert.Contains(t, out, "🌍 DE (Deutsch)")
	assert.Contains(t, out, "Total keys:")
	assert.Contains(t, out, "1 (33.3%)")
	assert.Contains(t, out, "Stale:")
	assert.Contains(t, out, "Fallback copies:")
	assert.Contains(t, out, "Legend:")
	assert.NotContains(t, out, "Missing keys")
}

func TestAnalysisVerboseListsMissingKeys(t *testing.T) {
	f := testCatalog(t, 25)
	stats := analyze.Analyze(f, []string{"de"})

	var buf bytes.Buffer
	Analysis(&buf, f, []string{"de"}, stats, AnalysisOptions{Verbose: true})
	out := buf.String()

	assert.Contains(t, out, "Missing keys (20 of 26):")
	assert.Contains(t, out, "📋 %@")
	assert.Contains(t, out, "📝 Text number 0")
	assert.NotContains(t, out, "Text number 19")
	assert.Contains(t, out, "... and 6 more keys")
}

func TestAnalysisSkipsUnknownLanguages(t *testing.T) {
	f := testCatalog(t, 0)
	var buf bytes.Buffer
	Analysis(&buf, f, []string{"fr"}, map[string]*analyze.Stats{}, AnalysisOptions{})
	assert.NotContains(t, buf.String(), "🌍")
}

func TestSummary(t *testing.T) {
	stats := map[string]*analyze.Stats{
		"de": {Language: "de", PatternsCopied: 3, TextsTranslated: 5, Errors: 1},
		"it": {Language: "it", PatternsCopied: 1, TextsTranslated: 2},
	}

	var buf bytes.Buffer
	Summary(&buf, []string{"de", "it"}, stats)
	out := buf.String()

	require.Contains(t, out, "PROCESSING SUMMARY")
	assert.Less(t, strings.Index(out, "🌍 DE"), strings.Index(out, "🌍 IT"))
	assert.Contains(t, out, "TOTALS")
	assert.Regexp(t, `Total processed:\s+11`, out)
	assert.Regexp(t, `Total translated:\s+7`, out)
	assert.Regexp(t, `Total errors:\s+1`, out)
}

func TestBar(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "░░░░░░░░░░"},
		{50, "█████░░░░░"},
		{100, "██████████"},
		{150, "██████████"},
	}
	for _, tc := range tests {
		assert.Contains(t, Bar(tc.pct, 10), tc.want, "pct %v", tc.pct)
	}
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "short", shorten("short", 10))
	assert.Equal(t, "Grüße...", shorten("Grüße aus Berlin", 5))
}

func TestProgressLogLines(t *testing.T) {
	var lines []string
	p := NewProgress(&bytes.Buffer{}, false, func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})

	p.Update("de", 0, 3)
	p.Update("de", 2, 3)
	p.Update("de", 3, 3)
	p.Update("it", 0, 0)
	p.Close()

	assert.Equal(t, []string{
		"🇩🇪 Deutsch (de): 3 texts to translate",
		"de: 2/3",
		"de: 3/3",
	}, lines)
}

func TestProgressBarWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, true, nil)

	p.Update("de", 0, 2)
	p.Update("de", 2, 2)
	p.Update("it", 0, 1)
	p.Close()

	assert.Contains(t, buf.String(), "Deutsch")
	assert.Contains(t, buf.String(), "Italiano")
	assert.Nil(t, p.bar)
}
