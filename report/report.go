// Package report renders the analysis report, the processing summary and
// per-language translation progress for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/minios-linux/strkit/analyze"
	"github.com/minios-linux/strkit/classify"
	"github.com/minios-linux/strkit/i18n"
	"github.com/minios-linux/strkit/langmeta"
)

const (
	ruleWidth     = 60
	barWidth      = 30
	labelWidth    = 22
	maxListedKeys = 20
	maxKeyRunes   = 50
	patternMarker = "📋"
	textMarker    = "📝"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))
	langStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	labelStyle = lipgloss.NewStyle().
			Width(labelWidth)
	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// AnalysisOptions controls the analysis report.
type AnalysisOptions struct {
	// Verbose lists up to 20 missing keys per language.
	Verbose bool
	// Stale maps a language to keys whose source changed since translation.
	Stale map[string][]string
	// Fallbacks maps a language to keys holding a copy of the source text.
	Fallbacks map[string][]string
}

// Analysis writes the coverage report for languages, in that order.
func Analysis(w io.Writer, store analyze.Store, languages []string, stats map[string]*analyze.Stats, opts AnalysisOptions) {
	header(w, "📊 "+i18n.T("LOCALIZATION ANALYSIS REPORT"))

	for _, lang := range languages {
		st := stats[lang]
		if st == nil {
			continue
		}
		pct := st.Percentage()

		langHeader(w, lang)
		row(w, i18n.T("Total keys:"), fmt.Sprint(st.TotalKeys))
		row(w, i18n.T("Translated:"), fmt.Sprintf("%d (%.1f%%)", st.Translated, pct))
		row(w, i18n.T("Missing:"), fmt.Sprint(st.Missing))
		row(w, i18n.T("Progress:"), fmt.Sprintf("[%s] %.1f%%", Bar(pct, barWidth), pct))

		if n := len(opts.Stale[lang]); n > 0 {
			row(w, i18n.T("Stale:"), warnStyle.Render(fmt.Sprint(n)))
		}
		if n := len(opts.Fallbacks[lang]); n > 0 {
			row(w, i18n.T("Fallback copies:"), warnStyle.Render(fmt.Sprint(n)))
		}

		if opts.Verbose && len(st.MissingKeys) > 0 {
			listMissing(w, store, st.MissingKeys)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(w, dimStyle.Render(i18n.Tf("Legend: %s = Pattern (copy as-is), %s = Text (needs translation)", patternMarker, textMarker)))
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
}

func listMissing(w io.Writer, store analyze.Store, keys []string) {
	shown := min(len(keys), maxListedKeys)
	fmt.Fprintf(w, "\n   %s\n", i18n.Tf("Missing keys (%d of %d):", shown, len(keys)))
	for _, key := range keys[:shown] {
		line := textMarker + " " + shorten(key, maxKeyRunes)
		if source := store.SourceValue(key); classify.IsPatternOnly(source) {
			line = patternMarker + " " + shorten(key, maxKeyRunes)
			if rule := classify.MatchRule(source); rule != "" {
				line += " " + dimStyle.Render("("+rule+")")
			}
		}
		fmt.Fprintf(w, "      %s\n", line)
	}
	if rest := len(keys) - shown; rest > 0 {
		fmt.Fprintf(w, "      "+i18n.N("... and %d more key", "... and %d more keys", rest)+"\n", rest)
	}
}

// Summary writes the processing summary of a translation run.
func Summary(w io.Writer, languages []string, stats map[string]*analyze.Stats) {
	header(w, "📊 "+i18n.T("PROCESSING SUMMARY"))

	var processed, translated, errors int
	for _, lang := range languages {
		st := stats[lang]
		if st == nil {
			continue
		}
		processed += st.Processed()
		translated += st.TextsTranslated
		errors += st.Errors

		langHeader(w, lang)
		row(w, i18n.T("Patterns copied:"), fmt.Sprint(st.PatternsCopied))
		row(w, i18n.T("Texts translated:"), fmt.Sprint(st.TextsTranslated))
		row(w, i18n.T("Errors:"), errorCount(st.Errors))
		row(w, i18n.T("Total processed:"), fmt.Sprint(st.Processed()))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
	fmt.Fprintln(w, titleStyle.Render("📈 "+i18n.T("TOTALS")))
	row(w, i18n.T("Total processed:"), fmt.Sprint(processed))
	row(w, i18n.T("Total translated:"), fmt.Sprint(translated))
	row(w, i18n.T("Total errors:"), errorCount(errors))
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
}

// Bar renders a coverage bar of width cells, colored by percentage.
func Bar(pct float64, width int) string {
	filled := int(float64(width) * pct / 100)
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case pct >= 100:
		return goodStyle.Render(bar)
	case pct >= 50:
		return warnStyle.Render(bar)
	default:
		return badStyle.Render(bar)
	}
}

func header(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
}

func langHeader(w io.Writer, lang string) {
	meta := langmeta.Resolve(lang)
	fmt.Fprintf(w, "\n🌍 %s (%s)\n", langStyle.Render(strings.ToUpper(lang)), meta.Name)
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "   %s%s\n", labelStyle.Render(label), value)
}

func errorCount(n int) string {
	if n == 0 {
		return goodStyle.Render("0")
	}
	return badStyle.Render(fmt.Sprint(n))
}

// shorten truncates s to n runes, appending "...".
func shorten(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
