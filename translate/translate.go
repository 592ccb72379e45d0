// Package translate fills missing catalog localizations. Pattern-only source
// values are copied as-is; prose is sent in fixed-size batches to a
// translation service with its format specifiers protected, and every item
// the service cannot deliver falls back to a verbatim copy of the source.
package translate

import (
	"context"
	"strings"

	"github.com/minios-linux/strkit/analyze"
	"github.com/minios-linux/strkit/catalog"
	"github.com/minios-linux/strkit/classify"
	"github.com/minios-linux/strkit/specifier"
)

// DefaultBatchSize is the number of texts sent to the service per call.
const DefaultBatchSize = 50

// Outcome tells how a key was filled in.
type Outcome int

const (
	// OutcomeCopied means a pattern-only value was copied verbatim.
	OutcomeCopied Outcome = iota
	// OutcomeTranslated means the service produced the value.
	OutcomeTranslated
	// OutcomeFallback means translation failed and the source was copied.
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeTranslated:
		return "translated"
	case OutcomeFallback:
		return "fallback"
	}
	return "unknown"
}

// Catalog is the part of the catalog store the pipeline reads and writes.
type Catalog interface {
	analyze.Store
	ApplyTranslation(key, lang, value string)
}

var _ Catalog = (*catalog.File)(nil)

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls a pipeline run.
type Options struct {
	// SourceLanguage is the catalog's source language (default "en").
	SourceLanguage string
	// Languages are the target languages, processed in order.
	Languages []string
	// BatchSize is how many texts are sent per service call (default 50).
	BatchSize int
	// LanguageOverrides maps a catalog language code to the code passed to
	// the service. Nil means DefaultLanguageOverrides.
	LanguageOverrides map[string]string
	// DryRun computes all counters without writing to the catalog.
	DryRun bool
	// Verbose reports every applied key through OnDebug.
	Verbose bool
	// OnProgress is called before the first batch and after each batch.
	OnProgress func(lang string, done, total int)
	// OnApply is called after each value written to the catalog.
	OnApply func(lang, key, source string, outcome Outcome)
	// OnLog emits informational messages.
	OnLog func(format string, args ...any)
	// OnWarn emits warnings. Falls back to OnLog.
	OnWarn func(format string, args ...any)
	// OnError emits error messages. Falls back to OnLog.
	OnError func(format string, args ...any)
	// OnDebug emits per-key detail when Verbose is set.
	OnDebug func(format string, args ...any)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logWarn(format string, args ...any) {
	if o.OnWarn != nil {
		o.OnWarn(format, args...)
	} else {
		o.log(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else {
		o.log(format, args...)
	}
}

func (o *Options) debug(format string, args ...any) {
	if o.Verbose && o.OnDebug != nil {
		o.OnDebug(format, args...)
	}
}

func (o *Options) effectiveSourceLanguage() string {
	if o.SourceLanguage != "" {
		return o.SourceLanguage
	}
	return catalog.DefaultSourceLanguage
}

func (o *Options) effectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// serviceCode maps a catalog language code to the service's code.
func (o *Options) serviceCode(lang string) string {
	overrides := o.LanguageOverrides
	if overrides == nil {
		overrides = DefaultLanguageOverrides()
	}
	if code, ok := overrides[lang]; ok && code != "" {
		return code
	}
	return lang
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

// Pipeline translates the missing keys of a catalog, one language at a time.
type Pipeline struct {
	opts     Options
	services *serviceCache
}

// New creates a pipeline. A nil factory makes every text item fall back to
// a copy of its source value.
func New(opts Options, factory Factory) *Pipeline {
	opts.Languages = append([]string(nil), opts.Languages...)
	return &Pipeline{
		opts:     opts,
		services: newServiceCache(factory, opts.effectiveSourceLanguage()),
	}
}

// task is one missing key of one language.
type task struct {
	key         string
	sourceValue string
	isPattern   bool
}

// Run processes every configured language and returns its statistics.
// Service failures never abort the run. Cancellation is honored between
// batches and languages; the stats of languages processed so far are
// returned with the context error.
func (p *Pipeline) Run(ctx context.Context, cat Catalog) (map[string]*analyze.Stats, error) {
	stats := make(map[string]*analyze.Stats, len(p.opts.Languages))
	for _, lang := range p.opts.Languages {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		st, err := p.runLanguage(ctx, cat, lang)
		stats[lang] = st
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (p *Pipeline) runLanguage(ctx context.Context, cat Catalog, lang string) (*analyze.Stats, error) {
	st := analyze.Language(cat, lang)
	if st.Missing == 0 {
		p.opts.log("%s: all strings already translated", lang)
		return st, nil
	}
	p.opts.log("%s: %d missing translations", lang, st.Missing)

	patterns, texts := collectTasks(cat, st.MissingKeys)

	for _, t := range patterns {
		p.apply(cat, lang, t, t.sourceValue, OutcomeCopied)
		st.PatternsCopied++
	}
	if len(patterns) > 0 {
		p.opts.log("%s: copied %d patterns as-is", lang, len(patterns))
	}
	if len(texts) == 0 {
		return st, nil
	}

	svc, err := p.services.get(p.opts.serviceCode(lang))
	if err != nil {
		p.opts.logWarn("%s: translator not available (%v), copying %d texts as-is", lang, err, len(texts))
		for _, t := range texts {
			p.fallback(cat, st, lang, t)
		}
		return st, nil
	}

	p.opts.log("%s: translating %d texts", lang, len(texts))
	chunks := splitTasks(texts, p.opts.effectiveBatchSize())
	p.progress(lang, 0, len(texts))
	done := 0
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		results := p.translateChunk(ctx, svc, lang, chunk)
		for j, t := range chunk {
			if results[j] == "" {
				p.fallback(cat, st, lang, t)
				continue
			}
			p.apply(cat, lang, t, results[j], OutcomeTranslated)
			st.TextsTranslated++
		}

		done += len(chunk)
		p.opts.debug("%s: batch %d/%d completed", lang, i+1, len(chunks))
		p.progress(lang, done, len(texts))
	}
	return st, nil
}

// translateChunk protects, translates and restores one batch. The result
// has one entry per task; empty means the item failed. The in-flight call
// is not cancelled with ctx.
func (p *Pipeline) translateChunk(ctx context.Context, svc Translator, lang string, chunk []task) []string {
	protected := make([]string, len(chunk))
	placeholders := make([][]specifier.Placeholder, len(chunk))
	for i, t := range chunk {
		protected[i], placeholders[i] = specifier.Protect(t.sourceValue)
	}

	results := make([]string, len(chunk))
	out, err := svc.TranslateBatch(context.WithoutCancel(ctx), protected)
	if err != nil {
		p.opts.logError("%s: batch translation error: %v", lang, err)
		return results
	}

	for i := range chunk {
		if i >= len(out) || strings.TrimSpace(out[i]) == "" {
			continue
		}
		if len(placeholders[i]) > 0 && !specifier.Intact(out[i], placeholders[i]) {
			p.opts.logWarn("%s: translation of %q lost a format marker", lang, chunk[i].key)
		}
		results[i] = specifier.Restore(out[i], placeholders[i])
	}
	return results
}

// fallback copies the source value of a failed item and counts it both as
// an error and as a copied pattern.
func (p *Pipeline) fallback(cat Catalog, st *analyze.Stats, lang string, t task) {
	p.apply(cat, lang, t, t.sourceValue, OutcomeFallback)
	st.Errors++
	st.PatternsCopied++
}

func (p *Pipeline) apply(cat Catalog, lang string, t task, value string, outcome Outcome) {
	p.opts.debug("%s: %s %q", lang, outcome, t.key)
	if p.opts.DryRun {
		return
	}
	cat.ApplyTranslation(t.key, lang, value)
	if p.opts.OnApply != nil {
		p.opts.OnApply(lang, t.key, t.sourceValue, outcome)
	}
}

func (p *Pipeline) progress(lang string, done, total int) {
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(lang, done, total)
	}
}

// collectTasks classifies the missing keys, keeping catalog order within
// each partition.
func collectTasks(cat Catalog, keys []string) (patterns, texts []task) {
	for _, key := range keys {
		src := cat.SourceValue(key)
		t := task{
			key:         key,
			sourceValue: src,
			isPattern:   classify.IsPatternOnly(src),
		}
		if t.isPattern {
			patterns = append(patterns, t)
		} else {
			texts = append(texts, t)
		}
	}
	return patterns, texts
}

// splitTasks divides tasks into chunks of the given size.
func splitTasks(items []task, chunkSize int) [][]task {
	if chunkSize <= 0 || chunkSize >= len(items) {
		return [][]task{items}
	}
	var chunks [][]task
	for i := 0; i < len(items); i += chunkSize {
		end := i + chunkSize
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}
