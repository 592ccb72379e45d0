package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bregydoc/gtranslate"
	"golang.org/x/text/language"
)

// GoogleTranslateDelay is the pause between two requests to the public
// Google Translate endpoint.
var GoogleTranslateDelay = 100 * time.Millisecond

// GoogleTranslate translates through the public Google Translate endpoint,
// one request per text.
type GoogleTranslate struct {
	From  string
	To    string
	Delay time.Duration

	translate func(text string, params gtranslate.TranslationParams) (string, error)
}

// NewGoogleTranslate creates a service for the given pair. Codes must be
// valid BCP 47 tags.
func NewGoogleTranslate(source, target string) (*GoogleTranslate, error) {
	if _, err := language.Parse(source); err != nil {
		return nil, fmt.Errorf("invalid source language %q: %w", source, err)
	}
	if _, err := language.Parse(target); err != nil {
		return nil, fmt.Errorf("invalid target language %q: %w", target, err)
	}
	return &GoogleTranslate{
		From:      source,
		To:        target,
		Delay:     GoogleTranslateDelay,
		translate: gtranslate.TranslateWithParams,
	}, nil
}

// TranslateBatch translates each text in turn. A failed item is left empty
// and the rest of the batch continues. Cancellation stops the loop and
// leaves the remaining items empty.
func (g *GoogleTranslate) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	for i, text := range texts {
		if i > 0 && g.Delay > 0 {
			if err := sleepCtx(ctx, g.Delay); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		res, err := g.translate(text, gtranslate.TranslationParams{
			From: g.From,
			To:   g.To,
		})
		if err != nil {
			log.Debugf("google-translate %s->%s failed for %q: %v", g.From, g.To, truncate(text, 60), err)
			continue
		}
		out[i] = strings.TrimSpace(res)
	}
	return out, nil
}
