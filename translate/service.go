package translate

import (
	"context"
	"errors"
)

// Translator is an opaque batch text transformer bound to one
// (source, target) language pair. The result has one element per input; an
// empty string marks an item the service could not translate. An error means
// the whole batch failed.
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)
}

// Factory creates a Translator for a language pair. Target codes have
// already been mapped through the language overrides.
type Factory func(source, target string) (Translator, error)

// ErrNoTranslator is reported when the pipeline has no translation service.
var ErrNoTranslator = errors.New("no translation service configured")

// DefaultLanguageOverrides maps catalog language codes to the codes the
// translation services understand.
func DefaultLanguageOverrides() map[string]string {
	return map[string]string{
		"pt-PT": "pt",
	}
}

// serviceCache lazily creates one Translator per mapped target code and
// reuses it for the rest of a run. Creation failures are remembered too, so
// a broken language is reported once.
type serviceCache struct {
	factory  Factory
	source   string
	services map[string]Translator
	failures map[string]error
}

func newServiceCache(factory Factory, source string) *serviceCache {
	return &serviceCache{
		factory:  factory,
		source:   source,
		services: make(map[string]Translator),
		failures: make(map[string]error),
	}
}

func (c *serviceCache) get(code string) (Translator, error) {
	if svc, ok := c.services[code]; ok {
		return svc, nil
	}
	if err, ok := c.failures[code]; ok {
		return nil, err
	}
	if c.factory == nil {
		return nil, ErrNoTranslator
	}

	svc, err := c.factory(c.source, code)
	if err == nil && svc == nil {
		err = ErrNoTranslator
	}
	if err != nil {
		c.failures[code] = err
		return nil, err
	}
	c.services[code] = svc
	return svc, nil
}
