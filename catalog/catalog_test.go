package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `{
  "sourceLanguage" : "en",
  "strings" : {
    "Welcome back" : {
      "localizations" : {
        "de" : { "stringUnit" : { "state" : "translated", "value" : "Willkommen zurück" } },
        "fr" : { "stringUnit" : { "state" : "needs_review", "value" : "Bon retour" } }
      }
    },
    "  " : {},
    "settings.title" : {
      "comment" : "Settings screen title",
      "localizations" : {
        "en" : { "stringUnit" : { "state" : "translated", "value" : "Settings" } }
      }
    },
    "%lld items" : {
      "localizations" : {
        "en" : {
          "variations" : { "plural" : { "one" : { "stringUnit" : { "state" : "translated", "value" : "%lld item" } } } }
        }
      }
    },
    "Zebra" : null
  },
  "version" : "1.0"
}`

func TestParse_PreservesOrderAndSkipsBlankKeys(t *testing.T) {
	f, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, "en", f.SourceLanguage)
	assert.Equal(t, 5, f.Len())
	assert.Equal(t, []string{"Welcome back", "settings.title", "%lld items", "Zebra"}, f.Keys())
	assert.Equal(t, []string{"de", "fr", "en"}, f.Languages())
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte(`{"strings":`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestParseFile_MissingFile(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.xcstrings"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformed))
}

func TestSourceValue(t *testing.T) {
	f, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, "Settings", f.SourceValue("settings.title"))
	assert.Equal(t, "Welcome back", f.SourceValue("Welcome back"), "falls back to the key")
	assert.Equal(t, "%lld items", f.SourceValue("%lld items"), "plural-only source falls back to the key")
	assert.Equal(t, "Zebra", f.SourceValue("Zebra"))
	assert.Equal(t, "unknown", f.SourceValue("unknown"))

	g, err := Parse([]byte(`{"sourceLanguage": "en", "strings": {
		"Empty source": {"localizations": {"en": {"stringUnit": {"state": "new"}}}}
	}}`))
	require.NoError(t, err)
	assert.Equal(t, "Empty source", g.SourceValue("Empty source"), "empty source value falls back to the key")
}

func TestIsSatisfied(t *testing.T) {
	f, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	tests := []struct {
		key, lang string
		want      bool
	}{
		{"Welcome back", "de", true},
		{"Welcome back", "fr", false}, // state is not translated
		{"Welcome back", "it", false}, // no localization
		{"%lld items", "en", false},   // variations only, no stringUnit
		{"Zebra", "de", false},
		{"unknown", "de", false},
	}
	for _, tc := range tests {
		t.Run(tc.key+"/"+tc.lang, func(t *testing.T) {
			assert.Equal(t, tc.want, f.IsSatisfied(tc.key, tc.lang))
		})
	}
}

func TestApplyTranslation_Idempotent(t *testing.T) {
	f, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	f.ApplyTranslation("Zebra", "it", "Zebra")
	assert.True(t, f.IsSatisfied("Zebra", "it"))
	v, ok := f.Value("Zebra", "it")
	require.True(t, ok)
	assert.Equal(t, "Zebra", v)

	before, err := f.Marshal()
	require.NoError(t, err)

	f.ApplyTranslation("Zebra", "it", "Zebra")
	after, err := f.Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestApplyTranslation_OverwritesNonTranslatedState(t *testing.T) {
	f, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	f.ApplyTranslation("Welcome back", "fr", "Content de vous revoir")

	e, ok := f.Entry("Welcome back")
	require.True(t, ok)
	loc, ok := e.Localizations.Get("fr")
	require.True(t, ok)
	assert.Equal(t, &StringUnit{State: StateTranslated, Value: "Content de vous revoir"}, loc.StringUnit)

	// The existing de variant and the key position are untouched.
	assert.True(t, f.IsSatisfied("Welcome back", "de"))
	assert.Equal(t, "Welcome back", f.Keys()[0])
}

func TestApplyTranslation_UnknownKeyIsCreated(t *testing.T) {
	f := New("en")
	f.ApplyTranslation("New key", "es", "Nueva clave")

	assert.Equal(t, []string{"New key"}, f.Keys())
	assert.True(t, f.IsSatisfied("New key", "es"))
}

func TestWriteFile_RoundTrip(t *testing.T) {
	f, err := Parse([]byte(sampleCatalog))
	require.NoError(t, err)
	f.ApplyTranslation("settings.title", "de", "Einstellungen")

	path := filepath.Join(t.TempDir(), "nested", "Localizable.xcstrings")
	require.NoError(t, f.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"Willkommen zurück"`, "non-ASCII must not be escaped")
	assert.Contains(t, out, `"comment": "Settings screen title"`)
	assert.Contains(t, out, `"variations"`)
	assert.True(t, strings.HasSuffix(out, "\n"))

	iWelcome := strings.Index(out, `"Welcome back"`)
	iSettings := strings.Index(out, `"settings.title"`)
	iZebra := strings.Index(out, `"Zebra"`)
	assert.True(t, iWelcome < iSettings && iSettings < iZebra, "key order changed:\n%s", out)

	g, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, f.Keys(), g.Keys())
	v, ok := g.Value("settings.title", "de")
	require.True(t, ok)
	assert.Equal(t, "Einstellungen", v)
}

func TestParse_DefaultsSourceLanguage(t *testing.T) {
	f, err := Parse([]byte(`{"strings": {"Hi": {}}}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultSourceLanguage, f.SourceLanguage)
	assert.Equal(t, []string{"Hi"}, f.Keys())
}

const extendedCatalog = `{
  "customTopLevel" : { "generator" : "xcode 17" },
  "sourceLanguage" : "en",
  "strings" : {
    "Open <b>" : {
      "comment" : "Tap & hold",
      "isCommentAutoGenerated" : true,
      "localizations" : {
        "de" : {
          "reviewedBy" : "anna",
          "stringUnit" : { "origin" : "import", "state" : "needs_review", "value" : "Öffnen" }
        }
      }
    }
  },
  "version" : "1.1"
}`

func TestWriteFile_KeepsUnknownMembers(t *testing.T) {
	f, err := Parse([]byte(extendedCatalog))
	require.NoError(t, err)
	assert.Equal(t, "1.1", f.Version)

	path := filepath.Join(t.TempDir(), "Localizable.xcstrings")
	require.NoError(t, f.WriteFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"customTopLevel": {`)
	assert.Contains(t, out, `"generator": "xcode 17"`)
	assert.Contains(t, out, `"isCommentAutoGenerated": true`)
	assert.Contains(t, out, `"reviewedBy": "anna"`)
	assert.Contains(t, out, `"origin": "import"`)
	assert.Contains(t, out, `"Open <b>"`, "HTML characters must not be escaped")
	assert.Contains(t, out, `"Tap & hold"`)

	// Known and unknown members are interleaved alphabetically.
	iComment := strings.Index(out, `"comment"`)
	iAuto := strings.Index(out, `"isCommentAutoGenerated"`)
	iLocs := strings.Index(out, `"localizations"`)
	assert.True(t, iComment < iAuto && iAuto < iLocs, "member order:\n%s", out)
	assert.True(t, strings.Index(out, `"customTopLevel"`) < strings.Index(out, `"sourceLanguage"`))

	g, err := ParseFile(path)
	require.NoError(t, err)
	again, err := g.Marshal()
	require.NoError(t, err)
	assert.Equal(t, out, string(again))
}

func TestApplyTranslation_KeepsUnknownLocalizationMembers(t *testing.T) {
	f, err := Parse([]byte(extendedCatalog))
	require.NoError(t, err)
	f.ApplyTranslation("Open <b>", "de", "Öffne <b>")

	data, err := f.Marshal()
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"reviewedBy": "anna"`)
	assert.NotContains(t, out, `"origin"`, "the replaced string unit is written fresh")
	assert.Contains(t, out, `"value": "Öffne <b>"`)
}
