package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bregydoc/gtranslate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// parseTranslations
// ---------------------------------------------------------------------------

func TestParseTranslations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{"plain", `["Hallo", "Welt"]`, []string{"Hallo", "Welt"}, false},
		{"code fence", "```json\n[\"Hallo ⟨0⟩\"]\n```", []string{"Hallo ⟨0⟩"}, false},
		{"surrounding prose", `Here you go: ["Ja", "Nein"] Enjoy.`, []string{"Ja", "Nein"}, false},
		{"empty array", `[]`, nil, true},
		{"not json", `Sorry, I cannot help`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTranslations(tt.content, 2)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractResponseText(t *testing.T) {
	text, err := extractResponseText([]byte(`{"choices":[{"message":{"content":"[\"a\"]"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, text)

	text, err = extractResponseText([]byte(`{"candidates":[{"content":{"parts":[{"text":"[\"b\"]"}]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, `["b"]`, text)

	_, err = extractResponseText([]byte(`{"error":{"message":"quota exceeded"}}`))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestParseRetryDelay(t *testing.T) {
	body := `{"error":{"details":[{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"12s"}]}}`
	assert.Equal(t, 17*time.Second, parseRetryDelay([]byte(body)))
	assert.Equal(t, 65*time.Second, parseRetryDelay([]byte(`not json`)))
}

// ---------------------------------------------------------------------------
// NewFactory
// ---------------------------------------------------------------------------

func TestNewFactory_Validation(t *testing.T) {
	_, err := NewFactory(Provider{ID: "nope"})
	assert.Error(t, err)

	groq := DefaultProviders()[ProviderGroq]
	_, err = NewFactory(groq)
	assert.ErrorContains(t, err, "API key")

	groq.APIKey = "gsk_test"
	_, err = NewFactory(groq)
	assert.NoError(t, err)

	_, err = NewFactory(Provider{ID: ProviderCustomOpenAI, Model: "m"})
	assert.ErrorContains(t, err, "base URL")
}

func TestNewFactory_DefaultsToGoogleTranslate(t *testing.T) {
	factory, err := NewFactory(Provider{})
	require.NoError(t, err)

	svc, err := factory("en", "de")
	require.NoError(t, err)
	assert.IsType(t, &GoogleTranslate{}, svc)

	_, err = factory("en", "not a language!")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Model provider over HTTP
// ---------------------------------------------------------------------------

func chatResponse(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	})
	assert.NoError(t, err)
	return body
}

func TestModelTranslator_OpenAICompatible(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &got))
		w.Write(chatResponse(t, "```json\n[\"Hallo ⟨0⟩\", \"Tschüss\"]\n```"))
	}))
	defer srv.Close()

	factory, err := NewFactory(Provider{
		ID:      ProviderCustomOpenAI,
		Name:    "test",
		BaseURL: srv.URL + "/v1",
		Model:   "test-model",
		APIKey:  "sk-test",
	})
	require.NoError(t, err)
	svc, err := factory("en", "de")
	require.NoError(t, err)

	out, err := svc.TranslateBatch(context.Background(), []string{"Hello ⟨0⟩", "Bye", "Extra"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Hallo ⟨0⟩", "Tschüss", ""}, out)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "from English to German")
	assert.Contains(t, got.Messages[1].Content, `1. "Hello ⟨0⟩"`)
	assert.Contains(t, got.Messages[1].Content, "exactly 3 translated strings")
}

func TestModelTranslator_GeminiEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-goog-api-key"))
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[\"Bonjour\"]"}]}}]}`))
	}))
	defer srv.Close()

	factory, err := NewFactory(Provider{ID: ProviderGoogle, BaseURL: srv.URL, Model: "gemini-test", APIKey: "key"})
	require.NoError(t, err)
	svc, err := factory("en", "fr")
	require.NoError(t, err)

	out, err := svc.TranslateBatch(context.Background(), []string{"Hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonjour"}, out)
}

func TestModelTranslator_RetriesServerErrors(t *testing.T) {
	backoffUnit = time.Millisecond
	defer func() { backoffUnit = time.Second }()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			http.Error(w, "overloaded", http.StatusBadGateway)
			return
		}
		w.Write(chatResponse(t, `["ok"]`))
	}))
	defer srv.Close()

	factory, err := NewFactory(Provider{ID: ProviderOllama, BaseURL: srv.URL, Model: "m", MaxRetries: 3})
	require.NoError(t, err)
	svc, _ := factory("en", "it")

	out, err := svc.TranslateBatch(context.Background(), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, out)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
}

func TestModelTranslator_ClientErrorFailsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad model"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	factory, err := NewFactory(Provider{ID: ProviderOllama, BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)
	svc, _ := factory("en", "it")

	_, err = svc.TranslateBatch(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "status 400")
}

// ---------------------------------------------------------------------------
// Google Translate
// ---------------------------------------------------------------------------

func TestGoogleTranslate_PerItemFailure(t *testing.T) {
	g, err := NewGoogleTranslate("en", "pt")
	require.NoError(t, err)
	g.Delay = 0

	var seen []gtranslate.TranslationParams
	g.translate = func(text string, params gtranslate.TranslationParams) (string, error) {
		seen = append(seen, params)
		if strings.HasPrefix(text, "fail") {
			return "", errors.New("boom")
		}
		return " pt:" + text + " ", nil
	}

	out, err := g.TranslateBatch(context.Background(), []string{"one", "fail two", "three ⟨0⟩"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pt:one", "", "pt:three ⟨0⟩"}, out)
	require.Len(t, seen, 3)
	assert.Equal(t, "en", seen[0].From)
	assert.Equal(t, "pt", seen[0].To)
}

func TestGoogleTranslate_StopsWhenCancelled(t *testing.T) {
	g, err := NewGoogleTranslate("en", "de")
	require.NoError(t, err)
	g.Delay = 0

	ctx, cancel := context.WithCancel(context.Background())
	g.translate = func(text string, _ gtranslate.TranslationParams) (string, error) {
		cancel()
		return "ok", nil
	}

	out, err := g.TranslateBatch(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", ""}, out)
}
