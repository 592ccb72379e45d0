package specifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtect_NoSpecifiersIsNoop(t *testing.T) {
	for _, text := range []string{"", "Hello world", "Rate %.2f", "50 % off", "Ünïcödé ✓"} {
		got, placeholders := Protect(text)
		assert.Equal(t, text, got)
		assert.Empty(t, placeholders)
		assert.Equal(t, text, Restore(text, nil))
	}
}

func TestProtect_ReplacesInOrder(t *testing.T) {
	got, placeholders := Protect("Hello %@, you have %d new messages")

	assert.Equal(t, "Hello ⟨0⟩, you have ⟨1⟩ new messages", got)
	assert.Equal(t, []Placeholder{
		{Marker: "⟨0⟩", Specifier: "%@"},
		{Marker: "⟨1⟩", Specifier: "%d"},
	}, placeholders)
}

func TestProtect_RepeatedSpecifiersGetDistinctMarkers(t *testing.T) {
	got, placeholders := Protect("%d of %d done, 100%% sure, %1$@ and %2$lld")

	assert.Equal(t, "⟨0⟩ of ⟨1⟩ done, 100⟨2⟩ sure, ⟨3⟩ and ⟨4⟩", got)
	require.Len(t, placeholders, 5)
	specs := make([]string, len(placeholders))
	for i, p := range placeholders {
		specs[i] = p.Specifier
	}
	assert.Equal(t, []string{"%d", "%d", "%%", "%1$@", "%2$lld"}, specs)
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"",
		"Plain text",
		"%@",
		"%d items",
		"Hello %@, you have %d new messages",
		"%1$@ sent you %2$lld coins (%3$@)",
		"Progress: 100%%",
		"%%%d%%",
		"%ld and %lld and %d%d",
		"Twelve specifiers %d %d %d %d %d %d %d %d %d %d %d %d",
		"Mixed %.2f and %@",
		"Step ⟨0⟩ of %d",
		"%@ ⟨1⟩ %d",
	}
	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			protected, placeholders := Protect(text)
			assert.NotContains(t, protected, "%@")
			assert.Equal(t, text, Restore(protected, placeholders))
			assert.True(t, Intact(protected, placeholders))
		})
	}
}

func TestProtect_SkipsMarkersAlreadyInText(t *testing.T) {
	protected, placeholders := Protect("%@ ⟨1⟩ %d")
	assert.Equal(t, "⟨2⟩ ⟨1⟩ ⟨3⟩", protected)
	assert.Equal(t, []Placeholder{{"⟨2⟩", "%@"}, {"⟨3⟩", "%d"}}, placeholders)

	protected, _ = Protect("Step ⟨0⟩ of %d")
	assert.Equal(t, "Step ⟨0⟩ of ⟨1⟩", protected)

	protected, _ = Protect("⟨99999999999999999999⟩ %d")
	assert.Equal(t, "⟨99999999999999999999⟩ ⟨0⟩", protected, "unparsable index is ignored")
}

func TestRestore_RepositionedMarkers(t *testing.T) {
	_, placeholders := Protect("Hello %@, you have %d new messages")

	translated := "Tienes ⟨1⟩ mensajes nuevos, ⟨0⟩"
	got := Restore(translated, placeholders)

	assert.Equal(t, "Tienes %d mensajes nuevos, %@", got)
	assert.NotContains(t, got, "⟨")
}

func TestRestore_CorruptedMarkerIsDetectable(t *testing.T) {
	_, placeholders := Protect("You have %d items")

	translated := "Sie haben <0> Artikel"
	assert.False(t, Intact(translated, placeholders))
	assert.Equal(t, translated, Restore(translated, placeholders))
}

func TestMarker_DoesNotCollideAcrossIndexes(t *testing.T) {
	text := strings.Repeat("%d ", 11)
	protected, placeholders := Protect(text)
	require.Len(t, placeholders, 11)
	assert.Contains(t, protected, "⟨10⟩")
	assert.Equal(t, text, Restore(protected, placeholders))
}
