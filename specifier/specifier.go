// Package specifier shields printf-style format specifiers from a
// translation service. Protect swaps every specifier for an indexed marker
// such as ⟨0⟩ that machine translation leaves alone; Restore puts the
// original specifiers back.
package specifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// protectable matches the specifiers that are replaced by markers: string and
// integer substitutions (optionally positional) and the escaped percent sign.
var protectable = regexp.MustCompile(`%\d*\$?[@ld]+|%%`)

// literalMarker matches marker-shaped text already present in a source string.
var literalMarker = regexp.MustCompile(`⟨(\d+)⟩`)

// Placeholder pairs a marker with the specifier it stands for.
type Placeholder struct {
	Marker    string
	Specifier string
}

// Marker returns the marker token for the i-th specifier of a text.
func Marker(i int) string {
	return fmt.Sprintf("⟨%d⟩", i)
}

// Protect replaces each specifier occurrence, left to right, with its own
// marker. Numbering starts past any marker-shaped text already in the input
// so that Restore never rewrites it. Text without specifiers is returned
// unchanged with a nil slice.
func Protect(text string) (string, []Placeholder) {
	if !protectable.MatchString(text) {
		return text, nil
	}

	first := firstFreeIndex(text)
	var placeholders []Placeholder
	protected := protectable.ReplaceAllStringFunc(text, func(spec string) string {
		marker := Marker(first + len(placeholders))
		placeholders = append(placeholders, Placeholder{Marker: marker, Specifier: spec})
		return marker
	})
	return protected, placeholders
}

// firstFreeIndex returns one past the highest marker index found in text.
func firstFreeIndex(text string) int {
	next := 0
	for _, m := range literalMarker.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}
	return next
}

// Restore replaces every marker with its original specifier. A marker that
// the translator dropped or altered is simply not found.
func Restore(text string, placeholders []Placeholder) string {
	for _, p := range placeholders {
		text = strings.ReplaceAll(text, p.Marker, p.Specifier)
	}
	return text
}

// Intact reports whether every marker is still present in text.
func Intact(text string, placeholders []Placeholder) bool {
	for _, p := range placeholders {
		if !strings.Contains(text, p.Marker) {
			return false
		}
	}
	return true
}
