// Package lockfile implements .strkit.lock, which records for every
// language the MD5 checksum of each key's source value at the time strkit
// wrote its translation, plus the keys that only hold a fallback copy of the
// source text. It lets status report stale translations (the source changed
// afterwards) and fallback copies that still need a real translation.
//
// The lock file is stored alongside .strkit.yaml in the project root.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = ".strkit.lock"

// Version is the lock file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the .strkit.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"`           // lang -> key -> md5
	Fallbacks map[string][]string          `yaml:"fallbacks,omitempty"` // lang -> sorted keys

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// SourceLookup resolves the current source value of a catalog key.
type SourceLookup interface {
	Keys() []string
	SourceValue(key string) string
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		Fallbacks: make(map[string][]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}
	if lf.Fallbacks == nil {
		lf.Fallbacks = make(map[string][]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// EntryContent builds the content hashed for a key. The key is included so
// that a renamed key is never mistaken for the old one.
func EntryContent(key, source string) string {
	return key + "\x00" + source
}

// Record stores the source checksum of a key written for lang. A fallback
// write marks the key as still needing a real translation; a translated
// write clears that mark.
func (lf *LockFile) Record(lang, key, source string, fallback bool) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Checksums[lang] == nil {
		lf.Checksums[lang] = make(map[string]string)
	}
	lf.Checksums[lang][key] = Hash(EntryContent(key, source))

	keys := lf.Fallbacks[lang]
	i := sort.SearchStrings(keys, key)
	found := i < len(keys) && keys[i] == key
	switch {
	case fallback && !found:
		keys = append(keys, "")
		copy(keys[i+1:], keys[i:])
		keys[i] = key
	case !fallback && found:
		keys = append(keys[:i], keys[i+1:]...)
	}
	if len(keys) == 0 {
		delete(lf.Fallbacks, lang)
	} else {
		lf.Fallbacks[lang] = keys
	}
}

// IsStale reports whether key was recorded for lang with a source value
// other than source. Keys never recorded are not stale.
func (lf *LockFile) IsStale(lang, key, source string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	old, ok := lf.Checksums[lang][key]
	return ok && old != Hash(EntryContent(key, source))
}

// StaleKeys returns the keys of lang, in catalog order, whose source value
// changed since strkit last wrote them.
func (lf *LockFile) StaleKeys(lang string, cat SourceLookup) []string {
	var stale []string
	for _, key := range cat.Keys() {
		if lf.IsStale(lang, key, cat.SourceValue(key)) {
			stale = append(stale, key)
		}
	}
	return stale
}

// FallbackKeys returns the sorted keys of lang that hold a fallback copy.
func (lf *LockFile) FallbackKeys(lang string) []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return append([]string(nil), lf.Fallbacks[lang]...)
}

// Clean removes keys that are no longer present in the catalog.
func (lf *LockFile) Clean(currentKeys []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	valid := make(map[string]bool, len(currentKeys))
	for _, k := range currentKeys {
		valid[k] = true
	}

	for lang, existing := range lf.Checksums {
		for k := range existing {
			if !valid[k] {
				delete(existing, k)
			}
		}
		if len(existing) == 0 {
			delete(lf.Checksums, lang)
		}
	}
	for lang, keys := range lf.Fallbacks {
		kept := keys[:0]
		for _, k := range keys {
			if valid[k] {
				kept = append(kept, k)
			}
		}
		if len(kept) == 0 {
			delete(lf.Fallbacks, lang)
		} else {
			lf.Fallbacks[lang] = kept
		}
	}
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of languages and total keys in the lock file.
func (lf *LockFile) Stats() (languages, keys int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	languages = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Languages returns the sorted list of recorded languages.
func (lf *LockFile) Languages() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	langs := make([]string, 0, len(lf.Checksums))
	for l := range lf.Checksums {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	languages, keys := lf.Stats()
	if languages == 0 {
		return "empty"
	}

	var parts []string
	for _, l := range lf.Languages() {
		lf.mu.Lock()
		n, f := len(lf.Checksums[l]), len(lf.Fallbacks[l])
		lf.mu.Unlock()
		part := fmt.Sprintf("%s: %d keys", l, n)
		if f > 0 {
			part += fmt.Sprintf(", %d fallback", f)
		}
		parts = append(parts, part)
	}
	return fmt.Sprintf("%d languages, %d keys (%s)", languages, keys, strings.Join(parts, "; "))
}
