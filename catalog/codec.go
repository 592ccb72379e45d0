package catalog

import (
	"bytes"
	"encoding/json"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Members the catalog types do not model are kept in Extra and written back
// on save, so files produced by newer Xcode versions survive a round trip.

type member struct {
	key   string
	value json.RawMessage
}

// splitObject decodes a JSON object into its raw members.
func splitObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// take decodes the member named key into dst and removes it from raw.
func take(raw map[string]json.RawMessage, key string, dst any) error {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	delete(raw, key)
	return json.Unmarshal(v, dst)
}

// rest returns what is left of raw after the known members were taken.
func rest(raw map[string]json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// encodeValue marshals v without HTML escaping.
func encodeValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// writeObject writes members in the given order.
func writeObject(members []member) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := encodeValue(m.key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(m.value)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// object collects known members and merges Extra, sorted by key the way
// Xcode writes catalogs.
type object struct {
	members []member
	err     error
}

func (o *object) add(key string, v any) {
	if o.err != nil {
		return
	}
	raw, err := encodeValue(v)
	if err != nil {
		o.err = err
		return
	}
	o.members = append(o.members, member{key, raw})
}

func (o *object) addRaw(key string, v json.RawMessage) {
	o.members = append(o.members, member{key, v})
}

func (o *object) bytes(extra map[string]json.RawMessage) ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	for k, v := range extra {
		o.members = append(o.members, member{k, v})
	}
	sort.SliceStable(o.members, func(i, j int) bool {
		return o.members[i].key < o.members[j].key
	})
	return writeObject(o.members), nil
}

// orderedObject encodes an ordered map keeping insertion order.
func orderedObject[V any](m *orderedmap.OrderedMap[string, V]) (json.RawMessage, error) {
	members := make([]member, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		raw, err := encodeValue(pair.Value)
		if err != nil {
			return nil, err
		}
		members = append(members, member{pair.Key, raw})
	}
	return writeObject(members), nil
}

// ---------------------------------------------------------------------------
// StringUnit
// ---------------------------------------------------------------------------

func (u *StringUnit) UnmarshalJSON(data []byte) error {
	raw, err := splitObject(data)
	if err != nil {
		return err
	}
	*u = StringUnit{}
	if err := take(raw, "state", &u.State); err != nil {
		return err
	}
	if err := take(raw, "value", &u.Value); err != nil {
		return err
	}
	u.Extra = rest(raw)
	return nil
}

func (u StringUnit) MarshalJSON() ([]byte, error) {
	var o object
	o.add("state", u.State)
	o.add("value", u.Value)
	return o.bytes(u.Extra)
}

// ---------------------------------------------------------------------------
// Localization
// ---------------------------------------------------------------------------

func (l *Localization) UnmarshalJSON(data []byte) error {
	raw, err := splitObject(data)
	if err != nil {
		return err
	}
	*l = Localization{}
	if err := take(raw, "stringUnit", &l.StringUnit); err != nil {
		return err
	}
	if err := take(raw, "substitutions", &l.Substitutions); err != nil {
		return err
	}
	if err := take(raw, "variations", &l.Variations); err != nil {
		return err
	}
	l.Extra = rest(raw)
	return nil
}

func (l Localization) MarshalJSON() ([]byte, error) {
	var o object
	if l.StringUnit != nil {
		o.add("stringUnit", l.StringUnit)
	}
	if len(l.Substitutions) > 0 {
		o.addRaw("substitutions", l.Substitutions)
	}
	if len(l.Variations) > 0 {
		o.addRaw("variations", l.Variations)
	}
	return o.bytes(l.Extra)
}

// ---------------------------------------------------------------------------
// Entry
// ---------------------------------------------------------------------------

func (e *Entry) UnmarshalJSON(data []byte) error {
	raw, err := splitObject(data)
	if err != nil {
		return err
	}
	*e = Entry{}
	if err := take(raw, "comment", &e.Comment); err != nil {
		return err
	}
	if err := take(raw, "extractionState", &e.ExtractionState); err != nil {
		return err
	}
	if err := take(raw, "localizations", &e.Localizations); err != nil {
		return err
	}
	if err := take(raw, "shouldTranslate", &e.ShouldTranslate); err != nil {
		return err
	}
	e.Extra = rest(raw)
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	var o object
	if e.Comment != "" {
		o.add("comment", e.Comment)
	}
	if e.ExtractionState != "" {
		o.add("extractionState", e.ExtractionState)
	}
	if e.Localizations != nil && e.Localizations.Len() > 0 {
		locs, err := orderedObject(e.Localizations)
		if err != nil {
			return nil, err
		}
		o.addRaw("localizations", locs)
	}
	if e.ShouldTranslate != nil {
		o.add("shouldTranslate", *e.ShouldTranslate)
	}
	return o.bytes(e.Extra)
}

// ---------------------------------------------------------------------------
// File
// ---------------------------------------------------------------------------

func (f *File) UnmarshalJSON(data []byte) error {
	raw, err := splitObject(data)
	if err != nil {
		return err
	}
	*f = File{}
	if err := take(raw, "sourceLanguage", &f.SourceLanguage); err != nil {
		return err
	}
	if err := take(raw, "strings", &f.Strings); err != nil {
		return err
	}
	if err := take(raw, "version", &f.Version); err != nil {
		return err
	}
	f.Extra = rest(raw)
	return nil
}

func (f File) MarshalJSON() ([]byte, error) {
	var o object
	o.add("sourceLanguage", f.SourceLanguage)
	strs := json.RawMessage("{}")
	if f.Strings != nil {
		var err error
		if strs, err = orderedObject(f.Strings); err != nil {
			return nil, err
		}
	}
	o.addRaw("strings", strs)
	o.add("version", f.Version)
	return o.bytes(f.Extra)
}
