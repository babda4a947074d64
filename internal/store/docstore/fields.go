package docstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Fields flattens a document into its JSON top-level fields.
func Fields(doc any) (map[string]any, error) {
	var raw []byte
	switch v := doc.(type) {
	case []byte:
		raw = v
	case json.RawMessage:
		raw = v
	default:
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("docstore: encode document: %w", err)
		}
		raw = b
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("docstore: decode document: %w", err)
	}
	return m, nil
}

// FieldString renders a scalar field the way a filter compares it.
func FieldString(fields map[string]any, name string) (string, bool) {
	v, ok := fields[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Matches reports whether fields satisfy every clause of f.
func (f Filter) Matches(fields map[string]any) bool {
	for k, want := range f {
		got, ok := FieldString(fields, k)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Keys returns the filter's field names in a stable order.
func (f Filter) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DecodeArray unmarshals raw JSON documents into the slice pointed to by dst.
func DecodeArray(docs [][]byte, dst any) error {
	buf := make([]byte, 0, 2+len(docs)*64)
	buf = append(buf, '[')
	for i, d := range docs {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, d...)
	}
	buf = append(buf, ']')
	if err := json.Unmarshal(buf, dst); err != nil {
		return fmt.Errorf("docstore: decode documents: %w", err)
	}
	return nil
}
