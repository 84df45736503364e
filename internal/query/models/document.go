package models

import "strconv"

// Document is a loosely-typed decoded upstream payload. Upstream services do
// not agree on field names or shapes, so readers take an ordered list of
// candidate keys and return the first present, non-empty value.
type Document map[string]any

// First returns the first present value among the candidate keys.
func (d Document) First(keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := d[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// FirstString returns the first non-empty string among the candidate keys.
// Numeric values are rendered as strings since upstreams are inconsistent
// about quoting.
func (d Document) FirstString(keys ...string) string {
	for _, key := range keys {
		v, ok := d[key]
		if !ok || v == nil {
			continue
		}
		if s := asString(v); s != "" {
			return s
		}
	}
	return ""
}

// FirstBool returns the first boolean among the candidate keys. String forms
// "true"/"false" are accepted as well.
func (d Document) FirstBool(keys ...string) (bool, bool) {
	for _, key := range keys {
		v, ok := d[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			if b, err := strconv.ParseBool(t); err == nil {
				return b, true
			}
		}
	}
	return false, false
}

// FirstFloat returns the first numeric value among the candidate keys.
func (d Document) FirstFloat(keys ...string) (float64, bool) {
	for _, key := range keys {
		v, ok := d[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case int:
			return float64(t), true
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// StringList returns the first list of strings among the candidate keys.
// A single scalar string is accepted as a one-element list; upstreams flatten
// single-element arrays without warning.
func (d Document) StringList(keys ...string) []string {
	v, ok := d.First(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []any:
		var out []string
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		if s := asString(v); s != "" {
			return []string{s}
		}
	}
	return nil
}

// DocumentList returns the first list of sub-documents among the candidate
// keys. A single object is accepted as a one-element list.
func (d Document) DocumentList(keys ...string) []Document {
	v, ok := d.First(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []any:
		var out []Document
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, Document(m))
			}
		}
		return out
	case map[string]any:
		return []Document{Document(t)}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
