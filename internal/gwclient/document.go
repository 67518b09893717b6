package gwclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Document is a configuration document as exchanged with /ruuvi.json.
// Numbers are kept as json.Number so values round-trip unchanged.
type Document map[string]interface{}

// ParseDocument decodes a JSON object.
func ParseDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, newParseError("failed to parse configuration document", err)
	}
	if doc == nil {
		return nil, newParseError("configuration document is not an object", nil)
	}
	return doc, nil
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case Document:
		return map[string]interface{}(t.Clone())
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	}
	return v
}

// String returns the string value at key, or "" when absent or not a string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Bool returns the boolean value at key.
func (d Document) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Keys returns the top-level keys in sorted order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Mismatches lists every key of want whose value differs in got, using
// dotted paths for nested objects. Keys that got does not carry at all are
// skipped: the UI document never returns secrets.
func Mismatches(want, got Document) []string {
	var out []string
	diffObject("", want, got, &out)
	sort.Strings(out)
	return out
}

func diffObject(prefix string, want, got map[string]interface{}, out *[]string) {
	for k, w := range want {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		g, ok := got[k]
		if !ok {
			continue
		}
		wm, wIsObj := asObject(w)
		gm, gIsObj := asObject(g)
		if wIsObj && gIsObj {
			diffObject(path, wm, gm, out)
			continue
		}
		if !sameValue(w, g) {
			*out = append(*out, fmt.Sprintf("%s: sent %v, gateway has %v", path, w, g))
		}
	}
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case Document:
		return t, true
	}
	return nil, false
}

// sameValue compares decoded JSON values, treating numbers by their text.
func sameValue(a, b interface{}) bool {
	an, aNum := numberText(a)
	bn, bNum := numberText(b)
	if aNum || bNum {
		return aNum && bNum && an == bn
	}
	return reflect.DeepEqual(a, b)
}

func numberText(v interface{}) (string, bool) {
	switch t := v.(type) {
	case json.Number:
		return t.String(), true
	case float64:
		return json.Number(fmt.Sprint(t)).String(), true
	case int:
		return fmt.Sprint(t), true
	}
	return "", false
}
