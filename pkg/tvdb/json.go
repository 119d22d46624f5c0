package tvdb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// document is a loosely structured JSON object. TVDB v2 payloads mix null,
// number and string values for the same logical fields, so responses are
// walked dynamically instead of decoded into fixed structs. All accessors
// tolerate missing keys, explicit nulls and unexpected types, and are safe
// to call on a nil document.
type document map[string]any

// decodeDocument parses a JSON object, keeping numbers as json.Number so
// integer fields survive undamaged.
func decodeDocument(data []byte) (document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

// str returns the string value for key, or "" when absent or not a string.
func (d document) str(key string) string {
	s, _ := d[key].(string)
	return s
}

// integer returns the integer value for key, or nil when absent, null or
// not a whole number. Numeric strings are accepted.
func (d document) integer(key string) *int {
	switch v := d[key].(type) {
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return nil
		}
		return &n
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// decimal returns the numeric value for key, or nil when absent or not a
// number.
func (d document) decimal(key string) *float64 {
	v, ok := d[key].(json.Number)
	if !ok {
		return nil
	}
	f, err := v.Float64()
	if err != nil {
		return nil
	}
	return &f
}

// object returns the nested object for key, or nil.
func (d document) object(key string) document {
	m, _ := d[key].(map[string]any)
	return document(m)
}

// objects returns the array of objects for key, skipping non-object
// elements.
func (d document) objects(key string) []document {
	arr, _ := d[key].([]any)
	var docs []document
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			docs = append(docs, document(m))
		}
	}
	return docs
}

// strings returns the array of strings for key, skipping non-string
// elements.
func (d document) strings(key string) []string {
	arr, _ := d[key].([]any)
	var out []string
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// integerPattern matches the first run of digits in free-form numeric
// fields like "45 min".
var integerPattern = regexp.MustCompile(`\d+`)

// matchInteger extracts the first integer embedded in s, or nil when s
// contains none.
func matchInteger(s string) *int {
	match := integerPattern.FindString(s)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &n
}
