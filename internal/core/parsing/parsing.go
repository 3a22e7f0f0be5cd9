// Package parsing recovers structured data from language model output.
//
// Model output is a best-effort text contract. The parsers here never fail:
// every input maps to a usable value through an explicit fallback policy.
//
//  1. The first fenced code block is unwrapped if present. An opening fence
//     without a closing fence is a parse failure.
//  2. The remaining text must decode as a single JSON object.
//  3. Missing keys take documented defaults. On any failure the whole
//     result falls back to its default.
package parsing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// DefaultConfidence is used when the model does not report one.
const DefaultConfidence = 0.5

const fence = "```"

var (
	errUnclosedFence = errors.New("unclosed code fence")
	errNotObject     = errors.New("not a JSON object")
	errTrailingData  = errors.New("trailing data after JSON object")
	errBadConfidence = errors.New("confidence is not a number")
)

// unfence returns the body of the first fenced block, or s when there is none.
func unfence(s string) (string, error) {
	open := strings.Index(s, fence)
	if open < 0 {
		return s, nil
	}
	rest := s[open+len(fence):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && isInfoString(rest[:nl]) {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, fence)
	if end < 0 {
		return "", errUnclosedFence
	}
	return strings.TrimSpace(rest[:end]), nil
}

// isInfoString reports whether s looks like a fence language tag such as "json".
func isInfoString(s string) bool {
	s = strings.TrimSpace(s)
	for _, r := range s {
		isWord := r == '-' || r == '_' || r == '+' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isWord {
			return false
		}
	}
	return true
}

// decodeObject unfences raw and decodes exactly one JSON object.
// Numbers are kept as json.Number.
func decodeObject(raw string) (map[string]any, error) {
	body, err := unfence(raw)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// text renders a decoded JSON value as a string. ok is false for null.
// Objects and arrays are rendered as compact JSON.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return "", false
		}
		return strings.TrimSpace(buf.String()), true
	}
}

// number reads a confidence value. Numeric strings are accepted.
// ok is false for null, and err is set for values that are not numbers.
func number(v any) (f float64, ok bool, err error) {
	switch t := v.(type) {
	case nil:
		return 0, false, nil
	case json.Number:
		f, err = t.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, false, errBadConfidence
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, errBadConfidence
	}
	return f, true, nil
}
