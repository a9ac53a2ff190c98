// Package jsonutil wraps github.com/go-json-experiment/json behind the
// familiar encoding/json surface. All persisted state (results.json) and
// exports go through this package so the codec is swapped in one place.
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent returns the JSON encoding of v indented with indent.
func MarshalIndent(v any, indent string) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent(indent))
}

// Unmarshal parses JSON-encoded data into v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Decode reads one JSON value from r into v.
func Decode(r io.Reader, v any) error {
	return json.UnmarshalRead(r, v)
}

// Encode writes v to w as JSON.
func Encode(w io.Writer, v any) error {
	return json.MarshalWrite(w, v)
}

// Valid reports whether data is syntactically valid JSON.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}
