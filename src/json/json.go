package json

import (
	"bytes"
	stdjson "encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// canonical sorts object keys and keeps numbers as written so that equal
// values always render to equal bytes.
var canonical = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

var (
	Marshal    = json.Marshal
	Unmarshal  = json.Unmarshal
	NewDecoder = json.NewDecoder
	NewEncoder = json.NewEncoder
	Valid      = json.Valid
)

// RawMessage is encoding/json's type. It marshals as raw JSON under both
// encoding/json and jsoniter.
type RawMessage = stdjson.RawMessage

type Decoder = jsoniter.Decoder

type Encoder = jsoniter.Encoder

// Decode unmarshals data into an untyped value, keeping numbers as
// json.Number instead of float64.
func Decode(data []byte) (any, error) {
	var v any
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	if err := canonical.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Canonical renders v as compact JSON with sorted object keys. Raw messages
// are decoded first so their key order does not leak into the output.
func Canonical(v any) ([]byte, error) {
	var raw []byte
	switch r := v.(type) {
	case RawMessage:
		raw = r
	case jsoniter.RawMessage:
		raw = r
	}
	if raw != nil {
		decoded, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		v = decoded
	}
	return canonical.Marshal(v)
}
