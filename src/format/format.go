// Package format translates provider agnostic tool descriptors and raw tool
// results into the JSON shapes of the OpenAI function calling and Anthropic
// tool use protocols.
//
// Both providers share one schema builder and one result source, so the two
// shapes differ only in their outer envelopes.
package format

import (
	"strings"
)

// Format selects the JSON shape of catalog entries and result envelopes.
type Format string

const (
	Native    Format = ""
	OpenAI    Format = "openai"
	Anthropic Format = "anthropic"
)

// Parse maps a user supplied name to a Format. "", "none" and "native" all
// select Native.
func Parse(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "native":
		return Native, nil
	case "openai":
		return OpenAI, nil
	case "anthropic":
		return Anthropic, nil
	}
	return Native, &FormatError{Format: Format(name), Reason: "unknown format"}
}

// String returns the query value for f; Native renders as "native".
func (f Format) String() string {
	if f == Native {
		return "native"
	}
	return string(f)
}

// QueryValue is the value sent as the format query parameter. It is empty for
// Native so the parameter is omitted.
func (f Format) QueryValue() string {
	return string(f)
}

// RequiresCorrelationID reports whether result envelopes of f carry a tool
// call id.
func (f Format) RequiresCorrelationID() bool {
	return f == OpenAI || f == Anthropic
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	switch f {
	case Native, OpenAI, Anthropic:
		return true
	}
	return false
}
