package format

import "fmt"

// FormatError reports a descriptor or provider payload that cannot be mapped
// into the requested shape.
type FormatError struct {
	Format   Format
	Tool     string
	Property string
	Type     string
	Reason   string
}

func (e *FormatError) Error() string {
	msg := "format error"
	if e.Format != "" {
		msg += fmt.Sprintf(" (%s)", e.Format)
	}
	if e.Tool != "" {
		msg += fmt.Sprintf(": tool %q", e.Tool)
	}
	if e.Property != "" {
		msg += fmt.Sprintf(" property %q", e.Property)
	}
	if e.Type != "" {
		msg += fmt.Sprintf(" type %q", e.Type)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
