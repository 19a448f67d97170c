package mixtools

import (
	"errors"
	"fmt"

	"github.com/mix-tools/mix-tools-go/src/format"
	httptransport "github.com/mix-tools/mix-tools-go/src/transports/http"
)

var (
	// ErrMissingCredential is wrapped by ConfigurationError when no API key
	// could be resolved.
	ErrMissingCredential = errors.New("credential must be provided")
	// ErrMissingCorrelationID is wrapped by InvocationError when a provider
	// format is requested without a tool call id.
	ErrMissingCorrelationID = errors.New("correlation id is required for this format")

	ErrSessionClosed = httptransport.ErrSessionClosed
	ErrSessionOpen   = httptransport.ErrSessionOpen
)

type (
	// RemoteError is a non-success HTTP status returned by the service.
	RemoteError = httptransport.RemoteError
	// IllegalStateError is use of the client outside Open/Close.
	IllegalStateError = httptransport.IllegalStateError
	// FormatError is a descriptor or payload that cannot be shaped for the
	// requested provider.
	FormatError = format.FormatError
)

// ConfigurationError is raised by NewClient before any network activity.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Setting, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// InvocationError reports an ExecuteTool call the client rejects without
// consulting the service, or an envelope that does not match the request.
type InvocationError struct {
	Tool   string
	Format format.Format
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invocation error: tool %q (%s): %v", e.Tool, e.Format, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }
