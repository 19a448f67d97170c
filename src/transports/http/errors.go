package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mix-tools/mix-tools-go/src/json"
)

var (
	// ErrSessionClosed is wrapped by IllegalStateError when a request is sent
	// on a session that was never opened or has been closed.
	ErrSessionClosed = errors.New("session is not open")
	// ErrSessionOpen is wrapped by IllegalStateError when Open is called twice.
	ErrSessionOpen = errors.New("session is already open")
	// ErrInvalidJSON marks a success response whose body is not JSON.
	ErrInvalidJSON = errors.New("response body is not valid JSON")
)

// IllegalStateError reports use of a session outside its open lifetime. It is
// a programming error and is never retried.
type IllegalStateError struct {
	Op  string
	Err error
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("illegal state: %s: %v", e.Op, e.Err)
}

func (e *IllegalStateError) Unwrap() error { return e.Err }

// RemoteError carries a non-success HTTP status from the catalog service.
// Body holds the decoded JSON body, or the raw text when it is not JSON.
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int
	Body       any
	Raw        []byte
}

func newRemoteError(method, path string, status int, raw []byte) *RemoteError {
	e := &RemoteError{Method: method, Path: path, StatusCode: status, Raw: raw}
	if decoded, err := json.Decode(raw); err == nil && decoded != nil {
		e.Body = decoded
	} else {
		e.Body = string(raw)
	}
	return e
}

func (e *RemoteError) Error() string {
	detail := strings.TrimSpace(string(e.Raw))
	if len(detail) > 512 {
		detail = detail[:512] + "..."
	}
	msg := fmt.Sprintf("remote error: %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	if detail != "" {
		msg += ": " + detail
	}
	return msg
}
