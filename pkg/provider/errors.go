package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rhuss/trichat/pkg/api"
)

// maxErrorBody bounds how much of a failed response is kept in the message.
const maxErrorBody = 4096

// Failure describes why a backend call produced no answer. It is converted
// into a SlotResult error at the slot boundary and never crosses it.
type Failure struct {
	Kind       api.FailureKind
	StatusCode int // 0 when no response was received
	Message    string
	Cause      error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return f.Message
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// AsFailure extracts a *Failure from err. Any other error becomes a
// transport failure carrying the error text.
func AsFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: api.FailureTransport, Message: err.Error(), Cause: err}
}

// MapHTTPError builds a backend failure from a non-2xx response. A JSON body
// is kept as compact JSON text so structured backend errors reach the user
// verbatim; other bodies are kept as trimmed text.
func MapHTTPError(status int, body []byte) *Failure {
	return &Failure{
		Kind:       api.FailureBackend,
		StatusCode: status,
		Message:    errorBodyMessage(status, body),
	}
}

// MapNetworkError builds a transport failure from a failed round trip.
// Timeouts get a dedicated message naming the configured limit.
func MapNetworkError(err error, timeout time.Duration) *Failure {
	if isTimeout(err) {
		return &Failure{
			Kind:    api.FailureTransport,
			Message: fmt.Sprintf("timeout of %dms exceeded", timeout.Milliseconds()),
			Cause:   err,
		}
	}
	return &Failure{
		Kind:    api.FailureTransport,
		Message: fmt.Sprintf("backend connection error: %s", err.Error()),
		Cause:   err,
	}
}

func errorBodyMessage(status int, body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fmt.Sprintf("Request failed with status code %d", status)
	}
	if json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, body); err == nil {
			return truncate(buf.String())
		}
	}
	return truncate(string(body))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return strings.ToValidUTF8(s[:maxErrorBody], "") + "..."
}
