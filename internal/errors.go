package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoRefreshToken is returned when a refresh is requested but none is stored.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	// ErrMissingAccessToken is returned when a refresh response carries no usable access token.
	ErrMissingAccessToken = errors.New("refresh response has no access token")
	// ErrNotAuthenticated is returned by commands that need a logged-in session.
	ErrNotAuthenticated = errors.New("not logged in")
)

// StorageError represents errors accessing the credential store
type StorageError struct {
	Key string
	Op  string // "open", "get", "set", "remove"
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the remote API
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // server supplied "message" or "error", may be empty
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api error [%d] %s %s: %s", e.Status, e.Method, e.Path, msg)
}

// IsUnauthorized reports whether the API rejected the credentials.
func (e *APIError) IsUnauthorized() bool { return e.Status == http.StatusUnauthorized }

// IsClientError reports a 4xx status.
func (e *APIError) IsClientError() bool { return e.Status >= 400 && e.Status < 500 }

// IsServerError reports a 5xx status.
func (e *APIError) IsServerError() bool { return e.Status >= 500 }

// NetworkError represents a request that never produced an HTTP response
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// FieldError is a single failed client-side validation rule
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// ValidationErrors collects every failed rule of one form
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Field returns the first error recorded for field, if any.
func (e ValidationErrors) Field(field string) (FieldError, bool) {
	for _, fe := range e {
		if fe.Field == field {
			return fe, true
		}
	}
	return FieldError{}, false
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
