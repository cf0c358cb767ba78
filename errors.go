package genmedia

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies why a generation call failed.
type ErrorKind int

const (
	KindConfiguration ErrorKind = iota + 1
	KindCapabilityUnavailable
	KindClientConstruction
	KindRemoteCall
	KindResponseShape
	KindDecode
	KindEmptyResult
	KindStack
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindCapabilityUnavailable:
		return "capability_unavailable"
	case KindClientConstruction:
		return "client_construction"
	case KindRemoteCall:
		return "remote_call"
	case KindResponseShape:
		return "response_shape"
	case KindDecode:
		return "decode"
	case KindEmptyResult:
		return "empty_result"
	case KindStack:
		return "stack"
	default:
		return "unknown"
	}
}

// User-facing messages for failures that have no variable part.
const (
	MsgCapabilityUnavailable  = "Error: google genai client library is not available in this build."
	MsgMissingProjectLocation = "Error: Google Cloud Project ID and Location are required."
)

// GenerationError is the failure half of a GenerationResult.
// Error returns the human-readable status message.
type GenerationError struct {
	Kind  ErrorKind
	Model Model
	Err   error

	msg string
}

func (e *GenerationError) Error() string {
	return e.msg
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(kind ErrorKind, model Model, err error, format string, args ...any) *GenerationError {
	return &GenerationError{
		Kind:  kind,
		Model: model,
		Err:   err,
		msg:   fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err is a GenerationError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr) && genErr.Kind == kind
}

// RateLimitError is returned by providers when the service rejects a call for quota.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// ErrStorageNotConfigured is returned when storage operations are attempted
// without a configured storage backend.
var ErrStorageNotConfigured = errors.New("storage not configured")
