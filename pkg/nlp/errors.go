package nlp

import (
	"errors"
	"fmt"
)

// Chat completion failure kinds. Match them with errors.Is.
var (
	ErrRateLimit     = errors.New("rate limited")
	ErrRefusal       = errors.New("completion refused")
	ErrEmptyResponse = errors.New("empty completion")
	ErrMissingAPIKey = errors.New("api key required without a base URL")
)

// CompletionError describes a failed chat completion. Kind is one of the
// sentinels above, or nil when the request itself failed; Err is the
// transport or API error, if any.
type CompletionError struct {
	Model  string
	Kind   error
	Detail string
	Err    error
}

func (e *CompletionError) Error() string {
	msg := "chat completion failed"
	if e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Model != "" {
		msg = fmt.Sprintf("%s (model %s)", msg, e.Model)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *CompletionError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsRateLimit reports whether err came from an HTTP 429 response.
func IsRateLimit(err error) bool {
	return errors.Is(err, ErrRateLimit)
}
