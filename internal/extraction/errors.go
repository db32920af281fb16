package extraction

import (
	"errors"
	"net/http"
)

// ClientInputError is a request problem detected before any model call.
type ClientInputError struct {
	Status  int
	Message string
}

func (e *ClientInputError) Error() string {
	return e.Message
}

var (
	ErrMethodNotAllowed = &ClientInputError{Status: http.StatusMethodNotAllowed, Message: "Method Not Allowed"}
	ErrMissingDocument  = &ClientInputError{Status: http.StatusBadRequest, Message: "Missing fileBase64"}
	ErrInvalidBody      = &ClientInputError{Status: http.StatusBadRequest, Message: "Invalid JSON body"}
	ErrBodyTooLarge     = &ClientInputError{Status: http.StatusRequestEntityTooLarge, Message: "Request Entity Too Large"}
)

// ModelInvocationError reports any failure while asking the model for an
// extraction. Provider error types are flattened to their message so they
// never leak past the client; a *ParseError stays reachable with errors.As.
type ModelInvocationError struct {
	Err error
}

func newModelInvocationError(err error) *ModelInvocationError {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return &ModelInvocationError{Err: parseErr}
	}
	return &ModelInvocationError{Err: errors.New(err.Error())}
}

func (e *ModelInvocationError) Error() string {
	return "model extraction failed: " + e.Err.Error()
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Err
}

// ParseError reports model output that is not a JSON object once the code
// fences are stripped.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "failed to parse model response: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
