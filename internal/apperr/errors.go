package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies hard failures. Soft extraction failures are never errors;
// they travel as ValidationResult data.
type Kind int

const (
	KindInternal Kind = iota
	KindInput
	KindRecognition
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindRecognition:
		return "recognition"
	default:
		return "internal"
	}
}

// Error is the application error carried up to the transport boundary.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

var (
	ErrNoImage      = errors.New("no image provided")
	ErrInvalidImage = errors.New("invalid image payload")
	ErrRecognition  = errors.New("text recognition failed")
)

func Input(code, message string, cause error) *Error {
	return &Error{Kind: KindInput, Code: code, Message: message, Cause: cause}
}

func Recognition(message string, cause error) *Error {
	return &Error{Kind: KindRecognition, Code: "recognition_failed", Message: message, Cause: cause}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: "internal_error", Message: message, Cause: cause}
}

// KindOf reports the kind of err; anything that is not an *Error is internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the status code of the uniform envelope.
func HTTPStatus(err error) int {
	if KindOf(err) == KindInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Code returns the envelope code for err.
func Code(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return "internal_error"
}

// Message returns the user-facing message for err. Anything that is not an
// *Error gets a generic message so internals never leak to clients.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Internal server error"
}
