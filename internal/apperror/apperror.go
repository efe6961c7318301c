// server/internal/apperror/apperror.go
package apperror

import (
	"errors"
	"net/http"
)

// Kind is the stable machine-readable error category carried on every
// error response.
type Kind string

const (
	KindValidation Kind = "VALIDATION"
	KindAuth       Kind = "AUTH"
	KindForbidden  Kind = "FORBIDDEN"
	KindNotFound   Kind = "NOT_FOUND"
	KindDuplicate  Kind = "DUPLICATE_LOG"
	KindStorage    Kind = "STORAGE"
)

// Error pairs a Kind with a user-facing message. The wrapped cause is
// for logs only and is never serialized.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error       { return &Error{Kind: KindValidation, Message: msg} }
func Auth(msg string) *Error             { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) *Error        { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error         { return &Error{Kind: KindNotFound, Message: msg} }
func Duplicate(msg string) *Error        { return &Error{Kind: KindDuplicate, Message: msg} }
func Storage(msg string, err error) *Error { return &Error{Kind: KindStorage, Message: msg, Err: err} }

// HTTPStatus maps an error to the response code of the taxonomy.
// Unknown errors are treated as storage-level failures.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusBadGateway
	}
	switch ae.Kind {
	case KindValidation, KindDuplicate:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindStorage:
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// Payload returns the JSON body for an error response: a stable kind
// plus a human-readable message, nothing internal.
func Payload(err error) map[string]interface{} {
	var ae *Error
	if !errors.As(err, &ae) {
		return map[string]interface{}{"error": map[string]string{
			"kind":    string(KindStorage),
			"message": "internal error",
		}}
	}
	return map[string]interface{}{"error": map[string]string{
		"kind":    string(ae.Kind),
		"message": ae.Message,
	}}
}

// IsKind reports whether err is an apperror of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
