package introspect

import "net/http"

// Kind classifies a request failure. Each kind maps to a distinct HTTP status
// and tells the caller whether the problem was who they are (authentication),
// what they may do (authorization), or the service itself.
type Kind int

const (
	// KindConfiguration: required server-side secrets or collaborators are
	// missing. Fatal: the service cannot operate.
	KindConfiguration Kind = iota

	// KindAuthentication: missing or invalid bearer credential.
	KindAuthentication

	// KindAuthorization: the caller is identified but lacks the required role.
	KindAuthorization

	// KindUpstream: the role lookup or privileged query failed.
	KindUpstream

	// KindUnexpected: any other failure.
	KindUnexpected
)

// HTTPStatus maps the kind to the response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a request failure with a caller-safe message. The cause carries
// internal detail (raw errors, identifiers) that is logged server-side and
// never written to the response.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the internal cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}
