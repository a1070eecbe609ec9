// Package enip defines the error taxonomy shared by the eip, cip and
// session packages. It has no dependencies on the rest of the module so
// that every layer can wrap the same concrete error type without an
// import cycle.
package enip

import "fmt"

// Kind classifies why an ENIP/CIP operation failed.
type Kind int

const (
	KindIO Kind = iota
	KindTimeout
	KindFraming
	KindProtocolStatus
	KindTypeMismatch
	KindNotConnected
	KindUnsupportedService
	KindArgument
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindTimeout:
		return "timeout"
	case KindFraming:
		return "framing"
	case KindProtocolStatus:
		return "protocol_status"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindNotConnected:
		return "not_connected"
	case KindUnsupportedService:
		return "unsupported_service"
	case KindArgument:
		return "argument"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every package in this
// module. Status and Extended are only meaningful when Kind is
// KindProtocolStatus; Service is the CIP service code at fault, or 0 if
// the failure isn't service-specific.
type Error struct {
	Kind     Kind
	Detail   string
	Status   byte
	Extended []uint16
	Service  byte
	Wrapped  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindProtocolStatus:
		if e.Service != 0 {
			return fmt.Sprintf("protocol_status: service 0x%02X status 0x%02X: %s", e.Service, e.Status, e.Detail)
		}
		return fmt.Sprintf("protocol_status: status 0x%02X: %s", e.Status, e.Detail)
	default:
		if e.Detail == "" {
			return e.Kind.String()
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error of the same Kind, so that
// sentinel values like ErrTimeout work with errors.Is regardless of
// Detail/Status differences.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind with a formatted detail string.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind that wraps an underlying error,
// preserving it for errors.Unwrap/errors.As while fixing the Kind seen by
// errors.Is against the sentinels below.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Wrapped: err}
}

// Status builds a KindProtocolStatus error carrying the CIP general
// status byte, extended status words and the service code at fault.
func Status(service, status byte, extended []uint16, detail string) *Error {
	return &Error{Kind: KindProtocolStatus, Service: service, Status: status, Extended: extended, Detail: detail}
}

// Sentinel values for errors.Is checks against a fixed kind, matching
// spec.md's error kind taxonomy.
var (
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrNotConnected       = &Error{Kind: KindNotConnected}
	ErrUnsupportedService = &Error{Kind: KindUnsupportedService}
)
