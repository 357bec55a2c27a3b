// Package transporterror defines the shared typed-error taxonomy the
// framer and transport packages report through, grounded on
// bzerolib/error/error.go's ErrorType/ErrorMessage split (a string-backed
// Kind plus a wrapping struct) generalized from a JSON wire error report
// to a plain Go error with Unwrap support.
package transporterror

import "fmt"

// Kind classifies why a transport operation failed.
type Kind string

const (
	DnsFailure      Kind = "DnsFailure"
	SocketCreate    Kind = "SocketCreate"
	Connect         Kind = "Connect"
	Dropped         Kind = "Dropped"
	Timeout         Kind = "Timeout"
	PacketTooLarge  Kind = "PacketTooLarge"
	MalformedPacket Kind = "MalformedPacket"
	MacMismatch     Kind = "MacMismatch"
	EncryptFail     Kind = "EncryptFail"
	MalformedDisplay Kind = "MalformedDisplay"
)

// Error is the concrete error type every component in this module returns
// for a classified failure. Kind lets callers (tests, upstream code)
// branch on failure category without string matching, while Err preserves
// the underlying cause for logging.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, transporterror.New(transporterror.Timeout)) work by
// comparing Kind against the target *Error's Kind, ignoring both causes.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New constructs an *Error with no wrapped cause, useful as an errors.Is
// sentinel: errors.Is(err, transporterror.New(transporterror.Timeout)).
func New(kind Kind) *Error { return &Error{Kind: kind} }

// Wrap constructs an *Error classified as kind, wrapping cause.
func Wrap(kind Kind, cause error) *Error { return &Error{Kind: kind, Err: cause} }
