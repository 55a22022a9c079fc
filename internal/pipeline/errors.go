package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a failed run.
type Kind int

const (
	KindConfig     Kind = iota + 1 // settings missing or invalid
	KindConnection                 // network failure or rejected login
	KindDecode                     // report body is not a JSON array of records
	KindWrite                      // CSV destination not writable
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindConnection:
		return "ConnectionError"
	case KindDecode:
		return "DecodeError"
	case KindWrite:
		return "WriteError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error type returned by Run. Callers should prefer the
// predicates (IsConnection, IsDecode, IsWrite) over asserting on it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewConfigError wraps a configuration failure found before Run starts.
func NewConfigError(err error) *Error {
	return &Error{Kind: KindConfig, Op: "load config", Err: err}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// IsConfig reports whether err is a configuration failure.
func IsConfig(err error) bool { return KindOf(err) == KindConfig }

// IsConnection reports whether err is a network or login failure.
func IsConnection(err error) bool { return KindOf(err) == KindConnection }

// IsDecode reports whether err is a report decoding failure.
func IsDecode(err error) bool { return KindOf(err) == KindDecode }

// IsWrite reports whether err is a CSV write failure.
func IsWrite(err error) bool { return KindOf(err) == KindWrite }
