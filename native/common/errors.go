package common

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Kind classifies a non-authorization failure.
type Kind uint8

const (
	// KindPrecondition marks failures the caller can resolve by changing state
	// (waiting, funding, registering) and resubmitting.
	KindPrecondition Kind = iota + 1
	// KindInvariant marks failures caused by an accounting invariant that the
	// operation would otherwise break, e.g. an underfunded pool or custody.
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error is a stable, module-scoped failure. Sentinels are declared once per
// module and compared with errors.Is.
type Error struct {
	Module string
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Module == "" {
		return e.Reason
	}
	return e.Module + ": " + e.Reason
}

// Precondition declares a precondition sentinel for the module.
func Precondition(module, reason string) *Error {
	return &Error{Module: module, Kind: KindPrecondition, Reason: reason}
}

// Invariant declares an invariant-violation sentinel for the module.
func Invariant(module, reason string) *Error {
	return &Error{Module: module, Kind: KindInvariant, Reason: reason}
}

// AuthorizationError reports a caller lacking the role required by an
// operation. It is never recovered internally.
type AuthorizationError struct {
	Module string
	Caller [20]byte
	Role   string
}

func (e *AuthorizationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: the caller is not authorized (caller=0x%s role=%s)", e.Module, hex.EncodeToString(e.Caller[:]), e.Role)
}

// IsAuthorization reports whether err carries an AuthorizationError.
func IsAuthorization(err error) bool {
	var authErr *AuthorizationError
	return errors.As(err, &authErr)
}

// IsPrecondition reports whether err carries a precondition Error.
func IsPrecondition(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindPrecondition
}

// IsInvariant reports whether err carries an invariant-violation Error.
func IsInvariant(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindInvariant
}

// Reason extracts the stable reason string from err, or the empty string when
// err is not a module Error.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		return "unauthorized"
	}
	return ""
}
