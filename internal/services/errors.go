package services

import (
	"errors"
	"fmt"
)

// Kind groups workflow failures by how the caller should react to them.
type Kind string

const (
	KindValidation Kind = "validation" // malformed input, nothing written
	KindConflict   Kind = "conflict"   // store rejected a duplicate
	KindAuth       Kind = "auth"       // wrong admin password
	KindState      Kind = "state"      // giveaway phase forbids the action
	KindPrecheck   Kind = "precheck"   // draw preconditions not met
	KindStorage    Kind = "storage"    // store unreachable or failing
)

// Error is the single error type returned by the workflows. Code refines Kind
// (for example "phone_taken"); Err keeps the underlying cause, if any.
type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Code, e.Err)
	}
	if e.Code == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, and on Code when the target sets one, so that
// errors.Is(err, ErrStorage) holds for every storage failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

var (
	ErrMissingField = &Error{Kind: KindValidation, Code: "missing_field"}
	ErrBadPhone     = &Error{Kind: KindValidation, Code: "bad_phone"}
	ErrBadRegion    = &Error{Kind: KindValidation, Code: "bad_region"}

	ErrPhoneTaken      = &Error{Kind: KindConflict, Code: "phone_taken"}
	ErrHandleTaken     = &Error{Kind: KindConflict, Code: "handle_taken"}
	ErrConflictUnknown = &Error{Kind: KindConflict, Code: "unknown"}

	ErrBadCredential = &Error{Kind: KindAuth, Code: "bad_credential"}

	ErrAlreadyDrawn       = &Error{Kind: KindState, Code: "already_drawn"}
	ErrRegistrationClosed = &Error{Kind: KindState, Code: "registration_closed"}

	ErrNotEnoughParticipants = &Error{Kind: KindPrecheck, Code: "not_enough_participants"}

	ErrStorage = &Error{Kind: KindStorage}
)

// ErrNotAttempted is returned by the admin operations when no password was
// given at all. It is not a failure and should not be shown as one.
var ErrNotAttempted = errors.New("no credential supplied")

func storageError(err error) error {
	return &Error{Kind: KindStorage, Code: "unavailable", Err: err}
}
