// Package domainerrors defines the typed error vocabulary shared by services,
// stores, and transports. Services attach a Code to every failure they return;
// transports map codes to HTTP statuses without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure. Codes are stable API: handlers and
// clients dispatch on them, so renaming one is a breaking change.
type Code string

const (
	// Generic codes.
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeInternal     Code = "internal_error"
	// CodeInvariantViolation marks a domain invariant breach detected inside
	// an aggregate. Services usually translate it to a more specific code
	// before it reaches a caller.
	CodeInvariantViolation Code = "invariant_violation"

	// Lifecycle codes.
	// CodeInvalidTransition: the requested phase is not reachable from the
	// dossier's current phase. Never retried.
	CodeInvalidTransition Code = "invalid_transition"
	// CodeVersionConflict: optimistic-concurrency mismatch. The caller must
	// re-read the dossier and may retry.
	CodeVersionConflict Code = "version_conflict"
	// CodeChecklistFrozen: structural checklist mutation attempted after
	// freeze. Fatal to the request.
	CodeChecklistFrozen Code = "checklist_frozen"
	// CodeUnknownFolderGroup: referenced folder group is not defined for the
	// dossier. Rejected before any state change.
	CodeUnknownFolderGroup Code = "unknown_folder_group"
	// CodeCollaboratorTimeout / CodeCollaboratorError: an external service
	// (extraction, OCR, drafting) failed. The triggering operation fails
	// cleanly with no partial mutation; retrying is caller policy.
	CodeCollaboratorTimeout Code = "collaborator_timeout"
	CodeCollaboratorError   Code = "collaborator_error"
)

// Error is a domain error carrying a Code and an optional wrapped cause.
type Error struct {
	code    Code
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the classification of this error.
func (e *Error) Code() Code { return e.code }

// Message returns the human-readable description without the code prefix.
func (e *Error) Message() string { return e.message }

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{code: code, message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while keeping it unwrappable.
// Wrapping nil returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// HasCode reports whether err or anything it wraps carries the given code.
func HasCode(err error, code Code) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.code
	}
	return CodeInternal
}
