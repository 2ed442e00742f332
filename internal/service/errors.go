package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/swim-club-backend/internal/repository"
)

// Kind classifies service failures. Handlers map kinds to HTTP statuses.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindInvalidState
	KindCapacityExceeded
	KindSlotLimitExceeded
	KindDuplicateEnrollment
	KindConflictingWrite
	KindInvalidInput
	KindLinkedData
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidState:
		return "invalid_state"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindSlotLimitExceeded:
		return "slot_limit_exceeded"
	case KindDuplicateEnrollment:
		return "duplicate_enrollment"
	case KindConflictingWrite:
		return "conflicting_write"
	case KindInvalidInput:
		return "invalid_input"
	case KindLinkedData:
		return "linked_data"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the only error type services return on purpose. Anything else
// reaching a handler is an internal failure.
type Error struct {
	Kind   Kind
	Entity string // set for KindNotFound
	Reason string // set for KindInvalidState and KindInvalidInput
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return e.Entity + " not found"
	case KindForbidden:
		return "forbidden"
	case KindCapacityExceeded:
		return "schedule is full"
	case KindSlotLimitExceeded:
		return "member has reached the maximum of 2 weekly slots"
	case KindDuplicateEnrollment:
		return "member is already enrolled in this slot"
	case KindConflictingWrite:
		return "conflicting write, retry"
	case KindLinkedData:
		return "cannot delete: record has linked data"
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, and on Entity when the target names one, so that
// errors.Is(err, ErrCapacityExceeded) and errors.Is(err, NotFound("member"))
// both work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Entity == "" || t.Entity == e.Entity)
}

var (
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrCapacityExceeded    = &Error{Kind: KindCapacityExceeded}
	ErrSlotLimitExceeded   = &Error{Kind: KindSlotLimitExceeded}
	ErrDuplicateEnrollment = &Error{Kind: KindDuplicateEnrollment}
	ErrConflictingWrite    = &Error{Kind: KindConflictingWrite}
	ErrLinkedData          = &Error{Kind: KindLinkedData}
)

func NotFound(entity string) *Error { return &Error{Kind: KindNotFound, Entity: entity} }

func InvalidState(reason string) *Error { return &Error{Kind: KindInvalidState, Reason: reason} }

func InvalidInput(reason string) *Error { return &Error{Kind: KindInvalidInput, Reason: reason} }

// KindOf returns the Kind of err, or 0 when err is not a service error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// fromStore converts repository sentinels into service errors. entity names
// what a missing row means to the caller. Unknown errors pass through.
func fromStore(err error, entity string) error {
	var se *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &se):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: KindNotFound, Entity: entity, Err: err}
	case errors.Is(err, repository.ErrConflict):
		return &Error{Kind: KindConflictingWrite, Err: err}
	case errors.Is(err, repository.ErrLinkedData):
		return &Error{Kind: KindLinkedData, Err: err}
	}
	return err
}
