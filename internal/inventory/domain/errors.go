package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrNotFound            = errors.New("not found")
	ErrInvalidMovementType = errors.New("invalid movement type")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrCommitFailed        = errors.New("commit failed")
)

// Error carries a kind plus the operation that failed
type Error struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg = e.Message
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the error kind
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error
func NewValidationError(op, message string) error {
	return &Error{Kind: ErrValidation, Op: op, Message: message}
}

// NewNotFoundError reports a missing item or movement
func NewNotFoundError(op, entity, id string) error {
	return &Error{Kind: ErrNotFound, Op: op, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewInsufficientStockError reports a rejected withdrawal
func NewInsufficientStockError(op string, have, need int64) error {
	return &Error{
		Kind:    ErrInsufficientStock,
		Op:      op,
		Message: fmt.Sprintf("insufficient stock: have %d, need %d", have, need),
	}
}

// NewConflictError reports a lost optimistic-concurrency race
func NewConflictError(op, itemID string) error {
	return &Error{Kind: ErrConcurrencyConflict, Op: op, Message: "item " + itemID + " was modified concurrently"}
}

// KindOf returns the error kind of err, or nil if it has none
func KindOf(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrInsufficientStock,
		ErrNotFound,
		ErrInvalidMovementType,
		// CommitFailed wraps the last conflict, so it is checked first
		ErrCommitFailed,
		ErrConcurrencyConflict,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Retryable reports whether err is a transient conflict that has not yet
// exhausted its retry budget
func Retryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) && !errors.Is(err, ErrCommitFailed)
}
