// Package apperr defines the error kinds the queue core returns. The HTTP layer maps each kind to a
// status code via its Code.
package apperr

import (
	"errors"
	"fmt"

	"clinic_queue/internal/models"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeValidation        = "VALIDATION_ERROR"
)

type NotFoundError struct {
	Resource string
	ID       uint
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Code() string { return CodeNotFound }

// ConflictError is returned by call-next while a consultation is already running. Active is the
// entry currently in progress so callers can show who is being seen.
type ConflictError struct {
	QueueID uint
	Active  *models.QueueEntry
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Active != nil {
		return fmt.Sprintf("queue %d is already consulting entry %d", e.QueueID, e.Active.ID)
	}
	return fmt.Sprintf("queue %d is already consulting someone", e.QueueID)
}

func (e *ConflictError) Code() string { return CodeConflict }

type InvalidTransitionError struct {
	EntryID uint
	From    models.Status
	To      models.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("entry %d: cannot move from %s to %s", e.EntryID, e.From, e.To)
}

func (e *InvalidTransitionError) Code() string { return CodeInvalidTransition }

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Code() string { return CodeValidation }

func NotFound(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// CodeOf returns the stable code of a typed error anywhere in err's chain, or "" for untyped errors.
func CodeOf(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}
