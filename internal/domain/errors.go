package domain

import (
	"errors"
	"strings"
)

var (
	ErrMedicationNotFound    = errors.New("medication not found")
	ErrSlotNotFound          = errors.New("slot not found")
	ErrNotificationNotFound  = errors.New("notification not found")
	ErrSettingsNotFound      = errors.New("reminder settings not found")
	ErrDuplicateNotification = errors.New("notification already scheduled for slot and day")
	ErrInvalidTransition     = errors.New("invalid notification status transition")
)

// ValidationError rejects input before any state is touched.
type ValidationError struct {
	Fields []string
	Reason string
}

func NewValidationError(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Reason
	}
	return "validation failed on " + strings.Join(e.Fields, ", ") + ": " + e.Reason
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrMedicationNotFound) ||
		errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrNotificationNotFound)
}
