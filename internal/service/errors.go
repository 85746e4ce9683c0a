package service

import (
	"errors"
	"fmt"
)

// Error kinds. Callers branch on these with errors.Is.
var (
	ErrInvalidArgumentCount = errors.New("invalid argument count")
	ErrInvalidDateFormat    = errors.New("invalid date format")
	ErrTaskNotFound         = errors.New("task not found")
	ErrRemoteStore          = errors.New("remote store error")
	ErrUnknown              = errors.New("unknown error")
)

// Reasons attached to a StoreError.
const (
	ReasonTimeout  = "timeout"
	ReasonAuth     = "auth"
	ReasonQuota    = "quota"
	ReasonNotFound = "not found"
	ReasonNetwork  = "network"
	ReasonAPI      = "api"
)

// StoreError reports a failed call to the remote sheet.
type StoreError struct {
	Op     string
	Reason string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *StoreError) Unwrap() []error {
	return []error{ErrRemoteStore, e.Err}
}

// KindOf returns the error kind of err, or ErrUnknown.
// Returns nil for a nil error.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		ErrInvalidArgumentCount,
		ErrInvalidDateFormat,
		ErrTaskNotFound,
		ErrRemoteStore,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrUnknown
}
