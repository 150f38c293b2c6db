package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrIllegalTransition    = errors.New("illegal transition")
	ErrDuplicateEmail       = errors.New("duplicate_email")
	ErrOutOfOrderEvent      = errors.New("out of order timeline event")
	ErrStorageRead          = errors.New("storage read failure")
	ErrStorageWrite         = errors.New("storage write failure")
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
	ErrRequestNotFound      = errors.New("request not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrDuplicateProtocol    = errors.New("duplicate protocol")
)

// IllegalTransitionError reports a status change outside the transition table
type IllegalTransitionError struct {
	RequestID int64
	Current   Status
	Attempted Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition for request %d: %s -> %s", e.RequestID, e.Current, e.Attempted)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// OutOfOrderEventError reports a timeline append older than the last event
type OutOfOrderEventError struct {
	RequestID int64
	Last      time.Time
	Attempted time.Time
}

func (e *OutOfOrderEventError) Error() string {
	return fmt.Sprintf("timeline event for request %d at %s precedes last event at %s",
		e.RequestID, e.Attempted.Format(time.RFC3339), e.Last.Format(time.RFC3339))
}

func (e *OutOfOrderEventError) Unwrap() error { return ErrOutOfOrderEvent }

// StorageError wraps a persistence failure for one blob key
type StorageError struct {
	Op  string // "read" or "write"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failure for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() []error {
	kind := ErrStorageRead
	if e.Op == "write" {
		kind = ErrStorageWrite
	}
	return []error{kind, e.Err}
}
