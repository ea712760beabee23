package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a referenced row does not exist or belongs
// to another user. Handlers map it to 404 without leaking which of the two
// it was.
var ErrNotFound = errors.New("not found")

// PartialBatchError reports a multi-record write that failed after some
// records were already persisted by a collaborator without batch
// atomicity. It names the surviving records so the caller can retry the
// remainder or compensate by deleting them. Silent partial success is
// never an option.
type PartialBatchError struct {
	Succeeded []string
	Err       error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("batch failed after %d records (%s): %v",
		len(e.Succeeded), strings.Join(e.Succeeded, ", "), e.Err)
}

func (e *PartialBatchError) Unwrap() error {
	return e.Err
}

// StateConflictError marks writes rejected because they would corrupt
// invariant state (oversell, category still referenced, reparent cycle).
type StateConflictError struct {
	Reason string
}

func (e *StateConflictError) Error() string {
	return e.Reason
}

func conflict(reason string) *StateConflictError {
	return &StateConflictError{Reason: reason}
}

// IsConflict reports whether err is any state-conflict rejection.
func IsConflict(err error) bool {
	var sc *StateConflictError
	return errors.As(err, &sc)
}
