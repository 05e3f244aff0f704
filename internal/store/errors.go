package store

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by store operations. Callers distinguish them with
// errors.Is/errors.As; the API layer maps them to HTTP statuses.
var (
	// ErrNotFound means a referenced entity does not exist (or is deleted).
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor lacks rights for the operation. No
	// mutation is attempted.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means the operation lost a race on a shared invariant,
	// such as an item already pledged in another pending swap. The caller
	// may retry or report the item as no longer available.
	ErrConflict = errors.New("conflict")

	// ErrStaleSwap means item ownership drifted between swap creation and
	// acceptance. The swap can no longer complete; the caller must refresh.
	ErrStaleSwap = errors.New("swap is stale")
)

// ValidationError reports the first input field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// constraintConflict reports whether err is a SQLite uniqueness or busy
// failure, which store operations surface as a lost race.
func constraintConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked")
}
