// internal/app/checkin/errors.go
package checkin

import (
	"errors"
	"fmt"
)

// The scan failure taxonomy. Every RecordScan error is one of these or a
// *PersistenceError; the API layer switches on them to pick a reason code
// and HTTP status. These are routine business outcomes, not exceptional
// conditions: only PersistenceError warrants operator attention.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session has expired")
	ErrSessionRevoked   = errors.New("session was revoked")
	ErrNotAMember       = errors.New("user is not an active member of this organization")
	ErrLocationRequired = errors.New("this session requires a location")
	ErrOutOfRange       = errors.New("location is outside the session geofence")
	ErrAlreadyMarked    = errors.New("attendance already marked for this session")
)

// PersistenceError wraps a storage failure that survived the single internal
// retry. It is the only error class the scan endpoint maps to a 5xx.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ReasonCode returns the stable machine-readable code for a scan failure.
// Unknown errors report as persistence failures.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrSessionRevoked):
		return "session_revoked"
	case errors.Is(err, ErrNotAMember):
		return "not_a_member"
	case errors.Is(err, ErrLocationRequired):
		return "location_required"
	case errors.Is(err, ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, ErrAlreadyMarked):
		return "already_marked"
	default:
		return "persistence_failure"
	}
}
