package session

import "errors"

// ErrSessionConflict is returned by Create when an active session is
// already indexed for the (subscriber, channel) pair.
var ErrSessionConflict = errors.New("session_conflict")

// ErrSessionNotFound is returned by UpdateData when the session is
// absent or inactive.
var ErrSessionNotFound = errors.New("session_not_found")
