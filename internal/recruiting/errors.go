package recruiting

import "errors"

// ErrNotFound is returned when an offer or CV is missing or not owned by the
// caller.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when a caller acts on behalf of another user.
var ErrForbidden = errors.New("forbidden")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
