// Package review defines the CV review state machine and the status ledger.
//
// Valid status graph:
//
//	new ──► accepted ◄──► rejected
//	 │                       ▲
//	 └───────────────────────┘
//
// new is only an initial state; a reviewed CV never goes back to it.
// Re-applying the current status is allowed and is a no-op.
package review

import (
	"fmt"

	"hrhelper/recruiter-service/internal/model"
)

// Status re-exports model.Status so callers of this package need not import
// model just to name a status.
type Status = model.Status

const (
	StatusNew      = model.StatusNew
	StatusAccepted = model.StatusAccepted
	StatusRejected = model.StatusRejected
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusNew:      {StatusAccepted, StatusRejected},
	StatusAccepted: {StatusAccepted, StatusRejected},
	StatusRejected: {StatusAccepted, StatusRejected},
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNew, StatusAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown cv status %q", s)
}

// ParseTarget parses a status that a caller wants to move a CV to. Only
// accepted and rejected are valid targets.
func ParseTarget(s string) (Status, error) {
	st, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	if !IsTarget(st) {
		return "", fmt.Errorf("status %q cannot be set explicitly", s)
	}
	return st, nil
}

// IsTarget reports whether s can be the destination of a transition.
func IsTarget(s Status) bool {
	return s == StatusAccepted || s == StatusRejected
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
