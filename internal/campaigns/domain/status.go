// Package domain provides core business rules for the campaigns bounded context.
package domain

import (
	"fmt"
	"strings"
)

// Status is the per-lead processing state. It is a closed set persisted as
// text; transitions go through CanTransition so an illegal move is impossible
// to express accidentally.
type Status string

const (
	// StatusPending marks a freshly ingested lead awaiting dispatch pickup.
	StatusPending Status = "PENDING"
	// StatusProcessing marks a lead claimed by a worker.
	StatusProcessing Status = "PROCESSING"
	// StatusCompleted marks a lead whose audio generation finished.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed marks a lead whose audio generation errored.
	StatusFailed Status = "FAILED"
)

// ParseStatus validates a persisted status string.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(value))) {
	case StatusPending:
		return StatusPending, nil
	case StatusProcessing:
		return StatusProcessing, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusFailed:
		return StatusFailed, nil
	}
	return "", fmt.Errorf("unknown lead status %q", value)
}

// IsTerminal reports whether no further transition may leave this status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition is the total transition function of the lead state machine:
// PENDING -> PROCESSING -> {COMPLETED, FAILED}. Terminal states accept
// nothing; a lead never returns to PENDING once claimed.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}
