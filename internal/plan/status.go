package plan

import "fmt"

// Status is the consumption-plan lifecycle state, independent of the
// handoff-level status machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusTesting    Status = "testing"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// AllStatuses lists plan statuses in canonical order.
var AllStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusTesting,
	StatusReview,
	StatusDone,
	StatusBlocked,
}

// transitions is the plan transition table. done is terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusBlocked},
	StatusInProgress: {StatusTesting, StatusBlocked, StatusDone},
	StatusTesting:    {StatusReview, StatusInProgress, StatusBlocked},
	StatusReview:     {StatusDone, StatusInProgress, StatusBlocked},
	StatusDone:       {},
	StatusBlocked:    {StatusInProgress, StatusPending},
}

// IsValid reports whether s is a known plan status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsValidStatusTransition is a pure membership check against the
// transition table. Identity transitions are always valid.
func IsValidStatusTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a descriptive error for an illegal move,
// naming the allowed set (or the terminal state).
func CheckTransition(from, to Status) error {
	if IsValidStatusTransition(from, to) {
		return nil
	}
	allowed := transitions[from]
	if len(allowed) == 0 {
		return fmt.Errorf("illegal plan transition %s -> %s (allowed from %s: none (terminal state))", from, to, from)
	}
	names := ""
	for i, a := range allowed {
		if i > 0 {
			names += ", "
		}
		names += string(a)
	}
	return fmt.Errorf("illegal plan transition %s -> %s (allowed from %s: %s)", from, to, from, names)
}

// CalculateAutoStatus derives a plan status from completion counts:
// zero done is pending, partial completion is in_progress, full
// completion is testing. Advancing past testing is always a manual
// transition.
func CalculateAutoStatus(total, done int) Status {
	switch {
	case done == 0:
		return StatusPending
	case done < total:
		return StatusInProgress
	default:
		return StatusTesting
	}
}
