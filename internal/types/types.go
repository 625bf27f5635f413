// Package types defines core data structures for the handoff lifecycle engine.
package types

import (
	"fmt"
	"strings"
	"time"
)

// HandoffDocument is one parsed handoff file: frontmatter plus the raw
// markdown body. Immutable once parsed within a run.
type HandoffDocument struct {
	Frontmatter HandoffFrontmatter
	Body        string
	FilePath    string
}

// HandoffFrontmatter is the YAML header of a handoff document.
type HandoffFrontmatter struct {
	HandoffID      string            `yaml:"handoff_id"`
	Direction      Direction         `yaml:"direction"`
	FromRepo       string            `yaml:"from_repo"`
	ToRepo         string            `yaml:"to_repo"`
	CreatedAt      time.Time         `yaml:"created_at"`
	Status         Status            `yaml:"status"`
	Requires       []RequirementStub `yaml:"requires,omitempty"`
	Acceptance     []string          `yaml:"acceptance,omitempty"`
	Verification   []string          `yaml:"verification,omitempty"`
	Risks          []string          `yaml:"risks,omitempty"`
	Notes          string            `yaml:"notes,omitempty"`
	BlockerReason  string            `yaml:"blocker_reason,omitempty"`
	BlockerHandoff string            `yaml:"blocker_handoff,omitempty"`
}

// RequirementStub is a typed requirement entry in the requires[] array.
type RequirementStub struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Direction indicates which way a handoff flows relative to the local repo.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
)

// IsValid reports whether the direction is one of the two known values.
func (d Direction) IsValid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// Status represents the lifecycle state of a handoff document.
type Status string

const (
	StatusNew          Status = "new"
	StatusAcknowledged Status = "acknowledged"
	StatusInProgress   Status = "in_progress"
	StatusDone         Status = "done"
	StatusBlocked      Status = "blocked"
)

// AllStatuses lists the handoff statuses in their canonical order.
var AllStatuses = []Status{
	StatusNew,
	StatusAcknowledged,
	StatusInProgress,
	StatusDone,
	StatusBlocked,
}

// IsValid checks if the status is a valid handoff status.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusAcknowledged, StatusInProgress, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// handoffTransitions is the handoff-level transition table. Identity
// transitions are handled in CanTransition, not listed here.
var handoffTransitions = map[Status][]Status{
	StatusNew:          {StatusAcknowledged, StatusInProgress, StatusBlocked},
	StatusAcknowledged: {StatusInProgress, StatusBlocked},
	StatusInProgress:   {StatusDone, StatusBlocked},
	StatusDone:         {},
	StatusBlocked:      {StatusInProgress, StatusNew},
}

// AllowedTransitions returns the set of statuses reachable from s,
// excluding the identity transition.
func (s Status) AllowedTransitions() []Status {
	return handoffTransitions[s]
}

// CanTransition reports whether moving from s to target is legal.
// Identity transitions are always legal.
func (s Status) CanTransition(target Status) bool {
	if s == target {
		return true
	}
	for _, allowed := range handoffTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// DescribeAllowed renders the allowed-transition set for error messages.
// Terminal states render as "none (terminal state)".
func (s Status) DescribeAllowed() string {
	allowed := handoffTransitions[s]
	if len(allowed) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// ValidationError describes one problem found in a handoff document.
// It is a result value, not an error to be thrown: validation returns a
// (possibly empty) list and never stops at the first problem.
type ValidationError struct {
	File    string `json:"file"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) String() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Validation error codes.
const (
	CodeMissingField      = "missing_field"
	CodeBadIDFormat       = "bad_id_format"
	CodeBadStatus         = "bad_status"
	CodeBadDirection      = "bad_direction"
	CodeRepoMismatch      = "repo_mismatch"
	CodeDuplicateID       = "duplicate_id"
	CodeIllegalTransition = "illegal_transition"
)
