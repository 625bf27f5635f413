// Package validation checks handoff documents for structural problems,
// cross-field violations, duplicate ids, and illegal status transitions.
// All checks return lists of ValidationError values; nothing panics and
// no check short-circuits its siblings.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/steveyegge/handoff/internal/types"
)

// handoffIDPattern matches ids like "031-auth-tokens": three digits, a
// hyphen, then a lowercase slug.
var handoffIDPattern = regexp.MustCompile(`^\d{3}-[a-z][a-z0-9-]*$`)

// ValidateIDFormat reports whether id matches the NNN-slug format.
func ValidateIDFormat(id string) bool {
	return handoffIDPattern.MatchString(id)
}

// ValidateDocument checks a single document against the structural and
// cross-field rules. localRepo is the identity of the repository the tool
// runs in: outgoing handoffs must originate from it, incoming handoffs
// must be addressed to it.
func ValidateDocument(doc types.HandoffDocument, localRepo string) []types.ValidationError {
	var errs []types.ValidationError
	fm := doc.Frontmatter

	addMissing := func(field string) {
		errs = append(errs, types.ValidationError{
			File:    doc.FilePath,
			Field:   field,
			Message: fmt.Sprintf("required field %q is missing", field),
			Code:    types.CodeMissingField,
		})
	}

	if fm.HandoffID == "" {
		addMissing("handoff_id")
	} else if !ValidateIDFormat(fm.HandoffID) {
		errs = append(errs, types.ValidationError{
			File:    doc.FilePath,
			Field:   "handoff_id",
			Message: fmt.Sprintf("invalid handoff_id %q (expected NNN-slug, e.g. 031-auth-tokens)", fm.HandoffID),
			Code:    types.CodeBadIDFormat,
		})
	}

	if fm.FromRepo == "" {
		addMissing("from_repo")
	}
	if fm.ToRepo == "" {
		addMissing("to_repo")
	}
	if fm.CreatedAt.IsZero() {
		addMissing("created_at")
	}

	if fm.Direction == "" {
		addMissing("direction")
	} else if !fm.Direction.IsValid() {
		errs = append(errs, types.ValidationError{
			File:    doc.FilePath,
			Field:   "direction",
			Message: fmt.Sprintf("invalid direction %q (expected incoming or outgoing)", fm.Direction),
			Code:    types.CodeBadDirection,
		})
	}

	if fm.Status == "" {
		addMissing("status")
	} else if !fm.Status.IsValid() {
		names := make([]string, len(types.AllStatuses))
		for i, s := range types.AllStatuses {
			names[i] = string(s)
		}
		errs = append(errs, types.ValidationError{
			File:    doc.FilePath,
			Field:   "status",
			Message: fmt.Sprintf("invalid status %q (expected one of: %s)", fm.Status, strings.Join(names, ", ")),
			Code:    types.CodeBadStatus,
		})
	}

	// Cross-field direction rules produce one error per rule, not a
	// generic failure.
	if fm.Direction == types.DirectionOutgoing && fm.FromRepo != "" && fm.FromRepo != localRepo {
		errs = append(errs, types.ValidationError{
			File:    doc.FilePath,
			Field:   "from_repo",
			Message: fmt.Sprintf("outgoing handoff must have from_repo %q, got %q", localRepo, fm.FromRepo),
			Code:    types.CodeRepoMismatch,
		})
	}
	if fm.Direction == types.DirectionIncoming && fm.ToRepo != "" && fm.ToRepo != localRepo {
		errs = append(errs, types.ValidationError{
			File:    doc.FilePath,
			Field:   "to_repo",
			Message: fmt.Sprintf("incoming handoff must have to_repo %q, got %q", localRepo, fm.ToRepo),
			Code:    types.CodeRepoMismatch,
		})
	}

	return errs
}

// ValidateCorpus validates every document and additionally detects
// duplicate handoff_ids across the whole corpus. Each file in a duplicate
// group gets its own error naming the sibling paths, so every offending
// file is flagged independently.
func ValidateCorpus(docs []types.HandoffDocument, localRepo string) []types.ValidationError {
	var errs []types.ValidationError
	for _, doc := range docs {
		errs = append(errs, ValidateDocument(doc, localRepo)...)
	}

	byID := make(map[string][]string)
	for _, doc := range docs {
		id := doc.Frontmatter.HandoffID
		if id == "" {
			continue
		}
		byID[id] = append(byID[id], doc.FilePath)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		paths := byID[id]
		if len(paths) < 2 {
			continue
		}
		for _, path := range paths {
			siblings := make([]string, 0, len(paths)-1)
			for _, other := range paths {
				if other != path {
					siblings = append(siblings, other)
				}
			}
			errs = append(errs, types.ValidationError{
				File:    path,
				Field:   "handoff_id",
				Message: fmt.Sprintf("duplicate handoff_id %q also used by: %s", id, strings.Join(siblings, ", ")),
				Code:    types.CodeDuplicateID,
			})
		}
	}

	return errs
}

// CheckTransition validates a manual handoff status change. Identity
// transitions are always legal. An illegal transition returns a
// descriptive error naming the allowed set; it never panics.
func CheckTransition(from, to types.Status) error {
	if from.CanTransition(to) {
		return nil
	}
	return fmt.Errorf("illegal status transition %s -> %s (allowed from %s: %s)",
		from, to, from, from.DescribeAllowed())
}
