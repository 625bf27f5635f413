// Package extract mines actionable requirements out of handoff documents
// and assigns each one a category and priority with a deterministic
// keyword scorer.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/steveyegge/handoff/internal/frontmatter"
	"github.com/steveyegge/handoff/internal/types"
)

// Requirement is one actionable item extracted from a handoff.
type Requirement struct {
	ID          string   `yaml:"id"`
	Category    Category `yaml:"category"`
	Description string   `yaml:"description"`
	// Source records where the item was mined from: a frontmatter field
	// path like "requires[0]" or a body location like "body:12".
	Source    string   `yaml:"source"`
	Priority  int      `yaml:"priority"`
	Completed bool     `yaml:"completed"`
	Tests     []string `yaml:"tests,omitempty"`
	Files     []string `yaml:"files,omitempty"`
}

// Body-mining patterns. Three independent shapes are recognized; a line
// is mined at most once, checked in this order.
var (
	checklistPattern = regexp.MustCompile(`^\s*- \[( |x|X)\]\s+(.+)$`)
	numberedPattern  = regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`)
	modalPattern     = regexp.MustCompile(`(?i)\b(must|should|shall|need)\b`)
	prefixPattern    = regexp.MustCompile(`^\s*(Requirement|REQ|Task|TODO|Action):\s*(.+)$`)
)

// CategorizeRequirement scores a description against every category's
// keyword list and returns the winner. Each keyword counts at most once
// per category. The strictly highest score wins; ties, including the
// all-zero case, go to the earliest category in CategoryOrder, so an
// unrecognizable description always lands in api_client.
func CategorizeRequirement(description string) Category {
	lower := strings.ToLower(description)

	best := CategoryOrder[0]
	bestScore := -1
	for _, cat := range CategoryOrder {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}
	return best
}

// ParseHandoffToRequirements extracts every actionable item from a
// handoff: the requires[] stubs first, then acceptance[] entries, then
// body-text matches, each group in source order. The result is sorted
// ascending by priority (stable, so ties keep extraction order) and ids
// are assigned REQ-001, REQ-002, ... in final order. Numbering restarts
// on every call.
func ParseHandoffToRequirements(doc types.HandoffDocument) []Requirement {
	var reqs []Requirement

	add := func(description, source string) {
		description = strings.TrimSpace(description)
		if description == "" {
			return
		}
		cat := CategorizeRequirement(description)
		reqs = append(reqs, Requirement{
			Category:    cat,
			Description: description,
			Source:      source,
			Priority:    cat.Priority(),
			Tests:       InferredTests(cat),
			Files:       InferredFiles(cat),
		})
	}

	for i, stub := range doc.Frontmatter.Requires {
		add(stub.Description, fmt.Sprintf("requires[%d]", i))
	}
	for i, acc := range doc.Frontmatter.Acceptance {
		add(acc, fmt.Sprintf("acceptance[%d]", i))
	}

	for i, line := range strings.Split(doc.Body, "\n") {
		if strings.TrimSpace(line) == frontmatter.Delimiter {
			continue
		}
		lineNo := i + 1
		if m := checklistPattern.FindStringSubmatch(line); m != nil {
			add(m[2], fmt.Sprintf("body:%d", lineNo))
			continue
		}
		if m := numberedPattern.FindStringSubmatch(line); m != nil {
			if modalPattern.MatchString(m[1]) {
				add(m[1], fmt.Sprintf("body:%d", lineNo))
			}
			continue
		}
		if m := prefixPattern.FindStringSubmatch(line); m != nil {
			add(m[2], fmt.Sprintf("body:%d", lineNo))
		}
	}

	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].Priority < reqs[j].Priority
	})
	for i := range reqs {
		reqs[i].ID = fmt.Sprintf("REQ-%03d", i+1)
	}
	return reqs
}
