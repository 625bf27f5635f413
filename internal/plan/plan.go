// Package plan builds, serializes, parses, and updates consumption plans:
// the derived work-tracking document generated from one handoff, with its
// own status state machine.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/handoff/internal/extract"
	"github.com/steveyegge/handoff/internal/types"
)

// Frontmatter is the YAML header of a consumption plan document.
type Frontmatter struct {
	HandoffID         string    `yaml:"handoff_id"`
	SourceHandoff     string    `yaml:"source_handoff"`
	Status            Status    `yaml:"status"`
	CreatedAt         time.Time `yaml:"created_at"`
	UpdatedAt         time.Time `yaml:"updated_at"`
	RequirementsTotal int       `yaml:"requirements_total"`
	RequirementsDone  int       `yaml:"requirements_done"`
	BreakingChange    bool      `yaml:"breaking_change"`
}

// ConsumptionPlan is the in-memory form of a plan document.
type ConsumptionPlan struct {
	Frontmatter   Frontmatter
	Summary       string
	Requirements  []extract.Requirement
	Risks         []string
	TestPlan      []string
	ImpactedFiles []string
}

// CanonicalPath returns where the plan for a handoff lives under the
// handoffs directory.
func CanonicalPath(handoffDir, handoffID string) string {
	return filepath.Join(handoffDir, "plans", handoffID+"-plan.md")
}

// Generate builds a fresh plan from a handoff document. Requirements are
// extracted and categorized; risks come from the handoff's risks[], the
// test plan is the handoff's verification[] plus the per-requirement
// inferred tests, and impacted files are the deduplicated union of the
// per-requirement hints.
func Generate(doc types.HandoffDocument, now time.Time) ConsumptionPlan {
	reqs := extract.ParseHandoffToRequirements(doc)

	var testPlan []string
	testPlan = append(testPlan, doc.Frontmatter.Verification...)
	seenTest := make(map[string]bool, len(testPlan))
	for _, t := range testPlan {
		seenTest[t] = true
	}
	var files []string
	seenFile := make(map[string]bool)
	for _, r := range reqs {
		for _, t := range r.Tests {
			if !seenTest[t] {
				seenTest[t] = true
				testPlan = append(testPlan, t)
			}
		}
		for _, f := range r.Files {
			if !seenFile[f] {
				seenFile[f] = true
				files = append(files, f)
			}
		}
	}

	summary := strings.TrimSpace(doc.Frontmatter.Notes)
	if summary == "" {
		summary = firstParagraph(doc.Body)
	}

	return ConsumptionPlan{
		Frontmatter: Frontmatter{
			HandoffID:         doc.Frontmatter.HandoffID,
			SourceHandoff:     doc.FilePath,
			Status:            StatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
			RequirementsTotal: len(reqs),
			RequirementsDone:  0,
		},
		Summary:       summary,
		Requirements:  reqs,
		Risks:         append([]string(nil), doc.Frontmatter.Risks...),
		TestPlan:      testPlan,
		ImpactedFiles: files,
	}
}

// MarkRequirementComplete returns a copy of reqs with the named
// requirement's completed flag set. It does not mutate its input and
// does not touch counts or status; the caller recomputes those before
// persisting. Unknown ids are an error.
func MarkRequirementComplete(reqs []extract.Requirement, reqID string) ([]extract.Requirement, error) {
	updated := make([]extract.Requirement, len(reqs))
	copy(updated, reqs)
	for i := range updated {
		if updated[i].ID == reqID {
			updated[i].Completed = true
			return updated, nil
		}
	}
	return nil, fmt.Errorf("requirement %s not found in plan", reqID)
}

// Recompute refreshes the completion counts, derives the status from
// them, and stamps updated_at. Manual states (review, done, blocked) are
// left alone: auto-status only drives the pending/in_progress/testing
// segment of the machine.
func (p *ConsumptionPlan) Recompute(now time.Time) {
	done := 0
	for _, r := range p.Requirements {
		if r.Completed {
			done++
		}
	}
	p.Frontmatter.RequirementsTotal = len(p.Requirements)
	p.Frontmatter.RequirementsDone = done
	switch p.Frontmatter.Status {
	case StatusReview, StatusDone, StatusBlocked:
		// manual territory
	default:
		p.Frontmatter.Status = CalculateAutoStatus(len(p.Requirements), done)
	}
	p.Frontmatter.UpdatedAt = now
}

func firstParagraph(body string) string {
	for _, para := range strings.Split(body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || strings.HasPrefix(para, "#") {
			continue
		}
		return para
	}
	return ""
}
