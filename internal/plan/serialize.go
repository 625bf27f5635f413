package plan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/steveyegge/handoff/internal/extract"
	"github.com/steveyegge/handoff/internal/frontmatter"
)

// checklistLine matches one serialized requirement:
//
//	- [ ] **REQ-001**: description text
//	- [x] **REQ-002**: another one
//
// This is the only machine-reparsed part of the plan body; the risk,
// test-plan, and file tables are for humans.
var checklistLine = regexp.MustCompile(`^- \[( |x|X)\] \*\*(REQ-\d{3})\*\*: (.+)$`)

// Serialize renders the plan as YAML frontmatter plus a markdown body.
func Serialize(p ConsumptionPlan) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# Consumption Plan: %s\n\n", p.Frontmatter.HandoffID)

	if p.Summary != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(p.Summary)
		b.WriteString("\n\n")
	}

	b.WriteString("## Requirements\n\n")
	for _, r := range p.Requirements {
		mark := " "
		if r.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] **%s**: %s\n", mark, r.ID, r.Description)
	}
	b.WriteString("\n")

	if len(p.Requirements) > 0 {
		b.WriteString("### Details\n\n")
		b.WriteString("| ID | Category | Priority | Source |\n")
		b.WriteString("|----|----------|----------|--------|\n")
		for _, r := range p.Requirements {
			fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", r.ID, r.Category, r.Priority, r.Source)
		}
		b.WriteString("\n")
	}

	if len(p.Risks) > 0 {
		b.WriteString("## Risks\n\n")
		for _, risk := range p.Risks {
			fmt.Fprintf(&b, "- %s\n", risk)
		}
		b.WriteString("\n")
	}

	if len(p.TestPlan) > 0 {
		b.WriteString("## Test Plan\n\n")
		for _, t := range p.TestPlan {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		b.WriteString("\n")
	}

	if len(p.ImpactedFiles) > 0 {
		b.WriteString("## Impacted Files\n\n")
		for _, f := range p.ImpactedFiles {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
		b.WriteString("\n")
	}

	return frontmatter.Render(p.Frontmatter, b.String())
}

// Parse reconstructs a plan from its serialized form. The round trip is
// deliberately lossy: only the requirement ids, descriptions, and
// completed flags are recovered from the checklist; category, priority,
// test, and file metadata are advisory and stay behind in the prose.
func Parse(content string) (ConsumptionPlan, error) {
	var p ConsumptionPlan
	body, err := frontmatter.Parse(content, &p.Frontmatter)
	if err != nil {
		return p, fmt.Errorf("parsing plan: %w", err)
	}

	for _, line := range strings.Split(body, "\n") {
		m := checklistLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p.Requirements = append(p.Requirements, extract.Requirement{
			ID:          m[2],
			Description: m[3],
			Completed:   m[1] == "x" || m[1] == "X",
		})
	}

	return p, nil
}
