package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/handoff/internal/frontmatter"
)

// Create writes a freshly generated plan at path. It refuses to proceed
// if the file already exists: regeneration would silently discard
// completion progress, so this is a hard error, not a no-op.
func Create(path string, p ConsumptionPlan) error {
	content, err := Serialize(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating plan directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) // #nosec G304 - canonical path
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("plan already exists at %s: refusing to overwrite (completion progress would be lost)", path)
		}
		return fmt.Errorf("creating plan file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("writing plan file: %w", err)
	}
	return nil
}

// LoadFile parses the plan at path.
func LoadFile(path string) (ConsumptionPlan, error) {
	content, err := os.ReadFile(path) // #nosec G304 - canonical path
	if err != nil {
		return ConsumptionPlan{}, fmt.Errorf("reading plan: %w", err)
	}
	return Parse(string(content))
}

// Complete applies the completion workflow to a serialized plan: mark
// the given requirement ids complete, recompute counts and auto-status,
// and return the updated document text. Only the frontmatter and the
// checklist marks change; the rest of the body, including the advisory
// risk/test/file sections, passes through untouched.
func Complete(content string, reqIDs []string, now time.Time) (string, ConsumptionPlan, error) {
	p, err := Parse(content)
	if err != nil {
		return "", p, err
	}

	reqs := p.Requirements
	for _, id := range reqIDs {
		reqs, err = MarkRequirementComplete(reqs, id)
		if err != nil {
			return "", p, err
		}
	}
	p.Requirements = reqs
	p.Recompute(now)

	updated, err := rewrite(content, p)
	if err != nil {
		return "", p, err
	}
	return updated, p, nil
}

// Transition applies a guarded manual status change to a serialized
// plan, stamping updated_at.
func Transition(content string, to Status, now time.Time) (string, ConsumptionPlan, error) {
	p, err := Parse(content)
	if err != nil {
		return "", p, err
	}
	if err := CheckTransition(p.Frontmatter.Status, to); err != nil {
		return "", p, err
	}
	p.Frontmatter.Status = to
	p.Frontmatter.UpdatedAt = now

	updated, err := rewrite(content, p)
	if err != nil {
		return "", p, err
	}
	return updated, p, nil
}

// rewrite re-renders the frontmatter from p and flips checklist marks in
// the original body to match p's requirements.
func rewrite(content string, p ConsumptionPlan) (string, error) {
	completed := make(map[string]bool, len(p.Requirements))
	for _, r := range p.Requirements {
		completed[r.ID] = r.Completed
	}

	_, body, err := frontmatter.Split(content)
	if err != nil {
		return "", err
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		m := checklistLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		mark := " "
		if completed[m[2]] {
			mark = "x"
		}
		lines[i] = fmt.Sprintf("- [%s] **%s**: %s", mark, m[2], m[3])
	}

	return frontmatter.Render(p.Frontmatter, strings.Join(lines, "\n"))
}
