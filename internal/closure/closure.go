// Package closure drives a handoff's two terminal paths: successful
// closure after verification, or a block that bounces a new outgoing
// handoff back to the originating repository.
package closure

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/steveyegge/handoff/internal/frontmatter"
	"github.com/steveyegge/handoff/internal/gitstats"
	"github.com/steveyegge/handoff/internal/loader"
	"github.com/steveyegge/handoff/internal/plan"
	"github.com/steveyegge/handoff/internal/types"
	"github.com/steveyegge/handoff/internal/validation"
)

// ReportFrontmatter is the YAML header of a consumption report. Reports
// are write-once terminal artifacts.
type ReportFrontmatter struct {
	HandoffID      string    `yaml:"handoff_id"`
	Status         string    `yaml:"status"` // done | blocked
	CompletedAt    time.Time `yaml:"completed_at"`
	RelatedCommits []string  `yaml:"related_commits"`
	RelatedPRs     []string  `yaml:"related_prs"`
	BlockerHandoff string    `yaml:"blocker_handoff,omitempty"`
}

// VerifyResult is the outcome of one external verification command.
type VerifyResult struct {
	Command string `json:"command"`
	Passed  bool   `json:"passed"`
	Output  string `json:"output"`
}

// Verifier runs one verification command. The collaborator bounds the
// command externally (timeout, sandbox); this layer only consumes the
// result.
type Verifier func(ctx context.Context, command string) VerifyResult

// ShellVerifier runs commands through the shell in dir.
func ShellVerifier(dir string) Verifier {
	return func(ctx context.Context, command string) VerifyResult {
		cmd := exec.CommandContext(ctx, "sh", "-c", command) // #nosec G204 - commands come from the handoff's verification list
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		return VerifyResult{
			Command: command,
			Passed:  err == nil,
			Output:  string(out),
		}
	}
}

// Engine executes closure workflows against one handoffs directory.
type Engine struct {
	Dir       string
	LocalRepo string
	Verify    Verifier
	Stats     *gitstats.Collector
	Now       func() time.Time
}

// NewEngine builds an engine with the real collaborators: a shell
// verifier and a git collector rooted at repoRoot.
func NewEngine(handoffDir, repoRoot, localRepo string) *Engine {
	return &Engine{
		Dir:       handoffDir,
		LocalRepo: localRepo,
		Verify:    ShellVerifier(repoRoot),
		Stats:     gitstats.NewCollector(repoRoot),
		Now:       time.Now,
	}
}

// ReportPath returns the canonical write-once report location.
func ReportPath(handoffDir, handoffID string) string {
	return filepath.Join(handoffDir, loader.ReportsDir, handoffID+"-report.md")
}

// CloseResult summarizes a successful closure.
type CloseResult struct {
	ReportPath string                `json:"report_path"`
	Commits    []gitstats.Commit     `json:"commits"`
	Verified   []VerifyResult        `json:"verified"`
	Summary    gitstats.Summary      `json:"summary"`
	Handoff    types.HandoffDocument `json:"-"`
}

// Close runs the successful-closure path. Every verification command
// from the handoff's verification[] list must pass; on any failure the
// whole operation aborts and the handoff status is left untouched.
func (e *Engine) Close(ctx context.Context, handoffID string) (*CloseResult, error) {
	doc, err := loader.FindByID(e.Dir, handoffID)
	if err != nil {
		return nil, err
	}
	if err := validation.CheckTransition(doc.Frontmatter.Status, types.StatusDone); err != nil {
		return nil, err
	}

	p, err := plan.LoadFile(plan.CanonicalPath(e.Dir, handoffID))
	if err != nil {
		return nil, fmt.Errorf("no consumption plan for %s: %w", handoffID, err)
	}

	var results []VerifyResult
	var failed []string
	for _, command := range doc.Frontmatter.Verification {
		res := e.Verify(ctx, command)
		results = append(results, res)
		if !res.Passed {
			failed = append(failed, command)
		}
	}
	if len(failed) > 0 {
		return nil, fmt.Errorf("verification failed, handoff left untouched: %s", strings.Join(failed, "; "))
	}

	now := e.Now()
	summary := e.Stats.Gather(ctx, p.Frontmatter.CreatedAt)

	hashes := make([]string, len(summary.Commits))
	for i, c := range summary.Commits {
		hashes[i] = c.Hash
	}
	reportPath := ReportPath(e.Dir, handoffID)
	if err := e.writeReport(reportPath, ReportFrontmatter{
		HandoffID:      handoffID,
		Status:         "done",
		CompletedAt:    now,
		RelatedCommits: hashes,
		RelatedPRs:     []string{},
	}, successBody(doc, p, results, summary)); err != nil {
		return nil, err
	}

	if err := rewriteHandoff(doc, func(fm *types.HandoffFrontmatter) {
		fm.Status = types.StatusDone
	}); err != nil {
		return nil, err
	}

	return &CloseResult{
		ReportPath: reportPath,
		Commits:    summary.Commits,
		Verified:   results,
		Summary:    summary,
		Handoff:    doc,
	}, nil
}

// BlockResult summarizes a block.
type BlockResult struct {
	ReportPath     string       `json:"report_path"`
	BlockerID      string       `json:"blocker_id"`
	BlockerPath    string       `json:"blocker_path"`
	OriginalStatus types.Status `json:"original_status"`
}

// Block runs the blocked path: it generates a new outgoing blocker
// handoff addressed back to the originating repository, flips the
// original handoff to blocked with a back-reference, and writes a
// blocked report.
func (e *Engine) Block(ctx context.Context, handoffID, reason string) (*BlockResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("a blocker reason is required")
	}
	doc, err := loader.FindByID(e.Dir, handoffID)
	if err != nil {
		return nil, err
	}
	if err := validation.CheckTransition(doc.Frontmatter.Status, types.StatusBlocked); err != nil {
		return nil, err
	}
	// The report is written last, so its existence must be checked
	// first: otherwise a repeated block would generate an orphan
	// blocker handoff and re-point the back-references before failing
	// at the write-once report.
	reportPath := ReportPath(e.Dir, handoffID)
	if _, err := os.Stat(reportPath); err == nil {
		return nil, fmt.Errorf("handoff %s already has a report at %s: it was already closed or blocked", handoffID, reportPath)
	}

	now := e.Now()

	blockerID, err := e.nextID("blocked-" + slugOf(handoffID))
	if err != nil {
		return nil, err
	}
	blockerPath := filepath.Join(e.Dir, blockerID+".md")
	blocker := types.HandoffFrontmatter{
		HandoffID: blockerID,
		Direction: types.DirectionOutgoing,
		FromRepo:  e.LocalRepo,
		ToRepo:    doc.Frontmatter.FromRepo,
		CreatedAt: now,
		Status:    types.StatusNew,
		Notes:     fmt.Sprintf("Blocks consumption of %s: %s", handoffID, reason),
	}
	blockerBody := fmt.Sprintf("# Blocked: %s\n\nConsumption of `%s` cannot proceed.\n\n**Reason**: %s\n",
		handoffID, handoffID, reason)
	content, err := frontmatter.Render(blocker, blockerBody)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(blockerPath, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("writing blocker handoff: %w", err)
	}

	if err := rewriteHandoff(doc, func(fm *types.HandoffFrontmatter) {
		fm.Status = types.StatusBlocked
		fm.BlockerReason = reason
		fm.BlockerHandoff = blockerID
	}); err != nil {
		return nil, err
	}

	// Change stats are best-effort; without a plan we report since the
	// handoff's own creation time.
	since := doc.Frontmatter.CreatedAt
	if p, perr := plan.LoadFile(plan.CanonicalPath(e.Dir, handoffID)); perr == nil {
		since = p.Frontmatter.CreatedAt
	}
	summary := e.Stats.Gather(ctx, since)
	hashes := make([]string, len(summary.Commits))
	for i, c := range summary.Commits {
		hashes[i] = c.Hash
	}

	if err := e.writeReport(reportPath, ReportFrontmatter{
		HandoffID:      handoffID,
		Status:         "blocked",
		CompletedAt:    now,
		RelatedCommits: hashes,
		RelatedPRs:     []string{},
		BlockerHandoff: blockerID,
	}, blockedBody(doc, reason, blockerID, summary)); err != nil {
		return nil, err
	}

	return &BlockResult{
		ReportPath:     reportPath,
		BlockerID:      blockerID,
		BlockerPath:    blockerPath,
		OriginalStatus: types.StatusBlocked,
	}, nil
}

// writeReport creates the report file, refusing to clobber an existing
// one: reports are created once at closure and never mutated afterwards.
func (e *Engine) writeReport(path string, fm ReportFrontmatter, body string) error {
	content, err := frontmatter.Render(fm, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) // #nosec G304 - canonical path
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("report already exists at %s: reports are write-once", path)
		}
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// rewriteHandoff updates a handoff file's frontmatter in place, keeping
// the body byte-for-byte.
func rewriteHandoff(doc types.HandoffDocument, mutate func(*types.HandoffFrontmatter)) error {
	fm := doc.Frontmatter
	mutate(&fm)
	content, err := frontmatter.Render(fm, doc.Body)
	if err != nil {
		return err
	}
	if err := os.WriteFile(doc.FilePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("updating handoff %s: %w", doc.FilePath, err)
	}
	return nil
}

// nextID allocates the next NNN-slug id by scanning the corpus for the
// highest numeric prefix.
func (e *Engine) nextID(slug string) (string, error) {
	result, err := loader.Load(e.Dir)
	if err != nil {
		return "", err
	}
	highest := 0
	for _, d := range result.Documents {
		id := d.Frontmatter.HandoffID
		if len(id) < 4 {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(id[:3], "%d", &n); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%03d-%s", highest+1, slug), nil
}

func slugOf(handoffID string) string {
	if len(handoffID) > 4 {
		return handoffID[4:]
	}
	return handoffID
}

func successBody(doc types.HandoffDocument, p plan.ConsumptionPlan, results []VerifyResult, summary gitstats.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Consumption Report: %s\n\n", doc.Frontmatter.HandoffID)
	fmt.Fprintf(&b, "%d/%d requirements completed; %d verification commands passed.\n\n",
		p.Frontmatter.RequirementsDone, p.Frontmatter.RequirementsTotal, len(results))
	if len(results) > 0 {
		b.WriteString("## Verification\n\n")
		for _, r := range results {
			fmt.Fprintf(&b, "- `%s`: passed\n", r.Command)
		}
		b.WriteString("\n")
	}
	writeChangeSection(&b, summary)
	return b.String()
}

func blockedBody(doc types.HandoffDocument, reason, blockerID string, summary gitstats.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Consumption Report: %s\n\n", doc.Frontmatter.HandoffID)
	fmt.Fprintf(&b, "Consumption is blocked. See outgoing handoff `%s`.\n\n", blockerID)
	fmt.Fprintf(&b, "**Reason**: %s\n\n", reason)
	writeChangeSection(&b, summary)
	return b.String()
}

func writeChangeSection(b *strings.Builder, summary gitstats.Summary) {
	if len(summary.Commits) == 0 {
		return
	}
	b.WriteString("## Changes\n\n")
	fmt.Fprintf(b, "%d files changed, %d insertions, %d deletions across %d commits.\n\n",
		summary.FilesChanged, summary.Insertions, summary.Deletions, len(summary.Commits))
	for _, c := range summary.Commits {
		fmt.Fprintf(b, "- %s %s\n", shortHash(c.Hash), c.Subject)
	}
	b.WriteString("\n")
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
