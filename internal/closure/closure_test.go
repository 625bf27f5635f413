package closure

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/steveyegge/handoff/internal/gitstats"
	"github.com/steveyegge/handoff/internal/loader"
	"github.com/steveyegge/handoff/internal/plan"
	"github.com/steveyegge/handoff/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozen = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

const handoffDoc = `---
handoff_id: 031-auth-tokens
direction: incoming
from_repo: backend
to_repo: frontend
created_at: 2026-03-01T10:00:00Z
status: in_progress
requires:
  - type: api
    description: add a new route
verification:
  - go test ./...
---

Refresh tokens need scope support.
`

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "031-auth-tokens.md"), []byte(handoffDoc), 0o644))

	doc, err := loader.FindByID(dir, "031-auth-tokens")
	require.NoError(t, err)
	p := plan.Generate(doc, frozen.Add(-48*time.Hour))
	require.NoError(t, plan.Create(plan.CanonicalPath(dir, "031-auth-tokens"), p))
	return dir
}

func testEngine(dir string, verify Verifier) *Engine {
	return &Engine{
		Dir:       dir,
		LocalRepo: "frontend",
		Verify:    verify,
		Stats: &gitstats.Collector{
			Dir: dir,
			Runner: func(_ context.Context, _ string, args ...string) ([]byte, error) {
				if args[0] == "log" {
					return []byte("abc123\x00finish token work\n"), nil
				}
				return []byte(" 2 files changed, 10 insertions(+), 1 deletion(-)\n"), nil
			},
		},
		Now: func() time.Time { return frozen },
	}
}

func passVerifier(ctx context.Context, command string) VerifyResult {
	return VerifyResult{Command: command, Passed: true}
}

func failVerifier(ctx context.Context, command string) VerifyResult {
	return VerifyResult{Command: command, Passed: false, Output: "FAIL"}
}

func TestCloseSuccess(t *testing.T) {
	dir := setupDir(t)
	e := testEngine(dir, passVerifier)

	result, err := e.Close(context.Background(), "031-auth-tokens")
	require.NoError(t, err)

	// Report written with done status and commits.
	data, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "status: done")
	assert.Contains(t, content, "abc123")

	// Handoff flipped to done.
	doc, err := loader.FindByID(dir, "031-auth-tokens")
	require.NoError(t, err)
	assert.Equal(t, types.StatusDone, doc.Frontmatter.Status)
	// Body survives the rewrite.
	assert.Contains(t, doc.Body, "Refresh tokens need scope support.")
}

func TestCloseAbortsOnVerificationFailure(t *testing.T) {
	dir := setupDir(t)
	e := testEngine(dir, failVerifier)

	_, err := e.Close(context.Background(), "031-auth-tokens")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verification failed")
	assert.Contains(t, err.Error(), "go test ./...")

	// Nothing written, status untouched.
	if _, statErr := os.Stat(ReportPath(dir, "031-auth-tokens")); !os.IsNotExist(statErr) {
		t.Error("report must not be written on verification failure")
	}
	doc, err := loader.FindByID(dir, "031-auth-tokens")
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, doc.Frontmatter.Status)
}

func TestCloseRequiresLegalTransition(t *testing.T) {
	dir := t.TempDir()
	doneDoc := strings.Replace(handoffDoc, "status: in_progress", "status: done", 1)
	blocked := strings.Replace(doneDoc, "031-auth-tokens", "032-other", 2)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "032-other.md"), []byte(blocked), 0o644))

	e := testEngine(dir, passVerifier)
	// done is terminal at the handoff level except the identity move,
	// which close performs; it still needs a plan, so expect that error
	// surface rather than a transition one here.
	_, err := e.Close(context.Background(), "032-other")
	require.Error(t, err)
}

func TestBlock(t *testing.T) {
	dir := setupDir(t)
	e := testEngine(dir, passVerifier)

	result, err := e.Block(context.Background(), "031-auth-tokens", "backend token issuer rejects the new scope")
	require.NoError(t, err)

	// The blocker is a fresh outgoing handoff addressed back to origin.
	blocker, err := loader.FindByID(dir, result.BlockerID)
	require.NoError(t, err)
	assert.Equal(t, types.DirectionOutgoing, blocker.Frontmatter.Direction)
	assert.Equal(t, "frontend", blocker.Frontmatter.FromRepo)
	assert.Equal(t, "backend", blocker.Frontmatter.ToRepo)
	assert.Equal(t, types.StatusNew, blocker.Frontmatter.Status)
	assert.Contains(t, blocker.Frontmatter.Notes, "031-auth-tokens")
	assert.Equal(t, "032-blocked-auth-tokens", result.BlockerID)

	// Original flipped to blocked with back-references.
	original, err := loader.FindByID(dir, "031-auth-tokens")
	require.NoError(t, err)
	assert.Equal(t, types.StatusBlocked, original.Frontmatter.Status)
	assert.Equal(t, "backend token issuer rejects the new scope", original.Frontmatter.BlockerReason)
	assert.Equal(t, result.BlockerID, original.Frontmatter.BlockerHandoff)

	// Report carries blocked status and the back-reference.
	data, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "status: blocked")
	assert.Contains(t, string(data), "blocker_handoff: "+result.BlockerID)
}

func TestBlockTwiceLeavesCorpusUntouched(t *testing.T) {
	dir := setupDir(t)
	e := testEngine(dir, passVerifier)

	first, err := e.Block(context.Background(), "031-auth-tokens", "issuer rejects the scope")
	require.NoError(t, err)

	// blocked -> blocked is an identity transition, so the guard alone
	// does not stop a repeat; the existing report must.
	_, err = e.Block(context.Background(), "031-auth-tokens", "still rejects it")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a report")

	// No second blocker handoff was generated.
	if _, statErr := os.Stat(filepath.Join(dir, "033-blocked-auth-tokens.md")); !os.IsNotExist(statErr) {
		t.Error("repeat block must not generate another blocker handoff")
	}

	// Back-references still point at the first block.
	original, err := loader.FindByID(dir, "031-auth-tokens")
	require.NoError(t, err)
	assert.Equal(t, first.BlockerID, original.Frontmatter.BlockerHandoff)
	assert.Equal(t, "issuer rejects the scope", original.Frontmatter.BlockerReason)
}

func TestBlockRequiresReason(t *testing.T) {
	dir := setupDir(t)
	e := testEngine(dir, passVerifier)
	_, err := e.Block(context.Background(), "031-auth-tokens", "   ")
	require.Error(t, err)
}

func TestReportIsWriteOnce(t *testing.T) {
	dir := setupDir(t)
	e := testEngine(dir, passVerifier)

	_, err := e.Close(context.Background(), "031-auth-tokens")
	require.NoError(t, err)

	// A second closure attempt fails at the transition guard (done is
	// terminal), so exercise write-once directly.
	err = e.writeReport(ReportPath(dir, "031-auth-tokens"), ReportFrontmatter{HandoffID: "031-auth-tokens", Status: "done"}, "body\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write-once")
}
