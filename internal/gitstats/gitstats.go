// Package gitstats gathers commit and change summaries from version
// control history. Everything here is best-effort: a repository without
// git, or a failing git binary, degrades to empty results rather than
// aborting the caller's workflow.
package gitstats

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Commit is one entry from git log.
type Commit struct {
	Hash    string `json:"hash"`
	Subject string `json:"subject"`
}

// Summary is the change information gathered for a closure report.
type Summary struct {
	Commits      []Commit `json:"commits"`
	FilesChanged int      `json:"files_changed"`
	Insertions   int      `json:"insertions"`
	Deletions    int      `json:"deletions"`
}

// Runner executes a git subcommand and returns its stdout. Injected so
// tests never need a real repository.
type Runner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// ExecRunner shells out to the git binary.
func ExecRunner(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return out, nil
}

// Collector gathers change summaries from one repository.
type Collector struct {
	Dir    string
	Runner Runner
}

// NewCollector builds a collector for dir using the real git binary.
func NewCollector(dir string) *Collector {
	return &Collector{Dir: dir, Runner: ExecRunner}
}

// maxRetryElapsed bounds the retry window for flaky git invocations
// (e.g. another process holding index.lock).
const maxRetryElapsed = 3 * time.Second

func (c *Collector) run(ctx context.Context, args ...string) ([]byte, error) {
	var out []byte
	op := func() error {
		var err error
		out, err = c.Runner(ctx, c.Dir, args...)
		return err
	}
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxRetryElapsed
	retry := backoff.WithMaxRetries(backoff.WithContext(policy, ctx), 2)
	if err := backoff.Retry(op, retry); err != nil {
		return nil, err
	}
	return out, nil
}

// CommitsSince returns commits newer than the given timestamp, oldest
// last. Failures degrade to an empty list.
func (c *Collector) CommitsSince(ctx context.Context, since time.Time) []Commit {
	out, err := c.run(ctx, "log", "--since", since.UTC().Format(time.RFC3339), "--format=%H%x00%s")
	if err != nil {
		return nil
	}

	var commits []Commit
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\x00", 2)
		if len(parts) != 2 {
			continue
		}
		commits = append(commits, Commit{Hash: parts[0], Subject: parts[1]})
	}
	return commits
}

// Gather collects the full change summary since a timestamp: the commit
// list plus an aggregate diffstat. Any failure yields a partial (or
// empty) summary, never an error.
func (c *Collector) Gather(ctx context.Context, since time.Time) Summary {
	summary := Summary{Commits: c.CommitsSince(ctx, since)}
	if len(summary.Commits) == 0 {
		return summary
	}

	oldest := summary.Commits[len(summary.Commits)-1].Hash
	out, err := c.run(ctx, "diff", "--shortstat", oldest+"^..HEAD")
	if err != nil {
		return summary
	}
	summary.FilesChanged, summary.Insertions, summary.Deletions = parseShortstat(out)
	return summary
}

// parseShortstat reads output like
// " 3 files changed, 40 insertions(+), 7 deletions(-)".
func parseShortstat(out []byte) (files, ins, del int) {
	for _, part := range bytes.Split(bytes.TrimSpace(out), []byte(",")) {
		fields := strings.Fields(string(part))
		if len(fields) < 2 {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(fields[0], "%d", &n); err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(fields[1], "file"):
			files = n
		case strings.HasPrefix(fields[1], "insertion"):
			ins = n
		case strings.HasPrefix(fields[1], "deletion"):
			del = n
		}
	}
	return files, ins, del
}
