package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/steveyegge/handoff/internal/types"
)

func doc(id, body string) types.HandoffDocument {
	return types.HandoffDocument{
		Frontmatter: types.HandoffFrontmatter{
			HandoffID: id,
			Status:    types.StatusNew,
		},
		Body: body,
	}
}

func TestContentHashStability(t *testing.T) {
	h1 := ContentHash("some body text")
	h2 := ContentHash("some body text")
	if h1 != h2 {
		t.Errorf("same input produced different hashes: %s vs %s", h1, h2)
	}
	if len(h1) != 12 {
		t.Errorf("expected 12 hex chars, got %d (%s)", len(h1), h1)
	}
	if h3 := ContentHash("some body texT"); h3 == h1 {
		t.Error("one-character change should change the hash")
	}
}

func TestDetectNewBranches(t *testing.T) {
	state := NewState()
	state.Seen["001-known"] = SeenEntry{
		Status:      types.StatusNew,
		ContentHash: ContentHash("original body"),
	}

	// Branch (a): id absent entirely.
	fresh := DetectNew(state, []types.HandoffDocument{doc("002-unknown", "whatever")})
	if len(fresh) != 1 || fresh[0].Frontmatter.HandoffID != "002-unknown" {
		t.Errorf("absent id should be new: %v", fresh)
	}

	// Branch (b): id present but hash differs (document was edited).
	fresh = DetectNew(state, []types.HandoffDocument{doc("001-known", "edited body")})
	if len(fresh) != 1 {
		t.Errorf("edited document should be new: %v", fresh)
	}

	// Neither: id present and hash matches.
	fresh = DetectNew(state, []types.HandoffDocument{doc("001-known", "original body")})
	if len(fresh) != 0 {
		t.Errorf("unchanged document should not be new: %v", fresh)
	}
}

func TestUpdateStateDropsStaleEntries(t *testing.T) {
	state := NewState()
	state.Seen["001-old"] = SeenEntry{ContentHash: "cafecafecafe"}

	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	UpdateState(state, []types.HandoffDocument{doc("002-current", "body")}, now)

	if _, ok := state.Seen["001-old"]; ok {
		t.Error("stale entry should have been dropped")
	}
	entry, ok := state.Seen["002-current"]
	if !ok {
		t.Fatal("current document missing from state")
	}
	if entry.ContentHash != ContentHash("body") {
		t.Errorf("wrong hash recorded: %s", entry.ContentHash)
	}
	if !entry.LastSeen.Equal(now) || !state.LastRun.Equal(now) {
		t.Error("timestamps not stamped")
	}
}

func TestFileStateStoreMissingFile(t *testing.T) {
	store := NewFileStateStore(filepath.Join(t.TempDir(), "nope.json"))
	var warnings []string
	store.Warnf = func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Seen) != 0 || state.Version != StateVersion {
		t.Errorf("expected fresh state, got %+v", state)
	}
	if len(warnings) != 0 {
		t.Errorf("missing file should not warn: %v", warnings)
	}
}

func TestFileStateStoreCorruptAndVersionSkew(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewFileStateStore(corrupt)
	var warnings []string
	store.Warnf = func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	state, _ := store.Load()
	if len(state.Seen) != 0 {
		t.Error("corrupt file should yield fresh state")
	}
	if len(warnings) != 1 {
		t.Errorf("corrupt file should warn once: %v", warnings)
	}

	skewed := filepath.Join(dir, "skewed.json")
	if err := os.WriteFile(skewed, []byte(`{"version": 99, "seen": {"001-x": {"status": "new", "contentHash": "abc"}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	store = NewFileStateStore(skewed)
	warnings = nil
	store.Warnf = func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	state, _ = store.Load()
	if len(warnings) != 1 {
		t.Errorf("version skew should warn: %v", warnings)
	}
	// Tolerated, not rejected: entries survive.
	if _, ok := state.Seen["001-x"]; !ok {
		t.Error("entries from a future-version file should be kept")
	}
}

func TestFileStateStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewFileStateStore(path)

	state := NewState()
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	UpdateState(state, []types.HandoffDocument{doc("001-x", "body")}, now)
	if err := store.Save(state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Seen["001-x"].ContentHash != ContentHash("body") {
		t.Errorf("round trip lost data: %+v", loaded)
	}
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	// Point at a path whose parent does not exist.
	store := NewFileStateStore(filepath.Join(t.TempDir(), "missing", "state.json"))
	var warnings []string
	store.Warnf = func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}
	if err := store.Save(NewState()); err != nil {
		t.Errorf("Save must swallow write failures, got %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("failed save should warn: %v", warnings)
	}
}
