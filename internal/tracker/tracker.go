// Package tracker persists the cross-run handoff state file and computes
// which documents are new since the last detection run.
//
// The state file is a cache, not a source of truth: it is loaded leniently
// (absence and corruption both yield a fresh empty state) and a failed
// save never fails the run that triggered it.
package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/steveyegge/handoff/internal/types"
)

// StateVersion is the schema version written to new state files.
const StateVersion = 1

// DefaultStateFile is the conventional state file name.
const DefaultStateFile = ".handoff-state.json"

// hashLen is the number of hex characters kept from the sha256 digest.
// 12 hex chars (48 bits) is plenty for a human-scale handoff corpus.
const hashLen = 12

// SeenEntry records what was known about one handoff at the last run.
type SeenEntry struct {
	Status      types.Status `json:"status"`
	LastSeen    time.Time    `json:"lastSeen"`
	ContentHash string       `json:"contentHash"`
}

// State is the persisted cross-run detection state.
type State struct {
	Version int                  `json:"version"`
	LastRun time.Time            `json:"lastRun"`
	Seen    map[string]SeenEntry `json:"seen"`
}

// NewState returns an empty state at the current schema version.
func NewState() *State {
	return &State{
		Version: StateVersion,
		Seen:    make(map[string]SeenEntry),
	}
}

// StateStore loads and saves detection state. Injected so the tracker is
// testable without a filesystem.
type StateStore interface {
	Load() (*State, error)
	Save(*State) error
}

// FileStateStore persists state as JSON at a fixed path.
type FileStateStore struct {
	Path string
	// Warnf receives non-fatal diagnostics (corrupt file, version skew,
	// failed save). Defaults to stderr.
	Warnf func(format string, args ...interface{})
}

// NewFileStateStore creates a store for the given path.
func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{Path: path}
}

func (s *FileStateStore) warnf(format string, args ...interface{}) {
	if s.Warnf != nil {
		s.Warnf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// Load reads the state file. A missing file yields a fresh empty state
// with no warning; a corrupt file yields a fresh state with a warning;
// an unknown version is tolerated with a warning. Load never fails.
func (s *FileStateStore) Load() (*State, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	if err != nil {
		s.warnf("could not read state file %s: %v (starting fresh)", s.Path, err)
		return NewState(), nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		s.warnf("corrupt state file %s: %v (starting fresh)", s.Path, err)
		return NewState(), nil
	}
	if state.Version != StateVersion {
		s.warnf("state file %s has version %d, expected %d (continuing anyway)", s.Path, state.Version, StateVersion)
	}
	if state.Seen == nil {
		state.Seen = make(map[string]SeenEntry)
	}
	return &state, nil
}

// Save writes the state file. A write failure is logged and swallowed;
// correctness must never depend on the state surviving.
func (s *FileStateStore) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		s.warnf("could not encode state: %v", err)
		return nil
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		s.warnf("could not write state file %s: %v", s.Path, err)
	}
	return nil
}

// ContentHash returns a short deterministic digest of a document body.
func ContentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])[:hashLen]
}

// DetectNew returns the documents that are new since the recorded state:
// either their id has no prior entry, or the stored hash differs from the
// freshly computed one. Edited documents therefore re-notify even when
// their id is unchanged.
func DetectNew(state *State, docs []types.HandoffDocument) []types.HandoffDocument {
	var fresh []types.HandoffDocument
	for _, doc := range docs {
		prior, ok := state.Seen[doc.Frontmatter.HandoffID]
		if !ok || prior.ContentHash != ContentHash(doc.Body) {
			fresh = append(fresh, doc)
		}
	}
	return fresh
}

// UpdateState rebuilds the seen map from the current corpus and stamps
// the run time. Entries for since-deleted handoffs drop out automatically
// because the map is rewritten wholesale.
func UpdateState(state *State, docs []types.HandoffDocument, now time.Time) {
	seen := make(map[string]SeenEntry, len(docs))
	for _, doc := range docs {
		seen[doc.Frontmatter.HandoffID] = SeenEntry{
			Status:      doc.Frontmatter.Status,
			LastSeen:    now,
			ContentHash: ContentHash(doc.Body),
		}
	}
	state.Version = StateVersion
	state.Seen = seen
	state.LastRun = now
}
