// Package loader discovers and parses handoff documents from a directory.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/steveyegge/handoff/internal/frontmatter"
	"github.com/steveyegge/handoff/internal/types"
)

// Subdirectories of the handoff dir that hold derived documents, not
// handoffs themselves.
const (
	PlansDir   = "plans"
	ReportsDir = "reports"
)

// Result holds the loaded corpus plus any structural parse failures.
// A document that fails to parse never blocks the rest of the corpus.
type Result struct {
	Documents []types.HandoffDocument
	Errors    []types.ValidationError
}

// Load walks dir and parses every markdown file into a HandoffDocument.
// The plans/ and reports/ subdirectories and hidden directories are
// skipped. Documents are returned sorted by file path for deterministic
// downstream processing.
func Load(dir string) (Result, error) {
	var result Result

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || name == PlansDir || name == ReportsDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		doc, verr := parseFile(path)
		if verr != nil {
			result.Errors = append(result.Errors, *verr)
			return nil
		}
		result.Documents = append(result.Documents, doc)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("walking %s: %w", dir, err)
	}

	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].FilePath < result.Documents[j].FilePath
	})
	return result, nil
}

// LoadFile parses a single handoff document.
func LoadFile(path string) (types.HandoffDocument, error) {
	doc, verr := parseFile(path)
	if verr != nil {
		return types.HandoffDocument{}, fmt.Errorf("%s", verr.Message)
	}
	return doc, nil
}

// FindByID loads the corpus and returns the document with the given id.
func FindByID(dir, handoffID string) (types.HandoffDocument, error) {
	result, err := Load(dir)
	if err != nil {
		return types.HandoffDocument{}, err
	}
	for _, doc := range result.Documents {
		if doc.Frontmatter.HandoffID == handoffID {
			return doc, nil
		}
	}
	return types.HandoffDocument{}, fmt.Errorf("handoff %s not found in %s", handoffID, dir)
}

func parseFile(path string) (types.HandoffDocument, *types.ValidationError) {
	content, err := os.ReadFile(path) // #nosec G304 - path comes from directory walk
	if err != nil {
		return types.HandoffDocument{}, &types.ValidationError{
			File:    path,
			Message: fmt.Sprintf("reading file: %v", err),
			Code:    types.CodeMissingField,
		}
	}

	var fm types.HandoffFrontmatter
	body, err := frontmatter.Parse(string(content), &fm)
	if err != nil {
		return types.HandoffDocument{}, &types.ValidationError{
			File:    path,
			Message: err.Error(),
			Code:    types.CodeMissingField,
		}
	}

	return types.HandoffDocument{
		Frontmatter: fm,
		Body:        body,
		FilePath:    path,
	}, nil
}
