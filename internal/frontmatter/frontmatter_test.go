package frontmatter

import (
	"strings"
	"testing"
)

const sampleDoc = `---
handoff_id: 031-auth-tokens
status: new
---

# Auth token handoff

Body text here.
`

func TestSplit(t *testing.T) {
	header, body, err := Split(sampleDoc)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if !strings.Contains(header, "handoff_id: 031-auth-tokens") {
		t.Errorf("header missing handoff_id: %q", header)
	}
	if !strings.HasPrefix(body, "# Auth token handoff") {
		t.Errorf("body has wrong prefix: %q", body)
	}
	if strings.Contains(body, Delimiter) {
		t.Errorf("body should not contain fence: %q", body)
	}
}

func TestSplitErrors(t *testing.T) {
	if _, _, err := Split("no frontmatter at all\n"); err == nil {
		t.Error("expected error for missing opening fence")
	}
	if _, _, err := Split("---\nkey: value\nno closing fence\n"); err == nil {
		t.Error("expected error for unterminated frontmatter")
	}
}

func TestParseAndRenderRoundTrip(t *testing.T) {
	type fm struct {
		ID     string `yaml:"handoff_id"`
		Status string `yaml:"status"`
	}

	var parsed fm
	body, err := Parse(sampleDoc, &parsed)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.ID != "031-auth-tokens" || parsed.Status != "new" {
		t.Errorf("unexpected frontmatter: %+v", parsed)
	}

	rendered, err := Render(parsed, body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var reparsed fm
	body2, err := Parse(rendered, &reparsed)
	if err != nil {
		t.Fatalf("Parse(rendered): %v", err)
	}
	if reparsed != parsed {
		t.Errorf("round trip changed frontmatter: %+v vs %+v", reparsed, parsed)
	}
	if strings.TrimSpace(body2) != strings.TrimSpace(body) {
		t.Errorf("round trip changed body: %q vs %q", body2, body)
	}
}
