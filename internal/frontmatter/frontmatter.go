// Package frontmatter splits, parses, and renders YAML-frontmatter
// markdown documents: handoffs, consumption plans, and reports all share
// the same envelope.
package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter is the frontmatter fence line.
const Delimiter = "---"

// Split separates a document into its raw YAML header and markdown body.
// The document must start with a delimiter line; the header runs until the
// next delimiter line. The body excludes both fences.
func Split(content string) (header, body string, err error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Delimiter {
		return "", "", fmt.Errorf("document does not start with %q frontmatter fence", Delimiter)
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			header = strings.Join(lines[1:i], "\n")
			body = strings.Join(lines[i+1:], "\n")
			return header, strings.TrimPrefix(body, "\n"), nil
		}
	}
	return "", "", fmt.Errorf("unterminated frontmatter: no closing %q fence", Delimiter)
}

// Parse splits content and unmarshals the header into out.
func Parse(content string, out interface{}) (body string, err error) {
	header, body, err := Split(content)
	if err != nil {
		return "", err
	}
	if err := yaml.Unmarshal([]byte(header), out); err != nil {
		return "", fmt.Errorf("parsing frontmatter: %w", err)
	}
	return body, nil
}

// Render serializes fm as YAML between fences, followed by body.
func Render(fm interface{}, body string) (string, error) {
	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter: %w", err)
	}
	var b strings.Builder
	b.WriteString(Delimiter)
	b.WriteString("\n")
	b.Write(data)
	b.WriteString(Delimiter)
	b.WriteString("\n\n")
	b.WriteString(strings.TrimLeft(body, "\n"))
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	return b.String(), nil
}
