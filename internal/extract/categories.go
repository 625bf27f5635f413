package extract

// Category labels one extracted requirement with the kind of work it
// implies. Categories are a fixed, ordered set; the order doubles as the
// priority ranking and as the tie-break during scoring.
type Category string

const (
	CategoryAPIClient  Category = "api_client"
	CategorySchema     Category = "schema"
	CategoryUI         Category = "ui"
	CategoryLogging    Category = "logging"
	CategoryTesting    Category = "testing"
	CategoryDeployment Category = "deployment"
)

// CategoryOrder is the canonical iteration order. Position determines
// priority (1-based, lower is more urgent) and settles scoring ties: the
// earliest category wins, so api_client is the default when nothing
// matches at all.
var CategoryOrder = []Category{
	CategoryAPIClient,
	CategorySchema,
	CategoryUI,
	CategoryLogging,
	CategoryTesting,
	CategoryDeployment,
}

// Priority returns the 1-based priority of a category, or 0 for an
// unknown category.
func (c Category) Priority() int {
	for i, cat := range CategoryOrder {
		if cat == c {
			return i + 1
		}
	}
	return 0
}

// categoryKeywords drives the substring scorer. Multiple occurrences of
// the same keyword in a description count once.
var categoryKeywords = map[Category][]string{
	CategoryAPIClient: {
		"api", "endpoint", "route", "client", "request", "response",
		"http", "rest", "fetch", "call",
	},
	CategorySchema: {
		"schema", "model", "migration", "field", "column", "table",
		"database", "type definition", "contract",
	},
	CategoryUI: {
		"ui", "component", "render", "page", "view", "form", "button",
		"display", "screen", "layout",
	},
	CategoryLogging: {
		"log", "logging", "trace", "audit", "telemetry", "metric",
		"observab",
	},
	CategoryTesting: {
		"test", "coverage", "assert", "mock", "fixture", "e2e",
		"regression",
	},
	CategoryDeployment: {
		"deploy", "release", "rollout", "pipeline", "ci/cd", "docker",
		"infra", "provision",
	},
}

// categoryTests provides fixed inferred test descriptions per category.
// They are advisory hints, derived from the category alone, never from
// the description text.
var categoryTests = map[Category][]string{
	CategoryAPIClient: {
		"unit test the client call with a stubbed transport",
		"integration test the happy path against a recorded response",
		"verify error mapping for non-2xx responses",
	},
	CategorySchema: {
		"round-trip serialize/deserialize the changed types",
		"verify migration applies to an existing dataset",
	},
	CategoryUI: {
		"render the affected view with representative data",
		"verify user-visible error states",
	},
	CategoryLogging: {
		"assert log output contains the new fields",
		"verify log level filtering",
	},
	CategoryTesting: {
		"run the full suite and confirm no regressions",
	},
	CategoryDeployment: {
		"dry-run the deployment pipeline",
		"verify rollback path",
	},
}

// categoryFiles provides fixed impacted-file-path hints per category.
var categoryFiles = map[Category][]string{
	CategoryAPIClient:  {"internal/api/", "internal/client/"},
	CategorySchema:     {"internal/types/", "migrations/"},
	CategoryUI:         {"ui/", "internal/views/"},
	CategoryLogging:    {"internal/logging/"},
	CategoryTesting:    {"internal/testutil/"},
	CategoryDeployment: {"deploy/", ".ci/"},
}

// InferredTests returns the fixed test hints for a category.
func InferredTests(c Category) []string {
	return append([]string(nil), categoryTests[c]...)
}

// InferredFiles returns the fixed impacted-file hints for a category.
func InferredFiles(c Category) []string {
	return append([]string(nil), categoryFiles[c]...)
}
