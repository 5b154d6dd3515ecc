package assimilate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// StackKeywords are the technologies recognized by DetectStack.
var StackKeywords = []string{
	"python", "node", "rust", "go", "java", "php", "ruby", "docker",
	"postgres", "react", "nextjs", "django", "flask",
	"macos", "windows", "linux", "vscode", "idea",
}

// StackAliases maps framework and language names onto the base keyword they
// imply.
var StackAliases = map[string]string{
	"js":         "node",
	"javascript": "node",
	"typescript": "node",
	"sveltekit":  "node",
	"svelte":     "node",
	"vue":        "node",
	"fastapi":    "python",
	"golang":     "go",
	"cargo":      "rust",
}

var stackPatterns = compileStackPatterns()

func compileStackPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(StackKeywords)+len(StackAliases))
	for _, k := range StackKeywords {
		patterns[k] = regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
	}
	for alias := range StackAliases {
		patterns[alias] = regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\b`)
	}
	return patterns
}

// DetectStack returns the sorted, deduplicated technology keywords mentioned
// in text as whole words. Aliases resolve to their base keyword and frameworks
// also pull in the base they run on.
func DetectStack(text string) []string {
	lower := strings.ToLower(text)
	found := make(map[string]struct{})

	for _, k := range StackKeywords {
		if stackPatterns[k].MatchString(lower) {
			found[k] = struct{}{}
		}
	}
	for alias, base := range StackAliases {
		if stackPatterns[alias].MatchString(lower) {
			found[base] = struct{}{}
		}
	}
	for k := range found {
		if base, ok := frameworkBase[k]; ok {
			found[base] = struct{}{}
		}
	}

	out := make([]string, 0, len(found))
	for k := range found {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

var frameworkBase = map[string]string{
	"react":  "node",
	"nextjs": "node",
	"django": "python",
	"flask":  "python",
}

// ParseStack splits a comma- or space-separated keyword list.
func ParseStack(input string) []string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// TechDocSlug names the deep dive document among the docs artifacts.
const TechDocSlug = "tech_stack"

var stackProfiles = map[string]struct{ name, note string }{
	"python":   {"Python", "Pin the interpreter version and keep dependencies in a lock file."},
	"node":     {"Node.js", "Commit the package lock and keep the engines field in package.json current."},
	"rust":     {"Rust", "Run clippy and rustfmt before every commit; keep Cargo.lock for binaries."},
	"go":       {"Go", "Keep go.mod tidy and run go vet and the race detector in CI."},
	"java":     {"Java", "Fix the JDK version in the build tool and keep dependency versions explicit."},
	"php":      {"PHP", "Commit composer.lock and match the PHP version across environments."},
	"ruby":     {"Ruby", "Commit Gemfile.lock and pin the Ruby version."},
	"docker":   {"Docker", "Use small pinned base images and keep secrets out of image layers."},
	"postgres": {"PostgreSQL", "Version every schema change as a migration."},
	"react":    {"React", "Prefer function components and keep state close to where it is used."},
	"nextjs":   {"Next.js", "Decide per route between server and client rendering."},
	"django":   {"Django", "Keep settings per environment and never run with DEBUG in production."},
	"flask":    {"Flask", "Use the application factory pattern and blueprints."},
	"macos":    {"macOS", "Development platform."},
	"windows":  {"Windows", "Watch for path separators and line endings."},
	"linux":    {"Linux", "Development or deployment platform."},
	"vscode":   {"VS Code", "Share workspace settings and recommended extensions."},
	"idea":     {"IntelliJ IDEA", "Keep shared run configurations in version control."},
}

var observations = []struct {
	pattern *regexp.Regexp
	note    string
}{
	{regexp.MustCompile(`\bapis?\b|fastapi|\brest\b|graphql|endpoint`), "API: the project exposes or consumes an API; keep its contract documented and versioned."},
	{regexp.MustCompile(`frontend|front-end|\bui\b`), "Frontend: a user interface is part of the system."},
	{regexp.MustCompile(`backend|back-end|\bserver\b`), "Backend: server-side code is part of the system."},
	{regexp.MustCompile(`database|postgres|mysql|sqlite|mongo|redis`), "Persistence: data is stored in a database; changes need migrations."},
	{regexp.MustCompile(`docker|container|kubernetes|\bk8s\b`), "Containers: the project is built or deployed as containers."},
	{regexp.MustCompile(`\btests?\b|pytest|jest|coverage`), "Testing: automated tests are expected."},
	{regexp.MustCompile(`\bci\b|pipeline|github actions`), "CI: changes go through an automated pipeline."},
}

// TechDeepDive renders a document describing the detected stack and the
// architectural patterns mentioned in raw.
func TechDeepDive(stack []string, raw string) string {
	var b strings.Builder
	b.WriteString("# Tech Stack Deep Dive\n\n## Technologies\n\n")
	if len(stack) == 0 {
		b.WriteString("- None detected.\n")
	}
	for _, k := range stack {
		if p, ok := stackProfiles[k]; ok {
			fmt.Fprintf(&b, "- **%s**: %s\n", p.name, p.note)
		} else {
			fmt.Fprintf(&b, "- **%s**\n", k)
		}
	}

	b.WriteString("\n## Observations\n\n")
	lower := strings.ToLower(raw)
	seen := 0
	for _, o := range observations {
		if o.pattern.MatchString(lower) {
			fmt.Fprintf(&b, "- %s\n", o.note)
			seen++
		}
	}
	if seen == 0 {
		b.WriteString("- Standard project structure: no architectural patterns were mentioned.\n")
	}
	return b.String()
}
