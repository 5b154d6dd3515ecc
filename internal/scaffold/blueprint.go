package scaffold

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alucardeht/antigravity/internal/doctor"
	"github.com/alucardeht/antigravity/internal/pathguard"
)

var ErrUnknownBlueprint = errors.New("unknown blueprint")

// BlueprintFile is the file name a blueprint is read from when a directory
// is given instead of a file.
const BlueprintFile = "antigravity_blueprint.json"

type BlueprintRule struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Blueprint is a starting point for a kind of project: extra stack keywords,
// source directories and rules on top of the standard tree.
type Blueprint struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Stack       []string        `json:"stack"`
	Dirs        []string        `json:"dirs"`
	Rules       []BlueprintRule `json:"rules"`
}

var builtinBlueprints = []Blueprint{
	{
		Name:        "fastapi",
		Description: "Python API service with FastAPI",
		Stack:       []string{"python"},
		Dirs:        []string{"app", "app/api", "app/models", "tests"},
		Rules: []BlueprintRule{{Name: "fastapi", Content: `# FastAPI Conventions
- Declare request and response bodies as Pydantic models.
- Keep routers in app/api, one module per resource.
- Use dependency injection for database sessions and settings.
- Every endpoint has a test in tests/ using the TestClient.
`}},
	},
	{
		Name:        "go-fiber",
		Description: "Go HTTP service with Fiber",
		Stack:       []string{"go"},
		Dirs:        []string{"cmd", "internal/handlers", "internal/models"},
		Rules: []BlueprintRule{{Name: "go_fiber", Content: `# Go Fiber Conventions
- main lives in cmd/; everything else under internal/.
- Handlers only decode input, call a service and encode output.
- Return errors, never panic in request paths.
- Run go vet and go test -race before committing.
`}},
	},
	{
		Name:        "nextjs",
		Description: "Next.js web application with React",
		Stack:       []string{"node", "nextjs", "react"},
		Dirs:        []string{"app", "components", "lib", "public"},
		Rules: []BlueprintRule{{Name: "nextjs", Content: `# Next.js Conventions
- Use the app router; routes live in app/.
- Components are server components unless they need state or effects.
- Shared UI goes in components/, helpers in lib/.
- Fetch data on the server and pass plain props down.
`}},
	},
	{
		Name:        "rust-axum",
		Description: "Rust HTTP service with Axum",
		Stack:       []string{"rust"},
		Dirs:        []string{"src/routes", "src/models"},
		Rules: []BlueprintRule{{Name: "rust_axum", Content: `# Rust Axum Conventions
- One router module per resource in src/routes.
- Extract shared state with State, never with globals.
- Map errors to responses through a single error type implementing IntoResponse.
- cargo clippy and cargo fmt must pass.
`}},
	},
}

// Blueprints returns the built-in blueprints sorted by name.
func Blueprints() []Blueprint {
	out := slices.Clone(builtinBlueprints)
	slices.SortFunc(out, func(a, b Blueprint) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func LookupBlueprint(name string) (Blueprint, error) {
	for _, b := range builtinBlueprints {
		if b.Name == strings.ToLower(strings.TrimSpace(name)) {
			return b, nil
		}
	}
	return Blueprint{}, fmt.Errorf("%w: %s", ErrUnknownBlueprint, name)
}

// ResolveBlueprint accepts a built-in name, a blueprint JSON file or a
// directory holding BlueprintFile. Remote repositories are not fetched.
func ResolveBlueprint(ref string) (Blueprint, error) {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "git@") {
		return Blueprint{}, fmt.Errorf("remote blueprint %s: clone it and pass the local path", ref)
	}
	if b, err := LookupBlueprint(ref); err == nil {
		return b, nil
	}

	info, err := os.Stat(ref)
	if err != nil {
		return Blueprint{}, fmt.Errorf("%w: %s", ErrUnknownBlueprint, ref)
	}
	file := ref
	if info.IsDir() {
		file = filepath.Join(ref, BlueprintFile)
	}
	return LoadBlueprintFile(file)
}

func LoadBlueprintFile(file string) (Blueprint, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Blueprint{}, err
	}
	var b Blueprint
	if err := json.Unmarshal(data, &b); err != nil {
		return Blueprint{}, fmt.Errorf("parse blueprint %s: %w", file, err)
	}
	if err := b.Validate(); err != nil {
		return Blueprint{}, fmt.Errorf("blueprint %s: %w", file, err)
	}
	return b, nil
}

func (b Blueprint) Validate() error {
	var errs []error
	if strings.TrimSpace(b.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	for _, d := range b.Dirs {
		if _, err := pathguard.Resolve(".", d); err != nil {
			errs = append(errs, fmt.Errorf("dir %q: %w", d, err))
		}
	}
	for i, r := range b.Rules {
		if _, ok := pathguard.Default().Clean(r.Name); !ok {
			errs = append(errs, fmt.Errorf("rule %d has no usable name", i))
		}
		if strings.TrimSpace(r.Content) == "" {
			errs = append(errs, fmt.Errorf("rule %q is empty", r.Name))
		}
	}
	return errors.Join(errs...)
}

// path returns where the rule is written and its content key.
func (r BlueprintRule) path() (rel, key string) {
	slug, _ := pathguard.Default().Clean(r.Name)
	slug = strings.ToLower(slug)
	return ".agent/rules/blueprint_" + slug + ".md", "blueprint/" + slug
}

// apply extends m with the blueprint's directories and rules, skipping
// paths m already has, and returns the content for the new keys.
func (b Blueprint) apply(m *doctor.Manifest) (*doctor.Manifest, map[string]string, error) {
	have := make(map[string]bool)
	for _, e := range m.Entries() {
		have[e.Path] = true
	}

	var extra []doctor.ManifestEntry
	add := func(e doctor.ManifestEntry) {
		e.Path = filepath.ToSlash(filepath.Clean(e.Path))
		if !have[e.Path] {
			have[e.Path] = true
			extra = append(extra, e)
		}
	}
	content := make(map[string]string, len(b.Rules))
	for _, d := range b.Dirs {
		add(doctor.ManifestEntry{Path: d, Kind: doctor.Directory, Required: true})
	}
	for _, r := range b.Rules {
		rel, key := r.path()
		add(doctor.ManifestEntry{Path: rel, Kind: doctor.File, Required: true, DefaultContentKey: key})
		content[key] = r.Content
	}

	extended, err := m.Extend(extra...)
	if err != nil {
		return nil, nil, err
	}
	return extended, content, nil
}
