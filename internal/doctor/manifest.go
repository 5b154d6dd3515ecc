package doctor

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/alucardeht/antigravity/internal/templates"
)

type Kind int

const (
	Directory Kind = iota
	File
)

func (k Kind) String() string {
	if k == Directory {
		return "directory"
	}
	return "file"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "directory":
		*k = Directory
	case "file":
		*k = File
	default:
		return fmt.Errorf("unknown entry kind %q", text)
	}
	return nil
}

// ManifestEntry describes one path a healthy project contains. Path uses
// forward slashes and is relative to the project root. An empty
// DefaultContentKey means the entry has no default content.
type ManifestEntry struct {
	Path              string `json:"path"`
	Kind              Kind   `json:"kind"`
	Required          bool   `json:"required"`
	DefaultContentKey string `json:"default_content_key,omitempty"`
}

// Manifest is an ordered, validated list of entries. It is never modified
// after NewManifest returns.
type Manifest struct {
	entries []ManifestEntry
}

func NewManifest(entries ...ManifestEntry) (*Manifest, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]ManifestEntry, 0, len(entries))

	for _, e := range entries {
		clean, err := cleanEntryPath(e.Path)
		if err != nil {
			return nil, err
		}
		if seen[clean] {
			return nil, fmt.Errorf("duplicate manifest entry %q", clean)
		}
		if e.Kind != Directory && e.Kind != File {
			return nil, fmt.Errorf("manifest entry %q: unknown kind %d", clean, e.Kind)
		}
		if e.Kind == Directory && e.DefaultContentKey != "" {
			return nil, fmt.Errorf("manifest entry %q: directories take no content", clean)
		}
		seen[clean] = true
		e.Path = clean
		out = append(out, e)
	}
	return &Manifest{entries: out}, nil
}

func MustManifest(entries ...ManifestEntry) *Manifest {
	m, err := NewManifest(entries...)
	if err != nil {
		panic(err)
	}
	return m
}

func cleanEntryPath(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" {
		return "", fmt.Errorf("manifest entry with empty path")
	}
	if strings.HasPrefix(p, "/") || (len(p) >= 2 && p[1] == ':') {
		return "", fmt.Errorf("manifest entry %q must be relative", p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("manifest entry %q escapes the project root", p)
	}
	return clean, nil
}

// Entries returns a copy of the entries in manifest order.
func (m *Manifest) Entries() []ManifestEntry {
	return append([]ManifestEntry(nil), m.entries...)
}

func (m *Manifest) Len() int {
	return len(m.entries)
}

// ContentKeys lists the distinct content keys the manifest refers to.
func (m *Manifest) ContentKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, e := range m.entries {
		if e.DefaultContentKey != "" && !seen[e.DefaultContentKey] {
			seen[e.DefaultContentKey] = true
			keys = append(keys, e.DefaultContentKey)
		}
	}
	return keys
}

// Extend returns a new manifest with entries appended, validated the same
// way as NewManifest.
func (m *Manifest) Extend(entries ...ManifestEntry) (*Manifest, error) {
	return NewManifest(append(m.Entries(), entries...)...)
}

// Files returns the paths of the file entries, required or not.
func (m *Manifest) Files() []string {
	var out []string
	for _, e := range m.entries {
		if e.Kind == File {
			out = append(out, e.Path)
		}
	}
	return out
}

func dir(p string) ManifestEntry {
	return ManifestEntry{Path: p, Kind: Directory, Required: true}
}

func file(p, key string) ManifestEntry {
	return ManifestEntry{Path: p, Kind: File, Required: true, DefaultContentKey: key}
}

func optional(e ManifestEntry) ManifestEntry {
	e.Required = false
	return e
}

// DefaultManifest is the tree the init command generates.
func DefaultManifest() *Manifest {
	return MustManifest(
		dir(".agent/rules"),
		dir(".agent/workflows"),
		dir(".agent/skills"),
		dir(".agent/memory"),
		dir("docs/imported"),
		dir("context/raw"),
		optional(dir("src")),
		optional(dir("tests")),
		file(".agent/rules/00_identity.md", templates.KeyIdentity),
		file(".agent/rules/01_tech_stack.md", templates.KeyTechStack),
		file(".agent/rules/02_security.md", templates.KeySecurity),
		file(".agent/rules/03_git.md", templates.KeyGit),
		file(".agent/rules/04_reasoning.md", templates.KeyReasoning),
		file(".agent/workflows/plan.md", templates.KeyPlan),
		file(".agent/workflows/bootstrap.md", templates.KeyBootstrapWorkflow),
		file(".agent/workflows/commit.md", templates.KeyCommit),
		file(".agent/workflows/review.md", templates.KeyReview),
		file(".agent/workflows/save.md", templates.KeySave),
		optional(file(".agent/workflows/doctor.md", templates.KeyDoctorWorkflow)),
		file(".agent/skills/git_automation/SKILL.md", templates.KeyGitSkill),
		file(".agent/skills/secrets_manager/SKILL.md", templates.KeySecretsSkill),
		file(".agent/memory/scratchpad.md", templates.KeyScratchpad),
		optional(file(".agent/memory/links.md", templates.KeyLinks)),
		file("BOOTSTRAP_INSTRUCTIONS.md", templates.KeyBootstrap),
		optional(file(".env.example", templates.KeyEnvExample)),
		file(".agent/manifest.json", templates.KeyManifest),
	)
}

// Descriptor is the content of .agent/manifest.json.
type Descriptor struct {
	Project   string          `json:"project"`
	Generator string          `json:"generator"`
	Version   string          `json:"version"`
	Stack     []string        `json:"stack"`
	Entries   []ManifestEntry `json:"entries"`
}

// Describe renders the manifest.json document for a project.
func (m *Manifest) Describe(project, version string, stack []string) (string, error) {
	if stack == nil {
		stack = []string{}
	}
	d := Descriptor{
		Project:   project,
		Generator: "antigravity",
		Version:   version,
		Stack:     stack,
		Entries:   m.Entries(),
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	return string(data) + "\n", nil
}
