// Package templates holds the default content for generated project files.
//
// A Library maps logical keys to document bodies. It starts from the built-in
// set, accepts dynamic entries computed at runtime (the tech stack rule, the
// manifest description) and can be overlaid by a directory of Markdown files.
package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

var ErrNotFound = errors.New("template not found")

const (
	KeyIdentity          = "rules/00_identity"
	KeyTechStack         = "rules/01_tech_stack"
	KeySecurity          = "rules/02_security"
	KeyGit               = "rules/03_git"
	KeyReasoning         = "rules/04_reasoning"
	KeyPlan              = "workflows/plan"
	KeyBootstrapWorkflow = "workflows/bootstrap"
	KeyCommit            = "workflows/commit"
	KeyReview            = "workflows/review"
	KeySave              = "workflows/save"
	KeyDoctorWorkflow    = "workflows/doctor"
	KeyGitSkill          = "skills/git_automation"
	KeySecretsSkill      = "skills/secrets_manager"
	KeyScratchpad        = "memory/scratchpad"
	KeyLinks             = "memory/links"
	KeyBootstrap         = "bootstrap_instructions"
	KeyEnvExample        = "env_example"
	KeyManifest          = "manifest"
)

// OverridePattern selects the files LoadOverrides reads from a template
// directory. The key is the path relative to that directory without the
// extension.
const OverridePattern = "**/*.md"

type Library struct {
	mu      sync.RWMutex
	entries map[string]string
}

func builtin() map[string]string {
	return map[string]string{
		KeyIdentity:          identityRule,
		KeyTechStack:         TechStackRule(nil),
		KeySecurity:          securityRule,
		KeyGit:               gitRule,
		KeyReasoning:         reasoningRule,
		KeyPlan:              planWorkflow,
		KeyBootstrapWorkflow: bootstrapWorkflow,
		KeyCommit:            commitWorkflow,
		KeyReview:            reviewWorkflow,
		KeySave:              saveWorkflow,
		KeyDoctorWorkflow:    doctorWorkflow,
		KeyGitSkill:          gitSkill,
		KeySecretsSkill:      secretsSkill,
		KeyScratchpad:        scratchpad,
		KeyLinks:             LinksDocument(nil),
		KeyBootstrap:         bootstrapInstructions,
		KeyEnvExample:        envExample,
	}
}

// Default returns a Library populated with the built-in templates. The
// manifest key is dynamic and has no built-in value.
func Default() *Library {
	return &Library{entries: builtin()}
}

// Empty returns a Library with no entries.
func Empty() *Library {
	return &Library{entries: make(map[string]string)}
}

func (l *Library) Get(key string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	content, ok := l.entries[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return content, nil
}

func (l *Library) Set(key, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = content
}

func (l *Library) Has(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.entries[key]
	return ok
}

func (l *Library) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadOverrides replaces entries with the Markdown files found under dir.
// A file at rules/00_identity.md overrides KeyIdentity. Files that do not
// match a known key are added as new entries.
func (l *Library) LoadOverrides(dir string) (int, error) {
	return l.LoadOverridesFS(os.DirFS(dir))
}

func (l *Library) LoadOverridesFS(fsys fs.FS) (int, error) {
	matches, err := doublestar.Glob(fsys, OverridePattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("scan template overrides: %w", err)
	}

	loaded := make(map[string]string, len(matches))
	for _, match := range matches {
		data, err := fs.ReadFile(fsys, match)
		if err != nil {
			return 0, fmt.Errorf("read template %s: %w", match, err)
		}
		loaded[strings.TrimSuffix(match, path.Ext(match))] = string(data)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range loaded {
		l.entries[k] = v
	}
	return len(loaded), nil
}

// TechStackRule renders the tech stack rule for the given keywords.
func TechStackRule(stack []string) string {
	detected := "none (general purpose)"
	if len(stack) > 0 {
		detected = strings.Join(stack, ", ")
	}
	return fmt.Sprintf(techStackRuleHeader, detected)
}

// Link is a sibling project next to the generated one.
type Link struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Kind string `json:"kind"`
}

const (
	LinkAgentProject = "Antigravity Project"
	LinkGitRepo      = "Git Repository"
)

// LinksDocument renders the memory note listing related projects.
func LinksDocument(links []Link) string {
	var b strings.Builder
	b.WriteString("# Related Projects\n\n")
	if len(links) == 0 {
		b.WriteString("No sibling projects were found when this project was generated.\n")
		return b.String()
	}
	b.WriteString("Projects next to this one. Read their `.agent` rules before changing shared code.\n\n")
	for _, l := range links {
		fmt.Fprintf(&b, "- [%s](%s): %s\n", l.Name, l.Path, l.Kind)
	}
	return b.String()
}
