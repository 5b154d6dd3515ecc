// Package scaffold generates a new agent-first project tree.
//
// Generation is a doctor repair of an empty (or partial) root, so running
// init again over an existing project only fills in what is missing.
package scaffold

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alucardeht/antigravity/internal/assimilate"
	"github.com/alucardeht/antigravity/internal/doctor"
	"github.com/alucardeht/antigravity/internal/logger"
	"github.com/alucardeht/antigravity/internal/pathguard"
	"github.com/alucardeht/antigravity/internal/templates"
)

type Options struct {
	// Name is the requested project name; it is sanitized before use.
	Name string
	// Parent is the directory the project is created in.
	Parent    string
	BrainDump string
	Stack     []string
	// Blueprint is a built-in blueprint name or a local blueprint file.
	Blueprint string
	DryRun    bool
	Version   string

	// Library receives the dynamic tech stack and manifest entries. A nil
	// Library means templates.Default().
	Library    *templates.Library
	Manifest   *doctor.Manifest
	Assimilate assimilate.Options
	Logger     *slog.Logger
}

type Result struct {
	Name         string               `json:"name"`
	Root         string               `json:"root"`
	Stack        []string             `json:"stack"`
	Blueprint    string               `json:"blueprint,omitempty"`
	Links        []templates.Link     `json:"links,omitempty"`
	DryRun       bool                 `json:"dry_run"`
	Planned      []doctor.EntryStatus `json:"planned,omitempty"`
	Actions      []doctor.FixAction   `json:"actions,omitempty"`
	Assimilation *assimilate.Result   `json:"assimilation,omitempty"`
	Report       *doctor.Report       `json:"report,omitempty"`
}

func Init(opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.ForComponent("scaffold")
	}
	lib := opts.Library
	if lib == nil {
		lib = templates.Default()
	}
	manifest := opts.Manifest
	if manifest == nil {
		manifest = doctor.DefaultManifest()
	}
	parent := opts.Parent
	if parent == "" {
		parent = "."
	}

	name := pathguard.Sanitize(opts.Name)
	root, err := pathguard.Resolve(parent, name)
	if err != nil {
		return nil, err
	}
	if name != strings.TrimSpace(opts.Name) {
		log.Warn("project name sanitized", "requested", opts.Name, "name", name)
	}

	explicit := opts.Stack
	result := &Result{Name: name, Root: root, DryRun: opts.DryRun}
	if opts.Blueprint != "" {
		bp, err := ResolveBlueprint(opts.Blueprint)
		if err != nil {
			return nil, err
		}
		extended, content, err := bp.apply(manifest)
		if err != nil {
			return nil, fmt.Errorf("blueprint %s: %w", bp.Name, err)
		}
		manifest = extended
		for key, body := range content {
			lib.Set(key, body)
		}
		explicit = append(slices.Clone(explicit), bp.Stack...)
		result.Blueprint = bp.Name
	}

	stack := mergeStack(explicit, assimilate.DetectStack(opts.BrainDump))
	result.Stack = stack

	links, err := DiscoverLinks(filepath.Dir(root), name)
	if err != nil {
		log.Warn("sibling project discovery failed", "parent", filepath.Dir(root), "error", err)
	}
	result.Links = links
	lib.Set(templates.KeyLinks, templates.LinksDocument(links))

	lib.Set(templates.KeyTechStack, templates.TechStackRule(stack))
	desc, err := manifest.Describe(name, opts.Version, stack)
	if err != nil {
		return nil, err
	}
	lib.Set(templates.KeyManifest, desc)

	before, err := doctor.Check(root, manifest)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		result.Planned = before.Problems()
		result.Report = before
		log.Info("dry run", "root", root, "would_create", len(result.Planned))
		return result, nil
	}

	result.Actions = doctor.Fix(before, root, lib)
	var errs []error
	for _, a := range doctor.Failures(result.Actions) {
		errs = append(errs, fmt.Errorf("%s: %w", a.Entry.Path, a.Err))
	}
	log.Info("project generated", "root", root, "actions", len(result.Actions), "failures", len(errs))

	if strings.TrimSpace(opts.BrainDump) != "" {
		asm := opts.Assimilate
		if asm.Logger == nil {
			asm.Logger = log
		}
		asm.Reserved = append(slices.Clone(asm.Reserved), manifest.Files()...)
		res, err := assimilate.New(asm).Run(opts.BrainDump, root)
		result.Assimilation = res
		if err != nil {
			errs = append(errs, fmt.Errorf("assimilate brain dump: %w", err))
		}
	}

	after, err := doctor.Check(root, manifest)
	if err != nil {
		errs = append(errs, err)
	}
	result.Report = after
	return result, errors.Join(errs...)
}

// mergeStack unions explicit and detected keywords, resolving aliases.
func mergeStack(explicit, detected []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(k string) {
		if alias, ok := assimilate.StackAliases[k]; ok {
			k = alias
		}
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, k := range explicit {
		for _, parsed := range assimilate.ParseStack(k) {
			add(parsed)
		}
	}
	for _, k := range detected {
		add(k)
	}
	slices.Sort(out)
	return out
}
