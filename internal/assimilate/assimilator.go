// Package assimilate ingests a free-text brain dump, splits it into header
// delimited sections, files each section into a category directory and keeps
// the raw input verbatim.
package assimilate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/alucardeht/antigravity/internal/doctor"
	"github.com/alucardeht/antigravity/internal/logger"
	"github.com/alucardeht/antigravity/internal/pathguard"
)

const DefaultRawDir = "context/raw"

// Options configures an Assimilator. Zero fields take defaults.
type Options struct {
	Rules  RuleSet
	Layout Layout
	Prefix string
	RawDir string
	Guard  pathguard.Guard
	// Reserved lists project paths artifacts must never take. Nil means the
	// files of the default project manifest.
	Reserved []string
	Now      func() time.Time
	Logger   *slog.Logger
}

// Result is what one run produced. On a filesystem failure it holds
// everything written before the failure.
type Result struct {
	RawPath   string           `json:"raw_path"`
	Artifacts []Artifact       `json:"artifacts"`
	Skipped   []Skipped        `json:"skipped,omitempty"`
	Stack     []string         `json:"stack,omitempty"`
	Counts    map[Category]int `json:"counts"`
	Defaulted int              `json:"defaulted"`
	// TechDoc is the tech stack deep dive written when the dump names any
	// technology. It is not counted among the artifacts.
	TechDoc string `json:"tech_doc,omitempty"`
}

type Assimilator struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options) *Assimilator {
	if opts.Rules.rules == nil {
		opts.Rules = DefaultRuleSet()
	}
	if opts.Layout == nil {
		opts.Layout = DefaultLayout()
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.RawDir == "" {
		opts.RawDir = DefaultRawDir
	}
	if opts.Guard.Fallback == "" {
		opts.Guard = pathguard.Default()
	}
	if opts.Reserved == nil {
		opts.Reserved = doctor.DefaultManifest().Files()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = logger.ForComponent("assimilate")
	}
	return &Assimilator{opts: opts, log: log}
}

// Run preserves raw under the raw directory, then splits, classifies and
// writes one artifact per section. Empty input is preserved and yields no
// artifacts.
func (a *Assimilator) Run(raw, root string) (*Result, error) {
	result := &Result{Counts: make(map[Category]int)}

	rawPath, err := a.preserve(raw, root)
	if err != nil {
		return result, err
	}
	result.RawPath = rawPath
	a.log.Info("raw input preserved", "path", rawPath, "bytes", len(raw))

	if strings.TrimSpace(raw) == "" {
		a.log.Info("empty brain dump, nothing to classify")
		return result, nil
	}

	result.Stack = DetectStack(raw)

	names := NewNameIndex()
	names.Reserve(a.opts.Reserved...)
	writer := NewWriter(root, a.opts.Layout, a.opts.Prefix, a.opts.Guard, names)
	for section := range Split(raw) {
		c := Classify(section, a.opts.Rules)

		artifact, skipped, err := writer.Materialize(c)
		if err != nil {
			a.log.Error("aborting assimilation", "order", section.Order, "title", section.Title, "error", err)
			return result, err
		}
		if skipped != nil {
			result.Skipped = append(result.Skipped, *skipped)
			continue
		}

		if c.Defaulted() {
			result.Defaulted++
		}
		result.Counts[c.Category]++
		result.Artifacts = append(result.Artifacts, *artifact)
		a.log.Debug("section assimilated",
			"order", section.Order,
			"category", c.Category.String(),
			"score", c.Score,
			"path", artifact.RelativePath)
	}

	if len(result.Stack) > 0 {
		rel, err := writer.WriteDocument(Docs, TechDocSlug, TechDeepDive(result.Stack, raw))
		if err != nil {
			a.log.Error("failed to write tech stack deep dive", "error", err)
			return result, err
		}
		result.TechDoc = rel
	}

	a.log.Info("assimilation complete",
		"artifacts", len(result.Artifacts),
		"skipped", len(result.Skipped),
		"defaulted", result.Defaulted)
	return result, nil
}

// preserve writes raw verbatim to a new timestamped file and returns its path
// relative to root.
func (a *Assimilator) preserve(raw, root string) (string, error) {
	dirPath, err := pathguard.Resolve(root, a.opts.RawDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", &FSError{Op: "mkdir", Path: a.opts.RawDir, Err: err}
	}

	stamp := a.opts.Now().UTC().Format("20060102T150405")
	for n := 1; ; n++ {
		name := fmt.Sprintf("brain_dump_%s.md", stamp)
		if n > 1 {
			name = fmt.Sprintf("brain_dump_%s-%d.md", stamp, n)
		}
		rel := path.Join(path.Clean(a.opts.RawDir), name)

		full, err := pathguard.Resolve(root, rel)
		if err != nil {
			return "", err
		}
		err = writeExclusive(full, raw)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", &FSError{Op: "write", Path: rel, Err: err}
		}
		return rel, nil
	}
}
