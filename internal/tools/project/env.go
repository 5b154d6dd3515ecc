// Package project exposes the assimilation and doctor engines as tools and
// as plain operations shared with the command line.
package project

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alucardeht/antigravity/internal/assimilate"
	"github.com/alucardeht/antigravity/internal/config"
	"github.com/alucardeht/antigravity/internal/doctor"
	"github.com/alucardeht/antigravity/internal/history"
	"github.com/alucardeht/antigravity/internal/logger"
	"github.com/alucardeht/antigravity/internal/scaffold"
	"github.com/alucardeht/antigravity/internal/templates"
	"github.com/alucardeht/antigravity/internal/textenc"
)

// Env carries what every operation needs. History may be nil.
type Env struct {
	Config   *config.Config
	Manifest *doctor.Manifest
	History  *history.Store
	Version  string
	Logger   *slog.Logger
}

func NewEnv(cfg *config.Config, store *history.Store, version string) *Env {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Env{
		Config:   cfg,
		Manifest: doctor.DefaultManifest(),
		History:  store,
		Version:  version,
		Logger:   logger.ForComponent("project"),
	}
}

// Library builds the content provider for root: built-in templates, the
// configured override directory, a manifest description named after the
// project directory and the list of sibling projects.
func (e *Env) Library(root string) (*templates.Library, error) {
	lib := templates.Default()
	if dir := e.Config.Templates; dir != "" {
		n, err := lib.LoadOverrides(dir)
		if err != nil {
			return nil, err
		}
		e.Logger.Debug("template overrides loaded", "dir", dir, "count", n)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	desc, err := e.Manifest.Describe(filepath.Base(abs), e.Version, nil)
	if err != nil {
		return nil, err
	}
	lib.Set(templates.KeyManifest, desc)

	links, err := scaffold.DiscoverLinks(filepath.Dir(abs), filepath.Base(abs))
	if err != nil {
		e.Logger.Debug("sibling project discovery failed", "root", abs, "error", err)
	}
	lib.Set(templates.KeyLinks, templates.LinksDocument(links))
	return lib, nil
}

type AssimilateOutput struct {
	*assimilate.Result
	Encoding string `json:"encoding,omitempty"`
	RunID    string `json:"run_id,omitempty"`
}

// Assimilate runs the engine over raw. The result is returned even when err
// is set, holding whatever was written before the failure.
func (e *Env) Assimilate(root, raw string) (*AssimilateOutput, error) {
	opts, err := e.Config.AssimilateOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = e.Logger
	opts.Reserved = e.Manifest.Files()

	res, runErr := assimilate.New(opts).Run(raw, root)
	out := &AssimilateOutput{Result: res}
	out.RunID = e.record(history.FromAssimilation(absPath(root), res, runErr))
	return out, runErr
}

// AssimilateFile reads path, converting legacy encodings to UTF-8, and
// assimilates it.
func (e *Env) AssimilateFile(root, path string) (*AssimilateOutput, error) {
	raw, detected, err := textenc.ReadFileAsUTF8(path)
	if err != nil {
		return nil, fmt.Errorf("read brain dump: %w", err)
	}
	if detected.Encoding != "utf-8" {
		e.Logger.Info("brain dump converted to utf-8", "from", detected.Encoding, "confidence", detected.Confidence)
	}
	out, err := e.Assimilate(root, raw)
	if out != nil {
		out.Encoding = detected.Encoding
	}
	return out, err
}

type DoctorOutput struct {
	*doctor.RunResult
	Healthy bool   `json:"healthy"`
	Summary string `json:"summary"`
	RunID   string `json:"run_id,omitempty"`
}

func (e *Env) Doctor(root string, fix bool) (*DoctorOutput, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	lib, err := e.Library(root)
	if err != nil {
		return nil, err
	}
	res, err := doctor.New(e.Manifest, lib, e.Logger).Run(root, fix)
	if err != nil {
		return nil, err
	}

	out := &DoctorOutput{RunResult: res, Healthy: res.Healthy(), Summary: res.After.Summary()}
	if fix && len(res.Actions) > 0 {
		out.RunID = e.record(history.FromDoctor(history.KindDoctor, absPath(root), res, nil))
	}
	return out, nil
}

type InitRequest struct {
	Name      string   `json:"name"`
	Parent    string   `json:"parent"`
	BrainDump string   `json:"brain_dump"`
	Stack     []string `json:"stack"`
	Blueprint string   `json:"blueprint"`
	DryRun    bool     `json:"dry_run"`
}

type InitOutput struct {
	*scaffold.Result
	RunID string `json:"run_id,omitempty"`
}

func (e *Env) Init(req InitRequest) (*InitOutput, error) {
	opts, err := e.Config.AssimilateOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = e.Logger

	lib := templates.Default()
	if dir := e.Config.Templates; dir != "" {
		if _, err := lib.LoadOverrides(dir); err != nil {
			return nil, err
		}
	}

	res, initErr := scaffold.Init(scaffold.Options{
		Name:       req.Name,
		Parent:     req.Parent,
		BrainDump:  req.BrainDump,
		Stack:      req.Stack,
		Blueprint:  req.Blueprint,
		DryRun:     req.DryRun,
		Version:    e.Version,
		Library:    lib,
		Manifest:   e.Manifest,
		Assimilate: opts,
		Logger:     e.Logger,
	})
	if res == nil {
		return nil, initErr
	}

	out := &InitOutput{Result: res}
	if !req.DryRun {
		run := history.Run{Kind: history.KindInit, Root: res.Root, Healthy: initErr == nil}
		if res.Report != nil {
			run.Healthy = run.Healthy && res.Report.Healthy()
			run.Summary = res.Report.Summary()
		}
		if initErr != nil {
			run.Error = initErr.Error()
		}
		for _, a := range res.Actions {
			run.Files = append(run.Files, history.File{Path: a.Entry.Path, Action: string(a.Action)})
		}
		if res.Assimilation != nil {
			run.RawPath = res.Assimilation.RawPath
			for _, a := range res.Assimilation.Artifacts {
				run.Files = append(run.Files, history.File{Path: a.RelativePath, Category: a.Category.String(), Action: "created", Score: a.Score})
			}
		}
		out.RunID = e.record(run)
	}
	return out, initErr
}

type KeywordsOutput struct {
	Categories map[string][]string `json:"categories"`
	Stack      []string            `json:"stack"`
	Aliases    map[string]string   `json:"aliases"`
	Blueprints []string            `json:"blueprints"`
}

func (e *Env) Keywords() (*KeywordsOutput, error) {
	rules, err := e.Config.RuleSet()
	if err != nil {
		return nil, err
	}
	out := &KeywordsOutput{
		Categories: make(map[string][]string),
		Stack:      append([]string(nil), assimilate.StackKeywords...),
		Aliases:    make(map[string]string, len(assimilate.StackAliases)),
	}
	for _, c := range assimilate.Categories {
		out.Categories[c.String()] = rules.Keywords(c)
	}
	for _, b := range scaffold.Blueprints() {
		out.Blueprints = append(out.Blueprints, b.Name)
	}
	for k, v := range assimilate.StackAliases {
		out.Aliases[k] = v
	}
	return out, nil
}

func (e *Env) record(run history.Run) string {
	if e.History == nil {
		return ""
	}
	id, err := e.History.Record(run)
	if err != nil {
		e.Logger.Warn("failed to record run", "kind", run.Kind, "error", err)
		return ""
	}
	return id
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return strings.TrimSpace(p)
}
