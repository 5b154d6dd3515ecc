// Package doctor audits a generated project tree against a manifest and
// repairs missing or empty entries without touching existing content.
package doctor

import (
	"log/slog"

	"github.com/alucardeht/antigravity/internal/logger"
)

type Doctor struct {
	manifest *Manifest
	provider ContentProvider
	log      *slog.Logger
}

type RunResult struct {
	Before  *Report     `json:"before"`
	Actions []FixAction `json:"actions,omitempty"`
	After   *Report     `json:"after"`
}

// Healthy reports the state of the project after the run.
func (r *RunResult) Healthy() bool {
	return r.After.Healthy()
}

func New(m *Manifest, provider ContentProvider, log *slog.Logger) *Doctor {
	if m == nil {
		m = DefaultManifest()
	}
	if log == nil {
		log = logger.ForComponent("doctor")
	}
	return &Doctor{manifest: m, provider: provider, log: log}
}

func (d *Doctor) Manifest() *Manifest {
	return d.manifest
}

// Run checks root and, when fix is set, repairs it and checks again. Without
// fix, After is the same report as Before.
func (d *Doctor) Run(root string, fix bool) (*RunResult, error) {
	before, err := Check(root, d.manifest)
	if err != nil {
		return nil, err
	}
	d.log.Debug("project checked", "root", before.Root, "summary", before.Summary())

	result := &RunResult{Before: before, After: before}
	if !fix || len(before.Problems()) == 0 {
		return result, nil
	}

	provider := d.provider
	if provider == nil {
		provider = noContent{}
	}
	result.Actions = Fix(before, root, provider)
	for _, a := range result.Actions {
		if a.Err != nil {
			d.log.Warn("repair failed", "path", a.Entry.Path, "error", a.Err)
			continue
		}
		d.log.Info("repaired", "path", a.Entry.Path, "action", a.Action)
	}

	after, err := Check(root, d.manifest)
	if err != nil {
		return result, err
	}
	result.After = after
	return result, nil
}

type noContent struct{}

func (noContent) Get(key string) (string, error) {
	return "", errNoContent
}
