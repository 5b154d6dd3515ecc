package doctor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alucardeht/antigravity/internal/pathguard"
)

// ContentProvider supplies default file content by key.
type ContentProvider interface {
	Get(key string) (string, error)
}

type Action string

const (
	CreatedDir  Action = "created_dir"
	CreatedFile Action = "created_file"
	Rewrote     Action = "rewrote_empty"
	Failed      Action = "failed"
)

type FixAction struct {
	Entry  ManifestEntry `json:"entry"`
	Action Action        `json:"action"`
	Err    error         `json:"-"`
}

func (a FixAction) MarshalJSON() ([]byte, error) {
	type plain FixAction
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(a)}
	if a.Err != nil {
		out.Error = a.Err.Error()
	}
	return json.Marshal(out)
}

var errNoContent = errors.New("no default content")

// Fix repairs the missing and empty entries of report. Every entry is
// checked again on disk before it is touched, so a successful repair is
// never repeated: applying Fix twice to the same report yields no further
// CreatedDir, CreatedFile or Rewrote actions. Failures are different. An
// entry that cannot be repaired, such as one whose content key is unknown,
// is still missing next time and produces a Failed action on every call.
// A failure never stops the remaining entries from being processed.
func Fix(report *Report, root string, provider ContentProvider) []FixAction {
	var actions []FixAction
	for _, es := range report.Entries {
		if es.Status == OK {
			continue
		}
		action, changed := repair(root, es.Entry, provider)
		if changed {
			actions = append(actions, action)
		}
	}
	return actions
}

func repair(root string, entry ManifestEntry, provider ContentProvider) (FixAction, bool) {
	current, err := inspect(root, entry)
	if err != nil {
		return failed(entry, err), true
	}
	if current == OK {
		return FixAction{}, false
	}

	full, err := pathguard.Resolve(root, entry.Path)
	if err != nil {
		return failed(entry, err), true
	}

	if entry.Kind == Directory {
		if err := os.MkdirAll(full, 0755); err != nil {
			return failed(entry, fmt.Errorf("create directory: %w", err)), true
		}
		return FixAction{Entry: entry, Action: CreatedDir}, true
	}

	if entry.DefaultContentKey == "" {
		return failed(entry, errNoContent), true
	}
	content, err := provider.Get(entry.DefaultContentKey)
	if err != nil {
		return failed(entry, err), true
	}
	if content == "" {
		return failed(entry, fmt.Errorf("%w for key %s", errNoContent, entry.DefaultContentKey)), true
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return failed(entry, fmt.Errorf("create parent: %w", err)), true
	}

	if current == Missing {
		if err := createExclusive(full, content); err != nil {
			return failed(entry, err), true
		}
		return FixAction{Entry: entry, Action: CreatedFile}, true
	}

	if err := rewriteEmpty(full, content); err != nil {
		return failed(entry, err), true
	}
	return FixAction{Entry: entry, Action: Rewrote}, true
}

func failed(entry ManifestEntry, err error) FixAction {
	return FixAction{Entry: entry, Action: Failed, Err: err}
}

func createExclusive(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write file: %w", err)
	}
	return f.Close()
}

// rewriteEmpty fills a zero-length file. It refuses when the file gained
// content since it was inspected.
func rewriteEmpty(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}
	if info.Size() != 0 {
		return fmt.Errorf("file %s is no longer empty: %w", path, fs.ErrExist)
	}
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return f.Close()
}

// Failures returns the actions that did not succeed.
func Failures(actions []FixAction) []FixAction {
	var out []FixAction
	for _, a := range actions {
		if a.Action == Failed {
			out = append(out, a)
		}
	}
	return out
}
