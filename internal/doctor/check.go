package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alucardeht/antigravity/internal/pathguard"
)

type Status int

const (
	Missing Status = iota
	Empty
	OK
)

func (s Status) String() string {
	switch s {
	case Missing:
		return "missing"
	case Empty:
		return "empty"
	case OK:
		return "ok"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type EntryStatus struct {
	Entry  ManifestEntry `json:"entry"`
	Status Status        `json:"status"`
}

// Check inspects root against the manifest. The report lists entries in
// manifest order. A file entry occupied by a directory, or the reverse, is
// reported as missing. Only stat failures other than not-exist are errors.
func Check(root string, m *Manifest) (*Report, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	report := &Report{Root: absRoot, Entries: make([]EntryStatus, 0, m.Len())}
	for _, entry := range m.entries {
		status, err := inspect(absRoot, entry)
		if err != nil {
			return nil, err
		}
		report.Entries = append(report.Entries, EntryStatus{Entry: entry, Status: status})
	}
	report.tally()
	return report, nil
}

func inspect(root string, entry ManifestEntry) (Status, error) {
	full, err := pathguard.Resolve(root, entry.Path)
	if err != nil {
		return Missing, fmt.Errorf("manifest entry %s: %w", entry.Path, err)
	}

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return Missing, nil
	}
	if err != nil {
		return Missing, fmt.Errorf("stat %s: %w", entry.Path, err)
	}

	switch entry.Kind {
	case Directory:
		if info.IsDir() {
			return OK, nil
		}
		return Missing, nil
	default:
		if info.IsDir() {
			return Missing, nil
		}
		if info.Size() == 0 {
			return Empty, nil
		}
		return OK, nil
	}
}
