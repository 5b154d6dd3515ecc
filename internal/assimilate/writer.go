package assimilate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/alucardeht/antigravity/internal/pathguard"
)

const DefaultPrefix = "imported_"

// Artifact describes one file produced from a classified section.
type Artifact struct {
	RelativePath string   `json:"relative_path"`
	Content      string   `json:"-"`
	Category     Category `json:"category"`
	Score        int      `json:"score"`
	Title        string   `json:"title"`
	Order        int      `json:"order"`
}

// Skipped is returned instead of an Artifact for degenerate sections.
type Skipped struct {
	Order  int    `json:"order"`
	Reason string `json:"reason"`
}

// FSError wraps a filesystem failure that aborted a write.
type FSError struct {
	Op   string
	Path string
	Err  error
}

func (e *FSError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FSError) Unwrap() error {
	return e.Err
}

// Writer materializes classifications as files under Root.
type Writer struct {
	Root   string
	Layout Layout
	Prefix string
	Guard  pathguard.Guard
	Names  *NameIndex
}

func NewWriter(root string, layout Layout, prefix string, guard pathguard.Guard, names *NameIndex) *Writer {
	if layout == nil {
		layout = DefaultLayout()
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if names == nil {
		names = NewNameIndex()
	}
	return &Writer{Root: root, Layout: layout, Prefix: prefix, Guard: guard, Names: names}
}

// Slug returns the lower-cased filename stem for a section, substituting an
// ordinal placeholder when the title sanitizes to nothing.
func (w *Writer) Slug(s Section) string {
	slug, ok := w.Guard.Clean(s.Title)
	if !ok {
		return fmt.Sprintf("section_%d", s.Order)
	}
	return strings.ToLower(slug)
}

// Materialize writes the classification to a new file. It never overwrites:
// name collisions, in this run or on disk, get a numeric disambiguator. A
// section with neither title nor body is skipped.
func (w *Writer) Materialize(c Classification) (*Artifact, *Skipped, error) {
	s := c.Section
	if strings.TrimSpace(s.Title) == "" && strings.TrimSpace(s.Body) == "" {
		return nil, &Skipped{Order: s.Order, Reason: "empty section"}, nil
	}

	content := renderArtifact(c)
	rel, err := w.place(w.Layout.Dir(c.Category), w.Slug(s), content)
	if err != nil {
		return nil, nil, err
	}
	return &Artifact{
		RelativePath: rel,
		Content:      content,
		Category:     c.Category,
		Score:        c.Score,
		Title:        s.Title,
		Order:        s.Order,
	}, nil, nil
}

// WriteDocument stores a generated document in the directory of category c
// under the same naming rules as section artifacts, and returns its path.
func (w *Writer) WriteDocument(c Category, slug, content string) (string, error) {
	return w.place(w.Layout.Dir(c), slug, content)
}

// place creates a new file for slug in dir, moving to the next free name
// whenever the candidate is taken, reserved or appears on disk meanwhile.
func (w *Writer) place(dir, slug, content string) (string, error) {
	if err := w.Names.seed(w.Root, dir); err != nil {
		return "", &FSError{Op: "list", Path: dir, Err: err}
	}

	dirPath, err := pathguard.Resolve(w.Root, dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", &FSError{Op: "mkdir", Path: dir, Err: err}
	}

	for {
		name := w.Names.Next(dir, w.Prefix, slug)
		rel := path.Join(dir, name)

		full, err := pathguard.Resolve(w.Root, rel)
		if err != nil {
			return "", err
		}

		err = writeExclusive(full, content)
		if errors.Is(err, fs.ErrExist) {
			w.Names.Claim(dir, name)
			w.Names.Bump(dir, slug)
			continue
		}
		if err != nil {
			return "", &FSError{Op: "write", Path: rel, Err: err}
		}
		w.Names.Claim(dir, name)
		return rel, nil
	}
}

func renderArtifact(c Classification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!-- assimilated: category=%s score=%d -->\n\n", c.Category, c.Score)
	if c.Section.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", c.Section.Title)
	}
	if c.Section.Body != "" {
		b.WriteString(c.Section.Body)
		b.WriteString("\n")
	}
	return b.String()
}

func writeExclusive(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

