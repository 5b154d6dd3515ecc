package assimilate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// NameIndex is the run-scoped record of filenames taken in each artifact
// directory. It is owned by one Assimilator run and mutated only after a
// successful write.
type NameIndex struct {
	taken    map[string]map[string]struct{}
	reserved map[string]map[string]struct{}
	counters map[string]int
}

func NewNameIndex() *NameIndex {
	return &NameIndex{
		taken:    make(map[string]map[string]struct{}),
		reserved: make(map[string]map[string]struct{}),
		counters: make(map[string]int),
	}
}

// Reserve marks slash-separated project paths as never available, whether
// or not they exist on disk yet.
func (n *NameIndex) Reserve(paths ...string) {
	for _, p := range paths {
		dir, name := path.Split(path.Clean(p))
		dir = path.Clean(dir)
		if n.reserved[dir] == nil {
			n.reserved[dir] = make(map[string]struct{})
		}
		n.reserved[dir][name] = struct{}{}
	}
}

// seed loads the directory listing the first time dir is seen, so names
// left by earlier runs are treated as taken.
func (n *NameIndex) seed(root, dir string) error {
	if _, ok := n.taken[dir]; ok {
		return nil
	}

	names := make(map[string]struct{})
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	for _, e := range entries {
		names[e.Name()] = struct{}{}
	}
	n.taken[dir] = names
	return nil
}

// Next returns the first free filename for slug in dir: base, then base-2,
// base-3 and so on.
func (n *NameIndex) Next(dir, prefix, slug string) string {
	key := path.Join(dir, slug)
	taken, reserved := n.taken[dir], n.reserved[dir]

	for {
		count := n.counters[key]
		var name string
		if count == 0 {
			name = prefix + slug + ".md"
		} else {
			name = fmt.Sprintf("%s%s-%d.md", prefix, slug, count+1)
		}
		_, exists := taken[name]
		_, held := reserved[name]
		if !exists && !held {
			return name
		}
		n.counters[key] = count + 1
	}
}

// Bump marks the current candidate for slug as unusable so the following
// Next call moves to the next disambiguator.
func (n *NameIndex) Bump(dir, slug string) {
	n.counters[path.Join(dir, slug)]++
}

// Claim records name as taken in dir.
func (n *NameIndex) Claim(dir, name string) {
	if n.taken[dir] == nil {
		n.taken[dir] = make(map[string]struct{})
	}
	n.taken[dir][name] = struct{}{}
}

// Taken reports whether name is already used in dir.
func (n *NameIndex) Taken(dir, name string) bool {
	_, ok := n.taken[dir][name]
	return ok
}
