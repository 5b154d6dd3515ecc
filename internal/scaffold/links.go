package scaffold

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alucardeht/antigravity/internal/templates"
)

// DiscoverLinks lists the directories next to self under parent that are
// generated projects or git repositories. Hidden directories and self are
// skipped. Paths are relative to the project, like "../api".
func DiscoverLinks(parent, self string) ([]templates.Link, error) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var links []templates.Link
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || name == self || strings.HasPrefix(name, ".") {
			continue
		}
		var kind string
		switch {
		case isDir(filepath.Join(parent, name, ".agent")):
			kind = templates.LinkAgentProject
		case exists(filepath.Join(parent, name, ".git")):
			kind = templates.LinkGitRepo
		default:
			continue
		}
		links = append(links, templates.Link{Name: name, Path: path.Join("..", name), Kind: kind})
	}
	return links, nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// exists accepts a .git file too, as git worktrees use one.
func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
