package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alucardeht/antigravity/internal/pathguard"
)

var ErrPresetNotFound = errors.New("preset not found")

const presetExt = ".json"

// Preset is a reusable set of init settings. Operational switches such as
// dry run, output format or the preset flags themselves are not part of it.
type Preset struct {
	Name      string   `json:"name,omitempty"`
	Parent    string   `json:"parent,omitempty"`
	Stack     []string `json:"stack,omitempty"`
	Blueprint string   `json:"blueprint,omitempty"`
	BrainDump string   `json:"brain_dump,omitempty"`
}

// Presets stores one JSON file per preset in Dir.
type Presets struct {
	Dir string
}

func (p Presets) path(name string) (string, error) {
	clean, ok := pathguard.Default().Clean(name)
	if !ok || clean != strings.TrimSpace(name) {
		return "", fmt.Errorf("invalid preset name %q", name)
	}
	return pathguard.Resolve(p.Dir, clean+presetExt)
}

// Save writes preset under name, replacing an earlier preset of that name.
func (p Presets) Save(name string, preset Preset) (string, error) {
	file, err := p.path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return "", fmt.Errorf("create presets directory: %w", err)
	}
	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(file, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("save preset %s: %w", name, err)
	}
	return file, nil
}

func (p Presets) Load(name string) (*Preset, error) {
	file, err := p.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	var preset Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", name, err)
	}
	return &preset, nil
}

// List returns the saved preset names, sorted. A missing directory has none.
func (p Presets) List() ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == presetExt {
			names = append(names, strings.TrimSuffix(e.Name(), presetExt))
		}
	}
	slices.Sort(names)
	return names, nil
}
