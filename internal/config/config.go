package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alucardeht/antigravity/internal/assimilate"
	"github.com/alucardeht/antigravity/internal/doctor"
	"github.com/alucardeht/antigravity/internal/logger"
	"github.com/alucardeht/antigravity/internal/pathguard"
)

const (
	ProjectFile = ".antigravity.yaml"
	UserFile    = "config.yaml"
)

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AssimilateConfig struct {
	Prefix        string              `yaml:"prefix"`
	RawDir        string              `yaml:"raw_dir"`
	MaxSlugLength int                 `yaml:"max_slug_length"`
	Directories   map[string]string   `yaml:"directories"`
	ExtraKeywords map[string][]string `yaml:"extra_keywords"`
}

type SentinelConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
	MaxBatchSize   int           `yaml:"max_batch_size"`
	IgnorePatterns []string      `yaml:"ignore_patterns"`
	Fix            bool          `yaml:"fix"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Assimilate AssimilateConfig `yaml:"assimilate"`
	Sentinel   SentinelConfig   `yaml:"sentinel"`
	History    HistoryConfig    `yaml:"history"`
	Templates  string           `yaml:"templates"`
	PresetsDir string           `yaml:"presets_dir"`
}

func Dir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "antigravity")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".antigravity")
}

func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Assimilate: AssimilateConfig{
			Prefix:        assimilate.DefaultPrefix,
			RawDir:        assimilate.DefaultRawDir,
			MaxSlugLength: pathguard.DefaultMaxLength,
		},
		Sentinel: SentinelConfig{
			DebounceWindow: 500 * time.Millisecond,
			MaxBatchSize:   100,
			IgnorePatterns: []string{
				"**/.git/**",
				"**/node_modules/**",
				"**/.idea/**",
				"**/*.log",
				"**/*.swp",
				"**/*~",
				"**/__pycache__/**",
				"**/.venv/**",
				"**/vendor/**",
			},
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(Dir(), "history.db"),
		},
		PresetsDir: filepath.Join(Dir(), "presets"),
	}
}

// Load layers the user file and then the project file over the defaults.
// Missing files are skipped. An empty projectRoot skips the project layer.
func Load(projectRoot string) (*Config, error) {
	cfg := Default()

	if err := cfg.merge(filepath.Join(Dir(), UserFile)); err != nil {
		return nil, err
	}
	if projectRoot != "" {
		if err := cfg.merge(filepath.Join(projectRoot, ProjectFile)); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a single file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.merge(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) merge(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", f))
	}

	if c.Assimilate.Prefix == "" {
		errs = append(errs, errors.New("assimilate.prefix must not be empty"))
	} else if pathguard.Sanitize(c.Assimilate.Prefix) != strings.Trim(c.Assimilate.Prefix, "_-") {
		errs = append(errs, fmt.Errorf("assimilate.prefix %q contains unsafe characters", c.Assimilate.Prefix))
	}
	if _, err := pathguard.Resolve(".", c.Assimilate.RawDir); err != nil {
		errs = append(errs, fmt.Errorf("assimilate.raw_dir: %w", err))
	}
	if c.Assimilate.MaxSlugLength < 8 {
		errs = append(errs, fmt.Errorf("assimilate.max_slug_length must be at least 8, got %d", c.Assimilate.MaxSlugLength))
	}
	if layout, err := c.Layout(); err != nil {
		errs = append(errs, err)
	} else if err := checkPrefix(c.Assimilate.Prefix, layout); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RuleSet(); err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(c.PresetsDir) == "" {
		errs = append(errs, errors.New("presets_dir must not be empty"))
	}

	if c.Sentinel.DebounceWindow <= 0 {
		errs = append(errs, errors.New("sentinel.debounce_window must be positive"))
	}
	if c.Sentinel.MaxBatchSize <= 0 {
		errs = append(errs, errors.New("sentinel.max_batch_size must be positive"))
	}

	if c.History.Enabled && c.History.DBPath == "" {
		errs = append(errs, errors.New("history.db_path is required when history is enabled"))
	}

	return errors.Join(errs...)
}

// Layout returns the category directories with configured overrides applied.
// checkPrefix rejects a prefix that could name one of the generated core
// files, such as "00_" against .agent/rules/00_identity.md.
func checkPrefix(prefix string, layout assimilate.Layout) error {
	if prefix == "" {
		return nil
	}
	dirs := make(map[string]bool)
	for _, cat := range assimilate.Categories {
		dirs[layout.Dir(cat)] = true
	}
	for _, p := range doctor.DefaultManifest().Files() {
		dir, name := path.Split(p)
		if dirs[path.Clean(dir)] && strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			return fmt.Errorf("assimilate.prefix %q collides with generated file %s", prefix, p)
		}
	}
	return nil
}

// Presets returns the preset store in the configured directory.
func (c *Config) Presets() Presets {
	return Presets{Dir: c.PresetsDir}
}

func (c *Config) Layout() (assimilate.Layout, error) {
	layout := assimilate.DefaultLayout()
	for name, dir := range c.Assimilate.Directories {
		cat, err := assimilate.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("assimilate.directories: %w", err)
		}
		layout[cat] = dir
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("assimilate.directories: %w", err)
	}
	return layout, nil
}

// RuleSet returns the default keyword rules extended with configured extras.
func (c *Config) RuleSet() (assimilate.RuleSet, error) {
	rules := assimilate.DefaultRuleSet()
	if len(c.Assimilate.ExtraKeywords) == 0 {
		return rules, nil
	}

	extra := make(map[assimilate.Category][]string, len(c.Assimilate.ExtraKeywords))
	for name, words := range c.Assimilate.ExtraKeywords {
		cat, err := assimilate.ParseCategory(name)
		if err != nil {
			return assimilate.RuleSet{}, fmt.Errorf("assimilate.extra_keywords: %w", err)
		}
		extra[cat] = append(extra[cat], words...)
	}
	return rules.Extend(extra)
}

// AssimilateOptions builds engine options from the configuration.
func (c *Config) AssimilateOptions() (assimilate.Options, error) {
	rules, err := c.RuleSet()
	if err != nil {
		return assimilate.Options{}, err
	}
	layout, err := c.Layout()
	if err != nil {
		return assimilate.Options{}, err
	}
	return assimilate.Options{
		Rules:  rules,
		Layout: layout,
		Prefix: c.Assimilate.Prefix,
		RawDir: c.Assimilate.RawDir,
		Guard:  pathguard.New(pathguard.DefaultFallback, c.Assimilate.MaxSlugLength),
	}, nil
}

func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	if level, err := logger.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = level
	}
	cfg.Format = c.Log.Format
	return cfg
}
