// Package sentinel watches a generated project and re-runs the doctor when
// a path the manifest guards changes.
package sentinel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/alucardeht/antigravity/internal/doctor"
	"github.com/alucardeht/antigravity/internal/logger"
)

type Config struct {
	DebounceWindow time.Duration
	MaxBatchSize   int
	IgnorePatterns []string
	Fix            bool
}

func DefaultConfig() Config {
	return Config{
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
	}
}

// Pass is the outcome of one doctor run. Trigger is empty for the initial
// pass made when the sentinel starts.
type Pass struct {
	Trigger []FileEvent
	Result  *doctor.RunResult
	Err     error
}

type Sentinel struct {
	root     string
	config   Config
	doctor   *doctor.Doctor
	onPass   func(Pass)
	log      *slog.Logger
	guarded  []doctor.ManifestEntry
	batches  chan []FileEvent
	done     chan struct{}
	debounce *Debouncer

	fsWatcher   *fsnotify.Watcher
	fsWatcherMu sync.Mutex

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(root string, config Config, d *doctor.Doctor, onPass func(Pass)) (*Sentinel, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sentinel root is not a directory: %s", absRoot)
	}
	for _, p := range config.IgnorePatterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}
	if config.DebounceWindow <= 0 {
		config.DebounceWindow = DefaultConfig().DebounceWindow
	}
	if onPass == nil {
		onPass = func(Pass) {}
	}

	s := &Sentinel{
		root:    absRoot,
		config:  config,
		doctor:  d,
		onPass:  onPass,
		log:     logger.ForComponent("sentinel"),
		guarded: d.Manifest().Entries(),
		batches: make(chan []FileEvent, 1),
	}
	s.debounce = NewDebouncer(config.DebounceWindow, config.MaxBatchSize, s.enqueue)
	return s, nil
}

func (s *Sentinel) Root() string {
	return s.root
}

// Start makes an initial doctor pass and then follows changes until ctx is
// cancelled or Stop is called.
func (s *Sentinel) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.fsWatcher = fsWatcher
	if err := s.watchTree(s.root); err != nil {
		fsWatcher.Close()
		return err
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true
	s.log.Info("watching project", "root", s.root, "fix", s.config.Fix)

	go s.loop()
	return nil
}

// Run starts the sentinel and blocks until ctx is cancelled.
func (s *Sentinel) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Stop()
}

func (s *Sentinel) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	done := s.done
	s.mu.Unlock()

	s.debounce.Stop()
	<-done

	s.fsWatcherMu.Lock()
	defer s.fsWatcherMu.Unlock()
	s.log.Info("sentinel stopped", "root", s.root)
	return s.fsWatcher.Close()
}

func (s *Sentinel) loop() {
	defer close(s.done)

	s.check(nil)
	for {
		select {
		case <-s.ctx.Done():
			return

		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return
			}
			s.handle(event)

		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watch error", "error", err)

		case batch := <-s.batches:
			s.check(batch)
		}
	}
}

func (s *Sentinel) handle(event fsnotify.Event) {
	rel, ok := s.relative(event.Name)
	if !ok || s.ignored(rel) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := s.watchTree(event.Name); err != nil {
				s.log.Debug("failed to watch new directory", "path", rel, "error", err)
			}
		}
	}

	typ, ok := eventType(event.Op)
	if !ok || !s.isGuarded(rel) {
		return
	}
	s.log.Debug("guarded path changed", "path", rel, "op", typ)
	s.debounce.Add(FileEvent{Path: rel, Type: typ, Timestamp: time.Now()})
}

// enqueue runs on the debounce timer goroutine.
func (s *Sentinel) enqueue(events []FileEvent) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}
	select {
	case s.batches <- events:
	case <-ctx.Done():
	}
}

func (s *Sentinel) check(trigger []FileEvent) {
	result, err := s.doctor.Run(s.root, s.config.Fix)
	if err != nil {
		s.log.Error("doctor run failed", "error", err)
	} else if !result.Healthy() {
		s.log.Warn("project unhealthy", "summary", result.After.Summary(), "destructive", destructive(trigger))
	} else if len(result.Actions) > 0 {
		s.log.Info("project repaired", "actions", len(result.Actions))
	}
	s.onPass(Pass{Trigger: trigger, Result: result, Err: err})
}

func (s *Sentinel) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := s.relative(path); ok && rel != "." && s.ignored(rel) {
			return filepath.SkipDir
		}

		s.fsWatcherMu.Lock()
		err = s.fsWatcher.Add(path)
		s.fsWatcherMu.Unlock()
		if err != nil {
			s.log.Debug("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (s *Sentinel) relative(path string) (string, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (s *Sentinel) ignored(rel string) bool {
	for _, pattern := range s.config.IgnorePatterns {
		if match, _ := doublestar.Match(pattern, rel); match {
			return true
		}
		if match, _ := doublestar.Match(pattern, rel+"/"); match {
			return true
		}
	}
	return false
}

// isGuarded reports whether rel is a manifest entry, an ancestor of one, or
// lives inside a directory entry.
func (s *Sentinel) isGuarded(rel string) bool {
	for _, e := range s.guarded {
		switch {
		case e.Path == rel:
			return true
		case strings.HasPrefix(e.Path, rel+"/"):
			return true
		case e.Kind == doctor.Directory && strings.HasPrefix(rel, e.Path+"/"):
			return true
		}
	}
	return false
}
