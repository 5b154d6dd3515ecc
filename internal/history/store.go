// Package history keeps a SQLite ledger of assimilation, doctor and init runs.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alucardeht/antigravity/internal/assimilate"
	"github.com/alucardeht/antigravity/internal/doctor"
)

type Kind string

const (
	KindAssimilate Kind = "assimilate"
	KindDoctor     Kind = "doctor"
	KindInit       Kind = "init"
)

var ErrRunNotFound = errors.New("run not found")

type File struct {
	Path     string `json:"path"`
	Category string `json:"category,omitempty"`
	Action   string `json:"action,omitempty"`
	Score    int    `json:"score,omitempty"`
}

type Run struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Root      string    `json:"root"`
	StartedAt time.Time `json:"started_at"`
	Summary   string    `json:"summary,omitempty"`
	RawPath   string    `json:"raw_path,omitempty"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	Files     []File    `json:"files,omitempty"`
}

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	var clean []string
	for _, line := range strings.Split(schemaSQL, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			clean = append(clean, line)
		}
	}
	for _, stmt := range strings.Split(strings.Join(clean, "\n"), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init history schema: %w", err)
		}
	}
	_, err := s.db.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", SchemaVersion)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores run and returns its ID. An empty ID is replaced by a new
// UUID and a zero StartedAt by the current time.
func (s *Store) Record(run Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}

	_, err = tx.Exec(
		"INSERT INTO runs (id, kind, root, started_at, summary, raw_path, healthy, error_message) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, string(run.Kind), run.Root, run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Summary, run.RawPath, run.Healthy, run.Error,
	)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, f := range run.Files {
		_, err = tx.Exec(
			"INSERT INTO run_files (run_id, path, category, action, score) VALUES (?, ?, ?, ?, ?)",
			run.ID, f.Path, f.Category, f.Action, f.Score,
		)
		if err != nil {
			tx.Rollback()
			return "", fmt.Errorf("insert run file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// List returns the most recent runs first, without their files. A limit of
// zero or less returns every run.
func (s *Store) List(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := "SELECT id, kind, root, started_at, summary, raw_path, healthy, error_message FROM runs ORDER BY seq DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Get returns one run with its files. The ID may be abbreviated to a unique
// prefix.
func (s *Store) Get(id string) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		"SELECT id, kind, root, started_at, summary, raw_path, healthy, error_message FROM runs WHERE id LIKE ? ORDER BY seq DESC LIMIT 2",
		strings.ReplaceAll(id, "%", "")+"%",
	)
	if err != nil {
		return nil, err
	}

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 2:
		return nil, fmt.Errorf("run id %s is ambiguous", id)
	}

	run := matches[0]
	files, err := s.db.Query("SELECT path, category, action, score FROM run_files WHERE run_id = ? ORDER BY id", run.ID)
	if err != nil {
		return nil, err
	}
	defer files.Close()

	for files.Next() {
		var f File
		var category, action sql.NullString
		if err := files.Scan(&f.Path, &category, &action, &f.Score); err != nil {
			return nil, err
		}
		f.Category = category.String
		f.Action = action.String
		run.Files = append(run.Files, f)
	}
	return run, files.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run                          Run
		kind, startedAt              string
		summary, rawPath, errMessage sql.NullString
	)
	if err := row.Scan(&run.ID, &kind, &run.Root, &startedAt, &summary, &rawPath, &run.Healthy, &errMessage); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse run time %q: %w", startedAt, err)
	}
	run.Kind = Kind(kind)
	run.StartedAt = ts
	run.Summary = summary.String
	run.RawPath = rawPath.String
	run.Error = errMessage.String
	return &run, nil
}

// FromAssimilation describes an assimilation run. res may be partial when
// runErr is set.
func FromAssimilation(root string, res *assimilate.Result, runErr error) Run {
	run := Run{Kind: KindAssimilate, Root: root, Healthy: runErr == nil}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if res == nil {
		return run
	}

	run.RawPath = res.RawPath
	run.Summary = fmt.Sprintf("%d artifacts, %d skipped, %d defaulted to docs", len(res.Artifacts), len(res.Skipped), res.Defaulted)
	for _, a := range res.Artifacts {
		run.Files = append(run.Files, File{
			Path:     a.RelativePath,
			Category: a.Category.String(),
			Action:   "created",
			Score:    a.Score,
		})
	}
	return run
}

// FromDoctor describes a doctor run.
func FromDoctor(kind Kind, root string, res *doctor.RunResult, runErr error) Run {
	run := Run{Kind: kind, Root: root}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if res == nil {
		return run
	}

	run.Healthy = res.Healthy()
	run.Summary = res.After.Summary()
	for _, a := range res.Actions {
		run.Files = append(run.Files, File{Path: a.Entry.Path, Action: string(a.Action)})
	}
	return run
}
