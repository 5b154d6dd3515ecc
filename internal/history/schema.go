package history

const SchemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

-- One row per assimilation, doctor or init run
CREATE TABLE IF NOT EXISTS runs (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT UNIQUE NOT NULL,
    kind TEXT NOT NULL,
    root TEXT NOT NULL,
    started_at TEXT NOT NULL,
    summary TEXT,
    raw_path TEXT,
    healthy INTEGER DEFAULT 1,
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_root ON runs(root);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);

-- Files a run wrote or repaired
CREATE TABLE IF NOT EXISTS run_files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    path TEXT NOT NULL,
    category TEXT,
    action TEXT,
    score INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
`
