package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite" // CGO-free SQLite driver

	"github.com/linserv/actions-dashboard/internal/model"
)

// DB is the concrete storage backed by SQLite.
type DB struct {
	conn *sql.DB
}

// OpenSQLite opens (and creates if missing) a SQLite DB at path.
func OpenSQLite(path string) (*DB, error) {
	// Pragmas via DSN keep it portable with the modernc driver.
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)"
	c, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &DB{conn: c}, nil
}

func (db *DB) Close() error { return db.conn.Close() }

// CreateSchema ensures all tables exist.
func (db *DB) CreateSchema() error {
	_, err := db.conn.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
  id             TEXT PRIMARY KEY,
  generated_at   TEXT,            -- RFC3339
  account        TEXT,
  account_type   TEXT,
  schema_version TEXT,
  snapshot_json  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
  snapshot_id      TEXT NOT NULL,
  repo             TEXT NOT NULL,
  workflow         TEXT NOT NULL,
  category         TEXT,
  status           TEXT,
  conclusion       TEXT,
  branch           TEXT,
  run_url          TEXT,
  updated_at       TEXT,           -- RFC3339
  jobs_total       INTEGER,
  jobs_success     INTEGER,
  jobs_failure     INTEGER,
  jobs_in_progress INTEGER,
  PRIMARY KEY (snapshot_id, repo, workflow),
  FOREIGN KEY(snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_records_snapshot ON records(snapshot_id);
CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);

CREATE TABLE IF NOT EXISTS mutes (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  repo       TEXT NOT NULL,
  workflow   TEXT,              -- optional exact match; NULL = whole repository
  reason     TEXT NOT NULL,
  expires_at TEXT NOT NULL,     -- RFC3339Nano
  created_at TEXT NOT NULL,
  revoked_at TEXT               -- NULL = active
);
`)
	if err != nil {
		return err
	}
	return nil
}

// SaveSnapshot upserts the snapshot JSON and (re)writes its record rows.
func (db *DB) SaveSnapshot(snap *model.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ts := snap.GeneratedAt.UTC().Format(time.RFC3339Nano)

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO snapshots (id, generated_at, account, account_type, schema_version, snapshot_json)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET generated_at=excluded.generated_at, account=excluded.account, account_type=excluded.account_type, schema_version=excluded.schema_version, snapshot_json=excluded.snapshot_json`,
		snap.ID, ts, snap.Account, snap.AccountType, snap.SchemaVersion, string(b),
	); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM records WHERE snapshot_id = ?`, snap.ID); err != nil {
		return err
	}
	if len(snap.Records) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO records
			(snapshot_id, repo, workflow, category, status, conclusion, branch, run_url, updated_at, jobs_total, jobs_success, jobs_failure, jobs_in_progress)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range snap.Records {
			js := model.SummarizeJobs(r.Jobs)
			if _, err := stmt.Exec(
				snap.ID,
				r.Repo,
				r.Workflow,
				r.Category.ID,
				string(r.Status),
				string(r.Conclusion),
				r.Branch,
				r.RunURL,
				r.UpdatedAt.UTC().Format(time.RFC3339Nano),
				js.Total,
				js.Success,
				js.Failure,
				js.InProgress,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadSnapshot returns the full snapshot (from stored JSON).
func (db *DB) LoadSnapshot(id string) (model.Snapshot, error) {
	var s string
	row := db.conn.QueryRow(`SELECT snapshot_json FROM snapshots WHERE id = ?`, id)
	if err := row.Scan(&s); err != nil {
		return model.Snapshot{}, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal([]byte(s), &snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// LoadLatestSnapshot returns the most recently generated snapshot.
func (db *DB) LoadLatestSnapshot() (model.Snapshot, error) {
	var id string
	row := db.conn.QueryRow(`SELECT id FROM snapshots ORDER BY generated_at DESC, id DESC LIMIT 1`)
	if err := row.Scan(&id); err != nil {
		return model.Snapshot{}, err
	}
	return db.LoadSnapshot(id)
}
