// Package catalog persists batch normalization runs in SQLite.
//
// Each run records the citations it processed, keyed by the BLAKE3 hash
// of the raw input, together with their canonical and full renderings or
// the parse failure.
package catalog

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	errs "github.com/FocuswithJustin/pubid/core/errors"
	"github.com/FocuswithJustin/pubid/core/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT,
	parsed      INTEGER NOT NULL DEFAULT 0,
	failed      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS citations (
	run_id    TEXT NOT NULL,
	hash      TEXT NOT NULL,
	seq       INTEGER NOT NULL,
	raw       TEXT NOT NULL,
	canonical TEXT NOT NULL DEFAULT '',
	full_form TEXT NOT NULL DEFAULT '',
	failure   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, hash)
);
CREATE INDEX IF NOT EXISTS citations_by_hash ON citations (hash);
`

// Run is one batch invocation.
type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Parsed     int       `json:"parsed"`
	Failed     int       `json:"failed"`
}

// Entry is one recorded citation. Error is empty when the citation
// parsed.
type Entry struct {
	RunID     string `json:"run_id"`
	Hash      string `json:"hash"`
	Seq       int    `json:"seq"`
	Raw       string `json:"raw"`
	Canonical string `json:"canonical,omitempty"`
	Full      string `json:"full,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Key returns the hex BLAKE3-256 digest identifying a raw citation.
func Key(raw string) string {
	sum := blake3.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Store is a catalog backed by a SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the catalog at dsn. Use sqlite.Memory
// for a throwaway catalog.
func Open(dsn string) (*Store, error) {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return nil, errs.NewIO("open catalog", dsn, err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenReadOnly opens an existing catalog file for queries only. The schema
// is not created, so a file that was never a catalog fails on first query.
func OpenReadOnly(path string) (*Store, error) {
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, errs.NewIO("open catalog", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errs.NewIO("open catalog", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// New wraps an open database, creating the schema if needed.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, errs.Wrap(err, "create catalog schema")
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun starts a run and assigns it a new ID.
func (s *Store) BeginRun(ctx context.Context, source string) (Run, error) {
	run := Run{
		ID:        uuid.New().String(),
		Source:    source,
		StartedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Source, formatTime(run.StartedAt))
	if err != nil {
		return Run{}, errs.Wrap(err, "begin run")
	}
	return run, nil
}

// Record stores e under runID. Recording the same raw citation twice in
// one run replaces the earlier entry.
func (s *Store) Record(ctx context.Context, runID string, e Entry) error {
	if e.Hash == "" {
		e.Hash = Key(e.Raw)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO citations (run_id, hash, seq, raw, canonical, full_form, failure)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, hash) DO UPDATE SET
			seq = excluded.seq,
			canonical = excluded.canonical,
			full_form = excluded.full_form,
			failure = excluded.failure`,
		runID, e.Hash, e.Seq, e.Raw, e.Canonical, e.Full, e.Error)
	if err != nil {
		return errs.Wrapf(err, "record citation %q", e.Raw)
	}
	return nil
}

// FinishRun stamps the run's end time and counters.
func (s *Store) FinishRun(ctx context.Context, runID string, parsed, failed int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, parsed = ?, failed = ? WHERE id = ?`,
		formatTime(s.now().UTC()), parsed, failed, runID)
	if err != nil {
		return errs.Wrap(err, "finish run")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NewNotFound("run", runID)
	}
	return nil
}

// Run returns the run with the given ID.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, started_at, finished_at, parsed, failed FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errs.NewNotFound("run", id)
	}
	return run, err
}

// Runs lists runs, most recent first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, started_at, finished_at, parsed, failed FROM runs ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, errs.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Lookup returns the most recently recorded entry for a raw citation.
func (s *Store) Lookup(ctx context.Context, raw string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, hash, seq, raw, canonical, full_form, failure
		FROM citations WHERE hash = ? AND raw = ?
		ORDER BY rowid DESC LIMIT 1`, Key(raw), raw)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, errs.NewNotFound("citation", raw)
	}
	return e, err
}

// Entries returns a run's entries in input order.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, hash, seq, raw, canonical, full_form, failure
		FROM citations WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, errs.Wrap(err, "list entries")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
	)
	if err := sc.Scan(&run.ID, &run.Source, &started, &finished, &run.Parsed, &run.Failed); err != nil {
		return Run{}, err
	}
	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if finished.Valid {
		if run.FinishedAt, err = parseTime(finished.String); err != nil {
			return Run{}, err
		}
	}
	return run, nil
}

func scanEntry(sc scanner) (Entry, error) {
	var e Entry
	err := sc.Scan(&e.RunID, &e.Hash, &e.Seq, &e.Raw, &e.Canonical, &e.Full, &e.Error)
	return e, err
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errs.NewParse("timestamp", s, err)
	}
	return t, nil
}
