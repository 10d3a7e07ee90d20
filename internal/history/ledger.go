// SPDX-License-Identifier: MIT

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ManuGH/seatkeeper/internal/jobs"
)

const schema = `
CREATE TABLE IF NOT EXISTS attempts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT    NOT NULL,
	plan_index INTEGER NOT NULL,
	room       TEXT    NOT NULL,
	attempt    INTEGER NOT NULL,
	outcome    TEXT    NOT NULL,
	code       TEXT    NOT NULL DEFAULT '',
	message    TEXT    NOT NULL DEFAULT '',
	error      TEXT    NOT NULL DEFAULT '',
	at_unix_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attempts_run ON attempts(run_id);
`

// Ledger stores booking attempts. It implements jobs.AttemptRecorder.
type Ledger struct {
	db *sql.DB
}

var _ jobs.AttemptRecorder = (*Ledger)(nil)

// Open opens or creates the ledger at path.
func Open(path string, cfg Config) (*Ledger, error) {
	db, err := openDB(path, cfg)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordAttempt appends one attempt.
func (l *Ledger) RecordAttempt(ctx context.Context, a jobs.Attempt) error {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, plan_index, room, attempt, outcome, code, message, error, at_unix_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID, a.PlanIndex, a.Room, a.Number, a.Outcome, a.Code, a.Message, a.Error, a.At.UnixNano())
	if err != nil {
		return fmt.Errorf("history: record attempt: %w", err)
	}
	return nil
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	RunID string
	// Limit keeps the most recent attempts; 0 means no limit.
	Limit int
}

// List returns attempts in insertion order.
func (l *Ledger) List(ctx context.Context, f Filter) ([]jobs.Attempt, error) {
	query := `SELECT run_id, plan_index, room, attempt, outcome, code, message, error, at_unix_ns
	          FROM attempts WHERE (? = '' OR run_id = ?) ORDER BY id DESC`
	args := []any{f.RunID, f.RunID}
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	var out []jobs.Attempt
	for rows.Next() {
		var (
			a  jobs.Attempt
			at int64
		)
		if err := rows.Scan(&a.RunID, &a.PlanIndex, &a.Room, &a.Number, &a.Outcome, &a.Code, &a.Message, &a.Error, &at); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		a.At = time.Unix(0, at).UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}

	// newest first from the query; reverse into insertion order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Ping checks that the database is reachable.
func (l *Ledger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Verify checks the database file for corruption.
func (l *Ledger) Verify(full bool) ([]string, error) {
	return verifyIntegrity(l.db, full)
}
