// Package history stores suite results in a SQLite database.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GNOME/orca-sub019/internal/model"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned for an unknown run ID.
var ErrNotFound = errors.New("not found")

// Store is a suite-run history database.
type Store struct {
	DB *sql.DB
}

// Run is one stored suite run without its assertions.
type Run struct {
	ID          string    `yaml:"id"           json:"id"`
	StartedAt   time.Time `yaml:"started_at"   json:"started_at"`
	FinishedAt  time.Time `yaml:"finished_at"  json:"finished_at"`
	Total       int       `yaml:"total"        json:"total"`
	Passed      int       `yaml:"passed"       json:"passed"`
	Failed      int       `yaml:"failed"       json:"failed"`
	KnownIssues int       `yaml:"known_issues" json:"known_issues"`
	Aborted     int       `yaml:"aborted"      json:"aborted"`
}

// Open opens (creating if needed) the database at path with foreign keys on.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return &Store{DB: conn}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Save stores r and all of its assertion results in one transaction.
func (s *Store) Save(ctx context.Context, r *model.SuiteResult) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs(id,started_at,finished_at,total,passed,failed,known_issues,aborted) VALUES (?,?,?,?,?,?,?,?)`,
		r.ID, formatTime(r.Started), formatTime(r.Finished), r.Total, r.Passed, r.Failed, r.KnownIssues, r.Aborted)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for i, a := range r.Results {
		expected, err := json.Marshal(a.Expected)
		if err != nil {
			return err
		}
		actual, err := json.Marshal(a.Actual)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO assertions(run_id,seq,sequence,idx,label,verdict,expected,actual,error) VALUES (?,?,?,?,?,?,?,?,?)`,
			r.ID, i, a.Sequence, a.Index, a.Label, string(a.Verdict), string(expected), string(actual), nullable(a.Error))
		if err != nil {
			return fmt.Errorf("insert assertion %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id,started_at,finished_at,total,passed,failed,known_issues,aborted FROM runs ORDER BY started_at DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Total, &r.Passed, &r.Failed, &r.KnownIssues, &r.Aborted); err != nil {
			return nil, err
		}
		if r.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if r.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Assertions returns the stored results of run id in suite order. Diffs
// are recomputed from the stored lines.
func (s *Store) Assertions(ctx context.Context, id string) ([]model.AssertionResult, error) {
	var exists int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM runs WHERE id=?`, id).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT sequence,idx,label,verdict,expected,actual,COALESCE(error,'') FROM assertions WHERE run_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AssertionResult
	for rows.Next() {
		var a model.AssertionResult
		var verdict, expected, actual string
		if err := rows.Scan(&a.Sequence, &a.Index, &a.Label, &verdict, &expected, &actual, &a.Error); err != nil {
			return nil, err
		}
		a.Verdict = model.Verdict(verdict)
		if err := json.Unmarshal([]byte(expected), &a.Expected); err != nil {
			return nil, fmt.Errorf("decode expected lines: %w", err)
		}
		if err := json.Unmarshal([]byte(actual), &a.Actual); err != nil {
			return nil, fmt.Errorf("decode actual lines: %w", err)
		}
		a.Diff, _ = model.DiffLines(a.Expected, a.Actual)
		out = append(out, a)
	}
	return out, rows.Err()
}

// timeLayout is fixed width so started_at sorts chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
