// Package store persists simulation runs in SQLite and exports them to
// portable formats.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/san-kum/rigidsim/internal/rollout"
)

// ErrNotFound reports a run id with no stored row.
var ErrNotFound = errors.New("store: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scene TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	timestep REAL NOT NULL,
	steps INTEGER NOT NULL,
	metrics TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	t REAL NOT NULL,
	q TEXT NOT NULL,
	qd TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS samples_run ON samples(run_id);
`

// Store keeps runs in a single SQLite file.
type Store struct {
	db *sql.DB

	// Log receives persistence diagnostics when set.
	Log *zap.SugaredLogger
}

// Run is the stored metadata of one simulation run.
type Run struct {
	ID        int64
	Scene     string
	CreatedAt time.Time
	Timestep  float64
	Steps     int
	Metrics   map[string]float64
}

// Sample is one stored trajectory point.
type Sample struct {
	T  float64
	Q  []float64
	QD []float64
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens or creates the run store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun persists one result with its sampled trajectory and returns the
// new run id.
func (s *Store) SaveRun(ctx context.Context, scene string, timestep float64, res *rollout.Result) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("store is not configured")
	}
	if res == nil || len(res.States) == 0 {
		return 0, fmt.Errorf("result has no samples")
	}

	metrics, err := json.Marshal(res.Metrics)
	if err != nil {
		return 0, fmt.Errorf("encode metrics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	r, err := tx.ExecContext(ctx,
		"INSERT INTO runs (scene, created_at, timestep, steps, metrics) VALUES (?, ?, ?, ?, ?)",
		scene, toMillis(time.Now()), timestep, res.StepsTaken, string(metrics))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO samples (run_id, t, q, qd) VALUES (?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare samples: %w", err)
	}
	defer stmt.Close()

	for i := range res.States {
		q, err := json.Marshal(res.States[i].Q)
		if err != nil {
			return 0, fmt.Errorf("encode sample %d: %w", i, err)
		}
		qd, err := json.Marshal(res.States[i].QD)
		if err != nil {
			return 0, fmt.Errorf("encode sample %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, id, res.Times[i], string(q), string(qd)); err != nil {
			return 0, fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	if s.Log != nil {
		s.Log.Debugw("saved run", "id", id, "scene", scene, "samples", len(res.States))
	}
	return id, nil
}

// ListRuns returns all stored runs, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, scene, created_at, timestep, steps, metrics FROM runs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
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

// GetRun returns one run's metadata.
func (s *Store) GetRun(ctx context.Context, id int64) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT id, scene, created_at, timestep, steps, metrics FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Samples returns one run's stored trajectory in insert order.
func (s *Store) Samples(ctx context.Context, id int64) ([]Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT t, q, qd FROM samples WHERE run_id = ? ORDER BY rowid", id)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var sm Sample
		var q, qd string
		if err := rows.Scan(&sm.T, &q, &qd); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		if err := json.Unmarshal([]byte(q), &sm.Q); err != nil {
			return nil, fmt.Errorf("decode sample q: %w", err)
		}
		if err := json.Unmarshal([]byte(qd), &sm.QD); err != nil {
			return nil, fmt.Errorf("decode sample qd: %w", err)
		}
		samples = append(samples, sm)
	}
	return samples, rows.Err()
}

// DeleteRun removes a run and its samples.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var created int64
	var metrics string
	if err := row.Scan(&run.ID, &run.Scene, &created, &run.Timestep, &run.Steps, &metrics); err != nil {
		return Run{}, err
	}
	run.CreatedAt = fromMillis(created)
	if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
		return Run{}, fmt.Errorf("decode metrics: %w", err)
	}
	return run, nil
}
