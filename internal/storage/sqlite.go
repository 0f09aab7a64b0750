// Package storage provides SQLite-based persistence for training run history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
// Learned parameters are never stored; only per-episode outcomes are.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/dinobot/internal/runner"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("storage: run not found")

const timeLayout = "2006-01-02 15:04:05.000"

// Store manages the SQLite database connection for run history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Run describes one training run.
type Run struct {
	RunID          string
	Backend        string
	Representation string
	Episodes       int // Planned episodes
	StartedAt      time.Time
	FinishedAt     time.Time // Zero while running or if interrupted
}

// Episode is one stored episode outcome.
type Episode struct {
	ID          int64
	RunID       string
	Episode     int
	Ticks       int
	Actions     int
	Jumps       int
	Ducks       int
	Explored    int
	TotalReward float64
	Crashed     bool
	Epsilon     float64
	Duration    time.Duration
	CreatedAt   time.Time
}

// RunStats contains aggregated statistics for a run.
type RunStats struct {
	RunID      string
	Episodes   int
	Crashes    int
	BestReward float64
	AvgReward  float64
	AvgTicks   float64
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer; SSH sessions share the store.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			backend TEXT NOT NULL,
			representation TEXT NOT NULL,
			episodes INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT
		);

		CREATE TABLE IF NOT EXISTS episodes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			episode INTEGER NOT NULL,
			ticks INTEGER NOT NULL,
			actions INTEGER NOT NULL,
			jumps INTEGER NOT NULL,
			ducks INTEGER NOT NULL,
			explored INTEGER NOT NULL,
			total_reward REAL NOT NULL,
			crashed INTEGER NOT NULL,
			epsilon REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (run_id, episode)
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_run ON episodes(run_id, episode);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartRun records the start of a run.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, backend, representation, episodes, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.Backend, run.Representation, run.Episodes, formatTime(run.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot start run: %w", err)
	}
	return nil
}

// FinishRun marks a run as finished.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ? WHERE run_id = ?",
		formatTime(s.now()), runID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// SaveEpisode stores one episode outcome.
// Returns the ID of the inserted record.
func (s *Store) SaveEpisode(ctx context.Context, e Episode) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO episodes
		 (run_id, episode, ticks, actions, jumps, ducks, explored, total_reward, crashed, epsilon, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID,
		e.Episode,
		e.Ticks,
		e.Actions,
		e.Jumps,
		e.Ducks,
		e.Explored,
		e.TotalReward,
		e.Crashed,
		e.Epsilon,
		e.Duration.Milliseconds(),
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecordEpisode implements runner.EpisodeRecorder.
func (s *Store) RecordEpisode(ctx context.Context, res runner.EpisodeResult) error {
	_, err := s.SaveEpisode(ctx, Episode{
		RunID:       res.RunID,
		Episode:     res.Episode,
		Ticks:       res.Ticks,
		Actions:     res.Actions,
		Jumps:       res.Jumps,
		Ducks:       res.Ducks,
		Explored:    res.Explored,
		TotalReward: res.TotalReward,
		Crashed:     res.Crashed,
		Epsilon:     res.Epsilon,
		Duration:    res.Duration,
	})
	return err
}

// Ensure Store implements EpisodeRecorder
var _ runner.EpisodeRecorder = (*Store)(nil)

// Run retrieves a run by its id.
func (s *Store) Run(ctx context.Context, runID string) (Run, error) {
	var run Run
	var startedAt string
	var finishedAt sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, backend, representation, episodes, started_at, finished_at
		 FROM runs WHERE run_id = ?`,
		runID,
	).Scan(&run.RunID, &run.Backend, &run.Representation, &run.Episodes, &startedAt, &finishedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Run{}, fmt.Errorf("storage: cannot query run: %w", err)
	}

	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	return run, nil
}

// Runs retrieves the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, backend, representation, episodes, started_at, finished_at
		 FROM runs
		 ORDER BY started_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&run.RunID, &run.Backend, &run.Representation, &run.Episodes, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		run.StartedAt = parseTime(startedAt)
		if finishedAt.Valid {
			run.FinishedAt = parseTime(finishedAt.String)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// Episodes retrieves every episode of a run in episode order.
func (s *Store) Episodes(ctx context.Context, runID string) ([]Episode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, episode, ticks, actions, jumps, ducks, explored,
		        total_reward, crashed, epsilon, duration_ms, created_at
		 FROM episodes
		 WHERE run_id = ?
		 ORDER BY episode`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		var durationMS int64
		var createdAt string
		if err := rows.Scan(
			&e.ID,
			&e.RunID,
			&e.Episode,
			&e.Ticks,
			&e.Actions,
			&e.Jumps,
			&e.Ducks,
			&e.Explored,
			&e.TotalReward,
			&e.Crashed,
			&e.Epsilon,
			&durationMS,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		e.CreatedAt = parseTime(createdAt)
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// BestEpisode returns the episode with the highest total reward, the
// earliest one on ties. ok is false when the run has no episodes.
func (s *Store) BestEpisode(ctx context.Context, runID string) (best Episode, ok bool, err error) {
	episodes, err := s.Episodes(ctx, runID)
	if err != nil {
		return Episode{}, false, err
	}
	for i, e := range episodes {
		if i == 0 || e.TotalReward > best.TotalReward {
			best = e
		}
	}
	return best, len(episodes) > 0, nil
}

// Stats returns aggregated statistics for a run.
func (s *Store) Stats(ctx context.Context, runID string) (RunStats, error) {
	var stats RunStats
	var best, avgReward, avgTicks sql.NullFloat64
	var crashes sql.NullInt64

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(crashed), MAX(total_reward), AVG(total_reward), AVG(ticks)
		 FROM episodes WHERE run_id = ?`,
		runID,
	).Scan(&stats.Episodes, &crashes, &best, &avgReward, &avgTicks)
	if err != nil {
		return RunStats{}, fmt.Errorf("storage: cannot query run stats: %w", err)
	}

	stats.RunID = runID
	stats.Crashes = int(crashes.Int64)
	stats.BestReward = best.Float64
	stats.AvgReward = avgReward.Float64
	stats.AvgTicks = avgTicks.Float64
	return stats, nil
}

// DeleteRun removes a run and its episodes.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM episodes WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("storage: cannot delete episodes: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return tx.Commit()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses stored timestamps, returning the zero time on failure.
func parseTime(v string) time.Time {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
