package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listsync/internal/models"
)

// ErrRunNotFound is returned by [RunRepository.Get] for an unknown id.
var ErrRunNotFound = errors.New("run not found")

const defaultListLimit = 20

// RunRepository stores finished reconciliation cycles.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts a run and its pair results, assigning the run's sequence number.
func (r *RunRepository) Record(ctx context.Context, run *models.RunResult) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.Sequence = sequence

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sync_runs (id, sequence, started_at, finished_at, total_added, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		run.ID,
		run.Sequence,
		run.StartedAt,
		run.FinishedAt,
		run.TotalAdded,
		run.Err,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	pairQuery := `
		INSERT INTO sync_pair_results (run_id, position, source_list, target_list, status, added, failed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, p := range run.Pairs {
		if _, err := tx.ExecContext(ctx, pairQuery,
			run.ID, i, p.Pair.Source, p.Pair.Target, string(p.Status), p.Added, p.Failed, p.Err,
		); err != nil {
			return fmt.Errorf("failed to insert pair result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID with its pair results
func (r *RunRepository) Get(ctx context.Context, id string) (*models.RunResult, error) {
	query := `
		SELECT id, sequence, started_at, finished_at, total_added, error
		FROM sync_runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if run.Pairs, err = r.pairs(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first. A non-positive limit uses the default of 20.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.RunResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, sequence, started_at, finished_at, total_added, error
		FROM sync_runs
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var runs []*models.RunResult
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, run := range runs {
		if run.Pairs, err = r.pairs(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (r *RunRepository) Prune(ctx context.Context, keep int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stale := `SELECT id FROM sync_runs ORDER BY sequence DESC LIMIT -1 OFFSET ?`

	if _, err := tx.ExecContext(ctx, "DELETE FROM sync_pair_results WHERE run_id IN ("+stale+")", keep); err != nil {
		return 0, fmt.Errorf("failed to prune pair results: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM sync_runs WHERE id IN ("+stale+")", keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return int(removed), nil
}

func (r *RunRepository) pairs(ctx context.Context, runID string) ([]models.PairResult, error) {
	query := `
		SELECT source_list, target_list, status, added, failed, error
		FROM sync_pair_results
		WHERE run_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pair results: %w", err)
	}
	defer rows.Close()

	var pairs []models.PairResult
	for rows.Next() {
		var (
			p      models.PairResult
			status string
		)
		if err := rows.Scan(&p.Pair.Source, &p.Pair.Target, &status, &p.Added, &p.Failed, &p.Err); err != nil {
			return nil, fmt.Errorf("failed to scan pair result: %w", err)
		}
		p.Status = models.PairStatus(status)
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return pairs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a sync_runs row from either [sql.Row] or [sql.Rows]
func scanRun(row scanner) (*models.RunResult, error) {
	var (
		run        models.RunResult
		startedAt  time.Time
		finishedAt time.Time
	)

	if err := row.Scan(&run.ID, &run.Sequence, &startedAt, &finishedAt, &run.TotalAdded, &run.Err); err != nil {
		return nil, err
	}
	run.StartedAt = startedAt.UTC()
	run.FinishedAt = finishedAt.UTC()
	return &run, nil
}
