package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/msaleem/trendwatch/pkg/domain"
)

// SnapshotRepository persists collection runs: the ranked snapshot as a JSON
// payload plus the normalized raw corpus backing it
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// RunInfo is a run listing entry without the payload
type RunInfo struct {
	RunID       string    `db:"run_id" json:"run_id"`
	GeneratedAt time.Time `db:"generated_at" json:"generated_at"`
	ItemCount   int       `db:"item_count" json:"item_count"`
}

// SaveRun stores a snapshot with its items in one transaction
func (r *SnapshotRepository) SaveRun(ctx context.Context, snap *domain.Snapshot, items []domain.NormalizedItem) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	keywords, err := json.Marshal(snap.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("begin transaction: %w", err)}
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		_, err = tx.ExecContext(ctx,
			"INSERT INTO runs (run_id, generated_at, keywords, item_count, payload) VALUES (?, ?, ?, ?, ?)",
			snap.RunID, snap.GeneratedAt.UTC(), string(keywords), len(items), string(payload))
		if err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("insert run: %w", err)}
		}

		for _, item := range items {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO items (run_id, source, keyword, title, text, url, engagement, published)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				snap.RunID, item.Source, item.Keyword, item.Title, item.Text, item.URL, item.Engagement, item.Published.UTC())
			if err != nil {
				if isLockError(err) {
					return err
				}
				return &criticalError{err: fmt.Errorf("insert item: %w", err)}
			}
		}

		if err := tx.Commit(); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("commit run: %w", err)}
		}
		return nil
	})
}

// Latest returns the most recent snapshot, nil when no run has completed yet
func (r *SnapshotRepository) Latest(ctx context.Context) (*domain.Snapshot, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload, "SELECT payload FROM runs ORDER BY generated_at DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// LatestItems returns the raw corpus of the most recent run
func (r *SnapshotRepository) LatestItems(ctx context.Context) ([]domain.NormalizedItem, error) {
	var items []domain.NormalizedItem
	query := `
		SELECT source, keyword, title, text, url, engagement, published FROM items
		WHERE run_id = (SELECT run_id FROM runs ORDER BY generated_at DESC LIMIT 1)
		ORDER BY id
	`
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("get latest items: %w", err)
	}
	return items, nil
}

// ListRuns returns recent runs, newest first
func (r *SnapshotRepository) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []RunInfo
	err := r.db.SelectContext(ctx, &runs,
		"SELECT run_id, generated_at, item_count FROM runs ORDER BY generated_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// PruneRuns removes all but the newest keep runs, items cascade
func (r *SnapshotRepository) PruneRuns(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		keep = 1
	}
	query := `
		DELETE FROM runs WHERE run_id NOT IN (
			SELECT run_id FROM runs ORDER BY generated_at DESC LIMIT ?
		)
	`
	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(removed), nil
}
