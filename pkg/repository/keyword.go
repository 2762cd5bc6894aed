package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
)

// KeywordRepository persists the tracked keyword list. The list is small and
// replaced wholesale on every change, so writes rewrite the table.
type KeywordRepository struct {
	db *sqlx.DB
}

// NewKeywordRepository creates a new keyword repository
func NewKeywordRepository(db *sqlx.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

// LoadKeywords returns the stored keywords in their configured order. A nil
// result means nothing was ever persisted; an empty non-nil result means the
// list was deliberately emptied.
func (r *KeywordRepository) LoadKeywords(ctx context.Context) ([]string, error) {
	var keywords []string
	err := r.db.SelectContext(ctx, &keywords, "SELECT keyword FROM keywords ORDER BY pos")
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}
	if len(keywords) > 0 {
		return keywords, nil
	}

	// zero rows is either a fresh database or an emptied list, the update
	// timestamp setting tells them apart
	var marker string
	err = r.db.GetContext(ctx, &marker, "SELECT value FROM settings WHERE key = ?", SettingKeywordsUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check keywords marker: %w", err)
	}
	return []string{}, nil
}

// SaveKeywords replaces the stored list and records the update time
func (r *KeywordRepository) SaveKeywords(ctx context.Context, keywords []string, updated time.Time) error {
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

		if _, err := tx.ExecContext(ctx, "DELETE FROM keywords"); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("clear keywords: %w", err)}
		}
		for pos, kw := range keywords {
			if _, err := tx.ExecContext(ctx, "INSERT INTO keywords (pos, keyword) VALUES (?, ?)", pos, kw); err != nil {
				if isLockError(err) {
					return err
				}
				return &criticalError{err: fmt.Errorf("insert keyword %q: %w", kw, err)}
			}
		}
		query := `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`
		if _, err := tx.ExecContext(ctx, query, SettingKeywordsUpdated, updated.UTC().Format(time.RFC3339)); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("record update time: %w", err)}
		}

		if err := tx.Commit(); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("commit keywords: %w", err)}
		}
		return nil
	})
}
