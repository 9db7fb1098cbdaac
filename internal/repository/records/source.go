package records

import (
	"context"
	"fmt"
	"time"

	"github.com/temirbekov/assistant-backend/internal/model"
)

// DueSource adapts one record table to the expiry aggregator. Rows with
// a NULL expires_at never match any of its predicates.
type DueSource struct {
	repo     *Repository
	category model.Category
}

// NewDueSource creates an expiry source over one of the uniform record
// tables.
func NewDueSource(repo *Repository, category model.Category) (*DueSource, error) {
	if _, err := table(category); err != nil {
		return nil, err
	}
	return &DueSource{repo: repo, category: category}, nil
}

// Category returns the category this source reads from.
func (s *DueSource) Category() model.Category {
	return s.category
}

// DueBefore retrieves all records with expires_at <= t.
func (s *DueSource) DueBefore(ctx context.Context, t time.Time) ([]model.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, status, created_at, completed_at, expires_at
		FROM %s
		WHERE expires_at <= $1;
    `, s.category)

	rows, err := s.repo.db.QueryContext(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due %s records: %w", s.category, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DueBetween retrieves all records with from <= expires_at <= to,
// inclusive on both ends.
func (s *DueSource) DueBetween(ctx context.Context, from, to time.Time) ([]model.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, status, created_at, completed_at, expires_at
		FROM %s
		WHERE expires_at >= $1 AND expires_at <= $2;
    `, s.category)

	rows, err := s.repo.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch window %s records: %w", s.category, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// DeleteDueBefore deletes all records with expires_at <= t and returns
// the number of rows removed.
func (s *DueSource) DeleteDueBefore(ctx context.Context, t time.Time) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE expires_at <= $1;
    `, s.category)

	res, err := s.repo.db.ExecContext(ctx, query, t)
	if err != nil {
		return 0, fmt.Errorf("failed to delete due %s records: %w", s.category, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted %s records: %w", s.category, err)
	}

	return deleted, nil
}
