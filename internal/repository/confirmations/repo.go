package confirmations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/temirbekov/assistant-backend/internal/model"
)

var ErrConfirmationNotFound = errors.New("confirmation not found")

// Repository provides access to the user_confirmations table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new confirmation repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new pending confirmation and returns its ID.
func (r *Repository) Create(ctx context.Context, c model.Confirmation) (uuid.UUID, error) {
	query := `
		INSERT INTO user_confirmations (owner_id, intent, payload_json, confirmation_status, expires_at)
		VALUES ($1, $2, $3, 'pending', $4)
		RETURNING id;
    `

	var id uuid.UUID
	err := r.db.Master.QueryRowContext(ctx, query, c.OwnerID, c.Intent, c.Payload, c.ExpiresAt).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create confirmation: %w", err)
	}

	return id, nil
}

// GetLatestPending retrieves the owner's most recent pending
// confirmation.
func (r *Repository) GetLatestPending(ctx context.Context, ownerID uuid.UUID) (model.Confirmation, error) {
	query := `
		SELECT id, owner_id, intent, payload_json, confirmation_status, expires_at, created_at
		FROM user_confirmations
		WHERE owner_id = $1 AND confirmation_status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1;
    `

	var c model.Confirmation
	err := r.db.Master.QueryRowContext(ctx, query, ownerID).Scan(
		&c.ID, &c.OwnerID, &c.Intent, &c.Payload, &c.Status, &c.ExpiresAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Confirmation{}, ErrConfirmationNotFound
		}

		return model.Confirmation{}, fmt.Errorf("failed to get pending confirmation: %w", err)
	}

	return c, nil
}

// Delete removes one confirmation scoped to its owner.
func (r *Repository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `
		DELETE FROM user_confirmations
		WHERE id = $1 AND owner_id = $2;
    `

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete confirmation: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrConfirmationNotFound
	}

	return nil
}

// Source adapts user_confirmations to the expiry aggregator. Intent and
// payload map onto the normalized record's title and description.
type Source struct {
	repo *Repository
}

// NewSource creates an expiry source over user_confirmations.
func NewSource(repo *Repository) *Source {
	return &Source{repo: repo}
}

// Category returns the confirmation category.
func (s *Source) Category() model.Category {
	return model.CategoryConfirmations
}

// DueBefore retrieves all confirmations with expires_at <= t.
func (s *Source) DueBefore(ctx context.Context, t time.Time) ([]model.Record, error) {
	query := `
		SELECT id, owner_id, intent, payload_json, confirmation_status, expires_at, created_at
		FROM user_confirmations
		WHERE expires_at <= $1;
    `

	return s.queryRecords(ctx, query, t)
}

// DueBetween retrieves all confirmations with from <= expires_at <= to.
func (s *Source) DueBetween(ctx context.Context, from, to time.Time) ([]model.Record, error) {
	query := `
		SELECT id, owner_id, intent, payload_json, confirmation_status, expires_at, created_at
		FROM user_confirmations
		WHERE expires_at >= $1 AND expires_at <= $2;
    `

	return s.queryRecords(ctx, query, from, to)
}

// DeleteDueBefore deletes all confirmations with expires_at <= t.
func (s *Source) DeleteDueBefore(ctx context.Context, t time.Time) (int64, error) {
	query := `
		DELETE FROM user_confirmations
		WHERE expires_at <= $1;
    `

	res, err := s.repo.db.ExecContext(ctx, query, t)
	if err != nil {
		return 0, fmt.Errorf("failed to delete due confirmations: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted confirmations: %w", err)
	}

	return deleted, nil
}

func (s *Source) queryRecords(ctx context.Context, query string, args ...interface{}) ([]model.Record, error) {
	rows, err := s.repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due confirmations: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var c model.Confirmation
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Intent, &c.Payload, &c.Status, &c.ExpiresAt, &c.CreatedAt); err != nil {
			return nil, err
		}

		records = append(records, model.Record{
			ID:          c.ID,
			OwnerID:     c.OwnerID,
			Title:       c.Intent,
			Description: string(c.Payload),
			Status:      c.Status,
			CreatedAt:   c.CreatedAt,
			ExpiresAt:   c.ExpiresAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
