package messages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/temirbekov/assistant-backend/internal/model"
)

var ErrMessageNotFound = errors.New("message not found")

// Repository provides access to the user_messages and temp_messages
// tables. Temp messages are short-lived, carry an expiry, and feed the
// expiry aggregator; regular messages do not expire.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new message repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// CreateMessage inserts a new user message and returns its ID.
func (r *Repository) CreateMessage(ctx context.Context, m model.Message) (uuid.UUID, error) {
	query := `
		INSERT INTO user_messages (owner_id, content, intent)
		VALUES ($1, $2, $3)
		RETURNING id;
    `

	var id uuid.UUID
	err := r.db.Master.QueryRowContext(ctx, query, m.OwnerID, m.Content, m.Intent).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create message: %w", err)
	}

	return id, nil
}

// ListMessagesByOwner retrieves an owner's messages, newest first.
func (r *Repository) ListMessagesByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Message, error) {
	query := `
		SELECT id, owner_id, content, intent, created_at
		FROM user_messages
		WHERE owner_id = $1
		ORDER BY created_at DESC;
    `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Content, &m.Intent, &m.CreatedAt); err != nil {
			return nil, err
		}

		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return msgs, nil
}

// DeleteMessagesByOwner removes all of an owner's messages.
func (r *Repository) DeleteMessagesByOwner(ctx context.Context, ownerID uuid.UUID) error {
	query := `
		DELETE FROM user_messages
		WHERE owner_id = $1;
    `

	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return nil
}

// CreateTemp inserts a new temp message and returns its ID.
func (r *Repository) CreateTemp(ctx context.Context, m model.TempMessage) (uuid.UUID, error) {
	query := `
		INSERT INTO temp_messages (owner_id, message_intent, message_content, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
    `

	var id uuid.UUID
	err := r.db.Master.QueryRowContext(ctx, query, m.OwnerID, m.Intent, m.Content, m.ExpiresAt).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create temp message: %w", err)
	}

	return id, nil
}

// ListTempByOwner retrieves an owner's temp messages, newest first.
func (r *Repository) ListTempByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.TempMessage, error) {
	query := `
		SELECT id, owner_id, message_intent, message_content, expires_at, created_at
		FROM temp_messages
		WHERE owner_id = $1
		ORDER BY created_at DESC;
    `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list temp messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.TempMessage
	for rows.Next() {
		var m model.TempMessage
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Intent, &m.Content, &m.ExpiresAt, &m.CreatedAt); err != nil {
			return nil, err
		}

		msgs = append(msgs, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return msgs, nil
}

// DeleteTempByOwner removes all of an owner's temp messages.
func (r *Repository) DeleteTempByOwner(ctx context.Context, ownerID uuid.UUID) error {
	query := `
		DELETE FROM temp_messages
		WHERE owner_id = $1;
    `

	if _, err := r.db.ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to delete temp messages: %w", err)
	}

	return nil
}

// TempSource adapts temp_messages to the expiry aggregator. Intent and
// content map onto the normalized record's title and description.
type TempSource struct {
	repo *Repository
}

// NewTempSource creates an expiry source over temp_messages.
func NewTempSource(repo *Repository) *TempSource {
	return &TempSource{repo: repo}
}

// Category returns the temp message category.
func (s *TempSource) Category() model.Category {
	return model.CategoryTempMessages
}

// DueBefore retrieves all temp messages with expires_at <= t.
func (s *TempSource) DueBefore(ctx context.Context, t time.Time) ([]model.Record, error) {
	query := `
		SELECT id, owner_id, message_intent, message_content, expires_at, created_at
		FROM temp_messages
		WHERE expires_at <= $1;
    `

	return s.queryRecords(ctx, query, t)
}

// DueBetween retrieves all temp messages with from <= expires_at <= to.
func (s *TempSource) DueBetween(ctx context.Context, from, to time.Time) ([]model.Record, error) {
	query := `
		SELECT id, owner_id, message_intent, message_content, expires_at, created_at
		FROM temp_messages
		WHERE expires_at >= $1 AND expires_at <= $2;
    `

	return s.queryRecords(ctx, query, from, to)
}

// DeleteDueBefore deletes all temp messages with expires_at <= t.
func (s *TempSource) DeleteDueBefore(ctx context.Context, t time.Time) (int64, error) {
	query := `
		DELETE FROM temp_messages
		WHERE expires_at <= $1;
    `

	res, err := s.repo.db.ExecContext(ctx, query, t)
	if err != nil {
		return 0, fmt.Errorf("failed to delete due temp messages: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted temp messages: %w", err)
	}

	return deleted, nil
}

func (s *TempSource) queryRecords(ctx context.Context, query string, args ...interface{}) ([]model.Record, error) {
	rows, err := s.repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due temp messages: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var m model.TempMessage
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Intent, &m.Content, &m.ExpiresAt, &m.CreatedAt); err != nil {
			return nil, err
		}

		records = append(records, model.Record{
			ID:          m.ID,
			OwnerID:     m.OwnerID,
			Title:       m.Intent,
			Description: m.Content,
			CreatedAt:   m.CreatedAt,
			ExpiresAt:   m.ExpiresAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
