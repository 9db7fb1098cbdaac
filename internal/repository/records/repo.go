package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/temirbekov/assistant-backend/internal/model"
)

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrUnknownCategory = errors.New("unknown record category")
)

// categories served by this repository. The four tables share one
// column layout; category values double as table names.
var categories = map[model.Category]bool{
	model.CategoryTasks:     true,
	model.CategoryProjects:  true,
	model.CategoryPayments:  true,
	model.CategoryReminders: true,
}

// Repository provides access to the uniform per-user record tables
// (tasks, projects, payments, reminders). The category argument selects
// the table; it is validated against a fixed whitelist before being
// interpolated into a query.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new records repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

func table(category model.Category) (string, error) {
	if !categories[category] {
		return "", fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return string(category), nil
}

// Create inserts a new record into the category's table and returns its ID.
func (r *Repository) Create(ctx context.Context, category model.Category, rec model.Record) (uuid.UUID, error) {
	t, err := table(category)
	if err != nil {
		return uuid.Nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, title, description, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
    `, t)

	var id uuid.UUID
	err = r.db.Master.QueryRowContext(
		ctx, query, rec.OwnerID, rec.Title, rec.Description, rec.ExpiresAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create %s record: %w", category, err)
	}

	return id, nil
}

// ListByOwner retrieves all of an owner's records in a category,
// newest first.
func (r *Repository) ListByOwner(ctx context.Context, category model.Category, ownerID uuid.UUID) ([]model.Record, error) {
	t, err := table(category)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, owner_id, title, description, status, created_at, completed_at, expires_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at DESC;
    `, t)

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", category, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Delete removes one record scoped to its owner.
func (r *Repository) Delete(ctx context.Context, category model.Category, ownerID, id uuid.UUID) error {
	t, err := table(category)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND owner_id = $2;
    `, t)

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", category, err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// UpdateStatus sets a record's status. When the new status is
// "completed" the completion timestamp is stamped as well.
func (r *Repository) UpdateStatus(ctx context.Context, category model.Category, ownerID, id uuid.UUID, status string) error {
	t, err := table(category)
	if err != nil {
		return err
	}

	var completedAt *time.Time
	if status == "completed" {
		now := time.Now().UTC()
		completedAt = &now
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $1, completed_at = COALESCE($2, completed_at)
		WHERE id = $3 AND owner_id = $4;
    `, t)

	res, err := r.db.ExecContext(ctx, query, status, completedAt, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", category, err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// MarkPaymentPaid marks a payment as paid and stamps the follow-up time.
func (r *Repository) MarkPaymentPaid(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `
		UPDATE user_payments
		SET status = 'paid', last_follow_up_at = NOW()
		WHERE id = $1 AND owner_id = $2;
    `

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// ListDuePayments retrieves an owner's payments still pending or overdue.
func (r *Repository) ListDuePayments(ctx context.Context, ownerID uuid.UUID) ([]model.Record, error) {
	query := `
		SELECT id, owner_id, title, description, status, created_at, completed_at, expires_at
		FROM user_payments
		WHERE owner_id = $1 AND status IN ('pending', 'overdue')
		ORDER BY created_at DESC;
    `

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list due payments: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// CancelRelatedReminders cancels all pending reminders tied to another
// record, e.g. when the task they follow up on is completed.
func (r *Repository) CancelRelatedReminders(ctx context.Context, ownerID uuid.UUID, relatedType string, relatedID uuid.UUID) (int64, error) {
	query := `
		UPDATE user_reminders
		SET status = 'cancelled'
		WHERE owner_id = $1 AND related_type = $2 AND related_id = $3 AND status = 'pending';
    `

	res, err := r.db.ExecContext(ctx, query, ownerID, relatedType, relatedID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel related reminders: %w", err)
	}

	rows, _ := res.RowsAffected()

	return rows, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanRecords(rows rowScanner) ([]model.Record, error) {
	var records []model.Record

	for rows.Next() {
		var rec model.Record
		err := rows.Scan(
			&rec.ID, &rec.OwnerID, &rec.Title, &rec.Description,
			&rec.Status, &rec.CreatedAt, &rec.CompletedAt, &rec.ExpiresAt,
		)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
