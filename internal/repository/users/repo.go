package users

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

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
)

const profileColumns = `
	id, username, email, whatsapp_number, password_hash,
	current_plan, account_status,
	plan_started_at, plan_expires_at, trial_started_at, trial_expires_at,
	created_at
`

// Repository provides access to the user_profiles table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new user profile repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new profile and returns its ID.
func (r *Repository) Create(ctx context.Context, p model.UserProfile) (uuid.UUID, error) {
	query := `
		INSERT INTO user_profiles (
		    username, email, whatsapp_number, password_hash, current_plan, account_status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;
    `

	var id uuid.UUID
	err := r.db.Master.QueryRowContext(
		ctx, query, p.Username, p.Email, p.WhatsAppNumber, p.PasswordHash, p.CurrentPlan, p.AccountStatus,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return id, nil
}

// GetByID retrieves a profile by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (model.UserProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_profiles
		WHERE id = $1;
    `, profileColumns)

	return r.scanProfile(r.db.Master.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a profile by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (model.UserProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_profiles
		WHERE email = $1;
    `, profileColumns)

	return r.scanProfile(r.db.Master.QueryRowContext(ctx, query, email))
}

// GetByWhatsApp retrieves a profile by WhatsApp number.
func (r *Repository) GetByWhatsApp(ctx context.Context, number string) (model.UserProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_profiles
		WHERE whatsapp_number = $1;
    `, profileColumns)

	return r.scanProfile(r.db.Master.QueryRowContext(ctx, query, number))
}

// Exists reports whether a profile with the given email or WhatsApp
// number already exists.
func (r *Repository) Exists(ctx context.Context, email, number string) (bool, error) {
	query := `
		SELECT EXISTS (
		    SELECT 1 FROM user_profiles
		    WHERE email = $1 OR whatsapp_number = $2
		);
    `

	var exists bool
	if err := r.db.Master.QueryRowContext(ctx, query, email, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}

	return exists, nil
}

// ListActive retrieves all profiles with an active account status.
func (r *Repository) ListActive(ctx context.Context) ([]model.UserProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM user_profiles
		WHERE account_status = 'active';
    `, profileColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.UserProfile
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}

		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// SetAccountStatus updates a profile's account status.
func (r *Repository) SetAccountStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE user_profiles
		SET account_status = $1
		WHERE id = $2;
    `

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	rows, _ := res.RowsAffected()

	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

// ActivatePlan sets a profile's plan and its validity window, and marks
// the account active.
func (r *Repository) ActivatePlan(ctx context.Context, id uuid.UUID, plan string, startedAt, expiresAt time.Time) (model.UserProfile, error) {
	query := fmt.Sprintf(`
		UPDATE user_profiles
		SET current_plan = $1, account_status = 'active', plan_started_at = $2, plan_expires_at = $3
		WHERE id = $4
		RETURNING %s;
    `, profileColumns)

	return r.scanProfile(r.db.Master.QueryRowContext(ctx, query, plan, startedAt, expiresAt, id))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanProfile(row rowScanner) (model.UserProfile, error) {
	var p model.UserProfile
	err := row.Scan(
		&p.ID, &p.Username, &p.Email, &p.WhatsAppNumber, &p.PasswordHash,
		&p.CurrentPlan, &p.AccountStatus,
		&p.PlanStartedAt, &p.PlanExpiresAt, &p.TrialStartedAt, &p.TrialExpiresAt,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.UserProfile{}, ErrProfileNotFound
		}

		return model.UserProfile{}, fmt.Errorf("failed to scan profile: %w", err)
	}

	return p, nil
}
