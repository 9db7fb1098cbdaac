package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category identifies one record category. Values match the underlying
// table names so that API payloads stay compatible with the automation
// that consumes them.
type Category string

const (
	CategoryTasks         Category = "user_tasks"
	CategoryProjects      Category = "user_projects"
	CategoryPayments      Category = "user_payments"
	CategoryReminders     Category = "user_reminders"
	CategoryConfirmations Category = "user_confirmations"
	CategoryTempMessages  Category = "temp_messages"
)

// Record is the normalized view of one row from any expirable category.
// OwnerID is always the profile UUID; WhatsApp numbers are resolved to
// profiles at the API boundary.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Category    Category   `json:"source_table,omitempty"`
}

// UserProfile represents a row in user_profiles.
type UserProfile struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	WhatsAppNumber string     `json:"whatsapp_number"`
	PasswordHash   string     `json:"-"`
	CurrentPlan    string     `json:"current_plan"`
	AccountStatus  string     `json:"account_status"`
	PlanStartedAt  *time.Time `json:"plan_started_at"`
	PlanExpiresAt  *time.Time `json:"plan_expires_at"`
	TrialStartedAt *time.Time `json:"trial_started_at"`
	TrialExpiresAt *time.Time `json:"trial_expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Message represents a row in user_messages. Messages carry no expiry
// and are never swept.
type Message struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent"`
	CreatedAt time.Time `json:"created_at"`
}

// TempMessage represents a row in temp_messages.
type TempMessage struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"user_id"`
	Intent    string     `json:"message_intent"`
	Content   string     `json:"message_content"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Confirmation represents a row in user_confirmations.
type Confirmation struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"user_id"`
	Intent    string          `json:"intent"`
	Payload   json.RawMessage `json:"payload_json"`
	Status    string          `json:"confirmation_status"`
	ExpiresAt *time.Time      `json:"expires_at"`
	CreatedAt time.Time       `json:"created_at"`
}

// UserContent bundles everything an active user owns, as returned by
// the content endpoint.
type UserContent struct {
	Projects  []Record  `json:"projects"`
	Tasks     []Record  `json:"tasks"`
	Payments  []Record  `json:"payments"`
	Reminders []Record  `json:"reminders"`
	Messages  []Message `json:"messages"`
}
