package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/api/middleware"
	"github.com/temirbekov/assistant-backend/internal/api/respond"
	"github.com/temirbekov/assistant-backend/internal/config"
	"github.com/temirbekov/assistant-backend/internal/model"
	"github.com/temirbekov/assistant-backend/internal/repository/records"
)

// recordsService defines the record operations the Handler depends on.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/records/mock.go -package=mocks
type recordsService interface {
	Create(ctx context.Context, category model.Category, rec model.Record) (uuid.UUID, error)
	ListByOwner(ctx context.Context, category model.Category, ownerID uuid.UUID) ([]model.Record, error)
	Delete(ctx context.Context, category model.Category, ownerID, id uuid.UUID) error
	UpdateStatus(ctx context.Context, category model.Category, ownerID, id uuid.UUID, status string) error
	MarkPaymentPaid(ctx context.Context, ownerID, id uuid.UUID) error
	ListDuePayments(ctx context.Context, ownerID uuid.UUID) ([]model.Record, error)
	CancelRelatedReminders(ctx context.Context, ownerID uuid.UUID, relatedType string, relatedID uuid.UUID) (int64, error)
}

type ownerResolver interface {
	GetByWhatsApp(ctx context.Context, strategy retry.Strategy, number string) (model.UserProfile, error)
}

// Handler handles HTTP requests for the uniform record categories:
// tasks, projects, payments, and reminders.
type Handler struct {
	service   recordsService
	users     ownerResolver
	validator *validator.Validate
	cfg       *config.Config
}

// NewHandler creates a new records Handler instance.
func NewHandler(s recordsService, users ownerResolver, v *validator.Validate, cfg *config.Config) *Handler {
	return &Handler{service: s, users: users, validator: v, cfg: cfg}
}

// CreateRequest represents the JSON body of a record creation. The
// automation identifies the owner by WhatsApp number.
type CreateRequest struct {
	WhatsAppNumber string `json:"whatsapp_number" validate:"required"`
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description"`
	ExpiresAt      string `json:"expires_at"`
}

// Create returns a handler that creates a record in the given category.
func (h *Handler) Create(category model.Category) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		var req CreateRequest

		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to decode request body")
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
			return
		}

		if err := h.validator.Struct(req); err != nil {
			zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
			return
		}

		var expiresAt *time.Time
		if req.ExpiresAt != "" {
			t, err := time.Parse(time.RFC3339, req.ExpiresAt)
			if err != nil {
				respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("expires_at must be RFC 3339"))
				return
			}
			expiresAt = &t
		}

		owner, err := h.users.GetByWhatsApp(c.Request.Context(), h.cfg.Retry, req.WhatsAppNumber)
		if err != nil {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("user not found"))
			return
		}

		id, err := h.service.Create(c.Request.Context(), category, model.Record{
			OwnerID:     owner.ID,
			Title:       req.Title,
			Description: req.Description,
			ExpiresAt:   expiresAt,
		})
		if err != nil {
			zlog.Logger.Error().Err(err).Str("category", string(category)).Msg("failed to create record")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
			return
		}

		respond.JSON(c.Writer, http.StatusCreated, gin.H{
			"message": "The item has been created",
			"id":      id,
		})
	}
}

// List returns a handler that lists the authenticated user's records in
// the given category.
func (h *Handler) List(category model.Category) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		ownerID, ok := middleware.OwnerID(c)
		if !ok {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
			return
		}

		items, err := h.service.ListByOwner(c.Request.Context(), category, ownerID)
		if err != nil {
			zlog.Logger.Error().Err(err).Str("category", string(category)).Msg("failed to list records")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
			return
		}

		respond.JSON(c.Writer, http.StatusOK, gin.H{
			"message": "The items have been fetched",
			"data":    items,
		})
	}
}

// Delete returns a handler that deletes one of the authenticated user's
// records by the named path parameter.
func (h *Handler) Delete(category model.Category, param string) ginext.HandlerFunc {
	return func(c *ginext.Context) {
		ownerID, ok := middleware.OwnerID(c)
		if !ok {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
			return
		}

		id, err := uuid.Parse(c.Param(param))
		if err != nil {
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
			return
		}

		if err := h.service.Delete(c.Request.Context(), category, ownerID, id); err != nil {
			if errors.Is(err, records.ErrRecordNotFound) {
				respond.Fail(c.Writer, http.StatusNotFound, records.ErrRecordNotFound)
				return
			}

			zlog.Logger.Error().Err(err).Str("category", string(category)).Str("id", id.String()).Msg("failed to delete record")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
			return
		}

		respond.JSON(c.Writer, http.StatusOK, gin.H{"message": "The item has been deleted"})
	}
}

// UpdateProjectStatusRequest represents the JSON body of a project
// status update.
type UpdateProjectStatusRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// UpdateProjectStatus handles HTTP PUT requests to change a project's
// status. Moving a project to completed stamps its completion time.
func (h *Handler) UpdateProjectStatus(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var req UpdateProjectStatusRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	id, err := uuid.Parse(req.ProjectID)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid project id"))
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), model.CategoryProjects, ownerID, id, req.Status); err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			respond.Fail(c.Writer, http.StatusNotFound, records.ErrRecordNotFound)
			return
		}

		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to update project status")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{"message": "The project status has been updated"})
}

// MarkPaymentPaidRequest represents the JSON body of a payment
// settlement.
type MarkPaymentPaidRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
}

// MarkPaymentPaid handles HTTP PUT requests to settle a payment.
func (h *Handler) MarkPaymentPaid(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var req MarkPaymentPaidRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	id, err := uuid.Parse(req.PaymentID)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid payment id"))
		return
	}

	if err := h.service.MarkPaymentPaid(c.Request.Context(), ownerID, id); err != nil {
		if errors.Is(err, records.ErrRecordNotFound) {
			respond.Fail(c.Writer, http.StatusNotFound, records.ErrRecordNotFound)
			return
		}

		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to mark payment paid")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{"message": "The payment has been marked as paid"})
}

// DuePayments handles HTTP GET requests for the authenticated user's
// unsettled payments.
func (h *Handler) DuePayments(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	payments, err := h.service.ListDuePayments(c.Request.Context(), ownerID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to list due payments")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message": "The due payments have been fetched",
		"data":    payments,
	})
}

// CancelRelatedRemindersRequest represents the JSON body of a bulk
// reminder cancellation.
type CancelRelatedRemindersRequest struct {
	RelatedType string `json:"related_type" validate:"required"`
	RelatedID   string `json:"related_id" validate:"required"`
}

// CancelRelatedReminders handles HTTP PUT requests that cancel every
// pending reminder attached to another record, e.g. after the payment
// they were nagging about got settled.
func (h *Handler) CancelRelatedReminders(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var req CancelRelatedRemindersRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	relatedID, err := uuid.Parse(req.RelatedID)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid related id"))
		return
	}

	cancelled, err := h.service.CancelRelatedReminders(c.Request.Context(), ownerID, req.RelatedType, relatedID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("related_id", relatedID.String()).Msg("failed to cancel related reminders")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message":   "Related reminders have been cancelled",
		"cancelled": cancelled,
	})
}
