package confirmations

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
	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/api/middleware"
	"github.com/temirbekov/assistant-backend/internal/api/respond"
	"github.com/temirbekov/assistant-backend/internal/model"
	"github.com/temirbekov/assistant-backend/internal/repository/confirmations"
)

// confirmationsRepository defines the confirmation operations the
// Handler depends on.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/confirmations/mock.go -package=mocks
type confirmationsRepository interface {
	Create(ctx context.Context, c model.Confirmation) (uuid.UUID, error)
	GetLatestPending(ctx context.Context, ownerID uuid.UUID) (model.Confirmation, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// Handler handles HTTP requests for pending confirmations: actions the
// assistant proposed and is waiting for the user to approve.
type Handler struct {
	repo      confirmationsRepository
	validator *validator.Validate
}

// NewHandler creates a new confirmations Handler instance.
func NewHandler(repo confirmationsRepository, v *validator.Validate) *Handler {
	return &Handler{repo: repo, validator: v}
}

// CreateRequest represents the JSON body of a confirmation creation.
type CreateRequest struct {
	Intent    string          `json:"intent" validate:"required"`
	Payload   json.RawMessage `json:"payload_json" validate:"required"`
	ExpiresAt string          `json:"expires_at"`
}

// Create handles HTTP POST requests to park a proposed action until the
// user confirms it. Confirmations default to a five minute lifetime.
func (h *Handler) Create(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var req CreateRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	expiresAt := time.Now().Add(5 * time.Minute)
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("expires_at must be RFC 3339"))
			return
		}
		expiresAt = t
	}

	id, err := h.repo.Create(c.Request.Context(), model.Confirmation{
		OwnerID:   ownerID,
		Intent:    req.Intent,
		Payload:   req.Payload,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to create confirmation")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusCreated, gin.H{
		"message": "The confirmation has been saved",
		"id":      id,
	})
}

// GetPending handles HTTP GET requests for the authenticated user's
// latest pending confirmation. A missing confirmation is not an error:
// the automation probes this on every turn, so it gets a null instead.
func (h *Handler) GetPending(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	conf, err := h.repo.GetLatestPending(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, confirmations.ErrConfirmationNotFound) {
			respond.JSON(c.Writer, http.StatusOK, gin.H{"confirmation": nil})
			return
		}

		zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to get pending confirmation")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{"confirmation": conf})
}

// Delete handles HTTP DELETE requests that discard a confirmation once
// it has been resolved either way.
func (h *Handler) Delete(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), ownerID, id); err != nil {
		if errors.Is(err, confirmations.ErrConfirmationNotFound) {
			respond.Fail(c.Writer, http.StatusNotFound, confirmations.ErrConfirmationNotFound)
			return
		}

		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to delete confirmation")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{"message": "The confirmation has been deleted"})
}
