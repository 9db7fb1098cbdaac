package messages

import (
	"context"
	"encoding/json"
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
)

// messagesRepository defines the message operations the Handler depends
// on.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/messages/mock.go -package=mocks
type messagesRepository interface {
	CreateMessage(ctx context.Context, m model.Message) (uuid.UUID, error)
	ListMessagesByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Message, error)
	DeleteMessagesByOwner(ctx context.Context, ownerID uuid.UUID) error
	CreateTemp(ctx context.Context, m model.TempMessage) (uuid.UUID, error)
	ListTempByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.TempMessage, error)
	DeleteTempByOwner(ctx context.Context, ownerID uuid.UUID) error
}

type ownerResolver interface {
	GetByWhatsApp(ctx context.Context, strategy retry.Strategy, number string) (model.UserProfile, error)
}

// Handler handles HTTP requests for conversation messages and the
// short-lived temp messages the automation keeps between turns.
type Handler struct {
	repo      messagesRepository
	users     ownerResolver
	validator *validator.Validate
	cfg       *config.Config
}

// NewHandler creates a new messages Handler instance.
func NewHandler(repo messagesRepository, users ownerResolver, v *validator.Validate, cfg *config.Config) *Handler {
	return &Handler{repo: repo, users: users, validator: v, cfg: cfg}
}

// CreateMessageRequest represents the JSON body of a message creation.
type CreateMessageRequest struct {
	Content string `json:"content" validate:"required"`
	Intent  string `json:"intent"`
}

// CreateMessage handles HTTP POST requests to store a conversation
// message for the authenticated user.
func (h *Handler) CreateMessage(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var req CreateMessageRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	id, err := h.repo.CreateMessage(c.Request.Context(), model.Message{
		OwnerID: ownerID,
		Content: req.Content,
		Intent:  req.Intent,
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to create message")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusCreated, gin.H{
		"message": "The message has been saved",
		"id":      id,
	})
}

// GetMessages handles HTTP GET requests for the authenticated user's
// messages.
func (h *Handler) GetMessages(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	msgs, err := h.repo.ListMessagesByOwner(c.Request.Context(), ownerID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to list messages")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message": "The messages have been fetched",
		"data":    msgs,
	})
}

// DeleteMessages handles HTTP DELETE requests that clear the
// authenticated user's message history.
func (h *Handler) DeleteMessages(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	if err := h.repo.DeleteMessagesByOwner(c.Request.Context(), ownerID); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to delete messages")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{"message": "The messages have been deleted"})
}

// CreateTempRequest represents the JSON body of a temp message
// creation. The automation identifies the owner by WhatsApp number.
type CreateTempRequest struct {
	WhatsAppNumber string `json:"whatsapp_number" validate:"required"`
	Intent         string `json:"message_intent" validate:"required"`
	Content        string `json:"message_content" validate:"required"`
	ExpiresAt      string `json:"expires_at"`
}

// CreateTemp handles HTTP POST requests to store a temp message keyed
// by WhatsApp number. Temp messages default to a ten minute lifetime.
func (h *Handler) CreateTemp(c *ginext.Context) {
	var req CreateTempRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	expiresAt := time.Now().Add(10 * time.Minute)
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("expires_at must be RFC 3339"))
			return
		}
		expiresAt = t
	}

	owner, err := h.users.GetByWhatsApp(c.Request.Context(), h.cfg.Retry, req.WhatsAppNumber)
	if err != nil {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("user not found"))
		return
	}

	id, err := h.repo.CreateTemp(c.Request.Context(), model.TempMessage{
		OwnerID:   owner.ID,
		Intent:    req.Intent,
		Content:   req.Content,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("number", req.WhatsAppNumber).Msg("failed to create temp message")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusCreated, gin.H{
		"message": "The temp message has been saved",
		"id":      id,
	})
}

// TempByNumberRequest represents the JSON body of temp message
// operations keyed by WhatsApp number.
type TempByNumberRequest struct {
	WhatsAppNumber string `json:"whatsapp_number" validate:"required"`
}

// GetTemp handles HTTP POST requests for the temp messages of the user
// behind a WhatsApp number.
func (h *Handler) GetTemp(c *ginext.Context) {
	owner, ok := h.resolveOwner(c)
	if !ok {
		return
	}

	msgs, err := h.repo.ListTempByOwner(c.Request.Context(), owner.ID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", owner.ID.String()).Msg("failed to list temp messages")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message": "The temp messages have been fetched",
		"data":    msgs,
	})
}

// DeleteTemp handles HTTP POST requests that clear the temp messages of
// the user behind a WhatsApp number.
func (h *Handler) DeleteTemp(c *ginext.Context) {
	owner, ok := h.resolveOwner(c)
	if !ok {
		return
	}

	if err := h.repo.DeleteTempByOwner(c.Request.Context(), owner.ID); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", owner.ID.String()).Msg("failed to delete temp messages")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{"message": "The temp messages have been deleted"})
}

// resolveOwner decodes a WhatsApp number body and resolves it to a
// profile, writing the error response itself on failure.
func (h *Handler) resolveOwner(c *ginext.Context) (model.UserProfile, bool) {
	var req TempByNumberRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return model.UserProfile{}, false
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("WhatsApp number is required"))
		return model.UserProfile{}, false
	}

	owner, err := h.users.GetByWhatsApp(c.Request.Context(), h.cfg.Retry, req.WhatsAppNumber)
	if err != nil {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("user not found"))
		return model.UserProfile{}, false
	}

	return owner, true
}
