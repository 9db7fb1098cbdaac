package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

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
	"github.com/temirbekov/assistant-backend/internal/repository/users"
	usersvc "github.com/temirbekov/assistant-backend/internal/service/user"
)

// userService defines the profile and plan operations the Handler
// depends on.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/profile/mock.go -package=mocks
type userService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (model.UserProfile, error)
	GetByWhatsApp(ctx context.Context, strategy retry.Strategy, number string) (model.UserProfile, error)
	ListActive(ctx context.Context) ([]model.UserProfile, error)
	ActivatePlan(ctx context.Context, userID uuid.UUID, plan string) (model.UserProfile, error)
	CheckActivePlan(ctx context.Context, userID uuid.UUID) (bool, string, error)
	AllContent(ctx context.Context, userID uuid.UUID) (model.UserContent, error)
}

// Handler handles HTTP requests for profiles, plans, and user content.
type Handler struct {
	service   userService
	validator *validator.Validate
	cfg       *config.Config
}

// NewHandler creates a new profile Handler instance.
func NewHandler(s userService, v *validator.Validate, cfg *config.Config) *Handler {
	return &Handler{service: s, validator: v, cfg: cfg}
}

// Get handles HTTP GET requests for the authenticated user's profile.
func (h *Handler) Get(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, users.ErrProfileNotFound) {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("the user has not been found"))
			return
		}

		zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to get profile")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message":     "The user profile has been fetched",
		"userProfile": profile,
	})
}

// ListActive handles HTTP GET requests for all active profiles.
func (h *Handler) ListActive(c *ginext.Context) {
	profiles, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to list active profiles")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message":           "Active users fetched",
		"activeUserProfile": profiles,
	})
}

// ByWhatsAppRequest represents the JSON body of a lookup by WhatsApp
// number.
type ByWhatsAppRequest struct {
	Number string `json:"number" validate:"required"`
}

// ByWhatsApp handles HTTP POST requests that resolve a WhatsApp number
// to a profile. The automation calls this on every inbound message.
func (h *Handler) ByWhatsApp(c *ginext.Context) {
	var req ByWhatsAppRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("WhatsApp number is required"))
		return
	}

	profile, err := h.service.GetByWhatsApp(c.Request.Context(), h.cfg.Retry, req.Number)
	if err != nil {
		if errors.Is(err, users.ErrProfileNotFound) {
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("user not found"))
			return
		}

		zlog.Logger.Error().Err(err).Str("number", req.Number).Msg("failed to get profile by whatsapp")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, profile)
}

// ActivatePlanRequest represents the JSON body of a plan activation.
type ActivatePlanRequest struct {
	Plan string `json:"plan" validate:"required"`
}

// ActivatePlan handles HTTP POST requests to activate a plan for the
// authenticated user.
func (h *Handler) ActivatePlan(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	var req ActivatePlanRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("plan is required"))
		return
	}

	profile, err := h.service.ActivatePlan(c.Request.Context(), ownerID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, usersvc.ErrInvalidPlan):
			respond.Fail(c.Writer, http.StatusBadRequest, usersvc.ErrInvalidPlan)
		case errors.Is(err, users.ErrProfileNotFound):
			respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("user not found"))
		default:
			zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to activate plan")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		}
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message":  "The user plan has been activated",
		"userData": profile,
	})
}

// CheckActivePlan handles HTTP GET requests that report whether the
// authenticated user's plan is still valid.
func (h *Handler) CheckActivePlan(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	active, plan, err := h.service.CheckActivePlan(c.Request.Context(), ownerID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to check plan")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("failed to check plan"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"can_use_service": active,
		"plan":            plan,
	})
}

// AllContent handles HTTP GET requests for everything the authenticated
// user owns across all content categories.
func (h *Handler) AllContent(c *ginext.Context) {
	ownerID, ok := middleware.OwnerID(c)
	if !ok {
		respond.Fail(c.Writer, http.StatusUnauthorized, fmt.Errorf("missing user identity"))
		return
	}

	content, err := h.service.AllContent(c.Request.Context(), ownerID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to get user content")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("error while getting the user content"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message": "The user content has been fetched",
		"data":    content,
	})
}
