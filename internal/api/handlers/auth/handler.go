package auth

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

	"github.com/temirbekov/assistant-backend/internal/api/respond"
	"github.com/temirbekov/assistant-backend/internal/config"
	"github.com/temirbekov/assistant-backend/internal/model"
	"github.com/temirbekov/assistant-backend/internal/repository/users"
	authsvc "github.com/temirbekov/assistant-backend/internal/service/auth"
)

// authService defines the identity flows the Handler depends on.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/auth/mock.go -package=mocks
type authService interface {
	Register(ctx context.Context, strategy retry.Strategy, params authsvc.RegisterParams) (uuid.UUID, error)
	VerifyOTP(ctx context.Context, strategy retry.Strategy, number, code string) (model.UserProfile, string, error)
	ResendOTP(ctx context.Context, strategy retry.Strategy, number string) error
	Login(ctx context.Context, email, password string) (model.UserProfile, string, error)
}

// Handler handles HTTP requests for signup, verification, and login.
type Handler struct {
	service   authService
	validator *validator.Validate
	cfg       *config.Config
}

// NewHandler creates a new auth Handler instance.
func NewHandler(s authService, v *validator.Validate, cfg *config.Config) *Handler {
	return &Handler{service: s, validator: v, cfg: cfg}
}

// SignUpRequest represents the JSON body of a signup request.
type SignUpRequest struct {
	Username       string `json:"username" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	WhatsAppNumber string `json:"whatsapp_number" validate:"required"`
	Password       string `json:"password" validate:"required,min=6"`
}

// SignUp handles HTTP POST requests to register a new user. On success a
// verification code is sent to the user's WhatsApp number.
func (h *Handler) SignUp(c *ginext.Context) {
	var req SignUpRequest

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

	id, err := h.service.Register(c.Request.Context(), h.cfg.Retry, authsvc.RegisterParams{
		Username:       req.Username,
		Email:          req.Email,
		WhatsAppNumber: req.WhatsAppNumber,
		Password:       req.Password,
	})
	if err != nil {
		if errors.Is(err, authsvc.ErrUserAlreadyExists) {
			zlog.Logger.Warn().Str("email", req.Email).Msg("user already exists")
			respond.Fail(c.Writer, http.StatusBadRequest, authsvc.ErrUserAlreadyExists)
			return
		}

		zlog.Logger.Error().Err(err).Str("email", req.Email).Msg("failed to register user")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message": "OTP sent successfully",
		"userId":  id,
	})
}

// VerifyOTPRequest represents the JSON body of a verification request.
type VerifyOTPRequest struct {
	WhatsAppNumber string `json:"whatsapp_number" validate:"required"`
	OTP            string `json:"otp" validate:"required"`
}

// VerifyOTP handles HTTP POST requests to confirm the code sent during
// signup. On success the profile is activated and a token is returned.
func (h *Handler) VerifyOTP(c *ginext.Context) {
	var req VerifyOTPRequest

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

	profile, token, err := h.service.VerifyOTP(c.Request.Context(), h.cfg.Retry, req.WhatsAppNumber, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidOTP), errors.Is(err, authsvc.ErrOTPExpired):
			zlog.Logger.Warn().Err(err).Str("number", req.WhatsAppNumber).Msg("otp verification failed")
			respond.Fail(c.Writer, http.StatusBadRequest, err)
		case errors.Is(err, users.ErrProfileNotFound):
			respond.Fail(c.Writer, http.StatusBadRequest, authsvc.ErrUserNotFound)
		default:
			zlog.Logger.Error().Err(err).Str("number", req.WhatsAppNumber).Msg("failed to verify otp")
			respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		}
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message":     "User verified and registered successfully",
		"userProfile": profile,
		"token":       token,
	})
}

// ResendOTPRequest represents the JSON body of a resend request.
type ResendOTPRequest struct {
	WhatsAppNumber string `json:"whatsapp_number" validate:"required"`
}

// ResendOTP handles HTTP POST requests to send a fresh verification code.
func (h *Handler) ResendOTP(c *ginext.Context) {
	var req ResendOTPRequest

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

	if err := h.service.ResendOTP(c.Request.Context(), h.cfg.Retry, req.WhatsAppNumber); err != nil {
		if errors.Is(err, users.ErrProfileNotFound) {
			respond.Fail(c.Writer, http.StatusBadRequest, authsvc.ErrUserNotFound)
			return
		}

		zlog.Logger.Error().Err(err).Str("number", req.WhatsAppNumber).Msg("failed to resend otp")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{"message": "OTP resent successfully"})
}

// LoginRequest represents the JSON body of a login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles HTTP POST requests to authenticate with email and
// password.
func (h *Handler) Login(c *ginext.Context) {
	var req LoginRequest

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

	profile, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrProfileNotFound) || errors.Is(err, authsvc.ErrUserPasswordMismatch) {
			zlog.Logger.Warn().Str("email", req.Email).Msg("invalid credentials")
			respond.Fail(c.Writer, http.StatusUnauthorized, authsvc.ErrUserPasswordMismatch)
			return
		}

		zlog.Logger.Error().Err(err).Str("email", req.Email).Msg("failed to login")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"message": "The user has been logged in",
		"data": gin.H{
			"token": token,
			"user":  profile,
		},
	})
}

// Logout handles HTTP POST requests to sign out. Access tokens are
// stateless, so this only acknowledges the client discarding its token.
func (h *Handler) Logout(c *ginext.Context) {
	respond.JSON(c.Writer, http.StatusOK, gin.H{"message": "The user has been signed out"})
}
