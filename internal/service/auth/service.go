// Package auth implements signup with WhatsApp OTP verification,
// password login, and JWT access token issuing.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/config"
	"github.com/temirbekov/assistant-backend/internal/model"
	"github.com/temirbekov/assistant-backend/internal/rabbitmq/queue"
)

var (
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserPasswordMismatch = errors.New("invalid credentials")
	ErrInvalidOTP           = errors.New("invalid verification code")
	ErrOTPExpired           = errors.New("verification code expired")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/auth/mock.go -package=mocks

type userRepository interface {
	Create(ctx context.Context, p model.UserProfile) (uuid.UUID, error)
	GetByEmail(ctx context.Context, email string) (model.UserProfile, error)
	GetByWhatsApp(ctx context.Context, number string) (model.UserProfile, error)
	Exists(ctx context.Context, email, number string) (bool, error)
	SetAccountStatus(ctx context.Context, id uuid.UUID, status string) error
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

type otpPublisher interface {
	Publish(msg queue.OutboundMessage, strategy retry.Strategy) error
}

// Service implements the identity flows.
type Service struct {
	users userRepository
	cache cache
	queue otpPublisher
	cfg   config.Auth
}

// NewService creates a new auth service.
func NewService(users userRepository, cache cache, queue otpPublisher, cfg config.Auth) *Service {
	return &Service{users: users, cache: cache, queue: queue, cfg: cfg}
}

// RegisterParams carries the signup fields.
type RegisterParams struct {
	Username       string
	Email          string
	WhatsAppNumber string
	Password       string
}

// Register creates a pending profile with a hashed password and sends a
// verification code to the user's WhatsApp number.
func (s *Service) Register(ctx context.Context, strategy retry.Strategy, params RegisterParams) (uuid.UUID, error) {
	exists, err := s.users.Exists(ctx, params.Email, params.WhatsAppNumber)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check user existence: %w", err)
	}

	if exists {
		return uuid.Nil, ErrUserAlreadyExists
	}

	hash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.Create(ctx, model.UserProfile{
		Username:       params.Username,
		Email:          params.Email,
		WhatsAppNumber: params.WhatsAppNumber,
		PasswordHash:   hash,
		CurrentPlan:    "free",
		AccountStatus:  "pending",
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create profile: %w", err)
	}

	if err := s.sendOTP(ctx, strategy, params.WhatsAppNumber); err != nil {
		return uuid.Nil, fmt.Errorf("send verification code: %w", err)
	}

	return id, nil
}

// VerifyOTP checks the code sent to the WhatsApp number, activates the
// profile, and returns it together with a fresh access token.
func (s *Service) VerifyOTP(ctx context.Context, strategy retry.Strategy, number, code string) (model.UserProfile, string, error) {
	stored, err := s.cache.GetWithRetry(ctx, strategy, otpKey(number))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.UserProfile{}, "", ErrOTPExpired
		}

		return model.UserProfile{}, "", fmt.Errorf("get verification code: %w", err)
	}

	storedCode, expiresAt, err := parseOTP(stored)
	if err != nil {
		return model.UserProfile{}, "", fmt.Errorf("parse verification code: %w", err)
	}

	if time.Now().After(expiresAt) {
		return model.UserProfile{}, "", ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(storedCode), []byte(code)) != 1 {
		return model.UserProfile{}, "", ErrInvalidOTP
	}

	profile, err := s.users.GetByWhatsApp(ctx, number)
	if err != nil {
		return model.UserProfile{}, "", fmt.Errorf("get profile: %w", err)
	}

	// Idempotent: re-verifying an already active profile is fine.
	if err := s.users.SetAccountStatus(ctx, profile.ID, "active"); err != nil {
		return model.UserProfile{}, "", fmt.Errorf("activate profile: %w", err)
	}
	profile.AccountStatus = "active"

	// Burn the code so it cannot be replayed.
	if err := s.cache.SetWithRetry(ctx, strategy, otpKey(number), "used:0"); err != nil {
		zlog.Logger.Error().Err(err).Str("number", number).Msg("failed to invalidate verification code")
	}

	token, err := s.issueToken(profile.ID)
	if err != nil {
		return model.UserProfile{}, "", err
	}

	return profile, token, nil
}

// ResendOTP sends a new verification code to an already registered
// WhatsApp number.
func (s *Service) ResendOTP(ctx context.Context, strategy retry.Strategy, number string) error {
	if _, err := s.users.GetByWhatsApp(ctx, number); err != nil {
		return fmt.Errorf("get profile: %w", err)
	}

	return s.sendOTP(ctx, strategy, number)
}

// Login checks the user's password and returns the profile with a fresh
// access token.
func (s *Service) Login(ctx context.Context, email, password string) (model.UserProfile, string, error) {
	profile, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return model.UserProfile{}, "", fmt.Errorf("get profile: %w", err)
	}

	match, err := argon2id.ComparePasswordAndHash(password, profile.PasswordHash)
	if err != nil {
		return model.UserProfile{}, "", fmt.Errorf("compare password: %w", err)
	}

	if !match {
		return model.UserProfile{}, "", ErrUserPasswordMismatch
	}

	token, err := s.issueToken(profile.ID)
	if err != nil {
		return model.UserProfile{}, "", err
	}

	return profile, token, nil
}

// ParseToken validates an access token and returns the user ID it was
// issued for.
func (s *Service) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return id, nil
}

func (s *Service) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

func (s *Service) sendOTP(ctx context.Context, strategy retry.Strategy, number string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	expiresAt := time.Now().Add(s.cfg.OTPTTL)
	value := fmt.Sprintf("%s:%d", code, expiresAt.Unix())

	if err := s.cache.SetWithRetry(ctx, strategy, otpKey(number), value); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	msg := queue.OutboundMessage{
		ID:   uuid.New(),
		To:   number,
		Body: fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.cfg.OTPTTL.Minutes())),
	}

	if err := s.queue.Publish(msg, strategy); err != nil {
		return fmt.Errorf("publish verification message: %w", err)
	}

	return nil
}

func otpKey(number string) string {
	return "otp:" + number
}

// parseOTP splits the cached "code:unixExpiry" value.
func parseOTP(value string) (string, time.Time, error) {
	idx := strings.LastIndex(value, ":")
	if idx < 0 {
		return "", time.Time{}, fmt.Errorf("malformed code value")
	}

	unix, err := strconv.ParseInt(value[idx+1:], 10, 64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("malformed code expiry: %w", err)
	}

	return value[:idx], time.Unix(unix, 0), nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
