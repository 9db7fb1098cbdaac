// Package user implements profile lookups, plan management, and the
// all-content aggregation.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/model"
)

var ErrInvalidPlan = errors.New("invalid plan selected")

// planDurations maps plan names to their validity in days.
var planDurations = map[string]int{
	"free":     7,
	"standard": 30,
	"pro":      30,
}

//go:generate mockgen -source=service.go -destination=../../mocks/service/user/mock.go -package=mocks

type userRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.UserProfile, error)
	GetByWhatsApp(ctx context.Context, number string) (model.UserProfile, error)
	ListActive(ctx context.Context) ([]model.UserProfile, error)
	ActivatePlan(ctx context.Context, id uuid.UUID, plan string, startedAt, expiresAt time.Time) (model.UserProfile, error)
}

type recordsRepository interface {
	ListByOwner(ctx context.Context, category model.Category, ownerID uuid.UUID) ([]model.Record, error)
}

type messagesRepository interface {
	ListMessagesByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Message, error)
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

// Service implements profile and plan operations.
type Service struct {
	users    userRepository
	records  recordsRepository
	messages messagesRepository
	cache    cache
}

// NewService creates a new user service.
func NewService(users userRepository, records recordsRepository, messages messagesRepository, cache cache) *Service {
	return &Service{users: users, records: records, messages: messages, cache: cache}
}

// GetProfile retrieves a profile by its ID.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (model.UserProfile, error) {
	profile, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// GetByWhatsApp resolves a WhatsApp number to a profile. The automation
// calls this on every inbound message, so lookups go through a
// cache-aside on Redis.
func (s *Service) GetByWhatsApp(ctx context.Context, strategy retry.Strategy, number string) (model.UserProfile, error) {
	cached, err := s.cache.GetWithRetry(ctx, strategy, profileKey(number))
	if err != nil && !errors.Is(err, redis.Nil) {
		zlog.Logger.Error().Err(err).Str("number", number).Msg("failed to get profile from cache")
	}

	if err == nil {
		var profile model.UserProfile
		if err := json.Unmarshal([]byte(cached), &profile); err == nil {
			return profile, nil
		}

		zlog.Logger.Warn().Str("number", number).Msg("malformed cached profile, falling back to store")
	}

	profile, err := s.users.GetByWhatsApp(ctx, number)
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("get profile by whatsapp: %w", err)
	}

	if data, err := json.Marshal(profile); err == nil {
		if err := s.cache.SetWithRetry(ctx, strategy, profileKey(number), string(data)); err != nil {
			zlog.Logger.Error().Err(err).Str("number", number).Msg("failed to cache profile")
		}
	}

	return profile, nil
}

// ListActive retrieves all active profiles.
func (s *Service) ListActive(ctx context.Context) ([]model.UserProfile, error) {
	profiles, err := s.users.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active profiles: %w", err)
	}

	return profiles, nil
}

// ActivatePlan activates the given plan for a user for the plan's
// standard duration.
func (s *Service) ActivatePlan(ctx context.Context, userID uuid.UUID, plan string) (model.UserProfile, error) {
	days, ok := planDurations[plan]
	if !ok {
		return model.UserProfile{}, ErrInvalidPlan
	}

	now := time.Now().UTC()
	profile, err := s.users.ActivatePlan(ctx, userID, plan, now, now.AddDate(0, 0, days))
	if err != nil {
		return model.UserProfile{}, fmt.Errorf("activate plan: %w", err)
	}

	return profile, nil
}

// CheckActivePlan reports whether the user's current plan is still
// valid. Free accounts run on the trial window, paid ones on the plan
// window.
func (s *Service) CheckActivePlan(ctx context.Context, userID uuid.UUID) (bool, string, error) {
	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, "", fmt.Errorf("get profile: %w", err)
	}

	now := time.Now()
	var active bool

	if profile.CurrentPlan == "free" {
		active = profile.TrialExpiresAt != nil && profile.TrialExpiresAt.After(now)
	} else {
		active = profile.PlanExpiresAt != nil && profile.PlanExpiresAt.After(now)
	}

	return active, profile.CurrentPlan, nil
}

// AllContent aggregates everything a user owns across the content
// categories. Unlike the expiry pass, a single failed category fails
// the whole call: the endpoint promises a complete snapshot.
func (s *Service) AllContent(ctx context.Context, userID uuid.UUID) (model.UserContent, error) {
	var content model.UserContent
	var err error

	if content.Projects, err = s.records.ListByOwner(ctx, model.CategoryProjects, userID); err != nil {
		return model.UserContent{}, fmt.Errorf("list projects: %w", err)
	}

	if content.Tasks, err = s.records.ListByOwner(ctx, model.CategoryTasks, userID); err != nil {
		return model.UserContent{}, fmt.Errorf("list tasks: %w", err)
	}

	if content.Payments, err = s.records.ListByOwner(ctx, model.CategoryPayments, userID); err != nil {
		return model.UserContent{}, fmt.Errorf("list payments: %w", err)
	}

	if content.Reminders, err = s.records.ListByOwner(ctx, model.CategoryReminders, userID); err != nil {
		return model.UserContent{}, fmt.Errorf("list reminders: %w", err)
	}

	if content.Messages, err = s.messages.ListMessagesByOwner(ctx, userID); err != nil {
		return model.UserContent{}, fmt.Errorf("list messages: %w", err)
	}

	return content, nil
}

func profileKey(number string) string {
	return "profile:wa:" + number
}
