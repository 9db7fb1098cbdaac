package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	"github.com/temirbekov/assistant-backend/internal/config"
	mocks "github.com/temirbekov/assistant-backend/internal/mocks/service/auth"
	"github.com/temirbekov/assistant-backend/internal/model"
)

func setupService(t *testing.T) (*Service, *mocks.MockuserRepository, *mocks.Mockcache, *mocks.MockotpPublisher) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockuserRepository(ctrl)
	cache := mocks.NewMockcache(ctrl)
	publisher := mocks.NewMockotpPublisher(ctrl)

	cfg := config.Auth{
		JWTSecret:      "test-secret",
		AccessTokenTTL: time.Hour,
		OTPTTL:         5 * time.Minute,
	}

	return NewService(users, cache, publisher, cfg), users, cache, publisher
}

func TestRegister_Success(t *testing.T) {
	svc, users, cache, publisher := setupService(t)

	id := uuid.New()
	params := RegisterParams{
		Username:       "askar",
		Email:          "askar@example.com",
		WhatsAppNumber: "+77001234567",
		Password:       "secret123",
	}
	strategy := retry.Strategy{Attempts: 1}

	users.EXPECT().Exists(gomock.Any(), params.Email, params.WhatsAppNumber).Return(false, nil)
	users.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p model.UserProfile) (uuid.UUID, error) {
			assert.Equal(t, params.Username, p.Username)
			assert.Equal(t, "free", p.CurrentPlan)
			assert.Equal(t, "pending", p.AccountStatus)

			match, err := argon2id.ComparePasswordAndHash(params.Password, p.PasswordHash)
			require.NoError(t, err)
			assert.True(t, match)

			return id, nil
		})
	cache.EXPECT().SetWithRetry(gomock.Any(), strategy, "otp:"+params.WhatsAppNumber, gomock.Any()).Return(nil)
	publisher.EXPECT().Publish(gomock.Any(), strategy).Return(nil)

	gotID, err := svc.Register(context.Background(), strategy, params)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
}

func TestRegister_AlreadyExists(t *testing.T) {
	svc, users, _, _ := setupService(t)

	users.EXPECT().Exists(gomock.Any(), "a@b.c", "+77001234567").Return(true, nil)

	_, err := svc.Register(context.Background(), retry.Strategy{}, RegisterParams{
		Email:          "a@b.c",
		WhatsAppNumber: "+77001234567",
		Password:       "secret123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestVerifyOTP_Success(t *testing.T) {
	svc, users, cache, _ := setupService(t)

	number := "+77001234567"
	code := "123456"
	strategy := retry.Strategy{Attempts: 1}
	profile := model.UserProfile{ID: uuid.New(), WhatsAppNumber: number, AccountStatus: "pending"}

	stored := fmt.Sprintf("%s:%d", code, time.Now().Add(time.Minute).Unix())
	cache.EXPECT().GetWithRetry(gomock.Any(), strategy, "otp:"+number).Return(stored, nil)
	users.EXPECT().GetByWhatsApp(gomock.Any(), number).Return(profile, nil)
	users.EXPECT().SetAccountStatus(gomock.Any(), profile.ID, "active").Return(nil)
	cache.EXPECT().SetWithRetry(gomock.Any(), strategy, "otp:"+number, "used:0").Return(nil)

	got, token, err := svc.VerifyOTP(context.Background(), strategy, number, code)
	require.NoError(t, err)
	assert.Equal(t, "active", got.AccountStatus)
	assert.NotEmpty(t, token)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, id)
}

func TestVerifyOTP_Expired(t *testing.T) {
	svc, _, cache, _ := setupService(t)

	number := "+77001234567"
	strategy := retry.Strategy{Attempts: 1}

	stored := fmt.Sprintf("123456:%d", time.Now().Add(-time.Minute).Unix())
	cache.EXPECT().GetWithRetry(gomock.Any(), strategy, "otp:"+number).Return(stored, nil)

	_, _, err := svc.VerifyOTP(context.Background(), strategy, number, "123456")
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	svc, _, cache, _ := setupService(t)

	number := "+77001234567"
	strategy := retry.Strategy{Attempts: 1}

	stored := fmt.Sprintf("123456:%d", time.Now().Add(time.Minute).Unix())
	cache.EXPECT().GetWithRetry(gomock.Any(), strategy, "otp:"+number).Return(stored, nil)

	_, _, err := svc.VerifyOTP(context.Background(), strategy, number, "654321")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestLogin_Success(t *testing.T) {
	svc, users, _, _ := setupService(t)

	password := "secret123"
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	require.NoError(t, err)

	profile := model.UserProfile{ID: uuid.New(), Email: "a@b.c", PasswordHash: hash}
	users.EXPECT().GetByEmail(gomock.Any(), profile.Email).Return(profile, nil)

	got, token, err := svc.Login(context.Background(), profile.Email, password)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, id)
}

func TestLogin_PasswordMismatch(t *testing.T) {
	svc, users, _, _ := setupService(t)

	hash, err := argon2id.CreateHash("correct-password", argon2id.DefaultParams)
	require.NoError(t, err)

	profile := model.UserProfile{ID: uuid.New(), Email: "a@b.c", PasswordHash: hash}
	users.EXPECT().GetByEmail(gomock.Any(), profile.Email).Return(profile, nil)

	_, _, err = svc.Login(context.Background(), profile.Email, "wrong-password")
	assert.ErrorIs(t, err, ErrUserPasswordMismatch)
}

func TestParseToken_Invalid(t *testing.T) {
	svc, _, _, _ := setupService(t)

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
