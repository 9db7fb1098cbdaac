package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/retry"

	"github.com/temirbekov/assistant-backend/internal/config"
	mocks "github.com/temirbekov/assistant-backend/internal/mocks/api/handlers/auth"
	"github.com/temirbekov/assistant-backend/internal/model"
	authsvc "github.com/temirbekov/assistant-backend/internal/service/auth"
)

func setupHandler(t *testing.T) (*Handler, *mocks.MockauthService, *config.Config) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockauthService(ctrl)
	cfg := &config.Config{Retry: retry.Strategy{Attempts: 1}}
	validate := validator.New()
	handler := NewHandler(mockService, validate, cfg)
	return handler, mockService, cfg
}

func TestHandler_SignUp_Success(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)

	reqBody := SignUpRequest{
		Username:       "askar",
		Email:          "askar@example.com",
		WhatsAppNumber: "+77001234567",
		Password:       "secret123",
	}

	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	id := uuid.New()
	mockService.EXPECT().
		Register(gomock.Any(), cfg.Retry, authsvc.RegisterParams{
			Username:       reqBody.Username,
			Email:          reqBody.Email,
			WhatsAppNumber: reqBody.WhatsAppNumber,
			Password:       reqBody.Password,
		}).
		Return(id, nil)

	handler.SignUp(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), "OTP sent successfully")
}

func TestHandler_SignUp_Duplicate(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)

	reqBody := SignUpRequest{
		Username:       "askar",
		Email:          "askar@example.com",
		WhatsAppNumber: "+77001234567",
		Password:       "secret123",
	}

	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	mockService.EXPECT().
		Register(gomock.Any(), cfg.Retry, gomock.Any()).
		Return(uuid.Nil, authsvc.ErrUserAlreadyExists)

	handler.SignUp(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_SignUp_InvalidBody(t *testing.T) {
	handler, _, _ := setupHandler(t)

	reqBody := SignUpRequest{Username: "askar"} // missing email, number, password
	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.SignUp(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_VerifyOTP_Success(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)

	reqBody := VerifyOTPRequest{WhatsAppNumber: "+77001234567", OTP: "123456"}
	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/verifyOtp", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	profile := model.UserProfile{ID: uuid.New(), WhatsAppNumber: reqBody.WhatsAppNumber, AccountStatus: "active"}
	mockService.EXPECT().
		VerifyOTP(gomock.Any(), cfg.Retry, reqBody.WhatsAppNumber, reqBody.OTP).
		Return(profile, "token-value", nil)

	handler.VerifyOTP(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), "token-value")
}

func TestHandler_VerifyOTP_Invalid(t *testing.T) {
	handler, mockService, cfg := setupHandler(t)

	reqBody := VerifyOTPRequest{WhatsAppNumber: "+77001234567", OTP: "000000"}
	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/verifyOtp", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	mockService.EXPECT().
		VerifyOTP(gomock.Any(), cfg.Retry, reqBody.WhatsAppNumber, reqBody.OTP).
		Return(model.UserProfile{}, "", authsvc.ErrInvalidOTP)

	handler.VerifyOTP(c)

	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandler_Login_Success(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	reqBody := LoginRequest{Email: "askar@example.com", Password: "secret123"}
	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	profile := model.UserProfile{ID: uuid.New(), Email: reqBody.Email}
	mockService.EXPECT().
		Login(gomock.Any(), reqBody.Email, reqBody.Password).
		Return(profile, "token-value", nil)

	handler.Login(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	assert.Contains(t, w.Body.String(), "The user has been logged in")
}

func TestHandler_Login_InvalidCredentials(t *testing.T) {
	handler, mockService, _ := setupHandler(t)

	reqBody := LoginRequest{Email: "askar@example.com", Password: "wrong"}
	bodyBytes, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	mockService.EXPECT().
		Login(gomock.Any(), reqBody.Email, reqBody.Password).
		Return(model.UserProfile{}, "", authsvc.ErrUserPasswordMismatch)

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)
}
