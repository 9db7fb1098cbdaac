package due

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirbekov/assistant-backend/internal/config"
	"github.com/temirbekov/assistant-backend/internal/expiry"
	mocks "github.com/temirbekov/assistant-backend/internal/mocks/api/handlers/due"
	"github.com/temirbekov/assistant-backend/internal/model"
)

func setupHandler(t *testing.T) (*Handler, *mocks.MockdueAggregator) {
	ctrl := gomock.NewController(t)
	mockAggregator := mocks.NewMockdueAggregator(ctrl)
	cfg := &config.Config{}
	cfg.Expiry.Window = 24 * time.Hour
	handler := NewHandler(mockAggregator, cfg)
	return handler, mockAggregator
}

func TestHandler_GetDueReminders_Success(t *testing.T) {
	handler, mockAggregator := setupHandler(t)

	expiresAt := time.Now()
	report := expiry.DueReport{
		CheckedAt: time.Now(),
		Categories: map[model.Category][]model.Record{
			model.CategoryTasks: {
				{ID: uuid.New(), OwnerID: uuid.New(), Title: "pay rent", ExpiresAt: &expiresAt, Category: model.CategoryTasks},
			},
			model.CategoryReminders: {},
		},
	}

	mockAggregator.EXPECT().
		DueNow(gomock.Any(), gomock.Any()).
		Return(report, nil)

	req := httptest.NewRequest(http.MethodGet, "/getduereminders", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.GetDueReminders(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	var body map[string][]model.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body["user_tasks"], 1)
	assert.Empty(t, body["user_reminders"])
}

func TestHandler_GetDueReminders_AllCategoriesFailed(t *testing.T) {
	handler, mockAggregator := setupHandler(t)

	mockAggregator.EXPECT().
		DueNow(gomock.Any(), gomock.Any()).
		Return(expiry.DueReport{}, expiry.ErrAllCategoriesFailed)

	req := httptest.NewRequest(http.MethodGet, "/getduereminders", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.GetDueReminders(c)

	assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode)
}

func TestHandler_Get24hItems_Success(t *testing.T) {
	handler, mockAggregator := setupHandler(t)

	owner := uuid.New()
	now := time.Now()
	report := expiry.WindowReport{
		Window: expiry.Window{From: now, To: now.Add(24 * time.Hour)},
		Users: map[string][]model.Record{
			owner.String(): {
				{ID: uuid.New(), OwnerID: owner, Title: "electricity bill", Category: model.CategoryPayments},
			},
		},
	}

	mockAggregator.EXPECT().
		DueWithinWindow(gomock.Any(), gomock.Any(), 24*time.Hour).
		Return(report, nil)

	req := httptest.NewRequest(http.MethodGet, "/get24hitem", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Get24hItems(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	var body struct {
		Status string                    `json:"status"`
		Users  map[string][]model.Record `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Len(t, body.Users[owner.String()], 1)
}

func TestHandler_DeleteDueRows_Success(t *testing.T) {
	handler, mockAggregator := setupHandler(t)

	report := expiry.SweepReport{
		SweptAt: time.Now(),
		Results: []expiry.SweepResult{
			{Category: model.CategoryTasks, Deleted: 2},
			{Category: model.CategoryTempMessages, Deleted: 5},
		},
	}

	mockAggregator.EXPECT().
		SweepExpired(gomock.Any(), gomock.Any()).
		Return(report, nil)

	req := httptest.NewRequest(http.MethodDelete, "/deleteduerows", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.DeleteDueRows(c)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)

	var body struct {
		Status  string               `json:"status"`
		Message string               `json:"message"`
		Report  []expiry.SweepResult `json:"report"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "All due rows deleted", body.Message)
	assert.Len(t, body.Report, 2)
}

func TestHandler_DeleteDueRows_AllCategoriesFailed(t *testing.T) {
	handler, mockAggregator := setupHandler(t)

	mockAggregator.EXPECT().
		SweepExpired(gomock.Any(), gomock.Any()).
		Return(expiry.SweepReport{}, errors.New("all categories failed"))

	req := httptest.NewRequest(http.MethodDelete, "/deleteduerows", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.DeleteDueRows(c)

	assert.Equal(t, http.StatusInternalServerError, w.Result().StatusCode)
}
