package due

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/api/respond"
	"github.com/temirbekov/assistant-backend/internal/config"
	"github.com/temirbekov/assistant-backend/internal/expiry"
)

// dueAggregator defines the expiry operations the Handler depends on.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/due/mock.go -package=mocks
type dueAggregator interface {
	SweepExpired(ctx context.Context, now time.Time) (expiry.SweepReport, error)
	DueNow(ctx context.Context, now time.Time) (expiry.DueReport, error)
	DueWithinWindow(ctx context.Context, now time.Time, window time.Duration) (expiry.WindowReport, error)
}

// Handler handles the HTTP endpoints the scheduler hits: listing
// already-due records, listing the upcoming window, and sweeping
// expired rows away.
type Handler struct {
	aggregator dueAggregator
	cfg        *config.Config
}

// NewHandler creates a new due Handler instance.
func NewHandler(a dueAggregator, cfg *config.Config) *Handler {
	return &Handler{aggregator: a, cfg: cfg}
}

// GetDueReminders handles HTTP GET requests for all records already due
// across every category, keyed by category.
func (h *Handler) GetDueReminders(c *ginext.Context) {
	report, err := h.aggregator.DueNow(c.Request.Context(), time.Now().UTC())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("due listing failed in every category")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("Internal Server Error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, report.Categories)
}

// Get24hItems handles HTTP GET requests for records coming due within
// the digest window, grouped by owner.
func (h *Handler) Get24hItems(c *ginext.Context) {
	window := h.cfg.Expiry.Window
	if window <= 0 {
		window = 24 * time.Hour
	}

	report, err := h.aggregator.DueWithinWindow(c.Request.Context(), time.Now().UTC(), window)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("window listing failed in every category")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("Internal Server Error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"status": "success",
		"window": report.Window,
		"users":  report.Users,
	})
}

// DeleteDueRows handles HTTP DELETE requests that purge every expired
// row in every category.
func (h *Handler) DeleteDueRows(c *ginext.Context) {
	report, err := h.aggregator.SweepExpired(c.Request.Context(), time.Now().UTC())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("sweep failed in every category")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("Internal Server Error"))
		return
	}

	respond.JSON(c.Writer, http.StatusOK, gin.H{
		"status":  "success",
		"message": "All due rows deleted",
		"report":  report.Results,
	})
}
