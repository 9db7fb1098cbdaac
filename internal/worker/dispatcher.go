package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/expiry"
	"github.com/temirbekov/assistant-backend/internal/model"
	"github.com/temirbekov/assistant-backend/internal/rabbitmq/queue"
)

//go:generate mockgen -source=dispatcher.go -destination=../mocks/worker/dispatcher_mock.go -package=mocks

type dueLister interface {
	DueWithinWindow(ctx context.Context, now time.Time, window time.Duration) (expiry.WindowReport, error)
}

type ownerResolver interface {
	GetProfile(ctx context.Context, id uuid.UUID) (model.UserProfile, error)
}

type digestPublisher interface {
	Publish(msg queue.OutboundMessage, strategy retry.Strategy) error
}

// Dispatcher periodically collects records coming due within the digest
// window and publishes one WhatsApp digest per owner.
type Dispatcher struct {
	due      dueLister
	users    ownerResolver
	queue    digestPublisher
	window   time.Duration
	interval time.Duration
}

// NewDispatcher creates a new digest dispatcher.
func NewDispatcher(due dueLister, users ownerResolver, q digestPublisher, window, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		due:      due,
		users:    users,
		queue:    q,
		window:   window,
		interval: interval,
	}
}

// Run dispatches digests every interval until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context, strategy retry.Strategy) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zlog.Logger.Print("dispatcher stopped")
			return
		case <-ticker.C:
			d.dispatch(ctx, strategy)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, strategy retry.Strategy) {
	report, err := d.due.DueWithinWindow(ctx, time.Now().UTC(), d.window)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to collect due records for digest")
		return
	}

	for owner, records := range report.Users {
		ownerID, err := uuid.Parse(owner)
		if err != nil {
			zlog.Logger.Error().Err(err).Str("owner", owner).Msg("malformed owner id in window report")
			continue
		}

		profile, err := d.users.GetProfile(ctx, ownerID)
		if err != nil {
			zlog.Logger.Error().Err(err).Str("owner", owner).Msg("failed to resolve digest recipient")
			continue
		}

		msg := queue.OutboundMessage{
			ID:   uuid.New(),
			To:   profile.WhatsAppNumber,
			Body: renderDigest(records),
		}

		if err := d.queue.Publish(msg, strategy); err != nil {
			zlog.Logger.Error().Err(err).Str("owner", owner).Msg("failed to publish digest")
			continue
		}

		zlog.Logger.Info().Str("owner", owner).Int("items", len(records)).Msg("digest dispatched")
	}
}

// renderDigest formats an owner's upcoming items as one message body.
func renderDigest(records []model.Record) string {
	var b strings.Builder
	b.WriteString("Coming up in the next 24 hours:\n")

	for _, r := range records {
		b.WriteString(fmt.Sprintf("- [%s] %s", categoryLabel(r.Category), r.Title))
		if r.ExpiresAt != nil {
			b.WriteString(fmt.Sprintf(" (due %s)", r.ExpiresAt.Format("Jan 2 15:04")))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func categoryLabel(c model.Category) string {
	switch c {
	case model.CategoryTasks:
		return "task"
	case model.CategoryProjects:
		return "project"
	case model.CategoryPayments:
		return "payment"
	case model.CategoryReminders:
		return "reminder"
	case model.CategoryConfirmations:
		return "confirmation"
	case model.CategoryTempMessages:
		return "note"
	default:
		return string(c)
	}
}
