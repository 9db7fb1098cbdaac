package outbound

import (
	"context"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/rabbitmq/queue"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/rabbitmq/handlers/outbound/mock.go -package=mocks
type sender interface {
	Send(to, body string) error
}

// Handler delivers one outbound WhatsApp message per queue message.
type Handler struct {
	sender sender
}

// NewHandler creates a new outbound message handler.
func NewHandler(s sender) *Handler {
	return &Handler{
		sender: s,
	}
}

// HandleMessage sends the message with retries. An exhausted message is
// only logged: the queue topology dead-letters it.
func (h *Handler) HandleMessage(ctx context.Context, msg queue.OutboundMessage, strategy retry.Strategy) {
	zlog.Logger.Info().Msgf("Handle Message: Got outbound message %s for %s", msg.ID, msg.To)

	err := retry.Do(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return h.sender.Send(msg.To, msg.Body)
		}
	}, strategy)

	if err != nil {
		zlog.Logger.Printf("Handle Message: Message %s failed, moving to DLQ: %v", msg.ID, err)
		return
	}

	zlog.Logger.Info().Msgf("Handle Message: Message %s sent successfully", msg.ID)
}
