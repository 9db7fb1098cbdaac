package outbound

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/temirbekov/assistant-backend/internal/mocks/rabbitmq/handlers/outbound"
	"github.com/temirbekov/assistant-backend/internal/rabbitmq/queue"
)

func TestHandleMessage_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSender := mocks.NewMocksender(ctrl)
	h := NewHandler(mockSender)

	msg := queue.OutboundMessage{
		ID:   uuid.New(),
		To:   "+77001234567",
		Body: "hello",
	}
	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}

	mockSender.EXPECT().Send(msg.To, msg.Body).Return(nil)

	h.HandleMessage(context.Background(), msg, strategy)
}

func TestHandleMessage_RetriesBeforeGivingUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSender := mocks.NewMocksender(ctrl)
	h := NewHandler(mockSender)

	msg := queue.OutboundMessage{
		ID:   uuid.New(),
		To:   "+77001234567",
		Body: "hello",
	}
	strategy := retry.Strategy{Attempts: 3, Delay: time.Millisecond}

	mockSender.EXPECT().Send(msg.To, msg.Body).Return(errors.New("api error")).Times(3)

	h.HandleMessage(context.Background(), msg, strategy)
}

func TestHandleMessage_SucceedsOnRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSender := mocks.NewMocksender(ctrl)
	h := NewHandler(mockSender)

	msg := queue.OutboundMessage{
		ID:   uuid.New(),
		To:   "+77001234567",
		Body: "hello",
	}
	strategy := retry.Strategy{Attempts: 2, Delay: time.Millisecond}

	gomock.InOrder(
		mockSender.EXPECT().Send(msg.To, msg.Body).Return(errors.New("api error")),
		mockSender.EXPECT().Send(msg.To, msg.Body).Return(nil),
	)

	h.HandleMessage(context.Background(), msg, strategy)
}
