package worker

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/temirbekov/assistant-backend/internal/mocks/worker"
	"github.com/temirbekov/assistant-backend/internal/rabbitmq/queue"
)

func TestSender_Run_HandleMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockConsumer := mocks.NewMockoutboundConsumer(ctrl)
	mockHandler := mocks.NewMockmessageHandler(ctrl)

	s := NewSender(mockConsumer, mockHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	strategy := retry.Strategy{Attempts: 1, Delay: time.Millisecond}

	msg := queue.OutboundMessage{
		ID:   uuid.New(),
		To:   "+77001234567",
		Body: "Your verification code is 123456.",
	}

	mockConsumer.EXPECT().Consume(gomock.Any(), gomock.Any(), strategy).DoAndReturn(
		func(_ context.Context, out chan<- queue.OutboundMessage, _ retry.Strategy) error {
			out <- msg
			return nil
		})

	handled := make(chan struct{})
	mockHandler.EXPECT().HandleMessage(gomock.Any(), msg, strategy).Do(
		func(_ context.Context, _ queue.OutboundMessage, _ retry.Strategy) {
			close(handled)
		})

	go s.Run(ctx, strategy, 2)

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("message was not handled in time")
	}

	cancel()
}
