package worker

import (
	"context"
	"sync"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/temirbekov/assistant-backend/internal/rabbitmq/queue"
)

//go:generate mockgen -source=sender.go -destination=../mocks/worker/sender_mock.go -package=mocks

type outboundConsumer interface {
	Consume(ctx context.Context, out chan<- queue.OutboundMessage, strategy retry.Strategy) error
}

type messageHandler interface {
	HandleMessage(ctx context.Context, msg queue.OutboundMessage, strategy retry.Strategy)
}

// Sender drains the outbound queue with a pool of workers.
type Sender struct {
	queue   outboundConsumer
	handler messageHandler
}

// NewSender creates a new outbound sender pool.
func NewSender(q outboundConsumer, h messageHandler) *Sender {
	return &Sender{
		queue:   q,
		handler: h,
	}
}

// Run consumes outbound messages until the context is cancelled,
// handling them on workerCount goroutines.
func (s *Sender) Run(ctx context.Context, strategy retry.Strategy, workerCount int) {
	var wg sync.WaitGroup
	msgChan := make(chan queue.OutboundMessage, workerCount*10)

	go func() {
		if err := s.queue.Consume(ctx, msgChan, strategy); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to consume messages")
		}
	}()

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func(id int) {
			defer wg.Done()

			zlog.Logger.Printf("worker-%d started", id)

			for {
				select {
				case <-ctx.Done():
					zlog.Logger.Printf("worker-%d shutting down", id)
					return
				case msg, ok := <-msgChan:
					if !ok {
						zlog.Logger.Printf("worker-%d channel closed, shutting down", id)
						return
					}

					s.handler.HandleMessage(ctx, msg, strategy)
				}
			}
		}(i)
	}

	<-ctx.Done()
	wg.Wait()
	zlog.Logger.Print("sender stopped")
}
