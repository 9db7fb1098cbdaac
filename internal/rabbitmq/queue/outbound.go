package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

const (
	ExchangeName   = "assistant-exchange"
	MainQueueName  = "assistant-outbound"
	RetryQueueName = "assistant-outbound-retry"
	DLQName        = "assistant-outbound-dlq"
	RoutingKey     = "outbound"
)

// OutboundMessage is one WhatsApp text message queued for delivery.
type OutboundMessage struct {
	ID   uuid.UUID `json:"id"`
	To   string    `json:"to"`   // recipient WhatsApp number
	Body string    `json:"body"` // rendered message text
}

// OutboundQueue wraps the publisher and consumer for the outbound
// delivery topology: a durable main queue dead-lettering into the DLQ,
// and a retry queue that feeds messages back after a TTL.
type OutboundQueue struct {
	Publisher *rabbitmq.Publisher
	Consumer  *rabbitmq.Consumer
}

// NewOutboundQueue declares the outbound exchange and queues on the
// given channel and returns a queue ready for publishing and consuming.
func NewOutboundQueue(ch *rabbitmq.Channel) (*OutboundQueue, error) {
	exchange := rabbitmq.NewExchange(ExchangeName, "direct")
	if err := exchange.BindToChannel(ch); err != nil {
		return nil, fmt.Errorf("failed to bind to exchange: %w", err)
	}

	qm := rabbitmq.NewQueueManager(ch)

	_, err := qm.DeclareQueue(DLQName, rabbitmq.QueueConfig{Durable: true})
	if err != nil {
		return nil, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	retryArgs := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": MainQueueName,
		"x-message-ttl":             int32(5000),
	}

	_, err = qm.DeclareQueue(RetryQueueName, rabbitmq.QueueConfig{
		Durable: true,
		Args:    retryArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare retry queue: %w", err)
	}

	mainArgs := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DLQName,
	}

	mainQ, err := qm.DeclareQueue(MainQueueName, rabbitmq.QueueConfig{
		Durable: true,
		Args:    mainArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to declare main queue: %w", err)
	}

	if err := ch.QueueBind(mainQ.Name, RoutingKey, exchange.Name(), false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind the exchange to the main queue: %w", err)
	}

	pub := rabbitmq.NewPublisher(ch, exchange.Name())
	cons := rabbitmq.NewConsumer(ch, rabbitmq.NewConsumerConfig(mainQ.Name))

	return &OutboundQueue{Publisher: pub, Consumer: cons}, nil
}

// Publish enqueues an outbound message with the given retry strategy.
func (q *OutboundQueue) Publish(msg OutboundMessage, strategy retry.Strategy) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.Publisher.PublishWithRetry(body, RoutingKey, "application/json", strategy)
}

// Consume decodes messages from the main queue into out until the
// context is cancelled.
func (q *OutboundQueue) Consume(ctx context.Context, out chan<- OutboundMessage, strategy retry.Strategy) error {
	msgChan := make(chan []byte)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgChan:
				if !ok {
					return
				}

				var msg OutboundMessage
				if err := json.Unmarshal(m, &msg); err != nil {
					zlog.Logger.Error().Err(err).Msg("failed to unmarshal message")
					continue
				}

				out <- msg
			}
		}
	}()

	return q.Consumer.ConsumeWithRetry(msgChan, strategy)
}
