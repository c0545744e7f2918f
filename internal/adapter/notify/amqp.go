package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agent-chain-wallet/internal/core/domain"
	"agent-chain-wallet/internal/core/ports"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	defaultAMQPQueue   = "agent-chain.wallet-events"
	amqpPublishTimeout = 2 * time.Second
)

// Publisher is the part of *amqp.Channel the sink needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPSink publishes events as persistent JSON messages to a durable queue
// for downstream consumers. Publish failures are logged and dropped.
type AMQPSink struct {
	pub   Publisher
	queue string
	log   zerolog.Logger

	closeFn func() error
}

var _ ports.EventSink = (*AMQPSink)(nil)

// NewAMQPSink wraps an already declared queue.
func NewAMQPSink(pub Publisher, queue string, log zerolog.Logger) *AMQPSink {
	if queue == "" {
		queue = defaultAMQPQueue
	}
	return &AMQPSink{pub: pub, queue: queue, log: log}
}

// DialAMQP connects to the broker and declares the event queue.
func DialAMQP(url, queue string, log zerolog.Logger) (*AMQPSink, error) {
	if url == "" {
		return nil, errors.New("amqp: url is empty")
	}
	if queue == "" {
		queue = defaultAMQPQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp: open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp: declare queue %q: %w", queue, err)
	}

	s := NewAMQPSink(ch, queue, log)
	s.closeFn = func() error {
		_ = ch.Close()
		return conn.Close()
	}
	return s, nil
}

// Emit publishes the event. The caller's cancellation is ignored so a request
// that has already returned still gets its event out.
func (s *AMQPSink) Emit(ctx context.Context, ev domain.WalletEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		s.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("amqp: marshal event")
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), amqpPublishTimeout)
	defer cancel()

	err = s.pub.PublishWithContext(pubCtx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    ev.OccurredAt,
		Type:         string(ev.Kind),
		Body:         body,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("kind", string(ev.Kind)).Str("handle", ev.Handle).Msg("amqp: publish failed, event dropped")
	}
}

// Close releases the broker connection when the sink owns it.
func (s *AMQPSink) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}
