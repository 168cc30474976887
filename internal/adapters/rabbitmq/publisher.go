package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/events"
)

const (
	// ExchangeName is the topic exchange every domain event is published to;
	// the event type is the routing key.
	ExchangeName = "ride_hail.events"

	defaultDialAttempts  = 10
	defaultRetryInterval = 3 * time.Second
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Options struct {
	DialAttempts  int
	RetryInterval time.Duration
	Logger        *slog.Logger
}

// Publisher implements events.Publisher on a RabbitMQ topic exchange.
type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
	log  *slog.Logger
}

type envelope struct {
	Type        events.Type `json:"type"`
	AggregateID string      `json:"aggregateId"`
	OccurredAt  time.Time   `json:"occurredAt"`
	Payload     any         `json:"payload,omitempty"`
}

// Dial connects to url, retrying while the broker comes up, and declares the
// events exchange.
func Dial(ctx context.Context, url string, opts Options) (*Publisher, error) {
	if opts.DialAttempts <= 0 {
		opts.DialAttempts = defaultDialAttempts
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaultRetryInterval
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= opts.DialAttempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Warn("rabbitmq dial failed", "attempt", attempt, "max_attempts", opts.DialAttempts, "err", err)
		if attempt == opts.DialAttempts {
			return nil, fmt.Errorf("dial rabbitmq after %d attempts: %w", opts.DialAttempts, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.RetryInterval):
		}
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	p, err := newPublisher(ch, log)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	log.Info("rabbitmq publisher ready", "exchange", ExchangeName)
	return p, nil
}

func newPublisher(ch channel, log *slog.Logger) (*Publisher, error) {
	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", ExchangeName, err)
	}
	return &Publisher{ch: ch, log: log}, nil
}

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	body, err := json.Marshal(envelope{
		Type:        e.Type,
		AggregateID: e.AggregateID,
		OccurredAt:  e.OccurredAt.UTC(),
		Payload:     e.Payload,
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.Type, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return errors.New("rabbitmq publisher closed")
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         string(e.Type),
		MessageId:    e.AggregateID,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, ExchangeName, string(e.Type), false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}

// Close releases the channel and connection. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}
