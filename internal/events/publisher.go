// Package events publishes message lifecycle events to RabbitMQ for
// downstream consumers (audit, analytics). Publishing is best-effort.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Routing keys.
const (
	MessageCreated = "message.created"
	MessageDeleted = "message.deleted"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, key string, data any) error
	Close() error
}

// RabbitPublisher publishes to a durable topic exchange.
type RabbitPublisher struct {
	conn     *amqp.Connection
	exchange string
	logger   zerolog.Logger
}

// NewRabbitPublisher dials url (retrying with backoff) and declares exchange.
func NewRabbitPublisher(ctx context.Context, url, exchange string, logger zerolog.Logger) (*RabbitPublisher, error) {
	log := logger.With().Str("component", "events").Logger()

	conn, err := dialWithRetry(ctx, url, 5, time.Second, log)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitPublisher{conn: conn, exchange: exchange, logger: log}, nil
}

// Publish sends data under routing key key.
func (p *RabbitPublisher) Publish(ctx context.Context, key string, data any) error {
	env := Envelope{
		ID:         uuid.NewString(),
		Type:       key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Timestamp:    env.OccurredAt,
		Body:         body,
	})
	if err == nil {
		p.logger.Debug().Str("key", key).Str("exchange", p.exchange).Msg("published")
	}
	return err
}

// Close closes the broker connection.
func (p *RabbitPublisher) Close() error {
	return p.conn.Close()
}

func dialWithRetry(ctx context.Context, url string, attempts int, delay time.Duration, logger zerolog.Logger) (*amqp.Connection, error) {
	const maxDelay = 30 * time.Second
	var lastErr error

	for i := 1; i <= attempts; i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		sleep := delay << (i - 1)
		if sleep > maxDelay {
			sleep = maxDelay
		}
		logger.Warn().Err(err).Int("attempt", i).Dur("sleep", sleep).Msg("rabbitmq dial failed")

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Join(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", attempts, lastErr)
}

// Nop discards events.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, string, any) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }
