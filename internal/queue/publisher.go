package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/airline-reservation/internal/logger"
)

// Publisher sends reservation events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev ReservationEvent) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }

// AMQPPublisher publishes persistent JSON messages to ReservationQueue. It
// dials per message; reservation volume does not justify a pooled channel.
type AMQPPublisher struct {
	url string
	log logger.Logger
}

func NewAMQPPublisher(url string, log logger.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, log: log}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev ReservationEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Type),
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ReservationQueue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	p.log.Debug("event published", "type", ev.Type, "reservation_id", ev.ReservationID)
	return nil
}

// declare makes sure the durable queue exists (idempotent).
func declare(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(ReservationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
