package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sethvargo/go-retry"

	"github.com/iliyamo/airline-reservation/internal/logger"
)

const auditFile = "reservations.log"

// StartAuditConsumer consumes ReservationQueue and appends one line per event
// to <dir>/reservations.log. Broker failures are retried with capped
// exponential backoff until ctx is cancelled, which returns nil.
func StartAuditConsumer(ctx context.Context, url, dir string, log logger.Logger) error {
	backoff := retry.WithCappedDuration(30*time.Second, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("audit consumer: dial failed", "error", err)
			return retry.RetryableError(err)
		}
		defer func() { _ = conn.Close() }()
		err = consumeLoop(ctx, conn, dir, log)
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("audit consumer: loop ended, reconnecting", "error", err)
		return retry.RetryableError(err)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string, log logger.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("audit consumer: set QoS failed", "error", err)
	}
	if err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(ReservationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	log.Info("audit consumer: listening", "queue", ReservationQueue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(dir, d.Body); err != nil {
				log.Error("audit consumer: handle message failed", "error", err)
				_ = d.Nack(false, false) // reject without requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and appends it to the audit log in dir.
func HandleMessage(dir string, body []byte) error {
	var ev ReservationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.ReservationID == 0 {
		return fmt.Errorf("incomplete event %q", ev.ID)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, auditFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s | event_id=%s | reservation_id=%d | client_id=%d | flight_id=%d | seat_id=%d | actor=%d\n",
		ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.ID, ev.ReservationID, ev.ClientID, ev.FlightID, ev.SeatID, ev.ActorUserID)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}
