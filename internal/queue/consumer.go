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
	"go.uber.org/zap"
)

// registrationLogFile is the file the consumer appends to inside its log
// directory.  The mail relay tails it to send confirmation emails.
const registrationLogFile = "registrations.log"

// Consumer drains the registration.confirmed queue into a log file.
type Consumer struct {
	URL    string
	LogDir string
	Logger *zap.Logger
}

// Run connects to RabbitMQ, declares the queue and consumes until ctx is
// cancelled.  Broken connections are retried with exponential backoff
// capped at 30s.  Malformed messages are rejected without requeue so one
// bad payload cannot stall the queue.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("registration consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Logger.Warn("registration consumer: consume loop ended; reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		c.Logger.Warn("registration consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(RegistrationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(RegistrationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(d.Body); err != nil {
				c.Logger.Error("registration consumer: handle message failed", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle appends one line describing the registration in body.
func (c *Consumer) Handle(body []byte) error {
	var ev RegistrationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Name == "" || ev.Date == "" {
		return errors.New("event missing name or date")
	}
	dir := c.LogDir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, registrationLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human-readable log line.
func FormatLine(ev RegistrationConfirmedEvent) string {
	return fmt.Sprintf("[%s] Registration confirmed | event_id=%s | date=%q | label=%q | line=%d | name=%q | email=%q | instrument=%q | piece=%q | duration=%q\n",
		ev.ConfirmedAt, ev.EventID, ev.Date, ev.Label, ev.Line, ev.Name, ev.Email, ev.Instrument, ev.Piece, ev.Duration)
}
