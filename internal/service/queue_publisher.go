package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	q "github.com/iliyamo/performance-signup/internal/queue"
)

// AMQPNotifier publishes RegistrationConfirmedEvents to RabbitMQ.  Each
// call dials its own connection.
type AMQPNotifier struct {
	URL    string
	Logger *zap.Logger
}

// Notify publishes event to the registration.confirmed queue as a
// persistent JSON message.  Errors are logged and returned so the caller
// can decide to ignore them.
func (n *AMQPNotifier) Notify(ctx context.Context, event q.RegistrationConfirmedEvent) error {
	conn, err := amqp.Dial(n.URL)
	if err != nil {
		n.Logger.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		n.Logger.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so confirmations survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.RegistrationQueueName, // name
		true,                    // durable
		false,                   // autoDelete
		false,                   // exclusive
		false,                   // noWait
		nil,                     // args
	); err != nil {
		n.Logger.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		n.Logger.Warn("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",                      // default exchange
		q.RegistrationQueueName, // routing key = queue name
		false,                   // mandatory
		false,                   // immediate
		pub,
	); err != nil {
		n.Logger.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}

// LogNotifier only logs the event.  It is used when no broker is configured.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify writes the event to the log and never fails.
func (n LogNotifier) Notify(_ context.Context, event q.RegistrationConfirmedEvent) error {
	n.Logger.Info("registration confirmed",
		zap.String("event_id", event.EventID),
		zap.String("date", event.Date),
		zap.String("name", event.Name),
		zap.Int("line", event.Line),
	)
	return nil
}
