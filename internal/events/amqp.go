package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/streadway/amqp"

	"stagefund/internal/core/domain"
)

// QueueName is the durable queue domain events are published to.
const QueueName = "funding_events"

// AMQPPublisher publishes domain events as JSON messages to a durable
// queue. Messages are fire-and-forget; failures are logged, not retried.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

// NewAMQPPublisher dials the broker, declares the durable queue and
// returns a ready publisher. Close releases the connection.
func NewAMQPPublisher(url string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err = ch.QueueDeclare(
		QueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPPublisher{conn: conn, channel: ch, logger: logger}, nil
}

func (p *AMQPPublisher) Publish(_ context.Context, ev domain.Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("marshal event", slog.Any("error", err))
		return
	}
	err = p.channel.Publish(
		"",
		QueueName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		p.logger.Error("publish event",
			slog.String("type", string(ev.Type)),
			slog.Any("error", err),
		)
	}
}

func (p *AMQPPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
