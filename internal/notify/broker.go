package notify

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BrokerPublisher delivers lifecycle events to an external message broker.
type BrokerPublisher interface {
	Publish(ctx context.Context, queue string, body []byte, correlationID string) error
}

// AMQPPublisher publishes persistent JSON messages to durable queues named
// after the event topic. A connection is opened per message.
type AMQPPublisher struct {
	url string
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

func (p *AMQPPublisher) Publish(ctx context.Context, queue string, body []byte, correlationID string) error {
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

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare %s: %w", queue, err)
	}

	err = ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			CorrelationId: correlationID,
			Timestamp:     time.Now().UTC(),
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", queue, err)
	}
	return nil
}
