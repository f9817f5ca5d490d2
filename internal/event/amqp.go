package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPEmitter publishes booking events to a durable topic exchange.
// Messages are persistent so they survive broker restarts; combined with
// publisher confirms being off this gives at-least-once, not exactly-once.
type AMQPEmitter struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPEmitter dials the broker and declares the exchange.
func NewAMQPEmitter(url, exchange string) (*AMQPEmitter, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPEmitter{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish sends the event with routing key RoutingKey.
func (e *AMQPEmitter) Publish(ctx context.Context, evt StatusChanged) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return e.ch.PublishWithContext(ctx, e.exchange, RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Close releases the channel and connection.
func (e *AMQPEmitter) Close() error {
	if e.ch != nil {
		_ = e.ch.Close()
	}
	if e.conn != nil {
		return e.conn.Close()
	}
	return nil
}
