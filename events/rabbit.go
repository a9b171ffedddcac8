// Package events publishes catalog and cart lifecycle notifications on a
// RabbitMQ topic exchange. The publisher is an optional collaborator
// everywhere it is consumed; components constructed without one simply do
// not publish.
package events

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Routing keys emitted by the stores and the cart engine.
const (
	KeyBookCreated       = "catalog.book.created"
	KeyBookUpdated       = "catalog.book.updated"
	KeyBookDeleted       = "catalog.book.deleted"
	KeyCheckoutCompleted = "cart.checkout.completed"
)

type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      zerolog.Logger
}

// Dial connects and declares the topic exchange.
func Dial(url, exchange string, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange, log: log}, nil
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) PublishJSON(routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = p.ch.PublishWithContext(context.Background(), p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("key", routingKey).Msg("publish failed")
	}
	return err
}
