package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const dialMaxElapsed = 30 * time.Second

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher publishes JSON messages to a durable topic exchange.
type RabbitMQPublisher struct {
	log      *logrus.Logger
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// NewRabbitMQPublisher retries the initial dial with exponential backoff for up to 30s.
func NewRabbitMQPublisher(url, exchange string, log *logrus.Logger) (*RabbitMQPublisher, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = dialMaxElapsed

	var conn *amqp.Connection
	err := backoff.RetryNotify(func() error {
		var dialErr error
		conn, dialErr = amqp.Dial(url)
		return dialErr
	}, policy, func(err error, wait time.Duration) {
		log.Warnf("RabbitMQ not reachable, retrying in %s: %v", wait, err)
	})
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
	return &RabbitMQPublisher{log: log, conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *RabbitMQPublisher) PublishJSON(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	msgID := uuid.NewString()
	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msgID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.log.WithFields(logrus.Fields{"routing_key": routingKey, "message_id": msgID}).Debug("Published message")
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
