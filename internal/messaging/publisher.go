package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// amqpPublisher is the subset of *amqp.Channel used to publish
type amqpPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AssetEventPublisher publishes asset lifecycle events to a topic exchange.
// The event type is the routing key.
type AssetEventPublisher struct {
	conn     *amqp.Connection
	channel  amqpPublisher
	closer   func() error
	exchange string
	logger   *logrus.Logger
	mu       sync.Mutex
	now      func() time.Time
}

// NewAssetEventPublisher connects to RabbitMQ and declares the exchange
func NewAssetEventPublisher(rabbitURL, exchange string, logger *logrus.Logger) (*AssetEventPublisher, error) {
	conn, err := amqp.Dial(rabbitURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.WithField("exchange", exchange).Info("Asset event publisher initialized")

	p := newAssetEventPublisher(channel, exchange, logger)
	p.conn = conn
	p.closer = channel.Close
	return p, nil
}

func newAssetEventPublisher(channel amqpPublisher, exchange string, logger *logrus.Logger) *AssetEventPublisher {
	return &AssetEventPublisher{
		channel:  channel,
		exchange: exchange,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// PublishAssetEvent publishes event, filling in the id and timestamp when unset
func (p *AssetEventPublisher) PublishAssetEvent(ctx context.Context, event AssetEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	err = p.channel.Publish(
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			MessageId:    event.EventID,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    event.OccurredAt,
			DeliveryMode: amqp.Persistent,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.WithFields(logrus.Fields{
		"event_id":     event.EventID,
		"type":         event.Type,
		"asset_id":     event.AssetID,
		"portfolio_id": event.PortfolioID,
	}).Debug("Published asset event")
	return nil
}

// Close closes the publisher channel and connection
func (p *AssetEventPublisher) Close() error {
	if p.closer != nil {
		if err := p.closer(); err != nil {
			p.logger.WithError(err).Warn("Error closing channel")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.WithError(err).Warn("Error closing connection")
			return err
		}
	}
	p.logger.Info("Asset event publisher closed")
	return nil
}
