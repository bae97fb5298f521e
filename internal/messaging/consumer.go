package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"

	"portfolio-analytics/internal/config"
	"portfolio-analytics/internal/models"
	"portfolio-analytics/internal/monitoring"
)

// ValuationApplier applies a revaluation to the stored asset
type ValuationApplier interface {
	ApplyValuation(ctx context.Context, update ValuationUpdate) error
}

// ValuationConsumer consumes revaluations from the valuation queue and
// feeds them through the asset update path.
type ValuationConsumer struct {
	cfg     config.RabbitMQConfig
	applier ValuationApplier
	metrics monitoring.MetricsService
	logger  *logrus.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewValuationConsumer(cfg config.RabbitMQConfig, applier ValuationApplier, metrics monitoring.MetricsService, logger *logrus.Logger) *ValuationConsumer {
	if metrics == nil {
		metrics = monitoring.NewNoopMetrics()
	}
	return &ValuationConsumer{
		cfg:     cfg,
		applier: applier,
		metrics: metrics,
		logger:  logger,
	}
}

// Start connects, declares the topology and consumes in the background
// until ctx is cancelled or Stop is called.
func (c *ValuationConsumer) Start(ctx context.Context) error {
	msgs, err := c.connect()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()

	c.logger.WithField("queue", c.cfg.ValuationQueue).Info("Valuation consumer started")

	go c.run(ctx, msgs)
	return nil
}

// Stop cancels consumption and waits for the in-flight message
func (c *ValuationConsumer) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	c.closeConnection()
	c.logger.Info("Valuation consumer stopped")
	return nil
}

func (c *ValuationConsumer) run(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-msgs:
			if ok {
				c.handleDelivery(ctx, msg)
				continue
			}
			if ctx.Err() != nil {
				return
			}

			c.logger.Warn("Valuation delivery channel closed, reconnecting")
			msgs, ok = c.reconnect(ctx)
			if !ok {
				c.logger.Error("Valuation consumer gave up reconnecting")
				return
			}
		}
	}
}

func (c *ValuationConsumer) reconnect(ctx context.Context) (<-chan amqp.Delivery, bool) {
	c.closeConnection()

	for attempt := 1; attempt <= c.cfg.MaxReconnectAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, false
		case <-time.After(c.cfg.ReconnectDelay):
		}

		msgs, err := c.connect()
		if err == nil {
			c.logger.WithField("attempt", attempt).Info("Valuation consumer reconnected")
			return msgs, true
		}
		c.logger.WithError(err).WithField("attempt", attempt).Warn("Reconnect failed")
	}
	return nil, false
}

func (c *ValuationConsumer) connect() (<-chan amqp.Delivery, error) {
	conn, err := amqp.DialConfig(c.cfg.AMQPURL(), amqp.Config{Heartbeat: c.cfg.Heartbeat})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	msgs, err := c.declareAndConsume(channel)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = channel
	c.mu.Unlock()
	return msgs, nil
}

func (c *ValuationConsumer) declareAndConsume(channel *amqp.Channel) (<-chan amqp.Delivery, error) {
	err := channel.ExchangeDeclare(
		c.cfg.ValuationExchange, // name
		"topic",                 // type
		true,                    // durable
		false,                   // auto-deleted
		false,                   // internal
		false,                   // no-wait
		nil,                     // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		c.cfg.ValuationQueue, // name
		true,                 // durable
		false,                // delete when unused
		false,                // exclusive
		false,                // no-wait
		nil,                  // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		queue.Name,                // queue name
		c.cfg.ValuationRoutingKey, // routing key
		c.cfg.ValuationExchange,   // exchange
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	if c.cfg.PrefetchCount > 0 {
		if err := channel.Qos(c.cfg.PrefetchCount, 0, false); err != nil {
			return nil, fmt.Errorf("failed to set qos: %w", err)
		}
	}

	msgs, err := channel.Consume(
		queue.Name,        // queue
		c.cfg.ConsumerTag, // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return msgs, nil
}

func (c *ValuationConsumer) closeConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.WithError(err).Debug("Error closing channel")
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.WithError(err).Debug("Error closing connection")
		}
		c.conn = nil
	}
}

// handleDelivery applies one message. Undecodable messages and updates
// the domain rejects are dropped; transient failures are requeued.
func (c *ValuationConsumer) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	queue := c.cfg.ValuationQueue

	var update ValuationUpdate
	if err := json.Unmarshal(msg.Body, &update); err != nil {
		c.logger.WithError(err).Warn("Dropping undecodable valuation message")
		c.metrics.RecordMessage(queue, "invalid")
		_ = msg.Nack(false, false)
		return
	}

	entry := c.logger.WithFields(logrus.Fields{
		"asset_id": update.AssetID,
		"source":   update.Source,
	})

	err := c.applier.ApplyValuation(ctx, update)
	switch {
	case err == nil:
		entry.WithField("current_value", update.CurrentValue.String()).Info("Valuation applied")
		c.metrics.RecordMessage(queue, "success")
		_ = msg.Ack(false)

	case errors.Is(err, models.ErrAssetNotFound), errors.Is(err, models.ErrInvalidAsset):
		entry.WithError(err).Warn("Rejecting valuation")
		c.metrics.RecordMessage(queue, "rejected")
		_ = msg.Nack(false, false)

	default:
		entry.WithError(err).Error("Failed to apply valuation, requeueing")
		c.metrics.RecordMessage(queue, "retry")
		_ = msg.Nack(false, !msg.Redelivered)
	}
}
