package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio-analytics/internal/config"
	"portfolio-analytics/internal/models"
	"portfolio-analytics/internal/monitoring"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestAssetEventPublisher_PublishAssetEvent(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("routes by event type", func(t *testing.T) {
		ch := new(MockChannel)
		var published amqp.Publishing
		ch.On("Publish", "portfolio.assets", AssetCreated, false, false, mock.Anything).
			Run(func(args mock.Arguments) { published = args.Get(4).(amqp.Publishing) }).
			Return(nil)

		p := newAssetEventPublisher(ch, "portfolio.assets", quietLogger())
		p.now = func() time.Time { return fixed }

		err := p.PublishAssetEvent(context.Background(), AssetEvent{
			Type:        AssetCreated,
			AssetID:     "a1",
			PortfolioID: "p1",
			Asset:       &models.Asset{ID: "a1", Type: models.AssetTypeTraditional, CurrentValue: decimal.NewFromInt(10)},
		})
		require.NoError(t, err)

		assert.Equal(t, "application/json", published.ContentType)
		assert.Equal(t, uint8(amqp.Persistent), published.DeliveryMode)
		assert.NotEmpty(t, published.MessageId)
		assert.Equal(t, fixed, published.Timestamp)

		var event AssetEvent
		require.NoError(t, json.Unmarshal(published.Body, &event))
		assert.Equal(t, published.MessageId, event.EventID)
		assert.Equal(t, "p1", event.PortfolioID)
		require.NotNil(t, event.Asset)
		assert.True(t, event.Asset.CurrentValue.Equal(decimal.NewFromInt(10)))
	})

	t.Run("keeps caller ids", func(t *testing.T) {
		ch := new(MockChannel)
		ch.On("Publish", "x", AssetDeleted, false, false, mock.MatchedBy(func(m amqp.Publishing) bool {
			return m.MessageId == "evt-1"
		})).Return(nil)

		p := newAssetEventPublisher(ch, "x", quietLogger())
		require.NoError(t, p.PublishAssetEvent(context.Background(), AssetEvent{EventID: "evt-1", Type: AssetDeleted}))
		ch.AssertExpectations(t)
	})

	t.Run("broker error wrapped", func(t *testing.T) {
		ch := new(MockChannel)
		ch.On("Publish", mock.Anything, mock.Anything, false, false, mock.Anything).Return(amqp.ErrClosed)

		p := newAssetEventPublisher(ch, "x", quietLogger())
		err := p.PublishAssetEvent(context.Background(), AssetEvent{Type: AssetUpdated})
		assert.ErrorIs(t, err, amqp.ErrClosed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ch := new(MockChannel)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := newAssetEventPublisher(ch, "x", quietLogger())
		assert.ErrorIs(t, p.PublishAssetEvent(ctx, AssetEvent{Type: AssetUpdated}), context.Canceled)
		ch.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestValuationUpdate_AssetUpdate(t *testing.T) {
	irr := decimal.RequireFromString("0.12")
	v := ValuationUpdate{AssetID: "a1", CurrentValue: decimal.NewFromInt(900), IRR: &irr}

	u := v.AssetUpdate()
	require.NotNil(t, u.CurrentValue)
	assert.True(t, u.CurrentValue.Equal(decimal.NewFromInt(900)))
	require.NotNil(t, u.Performance)
	assert.True(t, u.Performance.IRR.Equal(irr))
	assert.Nil(t, u.Performance.MOIC)

	bare := ValuationUpdate{AssetID: "a1", CurrentValue: decimal.NewFromInt(1)}.AssetUpdate()
	assert.Nil(t, bare.Performance)
}

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

type MockApplier struct {
	mock.Mock
}

func (m *MockApplier) ApplyValuation(ctx context.Context, update ValuationUpdate) error {
	return m.Called(ctx, update).Error(0)
}

type recordingMetrics struct {
	monitoring.MetricsService
	statuses []string
}

func (r *recordingMetrics) RecordMessage(queue, status string) {
	r.statuses = append(r.statuses, status)
}

func TestValuationConsumer_HandleDelivery(t *testing.T) {
	cfg := config.RabbitMQConfig{ValuationQueue: "portfolio.valuations.analytics"}
	body := `{"asset_id":"a1","current_value":1250.5,"source":"appraisal"}`

	tests := []struct {
		name        string
		body        string
		redelivered bool
		applyErr    error
		wantAck     bool
		wantRequeue bool
		wantStatus  string
	}{
		{"applied", body, false, nil, true, false, "success"},
		{"undecodable", `{"asset_id":`, false, nil, false, false, "invalid"},
		{"unknown asset", body, false, fmt.Errorf("failed to get asset: %w", models.ErrAssetNotFound), false, false, "rejected"},
		{"invalid update", body, false, fmt.Errorf("%w: current value must not be negative", models.ErrInvalidAsset), false, false, "rejected"},
		{"transient failure requeued", body, false, errors.New("mongo: timeout"), false, true, "retry"},
		{"second transient failure dropped", body, true, errors.New("mongo: timeout"), false, false, "retry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applier := new(MockApplier)
			applier.On("ApplyValuation", mock.Anything, mock.MatchedBy(func(u ValuationUpdate) bool {
				return u.AssetID == "a1" && u.CurrentValue.Equal(decimal.RequireFromString("1250.5"))
			})).Return(tt.applyErr).Maybe()

			metrics := &recordingMetrics{MetricsService: monitoring.NewNoopMetrics()}
			c := NewValuationConsumer(cfg, applier, metrics, quietLogger())

			ack := &fakeAcknowledger{}
			c.handleDelivery(context.Background(), amqp.Delivery{
				Acknowledger: ack,
				DeliveryTag:  1,
				Body:         []byte(tt.body),
				Redelivered:  tt.redelivered,
			})

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, !tt.wantAck, ack.nacked)
			assert.Equal(t, tt.wantRequeue, ack.requeue)
			assert.Equal(t, []string{tt.wantStatus}, metrics.statuses)
		})
	}
}

func TestValuationConsumer_StopBeforeStart(t *testing.T) {
	c := NewValuationConsumer(config.RabbitMQConfig{}, new(MockApplier), nil, quietLogger())
	assert.NoError(t, c.Stop())
}
