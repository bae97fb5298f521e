package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfolio-analytics/internal/analytics"
	"portfolio-analytics/internal/calculator"
	"portfolio-analytics/internal/messaging"
	"portfolio-analytics/internal/models"
)

// Mock implementations
type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) Create(ctx context.Context, portfolio *models.Portfolio) error {
	args := m.Called(ctx, portfolio)
	return args.Error(0)
}

func (m *MockPortfolioRepository) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a copy so the service cannot mutate the fixture
	p := *args.Get(0).(*models.Portfolio)
	return &p, args.Error(1)
}

func (m *MockPortfolioRepository) Update(ctx context.Context, portfolio *models.Portfolio) error {
	args := m.Called(ctx, portfolio)
	return args.Error(0)
}

func (m *MockPortfolioRepository) List(ctx context.Context, limit, offset int) ([]*models.Portfolio, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Portfolio), args.Error(1)
}

func (m *MockPortfolioRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	a := *args.Get(0).(*models.Asset)
	return &a, args.Error(1)
}

func (m *MockAssetRepository) ListByPortfolio(ctx context.Context, portfolioID string) ([]models.Asset, error) {
	args := m.Called(ctx, portfolioID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return append([]models.Asset(nil), args.Get(0).([]models.Asset)...), args.Error(1)
}

func (m *MockAssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Create(ctx context.Context, snapshot *models.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) ListRecent(ctx context.Context, portfolioID string, limit int) ([]models.Snapshot, error) {
	args := m.Called(ctx, portfolioID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, portfolioID, fingerprint string) (*models.PortfolioAnalytics, bool) {
	args := m.Called(ctx, portfolioID, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*models.PortfolioAnalytics), args.Bool(1)
}

func (m *MockResultCache) Set(ctx context.Context, portfolioID, fingerprint string, result *models.PortfolioAnalytics) error {
	args := m.Called(ctx, portfolioID, fingerprint, result)
	return args.Error(0)
}

func (m *MockResultCache) Invalidate(ctx context.Context, portfolioID string) error {
	args := m.Called(ctx, portfolioID)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishAssetEvent(ctx context.Context, event messaging.AssetEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type fixture struct {
	portfolios *MockPortfolioRepository
	assets     *MockAssetRepository
	snapshots  *MockSnapshotRepository
	cache      *MockResultCache
	publisher  *MockEventPublisher
	service    *PortfolioService
}

var fixedNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		portfolios: new(MockPortfolioRepository),
		assets:     new(MockAssetRepository),
		snapshots:  new(MockSnapshotRepository),
		cache:      new(MockResultCache),
		publisher:  new(MockEventPublisher),
	}
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	engine := analytics.NewEngine(analytics.EngineConfig{
		RiskFreeRate: 0.02,
		Benchmark:    calculator.DefaultBenchmark(),
	}, nil, nil, logger)

	f.service = NewPortfolioService(f.portfolios, f.assets, f.snapshots, engine, f.cache, f.publisher, nil, logger,
		Config{CalculationTimeout: time.Second, HistoryLimit: 30})
	f.service.now = func() time.Time { return fixedNow }
	ids := 0
	f.service.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}
	return f
}

func testPortfolio() *models.Portfolio {
	return &models.Portfolio{ID: "p1", Name: "Fund I", Currency: "USD"}
}

func testAsset(id string, value int64, irr string) models.Asset {
	return models.Asset{
		ID:               id,
		PortfolioID:      "p1",
		Type:             models.AssetTypeTraditional,
		Name:             "Holding " + id,
		AcquisitionValue: decimal.NewFromInt(value),
		CurrentValue:     decimal.NewFromInt(value),
		Location:         models.Location{Country: "US"},
		Status:           models.AssetStatusActive,
		RiskRating:       models.RiskMedium,
		Sector:           "technology",
		Performance: models.PerformanceMetrics{
			IRR:  decimal.RequireFromString(irr),
			MOIC: decimal.NewFromInt(1),
		},
	}
}

func TestPortfolioService_CreatePortfolio(t *testing.T) {
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("Create", ctx, mock.AnythingOfType("*models.Portfolio")).Return(nil)

		p, err := f.service.CreatePortfolio(ctx, CreatePortfolioRequest{Name: "  Fund II ", Currency: "eur"})

		require.NoError(t, err)
		assert.Equal(t, "id-1", p.ID)
		assert.Equal(t, "Fund II", p.Name)
		assert.Equal(t, "EUR", p.Currency)
		assert.True(t, p.TotalValue.IsZero())
		assert.Empty(t, p.Assets)
		f.portfolios.AssertExpectations(t)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreatePortfolio(ctx, CreatePortfolioRequest{Name: "   "})
		assert.ErrorIs(t, err, models.ErrInvalidPortfolio)
		f.portfolios.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestPortfolioService_GetPortfolio(t *testing.T) {
	ctx := context.Background()

	t.Run("totals recomputed from assets", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
		f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{
			testAsset("a", 600, "0.2"), testAsset("b", 400, "0.1"),
		}, nil)

		p, err := f.service.GetPortfolio(ctx, "p1")

		require.NoError(t, err)
		assert.Len(t, p.Assets, 2)
		assert.True(t, p.TotalValue.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, 2, p.AssetCount)
	})

	t.Run("portfolio not found", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", ctx, "nope").Return(nil, models.ErrPortfolioNotFound)

		_, err := f.service.GetPortfolio(ctx, "nope")
		assert.ErrorIs(t, err, models.ErrPortfolioNotFound)
	})
}

func TestPortfolioService_CreateAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id, normalizes, invalidates and publishes", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
		f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{}, nil)
		f.assets.On("Create", ctx, mock.AnythingOfType("*models.Asset")).Return(nil)
		f.portfolios.On("Update", ctx, mock.MatchedBy(func(p *models.Portfolio) bool {
			return p.TotalValue.Equal(decimal.NewFromInt(1500))
		})).Return(nil)
		f.cache.On("Invalidate", ctx, "p1").Return(nil)
		f.publisher.On("PublishAssetEvent", ctx, mock.MatchedBy(func(e messaging.AssetEvent) bool {
			return e.Type == messaging.AssetCreated && e.AssetID == "id-1" && e.Asset != nil
		})).Return(nil)

		in := testAsset("client-chosen", 1000, "0.15")
		in.CurrentValue = decimal.NewFromInt(1500)
		in.Performance.MOIC = decimal.Zero
		in.Status = ""

		created, err := f.service.CreateAsset(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, "id-1", created.ID)
		assert.Equal(t, models.AssetStatusActive, created.Status)
		assert.True(t, created.Performance.MOIC.Equal(decimal.RequireFromString("1.5")))
		assert.Equal(t, fixedNow, created.LastUpdated)
		f.assets.AssertExpectations(t)
		f.portfolios.AssertExpectations(t)
		f.cache.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("negative value rejected before storage", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
		f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{}, nil)

		in := testAsset("x", 100, "0.1")
		in.CurrentValue = decimal.NewFromInt(-1)

		_, err := f.service.CreateAsset(ctx, in)
		assert.ErrorIs(t, err, models.ErrInvalidAsset)
		f.assets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing portfolio id", func(t *testing.T) {
		f := newFixture(t)
		in := testAsset("x", 100, "0.1")
		in.PortfolioID = ""
		_, err := f.service.CreateAsset(ctx, in)
		assert.ErrorIs(t, err, models.ErrInvalidAsset)
	})

	t.Run("unknown portfolio", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", ctx, "p1").Return(nil, models.ErrPortfolioNotFound)
		_, err := f.service.CreateAsset(ctx, testAsset("x", 100, "0.1"))
		assert.ErrorIs(t, err, models.ErrPortfolioNotFound)
	})

	t.Run("publish failure does not fail the write", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
		f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{}, nil)
		f.assets.On("Create", ctx, mock.Anything).Return(nil)
		f.portfolios.On("Update", ctx, mock.Anything).Return(nil)
		f.cache.On("Invalidate", ctx, "p1").Return(nil)
		f.publisher.On("PublishAssetEvent", ctx, mock.Anything).Return(errors.New("broker down"))

		_, err := f.service.CreateAsset(ctx, testAsset("x", 100, "0.1"))
		assert.NoError(t, err)
	})
}

func TestPortfolioService_UpdateAsset(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update merges and invalidates", func(t *testing.T) {
		f := newFixture(t)
		stored := testAsset("a", 1000, "0.1")
		f.assets.On("GetByID", ctx, "a").Return(&stored, nil)
		f.assets.On("Update", ctx, mock.MatchedBy(func(a *models.Asset) bool {
			return a.CurrentValue.Equal(decimal.NewFromInt(1200)) && a.Name == stored.Name
		})).Return(nil)
		updated := stored
		updated.CurrentValue = decimal.NewFromInt(1200)
		f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
		f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{updated}, nil)
		f.portfolios.On("Update", ctx, mock.Anything).Return(nil)
		f.cache.On("Invalidate", ctx, "p1").Return(nil)
		f.publisher.On("PublishAssetEvent", ctx, mock.MatchedBy(func(e messaging.AssetEvent) bool {
			return e.Type == messaging.AssetUpdated
		})).Return(nil)

		value := decimal.NewFromInt(1200)
		got, err := f.service.UpdateAsset(ctx, "a", models.AssetUpdate{CurrentValue: &value})

		require.NoError(t, err)
		assert.True(t, got.CurrentValue.Equal(value))
		assert.Equal(t, fixedNow, got.LastUpdated)
		f.cache.AssertExpectations(t)
	})

	t.Run("empty update rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.UpdateAsset(ctx, "a", models.AssetUpdate{})
		assert.ErrorIs(t, err, models.ErrInvalidAsset)
	})

	t.Run("invalid merge leaves storage untouched", func(t *testing.T) {
		f := newFixture(t)
		stored := testAsset("a", 1000, "0.1")
		f.assets.On("GetByID", ctx, "a").Return(&stored, nil)

		negative := decimal.NewFromInt(-5)
		_, err := f.service.UpdateAsset(ctx, "a", models.AssetUpdate{CurrentValue: &negative})

		assert.ErrorIs(t, err, models.ErrInvalidAsset)
		f.assets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("asset not found", func(t *testing.T) {
		f := newFixture(t)
		f.assets.On("GetByID", ctx, "zz").Return(nil, models.ErrAssetNotFound)
		name := "x"
		_, err := f.service.UpdateAsset(ctx, "zz", models.AssetUpdate{Name: &name})
		assert.ErrorIs(t, err, models.ErrAssetNotFound)
	})
}

func TestPortfolioService_DeleteAsset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	stored := testAsset("a", 1000, "0.1")

	f.assets.On("GetByID", ctx, "a").Return(&stored, nil)
	f.assets.On("Delete", ctx, "a").Return(nil)
	f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
	f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{}, nil)
	f.portfolios.On("Update", ctx, mock.MatchedBy(func(p *models.Portfolio) bool {
		return p.TotalValue.IsZero() && p.AssetCount == 0
	})).Return(nil)
	f.cache.On("Invalidate", ctx, "p1").Return(nil)
	f.publisher.On("PublishAssetEvent", ctx, mock.MatchedBy(func(e messaging.AssetEvent) bool {
		return e.Type == messaging.AssetDeleted && e.Asset == nil
	})).Return(nil)

	require.NoError(t, f.service.DeleteAsset(ctx, "a"))
	f.portfolios.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestPortfolioService_ApplyValuation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	stored := testAsset("a", 1000, "0.1")

	f.assets.On("GetByID", ctx, "a").Return(&stored, nil)
	f.assets.On("Update", ctx, mock.MatchedBy(func(a *models.Asset) bool {
		return a.CurrentValue.Equal(decimal.NewFromInt(1100)) && a.Performance.IRR.Equal(decimal.RequireFromString("0.14"))
	})).Return(nil)
	f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
	f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{stored}, nil)
	f.portfolios.On("Update", ctx, mock.Anything).Return(nil)
	f.cache.On("Invalidate", ctx, "p1").Return(nil)
	f.publisher.On("PublishAssetEvent", ctx, mock.Anything).Return(nil)

	irr := decimal.RequireFromString("0.14")
	err := f.service.ApplyValuation(ctx, messaging.ValuationUpdate{
		AssetID:      "a",
		CurrentValue: decimal.NewFromInt(1100),
		IRR:          &irr,
	})

	require.NoError(t, err)
	f.assets.AssertExpectations(t)

	assert.ErrorIs(t, f.service.ApplyValuation(ctx, messaging.ValuationUpdate{}), models.ErrInvalidAsset)
}

func TestPortfolioService_ApplyValuationRederivesMOIC(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	stored := testAsset("a", 1000, "0.1")
	stored.AcquisitionValue = decimal.NewFromInt(500)
	stored.Performance.MOIC = decimal.Zero
	stored.Normalize(time.Now())

	f.assets.On("GetByID", ctx, "a").Return(&stored, nil)
	f.assets.On("Update", ctx, mock.MatchedBy(func(a *models.Asset) bool {
		return a.Performance.MOIC.Equal(decimal.NewFromInt(3)) && a.Performance.MOICDerived
	})).Return(nil)
	f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
	f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{stored}, nil)
	f.portfolios.On("Update", ctx, mock.Anything).Return(nil)
	f.cache.On("Invalidate", ctx, "p1").Return(nil)
	f.publisher.On("PublishAssetEvent", ctx, mock.Anything).Return(nil)

	err := f.service.ApplyValuation(ctx, messaging.ValuationUpdate{
		AssetID:      "a",
		CurrentValue: decimal.NewFromInt(1500),
	})

	require.NoError(t, err)
	f.assets.AssertExpectations(t)
}

func TestPortfolioService_GetAnalytics(t *testing.T) {
	ctx := context.Background()

	t.Run("weighted IRR over stored assets", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", mock.Anything, "p1").Return(testPortfolio(), nil)
		f.assets.On("ListByPortfolio", mock.Anything, "p1").Return([]models.Asset{
			testAsset("a", 600, "0.2"), testAsset("b", 400, "0.1"),
		}, nil)
		f.snapshots.On("ListRecent", mock.Anything, "p1", 30).Return([]models.Snapshot{}, nil)

		result, err := f.service.GetAnalytics(ctx, "p1")

		require.NoError(t, err)
		assert.True(t, result.Summary.WeightedIRR.Equal(decimal.RequireFromString("0.16")),
			"got %s", result.Summary.WeightedIRR)
		assert.Equal(t, 2, result.Summary.AssetCount)
		assert.NotEmpty(t, result.Fingerprint)
	})

	t.Run("history failure degrades to asset-only analytics", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", mock.Anything, "p1").Return(testPortfolio(), nil)
		f.assets.On("ListByPortfolio", mock.Anything, "p1").Return([]models.Asset{testAsset("a", 100, "0.1")}, nil)
		f.snapshots.On("ListRecent", mock.Anything, "p1", 30).Return(nil, errors.New("timeout"))

		result, err := f.service.GetAnalytics(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, models.SourceRiskRatingBand, result.ProfessionalMetrics.VolatilitySource)
	})

	t.Run("missing portfolio", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", mock.Anything, "p9").Return(nil, models.ErrPortfolioNotFound)
		_, err := f.service.GetAnalytics(ctx, "p9")
		assert.ErrorIs(t, err, models.ErrPortfolioNotFound)
	})
}

func TestPortfolioService_Snapshots(t *testing.T) {
	ctx := context.Background()

	t.Run("take snapshot captures asset values", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
		f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{testAsset("a", 250, "0.1")}, nil)
		f.snapshots.On("Create", ctx, mock.MatchedBy(func(s *models.Snapshot) bool {
			return s.AssetValues["a"].Equal(decimal.NewFromInt(250)) && s.Interval == models.SnapshotIntervalManual
		})).Return(nil)

		s, err := f.service.TakeSnapshot(ctx, "p1", "", "quarter close")

		require.NoError(t, err)
		assert.True(t, s.TotalValue.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, "quarter close", s.Note)
		assert.Equal(t, fixedNow, s.Timestamp)
	})

	t.Run("take all continues past failures", func(t *testing.T) {
		f := newFixture(t)
		f.portfolios.On("ListIDs", ctx).Return([]string{"p1", "gone"}, nil)
		f.portfolios.On("GetByID", ctx, "p1").Return(testPortfolio(), nil)
		f.portfolios.On("GetByID", ctx, "gone").Return(nil, models.ErrPortfolioNotFound)
		f.assets.On("ListByPortfolio", ctx, "p1").Return([]models.Asset{}, nil)
		f.snapshots.On("Create", ctx, mock.Anything).Return(nil)

		taken, err := f.service.TakeAllSnapshots(ctx, models.SnapshotIntervalDaily)

		assert.Equal(t, 1, taken)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrPortfolioNotFound)
	})
}

func TestPortfolioService_PruneSnapshots(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes before cutoff", func(t *testing.T) {
		f := newFixture(t)
		f.snapshots.On("DeleteOlderThan", ctx, fixedNow.Add(-48*time.Hour)).Return(int64(4), nil)

		deleted, err := f.service.PruneSnapshots(ctx, 48*time.Hour)

		require.NoError(t, err)
		assert.Equal(t, int64(4), deleted)
	})

	t.Run("zero retention keeps everything", func(t *testing.T) {
		f := newFixture(t)
		deleted, err := f.service.PruneSnapshots(ctx, 0)

		require.NoError(t, err)
		assert.Zero(t, deleted)
		f.snapshots.AssertNotCalled(t, "DeleteOlderThan", mock.Anything, mock.Anything)
	})
}

func TestPortfolioService_ListPortfolios(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name                  string
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{"defaults", 0, -3, DefaultPageSize, 0},
		{"clamped", 500, 10, MaxPageSize, 10},
		{"passed through", 5, 15, 5, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.portfolios.On("List", ctx, tt.wantLimit, tt.wantOffset).Return(nil, nil)

			got, err := f.service.ListPortfolios(ctx, tt.limit, tt.offset)

			require.NoError(t, err)
			assert.NotNil(t, got)
			f.portfolios.AssertExpectations(t)
		})
	}
}
