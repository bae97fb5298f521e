package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"portfolio-analytics/internal/analytics"
	"portfolio-analytics/internal/config"
	"portfolio-analytics/internal/controllers"
	"portfolio-analytics/internal/messaging"
	"portfolio-analytics/internal/middleware"
	"portfolio-analytics/internal/monitoring"
	mongorepo "portfolio-analytics/internal/repositories/mongo"
	"portfolio-analytics/internal/scheduler"
	"portfolio-analytics/internal/services"
	"portfolio-analytics/internal/validator"
	"portfolio-analytics/pkg/cache"
	"portfolio-analytics/pkg/database"
	"portfolio-analytics/pkg/logger"
)

const serviceName = "portfolio-analytics"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	appLogger := logger.Init(cfg.Logger)
	log := appLogger.WithField("service", serviceName)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	log.Info("Starting portfolio analytics service...")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewPrometheusMetrics(registry)

	// Initialize database connection
	db, err := database.NewMongoDB(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer db.Disconnect()

	healthChecks := map[string]func(context.Context) error{
		"mongodb": db.Ping,
	}

	// Initialize the analytics cache; Redis is an optional second tier
	var remote cache.DistributedStore
	if cfg.Cache.RedisEnabled {
		redisStore, err := cache.NewRedisStore(cfg.Cache)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, using the local analytics cache only")
		} else {
			defer redisStore.Close()
			remote = redisStore
			healthChecks["redis"] = redisStore.Ping
		}
	}
	analyticsCache := cache.NewAnalyticsCache(cfg.Cache, remote, metrics, appLogger)
	defer analyticsCache.Stop()

	// Initialize repositories
	portfolioRepo := mongorepo.NewPortfolioRepository(db.GetDatabase())
	assetRepo := mongorepo.NewAssetRepository(db.GetDatabase())
	snapshotRepo := mongorepo.NewSnapshotRepository(db.GetDatabase())

	// Initialize the asset event publisher
	var publisher services.EventPublisher
	var assetPublisher *messaging.AssetEventPublisher
	if cfg.RabbitMQ.Enabled {
		assetPublisher, err = messaging.NewAssetEventPublisher(cfg.RabbitMQ.AMQPURL(), cfg.RabbitMQ.AssetExchange, appLogger)
		if err != nil {
			log.WithError(err).Error("Failed to initialize asset event publisher")
		} else {
			publisher = assetPublisher
		}
	}

	// Initialize services
	engine := analytics.NewEngine(analytics.EngineConfigFrom(cfg.Analytics), analyticsCache, metrics, appLogger)
	portfolioService := services.NewPortfolioService(
		portfolioRepo,
		assetRepo,
		snapshotRepo,
		engine,
		analyticsCache,
		publisher,
		metrics,
		appLogger,
		services.Config{
			CalculationTimeout: cfg.Analytics.CalculationTimeout,
			HistoryLimit:       cfg.Analytics.HistoryLimit,
		},
	)

	// Initialize controllers
	portfolioController := controllers.NewPortfolioController(appLogger, portfolioService)
	investmentController := controllers.NewInvestmentController(appLogger, portfolioService)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Initialize RabbitMQ consumer
	var valuationConsumer *messaging.ValuationConsumer
	if cfg.RabbitMQ.Enabled {
		valuationConsumer = messaging.NewValuationConsumer(cfg.RabbitMQ, portfolioService, metrics, appLogger)
		if err := valuationConsumer.Start(bgCtx); err != nil {
			log.WithError(err).Error("Failed to start valuation consumer")
			valuationConsumer = nil
		}
	}

	// Initialize scheduler
	var snapshotScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		snapshotScheduler, err = scheduler.NewScheduler(cfg.Scheduler, portfolioService, appLogger)
		if err != nil {
			log.Fatal("Failed to initialize scheduler: ", err)
		}
		snapshotScheduler.Start(bgCtx)
		if cfg.Scheduler.RunOnStart {
			go snapshotScheduler.RunNow()
		}
	}

	// Setup HTTP server
	validator.Register()
	router := setupRouter(cfg, appLogger, metrics, registry, healthChecks, portfolioController, investmentController)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting HTTP server")
		var err error
		if cfg.Server.EnableTLS {
			err = server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: ", err)
	}

	stopBackground()

	if valuationConsumer != nil {
		valuationConsumer.Stop()
	}
	if snapshotScheduler != nil {
		snapshotScheduler.Stop()
	}
	if assetPublisher != nil {
		assetPublisher.Close()
	}

	log.Info("Server exited")
}

func setupRouter(cfg *config.Config,
	appLogger *logrus.Logger,
	metrics monitoring.MetricsService,
	registry *prometheus.Registry,
	healthChecks map[string]func(context.Context) error,
	portfolioController *controllers.PortfolioController,
	investmentController *controllers.InvestmentController) *gin.Engine {

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.NewLoggingMiddleware(appLogger, "/health", "/metrics").LogRequests())
	router.Use(middleware.Metrics(metrics))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		dependencies := make(gin.H, len(healthChecks))
		for name, check := range healthChecks {
			if err := check(ctx); err != nil {
				appLogger.WithError(err).WithField("dependency", name).Warn("Health check failed")
				dependencies[name] = "down"
				status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			dependencies[name] = "up"
		}

		c.JSON(code, gin.H{
			"status":       status,
			"service":      serviceName,
			"dependencies": dependencies,
			"timestamp":    time.Now().UTC(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// API routes
	api := router.Group("/api")
	if cfg.Auth.RequireAuth {
		auth := middleware.NewAuthMiddleware(&middleware.AuthConfig{
			SecretKey: cfg.Auth.JWTSecret,
			Issuer:    cfg.Auth.JWTIssuer,
		})
		api.Use(auth.ValidateToken())
	}

	portfolioController.RegisterRoutes(api.Group("/portfolio"))
	investmentController.RegisterRoutes(api.Group("/investments"))

	return router
}
