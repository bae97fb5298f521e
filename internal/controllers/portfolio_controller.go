package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "portfolio-analytics/internal/errors"
	"portfolio-analytics/internal/models"
	"portfolio-analytics/internal/services"
)

// PortfolioService is the part of the service layer the portfolio routes use
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, req services.CreatePortfolioRequest) (*models.Portfolio, error)
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, limit, offset int) ([]*models.Portfolio, error)
	GetAnalytics(ctx context.Context, portfolioID string) (*models.PortfolioAnalytics, error)
	TakeSnapshot(ctx context.Context, portfolioID, interval, note string) (*models.Snapshot, error)
}

type PortfolioController struct {
	logger  *logrus.Logger
	service PortfolioService
}

func NewPortfolioController(logger *logrus.Logger, service PortfolioService) *PortfolioController {
	return &PortfolioController{
		logger:  logger,
		service: service,
	}
}

func (c *PortfolioController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", c.ListPortfolios)
	r.POST("", c.CreatePortfolio)
	r.GET("/:id", c.GetPortfolio)
	r.GET("/:id/analytics", c.GetAnalytics)
	r.GET("/:id/metrics", c.GetMetrics)
	r.POST("/:id/snapshots", c.TakeSnapshot)
}

// CreatePortfolio handles POST /api/portfolio
func (c *PortfolioController) CreatePortfolio(ctx *gin.Context) {
	var req services.CreatePortfolioRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondWithBindError(ctx, c.logger, err)
		return
	}

	portfolio, err := c.service.CreatePortfolio(ctx.Request.Context(), req)
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, portfolio)
}

// ListPortfolios handles GET /api/portfolio?limit=&offset=
func (c *PortfolioController) ListPortfolios(ctx *gin.Context) {
	limit, err := queryInt(ctx, "limit")
	if err != nil {
		respondWithError(ctx, c.logger, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be an integer"))
		return
	}
	offset, err := queryInt(ctx, "offset")
	if err != nil {
		respondWithError(ctx, c.logger, apperrors.WithMessage(apperrors.ErrInvalidInput, "offset must be an integer"))
		return
	}

	portfolios, err := c.service.ListPortfolios(ctx.Request.Context(), limit, offset)
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"portfolios": portfolios,
		"count":      len(portfolios),
		"limit":      limit,
		"offset":     offset,
	})
}

func queryInt(ctx *gin.Context, key string) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// GetPortfolio handles GET /api/portfolio/:id
func (c *PortfolioController) GetPortfolio(ctx *gin.Context) {
	portfolio, err := c.service.GetPortfolio(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, portfolio)
}

// GetAnalytics handles GET /api/portfolio/:id/analytics
func (c *PortfolioController) GetAnalytics(ctx *gin.Context) {
	result, err := c.service.GetAnalytics(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"portfolioId":  result.PortfolioID,
		"fingerprint":  result.Fingerprint,
		"summary":      result.Summary,
		"calculatedAt": result.CalculatedAt,
		"fromCache":    result.FromCache,
	})
}

// GetMetrics handles GET /api/portfolio/:id/metrics
func (c *PortfolioController) GetMetrics(ctx *gin.Context) {
	result, err := c.service.GetAnalytics(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"portfolioId":         result.PortfolioID,
		"professionalMetrics": result.ProfessionalMetrics,
		"calculatedAt":        result.CalculatedAt,
		"fromCache":           result.FromCache,
	})
}

type snapshotRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// TakeSnapshot handles POST /api/portfolio/:id/snapshots. The body is optional.
func (c *PortfolioController) TakeSnapshot(ctx *gin.Context) {
	var req snapshotRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			respondWithBindError(ctx, c.logger, err)
			return
		}
	}

	snapshot, err := c.service.TakeSnapshot(ctx.Request.Context(), ctx.Param("id"), models.SnapshotIntervalManual, req.Note)
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, snapshot)
}
