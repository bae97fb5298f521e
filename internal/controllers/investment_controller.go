package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "portfolio-analytics/internal/errors"
	"portfolio-analytics/internal/models"
)

// InvestmentService is the part of the service layer the asset routes use
type InvestmentService interface {
	ListAssets(ctx context.Context, portfolioID string) ([]models.Asset, error)
	GetAsset(ctx context.Context, id string) (*models.Asset, error)
	CreateAsset(ctx context.Context, asset models.Asset) (*models.Asset, error)
	UpdateAsset(ctx context.Context, id string, update models.AssetUpdate) (*models.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
}

type InvestmentController struct {
	logger  *logrus.Logger
	service InvestmentService
}

func NewInvestmentController(logger *logrus.Logger, service InvestmentService) *InvestmentController {
	return &InvestmentController{
		logger:  logger,
		service: service,
	}
}

func (c *InvestmentController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", c.ListInvestments)
	r.POST("", c.CreateInvestment)
	r.GET("/:id", c.GetInvestment)
	r.PATCH("/:id", c.UpdateInvestment)
	r.DELETE("/:id", c.DeleteInvestment)
}

// ListInvestments handles GET /api/investments?portfolio_id=
func (c *InvestmentController) ListInvestments(ctx *gin.Context) {
	portfolioID := ctx.Query("portfolio_id")
	if portfolioID == "" {
		respondWithError(ctx, c.logger, apperrors.WithMessage(apperrors.ErrInvalidInput, "portfolio_id query parameter is required"))
		return
	}

	assets, err := c.service.ListAssets(ctx.Request.Context(), portfolioID)
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"portfolioId": portfolioID,
		"count":       len(assets),
		"investments": assets,
	})
}

// CreateInvestment handles POST /api/investments
func (c *InvestmentController) CreateInvestment(ctx *gin.Context) {
	var asset models.Asset
	if err := ctx.ShouldBindJSON(&asset); err != nil {
		respondWithBindError(ctx, c.logger, err)
		return
	}

	created, err := c.service.CreateAsset(ctx.Request.Context(), asset)
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// GetInvestment handles GET /api/investments/:id
func (c *InvestmentController) GetInvestment(ctx *gin.Context) {
	asset, err := c.service.GetAsset(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, asset)
}

// UpdateInvestment handles PATCH /api/investments/:id
func (c *InvestmentController) UpdateInvestment(ctx *gin.Context) {
	var update models.AssetUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		respondWithBindError(ctx, c.logger, err)
		return
	}

	asset, err := c.service.UpdateAsset(ctx.Request.Context(), ctx.Param("id"), update)
	if err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, asset)
}

// DeleteInvestment handles DELETE /api/investments/:id
func (c *InvestmentController) DeleteInvestment(ctx *gin.Context) {
	if err := c.service.DeleteAsset(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondWithError(ctx, c.logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
