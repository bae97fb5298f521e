package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "portfolio-analytics/internal/errors"
)

// respondWithError writes the client view of err. Server side failures
// are logged with their cause and answered with a generic message.
func respondWithError(c *gin.Context, logger *logrus.Logger, err error) {
	appErr := apperrors.FromDomain(err)
	if appErr.StatusCode >= 500 {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).WithError(err).Error("Request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

func respondWithBindError(c *gin.Context, logger *logrus.Logger, err error) {
	respondWithError(c, logger, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
}
