// Package errors maps domain failures onto HTTP error responses without
// leaking internal details to clients.
package errors

import (
	"context"
	"errors"
	"net/http"

	"portfolio-analytics/internal/models"
)

// AppError is an error with a stable code, a client safe message and an
// HTTP status. Internal carries the cause for logging.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Internal }

// Wrap copies a sentinel and attaches the cause
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage copies a sentinel with a different message
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

var (
	ErrUnauthorized      = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidInput      = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrAssetNotFound     = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
	ErrPortfolioNotFound = &AppError{Code: "PORTFOLIO_NOT_FOUND", Message: "Portfolio not found", StatusCode: http.StatusNotFound}
	ErrDuplicateAsset    = &AppError{Code: "DUPLICATE_ASSET", Message: "Asset already exists", StatusCode: http.StatusConflict}
	ErrAnalyticsTimeout  = &AppError{Code: "ANALYTICS_TIMEOUT", Message: "Analytics calculation timed out", StatusCode: http.StatusGatewayTimeout}
	ErrInternalServer    = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// FromDomain translates a service error. Validation failures keep their
// message since it only describes the client's input; anything unknown
// becomes ErrInternalServer.
func FromDomain(err error) *AppError {
	var appErr *AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrAssetNotFound):
		return Wrap(ErrAssetNotFound, err)
	case errors.Is(err, models.ErrPortfolioNotFound):
		return Wrap(ErrPortfolioNotFound, err)
	case errors.Is(err, models.ErrDuplicateAsset):
		return Wrap(ErrDuplicateAsset, err)
	case errors.Is(err, models.ErrInvalidAsset), errors.Is(err, models.ErrInvalidPortfolio):
		e := Wrap(ErrInvalidInput, err)
		e.Message = err.Error()
		return e
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrAnalyticsTimeout, err)
	default:
		return Wrap(ErrInternalServer, err)
	}
}
