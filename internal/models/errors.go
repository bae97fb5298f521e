package models

import "errors"

var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrInvalidAsset      = errors.New("invalid asset")
	ErrInvalidPortfolio  = errors.New("invalid portfolio")
	ErrDuplicateAsset    = errors.New("asset already belongs to portfolio")
)
