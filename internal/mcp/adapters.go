package mcp

import (
	"context"

	"portfolio-advisor/internal/domain"
	"portfolio-advisor/internal/questionnaire"
)

// PortfolioReader exposes profile previews and stored portfolios.
type PortfolioReader interface {
	Preview(ctx context.Context, answers questionnaire.Answers) (domain.InvestorProfile, domain.AssetAllocation, error)
	GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error)
}

// ETFCatalog exposes read-only ETF reference data.
type ETFCatalog interface {
	List(filter domain.ETFFilter) []domain.ETF
	Compare(tickers []string) (domain.ETFComparison, error)
}
