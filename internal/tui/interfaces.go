package tui

import (
	"context"

	"portfolio-advisor/internal/domain"
)

// PortfolioQuerier provides stored portfolios and their holdings to the TUI.
type PortfolioQuerier interface {
	GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error)
	RecommendETFs(ctx context.Context, id string) ([]domain.RecommendedHolding, error)
}

// CatalogQuerier provides ETF reference data to the TUI.
type CatalogQuerier interface {
	List(filter domain.ETFFilter) []domain.ETF
}

// AdvisorQuerier provides LLM advisor access to the TUI.
type AdvisorQuerier interface {
	Ask(ctx context.Context, portfolioID, message string) (string, error)
	History(ctx context.Context, portfolioID string, limit int) ([]domain.PortfolioMessage, error)
}

// Services bundles all service dependencies injected into the TUI.
type Services struct {
	Portfolios  PortfolioQuerier
	Catalog     CatalogQuerier
	Advisor     AdvisorQuerier
	PortfolioID string
	UserID      int64
	Username    string
}

// HasPortfolio reports whether the session is bound to a portfolio.
func (s Services) HasPortfolio() bool {
	return s.PortfolioID != ""
}
