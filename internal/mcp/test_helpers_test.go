package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"portfolio-advisor/internal/catalog"
	"portfolio-advisor/internal/domain"
	"portfolio-advisor/internal/questionnaire"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

const testPortfolioID = "0b7e2f4a-8c1d-4e5f-9a6b-7c8d9e0f1a2b"

type stubPortfolioService struct {
	portfolio *domain.Portfolio

	lastAnswers questionnaire.Answers
	lastID      string
}

func (s *stubPortfolioService) Preview(ctx context.Context, answers questionnaire.Answers) (domain.InvestorProfile, domain.AssetAllocation, error) {
	s.lastAnswers = answers
	profile, err := questionnaire.BuildProfile(answers)
	if err != nil {
		return domain.InvestorProfile{}, domain.AssetAllocation{}, err
	}
	return profile, s.portfolio.Allocation, nil
}

func (s *stubPortfolioService) GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	s.lastID = id
	if s.portfolio == nil || id != s.portfolio.ID {
		return nil, fmt.Errorf("%w: %s", domain.ErrPortfolioNotFound, id)
	}
	copy := *s.portfolio
	return &copy, nil
}

func testAnswers() map[string][]string {
	return map[string][]string{
		"age":              {"30_44"},
		"horizon":          {"5_10y"},
		"market_drop":      {"hold"},
		"risk_attitude":    {"moderate"},
		"return_goal":      {"growth"},
		"income_stability": {"stable"},
		"emergency_fund":   {"3_6m"},
		"investable_share": {"10_25"},
		"debt_level":       {"low"},
		"experience":       {"intermediate"},
		"liquidity_need":   {"medium"},
		"goals":            {"retirement"},
	}
}

func testServer() (*sdkmcp.Server, *stubPortfolioService) {
	portfolios := &stubPortfolioService{
		portfolio: &domain.Portfolio{
			ID:      testPortfolioID,
			Answers: testAnswers(),
			Profile: domain.InvestorProfile{
				RiskTolerance: 62, RiskCapacity: 70, TimeHorizon: 60, Experience: 55,
				CashPreference: domain.CashPreferenceMedium,
				Goals:          []string{domain.GoalRetirement},
				Interests:      []string{},
			},
			Allocation: domain.AssetAllocation{
				Equity: 60, Bonds: 30, Cash: 5, Other: 5, HoldingsCount: 6,
				Audit: domain.AllocationAudit{Tier: "growth", RiskScore: 61},
			},
			CreatedAt: time.Unix(0, 0).UTC(),
		},
	}

	srv := NewServer(nil, portfolios, catalog.Default(), ServerConfig{RequestTimeout: time.Second})
	return srv, portfolios
}

// openSession connects an in-memory client to srv for the rest of the test.
func openSession(t *testing.T, srv *sdkmcp.Server) (context.Context, *sdkmcp.ClientSession) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	go func() { _ = srv.Run(ctx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		require.NoError(t, err, "connect")
	}
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
	})
	return ctx, session
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(t *testing.T, result *sdkmcp.ReadResourceResult, out any) {
	t.Helper()
	require.NotEmpty(t, result.Contents)
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), out))
}

func decodeStructured(t *testing.T, result *sdkmcp.CallToolResult, out any) {
	t.Helper()
	body, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}
