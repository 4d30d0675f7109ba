package mcp

import (
	"fmt"
	"strings"

	"portfolio-advisor/internal/domain"
	"portfolio-advisor/internal/questionnaire"

	"github.com/google/uuid"
)

const (
	defaultETFLimit = 50
	maxETFLimit     = 200
)

type questionnaireGetInput struct{}

type questionnaireGetOutput struct {
	Questions []questionnaire.Question `json:"questions"`
}

type answersInput struct {
	Answers map[string][]string `json:"answers" jsonschema:"answer codes keyed by question id"`
}

type profileBuildOutput struct {
	Profile domain.InvestorProfile `json:"profile"`
}

type allocationComputeOutput struct {
	Profile    domain.InvestorProfile `json:"profile"`
	Allocation domain.AssetAllocation `json:"allocation"`
}

type portfolioGetInput struct {
	ID string `json:"id" jsonschema:"portfolio id returned by a questionnaire submission"`
}

type portfolioGetOutput struct {
	Portfolio *domain.Portfolio `json:"portfolio"`
}

type etfsListInput struct {
	AssetClass string `json:"asset_class,omitempty" jsonschema:"optional asset class: equity, bonds, cash, other"`
	Query      string `json:"query,omitempty" jsonschema:"optional text matched against ticker, name, category and tags"`
	Limit      int    `json:"limit,omitempty" jsonschema:"number of ETFs to return, max 200"`
}

type etfsListOutput struct {
	ETFs []domain.ETF `json:"etfs"`
}

type etfsCompareInput struct {
	Tickers []string `json:"tickers" jsonschema:"two to four ETF tickers"`
}

func normalizePortfolioID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("id is required")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid portfolio id: %s", id)
	}
	return parsed.String(), nil
}

func normalizeAssetClass(class string) (domain.AssetClass, error) {
	class = strings.ToLower(strings.TrimSpace(class))
	if class == "" {
		return "", nil
	}
	ac := domain.AssetClass(class)
	if !ac.IsValid() {
		return "", fmt.Errorf("unsupported asset class: %s", class)
	}
	return ac, nil
}

func normalizeETFLimit(limit int) int {
	if limit <= 0 {
		return defaultETFLimit
	}
	if limit > maxETFLimit {
		return maxETFLimit
	}
	return limit
}

func normalizeETFFilter(in etfsListInput) (domain.ETFFilter, error) {
	class, err := normalizeAssetClass(in.AssetClass)
	if err != nil {
		return domain.ETFFilter{}, err
	}
	return domain.ETFFilter{
		AssetClass: class,
		Query:      strings.TrimSpace(in.Query),
		Limit:      normalizeETFLimit(in.Limit),
	}, nil
}

// The output schemas declare answers as an object and goals/interests as
// arrays, so nil collections have to go out as empty ones.
func schemaProfile(p domain.InvestorProfile) domain.InvestorProfile {
	if p.Goals == nil {
		p.Goals = []string{}
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	return p
}

func schemaPortfolio(p *domain.Portfolio) *domain.Portfolio {
	if p == nil {
		return nil
	}
	out := *p
	if out.Answers == nil {
		out.Answers = map[string][]string{}
	}
	out.Profile = schemaProfile(out.Profile)
	return &out
}
