package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrETFNotFound       = errors.New("etf not found")
	// ErrUnavailable marks a dependency that is not configured or reachable.
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError reports every problem found in a caller-supplied payload.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

type CashPreference string

const (
	CashPreferenceLow    CashPreference = "low"
	CashPreferenceMedium CashPreference = "medium"
	CashPreferenceHigh   CashPreference = "high"
)

func (c CashPreference) IsValid() bool {
	switch c {
	case CashPreferenceLow, CashPreferenceMedium, CashPreferenceHigh:
		return true
	default:
		return false
	}
}

const (
	GoalRetirement          = "retirement"
	GoalWealthGrowth        = "wealth_growth"
	GoalIncome              = "income"
	GoalCapitalPreservation = "capital_preservation"
	GoalEducation           = "education"
	GoalHomePurchase        = "home_purchase"
)

const (
	InterestESG             = "esg"
	InterestTechnology      = "technology"
	InterestRealEstate      = "real_estate"
	InterestCommodities     = "commodities"
	InterestInfrastructure  = "infrastructure"
	InterestEmergingMarkets = "emerging_markets"
	InterestDividends       = "dividends"
)

type InvestorProfile struct {
	RiskTolerance  float64        `json:"risk_tolerance"`
	RiskCapacity   float64        `json:"risk_capacity"`
	TimeHorizon    float64        `json:"time_horizon"`
	Experience     float64        `json:"experience"`
	CashPreference CashPreference `json:"cash_preference"`
	Goals          []string       `json:"goals"`
	Interests      []string       `json:"interests"`
}

// Validate checks that every score is a finite value within [0,100].
func (p InvestorProfile) Validate() error {
	var problems []string
	check := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			problems = append(problems, fmt.Sprintf("%s must be between 0 and 100, got %v", name, v))
		}
	}
	check("risk_tolerance", p.RiskTolerance)
	check("risk_capacity", p.RiskCapacity)
	check("time_horizon", p.TimeHorizon)
	check("experience", p.Experience)
	if p.CashPreference != "" && !p.CashPreference.IsValid() {
		problems = append(problems, fmt.Sprintf("unsupported cash_preference: %s", p.CashPreference))
	}
	if len(problems) > 0 {
		return NewValidationError(problems...)
	}
	return nil
}

func (p InvestorProfile) HasGoal(goal string) bool {
	return containsString(p.Goals, goal)
}

func (p InvestorProfile) HasInterest(interest string) bool {
	return containsString(p.Interests, interest)
}

type AssetClass string

const (
	AssetClassEquity AssetClass = "equity"
	AssetClassBonds  AssetClass = "bonds"
	AssetClassCash   AssetClass = "cash"
	AssetClassOther  AssetClass = "other"
)

// AssetClasses is the canonical bucket order used for rendering and rounding.
var AssetClasses = []AssetClass{AssetClassEquity, AssetClassBonds, AssetClassCash, AssetClassOther}

func (a AssetClass) IsValid() bool {
	for _, c := range AssetClasses {
		if a == c {
			return true
		}
	}
	return false
}

const AllocationTolerance = 0.01

type AssetAllocation struct {
	Equity        float64         `json:"equity"`
	Bonds         float64         `json:"bonds"`
	Cash          float64         `json:"cash"`
	Other         float64         `json:"other"`
	HoldingsCount int             `json:"holdings_count"`
	Audit         AllocationAudit `json:"audit"`
}

type AllocationAudit struct {
	RiskScore     float64      `json:"risk_score"`
	Tier          string       `json:"tier"`
	Interpolated  bool         `json:"interpolated"`
	Adjustments   []Adjustment `json:"adjustments,omitempty"`
	CapApplied    bool         `json:"cap_applied"`
	EquityCap     float64      `json:"equity_cap"`
	EngineVersion string       `json:"engine_version"`
	ComputedAt    time.Time    `json:"computed_at"`
}

// Adjustment records one additive step of the allocation pipeline.
type Adjustment struct {
	Name   string  `json:"name"`
	Equity float64 `json:"equity"`
	Bonds  float64 `json:"bonds"`
	Cash   float64 `json:"cash"`
	Other  float64 `json:"other"`
}

func (a AssetAllocation) Total() float64 {
	return a.Equity + a.Bonds + a.Cash + a.Other
}

func (a AssetAllocation) IsNormalized() bool {
	return math.Abs(a.Total()-100) <= AllocationTolerance
}

func (a AssetAllocation) Percent(class AssetClass) float64 {
	switch class {
	case AssetClassEquity:
		return a.Equity
	case AssetClassBonds:
		return a.Bonds
	case AssetClassCash:
		return a.Cash
	case AssetClassOther:
		return a.Other
	default:
		return 0
	}
}

type Portfolio struct {
	ID         string              `json:"id"`
	Answers    map[string][]string `json:"answers"`
	Profile    InvestorProfile     `json:"profile"`
	Allocation AssetAllocation     `json:"allocation"`
	CreatedAt  time.Time           `json:"created_at"`
}

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

func (s Sender) IsValid() bool {
	return s == SenderUser || s == SenderAssistant
}

type PortfolioMessage struct {
	ID          int64     `json:"id"`
	PortfolioID string    `json:"portfolio_id"`
	Sender      Sender    `json:"sender"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

type ETF struct {
	Ticker        string     `json:"ticker" yaml:"ticker"`
	Name          string     `json:"name" yaml:"name"`
	AssetClass    AssetClass `json:"asset_class" yaml:"asset_class"`
	Category      string     `json:"category" yaml:"category"`
	Region        string     `json:"region" yaml:"region"`
	ExpenseRatio  float64    `json:"expense_ratio" yaml:"expense_ratio"`
	AUMBillions   float64    `json:"aum_billions" yaml:"aum_billions"`
	Holdings      int        `json:"holdings" yaml:"holdings"`
	DividendYield float64    `json:"dividend_yield" yaml:"dividend_yield"`
	Tags          []string   `json:"tags,omitempty" yaml:"tags"`
}

type ETFFilter struct {
	AssetClass AssetClass
	Query      string
	Limit      int
}

type ETFComparison struct {
	ETFs            []ETF  `json:"etfs"`
	LowestFee       string `json:"lowest_fee"`
	LargestAUM      string `json:"largest_aum"`
	HighestYield    string `json:"highest_yield"`
	MostDiversified string `json:"most_diversified"`
}

type RecommendedHolding struct {
	ETF    ETF     `json:"etf"`
	Weight float64 `json:"weight"`
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
