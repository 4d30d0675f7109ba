package questionnaire

import "portfolio-advisor/internal/domain"

type Kind string

const (
	KindSingle Kind = "single"
	KindMulti  Kind = "multi"
)

// Dimension names the profile field a question contributes to.
type Dimension string

const (
	DimensionRiskTolerance  Dimension = "risk_tolerance"
	DimensionRiskCapacity   Dimension = "risk_capacity"
	DimensionTimeHorizon    Dimension = "time_horizon"
	DimensionExperience     Dimension = "experience"
	DimensionCashPreference Dimension = "cash_preference"
	DimensionGoals          Dimension = "goals"
	DimensionInterests      Dimension = "interests"
)

type Option struct {
	Code   string  `json:"code"`
	Label  string  `json:"label"`
	Points float64 `json:"-"`
}

type Question struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Kind      Kind      `json:"kind"`
	Required  bool      `json:"required"`
	Dimension Dimension `json:"dimension"`
	Weight    float64   `json:"-"`
	Options   []Option  `json:"options"`
}

func (q Question) option(code string) (Option, bool) {
	for _, o := range q.Options {
		if o.Code == code {
			return o, true
		}
	}
	return Option{}, false
}

const productPoints = 20

var catalog = []Question{
	{
		ID: "age", Prompt: "How old are you?", Kind: KindSingle, Required: true,
		Dimension: DimensionTimeHorizon, Weight: 0.3,
		Options: []Option{
			{Code: "under_30", Label: "Under 30", Points: 100},
			{Code: "30_44", Label: "30 to 44", Points: 80},
			{Code: "45_59", Label: "45 to 59", Points: 55},
			{Code: "60_plus", Label: "60 or older", Points: 25},
		},
	},
	{
		ID: "horizon", Prompt: "When do you expect to need most of this money?", Kind: KindSingle, Required: true,
		Dimension: DimensionTimeHorizon, Weight: 0.7,
		Options: []Option{
			{Code: "under_1y", Label: "Within a year", Points: 5},
			{Code: "1_3y", Label: "In 1 to 3 years", Points: 25},
			{Code: "3_5y", Label: "In 3 to 5 years", Points: 45},
			{Code: "5_10y", Label: "In 5 to 10 years", Points: 70},
			{Code: "over_10y", Label: "In more than 10 years", Points: 95},
		},
	},
	{
		ID: "market_drop", Prompt: "Your portfolio falls 20% in a month. What do you do?", Kind: KindSingle, Required: true,
		Dimension: DimensionRiskTolerance, Weight: 1,
		Options: []Option{
			{Code: "sell_all", Label: "Sell everything", Points: 0},
			{Code: "sell_some", Label: "Sell some of it", Points: 25},
			{Code: "hold", Label: "Hold and wait", Points: 60},
			{Code: "buy_more", Label: "Buy more", Points: 100},
		},
	},
	{
		ID: "risk_attitude", Prompt: "How would you describe your attitude to investment risk?", Kind: KindSingle, Required: true,
		Dimension: DimensionRiskTolerance, Weight: 1,
		Options: []Option{
			{Code: "avoid", Label: "I avoid risk whenever possible", Points: 0},
			{Code: "low", Label: "I accept a little risk", Points: 30},
			{Code: "moderate", Label: "I accept moderate risk for better returns", Points: 60},
			{Code: "high", Label: "I seek high returns and accept large swings", Points: 100},
		},
	},
	{
		ID: "return_goal", Prompt: "What return do you expect from this money?", Kind: KindSingle, Required: true,
		Dimension: DimensionRiskTolerance, Weight: 1,
		Options: []Option{
			{Code: "preserve", Label: "Keep what I have", Points: 10},
			{Code: "beat_inflation", Label: "Beat inflation", Points: 40},
			{Code: "growth", Label: "Steady growth", Points: 70},
			{Code: "aggressive", Label: "Maximum growth", Points: 100},
		},
	},
	{
		ID: "income_stability", Prompt: "How stable is your income?", Kind: KindSingle, Required: true,
		Dimension: DimensionRiskCapacity, Weight: 1,
		Options: []Option{
			{Code: "unstable", Label: "Unstable", Points: 10},
			{Code: "variable", Label: "Variable", Points: 40},
			{Code: "stable", Label: "Stable", Points: 75},
			{Code: "very_stable", Label: "Very stable", Points: 100},
		},
	},
	{
		ID: "emergency_fund", Prompt: "How many months of expenses do you hold as an emergency fund?", Kind: KindSingle, Required: true,
		Dimension: DimensionRiskCapacity, Weight: 1,
		Options: []Option{
			{Code: "none", Label: "None", Points: 0},
			{Code: "under_3m", Label: "Less than 3 months", Points: 35},
			{Code: "3_6m", Label: "3 to 6 months", Points: 70},
			{Code: "over_6m", Label: "More than 6 months", Points: 100},
		},
	},
	{
		ID: "investable_share", Prompt: "What share of your net worth are you investing?", Kind: KindSingle, Required: true,
		Dimension: DimensionRiskCapacity, Weight: 1,
		Options: []Option{
			{Code: "over_50", Label: "More than half", Points: 20},
			{Code: "25_50", Label: "25% to 50%", Points: 50},
			{Code: "10_25", Label: "10% to 25%", Points: 75},
			{Code: "under_10", Label: "Less than 10%", Points: 100},
		},
	},
	{
		ID: "debt_level", Prompt: "How much debt do you carry, excluding a mortgage?", Kind: KindSingle, Required: true,
		Dimension: DimensionRiskCapacity, Weight: 1,
		Options: []Option{
			{Code: "high", Label: "A lot", Points: 10},
			{Code: "moderate", Label: "Some", Points: 50},
			{Code: "low", Label: "A little", Points: 80},
			{Code: "none", Label: "None", Points: 100},
		},
	},
	{
		ID: "experience", Prompt: "How experienced are you with investing?", Kind: KindSingle, Required: true,
		Dimension: DimensionExperience, Weight: 0.6,
		Options: []Option{
			{Code: "none", Label: "No experience", Points: 0},
			{Code: "beginner", Label: "Beginner", Points: 30},
			{Code: "intermediate", Label: "Intermediate", Points: 65},
			{Code: "expert", Label: "Expert", Points: 100},
		},
	},
	{
		ID: "products_used", Prompt: "Which products have you invested in before?", Kind: KindMulti, Required: false,
		Dimension: DimensionExperience, Weight: 0.4,
		Options: []Option{
			{Code: "stocks", Label: "Individual stocks", Points: productPoints},
			{Code: "bonds", Label: "Bonds", Points: productPoints},
			{Code: "etfs", Label: "ETFs", Points: productPoints},
			{Code: "mutual_funds", Label: "Mutual funds", Points: productPoints},
			{Code: "options", Label: "Options or futures", Points: productPoints},
			{Code: "crypto", Label: "Crypto assets", Points: productPoints},
			{Code: "real_estate", Label: "Real estate", Points: productPoints},
		},
	},
	{
		ID: "liquidity_need", Prompt: "How much of this money might you need at short notice?", Kind: KindSingle, Required: true,
		Dimension: DimensionCashPreference,
		Options: []Option{
			{Code: string(domain.CashPreferenceLow), Label: "Almost none"},
			{Code: string(domain.CashPreferenceMedium), Label: "Some of it"},
			{Code: string(domain.CashPreferenceHigh), Label: "A large part"},
		},
	},
	{
		ID: "goals", Prompt: "What are you investing for?", Kind: KindMulti, Required: true,
		Dimension: DimensionGoals,
		Options: []Option{
			{Code: domain.GoalRetirement, Label: "Retirement"},
			{Code: domain.GoalWealthGrowth, Label: "Growing my wealth"},
			{Code: domain.GoalIncome, Label: "Regular income"},
			{Code: domain.GoalCapitalPreservation, Label: "Protecting my capital"},
			{Code: domain.GoalEducation, Label: "Education"},
			{Code: domain.GoalHomePurchase, Label: "Buying a home"},
		},
	},
	{
		ID: "interests", Prompt: "Which themes interest you?", Kind: KindMulti, Required: false,
		Dimension: DimensionInterests,
		Options: []Option{
			{Code: domain.InterestESG, Label: "Sustainable investing"},
			{Code: domain.InterestTechnology, Label: "Technology"},
			{Code: domain.InterestRealEstate, Label: "Real estate"},
			{Code: domain.InterestCommodities, Label: "Commodities"},
			{Code: domain.InterestInfrastructure, Label: "Infrastructure"},
			{Code: domain.InterestEmergingMarkets, Label: "Emerging markets"},
			{Code: domain.InterestDividends, Label: "Dividend payers"},
		},
	},
}

var byID = func() map[string]Question {
	m := make(map[string]Question, len(catalog))
	for _, q := range catalog {
		m[q.ID] = q
	}
	return m
}()

// Questions returns a copy of the questionnaire in presentation order.
func Questions() []Question {
	out := make([]Question, len(catalog))
	for i, q := range catalog {
		q.Options = append([]Option(nil), q.Options...)
		out[i] = q
	}
	return out
}

// Lookup finds a question by its id. Ids are case-sensitive.
func Lookup(id string) (Question, bool) {
	q, ok := byID[id]
	return q, ok
}
