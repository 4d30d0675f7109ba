package allocation

import (
	"errors"
	"math"
	"time"

	"portfolio-advisor/internal/domain"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

const EngineVersion = "allocation/v1"

const (
	toleranceWeight  = 0.7
	experienceWeight = 0.3

	horizonNeutral     = 50.0
	horizonStep        = 5.0
	horizonBondsShare  = 0.6
	horizonCashShare   = 0.4
	shortHorizonCutoff = 20.0
	shortHorizonShift  = 5.0

	equityCapBase     = 30.0
	equityCapPerPoint = 0.6
	excessToBonds     = 0.7
	excessToCash      = 0.3

	alternativesShift    = 2.0
	alternativesShiftMax = 6.0

	minHoldings = 3
	maxHoldings = 8
)

var ErrEmptyAllocation = errors.New("allocation has no positive bucket")

var alternativeInterests = []string{
	domain.InterestRealEstate,
	domain.InterestCommodities,
	domain.InterestInfrastructure,
}

type Engine struct {
	now func() time.Time
}

func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Allocate derives the recommended split for a profile. The result always
// sums to exactly 100 after rounding to two decimals.
func (e *Engine) Allocate(profile domain.InvestorProfile) (domain.AssetAllocation, error) {
	if err := profile.Validate(); err != nil {
		return domain.AssetAllocation{}, err
	}

	score := RiskScore(profile)
	s, tierName, interpolated := baseSplit(score)

	audit := domain.AllocationAudit{
		RiskScore:     score,
		Tier:          tierName,
		Interpolated:  interpolated,
		EngineVersion: EngineVersion,
		ComputedAt:    e.now().UTC(),
	}

	for _, adj := range adjustmentsFor(profile) {
		s = apply(s, adj)
		audit.Adjustments = append(audit.Adjustments, adj)
	}

	audit.EquityCap = EquityCap(profile.RiskCapacity)
	if s.Equity > audit.EquityCap {
		excess := s.Equity - audit.EquityCap
		adj := domain.Adjustment{
			Name:   "capacity_cap",
			Equity: -excess,
			Bonds:  excess * excessToBonds,
			Cash:   excess * excessToCash,
		}
		s = apply(s, adj)
		audit.Adjustments = append(audit.Adjustments, adj)
		audit.CapApplied = true
	}

	values, err := normalize(s.values())
	if err != nil {
		return domain.AssetAllocation{}, err
	}
	final := splitOf(values)

	return domain.AssetAllocation{
		Equity:        final.Equity,
		Bonds:         final.Bonds,
		Cash:          final.Cash,
		Other:         final.Other,
		HoldingsCount: holdingsCount(profile, final),
		Audit:         audit,
	}, nil
}

// RiskScore blends tolerance and experience into the score used for tiering.
// The blend is computed in decimal so boundary scores such as 15 or 65 come
// out exact instead of a float ulp below the window edge.
func RiskScore(p domain.InvestorProfile) float64 {
	score := decimal.NewFromFloat(toleranceWeight).Mul(decimal.NewFromFloat(p.RiskTolerance)).
		Add(decimal.NewFromFloat(experienceWeight).Mul(decimal.NewFromFloat(p.Experience)))
	return score.InexactFloat64()
}

func EquityCap(capacity float64) float64 {
	return equityCapBase + equityCapPerPoint*capacity
}

func adjustmentsFor(p domain.InvestorProfile) []domain.Adjustment {
	var out []domain.Adjustment

	if d := (p.TimeHorizon - horizonNeutral) / horizonStep; d != 0 {
		out = append(out, domain.Adjustment{
			Name:   "horizon",
			Equity: d,
			Bonds:  -horizonBondsShare * d,
			Cash:   -horizonCashShare * d,
		})
	}
	if p.TimeHorizon < shortHorizonCutoff {
		out = append(out, domain.Adjustment{Name: "short_horizon", Equity: -shortHorizonShift, Cash: shortHorizonShift})
	}

	switch p.CashPreference {
	case domain.CashPreferenceHigh:
		out = append(out, domain.Adjustment{Name: "cash_preference_high", Equity: -3, Bonds: -2, Cash: 5})
	case domain.CashPreferenceLow:
		out = append(out, domain.Adjustment{Name: "cash_preference_low", Bonds: 2, Cash: -2})
	}

	if p.HasGoal(domain.GoalCapitalPreservation) {
		out = append(out, domain.Adjustment{Name: "goal_capital_preservation", Equity: -5, Bonds: 2, Cash: 3})
	}
	if p.HasGoal(domain.GoalIncome) {
		out = append(out, domain.Adjustment{Name: "goal_income", Equity: -3, Bonds: 3})
	}
	if p.HasGoal(domain.GoalWealthGrowth) {
		out = append(out, domain.Adjustment{Name: "goal_wealth_growth", Equity: 3, Bonds: -3})
	}

	shift := 0.0
	for _, interest := range alternativeInterests {
		if p.HasInterest(interest) {
			shift += alternativesShift
		}
	}
	if shift = math.Min(shift, alternativesShiftMax); shift > 0 {
		out = append(out, domain.Adjustment{Name: "alternatives_interest", Bonds: -shift, Other: shift})
	}

	return out
}

func apply(s split, adj domain.Adjustment) split {
	return split{
		Equity: s.Equity + adj.Equity,
		Bonds:  s.Bonds + adj.Bonds,
		Cash:   s.Cash + adj.Cash,
		Other:  s.Other + adj.Other,
	}
}

// normalize clamps negatives, scales to 100 and rounds to two decimals. The
// rounding residual lands on the largest bucket.
func normalize(in []float64) ([]float64, error) {
	v := make([]float64, len(in))
	for i, x := range in {
		if x > 0 && !math.IsInf(x, 0) {
			v[i] = x
		}
	}

	total := floats.Sum(v)
	if total <= 0 || math.IsNaN(total) {
		return nil, ErrEmptyAllocation
	}
	floats.Scale(100/total, v)

	hundred := decimal.NewFromInt(100)
	rounded := make([]decimal.Decimal, len(v))
	sum := decimal.Zero
	for i, x := range v {
		rounded[i] = decimal.NewFromFloat(x).Round(2)
		sum = sum.Add(rounded[i])
	}
	largest := floats.MaxIdx(v)
	rounded[largest] = rounded[largest].Add(hundred.Sub(sum))

	out := make([]float64, len(v))
	for i, d := range rounded {
		out[i] = d.InexactFloat64()
	}
	return out, nil
}

func holdingsCount(p domain.InvestorProfile, s split) int {
	n := minHoldings
	if p.Experience >= 50 {
		n++
	}
	if p.Experience >= 75 {
		n++
	}
	if s.Other >= 5 {
		n++
	}
	if s.Equity >= 60 {
		n++
	}
	if n > maxHoldings {
		n = maxHoldings
	}
	return n
}
