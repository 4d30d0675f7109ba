package allocation

const (
	TierConservative           = "conservative"
	TierModeratelyConservative = "moderately_conservative"
	TierBalanced               = "balanced"
	TierGrowth                 = "growth"
	TierAggressive             = "aggressive"
)

// blendWindow is the half-width, in risk points, of the band around each tier
// boundary in which adjacent tiers are linearly blended.
const blendWindow = 5.0

type split struct {
	Equity float64
	Bonds  float64
	Cash   float64
	Other  float64
}

func (s split) lerp(to split, t float64) split {
	return split{
		Equity: s.Equity + (to.Equity-s.Equity)*t,
		Bonds:  s.Bonds + (to.Bonds-s.Bonds)*t,
		Cash:   s.Cash + (to.Cash-s.Cash)*t,
		Other:  s.Other + (to.Other-s.Other)*t,
	}
}

func (s split) values() []float64 {
	return []float64{s.Equity, s.Bonds, s.Cash, s.Other}
}

func splitOf(v []float64) split {
	return split{Equity: v[0], Bonds: v[1], Cash: v[2], Other: v[3]}
}

type tier struct {
	name  string
	upper float64
	base  split
}

// tiers are ordered by ascending risk; the last tier is closed at 100.
var tiers = []tier{
	{name: TierConservative, upper: 20, base: split{Equity: 20, Bonds: 55, Cash: 20, Other: 5}},
	{name: TierModeratelyConservative, upper: 40, base: split{Equity: 35, Bonds: 45, Cash: 13, Other: 7}},
	{name: TierBalanced, upper: 60, base: split{Equity: 50, Bonds: 35, Cash: 8, Other: 7}},
	{name: TierGrowth, upper: 80, base: split{Equity: 65, Bonds: 22, Cash: 5, Other: 8}},
	{name: TierAggressive, upper: 100, base: split{Equity: 80, Bonds: 10, Cash: 2, Other: 8}},
}

func tierFor(score float64) int {
	for i, t := range tiers {
		if score < t.upper {
			return i
		}
	}
	return len(tiers) - 1
}

// baseSplit returns the tier split for a risk score, blended with the
// neighbouring tier when the score falls inside a boundary window.
func baseSplit(score float64) (split, string, bool) {
	idx := tierFor(score)
	name := tiers[idx].name

	for i := 0; i < len(tiers)-1; i++ {
		boundary := tiers[i].upper
		lo, hi := boundary-blendWindow, boundary+blendWindow
		if score < lo || score > hi {
			continue
		}
		t := (score - lo) / (hi - lo)
		blended := tiers[i].base.lerp(tiers[i+1].base, t)
		return blended, name, t > 0 && t < 1
	}

	return tiers[idx].base, name, false
}
