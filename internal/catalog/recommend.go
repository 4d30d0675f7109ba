package catalog

import (
	"math"
	"sort"

	"portfolio-advisor/internal/domain"

	"github.com/shopspring/decimal"
)

type classSlots struct {
	class     domain.AssetClass
	percent   float64
	slots     int
	remainder float64
}

// Recommend picks allocation.HoldingsCount ETFs spread across the non-zero
// asset classes in proportion to their weight. Every non-zero class gets one
// slot while slots remain; the rest are handed out by largest remainder.
// Weights are portfolio percentages and sum to 100: classes left without a
// holding, because slots ran out or the catalog has no fund for them, have
// their share spread over the chosen classes pro rata.
func (c *Catalog) Recommend(allocation domain.AssetAllocation, interests []string) []domain.RecommendedHolding {
	slots := allocation.HoldingsCount
	if slots <= 0 {
		slots = 1
	}

	classes := make([]classSlots, 0, len(domain.AssetClasses))
	for _, class := range domain.AssetClasses {
		if pct := allocation.Percent(class); pct > 0 {
			classes = append(classes, classSlots{class: class, percent: pct})
		}
	}
	if len(classes) == 0 {
		return nil
	}
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].percent > classes[j].percent })

	distribute(classes, slots)

	type pick struct {
		candidates []domain.ETF
		n          int
	}
	picks := make([]pick, 0, len(classes))
	percents := make([]float64, 0, len(classes))
	for _, cs := range classes {
		candidates := c.byClass(cs.class, interests)
		n := min(cs.slots, len(candidates))
		if n == 0 {
			continue
		}
		picks = append(picks, pick{candidates: candidates, n: n})
		percents = append(percents, cs.percent)
	}
	if len(picks) == 0 {
		return nil
	}

	var out []domain.RecommendedHolding
	for i, share := range rescale(percents) {
		weights := splitWeight(share, picks[i].n)
		for j := 0; j < picks[i].n; j++ {
			out = append(out, domain.RecommendedHolding{ETF: picks[i].candidates[j], Weight: weights[j]})
		}
	}
	return out
}

// rescale scales class percentages so they total 100, rounded to two
// decimals with the residual on the first (largest) class.
func rescale(percents []float64) []float64 {
	hundred := decimal.NewFromInt(100)
	covered := decimal.Zero
	for _, p := range percents {
		covered = covered.Add(decimal.NewFromFloat(p))
	}

	scaled := make([]decimal.Decimal, len(percents))
	sum := decimal.Zero
	for i, p := range percents {
		scaled[i] = decimal.NewFromFloat(p).Mul(hundred).Div(covered).Round(2)
		sum = sum.Add(scaled[i])
	}
	scaled[0] = scaled[0].Add(hundred.Sub(sum))

	out := make([]float64, len(scaled))
	for i, d := range scaled {
		out[i] = d.InexactFloat64()
	}
	return out
}

func distribute(classes []classSlots, slots int) {
	if slots <= len(classes) {
		for i := 0; i < slots; i++ {
			classes[i].slots = 1
		}
		return
	}

	extra := slots - len(classes)
	quotas := make([]float64, len(classes))
	var quotaSum float64
	for i := range classes {
		classes[i].slots = 1
		quotas[i] = math.Max(0, classes[i].percent/100*float64(slots)-1)
		quotaSum += quotas[i]
	}
	if quotaSum == 0 {
		return
	}

	assigned := 0
	for i := range classes {
		q := quotas[i] * float64(extra) / quotaSum
		whole := int(math.Floor(q))
		classes[i].slots += whole
		classes[i].remainder = q - float64(whole)
		assigned += whole
	}

	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return classes[order[a]].remainder > classes[order[b]].remainder
	})
	for i := 0; assigned < extra; i++ {
		classes[order[i%len(order)]].slots++
		assigned++
	}
}

// splitWeight divides a class percentage evenly across n holdings, rounded to
// two decimals, with the rounding residual on the first holding.
func splitWeight(percent float64, n int) []float64 {
	total := decimal.NewFromFloat(percent)
	share := total.Div(decimal.NewFromInt(int64(n))).Round(2)
	first := total.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))

	out := make([]float64, n)
	out[0] = first.InexactFloat64()
	for i := 1; i < n; i++ {
		out[i] = share.InexactFloat64()
	}
	return out
}
