package advisor

import (
	"fmt"
	"strings"

	"portfolio-advisor/internal/domain"
)

const systemPreamble = `You are a portfolio advisor explaining a model allocation to a retail investor.
Answer in plain language and keep replies short. Refer to the investor's profile and
allocation below when relevant. You do not know current market prices and must not
invent them. This is educational guidance, not personalised financial advice; say so
when the investor asks what to buy or sell.`

// SystemPrompt renders the portfolio context given to the model.
func SystemPrompt(p *domain.Portfolio) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\nInvestor profile (0-100 scales):\n")
	fmt.Fprintf(&b, "- risk tolerance %.1f, risk capacity %.1f, time horizon %.1f, experience %.1f\n",
		p.Profile.RiskTolerance, p.Profile.RiskCapacity, p.Profile.TimeHorizon, p.Profile.Experience)
	fmt.Fprintf(&b, "- cash preference: %s\n", p.Profile.CashPreference)
	fmt.Fprintf(&b, "- goals: %s\n", listOrNone(p.Profile.Goals))
	fmt.Fprintf(&b, "- interests: %s\n", listOrNone(p.Profile.Interests))

	a := p.Allocation
	b.WriteString("\nRecommended allocation:\n")
	fmt.Fprintf(&b, "- equity %.2f%%, bonds %.2f%%, cash %.2f%%, other %.2f%%\n", a.Equity, a.Bonds, a.Cash, a.Other)
	fmt.Fprintf(&b, "- risk score %.2f, tier %s, %d holdings\n", a.Audit.RiskScore, a.Audit.Tier, a.HoldingsCount)
	if a.Audit.CapApplied {
		fmt.Fprintf(&b, "- equity capped at %.1f%% because of limited risk capacity\n", a.Audit.EquityCap)
	}
	if len(a.Audit.Adjustments) > 0 {
		names := make([]string, 0, len(a.Audit.Adjustments))
		for _, adj := range a.Audit.Adjustments {
			names = append(names, adj.Name)
		}
		fmt.Fprintf(&b, "- adjustments applied: %s\n", strings.Join(names, ", "))
	}
	return b.String()
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
