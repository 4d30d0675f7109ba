package tui

import (
	"fmt"
	"math"
	"strings"

	"portfolio-advisor/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

// FormatETF renders a catalog ETF as a single table row.
func FormatETF(e domain.ETF) string {
	return fmt.Sprintf("%-5s %-7s %s %8s %6d %5.2f%%  %s",
		e.Ticker,
		e.AssetClass,
		feeStyle(e.ExpenseRatio).Render(fmt.Sprintf("%5.2f%%", e.ExpenseRatio)),
		formatAUM(e.AUMBillions),
		e.Holdings,
		e.DividendYield,
		truncate(e.Name, 40),
	)
}

// FormatHolding renders a recommended holding with its portfolio weight.
func FormatHolding(h domain.RecommendedHolding) string {
	return fmt.Sprintf("%-5s %6.2f%%  %-7s %s",
		h.ETF.Ticker,
		h.Weight,
		h.ETF.AssetClass,
		truncate(h.ETF.Name, 40),
	)
}

// FormatAdjustment renders one allocation adjustment as signed per-class deltas.
func FormatAdjustment(a domain.Adjustment) string {
	return fmt.Sprintf("%-22s %s %s %s %s",
		truncate(a.Name, 22),
		formatDelta(a.Equity),
		formatDelta(a.Bonds),
		formatDelta(a.Cash),
		formatDelta(a.Other),
	)
}

// RenderAllocationBar renders a horizontal bar for one asset class weight.
func RenderAllocationBar(class domain.AssetClass, percent float64, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	filled := int(math.Round(percent / 100 * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	style := lipgloss.NewStyle().Foreground(assetClassColor(string(class)))
	bar := style.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%-7s %s %6.2f%%", class, bar, percent)
}

// RenderMetricCard renders a small bordered card with a label and a value.
func RenderMetricCard(label, value string, width int) string {
	if width < 12 {
		width = 12
	}
	body := SubtextStyle.Render(label) + "\n" + HeaderStyle.Render(value)
	return CardStyle.Width(width).Render(body)
}

func feeStyle(expenseRatio float64) lipgloss.Style {
	switch {
	case expenseRatio <= 0.10:
		return FeeLowStyle
	case expenseRatio <= 0.30:
		return FeeMedStyle
	default:
		return FeeHighStyle
	}
}

func formatDelta(v float64) string {
	text := fmt.Sprintf("%+6.1f", v)
	switch {
	case v > 0:
		return DeltaUpStyle.Render(text)
	case v < 0:
		return DeltaDownStyle.Render(text)
	default:
		return DeltaZeroStyle.Render(text)
	}
}

func formatAUM(billions float64) string {
	switch {
	case billions >= 1000:
		return fmt.Sprintf("$%.1fT", billions/1000)
	case billions >= 1:
		return fmt.Sprintf("$%.1fB", billions)
	default:
		return fmt.Sprintf("$%.0fM", billions*1000)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

func rule(width int) string {
	if width < 4 {
		width = 4
	}
	return strings.Repeat("─", width-2)
}
