package tui

import (
	"context"
	"fmt"
	"strings"

	"portfolio-advisor/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Holdings message types.
type holdingsMsg []domain.RecommendedHolding
type auditMsg domain.AllocationAudit
type holdingsErrMsg struct{ err error }

const (
	holdingsViewETFs  = 0
	holdingsViewAudit = 1
)

// HoldingsModel shows the recommended ETFs for the session portfolio and the
// audit trail of how its allocation was derived.
type HoldingsModel struct {
	services   Services
	holdings   []domain.RecommendedHolding
	audit      *domain.AllocationAudit
	activeView int
	loading    bool
	err        error
	width      int
	height     int
}

// NewHoldingsModel creates a new holdings model.
func NewHoldingsModel(svc Services) HoldingsModel {
	return HoldingsModel{
		services: svc,
		loading:  svc.HasPortfolio(),
	}
}

// Init fires initial data fetch commands.
func (m HoldingsModel) Init() tea.Cmd {
	if !m.services.HasPortfolio() {
		return nil
	}
	return tea.Batch(m.fetchHoldingsCmd(), m.fetchAuditCmd())
}

func (m HoldingsModel) Update(msg tea.Msg) (HoldingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case holdingsMsg:
		m.holdings = []domain.RecommendedHolding(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case auditMsg:
		audit := domain.AllocationAudit(msg)
		m.audit = &audit
		return m, nil

	case holdingsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.ToggleView):
			m.activeView = 1 - m.activeView
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Refresh):
			if !m.services.HasPortfolio() {
				return m, nil
			}
			m.loading = true
			return m, tea.Batch(m.fetchHoldingsCmd(), m.fetchAuditCmd())
		}
	}

	return m, nil
}

// View shows either the recommended ETFs or the allocation audit trail.
func (m HoldingsModel) View() string {
	var sections []string

	viewLabel := "[ETFs]  Audit"
	if m.activeView == holdingsViewAudit {
		viewLabel = " ETFs  [Audit]"
	}
	sections = append(sections, HeaderStyle.Render("  Recommended Holdings")+"  "+SubtextStyle.Render(viewLabel))
	sections = append(sections, "")

	if !m.services.HasPortfolio() {
		sections = append(sections, SubtextStyle.Render("  No portfolio linked."))
		return strings.Join(sections, "\n")
	}
	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Loading holdings..."))
		return strings.Join(sections, "\n")
	}
	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	if m.activeView == holdingsViewETFs {
		sections = append(sections, m.renderHoldings()...)
	} else {
		sections = append(sections, m.renderAudit()...)
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [v] toggle view  [R] refresh"))

	return strings.Join(sections, "\n")
}

func (m *HoldingsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// ActiveView is holdingsViewETFs or holdingsViewAudit.
func (m HoldingsModel) ActiveView() int { return m.activeView }

// HasData returns whether any holdings data is loaded.
func (m HoldingsModel) HasData() bool {
	return len(m.holdings) > 0 || m.audit != nil
}

func (m HoldingsModel) renderHoldings() []string {
	if len(m.holdings) == 0 {
		return []string{SubtextStyle.Render("  No recommended holdings.")}
	}

	lines := []string{
		SubtextStyle.Render(fmt.Sprintf("  %-5s %7s  %-7s %s", "Ticker", "Weight", "Class", "Name")),
		SubtextStyle.Render("  " + rule(m.width-2)),
	}
	var total float64
	for _, h := range m.holdings {
		lines = append(lines, "  "+FormatHolding(h))
		total += h.Weight
	}
	lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  Total %6.2f%%", total)))
	return lines
}

func (m HoldingsModel) renderAudit() []string {
	if m.audit == nil {
		return []string{SubtextStyle.Render("  Allocation audit not available.")}
	}
	a := m.audit

	lines := []string{
		fmt.Sprintf("  Engine %s, computed %s", a.EngineVersion, a.ComputedAt.UTC().Format("2006-01-02 15:04 MST")),
		fmt.Sprintf("  Risk score %.2f, tier %s", a.RiskScore, a.Tier),
		"",
	}
	if len(a.Adjustments) == 0 {
		lines = append(lines, SubtextStyle.Render("  No adjustments applied."))
	} else {
		lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  %-22s %6s %6s %6s %6s", "Adjustment", "Equity", "Bonds", "Cash", "Other")))
		for _, adj := range a.Adjustments {
			lines = append(lines, "  "+FormatAdjustment(adj))
		}
	}
	if a.CapApplied {
		lines = append(lines, "", fmt.Sprintf("  Equity capped at %.1f%% by risk capacity", a.EquityCap))
	}
	return lines
}

func (m HoldingsModel) fetchHoldingsCmd() tea.Cmd {
	id := m.services.PortfolioID
	return func() tea.Msg {
		if m.services.Portfolios == nil {
			return holdingsErrMsg{err: fmt.Errorf("portfolio service not available")}
		}
		holdings, err := m.services.Portfolios.RecommendETFs(context.Background(), id)
		if err != nil {
			return holdingsErrMsg{err: err}
		}
		return holdingsMsg(holdings)
	}
}

func (m HoldingsModel) fetchAuditCmd() tea.Cmd {
	id := m.services.PortfolioID
	return func() tea.Msg {
		if m.services.Portfolios == nil {
			return nil
		}
		p, err := m.services.Portfolios.GetPortfolio(context.Background(), id)
		if err != nil {
			return nil // the holdings fetch reports errors
		}
		return auditMsg(p.Allocation.Audit)
	}
}
