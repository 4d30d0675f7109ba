package tui

import (
	"context"
	"fmt"
	"strings"

	"portfolio-advisor/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Dashboard message types.
type portfolioMsg struct{ portfolio *domain.Portfolio }
type portfolioErrMsg struct{ err error }

// DashboardModel shows the session portfolio's allocation and profile.
type DashboardModel struct {
	services  Services
	portfolio *domain.Portfolio
	loading   bool
	err       error
	width     int
	height    int
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(svc Services) DashboardModel {
	return DashboardModel{
		services: svc,
		loading:  svc.HasPortfolio(),
	}
}

// Init fires the initial portfolio fetch.
func (m DashboardModel) Init() tea.Cmd {
	if !m.services.HasPortfolio() {
		return nil
	}
	return m.fetchPortfolioCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case portfolioMsg:
		m.portfolio = msg.portfolio
		m.loading = false
		m.err = nil
		return m, nil

	case portfolioErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Refresh) && m.services.HasPortfolio() {
			m.loading = true
			return m, m.fetchPortfolioCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if !m.services.HasPortfolio() {
		return lipgloss.JoinVertical(lipgloss.Left,
			"",
			HeaderStyle.Render("  No portfolio linked to this account"),
			"",
			SubtextStyle.Render("  Complete the questionnaire through the API, then reconnect with:"),
			SubtextStyle.Render("  ssh -t <host> <portfolio-id>"),
		)
	}
	if m.loading && m.portfolio == nil {
		return SubtextStyle.Render("Loading portfolio...")
	}
	if m.err != nil && m.portfolio == nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.portfolio == nil {
		return SubtextStyle.Render("Portfolio not available")
	}

	barsWidth := m.width*2/3 - 2
	if barsWidth < 40 {
		barsWidth = 40
	}
	profileWidth := m.width - barsWidth - 4
	if profileWidth < 24 {
		profileWidth = 24
	}

	barsBox := BorderStyle.Width(barsWidth).Render(m.renderAllocation(barsWidth))
	profileBox := BorderStyle.Width(profileWidth).Render(m.renderProfile())
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, barsBox, profileBox)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, m.renderCards())
}

func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Portfolio is nil until the first fetch succeeds.
func (m DashboardModel) Portfolio() *domain.Portfolio { return m.portfolio }

func (m DashboardModel) renderAllocation(width int) string {
	alloc := m.portfolio.Allocation
	lines := []string{HeaderStyle.Render("  Asset Allocation"), ""}

	barWidth := width - 22
	if barWidth < 10 {
		barWidth = 10
	}
	for _, class := range domain.AssetClasses {
		lines = append(lines, "  "+RenderAllocationBar(class, alloc.Percent(class), barWidth))
	}
	lines = append(lines, "")
	lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  Portfolio %s", m.portfolio.ID)))
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderProfile() string {
	p := m.portfolio.Profile
	lines := []string{
		HeaderStyle.Render("  Investor Profile"),
		"",
		fmt.Sprintf("  Risk tolerance  %5.1f", p.RiskTolerance),
		fmt.Sprintf("  Risk capacity   %5.1f", p.RiskCapacity),
		fmt.Sprintf("  Time horizon    %5.1f", p.TimeHorizon),
		fmt.Sprintf("  Experience      %5.1f", p.Experience),
		fmt.Sprintf("  Cash preference %s", orDash(string(p.CashPreference))),
		"",
		SubtextStyle.Render("  Goals: " + orDash(strings.Join(p.Goals, ", "))),
		SubtextStyle.Render("  Interests: " + orDash(strings.Join(p.Interests, ", "))),
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderCards() string {
	audit := m.portfolio.Allocation.Audit
	cardWidth := m.width/4 - 4
	if cardWidth > 24 {
		cardWidth = 24
	}

	capValue := "not applied"
	if audit.CapApplied {
		capValue = fmt.Sprintf("%.1f%%", audit.EquityCap)
	}
	tier := audit.Tier
	if audit.Interpolated {
		tier += " (blended)"
	}

	cards := []string{
		RenderMetricCard("Risk score", fmt.Sprintf("%.1f", audit.RiskScore), cardWidth),
		RenderMetricCard("Tier", tier, cardWidth),
		RenderMetricCard("Holdings", fmt.Sprintf("%d", m.portfolio.Allocation.HoldingsCount), cardWidth),
		RenderMetricCard("Equity cap", capValue, cardWidth),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m DashboardModel) fetchPortfolioCmd() tea.Cmd {
	id := m.services.PortfolioID
	return func() tea.Msg {
		if m.services.Portfolios == nil {
			return portfolioErrMsg{err: fmt.Errorf("portfolio service not available")}
		}
		p, err := m.services.Portfolios.GetPortfolio(context.Background(), id)
		if err != nil {
			return portfolioErrMsg{err: err}
		}
		return portfolioMsg{portfolio: p}
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
