package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldingsToggleView(t *testing.T) {
	m := NewHoldingsModel(testServices())
	assert.Equal(t, holdingsViewETFs, m.ActiveView())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	assert.Equal(t, holdingsViewAudit, m.ActiveView())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	assert.Equal(t, holdingsViewETFs, m.ActiveView())
}

func TestHoldingsFetchCommands(t *testing.T) {
	m := NewHoldingsModel(testServices())

	holdings, ok := m.fetchHoldingsCmd()().(holdingsMsg)
	require.True(t, ok)
	assert.Len(t, holdings, 2)

	audit, ok := m.fetchAuditCmd()().(auditMsg)
	require.True(t, ok)
	assert.Equal(t, "balanced", audit.Tier)
}

func TestHoldingsViews(t *testing.T) {
	m := NewHoldingsModel(testServices())
	m.SetSize(120, 40)

	m, _ = m.Update(m.fetchHoldingsCmd()())
	m, _ = m.Update(m.fetchAuditCmd()())

	view := m.View()
	assert.Contains(t, view, "VTI")
	assert.Contains(t, view, "Total 100.00%")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'v'}})
	view = m.View()
	assert.Contains(t, view, "long horizon")
	assert.Contains(t, view, "Equity capped at 65.0%")
}

func TestHoldingsError(t *testing.T) {
	svc := testServices()
	svc.Portfolios = &stubPortfolioQuerier{err: errors.New("portfolio not found")}
	m := NewHoldingsModel(svc)

	m, _ = m.Update(m.fetchHoldingsCmd()())
	assert.Contains(t, m.View(), "portfolio not found")
	assert.Nil(t, m.fetchAuditCmd()(), "audit fetch stays silent on error")
}

func TestHoldingsWithoutPortfolio(t *testing.T) {
	svc := testServices()
	svc.PortfolioID = ""
	m := NewHoldingsModel(svc)
	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "No portfolio linked")
}
