package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardUpdatePortfolioMsg(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(portfolioMsg{portfolio: testPortfolio()})
	require.NotNil(t, updated.Portfolio())
	assert.Equal(t, testPortfolioID, updated.Portfolio().ID)
}

func TestDashboardFetchCommand(t *testing.T) {
	cmd := NewDashboardModel(testServices()).Init()
	require.NotNil(t, cmd)

	msg, ok := cmd().(portfolioMsg)
	require.True(t, ok)
	assert.NotNil(t, msg.portfolio)
}

func TestDashboardNoFetchWithoutPortfolio(t *testing.T) {
	svc := testServices()
	svc.PortfolioID = ""
	assert.Nil(t, NewDashboardModel(svc).Init())
}

func TestDashboardViewError(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(portfolioErrMsg{err: errors.New("portfolio not found")})
	assert.Contains(t, updated.View(), "portfolio not found")
}

func TestDashboardViewWithData(t *testing.T) {
	m := NewDashboardModel(testServices())
	m.SetSize(120, 40)
	m.portfolio = testPortfolio()
	m.loading = false

	view := m.View()
	for _, want := range []string{"Asset Allocation", "Investor Profile", "balanced (blended)", "65.0%"} {
		assert.Contains(t, view, want)
	}
}
