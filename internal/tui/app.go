package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab represents a screen tab in the TUI.
type Tab int

const (
	TabDashboard Tab = iota
	TabChat
	TabETFs
	TabHoldings
)

var tabNames = []string{"1:Allocation", "2:Chat", "3:ETFs", "4:Holdings"}

const tabBarHeight = 2

// AppModel is the root Bubble Tea model for an SSH session. It owns the tab
// bar and routes async results to the screen that requested them.
type AppModel struct {
	services  Services
	activeTab Tab
	dashboard DashboardModel
	chat      ChatModel
	etfs      ETFExplorerModel
	holdings  HoldingsModel
	width     int
	height    int
	quitting  bool
}

// NewAppModel creates the root application model with all child screens.
func NewAppModel(svc Services) AppModel {
	return AppModel{
		services:  svc,
		activeTab: TabDashboard,
		dashboard: NewDashboardModel(svc),
		chat:      NewChatModel(svc),
		etfs:      NewETFExplorerModel(svc),
		holdings:  NewHoldingsModel(svc),
	}
}

// Init starts every screen's initial fetch.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.dashboard.Init(), m.chat.Init(), m.etfs.Init(), m.holdings.Init())
}

// Update handles window, navigation and async result messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		if handled, cmd := m.handleNavigation(msg); handled {
			return m, cmd
		}
	}

	if tab, ok := resultOwner(msg); ok {
		return m.forward(tab, msg)
	}
	return m.forward(m.activeTab, msg)
}

// resultOwner maps an async result to the screen whose command produced it.
func resultOwner(msg tea.Msg) (Tab, bool) {
	switch msg.(type) {
	case portfolioMsg, portfolioErrMsg:
		return TabDashboard, true
	case historyMsg, advisorReplyMsg, advisorErrMsg:
		return TabChat, true
	case etfsMsg, etfsErrMsg:
		return TabETFs, true
	case holdingsMsg, auditMsg, holdingsErrMsg:
		return TabHoldings, true
	}
	return 0, false
}

// handleNavigation applies global keys. The chat input keeps letters and
// digits, so only tab cycling and ctrl+c work there.
func (m *AppModel) handleNavigation(msg tea.KeyMsg) (bool, tea.Cmd) {
	inChat := m.activeTab == TabChat

	switch {
	case msg.String() == "ctrl+c", !inChat && key.Matches(msg, DefaultKeyMap.Quit):
		m.quitting = true
		return true, tea.Quit
	case key.Matches(msg, DefaultKeyMap.Tab):
		m.switchTab(Tab((int(m.activeTab) + 1) % len(tabNames)))
		return true, nil
	case key.Matches(msg, DefaultKeyMap.ShiftTab):
		m.switchTab(Tab((int(m.activeTab) + len(tabNames) - 1) % len(tabNames)))
		return true, nil
	}

	if inChat || msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return false, nil
	}
	if n := int(msg.Runes[0] - '1'); n >= 0 && n < len(tabNames) {
		m.switchTab(Tab(n))
		return true, nil
	}
	return false, nil
}

func (m AppModel) forward(tab Tab, msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch tab {
	case TabDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case TabChat:
		m.chat, cmd = m.chat.Update(msg)
	case TabETFs:
		m.etfs, cmd = m.etfs.Update(msg)
	case TabHoldings:
		m.holdings, cmd = m.holdings.Update(msg)
	}
	return m, cmd
}

// View renders the tab bar and active screen.
func (m AppModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var content string
	switch m.activeTab {
	case TabDashboard:
		content = m.dashboard.View()
	case TabChat:
		content = m.chat.View()
	case TabETFs:
		content = m.etfs.View()
	case TabHoldings:
		content = m.holdings.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabBar(), content)
}

// SetSize updates dimensions on the root model and every screen.
func (m *AppModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	contentHeight := h - tabBarHeight
	m.dashboard.SetSize(w, contentHeight)
	m.chat.SetSize(w, contentHeight)
	m.etfs.SetSize(w, contentHeight)
	m.holdings.SetSize(w, contentHeight)
}

func (m AppModel) ActiveTab() Tab { return m.activeTab }

func (m *AppModel) switchTab(tab Tab) {
	if m.activeTab == TabChat && tab != TabChat {
		m.chat.Blur()
	}
	if tab == TabChat && m.activeTab != TabChat {
		m.chat.Focus()
	}
	m.activeTab = tab
}

func (m AppModel) renderTabBar() string {
	tabs := make([]string, 0, len(tabNames)+1)
	for i, name := range tabNames {
		style := InactiveTabStyle
		if Tab(i) == m.activeTab {
			style = ActiveTabStyle
		}
		tabs = append(tabs, style.Render(name))
	}
	if m.services.Username != "" {
		tabs = append(tabs, SubtextStyle.Render("  "+m.services.Username))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
