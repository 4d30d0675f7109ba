package tui

import (
	"fmt"
	"strings"

	"portfolio-advisor/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ETF explorer message types.
type etfsMsg []domain.ETF
type etfsErrMsg struct{ err error }

var (
	classOptions = []string{"ALL", "equity", "bonds", "cash", "other"}
	tagOptions   = []string{
		"ALL", "core", domain.InterestESG, domain.InterestDividends, domain.InterestTechnology,
		domain.InterestEmergingMarkets, domain.InterestRealEstate, domain.InterestCommodities,
		domain.InterestInfrastructure, "international", "income", "inflation",
	}
)

const etfListLimit = 200

// ETFExplorerModel browses the ETF catalog with asset class and theme filters.
type ETFExplorerModel struct {
	services     Services
	etfs         []domain.ETF
	classIdx     int
	tagIdx       int
	scrollOffset int
	loading      bool
	err          error
	width        int
	height       int
}

// NewETFExplorerModel creates a new ETF explorer model.
func NewETFExplorerModel(svc Services) ETFExplorerModel {
	return ETFExplorerModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial catalog fetch.
func (m ETFExplorerModel) Init() tea.Cmd {
	return m.fetchETFsCmd()
}

func (m ETFExplorerModel) Update(msg tea.Msg) (ETFExplorerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case etfsMsg:
		m.etfs = []domain.ETF(msg)
		m.loading = false
		m.scrollOffset = 0
		m.err = nil
		return m, nil

	case etfsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.FilterClass):
			m.classIdx = (m.classIdx + 1) % len(classOptions)
			m.loading = true
			return m, m.fetchETFsCmd()

		case key.Matches(msg, DefaultKeyMap.FilterTag):
			m.tagIdx = (m.tagIdx + 1) % len(tagOptions)
			m.loading = true
			return m, m.fetchETFsCmd()

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchETFsCmd()

		case msg.String() == "j" || msg.String() == "down":
			if m.scrollOffset < len(m.etfs)-m.visibleRows() {
				m.scrollOffset++
			}
			return m, nil

		case msg.String() == "k" || msg.String() == "up":
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
			return m, nil
		}
	}

	return m, nil
}

// View lists the filtered catalog, one row per ETF.
func (m ETFExplorerModel) View() string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("  ETF Catalog"))
	sections = append(sections, "")
	sections = append(sections, m.renderFilters())
	sections = append(sections, SubtextStyle.Render(rule(m.width)))

	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Loading..."))
		return strings.Join(sections, "\n")
	}
	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}
	if len(m.etfs) == 0 {
		sections = append(sections, SubtextStyle.Render("  No ETFs match the current filters"))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, SubtextStyle.Render(
		fmt.Sprintf("  %-5s %-7s %6s %8s %6s %6s  %s",
			"Ticker", "Class", "Fee", "AUM", "Hold.", "Yield", "Name"),
	))

	maxVisible := m.visibleRows()
	end := min(m.scrollOffset+maxVisible, len(m.etfs))
	for i := m.scrollOffset; i < end; i++ {
		sections = append(sections, "  "+FormatETF(m.etfs[i]))
	}

	if len(m.etfs) > maxVisible {
		sections = append(sections, SubtextStyle.Render(
			fmt.Sprintf("  Showing %d-%d of %d (j/k to scroll)", m.scrollOffset+1, end, len(m.etfs)),
		))
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [c] asset class  [t] theme  [R] refresh  [j/k] scroll"))

	return strings.Join(sections, "\n")
}

func (m *ETFExplorerModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// FilterState returns the selected class and tag indices.
func (m ETFExplorerModel) FilterState() (classIdx, tagIdx int) {
	return m.classIdx, m.tagIdx
}

func (m ETFExplorerModel) ETFCount() int { return len(m.etfs) }

func (m ETFExplorerModel) renderFilters() string {
	classChip := m.renderChip("Class", classOptions, m.classIdx)
	tagChip := m.renderChip("Theme", tagOptions, m.tagIdx)
	return "  " + lipgloss.JoinVertical(lipgloss.Left, classChip, tagChip)
}

func (m ETFExplorerModel) renderChip(label string, options []string, active int) string {
	var parts []string
	parts = append(parts, SubtextStyle.Render(label+": "))
	for i, opt := range options {
		display := strings.ToUpper(opt)
		if len(display) > 8 {
			display = display[:8]
		}
		if i == active {
			parts = append(parts, ActiveTabStyle.Render(display))
		} else {
			parts = append(parts, SubtextStyle.Render(display))
		}
		parts = append(parts, " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m ETFExplorerModel) buildFilter() domain.ETFFilter {
	filter := domain.ETFFilter{Limit: etfListLimit}
	if m.classIdx > 0 && m.classIdx < len(classOptions) {
		filter.AssetClass = domain.AssetClass(classOptions[m.classIdx])
	}
	if m.tagIdx > 0 && m.tagIdx < len(tagOptions) {
		filter.Query = tagOptions[m.tagIdx]
	}
	return filter
}

func (m ETFExplorerModel) fetchETFsCmd() tea.Cmd {
	filter := m.buildFilter()
	return func() tea.Msg {
		if m.services.Catalog == nil {
			return etfsErrMsg{err: fmt.Errorf("etf catalog not available")}
		}
		return etfsMsg(m.services.Catalog.List(filter))
	}
}

func (m ETFExplorerModel) visibleRows() int {
	// header, filters, table header, help footer
	available := m.height - 11
	if available < 5 {
		return 5
	}
	return available
}
