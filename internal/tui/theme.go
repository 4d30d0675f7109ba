package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tab bar styles
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	// Asset class colors
	EquityColor = lipgloss.Color("#7D56F4")
	BondsColor  = lipgloss.Color("#00AFFF")
	CashColor   = lipgloss.Color("#00D787")
	OtherColor  = lipgloss.Color("#FFAF00")

	// Fee colors
	FeeLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	FeeMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	FeeHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	// Adjustment deltas
	DeltaUpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	DeltaDownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	DeltaZeroStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	// General styles
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	CardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	SpinnerColor = lipgloss.Color("#7D56F4")

	// Chat styles
	UserMsgStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	AssistantMsgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
)

func assetClassColor(class string) lipgloss.Color {
	switch class {
	case "equity":
		return EquityColor
	case "bonds":
		return BondsColor
	case "cash":
		return CashColor
	default:
		return OtherColor
	}
}
