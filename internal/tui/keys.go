package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines key bindings used across the TUI.
type KeyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Quit     key.Binding
	Refresh  key.Binding

	// ETF explorer filters
	FilterClass key.Binding
	FilterTag   key.Binding

	// Holdings view toggle
	ToggleView key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh:  key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),

	FilterClass: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle asset class")),
	FilterTag:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle theme")),

	ToggleView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle view")),
}
