package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all dashboard key bindings with built-in help text.
type KeyMap struct {
	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Help      key.Binding
	Escape    key.Binding
	Refresh   key.Binding

	// Navigation
	NextSection key.Binding
	PrevSection key.Binding
	Up          key.Binding
	Down        key.Binding
	NextView    key.Binding
	PrevView    key.Binding

	// Actions
	Details      key.Binding
	Consolidate  key.Binding
	GenerateMXML key.Binding
	Push         key.Binding
	Delete       key.Binding
	Process      key.Binding
	DemoConfig   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh now"),
		),

		NextSection: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next deck"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev deck"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextView: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev view"),
		),

		Details: key.NewBinding(
			key.WithKeys("enter", "i"),
			key.WithHelp("enter/i", "import details"),
		),
		Consolidate: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "consolidate"),
		),
		GenerateMXML: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate MXML"),
		),
		Push: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "push to Murex"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete import"),
		),
		Process: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "process pending"),
		),
		DemoConfig: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "demo config"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextSection, k.NextView, k.Details, k.Consolidate, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextSection, k.PrevSection, k.NextView, k.PrevView},
		{k.Details, k.Consolidate, k.GenerateMXML, k.Push, k.Delete, k.Process},
		{k.DemoConfig, k.Refresh, k.Help, k.Escape, k.Quit, k.ForceQuit},
	}
}
