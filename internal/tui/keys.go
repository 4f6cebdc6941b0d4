package tui

import "github.com/charmbracelet/bubbles/v2/key"

// KeyMap defines the queue screen bindings
type KeyMap struct {
	Focus  key.Binding
	Pop    key.Binding
	Submit key.Binding
	Cancel key.Binding
	Import key.Binding
	Export key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Focus: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "new task"),
		),
		Pop: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "pop next"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp lists the bindings shown in the footer
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Pop, k.Import, k.Export, k.Quit}
}
