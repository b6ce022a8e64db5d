package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard bindings outside of terminal input capture.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Enter      key.Binding
	NewTerm    key.Binding
	Quit       key.Binding
	Back       key.Binding
	NextTerm   key.Binding
	CloseTerm  key.Binding
	Fullscreen key.Binding
	Layout     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev server"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next server"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open terminal"),
		),
		NewTerm: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "new terminal"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "server list"),
		),
		NextTerm: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next session"),
		),
		CloseTerm: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "close session"),
		),
		Fullscreen: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "fullscreen"),
		),
		Layout: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "cycle layout"),
		),
	}
}
