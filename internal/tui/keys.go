package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the triage keybindings, grouped for the help screen
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	Keep    key.Binding
	Decline key.Binding
	Unmark  key.Binding

	CycleFilter   key.Binding
	HideProcessed key.Binding
	NameFilter    key.Binding

	Preview          key.Binding
	ExportKept       key.Binding
	ExportNotDecline key.Binding
	DeleteDeclined   key.Binding

	Back key.Binding
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:      key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "first item")),
		Bottom:   key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "last item")),
		PrevPage: key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "previous page")),
		NextPage: key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "next page")),

		Keep:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "keep")),
		Decline: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "decline")),
		Unmark:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "clear mark")),

		CycleFilter:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle filter mode")),
		HideProcessed: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "toggle hide processed")),
		NameFilter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter by name")),

		Preview:          key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "preview")),
		ExportKept:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export kept")),
		ExportNotDecline: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export all but declined")),
		DeleteDeclined:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete declined")),

		Back: key.NewBinding(key.WithKeys("h", "esc", "backspace"), key.WithHelp("h/esc", "back")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
