package tui

import (
	"github.com/billie-coop/fasttrack/internal/tui/components/dialog"
	"github.com/charmbracelet/bubbles/v2/key"
)

// KeyMap is the console's key bindings.
type KeyMap struct {
	// Navigation
	NextPane key.Binding
	PrevPane key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Queue
	Add    key.Binding
	Remove key.Binding
	Clear  key.Binding
	Commit key.Binding

	// Session
	ToggleMode key.Binding
	DateFilter key.Binding
	Reload     key.Binding
	ClearInput key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous pane"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "["),
			key.WithHelp("pgup/[", "previous page"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "]"),
			key.WithHelp("pgdn/]", "next page"),
		),
		Add: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add to queue"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x/del", "remove from queue"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "clear queue"),
		),
		Commit: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "process queue"),
		),
		ToggleMode: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "switch mode"),
		),
		DateFilter: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "filter by date"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload list"),
		),
		ClearInput: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp is the one-line hint under the panels.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPane, k.Add, k.Commit, k.ToggleMode, k.DateFilter, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPane, k.PrevPane, k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Add, k.Remove, k.Clear, k.Commit},
		{k.ToggleMode, k.DateFilter, k.Reload, k.ClearInput, k.Help, k.Quit},
	}
}

// helpSections groups FullHelp for the help dialog.
func (k KeyMap) helpSections() []dialog.HelpSection {
	titles := []string{"Moving around", "Queue", "Session"}
	groups := k.FullHelp()
	sections := make([]dialog.HelpSection, len(groups))
	for i, g := range groups {
		sections[i] = dialog.HelpSection{Title: titles[i], Bindings: g}
	}
	return sections
}
