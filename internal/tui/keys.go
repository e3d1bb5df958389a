package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the presenter's bindings. Letter bindings are ignored while
// the terminal prompt has focus.
type KeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Up      key.Binding
	Down    key.Binding
	Submit  key.Binding
	Pick    key.Binding // 1-9: quiz option or results jump
	Scroll  key.Binding
	Restart key.Binding
	Help    key.Binding
	Quit    key.Binding
	Abort   key.Binding
}

var DefaultKeyMap = KeyMap{
	Next: key.NewBinding(
		key.WithKeys("right", "l", "n", "pgdown", " "),
		key.WithHelp("→/n", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("left", "h", "p", "pgup"),
		key.WithHelp("←/p", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "line up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "line down"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Pick: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9", "choose"),
	),
	Scroll: key.NewBinding(
		key.WithKeys("ctrl+u", "ctrl+d"),
		key.WithHelp("C-u/C-d", "scroll"),
	),
	Restart: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "restart"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc"),
		key.WithHelp("q", "quit"),
	),
	Abort: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Pick, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Scroll},
		{k.Pick, k.Up, k.Down, k.Submit},
		{k.Restart, k.Help, k.Quit},
	}
}

// pickIndex maps a digit key to a zero-based index.
func pickIndex(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}
