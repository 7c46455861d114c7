package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	// Tracking, available from every view.
	Start key.Binding
	Stop  key.Binding
	Pause key.Binding

	// View actions.
	New      key.Binding
	Vacation key.Binding
	Delete   key.Binding
	Backup   key.Binding
	Export   key.Binding

	Tab1 key.Binding
	Tab2 key.Binding
	Tab3 key.Binding
	Tab4 key.Binding
	Tab5 key.Binding
	Tab  key.Binding

	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Enter key.Binding
	Back  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// bind builds a binding whose help label is its first key unless label is set.
func bind(desc, label string, ks ...string) key.Binding {
	if label == "" {
		label = ks[0]
	}
	return key.NewBinding(key.WithKeys(ks...), key.WithHelp(label, desc))
}

var keys = keyMap{
	Start: bind("start", "", "s"),
	Stop:  bind("stop", "", "x"),
	Pause: bind("pause/resume", "space", " "),

	New:      bind("new", "", "n"),
	Vacation: bind("vacation", "", "v"),
	Delete:   bind("delete", "", "d"),
	Backup:   bind("backup", "", "b"),
	Export:   bind("export", "", "e"),

	Tab1: bind(viewNames[viewDashboard], "", "1"),
	Tab2: bind(viewNames[viewEntries], "", "2"),
	Tab3: bind(viewNames[viewReports], "", "3"),
	Tab4: bind(viewNames[viewTimeOff], "", "4"),
	Tab5: bind(viewNames[viewSettings], "", "5"),
	Tab:  bind("next view", "", "tab"),

	Up:    bind("up", "↑/k", "up", "k"),
	Down:  bind("down", "↓/j", "down", "j"),
	Left:  bind("previous", "←/h", "left", "h"),
	Right: bind("next", "→/l", "right", "l"),
	Enter: bind("select", "", "enter"),
	Back:  bind("back", "", "esc"),
	Help:  bind("help", "", "?"),
	Quit:  bind("quit", "q", "q", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Pause, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Pause},
		{k.New, k.Vacation, k.Delete, k.Export, k.Backup},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5},
		{k.Up, k.Down, k.Left, k.Right, k.Enter, k.Back, k.Quit},
	}
}
