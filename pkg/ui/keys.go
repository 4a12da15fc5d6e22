package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding. Which ones are live depends on the sidebar
// phase; help.Model only shows the ones that are enabled.
type keyMap struct {
	// global
	Quit    key.Binding
	Help    key.Binding
	Export  key.Binding
	Sidebar key.Binding

	// grid
	Left   key.Binding
	Right  key.Binding
	Up     key.Binding
	Down   key.Binding
	Remove key.Binding
	Copy   key.Binding

	// sidebar
	NextCategory key.Binding
	Toggle       key.Binding
	Delete       key.Binding
	NewCard      key.Binding

	// draft form
	NextInput   key.Binding
	PrevInput   key.Binding
	ChartPrev   key.Binding
	ChartNext   key.Binding
	Category    key.Binding
	AddField    key.Binding
	RemoveField key.Binding
	Commit      key.Binding
	Close       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Sidebar: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add widget")),

		Left:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/l", "move")),
		Right:  key.NewBinding(key.WithKeys("l", "right")),
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "move")),
		Down:   key.NewBinding(key.WithKeys("j", "down")),
		Remove: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy data")),

		NextCategory: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab/1-9", "category")),
		Toggle:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete selected")),
		NewCard:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new card")),

		NextInput:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		PrevInput:   key.NewBinding(key.WithKeys("shift+tab")),
		ChartPrev:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "chart type")),
		ChartNext:   key.NewBinding(key.WithKeys("right")),
		Category:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "switch category")),
		AddField:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add field")),
		RemoveField: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "remove field")),
		Commit:      key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "add card")),
		Close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// phaseKeys is the help.KeyMap for one sidebar phase.
type phaseKeys struct {
	short []key.Binding
}

func (p phaseKeys) ShortHelp() []key.Binding  { return p.short }
func (p phaseKeys) FullHelp() [][]key.Binding { return [][]key.Binding{p.short} }

func (k keyMap) gridHelp() phaseKeys {
	return phaseKeys{[]key.Binding{k.Left, k.Up, k.Remove, k.Copy, k.Sidebar, k.Export, k.Help, k.Quit}}
}

func (k keyMap) browseHelp() phaseKeys {
	return phaseKeys{[]key.Binding{k.NextCategory, k.Close, k.Help, k.Quit}}
}

func (k keyMap) categoryHelp() phaseKeys {
	return phaseKeys{[]key.Binding{k.NextCategory, k.Up, k.Toggle, k.Delete, k.NewCard, k.Close}}
}

func (k keyMap) draftHelp() phaseKeys {
	return phaseKeys{[]key.Binding{k.NextInput, k.ChartPrev, k.Category, k.AddField, k.RemoveField, k.Commit, k.Close}}
}
