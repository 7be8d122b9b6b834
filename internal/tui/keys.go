package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Tab       key.Binding
	AddUser   key.Binding
	AddTx     key.Binding
	Delete    key.Binding
	Settle    key.Binding
	SettleUp  key.Binding
	Save      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		AddUser:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "add user")),
		AddTx:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "add transaction")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Settle:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settlement")),
		SettleUp:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "settle up")),
		Save:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddUser, k.AddTx, k.Delete, k.Settle, k.SettleUp, k.Save, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Tab},
		{k.AddUser, k.AddTx, k.Delete},
		{k.Settle, k.SettleUp, k.Save, k.Quit},
	}
}
