package state

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Read      key.Binding
	Unread    key.Binding
	Archive   key.Binding
	Unarchive key.Binding
	Delete    key.Binding
	ReadAll   key.Binding
	SeenAll   key.Binding
	Refresh   key.Binding
	More      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		Read:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "mark read")),
		Unread:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "mark unread")),
		Archive:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "archive")),
		Unarchive: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "unarchive")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		ReadAll:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "mark all read")),
		SeenAll:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "mark all seen")),
		Refresh:   key.NewBinding(key.WithKeys("g", "ctrl+r"), key.WithHelp("g", "refresh")),
		More:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "load more")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}
