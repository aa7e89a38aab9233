package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit         key.Binding
	refresh      key.Binding
	toggleHelp   key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	open         key.Binding
	back         key.Binding
	copyTask     key.Binding
	filter       key.Binding
	toggleClosed key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		toggleHelp:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open board")),
		back:         key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b/esc", "back")),
		copyTask:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy task")),
		filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		toggleClosed: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle closed")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.open, k.back, k.refresh, k.filter, k.copyTask, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.open, k.back, k.refresh, k.toggleClosed, k.toggleHelp, k.quit},
		{k.moveUp, k.moveDown, k.filter, k.copyTask},
	}
}
