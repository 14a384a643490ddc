package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	play  key.Binding
	pause key.Binding
	like  key.Binding
	tab   key.Binding
	yes   key.Binding
	no    key.Binding
	open  key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		play:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		pause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause/resume")),
		like:  key.NewBinding(key.WithKeys("l", "enter"), key.WithHelp("l/enter", "toggle like")),
		tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch list")),
		yes:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "keep listening")),
		no:    key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "stop")),
		open:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open platform link")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.tab},
		{k.play, k.pause, k.like},
		{k.yes, k.no, k.open},
		{k.quit},
	}
}
