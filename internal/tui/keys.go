package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Run        key.Binding
	ToggleMode key.Binding
	SwitchSlot key.Binding
	OpenFile   key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Run:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "analyse")),
		ToggleMode: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "switch mode")),
		SwitchSlot: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next text")),
		OpenFile:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "load .txt/.docx")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close prompt")),
		Help:       key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Run, k.ToggleMode, k.OpenFile, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Run, k.ToggleMode, k.SwitchSlot},
		{k.OpenFile, k.Cancel},
		{k.Help, k.Quit},
	}
}
