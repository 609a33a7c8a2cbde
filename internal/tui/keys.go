package tui

import "github.com/charmbracelet/bubbles/key"

type listKeys struct {
	Up, Down   key.Binding
	Search     key.Binding
	New        key.Binding
	Delete     key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	Refresh    key.Binding
	Yank       key.Binding
	Quit       key.Binding
	ForceQuit  key.Binding
	LeaveInput key.Binding
}

var keys = listKeys{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	PrevPage:   key.NewBinding(key.WithKeys("left", "["), key.WithHelp("←/[", "prev page")),
	NextPage:   key.NewBinding(key.WithKeys("right", "]"), key.WithHelp("→/]", "next page")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
	Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
	LeaveInput: key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc/enter", "done")),
}

func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.New, k.Delete, k.PrevPage, k.NextPage, k.Refresh, k.Yank, k.Quit}
}

type formKeys struct {
	Next, Prev key.Binding
	TagLeft    key.Binding
	TagRight   key.Binding
	Submit     key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
}

var fkeys = formKeys{
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
	TagLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev tag")),
	TagRight: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next tag")),
	Submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "create")),
	Confirm:  key.NewBinding(key.WithKeys("enter")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.TagLeft, k.TagRight, k.Submit, k.Cancel}
}
