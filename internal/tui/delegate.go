package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/notehub/internal/model"
)

// noteItem adapts model.Note to list.Item.
type noteItem struct{ note model.Note }

func (i noteItem) FilterValue() string { return i.note.Title }

// noteDelegate renders one row per note. The row being deleted is marked and
// cannot be deleted again until the request settles.
type noteDelegate struct {
	deleting int
	width    int
}

func (d noteDelegate) Height() int                         { return 1 }
func (d noteDelegate) Spacing() int                        { return 0 }
func (d noteDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d noteDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(noteItem)
	if !ok {
		return
	}
	n := it.note

	tag := fmt.Sprintf("[%s]", n.Tag)
	right := tagStyle(n.Tag).Render(tag)
	if d.deleting != 0 && n.ID == d.deleting {
		tag = "Deleting..."
		right = pendingStyle.Render(tag)
	}

	// "> " prefix + title + space + tag
	room := d.width - 2 - runewidth.StringWidth(tag) - 1
	title := n.Title
	if room > 0 {
		title = runewidth.Truncate(title, room, "…")
		title = runewidth.FillRight(title, room)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
		title = titleStyle.Render(title)
	}
	fmt.Fprintf(w, "%s%s %s", prefix, title, right)
}

func toItems(notes []model.Note) []list.Item {
	items := make([]list.Item, len(notes))
	for i, n := range notes {
		items[i] = noteItem{note: n}
	}
	return items
}
