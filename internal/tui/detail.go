package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/idilsaglam/notehub/internal/model"
)

// detailRenderer turns the selected note into Markdown and renders it with
// glamour. Output is memoized per note and width.
type detailRenderer struct {
	style  string
	logger *slog.Logger

	width    int
	renderer *glamour.TermRenderer
	cache    map[int]string
}

func newDetailRenderer(style string, logger *slog.Logger) *detailRenderer {
	if style == "" {
		style = "dark"
	}
	return &detailRenderer{style: style, logger: logger, cache: map[int]string{}}
}

func noteMarkdown(n model.Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", n.Title)
	fmt.Fprintf(&b, "`%s`", n.Tag)
	if n.CreatedAt != nil {
		fmt.Fprintf(&b, " · created %s", n.CreatedAt.Format("2006-01-02 15:04"))
	}
	b.WriteString("\n\n")
	if strings.TrimSpace(n.Content) == "" {
		b.WriteString("_No content._\n")
	} else {
		b.WriteString(n.Content + "\n")
	}
	return b.String()
}

func (d *detailRenderer) render(n model.Note, width int) string {
	if width < 10 {
		width = 10
	}
	if width != d.width || d.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(d.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			d.logger.Warn("glamour init failed", slog.String("error", err.Error()))
			return noteMarkdown(n)
		}
		d.renderer, d.width = r, width
		clear(d.cache)
	}
	if out, ok := d.cache[n.ID]; ok {
		return out
	}
	out, err := d.renderer.Render(noteMarkdown(n))
	if err != nil {
		d.logger.Debug("render note", slog.Int("id", n.ID), slog.String("error", err.Error()))
		return noteMarkdown(n)
	}
	out = strings.Trim(out, "\n")
	d.cache[n.ID] = out
	return out
}

// forget drops cached output after the list content changed.
func (d *detailRenderer) forget() { clear(d.cache) }
