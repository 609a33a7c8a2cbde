package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"

	"github.com/idilsaglam/notehub/internal/model"
)

// Panel draws a framed box around lines using the current theme. Widths are
// measured without escape sequences.
func Panel(w io.Writer, lines []string) {
	t := Current()
	maxw := 0
	for _, ln := range lines {
		maxw = max(maxw, ansi.StringWidth(ln))
	}
	fmt.Fprintln(w, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		pad := strings.Repeat(" ", maxw-ansi.StringWidth(ln))
		fmt.Fprintln(w, t.V+" "+ln+pad+" "+t.V)
	}
	fmt.Fprintln(w, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}

// PageDots renders page out of total as a row of dots. It is empty when there
// is at most one page.
func PageDots(page, total int) string {
	if total <= 1 {
		return ""
	}
	t := Current()
	var b strings.Builder
	for i := 1; i <= total; i++ {
		if i > 1 {
			b.WriteByte(' ')
		}
		if i == page {
			b.WriteString(t.Accent.Sprint(t.DotOn))
		} else {
			b.WriteString(t.Muted.Sprint(t.DotOff))
		}
	}
	return b.String()
}

// NoteLine formats one note for the list panel, truncated to width.
func NoteLine(n model.Note, width int) string {
	t := Current()
	tag := t.Muted.Sprint("[") + tagColor(n.Tag).Sprint(string(n.Tag)) + t.Muted.Sprint("]")
	line := fmt.Sprintf("%s %s %s", t.Muted.Sprintf("%4d", n.ID), tag, t.Title.Sprint(n.Title))
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}

func tagColor(tag model.Tag) *color.Color {
	if c, ok := Current().Tags[tag]; ok {
		return c
	}
	return Current().Accent
}
