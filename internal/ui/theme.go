// Package ui renders plain (non-TUI) terminal output for the CLI commands.
package ui

import (
	"strings"

	"github.com/fatih/color"

	"github.com/idilsaglam/notehub/internal/model"
)

// Theme bundles palette, symbols and box borders.
// All helpers pull from current.
type Theme struct {
	Name                                   string
	Title, Muted, Accent                   *color.Color
	Success, Error, Pending                *color.Color
	Tags                                   map[model.Tag]*color.Color
	CornerTL, CornerTR, CornerBL, CornerBR string
	H, V                                   string
	SymOK, SymFail, Bullet                 string
	DotOn, DotOff                          string
}

var current = themeFor("classic")

// SetTheme selects classic, neon or mono. Unknown names fall back to classic.
func SetTheme(name string) { current = themeFor(name) }

// Current returns the active theme.
func Current() Theme { return current }

func themeFor(name string) Theme {
	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Name:    "neon",
			Title:   color.New(color.FgHiMagenta, color.Bold),
			Muted:   color.New(color.FgHiBlack),
			Accent:  color.New(color.FgHiCyan),
			Success: color.New(color.FgHiGreen),
			Error:   color.New(color.FgHiRed),
			Pending: color.New(color.FgHiYellow),
			Tags: map[model.Tag]*color.Color{
				model.TagTodo:     color.New(color.FgHiCyan),
				model.TagWork:     color.New(color.FgHiBlue),
				model.TagPersonal: color.New(color.FgHiMagenta),
				model.TagMeeting:  color.New(color.FgHiYellow),
				model.TagShopping: color.New(color.FgHiGreen),
			},
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			SymOK: "✔", SymFail: "✖", Bullet: "•",
			DotOn: "●", DotOff: "○",
		}
	case "mono":
		t := Theme{
			Name: "mono",
			Tags: map[model.Tag]*color.Color{},
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymOK: "ok", SymFail: "x", Bullet: "-",
			DotOn: "#", DotOff: ".",
		}
		t.Title, t.Muted, t.Accent = plain(), plain(), plain()
		t.Success, t.Error, t.Pending = plain(), plain(), plain()
		for _, tag := range model.Tags {
			t.Tags[tag] = plain()
		}
		return t
	default:
		return Theme{
			Name:    "classic",
			Title:   color.New(color.Bold),
			Muted:   color.New(color.FgHiBlack),
			Accent:  color.New(color.FgBlue),
			Success: color.New(color.FgGreen),
			Error:   color.New(color.FgRed),
			Pending: color.New(color.FgYellow),
			Tags: map[model.Tag]*color.Color{
				model.TagTodo:     color.New(color.FgCyan),
				model.TagWork:     color.New(color.FgBlue),
				model.TagPersonal: color.New(color.FgMagenta),
				model.TagMeeting:  color.New(color.FgYellow),
				model.TagShopping: color.New(color.FgGreen),
			},
			CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
			H: "─", V: "│",
			SymOK: "✔", SymFail: "✖", Bullet: "•",
			DotOn: "●", DotOff: "○",
		}
	}
}

func plain() *color.Color {
	c := color.New()
	c.DisableColor()
	return c
}
