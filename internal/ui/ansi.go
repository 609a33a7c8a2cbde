package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// SetColorForcing overrides fatih/color's terminal detection.
func SetColorForcing(force, disable bool) {
	switch {
	case disable:
		color.NoColor = true
	case force:
		color.NoColor = false
	}
}

// OK prints a success line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Sprint(t.SymOK+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Sprint(t.SymFail+" "+msg))
}

// Muted prints a dimmed line.
func Muted(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Muted.Sprint(msg))
}
