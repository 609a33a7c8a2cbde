package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/notehub/internal/app"
	"github.com/idilsaglam/notehub/internal/query"
)

// Run starts the browser in the alternate screen and blocks until the user
// quits. Cache changes made by background refetches are forwarded into the
// program so the screen follows them.
func Run(svc *app.NoteService, cfg Config, opts ...tea.ProgramOption) error {
	m := New(svc, cfg)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(m.ctx)}, opts...)
	p := tea.NewProgram(m, opts...)

	// p.Send blocks until the event loop reads the message.
	m.out.attach(func(msg tea.Msg) { go p.Send(msg) })
	cancel := svc.Cache().Subscribe(func(k query.Key) {
		m.out.Send(entryUpdatedMsg{key: k})
	})
	defer cancel()

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
