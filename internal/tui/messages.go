package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/notehub/internal/listing"
	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/query"
)

type (
	// entryUpdatedMsg is posted by the cache subscription when any entry changes.
	entryUpdatedMsg struct{ key query.Key }

	// listLoadedMsg carries the result of a fetch started by the view.
	listLoadedMsg struct {
		key   query.Key
		entry query.Entry
		err   error
	}

	searchSettledMsg listing.Settled

	createdMsg struct {
		note *model.Note
		err  error
	}

	deletedMsg struct {
		id   int
		note *model.Note
		err  error
	}

	toastMsg struct {
		text    string
		isError bool
	}

	toastExpiredMsg struct{ id int }
)

// tickFunc matches tea.Tick.
type tickFunc func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
