// Package tui is the interactive notes browser: a paged, searchable list with
// a Markdown detail pane and a create-note modal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/notehub/internal/app"
	"github.com/idilsaglam/notehub/internal/debounce"
	"github.com/idilsaglam/notehub/internal/listing"
	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/notehub"
	"github.com/idilsaglam/notehub/internal/query"
)

const unauthorizedToast = "Missing or invalid NoteHub token. Set NOTEHUB_TOKEN or run `notehub auth login`."

// Config tunes the browser.
type Config struct {
	SearchDebounce time.Duration
	ToastDuration  time.Duration
	MarkdownStyle  string
	Logger         *slog.Logger
	// Context bounds every request started by the view.
	Context context.Context

	// SearchAfterFunc replaces the debounce timer.
	SearchAfterFunc debounce.AfterFunc
	// Tick replaces tea.Tick for toast expiry.
	Tick tickFunc
	// Copy replaces the system clipboard.
	Copy func(string) error
}

// sender forwards messages from other goroutines into the program once it is
// attached.
type sender struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (s *sender) Send(msg tea.Msg) {
	s.mu.Lock()
	fn := s.send
	s.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

func (s *sender) attach(fn func(tea.Msg)) {
	s.mu.Lock()
	s.send = fn
	s.mu.Unlock()
}

// Model is the bubbletea model of the browser.
type Model struct {
	svc    *app.NoteService
	ctrl   *listing.Controller
	out    *sender
	logger *slog.Logger
	ctx    context.Context

	list    list.Model
	search  textinput.Model
	pager   paginator.Model
	spinner spinner.Model
	help    help.Model
	detail  *detailRenderer
	form    noteForm

	searching bool
	shown     *model.NotesPage
	listErr   error
	deniedErr bool
	deleting  int

	observed query.Key
	release  func()

	toast         string
	toastIsError  bool
	toastID       int
	toastDuration time.Duration
	tick          tickFunc
	copy          func(string) error

	width, height int
}

// New builds the browser on top of svc.
func New(svc *app.NoteService, cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = 3 * time.Second
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Tick == nil {
		cfg.Tick = tea.Tick
	}
	if cfg.Copy == nil {
		cfg.Copy = clipboard.WriteAll
	}

	out := &sender{}
	opts := []listing.Option{listing.WithDelay(cfg.SearchDebounce)}
	if cfg.SearchAfterFunc != nil {
		opts = append(opts, listing.WithAfterFunc(cfg.SearchAfterFunc))
	}
	ctrl := listing.New(svc.PageSize(), func(s listing.Settled) {
		out.Send(searchSettledMsg(s))
	}, opts...)

	l := list.New(nil, noteDelegate{}, 40, 12)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search notes"
	search.Cursor.SetMode(cursor.CursorStatic)

	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.ArabicFormat = "Page %d of %d"
	pager.TotalPages = 1

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	m := Model{
		svc:           svc,
		ctrl:          ctrl,
		out:           out,
		logger:        cfg.Logger,
		ctx:           cfg.Context,
		list:          l,
		search:        search,
		pager:         pager,
		spinner:       sp,
		help:          help.New(),
		detail:        newDetailRenderer(cfg.MarkdownStyle, cfg.Logger),
		form:          newNoteForm(),
		release:       func() {},
		toastDuration: cfg.ToastDuration,
		tick:          cfg.Tick,
		copy:          cfg.Copy,
	}
	m.observe()
	return m
}

// Close stops the search timer and the cache observation.
func (m Model) Close() {
	m.ctrl.Close()
	m.release()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(m.ctrl.Key()))
}

// observe moves the cache observation to the controller's key so that
// invalidations refetch what is on screen.
func (m *Model) observe() {
	key := m.ctrl.Key()
	if key == m.observed {
		return
	}
	m.release()
	m.release = m.svc.Cache().Observe(key)
	m.observed = key
}

// fetch observes and loads the controller's current key.
func (m *Model) fetch() tea.Cmd {
	m.observe()
	return m.load(m.ctrl.Key())
}

func (m Model) load(key query.Key) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		e, err := svc.List(ctx, key)
		return listLoadedMsg{key: key, entry: e, err: err}
	}
}

// sync copies the cache entry of the displayed key into the view. While the
// key has no data yet the previous page stays on screen.
func (m *Model) sync() tea.Cmd {
	e, ok := m.svc.Cache().Peek(m.ctrl.Key())
	if !ok {
		return nil
	}
	switch {
	case e.Status == query.StatusError:
		m.shown = nil
		m.list.SetItems(nil)
		if errors.Is(e.Err, notehub.ErrUnauthorized) {
			wasDenied := m.deniedErr
			m.listErr, m.deniedErr = nil, true
			if wasDenied {
				return nil
			}
			return m.showToast(unauthorizedToast, true)
		}
		m.listErr, m.deniedErr = e.Err, false
		return nil
	case e.Data != nil:
		m.listErr, m.deniedErr = nil, false
		if m.shown != e.Data {
			m.shown = e.Data
			m.list.SetItems(toItems(e.Data.Notes))
			m.detail.forget()
		}
		m.ctrl.ObservePage(e.Data)
		// The page can vanish under us, e.g. when its last note is deleted.
		if last := max(m.ctrl.PageCount(), 1); m.ctrl.Page() > last {
			m.ctrl.SetPage(last)
			m.list.Select(0)
			m.syncPager()
			return m.fetch()
		}
		m.syncPager()
	}
	return nil
}

func (m *Model) syncPager() {
	m.pager.TotalPages = max(m.ctrl.PageCount(), 1)
	m.pager.Page = min(max(m.ctrl.Page()-1, 0), m.pager.TotalPages-1)
}

func (m *Model) setDeleting(id int) {
	m.deleting = id
	m.list.SetDelegate(noteDelegate{deleting: id, width: m.listWidth()})
}

func (m *Model) showToast(text string, isError bool) tea.Cmd {
	m.toast, m.toastIsError = text, isError
	m.toastID++
	id := m.toastID
	return m.tick(m.toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m Model) selected() (model.Note, bool) {
	it, ok := m.list.SelectedItem().(noteItem)
	return it.note, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(m.listWidth(), m.listHeight())
		m.list.SetDelegate(noteDelegate{deleting: m.deleting, width: m.listWidth()})
		m.search.Width = max(m.listWidth()-4, 10)
		m.form.setWidth(m.width - 10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listLoadedMsg:
		if msg.key != m.ctrl.Key() {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Debug("list fetch failed", slog.String("key", msg.key.String()), slog.String("error", msg.err.Error()))
		}
		return m, m.sync()

	case entryUpdatedMsg:
		if msg.key != m.ctrl.Key() {
			return m, nil
		}
		return m, m.sync()

	case searchSettledMsg:
		if m.ctrl.ApplySettled(listing.Settled(msg)) {
			m.logger.Debug("search applied", slog.String("search", msg.Value))
			m.list.Select(0)
			m.syncPager()
			return m, tea.Batch(m.fetch(), m.sync())
		}
		return m, nil

	case createdMsg:
		m.form.submitting = false
		if msg.err != nil {
			if errors.Is(msg.err, notehub.ErrUnauthorized) {
				return m, m.showToast(unauthorizedToast, true)
			}
			m.form.serverErr = "Failed to create note: " + notehub.Message(msg.err)
			return m, nil
		}
		m.ctrl.CloseCreate()
		m.form.reset()
		return m, tea.Batch(m.showToast(fmt.Sprintf("Created %q", msg.note.Title), false), m.fetch())

	case deletedMsg:
		m.setDeleting(0)
		if msg.err != nil {
			text := "Failed to delete note: " + notehub.Message(msg.err)
			if errors.Is(msg.err, notehub.ErrUnauthorized) {
				text = unauthorizedToast
			}
			return m, m.showToast(text, true)
		}
		return m, tea.Batch(m.showToast(fmt.Sprintf("Deleted %q", msg.note.Title), false), m.fetch())

	case toastMsg:
		return m, m.showToast(msg.text, msg.isError)

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.ctrl.CreateOpen() {
			return m.updateForm(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Search):
		m.searching = true
		m.search.Focus()
		return m, nil

	case key.Matches(msg, keys.New):
		m.ctrl.OpenCreate()
		m.form.reset()
		return m, nil

	case key.Matches(msg, keys.Delete):
		n, ok := m.selected()
		if !ok || n.ID == m.deleting {
			return m, nil
		}
		if m.deleting != 0 {
			return m, m.showToast("Another note is still being deleted", true)
		}
		m.setDeleting(n.ID)
		svc, ctx := m.svc, m.ctx
		return m, func() tea.Msg {
			out, err := svc.Delete(ctx, n.ID)
			if out == nil {
				out = &n
			}
			return deletedMsg{id: n.ID, note: out, err: err}
		}

	case key.Matches(msg, keys.PrevPage), key.Matches(msg, keys.NextPage):
		if !m.ctrl.ShowPagination() {
			return m, nil
		}
		before := m.pager.Page
		if key.Matches(msg, keys.PrevPage) {
			m.pager.PrevPage()
		} else {
			m.pager.NextPage()
		}
		if m.pager.Page == before {
			return m, nil
		}
		m.ctrl.SetPage(m.pager.Page + 1)
		m.list.Select(0)
		return m, tea.Batch(m.fetch(), m.sync())

	case key.Matches(msg, keys.Refresh):
		m.svc.Refresh()
		return m, m.fetch()

	case key.Matches(msg, keys.Yank):
		n, ok := m.selected()
		if !ok {
			return m, nil
		}
		copyFn := m.copy
		return m, func() tea.Msg {
			if err := copyFn(n.Content); err != nil {
				return toastMsg{text: "Copy failed: " + err.Error(), isError: true}
			}
			return toastMsg{text: fmt.Sprintf("Copied %q", n.Title)}
		}

	case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.LeaveInput) {
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != before {
		m.ctrl.SetSearch(v)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		cmd    tea.Cmd
		action formAction
	)
	m.form, cmd, action = m.form.update(msg)
	switch action {
	case formCancel:
		m.ctrl.CloseCreate()
		m.form.reset()
		return m, nil
	case formSubmit:
		m.form.serverErr = ""
		if !m.form.validate() {
			return m, nil
		}
		m.form.submitting = true
		params := m.form.params()
		svc, ctx := m.svc, m.ctx
		return m, func() tea.Msg {
			n, err := svc.Create(ctx, params)
			return createdMsg{note: n, err: err}
		}
	}
	return m, cmd
}

func (m Model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	return max(m.width*2/5, 30)
}

func (m Model) listHeight() int {
	if m.height <= 0 {
		return 12
	}
	// header, search, pagination, toast, help and borders
	return max(m.height-9, 3)
}

func (m Model) View() string {
	if m.ctrl.CreateOpen() {
		box := modalStyle.Render(m.form.view() + "\n\n" + m.help.ShortHelpView(fkeys.ShortHelp()))
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
		return box
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("NoteHub") + "  " + m.searchView() + "\n")

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Width(m.listWidth()).Render(m.listView()),
		paneStyle.Width(m.detailWidth()).Render(m.detailView()),
	)
	b.WriteString(body + "\n")

	if m.ctrl.ShowPagination() {
		b.WriteString(m.pager.View())
	}
	if e, ok := m.svc.Cache().Peek(m.ctrl.Key()); ok && e.Fetching && m.shown != nil {
		b.WriteString("  " + pendingStyle.Render("Updating list…"))
	}
	b.WriteString("\n")

	if m.toast != "" {
		style := toastStyle
		if m.toastIsError {
			style = toastErrorStyle
		}
		b.WriteString(style.Render(m.toast))
	}
	b.WriteString("\n" + m.help.ShortHelpView(keys.ShortHelp()))
	return b.String()
}

func (m Model) searchView() string {
	if m.searching || m.search.Value() != "" {
		return m.search.View()
	}
	return helpStyle.Render("/ search")
}

func (m Model) listView() string {
	switch {
	case m.listErr != nil:
		return errorStyle.Render("Error: " + notehub.Message(m.listErr))
	case m.deniedErr:
		return mutedStyle.Render("No notes loaded.")
	case m.shown == nil:
		return m.spinner.View() + " Loading notes..."
	case len(m.shown.Notes) == 0:
		return mutedStyle.Render("No notes found")
	}
	return m.list.View()
}

func (m Model) detailWidth() int {
	w := m.width - m.listWidth() - 6
	return max(w, 20)
}

func (m Model) detailView() string {
	n, ok := m.selected()
	if !ok || m.shown == nil || m.listErr != nil {
		return mutedStyle.Render("Select a note to read it here.")
	}
	return m.detail.render(n, m.detailWidth()-2)
}
