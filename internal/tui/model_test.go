package tui

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/notehub/internal/app"
	"github.com/idilsaglam/notehub/internal/debounce/debouncetest"
	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/notehub"
	"github.com/idilsaglam/notehub/internal/notehub/notehubtest"
)

type harness struct {
	t      *testing.T
	m      Model
	srv    *notehubtest.Server
	svc    *app.NoteService
	sched  *debouncetest.Scheduler
	inbox  chan tea.Msg
	copied []string
}

func noTick(time.Duration, func(time.Time) tea.Msg) tea.Cmd { return nil }

// newHarness starts a browser against a fake server. seed runs before the
// first fetch.
func newHarness(t *testing.T, token string, seed func(*notehubtest.Server)) *harness {
	t.Helper()
	srv := notehubtest.New(t, "tok")
	if seed != nil {
		seed(srv)
	}
	client, err := notehub.NewClient(srv.URL, notehub.WithToken(token))
	require.NoError(t, err)

	h := &harness{
		t:     t,
		srv:   srv,
		svc:   app.NewNoteService(client),
		sched: &debouncetest.Scheduler{},
		inbox: make(chan tea.Msg, 64),
	}
	h.m = New(h.svc, Config{
		MarkdownStyle:   "notty",
		SearchAfterFunc: h.sched.AfterFunc,
		Tick:            noTick,
		Copy: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
	})
	h.m.out.attach(func(msg tea.Msg) { h.inbox <- msg })
	t.Cleanup(func() { h.m.Close() })

	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.run(h.m.Init())
	return h
}

// update feeds msg to the model and returns the command without running it.
func (h *harness) update(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

func (h *harness) send(msg tea.Msg) { h.run(h.update(msg)) }

// run executes cmd and feeds back the messages this package defines.
// Spinner ticks and quit messages are dropped.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		return
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(5 * time.Second):
		h.t.Fatal("command did not return")
	}
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	case listLoadedMsg, entryUpdatedMsg, searchSettledMsg, createdMsg, deletedMsg, toastMsg, toastExpiredMsg:
		h.send(msg)
	}
}

// flush delivers messages posted from other goroutines.
func (h *harness) flush() {
	for {
		select {
		case msg := <-h.inbox:
			h.send(msg)
		default:
			return
		}
	}
}

func (h *harness) press(k string) tea.Cmd {
	h.t.Helper()
	return h.update(keyMsg(k))
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func (h *harness) titles() []string {
	var out []string
	for _, it := range h.m.list.Items() {
		out = append(out, it.(noteItem).note.Title)
	}
	return out
}

func (h *harness) selectID(id int) {
	h.t.Helper()
	for i, it := range h.m.list.Items() {
		if it.(noteItem).note.ID == id {
			h.m.list.Select(i)
			return
		}
	}
	h.t.Fatalf("note %d not listed", id)
}

func TestBrowser_FirstPageOfMany(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(25) })

	assert.Len(t, h.m.list.Items(), 12)
	assert.True(t, h.m.ctrl.ShowPagination())
	assert.Equal(t, 3, h.m.ctrl.PageCount())

	view := h.m.View()
	assert.Contains(t, view, "Page 1 of 3")
	assert.Contains(t, view, "Note 12")
	assert.NotContains(t, view, "Note 13")
}

func TestBrowser_SinglePageHidesPagination(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(3) })
	assert.False(t, h.m.ctrl.ShowPagination())
	assert.NotContains(t, h.m.View(), "Page 1 of 1")

	// paging keys do nothing without pagination
	assert.Nil(t, h.press("right"))
	assert.Equal(t, 1, h.m.ctrl.Page())
}

func TestBrowser_EmptyList(t *testing.T) {
	h := newHarness(t, "tok", nil)
	assert.Contains(t, h.m.View(), "No notes found")
}

func TestBrowser_PageNavigationIsClamped(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(25) })

	h.run(h.press("right"))
	assert.Equal(t, 2, h.m.ctrl.Page())
	assert.Equal(t, "Note 13", h.titles()[0])

	h.run(h.press("]"))
	assert.Equal(t, 3, h.m.ctrl.Page())
	assert.Equal(t, []string{"Note 25"}, h.titles())

	calls := h.srv.ListCalls()
	assert.Nil(t, h.press("right"))
	assert.Equal(t, 3, h.m.ctrl.Page())
	assert.Equal(t, calls, h.srv.ListCalls())

	h.run(h.press("["))
	assert.Equal(t, 2, h.m.ctrl.Page())
	assert.Contains(t, h.m.View(), "Page 2 of 3")
}

func TestBrowser_DeletingLastRowOfLastPageMovesBack(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(25) })
	h.run(h.press("right"))
	h.run(h.press("right"))
	require.Equal(t, 3, h.m.ctrl.Page())
	h.selectID(25)

	h.run(h.press("d"))
	assert.Equal(t, 2, h.m.ctrl.PageCount())
	assert.Equal(t, 2, h.m.ctrl.Page())
	assert.Equal(t, 1, h.m.pager.Page)
	assert.Len(t, h.titles(), 12)
	assert.Equal(t, "Note 13", h.titles()[0])
	assert.Contains(t, h.m.View(), "Page 2 of 2")

	h.run(h.press("["))
	assert.Equal(t, 1, h.m.ctrl.Page())
	assert.Equal(t, "Note 1", h.titles()[0])
}

func TestBrowser_HoldsPreviousPageWhileLoading(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(25) })
	release := h.srv.Hold()

	cmd := h.press("right")
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	require.Eventually(t, func() bool { return h.srv.ListCalls() == 2 }, 2*time.Second, 5*time.Millisecond)

	view := h.m.View()
	assert.Contains(t, view, "Note 1")
	assert.Contains(t, view, "Updating list…")
	assert.NotContains(t, view, "Loading notes...")

	release()
	h.send(<-done)
	assert.Equal(t, "Note 13", h.titles()[0])
	assert.NotContains(t, h.m.View(), "Updating list…")
}

func TestBrowser_SearchIsDebouncedAndResetsPage(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(25) })
	h.run(h.press("right"))
	require.Equal(t, 2, h.m.ctrl.Page())

	h.send(keyMsg("/"))
	require.True(t, h.m.searching)
	h.typeText("note 2")
	assert.Equal(t, "note 2", h.m.ctrl.RawSearch())
	assert.Equal(t, "", h.m.ctrl.DebouncedSearch())
	assert.Equal(t, 1, h.sched.Live())

	h.sched.Elapse()
	h.flush()

	assert.Equal(t, "note 2", h.m.ctrl.DebouncedSearch())
	assert.Equal(t, 1, h.m.ctrl.Page())
	assert.Equal(t, []string{"Note 2", "Note 20", "Note 21", "Note 22", "Note 23", "Note 24", "Note 25"}, h.titles())
	assert.Equal(t, []string{"", "", "note 2"}, h.srv.Searches())

	h.send(keyMsg("esc"))
	assert.False(t, h.m.searching)
}

func TestBrowser_TypeThenClearNeverSearches(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(5) })

	h.send(keyMsg("/"))
	h.typeText("meeting")
	for range "meeting" {
		h.send(keyMsg("backspace"))
	}
	h.sched.Elapse()
	h.flush()

	assert.Equal(t, "", h.m.ctrl.DebouncedSearch())
	assert.Equal(t, []string{""}, h.srv.Searches())
	assert.Len(t, h.m.list.Items(), 5)
}

func TestBrowser_DeleteFailureKeepsRow(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(10) })
	h.selectID(7)
	h.srv.FailNext("delete", http.StatusInternalServerError, "database unavailable")

	cmd := h.press("d")
	require.NotNil(t, cmd)
	assert.Equal(t, 7, h.m.deleting)
	assert.Contains(t, h.m.View(), "Deleting...")
	assert.Nil(t, h.press("d"), "a row being deleted ignores delete")

	h.run(cmd)
	assert.Equal(t, 0, h.m.deleting)
	assert.NotContains(t, h.m.View(), "Deleting...")
	assert.True(t, h.m.toastIsError)
	assert.Equal(t, "Failed to delete note: database unavailable", h.m.toast)
	assert.Len(t, h.m.list.Items(), 10)
	assert.True(t, h.srv.Has(7))
}

func TestBrowser_DeleteRemovesRow(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(3) })
	h.selectID(2)

	h.run(h.press("d"))
	assert.Equal(t, []string{"Note 1", "Note 3"}, h.titles())
	assert.False(t, h.m.toastIsError)
	assert.Equal(t, `Deleted "Note 2"`, h.m.toast)
}

func TestBrowser_CreateValidatesBeforeSending(t *testing.T) {
	h := newHarness(t, "tok", nil)
	h.send(keyMsg("n"))
	require.True(t, h.m.ctrl.CreateOpen())

	assert.Nil(t, h.press("ctrl+s"))
	assert.Equal(t, "Title is required", h.m.form.errs["title"])

	h.typeText("ab")
	assert.Nil(t, h.press("ctrl+s"))
	assert.Equal(t, "Minimum 3 characters", h.m.form.errs["title"])
	assert.Contains(t, h.m.View(), "Minimum 3 characters")

	h.send(keyMsg("tab"))
	h.typeText(strings.Repeat("x", 501))
	assert.Nil(t, h.press("ctrl+s"))
	assert.Equal(t, "Maximum 500 characters", h.m.form.errs["content"])

	assert.Equal(t, 0, h.srv.CreateCalls())
	assert.True(t, h.m.ctrl.CreateOpen())
}

func TestBrowser_CreateSuccessClosesModal(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(1) })
	h.send(keyMsg("n"))
	h.typeText("Standup")
	h.send(keyMsg("tab"))
	h.typeText("Daily sync")
	h.send(keyMsg("tab"))
	h.send(keyMsg("right"))
	h.send(keyMsg("right"))
	h.send(keyMsg("right"))
	assert.Equal(t, model.TagMeeting, h.m.form.tag)

	cmd := h.press("ctrl+s")
	require.NotNil(t, cmd)
	assert.True(t, h.m.form.submitting)
	assert.Contains(t, h.m.View(), "Creating...")
	assert.Nil(t, h.press("esc"), "the modal cannot be dismissed while creating")
	assert.True(t, h.m.ctrl.CreateOpen())

	h.run(cmd)
	assert.False(t, h.m.ctrl.CreateOpen())
	assert.Equal(t, []string{"Note 1", "Standup"}, h.titles())
	assert.Equal(t, `Created "Standup"`, h.m.toast)

	// the next open starts from defaults
	h.send(keyMsg("n"))
	assert.Equal(t, "", h.m.form.title.Value())
	assert.Equal(t, model.TagTodo, h.m.form.tag)
}

func TestBrowser_CreateServerErrorStaysInForm(t *testing.T) {
	h := newHarness(t, "tok", nil)
	h.srv.FailNext("create", http.StatusBadRequest, "Title already taken")

	h.send(keyMsg("n"))
	h.typeText("Groceries")
	h.send(keyMsg("ctrl+s"))

	assert.True(t, h.m.ctrl.CreateOpen())
	assert.False(t, h.m.form.submitting)
	assert.Equal(t, "Failed to create note: Title already taken", h.m.form.serverErr)
	assert.Equal(t, "Groceries", h.m.form.title.Value())
}

func TestBrowser_EscDiscardsForm(t *testing.T) {
	h := newHarness(t, "tok", nil)
	h.send(keyMsg("n"))
	h.typeText("Draft")
	h.send(keyMsg("esc"))

	assert.False(t, h.m.ctrl.CreateOpen())
	assert.Equal(t, 0, h.srv.CreateCalls())
	h.send(keyMsg("n"))
	assert.Equal(t, "", h.m.form.title.Value())
}

func TestBrowser_SubmitButtonAndTagCycle(t *testing.T) {
	h := newHarness(t, "tok", nil)
	h.send(keyMsg("n"))
	h.typeText("Budget")
	h.send(keyMsg("enter"))
	assert.Equal(t, fieldContent, h.m.form.focus)
	h.send(keyMsg("tab"))
	h.send(keyMsg("left"))
	assert.Equal(t, model.TagShopping, h.m.form.tag)
	h.send(keyMsg("enter"))
	assert.Equal(t, fieldSubmit, h.m.form.focus)

	h.send(keyMsg("enter"))
	assert.False(t, h.m.ctrl.CreateOpen())
	assert.Equal(t, 1, h.srv.CreateCalls())
}

func TestBrowser_UnauthorizedRaisesToast(t *testing.T) {
	h := newHarness(t, "wrong", func(s *notehubtest.Server) { s.SeedN(2) })

	assert.True(t, h.m.toastIsError)
	assert.Equal(t, unauthorizedToast, h.m.toast)
	view := h.m.View()
	assert.Contains(t, view, "No notes loaded.")
	assert.NotContains(t, view, "Loading notes...")

	// re-syncing the same failed key keeps the toast it already raised
	id := h.m.toastID
	key := h.m.ctrl.Key()
	h.send(entryUpdatedMsg{key: key})
	h.run(h.m.load(key))
	assert.Equal(t, id, h.m.toastID)
}

func TestBrowser_ListErrorRendersInline(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) {
		s.FailNext("list", http.StatusInternalServerError, "database unavailable")
	})
	assert.Contains(t, h.m.View(), "Error: database unavailable")
	assert.Empty(t, h.m.toast)

	h.run(h.press("r"))
	assert.NotContains(t, h.m.View(), "Error:")
}

func TestBrowser_FollowsBackgroundRefetch(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(1) })

	n, err := h.svc.Create(t.Context(), model.CreateNoteParams{Title: "From elsewhere", Tag: model.TagWork})
	require.NoError(t, err)
	key := h.m.ctrl.Key()
	require.Eventually(t, func() bool {
		e, _ := h.svc.Cache().Peek(key)
		return e.Fresh() && e.Data.Contains(n.ID)
	}, 2*time.Second, 5*time.Millisecond)

	h.send(entryUpdatedMsg{key: key})
	assert.Equal(t, []string{"Note 1", "From elsewhere"}, h.titles())
}

func TestBrowser_YankCopiesContent(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(2) })
	h.send(keyMsg("down"))
	h.send(keyMsg("y"))
	assert.Equal(t, []string{"content 2"}, h.copied)
	assert.Equal(t, `Copied "Note 2"`, h.m.toast)

	h.m.copy = func(string) error { return errors.New("no clipboard") }
	h.send(keyMsg("y"))
	assert.True(t, h.m.toastIsError)
}

func TestBrowser_ToastExpires(t *testing.T) {
	h := newHarness(t, "tok", nil)
	h.send(toastMsg{text: "one"})
	first := h.m.toastID
	h.send(toastMsg{text: "two"})

	h.send(toastExpiredMsg{id: first})
	assert.Equal(t, "two", h.m.toast)
	h.send(toastExpiredMsg{id: h.m.toastID})
	assert.Empty(t, h.m.toast)
}

func TestBrowser_DetailPaneShowsSelectedNote(t *testing.T) {
	h := newHarness(t, "tok", func(s *notehubtest.Server) { s.SeedN(2) })
	assert.Contains(t, h.m.View(), "content 1")
	h.send(keyMsg("down"))
	assert.Contains(t, h.m.View(), "content 2")
}

func TestBrowser_QuitKeys(t *testing.T) {
	h := newHarness(t, "tok", nil)
	cmd := h.press("q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	h.send(keyMsg("/"))
	h.send(keyMsg("q"))
	assert.Equal(t, "q", h.m.search.Value(), "q is text while searching")
	cmd = h.update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
