// Package notehubtest provides an in-memory NoteHub API for tests.
package notehubtest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/idilsaglam/notehub/internal/model"
)

// Server is a fake NoteHub backed by a map.
type Server struct {
	*httptest.Server

	t     testing.TB
	token string

	mu     sync.Mutex
	notes  map[int]model.Note
	nextID int
	fail   map[string]failure
	gate   chan struct{}

	requests atomic.Int64
	lists    atomic.Int64
	creates  atomic.Int64
	deletes  atomic.Int64

	searchesMu sync.Mutex
	searches   []string
}

type failure struct {
	status  int
	message string
}

// New starts a server that requires token as bearer credential.
// An empty token disables the check. The server is closed on test cleanup.
func New(t testing.TB, token string) *Server {
	t.Helper()
	s := &Server{
		t:      t,
		token:  token,
		notes:  make(map[int]model.Note),
		nextID: 1,
		fail:   make(map[string]failure),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)
	r.Use(s.auth)
	r.Get("/notes", s.listNotes)
	r.Post("/notes", s.createNote)
	r.Delete("/notes/{id}", s.deleteNote)
	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") || strings.TrimPrefix(h, "Bearer ") != s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid or missing token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Seed inserts notes with fresh ids and returns them in insertion order.
func (s *Server) Seed(notes ...model.CreateNoteParams) []model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Note, 0, len(notes))
	for _, p := range notes {
		out = append(out, s.insertLocked(p))
	}
	return out
}

// SeedN inserts n notes titled "Note 1".."Note n".
func (s *Server) SeedN(n int) []model.Note {
	params := make([]model.CreateNoteParams, n)
	for i := range params {
		params[i] = model.CreateNoteParams{
			Title:   "Note " + strconv.Itoa(i+1),
			Content: "content " + strconv.Itoa(i+1),
			Tag:     model.Tags[i%len(model.Tags)],
		}
	}
	return s.Seed(params...)
}

// FailNext makes the next request to route ("list", "create", "delete") fail.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[route] = failure{status: status, message: message}
}

// Hold blocks list requests until the returned release func is called.
// Release also runs on test cleanup so Close never waits on a held handler.
func (s *Server) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()
	var once sync.Once
	release = func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == gate {
				s.gate = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}
	s.t.Cleanup(release)
	return release
}

// Requests counts every request received, including rejected ones.
func (s *Server) Requests() int { return int(s.requests.Load()) }

// ListCalls counts list requests that passed authentication.
func (s *Server) ListCalls() int { return int(s.lists.Load()) }

// CreateCalls counts create requests received.
func (s *Server) CreateCalls() int { return int(s.creates.Load()) }

// DeleteCalls counts delete requests received.
func (s *Server) DeleteCalls() int { return int(s.deletes.Load()) }

// Searches returns the search parameter of every list request, "" when absent.
func (s *Server) Searches() []string {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()
	return append([]string(nil), s.searches...)
}

// Has reports whether id is stored.
func (s *Server) Has(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notes[id]
	return ok
}

func (s *Server) takeFailure(route string) (failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.fail[route]
	if ok {
		delete(s.fail, route)
	}
	return f, ok
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	s.lists.Add(1)
	q := r.URL.Query()
	s.searchesMu.Lock()
	s.searches = append(s.searches, q.Get("search"))
	s.searchesMu.Unlock()

	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if f, ok := s.takeFailure("list"); ok {
		writeJSON(w, f.status, map[string]string{"message": f.message})
		return
	}

	page := atoiDefault(q.Get("page"), 1)
	perPage := atoiDefault(q.Get("perPage"), 12)
	search := strings.ToLower(q.Get("search"))

	s.mu.Lock()
	matched := make([]model.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if search == "" ||
			strings.Contains(strings.ToLower(n.Title), search) ||
			strings.Contains(strings.ToLower(n.Content), search) {
			matched = append(matched, n)
		}
	}
	s.mu.Unlock()
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	totalPages := (len(matched) + perPage - 1) / perPage
	from := (page - 1) * perPage
	if from > len(matched) {
		from = len(matched)
	}
	to := from + perPage
	if to > len(matched) {
		to = len(matched)
	}
	writeJSON(w, http.StatusOK, model.NotesPage{Notes: matched[from:to], TotalPages: totalPages})
}

func (s *Server) createNote(w http.ResponseWriter, r *http.Request) {
	s.creates.Add(1)
	if f, ok := s.takeFailure("create"); ok {
		writeJSON(w, f.status, map[string]string{"message": f.message})
		return
	}
	var p model.CreateNoteParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	if err := p.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	s.mu.Lock()
	n := s.insertLocked(p)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	s.deletes.Add(1)
	if f, ok := s.takeFailure("delete"); ok {
		writeJSON(w, f.status, map[string]string{"message": f.message})
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid id"})
		return
	}
	s.mu.Lock()
	n, ok := s.notes[id]
	delete(s.notes, id)
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Note not found"})
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) insertLocked(p model.CreateNoteParams) model.Note {
	now := time.Now().UTC()
	n := model.Note{
		ID:        s.nextID,
		Title:     p.Title,
		Content:   p.Content,
		Tag:       p.Tag,
		CreatedAt: &now,
		UpdatedAt: &now,
	}
	s.notes[n.ID] = n
	s.nextID++
	return n
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}
