// Package app wires the NoteHub client to the shared query cache.
package app

import (
	"context"
	"log/slog"

	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/notehub"
	"github.com/idilsaglam/notehub/internal/query"
)

// NoteService is the one place views read and write notes through.
// Successful creates and deletes invalidate every cached list page.
type NoteService struct {
	client   notehub.Notes
	cache    *query.Cache
	create   *query.Mutation[model.CreateNoteParams, *model.Note]
	remove   *query.Mutation[int, *model.Note]
	logger   *slog.Logger
	pageSize int
	ctx      context.Context
}

// Option configures a NoteService.
type Option func(*NoteService)

// WithPageSize sets the page size used for every list key.
func WithPageSize(n int) Option {
	return func(s *NoteService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger sets the service and cache logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *NoteService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithContext bounds background refetches to ctx.
func WithContext(ctx context.Context) Option {
	return func(s *NoteService) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// NewNoteService builds the service and its cache.
func NewNoteService(client notehub.Notes, opts ...Option) *NoteService {
	s := &NoteService{
		client:   client,
		logger:   slog.Default(),
		pageSize: notehub.DefaultPerPage,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cache = query.New(s.fetchPage, query.WithContext(s.ctx), query.WithLogger(s.logger))

	s.create = query.NewMutation(func(ctx context.Context, p model.CreateNoteParams) (*model.Note, error) {
		return s.client.CreateNote(ctx, p)
	}).
		OnSuccess(func(_ model.CreateNoteParams, n *model.Note) {
			s.logger.Info("note created", slog.Int("id", n.ID), slog.String("tag", string(n.Tag)))
			s.cache.Invalidate(query.FamilyNotes)
		})
	s.remove = query.NewMutation(func(ctx context.Context, id int) (*model.Note, error) {
		return s.client.DeleteNote(ctx, id)
	}).
		OnSuccess(func(id int, _ *model.Note) {
			s.logger.Info("note deleted", slog.Int("id", id))
			s.cache.Invalidate(query.FamilyNotes)
		}).
		OnSettled(func(id int, _ *model.Note, err error) {
			if err != nil {
				s.logger.Warn("delete failed", slog.Int("id", id), slog.String("error", err.Error()))
			}
		})
	return s
}

func (s *NoteService) fetchPage(ctx context.Context, key query.Key) (*model.NotesPage, error) {
	return s.client.ListNotes(ctx, notehub.ListParams{
		Page:    key.Page,
		PerPage: key.PageSize,
		Search:  key.Search,
	})
}

// Cache exposes the shared list cache.
func (s *NoteService) Cache() *query.Cache { return s.cache }

// PageSize is the fixed page size of every list key.
func (s *NoteService) PageSize() int { return s.pageSize }

// Key builds the list key for page and search with the service page size.
func (s *NoteService) Key(page int, search string) query.Key {
	return query.NotesKey(page, s.pageSize, search)
}

// List returns the cached page for key, fetching when needed.
func (s *NoteService) List(ctx context.Context, key query.Key) (query.Entry, error) {
	return s.cache.Fetch(ctx, key)
}

// Create validates params locally and only then posts them.
func (s *NoteService) Create(ctx context.Context, params model.CreateNoteParams) (*model.Note, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.create.Run(ctx, params)
}

// Delete removes the note with id.
func (s *NoteService) Delete(ctx context.Context, id int) (*model.Note, error) {
	return s.remove.Run(ctx, id)
}

// Creating reports whether a create is in flight.
func (s *NoteService) Creating() bool { return s.create.Pending() }

// CreateState is the create tracker snapshot.
func (s *NoteService) CreateState() query.MutationState[model.CreateNoteParams] {
	return s.create.State()
}

// DeletingID returns the id of the note currently being deleted.
func (s *NoteService) DeletingID() (int, bool) { return s.remove.Target() }

// DeleteState is the delete tracker snapshot.
func (s *NoteService) DeleteState() query.MutationState[int] { return s.remove.State() }

// Refresh invalidates every list page and returns the keys being refetched.
func (s *NoteService) Refresh() []query.Key {
	return s.cache.Invalidate(query.FamilyNotes)
}
