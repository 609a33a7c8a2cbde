package app_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/notehub/internal/app"
	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/notehub"
	"github.com/idilsaglam/notehub/internal/notehub/notehubtest"
	"github.com/idilsaglam/notehub/internal/query"
)

func setup(t *testing.T) (*app.NoteService, *notehubtest.Server) {
	t.Helper()
	srv := notehubtest.New(t, "tok")
	client, err := notehub.NewClient(srv.URL, notehub.WithToken("tok"))
	require.NoError(t, err)
	return app.NewNoteService(client), srv
}

func TestNoteService_ListUsesPageSize(t *testing.T) {
	svc, srv := setup(t)
	srv.SeedN(25)

	key := svc.Key(1, "")
	assert.Equal(t, 12, key.PageSize)

	e, err := svc.List(context.Background(), key)
	require.NoError(t, err)
	assert.Len(t, e.Data.Notes, 12)
	assert.Equal(t, 3, e.Data.TotalPages)
}

func TestNoteService_DeletedNoteGoneFromNextFetch(t *testing.T) {
	svc, srv := setup(t)
	notes := srv.SeedN(5)
	key := svc.Key(1, "")
	release := svc.Cache().Observe(key)
	defer release()

	e, err := svc.List(context.Background(), key)
	require.NoError(t, err)
	target := notes[2].ID
	require.True(t, e.Data.Contains(target))

	deleted, err := svc.Delete(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, target, deleted.ID)
	_, deleting := svc.DeletingID()
	assert.False(t, deleting)

	e, err = svc.List(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, e.Data.Contains(target))
	assert.Len(t, e.Data.Notes, 4)
}

func TestNoteService_FailedDeleteLeavesCache(t *testing.T) {
	svc, srv := setup(t)
	srv.SeedN(3)
	key := svc.Key(1, "")
	before, err := svc.List(context.Background(), key)
	require.NoError(t, err)
	calls := srv.ListCalls()

	srv.FailNext("delete", http.StatusInternalServerError, "database unavailable")
	_, err = svc.Delete(context.Background(), 2)
	require.Error(t, err)
	assert.Equal(t, "database unavailable", notehub.Message(err))

	after, ok := svc.Cache().Peek(key)
	require.True(t, ok)
	assert.True(t, after.Fresh())
	assert.Equal(t, before.Data, after.Data)
	assert.Equal(t, calls, srv.ListCalls())
	assert.Equal(t, query.MutationError, svc.DeleteState().Status)
}

func TestNoteService_CreateValidatesLocally(t *testing.T) {
	svc, srv := setup(t)

	_, err := svc.Create(context.Background(), model.CreateNoteParams{Title: "ab", Tag: model.TagTodo})
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 0, srv.CreateCalls())
	assert.Equal(t, query.MutationIdle, svc.CreateState().Status)
}

func TestNoteService_CreateInvalidates(t *testing.T) {
	svc, srv := setup(t)
	srv.SeedN(1)
	key := svc.Key(1, "")
	release := svc.Cache().Observe(key)
	defer release()

	_, err := svc.List(context.Background(), key)
	require.NoError(t, err)

	note, err := svc.Create(context.Background(), model.CreateNoteParams{Title: "Standup", Tag: model.TagMeeting})
	require.NoError(t, err)
	assert.False(t, svc.Creating())

	require.Eventually(t, func() bool {
		e, _ := svc.Cache().Peek(key)
		return e.Fresh() && e.Data.Contains(note.ID)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNoteService_Refresh(t *testing.T) {
	svc, srv := setup(t)
	key := svc.Key(1, "")
	release := svc.Cache().Observe(key)
	defer release()

	_, err := svc.List(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []query.Key{key}, svc.Refresh())
	require.Eventually(t, func() bool { return srv.ListCalls() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestNoteService_WithPageSize(t *testing.T) {
	svc := app.NewNoteService(nil, app.WithPageSize(5))
	assert.Equal(t, 5, svc.PageSize())
	assert.Equal(t, query.NotesKey(2, 5, "x"), svc.Key(2, "x"))
}
