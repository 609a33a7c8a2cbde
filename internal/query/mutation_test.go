package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutation_Lifecycle(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	m := NewMutation(func(_ context.Context, id int) (string, error) {
		close(entered)
		<-release
		return "deleted", nil
	})
	assert.Equal(t, MutationIdle, m.State().Status)

	done := make(chan error, 1)
	go func() {
		_, err := m.Run(context.Background(), 7)
		done <- err
	}()
	<-entered

	assert.True(t, m.Pending())
	target, ok := m.Target()
	require.True(t, ok)
	assert.Equal(t, 7, target)

	_, err := m.Run(context.Background(), 8)
	assert.ErrorIs(t, err, ErrMutationPending)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, MutationSuccess, m.State().Status)
	_, ok = m.Target()
	assert.False(t, ok)
}

func TestMutation_HooksOnSuccess(t *testing.T) {
	var order []string
	m := NewMutation(func(_ context.Context, in string) (int, error) {
		return len(in), nil
	}).
		OnSuccess(func(in string, out int) { order = append(order, "success:"+in) }).
		OnSettled(func(in string, out int, err error) { order = append(order, "settled") })

	out, err := m.Run(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, out)
	assert.Equal(t, []string{"success:abc", "settled"}, order)
}

func TestMutation_HooksOnError(t *testing.T) {
	boom := errors.New("network down")
	var succeeded bool
	var settledErr error
	m := NewMutation(func(context.Context, int) (int, error) { return 0, boom }).
		OnSuccess(func(int, int) { succeeded = true }).
		OnSettled(func(_ int, _ int, err error) { settledErr = err })

	_, err := m.Run(context.Background(), 7)
	require.ErrorIs(t, err, boom)
	assert.False(t, succeeded)
	assert.ErrorIs(t, settledErr, boom)

	st := m.State()
	assert.Equal(t, MutationError, st.Status)
	assert.Equal(t, 7, st.Variables)
	assert.ErrorIs(t, st.Err, boom)

	m.Reset()
	assert.Equal(t, MutationIdle, m.State().Status)
}

func TestMutation_RunAgainAfterSettle(t *testing.T) {
	calls := 0
	m := NewMutation(func(context.Context, int) (int, error) {
		calls++
		return calls, nil
	})
	_, err := m.Run(context.Background(), 1)
	require.NoError(t, err)
	out, err := m.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "idle", MutationIdle.String())
	assert.Equal(t, "pending", MutationPending.String())
	assert.Equal(t, "error", MutationError.String())
}
