package session

import (
	"context"
	"testing"
	"time"

	"github.com/playmatatu/fairway/internal/golf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	clubs, err := golf.Measure(golf.DefaultClubs(), golf.DefaultEnvironment())
	require.NoError(t, err)
	return NewManager(nil, NewClubTable(clubs, ""), golf.DefaultEnvironment(), time.Hour)
}

func TestCreateFillsFromTable(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	st, err := m.Create(ctx, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)
	assert.Len(t, st.Clubs, 14)
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, golf.OneWood, st.Club.Type)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.ID)
}

func TestCreateRejectsEmptyBag(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Create(context.Background(), []golf.Club{})
	assert.ErrorIs(t, err, golf.ErrInvalidArgument)
}

func TestCursorWraps(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	st, err := m.Create(ctx, nil)
	require.NoError(t, err)

	st, err = m.Prev(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, st.Current)
	assert.Equal(t, golf.Putter, st.Club.Type)

	st, err = m.Next(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Current)
}

func TestSelectBest(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	st, err := m.Create(ctx, nil)
	require.NoError(t, err)

	st, err = m.SelectBest(ctx, st.ID, 5, "Green_02")
	require.NoError(t, err)
	assert.Equal(t, golf.Putter, st.Club.Type)

	st, err = m.SelectBest(ctx, st.ID, 150, "Fairway")
	require.NoError(t, err)
	assert.Greater(t, st.Club.Distance, 150.0)
	assert.NotEqual(t, golf.Putter, st.Club.Type)
	if st.Current+1 < 13 {
		assert.LessOrEqual(t, st.Clubs[st.Current+1].Distance, 150.0)
	}

	_, err = m.SelectBest(ctx, st.ID, -1, "Fairway")
	assert.ErrorIs(t, err, golf.ErrInvalidArgument)
}

func TestTakeShotIsReplayable(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	st, err := m.Create(ctx, nil)
	require.NoError(t, err)

	first, err := m.TakeShot(ctx, st.ID, "Rough", 42)
	require.NoError(t, err)
	second, err := m.TakeShot(ctx, st.ID, "Rough", 42)
	require.NoError(t, err)

	assert.Equal(t, golf.OneWood, first.Club.Type)
	assert.Equal(t, "Rough", first.Trajectory.Surface)
	assert.Equal(t, first.Trajectory.Distance, second.Trajectory.Distance)
	assert.Equal(t, 2, second.State.Shots)
	assert.NotEmpty(t, first.Trajectory.Path)
}

func TestTakeShotIntoWaterDoesNotRoll(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	st, err := m.Create(ctx, nil)
	require.NoError(t, err)

	res, err := m.TakeShot(ctx, st.ID, "water_hazard", 1)
	require.NoError(t, err)
	assert.Zero(t, res.Trajectory.Roll)
	assert.Equal(t, res.Trajectory.Carry, res.Trajectory.Distance)
}

func TestTakeShotUnknownSurface(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	st, err := m.Create(ctx, nil)
	require.NoError(t, err)

	_, err = m.TakeShot(ctx, st.ID, "xyz", 1)
	assert.ErrorIs(t, err, golf.ErrInvalidArgument)

	got, err := m.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Shots)
}

func TestUnknownSession(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Next(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "missing"), ErrNotFound)
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	st, err := m.Create(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, st.ID))
	_, err = m.Get(ctx, st.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletedSessionIsNotWrittenBack(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	st, err := m.Create(ctx, nil)
	require.NoError(t, err)

	held, err := m.lookup(ctx, st.ID)
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, st.ID))

	called := false
	_, err = m.apply(ctx, held, func(*BagSession) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
	assert.Equal(t, 0, m.Count())
}

func TestSweepExpired(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	old, err := m.Create(ctx, nil)
	require.NoError(t, err)
	fresh, err := m.Create(ctx, nil)
	require.NoError(t, err)

	m.mu.RLock()
	m.sessions[old.ID].LastActivity = time.Now().Add(-2 * time.Hour)
	m.mu.RUnlock()

	assert.Equal(t, 1, m.SweepExpired(time.Hour))
	_, err = m.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestSessionsKeepTheirTable(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	st, err := m.Create(ctx, nil)
	require.NoError(t, err)

	m.table.Set([]golf.Club{golf.NewClub(golf.Putter, 84.4, 0.053)}, "run-x")
	got, err := m.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, got.Clubs, 14)

	next, err := m.Create(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, next.Clubs, 1)
	assert.Equal(t, "run-x", m.table.RunID())
}

func TestDecodeStateRestoresCursor(t *testing.T) {
	data := []byte(`{"id":"abc","clubs":[{"type":"7I","power":466.1,"loft":0.449},{"type":"PT","power":84.4,"loft":0.053}],"current":1,"shots":3}`)
	s, err := decodeState(data)
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ID)
	assert.Equal(t, 1, s.Bag.CurrentIndex())
	assert.Equal(t, 3, s.Shots)

	_, err = decodeState([]byte(`{"id":"abc","clubs":[],"current":0}`))
	assert.Error(t, err)
}
