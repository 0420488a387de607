package session

import (
	"testing"
	"time"

	kioerrors "github.com/harunnryd/kioku/internal/errors"
	"github.com/harunnryd/kioku/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	s := store.New(store.Config{Engine: store.NewEngine(store.EngineConfig{Dir: t.TempDir()})})
	return NewManager(s)
}

func TestStartSession(t *testing.T) {
	m := newTestManager(t)

	session, err := m.StartSession("garden")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "garden", session.ProjectID)
	assert.False(t, session.EntryTime.IsZero())
	assert.Nil(t, session.ExitTime)

	got, ok := m.store.GetSession(session.ID)
	require.True(t, ok)
	assert.Equal(t, session.ID, got.ID)
}

func TestStartSession_EmptyProject(t *testing.T) {
	m := newTestManager(t)

	_, err := m.StartSession("   ")
	assert.ErrorIs(t, err, kioerrors.ErrInvalidInput)
}

func TestStartSession_AlreadyActive(t *testing.T) {
	m := newTestManager(t)

	_, err := m.StartSession("garden")
	require.NoError(t, err)

	_, err = m.StartSession("garden")
	assert.ErrorIs(t, err, kioerrors.ErrSessionActive)

	// A different project is unaffected.
	_, err = m.StartSession("kitchen")
	assert.NoError(t, err)
}

func TestEndSession(t *testing.T) {
	m := newTestManager(t)

	started, err := m.StartSession("garden")
	require.NoError(t, err)

	ended, err := m.EndSession(started.ID)
	require.NoError(t, err)
	require.NotNil(t, ended.ExitTime)
	assert.False(t, ended.ExitTime.Before(ended.EntryTime))

	_, ok := m.ActiveSession("garden")
	assert.False(t, ok)
}

func TestEndSession_Unknown(t *testing.T) {
	m := newTestManager(t)

	_, err := m.EndSession("ghost")
	assert.ErrorIs(t, err, kioerrors.ErrNotFound)
}

func TestEndSession_AlreadyEndedKeepsExitTime(t *testing.T) {
	m := newTestManager(t)

	started, err := m.StartSession("garden")
	require.NoError(t, err)

	first, err := m.EndSession(started.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	second, err := m.EndSession(started.ID)
	require.NoError(t, err)
	assert.True(t, first.ExitTime.Equal(*second.ExitTime))
}

func TestRecordFeedback(t *testing.T) {
	m := newTestManager(t)

	started, err := m.StartSession("garden")
	require.NoError(t, err)

	require.NoError(t, m.RecordFeedback(started.ID, 4))

	got, ok := m.store.GetSession(started.ID)
	require.True(t, ok)
	assert.Equal(t, 4, got.FeedbackRating)
	require.NotNil(t, got.FeedbackTime)
}

func TestRecordFeedback_RatingOutOfRange(t *testing.T) {
	m := newTestManager(t)

	assert.ErrorIs(t, m.RecordFeedback("s1", 0), kioerrors.ErrInvalidInput)
	assert.ErrorIs(t, m.RecordFeedback("s1", 6), kioerrors.ErrInvalidInput)
}

func TestRecordFeedback_UnknownSessionIsNoop(t *testing.T) {
	m := newTestManager(t)

	// No error: the session manager expects a silent no-op from the store.
	assert.NoError(t, m.RecordFeedback("ghost", 3))
}
