package capture

import (
	"context"
	"fmt"
	"testing"

	kioerrors "github.com/harunnryd/kioku/internal/errors"
	"github.com/harunnryd/kioku/internal/extractor"
	"github.com/harunnryd/kioku/internal/session"
	"github.com/harunnryd/kioku/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModule(t *testing.T) (*Module, *store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := store.New(store.Config{Engine: store.NewEngine(store.EngineConfig{Dir: dir})})
	return NewModule(s, extractor.NewRegexExtractor()), s, dir
}

type stubTranscriber struct {
	text string
	err  error
}

func (st stubTranscriber) Transcribe(ctx context.Context, recordingPath string) (string, error) {
	return st.text, st.err
}

func TestComplete(t *testing.T) {
	m, s, dir := newTestModule(t)

	started, err := session.NewManager(s).StartSession("garden")
	require.NoError(t, err)

	input := "intent: prune roses\nnext: order mulch"
	capture, err := m.Complete(context.Background(), started.ID, store.CaptureQuick, input)
	require.NoError(t, err)

	assert.Equal(t, input, capture.OriginalInput)
	assert.Equal(t, []string{"prune roses"}, capture.ContextElements.Intent)
	assert.Equal(t, []string{"order mulch"}, capture.ContextElements.NextAction)

	// The owning session is stamped and closed.
	got, ok := s.GetSession(started.ID)
	require.True(t, ok)
	assert.Equal(t, capture.ID, got.CaptureID)
	require.NotNil(t, got.ExitTime)

	// Durable immediately: a fresh store sees the capture after load.
	fresh := store.New(store.Config{Engine: store.NewEngine(store.EngineConfig{Dir: dir})})
	fresh.Load()
	_, ok = fresh.GetCapture(capture.ID)
	assert.True(t, ok)
}

func TestComplete_EmptyInput(t *testing.T) {
	m, _, _ := newTestModule(t)

	_, err := m.Complete(context.Background(), "s1", store.CaptureQuick, "")
	assert.ErrorIs(t, err, kioerrors.ErrInvalidInput)
}

func TestComplete_UnknownType(t *testing.T) {
	m, _, _ := newTestModule(t)

	_, err := m.Complete(context.Background(), "s1", store.CaptureType("loud"), "text")
	assert.ErrorIs(t, err, kioerrors.ErrInvalidInput)
}

func TestComplete_UnknownSessionStillPersistsCapture(t *testing.T) {
	m, s, _ := newTestModule(t)

	capture, err := m.Complete(context.Background(), "ghost", store.CaptureInterrupt, "phone rang")
	require.NoError(t, err)

	got, ok := s.GetCapture(capture.ID)
	require.True(t, ok)
	assert.Equal(t, "phone rang", got.OriginalInput)
}

func TestComplete_DoesNotReopenClosedSession(t *testing.T) {
	m, s, _ := newTestModule(t)

	mgr := session.NewManager(s)
	started, err := mgr.StartSession("garden")
	require.NoError(t, err)
	ended, err := mgr.EndSession(started.ID)
	require.NoError(t, err)

	capture, err := m.Complete(context.Background(), started.ID, store.CaptureQuick, "late note")
	require.NoError(t, err)

	got, _ := s.GetSession(started.ID)
	assert.Equal(t, capture.ID, got.CaptureID)
	assert.True(t, got.ExitTime.Equal(*ended.ExitTime), "existing exit time must be kept")
}

func TestCompleteFromRecording(t *testing.T) {
	m, s, _ := newTestModule(t)

	started, err := session.NewManager(s).StartSession("garden")
	require.NoError(t, err)

	capture, err := m.CompleteFromRecording(context.Background(),
		stubTranscriber{text: "did: watered the beds"}, started.ID, store.CaptureQuick, "/tmp/rec.wav")
	require.NoError(t, err)
	assert.Equal(t, "did: watered the beds", capture.OriginalInput)
	assert.Equal(t, []string{"watered the beds"}, capture.ContextElements.LastAction)
}

func TestCompleteFromRecording_TranscriberError(t *testing.T) {
	m, _, _ := newTestModule(t)

	_, err := m.CompleteFromRecording(context.Background(),
		stubTranscriber{err: fmt.Errorf("microphone gone")}, "s1", store.CaptureQuick, "/tmp/rec.wav")
	assert.Error(t, err)
}
