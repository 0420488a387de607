package briefing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harunnryd/kioku/internal/capture"
	"github.com/harunnryd/kioku/internal/extractor"
	"github.com/harunnryd/kioku/internal/session"
	"github.com/harunnryd/kioku/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(store.Config{Engine: store.NewEngine(store.EngineConfig{Dir: t.TempDir()})})

	mgr := session.NewManager(s)
	mod := capture.NewModule(s, extractor.NewRegexExtractor())

	started, err := mgr.StartSession("garden")
	require.NoError(t, err)
	_, err = mod.Complete(context.Background(), started.ID, store.CaptureQuick,
		"did: pruned the roses\nopen: mulch delivery\nnext: plant bulbs")
	require.NoError(t, err)
	require.NoError(t, mgr.RecordFeedback(started.ID, 4))

	return s
}

func TestForProject(t *testing.T) {
	g := NewGenerator(seededStore(t), 5)

	b := g.ForProject("garden")
	require.Len(t, b.Sessions, 1)
	require.NotNil(t, b.LastCapture)
	assert.Equal(t, []string{"plant bulbs"}, b.LastCapture.ContextElements.NextAction)
}

func TestForProject_Unknown(t *testing.T) {
	g := NewGenerator(seededStore(t), 5)

	b := g.ForProject("nobody")
	assert.Empty(t, b.Sessions)
	assert.Nil(t, b.LastCapture)
}

func TestForProject_LimitsRecentSessions(t *testing.T) {
	s := store.New(store.Config{Engine: store.NewEngine(store.EngineConfig{Dir: t.TempDir()})})
	mgr := session.NewManager(s)

	var lastID string
	for i := 0; i < 4; i++ {
		started, err := mgr.StartSession("garden")
		require.NoError(t, err)
		_, err = mgr.EndSession(started.ID)
		require.NoError(t, err)
		lastID = started.ID
	}

	g := NewGenerator(s, 2)
	b := g.ForProject("garden")
	require.Len(t, b.Sessions, 2)
	assert.Equal(t, lastID, b.Sessions[1].ID, "expected the newest sessions to survive the cut")
}

func TestPlainText(t *testing.T) {
	g := NewGenerator(seededStore(t), 5)

	text := g.ForProject("garden").PlainText()
	assert.Contains(t, text, "Briefing for garden")
	assert.Contains(t, text, "Open loops:")
	assert.Contains(t, text, "mulch delivery")
	assert.Contains(t, text, "rated 4/5")
}

func TestRender(t *testing.T) {
	g := NewGenerator(seededStore(t), 5)

	out := g.ForProject("garden").Render()
	assert.Contains(t, out, "Briefing: garden")
	assert.Contains(t, out, "plant bulbs")
}

func TestExport(t *testing.T) {
	g := NewGenerator(seededStore(t), 5)
	path := filepath.Join(t.TempDir(), "briefing.txt")

	require.NoError(t, g.ForProject("garden").Export(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "plant bulbs"))
}
