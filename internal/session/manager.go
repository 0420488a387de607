package session

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	kioerrors "github.com/harunnryd/kioku/internal/errors"
	"github.com/harunnryd/kioku/internal/store"

	"github.com/oklog/ulid/v2"
)

// Manager owns the session lifecycle: start, end, feedback. It mutates
// records through the store facade and leaves durability to the caller or
// the autosave loop.
type Manager struct {
	store *store.Store
	now   func() time.Time
}

func NewManager(s *store.Store) *Manager {
	return &Manager{
		store: s,
		now:   time.Now,
	}
}

// StartSession opens a new work period on a project. The project may have at
// most one open session at a time.
func (m *Manager) StartSession(projectID string) (store.Session, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return store.Session{}, fmt.Errorf("%w: project id is empty", kioerrors.ErrInvalidInput)
	}

	if active, ok := m.ActiveSession(projectID); ok {
		return store.Session{}, fmt.Errorf("%w: session %s on project %s", kioerrors.ErrSessionActive, active.ID, projectID)
	}

	session := store.Session{
		ID:        ulid.Make().String(),
		ProjectID: projectID,
		EntryTime: m.now().UTC(),
	}
	m.store.SaveSession(session)

	slog.Info("Session started", "session", session.ID, "project", projectID)
	return session, nil
}

// EndSession closes an open session. Ending an already-closed session keeps
// the original exit time.
func (m *Manager) EndSession(sessionID string) (store.Session, error) {
	session, ok := m.store.GetSession(sessionID)
	if !ok {
		return store.Session{}, fmt.Errorf("%w: session %s", kioerrors.ErrNotFound, sessionID)
	}
	if session.ExitTime != nil {
		return session, nil
	}

	exit := m.now().UTC()
	if exit.Before(session.EntryTime) {
		exit = session.EntryTime
	}
	session.ExitTime = &exit
	m.store.SaveSession(session)

	slog.Info("Session ended", "session", session.ID, "project", session.ProjectID)
	return session, nil
}

// RecordFeedback validates the rating and stores it. An unknown session is a
// silent no-op, matching the store contract.
func (m *Manager) RecordFeedback(sessionID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating %d is out of range 1-5", kioerrors.ErrInvalidInput, rating)
	}

	m.store.SaveFeedback(sessionID, rating, m.now().UTC())
	return nil
}

// ActiveSession returns the most recently started session on the project
// that has not been closed yet.
func (m *Manager) ActiveSession(projectID string) (store.Session, bool) {
	sessions := m.store.GetSessionsByProject(projectID)
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].ExitTime == nil {
			return sessions[i], true
		}
	}
	return store.Session{}, false
}
