package store

import (
	"log/slog"
	"slices"
	"sync"
	stdatomic "sync/atomic"
	"time"

	"github.com/harunnryd/kioku/internal/concurrency"
)

// Store is the in-memory cache over one data directory. It exclusively owns
// its schema instance; the persistence engine only ever sees serialized
// bytes. Record mutations are in-memory and non-blocking; disk state reflects
// the schema as of the most recently completed Save.
type Store struct {
	engine *Engine

	mu     sync.RWMutex // guards schema
	schema *Schema
	dirty  stdatomic.Bool

	// saveMu serializes every save-protocol invocation so an explicit save
	// and a concurrently-firing autosave tick cannot interleave the backup
	// rotation sequence.
	saveMu sync.Mutex

	listenersMu sync.Mutex
	listeners   []func(error)

	autosaveInterval time.Duration
	autosaveMu       sync.Mutex
	autosaveQuit     chan struct{}
	autosaveWG       sync.WaitGroup
}

const DefaultAutosaveInterval = 30 * time.Second

type Config struct {
	Engine           *Engine
	AutosaveInterval time.Duration
}

func New(cfg Config) *Store {
	interval := cfg.AutosaveInterval
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Store{
		engine:           cfg.Engine,
		schema:           NewSchema(),
		autosaveInterval: interval,
	}
}

// SaveSession upserts a session and maintains the by-project index. Re-saving
// the same session never duplicates its index entry. Marks the store dirty;
// never flushes to disk by itself.
func (s *Store) SaveSession(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schema.Sessions[session.ID] = session

	ids := s.schema.SessionsByProject[session.ProjectID]
	if !slices.Contains(ids, session.ID) {
		s.schema.SessionsByProject[session.ProjectID] = append(ids, session.ID)
	}

	s.dirty.Store(true)
}

func (s *Store) GetSession(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.schema.Sessions[id]
	return session, ok
}

// GetSessionsByProject returns the project's sessions in index order. Unknown
// projects yield an empty slice, not an error.
func (s *Store) GetSessionsByProject(projectID string) []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.schema.SessionsByProject[projectID]
	sessions := make([]Session, 0, len(ids))
	for _, id := range ids {
		if session, ok := s.schema.Sessions[id]; ok {
			sessions = append(sessions, session)
		}
	}
	return sessions
}

// ProjectIDs returns every project known to the index, sorted.
func (s *Store) ProjectIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.schema.SessionsByProject))
	for id := range s.schema.SessionsByProject {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Store) SaveCapture(capture Capture) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schema.Captures[capture.ID] = capture
	s.dirty.Store(true)
}

func (s *Store) GetCapture(id string) (Capture, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	capture, ok := s.schema.Captures[id]
	return capture, ok
}

// SaveFeedback records a rating against an existing session. Unknown session
// ids are a silent no-op, not an error.
func (s *Store) SaveFeedback(sessionID string, rating int, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.schema.Sessions[sessionID]
	if !ok {
		return
	}

	session.FeedbackRating = rating
	session.FeedbackTime = &at
	s.schema.Sessions[sessionID] = session
	s.dirty.Store(true)
}

func (s *Store) Dirty() bool {
	return s.dirty.Load()
}

// Save commits a full snapshot through the persistence engine. On failure
// every registered listener is invoked synchronously before the error is
// returned, and the dirty flag stays set so the next autosave tick retries.
func (s *Store) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	err := s.engine.Save(s.schema)
	if err == nil {
		// Clear while still holding the read lock. A writer queued on mu
		// would otherwise slip in between the unlock and the clear, and its
		// dirty mark would be stomped with the mutation still unflushed.
		s.dirty.Store(false)
	}
	s.mu.RUnlock()

	if err != nil {
		s.notifyFailure(err)
		return err
	}
	return nil
}

// ImmediateSave is Save under a name that signals intent: callers that need
// a durability guarantee right after a critical write use this instead of
// waiting for the autosave interval.
func (s *Store) ImmediateSave() error {
	return s.Save()
}

// Load replaces the in-memory schema with the most recent valid snapshot on
// disk. Any unsaved in-memory state is discarded.
func (s *Store) Load() {
	loaded := s.engine.Load()

	s.mu.Lock()
	s.schema = loaded
	s.mu.Unlock()

	s.dirty.Store(false)
}

// OnFailure registers a listener invoked whenever a save fails, scheduled or
// immediate. All listeners run synchronously before the error propagates.
func (s *Store) OnFailure(listener func(error)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, listener)
}

func (s *Store) notifyFailure(err error) {
	s.listenersMu.Lock()
	listeners := slices.Clone(s.listeners)
	s.listenersMu.Unlock()

	for _, listener := range listeners {
		listener(err)
	}
}

// StartAutoSave launches the periodic flush loop. Calling it again while the
// loop is running is a no-op; duplicate timers are never created.
func (s *Store) StartAutoSave() {
	s.autosaveMu.Lock()
	defer s.autosaveMu.Unlock()

	if s.autosaveQuit != nil {
		return
	}

	quit := make(chan struct{})
	s.autosaveQuit = quit
	s.autosaveWG.Add(1)

	concurrency.SafeGo(func() {
		defer s.autosaveWG.Done()
		s.autosaveLoop(quit)
	}, nil)
}

func (s *Store) autosaveLoop(quit chan struct{}) {
	ticker := time.NewTicker(s.autosaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !s.dirty.Load() {
				continue
			}
			if err := s.Save(); err != nil {
				slog.Warn("Autosave failed, will retry on next tick", "error", err)
			}
		case <-quit:
			return
		}
	}
}

// StopAutoSave cancels the flush loop. Safe to call when no loop is running.
// It does not interrupt a save already in progress; it only prevents future
// scheduled saves.
func (s *Store) StopAutoSave() {
	s.autosaveMu.Lock()
	defer s.autosaveMu.Unlock()

	if s.autosaveQuit == nil {
		return
	}

	close(s.autosaveQuit)
	s.autosaveWG.Wait()
	s.autosaveQuit = nil
}
