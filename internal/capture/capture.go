package capture

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	kioerrors "github.com/harunnryd/kioku/internal/errors"
	"github.com/harunnryd/kioku/internal/extractor"
	"github.com/harunnryd/kioku/internal/logger"
	"github.com/harunnryd/kioku/internal/store"

	"github.com/oklog/ulid/v2"
)

// Transcriber turns a voice recording into text. The recording and
// transcription machinery lives outside this module; captures only consume
// the resulting text.
type Transcriber interface {
	Transcribe(ctx context.Context, recordingPath string) (string, error)
}

// Module completes captures: it extracts context elements, persists the
// write-once capture record, stamps the owning session, and forces the
// snapshot to disk before returning.
type Module struct {
	store     *store.Store
	extractor extractor.Extractor
	now       func() time.Time
}

func NewModule(s *store.Store, e extractor.Extractor) *Module {
	return &Module{
		store:     s,
		extractor: e,
		now:       time.Now,
	}
}

// Complete records a capture against a session. The input is stored verbatim.
// The owning session, when present, gets its captureId and exitTime set; a
// missing session only skips that step. The call returns after an
// ImmediateSave so the capture is durable when control goes back to the user.
func (m *Module) Complete(ctx context.Context, sessionID string, capType store.CaptureType, input string) (store.Capture, error) {
	if input == "" {
		return store.Capture{}, fmt.Errorf("%w: capture input is empty", kioerrors.ErrInvalidInput)
	}
	if capType != store.CaptureQuick && capType != store.CaptureInterrupt {
		return store.Capture{}, fmt.Errorf("%w: unknown capture type %q", kioerrors.ErrInvalidInput, capType)
	}

	ctx = logger.WithSessionID(ctx, sessionID)

	capture := store.Capture{
		ID:              ulid.Make().String(),
		SessionID:       sessionID,
		Type:            capType,
		OriginalInput:   input,
		ContextElements: m.extractor.Extract(input),
		Timestamp:       m.now().UTC(),
	}
	m.store.SaveCapture(capture)

	if session, ok := m.store.GetSession(sessionID); ok {
		session.CaptureID = capture.ID
		if session.ExitTime == nil {
			exit := capture.Timestamp
			session.ExitTime = &exit
		}
		m.store.SaveSession(session)
	} else {
		slog.Warn("Capture references an unknown session",
			"capture", capture.ID, "session", logger.GetSessionID(ctx))
	}

	if err := m.store.ImmediateSave(); err != nil {
		// The capture is still live in memory; surface the failure so the
		// caller can warn the user while autosave keeps retrying.
		return capture, err
	}

	slog.Info("Capture completed", "capture", capture.ID, "session", sessionID, "type", capType)
	return capture, nil
}

// CompleteFromRecording transcribes a voice recording and completes a capture
// with the resulting text.
func (m *Module) CompleteFromRecording(ctx context.Context, t Transcriber, sessionID string, capType store.CaptureType, recordingPath string) (store.Capture, error) {
	text, err := t.Transcribe(ctx, recordingPath)
	if err != nil {
		return store.Capture{}, fmt.Errorf("transcribe recording: %w", err)
	}
	return m.Complete(ctx, sessionID, capType, text)
}
