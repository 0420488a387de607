package store

import "time"

// SchemaVersion is the current on-disk schema version tag.
const SchemaVersion = 1

type CaptureType string

const (
	CaptureQuick     CaptureType = "quick"
	CaptureInterrupt CaptureType = "interrupt"
)

// Session is a bounded work period on one project. Created when work starts,
// mutated in place to record the exit, an attached capture, or feedback.
type Session struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"projectId"`
	EntryTime      time.Time  `json:"entryTime"`
	ExitTime       *time.Time `json:"exitTime,omitempty"`
	CaptureID      string     `json:"captureId,omitempty"`
	FeedbackRating int        `json:"feedbackRating,omitempty"` // 1-5, 0 = none
	FeedbackTime   *time.Time `json:"feedbackTime,omitempty"`
}

// Capture is an immutable context snapshot taken at the end of a session.
// OriginalInput is stored verbatim; the store never transforms or truncates it.
type Capture struct {
	ID              string          `json:"id"`
	SessionID       string          `json:"sessionId"`
	Type            CaptureType     `json:"type"`
	OriginalInput   string          `json:"originalInput"`
	ContextElements ContextElements `json:"contextElements"`
	Timestamp       time.Time       `json:"timestamp"`
}

// ContextElements holds the structured fragments extracted from a capture.
// A nil slice means the element was not found; it is omitted on disk rather
// than encoded as an empty array.
type ContextElements struct {
	Intent        []string `json:"intent,omitempty"`
	LastAction    []string `json:"lastAction,omitempty"`
	OpenLoops     []string `json:"openLoops,omitempty"`
	NextAction    []string `json:"nextAction,omitempty"`
	OriginalInput string   `json:"originalInput"`
}

// Schema is the root aggregate and the unit of persistence. SessionsByProject
// is a maintained secondary index over Sessions, never a source of truth.
type Schema struct {
	Version           int                 `json:"version"`
	Sessions          map[string]Session  `json:"sessions"`
	SessionsByProject map[string][]string `json:"sessionsByProject"`
	Captures          map[string]Capture  `json:"captures"`
}

// NewSchema returns an empty schema at the current version.
func NewSchema() *Schema {
	return &Schema{
		Version:           SchemaVersion,
		Sessions:          make(map[string]Session),
		SessionsByProject: make(map[string][]string),
		Captures:          make(map[string]Capture),
	}
}
