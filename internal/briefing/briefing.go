package briefing

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/harunnryd/kioku/internal/store"

	"github.com/natefinch/atomic"
)

// Briefing is a read-only view over one project: its recent sessions and the
// context elements of the latest capture, ready to resume from.
type Briefing struct {
	ProjectID   string
	GeneratedAt time.Time
	Sessions    []store.Session
	LastCapture *store.Capture
}

// Generator builds briefings from the store facade. It never mutates records.
type Generator struct {
	store          *store.Store
	recentSessions int
	now            func() time.Time
}

func NewGenerator(s *store.Store, recentSessions int) *Generator {
	if recentSessions <= 0 {
		recentSessions = 5
	}
	return &Generator{
		store:          s,
		recentSessions: recentSessions,
		now:            time.Now,
	}
}

// ForProject assembles a briefing. An unknown project yields an empty
// briefing, not an error; there is simply nothing to report yet.
func (g *Generator) ForProject(projectID string) Briefing {
	sessions := g.store.GetSessionsByProject(projectID)
	if len(sessions) > g.recentSessions {
		sessions = sessions[len(sessions)-g.recentSessions:]
	}

	b := Briefing{
		ProjectID:   projectID,
		GeneratedAt: g.now().UTC(),
		Sessions:    sessions,
	}

	// Walk backwards to the most recent session that has a capture.
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].CaptureID == "" {
			continue
		}
		if capture, ok := g.store.GetCapture(sessions[i].CaptureID); ok {
			b.LastCapture = &capture
			break
		}
	}

	return b
}

// PlainText renders the briefing without styling, for file export.
func (b Briefing) PlainText() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Briefing for %s (generated %s)\n\n", b.ProjectID, b.GeneratedAt.Format(time.RFC3339))

	if len(b.Sessions) == 0 {
		sb.WriteString("No sessions recorded yet.\n")
		return sb.String()
	}

	sb.WriteString("Recent sessions:\n")
	for _, s := range b.Sessions {
		line := fmt.Sprintf("- %s  entered %s", shortID(s.ID), s.EntryTime.Format("2006-01-02 15:04"))
		if s.ExitTime != nil {
			line += fmt.Sprintf(", left %s", s.ExitTime.Format("15:04"))
		} else {
			line += ", still open"
		}
		if s.FeedbackRating > 0 {
			line += fmt.Sprintf(", rated %d/5", s.FeedbackRating)
		}
		sb.WriteString(line + "\n")
	}

	if b.LastCapture != nil {
		elements := b.LastCapture.ContextElements
		writeSection(&sb, "Intent", elements.Intent)
		writeSection(&sb, "Last action", elements.LastAction)
		writeSection(&sb, "Open loops", elements.OpenLoops)
		writeSection(&sb, "Next action", elements.NextAction)
	}

	return sb.String()
}

func writeSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}

// Export writes the plain-text briefing to a file atomically.
func (b Briefing) Export(path string) error {
	return atomic.WriteFile(path, bytes.NewReader([]byte(b.PlainText())))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
