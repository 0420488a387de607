package briefing

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

type renderer struct {
	titleStyle   lipgloss.Style
	headerStyle  lipgloss.Style
	oddRowStyle  lipgloss.Style
	evenRowStyle lipgloss.Style
	borderStyle  lipgloss.Style
	sectionStyle lipgloss.Style
}

func newRenderer() *renderer {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	return &renderer{
		titleStyle: lipgloss.NewStyle().
			Foreground(purple).
			Bold(true),
		headerStyle: lipgloss.NewStyle().
			Foreground(purple).
			Bold(true).
			Align(lipgloss.Center).
			Padding(0, 1),
		oddRowStyle: lipgloss.NewStyle().
			Foreground(gray).
			Padding(0, 1),
		evenRowStyle: lipgloss.NewStyle().
			Foreground(lightGray).
			Padding(0, 1),
		borderStyle: lipgloss.NewStyle().
			Foreground(purple),
		sectionStyle: lipgloss.NewStyle().
			Bold(true),
	}
}

// Render produces the styled terminal view of a briefing: a session table
// followed by the latest capture's context elements.
func (b Briefing) Render() string {
	r := newRenderer()
	var sb strings.Builder

	sb.WriteString(r.titleStyle.Render(fmt.Sprintf("Briefing: %s", b.ProjectID)))
	sb.WriteString("\n")

	if len(b.Sessions) == 0 {
		sb.WriteString("No sessions recorded yet.\n")
		return sb.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return r.headerStyle
			case row%2 == 0:
				return r.evenRowStyle
			default:
				return r.oddRowStyle
			}
		}).
		Headers("Session", "Entered", "Left", "Rating")

	for _, s := range b.Sessions {
		left := "open"
		if s.ExitTime != nil {
			left = s.ExitTime.Format("15:04")
		}
		rating := "-"
		if s.FeedbackRating > 0 {
			rating = fmt.Sprintf("%d/5", s.FeedbackRating)
		}
		t.Row(shortID(s.ID), s.EntryTime.Format("2006-01-02 15:04"), left, rating)
	}

	sb.WriteString(t.Render())
	sb.WriteString("\n")

	if b.LastCapture != nil {
		elements := b.LastCapture.ContextElements
		renderSection(&sb, r, "Intent", elements.Intent)
		renderSection(&sb, r, "Last action", elements.LastAction)
		renderSection(&sb, r, "Open loops", elements.OpenLoops)
		renderSection(&sb, r, "Next action", elements.NextAction)
	}

	return sb.String()
}

func renderSection(sb *strings.Builder, r *renderer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + r.sectionStyle.Render(title) + "\n")
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
}
