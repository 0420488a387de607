package extractor

import (
	"regexp"
	"strings"

	"github.com/harunnryd/kioku/internal/store"
)

// Extractor pulls structured context elements out of free-form capture text.
// Implementations must never modify the original input; it travels verbatim
// into the returned elements.
type Extractor interface {
	Extract(input string) store.ContextElements
}

// RegexExtractor matches labeled lines first ("intent: ...", "next: ...")
// and falls back to sentence cues ("working on ...", "still need to ...").
// An element with no match stays nil, which the store persists as absent.
type RegexExtractor struct {
	intent     []*regexp.Regexp
	lastAction []*regexp.Regexp
	openLoops  []*regexp.Regexp
	nextAction []*regexp.Regexp
}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{
		intent: compile(
			`(?i)^\s*(?:intent|goal)\s*:\s*(.+)$`,
			`(?i)\b(?:working on|trying to|i want to)\s+(.+?)(?:[.;]|$)`,
		),
		lastAction: compile(
			`(?i)^\s*(?:did|last|done)\s*:\s*(.+)$`,
			`(?i)\b(?:just finished|just did|i just)\s+(.+?)(?:[.;]|$)`,
		),
		openLoops: compile(
			`(?i)^\s*(?:open|blocked|waiting)\s*:\s*(.+)$`,
			`(?i)\b(?:still need to|waiting on|haven't)\s+(.+?)(?:[.;]|$)`,
		),
		nextAction: compile(
			`(?i)^\s*(?:next|todo)\s*:\s*(.+)$`,
			`(?i)\b(?:next i(?:'ll| will)?|then i(?:'ll| will)?)\s+(.+?)(?:[.;]|$)`,
		),
	}
}

func compile(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}

func (e *RegexExtractor) Extract(input string) store.ContextElements {
	elements := store.ContextElements{OriginalInput: input}

	lines := strings.Split(input, "\n")
	elements.Intent = matchAll(e.intent, lines)
	elements.LastAction = matchAll(e.lastAction, lines)
	elements.OpenLoops = matchAll(e.openLoops, lines)
	elements.NextAction = matchAll(e.nextAction, lines)

	return elements
}

func matchAll(patterns []*regexp.Regexp, lines []string) []string {
	var found []string
	for _, line := range lines {
		for _, p := range patterns {
			m := p.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			text := strings.TrimSpace(m[1])
			if text != "" {
				found = append(found, text)
				break
			}
		}
	}
	return found
}
