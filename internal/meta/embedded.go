package meta

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/titanous/json5"
)

// Strategy 1: embedded structured data. Pages that hydrate client-side often
// ship the deck list inside a script block. Several known conventions are
// scanned for candidate JSON substrings; each candidate is parsed and its
// nested structure searched for a deck-shaped list.

var (
	reNextData = regexp.MustCompile(`(?is)<script[^>]+id=["']__NEXT_DATA__["'][^>]*>(\{.*\})</script>`)
	reJSONType = regexp.MustCompile(`(?is)<script[^>]+type=["']application/json["'][^>]*>(\{.*?\})</script>`)
	reVarDecks = regexp.MustCompile(`(?s)(?:var|let|const)\s+[A-Za-z0-9_]+\s*=\s*(\{\s*"?decks"?.*?\});`)
	reInline   = regexp.MustCompile(`(?s)"decks"\s*:\s*(\[\s*\{.*?\}\s*\])`)
	reScript   = regexp.MustCompile(`(?is)<script[^>]*>(\{[\s\S]*?\})</script>`)
	reComment  = regexp.MustCompile(`//.*?\n`)

	// Known global-state assignment conventions, checked in order.
	globalStateNames = []string{
		"__INITIAL_STATE__",
		"__PRELOADED_STATE__",
		"window.__INITIAL_STATE__",
		"window.__PRELOADED_STATE__",
	}
	globalStatePatterns = compileGlobalStatePatterns()
)

// Size window for last-ditch script bodies: anything smaller is not a deck
// list, anything larger is not plausible page state.
const (
	minScriptBody = 50
	maxScriptBody = 50000
)

func compileGlobalStatePatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(globalStateNames))
	for _, name := range globalStateNames {
		out = append(out, regexp.MustCompile(`(?s)`+regexp.QuoteMeta(name)+`\s*=\s*(\{.*?\});`))
	}
	return out
}

// jsonCandidates returns likely JSON substrings embedded in the page, in
// priority order, deduplicated.
func jsonCandidates(page string) []string {
	var candidates []string

	if m := reNextData.FindStringSubmatch(page); m != nil {
		candidates = append(candidates, m[1])
	}
	for _, m := range reJSONType.FindAllStringSubmatch(page, -1) {
		candidates = append(candidates, m[1])
	}
	for _, re := range globalStatePatterns {
		for _, m := range re.FindAllStringSubmatch(page, -1) {
			candidates = append(candidates, m[1])
		}
	}
	for _, m := range reVarDecks.FindAllStringSubmatch(page, -1) {
		candidates = append(candidates, m[1])
	}
	for _, m := range reInline.FindAllStringSubmatch(page, -1) {
		candidates = append(candidates, m[1])
	}
	// Last-ditch: any sizable JSON-looking script body that mentions decks.
	// Go's regexp caps counted repeats well below the size window, so the
	// bounds are checked on the match instead.
	for _, m := range reScript.FindAllStringSubmatch(page, -1) {
		if len(m[1]) < minScriptBody || len(m[1]) > maxScriptBody {
			continue
		}
		if strings.Contains(m[1], "decks") {
			candidates = append(candidates, m[1])
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// parseCandidate parses a candidate substring as JSON. On failure it strips
// single-line comment syntax and retries once, then falls back to JSON5 for
// JS-flavored literals (unquoted keys, trailing commas).
func parseCandidate(candidate string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err == nil {
		return v, true
	}
	stripped := reComment.ReplaceAllString(candidate, "")
	if err := json.Unmarshal([]byte(stripped), &v); err == nil {
		return v, true
	}
	if err := json5.Unmarshal([]byte(candidate), &v); err == nil {
		return v, true
	}
	return nil, false
}

// Traversal bounds for findDecks. Hydration payloads deeper or larger than
// this are not plausible page state; the candidate is treated as not
// containing decks.
const (
	maxSearchDepth = 64
	maxSearchNodes = 100000
)

type deckSearch struct {
	gameKey string
	visited int
}

// findDecks searches an arbitrary parsed structure depth-first for a list
// that looks like a deck list: either held under a "decks" key in a
// container tagged with the target game, or a "decks" list whose elements
// all carry name and cards keys. Map keys are visited in sorted order so the
// walk is deterministic.
func findDecks(v any, gameKey string) []any {
	s := &deckSearch{gameKey: strings.ToLower(gameKey)}
	return s.walk(v, 0)
}

func (s *deckSearch) walk(v any, depth int) []any {
	if depth > maxSearchDepth {
		return nil
	}
	s.visited++
	if s.visited > maxSearchNodes {
		return nil
	}
	switch t := v.(type) {
	case map[string]any:
		if decks, ok := t["decks"].([]any); ok {
			if game, ok := t["game"].(string); ok && strings.ToLower(game) == s.gameKey {
				return decks
			}
			if allDeckShaped(decks) {
				return decks
			}
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found := s.walk(t[k], depth+1); found != nil {
				return found
			}
		}
	case []any:
		// Inline candidates can be a bare deck array with no wrapping key.
		if allDeckShaped(t) {
			return t
		}
		for _, item := range t {
			if found := s.walk(item, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

func allDeckShaped(decks []any) bool {
	if len(decks) == 0 {
		return false
	}
	for _, d := range decks {
		m, ok := d.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := m["name"]; !ok {
			return false
		}
		if _, ok := m["cards"]; !ok {
			return false
		}
	}
	return true
}

// extractEmbedded runs strategy 1 over the page body. It returns the first
// deck-shaped list found across candidates plus any top-level "set" value
// from the container that held it.
func extractEmbedded(page string, gameKey string) ([]any, any) {
	for _, candidate := range jsonCandidates(page) {
		parsed, ok := parseCandidate(candidate)
		if !ok {
			continue
		}
		decks := findDecks(parsed, gameKey)
		if len(decks) == 0 {
			continue
		}
		var rawSet any
		if m, ok := parsed.(map[string]any); ok {
			rawSet = m["set"]
		}
		return decks, rawSet
	}
	return nil, nil
}
