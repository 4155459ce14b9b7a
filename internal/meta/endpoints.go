package meta

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Strategy 4: API discovery. When the page carries no usable markup the deck
// list is usually loaded over XHR. Scan script content for literal endpoint
// calls whose URL mentions decks, then probe each candidate until one
// returns a parseable deck list.

var (
	reFetchSingle = regexp.MustCompile(`(?is)fetch\(\s*'(.*?)'`)
	reFetchDouble = regexp.MustCompile(`(?is)fetch\(\s*"(.*?)"`)
	reAxiosSingle = regexp.MustCompile(`(?is)axios\.(?:get|post)\(\s*'(.*?)'`)
	reAxiosDouble = regexp.MustCompile(`(?is)axios\.(?:get|post)\(\s*"(.*?)"`)
	reAPIPath     = regexp.MustCompile(`(?i)["'](/api/[^"']*decks[^"']*)["']`)
)

// apiEndpoints returns candidate deck endpoints referenced by the page,
// resolved against base, deduplicated in first-seen order.
func apiEndpoints(page string, base string) []string {
	var urls []string
	add := func(u string) {
		if u == "" {
			return
		}
		if strings.HasPrefix(u, "http") {
			urls = append(urls, u)
			return
		}
		urls = append(urls, strings.TrimRight(base, "/")+"/"+strings.TrimLeft(u, "/"))
	}

	for _, re := range []*regexp.Regexp{reFetchSingle, reFetchDouble, reAxiosSingle, reAxiosDouble} {
		for _, m := range re.FindAllStringSubmatch(page, -1) {
			if strings.Contains(strings.ToLower(m[1]), "deck") {
				add(m[1])
			}
		}
	}
	for _, m := range reAPIPath.FindAllStringSubmatch(page, -1) {
		add(m[1])
	}

	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// extractEndpoints runs strategy 4: GET each discovered endpoint in order
// and stop at the first whose response contains a deck-shaped list. Endpoint
// failures are absorbed; the next candidate is tried.
func (p *Pipeline) extractEndpoints(ctx context.Context, page string) ([]any, any) {
	for _, endpoint := range apiEndpoints(page, p.base()) {
		reqCtx, cancel := context.WithTimeout(ctx, p.endpointTimeout())
		body, err := p.Client.Get(reqCtx, endpoint)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("url", endpoint).Msg("candidate API endpoint failed")
			continue
		}
		var parsed any
		if err := json.Unmarshal(body, &parsed); err != nil {
			continue
		}
		decks := findDecks(parsed, p.game())
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
