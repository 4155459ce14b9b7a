package meta

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// Strategy 3: attribute table. The leaderboard may render as a plain table
// whose rows expose win rate and meta share as data attributes (fractions)
// and link to a per-deck detail page. Card lists are recovered by fetching
// each detail page in row order; a failed or unrecognized detail page leaves
// that deck's card list empty rather than failing the run.

const (
	tableRowSelector   = "tr[data-share], tr[data-winrate]"
	deckLinkSelector   = "a[href^='/decks/']"
	detailCardSelector = "li.card, .card-row, .deck-card-row, .deck-list li, .deck-cards li"
	decklistLinkSel    = "a[href*='/tournament/'][href$='/decklist']"
	decklistInputSel   = "input[name='input']"
)

var (
	reDecklistBlock = regexp.MustCompile("(?s)const\\s+decklist\\s*=\\s*`([^`]*)`")
	reDecklistLine  = regexp.MustCompile(`^(\d+)\s+(.*)\s+([A-Za-z0-9-]+)\s+([0-9]+)$`)
)

func attrFraction(row *goquery.Selection, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := row.Attr(k); ok && strings.TrimSpace(v) != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0
			}
			return f * 100.0
		}
	}
	return 0
}

// extractTable runs strategy 3. Collection stops at ten rows; detail fetches
// are sequential so leaderboard rank order is preserved.
func (p *Pipeline) extractTable(ctx context.Context, doc *goquery.Document) []any {
	var decks []any
	doc.Find(tableRowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		link := row.Find(deckLinkSelector).First()
		if link.Length() == 0 {
			return true
		}
		href, _ := link.Attr("href")
		name := strings.TrimSpace(link.Text())

		cards := p.detailCards(ctx, p.base()+href)
		decks = append(decks, map[string]any{
			"name":    name,
			"win_pct": attrFraction(row, "data-winrate", "data-win"),
			"share":   attrFraction(row, "data-share", "data-usage"),
			"cards":   cards,
		})
		return len(decks) < maxDecks
	})
	return decks
}

// detailCards fetches a deck detail page and tries, in order: generic card
// row selectors, preformatted text lines, and a linked tournament decklist
// page. Any failure yields an empty list.
func (p *Pipeline) detailCards(ctx context.Context, url string) []any {
	fetchCtx, cancel := context.WithTimeout(ctx, p.detailTimeout())
	defer cancel()

	body, err := p.Client.Get(fetchCtx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("deck detail fetch failed; keeping empty card list")
		return []any{}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("deck detail parse failed")
		return []any{}
	}

	var cards []any
	doc.Find(detailCardSelector).Each(func(_ int, row *goquery.Selection) {
		if card, ok := parseCardText(row.Text(), true); ok {
			cards = append(cards, card)
		}
	})
	if len(cards) == 0 {
		doc.Find("pre, code").Each(func(_ int, block *goquery.Selection) {
			for _, line := range strings.Split(block.Text(), "\n") {
				if card, ok := parseCardText(line, true); ok {
					cards = append(cards, card)
				}
			}
		})
	}
	if len(cards) == 0 {
		if href, ok := doc.Find(decklistLinkSel).First().Attr("href"); ok && href != "" {
			cards = p.tournamentDecklist(ctx, p.base()+href)
		}
	}
	if cards == nil {
		cards = []any{}
	}
	return cards
}

// tournamentDecklist extracts cards from a tournament decklist page. The
// preferred source is a hidden form input holding an HTML-escaped JSON array
// of {count,name,set,number} records; some pages instead define the list as
// a backtick-delimited text block in script. The fetch gets its own timeout
// rather than sharing the detail page's remaining budget.
func (p *Pipeline) tournamentDecklist(ctx context.Context, url string) []any {
	fetchCtx, cancel := context.WithTimeout(ctx, p.detailTimeout())
	defer cancel()

	body, err := p.Client.Get(fetchCtx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("tournament decklist fetch failed")
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	if raw, ok := doc.Find(decklistInputSel).First().Attr("value"); ok && raw != "" {
		if cards := parseDecklistInput(raw); len(cards) > 0 {
			return cards
		}
	}
	if m := reDecklistBlock.FindSubmatch(body); m != nil {
		return parseDecklistBlock(string(m[1]))
	}
	return nil
}

func parseDecklistInput(raw string) []any {
	var entries []map[string]any
	if err := json.Unmarshal([]byte(html.UnescapeString(raw)), &entries); err != nil {
		return nil
	}
	cards := make([]any, 0, len(entries))
	for _, e := range entries {
		qty := 0
		switch c := e["count"].(type) {
		case float64:
			qty = int(c)
		case string:
			qty, _ = strconv.Atoi(c)
		}
		name, _ := e["name"].(string)
		setCode, _ := e["set"].(string)
		number, _ := e["number"].(string)
		code := ""
		if setCode != "" || number != "" {
			code = setCode + "-" + number
		}
		cards = append(cards, map[string]any{"name": name, "code": code, "qty": qty})
	}
	return cards
}

func parseDecklistBlock(block string) []any {
	var cards []any
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := reDecklistLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		qty, _ := strconv.Atoi(m[1])
		cards = append(cards, map[string]any{
			"name": strings.TrimSpace(m[2]),
			"code": m[3] + "-" + m[4],
			"qty":  qty,
		})
	}
	return cards
}
