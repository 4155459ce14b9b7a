package meta

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy 2: semantic HTML. Some renderings of the leaderboard use
// conventional deck/card class names; scrape them with CSS selectors and
// parse card rows out of their text.

const (
	deckItemSelector  = ".deck-card, .deck, .deck-item, .deck-row"
	deckNameSelector  = ".deck-title, .title, .name"
	cardRowSelector   = "li.card, .card-row, .deck-card-row"
	winRateSelector   = ".win, .win-rate, .win_pct"
	metaShareSelector = ".share, .meta-share, .usage"
)

var (
	reQtyPrefix    = regexp.MustCompile(`^(\d+)\s*[xX]\s*(.+)`)
	reQtyPrefixOpt = regexp.MustCompile(`^(\d+)\s*[xX]?\s*(.+)`)
	reTrailingCode = regexp.MustCompile(`\(([^)]+)\)\s*$`)
	reTrailingQty  = regexp.MustCompile(`^(.+?)\s+(\d+)$`)
)

// parseCardText parses one textual card row. Two known layouts:
// "<qty>x <name> (<code>)" and "<name> <qty>". With optionalX the quantity
// marker may be a bare number prefix, as seen on detail pages.
func parseCardText(text string, optionalX bool) (map[string]any, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}
	re := reQtyPrefix
	if optionalX {
		re = reQtyPrefixOpt
	}
	if m := re.FindStringSubmatch(text); m != nil {
		qty, _ := strconv.Atoi(m[1])
		rest := m[2]
		code := ""
		if cm := reTrailingCode.FindStringSubmatch(rest); cm != nil {
			code = cm[1]
		}
		name := strings.TrimSpace(reTrailingCode.ReplaceAllString(rest, ""))
		return map[string]any{"name": name, "code": code, "qty": qty}, true
	}
	if !optionalX {
		if m := reTrailingQty.FindStringSubmatch(text); m != nil {
			qty, _ := strconv.Atoi(m[2])
			return map[string]any{"name": strings.TrimSpace(m[1]), "code": "", "qty": qty}, true
		}
	}
	return nil, false
}

// selectionPct reads a percentage from child elements matching sel,
// trimming a trailing '%'. Returns 0 when absent or unparseable.
func selectionPct(s *goquery.Selection, sel string) float64 {
	node := s.Find(sel).First()
	if node.Length() == 0 {
		return 0
	}
	txt := strings.TrimSuffix(strings.TrimSpace(node.Text()), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(txt), 64)
	if err != nil {
		return 0
	}
	return v
}

// extractSelectors runs strategy 2 over a parsed document.
func extractSelectors(doc *goquery.Document) []any {
	var decks []any
	doc.Find(deckItemSelector).Each(func(_ int, item *goquery.Selection) {
		name := strings.TrimSpace(item.Find(deckNameSelector).First().Text())
		if name == "" {
			name, _ = item.Attr("data-name")
		}
		if name == "" {
			name, _ = item.Attr("title")
		}

		var cards []any
		item.Find(cardRowSelector).Each(func(_ int, row *goquery.Selection) {
			if card, ok := parseCardText(row.Text(), false); ok {
				cards = append(cards, card)
			}
		})

		decks = append(decks, map[string]any{
			"name":    name,
			"win_pct": selectionPct(item, winRateSelector),
			"share":   selectionPct(item, metaShareSelector),
			"cards":   cards,
		})
	})
	return decks
}
