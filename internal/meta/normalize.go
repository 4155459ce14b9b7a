package meta

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The normalizer converts whichever heterogeneous records a strategy
// produced into the fixed Deck/Card schema. Field lookups go through known
// key aliases; numeric parse failures default to zero and never propagate.

var (
	nameAliases  = []string{"name", "title", "deckName"}
	winAliases   = []string{"win_pct", "winPercent", "win", "winrate"}
	shareAliases = []string{"share", "metaShare", "percentage", "usage"}
	cardsAliases = []string{"cards", "list", "cardsList"}
	cnameAliases = []string{"name", "cardName"}
	ccodeAliases = []string{"code", "id", "cardId"}
	cqtyAliases  = []string{"qty", "quantity", "count"}
)

func aliased(m map[string]any, keys []string) any {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		// Empty strings and zero values fall through to the next alias.
		switch t := v.(type) {
		case string:
			if t == "" {
				continue
			}
		case float64:
			if t == 0 {
				continue
			}
		case int:
			if t == 0 {
				continue
			}
		}
		return v
	}
	return nil
}

func aliasedString(m map[string]any, keys []string) string {
	v := aliased(m, keys)
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// parsePct accepts a numeric value or a string with an optional trailing
// '%'. Any parse failure yields 0; the result is rounded to two decimals.
func parsePct(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return round2(t)
	case int:
		return round2(float64(t))
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		return round2(f)
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// coerceQty converts a quantity of any source type to a non-negative int,
// defaulting to 0 on failure.
func coerceQty(v any) int {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0
		}
		return int(t)
	case int:
		if t < 0 {
			return 0
		}
		return t
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil || n < 0 {
			return 0
		}
		return n
	default:
		return 0
	}
}

func normalizeCards(raw any) []Card {
	items, ok := raw.([]any)
	if !ok {
		return []Card{}
	}
	cards := make([]Card, 0, len(items))
	for _, item := range items {
		switch c := item.(type) {
		case map[string]any:
			cards = append(cards, Card{
				Name: aliasedString(c, cnameAliases),
				Code: aliasedString(c, ccodeAliases),
				Qty:  coerceQty(aliased(c, cqtyAliases)),
			})
		case []any:
			// Pair shape: [qty, "Card Name (CODE)"]
			if len(c) < 2 {
				continue
			}
			cards = append(cards, Card{
				Name: fmt.Sprint(c[1]),
				Code: "",
				Qty:  coerceQty(c[0]),
			})
		default:
			// unknown shape, skip
		}
	}
	return cards
}

func normalizeDeck(m rawDeck) Deck {
	return Deck{
		Name:   aliasedString(m, nameAliases),
		WinPct: parsePct(aliased(m, winAliases)),
		Share:  parsePct(aliased(m, shareAliases)),
		Cards:  normalizeCards(aliased(m, cardsAliases)),
	}
}

// normalizeDecks converts at most the first maxDecks raw records. Records
// that are not maps carrying both a name and a cards key are dropped
// silently without affecting their siblings.
func normalizeDecks(raw []any) []Deck {
	if len(raw) > maxDecks {
		raw = raw[:maxDecks]
	}
	decks := make([]Deck, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(rawDeck)
		if !ok {
			continue
		}
		if _, ok := m["name"]; !ok {
			continue
		}
		if _, ok := m["cards"]; !ok {
			continue
		}
		decks = append(decks, normalizeDeck(m))
	}
	return decks
}

// normalizeSet shapes whatever the enrichment or embedded data produced
// into a stable SetMeta. Unresolved fields stay empty.
func normalizeSet(raw any) SetMeta {
	switch t := raw.(type) {
	case map[string]any:
		id := aliasedString(t, []string{"id", "code", "name"})
		name := aliasedString(t, []string{"name", "id"})
		logo := ""
		if l := aliasedString(t, []string{"logo"}); l != "" {
			logo = l + ".png"
		} else if s := aliasedString(t, []string{"symbol"}); s != "" {
			logo = s + ".png"
		} else {
			logo = aliasedString(t, []string{"image"})
		}
		return SetMeta{ID: id, Name: name, Logo: logo}
	case string:
		if t == "" {
			return SetMeta{}
		}
		return SetMeta{ID: t, Name: t}
	default:
		return SetMeta{}
	}
}
