package render

import (
	"regexp"
	"sort"
	"strings"

	"github.com/grafai/grafai/internal/meta"
)

var reWordSplit = regexp.MustCompile(`[^a-z0-9]+`)

func nameTokens(s string) []string {
	raw := reWordSplit.Split(strings.ToLower(s), -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) >= 3 {
			out = append(out, t)
		}
	}
	return out
}

// representativeCards picks the cards that best identify a deck, scoring
// each card by overlap with the deck name's tokens (whole-name containment
// counts extra) and breaking ties by quantity. Low scorers pad the result
// when fewer than limit cards match at all.
func representativeCards(deckName string, cards []meta.Card, limit int) []meta.Card {
	if len(cards) == 0 || limit <= 0 {
		return nil
	}
	name := strings.ToLower(deckName)
	tokens := make(map[string]struct{})
	for _, t := range nameTokens(deckName) {
		tokens[t] = struct{}{}
	}

	type scored struct {
		score int
		qty   int
		card  meta.Card
	}
	ranked := make([]scored, 0, len(cards))
	for _, c := range cards {
		cname := strings.ToLower(c.Name)
		score := 0
		if cname != "" && strings.Contains(name, cname) {
			score += 5
		}
		for _, t := range nameTokens(c.Name) {
			if _, ok := tokens[t]; ok {
				score++
			}
		}
		ranked = append(ranked, scored{score: score, qty: c.Qty, card: c})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].qty > ranked[j].qty
	})

	out := make([]meta.Card, 0, limit)
	for _, r := range ranked {
		if r.score <= 0 {
			break
		}
		out = append(out, r.card)
		if len(out) == limit {
			return out
		}
	}
	for _, r := range ranked {
		if len(out) == limit {
			break
		}
		if containsCard(out, r.card) {
			continue
		}
		out = append(out, r.card)
	}
	return out
}

func containsCard(list []meta.Card, c meta.Card) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
