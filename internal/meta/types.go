// Package meta extracts competitive deck statistics from the leaderboard
// site. The page's internal data layout is unknown and unstable, so
// extraction is a chain of independent strategies tried in a fixed order;
// the first one that yields any records wins. The normalizer then reshapes
// whatever heterogeneous records the winning strategy produced into the
// fixed ResultSet schema.
package meta

// Card is one entry in a deck's card list.
type Card struct {
	Name string `json:"name"`
	// Code is a set+number identifier such as "A1-052". Empty when the
	// source never exposed one.
	Code string `json:"code"`
	// Qty defaults to 0 when the source quantity does not parse.
	Qty int `json:"qty"`
}

// Deck is one competitive archetype entry from the leaderboard. An empty
// Cards slice means the card list could not be recovered, not that the deck
// has no cards.
type Deck struct {
	Name   string  `json:"name"`
	WinPct float64 `json:"win_pct"`
	Share  float64 `json:"share"`
	Cards  []Card  `json:"cards"`
}

// SetMeta describes the current competitive season or expansion. It comes
// from a secondary enrichment source; any field may be empty when
// unresolved.
type SetMeta struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

// ResultSet is the sole artifact the pipeline produces. Decks holds at most
// ten entries in leaderboard rank order.
type ResultSet struct {
	Set   SetMeta `json:"set"`
	Decks []Deck  `json:"decks"`
}

// rawDeck is the heterogeneous record shape strategies yield before
// normalization. Keys follow whatever the source used; the normalizer
// resolves aliases.
type rawDeck = map[string]any
