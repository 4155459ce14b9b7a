package meta

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/grafai/grafai/internal/fetch"
)

const (
	// DefaultBaseURL is the leaderboard site origin.
	DefaultBaseURL = "https://play.limitlesstcg.com"
	// DefaultGame is the game filter applied to the leaderboard.
	DefaultGame = "pocket"

	maxDecks = 10

	defaultPrimaryTimeout  = 15 * time.Second
	defaultDetailTimeout   = 10 * time.Second
	defaultEndpointTimeout = 12 * time.Second
)

// ErrNoDeckData is returned when every extraction strategy came up empty:
// the page was reachable but its structure is unrecognized or the deck list
// is loaded dynamically in ways the scraper cannot follow.
var ErrNoDeckData = errors.New("could not find deck data on the page: structure may have changed or data is loaded dynamically")

// SetSource provides current-season set metadata from an independent
// enrichment source. Implementations are best effort; a failure leaves the
// result's set fields empty.
type SetSource interface {
	LatestSet(ctx context.Context) (SetMeta, error)
}

// Pipeline is the stateless scrape pipeline: fetch the leaderboard, run the
// extraction strategy chain, normalize the winner's records. Each invocation
// constructs a fresh ResultSet; there is no shared mutable state.
type Pipeline struct {
	Client  *fetch.Client
	BaseURL string // site origin; empty means DefaultBaseURL
	Game    string // game filter; empty means DefaultGame
	// Sets enriches the result with current-season metadata. Optional.
	Sets SetSource

	// Per-resource timeouts. Zero means the package default. Only the
	// primary leaderboard fetch is fatal on failure.
	PrimaryTimeout  time.Duration
	DetailTimeout   time.Duration
	EndpointTimeout time.Duration
}

func (p *Pipeline) base() string {
	if p.BaseURL != "" {
		return p.BaseURL
	}
	return DefaultBaseURL
}

func (p *Pipeline) game() string {
	if p.Game != "" {
		return p.Game
	}
	return DefaultGame
}

func (p *Pipeline) primaryTimeout() time.Duration {
	if p.PrimaryTimeout > 0 {
		return p.PrimaryTimeout
	}
	return defaultPrimaryTimeout
}

func (p *Pipeline) detailTimeout() time.Duration {
	if p.DetailTimeout > 0 {
		return p.DetailTimeout
	}
	return defaultDetailTimeout
}

func (p *Pipeline) endpointTimeout() time.Duration {
	if p.EndpointTimeout > 0 {
		return p.EndpointTimeout
	}
	return defaultEndpointTimeout
}

// LeaderboardURL is the primary page the pipeline scrapes.
func (p *Pipeline) LeaderboardURL() string {
	return p.base() + "/decks?game=" + p.game()
}

// FetchTopDecks retrieves the leaderboard and returns up to ten normalized
// decks in rank order. A primary fetch failure or total strategy exhaustion
// is fatal; every secondary fetch failure is absorbed.
func (p *Pipeline) FetchTopDecks(ctx context.Context) (ResultSet, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.primaryTimeout())
	body, err := p.Client.Get(fetchCtx, p.LeaderboardURL())
	cancel()
	if err != nil {
		return ResultSet{}, fmt.Errorf("fetch leaderboard: %w", err)
	}
	page := string(body)

	// Strategies are strictly ordered and never combined: the first one to
	// yield any record wins, even if its result looks thin. Partial
	// structured data beats never trying weaker heuristics.
	raw, rawSet := extractEmbedded(page, p.game())
	if len(raw) > 0 {
		log.Debug().Int("records", len(raw)).Msg("embedded structured data matched")
	}

	var doc *goquery.Document
	if len(raw) == 0 {
		doc, err = goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			doc = nil
		}
	}
	if len(raw) == 0 && doc != nil {
		raw = extractSelectors(doc)
		if len(raw) > 0 {
			log.Debug().Int("records", len(raw)).Msg("semantic selectors matched")
		}
	}
	if len(raw) == 0 && doc != nil {
		raw = p.extractTable(ctx, doc)
		if len(raw) > 0 {
			log.Debug().Int("records", len(raw)).Msg("attribute table matched")
		}
	}
	if len(raw) == 0 {
		raw, rawSet = p.extractEndpoints(ctx, page)
		if len(raw) > 0 {
			log.Debug().Int("records", len(raw)).Msg("discovered API endpoint matched")
		}
	}
	if len(raw) == 0 {
		return ResultSet{}, ErrNoDeckData
	}

	result := ResultSet{
		Set:   normalizeSet(rawSet),
		Decks: normalizeDecks(raw),
	}

	// Best-effort enrichment; a failure keeps whatever the strategy gave us.
	if p.Sets != nil {
		if s, err := p.Sets.LatestSet(ctx); err != nil {
			log.Warn().Err(err).Msg("set metadata enrichment failed")
		} else if s != (SetMeta{}) {
			result.Set = s
		}
	}
	return result, nil
}
