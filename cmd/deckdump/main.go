// deckdump runs the scrape pipeline once and prints the normalized result
// as JSON. Handy for checking what the extractors see on the live site.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/grafai/grafai/internal/fetch"
	"github.com/grafai/grafai/internal/meta"
)

func main() {
	base := flag.String("base", "", "Leaderboard site base URL")
	game := flag.String("game", "", "Game key on the leaderboard site")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	p := &meta.Pipeline{
		Client:  &fetch.Client{PerRequestTimeout: 15 * time.Second},
		BaseURL: *base,
		Game:    *game,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := p.FetchTopDecks(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch failed")
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encode failed")
	}
	fmt.Println(string(out))
}
