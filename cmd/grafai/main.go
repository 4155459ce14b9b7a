package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/grafai/grafai/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath   string
		tgToken      string
		fbPageID     string
		fbToken      string
		llmBaseURL   string
		llmModel     string
		llmKey       string
		scrapeBase   string
		game         string
		tcgdexBase   string
		tcgdexSeries string
		decksPerPost int
		verbose      bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("GRAFAI_CONFIG"), "Path to optional YAML config file")
	flag.StringVar(&tgToken, "telegram.token", os.Getenv("TELEGRAM_BOT_TOKEN"), "Telegram bot token")
	flag.StringVar(&fbPageID, "facebook.page", os.Getenv("FACEBOOK_PAGE_ID"), "Facebook page ID (optional)")
	flag.StringVar(&fbToken, "facebook.token", os.Getenv("FACEBOOK_ACCESS_TOKEN"), "Facebook user access token (optional)")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL for caption phrasing (optional)")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.StringVar(&scrapeBase, "scrape.base", os.Getenv("SCRAPE_BASE_URL"), "Leaderboard site base URL")
	flag.StringVar(&game, "scrape.game", os.Getenv("SCRAPE_GAME"), "Game key on the leaderboard site")
	flag.StringVar(&tcgdexBase, "tcgdex.base", os.Getenv("TCGDEX_BASE_URL"), "TCGdex API base URL")
	flag.StringVar(&tcgdexSeries, "tcgdex.series", os.Getenv("TCGDEX_SERIES"), "TCGdex series ID")
	flag.IntVar(&decksPerPost, "decks", 0, "Decks per post (default 5)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		TelegramToken:   tgToken,
		FacebookPageID:  fbPageID,
		FacebookToken:   fbToken,
		LLMBaseURL:      llmBaseURL,
		LLMModel:        llmModel,
		LLMAPIKey:       llmKey,
		LeaderboardBase: scrapeBase,
		Game:            game,
		TCGdexBase:      tcgdexBase,
		TCGdexSeries:    tcgdexSeries,
		DecksPerPost:    decksPerPost,
		Verbose:         verbose,
	}

	if configPath != "" {
		fc, err := app.LoadFileConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("config file")
		}
		cfg = fc.Merge(cfg)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if cfg.TelegramToken == "" {
		log.Fatal().Msg("telegram token is required (-telegram.token or TELEGRAM_BOT_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
	log.Info().Msg("shutting down")
}
