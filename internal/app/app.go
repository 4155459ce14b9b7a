// Package app wires the scrape pipeline, renderer, caption generator and
// distributors together and drives the end-to-end workflow behind the bot
// commands.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/grafai/grafai/internal/caption"
	"github.com/grafai/grafai/internal/facebook"
	"github.com/grafai/grafai/internal/fetch"
	"github.com/grafai/grafai/internal/meta"
	"github.com/grafai/grafai/internal/render"
	"github.com/grafai/grafai/internal/tcgdex"
	"github.com/grafai/grafai/internal/telegram"
)

// App owns the long-lived collaborators. Each workflow invocation is
// stateless; only the set reference cache persists between runs.
type App struct {
	cfg      Config
	pipeline *meta.Pipeline
	renderer *render.Renderer
	captions *caption.Generator
	tg       *telegram.Client
	sets     *tcgdex.SetCache

	// busy serializes workflow runs triggered from chat commands.
	busy chan struct{}

	mu             sync.Mutex
	cancelSchedule context.CancelFunc
}

// New assembles an App from configuration.
func New(cfg Config) *App {
	client := &fetch.Client{PerRequestTimeout: 15 * time.Second}
	dex := tcgdex.NewClient(cfg.TCGdexBase, cfg.TCGdexSeries)

	pipeline := &meta.Pipeline{
		Client:  client,
		BaseURL: cfg.LeaderboardBase,
		Game:    cfg.Game,
		Sets:    dex,
	}
	renderer := &render.Renderer{
		Cards:     dex,
		Fetch:     client,
		SourceURL: pipeline.LeaderboardURL(),
	}

	captions := &caption.Generator{}
	if cfg.LLMBaseURL != "" && cfg.LLMModel != "" {
		transport := openai.DefaultConfig(cfg.LLMAPIKey)
		transport.BaseURL = cfg.LLMBaseURL
		captions.AI = openai.NewClientWithConfig(transport)
		captions.Model = cfg.LLMModel
	}

	return &App{
		cfg:      cfg,
		pipeline: pipeline,
		renderer: renderer,
		captions: captions,
		tg:       &telegram.Client{Token: cfg.TelegramToken},
		sets:     &tcgdex.SetCache{Client: dex},
		busy:     make(chan struct{}, 1),
	}
}

// FetchTopDecks runs just the extraction pipeline. Used by the debug CLI.
func (a *App) FetchTopDecks(ctx context.Context) (meta.ResultSet, error) {
	return a.pipeline.FetchTopDecks(ctx)
}

// resolveSetLogo fills missing set fields from the cached set reference
// list. Embedded page data often carries only a set id.
func (a *App) resolveSetLogo(ctx context.Context, set *meta.SetMeta) {
	if set.Logo != "" || set.ID == "" {
		return
	}
	info, ok := a.sets.Lookup(ctx, set.ID)
	if !ok {
		return
	}
	set.Logo = info.LogoURL()
	if set.Name == "" {
		set.Name = info.Name
	}
}

// RunOnce executes the full workflow for one chat: scrape, render, send the
// album, then the caption, then optionally post to Facebook. A scrape
// failure is reported to the chat and returned; rendering and distribution
// failures degrade per item.
func (a *App) RunOnce(ctx context.Context, chatID int64, postFB bool) error {
	res, err := a.pipeline.FetchTopDecks(ctx)
	if err != nil {
		log.Error().Err(err).Msg("deck fetch failed")
		a.send(ctx, chatID, fmt.Sprintf("Error getting deck data: %v", err))
		return err
	}
	if len(res.Decks) == 0 {
		a.send(ctx, chatID, "No decks found.")
		return nil
	}

	a.resolveSetLogo(ctx, &res.Set)

	shown := res
	if len(shown.Decks) > a.cfg.decksPerPost() {
		shown.Decks = shown.Decks[:a.cfg.decksPerPost()]
	}

	var photos []telegram.Photo
	pages, err := a.renderer.ListingPages(ctx, shown)
	if err != nil {
		log.Error().Err(err).Msg("listing page render failed")
	}
	for i, page := range pages {
		photos = append(photos, telegram.Photo{
			Data:    page,
			Caption: fmt.Sprintf("Top decks — %s (page %d)", setLabel(res.Set), i+1),
		})
	}
	for i, deck := range shown.Decks {
		grid, err := a.renderer.DeckGrid(ctx, deck, i+1)
		if err != nil {
			log.Error().Err(err).Str("deck", deck.Name).Msg("deck grid render failed")
			continue
		}
		photos = append(photos, telegram.Photo{Data: grid})
	}
	if back, err := a.renderer.BackCover(ctx, res.Set); err == nil {
		photos = append(photos, telegram.Photo{Data: back})
	} else {
		log.Error().Err(err).Msg("back cover render failed")
	}

	if len(photos) == 0 {
		a.send(ctx, chatID, "No images to send.")
		return nil
	}
	for start := 0; start < len(photos); start += 10 {
		end := start + 10
		if end > len(photos) {
			end = len(photos)
		}
		if err := a.tg.SendMediaGroup(ctx, chatID, photos[start:end]); err != nil {
			log.Error().Err(err).Msg("media group send failed")
		}
	}

	names := make([]string, 0, len(shown.Decks))
	for _, d := range shown.Decks {
		names = append(names, d.Name)
	}
	post := a.captions.Generate(ctx, names)
	a.send(ctx, chatID, post.Text)

	if postFB && a.cfg.facebookConfigured() {
		fb := facebook.NewClient("", a.cfg.FacebookPageID, a.cfg.FacebookToken)
		fb.ResolvePageToken(ctx)
		images := make([][]byte, 0, len(photos))
		for _, p := range photos {
			images = append(images, p.Data)
		}
		if err := fb.PostImages(ctx, post.Text, images); err != nil {
			log.Error().Err(err).Msg("facebook post failed")
		}
	} else if postFB {
		log.Info().Msg("facebook not configured; skipping page post")
	}
	return nil
}

func setLabel(set meta.SetMeta) string {
	if set.Name != "" {
		return set.Name
	}
	if set.ID != "" {
		return set.ID
	}
	return "current set"
}

func (a *App) send(ctx context.Context, chatID int64, text string) {
	if err := a.tg.SendMessage(ctx, chatID, text); err != nil {
		log.Error().Err(err).Int64("chat", chatID).Msg("telegram send failed")
	}
}
