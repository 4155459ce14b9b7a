package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const pollTimeout = 60 // seconds, long-poll window

const helpText = `Commands:
/decks - scrape the current top decks and post them here (and to Facebook)
/decks false - same, but skip the Facebook post
/schedule <hours> - repost automatically every N hours
/schedule off - stop the schedule
/help - this message`

// Run polls for commands until ctx is cancelled. Workflow runs happen on
// background goroutines so a slow scrape never stalls the poll loop; the
// busy channel keeps at most one run in flight.
func (a *App) Run(ctx context.Context) error {
	log.Info().Msg("bot started, polling for updates")
	var offset int64
	for {
		updates, err := a.tg.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("getUpdates failed, backing off")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			a.handleUpdate(ctx, u.Message.Chat.ID, u.Message.Text)
		}
	}
}

func (a *App) handleUpdate(ctx context.Context, chatID int64, text string) {
	if chatID == 0 || !strings.HasPrefix(text, "/") {
		return
	}
	fields := strings.Fields(text)
	cmd := fields[0]
	// Group chats address commands as /decks@botname.
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	log.Info().Int64("chat", chatID).Str("command", cmd).Msg("command received")

	switch cmd {
	case "/start":
		a.send(ctx, chatID, "Hi! I post the current top Pokemon TCG Pocket decks.\n\n"+helpText)
	case "/help":
		a.send(ctx, chatID, helpText)
	case "/decks":
		postFB := true
		if len(args) > 0 && strings.EqualFold(args[0], "false") {
			postFB = false
		}
		a.startRun(ctx, chatID, postFB)
	case "/schedule":
		a.handleSchedule(ctx, chatID, args)
	default:
		a.send(ctx, chatID, "Unknown command. Try /help.")
	}
}

// startRun launches one workflow run in the background, unless one is
// already in flight.
func (a *App) startRun(ctx context.Context, chatID int64, postFB bool) {
	select {
	case a.busy <- struct{}{}:
	default:
		a.send(ctx, chatID, "Already working on a post, hang on.")
		return
	}
	a.send(ctx, chatID, "Fetching top decks...")
	go func() {
		defer func() { <-a.busy }()
		if err := a.RunOnce(ctx, chatID, postFB); err != nil {
			log.Error().Err(err).Int64("chat", chatID).Msg("workflow run failed")
		}
	}()
}

func (a *App) handleSchedule(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		a.send(ctx, chatID, "Usage: /schedule <hours> or /schedule off")
		return
	}
	if strings.EqualFold(args[0], "off") {
		if a.stopSchedule() {
			a.send(ctx, chatID, "Schedule stopped.")
		} else {
			a.send(ctx, chatID, "No schedule is running.")
		}
		return
	}
	hours, err := strconv.Atoi(args[0])
	if err != nil || hours <= 0 {
		a.send(ctx, chatID, "Usage: /schedule <hours> or /schedule off")
		return
	}
	a.startSchedule(ctx, chatID, time.Duration(hours)*time.Hour)
	a.send(ctx, chatID, fmt.Sprintf("Scheduled: posting every %d hour(s). /schedule off to stop.", hours))
}

// startSchedule replaces any existing schedule with a new ticker loop.
func (a *App) startSchedule(ctx context.Context, chatID int64, every time.Duration) {
	a.mu.Lock()
	if a.cancelSchedule != nil {
		a.cancelSchedule()
	}
	sctx, cancel := context.WithCancel(ctx)
	a.cancelSchedule = cancel
	a.mu.Unlock()

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-sctx.Done():
				return
			case <-ticker.C:
				a.startRun(sctx, chatID, true)
			}
		}
	}()
}

func (a *App) stopSchedule() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancelSchedule == nil {
		return false
	}
	a.cancelSchedule()
	a.cancelSchedule = nil
	return true
}
