package app

// Config holds runtime configuration for the bot and its pipeline.
type Config struct {
	// Telegram
	TelegramToken string

	// Facebook page posting. Posting is skipped when either is empty.
	FacebookPageID string
	FacebookToken  string

	// Optional OpenAI-compatible endpoint for caption phrasing.
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Scrape target. Empty fields fall back to package defaults.
	LeaderboardBase string
	Game            string

	// Enrichment source.
	TCGdexBase   string
	TCGdexSeries string

	// DecksPerPost is how many of the top decks get rendered. Zero means 5.
	DecksPerPost int

	Verbose bool
}

func (c Config) decksPerPost() int {
	if c.DecksPerPost > 0 {
		return c.DecksPerPost
	}
	return 5
}

func (c Config) facebookConfigured() bool {
	return c.FacebookPageID != "" && c.FacebookToken != ""
}
