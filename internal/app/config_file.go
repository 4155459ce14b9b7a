package app

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional single-file configuration schema. Values from
// the file fill only fields the flags left empty, so flags and environment
// always win.
type FileConfig struct {
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`

	Facebook struct {
		PageID string `yaml:"pageId"`
		Token  string `yaml:"token"`
	} `yaml:"facebook"`

	LLM struct {
		BaseURL string `yaml:"base"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"key"`
	} `yaml:"llm"`

	Scrape struct {
		Base string `yaml:"base"`
		Game string `yaml:"game"`
	} `yaml:"scrape"`

	TCGdex struct {
		Base   string `yaml:"base"`
		Series string `yaml:"series"`
	} `yaml:"tcgdex"`

	DecksPerPost int  `yaml:"decksPerPost"`
	Verbose      bool `yaml:"verbose"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config: %w", err)
	}
	return fc, nil
}

// Merge fills empty Config fields from the file.
func (fc FileConfig) Merge(cfg Config) Config {
	setIfEmpty := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}
	setIfEmpty(&cfg.TelegramToken, fc.Telegram.Token)
	setIfEmpty(&cfg.FacebookPageID, fc.Facebook.PageID)
	setIfEmpty(&cfg.FacebookToken, fc.Facebook.Token)
	setIfEmpty(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setIfEmpty(&cfg.LLMModel, fc.LLM.Model)
	setIfEmpty(&cfg.LLMAPIKey, fc.LLM.APIKey)
	setIfEmpty(&cfg.LeaderboardBase, fc.Scrape.Base)
	setIfEmpty(&cfg.Game, fc.Scrape.Game)
	setIfEmpty(&cfg.TCGdexBase, fc.TCGdex.Base)
	setIfEmpty(&cfg.TCGdexSeries, fc.TCGdex.Series)
	if cfg.DecksPerPost == 0 && fc.DecksPerPost > 0 {
		cfg.DecksPerPost = fc.DecksPerPost
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
	return cfg
}
