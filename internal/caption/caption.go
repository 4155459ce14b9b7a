// Package caption builds the text posted alongside generated images: a
// short phrase plus hashtags derived from the leading deck names. When an
// OpenAI-compatible endpoint is configured the phrase is rewritten by the
// model; any model failure falls back silently to the static phrase list.
package caption

import (
	"context"
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var phrases = []string{
	"Climbing the ladder? These decks are carrying hard right now",
	"The meta doesn't lie, these decks are winning.",
	"If you're tired of losing, start here.",
	"Top-tier decks you can build right now.",
	"These decks are everywhere, and for good reason.",
	"Best-performing decks this season",
	"Tested, refined, and ladder-approved decks",
	"Easy-to-play, hard-to-beat decks",
	"Which deck are you playing this season?",
	"What deck is the hardest to beat?",
	"Comment your main deck if it's not here",
	"Agree or disagree with this tier list?",
	"Decks you can't stop playing against, because they are winning!",
}

var baseHashtags = []string{"#PokemonTCG", "#PokemonTCGPocket"}

var reSplit = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Caption is the assembled post text and its parts.
type Caption struct {
	Text     string
	Phrase   string
	Hashtags string
}

// Generator builds captions. The zero value works; AI and Model are
// optional.
type Generator struct {
	AI    *openai.Client
	Model string
	// Rand lets tests pin phrase selection. Nil means the shared source.
	Rand *rand.Rand
}

func (g *Generator) pickPhrase() string {
	if g.Rand != nil {
		return phrases[g.Rand.Intn(len(phrases))]
	}
	return phrases[rand.Intn(len(phrases))]
}

// foldASCII strips diacritics so names like "Pokémon" form clean hashtags.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// leadNames extracts the lead word of up to limit deck names. Most archetype
// names start with the headline card.
func leadNames(deckNames []string, limit int) []string {
	var out []string
	for _, name := range deckNames {
		if len(out) == limit {
			break
		}
		words := reSplit.Split(foldASCII(strings.TrimSpace(name)), -1)
		for _, w := range words {
			if len(w) > 2 {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

func toHashtag(name string) string {
	return "#" + reSplit.ReplaceAllString(name, "")
}

// Generate assembles a caption for the given deck names.
func (g *Generator) Generate(ctx context.Context, deckNames []string) Caption {
	phrase := g.pickPhrase()
	if g.AI != nil && g.Model != "" {
		if rewritten, err := g.rewrite(ctx, phrase, deckNames); err != nil {
			log.Warn().Err(err).Msg("caption model failed; using static phrase")
		} else if rewritten != "" {
			phrase = rewritten
		}
	}

	tags := append([]string{}, baseHashtags...)
	for _, n := range leadNames(deckNames, 3) {
		tags = append(tags, toHashtag(n))
	}
	hashtags := strings.Join(tags, " ")

	return Caption{
		Text:     phrase + "\n\n" + hashtags,
		Phrase:   phrase,
		Hashtags: hashtags,
	}
}

func (g *Generator) rewrite(ctx context.Context, phrase string, deckNames []string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You write one short, upbeat social media caption about competitive card game decks. No hashtags, no emojis, at most 140 characters."},
			{Role: openai.ChatMessageRoleUser, Content: "Rework this caption for a post featuring the decks " + strings.Join(deckNames, ", ") + ": " + phrase},
		},
		Temperature: 0.8,
	}
	resp, err := g.AI.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
