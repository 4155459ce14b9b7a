// Package tcgdex is a client for the tcgdex REST API, used to enrich scrape
// results with current-season set metadata and to resolve card images for
// the renderer. Every call here is best effort from the pipeline's point of
// view; callers absorb failures.
package tcgdex

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"

	"github.com/grafai/grafai/internal/fetch"
	"github.com/grafai/grafai/internal/meta"
)

const (
	// DefaultBaseURL is the tcgdex API origin.
	DefaultBaseURL = "https://api.tcgdex.net"
	// DefaultSeries is the series id for the target game.
	DefaultSeries = "tcgp"

	defaultTimeout = 8 * time.Second
)

// SetInfo is one expansion set within a series.
type SetInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Symbol string `json:"symbol"`
}

// LogoURL returns the set's raster logo URL, preferring logo over symbol.
// Empty when the set has neither.
func (s SetInfo) LogoURL() string {
	return assetURL(s.Logo, s.Symbol)
}

type seriesResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	LastSet *SetInfo  `json:"lastSet"`
	Sets    []SetInfo `json:"sets"`
}

type cardResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Client talks to the tcgdex API.
type Client struct {
	http   *resty.Client
	series string
}

// NewClient builds a Client against baseURL (empty means DefaultBaseURL)
// for the given series (empty means DefaultSeries).
func NewClient(baseURL, series string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if series == "" {
		series = DefaultSeries
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("User-Agent", fetch.DefaultUserAgent)
	client.SetTimeout(defaultTimeout)
	return &Client{http: client, series: series}
}

// LatestSet implements meta.SetSource: the series' lastSet when present,
// otherwise the final entry of its sets list.
func (c *Client) LatestSet(ctx context.Context) (meta.SetMeta, error) {
	var series seriesResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&series).
		Get("/v2/en/series/" + c.series)
	if err != nil {
		return meta.SetMeta{}, err
	}
	if res.StatusCode() != 200 {
		return meta.SetMeta{}, fmt.Errorf("series request status %d", res.StatusCode())
	}

	last := series.LastSet
	if last == nil && len(series.Sets) > 0 {
		last = &series.Sets[len(series.Sets)-1]
	}
	if last == nil {
		return meta.SetMeta{}, fmt.Errorf("series %s has no sets", c.series)
	}
	return meta.SetMeta{
		ID:   last.ID,
		Name: last.Name,
		Logo: assetURL(last.Logo, last.Symbol),
	}, nil
}

// Sets returns every set of the series, oldest first.
func (c *Client) Sets(ctx context.Context) ([]SetInfo, error) {
	var series seriesResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&series).
		Get("/v2/en/series/" + c.series)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("series request status %d", res.StatusCode())
	}
	return series.Sets, nil
}

// CardImage fetches and decodes the card's artwork. The card code must be in
// the round-trippable "<set>-<number>" (or "<set>-<part>-<number>") form.
func (c *Client) CardImage(ctx context.Context, code string) (image.Image, error) {
	normalized, ok := NormalizeCode(code)
	if !ok {
		return nil, fmt.Errorf("unparseable card code %q", code)
	}
	var card cardResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&card).
		Get("/v2/en/cards/" + normalized)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("card %s status %d", normalized, res.StatusCode())
	}
	if card.Image == "" {
		return nil, fmt.Errorf("card %s has no image", normalized)
	}

	img, err := c.http.R().SetContext(ctx).Get(card.Image + "/high.png")
	if err != nil {
		return nil, err
	}
	if img.StatusCode() != 200 || len(img.Body()) == 0 {
		return nil, fmt.Errorf("card image %s status %d", normalized, img.StatusCode())
	}
	return imaging.Decode(bytes.NewReader(img.Body()))
}

// NormalizeCode converts a scraped card code to tcgdex form: the local
// number is zero-padded to three digits. Accepts "<set>-<n>" and
// "<set>-<part>-<n>"; anything else is rejected.
func NormalizeCode(code string) (string, bool) {
	if code == "" {
		return "", false
	}
	parts := strings.Split(code, "-")
	var setID, localID string
	switch len(parts) {
	case 2:
		setID, localID = parts[0], parts[1]
	case 3:
		setID, localID = parts[0]+"-"+parts[1], parts[2]
	default:
		return "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(localID))
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s-%03d", setID, n), true
}

// assetURL appends the raster suffix tcgdex asset URLs omit. Logo wins over
// symbol; empty stays empty.
func assetURL(logo, symbol string) string {
	if logo != "" {
		return logo + ".png"
	}
	if symbol != "" {
		return symbol + ".png"
	}
	return ""
}
