// Package render composites promotional images from a normalized result
// set: listing pages summarizing the top decks, one card-grid image per
// deck, and a back cover. Card artwork and set logos are fetched best
// effort; a gray placeholder stands in for anything unavailable, so
// rendering never fails a run over a missing image.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/grafai/grafai/internal/fetch"
	"github.com/grafai/grafai/internal/meta"
)

// CardSource resolves card artwork by card code.
type CardSource interface {
	CardImage(ctx context.Context, code string) (image.Image, error)
}

// Renderer builds the image set for one scrape result.
type Renderer struct {
	Cards CardSource
	// Fetch downloads set logos. Optional; without it logos are skipped.
	Fetch *fetch.Client
	// SourceURL is encoded into the back cover QR code.
	SourceURL string
	// JPEGQuality defaults to 90.
	JPEGQuality int
}

var (
	titleColor      = hexToRGB("#eb1c24")
	accentColor     = hexToRGB("#3367b0")
	badgeColor      = color.NRGBA{R: 0, G: 0, B: 0, A: 180}
	placeholderFill = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
)

const (
	pageW = 1200

	gridCols    = 4
	gridThumb   = 160
	gridSpacing = 5

	listingPerPage = 5
	listingRowH    = 260
	listingHeaderH = 110

	coverW = 1400
	coverH = 900
)

func (r *Renderer) quality() int {
	if r.JPEGQuality > 0 {
		return r.JPEGQuality
	}
	return 90
}

func (r *Renderer) encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(r.quality())); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func placeholder(w, h int, label string) *image.NRGBA {
	ph := imaging.New(w, h, placeholderFill)
	if label != "" {
		drawText(ph, label, 10, 24, 14, color.White)
	}
	return ph
}

// cardThumb returns the card's artwork fitted into a w x h box, or a
// labeled placeholder when the artwork cannot be resolved.
func (r *Renderer) cardThumb(ctx context.Context, c meta.Card, w, h int) image.Image {
	if r.Cards == nil || c.Code == "" {
		return placeholder(w, h, c.Name)
	}
	img, err := r.Cards.CardImage(ctx, c.Code)
	if err != nil {
		log.Warn().Err(err).Str("code", c.Code).Msg("card image unavailable")
		return placeholder(w, h, c.Name)
	}
	return imaging.Fit(img, w, h, imaging.Lanczos)
}

// ListingPages renders summary pages of up to five decks each: rank, name,
// win rate and share, plus two representative cards per deck.
func (r *Renderer) ListingPages(ctx context.Context, res meta.ResultSet) ([][]byte, error) {
	if len(res.Decks) == 0 {
		return nil, nil
	}
	var pages [][]byte
	for start := 0; start < len(res.Decks); start += listingPerPage {
		end := start + listingPerPage
		if end > len(res.Decks) {
			end = len(res.Decks)
		}
		chunk := res.Decks[start:end]

		h := listingHeaderH + listingPerPage*listingRowH
		canvas := background(pageW, h)
		header := "BEST DECKS"
		if res.Set.Name != "" {
			header = strings.ToUpper(res.Set.Name) + " — BEST DECKS"
		}
		drawTextCentered(canvas, header, pageW, 70, 52, titleColor)

		for i, deck := range chunk {
			rank := start + i + 1
			y := listingHeaderH + i*listingRowH

			drawText(canvas, fmt.Sprintf("%d", rank), 40, y+120, 96, accentColor)
			drawText(canvas, strings.ToUpper(deck.Name), 180, y+80, 40, titleColor)
			stats := fmt.Sprintf("WIN RATE: %.2f%%  •  SHARE: %.2f%%", deck.WinPct, deck.Share)
			drawText(canvas, stats, 180, y+130, 24, accentColor)

			reps := representativeCards(deck.Name, deck.Cards, 2)
			for j, c := range reps {
				thumb := r.cardThumb(ctx, c, 130, 182)
				x := pageW - 320 + j*150
				canvas = imaging.Overlay(canvas, thumb, image.Pt(x, y+30), 1.0)
			}
		}

		page, err := r.encode(canvas)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// DeckGrid renders a single deck as a titled card grid with quantity
// badges. An empty card list yields just the title page.
func (r *Renderer) DeckGrid(ctx context.Context, deck meta.Deck, rank int) ([]byte, error) {
	title := fmt.Sprintf("%d. %s", rank, strings.ToUpper(deck.Name))
	stats := fmt.Sprintf("WIN RATE: %.2f%%  •  SHARE: %.2f%%", deck.WinPct, deck.Share)

	if len(deck.Cards) == 0 {
		canvas := background(pageW, 700)
		drawTextCentered(canvas, title, pageW, 70, 56, titleColor)
		drawTextCentered(canvas, stats, pageW, 120, 28, accentColor)
		return r.encode(canvas)
	}

	rows := (len(deck.Cards) + gridCols - 1) / gridCols
	rowH := gridThumb + gridSpacing
	h := 160 + rows*rowH + 20
	if h < 400 {
		h = 400
	}
	canvas := background(pageW, h)
	drawTextCentered(canvas, title, pageW, 70, 56, titleColor)
	drawTextCentered(canvas, stats, pageW, 120, 28, accentColor)

	gridWidth := gridCols*gridThumb + (gridCols-1)*gridSpacing
	x0 := (pageW - gridWidth) / 2
	y0 := 160
	for idx, c := range deck.Cards {
		col := idx % gridCols
		row := idx / gridCols
		x := x0 + col*(gridThumb+gridSpacing)
		y := y0 + row*rowH

		thumb := r.cardThumb(ctx, c, gridThumb, gridThumb)
		tw := thumb.Bounds().Dx()
		th := thumb.Bounds().Dy()
		xCentered := x + (gridThumb-tw)/2
		canvas = imaging.Overlay(canvas, thumb, image.Pt(xCentered, y), 1.0)

		// Quantity badge at the thumb's bottom-right corner.
		const badgeW, badgeH = 54, 28
		bx := xCentered + tw - badgeW - 6
		by := y + th - badgeH - 6
		badge := imaging.New(badgeW, badgeH, badgeColor)
		canvas = imaging.Overlay(canvas, badge, image.Pt(bx, by), 1.0)
		label := fmt.Sprintf("x%d", c.Qty)
		lw := textWidth(label, 20)
		drawText(canvas, label, bx+(badgeW-lw)/2, by+21, 20, color.White)
	}
	return r.encode(canvas)
}

// BackCover renders the closing image: set logo, source credit, and a QR
// code pointing at the leaderboard.
func (r *Renderer) BackCover(ctx context.Context, set meta.SetMeta) ([]byte, error) {
	canvas := background(coverW, coverH)

	if logo := r.fetchLogo(ctx, set.Logo); logo != nil {
		fitted := imaging.Fit(logo, coverW*6/10, coverH*45/100, imaging.Lanczos)
		x := (coverW - fitted.Bounds().Dx()) / 2
		y := (coverH - fitted.Bounds().Dy()) / 2
		canvas = imaging.Overlay(canvas, fitted, image.Pt(x, y), 1.0)
	} else if set.Name != "" {
		drawTextCentered(canvas, strings.ToUpper(set.Name), coverW, coverH/2, 72, titleColor)
	}

	if r.SourceURL != "" {
		if qr, err := qrcode.New(r.SourceURL, qrcode.Medium); err == nil {
			qrImg := qr.Image(180)
			canvas = imaging.Overlay(canvas, qrImg, image.Pt(coverW-220, coverH-220), 1.0)
		}
		drawText(canvas, "DATA: "+strings.TrimPrefix(r.SourceURL, "https://"), 40, coverH-40, 24, accentColor)
	}
	return r.encode(canvas)
}

// fetchLogo downloads and decodes a set logo. tcgdex asset URLs without an
// extension get the high-resolution raster suffix.
func (r *Renderer) fetchLogo(ctx context.Context, url string) image.Image {
	if url == "" || r.Fetch == nil {
		return nil
	}
	if !strings.HasSuffix(url, ".png") && !strings.HasSuffix(url, ".jpg") && !strings.HasSuffix(url, ".jpeg") {
		url += "/high.png"
	}
	body, err := r.Fetch.Get(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("set logo unavailable")
		return nil
	}
	img, err := imaging.Decode(bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("set logo undecodable")
		return nil
	}
	return img
}

// PrimaryColor extracts a single dominant color from the set logo by
// downscaling it to one pixel. Used for accent styling by callers; failure
// is reported through the boolean.
func (r *Renderer) PrimaryColor(ctx context.Context, logoURL string) (color.NRGBA, bool) {
	img := r.fetchLogo(ctx, logoURL)
	if img == nil {
		return color.NRGBA{}, false
	}
	one := imaging.Resize(img, 1, 1, imaging.Box)
	return one.NRGBAAt(0, 0), true
}
