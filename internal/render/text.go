package render

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/rs/zerolog/log"
)

// Text is rendered with the embedded Go Bold face so images never depend on
// system font files.

var (
	parseOnce  sync.Once
	parsedFont *opentype.Font
)

func loadFont() *opentype.Font {
	parseOnce.Do(func() {
		f, err := opentype.Parse(gobold.TTF)
		if err != nil {
			log.Error().Err(err).Msg("embedded font failed to parse")
			return
		}
		parsedFont = f
	})
	return parsedFont
}

func newFace(size float64) font.Face {
	f := loadFont()
	if f == nil {
		return nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	return face
}

// drawText draws s with its baseline at (x, y).
func drawText(dst draw.Image, s string, x, y int, size float64, col color.Color) {
	face := newFace(size)
	if face == nil {
		return
	}
	defer face.Close()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// textWidth measures s at the given size in pixels.
func textWidth(s string, size float64) int {
	face := newFace(size)
	if face == nil {
		return 0
	}
	defer face.Close()
	return font.MeasureString(face, s).Ceil()
}

// drawTextCentered draws s horizontally centered within width, baseline y.
func drawTextCentered(dst draw.Image, s string, width, y int, size float64, col color.Color) {
	w := textWidth(s, size)
	drawText(dst, s, (width-w)/2, y, size, col)
}
