package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Fixed pastel palette used for every page background. The diagonal runs
// top-left to bottom-right across width+height-1 steps.
var backgroundPalette = []string{
	"#fbe8ee",
	"#f6e0f7",
	"#e8defa",
	"#caecf6",
	"#caf4dc",
}

func hexToRGB(h string) color.NRGBA {
	if len(h) > 0 && h[0] == '#' {
		h = h[1:]
	}
	if len(h) != 6 {
		return color.NRGBA{A: 0xff}
	}
	hex := func(b byte) uint8 {
		switch {
		case b >= '0' && b <= '9':
			return b - '0'
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10
		}
		return 0
	}
	return color.NRGBA{
		R: hex(h[0])<<4 | hex(h[1]),
		G: hex(h[2])<<4 | hex(h[3]),
		B: hex(h[4])<<4 | hex(h[5]),
		A: 0xff,
	}
}

// diagonalGradient renders a multi-stop gradient where every anti-diagonal
// (x+y constant) has one color.
func diagonalGradient(w, h int, stops []string) *image.NRGBA {
	length := w + h - 1
	colors := make([]color.NRGBA, length)
	parsed := make([]color.NRGBA, len(stops))
	for i, s := range stops {
		parsed[i] = hexToRGB(s)
	}
	if len(parsed) == 1 {
		parsed = append(parsed, parsed[0])
	}

	segments := len(parsed) - 1
	for idx := 0; idx < length; idx++ {
		pos := float64(idx) / float64(length-1) * float64(segments)
		seg := int(pos)
		if seg >= segments {
			seg = segments - 1
		}
		t := pos - float64(seg)
		a, b := parsed[seg], parsed[seg+1]
		colors[idx] = color.NRGBA{
			R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
			G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
			B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
			A: 0xff,
		}
	}

	img := imaging.New(w, h, color.NRGBA{A: 0xff})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, colors[x+y])
		}
	}
	return img
}

// background returns the standard page background at the given size.
func background(w, h int) *image.NRGBA {
	return diagonalGradient(w, h, backgroundPalette)
}
