package imaging

import (
	"image"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#rrggbb"
	RGB RGBColor `json:"rgb"` // RGB components
	HSL HSLColor `json:"hsl"` // HSL representation
}

// NewColorResult describes an 8-bit RGB color.
func NewColorResult(r, g, b uint8) ColorResult {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, l := c.Hsl()
	return ColorResult{
		Hex: c.Hex(),
		RGB: RGBColor{R: r, G: g, B: b},
		HSL: HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
	}
}

// PaperColor returns the mean colour of a rectified document.
//
// For a scanned page this is dominated by the paper, which makes it a quick
// check that the detected region really is the document and not the
// background it was photographed on. An empty image yields black.
//
// Memory use is one row per channel plus one mean per row.
func PaperColor(img image.Image) ColorResult {
	b := img.Bounds()
	if b.Empty() {
		return NewColorResult(0, 0, 0)
	}

	w := b.Dx()
	row := [3][]float64{make([]float64, w), make([]float64, w), make([]float64, w)}
	var means [3][]float64
	for c := range means {
		means[c] = make([]float64, 0, b.Dy())
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		readRow(img, y, row)
		for c := range means {
			means[c] = append(means[c], stat.Mean(row[c], nil))
		}
	}

	// Every row has the same length, so the mean of row means is the mean.
	return NewColorResult(
		clampByte(stat.Mean(means[0], nil)),
		clampByte(stat.Mean(means[1], nil)),
		clampByte(stat.Mean(means[2], nil)),
	)
}

// readRow fills row with the 8-bit R, G and B values of line y of img.
func readRow(img image.Image, y int, row [3][]float64) {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.Gray:
		off := src.PixOffset(b.Min.X, y)
		for i, v := range src.Pix[off : off+b.Dx()] {
			row[0][i], row[1][i], row[2][i] = float64(v), float64(v), float64(v)
		}
	case *image.NRGBA:
		off := src.PixOffset(b.Min.X, y)
		pix := src.Pix[off : off+4*b.Dx()]
		for i := range row[0] {
			row[0][i] = float64(pix[4*i])
			row[1][i] = float64(pix[4*i+1])
			row[2][i] = float64(pix[4*i+2])
		}
	default:
		for i := range row[0] {
			r, g, bl, _ := img.At(b.Min.X+i, y).RGBA()
			row[0][i], row[1][i], row[2][i] = float64(r>>8), float64(g>>8), float64(bl>>8)
		}
	}
}
