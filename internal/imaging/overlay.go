package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// Defaults for DrawOutline.
const (
	DefaultOutlineColor     = "#00FF00"
	DefaultOutlineThickness = 3
)

var defaultOutline = color.RGBA{0, 255, 0, 255}

// DrawOutline returns a copy of img with the closed polygon drawn on it.
// Coordinates are relative to the top-left of img. When labels is set, each
// vertex is tagged with its index, so an ordered quad reads 0 (top-left)
// through 3 (bottom-left).
//
// An unparsable colorHex falls back to DefaultOutlineColor and a thickness
// below 1 to DefaultOutlineThickness.
func DrawOutline(img image.Image, polygon []geometry.Point, colorHex string, thickness int, labels bool) *image.NRGBA {
	lineColor, err := parseHexColor(colorHex)
	if err != nil {
		lineColor = defaultOutline
	}
	if thickness < 1 {
		thickness = DefaultOutlineThickness
	}

	result := imaging.Clone(img)

	for i := range polygon {
		drawLine(result, polygon[i], polygon[(i+1)%len(polygon)], thickness, lineColor)
	}

	if labels {
		labelColor := color.RGBA{255, 255, 255, 255}
		bgColor := color.RGBA{0, 0, 0, 180}
		for i, p := range polygon {
			x := int(math.Round(p.X)) + thickness
			y := int(math.Round(p.Y)) + thickness
			drawLabel(result, x, y, strconv.Itoa(i), labelColor, bgColor)
		}
	}

	return result
}

// drawLine stamps a square brush of the given size along the segment a-b.
func drawLine(img draw.Image, a, b geometry.Point, size int, c color.Color) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		steps = 1
	}
	bounds := img.Bounds()
	half := size / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cx := int(math.Round(a.X + (b.X-a.X)*t))
		cy := int(math.Round(a.Y + (b.Y-a.Y)*t))
		for dy := -half; dy < size-half; dy++ {
			for dx := -half; dx < size-half; dx++ {
				p := image.Pt(cx+dx, cy+dy)
				if p.In(bounds) {
					img.Set(p.X, p.Y, c)
				}
			}
		}
	}
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// digit glyphs in a 3x5 pixel font
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

// drawLabel draws a small boxed label with its top-left at (x, y).
func drawLabel(img draw.Image, x, y int, text string, fg, bg color.RGBA) {
	const charWidth, labelHeight = 4, 7

	bounds := img.Bounds()
	set := func(px, py int, c color.Color) {
		if image.Pt(px, py).In(bounds) {
			img.Set(px, py, c)
		}
	}

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < len(text)*charWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					set(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
