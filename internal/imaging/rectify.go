package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

// Interpolation selects how source samples are read during resampling.
type Interpolation string

const (
	// Bilinear blends the four source pixels around the mapped coordinate.
	Bilinear Interpolation = "bilinear"

	// Nearest copies the source pixel closest to the mapped coordinate.
	Nearest Interpolation = "nearest"
)

// ParseInterpolation validates an interpolation name. The empty string
// selects Bilinear.
func ParseInterpolation(name string) (Interpolation, error) {
	switch Interpolation(name) {
	case "", Bilinear:
		return Bilinear, nil
	case Nearest:
		return Nearest, nil
	default:
		return "", fmt.Errorf("unknown interpolation %q (want %q or %q)", name, Bilinear, Nearest)
	}
}

// RectifyResult is a document resampled onto a fronto-parallel rectangle.
type RectifyResult struct {
	// Image is the rectified raster: *image.Gray for grayscale sources,
	// *image.NRGBA otherwise.
	Image image.Image

	// Width and Height are the target rectangle dimensions.
	Width  int
	Height int

	// Homography maps source coordinates onto target coordinates.
	Homography geometry.Homography
}

// MinTargetPixels is the pixel budget of a rectified document for sources
// smaller than a quarter of it.
const MinTargetPixels = 1 << 22

// TargetBudget returns the largest pixel count a document rectified from a
// source with bounds src may have: four times the source area, and at least
// MinTargetPixels.
func TargetBudget(src image.Rectangle) float64 {
	return math.Max(4*float64(src.Dx())*float64(src.Dy()), MinTargetPixels)
}

// CheckTargetSize reports an error if the target rectangle of q is larger
// than TargetBudget(src) or its area is not finite.
func CheckTargetSize(src image.Rectangle, q geometry.OrderedQuad) error {
	area, budget := q.TargetArea(), TargetBudget(src)
	if !(area <= budget) {
		return fmt.Errorf("target rectangle of %.0f pixels exceeds the budget of %.0f for a %dx%d source",
			area, budget, src.Dx(), src.Dy())
	}
	return nil
}

// Rectify resamples the region bounded by q into a width×height rectangle.
//
// The target size comes from q.TargetSize. The homography maps the ordered
// corners index-for-index onto (0,0), (W-1,0), (W-1,H-1), (0,H-1), and each
// destination pixel is filled by inverse mapping into the source. Samples
// that fall outside the source are opaque black.
//
// Coordinates in q are relative to the top-left pixel of img. The source is
// never modified.
//
// # Errors
//
//   - scanerr.ErrSingularTransform if the target width or height is not
//     positive, the target exceeds TargetBudget, or the homography cannot be
//     solved or inverted
func Rectify(img image.Image, q geometry.OrderedQuad, interp Interpolation) (*RectifyResult, error) {
	if err := CheckTargetSize(img.Bounds(), q); err != nil {
		return nil, scanerr.New(scanerr.StageRectifier, scanerr.ErrSingularTransform, "%v", err)
	}
	width, height := q.TargetSize()
	if width <= 0 || height <= 0 {
		return nil, scanerr.New(scanerr.StageRectifier, scanerr.ErrSingularTransform,
			"target rectangle %dx%d has no area", width, height)
	}

	h, err := geometry.ComputeHomography(q.Points(), geometry.TargetCorners(width, height))
	if err != nil {
		return nil, err
	}
	inv, err := h.Inverse()
	if err != nil {
		return nil, err
	}

	return &RectifyResult{
		Image:      Warp(img, inv, width, height, interp),
		Width:      width,
		Height:     height,
		Homography: h,
	}, nil
}

// Warp fills a width×height raster by mapping every destination pixel
// through inv into img. Rows are processed in parallel; every output pixel
// depends only on the immutable source and transform.
func Warp(img image.Image, inv geometry.Homography, width, height int, interp Interpolation) image.Image {
	if g, ok := img.(*image.Gray); ok {
		src := Luminance(g)
		dst := image.NewGray(image.Rect(0, 0, width, height))
		parallel.Line(height, func(start, end int) {
			for y := start; y < end; y++ {
				for x := 0; x < width; x++ {
					p, ok := inv.Apply(geometry.Pt(float64(x), float64(y)))
					if !ok {
						continue
					}
					dst.Pix[y*dst.Stride+x] = sampleGray(src, p.X, p.Y, interp)
				}
			}
		})
		return dst
	}

	src := imaging.Clone(img)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				c := color.NRGBA{A: 255}
				if p, ok := inv.Apply(geometry.Pt(float64(x), float64(y))); ok {
					c = sampleNRGBA(src, p.X, p.Y, interp)
				}
				i := y*dst.Stride + x*4
				dst.Pix[i+0] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	})
	return dst
}

// bilinearTaps returns the four neighbours of (sx, sy) and their weights in
// the order top-left, top-right, bottom-left, bottom-right.
func bilinearTaps(sx, sy float64) (x0, y0 int, w [4]float64) {
	fx := math.Floor(sx)
	fy := math.Floor(sy)
	dx := sx - fx
	dy := sy - fy
	w = [4]float64{
		(1 - dx) * (1 - dy),
		dx * (1 - dy),
		(1 - dx) * dy,
		dx * dy,
	}
	return int(fx), int(fy), w
}

func sampleGray(src *image.Gray, sx, sy float64, interp Interpolation) uint8 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if interp == Nearest {
		x := int(math.Floor(sx + 0.5))
		y := int(math.Floor(sy + 0.5))
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return src.Pix[y*src.Stride+x]
	}

	if sx <= -1 || sy <= -1 || sx >= float64(w) || sy >= float64(h) {
		return 0
	}
	x0, y0, weights := bilinearTaps(sx, sy)
	var v float64
	for i, off := range [4]image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := x0+off.X, y0+off.Y
		if weights[i] == 0 || x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		v += weights[i] * float64(src.Pix[y*src.Stride+x])
	}
	return clampByte(v)
}

func sampleNRGBA(src *image.NRGBA, sx, sy float64, interp Interpolation) color.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if interp == Nearest {
		x := int(math.Floor(sx + 0.5))
		y := int(math.Floor(sy + 0.5))
		if x < 0 || y < 0 || x >= w || y >= h {
			return color.NRGBA{A: 255}
		}
		i := y*src.Stride + x*4
		return color.NRGBA{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2], A: src.Pix[i+3]}
	}

	if sx <= -1 || sy <= -1 || sx >= float64(w) || sy >= float64(h) {
		return color.NRGBA{A: 255}
	}
	x0, y0, weights := bilinearTaps(sx, sy)
	var r, g, b, a float64
	for i, off := range [4]image.Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if weights[i] == 0 {
			continue
		}
		x, y := x0+off.X, y0+off.Y
		if x < 0 || y < 0 || x >= w || y >= h {
			// Background is opaque black.
			a += weights[i] * 255
			continue
		}
		j := y*src.Stride + x*4
		r += weights[i] * float64(src.Pix[j])
		g += weights[i] * float64(src.Pix[j+1])
		b += weights[i] * float64(src.Pix[j+2])
		a += weights[i] * float64(src.Pix[j+3])
	}
	return color.NRGBA{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: clampByte(a)}
}

// clampByte rounds v to the nearest integer in [0, 255].
func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
