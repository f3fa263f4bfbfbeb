package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"

	"github.com/ironsheep/docscan-mcp/internal/scanerr"
)

// Scan-effect defaults.
const (
	DefaultBlockSize = 51
	DefaultOffset    = 10.0
)

// ValidateBlockSize reports whether blockSize is usable as an adaptive
// threshold neighbourhood: odd and at least 3.
func ValidateBlockSize(blockSize int) error {
	if blockSize < 3 {
		return scanerr.New(scanerr.StageBinarizer, scanerr.ErrInvalidConfiguration,
			"block size %d is smaller than 3", blockSize)
	}
	if blockSize%2 == 0 {
		return scanerr.New(scanerr.StageBinarizer, scanerr.ErrInvalidConfiguration,
			"block size %d is even", blockSize)
	}
	return nil
}

// Binarize renders an image as black and white paper using a Gaussian
// adaptive threshold.
//
// Each pixel's threshold is the Gaussian-weighted mean luminance of the
// blockSize×blockSize neighbourhood centred on it, minus offset. The pixel
// becomes 255 if its luminance is strictly greater than the threshold and 0
// otherwise.
//
// # Neighbourhood weighting
//
// The weights are a separable Gaussian with sigma = (blockSize-1)/6 truncated
// to the block, normalized to sum to 1. Near the borders the raster is
// extended by symmetric reflection (d c b a | a b c d | d c b a), so border
// pixels are weighted against a mirror of their own surroundings.
//
// # Errors
//
//   - scanerr.ErrInvalidConfiguration if blockSize is even or smaller than 3
func Binarize(img image.Image, blockSize int, offset float64) (*image.Gray, error) {
	if err := ValidateBlockSize(blockSize); err != nil {
		return nil, err
	}

	gray := Luminance(img)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out, nil
	}

	weights := gaussianWeights(blockSize)
	radius := blockSize / 2

	// Horizontal pass.
	rows := make([]float64, w*h)
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			src := gray.Pix[y*gray.Stride:]
			for x := 0; x < w; x++ {
				var sum float64
				for k := -radius; k <= radius; k++ {
					sum += weights[k+radius] * float64(src[reflect(x+k, w)])
				}
				rows[y*w+x] = sum
			}
		}
	})

	// Vertical pass and comparison.
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				var mean float64
				for k := -radius; k <= radius; k++ {
					mean += weights[k+radius] * rows[reflect(y+k, h)*w+x]
				}
				if float64(gray.Pix[y*gray.Stride+x]) > mean-offset {
					out.Pix[y*out.Stride+x] = 255
				}
			}
		}
	})

	return out, nil
}

// gaussianWeights returns a normalized 1D Gaussian of length size.
func gaussianWeights(size int) []float64 {
	sigma := float64(size-1) / 6.0
	radius := size / 2
	weights := make([]float64, size)
	var total float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		weights[i+radius] = v
		total += v
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

// reflect maps an index onto [0, n) by half-sample symmetric reflection.
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
