package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// smoothingKernel is the 5×5 Gaussian kernel (sigma ≈ 1.4, sum 273) applied
// before thresholding.
var smoothingKernel = []float64{
	1, 4, 7, 4, 1,
	4, 16, 26, 16, 4,
	7, 26, 41, 26, 7,
	4, 16, 26, 16, 4,
	1, 4, 7, 4, 1,
}

// Luminance converts an image to single-channel 8-bit luminance using
// ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B), rounded to nearest.
//
// The result always has its origin at (0, 0). A *image.Gray input is copied
// without conversion.
func Luminance(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			src := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src[:b.Dx()])
		}
		return out
	}

	gray := imaging.Grayscale(img)
	for y := 0; y < b.Dy(); y++ {
		row := gray.Pix[y*gray.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = row[x*4]
		}
	}
	return out
}

// Smooth applies the fixed 5×5 Gaussian kernel to a luminance raster to
// suppress high-frequency noise. Border pixels use replicated edge values.
func Smooth(gray *image.Gray) *image.Gray {
	kernel := convolution.NewKernel(5, 5)
	copy(kernel.Matrix, smoothingKernel)

	blurred := convolution.Convolve(gray, kernel.Normalized(), &convolution.Options{
		Bias:      0,
		Wrap:      false,
		KeepAlpha: true,
	})

	b := blurred.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		row := blurred.Pix[y*blurred.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			dst[x] = row[x*4]
		}
	}
	return out
}

// Threshold produces a binary mask: 255 where the sample is strictly greater
// than cutoff, 0 elsewhere.
func Threshold(gray *image.Gray, cutoff uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if src[x] > cutoff {
				dst[x] = 255
			}
		}
	}
	return out
}

// ForegroundMask runs the region extraction preprocessing: luminance,
// 5×5 smoothing, then binary threshold at cutoff.
func ForegroundMask(img image.Image, cutoff uint8) *image.Gray {
	return Threshold(Smooth(Luminance(img)), cutoff)
}
