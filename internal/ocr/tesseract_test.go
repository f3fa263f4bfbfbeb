package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// createImageWithText renders text on white and scales it up by drawing each
// pixel as a scale x scale block. basicfont.Face7x13 is 7 pixels wide and 13
// pixels tall per character.
func createImageWithText(t *testing.T, text string, scale int) *image.RGBA {
	t.Helper()

	w, h := len(text)*7+40, 40
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)
	if scale == 1 {
		return small
	}

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := small.At(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

func skipWithoutTesseract(t *testing.T, err error) {
	t.Helper()
	if strings.Contains(err.Error(), "tesseract") ||
		strings.Contains(err.Error(), "library") ||
		strings.Contains(err.Error(), "language") {
		t.Skip("Tesseract not available")
	}
}

func TestExtractText_BlankPage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 50))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	result, err := ExtractText(img, "")
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("ExtractText failed: %v", err)
	}
	if result == nil {
		t.Fatal("ExtractText returned nil result")
	}
	if result.Regions == nil || result.Lines == nil {
		t.Error("Regions and Lines should be empty slices, not nil")
	}
}

func TestExtractText_InvalidLanguage(t *testing.T) {
	img := createImageWithText(t, "TEST", 2)

	_, err := ExtractText(img, "invalid_language_code_xyz")
	if err == nil {
		// Some Tesseract installations might be lenient with language codes
		t.Log("ExtractText did not fail for invalid language - may be Tesseract config")
	}
}

func TestExtractText_RealText(t *testing.T) {
	img := createImageWithText(t, "HELLO WORLD", 4)

	result, err := ExtractText(img, DefaultLanguage)
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("ExtractText failed: %v", err)
	}

	t.Logf("Extracted text: %q, regions: %d, lines: %d",
		result.FullText, len(result.Regions), len(result.Lines))

	for _, region := range result.Regions {
		if region.Confidence < 0 || region.Confidence > 1 {
			t.Errorf("confidence %f outside [0,1]", region.Confidence)
		}
		b := region.Bounds
		if b.X1 > b.X2 || b.Y1 > b.Y2 || b.X2 > img.Bounds().Dx() || b.Y2 > img.Bounds().Dy() {
			t.Errorf("bounds %+v outside the image", b)
		}
	}
}

func TestExtractText_SimpleWords(t *testing.T) {
	for _, text := range []string{"TEST", "HELLO", "12345", "ABC123"} {
		t.Run(text, func(t *testing.T) {
			result, err := ExtractText(createImageWithText(t, text, 4), "eng")
			if err != nil {
				skipWithoutTesseract(t, err)
				t.Fatalf("ExtractText failed: %v", err)
			}
			t.Logf("Input: %q, Output: %q", text, result.FullText)
		})
	}
}

func TestExtractTextFromRegion_BoundsAdjustment(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(img, 150, 100, "CENTER TEXT", color.Black)
	drawText(img, 10, 20, "TOP LEFT", color.Black)

	offsetX, offsetY := 100, 50
	result, err := ExtractTextFromRegion(img, image.Rect(offsetX, offsetY, 300, 150), "eng")
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("ExtractTextFromRegion failed: %v", err)
	}

	t.Logf("Extracted from center region: %q", result.FullText)
	for _, region := range result.Regions {
		if region.Bounds.X1 < offsetX || region.Bounds.Y1 < offsetY {
			t.Errorf("Region bounds should be offset: got (%d,%d)",
				region.Bounds.X1, region.Bounds.Y1)
		}
	}
}

func TestExtractTextFromRegion_OutsideImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))

	_, err := ExtractTextFromRegion(img, image.Rect(60, 60, 100, 100), "eng")
	if err == nil {
		t.Error("ExtractTextFromRegion should fail for a region outside the image")
	}
}

func TestOCRResult_Shift(t *testing.T) {
	result := &OCRResult{
		FullText: "Hello World",
		Regions: []TextRegion{
			{Text: "Hello", Confidence: 0.9, Bounds: Bounds{X1: 0, Y1: 0, X2: 30, Y2: 20}},
			{Text: "World", Confidence: 0.85, Bounds: Bounds{X1: 35, Y1: 0, X2: 70, Y2: 20}},
		},
		Lines: []Line{
			{Text: "Hello World", Bounds: Bounds{X1: 0, Y1: 0, X2: 70, Y2: 20}},
		},
	}

	result.shift(100, 50)

	if got := result.Regions[1].Bounds; got != (Bounds{X1: 135, Y1: 50, X2: 170, Y2: 70}) {
		t.Errorf("word bounds: got %+v", got)
	}
	if got := result.Lines[0].Bounds; got != (Bounds{X1: 100, Y1: 50, X2: 170, Y2: 70}) {
		t.Errorf("line bounds: got %+v", got)
	}
	if result.Regions[0].Text != "Hello" || result.Regions[0].Confidence != 0.9 {
		t.Error("shift should only move bounds")
	}
}
