package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used when none is given.
const DefaultLanguage = "eng"

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

func (b Bounds) offset(dx, dy int) Bounds {
	return Bounds{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// TextRegion is one recognized word with its location and OCR confidence.
type TextRegion struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around this word in the image.
	Bounds Bounds `json:"bounds"`
}

// OCRResult contains the complete results of text extraction from an image.
type OCRResult struct {
	// FullText is all recognized text, normalized with NormalizeText.
	FullText string `json:"full_text"`

	// Lines groups the words into text lines in reading order. Empty if
	// Tesseract produced no hOCR layout.
	Lines []Line `json:"lines"`

	// Regions contains individual words with their bounding boxes and
	// confidence scores. May be empty if bounding box extraction fails
	// (text will still be in FullText).
	Regions []TextRegion `json:"regions"`
}

// ExtractText performs OCR on img and returns the recognized text.
//
// The image is handed to Tesseract as PNG bytes, so any image.Image works,
// including the *image.Gray produced by the scan effect, which is the
// input Tesseract reads best.
//
// language is a Tesseract language code such as "eng", or several joined
// with "+". The corresponding language data must be installed on the
// system. An empty language selects DefaultLanguage.
//
// If word or line layout extraction fails, FullText is still returned with
// empty Regions and Lines.
func ExtractText(img image.Image, language string) (*OCRResult, error) {
	if language == "" {
		language = DefaultLanguage
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Split(language, "+")...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	result := &OCRResult{
		FullText: NormalizeText(text),
		Lines:    []Line{},
		Regions:  []TextRegion{},
	}

	if hocr, err := client.HOCRText(); err == nil {
		if lines, err := ParseHOCR(strings.NewReader(hocr)); err == nil {
			result.Lines = lines
		}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return result, nil
	}
	for _, box := range boxes {
		word := NormalizeText(box.Word)
		if word == "" {
			continue
		}
		result.Regions = append(result.Regions, TextRegion{
			Text:       word,
			Confidence: box.Confidence / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return result, nil
}

// ExtractTextFromRegion performs OCR on rect of img.
//
// The returned bounding boxes are adjusted to img coordinates. For example,
// if rect starts at (100, 50) and a word is found at (10, 20) within the
// crop, its returned bounds start at (110, 70).
func ExtractTextFromRegion(img image.Image, rect image.Rectangle, language string) (*OCRResult, error) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region %v does not overlap the image bounds %v", rect, img.Bounds())
	}

	result, err := ExtractText(imaging.Crop(img, rect), language)
	if err != nil {
		return nil, err
	}
	result.shift(rect.Min.X-img.Bounds().Min.X, rect.Min.Y-img.Bounds().Min.Y)
	return result, nil
}

// shift moves every bounding box in r by (dx, dy).
func (r *OCRResult) shift(dx, dy int) {
	for i := range r.Regions {
		r.Regions[i].Bounds = r.Regions[i].Bounds.offset(dx, dy)
	}
	for i := range r.Lines {
		r.Lines[i].Bounds = r.Lines[i].Bounds.offset(dx, dy)
	}
}
