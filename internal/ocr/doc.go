// Package ocr reads text from scanned document pages using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). Images are
// passed in memory, so the output of the scan pipeline can be read without
// touching the filesystem.
//
// # Prerequisites
//
// Tesseract and its development headers must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// The default language is English ("eng"). Several languages may be joined
// with "+", for example "eng+deu".
//
// # Results
//
//   - ExtractText: full-image OCR with word boxes and text lines
//   - ExtractTextFromRegion: OCR on a rectangle, boxes in image coordinates
//   - ParseHOCR: line layout from Tesseract hOCR output
//   - NormalizeText: NFKC folding and whitespace cleanup of OCR text
//
// Binarized pages give the best results. If word or line extraction fails
// (e.g., Tesseract version mismatch), ExtractText still returns the text.
package ocr
