package ocr

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Line is one line of recognized text with the words it contains.
type Line struct {
	Text       string       `json:"text"`
	Bounds     Bounds       `json:"bounds"`
	Confidence float64      `json:"confidence"`
	Words      []TextRegion `json:"words"`
}

var lineClasses = map[string]bool{
	"ocr_line":      true,
	"ocr_textfloat": true,
	"ocr_header":    true,
	"ocr_caption":   true,
}

// ParseHOCR reads Tesseract hOCR output and returns its text lines in
// document order. Line confidence is the mean of its word confidences.
func ParseHOCR(r io.Reader) ([]Line, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	lines := []Line{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, lineClasses) {
			if line, ok := parseLine(n); ok {
				lines = append(lines, line)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return lines, nil
}

func parseLine(n *html.Node) (Line, bool) {
	props := titleProps(n)
	line := Line{Bounds: parseBBox(props["bbox"]), Words: []TextRegion{}}

	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, map[string]bool{"ocrx_word": true}) {
			word := NormalizeText(textContent(n))
			if word == "" {
				return
			}
			wp := titleProps(n)
			conf, _ := strconv.ParseFloat(wp["x_wconf"], 64)
			line.Words = append(line.Words, TextRegion{
				Text:       word,
				Confidence: conf / 100.0,
				Bounds:     parseBBox(wp["bbox"]),
			})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	if len(line.Words) == 0 {
		return Line{}, false
	}

	texts := make([]string, len(line.Words))
	var sum float64
	for i, w := range line.Words {
		texts[i] = w.Text
		sum += w.Confidence
	}
	line.Text = strings.Join(texts, " ")
	line.Confidence = sum / float64(len(line.Words))
	return line, true
}

func hasClass(n *html.Node, classes map[string]bool) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if classes[c] {
				return true
			}
		}
	}
	return false
}

// titleProps splits an hOCR title attribute such as
// "bbox 10 20 30 40; x_wconf 95" into its named properties.
func titleProps(n *html.Node) map[string]string {
	props := map[string]string{}
	for _, a := range n.Attr {
		if a.Key != "title" {
			continue
		}
		for _, part := range strings.Split(a.Val, ";") {
			part = strings.TrimSpace(part)
			name, value, _ := strings.Cut(part, " ")
			if name != "" {
				props[name] = strings.TrimSpace(value)
			}
		}
	}
	return props
}

func parseBBox(s string) Bounds {
	f := strings.Fields(s)
	if len(f) != 4 {
		return Bounds{}
	}
	var v [4]int
	for i := range f {
		n, err := strconv.Atoi(f[i])
		if err != nil {
			return Bounds{}
		}
		v[i] = n
	}
	return Bounds{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var rec func(n *html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}
