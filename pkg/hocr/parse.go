package hocr

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/ocrpage"
)

// ErrNoPage is returned when the document has no ocr_page element.
var ErrNoPage = errors.New("no ocr_page elements found in hOCR data")

// Parse converts raw hOCR data into a page model.
func Parse(data []byte) (*ocrpage.Page, error) {
	decoded, err := ocrpage.DecodeCharset(data)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	pageNode := findFirst(doc, func(n *html.Node) bool { return hasClass(n, ClassPage) })
	if pageNode == nil {
		return nil, ErrNoPage
	}

	return processPage(pageNode), nil
}

// ParseTitle breaks down an hOCR title attribute into its properties.
// Example input: "bbox 100 200 300 400; x_wconf 95"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(strings.TrimSpace(part))
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBBox extracts the bbox property of a title as a rectangle polygon.
func ParseBBox(title string) (geometry.Polygon4, bool) {
	bbox, ok := ParseTitle(title)["bbox"]
	if !ok || len(bbox) < 4 {
		return geometry.Polygon4{}, false
	}
	var c [4]float64
	for i := range c {
		v, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil {
			return geometry.Polygon4{}, false
		}
		c[i] = v
	}
	return geometry.FromRect(c[0], c[1], c[2], c[3]), true
}

func processPage(n *html.Node) *ocrpage.Page {
	page := ocrpage.Empty()
	title := getAttrVal(n, "title")
	props := ParseTitle(title)

	if bbox, ok := ParseBBox(title); ok {
		r := bbox.Bounds()
		if w := int(r.Right); w > 0 {
			page.Metadata.ImageWidth = w
		}
		if h := int(r.Bottom); h > 0 {
			page.Metadata.ImageHeight = h
		}
	}
	if image, ok := props["image"]; ok && len(image) > 0 {
		page.Metadata.Filename = strings.Trim(strings.Join(image, " "), `"'`)
		page.BackgroundImage = page.Metadata.Filename
	}
	if angle, ok := props["textangle"]; ok && len(angle) > 0 {
		if v, err := strconv.ParseFloat(angle[0], 64); err == nil {
			page.Metadata.Angle = v
		}
	}

	var sum float64
	for _, words := range collectLines(n) {
		line := ocrpage.Line{ID: len(page.Lines)}
		for i, wn := range words {
			word := processWord(wn, i)
			sum += word.Confidence
			line.Words = append(line.Words, word)
		}
		page.Lines = append(page.Lines, line)
	}

	page.Metadata.TotalLines = len(page.Lines)
	page.Metadata.TotalWords = page.WordCount()
	if page.Metadata.TotalWords > 0 {
		page.Metadata.AverageConfidence = sum / float64(page.Metadata.TotalWords)
	}
	return page
}

// collectLines returns the word nodes of each line in document order. Words
// outside any line element are grouped by their parent.
func collectLines(page *html.Node) [][]*html.Node {
	var lines [][]*html.Node
	var orphanParent *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch {
			case isLine(c):
				orphanParent = nil
				lines = append(lines, findAll(c, func(x *html.Node) bool { return hasClass(x, ClassWord) }))
			case hasClass(c, ClassWord):
				if orphanParent != n {
					lines = append(lines, nil)
					orphanParent = n
				}
				lines[len(lines)-1] = append(lines[len(lines)-1], c)
			default:
				walk(c)
			}
		}
	}
	walk(page)

	return lines
}

func processWord(n *html.Node, position int) ocrpage.Word {
	word := ocrpage.Word{
		Text:  extractTextContent(n),
		Index: position,
	}
	title := getAttrVal(n, "title")
	if bbox, ok := ParseBBox(title); ok {
		word.Box = &bbox
	}
	if conf, ok := ParseTitle(title)["x_wconf"]; ok && len(conf) > 0 {
		if v, err := strconv.ParseFloat(conf[0], 64); err == nil {
			word.Confidence = clampPercent(v) / 100
		}
	}
	return word
}

func isLine(n *html.Node) bool {
	for _, c := range lineClasses {
		if hasClass(n, c) {
			return true
		}
	}
	return false
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
