package ocrpage

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/gardar/ocrlens/pkg/geometry"
)

// Markup element, class and attribute names.
const (
	PageClass   = "win11OneOcrPage"
	LineElement = "segment"
	WordElement = "w"

	AttrPageNumber        = "pageNum"
	AttrSource            = "srcName"
	AttrImageWidth        = "imgWidth"
	AttrImageHeight       = "imgHeight"
	AttrAngle             = "angle"
	AttrAverageConfidence = "averageOcrConfidence"
	// AttrLegacyAverage is read when AttrAverageConfidence is absent.
	AttrLegacyAverage = "averageConfidence"
	AttrWordsCount    = "ocrWordsCount"
	AttrSegmentsCount = "ocrSegmentsCount"

	AttrConfidence = "p"
	AttrIndex      = "i"
	AttrBox        = "b"
)

// Source keeps the markup nodes the page was built from. Lines[i] is the
// node of Page.Lines[i] and Lines[i].Words[j] the node of its j-th word, so
// views can decorate the markup without re-querying it by position.
type Source struct {
	Document *html.Node
	Page     *html.Node
	Lines    []SourceLine
}

// SourceLine holds the nodes of one line.
type SourceLine struct {
	Node  *html.Node
	Words []*html.Node
}

// Build reads the page model from a page container node. It never fails.
func Build(pageNode *html.Node) (*Page, *Source) {
	page := &Page{Metadata: readMetadata(pageNode)}
	src := &Source{Page: pageNode}
	page.BackgroundImage = page.Metadata.Filename

	for i, lineNode := range findElements(pageNode, LineElement) {
		line := Line{ID: i}
		srcLine := SourceLine{Node: lineNode}

		for j, wordNode := range findElements(lineNode, WordElement) {
			line.Words = append(line.Words, readWord(wordNode, j))
			srcLine.Words = append(srcLine.Words, wordNode)
		}

		page.Lines = append(page.Lines, line)
		src.Lines = append(src.Lines, srcLine)
	}

	return page, src
}

func readMetadata(n *html.Node) Metadata {
	md := Metadata{
		Filename:    strings.TrimSpace(getAttr(n, AttrSource)),
		ImageWidth:  positiveIntAttr(n, AttrImageWidth, DefaultImageWidth),
		ImageHeight: positiveIntAttr(n, AttrImageHeight, DefaultImageHeight),
		Angle:       floatAttr(n, AttrAngle, 0),
		TotalWords:  countAttr(n, AttrWordsCount),
		TotalLines:  countAttr(n, AttrSegmentsCount),
	}

	avgAttr := AttrAverageConfidence
	if !hasAttr(n, avgAttr) {
		avgAttr = AttrLegacyAverage
	}
	md.AverageConfidence = clampUnit(floatAttr(n, avgAttr, 0))

	return md
}

func readWord(n *html.Node, position int) Word {
	w := Word{
		Text:       strings.TrimSpace(textContent(n)),
		Confidence: clampUnit(floatAttr(n, AttrConfidence, 0)),
		Index:      position,
	}
	if idx, ok := intAttr(n, AttrIndex); ok && idx >= 0 {
		w.Index = idx
	}
	if box, ok := geometry.ParsePolygon(getAttr(n, AttrBox)); ok {
		w.Box = &box
	}
	return w
}

// getAttr looks an attribute up case-insensitively; the HTML parser
// lower-cases attribute names, XML-style markup may not.
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func intAttr(n *html.Node, key string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(getAttr(n, key)))
	if err != nil {
		return 0, false
	}
	return v, true
}

func positiveIntAttr(n *html.Node, key string, def int) int {
	if v, ok := intAttr(n, key); ok && v > 0 {
		return v
	}
	return def
}

func countAttr(n *html.Node, key string) int {
	if v, ok := intAttr(n, key); ok && v >= 0 {
		return v
	}
	return 0
}

func floatAttr(n *html.Node, key string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(getAttr(n, key)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(v, 1))
}

// findElements returns the descendants of n named tag, in document order,
// without descending into matches.
func findElements(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				found = append(found, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return found
}

// textContent concatenates all text below n.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
