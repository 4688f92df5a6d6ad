package ocrpage

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WriteXHTML renders page in the OCR markup contract, so that pages imported
// from other formats get the same structured view as native markup.
func WriteXHTML(w io.Writer, page *Page) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, "html")
	head := element(atom.Head, "head")
	meta := element(atom.Meta, "meta", html.Attribute{Key: "charset", Val: "utf-8"})
	title := element(atom.Title, "title")
	title.AppendChild(&html.Node{Type: html.TextNode, Data: page.Metadata.Filename})
	head.AppendChild(meta)
	head.AppendChild(title)

	body := element(atom.Body, "body")
	body.AppendChild(pageNode(page))

	root.AppendChild(head)
	root.AppendChild(body)
	doc.AppendChild(root)

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("failed to render page markup: %w", err)
	}
	return nil
}

// SourceOf writes page as markup and parses it back, giving a page imported
// from another format a source to decorate. The returned source lines line up
// with page.Lines.
func SourceOf(page *Page) (*Source, error) {
	if page == nil {
		return nil, ErrNoPage
	}
	var buf bytes.Buffer
	if err := WriteXHTML(&buf, page); err != nil {
		return nil, err
	}
	reparsed, src, err := ParseBytes(buf.Bytes(), ParseOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read back page markup: %w", err)
	}
	if len(reparsed.Lines) != len(page.Lines) {
		return nil, fmt.Errorf("page markup kept %d of %d lines", len(reparsed.Lines), len(page.Lines))
	}
	return src, nil
}

func pageNode(page *Page) *html.Node {
	md := page.Metadata
	section := element(atom.Section, "section",
		html.Attribute{Key: "class", Val: PageClass},
		html.Attribute{Key: AttrSource, Val: md.Filename},
		html.Attribute{Key: AttrImageWidth, Val: strconv.Itoa(md.ImageWidth)},
		html.Attribute{Key: AttrImageHeight, Val: strconv.Itoa(md.ImageHeight)},
		html.Attribute{Key: AttrAngle, Val: formatFloat(md.Angle)},
		html.Attribute{Key: AttrAverageConfidence, Val: formatFloat(md.AverageConfidence)},
		html.Attribute{Key: AttrWordsCount, Val: strconv.Itoa(md.TotalWords)},
		html.Attribute{Key: AttrSegmentsCount, Val: strconv.Itoa(md.TotalLines)},
	)

	for _, line := range page.Lines {
		segment := element(0, LineElement)
		for i, word := range line.Words {
			if i > 0 {
				segment.AppendChild(&html.Node{Type: html.TextNode, Data: " "})
			}
			attrs := []html.Attribute{
				{Key: AttrConfidence, Val: formatFloat(word.Confidence)},
				{Key: AttrIndex, Val: strconv.Itoa(word.Index)},
			}
			if word.Box != nil {
				attrs = append(attrs, html.Attribute{Key: AttrBox, Val: boxAttr(word)})
			}
			wn := element(0, WordElement, attrs...)
			wn.AppendChild(&html.Node{Type: html.TextNode, Data: word.Text})
			segment.AppendChild(wn)
		}
		section.AppendChild(segment)
	}

	return section
}

func boxAttr(w Word) string {
	b := w.Box
	coords := []float64{b.X1, b.Y1, b.X2, b.Y2, b.X3, b.Y3, b.X4, b.Y4}
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = formatFloat(c)
	}
	return strings.Join(parts, ",")
}

func element(a atom.Atom, tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: tag, Attr: attrs}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
