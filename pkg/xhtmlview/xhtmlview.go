// Package xhtmlview renders the structured markup view of an OCR page: the
// source markup decorated with confidence classes, line numbers and the
// classes that carry the display state.
//
// Decoration never touches the parsed source. Each render works on a copy and
// finds the copies of the line and word nodes through the node references the
// page was built from.
package xhtmlview

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/display"
	"github.com/gardar/ocrlens/pkg/ocrpage"
)

// Classes and attributes added to the markup.
const (
	ClassShowLineBoxes = "show-line-boxes"
	ClassHideText      = "hide-text"
	AttrLineNumber     = "data-line-number"
	AttrLineIndex      = "data-line"
)

// Options configures a render.
type Options struct {
	// Thresholds tiers the words; nil means confidence.DefaultThresholds.
	Thresholds *confidence.Thresholds
	State      display.State
}

// RenderPage writes the decorated page container element.
func RenderPage(w io.Writer, page *ocrpage.Page, src *ocrpage.Source, opts Options) error {
	root, err := decorated(page, src, src.Page, opts)
	if err != nil {
		return err
	}
	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("failed to render page markup: %w", err)
	}
	return nil
}

// RenderDocument writes the whole decorated document.
func RenderDocument(w io.Writer, page *ocrpage.Page, src *ocrpage.Source, opts Options) error {
	if src.Document == nil {
		return RenderPage(w, page, src, opts)
	}
	root, err := decorated(page, src, src.Document, opts)
	if err != nil {
		return err
	}
	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("failed to render document markup: %w", err)
	}
	return nil
}

// RenderPageString is RenderPage into a string.
func RenderPageString(page *ocrpage.Page, src *ocrpage.Source, opts Options) (string, error) {
	var b strings.Builder
	if err := RenderPage(&b, page, src, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

func decorated(page *ocrpage.Page, src *ocrpage.Source, root *html.Node, opts Options) (*html.Node, error) {
	if src == nil || src.Page == nil {
		return nil, ocrpage.ErrNoPage
	}
	if len(src.Lines) != len(page.Lines) {
		return nil, fmt.Errorf("source has %d lines, page has %d", len(src.Lines), len(page.Lines))
	}

	th := confidence.Resolve(opts.Thresholds)

	copies := make(map[*html.Node]*html.Node)
	clone := cloneTree(root, copies)

	pageNode := copies[src.Page]
	if pageNode == nil {
		return nil, ocrpage.ErrNoPage
	}
	setClass(pageNode, ClassHideText, !opts.State.ShowXHTMLText)

	for l, srcLine := range src.Lines {
		lineNode := copies[srcLine.Node]
		if lineNode == nil {
			continue
		}
		setAttr(lineNode, AttrLineNumber, strconv.Itoa(l+1))
		setAttr(lineNode, AttrLineIndex, strconv.Itoa(l))
		setClass(lineNode, ClassShowLineBoxes, opts.State.ShowLineBoxes)

		words := page.Lines[l].Words
		for i, wordNode := range srcLine.Words {
			wn := copies[wordNode]
			if wn == nil || i >= len(words) {
				continue
			}
			setClass(wn, th.Classify(words[i].Confidence).HTMLClass(), true)
		}
	}

	return clone, nil
}

// cloneTree deep-copies n, recording each original node's copy.
func cloneTree(n *html.Node, copies map[*html.Node]*html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	copies[n] = c
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneTree(child, copies))
	}
	return c
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// setClass adds or removes one class, leaving the others in place.
func setClass(n *html.Node, class string, on bool) {
	idx := -1
	for i, a := range n.Attr {
		if a.Key == "class" {
			idx = i
			break
		}
	}

	var classes []string
	if idx >= 0 {
		for _, c := range strings.Fields(n.Attr[idx].Val) {
			if c != class {
				classes = append(classes, c)
			}
		}
	}
	if on {
		classes = append(classes, class)
	}

	switch {
	case idx >= 0 && len(classes) == 0:
		n.Attr = append(n.Attr[:idx], n.Attr[idx+1:]...)
	case idx >= 0:
		n.Attr[idx].Val = strings.Join(classes, " ")
	case len(classes) > 0:
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
	}
}
