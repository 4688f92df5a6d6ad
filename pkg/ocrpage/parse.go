package ocrpage

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ParseOptions configures Parse.
type ParseOptions struct {
	// Logger receives diagnostics; nil means slog.Default().
	Logger *slog.Logger
	// PageNumber selects one page of a multi-page document, 1-based. The
	// page whose pageNum attribute matches wins, otherwise the page at that
	// position. Zero selects the first page.
	PageNumber int
}

// Parse reads OCR markup, locates the page container and builds the page.
// It returns ErrNoPage when the document has no page container and
// ErrPageNotFound when opts.PageNumber names a page the document lacks; every
// other irregularity degrades to defaults.
func Parse(r io.Reader, opts ParseOptions) (*Page, *Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read markup: %w", err)
	}

	decoded, err := DecodeCharset(data)
	if err != nil {
		return nil, nil, err
	}

	doc, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	pageNode := findPage(doc)
	if pageNode == nil {
		logger.Warn("markup has no page container", "class", PageClass)
		return nil, nil, ErrNoPage
	}
	if opts.PageNumber != 0 {
		pageNode = selectPage(doc, pageNode, opts.PageNumber)
		if pageNode == nil {
			return nil, nil, fmt.Errorf("%w: page %d", ErrPageNotFound, opts.PageNumber)
		}
	}

	page, src := Build(pageNode)
	src.Document = doc

	logger.Debug("built OCR page",
		"filename", page.Metadata.Filename,
		"lines", len(page.Lines),
		"words", page.WordCount(),
		"avg_confidence", page.Metadata.AverageConfidence)

	return page, src, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte, opts ParseOptions) (*Page, *Source, error) {
	return Parse(bytes.NewReader(data), opts)
}

// findPage returns the first element with the page class, or failing that the
// first element carrying a srcName attribute.
func findPage(doc *html.Node) *html.Node {
	var byClass, byAttr *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if byClass != nil {
			return
		}
		if n.Type == html.ElementNode {
			if hasClass(n, PageClass) {
				byClass = n
				return
			}
			if byAttr == nil && hasAttr(n, AttrSource) {
				byAttr = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if byClass != nil {
		return byClass
	}
	return byAttr
}

// selectPage returns the page container whose pageNum attribute is number,
// or else the number-th page container in document order. A document without
// page-class elements has first as its only page.
func selectPage(doc, first *html.Node, number int) *html.Node {
	pages := pageNodes(doc)
	if len(pages) == 0 {
		pages = []*html.Node{first}
	}
	for _, p := range pages {
		if n, ok := intAttr(p, AttrPageNumber); ok && n == number {
			return p
		}
	}
	if number >= 1 && number <= len(pages) {
		return pages[number-1]
	}
	return nil
}

// pageNodes lists the elements with the page class in document order.
func pageNodes(doc *html.Node) []*html.Node {
	var pages []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, PageClass) {
			pages = append(pages, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return pages
}

// DecodeCharset converts markup declaring a legacy single-byte charset
// (ISO-8859-1, Windows-1252) to UTF-8. Other markup is returned as is.
func DecodeCharset(data []byte) ([]byte, error) {
	enc := declaredEncoding(data)
	if enc == nil {
		return data, nil
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode markup charset: %w", err)
	}
	return decoded, nil
}

func declaredEncoding(data []byte) encoding.Encoding {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	content := strings.ToLower(string(head))

	start := strings.Index(content, "charset=")
	if start < 0 {
		start = strings.Index(content, "encoding=")
		if start < 0 {
			return nil
		}
		start += len("encoding=")
	} else {
		start += len("charset=")
	}

	fields := strings.FieldsFunc(content[start:], func(r rune) bool {
		return r == '"' || r == ';' || r == '\'' || r == '>' || r == ' ' || r == '?'
	})
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "iso-8859-1", "latin1", "latin-1", "iso8859-1":
		return charmap.ISO8859_1
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	default:
		return nil
	}
}
