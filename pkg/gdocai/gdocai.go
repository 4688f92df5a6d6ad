// Package gdocai converts Google Document AI results into the ocrpage model.
//
// Document AI returns a Document whose pages list lines and tokens (words)
// that point into the document text through text anchors. A token belongs
// to the line whose anchor contains its own. Token geometry comes from the
// bounding polygon: pixel vertices when present, otherwise normalized
// vertices scaled by the page dimension.
//
// Main Functions:
//
// - FromJSON: decodes a Document (or ProcessResponse) in JSON form and
// converts one of its pages
// - FromProto: converts a page of an already decoded Document
// - PageImage: returns the rendered page image embedded in a Document
package gdocai

import (
	"errors"
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/gardar/ocrlens/pkg/ocrpage"
)

// ErrNoPages is returned for documents without pages.
var ErrNoPages = errors.New("document has no pages")

// Decode parses a Document AI JSON payload. Both a bare Document and a
// ProcessResponse wrapping one are accepted.
func Decode(data []byte) (*documentaipb.Document, error) {
	unmarshal := protojson.UnmarshalOptions{DiscardUnknown: true}

	doc := &documentaipb.Document{}
	if err := unmarshal.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode Document AI JSON: %w", err)
	}
	if len(doc.GetPages()) > 0 {
		return doc, nil
	}

	resp := &documentaipb.ProcessResponse{}
	if err := unmarshal.Unmarshal(data, resp); err == nil && resp.GetDocument() != nil {
		return resp.GetDocument(), nil
	}
	return doc, nil
}

// FromJSON decodes a Document AI JSON payload and converts the page at
// opts.PageIndex.
func FromJSON(data []byte, opts Options) (*ocrpage.Page, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return FromProto(doc, opts)
}

// FromProto converts the page at opts.PageIndex of doc.
func FromProto(doc *documentaipb.Document, opts Options) (*ocrpage.Page, error) {
	page, err := selectPage(doc, opts.PageIndex)
	if err != nil {
		return nil, err
	}
	return convertPage(doc, page, opts), nil
}

// PageImage returns the page image Document AI embeds when asked to, with
// its MIME type.
func PageImage(doc *documentaipb.Document, pageIndex int) ([]byte, string, error) {
	page, err := selectPage(doc, pageIndex)
	if err != nil {
		return nil, "", err
	}

	image := page.GetImage()
	if image == nil {
		return nil, "", fmt.Errorf("no image found in page %d", pageIndex)
	}
	content := image.GetContent()
	if len(content) == 0 {
		return nil, "", fmt.Errorf("image content is empty")
	}
	return content, image.GetMimeType(), nil
}

func selectPage(doc *documentaipb.Document, index int) (*documentaipb.Document_Page, error) {
	pages := doc.GetPages()
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range, document has %d pages", index, len(pages))
	}
	return pages[index], nil
}
