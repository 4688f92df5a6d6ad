package ocrpage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/ocrlens/pkg/geometry"
)

const sampleMarkup = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>scan</title></head>
<body>
<section class="win11OneOcrPage" srcName="scan.png" imgWidth="1000" imgHeight="1400"
  angle="1.25" averageOcrConfidence="0.875" ocrWordsCount="4" ocrSegmentsCount="2">
  <segment>
    <w p="0.95" i="0" b="10,20,30,20,30,40,10,40">Hello</w>
    <w p="0.62" i="1" b="35,20,60,20,60,40,35,40">world</w>
  </segment>
  <segment>
    <w p="0.3" b="1,2,3">Foo</w>
    <w i="7">  bar </w>
  </segment>
</section>
</body></html>`

func TestParseSample(t *testing.T) {
	page, src, err := Parse(strings.NewReader(sampleMarkup), ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, Metadata{
		Filename:          "scan.png",
		ImageWidth:        1000,
		ImageHeight:       1400,
		Angle:             1.25,
		AverageConfidence: 0.875,
		TotalWords:        4,
		TotalLines:        2,
	}, page.Metadata)
	assert.Equal(t, "scan.png", page.BackgroundImage)

	require.Len(t, page.Lines, 2)
	assert.Equal(t, 0, page.Lines[0].ID)
	assert.Equal(t, 1, page.Lines[1].ID)

	hello := page.Lines[0].Words[0]
	assert.Equal(t, "Hello", hello.Text)
	assert.Equal(t, 0.95, hello.Confidence)
	require.NotNil(t, hello.Box)
	assert.Equal(t, geometry.Polygon4{X1: 10, Y1: 20, X2: 30, Y2: 20, X3: 30, Y3: 40, X4: 10, Y4: 40}, *hello.Box)

	foo := page.Lines[1].Words[0]
	assert.Nil(t, foo.Box, "short polygon leaves the word without geometry")
	assert.Equal(t, 0, foo.Index)

	bar := page.Lines[1].Words[1]
	assert.Equal(t, "bar", bar.Text)
	assert.Equal(t, 7, bar.Index)
	assert.Equal(t, 0.0, bar.Confidence)

	require.Len(t, src.Lines, 2)
	assert.Equal(t, "segment", src.Lines[0].Node.Data)
	require.Len(t, src.Lines[1].Words, 2)
	assert.Equal(t, "w", src.Lines[1].Words[1].Data)
	assert.NotNil(t, src.Document)
	assert.Equal(t, "section", src.Page.Data)
}

func TestParseMetadataDefaults(t *testing.T) {
	tests := []struct {
		name  string
		attrs string
		want  Metadata
	}{
		{
			name:  "all missing",
			attrs: ``,
			want:  Metadata{ImageWidth: 800, ImageHeight: 600},
		},
		{
			name:  "unparsable values",
			attrs: `imgWidth="wide" imgHeight="12.5" angle="tilted" averageOcrConfidence="x" ocrWordsCount="many"`,
			want:  Metadata{ImageWidth: 800, ImageHeight: 600},
		},
		{
			name:  "non positive dimensions and negative counts",
			attrs: `imgWidth="0" imgHeight="-20" ocrWordsCount="-1" ocrSegmentsCount="-3"`,
			want:  Metadata{ImageWidth: 800, ImageHeight: 600},
		},
		{
			name:  "legacy average attribute",
			attrs: `srcName="a.png" averageConfidence="0.5"`,
			want:  Metadata{Filename: "a.png", ImageWidth: 800, ImageHeight: 600, AverageConfidence: 0.5},
		},
		{
			name:  "non finite angle",
			attrs: `angle="NaN" imgWidth="640"`,
			want:  Metadata{ImageWidth: 640, ImageHeight: 600},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup := `<section class="win11OneOcrPage" ` + tt.attrs + `></section>`
			page, _, err := Parse(strings.NewReader(markup), ParseOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Metadata)
			assert.Empty(t, page.Lines)
		})
	}
}

func TestParseWordConfidenceClamped(t *testing.T) {
	markup := `<section class="win11OneOcrPage"><segment><w p="1.7">a</w><w p="-2">b</w><w p="Inf">c</w></segment></section>`
	page, _, err := Parse(strings.NewReader(markup), ParseOptions{})
	require.NoError(t, err)

	words := page.Lines[0].Words
	assert.Equal(t, 1.0, words[0].Confidence)
	assert.Equal(t, 0.0, words[1].Confidence)
	assert.Equal(t, 0.0, words[2].Confidence)
}

func TestParseNegativeIndexFallsBackToPosition(t *testing.T) {
	markup := `<section class="win11OneOcrPage"><segment><w>a</w><w i="-4">b</w></segment></section>`
	page, _, err := Parse(strings.NewReader(markup), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Lines[0].Words[1].Index)
}

func TestParseNoPage(t *testing.T) {
	_, _, err := Parse(strings.NewReader(`<html><body><p>nothing</p></body></html>`), ParseOptions{})
	assert.ErrorIs(t, err, ErrNoPage)
}

func TestParseFallsBackToSrcNameElement(t *testing.T) {
	markup := `<div srcName="x.jpg" imgWidth="10"><segment><w>hi</w></segment></div>`
	page, _, err := Parse(strings.NewReader(markup), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "x.jpg", page.Metadata.Filename)
	assert.Equal(t, 10, page.Metadata.ImageWidth)
	assert.Equal(t, "hi", page.Text())
}

const twoPageMarkup = `<html><body>
<section class="win11OneOcrPage" pageNum="2" srcName="second.png"><segment><w>two</w></segment></section>
<section class="win11OneOcrPage" srcName="unnumbered.png"><segment><w>plain</w></segment></section>
<section class="win11OneOcrPage" pageNum="1" srcName="first.png"><segment><w>one</w></segment></section>
</body></html>`

func TestParsePageSelection(t *testing.T) {
	tests := []struct {
		name     string
		number   int
		filename string
		text     string
	}{
		{"default is first in document", 0, "second.png", "two"},
		{"by pageNum attribute", 1, "first.png", "one"},
		{"attribute wins over position", 2, "second.png", "two"},
		{"by position", 3, "first.png", "one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, src, err := Parse(strings.NewReader(twoPageMarkup), ParseOptions{PageNumber: tt.number})
			require.NoError(t, err)
			assert.Equal(t, tt.filename, page.Metadata.Filename)
			assert.Equal(t, tt.text, page.Text())
			assert.Equal(t, tt.filename, getAttr(src.Page, AttrSource))
		})
	}
}

func TestParsePageNotFound(t *testing.T) {
	for _, number := range []int{4, -1} {
		_, _, err := Parse(strings.NewReader(twoPageMarkup), ParseOptions{PageNumber: number})
		assert.ErrorIs(t, err, ErrPageNotFound)
	}

	page, _, err := Parse(strings.NewReader(`<div srcName="x.jpg"><segment><w>hi</w></segment></div>`), ParseOptions{PageNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, "hi", page.Text())
}

func TestParseLatin1(t *testing.T) {
	markup := `<html><head><meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1"></head>` +
		`<body><section class="win11OneOcrPage"><segment><w>café</w></segment></section></body></html>`
	encoded, err := charmap.ISO8859_1.NewEncoder().String(markup)
	require.NoError(t, err)

	page, _, err := Parse(strings.NewReader(encoded), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "café", page.Lines[0].Words[0].Text)
}

func TestTextExtraction(t *testing.T) {
	page := &Page{Lines: []Line{
		{ID: 0, Words: []Word{{Text: "Hello"}, {Text: "world"}}},
		{ID: 1, Words: []Word{{Text: "Foo"}, {Text: "bar"}}},
	}}

	text, ok := page.LineText(0)
	require.True(t, ok)
	assert.Equal(t, "Hello world", text)

	_, ok = page.LineText(2)
	assert.False(t, ok)

	assert.Equal(t, "Hello world\nFoo bar", page.Text())
	assert.Equal(t, "", Empty().Text())
}

func TestWordLookup(t *testing.T) {
	page := &Page{Lines: []Line{{Words: []Word{{Text: "a"}, {Text: "b"}}}}}

	w, ok := page.Word(0, 1)
	require.True(t, ok)
	assert.Equal(t, "b", w.Text)

	_, ok = page.Word(0, 2)
	assert.False(t, ok)
	_, ok = page.Word(-1, 0)
	assert.False(t, ok)
	assert.Equal(t, 2, page.WordCount())
}

func TestEmpty(t *testing.T) {
	page := Empty()
	assert.Equal(t, 800, page.Metadata.ImageWidth)
	assert.Equal(t, 600, page.Metadata.ImageHeight)
	assert.Empty(t, page.Lines)
	assert.Empty(t, page.BackgroundImage)
}

func TestWriteXHTMLRoundTrip(t *testing.T) {
	original, _, err := Parse(strings.NewReader(sampleMarkup), ParseOptions{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXHTML(&buf, original))

	reparsed, _, err := Parse(&buf, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, original, reparsed)
}

func TestSourceOf(t *testing.T) {
	page, _, err := Parse(strings.NewReader(sampleMarkup), ParseOptions{})
	require.NoError(t, err)

	src, err := SourceOf(page)
	require.NoError(t, err)
	require.Len(t, src.Lines, 2)
	assert.Len(t, src.Lines[0].Words, 2)
	assert.NotNil(t, src.Document)

	_, err = SourceOf(nil)
	assert.ErrorIs(t, err, ErrNoPage)
}
