package scene

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrlens/pkg/confidence"
	"github.com/gardar/ocrlens/pkg/geometry"
	"github.com/gardar/ocrlens/pkg/ocrpage"
)

func box(x1, y1, x2, y2 float64) *geometry.Polygon4 {
	p := geometry.FromRect(x1, y1, x2, y2)
	return &p
}

func testPage() *ocrpage.Page {
	return &ocrpage.Page{
		Metadata: ocrpage.Metadata{
			Filename:          "scan.png",
			ImageWidth:        400,
			ImageHeight:       300,
			Angle:             0.25,
			AverageConfidence: 0.7,
			TotalWords:        4,
			TotalLines:        2,
		},
		BackgroundImage: "scan.png",
		Lines: []ocrpage.Line{
			{ID: 0, Words: []ocrpage.Word{
				{Text: "Hello", Confidence: 0.95, Index: 0, Box: box(10, 20, 30, 40)},
				{Text: "world", Confidence: 0.6, Index: 1, Box: box(35, 20, 60, 40)},
			}},
			{ID: 1, Words: []ocrpage.Word{
				{Text: "Foo", Confidence: 0.2, Index: 0},
				{Text: "b<a>r", Confidence: 0.3, Index: 1, Box: box(10, 50, 40, 60)},
			}},
		},
	}
}

func TestBuild(t *testing.T) {
	sc := Build(testPage(), Options{})

	assert.Equal(t, 400, sc.Width)
	assert.Equal(t, 300, sc.Height)
	require.NotNil(t, sc.Background)
	assert.Equal(t, Image{Href: "scan.png", Width: 400, Height: 300}, *sc.Background)
	assert.Empty(t, sc.LineBoxes)
	assert.Equal(t, confidence.DefaultThresholds, sc.Thresholds)

	require.Len(t, sc.WordBoxes, 3, "words without geometry are skipped")
	require.Len(t, sc.Labels, 3)

	ids := []string{sc.WordBoxes[0].ID, sc.WordBoxes[1].ID, sc.WordBoxes[2].ID}
	assert.Equal(t, []string{"word-0-0", "word-0-1", "word-1-1"}, ids)

	assert.Equal(t, confidence.High, sc.WordBoxes[0].Tier)
	assert.Equal(t, confidence.Medium, sc.WordBoxes[1].Tier)
	assert.Equal(t, confidence.Low, sc.WordBoxes[2].Tier)
	assert.Equal(t, "word-box-med", sc.WordBoxes[1].Class())

	label := sc.Labels[0]
	assert.Equal(t, "Hello", label.Text)
	assert.Equal(t, "Confidence: 95.0%", label.Title)
	assert.InDelta(t, 12, label.Anchor.X, 1e-9)
	assert.InDelta(t, 35, label.Anchor.Y, 1e-9)
	assert.InDelta(t, 14, label.Anchor.FontSize, 1e-9)
}

func TestBuildBackgroundOverride(t *testing.T) {
	sc := Build(testPage(), Options{BackgroundHref: "/image"})
	require.NotNil(t, sc.Background)
	assert.Equal(t, "/image", sc.Background.Href)

	page := testPage()
	page.BackgroundImage = ""
	assert.Nil(t, Build(page, Options{}).Background)
}

func TestBuildCustomThresholds(t *testing.T) {
	sc := Build(testPage(), Options{Thresholds: &confidence.Thresholds{High: 0.99, Medium: 0.1}})
	assert.Equal(t, confidence.Medium, sc.WordBoxes[0].Tier)
	assert.Equal(t, confidence.Medium, sc.WordBoxes[2].Tier)
}

func TestBuildZeroThresholdsAreKept(t *testing.T) {
	sc := Build(testPage(), Options{Thresholds: &confidence.Thresholds{}})
	assert.Equal(t, confidence.Thresholds{}, sc.Thresholds)
	for _, s := range sc.WordBoxes {
		assert.Equal(t, confidence.High, s.Tier)
	}

	assert.Equal(t, confidence.DefaultThresholds, Build(testPage(), Options{}).Thresholds)
}

func TestWordIDs(t *testing.T) {
	assert.Equal(t, "word-3-12", WordID(3, 12))

	l, w, err := ParseWordID("word-3-12")
	require.NoError(t, err)
	assert.Equal(t, 3, l)
	assert.Equal(t, 12, w)

	for _, bad := range []string{"", "word-", "word-1", "word-a-1", "word-1-2-3", "line-1-2", "word--1-2"} {
		_, _, err := ParseWordID(bad)
		assert.ErrorIs(t, err, ErrUnknownWord, bad)
	}
}

func TestDetail(t *testing.T) {
	sc := Build(testPage(), Options{})

	d, err := sc.Detail("word-0-1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		`Word: "world"`,
		"Confidence: 60.0%",
		"Index: 1",
		"Bounds: 35,20 to 60,20",
	}, d.Lines())

	d, err = sc.Detail("word-1-0")
	require.NoError(t, err)
	assert.Equal(t, "Bounds: N/A", d.Lines()[3])

	_, err = sc.Detail("word-9-9")
	assert.ErrorIs(t, err, ErrUnknownWord)
}

func TestWriteSVG(t *testing.T) {
	sc := Build(testPage(), Options{})
	vis := Visibility{LayerBackground: true, LayerWordBoxes: true}

	out, err := sc.SVG(vis)
	require.NoError(t, err)

	assert.Contains(t, out, `width="400" height="300" viewBox="0 0 400 300"`)
	assert.Contains(t, out, `<g id="svg-background-layer" class="svg-layer">`)
	assert.Contains(t, out, `<g id="svg-line-boxes" class="svg-layer hidden">`)
	assert.Contains(t, out, `<g id="svg-word-boxes" class="svg-layer">`)
	assert.Contains(t, out, `<g id="svg-text-layer" class="svg-layer hidden">`)
	assert.Contains(t, out, `<image href="scan.png" x="0" y="0" width="400" height="300" preserveAspectRatio="none" opacity="1.0"/>`)
	assert.Contains(t, out, `<polygon id="word-0-0" points="10,20 30,20 30,40 10,40" class="word-box-high" data-word-id="word-0-0"/>`)
	assert.Contains(t, out, `<text x="12.0" y="35.0" class="word-text" style="font-size: 14.0px;" data-word-id="word-0-0"><title>Confidence: 95.0%</title>Hello</text>`)
	assert.Contains(t, out, `b&lt;a&gt;r`)

	// paint order
	bg := strings.Index(out, `id="svg-background-layer"`)
	lines := strings.Index(out, `id="svg-line-boxes"`)
	words := strings.Index(out, `id="svg-word-boxes"`)
	text := strings.Index(out, `id="svg-text-layer"`)
	assert.True(t, bg < lines && lines < words && words < text)
}

func TestWriteSVGWithoutBackground(t *testing.T) {
	page := testPage()
	page.BackgroundImage = ""

	out, err := Build(page, Options{}).SVG(AllVisible())
	require.NoError(t, err)
	assert.NotContains(t, out, "svg-background-layer\"")
	assert.NotContains(t, out, "svg-layer hidden\"")
}

func TestLayerNames(t *testing.T) {
	names := make([]string, len(Layers))
	for i, id := range Layers {
		names[i] = id.Name()
	}
	assert.Equal(t, []string{"Background", "Line Boxes", "Word Boxes", "Text"}, names)
}

func TestWriteLineDiagnostic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLineDiagnostic(&buf, testPage(), 1, confidence.DefaultThresholds))

	out := buf.String()
	assert.Contains(t, out, "=== DEBUG: SVG Elements for Line 2 ===")
	assert.Contains(t, out, "Line 2 has 2 words:")
	assert.NotContains(t, out, `Word 0: "Foo"`)
	assert.Contains(t, out, `Word 1: "b<a>r"`)
	assert.Contains(t, out, `<polygon id="word-1-1" points="10,50 40,50 40,60 10,60" class="word-box-low" />`)
	assert.Contains(t, out, "Confidence: 30.0% | BBox: 10,50,40,50")
	assert.True(t, strings.HasSuffix(out, "=== END DEBUG ===\n"))

	buf.Reset()
	require.NoError(t, WriteLineDiagnostic(&buf, testPage(), 5, confidence.DefaultThresholds))
	assert.Contains(t, buf.String(), "No data for line 6")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteLineDiagnosticReportsWriteErrors(t *testing.T) {
	for _, line := range []int{1, 5} {
		err := WriteLineDiagnostic(failingWriter{}, testPage(), line, confidence.DefaultThresholds)
		assert.ErrorContains(t, err, "disk full")
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, Build(testPage(), Options{})))

	var got Summary
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "scan.png", got.Filename)
	assert.Equal(t, 2, got.Lines)
	assert.Equal(t, 4, got.Words)
	assert.Equal(t, 3, got.WordBoxes)
	assert.Equal(t, "70.0", got.AvgPercent)
	assert.Equal(t, map[string]int{"high": 1, "medium": 1, "low": 1}, got.Tiers)
	require.Len(t, got.Legend, 3)
}

func TestPageStats(t *testing.T) {
	st := PageStats(testPage().Metadata)
	assert.Equal(t, "2 lines, 4 words", st.Counts)
	assert.Equal(t, "Avg confidence: 70.0%", st.Confidence)
	assert.Equal(t, "Page angle: 0.3°", st.Angle)
}
