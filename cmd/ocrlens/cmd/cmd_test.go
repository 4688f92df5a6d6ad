package cmd

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardar/ocrlens/internal/config"
)

const markup = `<html><body>
<section class="win11OneOcrPage" srcName="scan.png" imgWidth="300" imgHeight="120"
  angle="0" averageOcrConfidence="0.7" ocrWordsCount="3" ocrSegmentsCount="2">
  <segment>
    <w p="0.95" i="0" b="10,20,60,20,60,40,10,40">Hello</w>
    <w p="0.62" i="1" b="70,20,140,20,140,40,70,40">world</w>
  </segment>
  <segment>
    <w p="0.3" i="0" b="10,60,50,60,50,80,10,80">again</w>
  </segment>
</section>
</body></html>`

const docAI = `{"text": "One two", "pages": [{
  "dimension": {"width": 100, "height": 50},
  "lines": [{"layout": {"textAnchor": {"textSegments": [{"endIndex": "7"}]}}}],
  "tokens": [
    {"layout": {"textAnchor": {"textSegments": [{"endIndex": "4"}]}, "confidence": 0.9,
      "boundingPoly": {"vertices": [{"x": 1, "y": 1}, {"x": 20, "y": 1}, {"x": 20, "y": 10}, {"x": 1, "y": 10}]}}},
    {"layout": {"textAnchor": {"textSegments": [{"startIndex": "4", "endIndex": "7"}]}, "confidence": 0.4}}
  ]
}]}`

// workspace isolates the command from any configuration on the host and
// writes the sample inputs.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil))) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.xhtml"), []byte(markup), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "response.json"), []byte(docAI), 0o600))
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writePNG(t *testing.T, path string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 3, 3))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return buf.Bytes()
}

func TestRootCommand(t *testing.T) {
	workspace(t)
	root := NewRootCommand()
	assert.Equal(t, "ocrlens", root.Use)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"render", "text", "hocr", "image", "pdf", "debug-line", "summary", "serve", "config"} {
		assert.Contains(t, names, want)
	}

	out, _, err := run(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "confidence overlay")
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]string{
		"a.hocr":       formatHOCR,
		"A.HOCR":       formatHOCR,
		"resp.json":    formatDocAI,
		"scan.xhtml":   formatXHTML,
		"scan.html":    formatXHTML,
		"no-extension": formatXHTML,
	}
	for path, want := range tests {
		assert.Equal(t, want, detectFormat(path), path)
	}
}

func TestText(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "text", "scan.xhtml")
	require.NoError(t, err)
	assert.Equal(t, "Hello world\nagain\n", out)

	out, _, err = run(t, "text", "scan.xhtml", "--line", "1")
	require.NoError(t, err)
	assert.Equal(t, "Hello world\n", out)

	_, _, err = run(t, "text", "scan.xhtml", "--line", "3")
	assert.ErrorContains(t, err, "line 3 out of range")

	_, _, err = run(t, "text", "missing.xhtml")
	assert.ErrorContains(t, err, "failed to read input")

	_, _, err = run(t, "text", "scan.xhtml", "--input-format", "pdf")
	assert.ErrorContains(t, err, "unknown input format")
}

func TestTextDocumentAI(t *testing.T) {
	workspace(t)
	out, _, err := run(t, "text", "response.json")
	require.NoError(t, err)
	assert.Equal(t, "One two\n", out)

	_, _, err = run(t, "text", "response.json", "--page-index", "3")
	assert.ErrorContains(t, err, "out of range")
}

func TestTextXHTMLPageIndex(t *testing.T) {
	dir := workspace(t)
	pages := `<html><body>
<section class="win11OneOcrPage" pageNum="2"><segment><w>second</w></segment></section>
<section class="win11OneOcrPage" pageNum="1"><segment><w>first</w></segment></section>
<section class="win11OneOcrPage"><segment><w>third</w></segment></section>
</body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "book.xhtml"), []byte(pages), 0o600))

	tests := []struct {
		index string
		want  string
	}{
		{"0", "first\n"},
		{"1", "second\n"},
		{"2", "third\n"},
	}
	for _, tt := range tests {
		out, _, err := run(t, "text", "book.xhtml", "--page-index", tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.want, out, "page index %s", tt.index)
	}

	_, _, err := run(t, "text", "book.xhtml", "--page-index", "5")
	assert.ErrorContains(t, err, "OCR page not found")
}

func TestImage(t *testing.T) {
	dir := workspace(t)
	content := []byte("\x89PNG page")
	withImage := strings.Replace(docAI, `"dimension"`,
		`"image": {"content": "`+base64.StdEncoding.EncodeToString(content)+`", "mimeType": "image/png"}, "dimension"`, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scanned.json"), []byte(withImage), 0o600))

	_, _, err := run(t, "image", "scanned.json")
	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(dir, "scanned.png"))
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, _, err = run(t, "image", "response.json")
	assert.ErrorContains(t, err, "no image found")

	assert.Equal(t, ".jpg", imageExt("image/jpeg"))
	assert.Equal(t, ".img", imageExt("application/x-unknown"))
}

func TestRenderSVG(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "render", "scan.xhtml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, `width="300" height="120"`)
	assert.Contains(t, out, `href="scan.png"`)
	assert.Contains(t, out, `class="word-box-high"`)
	assert.Contains(t, out, `class="word-box-low"`)

	out, _, err = run(t, "render", "scan.xhtml", "--background-href", "pages/1.png")
	require.NoError(t, err)
	assert.Contains(t, out, `href="pages/1.png"`)

	_, _, err = run(t, "render", "scan.xhtml", "--format", "gif")
	assert.ErrorContains(t, err, "unknown render format")
}

func TestRenderEmbedsImage(t *testing.T) {
	dir := workspace(t)
	writePNG(t, filepath.Join(dir, "scan.png"))

	out, _, err := run(t, "render", "scan.xhtml", "--embed-image")
	require.NoError(t, err)
	assert.Contains(t, out, `href="data:image/png;base64,`)
}

func TestRenderXHTML(t *testing.T) {
	dir := workspace(t)
	target := filepath.Join(dir, "decorated.html")

	_, _, err := run(t, "render", "scan.xhtml", "--format", "xhtml", "-o", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `data-line-number="2"`)
	assert.Contains(t, string(data), "confidence-high")
}

func TestHOCRRoundTrip(t *testing.T) {
	dir := workspace(t)
	target := filepath.Join(dir, "scan.hocr")

	_, _, err := run(t, "hocr", "scan.xhtml", "-o", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `class="ocrx_word"`)

	out, _, err := run(t, "text", "scan.hocr")
	require.NoError(t, err)
	assert.Equal(t, "Hello world\nagain\n", out)

	// hOCR input still gets a structured view
	out, _, err = run(t, "render", "scan.hocr", "--format", "xhtml")
	require.NoError(t, err)
	assert.Contains(t, out, `data-line-number="1"`)
}

func TestPDF(t *testing.T) {
	dir := workspace(t)
	first := filepath.Join(dir, "scan.pdf")

	_, _, err := run(t, "pdf", "scan.xhtml")
	assert.ErrorContains(t, err, `"output" not set`)

	_, _, err = run(t, "pdf", "scan.xhtml", "-o", first)
	require.NoError(t, err)
	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, _, err = run(t, "pdf", "scan.xhtml", "-o", first)
	assert.ErrorContains(t, err, "already exists")

	second := filepath.Join(dir, "overlay.pdf")
	_, _, err = run(t, "pdf", "scan.xhtml", "--pdf", first, "-o", second)
	assert.ErrorContains(t, err, "--force")

	_, _, err = run(t, "pdf", "scan.xhtml", "--pdf", first, "--force", "-o", second)
	require.NoError(t, err)
	assert.FileExists(t, second)
}

func TestDebugLine(t *testing.T) {
	workspace(t)

	out, _, err := run(t, "debug-line", "scan.xhtml", "--line", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "=== DEBUG: SVG Elements for Line 1 ===")
	assert.Contains(t, out, `Word 1: "world"`)

	out, _, err = run(t, "debug-line", "scan.xhtml")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSummary(t *testing.T) {
	workspace(t)
	out, _, err := run(t, "summary", "scan.xhtml")
	require.NoError(t, err)
	assert.Contains(t, out, "filename: scan.png")
	assert.Contains(t, out, "word_boxes: 3")
}

func TestConfigShow(t *testing.T) {
	dir := workspace(t)

	out, _, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: info")
	assert.Contains(t, out, "port: 8080")
	assert.Contains(t, out, "show_word_boxes: true")

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o600))
	out, _, err = run(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# config file: "+path)
	assert.Contains(t, out, "port: 9999")

	out, _, err = run(t, "config", "show", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: debug")

	_, _, err = run(t, "config", "show", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestServeRejectsBadPort(t *testing.T) {
	workspace(t)
	_, _, err := run(t, "serve", "scan.xhtml", "--port", "0")
	assert.ErrorContains(t, err, "invalid port number")
}

func testApp(t *testing.T) *app {
	t.Helper()
	cfg := config.DefaultConfig()
	return &app{
		format: formatAuto,
		cfg:    &cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestBackgroundImage(t *testing.T) {
	dir := workspace(t)
	a := testApp(t)

	in, err := a.loadInput(filepath.Join(dir, "scan.xhtml"))
	require.NoError(t, err)

	img, err := a.backgroundImage("", in)
	require.NoError(t, err)
	assert.Nil(t, img, "missing image is not an error")

	want := writePNG(t, filepath.Join(dir, "scan.png"))
	img, err = a.backgroundImage("", in)
	require.NoError(t, err)
	assert.Equal(t, want, img)

	other := t.TempDir()
	a.cfg.Render.ImageDir = other
	img, err = a.backgroundImage("", in)
	require.NoError(t, err)
	assert.Nil(t, img)

	_, err = a.backgroundImage(filepath.Join(other, "nope.png"), in)
	assert.ErrorContains(t, err, "failed to read image")
}

func TestNewViewer(t *testing.T) {
	dir := workspace(t)
	writePNG(t, filepath.Join(dir, "scan.png"))
	a := testApp(t)

	viewer, err := a.newViewer(filepath.Join(dir, "scan.xhtml"), serveOptions{corsOrigin: "*"})
	require.NoError(t, err)
	assert.Equal(t, a.cfg.Display, viewer.State())

	viewer, err = a.newViewer(filepath.Join(dir, "response.json"), serveOptions{})
	require.NoError(t, err)
	assert.NotNil(t, viewer)
}
