// Package hocr converts between hOCR, the HTML-based standard format for OCR
// results, and the ocrpage model.
//
// Import reads the first ocr_page of a document:
//
// - Lines are the ocr_line (and ocr_header, ocr_caption, ocr_textfloat)
// elements in document order, whatever areas or paragraphs enclose them
// - Words are ocrx_word elements; runs of words outside any line form a line
// - A word's bbox becomes a rectangular polygon and x_wconf (0-100) its
// confidence
// - The page bbox gives the image size and the image property its filename
//
// Export renders a page through an embedded template. Word polygons are
// written as their axis-aligned bounds, since hOCR boxes are rectangles.
package hocr

// hOCR class names.
const (
	ClassPage = "ocr_page"
	ClassArea = "ocr_carea"
	ClassPar  = "ocr_par"
	ClassLine = "ocr_line"
	ClassWord = "ocrx_word"
)

// lineClasses are the classes tesseract uses for line-level elements.
var lineClasses = []string{ClassLine, "ocr_header", "ocr_caption", "ocr_textfloat"}
