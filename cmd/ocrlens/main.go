// ocrlens inspects OCR results: it renders the confidence overlay of a page
// as SVG, markup or a layered PDF, converts between OCR formats and serves an
// interactive viewer.
//
// Usage:
//
//	ocrlens <command> [flags] <input>
//
// Input is OCR page markup (win11OneOcrPage), hOCR or a Document AI JSON
// response; the format follows the file extension unless --input-format is
// given.
//
// Examples:
//
//	ocrlens render scan.xhtml -o scan.svg
//	ocrlens text scan.hocr --line 3
//	ocrlens pdf response.json -o scan.pdf
//	ocrlens pdf scan.hocr --pdf original.pdf --page 2 -o searchable.pdf
//	ocrlens serve scan.xhtml --image scan.png
package main

import (
	"os"

	"github.com/gardar/ocrlens/cmd/ocrlens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
