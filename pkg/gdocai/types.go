package gdocai

// Options configures the conversion.
type Options struct {
	// PageIndex selects the page, zero-based.
	PageIndex int
	// Filename names the page image. Empty means the base name of the
	// document URI, if any.
	Filename string
}
