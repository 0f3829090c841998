package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"curator/internal/services"
)

// ErrUnsupportedFormat indicates no extractor handles the file's format.
var ErrUnsupportedFormat = fmt.Errorf("%w: no extractor for file format", services.ErrUnsupported)

// Extractor pulls text content out of a file for classification.
type Extractor interface {
	// Extract returns up to maxChars of text from the file.
	Extract(path string, maxChars int) (string, error)
	// Supports reports whether the extractor handles the extension.
	Supports(ext string) bool
}

var registry = []Extractor{
	&plaintextExtractor{},
	&pdfExtractor{},
	&xlsxExtractor{},
}

// ForFile returns the extractor handling the file's extension, or
// ErrUnsupportedFormat.
func ForFile(path string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, extractor := range registry {
		if extractor.Supports(ext) {
			return extractor, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// Text extracts up to maxChars of content from the file, dispatching on
// extension. Unsupported formats return ErrUnsupportedFormat; classification
// falls back to name-based signals in that case.
func Text(path string, maxChars int) (string, error) {
	extractor, err := ForFile(path)
	if err != nil {
		return "", err
	}
	return extractor.Extract(path, maxChars)
}

// truncate cuts text at maxChars without splitting a rune.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := text[:maxChars]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

// collapse trims and squeezes runs of whitespace so extracted text spends
// its character budget on content.
func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
