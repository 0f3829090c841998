package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

type pdfExtractor struct{}

func (e *pdfExtractor) Supports(ext string) bool {
	return ext == ".pdf"
}

func (e *pdfExtractor) Extract(path string, maxChars int) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var builder strings.Builder
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	if _, err := io.Copy(&builder, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text := collapse(builder.String())
	return truncate(text, maxChars), nil
}
