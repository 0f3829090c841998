package extract

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

var plaintextExtensions = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
	".csv":      {},
	".tsv":      {},
	".log":      {},
	".json":     {},
	".yaml":     {},
	".yml":      {},
	".toml":     {},
	".ini":      {},
	".rst":      {},
	".html":     {},
	".htm":      {},
	".xml":      {},
}

type plaintextExtractor struct{}

func (e *plaintextExtractor) Supports(ext string) bool {
	_, ok := plaintextExtensions[ext]
	return ok
}

func (e *plaintextExtractor) Extract(path string, maxChars int) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open text file: %w", err)
	}
	defer file.Close()

	// Read a little past the budget so whitespace collapsing still fills it.
	limit := int64(maxChars) * 4
	if maxChars <= 0 {
		limit = 1 << 20
	}
	raw, err := io.ReadAll(io.LimitReader(file, limit))
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	if !looksTextual(raw) {
		return "", fmt.Errorf("%w: binary content in %s", ErrUnsupportedFormat, path)
	}

	text := collapse(strings.ToValidUTF8(string(raw), ""))
	return truncate(text, maxChars), nil
}

// looksTextual rejects content with NUL bytes or a high share of invalid
// UTF-8, which is a reliable signal of a mislabeled binary.
func looksTextual(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	invalid := 0
	for i := 0; i < len(sample); {
		r, size := utf8.DecodeRune(sample[i:])
		if r == 0 {
			return false
		}
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		i += size
	}
	return invalid*10 < len(sample)
}
