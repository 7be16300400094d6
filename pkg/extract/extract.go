// Package extract converts uploaded document files into plain text ready
// for chunking.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/complydesk/arbiter/pkg/chunk"
)

// ErrExtraction is returned when text cannot be extracted from a file.
var ErrExtraction = errors.New("text extraction failed")

// ErrUnsupported is returned for file types no extractor handles.
var ErrUnsupported = errors.New("unsupported file type")

// Extractor pulls plain text and structural hints out of a document file.
type Extractor interface {
	// Extract returns the plain text of the file at path. Hints carry
	// structural metadata when the format provides it.
	Extract(path string) (string, *chunk.Hints, error)
}

// textExtensions lists the plain-text formats handled directly.
var textExtensions = map[string]struct{}{
	".txt":      {},
	".md":       {},
	".markdown": {},
	".text":     {},
}

// PlainText extracts text and markdown files by reading them verbatim.
type PlainText struct{}

// NewPlainText returns a plain-text extractor.
func NewPlainText() *PlainText { return &PlainText{} }

// Extract reads the file and derives a title hint from the first
// non-empty line.
func (p *PlainText) Extract(path string) (string, *chunk.Hints, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := textExtensions[ext]; !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	text := string(data)
	hints := &chunk.Hints{Title: firstLine(text)}
	return text, hints, nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}

var _ Extractor = (*PlainText)(nil)
