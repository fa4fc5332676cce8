package loader

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor turns a file on disk into plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

// PDFExtractor concatenates the plain text of every page.
type PDFExtractor struct{}

func (PDFExtractor) Extract(path string) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}

// PlainExtractor reads the file as UTF-8 text.
type PlainExtractor struct{}

func (PlainExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), " "), nil
}

// DefaultExtractors maps lowercase file extensions to extractors.
func DefaultExtractors() map[string]Extractor {
	return map[string]Extractor{
		".pdf": PDFExtractor{},
		".txt": PlainExtractor{},
		".md":  PlainExtractor{},
	}
}
