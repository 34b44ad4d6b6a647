// Package extract provides text extraction from uploaded document payloads.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when the declared format is outside the
// supported set. The caller-declared type is trusted; there is no sniffing.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrExtractionFailed is returned when a payload does not parse as its
// declared format (corrupt file, wrong declared type).
var ErrExtractionFailed = errors.New("document extraction failed")

// Format is the declared type tag of an uploaded document.
type Format string

// Supported formats.
const (
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatText    Format = "text"
	FormatUnknown Format = ""
)

// ParseFormat maps a declared content type and/or filename to a Format.
// Content type wins when recognized; the filename extension is the fallback.
// Returns FormatUnknown when neither identifies a supported format.
func ParseFormat(contentType, filename string) Format {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "application/pdf":
		return FormatPDF
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword":
		return FormatDOCX
	case "text/plain", "text/markdown":
		return FormatText
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx", ".doc":
		return FormatDOCX
	case ".txt", ".md", ".text":
		return FormatText
	}
	return FormatUnknown
}

// Extractor extracts plain text from document payloads. It holds no state and
// is safe for concurrent use.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract converts content into plain text according to its declared format.
// It is a pure function of its inputs: no side effects, no stored state.
// Returns ErrUnsupportedFormat for formats outside {pdf, docx, text} and
// ErrExtractionFailed when content does not parse as the declared format.
func (e *Extractor) Extract(content []byte, format Format) (string, error) {
	switch format {
	case FormatPDF:
		return extractPDF(content)
	case FormatDOCX:
		return extractDOCX(content)
	case FormatText:
		return extractPlain(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}
