package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func TestExtract_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.Extract([]byte("Hello world\nLine 2"), FormatText)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_plainNormalizesLineEndings(t *testing.T) {
	e := NewExtractor()
	got, err := e.Extract([]byte("a\r\nb\rc\n"), FormatText)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "a\nb\nc\n" {
		t.Errorf("got %q", got)
	}
	// Idempotent: extracting the extracted text yields the same text.
	again, err := e.Extract([]byte(got), FormatText)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if again != got {
		t.Errorf("second pass changed text: %q vs %q", again, got)
	}
}

func TestExtract_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.Extract([]byte("hello\x80world"), FormatText)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "hello�world" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_unsupportedFormat(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract([]byte("data"), Format("xlsx"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("want ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtract_corruptPDF(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract([]byte("this is not a pdf"), FormatPDF)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("want ErrExtractionFailed, got %v", err)
	}
}

// buildDocx creates a minimal .docx zip with the given document.xml body.
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtract_docxParagraphs(t *testing.T) {
	doc := `<w:document><w:body>` +
		`<w:p w:rsidR="0"><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>` +
		`<w:p><w:r><w:drawing/></w:r><w:r><w:t>Second</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	e := NewExtractor()
	got, err := e.Extract(buildDocx(t, doc), FormatDOCX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "First paragraph\nSecond" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxTableCellsAsLines(t *testing.T) {
	doc := `<w:document><w:body><w:tbl><w:tr>` +
		`<w:tc><w:p><w:r><w:t>Cell A</w:t></w:r></w:p></w:tc>` +
		`<w:tc><w:p><w:r><w:t>Cell B</w:t></w:r></w:p></w:tc>` +
		`</w:tr></w:tbl></w:body></w:document>`
	e := NewExtractor()
	got, err := e.Extract(buildDocx(t, doc), FormatDOCX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Cell A\nCell B" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxUnescapesEntities(t *testing.T) {
	doc := `<w:document><w:body><w:p><w:r><w:t>A &amp; B &lt;ok&gt;</w:t></w:r></w:p></w:body></w:document>`
	e := NewExtractor()
	got, err := e.Extract(buildDocx(t, doc), FormatDOCX)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "A & B <ok>" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxNotAZip(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract([]byte("plainly not a zip"), FormatDOCX)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("want ErrExtractionFailed, got %v", err)
	}
}

func TestExtract_docxMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("word/other.xml")
	_, _ = w.Write([]byte("<w:document/>"))
	_ = zw.Close()

	e := NewExtractor()
	_, err := e.Extract(buf.Bytes(), FormatDOCX)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("want ErrExtractionFailed, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		contentType string
		filename    string
		want        Format
	}{
		{"application/pdf", "", FormatPDF},
		{"application/pdf; charset=binary", "", FormatPDF},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "", FormatDOCX},
		{"application/msword", "old.doc", FormatDOCX},
		{"text/plain", "", FormatText},
		{"", "resume.pdf", FormatPDF},
		{"", "Resume.DOCX", FormatDOCX},
		{"", "notes.txt", FormatText},
		{"application/octet-stream", "report.docx", FormatDOCX},
		{"image/png", "photo.png", FormatUnknown},
		{"", "", FormatUnknown},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.contentType, tt.filename); got != tt.want {
			t.Errorf("ParseFormat(%q, %q) = %q, want %q", tt.contentType, tt.filename, got, tt.want)
		}
	}
}
