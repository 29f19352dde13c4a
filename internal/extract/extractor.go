// Package extract converts uploaded document files into plain text.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/unidoc/unioffice/document"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github.com/parchment-ai/parchment/internal/domain"
)

// Extractor converts one file format into plain text.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
	Supports(filename string) bool
}

// TextExtractor handles plain-text and markdown files.
type TextExtractor struct{}

func (e *TextExtractor) Supports(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".txt" || ext == ".md" || ext == ".markdown"
}

func (e *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, domain.ErrExtractionFailed)
	}
	return string(content), nil
}

// PDFExtractor handles PDF files.
type PDFExtractor struct{}

func (e *PDFExtractor) Supports(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".pdf"
}

func (e *PDFExtractor) Extract(r io.Reader, filename string) (string, error) {
	pdfBytes, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, domain.ErrExtractionFailed)
	}

	pdfReader, err := model.NewPdfReader(bytes.NewReader(pdfBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %v: %w", filename, err, domain.ErrExtractionFailed)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to read page count of %s: %v: %w", filename, err, domain.ErrExtractionFailed)
	}

	var b strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			continue
		}
		text, err := ex.ExtractText()
		if err != nil {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String(), nil
}

// WordExtractor handles .docx files.
type WordExtractor struct{}

func (e *WordExtractor) Supports(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".docx"
}

func (e *WordExtractor) Extract(r io.Reader, filename string) (string, error) {
	docBytes, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, domain.ErrExtractionFailed)
	}

	doc, err := document.Read(bytes.NewReader(docBytes), int64(len(docBytes)))
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %v: %w", filename, err, domain.ErrExtractionFailed)
	}
	defer doc.Close()

	var b strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			b.WriteString(run.Text())
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// Registry dispatches files to the extractor that supports them.
type Registry struct {
	extractors []Extractor
}

// NewRegistry creates a Registry covering all supported formats.
func NewRegistry() *Registry {
	return &Registry{
		extractors: []Extractor{
			&PDFExtractor{},
			&WordExtractor{},
			&TextExtractor{},
		},
	}
}

// Extract converts the file into plain text, choosing the extractor by
// filename extension.
func (reg *Registry) Extract(r io.Reader, filename string) (string, error) {
	for _, e := range reg.extractors {
		if e.Supports(filename) {
			return e.Extract(r, filename)
		}
	}
	return "", fmt.Errorf("%s: %w", filename, domain.ErrUnsupportedFormat)
}

// Supports reports whether any registered extractor handles the file.
func (reg *Registry) Supports(filename string) bool {
	for _, e := range reg.extractors {
		if e.Supports(filename) {
			return true
		}
	}
	return false
}

// SupportedExtensions lists the extensions the registry accepts.
func (reg *Registry) SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".txt", ".md", ".markdown"}
}
