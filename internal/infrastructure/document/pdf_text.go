// Package document turns uploaded documents into plain text
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/port"
)

// DefaultMaxPages bounds how many pages of a resume are read
const DefaultMaxPages = 5

// ErrNotPDF is returned for uploads without the PDF signature
var ErrNotPDF = errors.New("document is not a PDF")

var pdfMagic = []byte("%PDF-")

// PDFTextExtractor reads the text layer of PDF documents with MuPDF
type PDFTextExtractor struct {
	maxPages int
	logger   *zap.Logger
}

// NewPDFTextExtractor creates an extractor reading at most maxPages pages
func NewPDFTextExtractor(maxPages int, logger *zap.Logger) *PDFTextExtractor {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &PDFTextExtractor{maxPages: maxPages, logger: logger}
}

// ExtractText implements port.DocumentTextExtractor
func (e *PDFTextExtractor) ExtractText(data []byte) (string, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", ErrNotPDF
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	pages := pageCount
	if pages > e.maxPages {
		pages = e.maxPages
	}

	var sb strings.Builder
	for pageNum := 0; pageNum < pages; pageNum++ {
		text, err := doc.Text(pageNum)
		if err != nil {
			e.logger.Warn("Failed to extract page text",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}

	text := strings.TrimSpace(sb.String())
	e.logger.Debug("Extracted PDF text",
		zap.Int("total_pages", pageCount),
		zap.Int("pages_read", pages),
		zap.Int("chars", len(text)))
	return text, nil
}

// Verify interface compliance
var _ port.DocumentTextExtractor = (*PDFTextExtractor)(nil)
