// Package pdftext pulls ordered page text out of PDF bytes.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrMalformed = errors.New("pdftext: malformed pdf")

type Extractor interface {
	Extract(ctx context.Context, data []byte) ([]string, error)
}

type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns one string per page in page order. Pages without content
// yield an empty string so indexes stay aligned with page numbers.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (pages []string, err error) {
	// the parser panics on some truncated or hostile inputs
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// JoinPages concatenates page texts in order, newline separated.
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n")
}
