// -----------------------------------------------------------------------
// PDF Extractor Interface - Extract text content from PDF documents
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
)

// PDFPageContent represents extracted content from a single PDF page
type PDFPageContent struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// PDFExtractor extracts text from PDF documents held in memory.
type PDFExtractor interface {
	// ExtractPagesFromBytes returns the text of every page in page order.
	ExtractPagesFromBytes(ctx context.Context, data []byte) ([]PDFPageContent, error)

	// ExtractTextFromBytes returns the text of all pages joined with page markers.
	ExtractTextFromBytes(ctx context.Context, data []byte) (string, error)
}
