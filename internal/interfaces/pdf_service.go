package interfaces

// PDFService renders markdown documents to PDF
type PDFService interface {
	// ConvertMarkdownToPDF converts markdown, optionally led by YAML front
	// matter, to a PDF byte slice. title is used when the front matter has none.
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)
}
