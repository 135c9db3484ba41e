package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/interfaces"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// HeaderText is printed at the top of every page.
const HeaderText = "Bravix Credit Evaluation Report"

const (
	fontFamily = "Arial"
	baseSize   = 10.0
	lineHeight = 5.0
)

// FrontMatter is the optional YAML block leading a markdown document.
type FrontMatter struct {
	Title   string `yaml:"title"`
	Company string `yaml:"company"`
	Date    string `yaml:"date"`
	Author  string `yaml:"author"`
}

// Service implements interfaces.PDFService
type Service struct {
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.PDFService = (*Service)(nil)

// NewService creates a new PDF service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// ConvertMarkdownToPDF converts markdown content to a PDF byte slice.
// Front matter fields become document properties and are not rendered.
func (s *Service) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	meta, body, err := SplitFrontMatter(markdown)
	if err != nil {
		return nil, err
	}
	if meta.Title == "" {
		meta.Title = title
	}

	s.logger.Debug().
		Int("markdown_len", len(body)).
		Str("title", meta.Title).
		Msg("Converting markdown to PDF")

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(meta.Title, true)
	pdf.SetSubject(meta.Company, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator("Bravix", true)
	pdf.AliasNbPages("")

	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetHeaderFunc(func() {
		pdf.SetFont(fontFamily, "B", 9)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, 6, tr(HeaderText), "B", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(4)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", baseSize)

	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
	source := []byte(body)
	doc := md.Parser().Parse(text.NewReader(source))

	r := &pdfRenderer{pdf: pdf, source: source, tr: tr, size: baseSize}
	if err := ast.Walk(doc, r.walk); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	if err := pdf.Error(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate PDF")
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate PDF output")
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Int("pages", pdf.PageCount()).Msg("PDF generated")
	return buf.Bytes(), nil
}

// SplitFrontMatter separates a leading "---" delimited YAML block from the
// markdown body. Documents without front matter are returned unchanged.
func SplitFrontMatter(markdown string) (FrontMatter, string, error) {
	var meta FrontMatter

	normalized := strings.ReplaceAll(markdown, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return meta, markdown, nil
	}

	end := strings.Index(normalized[4:], "\n---")
	if end == -1 {
		return meta, markdown, nil
	}

	if err := yaml.Unmarshal([]byte(normalized[4:4+end]), &meta); err != nil {
		return meta, "", fmt.Errorf("failed to parse front matter: %w", err)
	}

	rest := normalized[4+end+4:]
	return meta, strings.TrimLeft(rest, "\n"), nil
}

type pdfRenderer struct {
	pdf       *fpdf.Fpdf
	source    []byte
	tr        func(string) string
	size      float64
	bold      bool
	italic    bool
	listLevel int
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(fontFamily, style, r.size)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		r.heading(node, entering)
	case *ast.Paragraph:
		if !entering {
			r.pdf.Ln(lineHeight + 2)
		}
	case *ast.Text:
		if entering {
			r.pdf.Write(lineHeight, r.tr(string(node.Segment.Value(r.source))))
			if node.SoftLineBreak() {
				r.pdf.Write(lineHeight, " ")
			}
			if node.HardLineBreak() {
				r.pdf.Ln(lineHeight)
			}
		}
	case *ast.String:
		if entering {
			r.pdf.Write(lineHeight, r.tr(string(node.Value)))
		}
	case *ast.Emphasis:
		if node.Level == 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.CodeSpan:
		if entering {
			r.pdf.SetFont("Courier", "", r.size)
			r.pdf.Write(lineHeight, r.tr(string(node.Text(r.source))))
			r.updateFont()
		}
		return ast.WalkSkipChildren, nil
	case *ast.FencedCodeBlock:
		if entering {
			r.codeBlock(node.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.CodeBlock:
		if entering {
			r.codeBlock(node.Lines())
		}
		return ast.WalkSkipChildren, nil
	case *ast.List:
		r.list(entering)
	case *ast.ListItem:
		if entering {
			r.pdf.Ln(1)
			left, _, _, _ := r.pdf.GetMargins()
			r.pdf.SetX(left + float64(r.listLevel)*5)
			r.pdf.Write(lineHeight, "- ")
		}
	case *ast.TextBlock:
		if !entering {
			r.pdf.Ln(lineHeight)
		}
	case *ast.ThematicBreak:
		if entering {
			left, _, right, _ := r.pdf.GetMargins()
			width, _ := r.pdf.GetPageSize()
			r.pdf.Ln(2)
			r.pdf.Line(left, r.pdf.GetY(), width-right, r.pdf.GetY())
			r.pdf.Ln(3)
		}
	case *extast.Table:
		if entering {
			r.table(node)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (r *pdfRenderer) heading(n *ast.Heading, entering bool) {
	if !entering {
		r.pdf.Ln(lineHeight + 3)
		r.updateFont()
		return
	}

	size := 11.0
	switch n.Level {
	case 1:
		size = 16
	case 2:
		size = 13
	case 3:
		size = 11.5
	}
	r.pdf.Ln(3)
	r.pdf.SetFont(fontFamily, "B", size)
}

func (r *pdfRenderer) list(entering bool) {
	if entering {
		r.listLevel++
		return
	}
	r.listLevel--
	if r.listLevel == 0 {
		r.pdf.Ln(2)
	}
}

func (r *pdfRenderer) codeBlock(lines *text.Segments) {
	r.pdf.Ln(2)
	r.pdf.SetFont("Courier", "", 9)
	r.pdf.SetFillColor(245, 245, 245)
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		r.pdf.MultiCell(0, 4.5, r.tr(strings.TrimRight(string(line.Value(r.source)), "\n")), "", "L", true)
	}
	r.pdf.SetFillColor(255, 255, 255)
	r.updateFont()
	r.pdf.Ln(2)
}

func (r *pdfRenderer) table(n *extast.Table) {
	var rows [][]string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		var row []string
		for cell := child.FirstChild(); cell != nil; cell = cell.NextSibling() {
			row = append(row, strings.TrimSpace(string(cell.Text(r.source))))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}

	const (
		fontSize = 8.5
		rowH     = 6.0
	)
	left, _, right, _ := r.pdf.GetMargins()
	pageW, _ := r.pdf.GetPageSize()
	widths := r.columnWidths(rows, pageW-left-right, fontSize)

	r.pdf.Ln(2)
	for i, row := range rows {
		header := i == 0
		if header {
			r.pdf.SetFont(fontFamily, "B", fontSize)
			r.pdf.SetFillColor(225, 230, 238)
		} else {
			r.pdf.SetFont(fontFamily, "", fontSize)
		}
		for j := range widths {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			if !header {
				r.statusColor(cell)
			}
			r.pdf.CellFormat(widths[j], rowH, r.tr(r.fit(cell, widths[j]-2)), "1", 0, "L", header, 0, "")
			r.pdf.SetTextColor(0, 0, 0)
		}
		r.pdf.Ln(rowH)
	}
	r.pdf.Ln(3)
	r.updateFont()
}

// statusColor highlights indicator statuses in table cells.
func (r *pdfRenderer) statusColor(cell string) {
	switch strings.ToLower(cell) {
	case "good":
		r.pdf.SetTextColor(20, 120, 60)
	case "caution":
		r.pdf.SetTextColor(190, 120, 0)
	case "poor":
		r.pdf.SetTextColor(180, 30, 30)
	case "insufficient_data", "unknown":
		r.pdf.SetTextColor(120, 120, 120)
	}
}

// columnWidths sizes columns to their widest cell and scales the set to
// the printable width.
func (r *pdfRenderer) columnWidths(rows [][]string, total, fontSize float64) []float64 {
	cols := len(rows[0])
	widths := make([]float64, cols)
	for i, row := range rows {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.pdf.SetFont(fontFamily, style, fontSize)
		for j := 0; j < cols && j < len(row); j++ {
			if w := r.pdf.GetStringWidth(r.tr(row[j])) + 4; w > widths[j] {
				widths[j] = w
			}
		}
	}

	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	if sum == 0 {
		for j := range widths {
			widths[j] = total / float64(cols)
		}
		return widths
	}
	scale := total / sum
	for j := range widths {
		widths[j] *= scale
	}
	return widths
}

// fit truncates s with an ellipsis so it fits width at the current font.
func (r *pdfRenderer) fit(s string, width float64) string {
	if r.pdf.GetStringWidth(r.tr(s)) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && r.pdf.GetStringWidth(r.tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
