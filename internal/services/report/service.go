package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/interfaces"
	"github.com/ternarybob/bravix/internal/models"
	"github.com/ternarybob/bravix/internal/services/narrative"
	"gopkg.in/yaml.v3"
)

const (
	defaultCompany   = "Unknown_Company"
	maxCompanyLength = 30
	noNarrative      = "No summary available."
)

// Rendered is a PDF report ready for download.
type Rendered struct {
	Filename string
	Data     []byte
	Analysis *models.Analysis
}

// Service renders stored analyses as PDF reports.
type Service struct {
	store  interfaces.ReportStore
	pdf    interfaces.PDFService
	logger arbor.ILogger
	now    func() time.Time
}

// NewService creates a report service.
func NewService(store interfaces.ReportStore, pdf interfaces.PDFService, logger arbor.ILogger) *Service {
	return &Service{
		store:  store,
		pdf:    pdf,
		logger: logger,
		now:    time.Now,
	}
}

// RenderLatest renders the most recent analysis. interfaces.ErrNotFound is
// returned when nothing has been stored.
func (s *Service) RenderLatest(ctx context.Context) (*Rendered, error) {
	analysis, err := s.store.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	return s.Render(analysis)
}

// Render converts one analysis to PDF.
func (s *Service) Render(analysis *models.Analysis) (*Rendered, error) {
	now := s.now()

	markdown, err := BuildMarkdown(analysis, now)
	if err != nil {
		return nil, err
	}

	data, err := s.pdf.ConvertMarkdownToPDF(markdown, title(analysis))
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	filename := Filename(analysis.CompanyName, now)
	s.logger.Info().
		Str("analysis_id", analysis.ID).
		Str("filename", filename).
		Int("size", len(data)).
		Msg("Report rendered")

	return &Rendered{Filename: filename, Data: data, Analysis: analysis}, nil
}

func title(a *models.Analysis) string {
	if a.CompanyName == "" {
		return "Credit Evaluation"
	}
	return a.CompanyName + " Credit Evaluation"
}

type frontMatter struct {
	Title   string `yaml:"title"`
	Company string `yaml:"company"`
	Date    string `yaml:"date"`
}

// BuildMarkdown lays out an analysis: front matter, headline figures, the
// narrative and the indicator table.
func BuildMarkdown(a *models.Analysis, now time.Time) (string, error) {
	date := now.Format("2006-01-02")

	company := a.CompanyName
	if company == "" {
		company = "Unknown Company"
	}

	meta, err := yaml.Marshal(frontMatter{Title: title(a), Company: company, Date: date})
	if err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(meta)
	b.WriteString("---\n\n")

	fmt.Fprintf(&b, "# %s\n\n", company)
	fmt.Fprintf(&b, "**Date:** %s\n\n", date)
	if a.FiscalYear != "" {
		fmt.Fprintf(&b, "**Fiscal year:** %s\n\n", a.FiscalYear)
	}

	r := a.Report
	fmt.Fprintf(&b, "## Overall Health Score: %s\n\n", narrative.FormatValue(r.OverallHealthScore))
	fmt.Fprintf(&b, "**Company class:** %s\n\n", r.CompanyClass)
	fmt.Fprintf(&b, "**Risk category:** %s\n\n", r.RiskCategory)
	fmt.Fprintf(&b, "**Credit decision:** %s\n\n", r.CreditDecision)
	fmt.Fprintf(&b, "**Ratings:** Moody's %s, S&P %s\n\n", r.Ratings.Moodys, r.Ratings.SP)

	b.WriteString("## Credit Evaluation Summary\n\n")
	text := strings.TrimSpace(a.Narrative)
	if text == "" {
		text = noNarrative
	}
	b.WriteString(demoteHeadings(text))
	b.WriteString("\n\n")

	b.WriteString("## Financial Indicators\n\n")
	b.WriteString("| Indicator | Value | Status |\n")
	b.WriteString("|-----------|-------|--------|\n")
	for _, ind := range r.Indicators {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", ind.Name, narrative.FormatValue(ind.Value), ind.Status)
	}

	if len(r.CategoryScores) > 0 {
		b.WriteString("\n## Category Scores\n\n")
		b.WriteString("| Category | Weight | Score |\n")
		b.WriteString("|----------|--------|-------|\n")
		for _, cs := range r.CategoryScores {
			fmt.Fprintf(&b, "| %s | %.2f | %s |\n", cs.Category, cs.Weight, narrative.FormatValue(cs.Score))
		}
	}

	return b.String(), nil
}

// demoteHeadings pushes narrative headings below the report's own "##"
// sections.
func demoteHeadings(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			level := len(line) - len(strings.TrimLeft(line, "#"))
			if level < 3 {
				lines[i] = strings.Repeat("#", 3-level) + line
			}
		}
	}
	return strings.Join(lines, "\n")
}

// Filename builds "<Company>_Report_YYYY-MM-DD.pdf". Non-alphanumeric
// characters become underscores and the company part is capped at 30
// characters.
func Filename(company string, date time.Time) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(company) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	name := b.String()
	if len(name) > maxCompanyLength {
		name = name[:maxCompanyLength]
	}
	if strings.Trim(name, "_") == "" {
		name = defaultCompany
	}
	return fmt.Sprintf("%s_Report_%s.pdf", name, date.Format("2006-01-02"))
}
