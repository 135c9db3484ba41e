package narrative

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/bravix/internal/common"
	"github.com/ternarybob/bravix/internal/models"
	"github.com/ternarybob/bravix/internal/services/llm"
)

var (
	// ErrNarrativeDisabled is returned when narratives are switched off or
	// no model is available.
	ErrNarrativeDisabled = errors.New("narrative generation disabled")

	// ErrAllModelsFailed is returned when every model of the chain failed.
	ErrAllModelsFailed = errors.New("all narrative models failed")
)

// SystemInstruction frames every narrative request.
const SystemInstruction = "You are an expert financial risk analyst writing institutional credit evaluations. " +
	"Be professional, objective and concise. Use only the figures provided; never invent numbers."

// Sections are requested in this order.
var Sections = []string{
	"Executive Summary",
	"Quantitative Highlights",
	"Key Strengths & Weaknesses",
	"Scenario Stress Test",
	"Strategic Outlook",
	"Final Credit Evaluation Summary",
}

// Input is the material a narrative is written from.
type Input struct {
	Company    string
	FiscalYear string
	Summary    string
	RawText    string
	Report     models.ScoringReport
}

// Service writes the credit narrative through an LLM, trying each model of
// the chain until one succeeds.
type Service struct {
	generator llm.Generator
	models    []string
	config    *common.NarrativeConfig
	logger    arbor.ILogger
}

// NewService creates a narrative service. A nil generator or an empty model
// chain leaves the service disabled.
func NewService(generator llm.Generator, modelChain []string, config *common.NarrativeConfig, logger arbor.ILogger) *Service {
	return &Service{
		generator: generator,
		models:    modelChain,
		config:    config,
		logger:    logger,
	}
}

// Enabled reports whether Generate can reach a model.
func (s *Service) Enabled() bool {
	return s.config.Enabled && s.generator != nil && len(s.models) > 0
}

// Models returns the fallback chain.
func (s *Service) Models() []string {
	return append([]string(nil), s.models...)
}

// Generate returns the narrative text and the model that wrote it.
func (s *Service) Generate(ctx context.Context, in Input) (string, string, error) {
	if !s.Enabled() {
		return "", "", ErrNarrativeDisabled
	}

	prompt := BuildPrompt(in, s.config.ExcerptLimit)
	timeout := common.ParseDuration(s.config.Timeout, 90*time.Second)

	var errs []error
	for _, model := range s.models {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		start := time.Now()
		text, err := s.try(ctx, model, prompt, timeout)
		if err != nil {
			s.logger.Warn().
				Str("model", model).
				Dur("elapsed", time.Since(start)).
				Err(err).
				Msg("Narrative model failed, trying next")
			errs = append(errs, fmt.Errorf("%s: %w", model, err))
			continue
		}

		s.logger.Info().
			Str("model", model).
			Str("company", in.Company).
			Int("length", len(text)).
			Dur("elapsed", time.Since(start)).
			Msg("Narrative generated")
		return text, model, nil
	}

	return "", "", fmt.Errorf("%w: %w", ErrAllModelsFailed, errors.Join(errs...))
}

func (s *Service) try(ctx context.Context, model, prompt string, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := s.generator.GenerateContent(callCtx, &llm.ContentRequest{
		Model:             model,
		SystemInstruction: SystemInstruction,
		Prompt:            prompt,
		Temperature:       s.config.Temperature,
		MaxTokens:         s.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("empty narrative")
	}
	return text, nil
}

// BuildPrompt renders the analysis request. RawText is cut to excerptLimit
// characters; a non-positive limit omits the excerpt.
func BuildPrompt(in Input, excerptLimit int) string {
	var b strings.Builder

	company := in.Company
	if company == "" {
		company = "Unknown company"
	}

	b.WriteString("Write a detailed credit evaluation report.\n\n")
	fmt.Fprintf(&b, "Company: %s\n", company)
	if in.FiscalYear != "" {
		fmt.Fprintf(&b, "Fiscal year: %s\n", in.FiscalYear)
	}
	if s := strings.TrimSpace(in.Summary); s != "" {
		fmt.Fprintf(&b, "Company summary: %s\n", s)
	}

	b.WriteString("\n## Indicators\n\n")
	b.WriteString("| Indicator | Category | Value | Status |\n")
	b.WriteString("|-----------|----------|-------|--------|\n")
	for _, ind := range in.Report.Indicators {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", ind.Name, ind.Category, FormatValue(ind.Value), ind.Status)
	}

	b.WriteString("\n## Scores\n\n")
	fmt.Fprintf(&b, "- Overall health score: %s / 100\n", FormatValue(in.Report.OverallHealthScore))
	fmt.Fprintf(&b, "- Company class: %s\n", in.Report.CompanyClass)
	fmt.Fprintf(&b, "- Risk category: %s\n", in.Report.RiskCategory)
	fmt.Fprintf(&b, "- Credit decision: %s\n", in.Report.CreditDecision)
	fmt.Fprintf(&b, "- Rating equivalents: Moody's %s, S&P %s\n", in.Report.Ratings.Moodys, in.Report.Ratings.SP)

	if excerpt := Excerpt(in.RawText, excerptLimit); excerpt != "" {
		b.WriteString("\n## Document excerpt\n\n")
		b.WriteString(excerpt)
		b.WriteString("\n")
	}

	b.WriteString("\n## Task\n\nUse these sections, as markdown headings, in this order:\n\n")
	for i, section := range Sections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, section)
	}
	b.WriteString("\nIndicators marked insufficient_data were not computable; mention the gap instead of estimating them.\n")

	return b.String()
}

// Excerpt returns at most limit characters of text, trimmed.
func Excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || text == "" {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit]))
}

// FormatValue renders an optional figure, "N/A" when absent.
func FormatValue(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
