package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/bravix/internal/models"
	"github.com/ternarybob/bravix/internal/services/llm"
)

const aiExcerptLimit = 7000

const aiSystemInstruction = "You are a financial data extractor. You read financial statements and return figures as strict JSON."

var validate = newValidator()

// newValidator reports field errors by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// buildAIPrompt asks for the missing fields only.
func buildAIPrompt(text string, missing []string) string {
	var b strings.Builder
	b.WriteString("Identify these figures in the financial statement below: ")
	b.WriteString(strings.Join(missing, ", "))
	b.WriteString(".\n\nReturn ONLY a JSON object with exactly these keys. Values are plain numbers in ")
	b.WriteString("currency units, with any stated scale (thousands, millions) already applied. ")
	b.WriteString("Use null for figures that are not in the document.\n\n")
	b.WriteString("Statement:\n")
	b.WriteString(truncate(strings.TrimSpace(text), aiExcerptLimit))
	return b.String()
}

// ParseAIFacts decodes the first JSON object of an LLM response into facts.
// Fields that fail validation are dropped and reported.
func ParseAIFacts(response string) (models.FinancialFacts, []string, error) {
	var facts models.FinancialFacts

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return facts, nil, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(response[start:end+1]), &facts); err != nil {
		return facts, nil, fmt.Errorf("failed to decode AI facts: %w", err)
	}

	var dropped []string
	if err := validate.Struct(facts); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return facts, nil, fmt.Errorf("failed to validate AI facts: %w", err)
		}
		clean := models.FinancialFacts{}
		bad := make(map[string]bool, len(verrs))
		for _, fe := range verrs {
			bad[fe.Field()] = true
			dropped = append(dropped, fe.Field())
		}
		for name, v := range facts.ToMap() {
			if !bad[name] {
				clean.Set(name, v)
			}
		}
		facts = clean
	}

	return facts, dropped, nil
}

// applyAIFallback merges figures returned by the LLM into missing fields.
// Failures are logged and leave the result unchanged.
func (s *Service) applyAIFallback(ctx context.Context, text string, missing []string, result *models.ExtractionResult) {
	if strings.TrimSpace(text) == "" {
		return
	}

	resp, err := s.generator.GenerateContent(ctx, &llm.ContentRequest{
		Model:             s.aiModel,
		SystemInstruction: aiSystemInstruction,
		Prompt:            buildAIPrompt(text, missing),
		MaxTokens:         600,
		JSONOutput:        true,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("filename", result.Filename).Msg("AI extraction fallback failed")
		return
	}

	facts, dropped, err := ParseAIFacts(resp.Text)
	if err != nil {
		s.logger.Warn().Err(err).Str("filename", result.Filename).Msg("AI extraction response rejected")
		return
	}
	for _, name := range dropped {
		result.Warnings = append(result.Warnings, fmt.Sprintf("AI value for %s rejected by validation", name))
	}

	added := 0
	for _, name := range missing {
		if v, ok := facts.Get(name); ok {
			result.Facts.Set(name, v)
			result.Sources[name] = models.SourceAI
			added++
		}
	}

	s.logger.Info().
		Str("filename", result.Filename).
		Str("model", resp.Model).
		Int("added", added).
		Msg("AI extraction fallback applied")
}
