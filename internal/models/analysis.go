package models

import "time"

// Analysis is a persisted credit evaluation: the facts that were scored,
// the scoring report and the optional narrative.
type Analysis struct {
	ID             string         `json:"id"`
	CompanyName    string         `json:"company_name"`
	FiscalYear     string         `json:"fiscal_year"`
	Summary        string         `json:"summary,omitempty"`
	Facts          FinancialFacts `json:"facts"`
	Report         ScoringReport  `json:"report"`
	Narrative      string         `json:"narrative,omitempty"`
	NarrativeModel string         `json:"narrative_model,omitempty"`
	NarrativeError string         `json:"narrative_error,omitempty"`
	RawText        string         `json:"raw_text,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Source of an extracted figure.
const (
	SourceTable   = "table"
	SourceText    = "text"
	SourceDerived = "derived"
	SourceAI      = "ai"
)

// ExtractionResult is the outcome of reading one uploaded document.
type ExtractionResult struct {
	Filename       string            `json:"filename"`
	Format         string            `json:"format"`
	RawText        string            `json:"raw_text"`
	Facts          FinancialFacts    `json:"facts"`
	Sources        map[string]string `json:"sources"`
	UnitMultiplier float64           `json:"unit_multiplier"`
	Confidence     float64           `json:"confidence"`
	Warnings       []string          `json:"warnings,omitempty"`
}
