package models

// Status is the qualitative evaluation of one indicator.
type Status string

const (
	StatusGood             Status = "good"
	StatusCaution          Status = "caution"
	StatusPoor             Status = "poor"
	StatusInsufficientData Status = "insufficient_data"
	StatusUnknown          Status = "unknown"
)

// Evaluable reports whether the status contributes to the overall score.
func (s Status) Evaluable() bool {
	return s == StatusGood || s == StatusCaution || s == StatusPoor
}

// Category groups indicators for weighting.
type Category string

const (
	CategoryLiquidity     Category = "liquidity"
	CategoryLeverage      Category = "leverage"
	CategoryProfitability Category = "profitability"
	CategoryEfficiency    Category = "efficiency"
	CategoryStability     Category = "stability"
)

// Indicator is one named ratio of a scoring report. Value is nil when the
// ratio could not be computed.
type Indicator struct {
	Name     string   `json:"name"`
	Value    *float64 `json:"value"`
	Status   Status   `json:"status"`
	Category Category `json:"category"`
}

// Ratings holds agency rating equivalents for a company class.
type Ratings struct {
	Moodys string `json:"Moodys"`
	SP     string `json:"S&P"`
}

// Classification is the credit decision derived from an overall score.
type Classification struct {
	CompanyClass   string  `json:"company_class"`
	RiskCategory   string  `json:"risk_category"`
	CreditDecision string  `json:"credit_decision"`
	Ratings        Ratings `json:"ratings"`
}

// CategoryScore is the contribution of one category to the overall score.
// Score is nil when no indicator of the category was evaluable.
type CategoryScore struct {
	Category  Category `json:"category"`
	Weight    float64  `json:"weight"`
	Score     *float64 `json:"score"`
	Evaluable int      `json:"evaluable"`
}

// ScoringReport is the output of the indicator engine.
type ScoringReport struct {
	Indicators         []Indicator     `json:"indicators"`
	OverallHealthScore *float64        `json:"overall_health_score"`
	CompanyClass       string          `json:"company_class"`
	RiskCategory       string          `json:"risk_category"`
	CreditDecision     string          `json:"credit_decision"`
	Ratings            Ratings         `json:"ratings"`
	CategoryScores     []CategoryScore `json:"category_scores"`
}

// Indicator returns the named indicator and whether it exists.
func (r ScoringReport) Indicator(name string) (Indicator, bool) {
	for _, ind := range r.Indicators {
		if ind.Name == name {
			return ind, true
		}
	}
	return Indicator{}, false
}

// Classification returns the classification fields of the report.
func (r ScoringReport) Classification() Classification {
	return Classification{
		CompanyClass:   r.CompanyClass,
		RiskCategory:   r.RiskCategory,
		CreditDecision: r.CreditDecision,
		Ratings:        r.Ratings,
	}
}
