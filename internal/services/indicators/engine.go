package indicators

import (
	"github.com/ternarybob/bravix/internal/models"
)

// Compute scores one set of financial facts. It never fails: missing or
// unusable figures surface as nil values with insufficient_data status,
// and an empty input yields a nil score classified N/A. The score covers
// only categories with at least one evaluable indicator.
func Compute(facts models.FinancialFacts) models.ScoringReport {
	facts = Normalize(facts)

	indicators := make([]models.Indicator, 0, len(Definitions))
	for _, def := range Definitions {
		value := evaluate(def, facts)
		indicators = append(indicators, models.Indicator{
			Name:     def.Name,
			Value:    value,
			Status:   EvaluateStatus(def.Name, value),
			Category: def.Category,
		})
	}

	score, categories := CalculateOverallScore(indicators)
	class := Classify(score)

	return models.ScoringReport{
		Indicators:         indicators,
		OverallHealthScore: score,
		CompanyClass:       class.CompanyClass,
		RiskCategory:       class.RiskCategory,
		CreditDecision:     class.CreditDecision,
		Ratings:            class.Ratings,
		CategoryScores:     categories,
	}
}

// ComputeFromMap scores a loose key/value map. See FactsFromMap.
func ComputeFromMap(data map[string]any) models.ScoringReport {
	return Compute(FactsFromMap(data))
}

// evaluate runs one formula. A panic or a non-finite result makes the
// indicator indeterminate without affecting the others.
func evaluate(def Definition, facts models.FinancialFacts) (value *float64) {
	defer func() {
		if recover() != nil {
			value = nil
		}
	}()

	v := def.Compute(facts)
	if !finite(v) {
		return nil
	}
	return v
}
