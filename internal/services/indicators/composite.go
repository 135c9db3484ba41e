package indicators

import "github.com/ternarybob/bravix/internal/models"

// Category weights of the overall health score. They sum to 1.0.
const (
	WeightLiquidity     = 0.25
	WeightLeverage      = 0.25
	WeightProfitability = 0.25
	WeightEfficiency    = 0.15
	WeightStability     = 0.10
)

// CategoryWeights lists categories in report order with their weights.
var CategoryWeights = []struct {
	Category models.Category
	Weight   float64
}{
	{models.CategoryLiquidity, WeightLiquidity},
	{models.CategoryLeverage, WeightLeverage},
	{models.CategoryProfitability, WeightProfitability},
	{models.CategoryEfficiency, WeightEfficiency},
	{models.CategoryStability, WeightStability},
}

// StatusWeight returns the score contribution of a status and whether the
// status counts towards the score at all.
func StatusWeight(s models.Status) (float64, bool) {
	switch s {
	case models.StatusGood:
		return 1.0, true
	case models.StatusCaution:
		return 0.6, true
	case models.StatusPoor:
		return 0.2, true
	default:
		return 0, false
	}
}

// CalculateOverallScore aggregates indicator statuses into a 0-100 score.
// Each category scores the mean status weight of its evaluable indicators;
// categories with nothing evaluable are left out and the remaining weights
// are rescaled to sum to one. The overall score is nil when no indicator is
// evaluable.
func CalculateOverallScore(indicators []models.Indicator) (*float64, []models.CategoryScore) {
	byCategory := make(map[models.Category][]float64, len(CategoryWeights))
	for _, ind := range indicators {
		if w, ok := StatusWeight(ind.Status); ok {
			byCategory[ind.Category] = append(byCategory[ind.Category], w)
		}
	}

	scores := make([]models.CategoryScore, 0, len(CategoryWeights))
	weighted := 0.0
	weightSum := 0.0

	for _, cw := range CategoryWeights {
		values := byCategory[cw.Category]
		cs := models.CategoryScore{
			Category:  cw.Category,
			Weight:    cw.Weight,
			Evaluable: len(values),
		}
		if len(values) > 0 {
			mean := Mean(values)
			s := Round(mean*100, ScorePlaces)
			cs.Score = &s
			weighted += cw.Weight * mean
			weightSum += cw.Weight
		}
		scores = append(scores, cs)
	}

	if weightSum == 0 {
		return nil, scores
	}

	overall := Round(weighted/weightSum*100, ScorePlaces)
	return &overall, scores
}
