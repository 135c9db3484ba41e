package indicators

import "github.com/ternarybob/bravix/internal/models"

// NotAvailable is used for every classification field when no score
// could be computed.
const NotAvailable = "N/A"

// Band is one row of the classification table. Rows are evaluated top
// down and the first row whose MinScore is met wins.
type Band struct {
	MinScore float64
	Class    string
	Risk     string
	Decision string
	Ratings  models.Ratings
}

// Bands is the classification table ordered from best to worst class.
var Bands = []Band{
	{MinScore: 90, Class: "A", Risk: "Excellent", Decision: "Approve", Ratings: models.Ratings{Moodys: "Aaa–A2", SP: "AAA–A"}},
	{MinScore: 75, Class: "B", Risk: "Good", Decision: "Proceed", Ratings: models.Ratings{Moodys: "Baa1–Baa3", SP: "BBB+"}},
	{MinScore: 60, Class: "C", Risk: "Average", Decision: "Proceed with Caution", Ratings: models.Ratings{Moodys: "Ba1–Ba3", SP: "BB"}},
	{MinScore: 40, Class: "D", Risk: "Weak", Decision: "Not Recommended", Ratings: models.Ratings{Moodys: "B1–B3", SP: "B"}},
	{MinScore: 0, Class: "E", Risk: "Critical", Decision: "Decline", Ratings: models.Ratings{Moodys: "Caa–C", SP: "CCC–D"}},
}

// Classify maps an overall score to a credit classification. A nil score
// yields N/A in every field. Scores below zero fall into the last band.
func Classify(score *float64) models.Classification {
	if !finite(score) {
		return models.Classification{
			CompanyClass:   NotAvailable,
			RiskCategory:   NotAvailable,
			CreditDecision: NotAvailable,
			Ratings:        models.Ratings{Moodys: NotAvailable, SP: NotAvailable},
		}
	}

	band := Bands[len(Bands)-1]
	for _, b := range Bands {
		if *score >= b.MinScore {
			band = b
			break
		}
	}

	return models.Classification{
		CompanyClass:   band.Class,
		RiskCategory:   band.Risk,
		CreditDecision: band.Decision,
		Ratings:        band.Ratings,
	}
}

// ClassRank orders classes from best (0) to worst. N/A and unknown
// classes rank after E.
func ClassRank(class string) int {
	for i, b := range Bands {
		if b.Class == class {
			return i
		}
	}
	return len(Bands)
}
