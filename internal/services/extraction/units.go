package extraction

import "regexp"

var (
	millionsPattern = regexp.MustCompile(`(?i)(?:\bin\s+(?:€|eur|euro|\$|usd|£|gbp)?\s*millions?\b|\(\s*(?:€|eur|\$|usd)?\s*millions?\s*\)|\bin\s+miljoenen\b|\ben\s+millions\b|\bin\s+millionen\b|\bx\s*1[.,]000[.,]000\b)`)
	thousandsPattern = regexp.MustCompile(`(?i)(?:\bin\s+(?:€|eur|euro|\$|usd|£|gbp)?\s*thousands?\b|\(\s*(?:€|eur|\$|usd)?\s*thousands?\s*\)|\bin\s+duizenden\b|\ben\s+milliers\b|\bin\s+tausend\b|\bx\s*1[.,]000\b|(?:€|eur|\$)\s*'000\b|\(\s*000\s*\))`)
)

// DetectUnitMultiplier returns the scale stated in a document: 1e6 for
// figures in millions, 1e3 for thousands, otherwise 1. Millions win when
// both are mentioned.
func DetectUnitMultiplier(text string) float64 {
	switch {
	case millionsPattern.MatchString(text):
		return 1_000_000
	case thousandsPattern.MatchString(text):
		return 1_000
	default:
		return 1
	}
}
