// Package indicators computes financial ratios, their statuses, a
// category-weighted health score and a credit classification.
// All functions are stateless and perform no I/O.
package indicators

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal places applied to computed values.
const (
	RatioPlaces   = 4
	PercentPlaces = 2
	ScorePlaces   = 2
)

// ToNumber coerces x to a float64. Unparseable, empty and non-finite
// inputs yield 0.
func ToNumber(x any) float64 {
	v, ok := ParseNumber(x)
	if !ok {
		return 0
	}
	return v
}

// ParseNumber coerces x to a finite float64 and reports whether it
// succeeded. Strings may carry thousands separators, currency symbols,
// surrounding whitespace and accounting-style parentheses for negatives.
func ParseNumber(x any) (float64, bool) {
	var v float64
	switch n := x.(type) {
	case nil:
		return 0, false
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int8:
		v = float64(n)
	case int16:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case uint:
		v = float64(n)
	case uint8:
		v = float64(n)
	case uint16:
		v = float64(n)
	case uint32:
		v = float64(n)
	case uint64:
		v = float64(n)
	case *float64:
		if n == nil {
			return 0, false
		}
		v = *n
	case decimal.Decimal:
		v = n.InexactFloat64()
	case json.Number:
		return parseNumericString(string(n))
	case string:
		return parseNumericString(n)
	case bool:
		return 0, false
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseNumericString parses strings such as "1,234.50", "$ 12", "(300)"
// or "45%".
func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'e', r == 'E':
			b.WriteRune(r)
		case r == ',' || r == '_' || r == ' ' || r == '\u00a0' || r == '\'':
			// thousands separators
		case r == '$' || r == '€' || r == '£' || r == '¥' || r == '%':
			// symbols
		default:
			return 0, false
		}
	}

	// ParseFloat bounds the exponent; out-of-range input fails with ErrRange.
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// Round rounds v half away from zero to the given number of places using
// its shortest decimal representation.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// SafeDivide returns a/b rounded to four places, or nil when b is zero or
// the quotient is not finite.
func SafeDivide(a, b float64) *float64 {
	if b == 0 || math.IsNaN(b) {
		return nil
	}
	q := a / b
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return nil
	}
	r := Round(q, RatioPlaces)
	return &r
}

// Percent converts a ratio to a percentage rounded to two places.
func Percent(ratio *float64) *float64 {
	if ratio == nil {
		return nil
	}
	p := Round(*ratio*100, PercentPlaces)
	return &p
}

// Mean calculates the arithmetic mean
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
