package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numberPattern finds amount tokens in a line of text: optional sign or
// parenthesis, optional currency symbol, digits with separators.
var numberPattern = regexp.MustCompile(`\(?[-−]?\s?[€$£]?\s?\d(?:[\d.,']*\d)?\)?-?`)

// ParseAmount parses a statement amount. It accepts currency symbols,
// thousands separators ("," "." "'" or spaces), European decimal commas,
// parenthesised negatives and a trailing minus.
//
// A lone separator followed by exactly three digits is read as a thousands
// separator ("1.250" and "1,250" are both 1250) unless the integer part is
// zero.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "-"))
	}
	for _, sign := range []string{"-", "−"} {
		if strings.HasPrefix(s, sign) {
			negative = !negative
			s = strings.TrimSpace(strings.TrimPrefix(s, sign))
		}
	}

	s = strings.NewReplacer(
		"€", "", "$", "", "£", "", "EUR", "", "USD", "", "GBP", "",
		" ", "", "\u00a0", "", "\u202f", "", "'", "",
	).Replace(s)
	if s == "" {
		return decimal.Zero, false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return decimal.Zero, false
		}
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// normalizeSeparators rewrites s to use "." as the only decimal separator
// and no grouping.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The later separator is the decimal one.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		return resolveSingle(s, ",")
	case lastDot >= 0:
		return resolveSingle(s, ".")
	default:
		return s
	}
}

func resolveSingle(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.Index(s, sep)
	intPart, frac := s[:idx], s[idx+1:]
	if len(frac) == 3 && intPart != "" && strings.Trim(intPart, "0") != "" {
		return intPart + frac
	}
	return intPart + "." + frac
}

// lastAmount returns the last parseable amount on a line.
func lastAmount(line string) (decimal.Decimal, bool) {
	matches := numberPattern.FindAllString(line, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if d, ok := ParseAmount(matches[i]); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// stripAmounts removes amount tokens so a line's label can be matched.
func stripAmounts(line string) string {
	return numberPattern.ReplaceAllString(line, " ")
}
