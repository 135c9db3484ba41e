package extraction

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/bravix/internal/models"
)

// collector accumulates matched figures. The first match of a field wins
// unless a later label is a total line.
type collector struct {
	facts   models.FinancialFacts
	sources map[string]string
	totals  map[string]bool
	scale   decimal.Decimal
	source  string
}

func newCollector(multiplier float64, source string) *collector {
	return &collector{
		sources: make(map[string]string),
		totals:  make(map[string]bool),
		scale:   decimal.NewFromFloat(multiplier),
		source:  source,
	}
}

func (c *collector) add(field, label string, amount decimal.Decimal) {
	total := isTotalLabel(label)
	if c.facts.Has(field) && (c.totals[field] || !total) {
		return
	}
	c.facts.Set(field, amount.Mul(c.scale).InexactFloat64())
	c.sources[field] = c.source
	c.totals[field] = total
}

var totalWords = []string{"total", "totaal", "summe", "gesamt"}

func isTotalLabel(label string) bool {
	norm := normalizeLabel(label)
	for _, w := range totalWords {
		if containsWord(norm, w) {
			return true
		}
	}
	return false
}

// tableFacts reads tabular rows. When the first row is a header of labels
// without amounts, each labelled column takes its last value; otherwise each
// row is a label followed by values and takes its last amount.
func tableFacts(rows [][]string, labels *Labels, multiplier float64) *collector {
	c := newCollector(multiplier, models.SourceTable)
	if len(rows) == 0 {
		return c
	}

	if isHeaderRow(rows[0], labels) {
		for col, header := range rows[0] {
			field, ok := labels.Match(header)
			if !ok {
				continue
			}
			for i := len(rows) - 1; i >= 1; i-- {
				if col >= len(rows[i]) {
					continue
				}
				if amount, ok := ParseAmount(rows[i][col]); ok {
					c.add(field, header, amount)
					break
				}
			}
		}
		return c
	}

	for _, row := range rows {
		label, rest := splitRow(row)
		if label == "" {
			continue
		}
		field, ok := labels.Match(label)
		if !ok {
			continue
		}
		for i := len(rest) - 1; i >= 0; i-- {
			if amount, ok := ParseAmount(rest[i]); ok {
				c.add(field, label, amount)
				break
			}
		}
	}
	return c
}

// isHeaderRow reports whether a row holds column labels: at least one known
// label and no amounts.
func isHeaderRow(row []string, labels *Labels) bool {
	matched := false
	for _, cell := range row {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		if _, ok := ParseAmount(cell); ok {
			return false
		}
		if _, ok := labels.Match(cell); ok {
			matched = true
		}
	}
	return matched
}

// splitRow returns the first non-empty cell and the cells after it.
func splitRow(row []string) (string, []string) {
	for i, cell := range row {
		if s := strings.TrimSpace(cell); s != "" {
			return s, row[i+1:]
		}
	}
	return "", nil
}

// textFacts reads free text line by line: a line whose label part matches
// the dictionary takes the last amount on the line.
func textFacts(text string, labels *Labels, multiplier float64) *collector {
	c := newCollector(multiplier, models.SourceText)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		amount, ok := lastAmount(line)
		if !ok {
			continue
		}
		label := strings.TrimSpace(stripAmounts(line))
		field, ok := labels.Match(label)
		if !ok {
			continue
		}
		c.add(field, label, amount)
	}
	return c
}
