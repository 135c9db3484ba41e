package extraction

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/ternarybob/bravix/internal/models"
	"gopkg.in/yaml.v3"
)

// IgnoreField marks labels that look like a figure but must not be read,
// such as "total liabilities and equity".
const IgnoreField = "ignore"

// defaultLabels maps vocabulary fields to English, Dutch, French and German
// statement labels.
var defaultLabels = map[string][]string{
	models.FieldAssets: {
		"assets", "total assets", "activa", "totaal activa", "actif", "total actif", "total de l'actif",
		"aktiva", "bilanzsumme", "summe aktiva",
	},
	models.FieldLiabilities: {
		"liabilities", "total liabilities", "passiva", "schulden", "totaal schulden", "passif", "dettes",
		"total des dettes", "verbindlichkeiten", "fremdkapital",
	},
	models.FieldEquity: {
		"equity", "total equity", "shareholders' equity", "stockholders' equity", "net assets",
		"vermogen", "eigen vermogen", "capitaux propres", "eigenkapital",
	},
	models.FieldCurrentAssets: {
		"current assets", "total current assets", "vlottende activa", "actif circulant", "actifs courants",
		"umlaufvermögen",
	},
	models.FieldCurrentLiabilities: {
		"current liabilities", "total current liabilities", "kortlopende schulden", "passif courant",
		"passifs courants", "dettes à court terme", "kurzfristige verbindlichkeiten",
	},
	models.FieldCash: {
		"cash", "cash and cash equivalents", "cash and equivalents", "liquide middelen", "trésorerie",
		"disponibilités", "flüssige mittel", "kassenbestand",
	},
	models.FieldShortTermInvestments: {
		"short term investments", "marketable securities", "kortlopende beleggingen", "effecten",
		"placements à court terme", "valeurs mobilières de placement", "wertpapiere des umlaufvermögens",
	},
	models.FieldInventory: {
		"inventory", "inventories", "stock", "voorraden", "voorraad", "stocks", "vorräte",
	},
	models.FieldReceivables: {
		"receivables", "accounts receivable", "trade receivables", "debiteuren", "vorderingen",
		"créances", "créances clients", "forderungen", "forderungen aus lieferungen und leistungen",
	},
	models.FieldRevenue: {
		"revenue", "revenues", "sales", "net sales", "turnover", "omzet", "netto-omzet", "netto omzet",
		"chiffre d'affaires", "umsatz", "umsatzerlöse",
	},
	models.FieldGrossProfit: {
		"gross profit", "gross margin", "brutowinst", "brutomarge", "marge brute", "bruttogewinn", "rohertrag",
	},
	models.FieldCostOfSales: {
		"cost of sales", "cost of goods sold", "cost of revenue", "cogs", "kostprijs van de omzet",
		"inkoopwaarde", "coût des ventes", "coût des marchandises vendues", "herstellungskosten",
		"materialaufwand",
	},
	models.FieldProfit: {
		"profit", "net profit", "net income", "net result", "net earnings", "profit for the year",
		"nettoresultaat", "nettowinst", "resultaat na belastingen", "résultat net", "bénéfice net",
		"jahresüberschuss", "nettogewinn",
	},
	models.FieldEBIT: {
		"ebit", "operating profit", "operating income", "operating result", "bedrijfsresultaat",
		"résultat d'exploitation", "betriebsergebnis",
	},
	models.FieldEBITDA: {
		"ebitda",
	},
	models.FieldInterestExpense: {
		"interest expense", "interest expenses", "interest paid", "finance costs", "financial expenses",
		"rentelasten", "financiële lasten", "charges d'intérêts", "charges financières", "zinsaufwand",
		"zinsaufwendungen",
	},
	models.FieldInvestment: {
		"investment", "investments", "capital expenditure", "capex", "investeringen", "investissements",
		"investitionen",
	},
	models.FieldSharesOutstanding: {
		"shares outstanding", "number of shares", "aantal aandelen", "nombre d'actions", "anzahl aktien",
	},
	models.FieldSharePrice: {
		"share price", "price per share", "aandelenkoers", "cours de l'action", "aktienkurs",
	},
	IgnoreField: {
		"total liabilities and equity", "liabilities and equity", "equity and liabilities",
		"liabilities and shareholders' equity", "totaal passiva", "total passif", "summe passiva",
		"cash flow", "kasstroom", "flux de trésorerie", "return on equity", "return on assets",
		"debt to equity",
	},
}

type labelEntry struct {
	variant string
	field   string
}

// Labels resolves statement labels to vocabulary fields. The longest
// matching variant wins, so "current assets" beats "assets".
type Labels struct {
	entries []labelEntry
}

// DefaultLabels returns the built-in dictionary.
func DefaultLabels() *Labels {
	return newLabels(defaultLabels)
}

// LoadLabels reads a YAML dictionary of field -> variants and merges it over
// the built-in one. An empty path returns the defaults.
func LoadLabels(path string) (*Labels, error) {
	if path == "" {
		return DefaultLabels(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file %s: %w", path, err)
	}

	var overrides map[string][]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse labels file %s: %w", path, err)
	}

	merged := make(map[string][]string, len(defaultLabels))
	for field, variants := range defaultLabels {
		merged[field] = append([]string(nil), variants...)
	}

	var facts models.FinancialFacts
	for field, variants := range overrides {
		if field != IgnoreField && !facts.Set(field, 0) {
			return nil, fmt.Errorf("labels file %s: unknown field %q", path, field)
		}
		merged[field] = append(merged[field], variants...)
	}

	return newLabels(merged), nil
}

func newLabels(dict map[string][]string) *Labels {
	l := &Labels{}
	seen := make(map[string]bool)
	for field, variants := range dict {
		for _, v := range variants {
			v = normalizeLabel(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			l.entries = append(l.entries, labelEntry{variant: v, field: field})
		}
	}
	// Longest first; ties broken alphabetically for a stable result.
	sort.Slice(l.entries, func(i, j int) bool {
		a, b := l.entries[i].variant, l.entries[j].variant
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return l
}

// Match returns the field for a label. Ignored labels and labels without a
// known variant return false.
func (l *Labels) Match(label string) (string, bool) {
	norm := normalizeLabel(label)
	if norm == "" {
		return "", false
	}
	for _, e := range l.entries {
		if containsWord(norm, e.variant) {
			if e.field == IgnoreField {
				return "", false
			}
			return e.field, true
		}
	}
	return "", false
}

// Len returns the number of variants.
func (l *Labels) Len() int {
	return len(l.entries)
}

// normalizeLabel lower-cases, unifies apostrophes and hyphens and collapses
// whitespace.
func normalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("’", "'", "`", "'", "-", " ", "_", " ", ":", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// containsWord reports whether needle occurs in haystack on word boundaries.
func containsWord(haystack, needle string) bool {
	for start := 0; start <= len(haystack)-len(needle); {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(needle)
		if boundaryBefore(haystack, idx) && boundaryAfter(haystack, end) {
			return true
		}
		start = idx + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r := lastRune(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r := []rune(s[i:])[0]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func lastRune(s string) rune {
	r := []rune(s)
	return r[len(r)-1]
}
