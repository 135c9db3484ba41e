package models

// Field names of the FinancialFacts vocabulary. These are the keys accepted
// in loose maps and emitted in JSON.
const (
	FieldAssets               = "assets"
	FieldLiabilities          = "liabilities"
	FieldEquity               = "equity"
	FieldCurrentAssets        = "current_assets"
	FieldCurrentLiabilities   = "current_liabilities"
	FieldCash                 = "cash"
	FieldShortTermInvestments = "short_term_investments"
	FieldInventory            = "inventory"
	FieldReceivables          = "receivables"
	FieldRevenue              = "revenue"
	FieldGrossProfit          = "gross_profit"
	FieldCostOfSales          = "cost_of_sales"
	FieldProfit               = "profit"
	FieldEBIT                 = "ebit"
	FieldEBITDA               = "ebitda"
	FieldInterestExpense      = "interest_expense"
	FieldInvestment           = "investment"
	FieldSharesOutstanding    = "shares_outstanding"
	FieldSharePrice           = "share_price"
)

// FactFields lists the vocabulary in a stable order.
var FactFields = []string{
	FieldAssets,
	FieldLiabilities,
	FieldEquity,
	FieldCurrentAssets,
	FieldCurrentLiabilities,
	FieldCash,
	FieldShortTermInvestments,
	FieldInventory,
	FieldReceivables,
	FieldRevenue,
	FieldGrossProfit,
	FieldCostOfSales,
	FieldProfit,
	FieldEBIT,
	FieldEBITDA,
	FieldInterestExpense,
	FieldInvestment,
	FieldSharesOutstanding,
	FieldSharePrice,
}

// FinancialFacts holds the extracted figures of one company for one period.
// A nil field means the figure was not supplied.
type FinancialFacts struct {
	Assets               *float64 `json:"assets,omitempty" validate:"omitempty,gte=0"`
	Liabilities          *float64 `json:"liabilities,omitempty" validate:"omitempty,gte=0"`
	Equity               *float64 `json:"equity,omitempty"`
	CurrentAssets        *float64 `json:"current_assets,omitempty" validate:"omitempty,gte=0"`
	CurrentLiabilities   *float64 `json:"current_liabilities,omitempty" validate:"omitempty,gte=0"`
	Cash                 *float64 `json:"cash,omitempty"`
	ShortTermInvestments *float64 `json:"short_term_investments,omitempty"`
	Inventory            *float64 `json:"inventory,omitempty" validate:"omitempty,gte=0"`
	Receivables          *float64 `json:"receivables,omitempty" validate:"omitempty,gte=0"`
	Revenue              *float64 `json:"revenue,omitempty"`
	GrossProfit          *float64 `json:"gross_profit,omitempty"`
	CostOfSales          *float64 `json:"cost_of_sales,omitempty"`
	Profit               *float64 `json:"profit,omitempty"`
	EBIT                 *float64 `json:"ebit,omitempty"`
	EBITDA               *float64 `json:"ebitda,omitempty"`
	InterestExpense      *float64 `json:"interest_expense,omitempty"`
	Investment           *float64 `json:"investment,omitempty"`
	SharesOutstanding    *float64 `json:"shares_outstanding,omitempty" validate:"omitempty,gte=0"`
	SharePrice           *float64 `json:"share_price,omitempty" validate:"omitempty,gte=0"`
}

// field returns the address of the pointer slot for a vocabulary name.
func (f *FinancialFacts) field(name string) **float64 {
	switch name {
	case FieldAssets:
		return &f.Assets
	case FieldLiabilities:
		return &f.Liabilities
	case FieldEquity:
		return &f.Equity
	case FieldCurrentAssets:
		return &f.CurrentAssets
	case FieldCurrentLiabilities:
		return &f.CurrentLiabilities
	case FieldCash:
		return &f.Cash
	case FieldShortTermInvestments:
		return &f.ShortTermInvestments
	case FieldInventory:
		return &f.Inventory
	case FieldReceivables:
		return &f.Receivables
	case FieldRevenue:
		return &f.Revenue
	case FieldGrossProfit:
		return &f.GrossProfit
	case FieldCostOfSales:
		return &f.CostOfSales
	case FieldProfit:
		return &f.Profit
	case FieldEBIT:
		return &f.EBIT
	case FieldEBITDA:
		return &f.EBITDA
	case FieldInterestExpense:
		return &f.InterestExpense
	case FieldInvestment:
		return &f.Investment
	case FieldSharesOutstanding:
		return &f.SharesOutstanding
	case FieldSharePrice:
		return &f.SharePrice
	}
	return nil
}

// Get returns the value for a vocabulary name and whether it is present.
func (f FinancialFacts) Get(name string) (float64, bool) {
	slot := f.field(name)
	if slot == nil || *slot == nil {
		return 0, false
	}
	return **slot, true
}

// Set assigns a value by vocabulary name. Unknown names are ignored and
// reported as false.
func (f *FinancialFacts) Set(name string, value float64) bool {
	slot := f.field(name)
	if slot == nil {
		return false
	}
	v := value
	*slot = &v
	return true
}

// Has reports whether the named figure is present.
func (f FinancialFacts) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Merge fills absent fields from other. Present fields are kept.
func (f *FinancialFacts) Merge(other FinancialFacts) {
	for _, name := range FactFields {
		if f.Has(name) {
			continue
		}
		if v, ok := other.Get(name); ok {
			f.Set(name, v)
		}
	}
}

// Count returns the number of present fields.
func (f FinancialFacts) Count() int {
	n := 0
	for _, name := range FactFields {
		if f.Has(name) {
			n++
		}
	}
	return n
}

// ToMap returns the present fields keyed by vocabulary name.
func (f FinancialFacts) ToMap() map[string]float64 {
	out := make(map[string]float64, len(FactFields))
	for _, name := range FactFields {
		if v, ok := f.Get(name); ok {
			out[name] = v
		}
	}
	return out
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
