package extraction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/bravix/internal/models"
)

func TestLabelsMatch(t *testing.T) {
	labels := DefaultLabels()

	tests := []struct {
		label string
		want  string
	}{
		{"Total current assets", models.FieldCurrentAssets},
		{"Total assets", models.FieldAssets},
		{"Vlottende activa", models.FieldCurrentAssets},
		{"Kortlopende schulden", models.FieldCurrentLiabilities},
		{"Chiffre d’affaires", models.FieldRevenue},
		{"Umsatzerlöse", models.FieldRevenue},
		{"Cost of sales", models.FieldCostOfSales},
		{"Net sales", models.FieldRevenue},
		{"Gross profit", models.FieldGrossProfit},
		{"EBITDA", models.FieldEBITDA},
		{"Operating profit", models.FieldEBIT},
		{"Short-term investments", models.FieldShortTermInvestments},
		{"Capitaux propres", models.FieldEquity},
		{"Eigen vermogen", models.FieldEquity},
		{"Net income:", models.FieldProfit},
		{"Total liabilities and equity", ""},
		{"Operating cash flow", ""},
		{"Debiteurenbeheer notes", ""},
		{"Notes", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := labels.Match(tt.label)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadLabels(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
revenue:
  - "bedrijfsopbrengsten"
ignore:
  - "total assets held for sale"
`), 0644))

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	assert.Greater(t, labels.Len(), DefaultLabels().Len())

	field, ok := labels.Match("Bedrijfsopbrengsten")
	assert.True(t, ok)
	assert.Equal(t, models.FieldRevenue, field)

	_, ok = labels.Match("Total assets held for sale")
	assert.False(t, ok)

	field, ok = labels.Match("Total assets")
	assert.True(t, ok)
	assert.Equal(t, models.FieldAssets, field)
}

func TestLoadLabelsErrors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("turnover_ratio:\n  - x\n"), 0644))
	_, err := LoadLabels(unknown)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("revenue: [unclosed"), 0644))
	_, err = LoadLabels(invalid)
	assert.Error(t, err)

	_, err = LoadLabels(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	labels, err := LoadLabels("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLabels().Len(), labels.Len())
}
