package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, "10.13", Round2(decimal.RequireFromString("10.125")).StringFixed(2))
	assert.Equal(t, "10.12", Round2(decimal.RequireFromString("10.1249")).StringFixed(2))
	assert.Equal(t, int64(1013), Cents(decimal.RequireFromString("10.125")))
	assert.Equal(t, "1.235", RoundQty(decimal.RequireFromString("1.2345")).String())
}

func TestMinDecimal(t *testing.T) {
	a := decimal.NewFromInt(3)
	b := decimal.NewFromInt(5)
	assert.True(t, MinDecimal(a, b).Equal(a))
	assert.True(t, MinDecimal(b, a).Equal(a))
}

type patchDTO struct {
	Name  *string          `json:"name"`
	Phone *string          `json:"phone,omitempty"`
	Price *decimal.Decimal `json:"price" gorm:"type:numeric(12,2);column:selling_price"`
	Skip  *string          `json:"-"`
}

func TestNormalizeAndPatch(t *testing.T) {
	name := "  Rice  "
	price := decimal.RequireFromString("12.345")
	skip := "x"
	dto := patchDTO{Name: &name, Price: &price, Skip: &skip}

	NormalizePtrDTO(&dto)
	updates, err := PatchColumns(&dto)
	require.NoError(t, err)

	assert.Equal(t, "Rice", updates["name"])
	assert.NotContains(t, updates, "phone")
	assert.NotContains(t, updates, "-")
	assert.Equal(t, "12.35", updates["selling_price"].(decimal.Decimal).StringFixed(2))
}

func TestPatchRefusesLedgerColumns(t *testing.T) {
	due := decimal.NewFromInt(10)
	dto := struct {
		DueAmount *decimal.Decimal `json:"due_amount"`
	}{DueAmount: &due}

	_, err := PatchColumns(&dto)
	assert.ErrorContains(t, err, `"due_amount"`)

	_, err = PatchColumns(dto)
	assert.Error(t, err)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 20, ParseIntDefault(" 20 ", 50))
	assert.Equal(t, 50, ParseIntDefault("abc", 50))
	assert.Equal(t, 50, ParseIntDefault("-1", 50))
}
