package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateFees_Scenario(t *testing.T) {
	b := CalculateFees(decimal.NewFromInt(500), decimal.RequireFromString("0.1"))

	assert.True(t, b.WorkerAmount.Equal(decimal.RequireFromString("500.00")))
	assert.True(t, b.PlatformFee.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, b.TotalAmount.Equal(decimal.RequireFromString("550.00")))
	assert.Equal(t, 0.1, b.FeePercent.InexactFloat64())
}

func TestCalculateFees_TotalIsSum(t *testing.T) {
	pct := decimal.RequireFromString("0.125")
	for _, s := range []string{"0.01", "1", "99.99", "123.45", "250.5", "1000000"} {
		amount := decimal.RequireFromString(s)
		b := CalculateFees(amount, pct)

		assert.True(t, b.TotalAmount.Equal(b.WorkerAmount.Add(b.PlatformFee)), s)
		assert.True(t, b.PlatformFee.Equal(amount.Mul(pct).Round(2)), s)
	}
}

func TestCalculateFees_RoundsHalfUp(t *testing.T) {
	// 0.125 * 0.20 = 0.025 -> 0.03
	b := CalculateFees(decimal.RequireFromString("0.20"), decimal.RequireFromString("0.125"))
	assert.Equal(t, "0.03", b.PlatformFee.StringFixed(2))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(55000), ToMinorUnits(decimal.RequireFromString("550.00")))
	assert.Equal(t, int64(1999), ToMinorUnits(decimal.RequireFromString("19.99")))
	assert.True(t, FromMinorUnits(55000).Equal(decimal.NewFromInt(550)))
}
