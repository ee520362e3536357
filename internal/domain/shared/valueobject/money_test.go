package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(58.00), USD)

		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(58.00)))
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		require.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyBaseFromFloat(30.00)
	b := NewMoneyBaseFromFloat(28.00)

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, "58.00", sum.StringFixed(2))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.Equal(t, "2.00", diff.StringFixed(2))
	})

	t.Run("mixed currencies rejected", func(t *testing.T) {
		usd, _ := NewMoney(decimal.NewFromInt(1), USD)
		_, err := a.Add(usd)
		require.Error(t, err)
		_, err = a.Subtract(usd)
		require.Error(t, err)
	})

	t.Run("multiply rounds only when asked", func(t *testing.T) {
		m := NewMoneyBaseFromFloat(50.00).Multiply(decimal.NewFromFloat(0.16))
		assert.Equal(t, "8.00", m.Round(MoneyScale).StringFixed(2))
	})
}

func TestMoney_Convert(t *testing.T) {
	t.Run("converts through explicit rate", func(t *testing.T) {
		usd, _ := NewMoney(decimal.NewFromInt(100), USD)
		rate := decimal.RequireFromString("36.5000000000")

		ves, err := usd.Convert(VES, rate)

		require.NoError(t, err)
		assert.Equal(t, VES, ves.Currency())
		assert.Equal(t, "3650.00", ves.StringFixed(2))
	})

	t.Run("same currency is identity", func(t *testing.T) {
		m := NewMoneyBaseFromFloat(10)
		out, err := m.Convert(VES, decimal.NewFromInt(36))
		require.NoError(t, err)
		assert.True(t, out.Equals(m))
	})

	t.Run("rejects non-positive rate", func(t *testing.T) {
		m, _ := NewMoney(decimal.NewFromInt(5), USD)
		_, err := m.Convert(VES, decimal.Zero)
		require.Error(t, err)
	})
}

func TestMoney_IsForeign(t *testing.T) {
	usd, _ := NewMoney(decimal.NewFromInt(1), USD)
	assert.True(t, usd.IsForeign())
	assert.False(t, NewMoneyBaseFromFloat(1).IsForeign())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m, _ := NewMoneyFromString("1234.56", USD)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equals(m))
}
