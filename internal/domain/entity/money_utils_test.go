package entity

import (
	"testing"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTax(t *testing.T) {
	testCases := []struct {
		name     string
		amount   int64
		rate     string
		expected int64
	}{
		{"food rate", 600, "0.08", 48},
		{"floors fractions", 299, "0.08", 23},
		{"standard rate", 500, "0.10", 50},
		{"zero rate", 1000, "0", 0},
		{"zero amount", 0, "0.08", 0},
		// 0.1 has no exact float representation; decimal keeps it exact.
		{"exact decimal", 2900, "0.1", 290},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CalculateTax(tc.amount, decimal.RequireFromString(tc.rate)))
		})
	}
}

func TestParseTaxRate(t *testing.T) {
	t.Run("Valid rates", func(t *testing.T) {
		rate, err := ParseTaxRate("0.08")
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.RequireFromString("0.08")))

		rate, err = ParseTaxRate("")
		require.NoError(t, err)
		assert.True(t, rate.IsZero())
	})

	t.Run("Invalid rates", func(t *testing.T) {
		for _, input := range []string{"abc", "-0.1", "1", "1.5"} {
			t.Run(input, func(t *testing.T) {
				_, err := ParseTaxRate(input)
				assert.ErrorIs(t, err, errs.ErrInvalidRequest)
			})
		}
	})
}

func TestParseYenAmount(t *testing.T) {
	t.Run("Valid amounts", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected int64
		}{
			{"3132", 3132},
			{"¥3,132", 3132},
			{" 0 ", 0},
			{"1,000,000", 1000000},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				value, err := ParseYenAmount(tc.input)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, value)
			})
		}
	})

	t.Run("Invalid amounts", func(t *testing.T) {
		for _, input := range []string{"", "-5", "12.5", "abc"} {
			t.Run(input, func(t *testing.T) {
				_, err := ParseYenAmount(input)
				assert.ErrorIs(t, err, errs.ErrInvalidRequest)
			})
		}
	})
}

func TestFormatYen(t *testing.T) {
	assert.Equal(t, "¥0", FormatYen(0))
	assert.Equal(t, "¥648", FormatYen(648))
	assert.Equal(t, "¥3,132", FormatYen(3132))
	assert.Equal(t, "¥1,000,000", FormatYen(1000000))
	assert.Equal(t, "-¥1,500", FormatYen(-1500))
}

func TestAbsDiff(t *testing.T) {
	assert.Equal(t, int64(2), AbsDiff(3132, 3130))
	assert.Equal(t, int64(2), AbsDiff(3130, 3132))
	assert.Equal(t, int64(0), AbsDiff(5, 5))
}
