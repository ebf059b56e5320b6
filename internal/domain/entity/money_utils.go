package entity

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/amirhossein-jamali/farm-storefront/internal/domain/error"
	"github.com/shopspring/decimal"
)

// All money in the storefront is held as int64 yen. Yen has no minor unit, so the
// integer value is the amount itself.

// AmountTolerance is the largest client/server total difference still accepted as rounding noise
const AmountTolerance int64 = 1

// CalculateTax returns floor(amount * rate) using exact decimal arithmetic
func CalculateTax(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Floor().IntPart()
}

// ParseTaxRate parses a decimal tax rate such as "0.08" and rejects values outside [0, 1)
func ParseTaxRate(rate string) (decimal.Decimal, error) {
	rate = strings.TrimSpace(rate)
	if rate == "" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: tax rate %q: %s", errs.ErrInvalidRequest, rate, err.Error())
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%w: tax rate %s out of range", errs.ErrInvalidRequest, d.String())
	}
	return d, nil
}

// ParseYenAmount parses a whole-yen amount. Thousands separators and a leading ¥ are accepted.
func ParseYenAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	amount = strings.TrimPrefix(amount, "¥")
	amount = strings.ReplaceAll(amount, ",", "")
	if amount == "" {
		return 0, fmt.Errorf("%w: empty amount", errs.ErrInvalidRequest)
	}
	if strings.HasPrefix(amount, "-") {
		return 0, fmt.Errorf("%w: negative amount", errs.ErrInvalidRequest)
	}

	value, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err.Error())
	}
	return value, nil
}

// FormatYen renders an amount the way it appears in e-mails, e.g. 3132 -> "¥3,132"
func FormatYen(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "¥" + b.String()
}

// AbsDiff returns |a - b|
func AbsDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
