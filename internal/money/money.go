package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Amounts are stored everywhere as int64 poisha (1 taka = 100 poisha).
// Decimal/taka values only appear at the API and formatting boundaries.

var ErrInvalidAmount = errors.New("invalid amount")

// TakaGlyph precedes formatted amounts in user-facing text, including the
// MFS charge descriptions the matcher searches for.
const TakaGlyph = "৳"

// FromTaka converts a user-entered taka value (e.g. 1234.56) to poisha.
func FromTaka(taka float64) (int64, error) {
	if math.IsNaN(taka) || math.IsInf(taka, 0) {
		return 0, ErrInvalidAmount
	}
	if taka < 0 {
		return 0, ErrInvalidAmount
	}
	// int64 max ~9.2e18 poisha => taka max ~9e16
	if taka > 9e16 {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	return decimal.NewFromFloat(taka).Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// ToDecimal returns the taka value of a poisha amount.
func ToDecimal(poisha int64) decimal.Decimal {
	return decimal.NewFromInt(poisha).Div(decimal.NewFromInt(100))
}

// FromDecimal converts a taka decimal to poisha, rounding half up.
func FromDecimal(taka decimal.Decimal) int64 {
	return taka.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Format renders poisha as a plain two-decimal taka string: "1234.56".
func Format(poisha int64) string {
	sign := ""
	if poisha < 0 {
		sign = "-"
		poisha = -poisha
	}
	return fmt.Sprintf("%s%d.%02d", sign, poisha/100, poisha%100)
}

// FormatTaka renders poisha with the currency glyph: "৳1234.56".
func FormatTaka(poisha int64) string {
	return TakaGlyph + Format(poisha)
}
