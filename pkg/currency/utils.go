package currency

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// ParseBRLToCents converts a decimal BRL amount ("150.00") into integer
// cents. Amounts with more than two decimal places or non-positive values
// are rejected.
func ParseBRLToCents(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, domain.ErrInvalidAmount
	}
	cents := d.Mul(hundred)
	if !cents.IsInteger() {
		return 0, domain.ErrInvalidAmount
	}
	if !cents.IsPositive() {
		return 0, domain.ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// CentsToBRL formats integer cents as a two-decimal BRL string.
func CentsToBRL(cents int64) string {
	return decimal.NewFromInt(cents).Div(hundred).StringFixed(2)
}

// FormatBRL renders cents for user-facing messages.
func FormatBRL(cents int64) string {
	return fmt.Sprintf("R$ %s", CentsToBRL(cents))
}

// PercentOf computes pct% of cents, rounded half to even the way the bank
// ledger expects.
func PercentOf(cents int64, pct float64) int64 {
	return decimal.NewFromInt(cents).
		Mul(decimal.NewFromFloat(pct)).
		Div(hundred).
		RoundBank(0).
		IntPart()
}

// CashInNet returns the net credit for a deposit after the percent fee.
func CashInNet(amountCents int64, feePercent float64) int64 {
	return amountCents - PercentOf(amountCents, feePercent)
}

// CashOutFee returns the fee for a withdrawal: percent plus fixed component.
func CashOutFee(amountCents int64, feePercent float64, fixedCents int64) int64 {
	return PercentOf(amountCents, feePercent) + fixedCents
}
