package ledger

import (
	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"

	"github.com/shopspring/decimal"
)

// MFS cash-out fee: 1.85% of the base amount plus a flat ৳10. The
// constants live here and nowhere else.
var (
	mfsFeeRate  = decimal.RequireFromString("0.0185")
	mfsFixedFee = decimal.NewFromInt(1000) // poisha (৳10)
)

// ComputeMfsCharge returns the fee in poisha for sending basePoisha over
// an MFS channel. Rounding (half up) is applied exactly once, on the
// final figure.
func ComputeMfsCharge(basePoisha int64) (int64, error) {
	if basePoisha < 0 {
		return 0, money.ErrInvalidAmount
	}
	fee := decimal.NewFromInt(basePoisha).Mul(mfsFeeRate).Add(mfsFixedFee)
	return fee.Round(0).IntPart(), nil
}

// ChargeForMethod returns the fee for a payment; only MFS payments carry
// a fee, everything else is free.
func ChargeForMethod(basePoisha int64, method models.PaymentMethod) (int64, error) {
	if basePoisha < 0 {
		return 0, money.ErrInvalidAmount
	}
	if method != models.PaymentMethodMfs {
		return 0, nil
	}
	return ComputeMfsCharge(basePoisha)
}

// ComputeTotalWithCharge returns the fee and the grand total the operator
// pays for one transfer.
func ComputeTotalWithCharge(basePoisha int64, method models.PaymentMethod) (charge int64, total int64, err error) {
	charge, err = ChargeForMethod(basePoisha, method)
	if err != nil {
		return 0, 0, err
	}
	return charge, basePoisha + charge, nil
}
