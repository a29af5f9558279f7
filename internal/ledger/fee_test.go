package ledger

import (
	"errors"
	"testing"

	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"
)

func TestComputeMfsCharge(t *testing.T) {
	tests := []struct {
		name string
		base int64 // poisha
		want int64 // poisha
	}{
		{name: "1000 taka", base: 100000, want: 2850},    // 18.50 + 10.00
		{name: "zero", base: 0, want: 1000},              // flat fee only
		{name: "500 taka", base: 50000, want: 1925},      // 9.25 + 10.00
		{name: "100 taka", base: 10000, want: 1185},      // 1.85 + 10.00
		{name: "rounds half up", base: 1000, want: 1019}, // 18.5 poisha -> 19
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeMfsCharge(tt.base)
			if err != nil {
				t.Fatalf("ComputeMfsCharge(%d) unexpected error: %v", tt.base, err)
			}
			if got != tt.want {
				t.Errorf("ComputeMfsCharge(%d) = %d, want %d", tt.base, got, tt.want)
			}
		})
	}
}

func TestComputeMfsCharge_NegativeAmount(t *testing.T) {
	_, err := ComputeMfsCharge(-1)
	if !errors.Is(err, money.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestChargeForMethod(t *testing.T) {
	tests := []struct {
		name   string
		method models.PaymentMethod
		want   int64
	}{
		{name: "mfs carries fee", method: models.PaymentMethodMfs, want: 2850},
		{name: "cash is free", method: models.PaymentMethodCash, want: 0},
		{name: "bank is free", method: models.PaymentMethodBank, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChargeForMethod(100000, tt.method)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ChargeForMethod(100000, %s) = %d, want %d", tt.method, got, tt.want)
			}
		})
	}
}

func TestComputeTotalWithCharge(t *testing.T) {
	charge, total, err := ComputeTotalWithCharge(100000, models.PaymentMethodMfs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charge != 2850 {
		t.Errorf("charge = %d, want 2850", charge)
	}
	if total != 102850 {
		t.Errorf("total = %d, want 102850", total)
	}

	charge, total, err = ComputeTotalWithCharge(100000, models.PaymentMethodCash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charge != 0 || total != 100000 {
		t.Errorf("cash: charge = %d total = %d, want 0 and 100000", charge, total)
	}
}
