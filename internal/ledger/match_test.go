package ledger

import (
	"strings"
	"testing"
	"time"

	"tenderbook-backend/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mfsAdvance(id uint, day time.Time, amount int64, ref string) AdvanceRecord {
	return AdvanceRecord{
		ID:               id,
		Date:             day,
		Amount:           amount,
		PaymentMethod:    models.PaymentMethodMfs,
		PaymentReference: ref,
	}
}

func TestFindRecordedCharge_ReferenceWinsOverEverything(t *testing.T) {
	adv := mfsAdvance(1, date(2024, 1, 1), 100000, "TXN1")
	// same reference but wildly different amount and date
	charges := []MfsChargeRecord{
		{ID: 9, Date: date(2022, 6, 30), Amount: 77, Description: "something else", PaymentReference: "TXN1"},
	}

	got, tier := FindRecordedCharge(adv, charges)
	if tier != MatchByReference {
		t.Fatalf("tier = %s, want reference", tier)
	}
	if got == nil || got.ID != 9 {
		t.Fatalf("matched charge = %+v, want ID 9", got)
	}
}

func TestFindRecordedCharge_AmountInDescription(t *testing.T) {
	adv := mfsAdvance(1, date(2024, 1, 1), 100000, "")
	charges := []MfsChargeRecord{
		{ID: 3, Date: date(2024, 3, 9), Amount: 2850, Description: "[MFS CHARGE] Cash out fee for advance of ৳1000.00 to Karim"},
	}

	_, tier := FindRecordedCharge(adv, charges)
	if tier != MatchByAmountInDescription {
		t.Fatalf("tier = %s, want amount_in_description", tier)
	}
}

func TestFindRecordedCharge_DateAndTolerance(t *testing.T) {
	adv := mfsAdvance(1, date(2024, 1, 1), 100000, "")
	// expected fee is 2850; tolerance is < 100 poisha on the same day
	tests := []struct {
		name   string
		charge MfsChargeRecord
		want   MatchTier
	}{
		{
			name:   "exact amount same day",
			charge: MfsChargeRecord{Date: date(2024, 1, 1), Amount: 2850, Description: "fee"},
			want:   MatchByDateAndTolerance,
		},
		{
			name:   "within tolerance",
			charge: MfsChargeRecord{Date: date(2024, 1, 1), Amount: 2949, Description: "fee"},
			want:   MatchByDateAndTolerance,
		},
		{
			name:   "tolerance boundary is exclusive",
			charge: MfsChargeRecord{Date: date(2024, 1, 1), Amount: 2950, Description: "fee"},
			want:   MatchNone,
		},
		{
			name:   "right amount wrong day",
			charge: MfsChargeRecord{Date: date(2024, 1, 2), Amount: 2850, Description: "fee"},
			want:   MatchNone,
		},
		{
			name:   "same day different time still matches",
			charge: MfsChargeRecord{Date: time.Date(2024, 1, 1, 18, 30, 0, 0, time.UTC), Amount: 2850, Description: "fee"},
			want:   MatchByDateAndTolerance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, tier := FindRecordedCharge(adv, []MfsChargeRecord{tt.charge})
			if tier != tt.want {
				t.Errorf("tier = %s, want %s", tier, tt.want)
			}
		})
	}
}

func TestFindImpliedCharges_OnlyMfsAdvances(t *testing.T) {
	advances := []AdvanceRecord{
		mfsAdvance(1, date(2024, 1, 1), 100000, "R1"),
		{ID: 2, Date: date(2024, 1, 2), Amount: 50000, PaymentMethod: models.PaymentMethodCash},
		{ID: 3, Date: date(2024, 1, 3), Amount: 20000, PaymentMethod: models.PaymentMethodBank},
	}

	implied := FindImpliedCharges(advances, nil, "Karim")
	if len(implied) != 1 {
		t.Fatalf("len(implied) = %d, want 1", len(implied))
	}
	ch := implied[0]
	if ch.ID != "implied-1" {
		t.Errorf("ID = %q, want implied-1", ch.ID)
	}
	if ch.Amount != 2850 {
		t.Errorf("Amount = %d, want 2850", ch.Amount)
	}
	if ch.PaymentReference != "R1" {
		t.Errorf("PaymentReference = %q, want R1", ch.PaymentReference)
	}
	if !strings.HasPrefix(ch.Description, models.MfsChargePrefix) {
		t.Errorf("Description %q must start with %q", ch.Description, models.MfsChargePrefix)
	}
	if !strings.Contains(ch.Description, "৳1000.00") {
		t.Errorf("Description %q must embed the glyph-formatted base amount", ch.Description)
	}
	if !strings.Contains(ch.Description, "Karim") {
		t.Errorf("Description %q must mention the scope name", ch.Description)
	}
}

func TestFindImpliedCharges_Idempotent(t *testing.T) {
	advances := []AdvanceRecord{
		mfsAdvance(7, date(2024, 2, 10), 250000, "X9"),
		mfsAdvance(8, date(2024, 2, 11), 40000, ""),
	}

	first := FindImpliedCharges(advances, nil, "Rahim")
	second := FindImpliedCharges(advances, nil, "Rahim")

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID ||
			first[i].Amount != second[i].Amount ||
			first[i].Description != second[i].Description {
			t.Errorf("run %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestFindImpliedCharges_NoResynthesisAfterPromotion(t *testing.T) {
	advances := []AdvanceRecord{mfsAdvance(1, date(2024, 1, 1), 100000, "R1")}

	implied := FindImpliedCharges(advances, nil, "Karim")
	if len(implied) != 1 {
		t.Fatalf("len(implied) = %d, want 1", len(implied))
	}

	// Promoting stores the charge with the same description, date, amount
	// and reference. Feed it back as an existing record.
	promoted := MfsChargeRecord{
		ID:               42,
		Date:             implied[0].Date,
		Amount:           implied[0].Amount,
		Description:      implied[0].Description,
		PaymentReference: implied[0].PaymentReference,
	}

	again := FindImpliedCharges(advances, []MfsChargeRecord{promoted}, "Karim")
	if len(again) != 0 {
		t.Fatalf("len(again) = %d, want 0 (charge already recorded)", len(again))
	}
}

func TestFindImpliedCharges_PromotionWithoutReferenceStillMatches(t *testing.T) {
	// No payment reference: tier 1 cannot fire, tiers 2 and 3 must cover it.
	advances := []AdvanceRecord{mfsAdvance(5, date(2024, 3, 15), 80000, "")}

	implied := FindImpliedCharges(advances, nil, "Salam")
	if len(implied) != 1 {
		t.Fatalf("len(implied) = %d, want 1", len(implied))
	}

	promoted := MfsChargeRecord{
		ID:          7,
		Date:        implied[0].Date,
		Amount:      implied[0].Amount,
		Description: implied[0].Description,
	}

	again := FindImpliedCharges(advances, []MfsChargeRecord{promoted}, "Salam")
	if len(again) != 0 {
		t.Fatalf("len(again) = %d, want 0", len(again))
	}
}

func TestMatchTierString(t *testing.T) {
	tests := []struct {
		tier MatchTier
		want string
	}{
		{MatchNone, "none"},
		{MatchByReference, "reference"},
		{MatchByAmountInDescription, "amount_in_description"},
		{MatchByDateAndTolerance, "date_and_tolerance"},
	}
	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("MatchTier(%d).String() = %q, want %q", tt.tier, got, tt.want)
		}
	}
}
