package ledger

import (
	"strings"
	"testing"

	"tenderbook-backend/internal/models"
)

// A promoted charge must carry both markers: the description prefix (the
// historical contract the matcher and list filters rely on) and the
// record_kind column. If these ever disagree, resynthesis checks and the
// activity list filter drift apart.
func TestImpliedToActivityExpense_PrefixAndKindAgree(t *testing.T) {
	advances := []AdvanceRecord{
		mfsAdvance(3, date(2024, 4, 1), 100000, "TXN3"),
	}
	implied := FindImpliedCharges(advances, nil, "Karim")
	if len(implied) != 1 {
		t.Fatalf("len(implied) = %d, want 1", len(implied))
	}

	row := impliedToActivityExpense(42, implied[0])

	if !strings.HasPrefix(row.Description, models.MfsChargePrefix) {
		t.Errorf("Description %q must start with %q", row.Description, models.MfsChargePrefix)
	}
	if row.RecordKind != models.ActivityKindMfsCharge {
		t.Errorf("RecordKind = %q, want %q", row.RecordKind, models.ActivityKindMfsCharge)
	}
	if row.TenderID != 42 {
		t.Errorf("TenderID = %d, want 42", row.TenderID)
	}
	if row.PaymentMethod != models.PaymentMethodMfs {
		t.Errorf("PaymentMethod = %q, want mfs", row.PaymentMethod)
	}
	if row.Amount != implied[0].Amount {
		t.Errorf("Amount = %d, want %d", row.Amount, implied[0].Amount)
	}
}
