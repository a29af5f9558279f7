package ledger

import (
	"testing"
	"time"

	"tenderbook-backend/internal/models"
)

func TestMaterializeLedger_RunningBalance(t *testing.T) {
	// Ascending: Advance(500), Expense(200), MfsCharge(19.25), Advance(100)
	advances := []AdvanceRecord{
		{ID: 1, Date: date(2024, 1, 1), Amount: 50000, PaymentMethod: models.PaymentMethodCash},
		{ID: 2, Date: date(2024, 1, 4), Amount: 10000, PaymentMethod: models.PaymentMethodCash},
	}
	expenses := []ExpenseRecord{
		{ID: 1, Date: date(2024, 1, 2), Amount: 20000, Description: "cement"},
	}
	charges := []MfsChargeRecord{
		{ID: 1, Date: date(2024, 1, 3), Amount: 1925, Description: "[MFS CHARGE] fee"},
	}

	led := MaterializeLedger(advances, expenses, charges, nil)

	if len(led.Transactions) != 4 {
		t.Fatalf("len(transactions) = %d, want 4", len(led.Transactions))
	}

	// Displayed newest first; ascending balances are [500, 300, 300, 400]
	wantAsc := []int64{50000, 30000, 30000, 40000}
	for i := range wantAsc {
		tx := led.Transactions[len(led.Transactions)-1-i]
		if tx.RunningBalance != wantAsc[i] {
			t.Errorf("ascending position %d: balance = %d, want %d", i, tx.RunningBalance, wantAsc[i])
		}
	}

	// The MFS charge carries the prior transaction's balance
	if led.Transactions[1].Kind != TxMfsCharge {
		t.Fatalf("expected mfs_charge second-newest, got %s", led.Transactions[1].Kind)
	}
	if led.Transactions[1].RunningBalance != 30000 {
		t.Errorf("mfs charge balance = %d, want 30000", led.Transactions[1].RunningBalance)
	}
}

func TestMaterializeLedger_Stats(t *testing.T) {
	// one advance of 500, one expense of 200, one MFS charge of 19.25
	led := MaterializeLedger(
		[]AdvanceRecord{{ID: 1, Date: date(2024, 1, 1), Amount: 50000}},
		[]ExpenseRecord{{ID: 1, Date: date(2024, 1, 2), Amount: 20000}},
		[]MfsChargeRecord{{ID: 1, Date: date(2024, 1, 1), Amount: 1925}},
		nil,
	)

	if led.Stats.TotalAdvances != 50000 {
		t.Errorf("TotalAdvances = %d, want 50000", led.Stats.TotalAdvances)
	}
	if led.Stats.TotalExpenses != 20000 {
		t.Errorf("TotalExpenses = %d, want 20000", led.Stats.TotalExpenses)
	}
	if led.Stats.TotalMfsCharges != 1925 {
		t.Errorf("TotalMfsCharges = %d, want 1925", led.Stats.TotalMfsCharges)
	}
	// what the person owes: 300; what it actually cost: 519.25
	if led.Stats.Balance != 30000 {
		t.Errorf("Balance = %d, want 30000", led.Stats.Balance)
	}
	if led.Stats.ActualCost != 51925 {
		t.Errorf("ActualCost = %d, want 51925", led.Stats.ActualCost)
	}
}

func TestMaterializeLedger_NewestFirstKeepsAscendingBalances(t *testing.T) {
	advances := []AdvanceRecord{
		{ID: 1, Date: date(2024, 1, 1), Amount: 10000},
		{ID: 2, Date: date(2024, 1, 3), Amount: 5000},
	}
	expenses := []ExpenseRecord{
		{ID: 1, Date: date(2024, 1, 2), Amount: 4000},
	}

	led := MaterializeLedger(advances, expenses, nil, nil)

	// newest first: advance-2 (110), expense-1 (60), advance-1 (100)
	wantIDs := []string{"advance-2", "expense-1", "advance-1"}
	wantBalances := []int64{11000, 6000, 10000}
	for i := range wantIDs {
		if led.Transactions[i].ID != wantIDs[i] {
			t.Errorf("position %d: ID = %s, want %s", i, led.Transactions[i].ID, wantIDs[i])
		}
		if led.Transactions[i].RunningBalance != wantBalances[i] {
			t.Errorf("position %d: balance = %d, want %d", i, led.Transactions[i].RunningBalance, wantBalances[i])
		}
	}
}

func TestMaterializeLedger_StableSortOnSameDay(t *testing.T) {
	day := date(2024, 5, 5)
	advances := []AdvanceRecord{{ID: 1, Date: day, Amount: 1000}}
	expenses := []ExpenseRecord{{ID: 1, Date: day, Amount: 500}}
	charges := []MfsChargeRecord{{ID: 1, Date: day, Amount: 100}}

	led := MaterializeLedger(advances, expenses, charges, nil)

	// Insertion order (advances, expenses, charges) survives the tie;
	// displayed order is its reverse.
	wantNewestFirst := []string{"charge-1", "expense-1", "advance-1"}
	for i, want := range wantNewestFirst {
		if led.Transactions[i].ID != want {
			t.Errorf("position %d: ID = %s, want %s", i, led.Transactions[i].ID, want)
		}
	}
}

func TestMaterializeLedger_ImpliedChargesDoNotTouchBalance(t *testing.T) {
	advances := []AdvanceRecord{
		{ID: 1, Date: date(2024, 1, 1), Amount: 100000, PaymentMethod: models.PaymentMethodMfs, PaymentReference: "R1"},
	}
	implied := FindImpliedCharges(advances, nil, "Karim")

	led := MaterializeLedger(advances, nil, nil, implied)

	if len(led.Transactions) != 2 {
		t.Fatalf("len(transactions) = %d, want 2", len(led.Transactions))
	}
	for _, tx := range led.Transactions {
		if tx.RunningBalance != 100000 {
			t.Errorf("tx %s: balance = %d, want 100000", tx.ID, tx.RunningBalance)
		}
	}

	var impliedTx *Transaction
	for i := range led.Transactions {
		if led.Transactions[i].IsImplied {
			impliedTx = &led.Transactions[i]
		}
	}
	if impliedTx == nil {
		t.Fatal("no implied transaction in ledger")
	}
	if impliedTx.ID != "implied-1" {
		t.Errorf("implied tx ID = %s, want implied-1", impliedTx.ID)
	}
	if led.Stats.ActualCost != 102850 {
		t.Errorf("ActualCost = %d, want 102850", led.Stats.ActualCost)
	}
	if led.Stats.Balance != 100000 {
		t.Errorf("Balance = %d, want 100000", led.Stats.Balance)
	}
}

func TestMaterializeLedger_Empty(t *testing.T) {
	led := MaterializeLedger(nil, nil, nil, nil)
	if len(led.Transactions) != 0 {
		t.Errorf("len(transactions) = %d, want 0", len(led.Transactions))
	}
	if led.Stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", led.Stats)
	}
}

// End to end: one MFS advance, no recorded charges -> one implied charge;
// after promotion the implied list is empty on the next run.
func TestEndToEndImpliedChargeLifecycle(t *testing.T) {
	advances := []AdvanceRecord{
		{ID: 11, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 100000,
			PaymentMethod: models.PaymentMethodMfs, PaymentReference: "R1"},
	}

	implied := FindImpliedCharges(advances, nil, "Jamal")
	if len(implied) != 1 {
		t.Fatalf("len(implied) = %d, want 1", len(implied))
	}
	if implied[0].Amount != 2850 {
		t.Errorf("implied amount = %d, want 2850 (৳28.50)", implied[0].Amount)
	}

	led := MaterializeLedger(advances, nil, nil, implied)
	foundImplied := false
	for _, tx := range led.Transactions {
		if tx.IsImplied {
			foundImplied = true
		}
	}
	if !foundImplied {
		t.Error("materialized ledger should carry the implied charge")
	}

	// promote: the saved row keeps date, amount, description, reference
	saved := MfsChargeRecord{
		ID:               1,
		Date:             implied[0].Date,
		Amount:           implied[0].Amount,
		Description:      implied[0].Description,
		PaymentReference: implied[0].PaymentReference,
	}
	after := FindImpliedCharges(advances, []MfsChargeRecord{saved}, "Jamal")
	if len(after) != 0 {
		t.Fatalf("after promotion len(implied) = %d, want 0", len(after))
	}
}
