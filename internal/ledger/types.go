package ledger

import (
	"time"

	"tenderbook-backend/internal/models"
)

// ScopeKind - whose ledger is being materialized
type ScopeKind string

const (
	ScopePerson ScopeKind = "person" // Person record (no login)
	ScopeUser   ScopeKind = "user"   // staff User account
	ScopeVendor ScopeKind = "vendor" // material supplier
)

// Scope - one ledger subject within a tender
type Scope struct {
	Kind     ScopeKind
	TenderID uint
	ID       uint
}

// ScopeIdentity - display info resolved from storage
type ScopeIdentity struct {
	Name          string
	IsUserAccount bool
}

// AdvanceRecord - snapshot of money handed out (person advance, or a
// vendor payment when the scope is a vendor)
type AdvanceRecord struct {
	ID               uint
	Date             time.Time
	Amount           int64 // poisha
	PaymentMethod    models.PaymentMethod
	PaymentReference string
	Purpose          string
	Notes            string
}

// ExpenseRecord - snapshot of spending charged against the scope
// (person expense, or a vendor purchase when the scope is a vendor)
type ExpenseRecord struct {
	ID          uint
	Date        time.Time
	Amount      int64 // poisha
	Description string
	Notes       string
}

// MfsChargeRecord - a recorded MFS cash-out fee (stored as a tagged
// activity expense)
type MfsChargeRecord struct {
	ID               uint
	Date             time.Time
	Amount           int64 // poisha
	Description      string
	PaymentMethod    models.PaymentMethod
	PaymentReference string
	Notes            string
}

// ImpliedMfsCharge - a fee the reconciler believes should exist but that
// has not been persisted yet. ID is deterministic ("implied-<advanceID>")
// so re-renders and already-accounted checks stay stable.
type ImpliedMfsCharge struct {
	ID               string
	AdvanceID        uint
	Date             time.Time
	Amount           int64 // poisha
	Description      string
	PaymentReference string
	Notes            string
}

// TxKind - materialized transaction kind
type TxKind string

const (
	TxAdvance   TxKind = "advance"
	TxExpense   TxKind = "expense"
	TxMfsCharge TxKind = "mfs_charge"
)

// Transaction - one row of the materialized ledger. RunningBalance is the
// balance after this transaction's own effect on the ascending pass.
type Transaction struct {
	ID               string
	Date             time.Time
	Kind             TxKind
	Amount           int64 // poisha
	Description      string
	Notes            string
	PaymentMethod    models.PaymentMethod
	PaymentReference string
	IsImplied        bool
	RunningBalance   int64 // poisha
}

// Stats - dual accounting over one scope. Balance is what the scope
// holder owes back (advances minus expenses); ActualCost is what the
// business actually paid out (advances plus MFS fees). The two must
// never be collapsed into one number.
type Stats struct {
	TotalAdvances   int64
	TotalExpenses   int64
	TotalMfsCharges int64
	Balance         int64
	ActualCost      int64
}

// Ledger - materialization result; Transactions are newest-first
type Ledger struct {
	Transactions []Transaction
	Stats        Stats
}
