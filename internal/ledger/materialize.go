package ledger

import (
	"fmt"
	"sort"
)

// MaterializeLedger merges advances, expenses and MFS charges (recorded
// and implied) into one balance-annotated transaction list, newest first.
//
// Balance semantics are defined on the ascending pass: advances add,
// expenses subtract, MFS charges leave the balance untouched (the fee is
// the operator's own cost, not the scope holder's debt). The list is
// reversed for display only after every row is annotated.
func MaterializeLedger(advances []AdvanceRecord, expenses []ExpenseRecord, charges []MfsChargeRecord, implied []ImpliedMfsCharge) Ledger {
	txs := make([]Transaction, 0, len(advances)+len(expenses)+len(charges)+len(implied))

	for _, a := range advances {
		txs = append(txs, Transaction{
			ID:               fmt.Sprintf("advance-%d", a.ID),
			Date:             a.Date,
			Kind:             TxAdvance,
			Amount:           a.Amount,
			Description:      a.Purpose,
			Notes:            a.Notes,
			PaymentMethod:    a.PaymentMethod,
			PaymentReference: a.PaymentReference,
		})
	}
	for _, e := range expenses {
		txs = append(txs, Transaction{
			ID:          fmt.Sprintf("expense-%d", e.ID),
			Date:        e.Date,
			Kind:        TxExpense,
			Amount:      e.Amount,
			Description: e.Description,
			Notes:       e.Notes,
		})
	}
	for _, ch := range charges {
		txs = append(txs, Transaction{
			ID:               fmt.Sprintf("charge-%d", ch.ID),
			Date:             ch.Date,
			Kind:             TxMfsCharge,
			Amount:           ch.Amount,
			Description:      ch.Description,
			Notes:            ch.Notes,
			PaymentMethod:    ch.PaymentMethod,
			PaymentReference: ch.PaymentReference,
		})
	}
	for _, ch := range implied {
		txs = append(txs, Transaction{
			ID:               ch.ID,
			Date:             ch.Date,
			Kind:             TxMfsCharge,
			Amount:           ch.Amount,
			Description:      ch.Description,
			Notes:            ch.Notes,
			PaymentReference: ch.PaymentReference,
			IsImplied:        true,
		})
	}

	// Stable sort keeps insertion order on same-day ties.
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})

	var stats Stats
	var balance int64
	for i := range txs {
		switch txs[i].Kind {
		case TxAdvance:
			balance += txs[i].Amount
			stats.TotalAdvances += txs[i].Amount
		case TxExpense:
			balance -= txs[i].Amount
			stats.TotalExpenses += txs[i].Amount
		case TxMfsCharge:
			stats.TotalMfsCharges += txs[i].Amount
		}
		txs[i].RunningBalance = balance
	}

	stats.Balance = stats.TotalAdvances - stats.TotalExpenses
	stats.ActualCost = stats.TotalAdvances + stats.TotalMfsCharges

	// Newest first for display. Balances were fixed on the ascending pass
	// and must not be recomputed here.
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}

	return Ledger{Transactions: txs, Stats: stats}
}
