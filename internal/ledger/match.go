package ledger

import (
	"fmt"
	"strings"
	"time"

	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"
)

// Charge matching runs three tiers in a fixed order; the first tier that
// hits wins and the others are never consulted. The ordering is part of
// the contract, not an accident: a payment reference is authoritative,
// the description amount is the recording convention, and the
// date+tolerance tier is the last-resort heuristic.

// MatchTier - which tier matched, for observability
type MatchTier int

const (
	MatchNone MatchTier = iota
	MatchByReference
	MatchByAmountInDescription
	MatchByDateAndTolerance
)

func (t MatchTier) String() string {
	switch t {
	case MatchByReference:
		return "reference"
	case MatchByAmountInDescription:
		return "amount_in_description"
	case MatchByDateAndTolerance:
		return "date_and_tolerance"
	default:
		return "none"
	}
}

// amountTolerance - tier 3 accepts a recorded fee within ৳1 of the
// freshly computed expectation.
const amountTolerance = 100 // poisha

// matchesByReference: identical non-empty payment reference.
func matchesByReference(adv AdvanceRecord, charge MfsChargeRecord) bool {
	return adv.PaymentReference != "" && charge.PaymentReference == adv.PaymentReference
}

// matchesByAmountInDescription: the charge description mentions the
// advance's base amount, glyph-prefixed and formatted to two decimals.
// Fragile by nature but it is how charges were recorded historically.
func matchesByAmountInDescription(adv AdvanceRecord, charge MfsChargeRecord) bool {
	return strings.Contains(charge.Description, money.FormatTaka(adv.Amount))
}

// matchesByDateAndTolerance: same calendar day and the recorded amount is
// within amountTolerance of the expected fee for the advance.
func matchesByDateAndTolerance(adv AdvanceRecord, charge MfsChargeRecord) bool {
	if !sameDay(adv.Date, charge.Date) {
		return false
	}
	expected, err := ComputeMfsCharge(adv.Amount)
	if err != nil {
		return false
	}
	diff := charge.Amount - expected
	if diff < 0 {
		diff = -diff
	}
	return diff < amountTolerance
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FindRecordedCharge decides whether a fee for this advance has already
// been persisted, and reports which tier matched.
func FindRecordedCharge(adv AdvanceRecord, charges []MfsChargeRecord) (*MfsChargeRecord, MatchTier) {
	for i := range charges {
		if matchesByReference(adv, charges[i]) {
			return &charges[i], MatchByReference
		}
	}
	for i := range charges {
		if matchesByAmountInDescription(adv, charges[i]) {
			return &charges[i], MatchByAmountInDescription
		}
	}
	for i := range charges {
		if matchesByDateAndTolerance(adv, charges[i]) {
			return &charges[i], MatchByDateAndTolerance
		}
	}
	return nil, MatchNone
}

// ChargeDescription builds the canonical MFS fee description. It embeds
// both the glyph-formatted base amount and the scope name, so that a
// recorded charge is found again by the amount-in-description tier AND
// by the store's name-substring filter.
func ChargeDescription(basePoisha int64, scopeName string) string {
	return fmt.Sprintf("%s Cash out fee for advance of %s to %s",
		models.MfsChargePrefix, money.FormatTaka(basePoisha), scopeName)
}

// FindImpliedCharges synthesizes one implied fee for every MFS-paid
// advance that has no recorded charge. Pure and deterministic: the same
// inputs always produce the same implied set, including IDs.
func FindImpliedCharges(advances []AdvanceRecord, existing []MfsChargeRecord, scopeName string) []ImpliedMfsCharge {
	implied := make([]ImpliedMfsCharge, 0)
	for _, adv := range advances {
		if adv.PaymentMethod != models.PaymentMethodMfs {
			continue
		}
		if _, tier := FindRecordedCharge(adv, existing); tier != MatchNone {
			continue
		}
		fee, err := ComputeMfsCharge(adv.Amount)
		if err != nil {
			// negative amounts cannot come out of storage; skip rather than guess
			continue
		}
		implied = append(implied, ImpliedMfsCharge{
			ID:               fmt.Sprintf("implied-%d", adv.ID),
			AdvanceID:        adv.ID,
			Date:             adv.Date,
			Amount:           fee,
			Description:      ChargeDescription(adv.Amount, scopeName),
			PaymentReference: adv.PaymentReference,
			Notes:            fmt.Sprintf("Auto-computed from advance #%d, not yet saved", adv.ID),
		})
	}
	return implied
}
