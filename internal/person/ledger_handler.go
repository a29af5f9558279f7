package person

import (
	"fmt"

	"tenderbook-backend/internal/ledger"
	"tenderbook-backend/internal/money"

	"github.com/gofiber/fiber/v2"
)

type TransactionResponse struct {
	ID               string `json:"id"`
	Date             string `json:"date"`
	Kind             string `json:"kind"`
	Amount           string `json:"amount"`
	Description      string `json:"description"`
	Notes            string `json:"notes"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
	IsImplied        bool   `json:"is_implied"`
	RunningBalance   string `json:"running_balance"`
}

type LedgerStatsResponse struct {
	TotalAdvances   string `json:"total_advances"`
	TotalExpenses   string `json:"total_expenses"`
	TotalMfsCharges string `json:"total_mfs_charges"`
	Balance         string `json:"balance"`
	ActualCost      string `json:"actual_cost"`
}

type LedgerResponse struct {
	ScopeKind     string                `json:"scope_kind"`
	ScopeID       uint                  `json:"scope_id"`
	ScopeName     string                `json:"scope_name"`
	IsUserAccount bool                  `json:"is_user_account"`
	Transactions  []TransactionResponse `json:"transactions"`
	Stats         LedgerStatsResponse   `json:"stats"`
	ImpliedCount  int                   `json:"implied_count"`
}

type PromoteChargeRequest struct {
	AdvanceID uint `json:"advance_id"`
}

func LedgerTransactionsToResponse(txs []ledger.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionResponse{
			ID:               tx.ID,
			Date:             tx.Date.Format("2006-01-02"),
			Kind:             string(tx.Kind),
			Amount:           money.Format(tx.Amount),
			Description:      tx.Description,
			Notes:            tx.Notes,
			PaymentMethod:    string(tx.PaymentMethod),
			PaymentReference: tx.PaymentReference,
			IsImplied:        tx.IsImplied,
			RunningBalance:   money.Format(tx.RunningBalance),
		})
	}
	return out
}

func LedgerStatsToResponse(s ledger.Stats) LedgerStatsResponse {
	return LedgerStatsResponse{
		TotalAdvances:   money.Format(s.TotalAdvances),
		TotalExpenses:   money.Format(s.TotalExpenses),
		TotalMfsCharges: money.Format(s.TotalMfsCharges),
		Balance:         money.Format(s.Balance),
		ActualCost:      money.Format(s.ActualCost),
	}
}

func scopeFromParams(c *fiber.Ctx, tenderID uint) (ledger.Scope, error) {
	var kind ledger.ScopeKind
	switch c.Params("kind") {
	case "person":
		kind = ledger.ScopePerson
	case "user":
		kind = ledger.ScopeUser
	default:
		return ledger.Scope{}, fiber.NewError(fiber.StatusBadRequest, "kind must be person or user")
	}

	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return ledger.Scope{}, fiber.NewError(fiber.StatusBadRequest, "invalid scope id")
	}

	return ledger.Scope{Kind: kind, TenderID: tenderID, ID: id}, nil
}

// loadLedgerInputs fetches everything materialization needs. Any failure
// aborts the whole load; we never materialize over partial data.
func loadLedgerInputs(scope ledger.Scope) (ledger.ScopeIdentity, []ledger.AdvanceRecord, []ledger.ExpenseRecord, []ledger.MfsChargeRecord, error) {
	identity, err := ledger.FetchScopeIdentity(scope)
	if err != nil {
		return ledger.ScopeIdentity{}, nil, nil, nil, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	advances, err := ledger.FetchAdvances(scope)
	if err != nil {
		return ledger.ScopeIdentity{}, nil, nil, nil, fiber.NewError(fiber.StatusInternalServerError, "Could not load advances")
	}
	expenses, err := ledger.FetchExpenses(scope)
	if err != nil {
		return ledger.ScopeIdentity{}, nil, nil, nil, fiber.NewError(fiber.StatusInternalServerError, "Could not load expenses")
	}
	charges, err := ledger.FetchMfsCharges(scope.TenderID, identity.Name)
	if err != nil {
		return ledger.ScopeIdentity{}, nil, nil, nil, fiber.NewError(fiber.StatusInternalServerError, "Could not load MFS charges")
	}
	return identity, advances, expenses, charges, nil
}

// GET /api/ledger/:kind/:id?tender_id=...
// kind is "person" or "user"
func GetLedgerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		scope, err := scopeFromParams(c, tenderID)
		if err != nil {
			return err
		}

		identity, advances, expenses, charges, err := loadLedgerInputs(scope)
		if err != nil {
			return err
		}

		implied := ledger.FindImpliedCharges(advances, charges, identity.Name)
		led := ledger.MaterializeLedger(advances, expenses, charges, implied)

		return c.JSON(LedgerResponse{
			ScopeKind:     string(scope.Kind),
			ScopeID:       scope.ID,
			ScopeName:     identity.Name,
			IsUserAccount: identity.IsUserAccount,
			Transactions:  LedgerTransactionsToResponse(led.Transactions),
			Stats:         LedgerStatsToResponse(led.Stats),
			ImpliedCount:  len(implied),
		})
	}
}

// POST /api/ledger/:kind/:id/mfs-charges/promote
// Recomputes the implied set server-side and promotes the one belonging
// to the given advance. Client-sent amounts are never trusted.
func PromoteImpliedChargeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		scope, err := scopeFromParams(c, tenderID)
		if err != nil {
			return err
		}

		var body PromoteChargeRequest
		if err := c.BodyParser(&body); err != nil || body.AdvanceID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "advance_id is required")
		}

		identity, advances, _, charges, err := loadLedgerInputs(scope)
		if err != nil {
			return err
		}

		implied := ledger.FindImpliedCharges(advances, charges, identity.Name)
		for _, ch := range implied {
			if ch.AdvanceID != body.AdvanceID {
				continue
			}
			if err := ledger.PromoteImpliedCharge(tenderID, ch); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not save MFS charge")
			}
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"id":     ch.ID,
				"amount": money.Format(ch.Amount),
				"status": "promoted",
			})
		}

		return fiber.NewError(fiber.StatusNotFound, "No implied charge for this advance (it may already be recorded)")
	}
}

// POST /api/ledger/:kind/:id/mfs-charges/promote-all
func PromoteAllImpliedHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		scope, err := scopeFromParams(c, tenderID)
		if err != nil {
			return err
		}

		identity, advances, _, charges, err := loadLedgerInputs(scope)
		if err != nil {
			return err
		}

		implied := ledger.FindImpliedCharges(advances, charges, identity.Name)
		result := ledger.PromoteAllImplied(tenderID, implied)

		status := fiber.StatusCreated
		if len(result.Failed) > 0 {
			// partial batch failure: tell the caller exactly what made it
			status = fiber.StatusMultiStatus
		}
		return c.Status(status).JSON(result)
	}
}
