package ledger

import (
	"fmt"

	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/models"
)

// Storage bridge between the pure ledger algorithms and the GORM models.
// Every fetch returns plain snapshots; nothing here mutates the rows it
// reads. On any fetch error the caller must abandon the whole scope load
// instead of materializing over partial data.

// FetchScopeIdentity resolves the display name for a scope.
func FetchScopeIdentity(scope Scope) (ScopeIdentity, error) {
	switch scope.Kind {
	case ScopePerson:
		var p models.Person
		if err := database.DB.First(&p, "id = ? AND tender_id = ?", scope.ID, scope.TenderID).Error; err != nil {
			return ScopeIdentity{}, fmt.Errorf("person not found: %w", err)
		}
		return ScopeIdentity{Name: p.Name}, nil
	case ScopeUser:
		var u models.User
		if err := database.DB.First(&u, "id = ?", scope.ID).Error; err != nil {
			return ScopeIdentity{}, fmt.Errorf("user not found: %w", err)
		}
		return ScopeIdentity{Name: u.Name, IsUserAccount: true}, nil
	case ScopeVendor:
		var v models.Vendor
		if err := database.DB.First(&v, "id = ? AND tender_id = ?", scope.ID, scope.TenderID).Error; err != nil {
			return ScopeIdentity{}, fmt.Errorf("vendor not found: %w", err)
		}
		return ScopeIdentity{Name: v.Name}, nil
	default:
		return ScopeIdentity{}, fmt.Errorf("unknown scope kind: %s", scope.Kind)
	}
}

// FetchAdvances returns money-out records for the scope. For vendors the
// ledger's "advance" side is the payments made to the vendor.
func FetchAdvances(scope Scope) ([]AdvanceRecord, error) {
	switch scope.Kind {
	case ScopePerson, ScopeUser:
		dbq := database.DB.Model(&models.PersonAdvance{}).Where("tender_id = ?", scope.TenderID)
		if scope.Kind == ScopePerson {
			dbq = dbq.Where("person_id = ?", scope.ID)
		} else {
			dbq = dbq.Where("user_id = ?", scope.ID)
		}
		var rows []models.PersonAdvance
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]AdvanceRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, AdvanceRecord{
				ID:               r.ID,
				Date:             r.Date,
				Amount:           r.Amount,
				PaymentMethod:    r.PaymentMethod,
				PaymentReference: r.PaymentReference,
				Purpose:          r.Purpose,
				Notes:            r.Notes,
			})
		}
		return out, nil
	case ScopeVendor:
		var rows []models.VendorPayment
		if err := database.DB.Where("tender_id = ? AND vendor_id = ?", scope.TenderID, scope.ID).
			Order("date asc, id asc").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]AdvanceRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, AdvanceRecord{
				ID:               r.ID,
				Date:             r.Date,
				Amount:           r.Amount,
				PaymentMethod:    r.PaymentMethod,
				PaymentReference: r.PaymentReference,
				Purpose:          "Payment",
				Notes:            r.Notes,
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown scope kind: %s", scope.Kind)
	}
}

// FetchExpenses returns the money-back side of the scope. For vendors it
// is the credit purchases taken from them.
func FetchExpenses(scope Scope) ([]ExpenseRecord, error) {
	switch scope.Kind {
	case ScopePerson, ScopeUser:
		dbq := database.DB.Model(&models.PersonExpense{}).Where("tender_id = ?", scope.TenderID)
		if scope.Kind == ScopePerson {
			dbq = dbq.Where("person_id = ?", scope.ID)
		} else {
			dbq = dbq.Where("user_id = ?", scope.ID)
		}
		var rows []models.PersonExpense
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]ExpenseRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, ExpenseRecord{
				ID:          r.ID,
				Date:        r.Date,
				Amount:      r.Amount,
				Description: r.Description,
				Notes:       r.Notes,
			})
		}
		return out, nil
	case ScopeVendor:
		var rows []models.VendorPurchase
		if err := database.DB.Where("tender_id = ? AND vendor_id = ?", scope.TenderID, scope.ID).
			Order("date asc, id asc").Find(&rows).Error; err != nil {
			return nil, err
		}
		out := make([]ExpenseRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, ExpenseRecord{
				ID:          r.ID,
				Date:        r.Date,
				Amount:      r.Amount,
				Description: r.Description,
				Notes:       r.Notes,
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown scope kind: %s", scope.Kind)
	}
}

// FetchMfsCharges returns recorded MFS fees for the scope: activity
// expenses carrying the MFS prefix whose free text mentions the scope's
// display name. The name-substring filter is the historical contract;
// record_kind narrows the scan but the prefix stays authoritative.
func FetchMfsCharges(tenderID uint, scopeName string) ([]MfsChargeRecord, error) {
	var rows []models.ActivityExpense
	if err := database.DB.
		Where("tender_id = ? AND description LIKE ? AND description LIKE ?",
			tenderID, models.MfsChargePrefix+"%", "%"+scopeName+"%").
		Order("date asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]MfsChargeRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, MfsChargeRecord{
			ID:               r.ID,
			Date:             r.Date,
			Amount:           r.Amount,
			Description:      r.Description,
			PaymentMethod:    r.PaymentMethod,
			PaymentReference: r.PaymentReference,
			Notes:            r.Notes,
		})
	}
	return out, nil
}

// SaveMfsCharge persists one implied charge as a real activity expense.
func SaveMfsCharge(tenderID uint, ch ImpliedMfsCharge) (*models.ActivityExpense, error) {
	row := impliedToActivityExpense(tenderID, ch)
	if err := database.DB.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// SaveMfsChargesBatch persists a set of implied charges in one insert.
// Atomicity is whatever the database gives a single multi-row INSERT.
func SaveMfsChargesBatch(tenderID uint, charges []ImpliedMfsCharge) ([]models.ActivityExpense, error) {
	if len(charges) == 0 {
		return nil, nil
	}
	rows := make([]models.ActivityExpense, 0, len(charges))
	for _, ch := range charges {
		rows = append(rows, impliedToActivityExpense(tenderID, ch))
	}
	if err := database.DB.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func impliedToActivityExpense(tenderID uint, ch ImpliedMfsCharge) models.ActivityExpense {
	return models.ActivityExpense{
		TenderID:         tenderID,
		Date:             ch.Date,
		Amount:           ch.Amount,
		Description:      ch.Description,
		RecordKind:       models.ActivityKindMfsCharge,
		PaymentMethod:    models.PaymentMethodMfs,
		PaymentReference: ch.PaymentReference,
		Notes:            ch.Notes,
	}
}
