package report

import (
	"fmt"
	"time"

	"tenderbook-backend/internal/auth"
	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"

	"github.com/gofiber/fiber/v2"
)

// tender_id from query + role
func resolveTenderIDFromQueryOrRole(c *fiber.Ctx) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Could not read role")
	}

	if role == models.RoleStaff {
		tVal := c.Locals(auth.CtxTenderIDKey)
		tPtr, ok := tVal.(*uint)
		if !ok || tPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "No tender assigned")
		}
		return *tPtr, nil
	}

	// admin
	tidStr := c.Query("tender_id")
	if tidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "tender_id is required")
	}
	var tid uint
	if _, err := fmt.Sscan(tidStr, &tid); err != nil || tid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "tender_id is invalid")
	}
	return tid, nil
}

type TenderSummaryResponse struct {
	TenderID      uint   `json:"tender_id"`
	TenderName    string `json:"tender_name"`
	ContractValue string `json:"contract_value"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`

	LaborCost        string `json:"labor_cost"`
	MaterialCost     string `json:"material_cost"`
	ActivityCost     string `json:"activity_cost"` // general rows only
	MfsCharges       string `json:"mfs_charges"`
	VendorPurchases  string `json:"vendor_purchases"`
	VendorPayments   string `json:"vendor_payments"`
	VendorDues       string `json:"vendor_dues"`
	AdvancesGiven    string `json:"advances_given"`
	ExpensesReported string `json:"expenses_reported"`
	AdvancesOpen     string `json:"advances_open"` // given minus reported

	// spending that actually left the cashbox: labor + materials +
	// activity + MFS fees + vendor payments + open advances
	TotalSpent string `json:"total_spent"`
	Remaining  string `json:"remaining"` // contract value minus total spent
}

func sumAmount(model any, tenderID uint, from, to *time.Time, extra string, args ...any) int64 {
	var total int64
	query := database.DB.Model(model).Where("tender_id = ?", tenderID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	if extra != "" {
		query = query.Where(extra, args...)
	}
	query.Select("COALESCE(SUM(amount), 0)").Scan(&total)
	return total
}

func sumTotalAmount(model any, tenderID uint, from, to *time.Time) int64 {
	var total int64
	query := database.DB.Model(model).Where("tender_id = ?", tenderID)
	if from != nil {
		query = query.Where("date >= ?", *from)
	}
	if to != nil {
		query = query.Where("date <= ?", *to)
	}
	query.Select("COALESCE(SUM(total_amount), 0)").Scan(&total)
	return total
}

// GET /api/reports/tender-summary?tender_id=...&from=...&to=...
// One number per cost bucket for the whole tender (or a date window).
func TenderSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var tender models.Tender
		if err := database.DB.First(&tender, "id = ?", tenderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tender not found")
		}

		var from, to *time.Time
		if s := c.Query("from"); s != "" {
			d, err := time.Parse("2006-01-02", s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from date is invalid")
			}
			from = &d
		}
		if s := c.Query("to"); s != "" {
			d, err := time.Parse("2006-01-02", s)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to date is invalid")
			}
			to = &d
		}

		laborCost := sumTotalAmount(&models.LaborEntry{}, tenderID, from, to)
		materialCost := sumTotalAmount(&models.MaterialPurchase{}, tenderID, from, to)
		activityCost := sumAmount(&models.ActivityExpense{}, tenderID, from, to,
			"record_kind = ?", models.ActivityKindGeneral)
		mfsCharges := sumAmount(&models.ActivityExpense{}, tenderID, from, to,
			"record_kind = ?", models.ActivityKindMfsCharge)
		vendorPurchases := sumAmount(&models.VendorPurchase{}, tenderID, from, to, "")
		vendorPayments := sumAmount(&models.VendorPayment{}, tenderID, from, to, "")
		advancesGiven := sumAmount(&models.PersonAdvance{}, tenderID, from, to, "")
		expensesReported := sumAmount(&models.PersonExpense{}, tenderID, from, to, "")

		advancesOpen := advancesGiven - expensesReported
		totalSpent := laborCost + materialCost + activityCost + mfsCharges +
			vendorPayments + advancesOpen

		resp := TenderSummaryResponse{
			TenderID:         tender.ID,
			TenderName:       tender.Name,
			ContractValue:    money.Format(tender.ContractValue),
			LaborCost:        money.Format(laborCost),
			MaterialCost:     money.Format(materialCost),
			ActivityCost:     money.Format(activityCost),
			MfsCharges:       money.Format(mfsCharges),
			VendorPurchases:  money.Format(vendorPurchases),
			VendorPayments:   money.Format(vendorPayments),
			VendorDues:       money.Format(vendorPurchases - vendorPayments),
			AdvancesGiven:    money.Format(advancesGiven),
			ExpensesReported: money.Format(expensesReported),
			AdvancesOpen:     money.Format(advancesOpen),
			TotalSpent:       money.Format(totalSpent),
			Remaining:        money.Format(tender.ContractValue - totalSpent),
		}
		if from != nil {
			resp.From = from.Format("2006-01-02")
		}
		if to != nil {
			resp.To = to.Format("2006-01-02")
		}

		return c.JSON(resp)
	}
}
