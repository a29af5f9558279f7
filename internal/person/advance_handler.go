package person

import (
	"fmt"
	"time"

	"tenderbook-backend/internal/audit"
	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/ledger"
	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type GiveAdvanceRequest struct {
	TenderID         *uint   `json:"tender_id"`      // optional for admin
	PersonID         *uint   `json:"person_id"`      // exactly one of person_id/user_id
	UserID           *uint   `json:"user_id"`
	Date             string  `json:"date"`           // "2024-01-01"
	Amount           float64 `json:"amount"`         // taka
	PaymentMethod    string  `json:"payment_method"` // cash | bank | mfs
	PaymentReference string  `json:"payment_reference"`
	Purpose          string  `json:"purpose"`
	Notes            string  `json:"notes"`
	// record the MFS fee as an activity expense right away instead of
	// leaving it to the ledger's implied-charge flow
	RecordCharge bool `json:"record_charge"`
}

type AdvanceResponse struct {
	ID               uint   `json:"id"`
	TenderID         uint   `json:"tender_id"`
	PersonID         *uint  `json:"person_id"`
	UserID           *uint  `json:"user_id"`
	Date             string `json:"date"`
	Amount           string `json:"amount"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
	VoucherNo        string `json:"voucher_no"`
	Purpose          string `json:"purpose"`
	Notes            string `json:"notes"`
	MfsCharge        string `json:"mfs_charge"`      // fee for this advance ("0.00" for cash/bank)
	ChargeRecorded   bool   `json:"charge_recorded"` // fee saved as activity expense now
}

func parsePaymentMethod(s string) (models.PaymentMethod, error) {
	switch models.PaymentMethod(s) {
	case models.PaymentMethodCash, models.PaymentMethodBank, models.PaymentMethodMfs:
		return models.PaymentMethod(s), nil
	case "":
		return models.PaymentMethodCash, nil
	default:
		return "", fmt.Errorf("payment_method must be cash, bank or mfs")
	}
}

// resolveAdvanceScope checks the person/user target and returns the
// display name for charge descriptions.
func resolveAdvanceScope(tenderID uint, personID, userID *uint) (string, error) {
	if (personID == nil) == (userID == nil) {
		return "", fmt.Errorf("exactly one of person_id or user_id is required")
	}
	if personID != nil {
		var p models.Person
		if err := database.DB.First(&p, "id = ? AND tender_id = ?", *personID, tenderID).Error; err != nil {
			return "", fmt.Errorf("person not found")
		}
		return p.Name, nil
	}
	var u models.User
	if err := database.DB.First(&u, "id = ?", *userID).Error; err != nil {
		return "", fmt.Errorf("user not found")
	}
	return u.Name, nil
}

// POST /api/advances
func GiveAdvanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body GiveAdvanceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be > 0")
		}

		tenderID, err := resolveTenderIDFromBodyOrRole(c, body.TenderID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
		}

		method, err := parsePaymentMethod(body.PaymentMethod)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		amount, err := money.FromTaka(body.Amount)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "amount is invalid")
		}

		scopeName, err := resolveAdvanceScope(tenderID, body.PersonID, body.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		adv := models.PersonAdvance{
			TenderID:         tenderID,
			PersonID:         body.PersonID,
			UserID:           body.UserID,
			Date:             d,
			Amount:           amount,
			PaymentMethod:    method,
			PaymentReference: body.PaymentReference,
			VoucherNo:        "ADV-" + uuid.NewString(),
			Purpose:          body.Purpose,
			Notes:            body.Notes,
		}

		if err := database.DB.Create(&adv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save advance")
		}

		charge, _, err := ledger.ComputeTotalWithCharge(amount, method)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute MFS charge")
		}

		chargeRecorded := false
		if body.RecordCharge && charge > 0 {
			chargeRow := models.ActivityExpense{
				TenderID:         tenderID,
				Date:             d,
				Amount:           charge,
				Description:      ledger.ChargeDescription(amount, scopeName),
				RecordKind:       models.ActivityKindMfsCharge,
				PaymentMethod:    models.PaymentMethodMfs,
				PaymentReference: body.PaymentReference,
				Notes:            fmt.Sprintf("Recorded with advance %s", adv.VoucherNo),
			}
			if err := database.DB.Create(&chargeRow).Error; err != nil {
				// the advance itself is saved; surface the charge failure
				return fiber.NewError(fiber.StatusInternalServerError, "Advance saved but MFS charge could not be recorded")
			}
			chargeRecorded = true
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			afterData := map[string]interface{}{
				"id":             adv.ID,
				"tender_id":      adv.TenderID,
				"person_id":      adv.PersonID,
				"user_id":        adv.UserID,
				"date":           adv.Date.Format("2006-01-02"),
				"amount":         adv.Amount,
				"payment_method": adv.PaymentMethod,
				"voucher_no":     adv.VoucherNo,
			}
			tenderIDForLog := &adv.TenderID
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    tenderIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "person_advance",
				EntityID:    adv.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Advance given: %s - %s", scopeName, money.FormatTaka(adv.Amount)),
				Before:      nil,
				After:       afterData,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(AdvanceResponse{
			ID:               adv.ID,
			TenderID:         adv.TenderID,
			PersonID:         adv.PersonID,
			UserID:           adv.UserID,
			Date:             adv.Date.Format("2006-01-02"),
			Amount:           money.Format(adv.Amount),
			PaymentMethod:    string(adv.PaymentMethod),
			PaymentReference: adv.PaymentReference,
			VoucherNo:        adv.VoucherNo,
			Purpose:          adv.Purpose,
			Notes:            adv.Notes,
			MfsCharge:        money.Format(charge),
			ChargeRecorded:   chargeRecorded,
		})
	}
}

// GET /api/advances?tender_id=...&person_id=...&user_id=...&from=...&to=...
func ListAdvancesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.PersonAdvance{}).Where("tender_id = ?", tenderID)

		if pidStr := c.Query("person_id"); pidStr != "" {
			var pid uint
			if _, err := fmt.Sscan(pidStr, &pid); err != nil || pid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "person_id is invalid")
			}
			dbq = dbq.Where("person_id = ?", pid)
		}
		if uidStr := c.Query("user_id"); uidStr != "" {
			var uid uint
			if _, err := fmt.Sscan(uidStr, &uid); err != nil || uid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "user_id is invalid")
			}
			dbq = dbq.Where("user_id = ?", uid)
		}
		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from is invalid")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to is invalid")
			}
			dbq = dbq.Where("date <= ?", to)
		}

		var rows []models.PersonAdvance
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list advances")
		}

		resp := make([]AdvanceResponse, 0, len(rows))
		for _, r := range rows {
			charge, _ := ledger.ChargeForMethod(r.Amount, r.PaymentMethod)
			resp = append(resp, AdvanceResponse{
				ID:               r.ID,
				TenderID:         r.TenderID,
				PersonID:         r.PersonID,
				UserID:           r.UserID,
				Date:             r.Date.Format("2006-01-02"),
				Amount:           money.Format(r.Amount),
				PaymentMethod:    string(r.PaymentMethod),
				PaymentReference: r.PaymentReference,
				VoucherNo:        r.VoucherNo,
				Purpose:          r.Purpose,
				Notes:            r.Notes,
				MfsCharge:        money.Format(charge),
			})
		}

		return c.JSON(resp)
	}
}

// DELETE /api/advances/:id
func DeleteAdvanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var advID uint
		if _, err := fmt.Sscan(c.Params("id"), &advID); err != nil || advID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid advance id")
		}

		var adv models.PersonAdvance
		if err := database.DB.First(&adv, "id = ?", advID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Advance not found")
		}

		if err := database.DB.Delete(&models.PersonAdvance{}, "id = ?", advID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete advance")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			beforeData := map[string]interface{}{
				"id":             adv.ID,
				"tender_id":      adv.TenderID,
				"person_id":      adv.PersonID,
				"user_id":        adv.UserID,
				"date":           adv.Date.Format("2006-01-02"),
				"amount":         adv.Amount,
				"payment_method": adv.PaymentMethod,
				"voucher_no":     adv.VoucherNo,
			}
			tenderIDForLog := &adv.TenderID
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    tenderIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "person_advance",
				EntityID:    adv.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Advance deleted: %s", money.FormatTaka(adv.Amount)),
				Before:      beforeData,
				After:       beforeData,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
