package activity

import (
	"fmt"
	"strings"
	"time"

	"tenderbook-backend/internal/audit"
	"tenderbook-backend/internal/auth"
	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/ledger"
	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type RecordActivityRequest struct {
	TenderID         *uint   `json:"tender_id"` // optional for admin
	Date             string  `json:"date"`
	Amount           float64 `json:"amount"` // taka
	Description      string  `json:"description"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentReference string  `json:"payment_reference"`
	Notes            string  `json:"notes"`
}

type UpdateActivityRequest struct {
	Date        *string  `json:"date"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	Notes       *string  `json:"notes"`
}

type ActivityResponse struct {
	ID               uint   `json:"id"`
	TenderID         uint   `json:"tender_id"`
	Date             string `json:"date"`
	Amount           string `json:"amount"`
	Description      string `json:"description"`
	RecordKind       string `json:"record_kind"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
	Notes            string `json:"notes"`
}

type FeePreviewResponse struct {
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	MfsCharge     string `json:"mfs_charge"`
	Total         string `json:"total"`
}

func activityToResponse(e models.ActivityExpense) ActivityResponse {
	return ActivityResponse{
		ID:               e.ID,
		TenderID:         e.TenderID,
		Date:             e.Date.Format("2006-01-02"),
		Amount:           money.Format(e.Amount),
		Description:      e.Description,
		RecordKind:       string(e.RecordKind),
		PaymentMethod:    string(e.PaymentMethod),
		PaymentReference: e.PaymentReference,
		Notes:            e.Notes,
	}
}

// -------------------------
// Helper: get user info
// -------------------------
func getUserInfo(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Could not read user")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}

	var tenderID *uint
	tVal := c.Locals(auth.CtxTenderIDKey)
	if tPtr, ok := tVal.(*uint); ok && tPtr != nil {
		tenderID = tPtr
	}

	return userID, user.Name, tenderID, nil
}

// -------------------------
// Helper: resolve tender ID
// -------------------------

// tender_id from body + role
func resolveTenderIDFromBodyOrRole(c *fiber.Ctx, bodyTenderID *uint) (uint, error) {
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
	if bodyTenderID == nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "tender_id is required")
	}
	return *bodyTenderID, nil
}

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

// -------------------------
// Activity expense CRUD
// -------------------------

// POST /api/activity-expenses
// Hand-entered rows are always general; MFS charge rows come only from
// the advance/payment flows and the ledger's promotion endpoints.
func RecordActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RecordActivityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount must be > 0")
		}
		if body.Description == "" {
			return fiber.NewError(fiber.StatusBadRequest, "description is required")
		}
		if strings.HasPrefix(body.Description, models.MfsChargePrefix) {
			return fiber.NewError(fiber.StatusBadRequest, "description cannot start with the MFS charge tag")
		}

		tenderID, err := resolveTenderIDFromBodyOrRole(c, body.TenderID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
		}

		amount, err := money.FromTaka(body.Amount)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "amount is invalid")
		}

		method := models.PaymentMethodCash
		if body.PaymentMethod != "" {
			switch models.PaymentMethod(body.PaymentMethod) {
			case models.PaymentMethodCash, models.PaymentMethodBank, models.PaymentMethodMfs:
				method = models.PaymentMethod(body.PaymentMethod)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "payment_method must be cash, bank or mfs")
			}
		}

		exp := models.ActivityExpense{
			TenderID:         tenderID,
			Date:             d,
			Amount:           amount,
			Description:      body.Description,
			RecordKind:       models.ActivityKindGeneral,
			PaymentMethod:    method,
			PaymentReference: body.PaymentReference,
			Notes:            body.Notes,
		}
		if err := database.DB.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record activity expense")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "activity_expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Activity expense recorded: %s - %s", exp.Description, money.FormatTaka(exp.Amount)),
				Before:      nil,
				After:       exp,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(activityToResponse(exp))
	}
}

// GET /api/activity-expenses?tender_id=...&kind=general|mfs_charge&from=...&to=...
func ListActivitiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		query := database.DB.Where("tender_id = ?", tenderID)
		switch kind := c.Query("kind"); kind {
		case "":
			// all rows
		case string(models.ActivityKindGeneral), string(models.ActivityKindMfsCharge):
			query = query.Where("record_kind = ?", kind)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "kind must be general or mfs_charge")
		}
		if from := c.Query("from"); from != "" {
			if d, err := time.Parse("2006-01-02", from); err == nil {
				query = query.Where("date >= ?", d)
			}
		}
		if to := c.Query("to"); to != "" {
			if d, err := time.Parse("2006-01-02", to); err == nil {
				query = query.Where("date <= ?", d)
			}
		}

		var expenses []models.ActivityExpense
		if err := query.Order("date desc, id desc").Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load activity expenses")
		}

		resp := make([]ActivityResponse, 0, len(expenses))
		for _, e := range expenses {
			resp = append(resp, activityToResponse(e))
		}
		return c.JSON(resp)
	}
}

// PUT /api/activity-expenses/:id
func UpdateActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid activity expense ID")
		}

		var exp models.ActivityExpense
		if err := database.DB.First(&exp, "id = ? AND tender_id = ?", id, tenderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Activity expense not found")
		}

		// MFS charge rows are bookkeeping artifacts; editing one would
		// silently break the reconciler's already-accounted check
		if exp.RecordKind == models.ActivityKindMfsCharge {
			return fiber.NewError(fiber.StatusConflict, "MFS charge rows cannot be edited")
		}

		var body UpdateActivityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := exp
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
			}
			exp.Date = d
		}
		if body.Amount != nil {
			amount, err := money.FromTaka(*body.Amount)
			if err != nil || amount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "amount is invalid")
			}
			exp.Amount = amount
		}
		if body.Description != nil {
			if *body.Description == "" {
				return fiber.NewError(fiber.StatusBadRequest, "description cannot be empty")
			}
			if strings.HasPrefix(*body.Description, models.MfsChargePrefix) {
				return fiber.NewError(fiber.StatusBadRequest, "description cannot start with the MFS charge tag")
			}
			exp.Description = *body.Description
		}
		if body.Notes != nil {
			exp.Notes = *body.Notes
		}

		if err := database.DB.Save(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update activity expense")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "activity_expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Activity expense updated: %s - %s", exp.Description, money.FormatTaka(exp.Amount)),
				Before:      before,
				After:       exp,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.JSON(activityToResponse(exp))
	}
}

// DELETE /api/activity-expenses/:id
// Deleting an MFS charge row is allowed; the ledger will simply start
// implying the fee again until it is promoted once more.
func DeleteActivityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid activity expense ID")
		}

		var exp models.ActivityExpense
		if err := database.DB.First(&exp, "id = ? AND tender_id = ?", id, tenderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Activity expense not found")
		}

		if err := database.DB.Delete(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete activity expense")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "activity_expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Activity expense deleted: %s - %s", exp.Description, money.FormatTaka(exp.Amount)),
				Before:      exp,
				After:       exp,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Activity expense deleted"})
	}
}

// -------------------------
// MFS fee preview
// -------------------------

// GET /api/mfs-fee?amount=1000&payment_method=mfs
// Lets the frontend show the fee before anything is saved.
func FeePreviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		amountStr := c.Query("amount")
		if amountStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "amount is required")
		}
		var amountTaka float64
		if _, err := fmt.Sscan(amountStr, &amountTaka); err != nil || amountTaka <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount is invalid")
		}

		method := models.PaymentMethodMfs
		if m := c.Query("payment_method"); m != "" {
			switch models.PaymentMethod(m) {
			case models.PaymentMethodCash, models.PaymentMethodBank, models.PaymentMethodMfs:
				method = models.PaymentMethod(m)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "payment_method must be cash, bank or mfs")
			}
		}

		amount, err := money.FromTaka(amountTaka)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "amount is invalid")
		}

		charge, total, err := ledger.ComputeTotalWithCharge(amount, method)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "amount is invalid")
		}

		return c.JSON(FeePreviewResponse{
			Amount:        money.Format(amount),
			PaymentMethod: string(method),
			MfsCharge:     money.Format(charge),
			Total:         money.Format(total),
		})
	}
}
