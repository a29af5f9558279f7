package person

import (
	"fmt"
	"time"

	"tenderbook-backend/internal/audit"
	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"

	"github.com/gofiber/fiber/v2"
)

type RecordExpenseRequest struct {
	TenderID    *uint   `json:"tender_id"` // optional for admin
	PersonID    *uint   `json:"person_id"`
	UserID      *uint   `json:"user_id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"` // taka
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
}

type BulkExpenseItem struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
}

type BulkRecordExpensesRequest struct {
	TenderID *uint             `json:"tender_id"`
	PersonID *uint             `json:"person_id"`
	UserID   *uint             `json:"user_id"`
	Items    []BulkExpenseItem `json:"items"`
}

type ExpenseResponse struct {
	ID          uint   `json:"id"`
	TenderID    uint   `json:"tender_id"`
	PersonID    *uint  `json:"person_id"`
	UserID      *uint  `json:"user_id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

func expenseToResponse(r models.PersonExpense) ExpenseResponse {
	return ExpenseResponse{
		ID:          r.ID,
		TenderID:    r.TenderID,
		PersonID:    r.PersonID,
		UserID:      r.UserID,
		Date:        r.Date.Format("2006-01-02"),
		Amount:      money.Format(r.Amount),
		Description: r.Description,
		Notes:       r.Notes,
	}
}

// POST /api/expenses
func RecordExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RecordExpenseRequest
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

		scopeName, err := resolveAdvanceScope(tenderID, body.PersonID, body.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
		}

		amount, err := money.FromTaka(body.Amount)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "amount is invalid")
		}

		exp := models.PersonExpense{
			TenderID:    tenderID,
			PersonID:    body.PersonID,
			UserID:      body.UserID,
			Date:        d,
			Amount:      amount,
			Description: body.Description,
			Notes:       body.Notes,
		}

		if err := database.DB.Create(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save expense")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			afterData := map[string]interface{}{
				"id":          exp.ID,
				"tender_id":   exp.TenderID,
				"person_id":   exp.PersonID,
				"user_id":     exp.UserID,
				"date":        exp.Date.Format("2006-01-02"),
				"amount":      exp.Amount,
				"description": exp.Description,
			}
			tenderIDForLog := &exp.TenderID
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    tenderIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "person_expense",
				EntityID:    exp.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Expense recorded: %s - %s", scopeName, money.FormatTaka(exp.Amount)),
				Before:      nil,
				After:       afterData,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(expenseToResponse(exp))
	}
}

// POST /api/expenses/bulk
func BulkRecordExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BulkRecordExpensesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "items cannot be empty")
		}

		tenderID, err := resolveTenderIDFromBodyOrRole(c, body.TenderID)
		if err != nil {
			return err
		}

		scopeName, err := resolveAdvanceScope(tenderID, body.PersonID, body.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rows := make([]models.PersonExpense, 0, len(body.Items))
		for i, item := range body.Items {
			if item.Amount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("item %d: amount must be > 0", i))
			}
			d, err := time.Parse("2006-01-02", item.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("item %d: date must be 'YYYY-MM-DD'", i))
			}
			amount, err := money.FromTaka(item.Amount)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("item %d: amount is invalid", i))
			}
			rows = append(rows, models.PersonExpense{
				TenderID:    tenderID,
				PersonID:    body.PersonID,
				UserID:      body.UserID,
				Date:        d,
				Amount:      amount,
				Description: item.Description,
				Notes:       item.Notes,
			})
		}

		// single multi-row insert
		if err := database.DB.Create(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save expenses")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			var total int64
			for _, r := range rows {
				total += r.Amount
			}
			tenderIDForLog := &tenderID
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    tenderIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "person_expense",
				EntityID:    rows[0].ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Bulk expenses recorded: %s - %d items, %s", scopeName, len(rows), money.FormatTaka(total)),
				Before:      nil,
				After:       map[string]interface{}{"count": len(rows), "total": total},
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, expenseToResponse(r))
		}
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/expenses?tender_id=...&person_id=...&user_id=...&from=...&to=...
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.PersonExpense{}).Where("tender_id = ?", tenderID)

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

		var rows []models.PersonExpense
		if err := dbq.Order("date asc, id asc").Find(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list expenses")
		}

		resp := make([]ExpenseResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, expenseToResponse(r))
		}

		return c.JSON(resp)
	}
}
