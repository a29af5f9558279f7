package labor

import (
	"fmt"
	"time"

	"tenderbook-backend/internal/audit"
	"tenderbook-backend/internal/auth"
	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type RecordLaborRequest struct {
	TenderID  *uint   `json:"tender_id"` // optional for admin
	Date      string  `json:"date"`
	Category  string  `json:"category"`
	Headcount int     `json:"headcount"`
	DailyRate float64 `json:"daily_rate"` // taka per head
	Khoraki   float64 `json:"khoraki"`    // taka per head
	Notes     string  `json:"notes"`
}

type UpdateLaborRequest struct {
	Date      *string  `json:"date"`
	Category  *string  `json:"category"`
	Headcount *int     `json:"headcount"`
	DailyRate *float64 `json:"daily_rate"`
	Khoraki   *float64 `json:"khoraki"`
	Notes     *string  `json:"notes"`
}

type LaborResponse struct {
	ID          uint   `json:"id"`
	TenderID    uint   `json:"tender_id"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Headcount   int    `json:"headcount"`
	DailyRate   string `json:"daily_rate"`
	Khoraki     string `json:"khoraki"`
	TotalAmount string `json:"total_amount"`
	Notes       string `json:"notes"`
}

type LaborSummaryRow struct {
	Category    string `json:"category"`
	Days        int    `json:"days"`
	ManDays     int    `json:"man_days"`
	TotalAmount string `json:"total_amount"`
}

type LaborSummaryResponse struct {
	Month      string            `json:"month"`
	Rows       []LaborSummaryRow `json:"rows"`
	GrandTotal string            `json:"grand_total"`
}

func laborToResponse(e models.LaborEntry) LaborResponse {
	return LaborResponse{
		ID:          e.ID,
		TenderID:    e.TenderID,
		Date:        e.Date.Format("2006-01-02"),
		Category:    e.Category,
		Headcount:   e.Headcount,
		DailyRate:   money.Format(e.DailyRate),
		Khoraki:     money.Format(e.Khoraki),
		TotalAmount: money.Format(e.TotalAmount),
		Notes:       e.Notes,
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
// Labor CRUD
// -------------------------

// POST /api/labor
func RecordLaborHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RecordLaborRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Category == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category is required")
		}
		if body.Headcount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "headcount must be > 0")
		}
		if body.DailyRate <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "daily_rate must be > 0")
		}
		if body.Khoraki < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "khoraki cannot be negative")
		}

		tenderID, err := resolveTenderIDFromBodyOrRole(c, body.TenderID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
		}

		rate, err := money.FromTaka(body.DailyRate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "daily_rate is invalid")
		}
		khoraki, err := money.FromTaka(body.Khoraki)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "khoraki is invalid")
		}

		entry := models.LaborEntry{
			TenderID:    tenderID,
			Date:        d,
			Category:    body.Category,
			Headcount:   body.Headcount,
			DailyRate:   rate,
			Khoraki:     khoraki,
			TotalAmount: int64(body.Headcount) * (rate + khoraki),
			Notes:       body.Notes,
		}
		if err := database.DB.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record labor entry")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "labor_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Labor recorded: %d %s - %s", entry.Headcount, entry.Category, money.FormatTaka(entry.TotalAmount)),
				Before:      nil,
				After:       entry,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(laborToResponse(entry))
	}
}

// GET /api/labor?tender_id=...&from=...&to=...&category=...
func ListLaborHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		query := database.DB.Where("tender_id = ?", tenderID)
		if cat := c.Query("category"); cat != "" {
			query = query.Where("category = ?", cat)
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

		var entries []models.LaborEntry
		if err := query.Order("date desc, id desc").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load labor entries")
		}

		resp := make([]LaborResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, laborToResponse(e))
		}
		return c.JSON(resp)
	}
}

// PUT /api/labor/:id
func UpdateLaborHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid labor entry ID")
		}

		var entry models.LaborEntry
		if err := database.DB.First(&entry, "id = ? AND tender_id = ?", id, tenderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Labor entry not found")
		}

		var body UpdateLaborRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := entry
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
			}
			entry.Date = d
		}
		if body.Category != nil {
			if *body.Category == "" {
				return fiber.NewError(fiber.StatusBadRequest, "category cannot be empty")
			}
			entry.Category = *body.Category
		}
		if body.Headcount != nil {
			if *body.Headcount <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "headcount must be > 0")
			}
			entry.Headcount = *body.Headcount
		}
		if body.DailyRate != nil {
			rate, err := money.FromTaka(*body.DailyRate)
			if err != nil || rate <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "daily_rate is invalid")
			}
			entry.DailyRate = rate
		}
		if body.Khoraki != nil {
			khoraki, err := money.FromTaka(*body.Khoraki)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "khoraki is invalid")
			}
			entry.Khoraki = khoraki
		}
		if body.Notes != nil {
			entry.Notes = *body.Notes
		}

		// total is always derived, never taken from the client
		entry.TotalAmount = int64(entry.Headcount) * (entry.DailyRate + entry.Khoraki)

		if err := database.DB.Save(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update labor entry")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "labor_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Labor entry updated: %s - %s", entry.Category, money.FormatTaka(entry.TotalAmount)),
				Before:      before,
				After:       entry,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.JSON(laborToResponse(entry))
	}
}

// DELETE /api/labor/:id
func DeleteLaborHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid labor entry ID")
		}

		var entry models.LaborEntry
		if err := database.DB.First(&entry, "id = ? AND tender_id = ?", id, tenderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Labor entry not found")
		}

		if err := database.DB.Delete(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete labor entry")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "labor_entry",
				EntityID:    entry.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Labor entry deleted: %s - %s", entry.Category, money.FormatTaka(entry.TotalAmount)),
				Before:      entry,
				After:       entry,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Labor entry deleted"})
	}
}

// -------------------------
// Monthly summary
// -------------------------

// GET /api/labor/summary?month=2024-01&tender_id=...
func LaborSummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		monthStr := c.Query("month")
		if monthStr == "" {
			monthStr = time.Now().Format("2006-01")
		}
		start, err := time.Parse("2006-01", monthStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "month must be 'YYYY-MM'")
		}
		end := start.AddDate(0, 1, 0)

		var entries []models.LaborEntry
		if err := database.DB.
			Where("tender_id = ? AND date >= ? AND date < ?", tenderID, start, end).
			Order("category asc, date asc").
			Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load labor entries")
		}

		type agg struct {
			days    int
			manDays int
			total   int64
		}
		byCategory := map[string]*agg{}
		order := []string{}
		var grandTotal int64
		for _, e := range entries {
			a, ok := byCategory[e.Category]
			if !ok {
				a = &agg{}
				byCategory[e.Category] = a
				order = append(order, e.Category)
			}
			a.days++
			a.manDays += e.Headcount
			a.total += e.TotalAmount
			grandTotal += e.TotalAmount
		}

		rows := make([]LaborSummaryRow, 0, len(order))
		for _, cat := range order {
			a := byCategory[cat]
			rows = append(rows, LaborSummaryRow{
				Category:    cat,
				Days:        a.days,
				ManDays:     a.manDays,
				TotalAmount: money.Format(a.total),
			})
		}

		return c.JSON(LaborSummaryResponse{
			Month:      monthStr,
			Rows:       rows,
			GrandTotal: money.Format(grandTotal),
		})
	}
}
