package material

import (
	"fmt"
	"math"
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

type RecordMaterialRequest struct {
	TenderID      *uint   `json:"tender_id"` // optional for admin
	VendorID      *uint   `json:"vendor_id"` // set when bought on vendor credit
	Date          string  `json:"date"`
	MaterialName  string  `json:"material_name"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	UnitPrice     float64 `json:"unit_price"` // taka
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

type UpdateMaterialRequest struct {
	Date         *string  `json:"date"`
	MaterialName *string  `json:"material_name"`
	Quantity     *float64 `json:"quantity"`
	Unit         *string  `json:"unit"`
	UnitPrice    *float64 `json:"unit_price"`
	Notes        *string  `json:"notes"`
}

type MaterialResponse struct {
	ID            uint    `json:"id"`
	TenderID      uint    `json:"tender_id"`
	VendorID      *uint   `json:"vendor_id"`
	VendorName    string  `json:"vendor_name,omitempty"`
	Date          string  `json:"date"`
	MaterialName  string  `json:"material_name"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	UnitPrice     string  `json:"unit_price"`
	TotalAmount   string  `json:"total_amount"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

type MaterialSummaryRow struct {
	MaterialName string  `json:"material_name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	TotalAmount  string  `json:"total_amount"`
}

type MaterialSummaryResponse struct {
	Month      string               `json:"month"`
	Rows       []MaterialSummaryRow `json:"rows"`
	GrandTotal string               `json:"grand_total"`
}

func materialToResponse(m models.MaterialPurchase, vendorName string) MaterialResponse {
	return MaterialResponse{
		ID:            m.ID,
		TenderID:      m.TenderID,
		VendorID:      m.VendorID,
		VendorName:    vendorName,
		Date:          m.Date.Format("2006-01-02"),
		MaterialName:  m.MaterialName,
		Quantity:      m.Quantity,
		Unit:          m.Unit,
		UnitPrice:     money.Format(m.UnitPrice),
		TotalAmount:   money.Format(m.TotalAmount),
		PaymentMethod: string(m.PaymentMethod),
		Notes:         m.Notes,
	}
}

// quantity * unit price in poisha, rounded half up to whole poisha
func lineTotal(quantity float64, unitPrice int64) int64 {
	return int64(math.Floor(quantity*float64(unitPrice) + 0.5))
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
// Material CRUD
// -------------------------

// POST /api/materials
func RecordMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RecordMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.MaterialName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "material_name is required")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be > 0")
		}
		if body.UnitPrice <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "unit_price must be > 0")
		}

		tenderID, err := resolveTenderIDFromBodyOrRole(c, body.TenderID)
		if err != nil {
			return err
		}

		d, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
		}

		unitPrice, err := money.FromTaka(body.UnitPrice)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unit_price is invalid")
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

		vendorName := ""
		if body.VendorID != nil {
			var vendor models.Vendor
			if err := database.DB.First(&vendor, "id = ? AND tender_id = ?", *body.VendorID, tenderID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "vendor not found")
			}
			vendorName = vendor.Name
		}

		purchase := models.MaterialPurchase{
			TenderID:      tenderID,
			VendorID:      body.VendorID,
			Date:          d,
			MaterialName:  body.MaterialName,
			Quantity:      body.Quantity,
			Unit:          body.Unit,
			UnitPrice:     unitPrice,
			TotalAmount:   lineTotal(body.Quantity, unitPrice),
			PaymentMethod: method,
			Notes:         body.Notes,
		}
		if err := database.DB.Create(&purchase).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not record material purchase")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "material_purchase",
				EntityID:    purchase.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Material purchased: %s - %s", purchase.MaterialName, money.FormatTaka(purchase.TotalAmount)),
				Before:      nil,
				After:       purchase,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(materialToResponse(purchase, vendorName))
	}
}

// GET /api/materials?tender_id=...&from=...&to=...&vendor_id=...
func ListMaterialsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		query := database.DB.Preload("Vendor").Where("tender_id = ?", tenderID)
		if vidStr := c.Query("vendor_id"); vidStr != "" {
			var vid uint
			if _, err := fmt.Sscan(vidStr, &vid); err == nil && vid != 0 {
				query = query.Where("vendor_id = ?", vid)
			}
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

		var purchases []models.MaterialPurchase
		if err := query.Order("date desc, id desc").Find(&purchases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load material purchases")
		}

		resp := make([]MaterialResponse, 0, len(purchases))
		for _, m := range purchases {
			name := ""
			if m.Vendor != nil {
				name = m.Vendor.Name
			}
			resp = append(resp, materialToResponse(m, name))
		}
		return c.JSON(resp)
	}
}

// PUT /api/materials/:id
func UpdateMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid material purchase ID")
		}

		var purchase models.MaterialPurchase
		if err := database.DB.First(&purchase, "id = ? AND tender_id = ?", id, tenderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Material purchase not found")
		}

		var body UpdateMaterialRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := purchase
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be 'YYYY-MM-DD'")
			}
			purchase.Date = d
		}
		if body.MaterialName != nil {
			if *body.MaterialName == "" {
				return fiber.NewError(fiber.StatusBadRequest, "material_name cannot be empty")
			}
			purchase.MaterialName = *body.MaterialName
		}
		if body.Quantity != nil {
			if *body.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "quantity must be > 0")
			}
			purchase.Quantity = *body.Quantity
		}
		if body.Unit != nil {
			purchase.Unit = *body.Unit
		}
		if body.UnitPrice != nil {
			unitPrice, err := money.FromTaka(*body.UnitPrice)
			if err != nil || unitPrice <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "unit_price is invalid")
			}
			purchase.UnitPrice = unitPrice
		}
		if body.Notes != nil {
			purchase.Notes = *body.Notes
		}

		// total is always derived, never taken from the client
		purchase.TotalAmount = lineTotal(purchase.Quantity, purchase.UnitPrice)

		if err := database.DB.Save(&purchase).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update material purchase")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "material_purchase",
				EntityID:    purchase.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Material purchase updated: %s - %s", purchase.MaterialName, money.FormatTaka(purchase.TotalAmount)),
				Before:      before,
				After:       purchase,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.JSON(materialToResponse(purchase, ""))
	}
}

// DELETE /api/materials/:id
func DeleteMaterialHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid material purchase ID")
		}

		var purchase models.MaterialPurchase
		if err := database.DB.First(&purchase, "id = ? AND tender_id = ?", id, tenderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Material purchase not found")
		}

		if err := database.DB.Delete(&purchase).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete material purchase")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "material_purchase",
				EntityID:    purchase.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Material purchase deleted: %s - %s", purchase.MaterialName, money.FormatTaka(purchase.TotalAmount)),
				Before:      purchase,
				After:       purchase,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Material purchase deleted"})
	}
}

// -------------------------
// Monthly summary
// -------------------------

// GET /api/materials/summary?month=2024-01&tender_id=...
func MaterialSummaryHandler() fiber.Handler {
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

		var purchases []models.MaterialPurchase
		if err := database.DB.
			Where("tender_id = ? AND date >= ? AND date < ?", tenderID, start, end).
			Order("material_name asc, date asc").
			Find(&purchases).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load material purchases")
		}

		type agg struct {
			unit     string
			quantity float64
			total    int64
		}
		byName := map[string]*agg{}
		order := []string{}
		var grandTotal int64
		for _, m := range purchases {
			a, ok := byName[m.MaterialName]
			if !ok {
				a = &agg{unit: m.Unit}
				byName[m.MaterialName] = a
				order = append(order, m.MaterialName)
			}
			a.quantity += m.Quantity
			a.total += m.TotalAmount
			grandTotal += m.TotalAmount
		}

		rows := make([]MaterialSummaryRow, 0, len(order))
		for _, name := range order {
			a := byName[name]
			rows = append(rows, MaterialSummaryRow{
				MaterialName: name,
				Unit:         a.unit,
				Quantity:     a.quantity,
				TotalAmount:  money.Format(a.total),
			})
		}

		return c.JSON(MaterialSummaryResponse{
			Month:      monthStr,
			Rows:       rows,
			GrandTotal: money.Format(grandTotal),
		})
	}
}
