package person

import (
	"fmt"
	"strings"

	"tenderbook-backend/internal/audit"
	"tenderbook-backend/internal/auth"
	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreatePersonRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	Notes    string `json:"notes"`
	TenderID *uint  `json:"tender_id"` // optional for admin
}

type UpdatePersonRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Role  *string `json:"role"`
	Notes *string `json:"notes"`
}

type PersonResponse struct {
	ID        uint   `json:"id"`
	TenderID  uint   `json:"tender_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
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
// Person CRUD
// -------------------------

// POST /api/people
func CreatePersonHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePersonRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
		}

		tenderID, err := resolveTenderIDFromBodyOrRole(c, body.TenderID)
		if err != nil {
			return err
		}

		person := models.Person{
			TenderID: tenderID,
			Name:     strings.TrimSpace(body.Name),
			Phone:    strings.TrimSpace(body.Phone),
			Role:     strings.TrimSpace(body.Role),
			Notes:    body.Notes,
		}

		if err := database.DB.Create(&person).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create person")
		}

		userID, userName, _, err := getUserInfo(c)
		if err == nil {
			afterData := map[string]interface{}{
				"id":        person.ID,
				"tender_id": person.TenderID,
				"name":      person.Name,
				"phone":     person.Phone,
				"role":      person.Role,
			}
			tenderIDForLog := &person.TenderID
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    tenderIDForLog,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "person",
				EntityID:    person.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Person added: %s", person.Name),
				Before:      nil,
				After:       afterData,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.Status(fiber.StatusCreated).JSON(PersonResponse{
			ID:        person.ID,
			TenderID:  person.TenderID,
			Name:      person.Name,
			Phone:     person.Phone,
			Role:      person.Role,
			Notes:     person.Notes,
			CreatedAt: person.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/people?tender_id=...
func ListPeopleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		var people []models.Person
		if err := database.DB.Where("tender_id = ?", tenderID).
			Order("name asc").
			Find(&people).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list people")
		}

		res := make([]PersonResponse, 0, len(people))
		for _, p := range people {
			res = append(res, PersonResponse{
				ID:        p.ID,
				TenderID:  p.TenderID,
				Name:      p.Name,
				Phone:     p.Phone,
				Role:      p.Role,
				Notes:     p.Notes,
				CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}

// person lookup scoped to the caller's tender
func findPerson(c *fiber.Ctx, tenderID uint) (models.Person, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return models.Person{}, fiber.NewError(fiber.StatusBadRequest, "Invalid person ID")
	}

	var person models.Person
	if err := database.DB.First(&person, "id = ? AND tender_id = ?", id, tenderID).Error; err != nil {
		return models.Person{}, fiber.NewError(fiber.StatusNotFound, "Person not found")
	}
	return person, nil
}

// PUT /api/people/:id
func UpdatePersonHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		person, err := findPerson(c, tenderID)
		if err != nil {
			return err
		}

		var body UpdatePersonRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := person
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			person.Name = name
		}
		if body.Phone != nil {
			person.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Role != nil {
			person.Role = strings.TrimSpace(*body.Role)
		}
		if body.Notes != nil {
			person.Notes = *body.Notes
		}

		if err := database.DB.Save(&person).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update person")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "person",
				EntityID:    person.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Person updated: %s", person.Name),
				Before:      before,
				After:       person,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.JSON(PersonResponse{
			ID:        person.ID,
			TenderID:  person.TenderID,
			Name:      person.Name,
			Phone:     person.Phone,
			Role:      person.Role,
			Notes:     person.Notes,
			CreatedAt: person.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// DELETE /api/people/:id
func DeletePersonHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenderID, err := resolveTenderIDFromQueryOrRole(c)
		if err != nil {
			return err
		}

		person, err := findPerson(c, tenderID)
		if err != nil {
			return err
		}

		var advanceCount, expenseCount int64
		database.DB.Model(&models.PersonAdvance{}).Where("person_id = ?", person.ID).Count(&advanceCount)
		database.DB.Model(&models.PersonExpense{}).Where("person_id = ?", person.ID).Count(&expenseCount)
		if advanceCount > 0 || expenseCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Person has recorded transactions and cannot be deleted")
		}

		if err := database.DB.Delete(&person).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete person")
		}

		userID, userName, _, uErr := getUserInfo(c)
		if uErr == nil {
			if logErr := audit.WriteLog(audit.LogOptions{
				TenderID:    &tenderID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "person",
				EntityID:    person.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Person deleted: %s", person.Name),
				Before:      person,
				After:       person,
			}); logErr != nil {
				fmt.Printf("Could not write audit log: %v\n", logErr)
			}
		}

		return c.JSON(fiber.Map{"message": "Person deleted"})
	}
}
