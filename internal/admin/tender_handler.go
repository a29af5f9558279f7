package admin

import (
	"fmt"
	"strings"
	"time"

	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/money"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type TenderResponse struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Location      string  `json:"location"`
	ClientName    string  `json:"client_name"`
	ContractValue string  `json:"contract_value"`
	Status        string  `json:"status"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
	Notes         string  `json:"notes"`
	CreatedAt     string  `json:"created_at"`
}

type CreateTenderRequest struct {
	Name          string   `json:"name"`
	Location      string   `json:"location"`
	ClientName    string   `json:"client_name"`
	ContractValue *float64 `json:"contract_value"` // taka
	StartDate     *string  `json:"start_date"`     // "2024-01-01"
	EndDate       *string  `json:"end_date"`
	Notes         string   `json:"notes"`
}

type UpdateTenderRequest struct {
	Name          *string  `json:"name"`
	Location      *string  `json:"location"`
	ClientName    *string  `json:"client_name"`
	ContractValue *float64 `json:"contract_value"`
	Status        *string  `json:"status"`
	StartDate     *string  `json:"start_date"`
	EndDate       *string  `json:"end_date"`
	Notes         *string  `json:"notes"`
}

type CreateStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StaffResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TenderID  *uint  `json:"tender_id"`
	CreatedAt string `json:"created_at"`
}

func tenderToResponse(t models.Tender) TenderResponse {
	resp := TenderResponse{
		ID:            t.ID,
		Name:          t.Name,
		Location:      t.Location,
		ClientName:    t.ClientName,
		ContractValue: money.Format(t.ContractValue),
		Status:        string(t.Status),
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if t.StartDate != nil {
		s := t.StartDate.Format("2006-01-02")
		resp.StartDate = &s
	}
	if t.EndDate != nil {
		s := t.EndDate.Format("2006-01-02")
		resp.EndDate = &s
	}
	return resp
}

// ----------------------------------------
// TENDER CRUD
// ----------------------------------------

func CreateTenderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTenderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tender name cannot be empty")
		}

		tender := models.Tender{
			Name:       body.Name,
			Location:   strings.TrimSpace(body.Location),
			ClientName: strings.TrimSpace(body.ClientName),
			Status:     models.TenderStatusActive,
			Notes:      body.Notes,
		}

		if body.ContractValue != nil {
			poisha, err := money.FromTaka(*body.ContractValue)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "contract_value is invalid")
			}
			tender.ContractValue = poisha
		}

		if body.StartDate != nil && *body.StartDate != "" {
			d, err := time.Parse("2006-01-02", *body.StartDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date must be 'YYYY-MM-DD'")
			}
			tender.StartDate = &d
		}
		if body.EndDate != nil && *body.EndDate != "" {
			d, err := time.Parse("2006-01-02", *body.EndDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date must be 'YYYY-MM-DD'")
			}
			tender.EndDate = &d
		}

		if err := database.DB.Create(&tender).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create tender")
		}

		return c.Status(fiber.StatusCreated).JSON(tenderToResponse(tender))
	}
}

func ListTendersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tenders []models.Tender
		if err := database.DB.Order("created_at desc").Find(&tenders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list tenders")
		}

		res := make([]TenderResponse, 0, len(tenders))
		for _, t := range tenders {
			res = append(res, tenderToResponse(t))
		}

		return c.JSON(res)
	}
}

func GetTenderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var tender models.Tender
		if err := database.DB.First(&tender, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tender not found")
		}

		return c.JSON(tenderToResponse(tender))
	}
}

func UpdateTenderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var tender models.Tender
		if err := database.DB.First(&tender, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tender not found")
		}

		var body UpdateTenderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Tender name cannot be empty")
			}
			tender.Name = name
		}
		if body.Location != nil {
			tender.Location = strings.TrimSpace(*body.Location)
		}
		if body.ClientName != nil {
			tender.ClientName = strings.TrimSpace(*body.ClientName)
		}
		if body.ContractValue != nil {
			poisha, err := money.FromTaka(*body.ContractValue)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "contract_value is invalid")
			}
			tender.ContractValue = poisha
		}
		if body.Status != nil {
			switch models.TenderStatus(*body.Status) {
			case models.TenderStatusActive, models.TenderStatusCompleted, models.TenderStatusOnHold:
				tender.Status = models.TenderStatus(*body.Status)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "status must be active, completed or on_hold")
			}
		}
		if body.StartDate != nil {
			if *body.StartDate == "" {
				tender.StartDate = nil
			} else {
				d, err := time.Parse("2006-01-02", *body.StartDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "start_date must be 'YYYY-MM-DD'")
				}
				tender.StartDate = &d
			}
		}
		if body.EndDate != nil {
			if *body.EndDate == "" {
				tender.EndDate = nil
			} else {
				d, err := time.Parse("2006-01-02", *body.EndDate)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "end_date must be 'YYYY-MM-DD'")
				}
				tender.EndDate = &d
			}
		}
		if body.Notes != nil {
			tender.Notes = *body.Notes
		}

		if err := database.DB.Save(&tender).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update tender")
		}

		return c.JSON(tenderToResponse(tender))
	}
}

func DeleteTenderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		if err := database.DB.Delete(&models.Tender{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete tender")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// STAFF (per-tender login accounts)
// ----------------------------------------

// POST /api/admin/tenders/:id/staff
func CreateStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tenderID uint
		if _, err := fmt.Sscan(c.Params("id"), &tenderID); err != nil || tenderID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid tender id")
		}

		var tender models.Tender
		if err := database.DB.First(&tender, "id = ?", tenderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tender not found")
		}

		var body CreateStaffRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			TenderID:     &tender.ID,
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         models.RoleStaff,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create user (email may be taken)")
		}

		return c.Status(fiber.StatusCreated).JSON(StaffResponse{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      string(user.Role),
			TenderID:  user.TenderID,
			CreatedAt: user.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/admin/tenders/:id/staff
func ListStaffHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tenderID uint
		if _, err := fmt.Sscan(c.Params("id"), &tenderID); err != nil || tenderID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid tender id")
		}

		var users []models.User
		if err := database.DB.Where("tender_id = ?", tenderID).Order("name asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list staff")
		}

		res := make([]StaffResponse, 0, len(users))
		for _, u := range users {
			res = append(res, StaffResponse{
				ID:        u.ID,
				Name:      u.Name,
				Email:     u.Email,
				Role:      string(u.Role),
				TenderID:  u.TenderID,
				CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}
