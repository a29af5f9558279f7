package main

import (
	"log"
	"strings"

	"tenderbook-backend/internal/activity"
	"tenderbook-backend/internal/admin"
	"tenderbook-backend/internal/audit"
	"tenderbook-backend/internal/auth"
	"tenderbook-backend/internal/config"
	"tenderbook-backend/internal/dashboard"
	"tenderbook-backend/internal/database"
	"tenderbook-backend/internal/labor"
	"tenderbook-backend/internal/material"
	"tenderbook-backend/internal/models"
	"tenderbook-backend/internal/person"
	"tenderbook-backend/internal/report"
	"tenderbook-backend/internal/vendor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Tender management
	adminRoutes.Post("/tenders", admin.CreateTenderHandler())
	adminRoutes.Get("/tenders", admin.ListTendersHandler())
	adminRoutes.Get("/tenders/:id", admin.GetTenderHandler())
	adminRoutes.Put("/tenders/:id", admin.UpdateTenderHandler())
	adminRoutes.Delete("/tenders/:id", admin.DeleteTenderHandler())
	adminRoutes.Post("/tenders/:id/staff", admin.CreateStaffHandler())
	adminRoutes.Get("/tenders/:id/staff", admin.ListStaffHandler())

	// People
	protected.Post("/people", person.CreatePersonHandler())
	protected.Get("/people", person.ListPeopleHandler())
	protected.Put("/people/:id", person.UpdatePersonHandler())
	protected.Delete("/people/:id", person.DeletePersonHandler())

	// Advances & expenses
	protected.Post("/advances", person.GiveAdvanceHandler())
	protected.Get("/advances", person.ListAdvancesHandler())
	protected.Delete("/advances/:id", person.DeleteAdvanceHandler())
	protected.Post("/expenses", person.RecordExpenseHandler())
	protected.Post("/expenses/bulk", person.BulkRecordExpensesHandler())
	protected.Get("/expenses", person.ListExpensesHandler())

	// Ledger materialization & MFS charge promotion
	protected.Get("/ledger/:kind/:id", person.GetLedgerHandler())
	protected.Post("/ledger/:kind/:id/mfs-charges/promote", person.PromoteImpliedChargeHandler())
	protected.Post("/ledger/:kind/:id/mfs-charges/promote-all", person.PromoteAllImpliedHandler())

	// Vendors
	protected.Post("/vendors", vendor.CreateVendorHandler())
	protected.Get("/vendors", vendor.ListVendorsHandler())
	protected.Get("/vendors/:id", vendor.GetVendorHandler())
	protected.Put("/vendors/:id", vendor.UpdateVendorHandler())
	protected.Delete("/vendors/:id", vendor.DeleteVendorHandler())
	protected.Post("/vendors/:id/purchases", vendor.RecordPurchaseHandler())
	protected.Get("/vendors/:id/purchases", vendor.ListPurchasesHandler())
	protected.Delete("/vendors/:id/purchases/:purchaseID", vendor.DeletePurchaseHandler())
	protected.Post("/vendors/:id/payments", vendor.RecordPaymentHandler())
	protected.Get("/vendors/:id/payments", vendor.ListPaymentsHandler())
	protected.Delete("/vendors/:id/payments/:paymentID", vendor.DeletePaymentHandler())
	protected.Get("/vendors/:id/balance", vendor.GetVendorBalanceHandler())
	protected.Get("/vendors/:id/ledger", vendor.GetVendorLedgerHandler())
	protected.Post("/vendors/:id/ledger/mfs-charges/promote-all", vendor.PromoteVendorChargesHandler())

	// Labor
	protected.Post("/labor", labor.RecordLaborHandler())
	protected.Get("/labor", labor.ListLaborHandler())
	protected.Get("/labor/summary", labor.LaborSummaryHandler())
	protected.Put("/labor/:id", labor.UpdateLaborHandler())
	protected.Delete("/labor/:id", labor.DeleteLaborHandler())

	// Materials
	protected.Post("/materials", material.RecordMaterialHandler())
	protected.Get("/materials", material.ListMaterialsHandler())
	protected.Get("/materials/summary", material.MaterialSummaryHandler())
	protected.Put("/materials/:id", material.UpdateMaterialHandler())
	protected.Delete("/materials/:id", material.DeleteMaterialHandler())

	// Activity expenses & MFS fee preview
	protected.Post("/activity-expenses", activity.RecordActivityHandler())
	protected.Get("/activity-expenses", activity.ListActivitiesHandler())
	protected.Put("/activity-expenses/:id", activity.UpdateActivityHandler())
	protected.Delete("/activity-expenses/:id", activity.DeleteActivityHandler())
	protected.Get("/mfs-fee", activity.FeePreviewHandler())

	// Reports
	protected.Get("/reports/tender-summary", report.TenderSummaryHandler())
	protected.Get("/reports/ledger-export/:kind/:id", report.LedgerExportHandler())

	// Dashboard
	protected.Get("/dashboard/spend-chart", dashboard.SpendChartHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
