package database

import (
	"log"

	"tenderbook-backend/internal/config"
	"tenderbook-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	// ActivityExpense migration: older deployments only tagged MFS charges
	// with the "[MFS CHARGE]" description prefix. Backfill the record_kind
	// column from the prefix BEFORE AutoMigrate sets the default on new rows.
	if DB.Migrator().HasTable(&models.ActivityExpense{}) {
		hasColumn := DB.Migrator().HasColumn(&models.ActivityExpense{}, "record_kind")
		if !hasColumn {
			log.Println("Adding activity_expenses.record_kind column...")

			if err := DB.Exec("ALTER TABLE activity_expenses ADD COLUMN record_kind VARCHAR(20)").Error; err != nil {
				log.Printf("Error adding record_kind column (may already exist): %v", err)
			}

			DB.Exec("UPDATE activity_expenses SET record_kind = ? WHERE description LIKE ?",
				models.ActivityKindMfsCharge, models.MfsChargePrefix+"%")
			DB.Exec("UPDATE activity_expenses SET record_kind = ? WHERE record_kind IS NULL",
				models.ActivityKindGeneral)

			if err := DB.Exec("ALTER TABLE activity_expenses ALTER COLUMN record_kind SET NOT NULL").Error; err != nil {
				log.Printf("Error setting record_kind NOT NULL: %v", err)
			}
			DB.Exec("CREATE INDEX IF NOT EXISTS idx_activity_expenses_record_kind ON activity_expenses(record_kind)")
			log.Println("ActivityExpense record_kind migration done")
		}

		// Catch rows created mid-migration with a NULL kind
		var nullCount int64
		DB.Raw("SELECT COUNT(*) FROM activity_expenses WHERE record_kind IS NULL").Scan(&nullCount)
		if nullCount > 0 {
			log.Printf("Found %d activity_expenses rows with NULL record_kind, backfilling...", nullCount)
			DB.Exec("UPDATE activity_expenses SET record_kind = ? WHERE record_kind IS NULL AND description LIKE ?",
				models.ActivityKindMfsCharge, models.MfsChargePrefix+"%")
			DB.Exec("UPDATE activity_expenses SET record_kind = ? WHERE record_kind IS NULL",
				models.ActivityKindGeneral)
		}
	}

	err = DB.AutoMigrate(
		&models.Tender{},
		&models.User{},
		&models.Person{},
		&models.Vendor{},
		&models.LaborEntry{},
		&models.MaterialPurchase{},
		&models.VendorPurchase{},
		&models.VendorPayment{},
		&models.PersonAdvance{},
		&models.PersonExpense{},
		&models.ActivityExpense{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate error: %v", err)
	}

	log.Println("Database connection OK. Migration done.")
}
