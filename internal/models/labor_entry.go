package models

import "time"

// LaborEntry - one day's labor cost for a worker category on a tender.
// Khoraki is the daily food/subsistence allowance paid on top of wages.
type LaborEntry struct {
	ID          uint      `gorm:"primaryKey"`
	TenderID    uint      `gorm:"index;not null"`
	Tender      Tender    `gorm:"foreignKey:TenderID"`
	Date        time.Time `gorm:"index;not null"`
	Category    string    `gorm:"size:100;not null"`  // "mason", "helper", "laborer"...
	Headcount   int       `gorm:"not null"`
	DailyRate   int64     `gorm:"not null"`           // poisha per head
	Khoraki     int64     `gorm:"not null;default:0"` // poisha per head
	TotalAmount int64     `gorm:"not null"`           // headcount * (daily_rate + khoraki)
	Notes       string    `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
