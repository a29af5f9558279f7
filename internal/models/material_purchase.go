package models

import "time"

// MaterialPurchase - materials bought for a tender. VendorID is set when
// the purchase went on a vendor's credit book; cash-counter purchases
// leave it nil.
type MaterialPurchase struct {
	ID            uint          `gorm:"primaryKey"`
	TenderID      uint          `gorm:"index;not null"`
	Tender        Tender        `gorm:"foreignKey:TenderID"`
	VendorID      *uint         `gorm:"index"`
	Vendor        *Vendor       `gorm:"foreignKey:VendorID"`
	Date          time.Time     `gorm:"index;not null"`
	MaterialName  string        `gorm:"size:200;not null"` // "cement", "rod 60 grade"...
	Quantity      float64       `gorm:"not null"`
	Unit          string        `gorm:"size:50"`           // bag, cft, ton, pcs
	UnitPrice     int64         `gorm:"not null"`          // poisha
	TotalAmount   int64         `gorm:"not null"`          // poisha
	PaymentMethod PaymentMethod `gorm:"size:20;not null;default:'cash'"`
	Notes         string        `gorm:"size:500"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
