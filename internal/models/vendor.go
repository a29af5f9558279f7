package models

import "time"

// Vendor - material supplier (cement, rod, brick, sand dealers)
type Vendor struct {
	ID        uint   `gorm:"primaryKey"`
	TenderID  uint   `gorm:"index;not null"`
	Tender    Tender `gorm:"foreignKey:TenderID"`
	Name      string `gorm:"size:200;not null"`
	Phone     string `gorm:"size:50"`
	Address   string `gorm:"size:255"`
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VendorPurchase - goods taken from a vendor on credit
type VendorPurchase struct {
	ID          uint      `gorm:"primaryKey"`
	TenderID    uint      `gorm:"index;not null"`
	Tender      Tender    `gorm:"foreignKey:TenderID"`
	VendorID    uint      `gorm:"index;not null"`
	Vendor      Vendor    `gorm:"foreignKey:VendorID"`
	Date        time.Time `gorm:"index;not null"`
	Amount      int64     `gorm:"not null"` // poisha
	Description string    `gorm:"size:500"`
	Notes       string    `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VendorPayment - money paid to a vendor against the running dues
type VendorPayment struct {
	ID               uint          `gorm:"primaryKey"`
	TenderID         uint          `gorm:"index;not null"`
	Tender           Tender        `gorm:"foreignKey:TenderID"`
	VendorID         uint          `gorm:"index;not null"`
	Vendor           Vendor        `gorm:"foreignKey:VendorID"`
	Date             time.Time     `gorm:"index;not null"`
	Amount           int64         `gorm:"not null"` // poisha
	PaymentMethod    PaymentMethod `gorm:"size:20;not null;default:'cash'"`
	PaymentReference string        `gorm:"size:100"` // MFS TrxID / cheque no
	Notes            string        `gorm:"size:500"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
