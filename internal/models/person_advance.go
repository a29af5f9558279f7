package models

import "time"

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodBank PaymentMethod = "bank"
	PaymentMethodMfs  PaymentMethod = "mfs" // bKash/Nagad etc; carries a cash-out fee
)

// PersonAdvance - cash handed to a person (or login user) for site spending.
// Exactly one of PersonID / UserID is set.
type PersonAdvance struct {
	ID               uint          `gorm:"primaryKey"`
	TenderID         uint          `gorm:"index;not null"`
	Tender           Tender        `gorm:"foreignKey:TenderID"`
	PersonID         *uint         `gorm:"index"`
	Person           *Person       `gorm:"foreignKey:PersonID"`
	UserID           *uint         `gorm:"index"`
	User             *User         `gorm:"foreignKey:UserID"`
	Date             time.Time     `gorm:"index;not null"`
	Amount           int64         `gorm:"not null"` // poisha
	PaymentMethod    PaymentMethod `gorm:"size:20;not null;default:'cash'"`
	PaymentReference string        `gorm:"size:100"` // MFS TrxID
	VoucherNo        string        `gorm:"size:60;uniqueIndex"`
	Purpose          string        `gorm:"size:255"`
	Notes            string        `gorm:"size:500"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PersonExpense - spending reported against an advance
type PersonExpense struct {
	ID          uint      `gorm:"primaryKey"`
	TenderID    uint      `gorm:"index;not null"`
	Tender      Tender    `gorm:"foreignKey:TenderID"`
	PersonID    *uint     `gorm:"index"`
	Person      *Person   `gorm:"foreignKey:PersonID"`
	UserID      *uint     `gorm:"index"`
	User        *User     `gorm:"foreignKey:UserID"`
	Date        time.Time `gorm:"index;not null"`
	Amount      int64     `gorm:"not null"` // poisha
	Description string    `gorm:"size:500"`
	Notes       string    `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
