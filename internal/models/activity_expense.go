package models

import "time"

// MfsChargePrefix tags activity expenses that are actually MFS cash-out
// fees. The ledger store filters on this prefix; historical rows carry
// nothing else, so the convention has to stay.
const MfsChargePrefix = "[MFS CHARGE]"

type ActivityRecordKind string

const (
	ActivityKindGeneral   ActivityRecordKind = "general"
	ActivityKindMfsCharge ActivityRecordKind = "mfs_charge"
)

// ActivityExpense - site running costs that belong to no person or vendor
// (fuel, permits, tea, transport). MFS fees are stored here too, tagged by
// MfsChargePrefix in the description and by RecordKind.
type ActivityExpense struct {
	ID               uint               `gorm:"primaryKey"`
	TenderID         uint               `gorm:"index;not null"`
	Tender           Tender             `gorm:"foreignKey:TenderID"`
	Date             time.Time          `gorm:"index;not null"`
	Amount           int64              `gorm:"not null"` // poisha
	Description      string             `gorm:"size:500;not null"`
	RecordKind       ActivityRecordKind `gorm:"size:20;not null;default:'general';index"`
	PaymentMethod    PaymentMethod      `gorm:"size:20;not null;default:'cash'"`
	PaymentReference string             `gorm:"size:100"`
	Notes            string             `gorm:"size:500"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
