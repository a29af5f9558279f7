package models

import "time"

// Person - staff without a login account (site supervisors, foremen) who
// still receive advances and submit expenses. Login users receive advances
// through their User record instead; the ledger treats both the same way.
type Person struct {
	ID        uint   `gorm:"primaryKey"`
	TenderID  uint   `gorm:"index;not null"`
	Tender    Tender `gorm:"foreignKey:TenderID"`
	Name      string `gorm:"size:200;not null"`
	Phone     string `gorm:"size:50"`
	Role      string `gorm:"size:100"` // free text: "site manager", "foreman"...
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
