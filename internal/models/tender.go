package models

import "time"

type TenderStatus string

const (
	TenderStatusActive    TenderStatus = "active"
	TenderStatusCompleted TenderStatus = "completed"
	TenderStatusOnHold    TenderStatus = "on_hold"
)

// Tender - a construction project/contract being tracked
type Tender struct {
	ID            uint         `gorm:"primaryKey"`
	Name          string       `gorm:"size:200;not null;unique"`
	Location      string       `gorm:"size:255"`
	ClientName    string       `gorm:"size:200"`           // awarding authority / client
	ContractValue int64        `gorm:"not null;default:0"` // poisha
	Status        TenderStatus `gorm:"size:20;not null;default:'active'"`
	StartDate     *time.Time
	EndDate       *time.Time
	Notes         string `gorm:"size:500"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Users []User
}
