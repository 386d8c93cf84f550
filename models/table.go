package models

import "time"

const (
	TableFree = "Free"
	TableBusy = "Busy"
)

// Table.Status is a cache of the reservation ledger. It is only written in
// the same transaction as a reservation write, or by a staff override.
type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Status    string    `gorm:"type:varchar(20);not null;default:'Free'" json:"status"`
	Version   int       `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
