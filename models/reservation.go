package models

import "time"

const (
	ReservationPending = "Pending"
	ReservationDone    = "Done"
)

// SlotLength is the fixed occupancy window assumed for every reservation.
const SlotLength = time.Hour

type Reservation struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	UserID  uint  `gorm:"not null;index" json:"user_id"`
	User    User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableID uint  `gorm:"not null;index:idx_reservation_table_start,priority:1" json:"table_id"`
	Table   Table `gorm:"foreignKey:TableID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	// Date and Time keep the values as the guest entered them, StartsAt is
	// the same instant in UTC and is what overlap and sweep queries use.
	Date      string    `gorm:"type:varchar(10);not null" json:"date"`
	Time      string    `gorm:"type:varchar(5);not null" json:"time"`
	StartsAt  time.Time `gorm:"not null;index:idx_reservation_table_start,priority:2;index" json:"starts_at"`
	PartySize int       `gorm:"not null" json:"party_size"`
	Status    string    `gorm:"type:varchar(20);default:'Pending'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (r *Reservation) IsDone() bool {
	return r.Status == ReservationDone
}
