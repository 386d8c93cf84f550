package models

import (
	"time"
)

const (
	NotificationConfirmation = "confirmation"
	NotificationReminder     = "reminder"

	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationSkipped = "skipped"
)

// Notification is the audit trail of every mail the dispatcher attempted.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        *uint     `gorm:"index" json:"user_id,omitempty"`
	User          User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	ReservationID *uint     `gorm:"index" json:"reservation_id,omitempty"`
	Kind          string    `gorm:"type:varchar(20);not null" json:"kind"`
	Recipient     string    `gorm:"type:varchar(255)" json:"recipient"`
	Title         *string   `gorm:"type:varchar(100)" json:"title,omitempty"`
	Outcome       string    `gorm:"type:varchar(20);not null" json:"outcome"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
