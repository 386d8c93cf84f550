package models

import "time"

// Contact is a submission of the general "contact us" form.
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"type:varchar(20);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(20);not null" json:"last_name"`
	Subject   string    `gorm:"type:varchar(200);not null" json:"subject"`
	Email     string    `gorm:"type:varchar(50);not null" json:"email"`
	Message   string    `gorm:"type:varchar(500);not null" json:"message"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Contact) TableName() string {
	return "contactings"
}

// RestoContact is a submission of the restaurant page feedback form.
type RestoContact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"type:varchar(20);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(20);not null" json:"last_name"`
	Subject   string    `gorm:"type:varchar(200);not null" json:"subject"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	Message   string    `gorm:"type:varchar(500);not null" json:"message"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (RestoContact) TableName() string {
	return "contacting_restos"
}
