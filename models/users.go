package models

import "time"

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"type:varchar(80);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	// Staff accounts carry no payment instrument, hence the nullable columns.
	CardNumber *string    `gorm:"type:varchar(16);uniqueIndex" json:"-"`
	CVV        *int       `gorm:"column:cvv;uniqueIndex" json:"-"`
	Expiry     *time.Time `gorm:"type:date" json:"-"`
	Balance    int        `gorm:"not null;default:0" json:"balance"`
	Role       string     `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}
