package models

import "gorm.io/gorm"

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Table{},
		&Reservation{},
		&Contact{},
		&RestoContact{},
		&Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
