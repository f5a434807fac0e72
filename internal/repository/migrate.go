package repository

import "gorm.io/gorm"

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&resetTokenModel{},
		&productModel{},
		&serviceModel{},
		&availabilityModel{},
		&reviewModel{},
		&orderModel{},
		&orderItemModel{},
		&bookingModel{},
		&messageModel{},
	)
}
