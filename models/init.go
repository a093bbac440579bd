package models

import (
	"gorm.io/gorm"
)

// CreateSuperAdmin seeds the bootstrap admin account during migration so a
// fresh deployment can register professors and other admins.
func CreateSuperAdmin(db *gorm.DB, passwordHash string) error {
	user := User{
		Username:     "superadmin",
		FullName:     "Super Admin",
		Email:        "superadmin@example.com",
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
	}
	if err := db.FirstOrCreate(&user, "username = ?", user.Username).Error; err != nil {
		return err
	}

	admin := Admin{UserID: user.ID}
	return db.FirstOrCreate(&admin, "user_id = ?", user.ID).Error
}
