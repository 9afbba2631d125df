package database

import (
	"errors"
	"log"
	"os"

	"backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSuperAdmin creates the initial SUPER_ADMIN account if no user exists
// with the configured email. Idempotent across restarts.
func SeedSuperAdmin(db *gorm.DB) error {
	email := os.Getenv("SUPER_ADMIN_EMAIL")
	if email == "" {
		email = "superadmin@arcitech.local"
	}
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if password == "" {
		password = "Admin@123"
	}

	var existing model.User
	err := db.First(&existing, "email = ?", email).Error
	if err == nil {
		log.Println("Super admin already exists:", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		FullName: "Super Admin",
		Email:    email,
		Password: string(hashed),
		Role:     model.RoleSuperAdmin,
		Active:   true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Seeded super admin:", email)
	return nil
}
