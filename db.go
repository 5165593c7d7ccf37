package main

import (
	"fmt"
	"os"

	"udhaar/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func initDB(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set; a Postgres DSN is required")
	}
	db, err := gorm.Open(postgres.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.AutoMigrate {
		// Roles first so the users FK can be applied safely; migrate models
		// individually so a failure on one doesn't block the others.
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Warn("migration warning (roles)", zap.Error(err))
		}
		seedRoles(db)
		for _, m := range []interface{}{
			&models.User{},
			&models.Transaction{},
			&models.Document{},
			&models.Loan{},
			&models.Activity{},
			&models.RefreshToken{},
		} {
			if err := db.AutoMigrate(m); err != nil {
				log.Warn("migration warning", zap.Error(err))
			}
		}
	}
	seedDB(db, cfg, log)
	return db, nil
}

func seedRoles(db *gorm.DB) {
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}
}

// seedDB makes sure the review console has an administrator account and the
// upload directory exists.
func seedDB(db *gorm.DB, cfg *Config, log *zap.Logger) {
	seedRoles(db)

	var count int64
	db.Model(&models.User{}).Where("phone = ?", "admin").Count(&count)
	if count == 0 {
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Warn("failed to find administrator role", zap.Error(err))
		}
		rid := role.ID
		hashed, _ := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		admin := models.User{
			Phone:          "admin",
			CNIC:           "00000-0000000-0",
			Name:           "Admin",
			HashedPassword: hashed,
			RoleID:         &rid,
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Warn("failed to seed admin user", zap.Error(err))
		} else {
			log.Info("seeded admin user", zap.String("phone", "admin"))
		}
	}

	if err := os.MkdirAll(cfg.UploadBase, 0755); err != nil {
		log.Warn("failed to create upload base dir", zap.String("dir", cfg.UploadBase), zap.Error(err))
	}
}
