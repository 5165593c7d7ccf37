package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"udhaar/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_admin <name> <password>")
		os.Exit(2)
	}
	name := os.Args[1]
	password := os.Args[2]

	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in environment")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	// ensure the role exists
	var role models.Role
	if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
		role = models.Role{Name: "administrator", Description: "reviews loans and documents"}
		db.Create(&role)
	}

	// check existing
	var existing models.User
	if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
		fmt.Printf("user %s already exists (id=%d)\n", name, existing.ID)
		os.Exit(0)
	}

	if len(password) < 6 {
		log.Fatal("password too short (min 6)")
	}
	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt failed: %v", err)
	}
	rid := role.ID
	// admins never complete an applicant profile, so the phone and CNIC
	// slots carry placeholder identities
	user := models.User{
		Name:           name,
		Phone:          strings.ToLower(name),
		CNIC:           fmt.Sprintf("99999-%07d-9", os.Getpid()),
		HashedPassword: hpw,
		RoleID:         &rid,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created administrator %s id=%d\n", name, user.ID)
}
