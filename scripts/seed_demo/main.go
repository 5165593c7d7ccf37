// Seeds the demo dataset: two named applicants with complete profiles, the
// reviewer account, a large pending loan for the review queue, and a handful
// of random applicants with loan applications. Safe to re-run; existing
// phones are skipped.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"udhaar/models"
	"udhaar/pkg/history"
	"udhaar/pkg/scoring"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	userRole := ensureRole(db, "user", "loan applicant")
	adminRole := ensureRole(db, "administrator", "reviews loans and documents")

	nabeegh := seedApplicant(db, rnd, userRole, "Nabeegh", "03001234567", "12345-1234567-1", "12345678", 85000)
	ahad := seedApplicant(db, rnd, userRole, "Ahad", "03007654321", "54321-7654321-1", "12345678", 85000)
	seedAdmin(db, adminRole)

	if nabeegh != nil {
		seedDocument(db, nabeegh, "Salary Slip.pdf")
	}
	if ahad != nil {
		seedDocument(db, ahad, "Salary Slip.pdf")
		// above the auto-approval threshold, lands in the review queue
		seedLoan(db, ahad, 600000, "Property_Docs.pdf")
	}

	for _, name := range []string{"Ali", "Bilal", "Sara", "Umer", "Hina", "Zain"} {
		phone := fmt.Sprintf("0300%07d", rnd.Intn(10000000))
		cnic := fmt.Sprintf("%05d-%07d-1", rnd.Intn(100000), rnd.Intn(10000000))
		income := int64(rnd.Intn(100000) + 30000)
		u := seedApplicant(db, rnd, userRole, name, phone, cnic, "password", income)
		if u == nil {
			continue
		}
		seedDocument(db, u, "Bank_Statement.pdf")
		seedLoan(db, u, int64(rnd.Intn(400000)+100000), "Bank_Statement.pdf")
	}

	log.Println("demo seed complete")
}

func ensureRole(db *gorm.DB, name, desc string) *models.Role {
	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		role = models.Role{Name: name, Description: desc}
		if err := db.Create(&role).Error; err != nil {
			log.Fatalf("create role %s: %v", name, err)
		}
	}
	return &role
}

// seedApplicant creates a user with a complete financial profile, retrieved
// history and a computed score. Returns nil if the phone already exists.
func seedApplicant(db *gorm.DB, rnd *rand.Rand, role *models.Role, name, phone, cnic, password string, income int64) *models.User {
	var existing models.User
	if err := db.Where("phone = ?", phone).First(&existing).Error; err == nil {
		log.Printf("skip %s: phone %s already seeded (id=%d)", name, phone, existing.ID)
		return nil
	}

	hpw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}

	src := history.NewSynthetic(rnd.Int63())
	telco, utility := src.Summaries()
	dependents := rnd.Intn(4)
	score, risk := scoring.Compute(income, telco, utility, dependents)
	now := time.Now()
	rid := role.ID

	user := models.User{
		Phone:              phone,
		CNIC:               cnic,
		Name:               name,
		HashedPassword:     hpw,
		RoleID:             &rid,
		MonthlyIncome:      income,
		Dependents:         &dependents,
		HouseholdType:      models.HouseholdRented,
		Score:              &score,
		RiskLevel:          risk,
		HistoryRetrievedAt: &now,
		Telco:              telco,
		Utility:            utility,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("create user %s: %v", name, err)
	}

	txns := src.Transactions(now)
	for i := range txns {
		txns[i].UserID = user.ID
	}
	if err := db.Create(&txns).Error; err != nil {
		log.Fatalf("create transactions for %s: %v", name, err)
	}

	for _, a := range []models.Activity{
		{UserID: user.ID, Kind: models.ActivityLogin, Description: "Account created"},
		{UserID: user.ID, Kind: models.ActivityScoreUpdate, Description: "Retrieved external financial data"},
		{UserID: user.ID, Kind: models.ActivityScoreUpdate, Description: fmt.Sprintf("Credit score updated to %d", score)},
	} {
		if err := db.Create(&a).Error; err != nil {
			log.Fatalf("create activity for %s: %v", name, err)
		}
	}

	log.Printf("seeded %s (id=%d score=%d %s)", name, user.ID, score, risk)
	return &user
}

func seedAdmin(db *gorm.DB, role *models.Role) {
	var existing models.User
	if err := db.Where("phone = ?", "admin").First(&existing).Error; err == nil {
		log.Printf("skip Admin: already seeded (id=%d)", existing.ID)
		return
	}
	hpw, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("bcrypt: %v", err)
	}
	rid := role.ID
	admin := models.User{
		Phone:          "admin",
		CNIC:           "00000-0000000-0",
		Name:           "Admin",
		HashedPassword: hpw,
		RoleID:         &rid,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("seeded Admin (id=%d)", admin.ID)
}

func seedDocument(db *gorm.DB, user *models.User, name string) {
	doc := models.Document{
		UserID:      user.ID,
		Name:        name,
		ContentType: "application/pdf",
		Status:      models.DocPending,
	}
	if err := db.Create(&doc).Error; err != nil {
		log.Fatalf("create document for %s: %v", user.Name, err)
	}
	act := models.Activity{UserID: user.ID, Kind: models.ActivityDocumentUpload, Description: "Uploaded document: " + name}
	if err := db.Create(&act).Error; err != nil {
		log.Fatalf("create activity for %s: %v", user.Name, err)
	}
}

func seedLoan(db *gorm.DB, user *models.User, amount int64, document string) {
	status := models.LoanPending
	if amount <= 500000 {
		status = models.LoanApproved
	}
	loan := models.Loan{
		UserID:   user.ID,
		UserName: user.Name,
		Amount:   amount,
		Status:   status,
		Document: document,
	}
	if err := db.Create(&loan).Error; err != nil {
		log.Fatalf("create loan for %s: %v", user.Name, err)
	}
	act := models.Activity{
		UserID:      user.ID,
		Kind:        models.ActivityLoanApplication,
		Description: fmt.Sprintf("Applied for loan of PKR %s", withCommas(amount)),
	}
	if err := db.Create(&act).Error; err != nil {
		log.Fatalf("create activity for %s: %v", user.Name, err)
	}
	log.Printf("seeded loan for %s: %d (%s)", user.Name, amount, status)
}

func withCommas(n int64) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
