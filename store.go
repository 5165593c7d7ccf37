package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"udhaar/models"
	"udhaar/pkg/history"
	"udhaar/pkg/scoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoanAutoApproveLimit is the largest amount (PKR) approved without manual
// review. Anything above it starts pending and waits for an admin decision.
const LoanAutoApproveLimit = 500000

// decideLoanStatus applies the auto-approval rule at creation time.
func decideLoanStatus(amount int64) string {
	if amount > LoanAutoApproveLimit {
		return models.LoanPending
	}
	return models.LoanApproved
}

// Store owns all applicant, loan and document state. Mutations run inside a
// DB transaction and under one mutex, so exactly one is in flight at a time
// and none leaves a user half-updated.
type Store struct {
	db      *gorm.DB
	history history.Source
	log     *zap.Logger
	mu      sync.Mutex
}

func NewStore(db *gorm.DB, src history.Source, log *zap.Logger) *Store {
	return &Store{db: db, history: src, log: log}
}

// NewUserParams carries the registration fields.
type NewUserParams struct {
	Phone         string
	CNIC          string
	Name          string
	Email         string
	MonthlyIncome int64
	Secret        string
	RoleName      string // defaults to "user"
}

// ProfileUpdate carries the optional profile-completion fields; nil means
// "leave as is".
type ProfileUpdate struct {
	Name          *string
	Email         *string
	MonthlyIncome *int64
	Dependents    *int
	HouseholdType *string
}

// CreateUser registers a new applicant: unique phone and CNIC, hashed
// secret, an immediately fabricated transaction history and an "Account
// created" log entry.
func (st *Store) CreateUser(p NewUserParams) (*models.User, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	hashed, err := hashSecret(p.Secret)
	if err != nil {
		return nil, err
	}
	roleName := p.RoleName
	if roleName == "" {
		roleName = "user"
	}

	var user models.User
	err = st.db.Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&models.User{}).Where("phone = ?", p.Phone).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return fmt.Errorf("phone number %w", ErrDuplicateKey)
		}
		if err := tx.Model(&models.User{}).Where("cnic = ?", p.CNIC).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return fmt.Errorf("CNIC %w", ErrDuplicateKey)
		}

		var role models.Role
		if err := tx.Where("name = ?", roleName).FirstOrCreate(&role, models.Role{Name: roleName, Description: "regular user"}).Error; err != nil {
			return err
		}
		rid := role.ID
		user = models.User{
			Phone:          p.Phone,
			CNIC:           p.CNIC,
			Name:           p.Name,
			Email:          p.Email,
			MonthlyIncome:  p.MonthlyIncome,
			HashedPassword: hashed,
			RoleID:         &rid,
		}
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueConstraintError(err) { // race after the pre-check
				return fmt.Errorf("phone or CNIC %w", ErrDuplicateKey)
			}
			return err
		}

		txns := st.history.Transactions(time.Now())
		for i := range txns {
			txns[i].UserID = user.ID
		}
		if len(txns) > 0 {
			if err := tx.Create(&txns).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.Activity{UserID: user.ID, Kind: models.ActivityLogin, Description: "Account created"}).Error
	})
	if err != nil {
		return nil, err
	}
	st.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("phone", user.Phone))
	return &user, nil
}

// Authenticate matches a case-sensitive phone or case-insensitive name
// against the stored secret and logs the login.
func (st *Store) Authenticate(login, secret string) (*models.User, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var user models.User
	if err := st.db.Where("phone = ? OR LOWER(name) = LOWER(?)", login, login).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if !checkSecret(user.HashedPassword, secret) {
		return nil, ErrInvalidCredentials
	}
	if err := st.db.Create(&models.Activity{UserID: user.ID, Kind: models.ActivityLogin, Description: "Logged in"}).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile merges the supplied fields. When income, dependents and
// household type are all present afterwards, it retrieves external history
// (first completion only; later updates reuse it so the score recomputes
// deterministically) and recomputes the score, all in one transaction.
func (st *Store) UpdateProfile(userID uint, p ProfileUpdate) (*models.User, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var user models.User
	err := st.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %w", ErrNotFound)
			}
			return err
		}
		if p.Name != nil {
			user.Name = *p.Name
		}
		if p.Email != nil {
			user.Email = *p.Email
		}
		if p.MonthlyIncome != nil {
			user.MonthlyIncome = *p.MonthlyIncome
		}
		if p.Dependents != nil {
			d := *p.Dependents
			user.Dependents = &d
		}
		if p.HouseholdType != nil {
			user.HouseholdType = *p.HouseholdType
		}

		if user.ProfileComplete() {
			if user.HistoryRetrievedAt == nil {
				telco, utility := st.history.Summaries()
				user.Telco = telco
				user.Utility = utility
				now := time.Now()
				user.HistoryRetrievedAt = &now
				if err := tx.Create(&models.Activity{UserID: user.ID, Kind: models.ActivityScoreUpdate, Description: "Retrieved external financial data"}).Error; err != nil {
					return err
				}
			}
			deps := 0
			if user.Dependents != nil {
				deps = *user.Dependents
			}
			score, risk := scoring.Compute(user.MonthlyIncome, user.Telco, user.Utility, deps)
			scoreComputations.Inc()
			user.Score = &score
			user.RiskLevel = risk
			if err := tx.Create(&models.Activity{UserID: user.ID, Kind: models.ActivityScoreUpdate, Description: fmt.Sprintf("Credit score updated to %d", score)}).Error; err != nil {
				return err
			}
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	if user.Score != nil {
		st.log.Info("profile updated", zap.Uint("user_id", user.ID), zap.Int("score", *user.Score), zap.String("risk", user.RiskLevel))
	}
	return &user, nil
}

// GetUser is a read-only lookup; an unknown id returns (nil, nil).
func (st *Store) GetUser(userID uint) (*models.User, error) {
	var user models.User
	if err := st.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Transactions returns the user's transaction history newest-first.
func (st *Store) Transactions(userID uint) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := st.db.Where("user_id = ?", userID).Order("date desc, id desc").Find(&txns).Error
	return txns, err
}

// Activities returns the user's activity log newest-first.
func (st *Store) Activities(userID uint) ([]models.Activity, error) {
	var acts []models.Activity
	err := st.db.Where("user_id = ?", userID).Order("id desc").Find(&acts).Error
	return acts, err
}

// CreateLoan records a credit application. Amounts at or below the
// auto-approval limit are approved immediately; larger ones wait for an
// admin decision.
func (st *Store) CreateLoan(userID uint, amount int64, documentRef string) (*models.Loan, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var loan models.Loan
	err := st.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %w", ErrNotFound)
			}
			return err
		}
		name := user.Name
		if name == "" {
			name = "Unknown"
		}
		loan = models.Loan{
			UserID:   user.ID,
			UserName: name,
			Amount:   amount,
			Status:   decideLoanStatus(amount),
			Document: documentRef,
		}
		if err := tx.Create(&loan).Error; err != nil {
			return err
		}
		return tx.Create(&models.Activity{
			UserID:      user.ID,
			Kind:        models.ActivityLoanApplication,
			Description: fmt.Sprintf("Applied for loan of PKR %s", formatPKR(amount)),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	loansCreated.WithLabelValues(loan.Status).Inc()
	st.log.Info("loan created", zap.Uint("loan_id", loan.ID), zap.Uint("user_id", loan.UserID), zap.Int64("amount", loan.Amount), zap.String("status", loan.Status))
	return &loan, nil
}

// ListLoans returns every application in insertion order.
func (st *Store) ListLoans() ([]models.Loan, error) {
	var loans []models.Loan
	err := st.db.Order("id").Find(&loans).Error
	return loans, err
}

// LoansForUser returns one user's applications, newest first.
func (st *Store) LoansForUser(userID uint) ([]models.Loan, error) {
	var loans []models.Loan
	err := st.db.Where("user_id = ?", userID).Order("id desc").Find(&loans).Error
	return loans, err
}

// SetLoanStatus overwrites a loan's status. A decided loan may be re-decided;
// the gate stays open on purpose.
func (st *Store) SetLoanStatus(loanID uint, status string) (*models.Loan, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var loan models.Loan
	if err := st.db.First(&loan, loanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("loan %w", ErrNotFound)
		}
		return nil, err
	}
	loan.Status = status
	if err := st.db.Save(&loan).Error; err != nil {
		return nil, err
	}
	st.log.Info("loan decided", zap.Uint("loan_id", loan.ID), zap.String("status", status))
	return &loan, nil
}

// AddDocument attaches an uploaded verification document (status pending)
// and logs the upload.
func (st *Store) AddDocument(userID uint, doc *models.Document) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %w", ErrNotFound)
			}
			return err
		}
		doc.UserID = user.ID
		if doc.Status == "" {
			doc.Status = models.DocPending
		}
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		return tx.Create(&models.Activity{
			UserID:      user.ID,
			Kind:        models.ActivityDocumentUpload,
			Description: fmt.Sprintf("Uploaded document: %s", doc.Name),
		}).Error
	})
}

// SetDocumentStatus overwrites a document's review status.
func (st *Store) SetDocumentStatus(userID, docID uint, status string) (*models.Document, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var user models.User
	if err := st.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %w", ErrNotFound)
		}
		return nil, err
	}
	var doc models.Document
	if err := st.db.Where("user_id = ?", userID).First(&doc, docID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document %w", ErrNotFound)
		}
		return nil, err
	}
	doc.Status = status
	if err := st.db.Save(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// DocumentsForUser returns one user's documents, newest first.
func (st *Store) DocumentsForUser(userID uint) ([]models.Document, error) {
	var docs []models.Document
	err := st.db.Where("user_id = ?", userID).Order("id desc").Find(&docs).Error
	return docs, err
}

// DocumentReview pairs a document with its owner for the admin queue.
type DocumentReview struct {
	models.Document
	UserName string
	Phone    string
}

// AllDocuments returns every document with owner identity, newest upload
// first.
func (st *Store) AllDocuments() ([]DocumentReview, error) {
	var out []DocumentReview
	err := st.db.Model(&models.Document{}).
		Select("documents.*, users.name AS user_name, users.phone AS phone").
		Joins("JOIN users ON users.id = documents.user_id").
		Order("documents.created_at desc, documents.id desc").
		Scan(&out).Error
	return out, err
}

// formatPKR renders an amount with thousands separators for log lines
// ("600,000").
func formatPKR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%d", amount)
	n := len(s)
	if n > 3 {
		var parts []string
		for n > 3 {
			parts = append([]string{s[n-3:]}, parts...)
			s = s[:n-3]
			n = len(s)
		}
		parts = append([]string{s}, parts...)
		s = strings.Join(parts, ",")
	}
	if neg {
		return "-" + s
	}
	return s
}
