package models

import "time"

// Household type values for a user's living situation.
const (
	HouseholdOwned  = "owned"
	HouseholdRented = "rented"
	HouseholdFamily = "family"
)

// TelcoSummary aggregates a user's mobile billing behaviour. Populated by the
// history source when the financial profile is completed.
type TelcoSummary struct {
	AverageBill  int64
	LatePayments int
	DataUsageGB  int
	TenureYears  int
}

// UtilitySummary aggregates a user's utility billing behaviour.
type UtilitySummary struct {
	AverageBill  int64
	LatePayments int
	Provider     string `gorm:"size:32"`
}

// User model. Phone and CNIC are the registration identities and must be
// unique. Score stays nil until the financial profile (income, dependents,
// household type) is complete.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time `gorm:"index" json:"-"`
	Phone          string     `gorm:"size:32;not null;uniqueIndex"`
	CNIC           string     `gorm:"column:cnic;size:32;not null;uniqueIndex"`
	Name           string     `gorm:"size:255"`
	Email          string     `gorm:"size:255"`
	HashedPassword []byte     `gorm:"not null" json:"-"`
	RoleID         *uint      `gorm:"index"`
	Role           Role       `gorm:"foreignKey:RoleID;references:ID" json:"-"`

	// Financial profile
	MonthlyIncome int64  `gorm:"not null;default:0"` // PKR per month
	Dependents    *int   // nil until the applicant declares it
	HouseholdType string `gorm:"size:16"` // owned, rented, family; "" until declared

	// Scoring output, present only after the profile is complete
	Score     *int
	RiskLevel string `gorm:"size:8"` // Low, Medium, High

	// Retrieved external history summaries (synthetic until a real
	// aggregator is plugged in)
	HistoryRetrievedAt *time.Time
	Telco              TelcoSummary   `gorm:"embedded;embeddedPrefix:telco_"`
	Utility            UtilitySummary `gorm:"embedded;embeddedPrefix:utility_"`

	Transactions []Transaction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Documents    []Document    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Activities   []Activity    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Loans        []Loan        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// ProfileComplete reports whether enough of the financial profile is present
// to retrieve history and compute a score.
func (u *User) ProfileComplete() bool {
	return u.MonthlyIncome > 0 && u.Dependents != nil && u.HouseholdType != ""
}
