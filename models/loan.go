package models

import "time"

// Loan states. Applications at or below the auto-approval threshold skip
// pending entirely.
const (
	LoanPending  = "pending"
	LoanApproved = "approved"
	LoanRejected = "rejected"
)

// Loan is a single credit application. UserName is denormalized so the
// review queue renders without joining users.
type Loan struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null"`
	UserName  string `gorm:"size:255"`
	Amount    int64  `gorm:"not null"` // requested amount, whole PKR
	Status    string `gorm:"size:16;not null"`
	Document  string `gorm:"size:255"` // optional attached document reference
}
