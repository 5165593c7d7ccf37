package models

import "time"

// Transaction direction and settlement values.
const (
	TxnCredit = "credit"
	TxnDebit  = "debit"

	TxnPaid    = "Paid"
	TxnPending = "Pending"
	TxnFailed  = "Failed"
)

// Transaction categories.
const (
	CategoryUtility = "Utility"
	CategoryTelco   = "Telco"
	CategoryRent    = "Rent"
	CategorySalary  = "Salary"
	CategoryOther   = "Other"
)

// Transaction is one synthetic financial event belonging to a user.
// Immutable once generated.
type Transaction struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UserID      uint      `gorm:"index;not null"`
	Date        time.Time `gorm:"index;not null"`
	Description string    `gorm:"size:255;not null"`
	Amount      int64     `gorm:"not null"` // whole PKR, always positive
	Type        string    `gorm:"size:8;not null"`
	Category    string    `gorm:"size:16;not null"`
	Status      string    `gorm:"size:16;not null"`
}
