package models

import "time"

// Activity kinds.
const (
	ActivityLogin           = "LOGIN"
	ActivityLoanApplication = "LOAN_APPLICATION"
	ActivityScoreUpdate     = "SCORE_UPDATE"
	ActivityDocumentUpload  = "DOCUMENT_UPLOAD"
)

// Activity is one append-only audit entry on a user's timeline. Never
// updated or deleted; reads are newest-first.
type Activity struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UserID      uint   `gorm:"index;not null"`
	Kind        string `gorm:"size:32;not null"`
	Description string `gorm:"size:255;not null"`
}
