package models

import "time"

// Document review states.
const (
	DocPending      = "pending"
	DocApproved     = "approved"
	DocRejected     = "rejected"
	DocNeedMoreInfo = "need_more_info"
)

// Document is an uploaded verification artifact (salary slip, bank
// statement, property papers). Only Status changes after creation, via
// admin review.
type Document struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint   `gorm:"index;not null"`
	Name        string `gorm:"size:255;not null"`
	ContentType string `gorm:"size:128"`
	Status      string `gorm:"size:16;not null;default:pending"`
	StorePath   string `gorm:"column:store_path;size:512"` // relative path under the upload base
	ThumbPath   string `gorm:"column:thumb_path;size:512"` // optional preview thumbnail

	// Income figure recovered from the document by OCR, if any. Used to
	// cross-check the applicant's declared income during review.
	ScannedIncome  *int64
	ScanConfidence float64
}
