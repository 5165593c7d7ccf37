package report

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"udhaar/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

// RunReport prints a month-bounded loan origination report (month in
// YYYY-MM): application count and requested volume per status, and
// optionally lists matching rows.
func RunReport(month string, list bool) {
	gdb := mustDBFromEnv()

	t, err := time.Parse("2006-01", month)
	if err != nil {
		log.Fatalf("invalid month format, expected YYYY-MM: %v", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	fmt.Printf("Loan report for month=%s (UTC):\n", month)
	for _, status := range []string{models.LoanApproved, models.LoanPending, models.LoanRejected} {
		var total sql.NullInt64
		var cnt int64
		if err := gdb.Raw(`SELECT COALESCE(SUM(amount),0) AS total, COUNT(*) AS cnt FROM loans WHERE status = ? AND created_at >= ? AND created_at < ?`, status, start, end).Row().Scan(&total, &cnt); err != nil {
			log.Fatalf("query failed: %v", err)
		}
		fmt.Printf("  %-8s applications=%d requested_pkr=%d\n", status, cnt, total.Int64)
	}

	if list {
		var rows []models.Loan
		if err := gdb.Where("created_at >= ? AND created_at < ?", start, end).Order("id").Find(&rows).Error; err != nil {
			log.Fatalf("fetch rows failed: %v", err)
		}
		for _, r := range rows {
			fmt.Printf("%d|%s|%d|%s|%s\n", r.ID, r.UserName, r.Amount, r.Status, r.CreatedAt.Format(time.RFC3339))
		}
	}
}
