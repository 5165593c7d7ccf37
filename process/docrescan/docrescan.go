// Package docrescan re-runs the income scanner over stored verification
// documents that have no scanned figure yet, e.g. after a parser improvement.
package docrescan

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"udhaar/models"
	"udhaar/pkg/docscan"

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

// Run scans documents without an income figure, resolves their files under
// uploadBase and updates ScannedIncome/ScanConfidence. If dry is true, only
// prints proposed changes.
func Run(uploadBase string, dry bool, minConf float64) error {
	gdb := mustDBFromEnv()

	var docs []models.Document
	if err := gdb.Where("scanned_income IS NULL AND store_path <> ''").Find(&docs).Error; err != nil {
		return fmt.Errorf("fetch documents: %w", err)
	}
	log.Printf("rescanning %d documents", len(docs))

	for i := range docs {
		doc := &docs[i]
		if doc.ContentType != "image/jpeg" && doc.ContentType != "image/png" {
			continue
		}
		full := filepath.Join(uploadBase, filepath.FromSlash(doc.StorePath))
		amt, conf, found, err := docscan.ExtractIncomeFromImage(full)
		if err != nil {
			log.Printf("scan error %s: %v", doc.Name, err)
			continue
		}
		if amt <= 0 || conf < minConf {
			log.Printf("scan skipped %s amt=%d conf=%.2f (min=%.2f)", doc.Name, amt, conf, minConf)
			continue
		}

		if dry {
			fmt.Printf("DRY: would update document id=%d file=%s income=%d conf=%.2f found=%q\n", doc.ID, doc.Name, amt, conf, found)
			continue
		}

		doc.ScannedIncome = &amt
		doc.ScanConfidence = conf
		if err := gdb.Save(doc).Error; err != nil {
			log.Printf("failed update document %s: %v", doc.Name, err)
			continue
		}
		fmt.Printf("updated document id=%d file=%s income=%d\n", doc.ID, doc.Name, amt)

		if doc.ThumbPath == "" {
			thumbRel := doc.StorePath + ".thumb.png"
			if err := docscan.Thumbnail(full, filepath.Join(uploadBase, filepath.FromSlash(thumbRel))); err == nil {
				gdb.Model(doc).Update("thumb_path", thumbRel)
			}
		}
	}
	return nil
}
