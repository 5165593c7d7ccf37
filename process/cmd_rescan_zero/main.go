// Last-resort rescan for documents the normal pass could not read: applies
// aggressive sharpening and contrast before a second scan attempt.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"udhaar/pkg/docscan"

	"github.com/disintegration/imaging"
	_ "github.com/lib/pq"
)

func main() {
	phone := flag.String("phone", "", "limit to one applicant's documents")
	base := flag.String("upload-base", "uploads", "upload base directory")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	query := `SELECT d.id, d.name, d.store_path FROM documents d JOIN users u ON u.id = d.user_id WHERE d.scanned_income IS NULL AND d.store_path <> '' AND d.content_type IN ('image/jpeg','image/png')`
	args := []any{}
	if *phone != "" {
		query += ` AND u.phone = $1`
		args = append(args, *phone)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		log.Fatalf("query: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var name, store string
		if err := rows.Scan(&id, &name, &store); err != nil {
			log.Printf("scan: %v", err)
			continue
		}
		path := filepath.Join(*base, filepath.FromSlash(store))

		img, err := imaging.Open(path)
		if err != nil {
			log.Printf("open %s: %v", path, err)
			continue
		}
		proc := imaging.Sharpen(img, 2.0)
		proc = imaging.AdjustContrast(proc, 30)
		tmp := path + ".retry.png"
		if err := imaging.Save(proc, tmp); err != nil {
			log.Printf("save tmp %s: %v", tmp, err)
			continue
		}

		amt, conf, found, err := docscan.ExtractIncomeFromImage(tmp)
		_ = os.Remove(tmp)
		if err != nil {
			log.Printf("rescan %s: %v", path, err)
			continue
		}
		if amt == 0 {
			log.Printf("no income found for id=%d file=%s (found=%q conf=%.2f)", id, name, found, conf)
			continue
		}

		if _, err := db.Exec(`UPDATE documents SET scanned_income=$1, scan_confidence=$2 WHERE id=$3`, amt, conf, id); err != nil {
			log.Printf("update id=%d: %v", id, err)
			continue
		}
		fmt.Printf("updated id=%d file=%s income=%d conf=%.2f found=%q\n", id, name, amt, conf, found)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("rows: %v", err)
	}
}
