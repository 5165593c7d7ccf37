package main

import (
	"flag"
	"fmt"
	"os"

	"udhaar/process/docrescan"
)

func main() {
	base := flag.String("upload-base", "uploads", "upload base directory")
	dry := flag.Bool("dry-run", true, "dry-run: don't write to DB")
	minConf := flag.Float64("min-conf", 0.12, "minimum scan confidence to accept")
	flag.Parse()

	if os.Getenv("DB_DSN") == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export and retry")
		os.Exit(2)
	}

	if err := docrescan.Run(*base, *dry, *minConf); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}
