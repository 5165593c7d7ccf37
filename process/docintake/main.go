// Command docintake bulk-registers verification documents for an applicant
// from a drop directory: creates Document rows, runs the income scanner and
// writes preview thumbnails. With --watch it keeps processing files as they
// land (branch office scanners drop straight into the directory).
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"udhaar/models"
	"udhaar/pkg/docscan"

	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

var verbose bool

// MIME mapping to avoid opening files repeatedly
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// preload cache of documents already registered for the user
type preloadState struct {
	docsByName map[string]*models.Document
	mu         sync.RWMutex
}

func newPreloadState() *preloadState {
	return &preloadState{docsByName: make(map[string]*models.Document, 256)}
}

func (ps *preloadState) get(name string) (*models.Document, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	d, ok := ps.docsByName[name]
	return d, ok
}

func (ps *preloadState) put(d *models.Document) {
	ps.mu.Lock()
	ps.docsByName[d.Name] = d
	ps.mu.Unlock()
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

func main() {
	dirFlag := flag.String("dir", "uploads/inbox", "directory to scan for document images")
	phone := flag.String("phone", "", "phone of the applicant the documents belong to")
	dryRun := flag.Bool("dry-run", false, "skip all DB writes; just list and optionally scan")
	watch := flag.Bool("watch", false, "watch directory for new files")
	workers := flag.Int("workers", 0, "worker pool size (default NumCPU)")
	simulateScan := flag.Bool("simulate-scan", false, "in dry-run: actually run OCR to show extracted figures")
	flag.BoolVar(&verbose, "verbose", false, "verbose per-file logging")
	flag.Parse()

	if *dryRun {
		log.Printf("Dry-run: scanning %s (no DB interaction)", *dirFlag)
		files := listImageFiles(*dirFlag)
		log.Printf("Found %d candidate files", len(files))
		if *simulateScan {
			for _, f := range files {
				if amt, conf, raw, err := docscan.ExtractIncomeFromImage(filepath.Join(*dirFlag, f)); err == nil {
					log.Printf("SCAN %s income=%d conf=%.2f raw=%q", f, amt, conf, raw)
				} else {
					log.Printf("SCAN %s failed: %v", f, err)
				}
			}
		}
		return
	}

	if *phone == "" {
		log.Fatalf("--phone is required (documents must belong to an applicant)")
	}
	db = mustInitDBFromEnv()
	var user models.User
	if err := db.Where("phone = ?", *phone).First(&user).Error; err != nil {
		log.Fatalf("applicant with phone %s not found: %v", *phone, err)
	}

	ps := preloadAll(user.ID)
	log.Printf("Preloaded: documents=%d", len(ps.docsByName))

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, user, ps, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, user, ps, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// preloadAll fetches the user's existing documents to minimize per-file queries.
func preloadAll(userID uint) *preloadState {
	ps := newPreloadState()
	var docs []models.Document
	if err := db.Where("user_id = ?", userID).Find(&docs).Error; err == nil {
		for i := range docs {
			d := docs[i]
			ps.docsByName[d.Name] = &d
		}
	}
	return ps
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	// ignore generated thumbnails to avoid recursive processing
	if strings.Contains(name, ".thumb.") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

func watchDirectory(dir string, user models.User, ps *preloadState, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	go runWorkerPool(dir, user, ps, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

// worker pool orchestrator
func runWorkerPool(dir string, user models.User, ps *preloadState, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processSingleFile(dir, name, user, ps)
			}
		}()
	}
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// processSingleFile registers one document idempotently: skip if already
// known, otherwise create the row, scan for an income figure and write a
// thumbnail.
func processSingleFile(dir, name string, user models.User, ps *preloadState) {
	if _, ok := ps.get(name); ok {
		logV("SKIP document exists %s", name)
		return
	}
	filePath := filepath.Join(dir, name)
	doc := models.Document{
		UserID:      user.ID,
		Name:        name,
		ContentType: extMime[strings.ToLower(filepath.Ext(name))],
		Status:      models.DocPending,
		StorePath:   filepath.ToSlash(filepath.Join("inbox", name)),
	}

	if amt, conf, raw, err := docscan.ExtractIncomeFromImage(filePath); err == nil && amt > 0 {
		doc.ScannedIncome = &amt
		doc.ScanConfidence = conf
		logV("SCAN %s income=%d conf=%.2f raw=%q", name, amt, conf, raw)
	} else if err != nil {
		logV("SCAN %s no income: %v", name, err)
	}

	thumbPath := filePath + ".thumb.png"
	if err := docscan.Thumbnail(filePath, thumbPath); err == nil {
		doc.ThumbPath = doc.StorePath + ".thumb.png"
	}

	if err := db.Create(&doc).Error; err != nil {
		log.Printf("WARN create document %s failed: %v", name, err)
		return
	}
	if err := db.Create(&models.Activity{
		UserID:      user.ID,
		Kind:        models.ActivityDocumentUpload,
		Description: "Uploaded document: " + name,
	}).Error; err != nil {
		log.Printf("WARN activity for %s failed: %v", name, err)
	}
	ps.put(&doc)
	log.Printf("Registered document %s (id=%d)", name, doc.ID)
}
