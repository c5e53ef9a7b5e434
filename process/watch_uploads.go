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

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"keuanganku/models"
)

// Global DB handle for helper funcs
var db *gorm.DB

// global flags (parsed in main)
var (
	verbose    bool
	thumbWidth int
)

// referencedState caches image URLs referenced from the database so the
// orphan check does not query per file.
type referencedState struct {
	urls map[string]bool
	mu   sync.RWMutex
}

func newReferencedState() *referencedState {
	return &referencedState{urls: make(map[string]bool, 1024)}
}

func (rs *referencedState) has(url string) bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.urls[url]
}

func (rs *referencedState) put(url string) {
	rs.mu.Lock()
	rs.urls[url] = true
	rs.mu.Unlock()
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

// Main: scans the receipt upload directory, generates bounded-width web
// derivatives, flags files no row references anymore, optional watch mode.
func main() {
	_ = godotenv.Load()

	dirFlag := flag.String("dir", "public/transactions", "directory to scan for receipt images")
	dryRun := flag.Bool("dry-run", false, "Skip all DB queries and writes; just list files")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.IntVar(&thumbWidth, "thumb-width", 480, "Width of generated thumbnails")
	flag.Parse()

	if *dryRun {
		log.Printf("Dry-run: scanning %s (no DB interaction)", *dirFlag)
		files := listImageFiles(*dirFlag)
		log.Printf("Found %d candidate files", len(files))
		for _, f := range files {
			logV("candidate %s", f)
		}
		return
	}

	db = mustInitDBFromEnv()
	rs := preloadReferenced()
	log.Printf("Preloaded: referenced images=%d", len(rs.urls))

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, rs, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, rs, effectiveWorkers(*workers)); err != nil {
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

// preloadReferenced fetches every image URL still attached to a transaction
// or user so the per-file orphan check stays in memory.
func preloadReferenced() *referencedState {
	rs := newReferencedState()
	var txURLs []string
	if err := db.Model(&models.Transaction{}).
		Where("image_url <> ''").
		Pluck("image_url", &txURLs).Error; err == nil {
		for _, u := range txURLs {
			rs.urls[u] = true
		}
	}
	var photoURLs []string
	if err := db.Model(&models.User{}).
		Where("photo_url <> ''").
		Pluck("photo_url", &photoURLs).Error; err == nil {
		for _, u := range photoURLs {
			rs.urls[u] = true
		}
	}
	return rs
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func watchDirectory(dir string, rs *referencedState, workers int) error {
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
				if ev.Op&fsnotify.Create == fsnotify.Create || ev.Op&fsnotify.Write == fsnotify.Write {
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

	// Use worker pool for watch events too
	go runWorkerPool(dir, rs, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

func isSupportedExt(name string) bool {
	// ignore generated derivatives to avoid recursive processing
	if strings.Contains(name, ".thumb.") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// worker pool orchestrator
func runWorkerPool(dir string, rs *referencedState, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processSingleFile(dir, name, rs)
			}
		}()
	}
	// feed initial
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		// also relay from extra channels if provided
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		// if no extraCh (scan only) close when done
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// processSingleFile generates the thumbnail for one image and flags files
// nothing in the database references anymore.
func processSingleFile(dir, name string, rs *referencedState) {
	filePath := filepath.Join(dir, name)
	publicURL := "/public/" + filepath.Base(dir) + "/" + name

	if !rs.has(publicURL) {
		// a freshly uploaded file may not have been attached yet; re-check
		// the live row before calling it an orphan
		var n int64
		if err := db.Model(&models.Transaction{}).
			Where("image_url = ?", publicURL).
			Count(&n).Error; err == nil && n > 0 {
			rs.put(publicURL)
		} else {
			log.Printf("ORPHAN %s (no row references it)", publicURL)
			return
		}
	}

	if err := ensureThumbnail(filePath, name); err != nil {
		log.Printf("ERROR thumbnail %s: %v", name, err)
		return
	}
	logV("processed %s", name)
}

// ensureThumbnail writes <stem>.thumb<ext> beside the original, skipping
// files whose derivative is already newer than the source.
func ensureThumbnail(filePath, name string) error {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	thumbPath := filepath.Join(filepath.Dir(filePath), stem+".thumb"+ext)

	src, err := os.Stat(filePath)
	if err != nil {
		return err
	}
	if t, err := os.Stat(thumbPath); err == nil && t.ModTime().After(src.ModTime()) {
		logV("SKIP thumb up to date %s", name)
		return nil
	}

	img, err := imaging.Open(filePath)
	if err != nil {
		return err
	}
	if img.Bounds().Dx() > thumbWidth {
		img = imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	}
	return imaging.Save(img, thumbPath)
}
