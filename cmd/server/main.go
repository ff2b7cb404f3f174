package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roomsathi/feedback/internal/api"
	"github.com/roomsathi/feedback/internal/config"
	"github.com/roomsathi/feedback/internal/forms"
	"github.com/roomsathi/feedback/internal/middleware"
	"github.com/roomsathi/feedback/internal/storage"
	"github.com/roomsathi/feedback/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := openDatabase(cfg.DBPath, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	catalog := forms.NewCatalog()
	drafts := forms.NewDraftStore(store)
	drafts.SetTTL(cfg.DraftTTL)
	drafts.SetDebounce(cfg.SaveDebounce)
	guard := forms.NewGuard(store, []byte(cfg.JWTSecret))
	guard.SetWindow(cfg.LockWindow)
	manager := forms.NewManager(catalog, drafts, guard)

	sink := forms.NewHTTPSink(cfg.SinkBaseURL, &http.Client{Timeout: cfg.SinkTimeout})
	secret := []byte(cfg.JWTSecret)
	signer := func(name, respondentType, lang string) (string, error) {
		return token.Sign(secret, name, respondentType, lang, 0)
	}
	pipeline := forms.NewPipeline(catalog, guard, drafts, sink, store, signer)

	mux := http.NewServeMux()
	api.NewRouter(manager, pipeline, catalog, store, secret).Register(mux)

	// Static frontend, when bundled into the image.
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	handler := middleware.NoStore(middleware.SecureHeaders(mux))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("feedback server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openDatabase(path, migrationsDir string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := storage.RunMigrations(db, migrationsDir); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
