package main

import (
	"fmt"
	"os"
	"time"

	"udhaar/pkg/history"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := LoadConfig()
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Support a lightweight migrate command: `./udhaar migrate`
	// It runs AutoMigrate and seeding then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if _, err := initDB(cfg, log); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migration and seeding completed")
		return
	}

	db, err := initDB(cfg, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	store := NewStore(db, history.NewSynthetic(time.Now().UnixNano()), log)
	s := &server{cfg: cfg, db: db, store: store, log: log}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(requestLogMiddleware(log))
	r.Use(metricsMiddleware())

	setupRoutes(r, s)

	log.Info("listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
