package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepfsd/costing-sheet/internal/api"
	"github.com/deepfsd/costing-sheet/internal/config"
	"github.com/deepfsd/costing-sheet/internal/domain/costing"
	"github.com/deepfsd/costing-sheet/internal/domain/materials"
	"github.com/deepfsd/costing-sheet/internal/infra/blob"
	"github.com/deepfsd/costing-sheet/internal/infra/db"
	httpx "github.com/deepfsd/costing-sheet/internal/infra/http"
	"github.com/deepfsd/costing-sheet/internal/infra/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/subosito/gotenv"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	_ = gotenv.Load()

	cfgPath := flag.String("config", "config/example.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	// Blob-хранилище опционально: без бакета загрузка картинок просто выключена.
	var uploader api.Uploader
	if cfg.Blob.Bucket != "" {
		store, err := blob.New(ctx, blob.Config{
			Bucket:          cfg.Blob.Bucket,
			Region:          cfg.Blob.Region,
			Endpoint:        cfg.Blob.Endpoint,
			PathStyle:       cfg.Blob.PathStyle,
			PublicBaseURL:   cfg.Blob.PublicBaseURL,
			AccessKeyID:     cfg.Blob.AccessKeyID,
			SecretAccessKey: cfg.Blob.SecretAccessKey,
		})
		if err != nil {
			log.Error("blob store init failed", "err", err)
			return
		}
		uploader = store
		log.Info("blob store ready", "bucket", cfg.Blob.Bucket)
	} else {
		log.Warn("blob store not configured, image upload disabled")
	}

	matSvc := materials.NewService(materials.NewRepo(pool), log)
	costRepo := costing.NewRepo(pool)
	handler := api.New(log, matSvc, costRepo, uploader)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, handler)
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
