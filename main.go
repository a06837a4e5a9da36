package main

import (
	"context"
	"os"

	"choretracker/config"
	"choretracker/connection"
	"choretracker/scheduler"
	"choretracker/services"

	"github.com/charmbracelet/log"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	logger := connection.NewLogger(cfg.LogLevel, os.Stdout)
	gin.SetMode(cfg.GinMode)
	ctx := context.Background()

	db, err := connection.DBConnection(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", "err", err)
	}
	if err := connection.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", "err", err)
	}

	job := &scheduler.Job{
		DB:       db,
		Locker:   scheduler.NewLocalLocker(),
		Logger:   logger,
		Location: cfg.Location,
	}

	operations := map[string]gfshutdown.Operation{}

	if cfg.RedisURL != "" {
		rdb, err := connection.RedisConnection(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", "err", err)
		}
		job.Locker = scheduler.NewRedisLocker(rdb, scheduler.DefaultLockKey, scheduler.DefaultLockTTL)
		operations["redis"] = func(context.Context) error {
			return rdb.Close()
		}
	}

	if cfg.FirebaseCredentials != "" {
		fb, err := connection.FBConnection(ctx, cfg.FirebaseCredentials, logger)
		if err != nil {
			logger.Fatal("failed to initialize Firestore client", "err", err)
		}
		job.Exporter = services.NewFirestoreExporter(fb)
		operations["firestore"] = func(context.Context) error {
			return fb.Close()
		}
	}

	cron, err := scheduler.StartScheduler(job, cfg.ResetSchedule, cfg.Location, logger)
	if err != nil {
		logger.Fatal("failed to start scheduler", "err", err)
	}
	operations["scheduler"] = func(ctx context.Context) error {
		select {
		case <-cron.Stop().Done():
		case <-ctx.Done():
		}
		return ctx.Err()
	}

	router := connection.NewRouter(connection.ServerDeps{
		Config: cfg,
		DB:     db,
		Job:    job,
		Logger: logger,
	})
	srv := connection.StartServer(cfg.Port, router, logger)
	operations["http-server"] = srv.Shutdown

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, operations)
	exitCode := <-wait

	// the database outlives every other operation
	if err := connection.CloseDB(db); err != nil {
		logger.Error("failed to close database", "err", err)
	}
	logger.Info("application exited", "code", exitCode)
	os.Exit(exitCode)
}
