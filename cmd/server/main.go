package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/performance-signup/internal/config"
	"github.com/iliyamo/performance-signup/internal/database"
	"github.com/iliyamo/performance-signup/internal/logger"
	"github.com/iliyamo/performance-signup/internal/queue"
	"github.com/iliyamo/performance-signup/internal/repository"
	"github.com/iliyamo/performance-signup/internal/router"
	"github.com/iliyamo/performance-signup/internal/schedule"
	"github.com/iliyamo/performance-signup/internal/service"
)

const claimLockKey = "signup:claim-lock"

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	zl, err := logger.New(config.LoadLogConfig())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		zl.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, closeTable := openTable(cfg, zl)
	defer closeTable()
	if err := table.EnsureHeader(ctx); err != nil {
		zl.Warn("schedule setup failed; continuing", zap.Error(err))
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		zl.Warn("redis unavailable: claim lock, cache and rate limit disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	opts := service.Options{
		Table:  table,
		Parser: schedule.DateParser{Year: cfg.ProgramYear, Location: cfg.Location},
		Logger: zl,
	}
	if rdb != nil {
		opts.Locker = service.NewRedisLocker(rdb, claimLockKey, cfg.ClaimLockTTL, cfg.ClaimLockWait)
	}
	if cfg.NotifyEnabled {
		opts.Notifier = &service.AMQPNotifier{URL: cfg.RabbitMQURL, Logger: zl}
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, LogDir: cfg.RegLogDir, Logger: zl}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("registration consumer stopped", zap.Error(err))
			}
		}()
	} else {
		opts.Notifier = service.LogNotifier{Logger: zl}
	}

	e := router.New(router.Deps{
		Config:    cfg,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Booking:   service.NewBookingService(opts),
		Log:       zl,
	})

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("backend", cfg.Backend))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}

// openTable returns the configured schedule store and its cleanup func.
func openTable(cfg config.Config, zl *zap.Logger) (service.Table, func()) {
	switch cfg.Backend {
	case config.BackendMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			zl.Fatal("mysql", zap.Error(err))
		}
		return repository.NewMySQLTable(db), func() { _ = db.Close() }
	case config.BackendMemory:
		return repository.NewMemoryTable(), func() {}
	default:
		return repository.NewWorkbookTable(cfg.XLSXPath, cfg.SheetName), func() {}
	}
}
