package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	apihttp "github.com/openbucketeer/backend/internal/adapter/http"
	"github.com/openbucketeer/backend/internal/adapter/repository/memory"
	"github.com/openbucketeer/backend/internal/adapter/repository/postgres"
	"github.com/openbucketeer/backend/internal/config"
	"github.com/openbucketeer/backend/internal/domain"
	"github.com/openbucketeer/backend/internal/usecase/balance"
	"github.com/openbucketeer/backend/internal/usecase/distribution"
	"github.com/openbucketeer/backend/internal/usecase/grouping"
	"github.com/openbucketeer/backend/internal/usecase/lifecycle"
	"github.com/openbucketeer/backend/internal/usecase/seeder"
	"github.com/openbucketeer/backend/internal/usecase/versioning"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 1. Setup the ledger store
	ledger, cleanup, err := openLedger(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// 2. Seed the system sentinel entities
	system := domain.DefaultSystemIDs()
	if err := seeder.NewSystemSeeder(ledger, system).Seed(ctx); err != nil {
		return err
	}
	logger.Info("system entities seeded")

	// 3. Initialize the engine services
	groupingService := grouping.NewService(ledger, system)
	versioningService := versioning.NewService(ledger, system)
	balanceService := balance.NewService(ledger)
	lifecycleService := lifecycle.NewService(ledger, system)
	distributionService := distribution.NewService(ledger, system)

	// 4. Start the API server
	api := apihttp.NewServer(
		groupingService,
		versioningService,
		balanceService,
		lifecycleService,
		distributionService,
		logger,
	)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api server listening", "addr", server.Addr, "backend", string(cfg.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openLedger selects the configured storage backend.
func openLedger(cfg *config.Config, logger *slog.Logger) (domain.Ledger, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn("using the in-memory backend, data is not persisted")
		return memory.NewLedger(), func() {}, nil
	default:
		db, err := postgres.NewDB(cfg.DBConnStr)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.RunMigrations(db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewLedger(db), func() { db.Close() }, nil
	}
}
