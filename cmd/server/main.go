package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/hongminglow/gatekeeper/internal/account"
	"github.com/hongminglow/gatekeeper/internal/auth"
	"github.com/hongminglow/gatekeeper/internal/config"
	"github.com/hongminglow/gatekeeper/internal/logging"
	"github.com/hongminglow/gatekeeper/internal/metrics"
	"github.com/hongminglow/gatekeeper/internal/middleware"
	"github.com/hongminglow/gatekeeper/internal/server"
	"github.com/hongminglow/gatekeeper/internal/storage"
	"github.com/hongminglow/gatekeeper/internal/storage/memory"
	mongostore "github.com/hongminglow/gatekeeper/internal/storage/mongo"
	"github.com/hongminglow/gatekeeper/internal/storage/postgres"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	base, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = base.Sync() }()
	zap.ReplaceGlobals(base)
	logger := base.Sugar()
	if envErr != nil {
		logger.Debug("no .env file found; relying on existing environment")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}

func run(cfg config.Config, logger *zap.SugaredLogger) error {
	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warnw("close store", "error", err)
		}
	}()
	logger.Infow("store ready", "driver", cfg.StoreDriver)

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer)
	accounts, err := account.NewService(store, hasher, tokens)
	if err != nil {
		return err
	}

	created, err := accounts.EnsureAdmin(ctx, account.AdminSeed{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		logger.Infow("created initial administrator", "email", cfg.Admin.Email)
		if cfg.Admin.Email == config.DefaultAdminEmail && cfg.Admin.Password == config.DefaultAdminPassword {
			logger.Warn("initial administrator uses the default password; change it now")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: cfg.Login.PerMinute,
		Burst:     cfg.Login.Burst,
	}, logger)
	defer limiter.Stop()

	srv := server.New(cfg, server.Deps{
		Accounts: accounts,
		Tokens:   tokens,
		Logger:   logger,
		Metrics:  metrics.NewCollector(reg),
		Gatherer: reg,
		Limiter:  limiter,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("gatekeeper listening", "addr", cfg.HTTPAddress(), "prefix", cfg.APIPrefix)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Infow("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warnw("graceful shutdown error", "error", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.UserStore, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		s, err := postgres.NewUserStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMongo:
		s, err := mongostore.NewUserStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewUserStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
