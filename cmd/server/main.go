// Package main runs the storefront API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/urbanthread/storefront/internal/app"
	"github.com/urbanthread/storefront/internal/app/httpapi"
	identitysvc "github.com/urbanthread/storefront/internal/app/services/identity"
	"github.com/urbanthread/storefront/internal/app/metrics"
	"github.com/urbanthread/storefront/internal/app/storage/postgres"
	"github.com/urbanthread/storefront/internal/config"
	"github.com/urbanthread/storefront/internal/platform/database"
	"github.com/urbanthread/storefront/internal/platform/migrations"
	"github.com/urbanthread/storefront/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var stores app.Stores
	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, database.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := migrations.Apply(ctx, db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		store := postgres.New(db)
		stores = app.Stores{Products: store, Orders: store, Users: store}
		log.Info("using postgres storage")
	} else {
		log.Warn("DATABASE_URL not set; using in-memory storage")
	}

	application := app.New(stores, log)

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		seedCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err := application.Identity.Register(seedCtx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		cancel()
		if err != nil && !errors.Is(err, identitysvc.ErrAlreadyExists) {
			return fmt.Errorf("seed admin account: %w", err)
		}
	}

	handler := metrics.InstrumentHandler(httpapi.NewHandler(application))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
