// Package app assembles the account service: config, logging, storage,
// signing, the lifecycle engine and the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/vaultmind/accountd/internal/account/http"
	"github.com/vaultmind/accountd/internal/account/service"
	"github.com/vaultmind/accountd/internal/account/store"
	"github.com/vaultmind/accountd/internal/account/store/drivers/sqlite"
	"github.com/vaultmind/accountd/pkg/cryptox"
	"github.com/vaultmind/accountd/pkg/jwtx"
	"github.com/vaultmind/accountd/pkg/slogx"
)

const (
	// Startup store checks: bounded retry, then give up. Mid-request store
	// errors are never retried.
	storePingAttempts = 5
	storePingDelay    = time.Second
)

// Application encapsulates the account service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.HMACSigner

	accountService *service.AccountService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: cfg.ProjectName,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := jwtx.NewHMACSigner(cfg.Algorithm, []byte(cfg.SecretKey), cfg.ProjectName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	app.accountService = &service.AccountService{
		Store:  app.db,
		Signer: app.signer,
		Config: service.Config{
			Issuer:      cfg.ProjectName,
			TOTPEnabled: cfg.TOTPActive,
			TOTP: cryptox.TOTPConfig{
				Digits: cfg.TOTPDigits,
				Period: cfg.TOTPPeriod(),
				Skew:   cfg.TOTPValidWindow,
			},
			SessionTTL:         cfg.SessionTTL(),
			RegistrationWindow: cfg.RegistrationWindow(),
			QRCodeSize:         cfg.QRCodeSize,
		},
	}

	app.router = httpapi.NewRouter(app.signer, cfg.AllowedOrigins, app.db, app.logger)
	app.router.AccountService = app.accountService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router.Mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// The backend being unreachable at startup is fatal, but give it a few
	// chances first.
	var pingErr error
	for attempt := 1; attempt <= storePingAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), storePingDelay)
		pingErr = db.Ping(ctx)
		cancel()
		if pingErr == nil {
			break
		}
		app.logger.Warn("database ping failed",
			"attempt", attempt, "max_attempts", storePingAttempts, "err", pingErr)
		time.Sleep(storePingDelay)
	}
	if pingErr != nil {
		_ = db.Close()
		return fmt.Errorf("database unreachable: %w", pingErr)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app.db = db
	return nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("account service starting",
		"port", app.cfg.Port, "totp_active", app.cfg.TOTPActive)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops the HTTP server and closes the store.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return err
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close store", "err", err)
	}

	app.logger.Info("account service stopped")
	return nil
}
