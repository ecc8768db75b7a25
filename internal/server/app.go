// Package server initializes and runs the application server: it wires
// configuration, storage, the token codec, and the HTTP endpoint, and
// handles graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bucketlist-social/bucketlist/internal/logging"
	"github.com/bucketlist-social/bucketlist/internal/server/auth"
	"github.com/bucketlist-social/bucketlist/internal/server/config"
	"github.com/bucketlist-social/bucketlist/internal/server/httpapi"
	"github.com/bucketlist-social/bucketlist/internal/server/sessions"
	"github.com/bucketlist-social/bucketlist/internal/server/shared/db"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	manager *db.PostgresManager
	handler http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	codec, err := auth.NewCodec([]byte(cfg.SecretKey), cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("codec init error: %w", err)
	}

	manager, err := db.NewPostgresManager(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	sessionService := sessions.NewService(manager.Users(), codec, sessions.NewBcryptVerifier(), logger)
	authMW := auth.NewMiddleware(codec, manager.Users(), logger)
	handler := httpapi.NewHandler(sessionService, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		manager: manager,
		handler: httpapi.NewRouter(handler, authMW, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.Addr,
		Handler: app.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", app.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return app.manager.Close()
}
