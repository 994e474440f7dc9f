package app

import (
	"context"
	"fmt"
	stdhttp "net/http"

	"github.com/rs/zerolog"

	"github.com/ibaimoya/sockchat/internal/chat"
	"github.com/ibaimoya/sockchat/internal/config"
	"github.com/ibaimoya/sockchat/internal/store"
	"github.com/ibaimoya/sockchat/internal/store/sqlite"
	transporthttp "github.com/ibaimoya/sockchat/internal/transport/http"
)

// App wires together the chat server, the optional status endpoint, and
// the optional audit store.
type App struct {
	cfg    config.Config
	log    *zerolog.Logger
	server *chat.Server
	status *stdhttp.Server
	store  store.AuditStore
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	audit := store.Nop()
	if cfg.AuditDBPath != "" {
		st, err := sqlite.New(cfg.AuditDBPath)
		if err != nil {
			return nil, fmt.Errorf("init audit store: %w", err)
		}
		logger.Info().Str("db_path", cfg.AuditDBPath).Msg("audit store initialized")
		audit = st
	}

	server := chat.NewServer(cfg, logger, audit)

	a := &App{
		cfg:    cfg,
		log:    logger,
		server: server,
		store:  audit,
	}
	if cfg.StatusAddr != "" {
		a.status = transporthttp.NewStatusServer(cfg.StatusAddr, server.Registry(), logger)
	}
	return a, nil
}

// Run binds the chat listener and blocks until shutdown or a fatal error.
// A nil return means an orderly shutdown.
func (a *App) Run(ctx context.Context) error {
	if err := a.server.Listen(); err != nil {
		a.cleanup()
		return err
	}

	if a.status != nil {
		go func() {
			a.log.Info().Str("addr", a.cfg.StatusAddr).Msg("status endpoint listening")
			if err := a.status.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
				a.log.Warn().Err(err).Msg("status server exited")
			}
		}()
	}

	err := a.server.Serve(ctx)

	if a.status != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if sErr := a.status.Shutdown(shutdownCtx); sErr != nil {
			a.log.Warn().Err(sErr).Msg("status server shutdown failed")
		}
	}

	a.cleanup()
	return err
}

// cleanup closes the audit store.
func (a *App) cleanup() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close audit store")
	}
}
