package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/umardevX/ems-console/internal/logging"
	"github.com/umardevX/ems-console/internal/server/api"
	"github.com/umardevX/ems-console/internal/server/auth"
	"github.com/umardevX/ems-console/internal/server/config"
	"github.com/umardevX/ems-console/internal/server/database"
)

const version = "0.1.0"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("ems-server", pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", "", "Optional YAML config file; environment variables take precedence")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: os.Stderr,
		Service: api.ServiceName,
	})
	log.Logger = logger

	fmt.Fprintln(out, figure.NewFigure("EMS server", "cybermedium", true).String())

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	limiter := auth.NewRateLimiter(time.Minute, api.AuthRateWindow, 10000)
	defer limiter.Stop()

	handler := api.NewRouter(api.Deps{
		Store:          store,
		Auth:           auth.NewAuthService([]byte(cfg.JWTSecret), cfg.TokenTTL),
		RateLimiter:    limiter,
		Audit:          auth.NewLogAuditLogger(logger),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Version:        version,
	})

	tlsCfg, err := serverTLS(cfg.TLS)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	mode := "production"
	if cfg.IsDevelopment() {
		mode = "development"
	}
	logger.Info().
		Str("mode", mode).
		Str("addr", srv.Addr).
		Bool("tls", tlsCfg != nil).
		Dur("token_ttl", cfg.TokenTTL).
		Strs("cors_origins", cfg.AllowedOrigins).
		Msg("server starting")

	errCh := make(chan error, 1)
	go func() {
		if tlsCfg != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		// nosemgrep: go.lang.security.audit.net.use-tls.use-tls -- TLS termination handled by reverse proxy unless TLS_ENABLED is set
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore picks Postgres when DATABASE_URL is set, memory otherwise
func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("DATABASE_URL not set, using the in-memory store; data is lost on restart")
		return database.NewMemoryStore(), nil
	}

	if err := database.ValidateDatabaseURL(cfg.DatabaseURL, cfg.IsDevelopment()); err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return database.OpenPostgres(connectCtx, cfg.DatabaseURL)
}

// serverTLS loads the key pair up front so a bad certificate stops
// startup instead of the first handshake. Nil means plain HTTP.
func serverTLS(c config.TLSConfig) (*tls.Config, error) {
	if !c.Enabled {
		return nil, nil
	}

	minVersion, err := config.ParseTLSMinVersion(c.MinVersion)
	if err != nil {
		return nil, err
	}

	pair, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}

	return &tls.Config{
		MinVersion:   minVersion,
		Certificates: []tls.Certificate{pair},
	}, nil
}
