package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/smolyakov/huddle/internal/blob"
	blobmemory "github.com/smolyakov/huddle/internal/blob/memory"
	blobs3 "github.com/smolyakov/huddle/internal/blob/s3"
	"github.com/smolyakov/huddle/internal/config"
	"github.com/smolyakov/huddle/internal/identity"
	identitylivekit "github.com/smolyakov/huddle/internal/identity/livekit"
	identitylocal "github.com/smolyakov/huddle/internal/identity/local"
	"github.com/smolyakov/huddle/internal/service/files"
	"github.com/smolyakov/huddle/internal/store"
	"github.com/smolyakov/huddle/internal/store/sqlite"
	transporthttp "github.com/smolyakov/huddle/internal/transport/http"
)

// App wires together storage, identity and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	logger.Info().Str("driver", cfg.Blob.Driver).Msg("blob storage initialized")

	provider, err := newIdentityProvider(cfg)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init identity provider: %w", err)
	}
	logger.Info().Str("driver", cfg.Identity.Driver).Msg("identity provider initialized")

	filesSvc := files.New(st, blobs)
	server := transporthttp.NewServer(provider, filesSvc, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Blob.Driver {
	case "s3":
		return blobs3.New(ctx, blobs3.Options{
			Region:       cfg.Blob.S3Region,
			Bucket:       cfg.Blob.S3Bucket,
			AccessKey:    cfg.Blob.S3AccessKey,
			SecretKey:    cfg.Blob.S3SecretKey,
			BaseEndpoint: cfg.Blob.S3BaseEndpoint,
		})
	case "memory", "":
		return blobmemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}

func newIdentityProvider(cfg *config.Config) (identity.Provider, error) {
	switch cfg.Identity.Driver {
	case "livekit":
		return identitylivekit.New(cfg.Identity.LiveKitAPIKey, cfg.Identity.LiveKitAPISecret, cfg.Identity.TokenTTL), nil
	case "local", "":
		return identitylocal.New(
			[]byte(cfg.Identity.LocalSecret),
			cfg.Identity.LocalIssuer,
			cfg.Identity.LocalAudience,
			cfg.Identity.TokenTTL,
		), nil
	default:
		return nil, fmt.Errorf("unknown identity driver %q", cfg.Identity.Driver)
	}
}
