package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mkataria09/sealdrop/internal/api"
	"github.com/mkataria09/sealdrop/internal/config"
	"github.com/mkataria09/sealdrop/internal/crypto"
	"github.com/mkataria09/sealdrop/internal/envelope"
	"github.com/mkataria09/sealdrop/internal/identity"
	"github.com/mkataria09/sealdrop/internal/repositories"
	"github.com/mkataria09/sealdrop/internal/utils"
)

func main() {
	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Environment != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repositories.Open(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return err
	}
	store := repositories.NewStore(db)
	log.Info().Str("driver", cfg.DBDriver).Msg("connected to database")

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return err
	}
	wrapper, err := newKeyWrapper(ctx, cfg)
	if err != nil {
		return err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.Environment == "production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if secret, err = utils.RandomSecret(32); err != nil {
			return err
		}
		log.Warn().Msg("JWT_SECRET not set, using an ephemeral secret; tokens will not survive a restart")
	}

	ids := identity.NewService(store, crypto.DefaultKDF(), wrapper)
	issuer := identity.NewTokenIssuer(secret, cfg.TokenTTL)
	manager := envelope.NewManager(store, blobs, log.Logger)

	handler := api.SetupRouter(cfg, api.Deps{
		Identity: ids,
		Issuer:   issuer,
		Manager:  manager,
		Store:    store,
		Logger:   log.Logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: handler,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newBlobStore(cfg config.Config) (repositories.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "local":
		return repositories.NewLocalBlobStore(cfg.Storage.LocalPath)
	case "s3":
		return repositories.NewS3BlobStore(repositories.S3Config{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKeyID,
			SecretKey: cfg.Storage.SecretAccessKey,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func newKeyWrapper(ctx context.Context, cfg config.Config) (repositories.KeyWrapper, error) {
	switch cfg.KMS.Backend {
	case "off":
		return nil, nil
	case "local":
		masterKey, err := hex.DecodeString(cfg.KMS.MasterKey)
		if err != nil {
			return nil, fmt.Errorf("KMS_MASTER_KEY must be hex-encoded: %w", err)
		}
		return repositories.NewLocalKeyWrapper(masterKey)
	case "aws":
		return repositories.NewKMSKeyWrapper(ctx, cfg.KMS.Region, cfg.KMS.KeyARN)
	default:
		return nil, fmt.Errorf("unsupported KMS backend %q", cfg.KMS.Backend)
	}
}
