package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/funcland/control-plane/internal/api"
	"github.com/funcland/control-plane/internal/core/ports"
	"github.com/funcland/control-plane/internal/infrastructure/db/mongo"
	"github.com/funcland/control-plane/internal/infrastructure/db/redis"
	"github.com/funcland/control-plane/internal/infrastructure/identity"
	"github.com/funcland/control-plane/internal/infrastructure/queue"
	"github.com/funcland/control-plane/internal/pkg/config"
	"github.com/funcland/control-plane/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	provider, err := newIdentityProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("identity provider configuration invalid")
	}

	dispatcher := queue.NewAuditDispatcher(0, mongo.NewAuditRepository(db), log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, provider, dispatcher, cfg, log)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("control plane listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, db *mongodriver.Database) error {
	if err := mongo.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongo.NewProjectRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongo.NewDeploymentRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongo.NewTokenRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongo.NewAuditRepository(db).EnsureIndexes(ctx)
}

func newIdentityProvider(cfg *config.Config) (ports.IdentityProvider, error) {
	switch cfg.Identity.Provider {
	case "jwt", "":
		if cfg.Identity.JWTSecret == "" {
			return nil, errors.New("IDENTITY_JWT_SECRET is required for the jwt provider")
		}
		return identity.NewJWTProvider(cfg.Identity.JWTSecret, cfg.Session.TTL), nil
	case "oauth":
		if cfg.Identity.ClientID == "" || cfg.Identity.ClientSecret == "" {
			return nil, errors.New("IDENTITY_CLIENT_ID and IDENTITY_CLIENT_SECRET are required for the oauth provider")
		}
		return identity.NewOAuthProvider(identity.OAuthConfig{
			Name:         "oauth",
			ClientID:     cfg.Identity.ClientID,
			ClientSecret: cfg.Identity.ClientSecret,
			AuthURL:      cfg.Identity.AuthURL,
			TokenURL:     cfg.Identity.TokenURL,
			UserInfoURL:  cfg.Identity.UserInfoURL,
			RedirectURL:  cfg.Identity.RedirectURL,
		}), nil
	default:
		return nil, errors.New("unknown identity provider " + cfg.Identity.Provider)
	}
}
