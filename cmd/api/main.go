package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/token-auth/internal/api/http"
	"github.com/spec-kit/token-auth/internal/api/http/handlers"
	"github.com/spec-kit/token-auth/internal/auth"
	"github.com/spec-kit/token-auth/internal/clock"
	"github.com/spec-kit/token-auth/internal/config"
	"github.com/spec-kit/token-auth/internal/observability"
	"github.com/spec-kit/token-auth/internal/persistence"
	"github.com/spec-kit/token-auth/internal/repository"
	"github.com/spec-kit/token-auth/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	tokens, err := auth.NewTokens(cfg.Auth, clock.System{})
	if err != nil {
		logger.Fatal("failed to build token components", zap.Error(err))
	}

	users := repository.NewCachedUserRepository(
		repository.NewUserRepository(pg.PoolHandle()),
		redis.ClientHandle(),
		cfg.Redis.UserCacheTTL(),
		logger,
	)

	if ttl := cfg.Redis.UserCacheTTL(); ttl > 0 {
		logger.Info("user cache enabled; deleted or changed users stay visible until their entry expires",
			zap.Duration("ttl", ttl))
	}

	metrics := observability.NewMetrics("token_auth")
	gateway := auth.NewAuthGateway(tokens.Access, users, logger)
	tokenService := service.NewTokenService(service.TokenDependencies{
		Issuer:           tokens.Issuer,
		RefreshValidator: tokens.Refresh,
		Users:            users,
	}, logger)

	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout(), httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(tokenService),
		AuthMiddleware: auth.NewAuthMiddleware(gateway, metrics),
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("algorithm", cfg.Auth.Algorithm),
			zap.Duration("access_ttl", cfg.Auth.AccessTTL()),
			zap.Duration("refresh_ttl", cfg.Auth.RefreshTTL()),
		)
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
