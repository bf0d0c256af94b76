// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ashley-desouza/graphql-auth-server/internal/auth"
	authpg "github.com/ashley-desouza/graphql-auth-server/internal/auth/postgres"
	"github.com/ashley-desouza/graphql-auth-server/internal/config"
	"github.com/ashley-desouza/graphql-auth-server/internal/gql"
	"github.com/ashley-desouza/graphql-auth-server/internal/httpapi"
	"github.com/ashley-desouza/graphql-auth-server/internal/logging"
	"github.com/ashley-desouza/graphql-auth-server/internal/observability"
	"github.com/ashley-desouza/graphql-auth-server/internal/session"
	"github.com/ashley-desouza/graphql-auth-server/internal/store"
	"github.com/ashley-desouza/graphql-auth-server/pkg/errutil"
)

const (
	defaultListenAddr  = ":5000"
	defaultMetricsAddr = "127.0.0.1:9100"
	defaultLogFormat   = "json"

	shutdownTimeout = 10 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the auth server",
		Long: `Start the HTTP server exposing the GraphQL endpoint, connected to
PostgreSQL for identity records and Redis for session state. With --dev the
external stores are replaced by in-memory ones.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("listen-addr", defaultListenAddr, "HTTP listen address")
	flags.String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("redis-addr", "", "Redis address for session storage")
	flags.String("redis-password", "", "Redis password")
	flags.String("log-format", defaultLogFormat, "log format (json or text)")
	flags.Bool("secure-cookies", true, "mark session cookies Secure (disable only behind TLS-terminating dev proxies)")
	flags.Bool("dev", false, "run with in-memory stores, no Postgres or Redis")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("authserver", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores: real infrastructure, or in-memory doubles under --dev.
	var (
		users        auth.UserRepository
		sessionStore session.Store
		cleanup      func()
	)

	if cfg.Dev {
		users = auth.NewMemoryUserRepository()
		sessionStore = session.NewMemoryStore()
		cleanup = func() {}
		logger.Warn("running in dev mode, all state is in-memory")
	} else {
		gin.SetMode(gin.ReleaseMode)
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			errutil.LogError(logger, "database connection failed", err)
			return err
		}

		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			pool.Close()
			err = oops.Code("REDIS_CONNECT_FAILED").With("addr", cfg.RedisAddr).Wrap(err)
			errutil.LogError(logger, "redis connection failed", err)
			return err
		}

		users = authpg.NewUserRepository(pool)
		sessionStore = session.NewRedisStore(redisClient)
		cleanup = func() {
			_ = redisClient.Close()
			pool.Close()
		}
		logger.Info("stores ready", "redis_addr", cfg.RedisAddr)
	}
	defer cleanup()

	// Core wiring: hasher -> strategy -> serializer -> service -> schema.
	hasher := auth.NewInstrumentedHasher(auth.NewBcryptHasher())

	strategy, err := auth.NewLocalStrategy(users, hasher)
	if err != nil {
		return err
	}
	serializer, err := auth.NewIdentitySerializer(users)
	if err != nil {
		return err
	}
	svc, err := auth.NewServiceWithLogger(users, strategy, serializer, hasher, logger)
	if err != nil {
		return err
	}
	schema, err := gql.NewSchema(svc)
	if err != nil {
		errutil.LogError(logger, "schema build failed", err)
		return err
	}

	cookieOpts := session.CookieOptions{
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	router := httpapi.NewRouter(schema, sessionStore, cookieOpts, logger)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var obs *observability.Server
	if cfg.MetricsAddr != "" {
		obs = observability.NewServer(cfg.MetricsAddr, func() bool { return true })
		if _, err := obs.Start(); err != nil {
			errutil.LogError(logger, "observability server failed to start", err)
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("auth server listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return oops.Code("HTTP_SERVER_FAILED").Wrap(err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return oops.Code("HTTP_SHUTDOWN_FAILED").Wrap(err)
		}
		if obs != nil {
			if err := obs.Stop(shutdownCtx); err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		errutil.LogError(logger, "server exited with error", err)
		return err
	}

	logger.Info("auth server stopped cleanly")
	return nil
}
