// @title        Ledger API
// @version      1.0
// @description  Session-authenticated accounts with CSRF-protected transfers.
// @BasePath     /
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gomongo "go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/ledger-system/internal/api"
	"github.com/99minutos/ledger-system/internal/api/handler"
	"github.com/99minutos/ledger-system/internal/core/ports"
	"github.com/99minutos/ledger-system/internal/core/service"
	"github.com/99minutos/ledger-system/internal/infrastructure/config"
	"github.com/99minutos/ledger-system/internal/infrastructure/db/jsonfile"
	"github.com/99minutos/ledger-system/internal/infrastructure/db/mongo"
	"github.com/99minutos/ledger-system/internal/infrastructure/db/redis"
	"github.com/99minutos/ledger-system/internal/infrastructure/worker"
	"github.com/99minutos/ledger-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "ledger",
	})

	backends, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.close()

	users := service.NewCredentialStore(backends.users, cfg.Storage.BcryptCost, logger.Component("credentials"))
	if err := users.Load(ctx); err != nil {
		return err
	}
	if cfg.Storage.SeedUsers {
		if _, err := users.Seed(ctx, service.DefaultSeedUsers); err != nil {
			return err
		}
	}

	sessions := service.NewSessionManager(backends.sessions, users, service.SessionOptions{
		TTL: cfg.Session.TTL,
	}, logger.Component("sessions"))
	if err := sessions.Load(ctx); err != nil {
		return err
	}

	csrf := service.NewCSRFManager(service.CSRFOptions{
		MaxPerUser: cfg.CSRF.MaxPerUser,
		SingleUse:  cfg.CSRF.SingleUse,
	})
	ledger := service.NewLedgerService(users, sessions, csrf, logger.Component("ledger"))

	if cfg.Session.TTL > 0 {
		worker.NewSweeper(sessions, cfg.Session.SweepInterval, logger.Component("sweeper")).Start(ctx)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e := api.NewRouter(api.Dependencies{
		Service: ledger,
		Cookie: handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.SecureCookie,
			TTL:    cfg.Session.TTL,
		},
		Log:       logger.Component("http"),
		Registry:  reg,
		Readiness: backends.pings,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

type backends struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	pings    map[string]handler.PingFunc
	closers  []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backends, error) {
	b := &backends{pings: make(map[string]handler.PingFunc)}

	var db *gomongo.Database
	if cfg.UsesMongo() {
		client, database, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		db = database
		b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
		b.pings["mongodb"] = func(ctx context.Context) error {
			return mongo.Ping(ctx, db)
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")
	}

	var rdb *goredis.Client
	if cfg.UsesRedis() {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			b.close()
			return nil, err
		}
		rdb = client
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.pings["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	}

	switch cfg.Storage.UsersBackend {
	case config.BackendMongo:
		repo := mongo.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			b.close()
			return nil, fmt.Errorf("user indexes: %w", err)
		}
		b.users = repo
	default:
		b.users = jsonfile.NewUserRepository(cfg.Storage.DataDir)
	}

	switch cfg.Storage.SessionsBackend {
	case config.BackendMongo:
		repo := mongo.NewSessionRepository(db, cfg.Session.TTL)
		if err := repo.EnsureIndexes(ctx); err != nil {
			b.close()
			return nil, fmt.Errorf("session indexes: %w", err)
		}
		b.sessions = repo
	case config.BackendRedis:
		b.sessions = redis.NewSessionRepository(rdb, cfg.Session.TTL)
	default:
		b.sessions = jsonfile.NewSessionRepository(cfg.Storage.DataDir)
	}

	log.Info().
		Str("users", cfg.Storage.UsersBackend).
		Str("sessions", cfg.Storage.SessionsBackend).
		Msg("storage ready")
	return b, nil
}
