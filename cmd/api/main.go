package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/Overland-East-Bay/ride-hail-api/internal/adapters/httpapi"
	memaccountrepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/accountrepo"
	memidempotency "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/idempotency"
	memriderepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/memory/riderepo"
	postgres "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres"
	pgaccountrepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/accountrepo"
	pgidempotency "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/idempotency"
	pgriderepo "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/postgres/riderepo"
	"github.com/Overland-East-Bay/ride-hail-api/internal/adapters/rabbitmq"
	redisidempotency "github.com/Overland-East-Bay/ride-hail-api/internal/adapters/redis/idempotency"
	"github.com/Overland-East-Bay/ride-hail-api/internal/app/accounts"
	"github.com/Overland-East-Bay/ride-hail-api/internal/app/rides"
	platformclock "github.com/Overland-East-Bay/ride-hail-api/internal/platform/clock"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/config"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/logger"
	"github.com/Overland-East-Bay/ride-hail-api/internal/platform/metrics"
	accountrepoport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/accountrepo"
	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/events"
	idempotencyport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/idempotency"
	riderepoport "github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/riderepo"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("invalid logging config: %v", err)
	}
	slog.SetDefault(lg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, lg *slog.Logger) error {
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	var pool *pgxpool.Pool
	if cfg.StorageBackend == config.StoragePostgres || cfg.IdempotencyBackend == config.IdempotencyPostgres {
		p, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
			MaxConns:        cfg.DBMaxConns,
			ConnectAttempts: 10,
			RetryInterval:   2 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		cleanups = append(cleanups, p.Close)
		if cfg.MigrateOnStart {
			if err := postgres.Migrate(ctx, p); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			lg.Info("database migrated")
		}
		pool = p
	}

	var (
		accountRepo accountrepoport.Repository
		rideRepo    riderepoport.Repository
	)
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		accountRepo = pgaccountrepo.NewRepo(pool)
		rideRepo = pgriderepo.NewRepo(pool)
	default:
		accountRepo = memaccountrepo.NewRepo()
		rideRepo = memriderepo.NewRepo()
	}

	var idemStore idempotencyport.Store
	switch cfg.IdempotencyBackend {
	case config.IdempotencyPostgres:
		idemStore = pgidempotency.NewStore(pool, cfg.IdempotencyTTL)
	case config.IdempotencyRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		cleanups = append(cleanups, func() { _ = client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		idemStore = redisidempotency.NewStore(client, cfg.IdempotencyTTL)
	case config.IdempotencyMemory:
		idemStore = memidempotency.NewStore(memidempotency.WithTTL(cfg.IdempotencyTTL))
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.EventsBackend == config.EventsRabbitMQ {
		p, err := rabbitmq.Dial(ctx, cfg.RabbitMQURL, rabbitmq.Options{Logger: lg})
		if err != nil {
			return fmt.Errorf("connect rabbitmq: %w", err)
		}
		cleanups = append(cleanups, func() { _ = p.Close() })
		publisher = p
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	clk := platformclock.NewSystemClock()
	accountSvc := accounts.NewService(accountRepo, clk,
		accounts.WithLogger(lg),
		accounts.WithMetrics(m),
		accounts.WithPublisher(publisher),
	)
	rideSvc := rides.NewService(rideRepo, accountRepo, clk,
		rides.WithLogger(lg),
		rides.WithMetrics(m),
		rides.WithPublisher(publisher),
	)

	api := httpapi.NewServer(accountSvc, rideSvc, idemStore,
		httpapi.WithServerLogger(lg),
		httpapi.WithServerMetrics(m),
	)
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{Logger: lg, Gatherer: reg})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("api listening",
			"addr", srv.Addr,
			"storage", cfg.StorageBackend,
			"idempotency", cfg.IdempotencyBackend,
			"events", cfg.EventsBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
