package app

import (
	"context"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-logistik/internal/audit"
	"github.com/noah-isme/backend-logistik/internal/config"
	dbgen "github.com/noah-isme/backend-logistik/internal/db/gen"
	"github.com/noah-isme/backend-logistik/internal/lock"
	"github.com/noah-isme/backend-logistik/internal/obs"
	"github.com/noah-isme/backend-logistik/internal/repo"
	"github.com/noah-isme/backend-logistik/internal/resi"
	"github.com/noah-isme/backend-logistik/internal/resilience"
)

// Dependencies holds the shared clients and services of the API and resictl.
type Dependencies struct {
	Config  *config.Config
	Logger  zerolog.Logger
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Queries *dbgen.Queries
	Audit   audit.Service
	Resi    *resi.Service
}

// Options tunes New.
type Options struct {
	// ApplicationName is reported to Postgres.
	ApplicationName string
	// Registerer receives the database metrics; nil uses the default registry.
	Registerer prometheus.Registerer
	// Namespace prefixes metric names.
	Namespace string
}

// New connects to Postgres and Redis and builds the domain services.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*Dependencies, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	pool, err := OpenPool(ctx, cfg, logger, opts)
	if err != nil {
		return nil, err
	}
	rdb, err := OpenRedis(ctx, cfg.RedisURL, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	queries := dbgen.New(pool)
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		DB:      pool,
		Redis:   rdb,
		Queries: queries,
		Audit:   audit.Service{Store: queries, Enabled: cfg.AuditEnabled},
	}
	deps.Resi = resi.NewService(resi.ServiceConfig{
		Store: queries,
		Tx:    resi.PgTransactor{Runner: repo.TxRunner{DB: pool, Queries: queries}},
		Cache: resi.NewCache(rdb, cfg.ReferenceCacheTTL).WithBreaker(
			resilience.NewBreaker(cfg.CacheBreakerMin, 0.5, cfg.CacheBreakerOpen).
				WithTarget("reference_cache").
				WithLogger(logger),
		),
		Locker: lock.Locker{
			R:            rdb,
			RetryBackoff: cfg.LockRetryBackoff,
			MaxWait:      cfg.LockTTL,
		},
		LockTTL:        cfg.LockTTL,
		AmbiguityProbe: cfg.AmbiguityProbe,
		Logger:         logger,
	})
	return deps, nil
}

// Close releases the database pool and the Redis client.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error().Err(err).Msg("close redis")
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
}

// OpenPool creates an instrumented pgx pool and verifies connectivity.
func OpenPool(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		poolConfig.MaxConns = cfg.DBMaxConns
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "logistik"
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{
		Metrics:       obs.NewDBMetrics(namespace, opts.Registerer),
		Logger:        &logger,
		SlowThreshold: cfg.SlowQueryThreshold,
	}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	name := opts.ApplicationName
	if name == "" {
		name = "backend-logistik"
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = name

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// OpenRedis creates a traced Redis client and verifies connectivity.
func OpenRedis(ctx context.Context, url string, logger zerolog.Logger) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RunMigrations applies every pending migration.
func RunMigrations(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
