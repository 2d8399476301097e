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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/textileledger/internal/adapter/http"
	"github.com/iho/textileledger/internal/adapter/http/handler"
	"github.com/iho/textileledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/textileledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/textileledger/internal/adapter/repository/redis"
	"github.com/iho/textileledger/internal/adapter/spreadsheet"
	"github.com/iho/textileledger/internal/domain"
	"github.com/iho/textileledger/internal/infrastructure/auth"
	"github.com/iho/textileledger/internal/infrastructure/config"
	"github.com/iho/textileledger/internal/infrastructure/eventpublisher"
	"github.com/iho/textileledger/internal/infrastructure/logger"
	"github.com/iho/textileledger/internal/infrastructure/metrics"
	"github.com/iho/textileledger/internal/infrastructure/postgres"
	"github.com/iho/textileledger/internal/infrastructure/redis"
	"github.com/iho/textileledger/internal/usecase"
)

const rateLimitCleanupInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = lg
	zerolog.DefaultContextLogger = &lg

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

// validateConfig rejects combinations the server cannot start with.
func validateConfig(cfg *config.Config) error {
	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return errors.New("AUTH_ENABLED requires JWT_SECRET")
	}
	if cfg.HTTPPort == "" {
		return errors.New("HTTP_PORT must not be empty")
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, lg zerolog.Logger) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	lg.Info().Msg("connected to postgres")

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, lg); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			lg.Warn().Err(err).Msg("redis unavailable, running without balance cache and idempotency")
			redisClient = nil
		} else {
			defer redisClient.Close()
			lg.Info().Msg("connected to redis")
		}
	}

	m := metrics.New()
	router, limiter := buildRouter(cfg, lg, pool, redisClient, m)

	go limiter.RunCleanup(ctx, rateLimitCleanupInterval)

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: postgresRepo.NewOutboxRepository(pool),
		Publisher:  eventpublisher.NewLogPublisher(lg),
		Observer:   m,
		Logger:     lg,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			lg.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	server := newHTTPServer(cfg, router)
	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	lg.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	lg.Info().Msg("server stopped")
	return nil
}

// buildRouter wires repositories, use cases and handlers. redisClient may be
// nil, in which case caching and idempotency are disabled.
func buildRouter(cfg *config.Config, lg zerolog.Logger, pool *pgxpool.Pool, redisClient *goredis.Client, m *metrics.Metrics) (http.Handler, *middleware.RateLimiter) {
	txManager := postgresRepo.NewTxManager(pool)
	itemRepo := postgresRepo.NewItemRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	stakeholderRepo := postgresRepo.NewStakeholderRepository(pool)
	packagingRepo := postgresRepo.NewPackagingStyleRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	clock := usecase.SystemClock{}

	deps := usecase.LedgerDeps{
		TxManager:       txManager,
		ItemRepo:        itemRepo,
		TransactionRepo: txRepo,
		StakeholderRepo: stakeholderRepo,
		PackagingRepo:   packagingRepo,
		OutboxRepo:      outboxRepo,
		AuditRepo:       auditRepo,
		Retrier:         postgresRepo.NewRetrier(lg),
		Metrics:         m,
		IDGen:           idGen,
		Clock:           clock,
	}

	redisPinger := handler.Pinger(nil)
	var idempotency usecase.IdempotencyStore
	if redisClient != nil {
		deps.Cache = redisRepo.NewBalanceCache(redisClient, cfg.BalanceCacheTTL)
		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		redisPinger = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	statements := spreadsheet.NewStatementWriter()
	var ledgers []*handler.LedgerHandler
	for _, kind := range domain.ItemKinds() {
		ledgers = append(ledgers, handler.NewLedgerHandler(
			usecase.NewLedgerUseCase(kind, deps), statements, spreadsheet.ContentType))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnLimit(m.RateLimitHits.Inc)

	routerCfg := httpAdapter.RouterConfig{
		ItemHandler:           handler.NewItemHandler(usecase.NewItemUseCase(txManager, itemRepo, txRepo, outboxRepo, auditRepo, idGen, clock)),
		StakeholderHandler:    handler.NewStakeholderHandler(usecase.NewStakeholderUseCase(stakeholderRepo, idGen, clock)),
		PackagingStyleHandler: handler.NewPackagingStyleHandler(usecase.NewPackagingStyleUseCase(packagingRepo, idGen, clock)),
		ReconciliationHandler: handler.NewReconciliationHandler(usecase.NewReconciliationUseCase(itemRepo, txRepo, clock)),
		HealthHandler:         handler.NewHealthHandler(handler.PingerFunc(pool.Ping), redisPinger),
		AuditHandler:          handler.NewAuditHandler(usecase.NewAuditUseCase(auditRepo)),
		LedgerHandlers:        ledgers,
		Logger:                lg,
		IdempotencyStore:      idempotency,
		IdempotencyTTL:        cfg.IdempotencyTTL,
		RateLimiter:           limiter,
		Metrics:               m,
		MetricsHandler:        promhttp.Handler(),
		AuthEnabled:           cfg.AuthEnabled,
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	return httpAdapter.NewRouter(routerCfg), limiter
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}
