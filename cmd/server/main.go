// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"fusebot/internal/audit"
	authmetrics "fusebot/internal/auth/metrics"
	authservice "fusebot/internal/auth/service"
	authstore "fusebot/internal/auth/store"
	"fusebot/internal/bot"
	bothandler "fusebot/internal/bot/handler"
	"fusebot/internal/loan"
	"fusebot/internal/platform/config"
	"fusebot/internal/platform/health"
	"fusebot/internal/platform/kafka/producer"
	"fusebot/internal/platform/logger"
	platformredis "fusebot/internal/platform/redis"
	"fusebot/internal/provider"
	"fusebot/internal/tenant"
	"fusebot/pkg/platform/circuit"
	authmw "fusebot/pkg/platform/middleware/auth"
)

func main() {
	log := logger.New()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthHandler := health.New()

	sessions, cleanup, err := buildSessionStore(ctx, cfg, healthHandler, log)
	if err != nil {
		return err
	}
	defer cleanup()

	auditPublisher, closeAudit, err := buildAuditPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	registry := tenant.Default()
	resolver := tenant.NewResolver(registry, log)
	identity := provider.New(cfg.ProviderBaseURL, cfg.FSNHash, cfg.ProviderTimeout,
		provider.WithBreaker(circuit.New("identity-provider")),
	)

	auth := authservice.NewService(sessions, identity, resolver,
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New()),
		authservice.WithAuditPublisher(auditPublisher),
	)
	loans := loan.NewService(auth, identity,
		loan.WithLogger(log),
		loan.WithAuditPublisher(auditPublisher),
	)
	auth.RegisterOperation(loan.OperationName, loans)

	engine := bot.NewEngine(auth, loans, bot.WithLogger(log))
	handler := bothandler.New(engine, registry, log)
	verifier := authmw.NewVerifier(cfg.RuntimeSigningKey, log)
	router := bothandler.NewRouter(handler, verifier, healthHandler, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// buildSessionStore picks the session backend: Redis when configured,
// otherwise Postgres, otherwise process memory.
func buildSessionStore(ctx context.Context, cfg config.Config, healthHandler *health.Handler, log *slog.Logger) (authstore.Store, func(), error) {
	if cfg.Redis.URL != "" {
		client, err := platformredis.New(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		healthHandler.RegisterCheck("redis", client.Health)
		go recordPoolStats(ctx, client)
		log.Info("using redis session store", "ttl", cfg.SessionTTL)
		redisStore := authstore.NewRedis(client.Client, cfg.SessionTTL, authstore.WithRedisLogger(log))
		return redisStore, func() { _ = client.Close() }, nil
	}

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err := authstore.MigratePostgres(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		healthHandler.RegisterCheck("postgres", db.PingContext)
		log.Info("using postgres session store")
		return authstore.NewPostgres(db), func() { _ = db.Close() }, nil
	}

	log.Warn("no session backend configured, sessions will not survive restarts")
	return authstore.NewMemory(), func() {}, nil
}

// buildAuditPublisher wires the audit sink: Kafka when brokers are set,
// otherwise the in-process store.
func buildAuditPublisher(cfg config.Config, log *slog.Logger) (*audit.Publisher, func(), error) {
	if cfg.Kafka.Brokers == "" {
		publisher := audit.NewPublisher(audit.NewInMemoryStore(),
			audit.WithPublisherLogger(log),
		)
		return publisher, publisher.Close, nil
	}

	kafkaProducer, err := producer.New(producer.Config{
		Brokers:         cfg.Kafka.Brokers,
		DeliveryTimeout: cfg.Kafka.DeliveryTimeout,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	publisher := audit.NewPublisher(audit.NewKafkaStore(kafkaProducer, cfg.Kafka.Topic),
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	)
	log.Info("audit events publishing to kafka", "topic", cfg.Kafka.Topic)
	return publisher, func() {
		publisher.Close()
		_ = kafkaProducer.Close()
	}, nil
}

func recordPoolStats(ctx context.Context, client *platformredis.Client) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client.RecordPoolStats()
		}
	}
}
