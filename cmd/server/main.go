package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"padron/internal/billing"
	"padron/internal/billing/publisher"
	billingmemory "padron/internal/billing/store/memory"
	billingpostgres "padron/internal/billing/store/postgres"
	billingredis "padron/internal/billing/store/redis"
	"padron/internal/platform/config"
	"padron/internal/platform/httpserver"
	"padron/internal/platform/logger"
	platformredis "padron/internal/platform/redis"
	"padron/internal/query"
	"padron/internal/query/enrich"
	queryhandler "padron/internal/query/handler"
	querymetrics "padron/internal/query/metrics"
	querystore "padron/internal/query/store"
	"padron/internal/registry"
	httptransport "padron/internal/transport/http"
	"padron/internal/transport/upstream"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ledgerStore, closeDB, err := buildLedgerStore(ctx, cfg, log)
	if err != nil {
		log.Error("ledger store init failed", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	usageStore, closeRedis, err := buildUsageStore(cfg, log)
	if err != nil {
		log.Error("usage store init failed", "error", err)
		os.Exit(1)
	}
	defer closeRedis()

	billingOpts := []billing.Option{billing.WithLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := publisher.NewKafka(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, publisher.WithLogger(log))
		if err != nil {
			log.Error("kafka publisher init failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		billingOpts = append(billingOpts, billing.WithPublisher(kafka))
		log.Info("ledger stream enabled", "topic", cfg.Kafka.Topic)
	}

	billingSvc, err := billing.New(ledgerStore, usageStore, billingOpts...)
	if err != nil {
		log.Error("billing service init failed", "error", err)
		os.Exit(1)
	}

	reg, err := registry.Default(cfg.Endpoints)
	if err != nil {
		log.Error("service registry init failed", "error", err)
		os.Exit(1)
	}

	transport := upstream.NewHTTPClient(
		upstream.WithLogger(log),
		upstream.WithTimeout(cfg.UpstreamTimeout),
	)

	enricher, err := enrich.New(reg, transport, enrich.WithLogger(log))
	if err != nil {
		log.Error("enricher init failed", "error", err)
		os.Exit(1)
	}

	querySvc, err := query.New(reg, querystore.New(), transport, billingSvc,
		query.WithLogger(log),
		query.WithMetrics(querymetrics.New()),
		query.WithEnricher(enricher),
	)
	if err != nil {
		log.Error("query service init failed", "error", err)
		os.Exit(1)
	}

	handler := queryhandler.New(querySvc, log)
	router := httptransport.NewRouter(handler, cfg.JWTSigningKey, log)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting padron gateway", "addr", cfg.Addr, "services", reg.IDs())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildLedgerStore picks PostgreSQL when configured, in-memory otherwise.
func buildLedgerStore(ctx context.Context, cfg config.Config, log *slog.Logger) (billing.LedgerStore, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, ledger entries are not durable")
		return billingmemory.NewLedgerStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	store := billingpostgres.NewLedgerStore(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, func() { db.Close() }, nil
}

// buildUsageStore picks Redis when configured, in-memory otherwise.
func buildUsageStore(cfg config.Config, log *slog.Logger) (billing.UsageStore, func(), error) {
	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Warn("REDIS_URL not set, credit balances are per-process")
		return billingmemory.NewUsageStore(cfg.DefaultCredits, billing.PlanStandard), func() {}, nil
	}
	return billingredis.NewUsageStore(client, cfg.DefaultCredits, billing.PlanStandard), func() { client.Close() }, nil
}
