package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"claimshub/internal/addresslookup"
	"claimshub/internal/audit"
	"claimshub/internal/claims"
	claimshandler "claimshub/internal/claims/handler"
	"claimshub/internal/dashboard"
	"claimshub/internal/draft"
	"claimshub/internal/eligibility"
	"claimshub/internal/export"
	"claimshub/internal/funnel"
	funnelhandler "claimshub/internal/funnel/handler"
	"claimshub/internal/introducer"
	"claimshub/internal/platform/config"
	"claimshub/internal/platform/httpserver"
	"claimshub/internal/platform/jwtauth"
	"claimshub/internal/platform/logger"
	"claimshub/internal/platform/metrics"
	"claimshub/internal/platform/redis"
	"claimshub/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Claims store: PostgreSQL when configured, embedded SQLite otherwise.
	var claimStore claims.Store
	var closeStore func() error
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		pg := claims.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		claimStore = pg
		closeStore = db.Close
		log.Info("claims store ready", "backend", "postgres")
	} else {
		store, err := claims.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		claimStore = store
		closeStore = store.Close
		log.Info("claims store ready", "backend", "sqlite", "path", cfg.SQLitePath)
	}
	defer func() { _ = closeStore() }()

	// Draft store: Redis when configured, in-memory otherwise.
	var draftStore draft.Store = draft.NewInMemoryStore()
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		draftStore = draft.NewRedisStore(redisClient.Client, cfg.SessionTTL)
		log.Info("draft store ready", "backend", "redis")
	} else {
		log.Info("draft store ready", "backend", "memory")
	}

	introducers := introducer.NewService(introducer.NewInMemoryStore())
	if err := introducers.Seed(ctx, cfg.Introducers, time.Now()); err != nil {
		return err
	}

	// Audit pipeline: Kafka when brokers are configured, in-memory otherwise.
	var sink audit.Sink = audit.NewMemorySink()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit sink ready", "backend", "kafka", "topic", cfg.AuditTopic)
	}
	publisher := audit.NewPublisher(log)
	auditDone := make(chan struct{})
	go func() {
		publisher.Run(ctx, sink)
		close(auditDone)
	}()

	claimService := claims.NewService(claimStore, m, log)
	checker := eligibility.NewChecker(claimStore, cfg.EligibilityDelay, log)
	funnelService := funnel.NewService(
		introducers, draftStore, claimService, checker, publisher, m, log, cfg.AutoAdvanceDelay,
	)

	var provider addresslookup.Provider = addresslookup.NewStaticProvider()
	if cfg.AddressLookupURL != "" {
		provider = addresslookup.NewHTTPProvider(cfg.AddressLookupURL)
	}
	lookupService := addresslookup.NewService(provider, log)

	validator := jwtauth.NewValidator(cfg.JWTSigningKey)

	router := server.NewRouter(server.Deps{
		Logger:        log,
		Metrics:       m,
		Funnel:        funnelhandler.New(funnelService, log),
		Claims:        claimshandler.New(claimService, introducers, validator, log),
		Dashboard:     dashboard.NewHandler(dashboard.NewService(claimStore), validator, log),
		AddressLookup: addresslookup.NewHandler(lookupService, log),
		Export:        export.NewHandler(log),
		Registry:      registry,
		Health: func() error {
			if redisClient != nil {
				return redisClient.Health(context.Background())
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-auditDone
	return nil
}
