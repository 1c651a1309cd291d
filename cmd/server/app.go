package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sampad/internal/antiforgery"
	"sampad/internal/platform/config"
	"sampad/internal/platform/database"
	"sampad/internal/platform/health"
	"sampad/internal/platform/kafka/producer"
	redisclient "sampad/internal/platform/redis"
	"sampad/internal/platform/tracing"
	registrationhandler "sampad/internal/registration/handler"
	registrationmetrics "sampad/internal/registration/metrics"
	"sampad/internal/registration/service"
	"sampad/internal/registration/store"
	httptransport "sampad/internal/transport/http"
	"sampad/pkg/payment"
	"sampad/pkg/platform/middleware/metadata"
	"sampad/pkg/platform/middleware/request"
	"sampad/pkg/platform/outbox"
	outboxmetrics "sampad/pkg/platform/outbox/metrics"
	outboxpg "sampad/pkg/platform/outbox/postgres"
	"sampad/pkg/platform/outbox/worker"
	"sampad/pkg/platform/tracer"
	"sampad/pkg/platform/tx"
)

const (
	replayCleanupInterval = 5 * time.Minute
	redisStatsInterval    = 15 * time.Second
)

// app holds the wired process: the HTTP handler plus the background loops and
// resources that must be released on shutdown.
type app struct {
	handler  http.Handler
	worker   *worker.Worker
	redis    *redisclient.Client
	tracing  *tracing.Provider
	closers  []func() error
	registry *prometheus.Registry
}

// buildApp wires storage, the optional outbox relay, anti-forgery and the router.
// On error every resource opened so far is closed.
func buildApp(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *app, err error) {
	a := &app{registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			_ = a.close(context.Background())
		}
	}()

	reg := a.registry
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a.tracing, err = tracing.NewProvider(tracing.Config{Enabled: cfg.TracingEnabled, ServiceName: "sampad"})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	checks := health.New(cfg.Storage.Backend)

	var (
		regStore service.Store
		txRunner *tx.SQLRunner
		db       *sql.DB
		driver   string
	)
	switch cfg.Storage.Backend {
	case config.BackendPostgres, config.BackendSQLite:
		pool, err := database.New(ctx, databaseConfig(cfg.Storage))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		checks.RegisterCheck("database", pool.Health)

		db, driver = pool.DB(), pool.Driver()
		txRunner = tx.NewSQLRunner(db, cfg.Storage.TxTimeout)
		if driver == database.DriverPostgres {
			regStore = store.NewPostgres(db)
		} else {
			regStore = store.NewSQLite(db)
		}
	default:
		regStore = store.NewInMemory()
	}
	outboxStore := newOutboxStore(cfg.Kafka.Enabled(), driver, db)

	svcOpts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(registrationmetrics.New(reg)),
		service.WithPaymentAccount(payment.Account{
			CardNumber: cfg.Payment.CardNumber,
			Owner:      cfg.Payment.CardOwner,
		}),
	}
	if txRunner != nil {
		svcOpts = append(svcOpts, service.WithTx(txRunner))
	}
	if outboxStore != nil {
		svcOpts = append(svcOpts, service.WithOutbox(outboxStore))
	}
	if a.tracing.Enabled() {
		svcOpts = append(svcOpts, service.WithTracer(tracer.NewOTel()))
	}
	svc := service.New(regStore, svcOpts...)

	if cfg.Kafka.Enabled() {
		prod, err := producer.New(producer.Config{
			Brokers:  strings.Join(cfg.Kafka.Brokers, ","),
			ClientID: cfg.Kafka.ClientID,
			Acks:     cfg.Kafka.Acks,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		a.closers = append(a.closers, prod.Close)
		checks.RegisterCheck("kafka", prod.Check)

		if err := prod.EnsureTopic(ctx, cfg.Kafka.Topic, cfg.Kafka.TopicPartitions, cfg.Kafka.ReplicationFactor); err != nil {
			return nil, fmt.Errorf("ensure topic %s: %w", cfg.Kafka.Topic, err)
		}

		workerOpts := []worker.Option{
			worker.WithTopic(cfg.Kafka.Topic),
			worker.WithBatchSize(cfg.Kafka.BatchSize),
			worker.WithPollInterval(cfg.Kafka.PollInterval),
			worker.WithMetrics(outboxmetrics.New(reg)),
			worker.WithLogger(log),
		}
		if txRunner != nil {
			workerOpts = append(workerOpts, worker.WithTx(txRunner))
		}
		a.worker = worker.New(outboxStore, prod, workerOpts...)
	}

	var guard *antiforgery.Guard
	if cfg.AntiForgery.Enabled {
		if cfg.UsesDevSecret() {
			log.Warn("using the development anti-forgery secret; set ANTIFORGERY_SECRET in production")
		}
		issuer, err := antiforgery.NewIssuer(cfg.AntiForgery.Secret, cfg.AntiForgery.TTL)
		if err != nil {
			return nil, fmt.Errorf("antiforgery issuer: %w", err)
		}

		var replay antiforgery.ReplayStore
		a.redis, err = redisclient.New(ctx, cfg.Redis, reg)
		if err != nil {
			return nil, err
		}
		if a.redis != nil {
			a.closers = append(a.closers, a.redis.Close)
			checks.RegisterCheck("redis", a.redis.Health)
			replay = antiforgery.NewRedisReplayStore(a.redis)
		} else {
			replay = antiforgery.NewCacheReplayStore(replayCleanupInterval)
		}
		guard = antiforgery.NewGuard(issuer, replay, log, antiforgery.NewMetrics(reg))
	}

	a.handler = httptransport.NewRouter(httptransport.RouterDeps{
		Logger:         log,
		Registrations:  registrationhandler.New(svc, log),
		Guard:          guard,
		Health:         checks,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		RequestMetrics: request.NewMetrics(reg),
		Metadata:       metadata.NewMiddleware(nil),
		MaxBodyBytes:   cfg.MaxBodyBytes,
		RequestTimeout: cfg.RequestTimeout,
	})
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if a.tracing != nil {
		errs = append(errs, a.tracing.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// newOutboxStore returns nil when Kafka is disabled, since nothing would ever
// drain the entries. Postgres keeps them in the outbox table next to the
// registration; other backends buffer them in memory.
func newOutboxStore(kafkaEnabled bool, driver string, db *sql.DB) outbox.Store {
	if !kafkaEnabled {
		return nil
	}
	if driver == database.DriverPostgres && db != nil {
		return outboxpg.New(db)
	}
	return outbox.NewInMemory()
}

func databaseConfig(s config.Storage) database.Config {
	cfg := database.DefaultConfig()
	switch s.Backend {
	case config.BackendSQLite:
		cfg.Driver = database.DriverSQLite
		cfg.URL = s.SQLitePath
	default:
		cfg.Driver = database.DriverPostgres
		cfg.URL = s.DatabaseURL
	}
	if s.MaxOpenConns > 0 {
		cfg.MaxOpenConns = s.MaxOpenConns
	}
	if s.MaxIdleConns > 0 {
		cfg.MaxIdleConns = s.MaxIdleConns
	}
	if s.ConnMaxLifetime > 0 {
		cfg.ConnMaxLifetime = s.ConnMaxLifetime
	}
	return cfg
}
