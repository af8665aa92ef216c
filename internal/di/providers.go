package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"

	"CupoCast/internal/domain/repository"
	domsvc "CupoCast/internal/domain/service"
	"CupoCast/internal/handler/api"
	internalrepo "CupoCast/internal/repository"
	"CupoCast/internal/service/ratelimit"
	"CupoCast/internal/services/features"
	"CupoCast/internal/services/forecast"
	"CupoCast/internal/services/regressor"
	"CupoCast/internal/services/risk"
	"CupoCast/internal/services/scaler"
	"CupoCast/internal/usecase"
	"CupoCast/pkg/cache"
	pkgch "CupoCast/pkg/clickhouse"
	"CupoCast/pkg/config"
	xhttp "CupoCast/pkg/http"
	pkgkafka "CupoCast/pkg/kafka"
	"CupoCast/pkg/logger"
	"CupoCast/pkg/metrics"
	"CupoCast/pkg/server"
	pkgsqlite "CupoCast/pkg/sqlite"
)

const (
	initTimeout  = 10 * time.Second
	limiterSweep = time.Minute
	limiterIdle  = 10 * time.Minute
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
// The producer is shared by the event publisher and the log collector; its
// cleanup runs last.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideLogger builds the app logger. With a producer and collection
// enabled, warn/error aggregates are shipped to the logs topic; cleanup
// flushes them before the producer closes.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*logger.Logger, func(), error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stdout",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.FlushInterval,
			CountThreshold: 100,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      producer,
		})
	}
	return l, l.RemoveCollector, nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry,
// the one /metrics serves.
func ProvideMetrics() repository.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
}

// ProvideHistoryStore opens the configured backend and ensures its schema.
func ProvideHistoryStore(cfg *config.Config, log *logger.Logger) (repository.HistoryStore, func(), error) {
	var store repository.HistoryStore
	switch cfg.Storage.Type {
	case config.StorageClickHouse:
		client, err := pkgch.NewClient(
			pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithPool(10, 5, 0),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		store = internalrepo.NewClickHouseHistoryStore(client)
	case config.StorageSQLite:
		client, err := pkgsqlite.NewClient(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite client: %w", err)
		}
		store = internalrepo.NewSQLiteHistoryStore(client)
	default:
		store = internalrepo.NewMemoryHistoryStore()
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("%s schema: %w", cfg.Storage.Type, err)
	}
	return store, closeWithLog(log, "history store", store.Close), nil
}

// closeWithLog adapts a Close method to a wire cleanup.
func closeWithLog(log *logger.Logger, name string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			log.Warn("close error", logger.String("resource", name), logger.Error(err))
		}
	}
}

// ProvideRegressor loads the local MLP or points at the model server.
func ProvideRegressor(cfg *config.Config) (domsvc.Regressor, error) {
	if cfg.Model.Backend == config.ModelHTTP {
		return regressor.NewHTTPRegressor(cfg.Model.ServiceURL, cfg.Model.Timeout, features.VectorSize, cfg.Model.RetryAttempts), nil
	}
	m, err := regressor.LoadMLP(cfg.Model.RegressorPath)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func ProvideNormalizer(cfg *config.Config) (*scaler.Normalizer, error) {
	return scaler.LoadNormalizer(cfg.Model.XScalerPath, cfg.Model.YScalerPath)
}

func ProvideForecaster(reg domsvc.Regressor, norm *scaler.Normalizer, cfg *config.Config) (*forecast.Forecaster, error) {
	return forecast.New(reg, norm, forecast.WithMaxHorizon(cfg.Model.MaxHorizon))
}

func ProvideClassifier(cfg *config.Config) *risk.Classifier {
	return risk.NewClassifier(
		risk.WithScoreFloor(cfg.Risk.ScoreFloor),
		risk.WithLateThreshold(cfg.Risk.LateThreshold),
	)
}

// ProvideCache returns the projection cache: nil when disabled, in-memory by
// default, Redis behind an in-memory L1 when Redis is enabled.
func ProvideCache(cfg *config.Config, log *logger.Logger) (cache.Service, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}
	mem := cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize),
		cache.WithMemoryDefaultTTL(cfg.Cache.TTL),
	)
	if !cfg.Cache.Redis.Enabled {
		return mem, closeWithLog(log, "cache", mem.Close), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		_ = mem.Close()
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc, mem, cfg.Cache.Redis.L1TTL)
	return lc, closeWithLog(log, "cache", lc.Close), nil
}

// ProvideEventPublisher publishes assessment events, or drops them without Kafka.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.EventPublisher {
	if producer == nil {
		return repository.NoopPublisher{}
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
}

func ProvideProjectionUseCase(
	cfg *config.Config,
	store repository.HistoryStore,
	f *forecast.Forecaster,
	c cache.Service,
	pub repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.ProjectionUseCase {
	return usecase.NewProjectionUseCase(store, f, c, cfg.Cache.TTL, pub, m, log)
}

func ProvideRiskUseCase(
	store repository.HistoryStore,
	cl *risk.Classifier,
	pub repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.RiskUseCase {
	return usecase.NewRiskUseCase(store, cl, pub, m, log)
}

func ProvideUserUseCase(store repository.HistoryStore, c cache.Service, m repository.Metrics, log *logger.Logger) *usecase.UserUseCase {
	return usecase.NewUserUseCase(store, c, m, log)
}

// ProvideKafkaConsumer starts ingesting history when the consumer is enabled.
func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger, users *usecase.UserUseCase, m repository.Metrics) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.RegisterHandler(usecase.NewKafkaHistoryHandler(cfg.Kafka.IngestTopic, users, m))
	consumer.WithConsumerHook(pkgkafka.NewHookChain(ingestLogHook(log)))
	log.Info("history ingest configured",
		logger.Strings("brokers", cfg.Kafka.Brokers),
		logger.String("topic", cfg.Kafka.IngestTopic),
		logger.String("dlq", cfg.Kafka.Consumer.DLQTopic),
		logger.Int("workers", cfg.Kafka.Consumer.Workers))
	return consumer, nil
}

// ingestLogHook tags each message with its trace id and logs slow or failed handling.
func ingestLogHook(log *logger.Logger) pkgkafka.ConsumerHook {
	return pkgkafka.HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			ctx = pkgkafka.WithStartTime(ctx, time.Now())
			ctx = pkgkafka.WithTraceID(ctx, pkgkafka.ExtractTraceID(km))
			return ctx, km, data, nil
		},
		After: func(ctx context.Context, topic string, km kafka.Message, _ []byte, err error) {
			if err != nil {
				return
			}
			if start, ok := pkgkafka.StartTime(ctx); ok && time.Since(start) > time.Second {
				log.Warn("slow history ingest",
					logger.String("topic", topic),
					logger.Int("partition", km.Partition),
					logger.Int64("offset", km.Offset),
					logger.Duration("took", time.Since(start)))
			}
		},
		Err: func(ctx context.Context, topic string, km kafka.Message, _ []byte, err error) {
			log.Error("history ingest failed",
				logger.String("topic", topic),
				logger.String("trace_id", pkgkafka.TraceID(ctx)),
				logger.Int64("offset", km.Offset),
				logger.Error(err))
		},
	}
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Rate, cfg.RateLimit.Burst)
}

// ProvideHTTPHandlers collects every route group.
func ProvideHTTPHandlers(
	log *logger.Logger,
	store repository.HistoryStore,
	projections *usecase.ProjectionUseCase,
	users *usecase.UserUseCase,
	riskUC *usecase.RiskUseCase,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewHealthEchoHandler(log, store),
		api.NewProjectionsEchoHandler(log, projections, time.Now),
		api.NewUsersEchoHandler(log, users, riskUC),
		api.NewRiskEchoHandler(log, riskUC),
	}
}

func ProvideHTTPServer(cfg *config.Config, log *logger.Logger, h xhttp.Handler, limiter *ratelimit.Limiter) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(log),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetricsPath(""))
	}
	// a nil *Limiter must not become a non-nil Allower
	if limiter != nil {
		opts = append(opts, xhttp.WithRateLimiter(limiter))
	}
	log.Info("http server configured",
		logger.Int("port", cfg.Server.Port),
		logger.Bool("metrics", cfg.Metrics.Enabled),
		logger.Bool("rate_limit", limiter != nil))
	return xhttp.NewServer(h, opts...)
}

// ProvideApp assembles the lifecycle. Resources are released by the wire
// cleanup once Run returns.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	limiter *ratelimit.Limiter,
) *server.App {
	opts := []server.Option{server.WithShutdownTimeout(cfg.Server.ShutdownTimeout)}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer))
	}
	if limiter != nil {
		opts = append(opts, server.WithTask(server.Task{
			Name: "rate-limit-sweep",
			Run: func(ctx context.Context) {
				t := time.NewTicker(limiterSweep)
				defer t.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-t.C:
						if n := limiter.Sweep(limiterIdle); n > 0 {
							log.Debug("rate limiter swept", logger.Int("buckets", n))
						}
					}
				}
			},
		}))
	}
	return server.New(log, srv, opts...)
}
