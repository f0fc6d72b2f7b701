package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"LeadPulse/internal/domain/repository"
	domsvc "LeadPulse/internal/domain/service"
	"LeadPulse/internal/handler/api"
	mid "LeadPulse/internal/middleware"
	internalrepo "LeadPulse/internal/repository"
	icache "LeadPulse/internal/service/cache"
	"LeadPulse/internal/service/tracker"
	"LeadPulse/internal/services/anomaly"
	"LeadPulse/internal/services/features"
	"LeadPulse/internal/services/forecast"
	"LeadPulse/internal/services/model"
	"LeadPulse/internal/usecase"
	pkgcache "LeadPulse/pkg/cache"
	pkgch "LeadPulse/pkg/clickhouse"
	"LeadPulse/pkg/config"
	pkgkafka "LeadPulse/pkg/kafka"
	applogger "LeadPulse/pkg/logger"
	"LeadPulse/pkg/metrics"
	"LeadPulse/pkg/queue"
	"LeadPulse/pkg/server"

	goredis "github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger() (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS leadpulse",
		"CREATE TABLE IF NOT EXISTS leadpulse.lead_events_raw (ts DateTime, campaign String, cost Float64, revenue Float64, source String, event_id String, seq UInt64) ENGINE=MergeTree ORDER BY (campaign, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
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
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLeadStorage creates ClickHouse storage repository.
func ProvideLeadStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".lead_events_raw")
}

// ProvideLeadPublisher creates Kafka publisher repository.
func ProvideLeadPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
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
	return consumer, nil
}

// ProvideKafkaLeadsHandler registers handler for the leads topic.
func ProvideKafkaLeadsHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaLeadsHandler {
	return usecase.NewKafkaLeadsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideTrackerStream creates the ad tracker WebSocket stream.
func ProvideTrackerStream(cfg *config.Config) repository.LeadStream {
	return tracker.New(
		cfg.Tracker.APIKey,
		cfg.Tracker.WebSocketURL,
		cfg.Tracker.Campaigns,
		cfg.Tracker.ReconnectDelay,
		cfg.Tracker.PingInterval,
	)
}

// ProvideLeadProcessor creates the lead processor use case.
func ProvideLeadProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.LeadProcessor {
	return usecase.NewLeadProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideLeadCollector creates the lead collector use case.
func ProvideLeadCollector(
	stream repository.LeadStream,
	processor *usecase.LeadProcessor,
	metrics repository.Metrics,
) *usecase.LeadCollector {
	// Build middleware pipeline between WebSocket and Kafka
	pipe := mid.NewRealtimePipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewLeadCollector(stream, processor, metrics, pipe)
}

// ProvideCacheService creates the shared cache: layered over Redis
// when enabled, in-process otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Insights.Redis.Enabled {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(10000)), nil
	}
	host, port, err := splitAddr(cfg.Insights.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Insights.Redis.Password),
		pkgcache.WithRedisDB(cfg.Insights.Redis.DB),
		pkgcache.WithRedisPrefix("leadpulse"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

func splitAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

// ProvideObservationStore creates the hourly series reader, cached.
func ProvideObservationStore(chClient *pkgch.Client, cacheSvc pkgcache.Service, cfg *config.Config, l *applogger.Logger) repository.ObservationStore {
	store := internalrepo.NewCHObservationStore(chClient)
	store.SetLogger(l)
	return internalrepo.NewCachedObservationStore(store, cacheSvc, cfg.Insights.CacheTTL.Series)
}

// ProvideForecaster selects the forecaster variant by configuration,
// never by inspecting the model.
func ProvideForecaster(cfg *config.Config) domsvc.LeadForecaster {
	switch cfg.Insights.Model.Family {
	case domsvc.FamilyDirect:
		return forecast.NewDirectForecaster(model.NewHTTPDirectModel(cfg))
	default:
		return forecast.NewSimulator(model.NewHTTPStepModel(cfg), features.DefaultConfig())
	}
}

// ProvideDetector creates the anomaly detector.
func ProvideDetector() domsvc.AnomalyDetector {
	return anomaly.NewDetector()
}

// ProvideInsightAggregator creates the core insights use case.
func ProvideInsightAggregator(
	store repository.ObservationStore,
	forecaster domsvc.LeadForecaster,
	detector domsvc.AnomalyDetector,
	metrics repository.Metrics,
) *usecase.InsightAggregator {
	return usecase.NewInsightAggregator(store, forecaster, detector, metrics)
}

// ProvideInsightsAggregateUseCase creates the fan-out use case.
func ProvideInsightsAggregateUseCase(agg *usecase.InsightAggregator) *usecase.InsightsAggregateUseCase {
	return usecase.NewInsightsAggregateUseCase(agg)
}

// ProvideObservationsUseCase creates the raw series use case.
func ProvideObservationsUseCase(store repository.ObservationStore) *usecase.ObservationsUseCase {
	return usecase.NewObservationsUseCase(store)
}

// ProvideBytesCache creates the response byte cache the handler serves
// from and the refresher warms. Redis-backed when enabled so warmed
// entries survive restarts and are shared across replicas.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Insights.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Insights.Redis.Addr,
			Password: cfg.Insights.Redis.Password,
			DB:       cfg.Insights.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideInsightsHandler creates the insights HTTP handler.
func ProvideInsightsHandler(
	l *applogger.Logger,
	agg *usecase.InsightAggregator,
	full *usecase.InsightsAggregateUseCase,
	obs *usecase.ObservationsUseCase,
	chClient *pkgch.Client,
	bc icache.BytesCache,
) *api.InsightsEchoHandler {
	h := api.NewInsightsEchoHandler(l, agg, full, obs)
	h.SetCache(bc)
	h.SetHealthCheck(chClient.Health)
	return h
}

// ProvideForecastRefresher creates the cache-warming queue job.
func ProvideForecastRefresher(agg *usecase.InsightAggregator, bc icache.BytesCache, cfg *config.Config, l *applogger.Logger) *usecase.ForecastRefresher {
	return usecase.NewForecastRefresher(agg, bc, cfg.Insights.CacheTTL.Forecast, l)
}

// ProvideRefreshQueue creates the Redis-backed refresh queue, or nil
// when Redis is disabled.
func ProvideRefreshQueue(cfg *config.Config, l *applogger.Logger, refresher *usecase.ForecastRefresher) *queue.RedisQueue {
	if !cfg.Insights.Redis.Enabled {
		return nil
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Insights.Redis.Addr,
		Password: cfg.Insights.Redis.Password,
		DB:       cfg.Insights.Redis.DB,
	})
	return queue.NewRedisConsumer(l,
		&queue.QueueConfig{Workers: 2, QueueSize: 100, RetryLimit: 3, RetryDelay: 30 * time.Second},
		client,
		[]queue.Job{refresher},
		queue.WithKeyPrefix("leadpulse:queue"),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.LeadCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaLeadsHandler,
	chClient *pkgch.Client,
	handler *api.InsightsEchoHandler,
	refreshQueue *queue.RedisQueue,
) *server.App {
	// Attach hook to consumer: NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	if refreshQueue != nil {
		app.SetQueue(refreshQueue)
	}
	// attach lead processor to app for closing resources via collector
	if collector != nil {
		app.LeadProc = collector.Processor()
	}
	return app
}
