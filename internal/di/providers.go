package di

import (
	"fmt"

	"TicketPulse/internal/domain/repository"
	"TicketPulse/internal/handler/api"
	internalrepo "TicketPulse/internal/repository"
	svcmetrics "TicketPulse/internal/service/metrics"
	"TicketPulse/internal/service/ratelimit"
	"TicketPulse/internal/service/stream"
	"TicketPulse/internal/service/tickets"
	"TicketPulse/internal/service/vendor"
	"TicketPulse/internal/usecase"
	"TicketPulse/pkg/cache"
	"TicketPulse/pkg/config"
	xhttp "TicketPulse/pkg/http"
	pkgkafka "TicketPulse/pkg/kafka"
	applogger "TicketPulse/pkg/logger"
	"TicketPulse/pkg/metrics"
	"TicketPulse/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideRegistry creates the Prometheus registry served on the metrics path.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the aggregator and poller metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

func ProvideMonitorMetrics(reg *prometheus.Registry) *svcmetrics.MonitorMetrics {
	return svcmetrics.NewMonitorMetrics(reg)
}

// ProvideAvailabilitySource creates the vendor HTTP client.
func ProvideAvailabilitySource(cfg *config.Config) repository.AvailabilitySource {
	return vendor.New(vendor.Config{
		BaseURL:   cfg.Vendor.BaseURL,
		APIKey:    cfg.Vendor.APIKey,
		Action:    cfg.Vendor.Action,
		UserAgent: cfg.Vendor.UserAgent,
		Timeout:   cfg.Vendor.Timeout,
	})
}

// ProvideAggregator creates the per-tier availability aggregator.
func ProvideAggregator(cfg *config.Config, source repository.AvailabilitySource, m repository.Metrics, l *applogger.Logger) *usecase.Aggregator {
	return usecase.NewAggregator(source, m,
		usecase.WithFetchTimeout(cfg.Vendor.Timeout),
		usecase.WithAggregatorLogger(l),
	)
}

// ProvideSnapshotFetcher picks the poller's data source: another instance's
// /api/tickets when monitor.aggregator_url is set, the local aggregator otherwise.
func ProvideSnapshotFetcher(cfg *config.Config, agg *usecase.Aggregator) repository.SnapshotFetcher {
	if cfg.Monitor.AggregatorURL != "" {
		return tickets.New(cfg.Monitor.AggregatorURL, cfg.Vendor.Timeout)
	}
	return agg
}

// ProvideCache creates the snapshot cache: in-memory, or memory over Redis when
// Redis is enabled so every instance serves the same latest snapshot.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

func ProvideSnapshotStore(cfg *config.Config, c cache.Service) repository.SnapshotStore {
	return internalrepo.NewCacheSnapshotStore(c, cfg.Monitor.SnapshotTTL)
}

func ProvideHub(cfg *config.Config, l *applogger.Logger, mm *svcmetrics.MonitorMetrics) *stream.Hub {
	return stream.NewHub(
		stream.WithLogger(l),
		stream.WithClientGauge(mm.StreamClients),
		stream.WithAllowedOrigins(cfg.Server.CORSOrigins...),
	)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSnapshotPublishers lists every sink a poll cycle publishes to.
func ProvideSnapshotPublishers(
	cfg *config.Config,
	store repository.SnapshotStore,
	hub *stream.Hub,
	producer *pkgkafka.Producer,
) []repository.SnapshotPublisher {
	pubs := []repository.SnapshotPublisher{store, hub}
	if producer != nil {
		pubs = append(pubs, internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.SnapshotTopic))
	}
	return pubs
}

func ProvidePoller(
	cfg *config.Config,
	fetcher repository.SnapshotFetcher,
	m repository.Metrics,
	pubs []repository.SnapshotPublisher,
	l *applogger.Logger,
) *usecase.Poller {
	return usecase.NewPoller(cfg.ActiveTiers(), fetcher, m,
		usecase.WithInterval(cfg.Monitor.PollInterval),
		usecase.WithPublishers(pubs...),
		usecase.WithPollerLogger(l),
	)
}

// ProvideMonitorSession gates the poller; locking also drops stream clients.
func ProvideMonitorSession(
	cfg *config.Config,
	poller *usecase.Poller,
	store repository.SnapshotStore,
	hub *stream.Hub,
	l *applogger.Logger,
) *usecase.MonitorSession {
	return usecase.NewMonitorSession(poller, store,
		usecase.WithLogin(cfg.Monitor.EnableLogin, cfg.Monitor.Password),
		usecase.WithLockHook(hub.CloseAll),
		usecase.WithSessionLogger(l),
	)
}

func ProvideCatalog(cfg *config.Config) *usecase.Catalog {
	return usecase.NewCatalog(cfg.EventInfo(), cfg.AllTiers(), cfg.TeacherTier)
}

func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHTTPHandler collects every route group.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	agg *usecase.Aggregator,
	catalog *usecase.Catalog,
	session *usecase.MonitorSession,
	store repository.SnapshotStore,
	hub *stream.Hub,
	limiter *ratelimit.Limiter,
	mm *svcmetrics.MonitorMetrics,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewTicketsHandler(l, agg, cfg.ActiveTiers()),
		api.NewEventHandler(catalog),
		api.NewMonitorHandler(l, session, store, hub,
			api.WithRateLimit(limiter, cfg.Monitor.RefreshBurst, cfg.Monitor.RefreshPerSec),
			api.WithMonitorMetrics(mm),
		),
		api.NewHealthHandler(session),
	}
}

func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *applogger.Logger, reg *prometheus.Registry) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true, cfg.Server.CORSOrigins...),
		xhttp.WithLogger(l),
		xhttp.WithMetrics(reg, reg, cfg.Metrics.Path, cfg.Metrics.SlowRequest),
	)
}

// ProvideApp assembles the application and, when Kafka is enabled, ships
// aggregated error logs to the log topic.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	session *usecase.MonitorSession,
	limiter *ratelimit.Limiter,
	c cache.Service,
	producer *pkgkafka.Producer,
) *server.App {
	if producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.CollectorInterval,
			CountThreshold: cfg.Logging.CollectorThreshold,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      internalrepo.NewKafkaLogPublisher(producer, "ticketpulse"),
		})
	}
	return server.New(cfg, l, srv, session, limiter, c, producer)
}
