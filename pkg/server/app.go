package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TicketPulse/internal/service/ratelimit"
	"TicketPulse/internal/usecase"
	"TicketPulse/pkg/cache"
	"TicketPulse/pkg/config"
	xhttp "TicketPulse/pkg/http"
	pkgkafka "TicketPulse/pkg/kafka"
	applogger "TicketPulse/pkg/logger"
)

const (
	limiterSweepEvery = time.Minute
	limiterIdle       = 10 * time.Minute
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	session    *usecase.MonitorSession
	limiter    *ratelimit.Limiter
	cache      cache.Service
	producer   *pkgkafka.Producer
}

// New creates a new App instance with all dependencies. producer may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	session *usecase.MonitorSession,
	limiter *ratelimit.Limiter,
	c cache.Service,
	producer *pkgkafka.Producer,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		session:    session,
		limiter:    limiter,
		cache:      c,
		producer:   producer,
	}
}

// Run starts the application and blocks until interrupted or the HTTP server fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	a.session.Start(appCtx)
	a.log.Info("monitor session started",
		applogger.Bool("login_enabled", a.session.LoginEnabled()),
		applogger.Bool("unlocked", a.session.Unlocked()),
		applogger.Int("tiers", len(a.cfg.ActiveTiers())),
	)

	if a.producer != nil {
		a.log.Info("kafka publishing enabled",
			applogger.Strings("brokers", a.cfg.Kafka.Brokers),
			applogger.String("snapshot_topic", a.cfg.Kafka.SnapshotTopic),
		)
	}

	go a.sweepLimiter(appCtx)

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case runErr = <-a.httpServer.Errors():
		a.log.Error("http server error", applogger.Error(runErr))
	}

	cancel()
	a.shutdown()
	return runErr
}

func (a *App) sweepLimiter(ctx context.Context) {
	t := time.NewTicker(limiterSweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Sweep(limiterIdle); n > 0 {
				a.log.Debug("rate limiter swept", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() {
	a.log.Info("shutting down...")

	// Stop polling before the sinks it publishes to go away.
	a.session.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Flushes pending aggregated logs while the producer is still open.
	a.log.RemoveCollector()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
}
