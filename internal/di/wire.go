//go:build wireinject
// +build wireinject

package di

import (
	"TicketPulse/pkg/config"
	"TicketPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,
		ProvideMonitorMetrics,

		// Infrastructure clients
		ProvideAvailabilitySource,
		ProvideCache,
		ProvideKafkaProducer,

		// Repositories and sinks
		ProvideSnapshotStore,
		ProvideHub,
		ProvideSnapshotPublishers,

		// Use cases
		ProvideAggregator,
		ProvideSnapshotFetcher,
		ProvidePoller,
		ProvideMonitorSession,
		ProvideCatalog,

		// HTTP
		ProvideLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
