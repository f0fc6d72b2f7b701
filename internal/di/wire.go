//go:build wireinject
// +build wireinject

package di

import (
	"LeadPulse/pkg/config"
	"LeadPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Logging and metrics
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCacheService,
		ProvideBytesCache,

		// Repositories (with business logic)
		ProvideLeadStorage,
		ProvideLeadPublisher,
		ProvideTrackerStream,
		ProvideObservationStore,

		// Analytics cores
		ProvideForecaster,
		ProvideDetector,

		// Use cases
		ProvideLeadProcessor,
		ProvideLeadCollector,
		ProvideKafkaLeadsHandler,
		ProvideInsightAggregator,
		ProvideInsightsAggregateUseCase,
		ProvideObservationsUseCase,
		ProvideForecastRefresher,
		ProvideRefreshQueue,

		// HTTP
		ProvideInsightsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
