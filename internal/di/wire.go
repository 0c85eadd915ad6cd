//go:build wireinject
// +build wireinject

package di

import (
	"AstroChart/pkg/config"
	"AstroChart/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvidePostgresClient,
		ProvideRedisCache,
		ProvideCache,
		ProvideJobQueue,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideClickHouseClient,

		// Repositories
		ProvideChartRepository,
		ProvideInterpretationRepository,
		ProvideAdminRepository,
		ProvideChartPublisher,
		ProvidePositionPipeline,

		// Astronomy
		ProvideEphemeris,
		ProvideTimeZones,
		ProvideCalculator,

		// Use cases
		ProvideChartsUseCase,
		ProvideInterpretationsUseCase,
		ProvideAuthService,
		ProvideAdminUseCase,
		ProvideChartRequestsHandler,
		ProvideChartComputeJob,

		// Transport
		ProvideGeocoder,
		ProvideHub,
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}
