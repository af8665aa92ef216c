//go:build wireinject
// +build wireinject

package di

import (
	"CupoCast/pkg/config"
	"CupoCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application with a
// cleanup that releases resources in reverse construction order.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideHistoryStore,
		ProvideCache,
		ProvideEventPublisher,
		ProvideRateLimiter,

		// Model
		ProvideRegressor,
		ProvideNormalizer,
		ProvideForecaster,
		ProvideClassifier,

		// Use cases
		ProvideProjectionUseCase,
		ProvideRiskUseCase,
		ProvideUserUseCase,

		// Transport
		ProvideKafkaConsumer,
		ProvideHTTPHandlers,
		ProvideHTTPServer,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil, nil
}
