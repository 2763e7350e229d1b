//go:build wireinject
// +build wireinject

package di

import (
	"github.com/quantfra/swingdesk/pkg/config"
	"github.com/quantfra/swingdesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideCacheService,
		ProvideBytesCache,

		// Repositories
		ProvideBarSource,
		ProvideSignalSource,
		ProvideTradePublisher,
		ProvideSnapshotStore,

		// Domain services
		ProvideLedger,
		ProvideIndicatorEngine,
		ProvideClassifier,
		ProvideScorer,
		ProvideSizer,

		// Use cases
		ProvideAnalyzer,
		ProvideScanner,
		ProvideTrading,
		ProvideAsyncScans,
		ProvideQueueConsumer,

		// HTTP surface and application server
		ProvideRoutes,
		ProvideApp,
	)
	return &server.App{}, nil
}
