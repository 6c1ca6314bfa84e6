//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"

	"github.com/tair/stock-ledger/internal/inventory/delivery/http"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
)

// Wire sets
var StoreSet = wire.NewSet(
	ProvideClock,
	ProvideStore,
	ProvideCursorCodec,
	ProvideTxRunner,
	ProvideHealthChecks,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateInventoryHandler,
	ProvideDeleteInventoryHandler,
	command.NewUpdateItemHandler,
	command.NewCreateMovementHandler,
	command.NewUpdateMovementHandler,
	command.NewDeleteMovementHandler,
	command.NewCompleteMovementHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetInventoryHandler,
	ProvideListInventoryHandler,
	ProvideCheckLowStockHandler,
	ProvideGetMovementHandler,
	ProvideListMovementsHandler,
	ProvideRecentMovementsHandler,
	ProvideMovementsByDateHandler,
)

var IntegrationSet = wire.NewSet(
	ProvideKafkaPublisher,
	ProvideMovementPublisher,
	ProvideRelays,
	ProvideNotificationSink,
	ProvideRedisClient,
	ProvideDeduper,
	ProvidePurchaseConsumer,
)

var DeliverySet = wire.NewSet(
	ProvideHub,
	ProvideMonitor,
	ProvideGRPCServer,
	http.NewInventoryHandler,
	http.NewMovementHandler,
)

// InitializeApp assembles the ledger with all dependencies
func InitializeApp(cfg Config) (*App, func(), error) {
	wire.Build(
		StoreSet,
		CommandHandlerSet,
		QueryHandlerSet,
		IntegrationSet,
		DeliverySet,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
