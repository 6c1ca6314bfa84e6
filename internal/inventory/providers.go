package inventory

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tair/stock-ledger/internal/inventory/delivery/grpc"
	"github.com/tair/stock-ledger/internal/inventory/delivery/http"
	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/feed"
	"github.com/tair/stock-ledger/internal/inventory/monitor"
	"github.com/tair/stock-ledger/internal/inventory/repository"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
	"github.com/tair/stock-ledger/kafka"
	"github.com/tair/stock-ledger/pkg/clock"
	"github.com/tair/stock-ledger/pkg/database"
	"github.com/tair/stock-ledger/pkg/health"
	"github.com/tair/stock-ledger/pkg/logger"
)

// Store groups the collaborators backed by one storage driver
type Store struct {
	Items         domain.InventoryRepository
	Movements     domain.MovementRepository
	Tx            domain.Transactor
	Watcher       domain.ChangeWatcher
	Notifications domain.NotificationSink
	Check         health.Check
}

// App is the assembled service
type App struct {
	Store     *Store
	Inventory *http.InventoryHandler
	Movements *http.MovementHandler
	GRPC      *grpc.Server
	Hub       *feed.Hub
	Monitor   *monitor.Monitor
	// Consumer is nil when Kafka is not configured
	Consumer *kafka.Consumer
	Checks   health.Checks

	CreateMovement *command.CreateMovementHandler
	ListMovements  *query.ListMovementsHandler
	LowStock       *query.CheckLowStockHandler
}

func ProvideClock() domain.Clock {
	return clock.New()
}

// ProvideStore opens the store selected by cfg.StoreDriver
func ProvideStore(cfg Config, clk domain.Clock) (*Store, func(), error) {
	switch cfg.StoreDriver {
	case DriverMemory, "":
		mem := repository.NewMemStore(clk)
		logger.Logger.Info().Msg("Using in-memory store")
		return &Store{
			Items:         mem,
			Movements:     mem.Movements(),
			Tx:            mem,
			Watcher:       mem,
			Notifications: mem,
			Check:         func(context.Context) error { return nil },
		}, func() {}, nil

	case DriverPostgres:
		db, err := database.NewGormConnection(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		if cfg.AutoMigrate {
			if err := repository.AutoMigrate(db); err != nil {
				sqlDB.Close()
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		cleanup := func() {
			if err := sqlDB.Close(); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to close database")
			}
		}
		return &Store{
			Items:         repository.NewInventoryRepositoryWithTracing(repository.NewGormInventoryRepository(db, clk)),
			Movements:     repository.NewMovementRepositoryWithTracing(repository.NewGormMovementRepository(db)),
			Tx:            repository.NewTransactorWithTracing(repository.NewGormTransactor(db, clk)),
			Watcher:       repository.NewPQChangeWatcher(cfg.Database.DSN()),
			Notifications: repository.NewGormNotificationRepository(db),
			Check:         sqlDB.PingContext,
		}, cleanup, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// ProvideKafkaPublisher returns nil when no brokers are configured
func ProvideKafkaPublisher(cfg Config) (*kafka.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, func() {}, nil
	}
	p, err := kafka.NewPublisher(cfg.KafkaBrokers)
	if err != nil {
		return nil, nil, err
	}
	return p, func() {
		if err := p.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka publisher")
		}
	}, nil
}

// ProvideMovementPublisher keeps a nil publisher a nil interface
func ProvideMovementPublisher(p *kafka.Publisher) command.MovementPublisher {
	if p == nil {
		return nil
	}
	return p
}

func ProvideRelays(p *kafka.Publisher) []feed.Relay {
	if p == nil {
		return nil
	}
	return []feed.Relay{p}
}

// ProvideNotificationSink fans a low-stock batch out to the log, the store and Kafka
func ProvideNotificationSink(store *Store, p *kafka.Publisher) domain.NotificationSink {
	sinks := monitor.MultiSink{monitor.LogSink{}, store.Notifications}
	if p != nil {
		sinks = append(sinks, p)
	}
	return sinks
}

// ProvideRedisClient returns nil when REDIS_ADDR is unset
func ProvideRedisClient(cfg Config) (*redis.Client, func(), error) {
	if cfg.RedisAddr == "" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Redis client")
		}
	}, nil
}

// ProvideDeduper shares marks through Redis when it is available
func ProvideDeduper(cfg Config, client *redis.Client, clk domain.Clock) monitor.Deduper {
	if client != nil {
		return monitor.NewRedisDeduper(client, cfg.Monitor.DedupWindow)
	}
	return monitor.NewMemoryDeduper(cfg.Monitor.DedupWindow, clk)
}

func ProvideHealthChecks(store *Store, client *redis.Client) health.Checks {
	checks := health.Checks{"store": store.Check}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}

func ProvideCursorCodec(cfg Config) *domain.CursorCodec {
	return domain.NewCursorCodec([]byte(cfg.CursorSecret))
}

func ProvideTxRunner(store *Store, cfg Config) *command.TxRunner {
	return command.NewTxRunner(store.Tx, cfg.Retry)
}

func ProvideMonitor(store *Store, sink domain.NotificationSink, dedup monitor.Deduper, clk domain.Clock, cfg Config) *monitor.Monitor {
	return monitor.New(store.Items, sink, dedup, clk, cfg.Monitor)
}

func ProvideHub(store *Store, list *query.ListMovementsHandler, relays []feed.Relay) *feed.Hub {
	return feed.NewHub(store.Watcher, store.Items, list, relays...)
}

func ProvideGRPCServer(checks health.Checks, cfg Config) *grpc.Server {
	return grpc.NewServer(checks, cfg.HealthInterval)
}

// ProvidePurchaseConsumer returns nil when no brokers are configured
func ProvidePurchaseConsumer(cfg Config, create *command.CreateMovementHandler) (*kafka.Consumer, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, func() {}, nil
	}
	c, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, []string{kafka.TopicProductPurchased})
	if err != nil {
		return nil, nil, err
	}
	c.RegisterHandler(kafka.EventTypeProductPurchased, kafka.NewPurchaseHandler(create))
	return c, func() {
		if err := c.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		}
	}, nil
}

// Query handler providers

func ProvideGetInventoryHandler(store *Store) *query.GetInventoryHandler {
	return query.NewGetInventoryHandler(store.Items)
}

func ProvideListInventoryHandler(store *Store) *query.ListInventoryHandler {
	return query.NewListInventoryHandler(store.Items)
}

func ProvideCheckLowStockHandler(store *Store) *query.CheckLowStockHandler {
	return query.NewCheckLowStockHandler(store.Items)
}

func ProvideGetMovementHandler(store *Store) *query.GetMovementHandler {
	return query.NewGetMovementHandler(store.Movements)
}

func ProvideListMovementsHandler(store *Store, codec *domain.CursorCodec) *query.ListMovementsHandler {
	return query.NewListMovementsHandler(store.Movements, codec)
}

func ProvideRecentMovementsHandler(store *Store) *query.RecentMovementsHandler {
	return query.NewRecentMovementsHandler(store.Movements)
}

func ProvideMovementsByDateHandler(store *Store) *query.MovementsByDateHandler {
	return query.NewMovementsByDateHandler(store.Movements)
}

// Command handler providers

func ProvideCreateInventoryHandler(store *Store) *command.CreateInventoryHandler {
	return command.NewCreateInventoryHandler(store.Items)
}

func ProvideDeleteInventoryHandler(store *Store) *command.DeleteInventoryHandler {
	return command.NewDeleteInventoryHandler(store.Items)
}
