package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/application"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/infrastructure"
	"github.com/mateusmacedo/go-ticket-booking/internal/config"
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
	pkgInfra "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure"
	channelsAdapter "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure/channels/adapter"
	kafkaAdapter "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure/kafka/adapter"
	redisAdapter "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure/redis/adapter"
	wmAdapter "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/mateusmacedo/go-ticket-booking/pkg/infrastructure/zaplogger/adapter"
)

// Runtime holds the shared infrastructure both binaries run on.
type Runtime struct {
	Logger   pkgApp.AppLogger
	Trains   domain.Store[domain.Train]
	Vehicles domain.Store[domain.Vehicle]
	Events   application.EventBus

	closers []func() error
}

func NewLogger(app string, cfg config.AppConfig) (pkgApp.AppLogger, error) {
	return zapAdapter.NewZapAppLogger(zapAdapter.Options{
		App:      app,
		Level:    cfg.LogLevel,
		FilePath: cfg.LogPath,
		Debug:    cfg.Debug,
	})
}

// New opens the stores and the event bus selected by cfg. Close releases them.
func New(ctx context.Context, cfg *config.Config, logger pkgApp.AppLogger) (*Runtime, error) {
	rt := &Runtime{Logger: logger}

	if err := rt.openStores(cfg.Store); err != nil {
		_ = rt.Close()
		return nil, err
	}
	if err := rt.openEvents(cfg.Events); err != nil {
		_ = rt.Close()
		return nil, err
	}

	pkgApp.LogInfo(ctx, logger, "runtime ready", map[string]interface{}{
		"store_driver":  cfg.Store.Driver,
		"events_driver": cfg.Events.Driver,
	})
	return rt, nil
}

func (rt *Runtime) openStores(cfg config.StoreConfig) error {
	switch cfg.Driver {
	case "file":
		opts := []infrastructure.FileStoreOption{infrastructure.WithStrictDecode(cfg.Strict)}
		trains, err := infrastructure.NewFileStore[domain.Train](cfg.TrainFile, domain.TrainKind{}, rt.Logger, opts...)
		if err != nil {
			return err
		}
		vehicles, err := infrastructure.NewFileStore[domain.Vehicle](cfg.VehicleFile, domain.VehicleKind{}, rt.Logger, opts...)
		if err != nil {
			return err
		}
		rt.Trains, rt.Vehicles = trains, vehicles
	case "postgres":
		db, err := infrastructure.OpenPostgres(cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		rt.closers = append(rt.closers, sqlDB.Close)
		rt.Trains = infrastructure.NewGormStore[domain.Train](db, domain.TrainKind{}, rt.Logger)
		rt.Vehicles = infrastructure.NewGormStore[domain.Vehicle](db, domain.VehicleKind{}, rt.Logger)
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	return nil
}

func (rt *Runtime) openEvents(cfg config.EventsConfig) error {
	if cfg.Driver == "memory" {
		rt.Events = pkgInfra.NewSimpleEventBus[application.Event, application.BookingEvent](rt.Logger)
		return nil
	}

	wmLogger := wmAdapter.NewWatermillLoggerAdapter(rt.Logger)

	var (
		pubSub wmAdapter.PubSub
		err    error
	)
	switch cfg.Driver {
	case "channel":
		pubSub = channelsAdapter.NewGoChannelPubSub(wmLogger)
	case "redis":
		client := redisAdapter.NewRedisClient(cfg.RedisAddr)
		rt.closers = append(rt.closers, client.Close)
		pubSub, err = redisAdapter.NewRedisPubSub(client, cfg.ConsumerGroup, consumerName(), wmLogger)
	case "kafka":
		pubSub, err = kafkaAdapter.NewKafkaPubSub(cfg.KafkaBrokers, cfg.ConsumerGroup, wmLogger)
	default:
		return fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
	if err != nil {
		return err
	}

	bus := wmAdapter.NewWatermillEventBus[application.Event, application.BookingEvent](pubSub, rt.Logger)
	rt.closers = append(rt.closers, bus.Close)
	rt.Events = bus
	return nil
}

// Close releases resources in reverse order of acquisition.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "booking"
	}
	return host + "-" + watermill.NewShortUUID()
}
