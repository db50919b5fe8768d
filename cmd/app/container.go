package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/gruzdev-dev/codex-recipes/adapters/events"
	httpAdapter "github.com/gruzdev-dev/codex-recipes/adapters/http"
	"github.com/gruzdev-dev/codex-recipes/adapters/storage/memory"
	"github.com/gruzdev-dev/codex-recipes/adapters/storage/postgres"
	"github.com/gruzdev-dev/codex-recipes/adapters/storage/redis"
	"github.com/gruzdev-dev/codex-recipes/adapters/storage/s3"
	"github.com/gruzdev-dev/codex-recipes/adapters/storage/sqlite"
	"github.com/gruzdev-dev/codex-recipes/configs"
	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
	"github.com/gruzdev-dev/codex-recipes/core/services"
	"github.com/gruzdev-dev/codex-recipes/pkg/logger"
	grpcServer "github.com/gruzdev-dev/codex-recipes/servers/grpc"
	httpServer "github.com/gruzdev-dev/codex-recipes/servers/http"
)

// Cleanup collects release functions of opened resources, run in reverse order.
type Cleanup struct {
	funcs []func()
}

func (c *Cleanup) Add(fn func()) {
	c.funcs = append(c.funcs, fn)
}

func (c *Cleanup) Run() {
	for i := len(c.funcs) - 1; i >= 0; i-- {
		c.funcs[i]()
	}
}

type storeOut struct {
	dig.Out

	Entities ports.EntityStore
	Joins    ports.JoinStore
}

func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		configs.NewConfig,
		func() *Cleanup { return &Cleanup{} },
		logger.New,
		func(l *logrus.Logger) logrus.FieldLogger { return l },
		domain.NewCatalog,
		newStore,
		newRevoker,
		newPublisher,
		s3.NewS3Provider,
		newResolver,
		newGate,
		services.NewAuthService,
		newImageService,
		services.NewRegistry,
		httpAdapter.NewHandler,
		func(auth *services.AuthService) *httpAdapter.AuthMiddleware {
			return httpAdapter.NewAuthMiddleware(auth)
		},
		httpServer.NewServer,
		grpcServer.NewServer,
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, err
		}
	}

	return container, nil
}

// newStore opens the backend selected by STORE_DRIVER. Every backend serves
// both the entity and the join store.
func newStore(cfg *configs.Config, schema *domain.Schema, cleanup *Cleanup, log logrus.FieldLogger) (storeOut, error) {
	ctx := context.Background()

	switch cfg.Store.Driver {
	case configs.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return storeOut{}, err
		}
		cleanup.Add(pool.Close)
		store := postgres.NewStore(pool)
		log.WithField("host", cfg.DB.Host).Info("using postgres store")
		return storeOut{Entities: store, Joins: store}, nil

	case configs.StoreSQLite:
		store, err := sqlite.Open(cfg.Store.SQLitePath, schema)
		if err != nil {
			return storeOut{}, err
		}
		cleanup.Add(func() { _ = store.Close() })
		if err := store.Migrate(ctx); err != nil {
			return storeOut{}, err
		}
		log.WithField("path", cfg.Store.SQLitePath).Info("using sqlite store")
		return storeOut{Entities: store, Joins: store}, nil

	case configs.StoreMemory:
		store := memory.NewStore(schema)
		log.Info("using in-memory store")
		return storeOut{Entities: store, Joins: store}, nil
	}
	return storeOut{}, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func newRevoker(cfg *configs.Config, cleanup *Cleanup) (ports.TokenRevoker, error) {
	if cfg.Redis.Addr == "" {
		return memory.NewRevoker(), nil
	}
	client, err := redis.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	cleanup.Add(func() { _ = client.Close() })
	return redis.NewRevoker(client), nil
}

func newPublisher(cfg *configs.Config, cleanup *Cleanup, log logrus.FieldLogger) ports.EventPublisher {
	brokers := cfg.KafkaBrokers()
	if len(brokers) == 0 {
		return events.NewLogPublisher(log)
	}
	publisher := events.NewKafkaPublisher(brokers, cfg.Kafka.Topic)
	cleanup.Add(func() { _ = publisher.Close() })
	return publisher
}

func newResolver(schema *domain.Schema, store ports.EntityStore, joins ports.JoinStore) (*services.Resolver, error) {
	resolver := services.NewResolver(schema, store, joins)
	if err := services.ConfigureRelations(resolver); err != nil {
		return nil, err
	}
	return resolver, nil
}

func newGate(cfg *configs.Config, revoker ports.TokenRevoker) *services.Gate {
	return services.NewGate(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revoker)
}

func newImageService(cfg *configs.Config, schema *domain.Schema, store ports.EntityStore, provider ports.ImageProvider) (*services.ImageService, error) {
	return services.NewImageService(schema, store, provider, cfg.Upload.TTL)
}
