package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dc4eu/didengine/pkg/entitystore"
	"github.com/dc4eu/didengine/pkg/model"
)

// newEntityStore selects the Entity Store backend named by cfg.Identity.Store.Backend,
// defaulting to the in-memory store the engine needs no external services to run.
func newEntityStore(ctx context.Context, cfg *model.Cfg, prefix string) (entitystore.Store, error) {
	switch cfg.Identity.Store.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Common.KeyValue.Addr,
			DB:       cfg.Common.KeyValue.DB,
			Password: cfg.Common.KeyValue.Password,
		})
		return entitystore.NewRedisStore(client, prefix), nil

	case "mongo":
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.Common.Mongo.URI))
		if err != nil {
			return nil, err
		}
		coll := client.Database("didengine").Collection(prefix)
		return entitystore.NewMongoStore(coll), nil

	case "", "memory":
		return entitystore.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown entity store backend %q", cfg.Identity.Store.Backend)
	}
}
