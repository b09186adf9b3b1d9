package entitystore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/dc4eu/didengine/pkg/model"
)

// RedisStore is a Store backed by a redis key space: each entity is stored
// as a JSON blob under a prefixed key, with a SCAN-based query since redis
// itself has no structured query language.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a RedisStore over client, namespacing every key
// under prefix (e.g. "identity-document:") so multiple entity kinds can
// share one redis database.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) fullKey(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entity, bool, error) {
	raw, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapStorageErr("entityStoreGet", err)
	}

	var entity Entity
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, false, model.WrapOp("entityStoreGet", model.ErrEncoding, err)
	}
	return entity, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, entity Entity) error {
	raw, err := json.Marshal(entity)
	if err != nil {
		return model.WrapOp("entityStoreSet", model.ErrEncoding, err)
	}

	if err := s.client.Set(ctx, s.fullKey(key), raw, 0).Err(); err != nil {
		return wrapStorageErr("entityStoreSet", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return wrapStorageErr("entityStoreRemove", err)
	}
	return nil
}

// Query scans every key under this store's prefix and evaluates the
// condition/sort/pagination in process, since redis has no native query
// planner for arbitrary dotted-path conditions.
func (s *RedisStore) Query(ctx context.Context, opts QueryOptions) (*QueryResult, error) {
	var rawKeys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		rawKeys = append(rawKeys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, wrapStorageErr("entityStoreQuery", err)
	}
	sort.Strings(rawKeys)

	var matched []Entity
	var matchedKeys []string
	for _, rawKey := range rawKeys {
		raw, err := s.client.Get(ctx, rawKey).Bytes()
		if err != nil {
			return nil, wrapStorageErr("entityStoreQuery", err)
		}

		var entity Entity
		if err := json.Unmarshal(raw, &entity); err != nil {
			return nil, model.WrapOp("entityStoreQuery", model.ErrEncoding, err)
		}

		ok, err := matches(entity, opts.Condition)
		if err != nil {
			return nil, wrapStorageErr("entityStoreQuery", err)
		}
		if ok {
			matched = append(matched, entity)
			matchedKeys = append(matchedKeys, rawKey[len(s.prefix):])
		}
	}

	if err := sortEntities(matched, opts.Sort); err != nil {
		return nil, wrapStorageErr("entityStoreQuery", err)
	}

	total := len(matched)
	page, _, nextCursor := paginate(matched, matchedKeys, opts.Cursor, opts.PageSize)

	projected := make([]Entity, len(page))
	for i, e := range page {
		projected[i] = project(e, opts.Fields)
	}

	return &QueryResult{Entities: projected, Cursor: nextCursor, PageSize: opts.PageSize, Total: total}, nil
}

// Ping reports whether the underlying redis connection is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if _, err := s.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
