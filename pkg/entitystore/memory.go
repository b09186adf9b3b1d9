package entitystore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store backed by a plain map. It is the
// default backend (model.EntityStore.Backend == "memory") and requires no
// external services, matching this engine's zero-dependency-to-run default.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entity
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entity)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return cloneEntity(entity), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, entity Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = cloneEntity(entity)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, opts QueryOptions) (*QueryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var matched []Entity
	var matchedKeys []string
	for _, k := range keys {
		ok, err := matches(s.entries[k], opts.Condition)
		if err != nil {
			return nil, wrapStorageErr("entityStoreQuery", err)
		}
		if ok {
			matched = append(matched, cloneEntity(s.entries[k]))
			matchedKeys = append(matchedKeys, k)
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

	return &QueryResult{
		Entities: projected,
		Cursor:   nextCursor,
		PageSize: opts.PageSize,
		Total:    total,
	}, nil
}

func cloneEntity(e Entity) Entity {
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
