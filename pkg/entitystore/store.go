// Package entitystore implements the Entity Store collaborator (§6): a
// generic, key-addressed record store with dotted-path equality querying,
// sorting, field projection, and cursor-based pagination. The Identity
// Engine keeps one store per entity kind — document envelopes, identity
// profiles — all speaking this same interface.
//
// The interface is backend-agnostic, with three implementations: mongo
// (mongo.go, wrapping a *mongo.Collection behind bson.M filters built from
// dotted field paths such as "meta.document_id"), an in-memory default
// (memory.go, required so the engine runs with zero external services),
// and a redis variant (redis.go, storing each entity as a JSON blob under
// a prefixed key).
package entitystore

import (
	"context"
)

// Entity is a generic, JSON-shaped record. Every field is addressable by a
// dotted path for querying (e.g. "meta.document_id").
type Entity map[string]any

// Condition is an equality test on a dotted property path, the one
// predicate form §6 specifies ("Conditions support equality on dotted
// property paths").
type Condition struct {
	Path  string
	Value any
}

// Sort orders query results by a single dotted field path.
type Sort struct {
	Field      string
	Descending bool
}

// QueryOptions controls a Store.Query call. All fields are optional; a zero
// value requests every entity, unsorted, with every field, unpaginated.
type QueryOptions struct {
	Condition *Condition
	Sort      *Sort
	Fields    []string
	Cursor    string
	PageSize  int
}

// QueryResult is the page of entities returned by Store.Query, plus the
// cursor to resume from and the total matching count across all pages.
type QueryResult struct {
	Entities []Entity
	Cursor   string
	PageSize int
	Total    int
}

// Store is the Entity Store collaborator: get/set/remove by key, plus a
// condition/sort/projection/pagination query.
type Store interface {
	// Get fetches the entity stored under key. The second return value is
	// false if no entity is stored under key.
	Get(ctx context.Context, key string) (Entity, bool, error)

	// Set stores entity under key, replacing any existing value.
	Set(ctx context.Context, key string, entity Entity) error

	// Remove deletes the entity stored under key. It is not an error to
	// remove a key that does not exist.
	Remove(ctx context.Context, key string) error

	// Query returns entities matching opts.Condition (all entities if nil),
	// ordered by opts.Sort, projected to opts.Fields, and paginated by
	// opts.Cursor/opts.PageSize.
	Query(ctx context.Context, opts QueryOptions) (*QueryResult, error)
}
