package entitystore

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dc4eu/didengine/pkg/model"
)

// mongoDoc is the on-disk envelope for an Entity in a mongo collection:
// _id carries the Store key, and Fields carries the entity payload as a
// nested document for dotted-path querying.
type mongoDoc struct {
	ID     string `bson:"_id"`
	Fields Entity `bson:"fields"`
}

// MongoStore is a Store backed by a mongo collection, grounded on the
// teacher's internal/datastore/db.Coll/GenericColl: bson.M filters built
// from dotted field paths, options.Find/FindOne with a projection, and
// cursor.All to materialize results.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore returns a MongoStore backed by coll.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Get(ctx context.Context, key string) (Entity, bool, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapStorageErr("entityStoreGet", err)
	}
	return doc.Fields, true, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, entity Entity) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, mongoDoc{ID: key, Fields: entity}, options.Replace().SetUpsert(true))
	if err != nil {
		return wrapStorageErr("entityStoreSet", err)
	}
	return nil
}

func (s *MongoStore) Remove(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return wrapStorageErr("entityStoreRemove", err)
	}
	return nil
}

func (s *MongoStore) Query(ctx context.Context, opts QueryOptions) (*QueryResult, error) {
	filter := bson.M{}
	if opts.Condition != nil {
		filter["fields."+opts.Condition.Path] = opts.Condition.Value
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, wrapStorageErr("entityStoreQuery", err)
	}

	findOpts := options.Find()
	if len(opts.Fields) > 0 {
		projection := bson.M{"_id": 1}
		for _, f := range opts.Fields {
			projection["fields."+f] = 1
		}
		findOpts.SetProjection(projection)
	}
	if opts.Sort != nil {
		dir := 1
		if opts.Sort.Descending {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: "fields." + opts.Sort.Field, Value: dir}})
	}
	if opts.PageSize > 0 {
		findOpts.SetLimit(int64(opts.PageSize))
	}
	if opts.Cursor != "" {
		filter["_id"] = bson.M{"$gt": opts.Cursor}
	}

	cursor, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, wrapStorageErr("entityStoreQuery", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapStorageErr("entityStoreQuery", err)
	}

	entities := make([]Entity, len(docs))
	nextCursor := ""
	for i, d := range docs {
		entities[i] = d.Fields
		nextCursor = d.ID
	}
	if len(docs) < opts.PageSize || opts.PageSize == 0 {
		nextCursor = ""
	}

	return &QueryResult{Entities: entities, Cursor: nextCursor, PageSize: opts.PageSize, Total: int(total)}, nil
}

// EnsureIndexes creates the indexes this store depends on, mirroring the
// teacher's Coll.createIndex.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.M{"_id": 1}})
	if err != nil {
		return model.WrapOp("entityStoreEnsureIndexes", model.ErrStorage, err)
	}
	return nil
}
