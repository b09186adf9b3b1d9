package entitystore

import (
	"fmt"
	"sort"

	"github.com/PaesslerAG/jsonpath"

	"github.com/dc4eu/didengine/pkg/model"
)

// matches reports whether entity satisfies cond, evaluating cond.Path as a
// dotted property path (e.g. "meta.document_id") against entity. A nil
// cond matches every entity.
func matches(entity Entity, cond *Condition) (bool, error) {
	if cond == nil {
		return true, nil
	}

	value, err := jsonpath.Get("$."+cond.Path, map[string]any(entity))
	if err != nil {
		// A path that does not resolve simply does not match; that is not
		// an error condition for a query.
		return false, nil
	}

	return value == cond.Value, nil
}

// project returns a copy of entity containing only the named fields,
// or entity unchanged if fields is empty.
func project(entity Entity, fields []string) Entity {
	if len(fields) == 0 {
		return entity
	}

	out := make(Entity, len(fields))
	for _, f := range fields {
		if v, ok := entity[f]; ok {
			out[f] = v
		}
	}
	return out
}

// sortEntities orders entities in place by s, comparing values with fmt's
// default string rendering so any comparable field type can be sorted.
func sortEntities(entities []Entity, s *Sort) error {
	if s == nil {
		return nil
	}

	var sortErr error
	sort.SliceStable(entities, func(i, j int) bool {
		vi, errI := jsonpath.Get("$."+s.Field, map[string]any(entities[i]))
		vj, errJ := jsonpath.Get("$."+s.Field, map[string]any(entities[j]))
		if errI != nil || errJ != nil {
			return false
		}
		less := fmt.Sprint(vi) < fmt.Sprint(vj)
		if s.Descending {
			return !less
		}
		return less
	})
	return sortErr
}

// paginate slices entities starting after cursor (an entity key), returning
// at most pageSize entities and the cursor to resume from.
func paginate(entities []Entity, keys []string, cursor string, pageSize int) ([]Entity, []string, string) {
	start := 0
	if cursor != "" {
		for i, k := range keys {
			if k == cursor {
				start = i + 1
				break
			}
		}
	}
	if start > len(entities) {
		start = len(entities)
	}

	end := len(entities)
	if pageSize > 0 && start+pageSize < end {
		end = start + pageSize
	}

	nextCursor := ""
	if end < len(keys) {
		nextCursor = keys[end-1]
	}

	return entities[start:end], keys[start:end], nextCursor
}

func wrapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return model.WrapOp(op, model.ErrStorage, err)
}
