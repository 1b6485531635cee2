// File: /store/store.go
package store

import (
	"context"
)

// Document is a schemaless record as the backing store returns it. Values are
// coerced into strict entity shapes at the model boundary, never used raw
// past the fetch layer.
type Document map[string]interface{}

// Op is a query predicate operator.
type Op string

const (
	// OpEqual matches documents whose field equals the value.
	OpEqual Op = "=="
	// OpContains matches documents whose array field contains the value.
	OpContains Op = "array-contains"
)

// Where is a single filter predicate.
type Where struct {
	Field string
	Op    Op
	Value interface{}
}

// Sort orders a query result by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// Query combines zero or more predicates with at most one sort key.
type Query struct {
	Wheres []Where
	Sort   *Sort
}

// Store is a collection-addressed document database.
type Store interface {
	Collection(name string) Collection
	Close(ctx context.Context) error
}

// Collection exposes document CRUD, filtered queries and atomic counter
// adjustments for a single named collection.
type Collection interface {
	// Create inserts a document. An empty id lets the store assign one; the
	// assigned id is returned either way. createdAt/updatedAt are stamped by
	// the store unless the document already carries them.
	Create(ctx context.Context, id string, doc Document) (string, error)
	Get(ctx context.Context, id string) (Document, error)
	// Update replaces only the provided fields and stamps a store-assigned
	// updatedAt.
	Update(ctx context.Context, id string, fields Document) error
	Delete(ctx context.Context, id string) error
	// Increment atomically adjusts a numeric field by delta. Not a
	// read-modify-write.
	Increment(ctx context.Context, id string, field string, delta int64) error
	Find(ctx context.Context, q Query) ([]Document, error)
}

// Clone returns a deep-enough copy of the document for cache safety. Nested
// slices are copied; nested documents are rare in this schema and copied one
// level deep.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		switch val := v.(type) {
		case []string:
			out[k] = append([]string(nil), val...)
		case []interface{}:
			out[k] = append([]interface{}(nil), val...)
		case Document:
			out[k] = val.Clone()
		default:
			out[k] = v
		}
	}
	return out
}
