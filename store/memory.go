// File: /store/memory.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for development and tests. It keeps
// the same contract as the MongoDB backend, including the FailedPrecondition
// behavior for sorted queries, which is simulated by dropping a collection's
// sort index.
type MemoryStore struct {
	mu         sync.RWMutex
	data       map[string]map[string]Document
	noIndex    map[string]map[string]bool // collection -> sort field with no index
	failures   map[string]error           // collection+"/"+op -> one-shot injected error
	failAlways map[string]error           // collection+"/"+op -> persistent injected error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]map[string]Document),
		noIndex:    make(map[string]map[string]bool),
		failures:   make(map[string]error),
		failAlways: make(map[string]error),
	}
}

// DropSortIndex makes sorted queries on the given field fail with
// FailedPrecondition, mimicking a store that lacks the index for filter+sort.
func (s *MemoryStore) DropSortIndex(collection, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.noIndex[collection] == nil {
		s.noIndex[collection] = make(map[string]bool)
	}
	s.noIndex[collection][field] = true
}

// RestoreSortIndex undoes DropSortIndex.
func (s *MemoryStore) RestoreSortIndex(collection, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.noIndex[collection] != nil {
		delete(s.noIndex[collection], field)
	}
}

// FailNext injects an error returned by the next call of op on the
// collection. Ops: "create", "get", "update", "delete", "increment", "find".
func (s *MemoryStore) FailNext(collection, op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[collection+"/"+op] = err
}

// FailAlways injects an error returned by every call of op on the collection
// until cleared with a nil error.
func (s *MemoryStore) FailAlways(collection, op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failAlways, collection+"/"+op)
		return
	}
	s.failAlways[collection+"/"+op] = err
}

func (s *MemoryStore) Collection(name string) Collection {
	return &memCollection{store: s, name: name}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// takeFailure must be called with the write lock held.
func (s *MemoryStore) takeFailure(collection, op string) error {
	key := collection + "/" + op
	if err, ok := s.failAlways[key]; ok {
		return err
	}
	if err, ok := s.failures[key]; ok {
		delete(s.failures, key)
		return err
	}
	return nil
}

type memCollection struct {
	store *MemoryStore
	name  string
}

func (c *memCollection) Create(ctx context.Context, id string, doc Document) (string, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if err := c.store.takeFailure(c.name, "create"); err != nil {
		return "", err
	}

	if id == "" {
		id = uuid.New().String()
	}
	if c.store.data[c.name] == nil {
		c.store.data[c.name] = make(map[string]Document)
	}
	if _, exists := c.store.data[c.name][id]; exists {
		return "", NewError(AlreadyExists, "document %q already exists", id)
	}

	stored := doc.Clone()
	if stored == nil {
		stored = Document{}
	}
	now := time.Now().UTC()
	if _, ok := stored["createdAt"]; !ok {
		stored["createdAt"] = now
	}
	if _, ok := stored["updatedAt"]; !ok {
		stored["updatedAt"] = now
	}
	stored["_id"] = id
	c.store.data[c.name][id] = stored
	return id, nil
}

func (c *memCollection) Get(ctx context.Context, id string) (Document, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if err := c.store.takeFailure(c.name, "get"); err != nil {
		return nil, err
	}

	doc, ok := c.store.data[c.name][id]
	if !ok {
		return nil, NewError(NotFound, "document %q not found", id)
	}
	return doc.Clone(), nil
}

func (c *memCollection) Update(ctx context.Context, id string, fields Document) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if err := c.store.takeFailure(c.name, "update"); err != nil {
		return err
	}

	doc, ok := c.store.data[c.name][id]
	if !ok {
		return NewError(NotFound, "document %q not found", id)
	}
	for k, v := range fields.Clone() {
		doc[k] = v
	}
	doc["updatedAt"] = time.Now().UTC()
	return nil
}

func (c *memCollection) Delete(ctx context.Context, id string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if err := c.store.takeFailure(c.name, "delete"); err != nil {
		return err
	}

	if _, ok := c.store.data[c.name][id]; !ok {
		return NewError(NotFound, "document %q not found", id)
	}
	delete(c.store.data[c.name], id)
	return nil
}

func (c *memCollection) Increment(ctx context.Context, id string, field string, delta int64) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if err := c.store.takeFailure(c.name, "increment"); err != nil {
		return err
	}

	doc, ok := c.store.data[c.name][id]
	if !ok {
		return NewError(NotFound, "document %q not found", id)
	}
	doc[field] = numericValue(doc[field]) + delta
	doc["updatedAt"] = time.Now().UTC()
	return nil
}

func (c *memCollection) Find(ctx context.Context, q Query) ([]Document, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	if err := c.store.takeFailure(c.name, "find"); err != nil {
		return nil, err
	}

	if q.Sort != nil && c.store.noIndex[c.name][q.Sort.Field] {
		return nil, NewError(FailedPrecondition, "query requires an index on %q", q.Sort.Field)
	}

	var docs []Document
	for _, doc := range c.store.data[c.name] {
		if matches(doc, q.Wheres) {
			docs = append(docs, doc.Clone())
		}
	}

	if q.Sort != nil {
		field, desc := q.Sort.Field, q.Sort.Desc
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := sortValue(docs[i][field]), sortValue(docs[j][field])
			if desc {
				return a > b
			}
			return a < b
		})
	}
	return docs, nil
}

func matches(doc Document, wheres []Where) bool {
	for _, w := range wheres {
		switch w.Op {
		case OpEqual:
			if doc[w.Field] != w.Value {
				return false
			}
		case OpContains:
			if !contains(doc[w.Field], w.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func contains(field, value interface{}) bool {
	switch arr := field.(type) {
	case []string:
		for _, v := range arr {
			if v == value {
				return true
			}
		}
	case []interface{}:
		for _, v := range arr {
			if v == value {
				return true
			}
		}
	}
	return false
}

func numericValue(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// sortValue collapses a field to epoch milliseconds for ordering. Anything
// unusable sorts as instant zero.
func sortValue(v interface{}) int64 {
	switch t := v.(type) {
	case time.Time:
		return t.UnixMilli()
	case interface{ Time() time.Time }:
		return t.Time().UnixMilli()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed.UnixMilli()
		}
	case int64:
		return t
	case float64:
		return int64(t)
	}
	return 0
}
