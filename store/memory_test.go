// File: /store/memory_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCreateAndGet(t *testing.T) {
	st := NewMemoryStore()
	col := st.Collection("posts")
	ctx := context.Background()

	id, err := col.Create(ctx, "", Document{"title": "First"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := col.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "First", doc["title"])
	// Store-assigned write timestamps.
	assert.IsType(t, time.Time{}, doc["createdAt"])
	assert.IsType(t, time.Time{}, doc["updatedAt"])

	_, err = col.Create(ctx, id, Document{"title": "Duplicate"})
	assert.Equal(t, AlreadyExists, CodeOf(err))

	_, err = col.Get(ctx, "missing")
	assert.Equal(t, NotFound, CodeOf(err))
}

func TestMemoryUpdateReplacesOnlyProvidedFields(t *testing.T) {
	st := NewMemoryStore()
	col := st.Collection("posts")
	ctx := context.Background()

	id, err := col.Create(ctx, "p1", Document{"title": "Old", "content": "Body"})
	require.NoError(t, err)

	require.NoError(t, col.Update(ctx, id, Document{"title": "New"}))

	doc, err := col.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New", doc["title"])
	assert.Equal(t, "Body", doc["content"])

	assert.Equal(t, NotFound, CodeOf(col.Update(ctx, "missing", Document{"title": "x"})))
}

func TestMemoryIncrementIsCumulative(t *testing.T) {
	st := NewMemoryStore()
	col := st.Collection("posts")
	ctx := context.Background()

	_, err := col.Create(ctx, "p1", Document{"likes": int64(0)})
	require.NoError(t, err)

	require.NoError(t, col.Increment(ctx, "p1", "likes", 1))
	require.NoError(t, col.Increment(ctx, "p1", "likes", 1))
	require.NoError(t, col.Increment(ctx, "p1", "likes", -1))

	doc, err := col.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc["likes"])
}

func TestMemoryFindFilters(t *testing.T) {
	st := NewMemoryStore()
	col := st.Collection("posts")
	ctx := context.Background()

	_, err := col.Create(ctx, "p1", Document{"authorName": "Anna", "tags": []string{"go", "blog"}})
	require.NoError(t, err)
	_, err = col.Create(ctx, "p2", Document{"authorName": "Bela", "tags": []string{"cooking"}})
	require.NoError(t, err)

	docs, err := col.Find(ctx, Query{Wheres: []Where{{Field: "authorName", Op: OpEqual, Value: "Anna"}}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "p1", docs[0]["_id"])

	docs, err = col.Find(ctx, Query{Wheres: []Where{{Field: "tags", Op: OpContains, Value: "cooking"}}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "p2", docs[0]["_id"])

	docs, err = col.Find(ctx, Query{Wheres: []Where{
		{Field: "authorName", Op: OpEqual, Value: "Anna"},
		{Field: "tags", Op: OpContains, Value: "cooking"},
	}})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryFindSort(t *testing.T) {
	st := NewMemoryStore()
	col := st.Collection("posts")
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := col.Create(ctx, "p1", Document{"createdAt": base})
	require.NoError(t, err)
	_, err = col.Create(ctx, "p2", Document{"createdAt": base.Add(time.Hour)})
	require.NoError(t, err)

	docs, err := col.Find(ctx, Query{Sort: &Sort{Field: "createdAt", Desc: true}})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "p2", docs[0]["_id"])
}

func TestMemoryDroppedSortIndexFailsSortedQueries(t *testing.T) {
	st := NewMemoryStore()
	st.DropSortIndex("posts", "createdAt")
	col := st.Collection("posts")
	ctx := context.Background()

	_, err := col.Create(ctx, "p1", Document{"title": "x"})
	require.NoError(t, err)

	_, err = col.Find(ctx, Query{Sort: &Sort{Field: "createdAt", Desc: true}})
	assert.Equal(t, FailedPrecondition, CodeOf(err))

	// Unsorted queries are unaffected.
	docs, err := col.Find(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	st.RestoreSortIndex("posts", "createdAt")
	_, err = col.Find(ctx, Query{Sort: &Sort{Field: "createdAt", Desc: true}})
	assert.NoError(t, err)
}

func TestMemoryFailNextIsOneShot(t *testing.T) {
	st := NewMemoryStore()
	col := st.Collection("posts")
	ctx := context.Background()

	injected := NewError(Unavailable, "injected outage")
	st.FailNext("posts", "create", injected)

	_, err := col.Create(ctx, "p1", Document{})
	assert.Equal(t, Unavailable, CodeOf(err))

	_, err = col.Create(ctx, "p1", Document{})
	assert.NoError(t, err)
}
