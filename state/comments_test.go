// File: /state/comments_test.go
package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell-api/store"
	"inkwell-api/utils"
)

func seedComment(t *testing.T, st *store.MemoryStore, id, postID, authorID, content string, createdAt time.Time) {
	t.Helper()
	_, err := st.Collection("comments").Create(context.Background(), id, store.Document{
		"postId":     postID,
		"content":    content,
		"authorId":   authorID,
		"authorName": "Someone",
		"createdAt":  createdAt,
		"updatedAt":  createdAt,
	})
	require.NoError(t, err)
}

func TestCommentsFetchNewestFirst(t *testing.T) {
	st := store.NewMemoryStore()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	seedComment(t, st, "c-old", "p1", "u1", "the oldest comment", base)
	seedComment(t, st, "c-new", "p1", "u1", "the newest comment", base.Add(time.Hour))
	seedComment(t, st, "c-other", "p2", "u1", "belongs elsewhere", base)

	comments := NewComments(st)
	got, err := comments.Fetch(context.Background(), "p1")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "c-new", got[0].ID)
	assert.Equal(t, "c-old", got[1].ID)
}

func TestCommentsFetchIndexFallback(t *testing.T) {
	st := store.NewMemoryStore()
	st.DropSortIndex("comments", "createdAt")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	seedComment(t, st, "c1", "p1", "u1", "first comment here", base)
	seedComment(t, st, "c2", "p1", "u1", "second comment here", base.Add(time.Minute))

	comments := NewComments(st)
	got, err := comments.Fetch(context.Background(), "p1")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "c2", got[0].ID)
}

func TestCommentCreateValidation(t *testing.T) {
	st := store.NewMemoryStore()
	comments := NewComments(st)

	_, err := comments.Create(context.Background(), CreateCommentInput{
		PostID:   "p1",
		Content:  "hi",
		AuthorID: "u1",
	})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "content", verr.Fields[0].Field)

	docs, err := st.Collection("comments").Find(context.Background(), store.Query{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestCommentUpdateAndDeleteOwnership(t *testing.T) {
	st := store.NewMemoryStore()
	seedComment(t, st, "c1", "p1", "u1", "original comment text", time.Now().UTC())

	comments := NewComments(st)
	ctx := context.Background()
	_, err := comments.Fetch(ctx, "p1")
	require.NoError(t, err)

	_, err = comments.Update(ctx, "p1", "c1", "intruder", "replacement comment text")
	require.Error(t, err)
	assert.Equal(t, store.PermissionDenied, store.CodeOf(err))

	updated, err := comments.Update(ctx, "p1", "c1", "u1", "replacement comment text")
	require.NoError(t, err)
	assert.Equal(t, "replacement comment text", updated.Content)

	err = comments.Delete(ctx, "p1", "c1", "intruder")
	require.Error(t, err)
	assert.Equal(t, store.PermissionDenied, store.CodeOf(err))

	require.NoError(t, comments.Delete(ctx, "p1", "c1", "u1"))
	assert.Empty(t, comments.Bucket("p1"))
}

func TestCommentsDropEvictsBucketOnly(t *testing.T) {
	st := store.NewMemoryStore()
	seedComment(t, st, "c1", "p1", "u1", "a comment that stays stored", time.Now().UTC())

	comments := NewComments(st)
	_, err := comments.Fetch(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, comments.Bucket("p1"), 1)

	comments.Drop("p1")
	assert.Empty(t, comments.Bucket("p1"))

	// Drop is cache eviction, not deletion.
	docs, err := st.Collection("comments").Find(context.Background(), store.Query{})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
