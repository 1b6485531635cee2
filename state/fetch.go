// File: /state/fetch.go
package state

import (
	"context"
	"sort"
	"time"

	"inkwell-api/models"
	"inkwell-api/store"
)

// fetchSorted is the two-tier query strategy shared by both slices: attempt
// the filtered query with the createdAt-descending sort clause; if the store
// reports the missing-index class, retry the same filters without the sort.
// Only FailedPrecondition triggers the retry; any other error propagates.
// Callers re-sort client-side on every path, so the store's native ordering
// is never treated as authoritative.
func fetchSorted(ctx context.Context, col store.Collection, wheres []store.Where) ([]store.Document, error) {
	q := store.Query{
		Wheres: wheres,
		Sort:   &store.Sort{Field: "createdAt", Desc: true},
	}
	docs, err := col.Find(ctx, q)
	if err == nil {
		return docs, nil
	}
	if store.CodeOf(err) != store.FailedPrecondition {
		return nil, err
	}
	return col.Find(ctx, store.Query{Wheres: wheres})
}

// sortMillis collapses a creation time to its ordering key. Records lacking a
// usable timestamp sort as instant zero, which puts them last under the
// newest-first order.
func sortMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func sortPostsNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return sortMillis(posts[i].CreatedAt) > sortMillis(posts[j].CreatedAt)
	})
}

func sortCommentsNewestFirst(comments []models.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return sortMillis(comments[i].CreatedAt) > sortMillis(comments[j].CreatedAt)
	})
}
