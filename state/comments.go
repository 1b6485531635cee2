// File: /state/comments.go
package state

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell-api/models"
	"inkwell-api/store"
	"inkwell-api/utils"
)

const commentsCollection = "comments"

// Comments is the comments cache: a mapping from post id to a newest-first
// bucket, with the same thunk phases and index-missing fallback as the posts
// slice. Safe for concurrent use.
type Comments struct {
	store store.Store

	mu      sync.Mutex
	buckets map[string][]models.Comment
	status  Status

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

func NewComments(st store.Store) *Comments {
	return &Comments{
		store:   st,
		buckets: make(map[string][]models.Comment),
		subs:    make(map[int]chan struct{}),
	}
}

// Subscribe returns a change-tick channel and its cancel function.
func (s *Comments) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Comments) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Bucket returns a copy of the cached comments for the post, newest first.
func (s *Comments) Bucket(postID string) []models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.buckets[postID]
	out := make([]models.Comment, len(bucket))
	copy(out, bucket)
	return out
}

// Status returns the status of the last comments operation.
func (s *Comments) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Fetch loads the post's comments, newest first, into the bucket. Uses the
// shared sorted-query fallback: a missing index degrades to an unsorted
// query, and the result is re-sorted client-side either way.
func (s *Comments) Fetch(ctx context.Context, postID string) ([]models.Comment, error) {
	s.begin()

	col := s.store.Collection(commentsCollection)
	wheres := []store.Where{{Field: "postId", Op: store.OpEqual, Value: postID}}

	docs, err := fetchSorted(ctx, col, wheres)
	if err != nil {
		return nil, s.fail(err)
	}

	comments := make([]models.Comment, 0, len(docs))
	for _, doc := range docs {
		comments = append(comments, models.CommentFromDocument(doc))
	}
	sortCommentsNewestFirst(comments)

	s.mu.Lock()
	s.buckets[postID] = comments
	s.status = Status{}
	s.mu.Unlock()
	s.notify()

	out := make([]models.Comment, len(comments))
	copy(out, comments)
	return out, nil
}

// CreateCommentInput is a comment create action's payload.
type CreateCommentInput struct {
	PostID     string
	Content    string
	AuthorID   string
	AuthorName string
}

// Create validates, then writes through the primary path, falling back to a
// client-generated id with client timestamps if the primary write throws.
// The primary error is surfaced when both paths fail.
func (s *Comments) Create(ctx context.Context, in CreateCommentInput) (models.Comment, error) {
	if verr := utils.ValidateComment(in.Content); verr != nil {
		return models.Comment{}, verr
	}

	s.begin()

	comment := models.Comment{
		PostID:     in.PostID,
		Content:    in.Content,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
	}

	col := s.store.Collection(commentsCollection)
	id, err := col.Create(ctx, "", comment.Document())
	if err != nil {
		fallbackID := uuid.New().String()
		doc := comment.Document()
		now := time.Now().UTC()
		doc["createdAt"] = now
		doc["updatedAt"] = now
		if _, ferr := col.Create(ctx, fallbackID, doc); ferr != nil {
			return models.Comment{}, s.fail(err)
		}
		id = fallbackID
	}

	created := comment
	created.ID = id
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	if doc, gerr := col.Get(ctx, id); gerr == nil {
		created = models.CommentFromDocument(doc)
	}

	s.mu.Lock()
	s.buckets[in.PostID] = append(s.buckets[in.PostID], created)
	sortCommentsNewestFirst(s.buckets[in.PostID])
	s.status = Status{}
	s.mu.Unlock()
	s.notify()

	return created, nil
}

// Update replaces the comment's content and picks up the store-assigned
// update time. Only the owning author may update.
func (s *Comments) Update(ctx context.Context, postID, id, userID, content string) (models.Comment, error) {
	if verr := utils.ValidateComment(content); verr != nil {
		return models.Comment{}, verr
	}

	col := s.store.Collection(commentsCollection)
	if err := s.checkOwner(ctx, col, id, userID); err != nil {
		return models.Comment{}, s.fail(err)
	}

	s.begin()

	if err := col.Update(ctx, id, store.Document{"content": content}); err != nil {
		return models.Comment{}, s.fail(err)
	}

	updated := models.Comment{ID: id, PostID: postID, Content: content, AuthorID: userID}
	if doc, err := col.Get(ctx, id); err == nil {
		updated = models.CommentFromDocument(doc)
	}

	s.mu.Lock()
	bucket := s.buckets[postID]
	for i := range bucket {
		if bucket[i].ID == id {
			bucket[i] = updated
			break
		}
	}
	s.status = Status{}
	s.mu.Unlock()
	s.notify()

	return updated, nil
}

// Delete removes the comment from the store and its bucket. Only the owning
// author may delete.
func (s *Comments) Delete(ctx context.Context, postID, id, userID string) error {
	col := s.store.Collection(commentsCollection)
	if err := s.checkOwner(ctx, col, id, userID); err != nil {
		return s.fail(err)
	}

	s.begin()

	if err := col.Delete(ctx, id); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	bucket := s.buckets[postID]
	kept := bucket[:0]
	for _, c := range bucket {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.buckets[postID] = kept
	s.status = Status{}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Drop evicts the post's bucket without touching the store. The post delete
// cascade calls this.
func (s *Comments) Drop(postID string) {
	s.mu.Lock()
	delete(s.buckets, postID)
	s.mu.Unlock()
	s.notify()
}

func (s *Comments) checkOwner(ctx context.Context, col store.Collection, id, userID string) error {
	doc, err := col.Get(ctx, id)
	if err != nil {
		return err
	}
	if models.CommentFromDocument(doc).AuthorID != userID {
		return store.NewError(store.PermissionDenied, "comment %q is not owned by user %q", id, userID)
	}
	return nil
}

func (s *Comments) begin() {
	s.mu.Lock()
	s.status = Status{Loading: true}
	s.mu.Unlock()
	s.notify()
}

func (s *Comments) fail(err error) error {
	s.mu.Lock()
	s.status = Status{Error: humanMessage(err)}
	s.mu.Unlock()
	s.notify()
	return err
}
