// File: /state/posts.go
package state

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell-api/models"
	"inkwell-api/store"
	"inkwell-api/utils"
)

const (
	postsCollection = "posts"
	likesCollection = "likes"
)

// PostFilter carries the two independent optional filters of a posts fetch.
type PostFilter struct {
	Author string
	Tag    string
}

func (f PostFilter) wheres() []store.Where {
	var wheres []store.Where
	if f.Author != "" {
		wheres = append(wheres, store.Where{Field: "authorName", Op: store.OpEqual, Value: f.Author})
	}
	if f.Tag != "" {
		wheres = append(wheres, store.Where{Field: "tags", Op: store.OpContains, Value: f.Tag})
	}
	return wheres
}

// matchesFallback is the client-side recovery match applied when the exact
// store filters came back empty: case-insensitive prefix on the author name,
// case-insensitive prefix on any tag, both required when both are present.
func (f PostFilter) matchesFallback(post models.Post) bool {
	if f.Author != "" {
		if !strings.HasPrefix(strings.ToLower(post.AuthorName), strings.ToLower(f.Author)) {
			return false
		}
	}
	if f.Tag != "" {
		matched := false
		for _, tag := range post.Tags {
			if strings.HasPrefix(strings.ToLower(tag), strings.ToLower(f.Tag)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// bucketDropper is the piece of the comments slice the post delete cascade
// needs.
type bucketDropper interface {
	Drop(postID string)
}

// Posts is the posts cache: an ordered list (newest createdAt first), the
// per-user liked-post sets, and the loading/error status of the last
// operation. All mutations go through typed actions; reads go through
// copying selectors. Safe for concurrent use.
type Posts struct {
	store store.Store

	mu          sync.Mutex
	posts       []models.Post
	liked       map[string]map[string]struct{}
	likedLoaded map[string]bool
	status      Status

	comments bucketDropper

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

func NewPosts(st store.Store) *Posts {
	return &Posts{
		store:       st,
		liked:       make(map[string]map[string]struct{}),
		likedLoaded: make(map[string]bool),
		subs:        make(map[int]chan struct{}),
	}
}

// AttachComments wires the comments slice in so deleting a post can drop its
// comment bucket in the same operation.
func (s *Posts) AttachComments(c bucketDropper) {
	s.comments = c
}

// Subscribe returns a channel that receives a tick after every cache change,
// plus a cancel function. Slow subscribers miss intermediate ticks, never
// block mutations.
func (s *Posts) Subscribe() (<-chan struct{}, func()) {
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

func (s *Posts) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Snapshot returns a copy of the cached posts and the current status.
func (s *Posts) Snapshot() ([]models.Post, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out, s.status
}

// Get returns the cached post by id.
func (s *Posts) Get(id string) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, post := range s.posts {
		if post.ID == id {
			return post, true
		}
	}
	return models.Post{}, false
}

// Fetch produces the filtered, newest-first posts list and replaces the
// cache with it. The pipeline has three paths: the indexed store query, the
// unsorted retry when the index is missing, and the unfiltered fetch with
// client-side prefix matching when exact filters came back empty. Every path
// ends in a client-side sort.
func (s *Posts) Fetch(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	s.begin()

	col := s.store.Collection(postsCollection)
	wheres := filter.wheres()

	docs, err := fetchSorted(ctx, col, wheres)
	if err != nil {
		return nil, s.fail(err)
	}

	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, models.PostFromDocument(doc))
	}

	if len(wheres) > 0 && len(posts) == 0 {
		// Exact filter values may not match stored values verbatim (case,
		// partial name). Fetch everything and recover with prefix matching.
		all, err := col.Find(ctx, store.Query{})
		if err != nil {
			return nil, s.fail(err)
		}
		for _, doc := range all {
			post := models.PostFromDocument(doc)
			if filter.matchesFallback(post) {
				posts = append(posts, post)
			}
		}
	}

	sortPostsNewestFirst(posts)

	s.mu.Lock()
	s.posts = posts
	s.status = Status{}
	s.mu.Unlock()
	s.notify()

	out := make([]models.Post, len(posts))
	copy(out, posts)
	return out, nil
}

// Refresh refetches the whole collection. The periodic refresh job uses this
// to re-converge counters after racing toggles.
func (s *Posts) Refresh(ctx context.Context) error {
	_, err := s.Fetch(ctx, PostFilter{})
	return err
}

// CreatePostInput is a post create action's payload.
type CreatePostInput struct {
	Title      string
	Content    string
	Tags       []string
	AuthorID   string
	AuthorName string
}

// Create validates the input, then writes through the primary path
// (store-assigned id and timestamps). If the primary write throws, it falls
// back to a client-generated id with client timestamps; if both fail, the
// primary error is the one surfaced.
func (s *Posts) Create(ctx context.Context, in CreatePostInput) (models.Post, error) {
	if verr := utils.ValidatePost(in.Title, in.Content, in.Tags); verr != nil {
		return models.Post{}, verr
	}

	s.begin()

	post := models.Post{
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Tags:       in.Tags,
		AuthorID:   in.AuthorID,
		AuthorName: in.AuthorName,
	}

	col := s.store.Collection(postsCollection)
	id, err := col.Create(ctx, "", post.Document())
	if err != nil {
		id, err = s.createFallback(ctx, col, post, err)
		if err != nil {
			return models.Post{}, s.fail(err)
		}
	}

	created := s.readBack(ctx, col, id, post)

	s.mu.Lock()
	s.posts = append(s.posts, created)
	sortPostsNewestFirst(s.posts)
	s.status = Status{}
	s.mu.Unlock()
	s.notify()

	return created, nil
}

// createFallback is the alternate write path: client-generated id,
// non-transactional client timestamps. The original error wins if this path
// fails too.
func (s *Posts) createFallback(ctx context.Context, col store.Collection, post models.Post, primaryErr error) (string, error) {
	id := uuid.New().String()
	doc := post.Document()
	now := time.Now().UTC()
	doc["createdAt"] = now
	doc["updatedAt"] = now
	if _, err := col.Create(ctx, id, doc); err != nil {
		return "", primaryErr
	}
	return id, nil
}

// readBack fetches the stored document so the cache holds store-assigned
// timestamps. A failed read-back is not a failed create; the locally known
// shape stands in until the next refresh.
func (s *Posts) readBack(ctx context.Context, col store.Collection, id string, local models.Post) models.Post {
	if doc, err := col.Get(ctx, id); err == nil {
		return models.PostFromDocument(doc)
	}
	local.ID = id
	local.CreatedAt = time.Now().UTC()
	local.UpdatedAt = local.CreatedAt
	return local
}

// UpdatePostInput carries the fields an update replaces. Nil means "leave as
// is".
type UpdatePostInput struct {
	Title   *string
	Content *string
	Tags    *[]string
}

// Update replaces only the provided fields; the store stamps the update
// time. Only the owning author may update.
func (s *Posts) Update(ctx context.Context, id, userID string, in UpdatePostInput) (models.Post, error) {
	if verr := utils.ValidatePostUpdate(in.Title, in.Content, in.Tags); verr != nil {
		return models.Post{}, verr
	}

	col := s.store.Collection(postsCollection)
	current, err := s.owned(ctx, col, id, userID)
	if err != nil {
		return models.Post{}, s.fail(err)
	}

	s.begin()

	fields := store.Document{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.Tags != nil {
		fields["tags"] = append([]string(nil), (*in.Tags)...)
	}

	if err := col.Update(ctx, id, fields); err != nil {
		return models.Post{}, s.fail(err)
	}

	updated := s.readBack(ctx, col, id, current)

	s.mu.Lock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i] = updated
			break
		}
	}
	s.status = Status{}
	s.mu.Unlock()
	s.notify()

	return updated, nil
}

// Delete removes the post from the store and from every client-side
// structure that references it by id: the posts cache, the liked sets, and
// the post's comment bucket. Only the owning author may delete.
func (s *Posts) Delete(ctx context.Context, id, userID string) error {
	col := s.store.Collection(postsCollection)
	if _, err := s.owned(ctx, col, id, userID); err != nil {
		return s.fail(err)
	}

	s.begin()

	if err := col.Delete(ctx, id); err != nil {
		return s.fail(err)
	}

	// Best-effort sweep of the post's like markers; the caches are the
	// authoritative cleanup here.
	s.sweepLikeMarkers(ctx, id)

	s.mu.Lock()
	kept := s.posts[:0]
	for _, post := range s.posts {
		if post.ID != id {
			kept = append(kept, post)
		}
	}
	s.posts = kept
	for _, set := range s.liked {
		delete(set, id)
	}
	s.status = Status{}
	s.mu.Unlock()

	if s.comments != nil {
		s.comments.Drop(id)
	}
	s.notify()
	return nil
}

func (s *Posts) sweepLikeMarkers(ctx context.Context, postID string) {
	likes := s.store.Collection(likesCollection)
	docs, err := likes.Find(ctx, store.Query{Wheres: []store.Where{
		{Field: "postId", Op: store.OpEqual, Value: postID},
	}})
	if err != nil {
		return
	}
	for _, doc := range docs {
		marker := models.LikeFromDocument(doc)
		_ = likes.Delete(ctx, models.LikeID(marker.PostID, marker.UserID))
	}
}

// owned loads the post (cache first) and checks authorship.
func (s *Posts) owned(ctx context.Context, col store.Collection, id, userID string) (models.Post, error) {
	post, ok := s.Get(id)
	if !ok {
		doc, err := col.Get(ctx, id)
		if err != nil {
			return models.Post{}, err
		}
		post = models.PostFromDocument(doc)
	}
	if post.AuthorID != userID {
		return models.Post{}, store.NewError(store.PermissionDenied, "post %q is not owned by user %q", id, userID)
	}
	return post, nil
}

// IsLiked reports whether the user has liked the post, loading the user's
// liked set from the marker collection on first use.
func (s *Posts) IsLiked(ctx context.Context, userID, postID string) (bool, error) {
	if err := s.ensureLiked(ctx, userID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, liked := s.liked[userID][postID]
	return liked, nil
}

// LikedPostIDs returns the ids of the posts the user has liked.
func (s *Posts) LikedPostIDs(ctx context.Context, userID string) ([]string, error) {
	if err := s.ensureLiked(ctx, userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.liked[userID]))
	for id := range s.liked[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Posts) ensureLiked(ctx context.Context, userID string) error {
	s.mu.Lock()
	loaded := s.likedLoaded[userID]
	s.mu.Unlock()
	if loaded {
		return nil
	}

	docs, err := s.store.Collection(likesCollection).Find(ctx, store.Query{
		Wheres: []store.Where{{Field: "userId", Op: store.OpEqual, Value: userID}},
	})
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	set := s.liked[userID]
	if set == nil {
		set = make(map[string]struct{})
		s.liked[userID] = set
	}
	for _, doc := range docs {
		set[models.LikeFromDocument(doc).PostID] = struct{}{}
	}
	s.likedLoaded[userID] = true
	s.mu.Unlock()
	return nil
}

// ToggleLike flips the user's like on the post. The local transition (counter
// floored at zero, liked-set membership) is applied before any store call;
// the marker write and the atomic counter adjustment follow, in that order.
// On any remote failure the precomputed inverse restores the exact prior
// counter and membership. Reports the resulting liked state.
//
// The two store writes are not one transaction, and nothing serializes rapid
// re-toggles of the same post; the periodic full refresh re-converges the
// cache with server truth.
func (s *Posts) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	if err := s.ensureLiked(ctx, userID); err != nil {
		return false, err
	}

	s.mu.Lock()
	set := s.liked[userID]
	if set == nil {
		set = make(map[string]struct{})
		s.liked[userID] = set
	}
	_, wasLiked := set[postID]

	// Forward transition, with enough captured to invert it exactly.
	var priorLikes int64
	var inCache bool
	for i := range s.posts {
		if s.posts[i].ID == postID {
			inCache = true
			priorLikes = s.posts[i].Likes
			if wasLiked {
				s.posts[i].Likes--
			} else {
				s.posts[i].Likes++
			}
			if s.posts[i].Likes < 0 {
				s.posts[i].Likes = 0
			}
			break
		}
	}
	if wasLiked {
		delete(set, postID)
	} else {
		set[postID] = struct{}{}
	}
	s.mu.Unlock()
	s.notify()

	likes := s.store.Collection(likesCollection)
	posts := s.store.Collection(postsCollection)
	markerID := models.LikeID(postID, userID)

	var rerr error
	if wasLiked {
		rerr = likes.Delete(ctx, markerID)
		if rerr == nil {
			rerr = posts.Increment(ctx, postID, "likes", -1)
		}
	} else {
		marker := models.Like{PostID: postID, UserID: userID}
		_, rerr = likes.Create(ctx, markerID, marker.Document())
		if rerr == nil {
			rerr = posts.Increment(ctx, postID, "likes", 1)
		}
	}

	if rerr != nil {
		s.mu.Lock()
		if inCache {
			for i := range s.posts {
				if s.posts[i].ID == postID {
					s.posts[i].Likes = priorLikes
					break
				}
			}
		}
		if wasLiked {
			set[postID] = struct{}{}
		} else {
			delete(set, postID)
		}
		s.status = Status{Error: humanMessage(rerr)}
		s.mu.Unlock()
		s.notify()
		return wasLiked, rerr
	}

	return !wasLiked, nil
}

func (s *Posts) begin() {
	s.mu.Lock()
	s.status = Status{Loading: true}
	s.mu.Unlock()
	s.notify()
}

func (s *Posts) fail(err error) error {
	s.mu.Lock()
	s.status = Status{Error: humanMessage(err)}
	s.mu.Unlock()
	s.notify()
	return err
}
