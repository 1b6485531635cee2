// File: /controllers/post_controller_test.go
package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell-api/state"
	"inkwell-api/store"
)

func setupRouter(st *store.MemoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	posts := state.NewPosts(st)
	comments := state.NewComments(st)
	posts.AttachComments(comments)

	postController := NewPostController(posts)
	commentController := NewCommentController(comments)

	r := gin.New()
	// Stands in for the auth middleware: a fixed signed-in user.
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "user-b")
		c.Set("user_name", "Bela")
		c.Next()
	})
	r.GET("/posts", postController.GetPosts)
	r.POST("/posts", postController.CreatePost)
	r.GET("/posts/:id", postController.GetPost)
	r.POST("/posts/:id/like", postController.ToggleLike)
	r.GET("/posts/:id/comments", commentController.GetComments)
	r.POST("/posts/:id/comments", commentController.CreateComment)
	return r
}

func seedStorePost(t *testing.T, st *store.MemoryStore, id, authorName string, tags []string) {
	t.Helper()
	_, err := st.Collection("posts").Create(context.Background(), id, store.Document{
		"title":      "A seeded post",
		"content":    "content long enough here",
		"tags":       tags,
		"likes":      int64(0),
		"authorId":   "user-a",
		"authorName": authorName,
		"createdAt":  time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestGetPostsAppliesPrefixFallback(t *testing.T) {
	st := store.NewMemoryStore()
	seedStorePost(t, st, "p-anna", "Anna", []string{"go"})
	seedStorePost(t, st, "p-bela", "Bela", []string{"cooking"})
	router := setupRouter(st)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts?author=ann", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp PostListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "p-anna", resp.Posts[0].ID)
}

func TestCreatePostRejectsInvalidPayload(t *testing.T) {
	st := store.NewMemoryStore()
	router := setupRouter(st)

	body := `{"title": "abcd", "content": "content long enough here", "tags": ["go"]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"title"`)

	// Nothing was written to the store.
	docs, err := st.Collection("posts").Find(context.Background(), store.Query{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestToggleLikeEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	seedStorePost(t, st, "p1", "Anna", []string{"go"})
	router := setupRouter(st)

	// Warm the cache so the counter is visible in the response.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/posts/p1/like", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		IsLiked bool  `json:"is_liked"`
		Likes   int64 `json:"likes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsLiked)
	assert.Equal(t, int64(1), resp.Likes)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/posts/p1/like", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsLiked)
	assert.Equal(t, int64(0), resp.Likes)
}

func TestCreateAndListComments(t *testing.T) {
	st := store.NewMemoryStore()
	seedStorePost(t, st, "p1", "Anna", []string{"go"})
	router := setupRouter(st)

	body := `{"content": "a perfectly fine comment"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/posts/p1/comments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/posts/p1/comments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a perfectly fine comment")
}
