// File: /controllers/post_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell-api/models"
	"inkwell-api/state"
	"inkwell-api/utils"
)

// PostController is a thin consumer of the posts slice: it binds requests,
// calls the slice's typed actions, and renders the results. All caching,
// fallback and optimistic-update behavior lives in the slice.
type PostController struct {
	posts *state.Posts
}

func NewPostController(posts *state.Posts) *PostController {
	return &PostController{posts: posts}
}

type CreatePostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

type UpdatePostRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

// PostView decorates a post with the requesting user's liked state.
type PostView struct {
	models.Post
	IsLiked bool `json:"is_liked"`
}

type PostListResponse struct {
	Posts   []PostView `json:"posts"`
	Loading bool       `json:"loading"`
	Error   string     `json:"error,omitempty"`
}

// GetPosts serves the filtered, newest-first posts list. Query params:
// author (exact, with prefix fallback), tag (membership, with prefix
// fallback).
func (pc *PostController) GetPosts(c *gin.Context) {
	userID := c.GetString("user_id")
	filter := state.PostFilter{
		Author: c.Query("author"),
		Tag:    c.Query("tag"),
	}

	posts, err := pc.posts.Fetch(c.Request.Context(), filter)
	if err != nil {
		utils.SendOperationError(c, err)
		return
	}

	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		liked, _ := pc.posts.IsLiked(c.Request.Context(), userID, post.ID)
		views = append(views, PostView{Post: post, IsLiked: liked})
	}

	_, status := pc.posts.Snapshot()
	c.JSON(http.StatusOK, PostListResponse{
		Posts:   views,
		Loading: status.Loading,
		Error:   status.Error,
	})
}

func (pc *PostController) GetPost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	post, ok := pc.posts.Get(postID)
	if !ok {
		utils.SendError(c, http.StatusNotFound, "Post not found")
		return
	}

	liked, _ := pc.posts.IsLiked(c.Request.Context(), userID, postID)
	c.JSON(http.StatusOK, PostView{Post: post, IsLiked: liked})
}

func (pc *PostController) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := pc.posts.Create(c.Request.Context(), state.CreatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
		AuthorID:   c.GetString("user_id"),
		AuthorName: c.GetString("user_name"),
	})
	if err != nil {
		utils.SendOperationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (pc *PostController) UpdatePost(c *gin.Context) {
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := pc.posts.Update(c.Request.Context(), c.Param("id"), c.GetString("user_id"), state.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		utils.SendOperationError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (pc *PostController) DeletePost(c *gin.Context) {
	if err := pc.posts.Delete(c.Request.Context(), c.Param("id"), c.GetString("user_id")); err != nil {
		utils.SendOperationError(c, err)
		return
	}
	utils.SendSuccess(c, "Post deleted successfully", nil)
}

// ToggleLike flips the caller's like on the post and reports the resulting
// state.
func (pc *PostController) ToggleLike(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	liked, err := pc.posts.ToggleLike(c.Request.Context(), postID, userID)
	if err != nil {
		utils.SendOperationError(c, err)
		return
	}

	post, _ := pc.posts.Get(postID)
	c.JSON(http.StatusOK, gin.H{
		"is_liked": liked,
		"likes":    post.Likes,
	})
}

// GetLikedPosts lists the ids of the posts the caller has liked.
func (pc *PostController) GetLikedPosts(c *gin.Context) {
	ids, err := pc.posts.LikedPostIDs(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.SendOperationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post_ids": ids})
}
