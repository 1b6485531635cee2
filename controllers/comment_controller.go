// File: /controllers/comment_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell-api/state"
	"inkwell-api/utils"
)

type CommentController struct {
	comments *state.Comments
}

func NewCommentController(comments *state.Comments) *CommentController {
	return &CommentController{comments: comments}
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// GetComments serves a post's comments, newest first.
func (cc *CommentController) GetComments(c *gin.Context) {
	comments, err := cc.comments.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendOperationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func (cc *CommentController) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := cc.comments.Create(c.Request.Context(), state.CreateCommentInput{
		PostID:     c.Param("id"),
		Content:    req.Content,
		AuthorID:   c.GetString("user_id"),
		AuthorName: c.GetString("user_name"),
	})
	if err != nil {
		utils.SendOperationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (cc *CommentController) UpdateComment(c *gin.Context) {
	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := cc.comments.Update(
		c.Request.Context(),
		c.Param("id"),
		c.Param("commentId"),
		c.GetString("user_id"),
		req.Content,
	)
	if err != nil {
		utils.SendOperationError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (cc *CommentController) DeleteComment(c *gin.Context) {
	err := cc.comments.Delete(
		c.Request.Context(),
		c.Param("id"),
		c.Param("commentId"),
		c.GetString("user_id"),
	)
	if err != nil {
		utils.SendOperationError(c, err)
		return
	}
	utils.SendSuccess(c, "Comment deleted successfully", nil)
}
