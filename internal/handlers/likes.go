package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/models"
	"github.com/matnazarov/blog-api/internal/reactions"
)

type LikeHandler struct {
	db *gorm.DB
}

func NewLikeHandler(db *gorm.DB) *LikeHandler {
	return &LikeHandler{db: db}
}

type toggleInput struct {
	IsLike *bool `json:"is_like"`
}

// wantsLike defaults to a like when the body omits is_like.
func (in toggleInput) wantsLike() bool {
	if in.IsLike == nil {
		return true
	}
	return *in.IsLike
}

// TogglePostLike toggles the requester's reaction on a post: same reaction
// removes it, the opposite one flips it (PROTECTED)
func (h *LikeHandler) TogglePostLike(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input toggleInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	liked, likes, dislikes, err := reactions.Toggle(h.db, userID, postID, input.wantsLike())
	if err != nil {
		switch {
		case errors.Is(err, reactions.ErrPostNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		case errors.Is(err, reactions.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Reaction conflict, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":          liked,
		"likes_count":    likes,
		"dislikes_count": dislikes,
	})
}

// GetPostLikes returns like/dislike counts for a post plus the requester's
// own reaction when authenticated
func (h *LikeHandler) GetPostLikes(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var count int64
	if err := h.db.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	stats, err := reactions.PostStats(h.db, postID, optionalUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch likes"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ToggleCommentLike toggles the requester's reaction on a comment (PROTECTED)
func (h *LikeHandler) ToggleCommentLike(c *gin.Context) {
	commentID, err := strconv.Atoi(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input toggleInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	liked, likes, dislikes, err := reactions.ToggleComment(h.db, userID, commentID, input.wantsLike())
	if err != nil {
		switch {
		case errors.Is(err, reactions.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		case errors.Is(err, reactions.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Reaction conflict, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":          liked,
		"likes_count":    likes,
		"dislikes_count": dislikes,
	})
}

// GetCommentLikes returns like/dislike counts for a comment
func (h *LikeHandler) GetCommentLikes(c *gin.Context) {
	commentID, err := strconv.Atoi(c.Param("commentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var count int64
	if err := h.db.Model(&models.Comment{}).Where("id = ?", commentID).Count(&count).Error; err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	stats, err := reactions.CommentStats(h.db, commentID, optionalUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch likes"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
