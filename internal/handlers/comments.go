package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/comments"
	"github.com/matnazarov/blog-api/internal/models"
	"github.com/matnazarov/blog-api/internal/notify"
)

type CommentHandler struct {
	db       *gorm.DB
	notifier notify.Notifier
}

func NewCommentHandler(db *gorm.DB, notifier notify.Notifier) *CommentHandler {
	return &CommentHandler{db: db, notifier: notifier}
}

// GetComments returns the comment tree for a post: top-level comments
// newest-first, replies oldest-first with like counts
func (h *CommentHandler) GetComments(c *gin.Context) {
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

	tree, err := comments.BuildTree(h.db, postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, tree)
}

// CreateComment creates a comment or a reply on a post and notifies the
// post owner
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var input models.CreateCommentRequest

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

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

	var post models.Post
	if err := h.db.Preload("User").First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// A reply's parent must be a comment on the same post
	if input.ParentID != nil {
		var parentCount int64
		err := h.db.Model(&models.Comment{}).
			Where("id = ? AND post_id = ?", *input.ParentID, postID).
			Count(&parentCount).Error
		if err != nil || parentCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Parent comment not found"})
			return
		}
	}

	comment := models.Comment{
		UserID:   userID,
		PostID:   postID,
		ParentID: input.ParentID,
		Comment:  input.Comment,
		IsActive: true,
	}

	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	h.db.Preload("User").First(&comment, comment.ID)

	// Notify the post owner, but not about their own comments
	if h.notifier != nil && post.UserID != userID {
		go h.notifier.NotifyNewComment(post.UserID, post.ID, post.Title, comment.User.FullName(), comment.Comment)
	}

	c.JSON(http.StatusCreated, comment)
}

// UpdateComment updates a comment (owner only)
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	commentID := c.Param("commentId")

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own comments"})
		return
	}

	if input.Comment != nil {
		comment.Comment = *input.Comment
	}
	if input.IsActive != nil {
		comment.IsActive = *input.IsActive
	}

	if err := h.db.Save(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}
	h.db.Preload("User").First(&comment, comment.ID)

	c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment, its replies and their reactions
// (owner or staff)
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	commentID := c.Param("commentId")

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.UserID != userID && !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own comments"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Deleting a parent cascades to its replies
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("parent_id = ?", comment.ID),
		).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", comment.ID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
