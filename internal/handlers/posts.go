package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/config"
	"github.com/matnazarov/blog-api/internal/models"
	"github.com/matnazarov/blog-api/internal/notify"
	"github.com/matnazarov/blog-api/internal/posts"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type PostHandler struct {
	db       *gorm.DB
	notifier notify.Notifier
}

func NewPostHandler(db *gorm.DB, notifier notify.Notifier) *PostHandler {
	return &PostHandler{db: db, notifier: notifier}
}

// GetPosts returns the public feed with per-post counts
func (h *PostHandler) GetPosts(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, err := posts.List(h.db, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetPost returns the aggregated post detail and records the view
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	detail, err := posts.GetDetail(h.db, postID, optionalUserID(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, posts.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CreatePost creates a new post from a multipart form with optional images
// (PROTECTED - requires authentication)
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	name := c.PostForm("name")
	title := c.PostForm("title")
	text := c.PostForm("text")
	if name == "" || title == "" || text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, title and text are required"})
		return
	}

	post := models.Post{
		UserID:   userID,
		Name:     name,
		Title:    title,
		Text:     text,
		IsActive: true,
	}

	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		maxSize := config.MaxUploadSize()
		uploadDir := config.UploadDir()

		for _, file := range form.File["images"] {
			ext := strings.ToLower(filepath.Ext(file.Filename))
			if !allowedImageExtensions[ext] {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File extension %s not allowed", ext)})
				return
			}
			if file.Size > maxSize {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File size exceeds %d bytes", maxSize)})
				return
			}

			dst := filepath.Join(uploadDir, uuid.NewString()+ext)
			if err := c.SaveUploadedFile(file, dst); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving image file"})
				return
			}

			image := models.Image{Image: dst, PostID: post.ID, IsActive: true}
			if err := h.db.Create(&image).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
				return
			}
		}
	}

	// Reload with author and images
	h.db.Preload("User").Preload("Images").First(&post, post.ID)

	if h.notifier != nil {
		go h.notifier.NotifyNewPost(post.ID, post.Title, post.User.FullName())
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost updates an existing post (PROTECTED - requires ownership or staff)
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.UpdatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	// Check ownership
	if post.UserID != userID && !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only edit your own posts"})
		return
	}

	// Only the fields present in the request change
	if input.Name != nil {
		post.Name = *input.Name
	}
	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Text != nil {
		post.Text = *input.Text
	}
	if input.IsActive != nil {
		post.IsActive = *input.IsActive
	}

	if err := h.db.Save(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}
	h.db.Preload("User").Preload("Images").First(&post, post.ID)

	c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post and its dependent rows (PROTECTED - requires
// ownership or staff)
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID := c.Param("id")

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.UserID != userID && !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own posts"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Reactions on the post's comments go first
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", post.ID),
		).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// GetUserPosts returns all active posts by a specific user
func (h *PostHandler) GetUserPosts(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, err := posts.ListByUser(h.db, userID, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user posts"})
		return
	}

	c.JSON(http.StatusOK, items)
}
