package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/models"
	"github.com/matnazarov/blog-api/internal/posts"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetUser returns a user's full record (staff only)
func (h *UserHandler) GetUser(c *gin.Context) {
	if !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	userID := c.Param("id")
	var user models.User

	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUsers lists all users (staff only)
func (h *UserHandler) GetUsers(c *gin.Context) {
	if !isStaff(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
		return
	}

	var users []models.User
	if err := h.db.Order("created desc").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, users)
}

// GetUserStats returns a user's post/like/comment/view totals
func (h *UserHandler) GetUserStats(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	totals, err := posts.GetUserStats(h.db, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           user.Summary(),
		"posts_count":    totals.PostsCount,
		"total_likes":    totals.TotalLikes,
		"total_comments": totals.TotalComments,
		"total_views":    totals.TotalViews,
	})
}
