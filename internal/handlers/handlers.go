package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/notify"
)

// Handler combines all handler types
type Handler struct {
	Auth    *AuthHandler
	Post    *PostHandler
	Comment *CommentHandler
	Like    *LikeHandler
	User    *UserHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, notifier notify.Notifier) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(db),
		Post:    NewPostHandler(db, notifier),
		Comment: NewCommentHandler(db, notifier),
		Like:    NewLikeHandler(db),
		User:    NewUserHandler(db),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// optionalUserID returns nil for anonymous requests.
func optionalUserID(c *gin.Context) *int {
	if id, ok := extractUserID(c); ok {
		return &id
	}
	return nil
}

func isStaff(c *gin.Context) bool {
	raw, exists := c.Get("is_staff")
	if !exists {
		return false
	}
	staff, ok := raw.(bool)
	return ok && staff
}
