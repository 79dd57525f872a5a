// Package views records post views with time-windowed deduplication.
package views

import (
	"time"

	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/models"
)

// DefaultWindow is how long a repeat view from the same identity is
// suppressed.
const DefaultWindow = time.Hour

// Identity is who viewed: the user id when authenticated, otherwise the
// client IP. UserID takes precedence over IP for deduplication, so a logged-in
// user on two browsers still counts once per window.
type Identity struct {
	UserID    *int
	IP        string
	UserAgent string
}

// Record inserts a view row unless the same identity already viewed the post
// inside the window. Returns true when a new view was recorded.
func Record(db *gorm.DB, postID int, id Identity, window time.Duration) (bool, error) {
	cutoff := time.Now().UTC().Add(-window)

	q := db.Model(&models.PostView{}).Where("post_id = ? AND created >= ?", postID, cutoff)
	if id.UserID != nil {
		q = q.Where("user_id = ?", *id.UserID)
	} else {
		q = q.Where("ip_address = ?", id.IP)
	}

	var recent int64
	if err := q.Count(&recent).Error; err != nil {
		return false, err
	}
	if recent > 0 {
		return false, nil
	}

	view := models.PostView{
		PostID:    postID,
		UserID:    id.UserID,
		IPAddress: id.IP,
		UserAgent: id.UserAgent,
	}
	if err := db.Create(&view).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Total counts every accepted view insert for a post.
func Total(db *gorm.DB, postID int) (int64, error) {
	var total int64
	err := db.Model(&models.PostView{}).Where("post_id = ?", postID).Count(&total).Error
	return total, err
}

// Unique counts the distinct IP addresses ever recorded for a post. This is
// all-time, not windowed - a different metric than Total.
func Unique(db *gorm.DB, postID int) (int64, error) {
	var unique int64
	err := db.Model(&models.PostView{}).
		Where("post_id = ?", postID).
		Distinct("ip_address").
		Count(&unique).Error
	return unique, err
}
