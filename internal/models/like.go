package models

import "time"

// Like - a user's reaction on a post. At most one row per (user, post);
// the unique index is what makes concurrent toggles safe.
type Like struct {
	ID     int  `gorm:"primaryKey" json:"id"`
	UserID int  `gorm:"uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID int  `gorm:"uniqueIndex:idx_likes_user_post;index" json:"post_id"`
	IsLike bool `gorm:"default:true" json:"is_like"`

	Created time.Time `gorm:"autoCreateTime" json:"created"`
	Updated time.Time `gorm:"autoUpdateTime" json:"updated"`
}
