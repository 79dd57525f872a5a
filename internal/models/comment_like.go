package models

import "time"

// CommentLike - a user's reaction on a comment. Tracked in its own table so
// comment reactions never collide with post reactions.
type CommentLike struct {
	ID        int  `gorm:"primaryKey" json:"id"`
	UserID    int  `gorm:"uniqueIndex:idx_comment_likes_user_comment" json:"user_id"`
	CommentID int  `gorm:"uniqueIndex:idx_comment_likes_user_comment;index" json:"comment_id"`
	IsLike    bool `gorm:"default:true" json:"is_like"`

	Created time.Time `gorm:"autoCreateTime" json:"created"`
	Updated time.Time `gorm:"autoUpdateTime" json:"updated"`
}
