package models

import "time"

type Comment struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	UserID   int    `gorm:"index" json:"user_id"`
	PostID   int    `gorm:"index" json:"post_id"`
	ParentID *int   `gorm:"index" json:"parent_id"`
	Comment  string `gorm:"not null" json:"comment"`
	IsActive bool   `gorm:"default:true;index" json:"is_active"`

	User User `gorm:"foreignKey:UserID" json:"user"`

	Created time.Time `gorm:"autoCreateTime" json:"created"`
	Updated time.Time `gorm:"autoUpdateTime" json:"updated"`
}

type CreateCommentRequest struct {
	Comment  string `json:"comment" binding:"required"`
	ParentID *int   `json:"parent_id"`
}

type UpdateCommentRequest struct {
	Comment  *string `json:"comment"`
	IsActive *bool   `json:"is_active"`
}
