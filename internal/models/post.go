package models

import "time"

type Post struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	UserID   int    `gorm:"index" json:"user_id"`
	Name     string `gorm:"not null" json:"name"`
	Title    string `gorm:"not null" json:"title"`
	Text     string `json:"text"`
	IsActive bool   `gorm:"default:true;index" json:"is_active"`

	User   User    `gorm:"foreignKey:UserID" json:"user"`
	Images []Image `gorm:"foreignKey:PostID" json:"images"`

	Created time.Time `gorm:"autoCreateTime" json:"created"`
	Updated time.Time `gorm:"autoUpdateTime" json:"updated"`
}

type Image struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Image    string `gorm:"not null" json:"image"`
	PostID   int    `gorm:"index" json:"post_id"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Created time.Time `gorm:"autoCreateTime" json:"created"`
	Updated time.Time `gorm:"autoUpdateTime" json:"updated"`
}

type UpdatePostRequest struct {
	Name     *string `json:"name"`
	Title    *string `json:"title"`
	Text     *string `json:"text"`
	IsActive *bool   `json:"is_active"`
}
