package models

import "time"

// PostView - one recorded view event. Rows are append-only; near-duplicate
// inserts are suppressed by the view tracker, not by a constraint.
type PostView struct {
	ID        int    `gorm:"primaryKey" json:"id"`
	PostID    int    `gorm:"index:idx_post_views_post_ip;index:idx_post_views_post_user" json:"post_id"`
	UserID    *int   `gorm:"index:idx_post_views_post_user" json:"user_id"`
	IPAddress string `gorm:"size:45;index:idx_post_views_post_ip" json:"ip_address"` // IPv6 compatible
	UserAgent string `gorm:"size:500" json:"user_agent,omitempty"`

	Created time.Time `gorm:"autoCreateTime" json:"created"`
}
