// Package posts composes the aggregated post views: the full detail response,
// the public feed, and per-user totals.
package posts

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/comments"
	"github.com/matnazarov/blog-api/internal/models"
	"github.com/matnazarov/blog-api/internal/reactions"
	"github.com/matnazarov/blog-api/internal/views"
)

var ErrNotFound = errors.New("post not found")

// Detail is the full post view model returned by GET /api/posts/:id.
type Detail struct {
	ID            int                   `json:"id"`
	Name          string                `json:"name"`
	Title         string                `json:"title"`
	Text          string                `json:"text"`
	UserID        int                   `json:"user_id"`
	User          *models.AuthorSummary `json:"user"`
	Created       time.Time             `json:"created"`
	Updated       time.Time             `json:"updated"`
	Images        []models.Image        `json:"images"`
	LikesCount    int64                 `json:"likes_count"`
	DislikesCount int64                 `json:"dislikes_count"`
	CommentsCount int64                 `json:"comments_count"`
	ViewsCount    int64                 `json:"views_count"`
	Comments      []comments.Node       `json:"comments"`
	Likes         reactions.Stats       `json:"likes"`
	UserLiked     *bool                 `json:"user_liked"`
	IsOwner       bool                  `json:"is_owner"`
}

// ListItem is one feed entry: the detail minus comments and the
// requester-specific fields.
type ListItem struct {
	ID            int                   `json:"id"`
	Name          string                `json:"name"`
	Title         string                `json:"title"`
	Text          string                `json:"text"`
	UserID        int                   `json:"user_id"`
	User          *models.AuthorSummary `json:"user"`
	Created       time.Time             `json:"created"`
	Updated       time.Time             `json:"updated"`
	Images        []models.Image        `json:"images"`
	LikesCount    int64                 `json:"likes_count"`
	DislikesCount int64                 `json:"dislikes_count"`
	CommentsCount int64                 `json:"comments_count"`
	ViewsCount    int64                 `json:"views_count"`
}

// UserTotals aggregates a user's footprint across their active posts.
type UserTotals struct {
	PostsCount    int64 `json:"posts_count"`
	TotalLikes    int64 `json:"total_likes"`
	TotalComments int64 `json:"total_comments"`
	TotalViews    int64 `json:"total_views"`
}

// GetDetail assembles the full detail for an active post. The view is
// recorded as a side effect; a failure there is logged and never fails the
// request. requesterID is nil for anonymous requests.
func GetDetail(db *gorm.DB, postID int, requesterID *int, clientIP, userAgent string) (*Detail, error) {
	var post models.Post
	err := db.Where("is_active = ?", true).
		Preload("User").
		Preload("Images").
		First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if clientIP != "" {
		identity := views.Identity{UserID: requesterID, IP: clientIP, UserAgent: userAgent}
		if _, err := views.Record(db, postID, identity, views.DefaultWindow); err != nil {
			// View counting is best-effort
			log.Printf("failed to record view for post %d: %v", postID, err)
		}
	}

	stats, err := reactions.PostStats(db, postID, requesterID)
	if err != nil {
		return nil, err
	}

	var commentsCount int64
	err = db.Model(&models.Comment{}).
		Where("post_id = ? AND is_active = ?", postID, true).
		Count(&commentsCount).Error
	if err != nil {
		return nil, err
	}

	viewsCount, err := views.Total(db, postID)
	if err != nil {
		return nil, err
	}

	tree, err := comments.BuildTree(db, postID)
	if err != nil {
		return nil, err
	}

	return &Detail{
		ID:            post.ID,
		Name:          post.Name,
		Title:         post.Title,
		Text:          post.Text,
		UserID:        post.UserID,
		User:          post.User.Summary(),
		Created:       post.Created,
		Updated:       post.Updated,
		Images:        imagesOrEmpty(post.Images),
		LikesCount:    stats.LikesCount,
		DislikesCount: stats.DislikesCount,
		CommentsCount: commentsCount,
		ViewsCount:    viewsCount,
		Comments:      tree,
		Likes:         stats,
		UserLiked:     stats.UserLiked,
		IsOwner:       requesterID != nil && *requesterID == post.UserID,
	}, nil
}

// List returns the public feed, newest first, with per-post counts.
func List(db *gorm.DB, skip, limit int) ([]ListItem, error) {
	return list(db, nil, skip, limit)
}

// ListByUser returns one author's active posts, newest first.
func ListByUser(db *gorm.DB, userID, skip, limit int) ([]ListItem, error) {
	return list(db, &userID, skip, limit)
}

func list(db *gorm.DB, userID *int, skip, limit int) ([]ListItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if skip < 0 {
		skip = 0
	}

	q := db.Where("is_active = ?", true)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var rows []models.Post
	err := q.Preload("User").
		Preload("Images").
		Order("created desc").
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(rows))
	for i := range rows {
		post := &rows[i]

		stats, err := reactions.PostStats(db, post.ID, nil)
		if err != nil {
			return nil, err
		}

		var commentsCount int64
		err = db.Model(&models.Comment{}).
			Where("post_id = ? AND is_active = ?", post.ID, true).
			Count(&commentsCount).Error
		if err != nil {
			return nil, err
		}

		viewsCount, err := views.Total(db, post.ID)
		if err != nil {
			return nil, err
		}

		items = append(items, ListItem{
			ID:            post.ID,
			Name:          post.Name,
			Title:         post.Title,
			Text:          post.Text,
			UserID:        post.UserID,
			User:          post.User.Summary(),
			Created:       post.Created,
			Updated:       post.Updated,
			Images:        imagesOrEmpty(post.Images),
			LikesCount:    stats.LikesCount,
			DislikesCount: stats.DislikesCount,
			CommentsCount: commentsCount,
			ViewsCount:    viewsCount,
		})
	}

	return items, nil
}

// GetUserStats sums up likes, comments and views across a user's active
// posts.
func GetUserStats(db *gorm.DB, userID int) (UserTotals, error) {
	var totals UserTotals

	err := db.Model(&models.Post{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&totals.PostsCount).Error
	if err != nil {
		return UserTotals{}, err
	}

	err = db.Model(&models.Like{}).
		Joins("JOIN posts ON posts.id = likes.post_id").
		Where("posts.user_id = ? AND likes.is_like = ?", userID, true).
		Count(&totals.TotalLikes).Error
	if err != nil {
		return UserTotals{}, err
	}

	err = db.Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.user_id = ? AND comments.is_active = ?", userID, true).
		Count(&totals.TotalComments).Error
	if err != nil {
		return UserTotals{}, err
	}

	err = db.Model(&models.PostView{}).
		Joins("JOIN posts ON posts.id = post_views.post_id").
		Where("posts.user_id = ?", userID).
		Count(&totals.TotalViews).Error
	if err != nil {
		return UserTotals{}, err
	}

	return totals, nil
}

func imagesOrEmpty(images []models.Image) []models.Image {
	if images == nil {
		return []models.Image{}
	}
	return images
}
