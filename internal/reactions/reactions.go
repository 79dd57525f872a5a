// Package reactions implements the like/dislike toggle for posts and
// comments. A user has at most one reaction per target; repeating the same
// reaction removes it, the opposite reaction flips it in place.
package reactions

import (
	"errors"

	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/models"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	// ErrConflict is returned when a toggle loses the uniqueness race twice
	// in a row. Callers may surface it as a transient error.
	ErrConflict = errors.New("reaction conflict")
)

// Stats is the read-only aggregate for a target. UserLiked is nil both for
// anonymous requesters and for users with no reaction; callers that need to
// tell those apart must track identity separately.
type Stats struct {
	LikesCount    int64 `json:"likes_count"`
	DislikesCount int64 `json:"dislikes_count"`
	UserLiked     *bool `json:"user_liked"`
}

// Toggle applies the three-state machine for (userID, postID):
// no reaction + toggle creates one, same polarity removes it, opposite
// polarity flips it. Returns whether a reaction is active afterwards plus the
// recomputed counts.
func Toggle(db *gorm.DB, userID, postID int, wantsLike bool) (bool, int64, int64, error) {
	var count int64
	if err := db.Model(&models.Post{}).Where("id = ? AND is_active = ?", postID, true).Count(&count).Error; err != nil {
		return false, 0, 0, err
	}
	if count == 0 {
		return false, 0, 0, ErrPostNotFound
	}

	active, err := togglePost(db, userID, postID, wantsLike)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the create race: someone else inserted the row first. The
		// unique index is the source of truth, re-derive and retry once.
		active, err = togglePost(db, userID, postID, wantsLike)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = ErrConflict
		}
	}
	if err != nil {
		return false, 0, 0, err
	}

	likes, dislikes, err := postCounts(db, postID)
	if err != nil {
		return false, 0, 0, err
	}
	return active, likes, dislikes, nil
}

func togglePost(db *gorm.DB, userID, postID int, wantsLike bool) (bool, error) {
	var existing models.Like
	err := db.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error

	switch {
	case err == nil:
		if existing.IsLike == wantsLike {
			// Same reaction again - remove it
			return false, db.Delete(&existing).Error
		}
		// Opposite reaction - flip in place
		existing.IsLike = wantsLike
		return true, db.Save(&existing).Error

	case errors.Is(err, gorm.ErrRecordNotFound):
		like := models.Like{UserID: userID, PostID: postID, IsLike: wantsLike}
		if err := db.Create(&like).Error; err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, err
	}
}

func postCounts(db *gorm.DB, postID int) (int64, int64, error) {
	var likes, dislikes int64
	if err := db.Model(&models.Like{}).Where("post_id = ? AND is_like = ?", postID, true).Count(&likes).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&models.Like{}).Where("post_id = ? AND is_like = ?", postID, false).Count(&dislikes).Error; err != nil {
		return 0, 0, err
	}
	return likes, dislikes, nil
}

// PostStats returns like/dislike counts for a post and, when userID is
// non-nil, that user's current reaction. Never mutates.
func PostStats(db *gorm.DB, postID int, userID *int) (Stats, error) {
	likes, dislikes, err := postCounts(db, postID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{LikesCount: likes, DislikesCount: dislikes}
	if userID != nil {
		var existing models.Like
		err := db.Where("user_id = ? AND post_id = ?", *userID, postID).First(&existing).Error
		if err == nil {
			stats.UserLiked = &existing.IsLike
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Stats{}, err
		}
	}
	return stats, nil
}

// ToggleComment is the same state machine over the comment_likes namespace.
func ToggleComment(db *gorm.DB, userID, commentID int, wantsLike bool) (bool, int64, int64, error) {
	var count int64
	if err := db.Model(&models.Comment{}).Where("id = ? AND is_active = ?", commentID, true).Count(&count).Error; err != nil {
		return false, 0, 0, err
	}
	if count == 0 {
		return false, 0, 0, ErrCommentNotFound
	}

	active, err := toggleComment(db, userID, commentID, wantsLike)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		active, err = toggleComment(db, userID, commentID, wantsLike)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = ErrConflict
		}
	}
	if err != nil {
		return false, 0, 0, err
	}

	likes, dislikes, err := commentCounts(db, commentID)
	if err != nil {
		return false, 0, 0, err
	}
	return active, likes, dislikes, nil
}

func toggleComment(db *gorm.DB, userID, commentID int, wantsLike bool) (bool, error) {
	var existing models.CommentLike
	err := db.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error

	switch {
	case err == nil:
		if existing.IsLike == wantsLike {
			return false, db.Delete(&existing).Error
		}
		existing.IsLike = wantsLike
		return true, db.Save(&existing).Error

	case errors.Is(err, gorm.ErrRecordNotFound):
		like := models.CommentLike{UserID: userID, CommentID: commentID, IsLike: wantsLike}
		if err := db.Create(&like).Error; err != nil {
			return false, err
		}
		return true, nil

	default:
		return false, err
	}
}

func commentCounts(db *gorm.DB, commentID int) (int64, int64, error) {
	var likes, dislikes int64
	if err := db.Model(&models.CommentLike{}).Where("comment_id = ? AND is_like = ?", commentID, true).Count(&likes).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&models.CommentLike{}).Where("comment_id = ? AND is_like = ?", commentID, false).Count(&dislikes).Error; err != nil {
		return 0, 0, err
	}
	return likes, dislikes, nil
}

// CommentStats mirrors PostStats for a comment.
func CommentStats(db *gorm.DB, commentID int, userID *int) (Stats, error) {
	likes, dislikes, err := commentCounts(db, commentID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{LikesCount: likes, DislikesCount: dislikes}
	if userID != nil {
		var existing models.CommentLike
		err := db.Where("user_id = ? AND comment_id = ?", *userID, commentID).First(&existing).Error
		if err == nil {
			stats.UserLiked = &existing.IsLike
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Stats{}, err
		}
	}
	return stats, nil
}
